package domain

import (
	"time"

	ledgerdomain "materialroi/internal/ledger/domain"
	"materialroi/internal/shared/domain"
)

// HealthBand qualifie un indicateur pour l'affichage (succès, alerte, danger)
type HealthBand string

const (
	BandSuccess HealthBand = "success"
	BandWarning HealthBand = "warning"
	BandDanger  HealthBand = "danger"
)

// ROIBand: ≥ 2 succès, ≥ 1 alerte, sinon danger
func ROIBand(roi float64) HealthBand {
	switch {
	case roi >= 2.0:
		return BandSuccess
	case roi >= 1.0:
		return BandWarning
	default:
		return BandDanger
	}
}

// CostRatioBand: ≤ 30 succès, ≤ 50 alerte, sinon danger
func CostRatioBand(ratio float64) HealthBand {
	switch {
	case ratio <= 30:
		return BandSuccess
	case ratio <= 50:
		return BandWarning
	default:
		return BandDanger
	}
}

// Overview regroupe les indicateurs clés de la période filtrée
type Overview struct {
	MaterialCost           domain.Money `json:"material_cost"`
	Sales                  domain.Money `json:"sales"`
	ROI                    float64      `json:"roi"`
	CostRatioPct           float64      `json:"cost_ratio_pct"`
	Distributors           int          `json:"distributors"`
	AvgCostPerDistributor  domain.Money `json:"avg_cost_per_distributor"`
	AvgSalesPerDistributor domain.Money `json:"avg_sales_per_distributor"`
	ROIBand                HealthBand   `json:"roi_band"`
	CostRatioBand          HealthBand   `json:"cost_ratio_band"`
}

// MonthlyPoint est une ligne de la tendance mensuelle
type MonthlyPoint struct {
	Month        domain.Month `json:"month"`
	MaterialCost float64      `json:"material_cost"`
	Sales        float64      `json:"sales"`
	ROI          float64      `json:"roi"`
}

// ForecastPoint est une valeur projetée
type ForecastPoint struct {
	Month domain.Month `json:"month"`
	Value float64      `json:"value"`
}

// Forecast contient la courbe de tendance ajustée et les mois projetés
type Forecast struct {
	Series    string          `json:"series"`
	Trend     []ForecastPoint `json:"trend"`
	Projected []ForecastPoint `json:"projected"`
}

// CategoryROI est le ROI moyen d'une catégorie avec ventes allouées au prorata du coût
type CategoryROI struct {
	Category string  `json:"category"`
	ROI      float64 `json:"roi"`
	Insight  string  `json:"insight,omitempty"`
}

// ProductROI est le ROI moyen d'un produit avec ventes allouées au prorata du coût
type ProductROI struct {
	ProductCode string  `json:"product_code"`
	ProductName string  `json:"product_name"`
	Category    string  `json:"category"`
	ROI         float64 `json:"roi"`
}

// PairUsage mesure le ROI des distributeurs utilisant conjointement deux catégories
type PairUsage struct {
	Pair         CategoryPair `json:"pair"`
	AvgROI       float64      `json:"avg_roi"`
	Distributors int          `json:"distributors"`
}

// ScaleBucket agrège les distributeurs d'un même quartile de ventes
type ScaleBucket struct {
	Label                string  `json:"label"`
	AvgROI               float64 `json:"avg_roi"`
	AvgDiversity         float64 `json:"avg_diversity"`
	AvgCostRatioPct      float64 `json:"avg_cost_ratio_pct"`
	Distributors         int     `json:"distributors"`
	RecommendedDiversity int     `json:"recommended_diversity"`
}

// RegionStats agrège l'efficacité par région
type RegionStats struct {
	Region              string  `json:"region"`
	AvgCostRatioPct     float64 `json:"avg_cost_ratio_pct"`
	MaterialCost        float64 `json:"material_cost"`
	Sales               float64 `json:"sales"`
	OverallCostRatioPct float64 `json:"overall_cost_ratio_pct"`
	Customers           int     `json:"customers"`
}

// SegmentStats agrège un segment de valeur
type SegmentStats struct {
	Segment         ValueSegment `json:"segment"`
	AvgROI          float64      `json:"avg_roi"`
	AvgMaterialCost float64      `json:"avg_material_cost"`
	AvgSales        float64      `json:"avg_sales"`
	Customers       int          `json:"customers"`
}

// Report est le résultat complet d'une exécution du pipeline
type Report struct {
	RunID           string                      `json:"run_id"`
	GeneratedAt     time.Time                   `json:"generated_at"`
	Sample          bool                        `json:"sample"`
	Filter          ledgerdomain.Filter         `json:"filter"`
	Dimensions      ledgerdomain.Dimensions     `json:"dimensions"`
	Thresholds      SegmentThresholds           `json:"thresholds"`
	Distributors    []DistributorMetric         `json:"distributors"`
	Overview        Overview                    `json:"overview"`
	Recommendations []CombinationRecommendation `json:"recommendations"`
	Strategies      map[ValueSegment]Playbook   `json:"strategies"`
	SegmentStats    []SegmentStats              `json:"segment_stats"`
	MonthlyTrend    []MonthlyPoint              `json:"monthly_trend"`
	Forecasts       []Forecast                  `json:"forecasts"`
	CategoryROI     []CategoryROI               `json:"category_roi"`
	ProductROI      []ProductROI                `json:"product_roi"`
	PairUsage       []PairUsage                 `json:"pair_usage"`
	ScaleBuckets    []ScaleBucket               `json:"scale_buckets"`
	RegionStats     []RegionStats               `json:"region_stats"`
}
