package domain

import (
	"strconv"
	"strings"

	analyticsdomain "materialroi/internal/analytics/domain"
	shareddomain "materialroi/internal/shared/domain"
)

// DistributorExportRow représente une ligne du tableau des distributeurs exporté
type DistributorExportRow struct {
	CustomerID        string
	CustomerName      string
	Month             string
	Salesperson       string
	Region            string
	Province          string
	MaterialCostTotal float64
	SalesTotal        float64
	ROI               float64
	CostRatioPct      float64
	MaterialDiversity int
	Segment           string
}

// NewDistributorExportRow convertit une ligne de métriques
func NewDistributorExportRow(m analyticsdomain.DistributorMetric) DistributorExportRow {
	return DistributorExportRow{
		CustomerID:        m.CustomerID,
		CustomerName:      m.CustomerName,
		Month:             m.Month.String(),
		Salesperson:       m.Salesperson,
		Region:            m.Region,
		Province:          m.Province,
		MaterialCostTotal: m.MaterialCostTotal,
		SalesTotal:        m.SalesTotal,
		ROI:               m.ROI,
		CostRatioPct:      m.CostRatioPct,
		MaterialDiversity: m.MaterialDiversity,
		Segment:           string(m.Segment),
	}
}

// ToCSVRow convertit en tableau pour CSV; les montants sont formatés en yuans
func (r DistributorExportRow) ToCSVRow() []string {
	return []string{
		r.CustomerID,
		r.CustomerName,
		r.Month,
		r.Salesperson,
		r.Region,
		r.Province,
		shareddomain.FormatCurrency(r.MaterialCostTotal),
		shareddomain.FormatCurrency(r.SalesTotal),
		strconv.FormatFloat(r.ROI, 'f', 2, 64),
		strconv.FormatFloat(r.CostRatioPct, 'f', 2, 64),
		strconv.Itoa(r.MaterialDiversity),
		r.Segment,
	}
}

// ToParquet convertit en ligne Parquet
func (r DistributorExportRow) ToParquet() DistributorParquetRow {
	return DistributorParquetRow{
		CustomerID:        r.CustomerID,
		CustomerName:      r.CustomerName,
		Month:             r.Month,
		Salesperson:       r.Salesperson,
		Region:            r.Region,
		Province:          r.Province,
		MaterialCostTotal: r.MaterialCostTotal,
		SalesTotal:        r.SalesTotal,
		ROI:               r.ROI,
		CostRatioPct:      r.CostRatioPct,
		MaterialDiversity: int32(r.MaterialDiversity),
		Segment:           r.Segment,
	}
}

// DistributorCSVHeaders retourne les en-têtes CSV du tableau des distributeurs
func DistributorCSVHeaders() []string {
	return []string{
		"客户代码",
		"经销商名称",
		"月份",
		"销售人员",
		"所属区域",
		"省份",
		"物料总成本",
		"销售总额",
		"ROI",
		"物料销售比率(%)",
		"物料多样性",
		"客户价值分层",
	}
}

// DistributorParquetRow est le schéma Parquet du tableau des distributeurs
type DistributorParquetRow struct {
	CustomerID        string  `parquet:"name=customer_id, type=BYTE_ARRAY, convertedtype=UTF8"`
	CustomerName      string  `parquet:"name=customer_name, type=BYTE_ARRAY, convertedtype=UTF8"`
	Month             string  `parquet:"name=month, type=BYTE_ARRAY, convertedtype=UTF8"`
	Salesperson       string  `parquet:"name=salesperson, type=BYTE_ARRAY, convertedtype=UTF8"`
	Region            string  `parquet:"name=region, type=BYTE_ARRAY, convertedtype=UTF8"`
	Province          string  `parquet:"name=province, type=BYTE_ARRAY, convertedtype=UTF8"`
	MaterialCostTotal float64 `parquet:"name=material_cost_total, type=DOUBLE"`
	SalesTotal        float64 `parquet:"name=sales_total, type=DOUBLE"`
	ROI               float64 `parquet:"name=roi, type=DOUBLE"`
	CostRatioPct      float64 `parquet:"name=cost_ratio_pct, type=DOUBLE"`
	MaterialDiversity int32   `parquet:"name=material_diversity, type=INT32"`
	Segment           string  `parquet:"name=value_segment, type=BYTE_ARRAY, convertedtype=UTF8"`
}

// RecommendationCSVHeaders retourne les en-têtes CSV des recommandations
func RecommendationCSVHeaders() []string {
	return []string{
		"推荐组合",
		"预期ROI",
		"适用场景",
		"建议物料配比",
		"目标客户",
		"核心物料类别",
		"建议产品层级",
		"综合评分",
	}
}

// RecommendationCSVRow convertit une recommandation en ligne CSV
func RecommendationCSVRow(r analyticsdomain.CombinationRecommendation) []string {
	return []string{
		r.Label,
		r.ExpectedROI,
		r.UseCase,
		r.SuggestedMaterialMix,
		r.TargetCustomerProfile,
		strings.Join(r.CoreCategories, "、"),
		strings.Join(r.SuggestedProductTiers, "、"),
		strconv.FormatFloat(r.CompositeScore, 'f', 2, 64),
	}
}
