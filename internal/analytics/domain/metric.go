package domain

import (
	"materialroi/internal/shared/domain"
)

// DistributorKey est la clé composite d'une ligne du tableau des distributeurs
type DistributorKey struct {
	CustomerID   string       `json:"customer_id"`
	CustomerName string       `json:"customer_name"`
	Month        domain.Month `json:"month"`
	Salesperson  string       `json:"salesperson"`
}

// Less ordonne les clés par client, nom, mois puis commercial
func (k DistributorKey) Less(other DistributorKey) bool {
	if k.CustomerID != other.CustomerID {
		return k.CustomerID < other.CustomerID
	}
	if k.CustomerName != other.CustomerName {
		return k.CustomerName < other.CustomerName
	}
	if c := k.Month.Compare(other.Month); c != 0 {
		return c < 0
	}
	return k.Salesperson < other.Salesperson
}

// CustomerMonth est la clé (client, mois) utilisée pour la diversité et les recommandations
type CustomerMonth struct {
	CustomerID string
	Month      domain.Month
}

// Less ordonne par client puis mois
func (k CustomerMonth) Less(other CustomerMonth) bool {
	if k.CustomerID != other.CustomerID {
		return k.CustomerID < other.CustomerID
	}
	return k.Month.Before(other.Month)
}

// DistributorMetric est l'unité d'analyse: un distributeur, un mois, un commercial
type DistributorMetric struct {
	DistributorKey
	MaterialCostTotal float64      `json:"material_cost_total"`
	SalesTotal        float64      `json:"sales_total"`
	ROI               float64      `json:"roi"`
	CostRatioPct      float64      `json:"cost_ratio_pct"`
	MaterialDiversity int          `json:"material_diversity"`
	Segment           ValueSegment `json:"value_segment"`
	Region            string       `json:"region,omitempty"`
	Province          string       `json:"province,omitempty"`
}

// ComputeROI retourne ventes / coût si coût > 0, sinon 0
func ComputeROI(salesTotal, materialCost float64) float64 {
	if materialCost > 0 {
		return salesTotal / materialCost
	}
	return 0
}

// ComputeCostRatio retourne coût / ventes × 100 si ventes > 0, sinon 0
func ComputeCostRatio(materialCost, salesTotal float64) float64 {
	if salesTotal > 0 {
		return materialCost / salesTotal * 100
	}
	return 0
}

// NewDistributorMetric construit une ligne avec ROI et ratio calculés; le segment reste vide
func NewDistributorMetric(key DistributorKey, materialCost, salesTotal float64) DistributorMetric {
	return DistributorMetric{
		DistributorKey:    key,
		MaterialCostTotal: materialCost,
		SalesTotal:        salesTotal,
		ROI:               ComputeROI(salesTotal, materialCost),
		CostRatioPct:      ComputeCostRatio(materialCost, salesTotal),
	}
}
