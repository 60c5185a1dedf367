package application

import (
	"materialroi/internal/analytics/domain"
)

// ComputeThresholds est la première phase de la segmentation: statistiques de
// population calculées sur le tableau complet, jamais ligne par ligne.
func ComputeThresholds(metrics []domain.DistributorMetric, settings domain.Settings) domain.SegmentThresholds {
	sales := make([]float64, len(metrics))
	for i, m := range metrics {
		sales[i] = m.SalesTotal
	}
	return domain.SegmentThresholds{
		P75Sales:    Quantile(sales, settings.HighSalesQuantile),
		MedianSales: Quantile(sales, 0.5),
		HighROI:     settings.HighValueROI,
		BaseROI:     settings.BaseROI,
	}
}

// Segment est la seconde phase: classification pure de chaque ligne avec des seuils explicites.
// Retourne une nouvelle tranche; l'entrée n'est pas modifiée.
func Segment(metrics []domain.DistributorMetric, thresholds domain.SegmentThresholds) []domain.DistributorMetric {
	out := make([]domain.DistributorMetric, len(metrics))
	for i, m := range metrics {
		m.Segment = domain.Classify(m.ROI, m.SalesTotal, thresholds)
		out[i] = m
	}
	return out
}

// SegmentAll enchaîne les deux phases sur la même population
func SegmentAll(metrics []domain.DistributorMetric, settings domain.Settings) ([]domain.DistributorMetric, domain.SegmentThresholds) {
	thresholds := ComputeThresholds(metrics, settings)
	return Segment(metrics, thresholds), thresholds
}
