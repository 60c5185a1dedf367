package application

import (
	"materialroi/internal/analytics/domain"
)

// Advise associe à chaque segment présent dans le tableau sa stratégie fixe.
// Les segments absents n'ont pas d'entrée: la carte retournée est partielle.
func Advise(metrics []domain.DistributorMetric) map[domain.ValueSegment]domain.Playbook {
	out := make(map[domain.ValueSegment]domain.Playbook)
	for _, m := range metrics {
		if _, done := out[m.Segment]; done {
			continue
		}
		if p, ok := domain.PlaybookFor(m.Segment); ok {
			out[m.Segment] = p
		}
	}
	return out
}

// SegmentStatistics agrège chaque segment présent, dans l'ordre des segments
func SegmentStatistics(metrics []domain.DistributorMetric) []domain.SegmentStats {
	type acc struct {
		roi, cost, sales []float64
		customers        map[string]struct{}
	}
	groups := make(map[domain.ValueSegment]*acc)
	for _, m := range metrics {
		g, ok := groups[m.Segment]
		if !ok {
			g = &acc{customers: make(map[string]struct{})}
			groups[m.Segment] = g
		}
		g.roi = append(g.roi, m.ROI)
		g.cost = append(g.cost, m.MaterialCostTotal)
		g.sales = append(g.sales, m.SalesTotal)
		g.customers[m.CustomerID] = struct{}{}
	}

	out := make([]domain.SegmentStats, 0, len(groups))
	for _, seg := range domain.AllSegments {
		g, ok := groups[seg]
		if !ok {
			continue
		}
		out = append(out, domain.SegmentStats{
			Segment:         seg,
			AvgROI:          Mean(g.roi),
			AvgMaterialCost: Mean(g.cost),
			AvgSales:        Mean(g.sales),
			Customers:       len(g.customers),
		})
	}
	return out
}
