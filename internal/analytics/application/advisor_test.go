package application

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"materialroi/internal/analytics/domain"
)

func withSegment(id string, seg domain.ValueSegment, roi, cost, sales float64) domain.DistributorMetric {
	return domain.DistributorMetric{
		DistributorKey:    domain.DistributorKey{CustomerID: id},
		Segment:           seg,
		ROI:               roi,
		MaterialCostTotal: cost,
		SalesTotal:        sales,
	}
}

func TestAdvise_OnlyPresentSegments(t *testing.T) {
	metrics := []domain.DistributorMetric{
		withSegment("A", domain.SegmentHighValue, 3, 100, 300),
		withSegment("B", domain.SegmentInefficient, 0.5, 100, 50),
		withSegment("C", domain.SegmentHighValue, 2.5, 100, 250),
	}

	strategies := Advise(metrics)
	require.Len(t, strategies, 2)
	assert.Equal(t, "维护与深化", strategies[domain.SegmentHighValue].Strategy)
	assert.Equal(t, "减少(20-30%)", strategies[domain.SegmentInefficient].SpendDelta)
	_, hasGrowth := strategies[domain.SegmentGrowth]
	assert.False(t, hasGrowth)

	assert.Empty(t, Advise(nil))
}

func TestSegmentStatistics(t *testing.T) {
	metrics := []domain.DistributorMetric{
		withSegment("A", domain.SegmentStable, 1, 100, 100),
		withSegment("A", domain.SegmentStable, 2, 200, 400),
		withSegment("B", domain.SegmentHighValue, 4, 50, 200),
	}

	stats := SegmentStatistics(metrics)
	require.Len(t, stats, 2)
	assert.Equal(t, domain.SegmentHighValue, stats[0].Segment)
	assert.Equal(t, 1, stats[0].Customers)

	assert.Equal(t, domain.SegmentStable, stats[1].Segment)
	assert.Equal(t, 1.5, stats[1].AvgROI)
	assert.Equal(t, 150.0, stats[1].AvgMaterialCost)
	assert.Equal(t, 250.0, stats[1].AvgSales)
	assert.Equal(t, 1, stats[1].Customers)
}
