package application

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"materialroi/internal/analytics/domain"
)

func metric(id string, roi, sales float64) domain.DistributorMetric {
	return domain.DistributorMetric{
		DistributorKey: domain.DistributorKey{CustomerID: id},
		ROI:            roi,
		SalesTotal:     sales,
	}
}

func TestQuantile_LinearInterpolation(t *testing.T) {
	values := []float64{4, 1, 3, 2}

	assert.Equal(t, 0.0, Quantile(nil, 0.5))
	assert.Equal(t, 2.5, Quantile(values, 0.5))
	assert.Equal(t, 3.25, Quantile(values, 0.75))
	assert.Equal(t, 1.0, Quantile(values, 0))
	assert.Equal(t, 4.0, Quantile(values, 1))
	assert.Equal(t, 7.0, Quantile([]float64{7}, 0.75))
	// l'entrée n'est pas triée sur place
	assert.Equal(t, []float64{4, 1, 3, 2}, values)
}

func TestMean(t *testing.T) {
	assert.Equal(t, 0.0, Mean(nil))
	assert.Equal(t, 2.0, Mean([]float64{1, 2, 3}))
}

func TestSegmentAll_Rules(t *testing.T) {
	metrics := []domain.DistributorMetric{
		metric("A", 2.5, 1000), // > p75 et ROI ≥ 2
		metric("B", 1.5, 600),  // > médiane
		metric("C", 1.0, 100),  // ROI ≥ 1 seulement
		metric("D", 0.5, 900),  // ROI < 1
		metric("E", 2.0, 400),
	}

	segmented, thresholds := SegmentAll(metrics, domain.DefaultSettings())

	// ventes triées: 100, 400, 600, 900, 1000
	assert.Equal(t, 900.0, thresholds.P75Sales)
	assert.Equal(t, 600.0, thresholds.MedianSales)

	want := []domain.ValueSegment{
		domain.SegmentHighValue,
		domain.SegmentStable,
		domain.SegmentStable,
		domain.SegmentInefficient,
		domain.SegmentStable,
	}
	for i, m := range segmented {
		assert.Equal(t, want[i], m.Segment, m.CustomerID)
	}
	for _, m := range metrics {
		assert.Empty(t, m.Segment)
	}
}

func TestSegment_ExactlyOneLabelAndIdempotent(t *testing.T) {
	metrics := []domain.DistributorMetric{
		metric("A", 3, 50),
		metric("B", 0, 0),
		metric("C", 1.2, 70),
		metric("D", 2.1, 90),
	}
	thresholds := ComputeThresholds(metrics, domain.DefaultSettings())

	first := Segment(metrics, thresholds)
	second := Segment(first, thresholds)
	assert.Equal(t, first, second)
	for _, m := range first {
		assert.GreaterOrEqual(t, m.Segment.Rank(), 0)
	}
	assert.Equal(t, domain.SegmentHighValue, first[3].Segment)
	assert.Equal(t, domain.SegmentInefficient, first[1].Segment)
}

func TestComputeThresholds_Empty(t *testing.T) {
	thresholds := ComputeThresholds(nil, domain.DefaultSettings())
	assert.Equal(t, 0.0, thresholds.P75Sales)
	assert.Equal(t, 2.0, thresholds.HighROI)
	assert.Equal(t, 1.0, thresholds.BaseROI)
	assert.Empty(t, Segment(nil, thresholds))
}
