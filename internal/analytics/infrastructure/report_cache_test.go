package infrastructure

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/go-redis/redismock/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"materialroi/internal/analytics/domain"
	ledgerdomain "materialroi/internal/ledger/domain"
	shareddomain "materialroi/internal/shared/domain"
	sharedinfra "materialroi/internal/shared/infrastructure"
)

func testReport() *domain.Report {
	jan := shareddomain.MustNewMonth(2024, time.January)
	return &domain.Report{
		RunID:       "run-1",
		GeneratedAt: time.Date(2024, 2, 1, 8, 0, 0, 0, time.UTC),
		Filter:      ledgerdomain.Filter{Regions: []string{"华东"}, Month: jan},
		Distributors: []domain.DistributorMetric{{
			DistributorKey:    domain.DistributorKey{CustomerID: "C001", CustomerName: "经销商A", Month: jan, Salesperson: "张三"},
			MaterialCostTotal: 150,
			SalesTotal:        450,
			ROI:               3,
			CostRatioPct:      33.33,
			MaterialDiversity: 2,
			Segment:           domain.SegmentHighValue,
		}},
		Overview: domain.Overview{
			MaterialCost: shareddomain.Yuan(150),
			Sales:        shareddomain.Yuan(450),
			ROI:          3,
		},
		Recommendations: []domain.CombinationRecommendation{domain.InsufficientDataRecommendation()},
		Strategies: map[domain.ValueSegment]domain.Playbook{
			domain.SegmentHighValue: {Strategy: "维护与深化"},
		},
	}
}

func TestReportCache_RoundTrip(t *testing.T) {
	ctx := context.Background()
	mem := sharedinfra.NewInMemoryCache(0)
	defer mem.Close()
	cache := NewReportCache(mem, time.Minute)

	_, found, err := cache.Get(ctx, "report:sample:no:all")
	require.NoError(t, err)
	assert.False(t, found)

	want := testReport()
	require.NoError(t, cache.Set(ctx, "report:sample:no:all", want))

	got, found, err := cache.Get(ctx, "report:sample:no:all")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, want.RunID, got.RunID)
	assert.True(t, want.GeneratedAt.Equal(got.GeneratedAt))
	assert.Equal(t, want.Filter, got.Filter)
	assert.Equal(t, want.Distributors, got.Distributors)
	assert.Equal(t, 450.0, got.Overview.Sales.Amount())
	assert.True(t, got.Recommendations[0].IsPlaceholder())
	assert.Equal(t, "维护与深化", got.Strategies[domain.SegmentHighValue].Strategy)

	// chaque lecture est indépendante
	got.Distributors[0].ROI = 99
	again, _, err := cache.Get(ctx, "report:sample:no:all")
	require.NoError(t, err)
	assert.Equal(t, 3.0, again.Distributors[0].ROI)

	require.NoError(t, cache.Clear(ctx))
	_, found, _ = cache.Get(ctx, "report:sample:no:all")
	assert.False(t, found)
}

func TestReportCache_CorruptEntryIsDropped(t *testing.T) {
	ctx := context.Background()
	mem := sharedinfra.NewInMemoryCache(0)
	defer mem.Close()
	cache := NewReportCache(mem, time.Minute)

	require.NoError(t, mem.Set(ctx, "k", []byte("{not json"), time.Minute))
	_, found, err := cache.Get(ctx, "k")
	assert.Error(t, err)
	assert.False(t, found)
	assert.Equal(t, 0, mem.Len())
}

func TestReportCache_Redis(t *testing.T) {
	ctx := context.Background()
	db, mock := redismock.NewClientMock()
	cache := NewReportCache(sharedinfra.NewRedisCache(db, "materialroi"), 5*time.Minute)

	report := testReport()
	data, err := json.Marshal(report)
	require.NoError(t, err)

	mock.ExpectSet("materialroi:report:sample:no:all", data, 5*time.Minute).SetVal("OK")
	require.NoError(t, cache.Set(ctx, "report:sample:no:all", report))

	mock.ExpectGet("materialroi:report:sample:no:all").SetVal(string(data))
	got, found, err := cache.Get(ctx, "report:sample:no:all")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "run-1", got.RunID)

	mock.ExpectGet("materialroi:report:sample:yes:all").RedisNil()
	_, found, err = cache.Get(ctx, "report:sample:yes:all")
	require.NoError(t, err)
	assert.False(t, found)

	assert.NoError(t, mock.ExpectationsWereMet())
}
