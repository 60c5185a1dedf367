package sample

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ledgerdomain "materialroi/internal/ledger/domain"
	"materialroi/internal/shared/domain"
)

var endMonth = domain.MustNewMonth(2024, time.December)

func TestNewGenerator_Validation(t *testing.T) {
	cfg := DefaultConfig(endMonth)
	_, err := NewGenerator(cfg)
	require.NoError(t, err)

	bad := cfg
	bad.Materials = 5
	_, err = NewGenerator(bad)
	assert.Error(t, err)

	bad = cfg
	bad.Salespersons = 27
	_, err = NewGenerator(bad)
	assert.Error(t, err)

	bad = cfg
	bad.End = domain.Month{}
	_, err = NewGenerator(bad)
	assert.Error(t, err)
}

func TestGenerate_Deterministic(t *testing.T) {
	gen, err := NewGenerator(DefaultConfig(endMonth))
	require.NoError(t, err)

	first := gen.Generate()
	second := gen.Generate()
	assert.Equal(t, first, second)

	other := DefaultConfig(endMonth)
	other.Seed = 7
	gen2, err := NewGenerator(other)
	require.NoError(t, err)
	assert.NotEqual(t, first.Materials, gen2.Generate().Materials)
}

func TestGenerate_Shape(t *testing.T) {
	cfg := DefaultConfig(endMonth)
	gen, err := NewGenerator(cfg)
	require.NoError(t, err)
	tables := gen.Generate()

	assert.Len(t, tables.Prices, cfg.Materials)

	// 3 à 8 matériels par client et par mois
	perKey := make(map[string]int)
	customers := make(map[string]struct{})
	months := make(map[domain.Month]struct{})
	for _, row := range tables.Materials {
		costed, ok := row.(ledgerdomain.CostedMaterialRow)
		require.True(t, ok)
		assert.GreaterOrEqual(t, costed.Quantity.Value(), 1)
		assert.Greater(t, costed.MaterialCost, 0.0)
		assert.Contains(t, categories, costed.Category)
		assert.Contains(t, provinces[costed.Region], costed.Province)
		perKey[costed.CustomerID+costed.ShipMonth.String()]++
		customers[costed.CustomerID] = struct{}{}
		months[costed.ShipMonth] = struct{}{}
	}
	assert.Len(t, perKey, cfg.Customers*cfg.Months)
	for _, n := range perKey {
		assert.GreaterOrEqual(t, n, 3)
		assert.LessOrEqual(t, n, 8)
	}
	assert.Len(t, customers, cfg.Customers)
	assert.Len(t, months, cfg.Months)
	_, hasEnd := months[endMonth]
	assert.True(t, hasEnd)
	_, hasStart := months[endMonth.AddMonths(-11)]
	assert.True(t, hasStart)

	require.NotEmpty(t, tables.Sales)
	assert.LessOrEqual(t, len(tables.Sales), cfg.Customers*cfg.Months)
	for _, row := range tables.Sales {
		sale, ok := row.(ledgerdomain.CostedSalesRow)
		require.True(t, ok)
		assert.Greater(t, sale.SalesAmount, 0.0)
		assert.GreaterOrEqual(t, sale.UnitPrice, 300.0)
		assert.LessOrEqual(t, sale.UnitPrice, 800.0)
	}
}

func TestGenerator_LoadHonoursContext(t *testing.T) {
	gen, err := NewGenerator(DefaultConfig(endMonth))
	require.NoError(t, err)
	assert.Equal(t, "sample", gen.Name())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = gen.Load(ctx)
	assert.ErrorIs(t, err, context.Canceled)

	tables, err := gen.Load(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, tables.Materials)
}

func BenchmarkGenerate(b *testing.B) {
	gen, err := NewGenerator(DefaultConfig(endMonth))
	if err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		_ = gen.Generate()
	}
}
