package application

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"materialroi/internal/analytics/domain"
	ledgerdomain "materialroi/internal/ledger/domain"
	"materialroi/internal/testhelpers"
)

// scenario construit un mois de matériels par client avec le coût par catégorie et les ventes voulues
type scenario struct {
	id    string
	costs map[string]float64
	sales float64
}

func buildLedger(month int, scenarios ...scenario) ([]ledgerdomain.MaterialEvent, []ledgerdomain.SalesEvent) {
	m := testhelpers.Month(2024, month)
	var materials []ledgerdomain.MaterialEvent
	var sales []ledgerdomain.SalesEvent
	for _, s := range scenarios {
		p := testhelpers.Party(s.id, "经销商"+s.id, "张三")
		i := 0
		for cat, cost := range s.costs {
			i++
			materials = append(materials, testhelpers.Material(p, m, fmt.Sprintf("%s-%d", s.id, i), cat, 1, cost))
		}
		if s.sales > 0 {
			sales = append(sales, testhelpers.Sale(p, m, 1, s.sales))
		}
	}
	return materials, sales
}

func TestRecommend_PlaceholderWhenNoHighROI(t *testing.T) {
	settings := domain.DefaultSettings().Recommendation

	recs := Recommend(nil, nil, settings)
	require.Len(t, recs, 1)
	assert.True(t, recs[0].IsPlaceholder())
	assert.Equal(t, "N/A", recs[0].ExpectedROI)

	// ROI exactement égal au seuil: exclu
	materials, sales := buildLedger(1, scenario{id: "C1", costs: map[string]float64{"A": 100}, sales: 200})
	recs = Recommend(materials, sales, settings)
	require.Len(t, recs, 1)
	assert.True(t, recs[0].IsPlaceholder())
}

func TestRecommend_RecordsThenPairs(t *testing.T) {
	materials, sales := buildLedger(1,
		scenario{id: "C1", costs: map[string]float64{"A": 60, "B": 30, "C": 10}, sales: 500},
		scenario{id: "C2", costs: map[string]float64{"A": 50, "B": 50}, sales: 300},
		scenario{id: "C3", costs: map[string]float64{"D": 100}, sales: 250},
		scenario{id: "C4", costs: map[string]float64{"E": 100}, sales: 150},
	)

	recs := Recommend(materials, sales, domain.DefaultSettings().Recommendation)

	labels := make([]string, len(recs))
	for i, r := range recs {
		labels[i] = r.Label
	}
	require.Len(t, recs, 3, strings.Join(labels, "\n"))

	// C1 puis C2 (même ensemble A、B, écarté) puis C3
	assert.Equal(t, "推荐物料组合1: 以【A、B】为核心", recs[0].Label)
	assert.Equal(t, "终端陈列与促销活动", recs[0].UseCase)
	assert.Equal(t, "5.00", recs[0].ExpectedROI)
	assert.Equal(t, "推荐物料组合3: 以【D】为核心", recs[1].Label)
	assert.Equal(t, "快速促单与客户转化", recs[1].UseCase)

	// paires classées: A+C (5.0), B+C (5.0), A+B (4.0).
	// A+C est retenue; B+C puis A+B sont écartées car leurs catégories sont déjà utilisées.
	assert.Equal(t, "推荐物料组合4: 【A】+【C】黄金搭配", recs[2].Label)
	assert.Equal(t, "5.00", recs[2].ExpectedROI)
	assert.Equal(t, []string{"A", "C"}, recs[2].CoreCategories)
	assert.Equal(t, "综合营销活动", recs[2].UseCase)
}

func TestRecommend_Invariants(t *testing.T) {
	var scenarios []scenario
	cats := []string{"促销物料", "陈列物料", "宣传物料", "赠品", "包装物料"}
	for i := 0; i < 12; i++ {
		costs := map[string]float64{
			cats[i%5]:     float64(40 + i),
			cats[(i+1)%5]: float64(30 + i),
			cats[(i+3)%5]: 20,
		}
		scenarios = append(scenarios, scenario{id: fmt.Sprintf("C%02d", i), costs: costs, sales: float64(300 + 40*i)})
	}
	materials, sales := buildLedger(3, scenarios...)

	recs := Recommend(materials, sales, domain.DefaultSettings().Recommendation)
	require.GreaterOrEqual(t, len(recs), 1)
	require.LessOrEqual(t, len(recs), 6)

	seen := make(map[string]bool)
	for _, r := range recs {
		assert.False(t, r.IsPlaceholder())
		assert.GreaterOrEqual(t, len(r.CoreCategories), 1)
		assert.LessOrEqual(t, len(r.CoreCategories), 2)
		key := r.CategorySetKey()
		assert.False(t, seen[key], "duplicate category set %s", key)
		seen[key] = true
	}
}

func TestHighROIRecords_CapAndOrder(t *testing.T) {
	var scenarios []scenario
	for i := 25; i >= 1; i-- {
		scenarios = append(scenarios, scenario{id: fmt.Sprintf("C%02d", i), costs: map[string]float64{"A": 10}, sales: 100})
	}
	materials, sales := buildLedger(1, scenarios...)

	records := HighROIRecords(materials, sales, domain.DefaultSettings().Recommendation)
	require.Len(t, records, 20)
	assert.Equal(t, "C01", records[0].Key.CustomerID)
	assert.Equal(t, "C20", records[19].Key.CustomerID)
	assert.Equal(t, 10.0, records[0].ROI)
	assert.InDelta(t, CompositeScore(10, 100), records[0].CompositeScore, 1e-9)
}

func TestHighROIRecords_InnerJoinAndZeroCost(t *testing.T) {
	materials, sales := buildLedger(1,
		scenario{id: "C1", costs: map[string]float64{"A": 10}},
		scenario{id: "C2", costs: map[string]float64{"A": 0}, sales: 500},
	)
	sales = append(sales, testhelpers.Sale(testhelpers.Party("C9", "经销商C9", "张三"), testhelpers.Month(2024, 1), 1, 900))

	assert.Empty(t, HighROIRecords(materials, sales, domain.DefaultSettings().Recommendation))
}

func TestTopCategoryShares(t *testing.T) {
	p := testhelpers.Party("C1", "经销商C1", "张三")
	jan := testhelpers.Month(2024, 1)
	events := []ledgerdomain.MaterialEvent{
		testhelpers.Material(p, jan, "M1", "A", 1, 50),
		testhelpers.Material(p, jan, "M2", "B", 1, 20),
		testhelpers.Material(p, jan, "M3", "A", 1, 10),
		testhelpers.Material(p, jan, "M4", "C", 1, 15),
		testhelpers.Material(p, jan, "M5", "D", 1, 5),
	}

	shares := topCategoryShares(events, 3)
	require.Len(t, shares, 3)
	assert.Equal(t, "A", shares[0].Category)
	assert.InDelta(t, 60.0, shares[0].SharePct, 1e-9)
	assert.Equal(t, "B", shares[1].Category)
	assert.Equal(t, "C", shares[2].Category)

	assert.Nil(t, topCategoryShares(nil, 3))
}

func TestRankPairs_NoMinimumObservations(t *testing.T) {
	records := []HighROIRecord{
		{ROI: 3, TopCategories: []CategoryShare{{Category: "A"}, {Category: "B"}}},
		{ROI: 5, TopCategories: []CategoryShare{{Category: "A"}, {Category: "B"}}},
		{ROI: 9, TopCategories: []CategoryShare{{Category: "C"}, {Category: "D"}}},
		{ROI: 2.5, TopCategories: []CategoryShare{{Category: "E"}}},
	}

	pairs := RankPairs(records, 3)
	require.Len(t, pairs, 2)
	assert.Equal(t, domain.NewCategoryPair("C", "D"), pairs[0].Pair)
	assert.Equal(t, 1, pairs[0].Observations)
	assert.Equal(t, domain.NewCategoryPair("A", "B"), pairs[1].Pair)
	assert.Equal(t, 4.0, pairs[1].AvgROI)
	assert.Equal(t, 2, pairs[1].Observations)
}

func BenchmarkRecommend(b *testing.B) {
	ledger := sampleLedger(b)
	settings := domain.DefaultSettings().Recommendation

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		_ = Recommend(ledger.Materials, ledger.Sales, settings)
	}
}
