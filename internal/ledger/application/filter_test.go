package application

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"materialroi/internal/ledger/domain"
	"materialroi/internal/testhelpers"
)

func TestApply(t *testing.T) {
	a := testhelpers.Party("C001", "经销商A", "张三")
	b := testhelpers.Party("C002", "经销商B", "李四")
	b.Region = "华南"
	jan, feb := testhelpers.Month(2024, 1), testhelpers.Month(2024, 2)

	ledger := &domain.Ledger{
		Materials: []domain.MaterialEvent{
			testhelpers.Material(a, jan, "M1", "陈列物料", 1, 10),
			testhelpers.Material(a, feb, "M2", "促销物料", 1, 10),
			testhelpers.Material(b, jan, "M1", "陈列物料", 1, 10),
		},
		Sales: []domain.SalesEvent{
			testhelpers.Sale(a, jan, 1, 100),
			testhelpers.Sale(b, feb, 1, 100),
		},
	}

	assert.Same(t, ledger, Apply(ledger, domain.Filter{}))

	filtered := Apply(ledger, domain.Filter{Regions: []string{"华东"}, Categories: []string{"陈列物料"}})
	assert.Len(t, filtered.Materials, 1)
	assert.Equal(t, "C001", filtered.Materials[0].CustomerID)
	assert.Len(t, filtered.Sales, 1)
	assert.Len(t, ledger.Materials, 3)

	byMonth := Apply(ledger, domain.Filter{Month: feb})
	assert.Len(t, byMonth.Materials, 1)
	assert.Len(t, byMonth.Sales, 1)
	assert.Equal(t, "C002", byMonth.Sales[0].CustomerID)
}
