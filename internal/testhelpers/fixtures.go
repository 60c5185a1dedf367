package testhelpers

import (
	"time"

	ledgerdomain "materialroi/internal/ledger/domain"
	shareddomain "materialroi/internal/shared/domain"
)

// Month raccourci pour les tests: Month(2024, 1)
func Month(year int, month int) shareddomain.Month {
	return shareddomain.MustNewMonth(year, time.Month(month))
}

// Party construit un distributeur de test
func Party(id, name, salesperson string) ledgerdomain.Party {
	return ledgerdomain.Party{
		CustomerID:   id,
		CustomerName: name,
		Region:       "华东",
		Province:     "浙江",
		Salesperson:  salesperson,
	}
}

// Material construit un événement matériel déjà chiffré (coût = quantité × prix)
func Material(p ledgerdomain.Party, month shareddomain.Month, code, category string, qty int, price float64) ledgerdomain.MaterialEvent {
	q := shareddomain.MustNewQuantity(qty)
	return ledgerdomain.MaterialEvent{
		Party:        p,
		ShipMonth:    month,
		ProductCode:  code,
		ProductName:  "物料" + code,
		Category:     category,
		Quantity:     q,
		UnitPrice:    price,
		MaterialCost: q.Times(price),
	}
}

// Sale construit une vente déjà chiffrée
func Sale(p ledgerdomain.Party, month shareddomain.Month, qty int, price float64) ledgerdomain.SalesEvent {
	q := shareddomain.MustNewQuantity(qty)
	return ledgerdomain.SalesEvent{
		Party:       p,
		ShipMonth:   month,
		Quantity:    q,
		UnitPrice:   price,
		SalesAmount: q.Times(price),
	}
}

// Price construit une entrée du référentiel de prix
func Price(code, category string, price float64) ledgerdomain.PriceEntry {
	return ledgerdomain.PriceEntry{
		ProductCode: code,
		ProductName: "物料" + code,
		Category:    category,
		UnitPrice:   &price,
	}
}
