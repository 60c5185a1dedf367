package application

import "materialroi/internal/ledger/domain"

// Apply retourne un nouveau Ledger restreint par le filtre; l'original n'est pas modifié
func Apply(ledger *domain.Ledger, f domain.Filter) *domain.Ledger {
	if f.IsEmpty() {
		return ledger
	}

	materials := make([]domain.MaterialEvent, 0, len(ledger.Materials))
	for _, m := range ledger.Materials {
		if f.MatchMaterial(m) {
			materials = append(materials, m)
		}
	}

	sales := make([]domain.SalesEvent, 0, len(ledger.Sales))
	for _, s := range ledger.Sales {
		if f.MatchSales(s) {
			sales = append(sales, s)
		}
	}

	return &domain.Ledger{
		Materials: materials,
		Sales:     sales,
		Prices:    ledger.Prices,
	}
}
