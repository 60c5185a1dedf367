package application

import (
	"fmt"

	"github.com/rs/zerolog"

	"materialroi/internal/ledger/domain"
)

// Deriver résout les lignes brutes en événements entièrement renseignés:
// coût matériel, montant de vente et catégorie.
type Deriver struct {
	logger zerolog.Logger
}

// NewDeriver crée une nouvelle instance de Deriver
func NewDeriver(logger zerolog.Logger) *Deriver {
	return &Deriver{logger: logger.With().Str("component", "deriver").Logger()}
}

// Derive produit un Ledger à partir des tables brutes.
// Retourne domain.ErrMissingPriceReference si un prix de repli est nécessaire
// alors que le référentiel ne contient aucun prix.
func (d *Deriver) Derive(raw domain.RawTables) (*domain.Ledger, error) {
	materials, stats, err := DeriveMaterials(raw.Materials, raw.Prices)
	if err != nil {
		return nil, fmt.Errorf("derive material cost: %w", err)
	}

	sales, err := DeriveSales(raw.Sales)
	if err != nil {
		return nil, fmt.Errorf("derive sales amount: %w", err)
	}

	d.logger.Debug().
		Int("materials", len(materials)).
		Int("sales", len(sales)).
		Int("reference_priced", stats.ReferencePriced).
		Int("mean_priced", stats.MeanPriced).
		Msg("ledger derived")

	return &domain.Ledger{
		Materials: materials,
		Sales:     sales,
		Prices:    append([]domain.PriceEntry(nil), raw.Prices...),
	}, nil
}

// PricingStats compte l'origine des prix unitaires résolus
type PricingStats struct {
	RowPriced       int
	ReferencePriced int
	MeanPriced      int
}

// MeanUnitPrice calcule la moyenne des prix renseignés du référentiel
func MeanUnitPrice(prices []domain.PriceEntry) (float64, bool) {
	var sum float64
	var n int
	for _, p := range prices {
		if p.UnitPrice == nil {
			continue
		}
		sum += *p.UnitPrice
		n++
	}
	if n == 0 {
		return 0, false
	}
	return sum / float64(n), true
}

// DeriveMaterials calcule material_cost = quantité × prix unitaire pour chaque ligne brute.
// Priorité du prix: ligne, référentiel (par code produit), moyenne du référentiel.
func DeriveMaterials(rows []domain.MaterialRow, prices []domain.PriceEntry) ([]domain.MaterialEvent, PricingStats, error) {
	var stats PricingStats

	index := make(map[string]domain.PriceEntry, len(prices))
	for _, p := range prices {
		if _, exists := index[p.ProductCode]; !exists {
			index[p.ProductCode] = p
		}
	}
	mean, hasMean := MeanUnitPrice(prices)

	events := make([]domain.MaterialEvent, 0, len(rows))
	for i, row := range rows {
		base := domain.BaseOf(row)
		ref, hasRef := index[base.ProductCode]

		event := domain.MaterialEvent{
			Party:       base.Party,
			ShipMonth:   base.ShipMonth,
			ProductCode: base.ProductCode,
			ProductName: base.ProductName,
			Category:    resolveCategory(base.Category, ref, hasRef),
			Quantity:    base.Quantity,
		}

		switch r := row.(type) {
		case domain.CostedMaterialRow:
			if r.MaterialCost < 0 || r.UnitPrice < 0 {
				return nil, stats, fmt.Errorf("material row %d (%s): %w", i, base.ProductCode, domain.ErrNegativeAmount)
			}
			event.UnitPrice = r.UnitPrice
			event.MaterialCost = r.MaterialCost
			stats.RowPriced++
		case domain.RawMaterialRow:
			switch {
			case r.UnitPrice != nil:
				event.UnitPrice = *r.UnitPrice
				stats.RowPriced++
			case hasRef && ref.UnitPrice != nil:
				event.UnitPrice = *ref.UnitPrice
				stats.ReferencePriced++
			case hasMean:
				event.UnitPrice = mean
				stats.MeanPriced++
			default:
				return nil, stats, fmt.Errorf("material row %d (%s): %w", i, base.ProductCode, domain.ErrMissingPriceReference)
			}
			if event.UnitPrice < 0 {
				return nil, stats, fmt.Errorf("material row %d (%s): %w", i, base.ProductCode, domain.ErrNegativeAmount)
			}
			event.MaterialCost = base.Quantity.Times(event.UnitPrice)
		default:
			return nil, stats, fmt.Errorf("material row %d: unsupported row type %T", i, row)
		}

		events = append(events, event)
	}

	return events, stats, nil
}

// DeriveSales calcule sales_amount = quantité × prix unitaire quand il est absent
func DeriveSales(rows []domain.SalesRow) ([]domain.SalesEvent, error) {
	events := make([]domain.SalesEvent, 0, len(rows))
	for i, row := range rows {
		base := domain.SalesBaseOf(row)
		if base.UnitPrice < 0 {
			return nil, fmt.Errorf("sales row %d (%s): %w", i, base.CustomerID, domain.ErrNegativeAmount)
		}

		event := domain.SalesEvent{
			Party:     base.Party,
			ShipMonth: base.ShipMonth,
			Quantity:  base.Quantity,
			UnitPrice: base.UnitPrice,
		}

		switch r := row.(type) {
		case domain.CostedSalesRow:
			if r.SalesAmount < 0 {
				return nil, fmt.Errorf("sales row %d (%s): %w", i, base.CustomerID, domain.ErrNegativeAmount)
			}
			event.SalesAmount = r.SalesAmount
		case domain.RawSalesRow:
			event.SalesAmount = base.Quantity.Times(base.UnitPrice)
		default:
			return nil, fmt.Errorf("sales row %d: unsupported row type %T", i, row)
		}

		events = append(events, event)
	}
	return events, nil
}

func resolveCategory(own string, ref domain.PriceEntry, hasRef bool) string {
	if own != "" {
		return own
	}
	if hasRef && ref.Category != "" {
		return ref.Category
	}
	return domain.UncategorizedLabel
}
