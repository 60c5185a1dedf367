package domain

import (
	"errors"

	"materialroi/internal/shared/domain"
)

var (
	// ErrMissingPriceReference signale un référentiel de prix vide: la moyenne de repli est indéfinie
	ErrMissingPriceReference = errors.New("material price reference has no priced entry")
	// ErrNegativeAmount signale un prix ou un montant négatif à l'ingestion
	ErrNegativeAmount = errors.New("amount cannot be negative")
)

// MaterialBase contient les colonnes présentes dans toute ligne de matériel
type MaterialBase struct {
	Party
	ShipMonth   domain.Month
	ProductCode string
	ProductName string
	Category    string
	Quantity    domain.Quantity
}

// MaterialRow est une ligne de matériel telle que livrée par l'ingestion.
// Deux variantes: RawMaterialRow (sans coût) et CostedMaterialRow (coût déjà présent).
type MaterialRow interface {
	materialBase() MaterialBase
}

// RawMaterialRow est une ligne sans coût; le prix unitaire peut être absent
type RawMaterialRow struct {
	MaterialBase
	UnitPrice *float64
}

func (r RawMaterialRow) materialBase() MaterialBase { return r.MaterialBase }

// CostedMaterialRow est une ligne dont le coût est fourni par la source
type CostedMaterialRow struct {
	MaterialBase
	UnitPrice    float64
	MaterialCost float64
}

func (r CostedMaterialRow) materialBase() MaterialBase { return r.MaterialBase }

// SalesBase contient les colonnes présentes dans toute ligne de vente
type SalesBase struct {
	Party
	ShipMonth domain.Month
	Quantity  domain.Quantity
	UnitPrice float64
}

// SalesRow est une ligne de vente telle que livrée par l'ingestion
type SalesRow interface {
	salesBase() SalesBase
}

// RawSalesRow est une vente dont le montant doit être calculé
type RawSalesRow struct {
	SalesBase
}

func (r RawSalesRow) salesBase() SalesBase { return r.SalesBase }

// CostedSalesRow est une vente dont le montant est fourni par la source
type CostedSalesRow struct {
	SalesBase
	SalesAmount float64
}

func (r CostedSalesRow) salesBase() SalesBase { return r.SalesBase }

// RawTables regroupe les trois tables produites par l'ingestion
type RawTables struct {
	Materials []MaterialRow
	Sales     []SalesRow
	Prices    []PriceEntry
}

// BaseOf expose les colonnes communes d'une ligne de matériel
func BaseOf(row MaterialRow) MaterialBase {
	return row.materialBase()
}

// SalesBaseOf expose les colonnes communes d'une ligne de vente
func SalesBaseOf(row SalesRow) SalesBase {
	return row.salesBase()
}
