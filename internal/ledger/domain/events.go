package domain

import (
	"sort"

	"materialroi/internal/shared/domain"
)

// UncategorizedLabel est la catégorie attribuée aux produits absents du référentiel
const UncategorizedLabel = "未分类"

// Party regroupe les attributs du distributeur communs aux deux grands livres
type Party struct {
	CustomerID   string `json:"customer_id"`
	CustomerName string `json:"customer_name"`
	Region       string `json:"region"`
	Province     string `json:"province"`
	Salesperson  string `json:"salesperson"`
}

// MaterialEvent représente une livraison d'un matériel promotionnel à un client pour un mois.
// Toujours entièrement renseigné: le coût est calculé par le Deriver.
type MaterialEvent struct {
	Party
	ShipMonth    domain.Month    `json:"ship_month"`
	ProductCode  string          `json:"product_code"`
	ProductName  string          `json:"product_name"`
	Category     string          `json:"material_category"`
	Quantity     domain.Quantity `json:"quantity"`
	UnitPrice    float64         `json:"unit_price"`
	MaterialCost float64         `json:"material_cost"`
}

// SalesEvent représente une vente d'un client pour un mois
type SalesEvent struct {
	Party
	ShipMonth   domain.Month    `json:"ship_month"`
	Quantity    domain.Quantity `json:"quantity"`
	UnitPrice   float64         `json:"unit_price"`
	SalesAmount float64         `json:"sales_amount"`
}

// PriceEntry est une ligne du référentiel de prix des matériels (lecture seule)
type PriceEntry struct {
	ProductCode string   `json:"product_code"`
	ProductName string   `json:"product_name"`
	Category    string   `json:"material_category"`
	UnitPrice   *float64 `json:"unit_price,omitempty"`
}

// Ledger regroupe les tables sources après dérivation des coûts et montants.
// Les tranches ne sont jamais modifiées par les étapes suivantes.
type Ledger struct {
	Materials []MaterialEvent
	Sales     []SalesEvent
	Prices    []PriceEntry
}

// Dimensions liste les valeurs distinctes disponibles pour le filtrage
type Dimensions struct {
	Regions      []string       `json:"regions"`
	Provinces    []string       `json:"provinces"`
	Months       []domain.Month `json:"months"`
	Categories   []string       `json:"categories"`
	Salespersons []string       `json:"salespersons"`
}

// Dimensions calcule les valeurs distinctes triées à partir des matériels
func (l *Ledger) Dimensions() Dimensions {
	regions := make(map[string]struct{})
	provinces := make(map[string]struct{})
	categories := make(map[string]struct{})
	salespersons := make(map[string]struct{})
	months := make(map[domain.Month]struct{})

	for _, m := range l.Materials {
		addNonEmpty(regions, m.Region)
		addNonEmpty(provinces, m.Province)
		addNonEmpty(categories, m.Category)
		addNonEmpty(salespersons, m.Salesperson)
		months[m.ShipMonth] = struct{}{}
	}

	monthList := make([]domain.Month, 0, len(months))
	for m := range months {
		monthList = append(monthList, m)
	}
	sort.Slice(monthList, func(i, j int) bool { return monthList[i].Before(monthList[j]) })

	return Dimensions{
		Regions:      sortedKeys(regions),
		Provinces:    sortedKeys(provinces),
		Months:       monthList,
		Categories:   sortedKeys(categories),
		Salespersons: sortedKeys(salespersons),
	}
}

// LatestMonth retourne le mois le plus récent des matériels (zéro si vide)
func (l *Ledger) LatestMonth() domain.Month {
	var latest domain.Month
	for _, m := range l.Materials {
		if latest.IsZero() || latest.Before(m.ShipMonth) {
			latest = m.ShipMonth
		}
	}
	return latest
}

func addNonEmpty(set map[string]struct{}, value string) {
	if value != "" {
		set[value] = struct{}{}
	}
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
