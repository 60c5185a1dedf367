package domain

import (
	"sort"
	"strings"

	"materialroi/internal/shared/domain"
)

// Filter restreint les grands livres comme les sélecteurs du tableau de bord.
// Une liste vide signifie "tout"; un mois zéro signifie "tous les mois".
type Filter struct {
	Regions      []string     `json:"regions,omitempty"`
	Provinces    []string     `json:"provinces,omitempty"`
	Month        domain.Month `json:"month"`
	Categories   []string     `json:"categories,omitempty"`
	Salespersons []string     `json:"salespersons,omitempty"`
	Distributors []string     `json:"distributors,omitempty"`
}

// IsEmpty indique si le filtre laisse tout passer
func (f Filter) IsEmpty() bool {
	return len(f.Regions) == 0 && len(f.Provinces) == 0 && f.Month.IsZero() &&
		len(f.Categories) == 0 && len(f.Salespersons) == 0 && len(f.Distributors) == 0
}

// MatchMaterial applique région, province, mois, catégorie et commercial
func (f Filter) MatchMaterial(e MaterialEvent) bool {
	return f.matchParty(e.Party) && f.matchMonth(e.ShipMonth) && contains(f.Categories, e.Category)
}

// MatchSales applique région, province, mois et commercial
func (f Filter) MatchSales(e SalesEvent) bool {
	return f.matchParty(e.Party) && f.matchMonth(e.ShipMonth)
}

// MatchDistributor applique mois, nom de distributeur et commercial
func (f Filter) MatchDistributor(name, salesperson string, month domain.Month) bool {
	return f.matchMonth(month) && contains(f.Distributors, name) && contains(f.Salespersons, salesperson)
}

// Key retourne une représentation canonique du filtre, utilisée comme clé de cache
func (f Filter) Key() string {
	if f.IsEmpty() {
		return "all"
	}
	parts := []string{
		"r=" + joinSorted(f.Regions),
		"p=" + joinSorted(f.Provinces),
		"m=" + f.Month.String(),
		"c=" + joinSorted(f.Categories),
		"s=" + joinSorted(f.Salespersons),
		"d=" + joinSorted(f.Distributors),
	}
	return strings.Join(parts, ";")
}

func (f Filter) matchParty(p Party) bool {
	return contains(f.Regions, p.Region) &&
		contains(f.Provinces, p.Province) &&
		contains(f.Salespersons, p.Salesperson)
}

func (f Filter) matchMonth(m domain.Month) bool {
	return f.Month.IsZero() || f.Month == m
}

func contains(allowed []string, value string) bool {
	if len(allowed) == 0 {
		return true
	}
	for _, a := range allowed {
		if a == value {
			return true
		}
	}
	return false
}

func joinSorted(values []string) string {
	sorted := append([]string(nil), values...)
	sort.Strings(sorted)
	return strings.Join(sorted, ",")
}
