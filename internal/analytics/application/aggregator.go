package application

import (
	"sort"

	"materialroi/internal/analytics/domain"
	ledgerdomain "materialroi/internal/ledger/domain"
	shareddomain "materialroi/internal/shared/domain"
)

// MaterialCostByKey somme material_cost par (client, nom, mois, commercial)
func MaterialCostByKey(materials []ledgerdomain.MaterialEvent) map[domain.DistributorKey]float64 {
	out := make(map[domain.DistributorKey]float64)
	for _, m := range materials {
		out[keyOf(m.Party, m.ShipMonth)] += m.MaterialCost
	}
	return out
}

// SalesByKey somme sales_amount par (client, nom, mois, commercial)
func SalesByKey(sales []ledgerdomain.SalesEvent) map[domain.DistributorKey]float64 {
	out := make(map[domain.DistributorKey]float64)
	for _, s := range sales {
		out[keyOf(s.Party, s.ShipMonth)] += s.SalesAmount
	}
	return out
}

// MaterialDiversity compte les codes produit distincts par (client, mois)
func MaterialDiversity(materials []ledgerdomain.MaterialEvent) map[domain.CustomerMonth]int {
	seen := make(map[domain.CustomerMonth]map[string]struct{})
	for _, m := range materials {
		k := domain.CustomerMonth{CustomerID: m.CustomerID, Month: m.ShipMonth}
		codes, ok := seen[k]
		if !ok {
			codes = make(map[string]struct{})
			seen[k] = codes
		}
		codes[m.ProductCode] = struct{}{}
	}

	out := make(map[domain.CustomerMonth]int, len(seen))
	for k, codes := range seen {
		out[k] = len(codes)
	}
	return out
}

// location est la région/province retenue pour un client
type location struct {
	region   string
	province string
}

// locationLookup retient, par client, la première région et la première province non vides
func locationLookup(materials []ledgerdomain.MaterialEvent) map[string]location {
	out := make(map[string]location)
	for _, m := range materials {
		loc := out[m.CustomerID]
		if loc.region == "" {
			loc.region = m.Region
		}
		if loc.province == "" {
			loc.province = m.Province
		}
		out[m.CustomerID] = loc
	}
	return out
}

// Aggregate construit le tableau des distributeurs (sans segment).
// Jointure externe: chaque clé présente d'un seul côté reçoit 0 pour l'autre côté.
// Le nombre de lignes est |clés(matériels) ∪ clés(ventes)|, triées par clé.
func Aggregate(materials []ledgerdomain.MaterialEvent, sales []ledgerdomain.SalesEvent) []domain.DistributorMetric {
	costs := MaterialCostByKey(materials)
	revenue := SalesByKey(sales)

	keys := make([]domain.DistributorKey, 0, len(costs)+len(revenue))
	for k := range costs {
		keys = append(keys, k)
	}
	for k := range revenue {
		if _, dup := costs[k]; !dup {
			keys = append(keys, k)
		}
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Less(keys[j]) })

	diversity := MaterialDiversity(materials)
	locations := locationLookup(materials)

	metrics := make([]domain.DistributorMetric, 0, len(keys))
	for _, k := range keys {
		m := domain.NewDistributorMetric(k, costs[k], revenue[k])
		m.MaterialDiversity = diversity[domain.CustomerMonth{CustomerID: k.CustomerID, Month: k.Month}]
		if loc, ok := locations[k.CustomerID]; ok {
			m.Region = loc.region
			m.Province = loc.province
		}
		metrics = append(metrics, m)
	}
	return metrics
}

func keyOf(p ledgerdomain.Party, month shareddomain.Month) domain.DistributorKey {
	return domain.DistributorKey{
		CustomerID:   p.CustomerID,
		CustomerName: p.CustomerName,
		Month:        month,
		Salesperson:  p.Salesperson,
	}
}
