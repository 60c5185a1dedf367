package application

import (
	"math"
	"sort"

	"materialroi/internal/analytics/domain"
	ledgerdomain "materialroi/internal/ledger/domain"
)

// CategoryShare est la part d'une catégorie dans le coût matériel d'un enregistrement
type CategoryShare struct {
	Category string  `json:"category"`
	Cost     float64 `json:"cost"`
	SharePct float64 `json:"share_pct"`
}

// HighROIRecord est un couple (client, mois) historique à ROI élevé
type HighROIRecord struct {
	Key            domain.CustomerMonth
	MaterialCost   float64
	Sales          float64
	ROI            float64
	TopCategories  []CategoryShare
	CompositeScore float64
}

// Categories retourne les noms des catégories principales, dans l'ordre des parts
func (r HighROIRecord) Categories() []string {
	out := make([]string, len(r.TopCategories))
	for i, c := range r.TopCategories {
		out[i] = c.Category
	}
	return out
}

// CompositeScore = roi × ln(1 + ventes): récompense l'efficacité et amortit la taille
func CompositeScore(roi, sales float64) float64 {
	return roi * math.Log1p(sales)
}

// HighROIRecords sélectionne les enregistrements (client, mois) présents des deux côtés
// dont le ROI dépasse le seuil, plafonnés dans l'ordre de la table (client, mois).
func HighROIRecords(materials []ledgerdomain.MaterialEvent, sales []ledgerdomain.SalesEvent, settings domain.RecommendationSettings) []HighROIRecord {
	costs := make(map[domain.CustomerMonth]float64)
	byKey := make(map[domain.CustomerMonth][]ledgerdomain.MaterialEvent)
	for _, m := range materials {
		k := domain.CustomerMonth{CustomerID: m.CustomerID, Month: m.ShipMonth}
		costs[k] += m.MaterialCost
		byKey[k] = append(byKey[k], m)
	}

	revenue := make(map[domain.CustomerMonth]float64)
	for _, s := range sales {
		revenue[domain.CustomerMonth{CustomerID: s.CustomerID, Month: s.ShipMonth}] += s.SalesAmount
	}

	// jointure interne
	keys := make([]domain.CustomerMonth, 0, len(costs))
	for k := range costs {
		if _, ok := revenue[k]; ok {
			keys = append(keys, k)
		}
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Less(keys[j]) })

	records := make([]HighROIRecord, 0, settings.RecordCap)
	for _, k := range keys {
		if len(records) >= settings.RecordCap {
			break
		}
		cost := costs[k]
		if cost <= 0 {
			continue
		}
		roi := revenue[k] / cost
		if roi <= settings.MinROI {
			continue
		}

		top := topCategoryShares(byKey[k], settings.TopCategories)
		if len(top) == 0 {
			continue
		}
		records = append(records, HighROIRecord{
			Key:            k,
			MaterialCost:   cost,
			Sales:          revenue[k],
			ROI:            roi,
			TopCategories:  top,
			CompositeScore: CompositeScore(roi, revenue[k]),
		})
	}
	return records
}

// topCategoryShares regroupe les matériels par catégorie et garde les n plus grosses parts
func topCategoryShares(events []ledgerdomain.MaterialEvent, n int) []CategoryShare {
	totals := make(map[string]float64)
	var sum float64
	for _, e := range events {
		totals[e.Category] += e.MaterialCost
		sum += e.MaterialCost
	}
	if sum <= 0 {
		return nil
	}

	shares := make([]CategoryShare, 0, len(totals))
	for cat, cost := range totals {
		shares = append(shares, CategoryShare{Category: cat, Cost: cost, SharePct: cost / sum * 100})
	}
	sort.Slice(shares, func(i, j int) bool {
		if shares[i].SharePct != shares[j].SharePct {
			return shares[i].SharePct > shares[j].SharePct
		}
		return shares[i].Category < shares[j].Category
	})
	if len(shares) > n {
		shares = shares[:n]
	}
	return shares
}

// PairROI est le ROI moyen observé pour une paire de catégories
type PairROI struct {
	Pair         domain.CategoryPair
	AvgROI       float64
	Observations int
}

// RankPairs énumère les paires non ordonnées des catégories principales de chaque
// enregistrement et retourne les limit meilleures par ROI moyen.
// Aucun nombre minimal d'observations n'est exigé: une paire vue une fois peut être première.
func RankPairs(records []HighROIRecord, limit int) []PairROI {
	sums := make(map[domain.CategoryPair]float64)
	counts := make(map[domain.CategoryPair]int)
	var order []domain.CategoryPair

	for _, r := range records {
		cats := r.Categories()
		for i := 0; i < len(cats); i++ {
			for j := i + 1; j < len(cats); j++ {
				pair := domain.NewCategoryPair(cats[i], cats[j])
				if _, seen := counts[pair]; !seen {
					order = append(order, pair)
				}
				sums[pair] += r.ROI
				counts[pair]++
			}
		}
	}

	ranked := make([]PairROI, 0, len(order))
	for _, pair := range order {
		ranked = append(ranked, PairROI{
			Pair:         pair,
			AvgROI:       sums[pair] / float64(counts[pair]),
			Observations: counts[pair],
		})
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].AvgROI > ranked[j].AvgROI })
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

// Recommend produit la liste classée des recommandations de combinaisons.
// Ne retourne jamais d'erreur ni de liste vide: sans historique à ROI élevé,
// une unique entrée "données insuffisantes" est retournée.
func Recommend(materials []ledgerdomain.MaterialEvent, sales []ledgerdomain.SalesEvent, settings domain.RecommendationSettings) []domain.CombinationRecommendation {
	records := HighROIRecords(materials, sales, settings)
	if len(records) == 0 {
		return []domain.CombinationRecommendation{domain.InsufficientDataRecommendation()}
	}

	pairs := RankPairs(records, settings.TopPairs)

	byScore := append([]HighROIRecord(nil), records...)
	sort.SliceStable(byScore, func(i, j int) bool { return byScore[i].CompositeScore > byScore[j].CompositeScore })
	if len(byScore) > settings.TopRecords {
		byScore = byScore[:settings.TopRecords]
	}

	recommendations := make([]domain.CombinationRecommendation, 0, len(byScore)+len(pairs))
	used := make(map[string]struct{})
	seenSets := make(map[string]struct{})

	for i, r := range byScore {
		cats := r.Categories()
		if len(cats) > 2 {
			cats = cats[:2]
		}
		rec := domain.NewRecordRecommendation(i+1, cats, r.ROI, r.CompositeScore)
		if _, dup := seenSets[rec.CategorySetKey()]; dup {
			continue
		}
		seenSets[rec.CategorySetKey()] = struct{}{}
		for _, c := range cats {
			used[c] = struct{}{}
		}
		recommendations = append(recommendations, rec)
	}

	// la numérotation continue même lorsqu'un enregistrement ou une paire est écarté
	rank := len(byScore) + 1
	for _, p := range pairs {
		_, firstUsed := used[p.Pair.First]
		_, secondUsed := used[p.Pair.Second]
		if firstUsed && secondUsed {
			rank++
			continue
		}
		rec := domain.NewPairRecommendation(rank, p.Pair, p.AvgROI)
		rank++
		seenSets[rec.CategorySetKey()] = struct{}{}
		used[p.Pair.First] = struct{}{}
		used[p.Pair.Second] = struct{}{}
		recommendations = append(recommendations, rec)
	}

	return recommendations
}
