package application

import (
	"math"
	"sort"

	"materialroi/internal/analytics/domain"
	ledgerdomain "materialroi/internal/ledger/domain"
	shareddomain "materialroi/internal/shared/domain"
)

// productROILimit est le nombre de produits conservés dans le classement
const productROILimit = 15

// ComputeOverview calcule les indicateurs clés sur les grands livres filtrés
func ComputeOverview(materials []ledgerdomain.MaterialEvent, sales []ledgerdomain.SalesEvent) domain.Overview {
	var costTotal, revenueTotal float64
	for _, m := range materials {
		costTotal += m.MaterialCost
	}
	names := make(map[string]struct{})
	for _, s := range sales {
		revenueTotal += s.SalesAmount
		names[s.CustomerName] = struct{}{}
	}

	cost := shareddomain.Yuan(costTotal)
	revenue := shareddomain.Yuan(revenueTotal)
	roi := revenue.DivideBy(cost)
	ratio := cost.DivideBy(revenue) * 100

	return domain.Overview{
		MaterialCost:           cost,
		Sales:                  revenue,
		ROI:                    roi,
		CostRatioPct:           ratio,
		Distributors:           len(names),
		AvgCostPerDistributor:  cost.Per(len(names)).Rounded(),
		AvgSalesPerDistributor: revenue.Per(len(names)).Rounded(),
		ROIBand:                domain.ROIBand(roi),
		CostRatioBand:          domain.CostRatioBand(ratio),
	}
}

// MonthlyTrend joint coût et ventes par mois (jointure interne) dans l'ordre chronologique
func MonthlyTrend(materials []ledgerdomain.MaterialEvent, sales []ledgerdomain.SalesEvent) []domain.MonthlyPoint {
	costs := make(map[shareddomain.Month]float64)
	for _, m := range materials {
		costs[m.ShipMonth] += m.MaterialCost
	}
	revenue := make(map[shareddomain.Month]float64)
	for _, s := range sales {
		revenue[s.ShipMonth] += s.SalesAmount
	}

	points := make([]domain.MonthlyPoint, 0, len(costs))
	for month, cost := range costs {
		rev, ok := revenue[month]
		if !ok {
			continue
		}
		points = append(points, domain.MonthlyPoint{
			Month:        month,
			MaterialCost: cost,
			Sales:        rev,
			ROI:          domain.ComputeROI(rev, cost),
		})
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Month.Before(points[j].Month) })
	return points
}

// Forecasts projette les ventes et le ROI mensuels
func Forecasts(trend []domain.MonthlyPoint) []domain.Forecast {
	return []domain.Forecast{
		ForecastSeries("sales", trend, func(p domain.MonthlyPoint) float64 { return p.Sales }),
		ForecastSeries("roi", trend, func(p domain.MonthlyPoint) float64 { return p.ROI }),
	}
}

// allocatedROI est le ROI d'une ligne dont les ventes du mois sont réparties au prorata du coût
type allocatedROI struct {
	month shareddomain.Month
	key   string
	cost  float64
	roi   float64
}

// allocate répartit les ventes mensuelles entre les clés au prorata de leur coût matériel
func allocate(materials []ledgerdomain.MaterialEvent, sales []ledgerdomain.SalesEvent, keyOf func(ledgerdomain.MaterialEvent) string, roundShare bool) []allocatedROI {
	type cell struct {
		month shareddomain.Month
		key   string
	}
	costs := make(map[cell]float64)
	monthTotals := make(map[shareddomain.Month]float64)
	var order []cell
	for _, m := range materials {
		c := cell{month: m.ShipMonth, key: keyOf(m)}
		if _, seen := costs[c]; !seen {
			order = append(order, c)
		}
		costs[c] += m.MaterialCost
		monthTotals[m.ShipMonth] += m.MaterialCost
	}

	monthSales := make(map[shareddomain.Month]float64)
	for _, s := range sales {
		monthSales[s.ShipMonth] += s.SalesAmount
	}

	out := make([]allocatedROI, 0, len(order))
	for _, c := range order {
		rev, ok := monthSales[c.month]
		cost := costs[c]
		total := monthTotals[c.month]
		if !ok || cost <= 0 || total <= 0 {
			continue
		}
		share := cost / total
		if roundShare {
			share = math.Round(share*10000) / 10000
		}
		out = append(out, allocatedROI{month: c.month, key: c.key, cost: cost, roi: rev * share / cost})
	}
	return out
}

// CategoryROIRanking calcule le ROI moyen par catégorie, trié par ROI décroissant
func CategoryROIRanking(materials []ledgerdomain.MaterialEvent, sales []ledgerdomain.SalesEvent) []domain.CategoryROI {
	cells := allocate(materials, sales, func(m ledgerdomain.MaterialEvent) string { return m.Category }, false)

	values := make(map[string][]float64)
	for _, c := range cells {
		values[c.key] = append(values[c.key], c.roi)
	}

	out := make([]domain.CategoryROI, 0, len(values))
	for cat, rois := range values {
		insight, _ := domain.CategoryInsight(cat)
		out = append(out, domain.CategoryROI{Category: cat, ROI: Mean(rois), Insight: insight})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ROI != out[j].ROI {
			return out[i].ROI > out[j].ROI
		}
		return out[i].Category < out[j].Category
	})
	return out
}

// ProductROIRanking calcule le ROI moyen par produit (ROI mensuel arrondi à 2 décimales)
// et retourne les 15 meilleurs produits
func ProductROIRanking(materials []ledgerdomain.MaterialEvent, sales []ledgerdomain.SalesEvent) []domain.ProductROI {
	names := make(map[string]string)
	categories := make(map[string]string)
	for _, m := range materials {
		if _, ok := names[m.ProductCode]; !ok {
			names[m.ProductCode] = m.ProductName
		}
		if _, ok := categories[m.ProductCode]; !ok && m.Category != "" {
			categories[m.ProductCode] = m.Category
		}
	}

	cells := allocate(materials, sales, func(m ledgerdomain.MaterialEvent) string { return m.ProductCode }, true)
	values := make(map[string][]float64)
	for _, c := range cells {
		values[c.key] = append(values[c.key], math.Round(c.roi*100)/100)
	}

	out := make([]domain.ProductROI, 0, len(values))
	for code, rois := range values {
		cat, ok := categories[code]
		if !ok {
			cat = ledgerdomain.UncategorizedLabel
		}
		out = append(out, domain.ProductROI{
			ProductCode: code,
			ProductName: names[code],
			Category:    cat,
			ROI:         Mean(rois),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ROI != out[j].ROI {
			return out[i].ROI > out[j].ROI
		}
		return out[i].ProductCode < out[j].ProductCode
	})
	if len(out) > productROILimit {
		out = out[:productROILimit]
	}
	return out
}

// CategoryPairUsage mesure, pour chaque paire de catégories utilisées conjointement
// (part du coût du client > seuil), le ROI moyen des clients concernés.
// Contrairement au moteur de recommandations, un nombre minimal de clients est exigé.
func CategoryPairUsage(materials []ledgerdomain.MaterialEvent, metrics []domain.DistributorMetric, settings domain.PairUsageSettings) []domain.PairUsage {
	costs := make(map[string]map[string]float64)
	totals := make(map[string]float64)
	catSet := make(map[string]struct{})
	for _, m := range materials {
		byCat, ok := costs[m.CustomerID]
		if !ok {
			byCat = make(map[string]float64)
			costs[m.CustomerID] = byCat
		}
		byCat[m.Category] += m.MaterialCost
		totals[m.CustomerID] += m.MaterialCost
		catSet[m.Category] = struct{}{}
	}

	rois := make(map[string][]float64)
	for _, m := range metrics {
		rois[m.CustomerID] = append(rois[m.CustomerID], m.ROI)
	}
	customerROI := make(map[string]float64, len(rois))
	for id, values := range rois {
		customerROI[id] = Mean(values)
	}

	used := make(map[string]map[string]bool)
	for id, byCat := range costs {
		if _, ok := customerROI[id]; !ok || totals[id] <= 0 {
			continue
		}
		flags := make(map[string]bool)
		for cat, cost := range byCat {
			flags[cat] = cost/totals[id]*100 > settings.MinSharePct
		}
		used[id] = flags
	}

	categories := make([]string, 0, len(catSet))
	for c := range catSet {
		categories = append(categories, c)
	}
	sort.Strings(categories)

	var out []domain.PairUsage
	for i := 0; i < len(categories); i++ {
		for j := i + 1; j < len(categories); j++ {
			var values []float64
			for id, flags := range used {
				if flags[categories[i]] && flags[categories[j]] {
					values = append(values, customerROI[id])
				}
			}
			if len(values) < settings.MinDistributors {
				continue
			}
			out = append(out, domain.PairUsage{
				Pair:         domain.NewCategoryPair(categories[i], categories[j]),
				AvgROI:       math.Round(Mean(values)*100) / 100,
				Distributors: len(values),
			})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].AvgROI > out[j].AvgROI })
	if len(out) > settings.Limit {
		out = out[:settings.Limit]
	}
	return out
}

// scaleBucket décrit une tranche de ventes et la diversité recommandée
type scaleBucket struct {
	label  string
	floor  float64
	factor float64
}

var scaleBuckets = []scaleBucket{
	{label: "小规模", floor: 3, factor: 1.05},
	{label: "中小规模", floor: 5, factor: 1.1},
	{label: "中大规模", floor: 6, factor: 1.15},
	{label: "大规模", floor: 8, factor: 1.2},
}

// ScaleBuckets répartit les lignes par quartile de ventes (0, q25], (q25, q50], (q50, q75], (q75, ∞)
// et calcule la diversité de matériels recommandée par tranche.
// Les lignes sans vente n'appartiennent à aucune tranche.
func ScaleBuckets(metrics []domain.DistributorMetric) []domain.ScaleBucket {
	if len(metrics) == 0 {
		return nil
	}
	sales := make([]float64, len(metrics))
	for i, m := range metrics {
		sales[i] = m.SalesTotal
	}
	edges := []float64{Quantile(sales, 0.25), Quantile(sales, 0.5), Quantile(sales, 0.75), math.Inf(1)}

	type acc struct {
		roi, diversity, ratio []float64
	}
	groups := make([]acc, len(scaleBuckets))
	for _, m := range metrics {
		if m.SalesTotal <= 0 {
			continue
		}
		for b, edge := range edges {
			if m.SalesTotal <= edge {
				groups[b].roi = append(groups[b].roi, m.ROI)
				groups[b].diversity = append(groups[b].diversity, float64(m.MaterialDiversity))
				groups[b].ratio = append(groups[b].ratio, m.CostRatioPct)
				break
			}
		}
	}

	out := make([]domain.ScaleBucket, 0, len(scaleBuckets))
	for b, def := range scaleBuckets {
		g := groups[b]
		if len(g.roi) == 0 {
			continue
		}
		avgDiversity := Mean(g.diversity)
		out = append(out, domain.ScaleBucket{
			Label:                def.label,
			AvgROI:               Mean(g.roi),
			AvgDiversity:         avgDiversity,
			AvgCostRatioPct:      Mean(g.ratio),
			Distributors:         len(g.roi),
			RecommendedDiversity: int(math.RoundToEven(math.Max(def.floor, avgDiversity*def.factor))),
		})
	}
	return out
}

// RegionBreakdown agrège le ratio de coût par région (les lignes sans région sont ignorées)
func RegionBreakdown(metrics []domain.DistributorMetric) []domain.RegionStats {
	type acc struct {
		ratios      []float64
		cost, sales float64
		customers   map[string]struct{}
	}
	groups := make(map[string]*acc)
	for _, m := range metrics {
		if m.Region == "" {
			continue
		}
		g, ok := groups[m.Region]
		if !ok {
			g = &acc{customers: make(map[string]struct{})}
			groups[m.Region] = g
		}
		g.ratios = append(g.ratios, m.CostRatioPct)
		g.cost += m.MaterialCostTotal
		g.sales += m.SalesTotal
		g.customers[m.CustomerID] = struct{}{}
	}

	out := make([]domain.RegionStats, 0, len(groups))
	for region, g := range groups {
		out = append(out, domain.RegionStats{
			Region:              region,
			AvgCostRatioPct:     shareddomain.Round2(Mean(g.ratios)),
			MaterialCost:        g.cost,
			Sales:               g.sales,
			OverallCostRatioPct: shareddomain.Round2(domain.ComputeCostRatio(g.cost, g.sales)),
			Customers:           len(g.customers),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Region < out[j].Region })
	return out
}

// FilterMetrics restreint le tableau des distributeurs comme le tableau de bord:
// mois, nom, commercial, puis uniquement les clients présents dans les ventes filtrées.
func FilterMetrics(metrics []domain.DistributorMetric, f ledgerdomain.Filter, sales []ledgerdomain.SalesEvent) []domain.DistributorMetric {
	if f.IsEmpty() {
		return metrics
	}
	valid := make(map[string]struct{})
	for _, s := range sales {
		valid[s.CustomerID] = struct{}{}
	}

	out := make([]domain.DistributorMetric, 0, len(metrics))
	for _, m := range metrics {
		if !f.MatchDistributor(m.CustomerName, m.Salesperson, m.Month) {
			continue
		}
		if _, ok := valid[m.CustomerID]; !ok {
			continue
		}
		out = append(out, m)
	}
	return out
}
