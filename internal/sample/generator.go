// Package sample génère un jeu de données de démonstration reproductible
package sample

import (
	"context"
	"fmt"
	"math"
	"math/rand"

	ledgerdomain "materialroi/internal/ledger/domain"
	"materialroi/internal/shared/domain"
)

// DefaultSeed garantit un jeu de démonstration identique d'une exécution à l'autre
const DefaultSeed = 42

var regions = []string{"华东", "华南", "华北", "华中", "西南", "西北", "东北"}

var provinces = map[string][]string{
	"华东": {"上海", "江苏", "浙江", "安徽", "福建", "江西", "山东"},
	"华南": {"广东", "广西", "海南"},
	"华北": {"北京", "天津", "河北", "山西", "内蒙古"},
	"华中": {"河南", "湖北", "湖南"},
	"西南": {"重庆", "四川", "贵州", "云南", "西藏"},
	"西北": {"陕西", "甘肃", "青海", "宁夏", "新疆"},
	"东北": {"辽宁", "吉林", "黑龙江"},
}

var categories = []string{"促销物料", "陈列物料", "宣传物料", "赠品", "包装物料"}

// Config paramètre le générateur
type Config struct {
	Seed         int64
	Customers    int
	Months       int
	Materials    int
	Salespersons int
	// End est le dernier mois généré
	End domain.Month
}

// DefaultConfig retourne la configuration de démonstration se terminant au mois end
func DefaultConfig(end domain.Month) Config {
	return Config{
		Seed:         DefaultSeed,
		Customers:    50,
		Months:       12,
		Materials:    30,
		Salespersons: 10,
		End:          end,
	}
}

// Generator produit des tables déjà chiffrées
type Generator struct {
	cfg Config
}

// NewGenerator crée un générateur
func NewGenerator(cfg Config) (*Generator, error) {
	if cfg.Customers <= 0 || cfg.Months <= 0 || cfg.Materials < 8 || cfg.Salespersons <= 0 || cfg.Salespersons > 26 {
		return nil, fmt.Errorf("invalid sample config: %+v", cfg)
	}
	if cfg.End.IsZero() {
		return nil, fmt.Errorf("sample end month is required")
	}
	return &Generator{cfg: cfg}, nil
}

// Name retourne le nom de la source
func (g *Generator) Name() string {
	return "sample"
}

// Load génère les tables; le résultat ne dépend que de la configuration
func (g *Generator) Load(ctx context.Context) (ledgerdomain.RawTables, error) {
	if err := ctx.Err(); err != nil {
		return ledgerdomain.RawTables{}, err
	}
	return g.Generate(), nil
}

type customer struct {
	party ledgerdomain.Party
}

type material struct {
	code     string
	name     string
	category string
	price    float64
}

// Generate construit les trois tables
func (g *Generator) Generate() ledgerdomain.RawTables {
	rng := rand.New(rand.NewSource(g.cfg.Seed))

	salespersons := make([]string, g.cfg.Salespersons)
	for i := range salespersons {
		salespersons[i] = fmt.Sprintf("销售员%c", 'A'+i)
	}

	customers := make([]customer, g.cfg.Customers)
	for i := range customers {
		region := regions[rng.Intn(len(regions))]
		options := provinces[region]
		customers[i] = customer{party: ledgerdomain.Party{
			CustomerID:   fmt.Sprintf("C%03d", i+1),
			CustomerName: fmt.Sprintf("经销商%03d", i+1),
			Region:       region,
			Province:     options[rng.Intn(len(options))],
			Salesperson:  salespersons[rng.Intn(len(salespersons))],
		}}
	}

	materials := make([]material, g.cfg.Materials)
	for i := range materials {
		materials[i] = material{
			code:     fmt.Sprintf("M%03d", i+1),
			name:     fmt.Sprintf("物料%03d", i+1),
			category: categories[rng.Intn(len(categories))],
			price:    domain.Round2(10 + rng.Float64()*190),
		}
	}

	months := make([]domain.Month, g.cfg.Months)
	for i := range months {
		months[i] = g.cfg.End.AddMonths(i - g.cfg.Months + 1)
	}

	var tables ledgerdomain.RawTables
	for _, m := range materials {
		price := m.price
		tables.Prices = append(tables.Prices, ledgerdomain.PriceEntry{
			ProductCode: m.code,
			ProductName: m.name,
			Category:    m.category,
			UnitPrice:   &price,
		})
	}

	for _, month := range months {
		for _, c := range customers {
			used := 3 + rng.Intn(6)
			var monthCost float64
			for _, idx := range rng.Perm(len(materials))[:used] {
				mat := materials[idx]
				qty := int(math.Max(1, math.Trunc(rng.NormFloat64()*30+100)))
				cost := domain.Round2(float64(qty) * mat.price)
				monthCost += cost
				tables.Materials = append(tables.Materials, ledgerdomain.CostedMaterialRow{
					MaterialBase: ledgerdomain.MaterialBase{
						Party:       c.party,
						ShipMonth:   month,
						ProductCode: mat.code,
						ProductName: mat.name,
						Category:    mat.category,
						Quantity:    domain.MustNewQuantity(qty),
					},
					UnitPrice:    mat.price,
					MaterialCost: cost,
				})
			}

			roiFactor := 0.5 + rng.Float64()*2.5
			pricePerBox := 300 + rng.Float64()*500
			salesQty := int(math.RoundToEven(monthCost * roiFactor / pricePerBox))
			if salesQty <= 0 {
				continue
			}
			tables.Sales = append(tables.Sales, ledgerdomain.CostedSalesRow{
				SalesBase: ledgerdomain.SalesBase{
					Party:     c.party,
					ShipMonth: month,
					Quantity:  domain.MustNewQuantity(salesQty),
					UnitPrice: domain.Round2(pricePerBox),
				},
				SalesAmount: domain.Round2(float64(salesQty) * pricePerBox),
			})
		}
	}
	return tables
}
