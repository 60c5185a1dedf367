package infrastructure

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"

	"materialroi/internal/ledger/domain"
	shareddomain "materialroi/internal/shared/domain"
	sharedinfra "materialroi/internal/shared/infrastructure"
)

// insertBatchSize borne le nombre de lignes par INSERT multi-valeurs
const insertBatchSize = 500

type materialRecord struct {
	CustomerID   string          `db:"customer_id"`
	CustomerName string          `db:"customer_name"`
	Region       string          `db:"region"`
	Province     string          `db:"province"`
	Salesperson  string          `db:"salesperson"`
	ShipMonth    time.Time       `db:"ship_month"`
	ProductCode  string          `db:"product_code"`
	ProductName  string          `db:"product_name"`
	Category     string          `db:"material_category"`
	Quantity     int             `db:"quantity"`
	UnitPrice    sql.NullFloat64 `db:"unit_price"`
	MaterialCost sql.NullFloat64 `db:"material_cost"`
}

type salesRecord struct {
	CustomerID   string          `db:"customer_id"`
	CustomerName string          `db:"customer_name"`
	Region       string          `db:"region"`
	Province     string          `db:"province"`
	Salesperson  string          `db:"salesperson"`
	ShipMonth    time.Time       `db:"ship_month"`
	Quantity     int             `db:"quantity"`
	UnitPrice    float64         `db:"unit_price"`
	SalesAmount  sql.NullFloat64 `db:"sales_amount"`
}

type priceRecord struct {
	ProductCode string          `db:"product_code"`
	ProductName string          `db:"product_name"`
	Category    string          `db:"material_category"`
	UnitPrice   sql.NullFloat64 `db:"unit_price"`
}

// LedgerRepository lit et écrit les grands livres dans PostgreSQL.
// Une ligne dont le coût (ou le montant) est NULL est restituée comme ligne brute.
type LedgerRepository struct {
	sharedinfra.BaseRepository
	uow    sharedinfra.UnitOfWork
	logger zerolog.Logger
}

// NewLedgerRepository crée un nouveau repository
func NewLedgerRepository(db *sqlx.DB, logger zerolog.Logger) *LedgerRepository {
	return &LedgerRepository{
		BaseRepository: sharedinfra.NewBaseRepository(db),
		uow:            sharedinfra.NewUnitOfWork(db),
		logger:         logger.With().Str("component", "ledger_repository").Logger(),
	}
}

// Name retourne le nom de la source
func (r *LedgerRepository) Name() string {
	return "postgres"
}

// Load charge les trois tables en parallèle
func (r *LedgerRepository) Load(ctx context.Context) (domain.RawTables, error) {
	var tables domain.RawTables

	err := sharedinfra.RunAll(ctx, 3,
		func(ctx context.Context) error {
			rows, err := r.loadMaterials(ctx)
			tables.Materials = rows
			return err
		},
		func(ctx context.Context) error {
			rows, err := r.loadSales(ctx)
			tables.Sales = rows
			return err
		},
		func(ctx context.Context) error {
			rows, err := r.loadPrices(ctx)
			tables.Prices = rows
			return err
		},
	)
	if err != nil {
		return domain.RawTables{}, err
	}
	return tables, nil
}

func (r *LedgerRepository) loadMaterials(ctx context.Context) ([]domain.MaterialRow, error) {
	var records []materialRecord
	query := `
		SELECT customer_id, customer_name, region, province, salesperson, ship_month,
		       product_code, product_name, material_category, quantity, unit_price, material_cost
		FROM material_events
		ORDER BY id`
	if err := r.Select(ctx, &records, query); err != nil {
		return nil, fmt.Errorf("select material_events: %w", err)
	}

	rows := make([]domain.MaterialRow, 0, len(records))
	for i, rec := range records {
		q, err := shareddomain.NewQuantity(rec.Quantity)
		if err != nil {
			return nil, fmt.Errorf("material_events row %d: %w", i+1, err)
		}
		base := domain.MaterialBase{
			Party:       party(rec.CustomerID, rec.CustomerName, rec.Region, rec.Province, rec.Salesperson),
			ShipMonth:   shareddomain.MonthOf(rec.ShipMonth),
			ProductCode: rec.ProductCode,
			ProductName: rec.ProductName,
			Category:    rec.Category,
			Quantity:    q,
		}
		if rec.MaterialCost.Valid {
			rows = append(rows, domain.CostedMaterialRow{
				MaterialBase: base,
				UnitPrice:    rec.UnitPrice.Float64,
				MaterialCost: rec.MaterialCost.Float64,
			})
			continue
		}
		raw := domain.RawMaterialRow{MaterialBase: base}
		if rec.UnitPrice.Valid {
			price := rec.UnitPrice.Float64
			raw.UnitPrice = &price
		}
		rows = append(rows, raw)
	}
	return rows, nil
}

func (r *LedgerRepository) loadSales(ctx context.Context) ([]domain.SalesRow, error) {
	var records []salesRecord
	query := `
		SELECT customer_id, customer_name, region, province, salesperson, ship_month,
		       quantity, unit_price, sales_amount
		FROM sales_events
		ORDER BY id`
	if err := r.Select(ctx, &records, query); err != nil {
		return nil, fmt.Errorf("select sales_events: %w", err)
	}

	rows := make([]domain.SalesRow, 0, len(records))
	for i, rec := range records {
		q, err := shareddomain.NewQuantity(rec.Quantity)
		if err != nil {
			return nil, fmt.Errorf("sales_events row %d: %w", i+1, err)
		}
		base := domain.SalesBase{
			Party:     party(rec.CustomerID, rec.CustomerName, rec.Region, rec.Province, rec.Salesperson),
			ShipMonth: shareddomain.MonthOf(rec.ShipMonth),
			Quantity:  q,
			UnitPrice: rec.UnitPrice,
		}
		if rec.SalesAmount.Valid {
			rows = append(rows, domain.CostedSalesRow{SalesBase: base, SalesAmount: rec.SalesAmount.Float64})
			continue
		}
		rows = append(rows, domain.RawSalesRow{SalesBase: base})
	}
	return rows, nil
}

func (r *LedgerRepository) loadPrices(ctx context.Context) ([]domain.PriceEntry, error) {
	var records []priceRecord
	query := `
		SELECT product_code, product_name, material_category, unit_price
		FROM material_prices
		ORDER BY product_code`
	if err := r.Select(ctx, &records, query); err != nil {
		return nil, fmt.Errorf("select material_prices: %w", err)
	}

	entries := make([]domain.PriceEntry, len(records))
	for i, rec := range records {
		entries[i] = domain.PriceEntry{
			ProductCode: rec.ProductCode,
			ProductName: rec.ProductName,
			Category:    rec.Category,
		}
		if rec.UnitPrice.Valid {
			price := rec.UnitPrice.Float64
			entries[i].UnitPrice = &price
		}
	}
	return entries, nil
}

// Replace remplace le contenu des trois tables par le grand livre fourni, dans une transaction
func (r *LedgerRepository) Replace(ctx context.Context, ledger *domain.Ledger) error {
	return r.uow.Execute(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, `TRUNCATE material_events, sales_events, material_prices RESTART IDENTITY`); err != nil {
			return fmt.Errorf("truncate ledger tables: %w", err)
		}

		prices := make([]priceRecord, len(ledger.Prices))
		for i, p := range ledger.Prices {
			prices[i] = priceRecord{ProductCode: p.ProductCode, ProductName: p.ProductName, Category: p.Category}
			if p.UnitPrice != nil {
				prices[i].UnitPrice = sql.NullFloat64{Float64: *p.UnitPrice, Valid: true}
			}
		}
		if err := insertBatches(ctx, tx, `
			INSERT INTO material_prices (product_code, product_name, material_category, unit_price)
			VALUES (:product_code, :product_name, :material_category, :unit_price)`, prices); err != nil {
			return fmt.Errorf("insert material_prices: %w", err)
		}

		materials := make([]materialRecord, len(ledger.Materials))
		for i, m := range ledger.Materials {
			materials[i] = materialRecord{
				CustomerID:   m.CustomerID,
				CustomerName: m.CustomerName,
				Region:       m.Region,
				Province:     m.Province,
				Salesperson:  m.Salesperson,
				ShipMonth:    m.ShipMonth.Start(),
				ProductCode:  m.ProductCode,
				ProductName:  m.ProductName,
				Category:     m.Category,
				Quantity:     m.Quantity.Value(),
				UnitPrice:    sql.NullFloat64{Float64: m.UnitPrice, Valid: true},
				MaterialCost: sql.NullFloat64{Float64: m.MaterialCost, Valid: true},
			}
		}
		if err := insertBatches(ctx, tx, `
			INSERT INTO material_events (customer_id, customer_name, region, province, salesperson, ship_month,
				product_code, product_name, material_category, quantity, unit_price, material_cost)
			VALUES (:customer_id, :customer_name, :region, :province, :salesperson, :ship_month,
				:product_code, :product_name, :material_category, :quantity, :unit_price, :material_cost)`, materials); err != nil {
			return fmt.Errorf("insert material_events: %w", err)
		}

		sales := make([]salesRecord, len(ledger.Sales))
		for i, s := range ledger.Sales {
			sales[i] = salesRecord{
				CustomerID:   s.CustomerID,
				CustomerName: s.CustomerName,
				Region:       s.Region,
				Province:     s.Province,
				Salesperson:  s.Salesperson,
				ShipMonth:    s.ShipMonth.Start(),
				Quantity:     s.Quantity.Value(),
				UnitPrice:    s.UnitPrice,
				SalesAmount:  sql.NullFloat64{Float64: s.SalesAmount, Valid: true},
			}
		}
		if err := insertBatches(ctx, tx, `
			INSERT INTO sales_events (customer_id, customer_name, region, province, salesperson, ship_month,
				quantity, unit_price, sales_amount)
			VALUES (:customer_id, :customer_name, :region, :province, :salesperson, :ship_month,
				:quantity, :unit_price, :sales_amount)`, sales); err != nil {
			return fmt.Errorf("insert sales_events: %w", err)
		}

		r.logger.Info().
			Int("materials", len(materials)).
			Int("sales", len(sales)).
			Int("prices", len(prices)).
			Msg("ledger replaced")
		return nil
	})
}

func insertBatches[T any](ctx context.Context, tx *sqlx.Tx, query string, records []T) error {
	for start := 0; start < len(records); start += insertBatchSize {
		end := start + insertBatchSize
		if end > len(records) {
			end = len(records)
		}
		if _, err := tx.NamedExecContext(ctx, query, records[start:end]); err != nil {
			return err
		}
	}
	return nil
}

func party(id, name, region, province, salesperson string) domain.Party {
	return domain.Party{
		CustomerID:   id,
		CustomerName: name,
		Region:       region,
		Province:     province,
		Salesperson:  salesperson,
	}
}
