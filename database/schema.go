package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// schema crée les trois tables des grands livres.
// Un coût ou un montant NULL désigne une ligne brute à chiffrer lors de l'analyse.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS material_prices (
		product_code      TEXT PRIMARY KEY,
		product_name      TEXT NOT NULL DEFAULT '',
		material_category TEXT NOT NULL DEFAULT '',
		unit_price        NUMERIC(12, 2) CHECK (unit_price >= 0)
	)`,
	`CREATE TABLE IF NOT EXISTS material_events (
		id                BIGSERIAL PRIMARY KEY,
		customer_id       TEXT NOT NULL,
		customer_name     TEXT NOT NULL,
		region            TEXT NOT NULL DEFAULT '',
		province          TEXT NOT NULL DEFAULT '',
		salesperson       TEXT NOT NULL,
		ship_month        DATE NOT NULL,
		product_code      TEXT NOT NULL,
		product_name      TEXT NOT NULL DEFAULT '',
		material_category TEXT NOT NULL DEFAULT '',
		quantity          INTEGER NOT NULL CHECK (quantity >= 0),
		unit_price        NUMERIC(12, 2) CHECK (unit_price >= 0),
		material_cost     NUMERIC(14, 2) CHECK (material_cost >= 0)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_material_events_customer_month ON material_events (customer_id, ship_month)`,
	`CREATE TABLE IF NOT EXISTS sales_events (
		id            BIGSERIAL PRIMARY KEY,
		customer_id   TEXT NOT NULL,
		customer_name TEXT NOT NULL,
		region        TEXT NOT NULL DEFAULT '',
		province      TEXT NOT NULL DEFAULT '',
		salesperson   TEXT NOT NULL,
		ship_month    DATE NOT NULL,
		quantity      INTEGER NOT NULL CHECK (quantity >= 0),
		unit_price    NUMERIC(12, 2) NOT NULL CHECK (unit_price >= 0),
		sales_amount  NUMERIC(14, 2) CHECK (sales_amount >= 0)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_sales_events_customer_month ON sales_events (customer_id, ship_month)`,
}

// EnsureSchema crée les tables absentes
func EnsureSchema(ctx context.Context, db *sqlx.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}
