package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"

	ledgerapp "materialroi/internal/ledger/application"
	ledgerinfra "materialroi/internal/ledger/infrastructure"
	"materialroi/internal/sample"
)

// SeedDatabase remplace le contenu des grands livres par le jeu de démonstration
func SeedDatabase(ctx context.Context, db *sqlx.DB, cfg sample.Config, logger zerolog.Logger) error {
	if err := EnsureSchema(ctx, db); err != nil {
		return err
	}

	gen, err := sample.NewGenerator(cfg)
	if err != nil {
		return err
	}
	raw, err := gen.Load(ctx)
	if err != nil {
		return fmt.Errorf("generate sample: %w", err)
	}

	ledger, err := ledgerapp.NewDeriver(logger).Derive(raw)
	if err != nil {
		return fmt.Errorf("derive sample: %w", err)
	}

	repo := ledgerinfra.NewLedgerRepository(db, logger)
	if err := repo.Replace(ctx, ledger); err != nil {
		return fmt.Errorf("store sample: %w", err)
	}

	if _, err := db.ExecContext(ctx, "ANALYZE material_events, sales_events, material_prices"); err != nil {
		logger.Warn().Err(err).Msg("analyze failed")
	}
	return nil
}
