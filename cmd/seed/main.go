package main

import (
	"context"
	"os"
	"os/signal"
	"time"

	"materialroi/database"
	"materialroi/internal/config"
	"materialroi/internal/sample"
	"materialroi/internal/shared/domain"
	"materialroi/internal/telemetry"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fallback := telemetry.NewLogger("info", true)
		fallback.Fatal().Err(err).Msg("invalid configuration")
	}
	logger := telemetry.NewLogger(cfg.LogLevel, true)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	db, err := database.Open(ctx, cfg.DB.DSN())
	if err != nil {
		logger.Fatal().Err(err).Msg("database connection failed")
	}
	defer db.Close()

	end := domain.MonthOf(time.Now())
	if cfg.SampleEnd != "" {
		if end, err = domain.ParseMonth(cfg.SampleEnd); err != nil {
			logger.Fatal().Err(err).Msg("invalid SAMPLE_END_MONTH")
		}
	}

	logger.Info().Str("end_month", end.String()).Msg("seeding sample ledger")
	if err := database.SeedDatabase(ctx, db, sample.DefaultConfig(end), logger); err != nil {
		logger.Fatal().Err(err).Msg("seed failed")
	}
	logger.Info().Msg("seed completed, start the server with DATA_SOURCE=postgres")
}
