// Package bootstrap assemble les dépendances communes au serveur HTTP et à la CLI
package bootstrap

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"

	"materialroi/database"
	analyticsapp "materialroi/internal/analytics/application"
	analyticsinfra "materialroi/internal/analytics/infrastructure"
	"materialroi/internal/config"
	exportapp "materialroi/internal/export/application"
	ledgerinfra "materialroi/internal/ledger/infrastructure"
	"materialroi/internal/sample"
	"materialroi/internal/shared/domain"
	sharedinfra "materialroi/internal/shared/infrastructure"
	"materialroi/internal/telemetry"
)

// App regroupe les services prêts à l'emploi
type App struct {
	Config   *config.Config
	Logger   zerolog.Logger
	Metrics  *telemetry.Metrics
	Analysis *analyticsapp.AnalysisService
	Export   *exportapp.ExportService

	closers []func() error
}

// New construit l'application à partir de la configuration
func New(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*App, error) {
	app := &App{
		Config:  cfg,
		Logger:  logger,
		Metrics: telemetry.NewMetrics(),
	}

	sampleSource, err := newSampleSource(cfg)
	if err != nil {
		return nil, err
	}

	var primary analyticsapp.LedgerSource
	switch cfg.Source {
	case config.SourceSample:
		primary = sampleSource
	case config.SourceCSV:
		primary = ledgerinfra.NewCSVSource(cfg.CSV.MaterialPath, cfg.CSV.SalesPath, cfg.CSV.PricePath, logger)
	case config.SourcePostgres:
		db, err := database.Open(ctx, cfg.DB.DSN())
		if err != nil {
			return nil, err
		}
		app.closers = append(app.closers, db.Close)
		primary = newPostgresSource(db, logger)
	default:
		return nil, fmt.Errorf("unknown data source %q", cfg.Source)
	}

	cache, err := app.newCache(ctx)
	if err != nil {
		app.Close()
		return nil, err
	}
	reports := analyticsinfra.NewReportCache(cache, cfg.Cache.TTL)

	app.Analysis = analyticsapp.NewAnalysisService(primary, sampleSource, cfg.Settings, reports, app.Metrics, logger)
	app.Export = exportapp.NewExportService(app.Analysis, runtime.NumCPU(), 1000, logger)

	logger.Info().
		Str("source", primary.Name()).
		Str("cache", cfg.Cache.Backend).
		Msg("application ready")
	return app, nil
}

// Close libère les connexions ouvertes
func (a *App) Close() error {
	var first error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil && first == nil {
			first = err
		}
	}
	a.closers = nil
	return first
}

func (a *App) newCache(ctx context.Context) (sharedinfra.Cache, error) {
	switch a.Config.Cache.Backend {
	case config.CacheNone:
		return sharedinfra.NopCache{}, nil
	case config.CacheRedis:
		client := redis.NewClient(&redis.Options{Addr: a.Config.Cache.RedisAddr, DB: a.Config.Cache.RedisDB})
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, fmt.Errorf("connect redis %s: %w", a.Config.Cache.RedisAddr, err)
		}
		a.closers = append(a.closers, client.Close)
		return sharedinfra.NewRedisCache(client, a.Config.Cache.Prefix), nil
	default:
		sharded, err := sharedinfra.NewShardedCache(a.Config.Cache.Shards, time.Minute)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func() error {
			sharded.Close()
			return nil
		})
		return sharded, nil
	}
}

func newSampleSource(cfg *config.Config) (*sample.Generator, error) {
	end := domain.MonthOf(time.Now())
	if cfg.SampleEnd != "" {
		parsed, err := domain.ParseMonth(cfg.SampleEnd)
		if err != nil {
			return nil, fmt.Errorf("invalid SAMPLE_END_MONTH: %w", err)
		}
		end = parsed
	}
	return sample.NewGenerator(sample.DefaultConfig(end))
}

func newPostgresSource(db *sqlx.DB, logger zerolog.Logger) analyticsapp.LedgerSource {
	return ledgerinfra.NewLedgerRepository(db, logger)
}
