package application

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"materialroi/internal/analytics/domain"
	ledgerapp "materialroi/internal/ledger/application"
	ledgerdomain "materialroi/internal/ledger/domain"
	shareddomain "materialroi/internal/shared/domain"
	sharedinfra "materialroi/internal/shared/infrastructure"
	"materialroi/internal/telemetry"
)

// ErrSampleUnavailable est retourné quand un rapport de démonstration est demandé sans générateur
var ErrSampleUnavailable = errors.New("sample source is not configured")

// LedgerSource fournit les tables brutes (CSV, PostgreSQL ou démonstration)
type LedgerSource interface {
	Name() string
	Load(ctx context.Context) (ledgerdomain.RawTables, error)
}

// ReportCache conserve les rapports calculés par clé
type ReportCache interface {
	Get(ctx context.Context, key string) (*domain.Report, bool, error)
	Set(ctx context.Context, key string, report *domain.Report) error
	Clear(ctx context.Context) error
}

// Query décrit une demande de rapport
type Query struct {
	Sample bool
	Filter ledgerdomain.Filter
}

// CacheKey retourne la clé `report:sample:<yes|no>:<filtre>`
func (q Query) CacheKey() string {
	return sharedinfra.NewCacheKeyBuilder().
		Add("report").
		Add("sample").
		AddFlag(q.Sample).
		Add(q.Filter.Key()).
		Build()
}

// AnalysisService charge les grands livres, exécute le pipeline et met les rapports en cache
type AnalysisService struct {
	primary  LedgerSource
	sample   LedgerSource
	deriver  *ledgerapp.Deriver
	settings domain.Settings
	cache    ReportCache
	metrics  *telemetry.Metrics
	logger   zerolog.Logger
	now      func() time.Time
}

// NewAnalysisService crée le service; sample peut être nil
func NewAnalysisService(
	primary LedgerSource,
	sample LedgerSource,
	settings domain.Settings,
	cache ReportCache,
	metrics *telemetry.Metrics,
	logger zerolog.Logger,
) *AnalysisService {
	if metrics == nil {
		metrics = telemetry.NewMetrics()
	}
	return &AnalysisService{
		primary:  primary,
		sample:   sample,
		deriver:  ledgerapp.NewDeriver(logger),
		settings: settings,
		cache:    cache,
		metrics:  metrics,
		logger:   logger.With().Str("component", "analysis_service").Logger(),
		now:      time.Now,
	}
}

// Settings retourne les seuils utilisés
func (s *AnalysisService) Settings() domain.Settings {
	return s.settings
}

// Report retourne le rapport de la requête, depuis le cache si possible
func (s *AnalysisService) Report(ctx context.Context, q Query) (*domain.Report, error) {
	key := q.CacheKey()
	if s.cache != nil {
		cached, found, err := s.cache.Get(ctx, key)
		switch {
		case err != nil:
			s.logger.Warn().Err(err).Str("key", key).Msg("report cache read failed")
			s.metrics.CacheLookups.WithLabelValues("error").Inc()
		case found:
			s.metrics.CacheLookups.WithLabelValues("hit").Inc()
			return cached, nil
		default:
			s.metrics.CacheLookups.WithLabelValues("miss").Inc()
		}
	}

	report, err := s.Run(ctx, q)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, report); err != nil {
			s.logger.Warn().Err(err).Str("key", key).Msg("report cache write failed")
		}
	}
	return report, nil
}

// Run exécute le pipeline complet sans consulter le cache
func (s *AnalysisService) Run(ctx context.Context, q Query) (*domain.Report, error) {
	source := s.primary
	if q.Sample {
		if s.sample == nil {
			return nil, ErrSampleUnavailable
		}
		source = s.sample
	}

	runID := uuid.NewString()
	logger := s.logger.With().Str("run_id", runID).Str("source", source.Name()).Logger()
	start := time.Now()

	report, err := s.run(ctx, source, q, logger)
	s.metrics.RunDuration.WithLabelValues(source.Name()).Observe(time.Since(start).Seconds())
	if err != nil {
		s.metrics.RunsTotal.WithLabelValues(source.Name(), "error").Inc()
		logger.Error().Err(err).Msg("analysis run failed")
		return nil, err
	}
	s.metrics.RunsTotal.WithLabelValues(source.Name(), "success").Inc()

	report.RunID = runID
	report.GeneratedAt = s.now().UTC()
	report.Sample = q.Sample

	logger.Info().
		Int("distributors", len(report.Distributors)).
		Int("recommendations", len(report.Recommendations)).
		Dur("duration", time.Since(start)).
		Msg("analysis run completed")
	return report, nil
}

// InvalidateCache vide le cache des rapports
func (s *AnalysisService) InvalidateCache(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.Clear(ctx)
}

func (s *AnalysisService) run(ctx context.Context, source LedgerSource, q Query, logger zerolog.Logger) (*domain.Report, error) {
	stage := time.Now()
	raw, err := source.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load ledger from %s: %w", source.Name(), err)
	}
	s.metrics.ObserveStage("load", stage)
	s.metrics.LedgerRows.WithLabelValues("materials").Set(float64(len(raw.Materials)))
	s.metrics.LedgerRows.WithLabelValues("sales").Set(float64(len(raw.Sales)))
	s.metrics.LedgerRows.WithLabelValues("prices").Set(float64(len(raw.Prices)))

	stage = time.Now()
	ledger, err := s.deriver.Derive(raw)
	if err != nil {
		return nil, err
	}
	s.metrics.ObserveStage("derive", stage)

	logger.Debug().
		Int("materials", len(ledger.Materials)).
		Int("sales", len(ledger.Sales)).
		Msg("ledger ready")

	report, err := Analyze(ctx, ledger, q.Filter, s.settings, s.metrics)
	if err != nil {
		return nil, err
	}
	s.metrics.Distributors.Set(float64(len(report.Distributors)))
	s.metrics.Recommendation.Set(float64(len(report.Recommendations)))
	return report, nil
}

// Analyze construit le rapport à partir d'un grand livre dérivé; metrics peut être nil.
// La segmentation utilise la population complète; les vues sont ensuite restreintes par le filtre.
// Les vues indépendantes sont calculées en parallèle sur le pool de workers.
func Analyze(ctx context.Context, ledger *ledgerdomain.Ledger, f ledgerdomain.Filter, settings domain.Settings, metrics *telemetry.Metrics) (*domain.Report, error) {
	stage := time.Now()
	all, thresholds := SegmentAll(Aggregate(ledger.Materials, ledger.Sales), settings)
	metrics.ObserveStage("aggregate", stage)

	filtered := ledgerapp.Apply(ledger, f)
	trendFilter := f
	trendFilter.Month = shareddomain.Month{}
	trendLedger := ledgerapp.Apply(ledger, trendFilter)
	distributors := FilterMetrics(all, f, filtered.Sales)

	report := &domain.Report{
		Filter:       f,
		Dimensions:   ledger.Dimensions(),
		Thresholds:   thresholds,
		Distributors: distributors,
	}

	timed := func(name string, fn func()) sharedinfra.Task {
		return func(context.Context) error {
			start := time.Now()
			fn()
			metrics.ObserveStage(name, start)
			return nil
		}
	}

	err := sharedinfra.RunAll(ctx, runtime.NumCPU(),
		timed("recommend", func() {
			report.Recommendations = Recommend(filtered.Materials, filtered.Sales, settings.Recommendation)
		}),
		timed("advise", func() {
			report.Strategies = Advise(distributors)
			report.SegmentStats = SegmentStatistics(distributors)
		}),
		timed("overview", func() {
			report.Overview = ComputeOverview(filtered.Materials, filtered.Sales)
		}),
		timed("trend", func() {
			report.MonthlyTrend = MonthlyTrend(trendLedger.Materials, trendLedger.Sales)
			report.Forecasts = Forecasts(report.MonthlyTrend)
		}),
		timed("category_roi", func() {
			report.CategoryROI = CategoryROIRanking(filtered.Materials, filtered.Sales)
			report.ProductROI = ProductROIRanking(filtered.Materials, filtered.Sales)
		}),
		timed("pair_usage", func() {
			report.PairUsage = CategoryPairUsage(filtered.Materials, distributors, settings.PairUsage)
		}),
		timed("scale", func() {
			report.ScaleBuckets = ScaleBuckets(distributors)
			report.RegionStats = RegionBreakdown(distributors)
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("analyze: %w", err)
	}
	return report, nil
}
