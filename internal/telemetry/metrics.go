package telemetry

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics regroupe les collecteurs du pipeline sur un registre dédié
type Metrics struct {
	registry *prometheus.Registry

	RunsTotal      *prometheus.CounterVec
	RunDuration    *prometheus.HistogramVec
	StageDuration  *prometheus.HistogramVec
	CacheLookups   *prometheus.CounterVec
	LedgerRows     *prometheus.GaugeVec
	Distributors   prometheus.Gauge
	Recommendation prometheus.Gauge
	HTTPRequests   *prometheus.CounterVec
}

// NewMetrics crée et enregistre tous les collecteurs
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		RunsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "materialroi",
				Subsystem: "pipeline",
				Name:      "runs_total",
				Help:      "Total number of analysis runs by source and result",
			},
			[]string{"source", "result"},
		),
		RunDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "materialroi",
				Subsystem: "pipeline",
				Name:      "run_duration_seconds",
				Help:      "Duration of full analysis runs in seconds",
				Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
			},
			[]string{"source"},
		),
		StageDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "materialroi",
				Subsystem: "pipeline",
				Name:      "stage_duration_seconds",
				Help:      "Duration of each pipeline stage in seconds",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
			},
			[]string{"stage"},
		),
		CacheLookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "materialroi",
				Subsystem: "cache",
				Name:      "lookups_total",
				Help:      "Report cache lookups by result",
			},
			[]string{"result"},
		),
		LedgerRows: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "materialroi",
				Subsystem: "ledger",
				Name:      "rows",
				Help:      "Rows loaded in the last run by table",
			},
			[]string{"table"},
		),
		Distributors: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "materialroi",
				Subsystem: "analytics",
				Name:      "distributor_rows",
				Help:      "Distributor metric rows produced by the last run",
			},
		),
		Recommendation: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "materialroi",
				Subsystem: "analytics",
				Name:      "recommendations",
				Help:      "Combination recommendations produced by the last run",
			},
		),
		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "materialroi",
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "HTTP requests by route and status code",
			},
			[]string{"route", "code"},
		),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.RunsTotal,
		m.RunDuration,
		m.StageDuration,
		m.CacheLookups,
		m.LedgerRows,
		m.Distributors,
		m.Recommendation,
		m.HTTPRequests,
	)
	return m
}

// Registry retourne le registre, utile pour les tests
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler expose le registre au format Prometheus
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveStage mesure la durée d'une étape depuis start; sans effet sur un Metrics nil
func (m *Metrics) ObserveStage(stage string, start time.Time) {
	if m == nil {
		return
	}
	m.StageDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
}
