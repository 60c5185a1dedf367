// Package api expose les rapports d'efficacité des matériels en HTTP
package api

import (
	"context"
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	analyticsapp "materialroi/internal/analytics/application"
	analyticsdomain "materialroi/internal/analytics/domain"
	exportapp "materialroi/internal/export/application"
	exportdomain "materialroi/internal/export/domain"
	ledgerdomain "materialroi/internal/ledger/domain"
)

// Analyzer fournit les rapports
type Analyzer interface {
	Report(ctx context.Context, q analyticsapp.Query) (*analyticsdomain.Report, error)
	InvalidateCache(ctx context.Context) error
}

// Exporter produit les fichiers d'export
type Exporter interface {
	Export(ctx context.Context, job *exportdomain.ExportJob) (*exportapp.ExportFile, error)
}

// Handlers contient tous les handlers de l'API
type Handlers struct {
	analyzer Analyzer
	exporter Exporter
	logger   zerolog.Logger
}

// NewHandlers crée une nouvelle instance des handlers
func NewHandlers(analyzer Analyzer, exporter Exporter, logger zerolog.Logger) *Handlers {
	return &Handlers{
		analyzer: analyzer,
		exporter: exporter,
		logger:   logger.With().Str("component", "api").Logger(),
	}
}

// Health handler pour GET /api/health
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetReport handler pour GET /api/report
func (h *Handlers) GetReport(w http.ResponseWriter, r *http.Request) {
	report, ok := h.report(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// GetDistributors handler pour GET /api/distributors (?segment= pour restreindre à un segment)
func (h *Handlers) GetDistributors(w http.ResponseWriter, r *http.Request) {
	var segment analyticsdomain.ValueSegment
	if raw := r.URL.Query().Get("segment"); raw != "" {
		parsed, err := analyticsdomain.ParseValueSegment(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		segment = parsed
	}

	report, ok := h.report(w, r)
	if !ok {
		return
	}

	rows := report.Distributors
	if segment != "" {
		rows = make([]analyticsdomain.DistributorMetric, 0, len(report.Distributors))
		for _, m := range report.Distributors {
			if m.Segment == segment {
				rows = append(rows, m)
			}
		}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"run_id":       report.RunID,
		"thresholds":   report.Thresholds,
		"count":        len(rows),
		"distributors": rows,
	})
}

// GetRecommendations handler pour GET /api/recommendations
func (h *Handlers) GetRecommendations(w http.ResponseWriter, r *http.Request) {
	report, ok := h.report(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"run_id":          report.RunID,
		"recommendations": report.Recommendations,
		"pair_usage":      report.PairUsage,
	})
}

// GetStrategies handler pour GET /api/strategies
func (h *Handlers) GetStrategies(w http.ResponseWriter, r *http.Request) {
	report, ok := h.report(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"run_id":        report.RunID,
		"strategies":    report.Strategies,
		"segment_stats": report.SegmentStats,
	})
}

// GetOverview handler pour GET /api/overview
func (h *Handlers) GetOverview(w http.ResponseWriter, r *http.Request) {
	report, ok := h.report(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"run_id":        report.RunID,
		"overview":      report.Overview,
		"monthly_trend": report.MonthlyTrend,
		"forecasts":     report.Forecasts,
	})
}

// GetReference handler pour GET /api/reference
func (h *Handlers) GetReference(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"definitions":       analyticsdomain.BusinessDefinitions(),
		"category_insights": analyticsdomain.CategoryInsights(),
	})
}

// Export handler pour GET /api/export/{type}?format=csv|parquet
func (h *Handlers) Export(w http.ResponseWriter, r *http.Request) {
	format, err := exportdomain.ParseExportFormat(r.URL.Query().Get("format"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	q, err := parseQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	job, err := exportdomain.NewExportJob(format, exportdomain.ExportType(mux.Vars(r)["type"]), q.Sample, q.Filter)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	file, err := h.exporter.Export(r.Context(), job)
	if err != nil {
		h.fail(w, err)
		return
	}

	w.Header().Set("Content-Type", file.ContentType)
	w.Header().Set("Content-Disposition", contentDisposition(file.Name))
	w.Header().Set("Content-Length", strconv.Itoa(len(file.Data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(file.Data)
}

// InvalidateCache handler pour POST /api/cache/invalidate
func (h *Handlers) InvalidateCache(w http.ResponseWriter, r *http.Request) {
	if err := h.analyzer.InvalidateCache(r.Context()); err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}

func (h *Handlers) report(w http.ResponseWriter, r *http.Request) (*analyticsdomain.Report, bool) {
	q, err := parseQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return nil, false
	}
	report, err := h.analyzer.Report(r.Context(), q)
	if err != nil {
		h.fail(w, err)
		return nil, false
	}
	return report, true
}

// fail associe les erreurs du pipeline à un code HTTP
func (h *Handlers) fail(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ledgerdomain.ErrMissingPriceReference):
		h.logger.Error().Err(err).Msg("price reference unusable")
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, analyticsapp.ErrSampleUnavailable):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, exportdomain.ErrUnsupportedExport):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, context.Canceled):
		writeError(w, http.StatusRequestTimeout, "request canceled")
	default:
		h.logger.Error().Err(err).Msg("request failed")
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

// contentDisposition construit l'en-tête de téléchargement avec un nom de fichier correctement échappé
func contentDisposition(name string) string {
	if v := mime.FormatMediaType("attachment", map[string]string{"filename": name}); v != "" {
		return v
	}
	return "attachment"
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
