package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"materialroi/internal/telemetry"
)

// NewRouter enregistre les routes de l'API et l'endpoint /metrics
func NewRouter(h *Handlers, metrics *telemetry.Metrics, logger zerolog.Logger) *mux.Router {
	r := mux.NewRouter()
	r.Use(instrument(metrics, logger))

	r.HandleFunc("/api/health", h.Health).Methods(http.MethodGet)
	r.HandleFunc("/api/report", h.GetReport).Methods(http.MethodGet)
	r.HandleFunc("/api/distributors", h.GetDistributors).Methods(http.MethodGet)
	r.HandleFunc("/api/recommendations", h.GetRecommendations).Methods(http.MethodGet)
	r.HandleFunc("/api/strategies", h.GetStrategies).Methods(http.MethodGet)
	r.HandleFunc("/api/overview", h.GetOverview).Methods(http.MethodGet)
	r.HandleFunc("/api/reference", h.GetReference).Methods(http.MethodGet)
	r.HandleFunc("/api/export/{type}", h.Export).Methods(http.MethodGet)
	r.HandleFunc("/api/cache/invalidate", h.InvalidateCache).Methods(http.MethodPost)
	r.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)

	return r
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// instrument journalise chaque requête et compte les réponses par route
func instrument(metrics *telemetry.Metrics, logger zerolog.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)

			route := r.URL.Path
			if current := mux.CurrentRoute(r); current != nil {
				if tpl, err := current.GetPathTemplate(); err == nil {
					route = tpl
				}
			}
			metrics.HTTPRequests.WithLabelValues(route, strconv.Itoa(rec.status)).Inc()
			logger.Debug().
				Str("method", r.Method).
				Str("route", route).
				Int("status", rec.status).
				Dur("duration", time.Since(start)).
				Msg("http request")
		})
	}
}
