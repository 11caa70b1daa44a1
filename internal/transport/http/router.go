package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	jwttoken "bizhealth/internal/jwt_token"
	"bizhealth/internal/platform/metrics"
	"bizhealth/pkg/platform/httputil"
	authmw "bizhealth/pkg/platform/middleware/auth"
	request "bizhealth/pkg/platform/middleware/request"
)

// HealthCheck probes one backing service.
type HealthCheck func(ctx context.Context) error

// Deps are the collaborators the router needs. Nil services disable their
// routes' behaviour but keep the routes registered.
type Deps struct {
	Normalize NormalizeService
	Audits    AuditService
	Lister    AuditLister
	Runs      RunService
	Anomalies AnomalyService

	Validator authmw.JWTValidator
	Gatherer  prometheus.Gatherer
	Metrics   *metrics.Metrics
	Checks    map[string]HealthCheck
	Logger    *slog.Logger
}

// NewRouter wires all public endpoints. Handlers stay thin and delegate to
// the domain services.
func NewRouter(d Deps) http.Handler {
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}
	gatherer := d.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	h := &Handler{
		normalize: d.Normalize,
		audits:    d.Audits,
		lister:    d.Lister,
		runs:      d.Runs,
		anomalies: d.Anomalies,
		logger:    logger,
	}

	r := chi.NewRouter()
	r.Use(request.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(d.Metrics.Middleware)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/readyz", readiness(d.Checks))
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	r.Route("/v1", func(r chi.Router) {
		r.Use(authmw.RequireAuth(d.Validator, logger))

		r.With(authmw.RequireScope(jwttoken.ScopeNormalize, logger)).
			Post("/normalize", h.handleNormalize)

		r.Group(func(r chi.Router) {
			r.Use(authmw.RequireScope(jwttoken.ScopeAuditsRead, logger))
			r.Get("/audits", h.handleListAudits)
			r.Get("/audits/{runID}", h.handleGetAudit)
			r.Get("/runs/{runID}/anomalies", h.handleGetAnomalyReport)
		})

		r.Group(func(r chi.Router) {
			r.Use(authmw.RequireScope(jwttoken.ScopeAnomalyScan, logger))
			r.Post("/runs/{runID}/audit", h.handleRunAudit)
			r.Post("/runs/{runID}/anomalies", h.handleCheckAnomalies)
			r.Post("/anomalies/scan", h.handleScan)
		})
	})
	return r
}

func readiness(checks map[string]HealthCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		result := map[string]string{}
		for name, check := range checks {
			if check == nil {
				continue
			}
			if err := check(ctx); err != nil {
				status = http.StatusServiceUnavailable
				result[name] = err.Error()
				continue
			}
			result[name] = "ok"
		}
		httputil.WriteJSON(w, status, result)
	}
}
