package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"bizhealth/internal/anomaly"
	"bizhealth/internal/normalize"
	"bizhealth/internal/pipeline"
	"bizhealth/internal/quality"
	"bizhealth/pkg/domain"
	dErrors "bizhealth/pkg/domain-errors"
	audit "bizhealth/pkg/platform/audit"
	"bizhealth/pkg/platform/httputil"
	request "bizhealth/pkg/platform/middleware/request"
)

const (
	maxBodyBytes     = 1 << 20
	maxResponses     = 2000
	maxScanRuns      = 100
	defaultListLimit = 20
	maxListLimit     = 200
)

type NormalizeService interface {
	NormalizeAll(responses []normalize.RawResponse, nctx normalize.Context) []normalize.NormalizedScore
}

type AuditService interface {
	Get(ctx context.Context, runID domain.RunID) (quality.PipelineQualityAudit, error)
}

type AuditLister interface {
	ListRecent(ctx context.Context, kind audit.Kind, statuses []string, limit int) ([]audit.Event, error)
}

type RunService interface {
	Run(ctx context.Context, runID domain.RunID, obs pipeline.Observations) (pipeline.Result, error)
}

type AnomalyService interface {
	CheckAndSave(ctx context.Context, runID domain.RunID) (anomaly.Report, string, error)
	Scan(ctx context.Context, runIDs []domain.RunID) ([]anomaly.Report, error)
	Get(ctx context.Context, runID domain.RunID) (anomaly.Report, error)
}

//go:generate mockgen -source=handlers.go -destination=mocks/mocks.go -package=mocks AuditService,RunService,AnomalyService

// Handler is the thin HTTP layer over the scoring services.
type Handler struct {
	normalize NormalizeService
	audits    AuditService
	lister    AuditLister
	runs      RunService
	anomalies AnomalyService
	logger    *slog.Logger
}

type normalizeRequest struct {
	Responses []normalize.RawResponse `json:"responses"`
	Context   normalize.Context       `json:"context"`
}

type normalizeResponse struct {
	Scores []normalize.NormalizedScore `json:"scores"`
}

func (h *Handler) handleNormalize(w http.ResponseWriter, r *http.Request) {
	if h.normalize == nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnavailable, "normalization is not configured"))
		return
	}
	var req normalizeRequest
	if err := httputil.DecodeJSON(w, r, maxBodyBytes, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	if len(req.Responses) > maxResponses {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "too many responses in one request"))
		return
	}
	scores := h.normalize.NormalizeAll(req.Responses, req.Context)
	httputil.WriteJSON(w, http.StatusOK, normalizeResponse{Scores: scores})
}

func (h *Handler) handleGetAudit(w http.ResponseWriter, r *http.Request) {
	runID, ok := h.runID(w, r)
	if !ok {
		return
	}
	if h.audits == nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnavailable, "audits are not configured"))
		return
	}
	a, err := h.audits.Get(r.Context(), runID)
	if err != nil {
		h.fail(w, r, "get audit", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, a)
}

type auditListItem struct {
	RunID      domain.RunID `json:"run_id"`
	Status     string       `json:"status"`
	RecordedAt string       `json:"recorded_at"`
}

func (h *Handler) handleListAudits(w http.ResponseWriter, r *http.Request) {
	if h.lister == nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnavailable, "audit listing requires durable storage"))
		return
	}
	limit := defaultListLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > maxListLimit {
			httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "limit must be between 1 and 200"))
			return
		}
		limit = n
	}
	var statuses []string
	for _, s := range strings.Split(r.URL.Query().Get("status"), ",") {
		s = strings.ToUpper(strings.TrimSpace(s))
		if s == "" {
			continue
		}
		switch quality.AuditStatus(s) {
		case quality.StatusPass, quality.StatusNeedsReview, quality.StatusFail:
			statuses = append(statuses, s)
		default:
			httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "unknown audit status "+s))
			return
		}
	}

	events, err := h.lister.ListRecent(r.Context(), audit.KindQualityAudit, statuses, limit)
	if err != nil {
		h.fail(w, r, "list audits", err)
		return
	}
	items := make([]auditListItem, 0, len(events))
	for _, ev := range events {
		items = append(items, auditListItem{
			RunID:      ev.RunID,
			Status:     ev.Status,
			RecordedAt: ev.Timestamp.Format(time.RFC3339),
		})
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"audits": items})
}

func (h *Handler) handleRunAudit(w http.ResponseWriter, r *http.Request) {
	runID, ok := h.runID(w, r)
	if !ok {
		return
	}
	if h.runs == nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnavailable, "run auditing is not configured"))
		return
	}
	var obs pipeline.Observations
	if err := httputil.DecodeJSON(w, r, maxBodyBytes, &obs); err != nil {
		httputil.WriteError(w, err)
		return
	}
	res, err := h.runs.Run(r.Context(), runID, obs)
	if err != nil {
		h.fail(w, r, "run audit", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, res)
}

type anomalyCheckResponse struct {
	Report anomaly.Report `json:"report"`
	Path   string         `json:"path,omitempty"`
}

func (h *Handler) handleCheckAnomalies(w http.ResponseWriter, r *http.Request) {
	runID, ok := h.runID(w, r)
	if !ok {
		return
	}
	if h.anomalies == nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnavailable, "anomaly detection is not configured"))
		return
	}
	report, path, err := h.anomalies.CheckAndSave(r.Context(), runID)
	if err != nil {
		h.fail(w, r, "check anomalies", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, anomalyCheckResponse{Report: report, Path: path})
}

func (h *Handler) handleGetAnomalyReport(w http.ResponseWriter, r *http.Request) {
	runID, ok := h.runID(w, r)
	if !ok {
		return
	}
	if h.anomalies == nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnavailable, "anomaly detection is not configured"))
		return
	}
	report, err := h.anomalies.Get(r.Context(), runID)
	if err != nil {
		h.fail(w, r, "get anomaly report", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, report)
}

type scanRequest struct {
	RunIDs []string `json:"run_ids"`
}

type scanResponse struct {
	Reports []anomaly.Report `json:"reports"`
	Failed  int              `json:"failed"`
	Skipped int              `json:"skipped"`
}

func (h *Handler) handleScan(w http.ResponseWriter, r *http.Request) {
	if h.anomalies == nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnavailable, "anomaly detection is not configured"))
		return
	}
	var req scanRequest
	if err := httputil.DecodeJSON(w, r, maxBodyBytes, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	if len(req.RunIDs) == 0 || len(req.RunIDs) > maxScanRuns {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "run_ids must list between 1 and 100 runs"))
		return
	}
	ids := make([]domain.RunID, 0, len(req.RunIDs))
	for _, raw := range req.RunIDs {
		id, err := domain.ParseRunID(strings.TrimSpace(raw))
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		ids = append(ids, id)
	}

	reports, err := h.anomalies.Scan(r.Context(), ids)
	if err != nil {
		h.fail(w, r, "scan anomalies", err)
		return
	}
	resp := scanResponse{Reports: reports}
	for _, rep := range reports {
		switch rep.Outcome() {
		case "failed":
			resp.Failed++
		case "skipped":
			resp.Skipped++
		}
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) runID(w http.ResponseWriter, r *http.Request) (domain.RunID, bool) {
	id, err := domain.ParseRunID(chi.URLParam(r, "runID"))
	if err != nil {
		httputil.WriteError(w, err)
		return "", false
	}
	return id, true
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	if dErrors.CodeOf(err) == dErrors.CodeInternal {
		h.logger.ErrorContext(r.Context(), op+" failed",
			"error", err,
			"request_id", request.GetRequestID(r.Context()),
		)
	}
	httputil.WriteError(w, err)
}
