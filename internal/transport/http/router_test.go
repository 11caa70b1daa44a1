package httptransport

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"bizhealth/internal/anomaly"
	jwttoken "bizhealth/internal/jwt_token"
	"bizhealth/internal/normalize"
	"bizhealth/internal/pipeline"
	"bizhealth/internal/platform/metrics"
	"bizhealth/internal/quality"
	"bizhealth/internal/transport/http/mocks"
	"bizhealth/pkg/domain"
	dErrors "bizhealth/pkg/domain-errors"
	audit "bizhealth/pkg/platform/audit"
	auditmemory "bizhealth/pkg/platform/audit/store/memory"
	"bizhealth/pkg/platform/sentinel"
	"bizhealth/pkg/testutil"
)

const testRunID = domain.RunID("BH-20240115-093000")

type RouterSuite struct {
	suite.Suite
	ctrl      *gomock.Controller
	audits    *mocks.MockAuditService
	runs      *mocks.MockRunService
	anomalies *mocks.MockAnomalyService
	lister    *auditmemory.InMemoryStore
	jwt       *jwttoken.JWTService
	router    http.Handler
}

func TestRouterSuite(t *testing.T) {
	suite.Run(t, new(RouterSuite))
}

func (s *RouterSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.audits = mocks.NewMockAuditService(s.ctrl)
	s.runs = mocks.NewMockRunService(s.ctrl)
	s.anomalies = mocks.NewMockAnomalyService(s.ctrl)
	s.lister = auditmemory.NewInMemoryStore()
	s.jwt = jwttoken.NewJWTService("test-signing-key", "bizhealth-test", "bizhealth-api")

	reg := prometheus.NewRegistry()
	s.router = NewRouter(Deps{
		Normalize: normalize.Default(),
		Audits:    s.audits,
		Lister:    s.lister,
		Runs:      s.runs,
		Anomalies: s.anomalies,
		Validator: jwttoken.NewJWTServiceAdapter(s.jwt),
		Gatherer:  reg,
		Metrics:   metrics.New(reg),
		Checks: map[string]HealthCheck{
			"storage": func(context.Context) error { return nil },
		},
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
}

func (s *RouterSuite) token(scopes ...string) string {
	tok, err := s.jwt.GenerateServiceToken("scoring-worker", scopes, time.Minute)
	s.Require().NoError(err)
	return tok
}

func (s *RouterSuite) do(method, path string, body any, token string) *httptest.ResponseRecorder {
	return testutil.Serve(s.router, testutil.NewJSONRequest(s.T(), method, path, body, token))
}

func (s *RouterSuite) TestHealthAndReadiness() {
	rec := s.do(http.MethodGet, "/healthz", nil, "")
	s.Equal(http.StatusOK, rec.Code)
	s.NotEmpty(rec.Header().Get("X-Request-ID"))

	rec = s.do(http.MethodGet, "/readyz", nil, "")
	s.Equal(http.StatusOK, rec.Code)
	s.Equal(map[string]string{"storage": "ok"}, testutil.DecodeJSON[map[string]string](s.T(), rec))
}

func (s *RouterSuite) TestReadinessReportsFailingCheck() {
	router := NewRouter(Deps{
		Checks: map[string]HealthCheck{
			"redis": func(context.Context) error { return errors.New("connection refused") },
		},
		Gatherer: prometheus.NewRegistry(),
	})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	s.Equal(http.StatusServiceUnavailable, rec.Code)
	s.Equal("connection refused", testutil.DecodeJSON[map[string]string](s.T(), rec)["redis"])
}

func (s *RouterSuite) TestAuthentication() {
	s.Run("missing token", func() {
		rec := s.do(http.MethodGet, "/v1/audits/"+string(testRunID), nil, "")
		s.Equal(http.StatusUnauthorized, rec.Code)
	})
	s.Run("garbage token", func() {
		rec := s.do(http.MethodGet, "/v1/audits/"+string(testRunID), nil, "not-a-jwt")
		s.Equal(http.StatusUnauthorized, rec.Code)
	})
	s.Run("missing scope", func() {
		rec := s.do(http.MethodGet, "/v1/audits/"+string(testRunID), nil, s.token(jwttoken.ScopeNormalize))
		s.Equal(http.StatusForbidden, rec.Code)
	})
}

func (s *RouterSuite) TestNormalize() {
	body := map[string]any{
		"responses": []map[string]any{
			{"question_id": "FIN-01", "response_type": "currency", "value": "$85,000"},
			{"question_id": "STR-01", "response_type": "scale", "value": 4},
			{"question_id": "OPS-02", "response_type": "yesno", "value": "maybe"},
		},
		"context": map[string]any{"company_revenue": 1000000},
	}
	rec := s.do(http.MethodPost, "/v1/normalize", body, s.token(jwttoken.ScopeNormalize))
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())

	resp := testutil.DecodeJSON[normalizeResponse](s.T(), rec)
	s.Require().Len(resp.Scores, 3)
	s.Equal("FIN-01", resp.Scores[0].QuestionID)
	s.Equal(75.0, resp.Scores[1].Score)
	s.Equal(0.0, resp.Scores[2].Score)
}

func (s *RouterSuite) TestNormalizeRejectsUnknownFields() {
	body := map[string]any{"responses": []any{}, "tenant": "acme"}
	rec := s.do(http.MethodPost, "/v1/normalize", body, s.token(jwttoken.ScopeNormalize))
	s.Equal(http.StatusBadRequest, rec.Code)
}

func (s *RouterSuite) TestGetAudit() {
	read := s.token(jwttoken.ScopeAuditsRead)

	s.Run("found", func() {
		s.audits.EXPECT().Get(gomock.Any(), testRunID).Return(quality.PipelineQualityAudit{
			RunID:  testRunID,
			Status: quality.StatusNeedsReview,
		}, nil)
		rec := s.do(http.MethodGet, "/v1/audits/"+string(testRunID), nil, read)
		s.Require().Equal(http.StatusOK, rec.Code)
		got := testutil.DecodeJSON[quality.PipelineQualityAudit](s.T(), rec)
		s.Equal(quality.StatusNeedsReview, got.Status)
	})

	s.Run("not found", func() {
		s.audits.EXPECT().Get(gomock.Any(), testRunID).
			Return(quality.PipelineQualityAudit{}, dErrors.Wrap(sentinel.ErrNotFound, dErrors.CodeNotFound, "no audit for run"))
		rec := s.do(http.MethodGet, "/v1/audits/"+string(testRunID), nil, read)
		s.Equal(http.StatusNotFound, rec.Code)
	})

	s.Run("malformed run id", func() {
		rec := s.do(http.MethodGet, "/v1/audits/run-42", nil, read)
		s.Equal(http.StatusBadRequest, rec.Code)
	})

	s.Run("internal error hides detail", func() {
		s.audits.EXPECT().Get(gomock.Any(), testRunID).
			Return(quality.PipelineQualityAudit{}, errors.New("disk on fire"))
		rec := s.do(http.MethodGet, "/v1/audits/"+string(testRunID), nil, read)
		s.Equal(http.StatusInternalServerError, rec.Code)
		s.NotContains(rec.Body.String(), "disk on fire")
	})
}

func (s *RouterSuite) TestListAudits() {
	ctx := context.Background()
	now := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)
	for i, status := range []quality.AuditStatus{quality.StatusPass, quality.StatusFail, quality.StatusPass} {
		runID := domain.NewRunID(now.Add(time.Duration(i) * time.Minute))
		ev, err := audit.NewEvent(audit.KindQualityAudit, runID, string(status), map[string]string{"status": string(status)}, now)
		s.Require().NoError(err)
		s.Require().NoError(s.lister.Publish(ctx, ev))
	}
	read := s.token(jwttoken.ScopeAuditsRead)

	rec := s.do(http.MethodGet, "/v1/audits?status=pass&limit=10", nil, read)
	s.Require().Equal(http.StatusOK, rec.Code)
	var resp struct {
		Audits []auditListItem `json:"audits"`
	}
	s.Require().NoError(json.NewDecoder(rec.Body).Decode(&resp))
	s.Require().Len(resp.Audits, 2)
	s.Equal("BH-20240115-100200", string(resp.Audits[0].RunID))

	rec = s.do(http.MethodGet, "/v1/audits?status=BROKEN", nil, read)
	s.Equal(http.StatusBadRequest, rec.Code)

	rec = s.do(http.MethodGet, "/v1/audits?limit=0", nil, read)
	s.Equal(http.StatusBadRequest, rec.Code)
}

func (s *RouterSuite) TestRunAudit() {
	found := 3
	obs := pipeline.Observations{
		Dimensions: []pipeline.DimensionObservation{{Code: "STR", QuestionsFound: &found}},
	}
	s.runs.EXPECT().Run(gomock.Any(), testRunID, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ domain.RunID, got pipeline.Observations) (pipeline.Result, error) {
			s.Require().Len(got.Dimensions, 1)
			s.Equal(3, *got.Dimensions[0].QuestionsFound)
			return pipeline.Result{
				Audit: quality.PipelineQualityAudit{RunID: testRunID, Status: quality.StatusFail},
				Path:  "out/quality_audit_BH-20240115-093000.json",
			}, nil
		})

	rec := s.do(http.MethodPost, "/v1/runs/"+string(testRunID)+"/audit", obs, s.token(jwttoken.ScopeAnomalyScan))
	s.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())
	got := testutil.DecodeJSON[pipeline.Result](s.T(), rec)
	s.Equal(quality.StatusFail, got.Audit.Status)
}

func (s *RouterSuite) TestCheckAndGetAnomalies() {
	report := anomaly.Report{RunID: testRunID, Passed: false, CriticalCount: 1, CheckedCount: 4}
	s.anomalies.EXPECT().CheckAndSave(gomock.Any(), testRunID).Return(report, "out/anomaly_report.json", nil)
	s.anomalies.EXPECT().Get(gomock.Any(), testRunID).Return(report, nil)

	rec := s.do(http.MethodPost, "/v1/runs/"+string(testRunID)+"/anomalies", nil, s.token(jwttoken.ScopeAnomalyScan))
	s.Require().Equal(http.StatusOK, rec.Code)
	got := testutil.DecodeJSON[anomalyCheckResponse](s.T(), rec)
	s.Equal(1, got.Report.CriticalCount)
	s.Equal("out/anomaly_report.json", got.Path)

	rec = s.do(http.MethodGet, "/v1/runs/"+string(testRunID)+"/anomalies", nil, s.token(jwttoken.ScopeAuditsRead))
	s.Require().Equal(http.StatusOK, rec.Code)
	s.False(testutil.DecodeJSON[anomaly.Report](s.T(), rec).Passed)
}

func (s *RouterSuite) TestScan() {
	scan := s.token(jwttoken.ScopeAnomalyScan)
	other := domain.RunID("BH-20240116-120000")

	s.anomalies.EXPECT().Scan(gomock.Any(), []domain.RunID{testRunID, other}).Return([]anomaly.Report{
		{RunID: testRunID, Passed: false, CriticalCount: 2},
		{RunID: other, Passed: true, Skipped: true},
	}, nil)

	rec := s.do(http.MethodPost, "/v1/anomalies/scan", scanRequest{RunIDs: []string{string(testRunID), string(other)}}, scan)
	s.Require().Equal(http.StatusOK, rec.Code)
	got := testutil.DecodeJSON[scanResponse](s.T(), rec)
	s.Len(got.Reports, 2)
	s.Equal(1, got.Failed)
	s.Equal(1, got.Skipped)

	s.Run("empty batch", func() {
		rec := s.do(http.MethodPost, "/v1/anomalies/scan", scanRequest{}, scan)
		s.Equal(http.StatusBadRequest, rec.Code)
	})

	s.Run("bad id in batch", func() {
		rec := s.do(http.MethodPost, "/v1/anomalies/scan", scanRequest{RunIDs: []string{"nope"}}, scan)
		s.Equal(http.StatusBadRequest, rec.Code)
	})
}

func TestUnconfiguredServicesAreUnavailable(t *testing.T) {
	svc := jwttoken.NewJWTService("k", "iss", "aud")
	router := NewRouter(Deps{
		Validator: jwttoken.NewJWTServiceAdapter(svc),
		Gatherer:  prometheus.NewRegistry(),
	})
	tok, err := svc.GenerateServiceToken("ops", []string{jwttoken.ScopeAuditsRead}, time.Minute)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/v1/audits", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestMetricsEndpointExposesRequestCounts(t *testing.T) {
	reg := prometheus.NewRegistry()
	router := NewRouter(Deps{Gatherer: reg, Metrics: metrics.New(reg)})

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/healthz", nil))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `bizhealth_http_requests_total{method="GET",route="/healthz",status="200"} 1`)
}
