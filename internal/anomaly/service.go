package anomaly

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"bizhealth/internal/anomaly/metrics"
	"bizhealth/internal/storage"
	"bizhealth/pkg/domain"
	dErrors "bizhealth/pkg/domain-errors"
	audit "bizhealth/pkg/platform/audit"
	"bizhealth/pkg/platform/sentinel"
)

// Publisher delivers saved reports to secondary sinks.
type Publisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service checks runs for cross-phase anomalies and persists the reports.
type Service struct {
	artifacts   ArtifactSource
	docs        storage.DocumentStore
	detector    Detector
	publisher   Publisher
	logger      *slog.Logger
	metrics     *metrics.Metrics
	tracer      trace.Tracer
	concurrency int
	now         func() time.Time
}

type Option func(*Service)

func WithDetector(d Detector) Option {
	return func(s *Service) { s.detector = d }
}

func WithPublisher(p Publisher) Option {
	return func(s *Service) { s.publisher = p }
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithConcurrency bounds how many runs Scan checks at once.
func WithConcurrency(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// WithClock overrides the report timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService reads artifacts from artifacts and saves reports to docs. A
// nil docs disables persistence.
func NewService(artifacts ArtifactSource, docs storage.DocumentStore, opts ...Option) *Service {
	s := &Service{
		artifacts:   artifacts,
		docs:        docs,
		detector:    NewDetector(DefaultStrongFirstStage),
		logger:      slog.Default(),
		tracer:      otel.Tracer("bizhealth/anomaly"),
		concurrency: 4,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Check loads the three artifacts for runID and evaluates them. A missing
// or unreadable artifact yields a passing, skipped report rather than an
// error; only unexpected I/O failures are returned.
func (s *Service) Check(ctx context.Context, runID domain.RunID) (Report, error) {
	ctx, span := s.tracer.Start(ctx, "anomaly.Check", trace.WithAttributes(attribute.String("run_id", runID.String())))
	defer span.End()
	start := time.Now()

	if runID.IsNil() {
		return Report{}, dErrors.New(dErrors.CodeInvalidInput, "run id cannot be empty")
	}

	var a Artifacts
	for _, stage := range Stages() {
		values, err := s.artifacts.Load(ctx, runID, stage)
		if err != nil {
			if report, ok := s.degraded(ctx, runID, stage, err); ok {
				s.record(report, start)
				span.SetAttributes(attribute.Bool("skipped", true))
				return report, nil
			}
			span.RecordError(err)
			span.SetStatus(codes.Error, "load artifact")
			return Report{}, fmt.Errorf("load %s artifact for %s: %w", stage, runID, err)
		}
		switch stage {
		case StageRaw:
			a.Raw = values
		case StageFirstStage:
			a.FirstStage = values
		case StageFinal:
			a.Final = values
		}
	}

	report := s.detector.Evaluate(a)
	report.RunID = runID
	report.CheckedAt = s.now().UTC()
	s.record(report, start)
	span.SetAttributes(
		attribute.Int("critical", report.CriticalCount),
		attribute.Int("warning", report.WarningCount),
	)
	if report.CriticalCount > 0 || report.WarningCount > 0 {
		s.logger.WarnContext(ctx, "cross-phase anomalies detected",
			"run_id", runID.String(),
			"critical", report.CriticalCount,
			"warning", report.WarningCount,
		)
	}
	return report, nil
}

func (s *Service) degraded(ctx context.Context, runID domain.RunID, stage Stage, err error) (Report, bool) {
	var reason string
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		reason = "missing"
	case errors.Is(err, sentinel.ErrCorrupt):
		reason = "unreadable"
	default:
		return Report{}, false
	}
	s.logger.InfoContext(ctx, "anomaly check skipped",
		"run_id", runID.String(),
		"stage", string(stage),
		"reason", reason,
		"error", err,
	)
	return Report{
		RunID:     runID,
		Passed:    true,
		Skipped:   true,
		Message:   fmt.Sprintf("%s artifact %s; anomaly check skipped", stage, reason),
		Anomalies: []Anomaly{},
		CheckedAt: s.now().UTC(),
	}, true
}

func (s *Service) record(r Report, start time.Time) {
	s.metrics.IncrementCheck(r.Outcome())
	s.metrics.AddAnomalies("CRITICAL", r.CriticalCount)
	s.metrics.AddAnomalies("WARNING", r.WarningCount)
	s.metrics.ObserveCheckLatency(time.Since(start))
}

// CheckAndSave runs Check, writes the report under its run-scoped name and
// publishes it. It returns the written location ("" without a store).
func (s *Service) CheckAndSave(ctx context.Context, runID domain.RunID) (Report, string, error) {
	report, err := s.Check(ctx, runID)
	if err != nil {
		return Report{}, "", err
	}
	var path string
	if s.docs != nil {
		path, err = s.docs.Put(ctx, ReportFileName(runID), report)
		if err != nil {
			return report, "", fmt.Errorf("save anomaly report %s: %w", runID, err)
		}
	}
	s.publish(ctx, report)
	return report, path, nil
}

func (s *Service) publish(ctx context.Context, r Report) {
	if s.publisher == nil {
		return
	}
	event, err := audit.NewEvent(audit.KindAnomalyReport, r.RunID, r.Outcome(), r, s.now())
	if err == nil {
		err = s.publisher.Emit(ctx, event)
	}
	if err != nil {
		s.logger.WarnContext(ctx, "anomaly report not delivered to every sink",
			"run_id", r.RunID.String(),
			"error", err,
		)
	}
}

// Scan checks and saves every run, at most the configured number at once.
// Reports are returned in input order. The first failure cancels the
// remaining checks.
func (s *Service) Scan(ctx context.Context, runIDs []domain.RunID) ([]Report, error) {
	ctx, span := s.tracer.Start(ctx, "anomaly.Scan", trace.WithAttributes(attribute.Int("runs", len(runIDs))))
	defer span.End()

	reports := make([]Report, len(runIDs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, runID := range runIDs {
		g.Go(func() error {
			r, _, err := s.CheckAndSave(ctx, runID)
			if err != nil {
				return err
			}
			reports[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "scan")
		return nil, err
	}
	return reports, nil
}

// Get loads a saved report.
func (s *Service) Get(ctx context.Context, runID domain.RunID) (Report, error) {
	if s.docs == nil {
		return Report{}, dErrors.New(dErrors.CodeNotFound, "anomaly reports are not persisted")
	}
	var r Report
	if err := s.docs.Get(ctx, ReportFileName(runID), &r); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return Report{}, dErrors.Wrap(err, dErrors.CodeNotFound, "anomaly report not found")
		}
		return Report{}, fmt.Errorf("load anomaly report %s: %w", runID, err)
	}
	return r, nil
}
