package quality

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"bizhealth/internal/quality/metrics"
	"bizhealth/internal/storage"
	"bizhealth/pkg/domain"
	dErrors "bizhealth/pkg/domain-errors"
	audit "bizhealth/pkg/platform/audit"
	"bizhealth/pkg/platform/sentinel"
)

// AuditFileName is the run-scoped document name of a finalized audit.
func AuditFileName(runID domain.RunID) string {
	return "quality_audit_" + runID.String() + ".json"
}

// Publisher delivers finalized audits to secondary sinks.
type Publisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service starts runs with the configured escalation policy and persists
// their finalized audits.
type Service struct {
	cfg       Config
	catalog   []DimensionSpec
	docs      storage.DocumentStore
	publisher Publisher
	reader    audit.Reader
	console   io.Writer
	logger    *slog.Logger
	metrics   *metrics.Metrics
	tracer    trace.Tracer
}

type Option func(*Service)

func WithConfig(cfg Config) Option {
	return func(s *Service) { s.cfg = cfg }
}

// WithCatalog replaces the dimensions registered by Begin.
func WithCatalog(specs []DimensionSpec) Option {
	return func(s *Service) { s.catalog = specs }
}

func WithPublisher(p Publisher) Option {
	return func(s *Service) { s.publisher = p }
}

// WithReader sets the fast-path reader consulted by Get before the
// document store.
func WithReader(r audit.Reader) Option {
	return func(s *Service) { s.reader = r }
}

// WithConsole sets where the console report is written. Nil disables it.
func WithConsole(w io.Writer) Option {
	return func(s *Service) { s.console = w }
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

func NewService(docs storage.DocumentStore, opts ...Option) *Service {
	s := &Service{
		cfg:     DefaultConfig(),
		catalog: DefaultCatalog(),
		docs:    docs,
		console: os.Stdout,
		logger:  slog.Default(),
		tracer:  otel.Tracer("bizhealth/quality"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Begin returns a fresh State for runID with the catalog registered.
func (s *Service) Begin(runID domain.RunID) State {
	return NewState(runID, s.cfg).InitializeCatalog(s.catalog)
}

// SaveAndReport writes the audit under its run-scoped name, prints the
// console report and returns the written location. The write is not
// retried and its failure is returned. Secondary sink delivery happens
// afterwards and never fails the call.
func (s *Service) SaveAndReport(ctx context.Context, a PipelineQualityAudit) (string, error) {
	ctx, span := s.tracer.Start(ctx, "quality.SaveAndReport",
		trace.WithAttributes(
			attribute.String("run_id", a.RunID.String()),
			attribute.String("status", string(a.Status)),
		))
	defer span.End()
	start := time.Now()

	if a.RunID.IsNil() {
		err := dErrors.New(dErrors.CodeInvalidInput, "audit has no run id")
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}

	path, err := s.docs.Put(ctx, AuditFileName(a.RunID), a)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "write audit")
		s.logger.ErrorContext(ctx, "failed to write quality audit",
			"run_id", a.RunID.String(),
			"error", err,
		)
		return "", fmt.Errorf("save quality audit %s: %w", a.RunID, err)
	}

	if s.console != nil {
		if err := WriteConsoleReport(s.console, a, path); err != nil {
			s.logger.WarnContext(ctx, "failed to write console report", "run_id", a.RunID.String(), "error", err)
		}
	}

	s.logger.InfoContext(ctx, "quality audit saved",
		"run_id", a.RunID.String(),
		"status", string(a.Status),
		"critical", a.Summary.CriticalIssueCount,
		"warnings", a.Summary.WarningCount,
		"path", path,
	)
	s.observe(a)
	s.publish(ctx, a)
	s.metrics.ObserveSaveLatency(time.Since(start))
	return path, nil
}

func (s *Service) publish(ctx context.Context, a PipelineQualityAudit) {
	if s.publisher == nil {
		return
	}
	event, err := audit.NewEvent(audit.KindQualityAudit, a.RunID, string(a.Status), a, time.Now())
	if err == nil {
		err = s.publisher.Emit(ctx, event)
	}
	if err != nil {
		s.metrics.IncrementPublishFailures()
		s.logger.WarnContext(ctx, "quality audit not delivered to every sink",
			"run_id", a.RunID.String(),
			"error", err,
		)
	}
}

func (s *Service) observe(a PipelineQualityAudit) {
	s.metrics.IncrementSaved(string(a.Status))
	s.metrics.AddIssues(string(SeverityCritical), a.Summary.CriticalIssueCount)
	s.metrics.AddIssues(string(SeverityWarning), a.Summary.WarningCount)
	s.metrics.AddIssues(string(SeverityInfo), a.Summary.InfoCount)
	s.metrics.AddDimensions(string(DimensionComplete), a.Summary.CompleteDimensions)
	s.metrics.AddDimensions(string(DimensionPartial), a.Summary.PartialDimensions)
	s.metrics.AddDimensions(string(DimensionSkipped), a.Summary.SkippedDimensions)
}

// Get loads the finalized audit for runID, trying the configured reader
// first and the document store second.
func (s *Service) Get(ctx context.Context, runID domain.RunID) (PipelineQualityAudit, error) {
	ctx, span := s.tracer.Start(ctx, "quality.Get", trace.WithAttributes(attribute.String("run_id", runID.String())))
	defer span.End()

	if s.reader != nil {
		event, err := s.reader.Get(ctx, audit.KindQualityAudit, runID)
		if err == nil {
			var a PipelineQualityAudit
			if err := event.Decode(&a); err == nil {
				return a, nil
			}
		} else if !errors.Is(err, sentinel.ErrNotFound) {
			s.logger.WarnContext(ctx, "audit reader failed, falling back to document store",
				"run_id", runID.String(),
				"error", err,
			)
		}
	}

	var a PipelineQualityAudit
	if err := s.docs.Get(ctx, AuditFileName(runID), &a); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return PipelineQualityAudit{}, dErrors.Wrap(err, dErrors.CodeNotFound, "quality audit not found")
		}
		span.RecordError(err)
		return PipelineQualityAudit{}, fmt.Errorf("load quality audit %s: %w", runID, err)
	}
	return a, nil
}
