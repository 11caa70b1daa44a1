// Package pipeline drives one run's quality audit from the observations the
// scoring phases report: dimension counts, explicit skips, ad-hoc issues and
// an optional cross-phase anomaly check.
package pipeline

import (
	"context"
	"errors"
	"log/slog"

	"bizhealth/internal/anomaly"
	"bizhealth/internal/quality"
	"bizhealth/pkg/domain"
)

// DimensionObservation is what a scoring phase saw for one dimension. Nil
// counts were not observed and leave the dimension untouched.
type DimensionObservation struct {
	Code                   string `json:"code"`
	QuestionsFound         *int   `json:"questions_found,omitempty"`
	SubIndicatorsGenerated *int   `json:"sub_indicators_generated,omitempty"`
	SkippedReason          string `json:"skipped_reason,omitempty"`
}

// IssueObservation is an issue raised directly by a phase.
type IssueObservation struct {
	Severity  quality.Severity  `json:"severity"`
	Component quality.Component `json:"component"`
	Code      string            `json:"code"`
	Message   string            `json:"message"`
	Details   map[string]any    `json:"details,omitempty"`
}

// Observations are applied in order: dimensions, then issues, then the
// anomaly check.
type Observations struct {
	Dimensions     []DimensionObservation `json:"dimensions"`
	Issues         []IssueObservation     `json:"issues"`
	CheckAnomalies bool                   `json:"check_anomalies"`
}

// Result is the saved audit plus how the run ended.
type Result struct {
	Audit       quality.PipelineQualityAudit `json:"audit"`
	Path        string                       `json:"path"`
	Aborted     bool                         `json:"aborted"`
	AbortReason string                       `json:"abort_reason,omitempty"`
	Anomalies   *anomaly.Report              `json:"anomalies,omitempty"`
}

// AuditService starts runs and persists finalized audits.
type AuditService interface {
	Begin(runID domain.RunID) quality.State
	SaveAndReport(ctx context.Context, a quality.PipelineQualityAudit) (string, error)
}

// AnomalyChecker checks and saves a run's anomaly report.
type AnomalyChecker interface {
	CheckAndSave(ctx context.Context, runID domain.RunID) (anomaly.Report, string, error)
}

type Service struct {
	audits    AuditService
	anomalies AnomalyChecker
	logger    *slog.Logger
}

// New builds the runner. anomalies may be nil, which makes CheckAnomalies a
// no-op.
func New(audits AuditService, anomalies AnomalyChecker, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{audits: audits, anomalies: anomalies, logger: logger}
}

// Run applies obs to a fresh state for runID, finalizes and saves the audit.
// A strict-mode abort stops applying observations but the audit recorded so
// far is still finalized and saved so the failure is on file.
func (s *Service) Run(ctx context.Context, runID domain.RunID, obs Observations) (Result, error) {
	st := s.audits.Begin(runID)
	var res Result

	st, err := s.apply(ctx, st, runID, obs, &res)
	if err != nil {
		var abort *quality.AbortError
		if !errors.As(err, &abort) {
			return Result{}, err
		}
		res.Aborted = true
		res.AbortReason = abort.Error()
		s.logger.WarnContext(ctx, "run aborted in strict mode",
			"run_id", runID.String(),
			"code", abort.Issue.Code,
		)
	}

	res.Audit = st.Finalize()
	res.Path, err = s.audits.SaveAndReport(ctx, res.Audit)
	if err != nil {
		return Result{}, err
	}
	return res, nil
}

func (s *Service) apply(ctx context.Context, st quality.State, runID domain.RunID, obs Observations, res *Result) (quality.State, error) {
	var err error
	for _, d := range obs.Dimensions {
		if d.QuestionsFound != nil {
			st = st.RecordQuestionsFound(d.Code, *d.QuestionsFound)
		}
		if d.SubIndicatorsGenerated != nil {
			if st, err = st.RecordSubIndicators(d.Code, *d.SubIndicatorsGenerated); err != nil {
				return st, err
			}
		}
		if d.SkippedReason != "" {
			if st, err = st.MarkDimensionSkipped(d.Code, d.SkippedReason); err != nil {
				return st, err
			}
		}
	}

	for _, is := range obs.Issues {
		if st, err = st.LogIssue(is.Severity, is.Component, is.Code, is.Message, is.Details); err != nil {
			return st, err
		}
	}

	if obs.CheckAnomalies && s.anomalies != nil {
		report, _, err := s.anomalies.CheckAndSave(ctx, runID)
		if err != nil {
			return st, err
		}
		res.Anomalies = &report
		return anomaly.RecordAnomalies(st, report)
	}
	return st, nil
}
