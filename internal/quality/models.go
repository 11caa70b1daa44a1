package quality

import (
	"time"

	"bizhealth/pkg/domain"
)

// Severity grades a validation issue.
type Severity string

const (
	SeverityCritical Severity = "CRITICAL"
	SeverityWarning  Severity = "WARNING"
	SeverityInfo     Severity = "INFO"
)

// IsValid reports whether s is one of the closed set of severities.
func (s Severity) IsValid() bool {
	switch s {
	case SeverityCritical, SeverityWarning, SeverityInfo:
		return true
	}
	return false
}

// Component names the pipeline level an issue was raised at.
type Component string

const (
	ComponentChapter   Component = "CHAPTER"
	ComponentDimension Component = "DIMENSION"
	ComponentIndicator Component = "INDICATOR"
	ComponentQuestion  Component = "QUESTION"
)

// IsValid reports whether c is one of the closed set of components.
func (c Component) IsValid() bool {
	switch c {
	case ComponentChapter, ComponentDimension, ComponentIndicator, ComponentQuestion:
		return true
	}
	return false
}

// DimensionState is the data-completeness state of one dimension. States
// only ever move towards lower quality within a run.
type DimensionState string

const (
	DimensionComplete DimensionState = "complete"
	DimensionPartial  DimensionState = "partial"
	DimensionSkipped  DimensionState = "skipped"
)

func (d DimensionState) rank() int {
	switch d {
	case DimensionComplete:
		return 0
	case DimensionPartial:
		return 1
	default:
		return 2
	}
}

// degrade returns the worse of d and next.
func (d DimensionState) degrade(next DimensionState) DimensionState {
	if next.rank() > d.rank() {
		return next
	}
	return d
}

// AuditStatus is the release gate derived from a finalized audit.
type AuditStatus string

const (
	StatusPass        AuditStatus = "PASS"
	StatusNeedsReview AuditStatus = "NEEDS_REVIEW"
	StatusFail        AuditStatus = "FAIL"
)

// ValidationIssue is one entry in a run's append-only issue log.
type ValidationIssue struct {
	ID        domain.IssueID `json:"id"`
	Severity  Severity       `json:"severity"`
	Component Component      `json:"component"`
	Code      string         `json:"code"`
	Message   string         `json:"message"`
	Details   map[string]any `json:"details,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// DimensionStatus tracks expected versus observed data for one dimension.
type DimensionStatus struct {
	Code                   string            `json:"code"`
	Name                   string            `json:"name"`
	Status                 DimensionState    `json:"status"`
	QuestionsExpected      int               `json:"questions_expected"`
	QuestionsFound         int               `json:"questions_found"`
	SubIndicatorsExpected  int               `json:"sub_indicators_expected"`
	SubIndicatorsGenerated int               `json:"sub_indicators_generated"`
	Issues                 []ValidationIssue `json:"issues"`
}

// Summary holds the aggregate counts of a finalized audit.
type Summary struct {
	TotalDimensions        int `json:"total_dimensions"`
	CompleteDimensions     int `json:"complete_dimensions"`
	PartialDimensions      int `json:"partial_dimensions"`
	SkippedDimensions      int `json:"skipped_dimensions"`
	QuestionsExpected      int `json:"questions_expected"`
	QuestionsFound         int `json:"questions_found"`
	SubIndicatorsExpected  int `json:"sub_indicators_expected"`
	SubIndicatorsGenerated int `json:"sub_indicators_generated"`
	CriticalIssueCount     int `json:"critical_issue_count"`
	WarningCount           int `json:"warning_count"`
	InfoCount              int `json:"info_count"`
}

// PipelineQualityAudit is the immutable, finalized record of one run.
type PipelineQualityAudit struct {
	RunID           domain.RunID      `json:"run_id"`
	StartedAt       time.Time         `json:"started_at"`
	StrictMode      bool              `json:"strict_mode"`
	Status          AuditStatus       `json:"status"`
	Summary         Summary           `json:"summary"`
	Dimensions      []DimensionStatus `json:"dimensions"`
	Issues          []ValidationIssue `json:"issues"`
	Recommendations []string          `json:"recommendations"`
}
