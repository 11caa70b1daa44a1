// Package anomaly correlates each sub-indicator's value across three
// pipeline checkpoints (raw response, first-stage normalized score, final
// consolidated score) and flags positive-input-to-zero-output collapses.
package anomaly

import (
	"time"

	"bizhealth/internal/quality"
	"bizhealth/pkg/domain"
)

// Stage names a pipeline checkpoint whose artifact is read.
type Stage string

const (
	StageRaw        Stage = "raw"
	StageFirstStage Stage = "first_stage"
	StageFinal      Stage = "final"
)

// Stages lists every checkpoint in pipeline order.
func Stages() []Stage {
	return []Stage{StageRaw, StageFirstStage, StageFinal}
}

// Artifacts holds one identifier-keyed value map per checkpoint.
type Artifacts struct {
	Raw        map[string]float64
	FirstStage map[string]float64
	Final      map[string]float64
}

// Anomaly is one identifier whose values match the collapse signature.
type Anomaly struct {
	ID         string           `json:"sub_indicator_id"`
	Severity   quality.Severity `json:"severity"`
	Raw        float64          `json:"raw_response_value"`
	FirstStage float64          `json:"phase1_score"`
	Final      float64          `json:"final_score"`
	Message    string           `json:"description"`
}

// Report is the outcome of checking one run.
type Report struct {
	RunID         domain.RunID `json:"run_id"`
	Passed        bool         `json:"passed"`
	Skipped       bool         `json:"skipped"`
	Message       string       `json:"message"`
	CheckedCount  int          `json:"checked_count"`
	CriticalCount int          `json:"critical_count"`
	WarningCount  int          `json:"warning_count"`
	Anomalies     []Anomaly    `json:"anomalies"`
	CheckedAt     time.Time    `json:"checked_at"`
}

// Outcome is the coarse label used for metrics and event status.
func (r Report) Outcome() string {
	switch {
	case r.Skipped:
		return "skipped"
	case r.Passed:
		return "passed"
	default:
		return "failed"
	}
}

// ReportFileName is the run-scoped document name of a saved report.
func ReportFileName(runID domain.RunID) string {
	return "anomaly_report_" + runID.String() + ".json"
}
