package quality

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"bizhealth/pkg/domain"
)

// Config controls escalation for one run.
type Config struct {
	// StrictMode turns the first CRITICAL issue into an abort.
	StrictMode bool
	// CriticalDimensions are dimension codes whose skip is CRITICAL
	// rather than WARNING.
	CriticalDimensions []string
	// Clock stamps issues; defaults to time.Now.
	Clock func() time.Time
}

// DefaultConfig returns non-strict escalation over DefaultCriticalDimensions.
func DefaultConfig() Config {
	return Config{CriticalDimensions: DefaultCriticalDimensions()}
}

// AbortError is returned by a transition when strict mode converts a
// CRITICAL issue into an abort. The run must stop; the returned State still
// contains the issue so the caller can finalize and persist it.
type AbortError struct {
	RunID domain.RunID
	Issue ValidationIssue
}

func (e *AbortError) Error() string {
	return fmt.Sprintf("run %s aborted in strict mode: [%s] %s", e.RunID, e.Issue.Code, e.Issue.Message)
}

// IsAbort reports whether err is a strict-mode abort.
func IsAbort(err error) bool {
	var ae *AbortError
	return errors.As(err, &ae)
}

// State is the data-quality record of one run. It is a value: every
// transition returns a new State and leaves the receiver untouched, so a
// State can be shared freely between goroutines.
type State struct {
	runID      domain.RunID
	startedAt  time.Time
	strict     bool
	critical   map[string]struct{}
	clock      func() time.Time
	order      []string
	dimensions map[string]DimensionStatus
	issues     []ValidationIssue
}

// NewState starts an empty record for runID.
func NewState(runID domain.RunID, cfg Config) State {
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	critical := make(map[string]struct{}, len(cfg.CriticalDimensions))
	for _, c := range cfg.CriticalDimensions {
		critical[normCode(c)] = struct{}{}
	}
	startedAt := runID.StartedAt()
	if startedAt.IsZero() {
		startedAt = clock().UTC()
	}
	return State{
		runID:      runID,
		startedAt:  startedAt,
		strict:     cfg.StrictMode,
		critical:   critical,
		clock:      clock,
		dimensions: map[string]DimensionStatus{},
	}
}

// RunID returns the run this state belongs to.
func (s State) RunID() domain.RunID { return s.runID }

// Dimension returns a copy of the status for code.
func (s State) Dimension(code string) (DimensionStatus, bool) {
	d, ok := s.dimensions[normCode(code)]
	if !ok {
		return DimensionStatus{}, false
	}
	d.Issues = slices.Clone(d.Issues)
	return d, true
}

// Issues returns a copy of the global issue log in insertion order.
func (s State) Issues() []ValidationIssue {
	return slices.Clone(s.issues)
}

// IsCritical reports whether code is in the configured critical set.
func (s State) IsCritical(code string) bool {
	_, ok := s.critical[normCode(code)]
	return ok
}

// InitializeDimension registers code as complete with zero observed counts.
// Re-initializing a dimension replaces it entirely.
func (s State) InitializeDimension(code, name string, expectedQuestions, expectedSubIndicators int) State {
	code = normCode(code)
	next := s.cloneDimensions()
	if _, exists := next.dimensions[code]; !exists {
		next.order = append(slices.Clip(next.order), code)
	}
	next.dimensions[code] = DimensionStatus{
		Code:                  code,
		Name:                  strings.TrimSpace(name),
		Status:                DimensionComplete,
		QuestionsExpected:     max(expectedQuestions, 0),
		SubIndicatorsExpected: max(expectedSubIndicators, 0),
		Issues:                []ValidationIssue{},
	}
	return next
}

// InitializeCatalog registers every dimension in specs.
func (s State) InitializeCatalog(specs []DimensionSpec) State {
	for _, spec := range specs {
		s = s.InitializeDimension(spec.Code, spec.Name, spec.ExpectedQuestions, spec.ExpectedSubIndicators)
	}
	return s
}

// RecordQuestionsFound sets the observed question count. A shortfall
// downgrades the dimension to partial and logs a WARNING with the exact gap.
// Unknown codes are logged as INFO and otherwise ignored.
func (s State) RecordQuestionsFound(code string, count int) State {
	code = normCode(code)
	d, ok := s.dimensions[code]
	if !ok {
		next, _ := s.LogIssue(SeverityInfo, ComponentDimension, code,
			fmt.Sprintf("questions recorded for unknown dimension %s", code), nil)
		return next
	}
	count = max(count, 0)
	d.QuestionsFound = count
	next := s.withDimension(d)
	if count >= d.QuestionsExpected {
		return next
	}

	missing := d.QuestionsExpected - count
	d.Status = d.Status.degrade(DimensionPartial)
	next = next.withDimension(d)
	// WARNING never aborts, even in strict mode.
	next, _ = next.LogIssue(SeverityWarning, ComponentDimension, code,
		fmt.Sprintf("%s (%s): found %d of %d expected questions (%d missing)", code, d.Name, count, d.QuestionsExpected, missing),
		map[string]any{"expected": d.QuestionsExpected, "found": count, "missing": missing})
	return next
}

// RecordSubIndicators sets the generated sub-indicator count. Zero generated
// (when any were expected) skips the dimension with the same escalation as
// MarkDimensionSkipped; a shortfall downgrades it to partial with a WARNING.
func (s State) RecordSubIndicators(code string, count int) (State, error) {
	code = normCode(code)
	d, ok := s.dimensions[code]
	if !ok {
		return s.LogIssue(SeverityInfo, ComponentDimension, code,
			fmt.Sprintf("sub-indicators recorded for unknown dimension %s", code), nil)
	}
	count = max(count, 0)
	d.SubIndicatorsGenerated = count
	next := s.withDimension(d)

	switch {
	case d.SubIndicatorsExpected == 0 || count >= d.SubIndicatorsExpected:
		return next, nil
	case count == 0:
		d.Status = DimensionSkipped
		next = next.withDimension(d)
		return next.LogIssue(next.skipSeverity(code), ComponentDimension, code,
			fmt.Sprintf("%s (%s): no sub-indicators generated (expected %d)", code, d.Name, d.SubIndicatorsExpected),
			map[string]any{"expected": d.SubIndicatorsExpected, "generated": 0})
	default:
		d.Status = d.Status.degrade(DimensionPartial)
		next = next.withDimension(d)
		return next.LogIssue(SeverityWarning, ComponentDimension, code,
			fmt.Sprintf("%s (%s): generated %d of %d expected sub-indicators", code, d.Name, count, d.SubIndicatorsExpected),
			map[string]any{"expected": d.SubIndicatorsExpected, "generated": count, "missing": d.SubIndicatorsExpected - count})
	}
}

// MarkDimensionSkipped forces code to skipped. The issue is CRITICAL for
// critical dimensions and WARNING otherwise.
func (s State) MarkDimensionSkipped(code, reason string) (State, error) {
	code = normCode(code)
	next := s
	name := code
	if d, ok := s.dimensions[code]; ok {
		d.Status = DimensionSkipped
		next = s.withDimension(d)
		name = d.Name
	}
	return next.LogIssue(next.skipSeverity(code), ComponentDimension, code,
		fmt.Sprintf("%s (%s) skipped: %s", code, name, reason),
		map[string]any{"reason": reason})
}

// LogIssue appends an issue to the global log and, when code names a known
// dimension, to that dimension's issues. Unrecognized severities are logged
// as CRITICAL and unrecognized components as DIMENSION. In strict mode a
// CRITICAL issue yields an *AbortError alongside the updated State.
func (s State) LogIssue(severity Severity, component Component, code, message string, details map[string]any) (State, error) {
	details = maps.Clone(details)
	if !severity.IsValid() {
		details = withDetail(details, "declared_severity", string(severity))
		severity = SeverityCritical
	}
	if !component.IsValid() {
		details = withDetail(details, "declared_component", string(component))
		component = ComponentDimension
	}

	issue := ValidationIssue{
		ID:        domain.NewIssueID(),
		Severity:  severity,
		Component: component,
		Code:      code,
		Message:   message,
		Details:   details,
		Timestamp: s.now(),
	}

	next := s
	next.issues = append(slices.Clip(s.issues), issue)
	if d, ok := s.dimensions[normCode(code)]; ok {
		d.Issues = append(slices.Clip(d.Issues), issue)
		next = next.withDimension(d)
	}

	if severity == SeverityCritical && s.strict {
		return next, &AbortError{RunID: s.runID, Issue: issue}
	}
	return next, nil
}

func (s State) now() time.Time {
	if s.clock == nil {
		return time.Now().UTC()
	}
	return s.clock().UTC()
}

func (s State) skipSeverity(code string) Severity {
	if s.IsCritical(code) {
		return SeverityCritical
	}
	return SeverityWarning
}

func (s State) withDimension(d DimensionStatus) State {
	next := s.cloneDimensions()
	next.dimensions[d.Code] = d
	return next
}

func (s State) cloneDimensions() State {
	next := s
	next.dimensions = maps.Clone(s.dimensions)
	if next.dimensions == nil {
		next.dimensions = map[string]DimensionStatus{}
	}
	return next
}

func withDetail(details map[string]any, key string, value any) map[string]any {
	if details == nil {
		details = map[string]any{}
	}
	details[key] = value
	return details
}

func normCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
