package quality

import (
	"fmt"
	"maps"
	"slices"
)

// Finalize produces the immutable audit for the run. It does not modify the
// State, and calling it repeatedly on the same State yields identical
// audits.
func (s State) Finalize() PipelineQualityAudit {
	audit := PipelineQualityAudit{
		RunID:      s.runID,
		StartedAt:  s.startedAt,
		StrictMode: s.strict,
		Dimensions: make([]DimensionStatus, 0, len(s.order)),
		Issues:     cloneIssues(s.issues),
	}

	for _, code := range s.order {
		d := s.dimensions[code]
		d.Issues = cloneIssues(d.Issues)
		audit.Dimensions = append(audit.Dimensions, d)

		sum := &audit.Summary
		sum.TotalDimensions++
		sum.QuestionsExpected += d.QuestionsExpected
		sum.QuestionsFound += d.QuestionsFound
		sum.SubIndicatorsExpected += d.SubIndicatorsExpected
		sum.SubIndicatorsGenerated += d.SubIndicatorsGenerated
		switch d.Status {
		case DimensionComplete:
			sum.CompleteDimensions++
		case DimensionPartial:
			sum.PartialDimensions++
		case DimensionSkipped:
			sum.SkippedDimensions++
		}
	}

	for _, issue := range s.issues {
		switch issue.Severity {
		case SeverityCritical:
			audit.Summary.CriticalIssueCount++
		case SeverityWarning:
			audit.Summary.WarningCount++
		case SeverityInfo:
			audit.Summary.InfoCount++
		}
	}

	switch {
	case audit.Summary.CriticalIssueCount > 0:
		audit.Status = StatusFail
	case audit.Summary.WarningCount > 0:
		audit.Status = StatusNeedsReview
	default:
		audit.Status = StatusPass
	}
	audit.Recommendations = recommendations(audit)
	return audit
}

// recommendations lists operator actions: re-runs for skipped dimensions
// first, then reviews for partial ones, then log-level follow-ups.
func recommendations(audit PipelineQualityAudit) []string {
	recs := []string{}
	for _, d := range audit.Dimensions {
		if d.Status == DimensionSkipped {
			recs = append(recs, fmt.Sprintf(
				"Re-run scoring for %s (%s) after supplying its questionnaire data; the dimension was skipped",
				d.Code, d.Name))
		}
	}
	for _, d := range audit.Dimensions {
		if d.Status == DimensionPartial {
			recs = append(recs, fmt.Sprintf(
				"Review %s (%s): %d/%d questions found, %d/%d sub-indicators generated",
				d.Code, d.Name, d.QuestionsFound, d.QuestionsExpected, d.SubIndicatorsGenerated, d.SubIndicatorsExpected))
		}
	}

	known := make(map[string]struct{}, len(audit.Dimensions))
	for _, d := range audit.Dimensions {
		known[d.Code] = struct{}{}
	}
	var unattached int
	for _, issue := range audit.Issues {
		if issue.Severity != SeverityCritical {
			continue
		}
		if _, ok := known[normCode(issue.Code)]; !ok {
			unattached++
		}
	}
	if unattached > 0 {
		recs = append(recs, fmt.Sprintf(
			"Resolve %d critical issue(s) outside tracked dimensions before releasing the report", unattached))
	}

	if len(recs) == 0 {
		switch audit.Status {
		case StatusFail:
			recs = append(recs, fmt.Sprintf(
				"Resolve %d critical issue(s) before releasing the report", audit.Summary.CriticalIssueCount))
		case StatusNeedsReview:
			recs = append(recs, fmt.Sprintf(
				"Manually review %d warning(s) and sign off before delivery", audit.Summary.WarningCount))
		case StatusPass:
			recs = append(recs, "No action required; all dimensions are complete")
		}
	}
	return recs
}

func cloneIssues(issues []ValidationIssue) []ValidationIssue {
	out := slices.Clone(issues)
	if out == nil {
		out = []ValidationIssue{}
	}
	for i := range out {
		out[i].Details = maps.Clone(out[i].Details)
	}
	return out
}
