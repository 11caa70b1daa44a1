package anomaly

import (
	"fmt"
	"slices"

	"bizhealth/internal/quality"
)

// DefaultStrongFirstStage is the first-stage score above which a collapse
// to zero is treated as near-certain evidence of a defect.
const DefaultStrongFirstStage = 50.0

// Detector applies the collapse rules:
//
//	raw > 0, first stage > strong, final == 0       -> CRITICAL
//	raw > 0, 0 < first stage <= strong, final == 0  -> WARNING
//
// Identifiers missing from the first-stage or final map are not flagged.
type Detector struct {
	strongFirstStage float64
}

// NewDetector returns a detector with the given strong first-stage
// threshold; non-positive values use DefaultStrongFirstStage.
func NewDetector(strongFirstStage float64) Detector {
	if strongFirstStage <= 0 {
		strongFirstStage = DefaultStrongFirstStage
	}
	return Detector{strongFirstStage: strongFirstStage}
}

// Detect returns anomalies ordered by identifier.
func (d Detector) Detect(a Artifacts) []Anomaly {
	strong := d.strongFirstStage
	if strong <= 0 {
		strong = DefaultStrongFirstStage
	}

	ids := make([]string, 0, len(a.Raw))
	for id := range a.Raw {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	out := []Anomaly{}
	for _, id := range ids {
		raw := a.Raw[id]
		first, okFirst := a.FirstStage[id]
		final, okFinal := a.Final[id]
		if raw <= 0 || !okFirst || !okFinal || final != 0 || first <= 0 {
			continue
		}

		an := Anomaly{ID: id, Raw: raw, FirstStage: first, Final: final}
		if first > strong {
			an.Severity = quality.SeverityCritical
			an.Message = fmt.Sprintf("%s: raw %g scored %g at first stage but 0 in final output", id, raw, first)
		} else {
			an.Severity = quality.SeverityWarning
			an.Message = fmt.Sprintf("%s: raw %g scored a weak %g at first stage and 0 in final output", id, raw, first)
		}
		out = append(out, an)
	}
	return out
}

// Evaluate builds a report for artifacts that were all present.
func (d Detector) Evaluate(a Artifacts) Report {
	anomalies := d.Detect(a)
	r := Report{
		CheckedCount: len(a.Raw),
		Anomalies:    anomalies,
	}
	for _, an := range anomalies {
		switch an.Severity {
		case quality.SeverityCritical:
			r.CriticalCount++
		case quality.SeverityWarning:
			r.WarningCount++
		}
	}
	r.Passed = r.CriticalCount == 0
	switch {
	case len(anomalies) == 0:
		r.Message = fmt.Sprintf("checked %d identifiers, no anomalies", r.CheckedCount)
	default:
		r.Message = fmt.Sprintf("checked %d identifiers: %d critical, %d warning", r.CheckedCount, r.CriticalCount, r.WarningCount)
	}
	return r
}
