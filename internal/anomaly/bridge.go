package anomaly

import (
	"bizhealth/internal/quality"
)

// RecordAnomalies logs every anomaly in report as an INDICATOR issue on
// state, so the finalized audit carries cross-phase defects. In strict mode
// the first CRITICAL anomaly returns the abort together with the state
// recorded so far.
func RecordAnomalies(state quality.State, report Report) (quality.State, error) {
	for _, an := range report.Anomalies {
		var err error
		state, err = state.LogIssue(an.Severity, quality.ComponentIndicator, an.ID, an.Message, map[string]any{
			"raw_response_value": an.Raw,
			"phase1_score":       an.FirstStage,
			"final_score":        an.Final,
			"check":              "cross_phase_collapse",
		})
		if err != nil {
			return state, err
		}
	}
	return state, nil
}
