package anomaly

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bizhealth/internal/quality"
)

func TestDetector_Detect(t *testing.T) {
	tests := []struct {
		name         string
		raw, p1, fin map[string]float64
		want         map[string]quality.Severity
	}{
		{
			name: "strong first stage collapsed to zero is critical",
			raw:  map[string]float64{"FIN-01": 85000},
			p1:   map[string]float64{"FIN-01": 82},
			fin:  map[string]float64{"FIN-01": 0},
			want: map[string]quality.Severity{"FIN-01": quality.SeverityCritical},
		},
		{
			name: "weak first stage collapsed to zero is warning",
			raw:  map[string]float64{"SAL-02": 3},
			p1:   map[string]float64{"SAL-02": 50},
			fin:  map[string]float64{"SAL-02": 0},
			want: map[string]quality.Severity{"SAL-02": quality.SeverityWarning},
		},
		{
			name: "zero first stage is not flagged",
			raw:  map[string]float64{"OPS-01": 4},
			p1:   map[string]float64{"OPS-01": 0},
			fin:  map[string]float64{"OPS-01": 0},
			want: map[string]quality.Severity{},
		},
		{
			name: "zero raw is not flagged",
			raw:  map[string]float64{"MKT-01": 0},
			p1:   map[string]float64{"MKT-01": 90},
			fin:  map[string]float64{"MKT-01": 0},
			want: map[string]quality.Severity{},
		},
		{
			name: "non-zero final is not flagged",
			raw:  map[string]float64{"STR-01": 5},
			p1:   map[string]float64{"STR-01": 100},
			fin:  map[string]float64{"STR-01": 12},
			want: map[string]quality.Severity{},
		},
		{
			name: "missing final is not flagged",
			raw:  map[string]float64{"RMS-01": 5},
			p1:   map[string]float64{"RMS-01": 100},
			fin:  map[string]float64{},
			want: map[string]quality.Severity{},
		},
		{
			name: "ids only in later stages are ignored",
			raw:  map[string]float64{},
			p1:   map[string]float64{"HRS-01": 70},
			fin:  map[string]float64{"HRS-01": 0},
			want: map[string]quality.Severity{},
		},
	}
	d := NewDetector(0)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := map[string]quality.Severity{}
			for _, an := range d.Detect(Artifacts{Raw: tt.raw, FirstStage: tt.p1, Final: tt.fin}) {
				got[an.ID] = an.Severity
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDetector_Evaluate(t *testing.T) {
	a := Artifacts{
		Raw:        map[string]float64{"FIN-01": 85000, "FIN-02": 12, "SAL-01": 3, "CXP-01": 4},
		FirstStage: map[string]float64{"FIN-01": 82, "FIN-02": 40, "SAL-01": 50, "CXP-01": 75},
		Final:      map[string]float64{"FIN-01": 0, "FIN-02": 38, "SAL-01": 0, "CXP-01": 75},
	}
	r := NewDetector(DefaultStrongFirstStage).Evaluate(a)

	assert.Equal(t, 4, r.CheckedCount)
	assert.Equal(t, 1, r.CriticalCount)
	assert.Equal(t, 1, r.WarningCount)
	assert.False(t, r.Passed)
	require.Len(t, r.Anomalies, 2)
	assert.Equal(t, "FIN-01", r.Anomalies[0].ID, "sorted by id")
	assert.Equal(t, "SAL-01", r.Anomalies[1].ID)
	assert.Equal(t, "failed", r.Outcome())
}

func TestDetector_WarningsOnlyStillPass(t *testing.T) {
	r := NewDetector(0).Evaluate(Artifacts{
		Raw:        map[string]float64{"SAL-01": 3},
		FirstStage: map[string]float64{"SAL-01": 20},
		Final:      map[string]float64{"SAL-01": 0},
	})
	assert.True(t, r.Passed)
	assert.Equal(t, 1, r.WarningCount)
}

func TestDetector_CustomThreshold(t *testing.T) {
	d := NewDetector(80)
	got := d.Detect(Artifacts{
		Raw:        map[string]float64{"FIN-01": 85000},
		FirstStage: map[string]float64{"FIN-01": 75},
		Final:      map[string]float64{"FIN-01": 0},
	})
	require.Len(t, got, 1)
	assert.Equal(t, quality.SeverityWarning, got[0].Severity)
}

func TestAnomaly_WireNames(t *testing.T) {
	report := NewDetector(0).Evaluate(Artifacts{
		Raw:        map[string]float64{"FIN-01": 85000},
		FirstStage: map[string]float64{"FIN-01": 82},
		Final:      map[string]float64{"FIN-01": 0},
	})
	require.Len(t, report.Anomalies, 1)

	data, err := json.Marshal(report.Anomalies[0])
	require.NoError(t, err)
	var got map[string]any
	require.NoError(t, json.Unmarshal(data, &got))

	assert.Equal(t, "FIN-01", got["sub_indicator_id"])
	assert.Equal(t, "CRITICAL", got["severity"])
	assert.Equal(t, 85000.0, got["raw_response_value"])
	assert.Equal(t, 82.0, got["phase1_score"])
	assert.Equal(t, 0.0, got["final_score"])
	assert.NotEmpty(t, got["description"])
	assert.Len(t, got, 6)
}
