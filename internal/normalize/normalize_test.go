package normalize

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeCurrency_NonPositiveAmountIsZero(t *testing.T) {
	revenues := []any{nil, 0, 0.0, -1, 1_000_000.0, "2,800,000", "garbage", math.NaN()}
	amounts := []any{0, 0.0, -1, -85_000.0, "-$5,000", nil, "", "n/a"}

	for _, rev := range revenues {
		for _, amt := range amounts {
			assert.Equal(t, 0.0, NormalizeCurrency(amt, rev), "amount=%v revenue=%v", amt, rev)
		}
	}
}

func TestNormalizeCurrency_MissingRevenueStaysInRange(t *testing.T) {
	for _, rev := range []any{nil, 0, 0.0, "", math.Inf(1)} {
		for _, amt := range []float64{0.5, 999, 1_000, 42_000, 85_000, 999_999, 1_000_000, 5e9} {
			got := NormalizeCurrency(amt, rev)
			assert.GreaterOrEqual(t, got, 0.0)
			assert.LessOrEqual(t, got, 100.0)
		}
	}
}

func TestNormalizeCurrency_Scenarios(t *testing.T) {
	t.Run("85k against 2.8M revenue lands between 80 and 90", func(t *testing.T) {
		got := NormalizeCurrency(85_000, 2_800_000)
		assert.GreaterOrEqual(t, got, 80.0)
		assert.LessOrEqual(t, got, 90.0)
	})

	t.Run("250k against 5.2M revenue scores 85 or more", func(t *testing.T) {
		assert.GreaterOrEqual(t, NormalizeCurrency(250_000, 5_200_000), 85.0)
	})

	t.Run("more than 10 percent of revenue scores 90 or more", func(t *testing.T) {
		assert.GreaterOrEqual(t, NormalizeCurrency(150_000, 1_000_000), 90.0)
	})

	t.Run("below 0.1 percent of revenue is near zero", func(t *testing.T) {
		assert.Less(t, NormalizeCurrency(500, 1_000_000), 10.0)
	})

	t.Run("formatted strings are parsed", func(t *testing.T) {
		assert.Equal(t, NormalizeCurrency(85_000, 2_800_000), NormalizeCurrency("$85,000", "2,800,000 USD"))
	})

	t.Run("missing revenue falls back to absolute bands", func(t *testing.T) {
		assert.Equal(t, 55.0, NormalizeCurrency(85_000, nil))
		assert.Equal(t, 95.0, NormalizeCurrency(2_000_000, 0))
		assert.Equal(t, 10.0, NormalizeCurrency(250, nil))
	})
}

func TestNormalizeCurrency_MonotoneInRatio(t *testing.T) {
	prev := -1.0
	for amt := 0.0; amt <= 1_000_000; amt += 2_500 {
		got := NormalizeCurrency(amt, 1_000_000)
		assert.GreaterOrEqual(t, got, prev, "amount %.0f", amt)
		prev = got
	}
}

func TestNormalizeNumeric(t *testing.T) {
	tests := []struct {
		name   string
		metric string
		value  any
		want   float64
	}{
		{"zero response time is perfect", "response_time_hours", 0, 100},
		{"day-long response time", "response_time_hours", 24, 65},
		{"two-week response time bottoms out", "response_time_hours", 1000, 0},
		{"zero employee turnover is perfect", "employee_turnover_rate", 0, 100},
		{"interpolates employee turnover", "employee_turnover_rate", 12.5, 72.5},
		{"interpolates cash runway", "cash_runway_months", 9, 70},
		{"cash runway saturates", "cash_runway_months", 60, 100},
		{"inventory turnover", "inventory_turnover_rate", "8", 80},
		{"sales cycle beyond last point", "average_sales_cycle_days", 500, 5},
		{"metric id is case-insensitive", "Cash_Runway_Months", 6, 60},
		{"pass-through metric clamps", "customer_retention_rate", 130, 100},
		{"unknown metric passes through", "widgets_per_hour", 42, 42},
		{"unknown metric clamps high", "widgets_per_hour", 420, 100},
		{"negative clamps to zero", "widgets_per_hour", -7, 0},
		{"negative on lower-is-better still zero", "response_time_hours", -2, 0},
		{"non-numeric is zero", "cash_runway_months", "lots", 0},
		{"nil is zero", "cash_runway_months", nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, NormalizeNumeric(tt.metric, tt.value), 1e-9)
		})
	}
}

func TestScale(t *testing.T) {
	exact := map[float64]float64{1: 0, 2: 25, 3: 50, 4: 75, 5: 100}
	for in, want := range exact {
		assert.Equal(t, want, Scale(in), "scale(%v)", in)
	}

	t.Run("monotone non-decreasing on [1,5]", func(t *testing.T) {
		prev := -1.0
		for v := 1.0; v <= 5.0; v += 0.1 {
			got := Scale(v)
			assert.GreaterOrEqual(t, got, prev)
			prev = got
		}
	})

	t.Run("clamps outside range", func(t *testing.T) {
		assert.Equal(t, 0.0, Scale(0))
		assert.Equal(t, 0.0, Scale(-3))
		assert.Equal(t, 100.0, Scale(7))
	})

	t.Run("interpolates half steps", func(t *testing.T) {
		assert.Equal(t, 62.5, Scale(3.5))
	})

	t.Run("non-numeric is zero", func(t *testing.T) {
		assert.Equal(t, 0.0, Scale(nil))
		assert.Equal(t, 0.0, Scale("strongly agree"))
		assert.Equal(t, 0.0, Scale(true))
		assert.Equal(t, 75.0, Scale(" 4 "))
	})
}

func TestPercentage(t *testing.T) {
	for _, v := range []float64{0, 0.5, 33.3, 99.99, 100} {
		assert.Equal(t, v, Percentage(v))
	}
	assert.Equal(t, 100.0, Percentage(150))
	assert.Equal(t, 0.0, Percentage(-3))
	assert.Equal(t, 0.0, Percentage(nil))
	assert.Equal(t, 45.0, Percentage("45%"))
	assert.Equal(t, 12.0, Percentage(json.Number("12")))
}

func TestYesNo(t *testing.T) {
	tests := []struct {
		value any
		want  float64
	}{
		{"yes", 100}, {"YES", 100}, {"Yes", 100}, {" yes ", 100}, {true, 100},
		{"no", 0}, {"NO", 0}, {false, 0},
		{"", 0}, {"maybe", 0}, {"y", 0}, {1, 0}, {nil, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, YesNo(tt.value), "YesNo(%#v)", tt.value)
	}
}

func TestParseNumber(t *testing.T) {
	tests := []struct {
		value  any
		want   float64
		wantOK bool
	}{
		{"$85,000", 85000, true},
		{"45%", 45, true},
		{"85000 usd", 85000, true},
		{json.Number("3.5"), 3.5, true},
		{12, 12, true},
		{"n/a", 0, false},
		{"", 0, false},
		{nil, 0, false},
		{math.Inf(1), 0, false},
	}
	for _, tt := range tests {
		got, ok := ParseNumber(tt.value)
		assert.Equal(t, tt.wantOK, ok, "ParseNumber(%#v)", tt.value)
		if tt.wantOK {
			assert.Equal(t, tt.want, got, "ParseNumber(%#v)", tt.value)
		}
	}
}

func TestBandFor(t *testing.T) {
	assert.Equal(t, BandCritical, BandFor(0))
	assert.Equal(t, BandCritical, BandFor(39.99))
	assert.Equal(t, BandAttention, BandFor(40))
	assert.Equal(t, BandProficiency, BandFor(60))
	assert.Equal(t, BandExcellence, BandFor(80))
	assert.Equal(t, BandExcellence, BandFor(100))
}

func TestNormalizer_Normalize(t *testing.T) {
	n := Default()
	nctx := Context{CompanyRevenue: 2_800_000}

	responses := []RawResponse{
		{QuestionID: "FIN-Q3", ResponseType: ResponseCurrency, Value: 85_000},
		{QuestionID: "CXP-Q1", ResponseType: ResponseNumeric, Value: 0, UnitContext: "response_time_hours"},
		{QuestionID: "STR-Q1", ResponseType: ResponseScale, Value: 4},
		{QuestionID: "OPS-Q2", ResponseType: ResponsePercentage, Value: 120},
		{QuestionID: "RMS-Q4", ResponseType: ResponseYesNo, Value: "Yes"},
		{QuestionID: "XXX-Q9", ResponseType: ResponseType("matrix"), Value: 5},
	}

	scores := n.NormalizeAll(responses, nctx)
	require.Len(t, scores, len(responses))

	for i, s := range scores {
		assert.Equal(t, responses[i].QuestionID, s.QuestionID)
		assert.GreaterOrEqual(t, s.Score, 0.0)
		assert.LessOrEqual(t, s.Score, 100.0)
	}
	assert.Equal(t, BandExcellence, scores[0].Band)
	assert.Equal(t, 100.0, scores[1].Score)
	assert.Equal(t, 75.0, scores[2].Score)
	assert.Equal(t, 100.0, scores[3].Score)
	assert.Equal(t, 100.0, scores[4].Score)
	assert.Equal(t, 0.0, scores[5].Score)

	t.Run("deterministic", func(t *testing.T) {
		assert.Equal(t, scores, n.NormalizeAll(responses, nctx))
	})
}

func TestNew_RejectsBadCalibration(t *testing.T) {
	t.Run("decreasing revenue curve", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.RevenueCurve = Curve{{X: 0, Y: 50}, {X: 1, Y: 10}}
		_, err := New(cfg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "revenue curve")
	})

	t.Run("lower-is-better curve that rises", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Metrics = []Metric{{ID: "m", Direction: LowerIsBetter, Points: Curve{{X: 0, Y: 10}, {X: 1, Y: 90}}}}
		_, err := New(cfg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "metric m")
	})

	t.Run("duplicate metric", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Metrics = append(cfg.Metrics, Metric{ID: "Cash_Runway_Months", PassThrough: true})
		_, err := New(cfg)
		require.Error(t, err)
	})

	t.Run("closed absolute bands", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.AbsoluteBands = []AmountBand{{Below: 100, Score: 10}}
		_, err := New(cfg)
		require.Error(t, err)
	})

	t.Run("substituted curve is used", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Metrics = []Metric{{ID: "defects", Direction: LowerIsBetter, Points: Curve{{X: 0, Y: 100}, {X: 10, Y: 0}}}}
		n, err := New(cfg)
		require.NoError(t, err)
		assert.Equal(t, 50.0, n.Numeric("defects", 5))
	})
}
