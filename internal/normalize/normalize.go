// Package normalize maps raw questionnaire answers onto the 0-100 score
// domain.
//
// Every function in this package is pure and total: malformed, missing or
// out-of-range input resolves to a score in [0,100] and never to an error.
// Questionnaire data is expected to be imperfect, and one bad field must not
// abort an entire assessment.
package normalize

import (
	"fmt"
	"strings"
)

// ResponseType identifies the scoring family for a question.
type ResponseType string

const (
	ResponseCurrency   ResponseType = "currency"
	ResponseNumeric    ResponseType = "numeric"
	ResponseScale      ResponseType = "scale"
	ResponsePercentage ResponseType = "percentage"
	ResponseYesNo      ResponseType = "yesno"
)

// IsValid reports whether t is one of the supported response types.
func (t ResponseType) IsValid() bool {
	switch t {
	case ResponseCurrency, ResponseNumeric, ResponseScale, ResponsePercentage, ResponseYesNo:
		return true
	}
	return false
}

// RawResponse is one answer as produced by questionnaire ingestion.
// UnitContext carries the metric id for numeric responses.
type RawResponse struct {
	QuestionID   string       `json:"question_id"`
	ResponseType ResponseType `json:"response_type"`
	Value        any          `json:"value"`
	UnitContext  string       `json:"unit_context,omitempty"`
}

// Context holds auxiliary company facts. A zero CompanyRevenue means the
// revenue is unknown.
type Context struct {
	CompanyRevenue float64 `json:"company_revenue,omitempty"`
}

// NormalizedScore is the scored form of a RawResponse.
type NormalizedScore struct {
	QuestionID string  `json:"question_id"`
	Score      float64 `json:"score"`
	Band       Band    `json:"band"`
}

// Normalizer applies a fixed set of calibration curves. It holds no mutable
// state and is safe for concurrent use.
type Normalizer struct {
	revenueCurve  Curve
	absoluteBands []AmountBand
	metrics       map[string]Metric
}

// New validates cfg and builds a Normalizer. Only calibration errors are
// reported; scoring itself never fails.
func New(cfg Config) (*Normalizer, error) {
	if err := cfg.RevenueCurve.validate(HigherIsBetter); err != nil {
		return nil, fmt.Errorf("revenue curve: %w", err)
	}
	if err := validateBands(cfg.AbsoluteBands); err != nil {
		return nil, fmt.Errorf("absolute bands: %w", err)
	}
	metrics := make(map[string]Metric, len(cfg.Metrics))
	for _, m := range cfg.Metrics {
		id := strings.ToLower(strings.TrimSpace(m.ID))
		if id == "" {
			return nil, fmt.Errorf("metric id is required")
		}
		if _, dup := metrics[id]; dup {
			return nil, fmt.Errorf("metric %s registered twice", id)
		}
		if !m.PassThrough {
			if err := m.Points.validate(m.Direction); err != nil {
				return nil, fmt.Errorf("metric %s: %w", id, err)
			}
		}
		m.ID = id
		metrics[id] = m
	}
	return &Normalizer{
		revenueCurve:  cfg.RevenueCurve,
		absoluteBands: cfg.AbsoluteBands,
		metrics:       metrics,
	}, nil
}

// MustNew is New for configurations known to be valid at compile time.
func MustNew(cfg Config) *Normalizer {
	n, err := New(cfg)
	if err != nil {
		panic(err)
	}
	return n
}

// Normalize scores a single response. Unknown response types score 0.
func (n *Normalizer) Normalize(r RawResponse, nctx Context) NormalizedScore {
	var score float64
	switch r.ResponseType {
	case ResponseCurrency:
		score = n.Currency(r.Value, nctx.CompanyRevenue)
	case ResponseNumeric:
		score = n.Numeric(r.UnitContext, r.Value)
	case ResponseScale:
		score = Scale(r.Value)
	case ResponsePercentage:
		score = Percentage(r.Value)
	case ResponseYesNo:
		score = YesNo(r.Value)
	default:
		score = 0
	}
	return NormalizedScore{
		QuestionID: r.QuestionID,
		Score:      score,
		Band:       BandFor(score),
	}
}

// NormalizeAll scores a questionnaire, preserving input order.
func (n *Normalizer) NormalizeAll(responses []RawResponse, nctx Context) []NormalizedScore {
	out := make([]NormalizedScore, 0, len(responses))
	for _, r := range responses {
		out = append(out, n.Normalize(r, nctx))
	}
	return out
}

// Metric returns the registered calibration for id, if any.
func (n *Normalizer) Metric(id string) (Metric, bool) {
	m, ok := n.metrics[strings.ToLower(strings.TrimSpace(id))]
	return m, ok
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
