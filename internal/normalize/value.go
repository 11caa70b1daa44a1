package normalize

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// toFloat coerces loosely typed questionnaire values to a finite number.
// Strings may carry currency symbols, thousands separators, a percent sign
// or surrounding whitespace ("$85,000", "12.5%", " 4 ").
func toFloat(v any) (float64, bool) {
	var f float64
	switch x := v.(type) {
	case nil:
		return 0, false
	case float64:
		f = x
	case float32:
		f = float64(x)
	case int:
		f = float64(x)
	case int8:
		f = float64(x)
	case int16:
		f = float64(x)
	case int32:
		f = float64(x)
	case int64:
		f = float64(x)
	case uint:
		f = float64(x)
	case uint8:
		f = float64(x)
	case uint16:
		f = float64(x)
	case uint32:
		f = float64(x)
	case uint64:
		f = float64(x)
	case json.Number:
		parsed, err := x.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case string:
		parsed, ok := parseLooseNumber(x)
		if !ok {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// ParseNumber coerces a loosely typed answer to a finite number using the
// same rules as scoring: numbers pass through, and strings may carry
// currency symbols, separators or a percent sign.
func ParseNumber(v any) (float64, bool) {
	return toFloat(v)
}

var numberReplacer = strings.NewReplacer("$", "", ",", "", "%", "", "_", "", " ", "")

func parseLooseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	s = strings.TrimSuffix(strings.TrimSuffix(strings.ToUpper(s), "USD"), " ")
	s = numberReplacer.Replace(s)
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
