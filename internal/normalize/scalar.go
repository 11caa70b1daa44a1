package normalize

import "strings"

// Scale maps a 1-5 Likert answer onto 0-100 (1→0, 2→25, 3→50, 4→75, 5→100).
// Fractional answers interpolate linearly; values outside [1,5] clamp and
// non-numeric values score 0.
func Scale(value any) float64 {
	v, ok := toFloat(value)
	if !ok {
		return 0
	}
	return (clamp(v, 1, 5) - 1) * 25
}

// Percentage is the identity on [0,100]; values outside clamp and
// non-numeric values score 0.
func Percentage(value any) float64 {
	v, ok := toFloat(value)
	if !ok {
		return 0
	}
	return clamp(v, 0, 100)
}

// YesNo scores "yes"/true as 100 and everything else, including "no",
// false, "" and unexpected values, as 0.
func YesNo(value any) float64 {
	switch v := value.(type) {
	case bool:
		if v {
			return 100
		}
		return 0
	case string:
		if strings.EqualFold(strings.TrimSpace(v), "yes") {
			return 100
		}
		return 0
	default:
		return 0
	}
}
