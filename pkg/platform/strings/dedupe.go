// Package strings provides string manipulation utilities.
package strings

import (
	"strings"
)

// SplitCodes parses a comma-separated list of identifier codes (dimension
// codes, broker addresses) into a clean slice. Order is preserved.
//
// Example:
//
//	SplitCodes(" str, FIN,,rms ,Str", true)
//	// Returns: []string{"STR", "FIN", "RMS"}
func SplitCodes(raw string, upper bool) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	if upper {
		for i, p := range parts {
			parts[i] = strings.ToUpper(p)
		}
	}
	return DedupeAndTrim(parts)
}

// DedupeAndTrim removes duplicates and empty strings from a slice,
// trimming whitespace from each element. Order is preserved.
func DedupeAndTrim(values []string) []string {
	if len(values) == 0 {
		return values
	}

	seen := make(map[string]struct{}, len(values))
	result := make([]string, 0, len(values))

	for _, v := range values {
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			continue
		}
		if _, ok := seen[trimmed]; !ok {
			seen[trimmed] = struct{}{}
			result = append(result, trimmed)
		}
	}

	return result
}
