package anomaly

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"bizhealth/internal/normalize"
)

// Upstream phases own their artifact shapes, so extraction accepts the
// common layouts and only needs one number per identifier:
//
//	{"FIN-01": 85000, ...}
//	{"FIN-01": {"value": 85000}, ...}
//	[{"sub_indicator_id": "FIN-01", "score": 82}, ...]
//	[{"question_id": "FIN-01", "value": "$85,000"}, ...]
//	{"run_id": "...", "scores": <any of the above>}
var (
	wrapperKeys = []string{"sub_indicators", "subIndicators", "responses", "scores", "results", "items", "data"}
	// Specific keys win over a generic row "id".
	idKeys      = []string{"sub_indicator_id", "subIndicatorId", "question_id", "questionId", "id"}
	valueKeys   = []string{"value", "score", "raw_value", "rawValue", "normalized_score", "normalizedScore", "final_score", "finalScore", "response"}
)

// ExtractValues decodes an artifact into identifier → value. Text answers
// are read the way the normalizer reads them ("$85,000", "45%"), and
// yes/no answers count as 1/0 like booleans. Entries without a usable
// numeric value are dropped.
func ExtractValues(data []byte) (map[string]float64, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode artifact: %w", err)
	}
	out := map[string]float64{}
	collect(unwrap(doc), out)
	return out, nil
}

func unwrap(doc any) any {
	for range 4 {
		m, ok := doc.(map[string]any)
		if !ok {
			return doc
		}
		inner, found := firstContainer(m)
		if !found {
			return doc
		}
		doc = inner
	}
	return doc
}

func firstContainer(m map[string]any) (any, bool) {
	for _, k := range wrapperKeys {
		switch v := m[k].(type) {
		case map[string]any, []any:
			return v, true
		}
	}
	return nil, false
}

func collect(doc any, out map[string]float64) {
	switch v := doc.(type) {
	case map[string]any:
		for id, entry := range v {
			id = strings.TrimSpace(id)
			if id == "" {
				continue
			}
			if f, ok := valueOf(entry); ok {
				out[id] = f
			}
		}
	case []any:
		for _, entry := range v {
			obj, ok := entry.(map[string]any)
			if !ok {
				continue
			}
			id := idOf(obj)
			if id == "" {
				continue
			}
			if f, ok := valueOf(obj); ok {
				out[id] = f
			}
		}
	}
}

func idOf(obj map[string]any) string {
	for _, k := range idKeys {
		switch v := obj[k].(type) {
		case string:
			if s := strings.TrimSpace(v); s != "" {
				return s
			}
		case json.Number:
			return v.String()
		}
	}
	return ""
}

func valueOf(v any) (float64, bool) {
	switch x := v.(type) {
	case json.Number:
		return normalize.ParseNumber(x)
	case string:
		switch strings.ToLower(strings.TrimSpace(x)) {
		case "yes", "true":
			return 1, true
		case "no", "false":
			return 0, true
		}
		return normalize.ParseNumber(x)
	case bool:
		if x {
			return 1, true
		}
		return 0, true
	case map[string]any:
		for _, k := range valueKeys {
			if inner, ok := x[k]; ok {
				if f, ok := valueOf(inner); ok {
					return f, true
				}
			}
		}
	}
	return 0, false
}
