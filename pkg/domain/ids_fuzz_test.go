//go:build go1.18

package domain

import (
	"testing"
	"unicode/utf8"
)

// FuzzParseRunID tests that parsing never panics on arbitrary input
// and always returns either a valid ID or an error.
func FuzzParseRunID(f *testing.F) {
	f.Add("")
	f.Add("BH-20261019-101500")
	f.Add("BH-00000000-000000")
	f.Add("BH-20261019-101500/../x")
	f.Add("'; DROP TABLE quality_audits;--")
	f.Add(string([]byte{0x00, 0x01, 0x02}))

	f.Fuzz(func(t *testing.T, input string) {
		id, err := ParseRunID(input)
		if err != nil {
			return
		}

		// Valid ids round-trip through their encoded time.
		if got := NewRunID(id.StartedAt()); got != id {
			t.Errorf("round-trip changed id: %q -> %q", id, got)
		}
		if !utf8.ValidString(input) {
			t.Error("non-UTF8 input was accepted")
		}
	})
}
