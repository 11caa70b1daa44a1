package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"bizhealth/pkg/testutil"
)

func TestCurrencyScenarios(t *testing.T) {
	n := Default()

	testutil.Given(t, "a company with known revenue", func(t *testing.T) {
		testutil.When(t, "the amount is 8.5% of revenue", func(t *testing.T) {
			testutil.Then(t, "it interpolates on the revenue curve", func(t *testing.T) {
				assert.InDelta(t, 90.5, n.Currency(85000, 1_000_000), 1e-9)
			})
		})
		testutil.And(t, "the amount is formatted text", func(t *testing.T) {
			testutil.Then(t, "it is parsed before scoring", func(t *testing.T) {
				assert.InDelta(t, n.Currency(85000, 1_000_000), n.Currency("$85,000", "1,000,000"), 1e-9)
			})
		})
	})

	testutil.Given(t, "no usable revenue", func(t *testing.T) {
		testutil.Then(t, "absolute bands apply", func(t *testing.T) {
			assert.Equal(t, 55.0, n.Currency(85000, nil))
			assert.Equal(t, 55.0, n.Currency(85000, "n/a"))
			assert.Equal(t, 55.0, n.Currency(85000, -10))
			assert.Equal(t, 95.0, n.Currency(2_000_000, 0))
		})
	})

	testutil.Given(t, "a non-positive or unreadable amount", func(t *testing.T) {
		testutil.Then(t, "the score is zero regardless of revenue", func(t *testing.T) {
			assert.Zero(t, n.Currency(-5, 1_000_000))
			assert.Zero(t, n.Currency(0, nil))
			assert.Zero(t, n.Currency("lots", 1_000_000))
		})
	})
}
