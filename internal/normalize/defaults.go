package normalize

// defaultNormalizer is built once from DefaultConfig and never modified.
var defaultNormalizer = MustNew(DefaultConfig())

// Default returns the Normalizer backed by DefaultConfig.
func Default() *Normalizer {
	return defaultNormalizer
}

// NormalizeCurrency scores amount against revenue with the default calibration.
func NormalizeCurrency(amount, revenue any) float64 {
	return defaultNormalizer.Currency(amount, revenue)
}

// NormalizeNumeric scores value for metricID with the default calibration.
func NormalizeNumeric(metricID string, value any) float64 {
	return defaultNormalizer.Numeric(metricID, value)
}
