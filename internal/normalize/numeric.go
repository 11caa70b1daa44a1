package normalize

// Numeric scores a numeric-with-unit response for the given metric id.
//
// Registered metrics interpolate their calibration curve; lower-is-better
// curves start at 100 so a perfect 0 (no turnover, instant response) scores
// 100. Unknown metric ids and pass-through metrics are treated as a
// percentage and clamped. Negative and unparseable values score 0.
func (n *Normalizer) Numeric(metricID string, value any) float64 {
	v, ok := toFloat(value)
	if !ok || v < 0 {
		return 0
	}
	m, known := n.Metric(metricID)
	if !known || m.PassThrough {
		return clamp(v, 0, 100)
	}
	return m.Points.At(v)
}
