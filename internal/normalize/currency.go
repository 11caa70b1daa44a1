package normalize

// Currency scores a currency amount relative to company revenue.
//
// With a usable revenue the amount is scored on RevenueCurve via
// amount/revenue. When revenue is missing, zero, negative or not a number,
// the amount is scored on the absolute-magnitude bands instead, so the
// result never depends on context that was not supplied. Non-positive or
// unparseable amounts score exactly 0.
func (n *Normalizer) Currency(amount any, revenue any) float64 {
	a, ok := toFloat(amount)
	if !ok || a <= 0 {
		return 0
	}
	if r, ok := toFloat(revenue); ok && r > 0 {
		return n.revenueCurve.At(a / r)
	}
	return n.absoluteScore(a)
}

func (n *Normalizer) absoluteScore(amount float64) float64 {
	for _, b := range n.absoluteBands {
		if amount < b.Below {
			return b.Score
		}
	}
	return 0
}
