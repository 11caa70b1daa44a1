package normalize

// Band is the named range a 0-100 score falls into.
type Band string

const (
	BandCritical    Band = "Critical"
	BandAttention   Band = "Attention"
	BandProficiency Band = "Proficiency"
	BandExcellence  Band = "Excellence"
)

// BandFor classifies score: [0,40) Critical, [40,60) Attention,
// [60,80) Proficiency, [80,100] Excellence.
func BandFor(score float64) Band {
	switch {
	case score >= 80:
		return BandExcellence
	case score >= 60:
		return BandProficiency
	case score >= 40:
		return BandAttention
	default:
		return BandCritical
	}
}
