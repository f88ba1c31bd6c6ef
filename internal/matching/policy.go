package matching

// Policy carries the scoring constants that the rule contracts leave open.
type Policy struct {
	// ConfidenceStep is subtracted per fallback source position.
	ConfidenceStep float64
	// MinFallbackConfidence floors the confidence of fallback sources.
	MinFallbackConfidence float64
	// PenaltyPerWeight is the negative-constraint penalty per unit of
	// deviation per weightage point, used when a rule sets none.
	PenaltyPerWeight float64
	// MaxPenalty caps a negative-constraint penalty.
	MaxPenalty float64
	// FuzzyThreshold is the minimum keyword ratio (0-100) for a fuzzy hit.
	FuzzyThreshold float64
}

func DefaultPolicy() Policy {
	return Policy{
		ConfidenceStep:        15,
		MinFallbackConfidence: 40,
		PenaltyPerWeight:      5,
		MaxPenalty:            100,
		FuzzyThreshold:        88,
	}
}

// confidenceFor returns the directness of the source at position i.
func (p Policy) confidenceFor(position int) float64 {
	if position <= 0 {
		return 100
	}
	c := 100 - float64(position)*p.ConfidenceStep
	if c < p.MinFallbackConfidence {
		return p.MinFallbackConfidence
	}
	return c
}
