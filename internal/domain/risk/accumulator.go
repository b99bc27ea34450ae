package risk

import "math"

const (
	MinProbability = 0.01
	MaxProbability = 0.99

	// MaxPrior caps the user's historical daily flare rate used as the seed.
	MaxPrior = 0.8
)

// Prior is the user's own daily flare rate, capped at MaxPrior.
func Prior(totalFlares int, observationDays float64) float64 {
	if observationDays < 1 {
		observationDays = 1
	}
	if totalFlares < 0 {
		totalFlares = 0
	}
	return math.Min(MaxPrior, float64(totalFlares)/observationDays)
}

// Accumulator holds the running posterior for one forecast.
type Accumulator struct {
	p       float64
	updates int
}

// NewAccumulator seeds the posterior with prior, clamped to the valid range.
func NewAccumulator(prior float64) *Accumulator {
	return &Accumulator{p: clampProbability(prior)}
}

// Update applies one confidence-weighted likelihood ratio and returns the
// change in probability.
func (a *Accumulator) Update(lr, confidence float64) float64 {
	before := a.p
	eff := EffectiveLR(lr, confidence)
	odds := a.p / (1 - a.p)
	odds *= eff
	if math.IsInf(odds, 1) {
		a.p = MaxProbability
	} else {
		a.p = clampProbability(odds / (1 + odds))
	}
	a.updates++
	return a.p - before
}

// EffectiveLR dampens lr toward 1 by confidence. Non-finite ratios and
// zero confidence are neutral.
func EffectiveLR(lr, confidence float64) float64 {
	if math.IsNaN(lr) || math.IsInf(lr, 0) {
		return 1
	}
	if math.IsNaN(confidence) || confidence <= 0 {
		return 1
	}
	if lr < 0 {
		lr = 0
	}
	confidence = math.Min(1, confidence)
	return 1 + confidence*(lr-1)
}

func (a *Accumulator) Probability() float64 { return a.p }
func (a *Accumulator) Updates() int         { return a.updates }

// Score is the posterior as a 0..100 integer.
func (a *Accumulator) Score() int {
	return int(math.Round(a.p * 100))
}

func clampProbability(p float64) float64 {
	if math.IsNaN(p) {
		return MinProbability
	}
	return math.Max(MinProbability, math.Min(MaxProbability, p))
}
