// Package risk holds the numerical building blocks of the flare forecaster:
// adaptive baselines, short-window trends, likelihood ratios, condition
// sensitivity weights and the Bayesian accumulator they feed.
package risk

import "math"

const (
	// MinBaselineSamples is the sample count at which a baseline becomes usable.
	MinBaselineSamples = 5

	// VarianceFloor keeps z-scores finite on constant histories.
	VarianceFloor = 0.01
)

// Baseline is an exponentially weighted running mean and variance.
type Baseline struct {
	alpha    float64
	mean     float64
	variance float64
	count    int
}

// NewBaseline creates an empty baseline. Alpha is clamped to (0, 1].
func NewBaseline(alpha float64) *Baseline {
	if alpha <= 0 || alpha > 1 {
		alpha = 1
	}
	return &Baseline{alpha: alpha}
}

// BuildBaseline feeds values, oldest first, into a new baseline.
func BuildBaseline(alpha float64, values []float64) *Baseline {
	b := NewBaseline(alpha)
	for _, v := range values {
		b.Feed(v)
	}
	return b
}

// Feed incorporates one sample.
func (b *Baseline) Feed(value float64) {
	b.count++
	if b.count == 1 {
		b.mean = value
		b.variance = 0
		return
	}
	diff := value - b.mean
	b.mean = b.alpha*value + (1-b.alpha)*b.mean
	b.variance = (1 - b.alpha) * (b.variance + b.alpha*diff*diff)
}

func (b *Baseline) Mean() float64     { return b.mean }
func (b *Baseline) Variance() float64 { return b.variance }
func (b *Baseline) Count() int        { return b.count }
func (b *Baseline) Alpha() float64    { return b.alpha }

// StdDev is the floored standard deviation used for scoring.
func (b *Baseline) StdDev() float64 {
	return math.Sqrt(math.Max(b.variance, VarianceFloor))
}

// Ready reports whether enough samples have been seen to score against.
func (b *Baseline) Ready() bool {
	return b.count >= MinBaselineSamples
}

// ZScore returns how many standard deviations value sits from the mean.
// ok is false until the baseline is ready.
func (b *Baseline) ZScore(value float64) (z float64, ok bool) {
	if !b.Ready() {
		return 0, false
	}
	return (value - b.mean) / b.StdDev(), true
}

// IsAnomaly reports |z| > limit. An unready baseline never flags.
func (b *Baseline) IsAnomaly(value, limit float64) bool {
	z, ok := b.ZScore(value)
	return ok && math.Abs(z) > limit
}
