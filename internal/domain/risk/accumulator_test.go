package risk

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrior(t *testing.T) {
	assert.InDelta(t, 0.2, Prior(6, 30), 1e-12)
	assert.Equal(t, MaxPrior, Prior(90, 30))
	assert.Equal(t, 0.0, Prior(0, 30))
	assert.Equal(t, MaxPrior, Prior(3, 0))
}

func TestAccumulatorMonotonic(t *testing.T) {
	tests := []struct {
		name       string
		lr         float64
		confidence float64
		direction  int
	}{
		{"strong evidence", 3, 0.8, 1},
		{"weak evidence", 1.05, 0.1, 1},
		{"protective", 0.7, 0.9, -1},
		{"neutral ratio", 1, 1, 0},
		{"zero confidence", 5, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, prior := range []float64{0.05, 0.3, 0.5, 0.8} {
				acc := NewAccumulator(prior)
				before := acc.Probability()
				delta := acc.Update(tt.lr, tt.confidence)

				switch tt.direction {
				case 1:
					assert.Greater(t, acc.Probability(), before)
					assert.Greater(t, delta, 0.0)
				case -1:
					assert.Less(t, acc.Probability(), before)
				default:
					assert.InDelta(t, before, acc.Probability(), 1e-15)
				}
			}
		})
	}
}

func TestAccumulatorClampsOnAdversarialInput(t *testing.T) {
	acc := NewAccumulator(0.5)
	inputs := []struct{ lr, conf float64 }{
		{1000, 1}, {1000, 1}, {0, 1}, {1e-9, 1}, {math.Inf(1), 1},
		{-5, 1}, {math.NaN(), 0.5}, {20, math.NaN()}, {1000, 7},
	}

	for _, in := range inputs {
		acc.Update(in.lr, in.conf)
		p := acc.Probability()
		assert.GreaterOrEqual(t, p, MinProbability)
		assert.LessOrEqual(t, p, MaxProbability)
		assert.False(t, math.IsNaN(p))
	}
	assert.Equal(t, len(inputs), acc.Updates())
}

func TestAccumulatorSeedAndScore(t *testing.T) {
	assert.Equal(t, MinProbability, NewAccumulator(0).Probability())
	assert.Equal(t, MaxProbability, NewAccumulator(3).Probability())

	acc := NewAccumulator(0.2)
	// odds 0.25 * 3 = 0.75 -> p = 0.428571...
	acc.Update(3, 1)
	assert.InDelta(t, 0.75/1.75, acc.Probability(), 1e-12)
	assert.Equal(t, 43, acc.Score())
}

func TestEffectiveLR(t *testing.T) {
	assert.InDelta(t, 2.0, EffectiveLR(3, 0.5), 1e-12)
	assert.InDelta(t, 0.8, EffectiveLR(0.6, 0.5), 1e-12)
	assert.Equal(t, 1.0, EffectiveLR(10, -1))
}

func TestEffectiveLR_NonFiniteInputsAreNeutral(t *testing.T) {
	tests := []struct {
		name       string
		lr         float64
		confidence float64
	}{
		{"infinite ratio without confidence", math.Inf(1), 0},
		{"infinite ratio", math.Inf(1), 1},
		{"negative infinity", math.Inf(-1), 0.5},
		{"NaN ratio", math.NaN(), 0.5},
		{"NaN confidence", 20, math.NaN()},
		{"zero confidence", 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, 1.0, EffectiveLR(tt.lr, tt.confidence))

			acc := NewAccumulator(0.3)
			delta := acc.Update(tt.lr, tt.confidence)
			assert.InDelta(t, 0.3, acc.Probability(), 1e-12)
			assert.InDelta(t, 0.0, delta, 1e-12)
		})
	}
}
