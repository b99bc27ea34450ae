package risk

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeLR(t *testing.T) {
	tests := []struct {
		name string
		h    History
		want float64
	}{
		{
			name: "informative signal",
			h:    History{WithSignal: 10, Total: 100, FlaresWithSignal: 5, TotalFlares: 20},
			// sens 0.25, fpr 5/80
			want: 4,
		},
		{
			name: "zero false positives hits the floor and the cap",
			h:    History{WithSignal: 6, Total: 60, FlaresWithSignal: 6, TotalFlares: 10},
			want: MaxLikelihoodRatio,
		},
		{
			name: "no flares is neutral",
			h:    History{WithSignal: 6, Total: 60},
			want: 1,
		},
		{
			name: "every entry is a flare",
			h:    History{WithSignal: 5, Total: 5, FlaresWithSignal: 5, TotalFlares: 5},
			want: MaxLikelihoodRatio,
		},
		{
			name: "signal never precedes flares",
			h:    History{WithSignal: 8, Total: 50, TotalFlares: 10},
			want: 0,
		},
		{
			name: "inconsistent counts stay non-negative",
			h:    History{WithSignal: 1, Total: 3, FlaresWithSignal: 4, TotalFlares: 9},
			want: MaxLikelihoodRatio,
		},
		{
			name: "huge magnitudes are capped",
			h:    History{WithSignal: 1_000_000, Total: 1_000_000_000, FlaresWithSignal: 999_999, TotalFlares: 1_000_000},
			want: MaxLikelihoodRatio,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeLR(tt.h)
			assert.InDelta(t, tt.want, got, 1e-9)
			assert.GreaterOrEqual(t, got, 0.0)
			assert.LessOrEqual(t, got, MaxLikelihoodRatio)
			assert.False(t, math.IsNaN(got))
		})
	}
}

func TestDefaultLRTiers(t *testing.T) {
	assert.Equal(t, 2.5, DefaultLR(-6))
	assert.Equal(t, 1.8, DefaultLR(2.2))
	assert.Equal(t, 1.5, DefaultLR(-1.5))
	assert.Equal(t, 1.3, DefaultLR(1.1))
}

func TestEstimateLRProvenance(t *testing.T) {
	sparse := EstimateLR(History{WithSignal: 2, Total: 40, FlaresWithSignal: 2, TotalFlares: 8}, 1.5)
	assert.Equal(t, SourceLiterature, sparse.Source)
	assert.Equal(t, 1.5, sparse.LR)
	assert.False(t, sparse.Empirical())

	rich := EstimateLR(History{WithSignal: 10, Total: 100, FlaresWithSignal: 5, TotalFlares: 20}, 1.5)
	assert.Equal(t, SourceEmpirical, rich.Source)
	assert.InDelta(t, 4.0, rich.LR, 1e-9)
	assert.Equal(t, 10, rich.Instances)
	assert.Equal(t, 5, rich.Hits)
}
