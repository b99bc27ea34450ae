package forecast

import (
	"fmt"
	"testing"

	"github.com/flarecast/flarecast-backend/internal/domain/risk"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccumulatorState_RankedFactors(t *testing.T) {
	st := newAccumulatorState(0.2)
	for i := 0; i < 10; i++ {
		st.emit(RiskFactor{Label: fmt.Sprintf("risk %02d", i), Confidence: 0.5, Category: CategoryPattern}, 1.1+float64(i)*0.2)
	}
	for i := 0; i < 5; i++ {
		st.emit(RiskFactor{Label: fmt.Sprintf("protective %d", i), Confidence: 0.5, Category: CategorySleep}, 0.9)
	}

	ranked := st.rankedFactors()
	require.Len(t, ranked, MaxFactors)
	assert.Equal(t, "risk 09", ranked[0].Label)
	for i := 0; i < 10; i++ {
		assert.True(t, ranked[i].RiskPositive(), ranked[i].Label)
		if i > 0 {
			prev := ranked[i-1].Impact * ranked[i-1].Confidence
			assert.GreaterOrEqual(t, prev, ranked[i].Impact*ranked[i].Confidence)
		}
	}
	assert.False(t, ranked[10].RiskPositive())
	assert.Len(t, st.factors, 15, "all factors still count towards confidence")
}

func TestAccumulatorState_Emit(t *testing.T) {
	st := newAccumulatorState(0.2)
	st.emit(RiskFactor{Label: "x", Confidence: 1.7, Category: CategorySleep, signal: "poor_sleep"}, 3)

	require.Len(t, st.factors, 1)
	f := st.factors[0]
	assert.Equal(t, 1.0, f.Confidence)
	assert.Equal(t, 3.0, *f.LikelihoodRatio)
	assert.InDelta(t, 27.5, f.Impact, 0.05)
	assert.InDelta(t, 0.75/1.75, st.acc.Probability(), 1e-12)
	assert.True(t, st.firedSignals()["poor_sleep"])
	assert.True(t, st.activeCategories()[CategorySleep])
}

func TestAccumulatorState_WeakEvidenceStaysRiskPositive(t *testing.T) {
	st := newAccumulatorState(0.2)
	st.emit(RiskFactor{Label: "faint", Confidence: 0.5, Category: CategoryWeather, signal: "pressure_drop"}, 1.001)
	st.emit(RiskFactor{Label: "protective", Confidence: 0.5, Category: CategorySleep}, 0.9)

	require.Len(t, st.factors, 2)
	faint := st.factors[0]
	assert.Equal(t, 0.0, faint.Impact, "rounds to zero")
	assert.True(t, faint.RiskPositive())
	assert.True(t, st.activeCategories()[CategoryWeather])
	assert.True(t, st.firedSignals()["pressure_drop"])
	assert.False(t, st.activeCategories()[CategorySleep])

	ranked := st.rankedFactors()
	assert.Equal(t, "faint", ranked[0].Label)
}

func TestDetectInteractions(t *testing.T) {
	tests := []struct {
		name   string
		active map[Category]bool
		want   []float64
	}{
		{"nothing", map[Category]bool{}, nil},
		{"single stressor", map[Category]bool{CategorySleep: true}, nil},
		{"sleep and stress", map[Category]bool{CategorySleep: true, CategoryStress: true}, []float64{SleepStressLR}},
		{"weather alone", map[Category]bool{CategoryWeather: true, CategoryTrigger: true}, nil},
		{"weather and activity", map[Category]bool{CategoryWeather: true, CategoryActivity: true}, []float64{WeatherPhysiologicalLR}},
		{"medication and weather", map[Category]bool{CategoryMedication: true, CategoryWeather: true}, []float64{MedicationGapStressorLR}},
		{
			"allostatic overload",
			map[Category]bool{CategorySleep: true, CategoryStress: true, CategoryWeather: true},
			[]float64{SleepStressLR, WeatherPhysiologicalLR, AllostaticLR},
		},
		{"non-stressor categories do not count", map[Category]bool{CategoryCycle: true, CategoryPattern: true, CategoryLearned: true}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []float64
			for _, it := range detectInteractions(tt.active) {
				got = append(got, it.lr)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEvalInteractions_SyntheticFactor(t *testing.T) {
	st := newAccumulatorState(0.3)
	st.emit(RiskFactor{Label: "a", Confidence: 0.5, Category: CategorySleep}, 2)
	st.emit(RiskFactor{Label: "b", Confidence: 0.5, Category: CategoryStress}, 2)
	before := st.acc.Probability()

	evalInteractions(nil, st)

	require.Len(t, st.factors, 3)
	combo := st.factors[2]
	assert.Equal(t, CategoryInteraction, combo.Category)
	assert.Equal(t, risk.SourceInteraction, combo.Source)
	assert.Equal(t, SleepStressLR, *combo.LikelihoodRatio)
	assert.Greater(t, st.acc.Probability(), before)
}

func TestRecommendations(t *testing.T) {
	factors := []RiskFactor{
		{Label: "a", Impact: 10, Category: CategoryWeather},
		{Label: "b", Impact: 8, Category: CategoryWeather},
		{Label: "c", Impact: 5, Category: CategorySleep},
		{Label: "d", Impact: -2, Category: CategoryMedication},
	}

	recs := recommendations(risk.LevelHigh, factors)
	require.Len(t, recs, 3)
	assert.Equal(t, categoryAdvice[CategoryWeather], recs[0])
	assert.Equal(t, categoryAdvice[CategorySleep], recs[1])

	assert.Len(t, recommendations(risk.LevelLow, nil), 1)
	assert.Contains(t, prediction(20, risk.LevelLow, nil), "No strong warning signs")
	assert.Contains(t, prediction(80, risk.LevelVeryHigh, factors), "Very high flare risk over the next 24 hours (80%)")
}
