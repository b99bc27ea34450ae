package forecast

import (
	"math"
	"sort"

	"github.com/flarecast/flarecast-backend/internal/domain/risk"
)

// accumulatorState is threaded through every signal family. Families only
// append to it; nothing is removed once emitted.
type accumulatorState struct {
	acc        *risk.Accumulator
	factors    []RiskFactor
	protective []string
	ready      map[string]bool
}

func newAccumulatorState(prior float64) *accumulatorState {
	return &accumulatorState{
		acc:   risk.NewAccumulator(prior),
		ready: make(map[string]bool),
	}
}

// markReady records that a signal had enough history to be scored.
func (s *accumulatorState) markReady(name string) {
	s.ready[name] = true
}

func (s *accumulatorState) readyCount() int {
	return len(s.ready)
}

// emit applies the factor's likelihood ratio to the posterior and records it.
func (s *accumulatorState) emit(f RiskFactor, lr float64) {
	f.Confidence = clamp01(f.Confidence)
	s.acc.Update(lr, f.Confidence)
	s.record(f, lr, impactOf(lr, f.Confidence))
}

// record stores a factor whose updates have already been applied.
func (s *accumulatorState) record(f RiskFactor, lr, impact float64) {
	rounded := round2(lr)
	f.LikelihoodRatio = &rounded
	f.positive = impact > 0
	f.Impact = round1(impact)
	f.Confidence = round2(clamp01(f.Confidence))
	s.factors = append(s.factors, f)
}

// emitProtective is emit plus a protective evidence string.
func (s *accumulatorState) emitProtective(f RiskFactor, lr float64) {
	s.emit(f, lr)
	s.protective = append(s.protective, f.Evidence)
}

// activeCategories returns the set of categories with risk-positive factors.
func (s *accumulatorState) activeCategories() map[Category]bool {
	active := make(map[Category]bool)
	for _, f := range s.factors {
		if f.RiskPositive() {
			active[f.Category] = true
		}
	}
	return active
}

// firedSignals returns the signal tags of risk-positive factors.
func (s *accumulatorState) firedSignals() map[string]bool {
	fired := make(map[string]bool)
	for _, f := range s.factors {
		if f.RiskPositive() && f.signal != "" {
			fired[f.signal] = true
		}
	}
	return fired
}

// rankedFactors orders risk-positive factors by impact×confidence, then
// the rest by magnitude, and caps the list.
func (s *accumulatorState) rankedFactors() []RiskFactor {
	var positive, other []RiskFactor
	for _, f := range s.factors {
		if f.RiskPositive() {
			positive = append(positive, f)
		} else {
			other = append(other, f)
		}
	}
	byWeight := func(list []RiskFactor) {
		sort.SliceStable(list, func(i, j int) bool {
			wi := math.Abs(list[i].Impact) * list[i].Confidence
			wj := math.Abs(list[j].Impact) * list[j].Confidence
			if wi != wj {
				return wi > wj
			}
			return list[i].Label < list[j].Label
		})
	}
	byWeight(positive)
	byWeight(other)

	ranked := append(positive, other...)
	if len(ranked) > MaxFactors {
		ranked = ranked[:MaxFactors]
	}
	return ranked
}

func impactOf(lr, confidence float64) float64 {
	eff := risk.EffectiveLR(lr, confidence)
	if eff <= 0 {
		return -ImpactScale * 5
	}
	return ImpactScale * math.Log(eff)
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(0, math.Min(1, v))
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }
func round2(v float64) float64 { return math.Round(v*100) / 100 }
