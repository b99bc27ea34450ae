package forecast

import (
	"fmt"
	"math"
	"time"

	"github.com/flarecast/flarecast-backend/internal/domain/risk"
)

// family is one stage of the evaluation pipeline.
type family struct {
	name string
	eval func(in *inputs, st *accumulatorState)
}

func deviationFamily(rules ...*deviationRule) func(*inputs, *accumulatorState) {
	return func(in *inputs, st *accumulatorState) {
		for _, r := range rules {
			evalDeviation(in, st, r)
		}
	}
}

// pipeline is evaluated in order; interactions must stay last since they
// read the categories every earlier family produced.
var pipeline = []family{
	{"sleep", deviationFamily(&sleepRule)},
	{"hrv", deviationFamily(&hrvRule)},
	{"resting_heart_rate", deviationFamily(&restingHRRule)},
	{"activity", deviationFamily(&activityRule)},
	{"environment", deviationFamily(environmentRules...)},
	{"cycle", evalCycle},
	{"temporal", evalTemporal},
	{"triggers", evalTriggers},
	{"medication", evalMedication},
	{"correlations", evalCorrelations},
	{"physiological", deviationFamily(physiologicalRules...)},
	{"interactions", evalInteractions},
}

// Evaluate computes a forecast from an already fetched snapshot. It does
// no I/O and returns the same result for the same inputs and now.
func Evaluate(snap Snapshot, req Request, now time.Time) *Forecast {
	if len(snap.Entries) < MinEntries {
		return neutralForecast(len(snap.Entries), now)
	}

	in := newInputs(snap, req, now)
	st := newAccumulatorState(risk.Prior(in.totalFlares(), in.observationDays()))
	for _, f := range pipeline {
		f.eval(in, st)
	}
	return finalize(in, st)
}

func finalize(in *inputs, st *accumulatorState) *Forecast {
	score := st.acc.Score()
	level := risk.LevelForScore(score)
	ranked := st.rankedFactors()
	if ranked == nil {
		ranked = []RiskFactor{}
	}
	protective := st.protective
	if protective == nil {
		protective = []string{}
	}

	return &Forecast{
		RiskScore:         score,
		RiskLevel:         level,
		Confidence:        overallConfidence(in, st),
		Factors:           ranked,
		Prediction:        prediction(score, level, ranked),
		Recommendations:   recommendations(level, ranked),
		ProtectiveFactors: protective,
		Timeframe:         Timeframe,
		ModelVersion:      ModelVersion,
		Evidence:          tally(st.factors),
		GeneratedAt:       in.now.UTC(),
	}
}

// overallConfidence averages data richness with the mean factor confidence.
func overallConfidence(in *inputs, st *accumulatorState) float64 {
	richness := 0.5*math.Min(1, float64(st.readyCount())/ReadyFamilyTarget) +
		0.5*math.Min(1, float64(len(in.entries))/RichEntryCount)
	if len(st.factors) == 0 {
		return round2(richness)
	}
	var sum float64
	for _, f := range st.factors {
		sum += f.Confidence
	}
	return round2((richness + sum/float64(len(st.factors))) / 2)
}

func tally(factors []RiskFactor) EvidenceTally {
	var t EvidenceTally
	for _, f := range factors {
		switch f.Source {
		case risk.SourceEmpirical:
			t.Empirical++
		case risk.SourceLiterature:
			t.Literature++
		case risk.SourceLearned:
			t.Learned++
		case risk.SourceInteraction:
			t.Interaction++
		}
	}
	return t
}

func neutralForecast(entries int, now time.Time) *Forecast {
	return &Forecast{
		RiskScore:  NeutralScore,
		RiskLevel:  risk.LevelForScore(NeutralScore),
		Confidence: NeutralConfidence,
		Factors:    []RiskFactor{},
		Prediction: fmt.Sprintf("Not enough data for a personal forecast yet: %d of %d entries logged.",
			entries, MinEntries),
		Recommendations: []string{
			"Log how you feel each day, including flares, sleep and possible triggers.",
			"Add sleep hours or connect a wearable to give the forecast more to work with.",
		},
		ProtectiveFactors: []string{},
		Timeframe:         Timeframe,
		ModelVersion:      ModelVersion,
		NeedsMoreData:     true,
		GeneratedAt:       now.UTC(),
	}
}
