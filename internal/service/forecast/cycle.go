package forecast

import (
	"fmt"
	"math"

	"github.com/flarecast/flarecast-backend/internal/domain/journal"
	"github.com/flarecast/flarecast-backend/internal/domain/risk"
)

func evalCycle(in *inputs, st *accumulatorState) {
	if !in.profile.TracksCycle() {
		return
	}

	logged := 0
	for _, e := range in.entries {
		if _, ok := e.Value(journal.SignalCycleDay); ok {
			logged++
		}
	}
	if logged >= risk.MinBaselineSamples {
		st.markReady(journal.SignalCycleDay.Name)
	}

	day, ok := currentCycleDay(in)
	if !ok {
		return
	}
	perimenstrual := day <= CycleEarlyPhaseEnd || day >= CycleLatePhaseStart

	hist := in.history(func(e journal.LogEntry) bool {
		v, ok := e.Value(journal.SignalCycleDay)
		return ok && math.Abs(v-float64(day)) <= CycleDayTolerance
	}, 0, DeviationLookahead)

	fallback := 1.0
	if perimenstrual {
		fallback = CycleDefaultLR
	}
	ev := risk.EstimateLR(hist, fallback)
	if ev.Empirical() && ev.LR < CycleMinEmpiricalLR {
		return
	}
	if !ev.Empirical() && !perimenstrual {
		return
	}

	m := in.weights.Of(risk.FamilyCycle)
	st.emit(RiskFactor{
		Label:      "Menstrual cycle phase",
		Confidence: evidenceConfidence(ev),
		Evidence:   fmt.Sprintf("Cycle day %d (%s phase). %s", day, cyclePhase(day), provenance(ev, DeviationLookahead)),
		Category:   CategoryCycle,
		Source:     ev.Source,
		signal:     "cycle_phase",
	}, risk.Amplify(ev.LR, m))
}

// currentCycleDay prefers the explicit request value over logged readings.
func currentCycleDay(in *inputs) (int, bool) {
	sig := journal.SignalCycleDay
	if d := in.request.MenstrualDay; d != nil {
		if v := float64(*d); v >= sig.Min && v <= sig.Max {
			return *d, true
		}
	}
	v, _, ok := in.current(sig, nil)
	if !ok {
		return 0, false
	}
	return int(math.Round(v)), true
}

func cyclePhase(day int) string {
	switch {
	case day <= 5:
		return "menstrual"
	case day <= 13:
		return "follicular"
	case day <= 16:
		return "ovulatory"
	case day >= CycleLatePhaseStart:
		return "premenstrual"
	default:
		return "luteal"
	}
}
