package forecast

import (
	"fmt"
	"sort"
	"time"

	"github.com/flarecast/flarecast-backend/internal/domain/journal"
	"github.com/flarecast/flarecast-backend/internal/domain/risk"
)

type medicationGap struct {
	name    string
	usual   time.Duration
	since   time.Duration
	ev      risk.Evidence
	overdue float64
}

// doseTimes groups administrations by medication, dropping duplicates
// logged within MinDoseInterval of the previous dose.
func (in *inputs) doseTimes() map[string][]time.Time {
	doses := make(map[string][]time.Time)
	for _, m := range in.medications {
		name := journal.NormalizeTag(m.Name)
		if name == "" || m.TakenAt.After(in.now) {
			continue
		}
		list := doses[name]
		if n := len(list); n > 0 && m.TakenAt.Sub(list[n-1]) < MinDoseInterval {
			continue
		}
		doses[name] = append(list, m.TakenAt)
	}
	return doses
}

func medianInterval(times []time.Time) time.Duration {
	intervals := make([]time.Duration, 0, len(times)-1)
	for i := 1; i < len(times); i++ {
		intervals = append(intervals, times[i].Sub(times[i-1]))
	}
	sort.Slice(intervals, func(i, j int) bool { return intervals[i] < intervals[j] })
	mid := len(intervals) / 2
	if len(intervals)%2 == 0 {
		return (intervals[mid-1] + intervals[mid]) / 2
	}
	return intervals[mid]
}

func evalMedication(in *inputs, st *accumulatorState) {
	doses := in.doseTimes()
	names := make([]string, 0, len(doses))
	for name, times := range doses {
		if len(times) >= MinDosesForSchedule {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return
	}
	sort.Strings(names)
	st.markReady("medication")

	var gaps []medicationGap
	for _, name := range names {
		times := doses[name]
		usual := medianInterval(times)
		allowed := time.Duration(GapFactor * float64(usual))
		since := in.now.Sub(times[len(times)-1])
		if since <= allowed {
			continue
		}

		h := risk.History{Total: len(in.entries), TotalFlares: in.totalFlares()}
		resolved := in.now.Add(-GapLookahead)
		for i := 1; i < len(times); i++ {
			if times[i].Sub(times[i-1]) <= allowed {
				continue
			}
			opened := times[i-1].Add(allowed)
			if opened.After(resolved) {
				continue
			}
			h.WithSignal++
			if in.flareWithin(opened, 0, GapLookahead) {
				h.FlaresWithSignal++
			}
		}

		gaps = append(gaps, medicationGap{
			name:    name,
			usual:   usual,
			since:   since,
			ev:      risk.EstimateLR(h, GapDefaultLR),
			overdue: float64(since) / float64(usual),
		})
	}

	if len(gaps) == 0 {
		st.emitProtective(RiskFactor{
			Label:      "Medication on schedule",
			Confidence: ProtectiveConfidence,
			Evidence:   fmt.Sprintf("All %d tracked medications taken on schedule", len(names)),
			Category:   CategoryMedication,
			Source:     risk.SourceLiterature,
		}, AdherenceLR)
		return
	}

	sort.SliceStable(gaps, func(i, j int) bool { return gaps[i].overdue > gaps[j].overdue })
	if len(gaps) > MaxGapFactors {
		gaps = gaps[:MaxGapFactors]
	}
	m := in.weights.Of(risk.FamilyMedication)
	for _, g := range gaps {
		st.emit(RiskFactor{
			Label:      "Missed medication: " + g.name,
			Confidence: evidenceConfidence(g.ev),
			Evidence: fmt.Sprintf("Last dose was %s ago; you usually take it every %s. %s",
				humanDuration(g.since.Round(time.Hour)), humanDuration(g.usual.Round(time.Hour)),
				provenance(g.ev, GapLookahead)),
			Category: CategoryMedication,
			Source:   g.ev.Source,
			signal:   "missed_medication",
		}, risk.Amplify(g.ev.LR, m))
	}
}
