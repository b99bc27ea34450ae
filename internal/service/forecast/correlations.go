package forecast

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/flarecast/flarecast-backend/internal/domain/journal"
	"github.com/flarecast/flarecast-backend/internal/domain/risk"
)

var correlationOutcomes = map[string]bool{
	"flare":   true,
	"symptom": true,
}

// evalCorrelations applies learned trigger associations whose trigger is
// active now, either as a recently logged tag or as a signal that fired
// earlier in this forecast.
func evalCorrelations(in *inputs, st *accumulatorState) {
	if len(in.correlations) == 0 {
		return
	}
	fired := st.firedSignals()

	records := make([]journal.CorrelationRecord, len(in.correlations))
	copy(records, in.correlations)
	sort.SliceStable(records, func(i, j int) bool {
		if records[i].Confidence != records[j].Confidence {
			return records[i].Confidence > records[j].Confidence
		}
		if records[i].Occurrences != records[j].Occurrences {
			return records[i].Occurrences > records[j].Occurrences
		}
		return records[i].TriggerValue < records[j].TriggerValue
	})

	used := make(map[string]bool)
	emitted := 0
	for _, rec := range records {
		if emitted >= MaxCorrelationFactors {
			return
		}
		if rec.Confidence < CorrelationMinConfidence || rec.Occurrences < CorrelationMinOccurrences {
			continue
		}
		if !correlationOutcomes[journal.NormalizeTag(rec.OutcomeType)] {
			continue
		}
		trigger := journal.NormalizeTag(rec.TriggerValue)
		if trigger == "" || used[trigger] || fired[triggerSignal(trigger)] {
			continue
		}

		window := TriggerRecency
		if d := rec.AvgDelay() + LiveReadingMaxAge; d > window {
			window = d
		}
		_, mentioned := in.recentTriggers(window)[trigger]
		if !mentioned && !fired[strings.ReplaceAll(trigger, " ", "_")] {
			continue
		}
		used[trigger] = true

		weight := math.Min(float64(rec.Occurrences), CorrelationOccurrenceCap) / CorrelationOccurrenceCap
		lr := 1 + CorrelationLRSpan*rec.Confidence*weight
		outcome := rec.OutcomeValue
		if outcome == "" {
			outcome = rec.OutcomeType
		}
		st.emit(RiskFactor{
			Label:      fmt.Sprintf("Learned pattern: %s → %s", trigger, journal.NormalizeTag(outcome)),
			Confidence: rec.Confidence,
			Evidence: fmt.Sprintf("Seen %d times, typically %s later (%.0f%% confidence).",
				rec.Occurrences, delayPhrase(rec.AvgDelay()), rec.Confidence*100),
			Category: CategoryLearned,
			Source:   risk.SourceLearned,
			signal:   "learned:" + trigger,
		}, lr)
		emitted++
	}
}

func delayPhrase(d time.Duration) string {
	if d < time.Hour {
		return "within the hour"
	}
	return "about " + humanDuration(d.Round(time.Hour))
}
