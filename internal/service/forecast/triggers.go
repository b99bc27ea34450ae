package forecast

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/flarecast/flarecast-backend/internal/domain/journal"
	"github.com/flarecast/flarecast-backend/internal/domain/risk"
)

// recentTriggers returns trigger tags logged in (now-window, now] with the
// time of their latest mention.
func (in *inputs) recentTriggers(window time.Duration) map[string]time.Time {
	cutoff := in.now.Add(-window)
	recent := make(map[string]time.Time)
	for i := len(in.entries) - 1; i >= 0; i-- {
		e := in.entries[i]
		if !e.Timestamp.After(cutoff) {
			break
		}
		if e.Timestamp.After(in.now) {
			continue
		}
		for _, t := range e.Triggers {
			tag := journal.NormalizeTag(t)
			if tag == "" {
				continue
			}
			if seen, ok := recent[tag]; !ok || e.Timestamp.After(seen) {
				recent[tag] = e.Timestamp
			}
		}
	}
	return recent
}

func triggerSignal(tag string) string {
	return "trigger:" + tag
}

func evalTriggers(in *inputs, st *accumulatorState) {
	recent := in.recentTriggers(TriggerRecency)
	if len(recent) == 0 {
		return
	}

	type candidate struct {
		tag  string
		seen time.Time
		ev   risk.Evidence
	}
	var candidates []candidate
	for tag, seen := range recent {
		hist := in.history(func(e journal.LogEntry) bool {
			return e.HasTrigger(tag)
		}, 0, TriggerLookahead)
		ev := risk.EstimateLR(hist, 1)
		if !ev.Empirical() || ev.LR < TriggerMinLR {
			continue
		}
		candidates = append(candidates, candidate{tag: tag, seen: seen, ev: ev})
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].ev.LR != candidates[j].ev.LR {
			return candidates[i].ev.LR > candidates[j].ev.LR
		}
		return candidates[i].tag < candidates[j].tag
	})
	if len(candidates) > MaxTriggerFactors {
		candidates = candidates[:MaxTriggerFactors]
	}

	for _, c := range candidates {
		conf := evidenceConfidence(c.ev)
		if in.profile.KnowsTrigger(c.tag) {
			conf = math.Min(EmpiricalMaxConfidence, conf+KnownTriggerConfidenceBonus)
		}
		st.emit(RiskFactor{
			Label:      "Delayed trigger: " + c.tag,
			Confidence: conf,
			Evidence: fmt.Sprintf("You logged %q %s ago. Flares followed %d of %d past mentions within %s.",
				c.tag, humanDuration(in.now.Sub(c.seen).Round(time.Hour)), c.ev.Hits, c.ev.Instances,
				humanDuration(TriggerLookahead)),
			Category: CategoryTrigger,
			Source:   c.ev.Source,
			signal:   triggerSignal(c.tag),
		}, c.ev.LR)
	}
}
