package forecast

import (
	"sort"
	"time"

	"github.com/flarecast/flarecast-backend/internal/domain/journal"
	"github.com/flarecast/flarecast-backend/internal/domain/risk"
)

// inputs is the read-only view every signal family works from.
type inputs struct {
	now          time.Time
	loc          *time.Location
	entries      []journal.LogEntry // oldest first
	flareTimes   []time.Time        // oldest first
	profile      journal.UserProfile
	weights      risk.Weights
	correlations []journal.CorrelationRecord
	medications  []journal.MedicationLog // oldest first
	request      Request
}

func newInputs(snap Snapshot, req Request, now time.Time) *inputs {
	entries := make([]journal.LogEntry, len(snap.Entries))
	copy(entries, snap.Entries)
	journal.SortChronological(entries)

	flares := make([]time.Time, 0)
	for _, e := range entries {
		if e.IsFlare() {
			flares = append(flares, e.Timestamp)
		}
	}

	meds := make([]journal.MedicationLog, len(snap.Medications))
	copy(meds, snap.Medications)
	sort.SliceStable(meds, func(i, j int) bool { return meds[i].TakenAt.Before(meds[j].TakenAt) })

	return &inputs{
		now:          now,
		loc:          snap.Profile.Location(),
		entries:      entries,
		flareTimes:   flares,
		profile:      snap.Profile,
		weights:      risk.WeightsForNames(snap.Profile.Conditions),
		correlations: snap.Correlations,
		medications:  meds,
		request:      req,
	}
}

func (in *inputs) totalFlares() int {
	return len(in.flareTimes)
}

// observationDays spans the first entry to now, at least one day.
func (in *inputs) observationDays() float64 {
	if len(in.entries) == 0 {
		return 1
	}
	days := in.now.Sub(in.entries[0].Timestamp).Hours() / 24
	if days < 1 {
		return 1
	}
	return days
}

// series returns every reading of sig, oldest first.
func (in *inputs) series(sig journal.Signal) []risk.Point {
	var pts []risk.Point
	for _, e := range in.entries {
		if v, ok := e.Value(sig); ok {
			pts = append(pts, risk.Point{At: e.Timestamp, Value: v})
		}
	}
	return pts
}

// since filters points to those at or after now-window.
func (in *inputs) since(pts []risk.Point, window time.Duration) []risk.Point {
	cutoff := in.now.Add(-window)
	i := sort.Search(len(pts), func(i int) bool { return !pts[i].At.Before(cutoff) })
	return pts[i:]
}

// before returns the points strictly earlier than t.
func before(pts []risk.Point, t time.Time) []risk.Point {
	i := sort.Search(len(pts), func(i int) bool { return !pts[i].At.Before(t) })
	return pts[:i]
}

// current returns today's reading of sig: the live bag first, otherwise
// the newest logged reading no older than LiveReadingMaxAge. at is the
// logged reading's timestamp and zero for a live value.
func (in *inputs) current(sig journal.Signal, live journal.Readings) (v float64, at time.Time, ok bool) {
	if v, ok := sig.From(live); ok {
		return v, time.Time{}, true
	}
	cutoff := in.now.Add(-LiveReadingMaxAge)
	for i := len(in.entries) - 1; i >= 0; i-- {
		e := in.entries[i]
		if e.Timestamp.Before(cutoff) {
			break
		}
		if e.Timestamp.After(in.now) {
			continue
		}
		if v, ok := e.Value(sig); ok {
			return v, e.Timestamp, true
		}
	}
	return 0, time.Time{}, false
}

// flareWithin reports whether a flare happened in (t+minDelay, t+maxDelay].
func (in *inputs) flareWithin(t time.Time, minDelay, maxDelay time.Duration) bool {
	lo, hi := t.Add(minDelay), t.Add(maxDelay)
	i := sort.Search(len(in.flareTimes), func(i int) bool { return in.flareTimes[i].After(lo) })
	return i < len(in.flareTimes) && !in.flareTimes[i].After(hi)
}

// history counts how often entries matching cond were followed by a flare.
// Entries whose lookahead window has not fully elapsed are left out of the
// condition counts.
func (in *inputs) history(cond func(journal.LogEntry) bool, minDelay, maxDelay time.Duration) risk.History {
	h := risk.History{
		Total:       len(in.entries),
		TotalFlares: in.totalFlares(),
	}
	resolved := in.now.Add(-maxDelay)
	for _, e := range in.entries {
		if e.Timestamp.After(resolved) {
			break
		}
		if !cond(e) {
			continue
		}
		h.WithSignal++
		if in.flareWithin(e.Timestamp, minDelay, maxDelay) {
			h.FlaresWithSignal++
		}
	}
	return h
}

// liveFor picks the request bag that carries sig.
func (in *inputs) liveFor(env bool) journal.Readings {
	if env {
		return in.request.CurrentWeather
	}
	return in.request.WearableData
}
