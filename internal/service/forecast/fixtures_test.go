package forecast

import (
	"time"

	"github.com/flarecast/flarecast-backend/internal/domain/journal"
	"github.com/google/uuid"
)

// testNow is a Monday morning.
var testNow = time.Date(2026, 6, 15, 8, 0, 0, 0, time.UTC)

func daysAgo(days, hour int) time.Time {
	d := testNow.AddDate(0, 0, -days)
	return time.Date(d.Year(), d.Month(), d.Day(), hour, 0, 0, 0, time.UTC)
}

type entryOpt func(*journal.LogEntry)

func phys(key string, v any) entryOpt {
	return func(e *journal.LogEntry) {
		if e.Physiological == nil {
			e.Physiological = journal.Readings{}
		}
		e.Physiological[key] = v
	}
}

func env(key string, v any) entryOpt {
	return func(e *journal.LogEntry) {
		if e.Environmental == nil {
			e.Environmental = journal.Readings{}
		}
		e.Environmental[key] = v
	}
}

func triggers(tags ...string) entryOpt {
	return func(e *journal.LogEntry) { e.Triggers = tags }
}

func severity(s journal.Severity) entryOpt {
	return func(e *journal.LogEntry) { e.Severity = &s }
}

func newEntry(ts time.Time, kind journal.EntryKind, opts ...entryOpt) journal.LogEntry {
	e := journal.LogEntry{
		ID:        uuid.New(),
		Kind:      kind,
		Timestamp: ts,
		CreatedAt: ts,
	}
	for _, opt := range opts {
		opt(&e)
	}
	return e
}

// dailyWellness logs one plain entry per day for the last n days.
func dailyWellness(n int) []journal.LogEntry {
	entries := make([]journal.LogEntry, 0, n)
	for d := n; d >= 1; d-- {
		entries = append(entries, newEntry(daysAgo(d, 9), journal.KindWellness))
	}
	return entries
}

// alternating logs n daily readings alternating between lo and hi, oldest first.
func alternating(n, hour int, lo, hi float64, opt func(string, any) entryOpt, key string) []journal.LogEntry {
	entries := make([]journal.LogEntry, 0, n)
	for i := 0; i < n; i++ {
		v := lo
		if i%2 == 1 {
			v = hi
		}
		entries = append(entries, newEntry(daysAgo(n-i, hour), journal.KindWellness, opt(key, v)))
	}
	return entries
}

// daily logs one reading per day ending yesterday, oldest first.
func daily(hour int, opt func(string, any) entryOpt, key string, values ...float64) []journal.LogEntry {
	entries := make([]journal.LogEntry, 0, len(values))
	for i, v := range values {
		entries = append(entries, newEntry(daysAgo(len(values)-i, hour), journal.KindWellness, opt(key, v)))
	}
	return entries
}

// alternatingValues returns n values alternating between lo and hi.
func alternatingValues(n int, lo, hi float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = lo
		if i%2 == 1 {
			out[i] = hi
		}
	}
	return out
}

func flareAt(ts time.Time, s journal.Severity) journal.LogEntry {
	return newEntry(ts, journal.KindFlare, severity(s))
}

func findFactor(f *Forecast, label string) *RiskFactor {
	for i := range f.Factors {
		if f.Factors[i].Label == label {
			return &f.Factors[i]
		}
	}
	return nil
}

func findCategory(f *Forecast, c Category) *RiskFactor {
	for i := range f.Factors {
		if f.Factors[i].Category == c {
			return &f.Factors[i]
		}
	}
	return nil
}

func intPtr(v int) *int { return &v }
