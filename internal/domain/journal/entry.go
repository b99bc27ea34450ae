package journal

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// EntryKind classifies a journal entry.
type EntryKind string

const (
	KindFlare      EntryKind = "flare"
	KindMedication EntryKind = "medication"
	KindWellness   EntryKind = "wellness"
	KindNote       EntryKind = "note"
	KindOther      EntryKind = "other"
)

// ParseEntryKind maps a stored kind to the enum; unrecognised kinds become KindOther.
func ParseEntryKind(s string) EntryKind {
	switch k := EntryKind(strings.ToLower(strings.TrimSpace(s))); k {
	case KindFlare, KindMedication, KindWellness, KindNote:
		return k
	default:
		return KindOther
	}
}

// Severity of a flare or symptom.
type Severity string

const (
	SeverityMild     Severity = "mild"
	SeverityModerate Severity = "moderate"
	SeveritySevere   Severity = "severe"
)

// Weight returns 1..3 for known severities and 1 otherwise.
func (s Severity) Weight() float64 {
	switch s {
	case SeverityModerate:
		return 2
	case SeveritySevere:
		return 3
	default:
		return 1
	}
}

// LogEntry is one immutable user-authored record.
type LogEntry struct {
	ID            uuid.UUID `json:"id"`
	UserID        uuid.UUID `json:"user_id"`
	Kind          EntryKind `json:"kind"`
	Timestamp     time.Time `json:"timestamp"`
	Severity      *Severity `json:"severity,omitempty"`
	Symptoms      []string  `json:"symptoms,omitempty"`
	Triggers      []string  `json:"triggers,omitempty"`
	Note          string    `json:"note,omitempty"`
	Physiological Readings  `json:"physiological,omitempty"`
	Environmental Readings  `json:"environmental,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// IsFlare reports whether the entry records a flare.
func (e LogEntry) IsFlare() bool {
	return e.Kind == KindFlare
}

// SeverityWeight returns the weight of the entry's severity, 1 when unset.
func (e LogEntry) SeverityWeight() float64 {
	if e.Severity == nil {
		return 1
	}
	return e.Severity.Weight()
}

// Value reads a signal from the physiological bag, then the environmental one.
func (e LogEntry) Value(s Signal) (float64, bool) {
	if v, ok := s.From(e.Physiological); ok {
		return v, true
	}
	return s.From(e.Environmental)
}

// HasTrigger reports whether the entry lists the trigger tag (case-insensitive).
func (e LogEntry) HasTrigger(tag string) bool {
	for _, t := range e.Triggers {
		if NormalizeTag(t) == tag {
			return true
		}
	}
	return false
}

// NormalizeTag lower-cases and trims a symptom or trigger tag.
func NormalizeTag(tag string) string {
	return strings.ToLower(strings.Join(strings.Fields(tag), " "))
}

// SortChronological orders entries oldest first, breaking ties by id so
// repeated computations see the same sequence.
func SortChronological(entries []LogEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Timestamp.Equal(entries[j].Timestamp) {
			return entries[i].ID.String() < entries[j].ID.String()
		}
		return entries[i].Timestamp.Before(entries[j].Timestamp)
	})
}
