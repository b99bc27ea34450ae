package journal

import (
	"time"

	"github.com/google/uuid"
)

// CorrelationRecord is a trigger to outcome association learned by the
// discovery job. Read-only from the forecaster's point of view.
type CorrelationRecord struct {
	ID              uuid.UUID `json:"id"`
	UserID          uuid.UUID `json:"user_id"`
	TriggerType     string    `json:"trigger_type"`
	TriggerValue    string    `json:"trigger_value"`
	OutcomeType     string    `json:"outcome_type"`
	OutcomeValue    string    `json:"outcome_value"`
	Occurrences     int       `json:"occurrences"`
	Confidence      float64   `json:"confidence"`
	AvgDelayMinutes float64   `json:"avg_delay_minutes"`
	LastOccurred    time.Time `json:"last_occurred"`
}

// AvgDelay returns the average trigger to outcome delay.
func (c CorrelationRecord) AvgDelay() time.Duration {
	return time.Duration(c.AvgDelayMinutes * float64(time.Minute))
}

// MedicationLog records one administered dose.
type MedicationLog struct {
	ID      uuid.UUID `json:"id"`
	UserID  uuid.UUID `json:"user_id"`
	Name    string    `json:"name"`
	Dosage  string    `json:"dosage,omitempty"`
	TakenAt time.Time `json:"taken_at"`
}

// UserProfile carries the per-user configuration the forecaster reads.
type UserProfile struct {
	UserID        uuid.UUID  `json:"user_id"`
	Conditions    []string   `json:"conditions"`
	KnownSymptoms []string   `json:"known_symptoms,omitempty"`
	KnownTriggers []string   `json:"known_triggers,omitempty"`
	Timezone      string     `json:"timezone,omitempty"`
	BiologicalSex string     `json:"biological_sex,omitempty"`
	DateOfBirth   *time.Time `json:"date_of_birth,omitempty"`
}

// Location resolves the profile timezone, falling back to UTC.
func (p UserProfile) Location() *time.Location {
	if p.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(p.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// TracksCycle is false only when the profile states a male biological sex.
func (p UserProfile) TracksCycle() bool {
	switch NormalizeTag(p.BiologicalSex) {
	case "male", "m":
		return false
	default:
		return true
	}
}

// KnowsTrigger reports whether the tag is in the user's trigger vocabulary.
func (p UserProfile) KnowsTrigger(tag string) bool {
	for _, t := range p.KnownTriggers {
		if NormalizeTag(t) == tag {
			return true
		}
	}
	return false
}
