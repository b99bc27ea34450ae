package fixtures

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/flarecast/flarecast-backend/internal/domain/journal"
)

// Execer is satisfied by pgxpool.Pool, pgx.Conn and pgx.Tx.
type Execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// EntryBuilder builds journal entries for tests
type EntryBuilder struct {
	entry journal.LogEntry
	kind  string
}

// NewEntryBuilder starts a wellness entry for userID at at.
func NewEntryBuilder(userID uuid.UUID, at time.Time) *EntryBuilder {
	return &EntryBuilder{
		entry: journal.LogEntry{
			ID:        uuid.New(),
			UserID:    userID,
			Kind:      journal.KindWellness,
			Timestamp: at,
			CreatedAt: at,
			Symptoms:  []string{},
			Triggers:  []string{},
		},
		kind: string(journal.KindWellness),
	}
}

func (b *EntryBuilder) Flare(severity journal.Severity) *EntryBuilder {
	b.entry.Kind = journal.KindFlare
	b.kind = string(journal.KindFlare)
	b.entry.Severity = &severity
	return b
}

// WithRawKind stores kind verbatim, e.g. to exercise unknown kinds.
func (b *EntryBuilder) WithRawKind(kind string) *EntryBuilder {
	b.kind = kind
	b.entry.Kind = journal.ParseEntryKind(kind)
	return b
}

func (b *EntryBuilder) WithTriggers(triggers ...string) *EntryBuilder {
	b.entry.Triggers = triggers
	return b
}

func (b *EntryBuilder) WithSymptoms(symptoms ...string) *EntryBuilder {
	b.entry.Symptoms = symptoms
	return b
}

func (b *EntryBuilder) WithPhysiological(r journal.Readings) *EntryBuilder {
	b.entry.Physiological = r
	return b
}

func (b *EntryBuilder) WithEnvironmental(r journal.Readings) *EntryBuilder {
	b.entry.Environmental = r
	return b
}

func (b *EntryBuilder) WithNote(note string) *EntryBuilder {
	b.entry.Note = note
	return b
}

// Build returns the entry without persisting it.
func (b *EntryBuilder) Build() journal.LogEntry {
	return b.entry
}

// Insert persists the entry into log_entries.
func (b *EntryBuilder) Insert(ctx context.Context, db Execer) (journal.LogEntry, error) {
	e := b.entry
	var severity *string
	if e.Severity != nil {
		s := string(*e.Severity)
		severity = &s
	}
	_, err := db.Exec(ctx, `
		INSERT INTO log_entries (id, user_id, kind, occurred_at, severity, symptoms, triggers,
		                         note, physiological, environmental, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		e.ID, e.UserID, b.kind, e.Timestamp, severity, e.Symptoms, e.Triggers,
		e.Note, readingsOrEmpty(e.Physiological), readingsOrEmpty(e.Environmental), e.CreatedAt,
	)
	return e, err
}

func readingsOrEmpty(r journal.Readings) journal.Readings {
	if r == nil {
		return journal.Readings{}
	}
	return r
}

// InsertCorrelation persists a learned association.
func InsertCorrelation(ctx context.Context, db Execer, c journal.CorrelationRecord) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	_, err := db.Exec(ctx, `
		INSERT INTO correlations (id, user_id, trigger_type, trigger_value, outcome_type, outcome_value,
		                          occurrences, confidence, avg_delay_minutes, last_occurred)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		c.ID, c.UserID, c.TriggerType, c.TriggerValue, c.OutcomeType, c.OutcomeValue,
		c.Occurrences, c.Confidence, c.AvgDelayMinutes, c.LastOccurred,
	)
	return err
}

// InsertProfile persists a user profile.
func InsertProfile(ctx context.Context, db Execer, p journal.UserProfile) error {
	_, err := db.Exec(ctx, `
		INSERT INTO user_profiles (user_id, conditions, known_symptoms, known_triggers,
		                           timezone, biological_sex, date_of_birth)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		p.UserID, nonNil(p.Conditions), nonNil(p.KnownSymptoms), nonNil(p.KnownTriggers),
		p.Timezone, p.BiologicalSex, p.DateOfBirth,
	)
	return err
}

// InsertMedication persists one dose.
func InsertMedication(ctx context.Context, db Execer, m journal.MedicationLog) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	_, err := db.Exec(ctx, `
		INSERT INTO medication_logs (id, user_id, name, dosage, taken_at)
		VALUES ($1, $2, $3, $4, $5)`,
		m.ID, m.UserID, m.Name, m.Dosage, m.TakenAt,
	)
	return err
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
