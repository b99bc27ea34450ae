package forecast

import (
	"testing"
	"time"

	"github.com/flarecast/flarecast-backend/internal/domain/journal"
	"github.com/flarecast/flarecast-backend/internal/domain/risk"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluate_LoggedReadingScoresLikeLiveReading(t *testing.T) {
	tests := []struct {
		name    string
		history []journal.LogEntry
		key     string
		value   float64
		label   string
		wantLR  float64
	}{
		{
			name:    "sleep",
			history: alternating(30, 7, 7.5, 8.5, phys, "sleep_hours"),
			key:     "sleep_hours",
			value:   5.0,
			label:   "Sleep deficit",
			wantLR:  2.5,
		},
		{
			name:    "resting heart rate",
			history: alternating(30, 6, 56, 66, phys, "resting_heart_rate"),
			key:     "resting_heart_rate",
			value:   67,
			label:   "Elevated resting heart rate",
			wantLR:  1.3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			live := Evaluate(Snapshot{Entries: tt.history},
				Request{WearableData: journal.Readings{tt.key: tt.value}}, testNow)

			logged := append([]journal.LogEntry{}, tt.history...)
			logged = append(logged, newEntry(testNow.Add(-time.Hour), journal.KindWellness, phys(tt.key, tt.value)))
			fromLog := Evaluate(Snapshot{Entries: logged}, Request{}, testNow)

			a := findFactor(live, tt.label)
			b := findFactor(fromLog, tt.label)
			require.NotNil(t, a)
			require.NotNil(t, b)
			assert.Equal(t, tt.wantLR, *a.LikelihoodRatio)
			assert.Equal(t, *a.LikelihoodRatio, *b.LikelihoodRatio)
			assert.Equal(t, a.Impact, b.Impact)
			assert.Equal(t, a.Confidence, b.Confidence)
			assert.Equal(t, a.Evidence, b.Evidence)
		})
	}
}

func TestEvaluate_LoggedReadingIsNotPartOfItsOwnBaseline(t *testing.T) {
	history := func(days int) []journal.LogEntry {
		entries := dailyWellness(10)
		for d := days; d >= 1; d-- {
			entries = append(entries, newEntry(daysAgo(d, 7), journal.KindWellness, phys("sleep_hours", 8.0)))
		}
		return append(entries, newEntry(testNow.Add(-time.Hour), journal.KindWellness, phys("sleep_hours", 3.0)))
	}

	f := Evaluate(Snapshot{Entries: history(4)}, Request{}, testNow)
	assert.Nil(t, findCategory(f, CategorySleep), "four prior nights are not a baseline")

	f = Evaluate(Snapshot{Entries: history(5)}, Request{}, testNow)
	require.NotNil(t, findFactor(f, "Sleep deficit"))
}

func TestEvaluate_DeviationFamilies(t *testing.T) {
	tests := []struct {
		name    string
		history []journal.LogEntry
		req     Request
		label   string
		fires   bool
	}{
		{
			name:    "resting heart rate rise of 5 bpm",
			history: alternating(30, 6, 56, 66, phys, "resting_heart_rate"),
			req:     Request{WearableData: journal.Readings{"restingHeartRate": 67}},
			label:   "Elevated resting heart rate",
			fires:   true,
		},
		{
			name:    "resting heart rate within range",
			history: alternating(30, 6, 56, 66, phys, "resting_heart_rate"),
			req:     Request{WearableData: journal.Readings{"restingHeartRate": 63}},
			label:   "Elevated resting heart rate",
		},
		{
			name:    "live step boom",
			history: alternating(30, 20, 6000, 8000, phys, "steps"),
			req:     Request{WearableData: journal.Readings{"steps": 15000}},
			label:   "Boom-bust activity",
			fires:   true,
		},
		{
			name: "logged step boom yesterday",
			history: append(alternating(30, 20, 6000, 8000, phys, "steps"),
				newEntry(daysAgo(1, 21), journal.KindWellness, phys("step_count", 15000))),
			label: "Boom-bust activity",
			fires: true,
		},
		{
			name:    "ordinary step count",
			history: alternating(30, 20, 6000, 8000, phys, "steps"),
			req:     Request{WearableData: journal.Readings{"steps": 8200}},
			label:   "Boom-bust activity",
		},
		{
			name:    "unhealthy air",
			history: alternating(30, 9, 30, 50, env, "aqi"),
			req:     Request{CurrentWeather: journal.Readings{"air_quality": map[string]any{"aqi": 120}}},
			label:   "Poor air quality",
			fires:   true,
		},
		{
			name:    "usual air",
			history: alternating(30, 9, 30, 50, env, "aqi"),
			req:     Request{CurrentWeather: journal.Readings{"aqi": 45}},
			label:   "Poor air quality",
		},
		{
			name:    "high humidity",
			history: alternating(30, 9, 40, 60, env, "humidity"),
			req:     Request{CurrentWeather: journal.Readings{"humidity": 85}},
			label:   "High humidity",
			fires:   true,
		},
		{
			name:    "usual humidity",
			history: alternating(30, 9, 40, 60, env, "humidity"),
			req:     Request{CurrentWeather: journal.Readings{"humidity": 55}},
			label:   "High humidity",
		},
		{
			name:    "cold snap",
			history: alternating(30, 9, 14, 16, env, "temperature"),
			req:     Request{CurrentWeather: journal.Readings{"temperature": 5}},
			label:   "Temperature swing",
			fires:   true,
		},
		{
			name:    "usual temperature",
			history: alternating(30, 9, 14, 16, env, "temperature"),
			req:     Request{CurrentWeather: journal.Readings{"temperature": 16}},
			label:   "Temperature swing",
		},
		{
			name:    "high pollen",
			history: alternating(30, 9, 2, 4, env, "pollen"),
			req:     Request{CurrentWeather: journal.Readings{"pollen_index": 10}},
			label:   "High pollen",
			fires:   true,
		},
		{
			name:    "usual pollen",
			history: alternating(30, 9, 2, 4, env, "pollen"),
			req:     Request{CurrentWeather: journal.Readings{"pollen_index": 4}},
			label:   "High pollen",
		},
		{
			name:    "low blood oxygen",
			history: alternating(30, 6, 96, 98, phys, "spo2"),
			req:     Request{WearableData: journal.Readings{"oxygen_saturation": 92}},
			label:   "Low blood oxygen",
			fires:   true,
		},
		{
			name:    "usual blood oxygen",
			history: alternating(30, 6, 96, 98, phys, "spo2"),
			req:     Request{WearableData: journal.Readings{"spo2": 96}},
			label:   "Low blood oxygen",
		},
		{
			name:    "fast breathing",
			history: alternating(30, 6, 14, 16, phys, "breathing_rate"),
			req:     Request{WearableData: journal.Readings{"respiratoryRate": 20}},
			label:   "Elevated breathing rate",
			fires:   true,
		},
		{
			name:    "usual breathing",
			history: alternating(30, 6, 14, 16, phys, "breathing_rate"),
			req:     Request{WearableData: journal.Readings{"breathing_rate": 16}},
			label:   "Elevated breathing rate",
		},
		{
			name:    "warm skin",
			history: alternating(30, 6, 33, 34, phys, "skin_temp"),
			req:     Request{WearableData: journal.Readings{"skinTemperature": 35}},
			label:   "Raised skin temperature",
			fires:   true,
		},
		{
			name:    "usual skin temperature",
			history: alternating(30, 6, 33, 34, phys, "skin_temp"),
			req:     Request{WearableData: journal.Readings{"skin_temp": 34}},
			label:   "Raised skin temperature",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := Evaluate(Snapshot{Entries: tt.history}, tt.req, testNow)

			factor := findFactor(f, tt.label)
			if !tt.fires {
				assert.Nil(t, factor)
				return
			}
			require.NotNil(t, factor)
			assert.True(t, factor.RiskPositive())
			assert.Equal(t, risk.SourceLiterature, factor.Source)
			require.NotNil(t, factor.LikelihoodRatio)
			assert.Greater(t, *factor.LikelihoodRatio, 1.0)
		})
	}
}

func TestEvaluate_TrendFactors(t *testing.T) {
	withTail := func(lo, hi float64, tail ...float64) []float64 {
		return append(alternatingValues(24, lo, hi), tail...)
	}

	tests := []struct {
		name    string
		history []journal.LogEntry
		label   string
		fires   bool
	}{
		{
			name:    "sleep shrinking every night",
			history: daily(7, phys, "sleep_hours", withTail(7.5, 8.5, 7.5, 7.0, 6.5, 6.0, 5.5, 5.0)...),
			label:   "Declining sleep trend",
			fires:   true,
		},
		{
			name:    "erratic sleep has no trend",
			history: daily(7, phys, "sleep_hours", withTail(7.5, 8.5, 8, 5, 8, 5, 8, 5)...),
			label:   "Declining sleep trend",
		},
		{
			name:    "HRV falling",
			history: daily(6, phys, "hrv", withTail(65, 75, 70, 66, 62, 58, 54, 50)...),
			label:   "Falling HRV trend",
			fires:   true,
		},
		{
			name:    "resting heart rate climbing",
			history: daily(6, phys, "resting_heart_rate", withTail(58, 62, 58, 60, 62, 64, 66, 68)...),
			label:   "Rising resting heart rate",
			fires:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := Evaluate(Snapshot{Entries: tt.history}, Request{}, testNow)

			factor := findFactor(f, tt.label)
			if !tt.fires {
				assert.Nil(t, factor)
				return
			}
			require.NotNil(t, factor)
			assert.Equal(t, TrendLR, *factor.LikelihoodRatio)
			assert.InDelta(t, TrendBaseConfidence+TrendFitConfidence, factor.Confidence, 0.01)
			assert.Contains(t, factor.Evidence, "per day over the last 6 readings")
		})
	}
}

func TestEvaluate_TemporalPatterns(t *testing.T) {
	// testNow is a Monday at 08:00, so Mondays are 7, 14, 21... days ago.
	withFlares := func(days int, flares ...journal.LogEntry) []journal.LogEntry {
		return append(dailyWellness(days), flares...)
	}
	flareDays := func(hour int, days ...int) []journal.LogEntry {
		out := make([]journal.LogEntry, len(days))
		for i, d := range days {
			out[i] = flareAt(daysAgo(d, hour), journal.SeverityModerate)
		}
		return out
	}

	tests := []struct {
		name     string
		entries  []journal.LogEntry
		label    string
		fires    bool
		evidence string
	}{
		{
			name:     "flares cluster on Mondays",
			entries:  withFlares(42, flareDays(10, 7, 14, 21, 28, 10)...),
			label:    "Day-of-week pattern",
			fires:    true,
			evidence: "4 of your last 6 Mondays",
		},
		{
			name:    "two Monday flares are not a pattern",
			entries: withFlares(42, flareDays(10, 7, 14, 10)...),
			label:   "Day-of-week pattern",
		},
		{
			name:     "flares start in the morning",
			entries:  withFlares(20, flareDays(9, 3, 5, 9, 11, 13)...),
			label:    "Time-of-day pattern",
			fires:    true,
			evidence: "5 of 5 flares began in the morning",
		},
		{
			name:    "four flares are too few for a time of day",
			entries: withFlares(20, flareDays(9, 3, 5, 9, 11)...),
			label:   "Time-of-day pattern",
		},
		{
			name: "flare burden climbing",
			entries: withFlares(20,
				flareAt(daysAgo(3, 10), journal.SeverityMild),
				flareAt(daysAgo(2, 10), journal.SeverityModerate),
				flareAt(daysAgo(1, 10), journal.SeveritySevere),
				flareAt(testNow.Add(-2*time.Hour), journal.SeveritySevere),
			),
			label:    "Rising flare burden",
			fires:    true,
			evidence: "over the last week",
		},
		{
			name:     "more flares this week than the three before",
			entries:  withFlares(40, flareDays(10, 15, 6, 4, 2)...),
			label:    "Flares becoming more frequent",
			fires:    true,
			evidence: "3 flares in the past 7 days",
		},
		{
			name:    "one flare this week",
			entries: withFlares(40, flareDays(10, 15, 4)...),
			label:   "Flares becoming more frequent",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := Evaluate(Snapshot{Entries: tt.entries}, Request{}, testNow)

			factor := findFactor(f, tt.label)
			if !tt.fires {
				assert.Nil(t, factor)
				return
			}
			require.NotNil(t, factor)
			assert.Equal(t, CategoryPattern, factor.Category)
			assert.Greater(t, *factor.LikelihoodRatio, 1.0)
			assert.Contains(t, factor.Evidence, tt.evidence)
		})
	}
}
