package forecast

import (
	"time"

	"github.com/flarecast/flarecast-backend/internal/domain/journal"
	"github.com/flarecast/flarecast-backend/internal/domain/risk"
)

// Category groups risk factors for narrative and interaction purposes.
type Category string

const (
	CategorySleep       Category = "sleep"
	CategoryStress      Category = "stress"
	CategoryWeather     Category = "weather"
	CategoryActivity    Category = "activity"
	CategoryCycle       Category = "cycle"
	CategoryPattern     Category = "pattern"
	CategoryTrigger     Category = "trigger"
	CategoryMedication  Category = "medication"
	CategoryLearned     Category = "learned"
	CategoryInteraction Category = "interaction"
)

// Request carries today's live readings.
type Request struct {
	CurrentWeather journal.Readings `json:"currentWeather,omitempty"`
	WearableData   journal.Readings `json:"wearableData,omitempty"`
	MenstrualDay   *int             `json:"menstrualDay,omitempty" validate:"omitempty,min=1,max=60"`
}

// Snapshot is everything fetched for one user before scoring.
type Snapshot struct {
	Entries      []journal.LogEntry
	Correlations []journal.CorrelationRecord
	Profile      journal.UserProfile
	Medications  []journal.MedicationLog
}

// RiskFactor explains one piece of evidence behind a forecast.
type RiskFactor struct {
	Label           string              `json:"label" validate:"required"`
	Impact          float64             `json:"impact"`
	Confidence      float64             `json:"confidence" validate:"gte=0,lte=1"`
	Evidence        string              `json:"evidence"`
	Category        Category            `json:"category" validate:"required"`
	LikelihoodRatio *float64            `json:"likelihoodRatio,omitempty" validate:"omitempty,gte=0"`
	Source          risk.EvidenceSource `json:"source" validate:"oneof=empirical literature learned interaction"`

	// signal tags the condition that fired, e.g. "pressure_drop"; used to
	// match learned correlations and never serialised.
	signal string

	// positive is set from the unrounded impact when the factor is recorded.
	positive bool
}

// RiskPositive reports whether the factor raised the forecast, including
// evidence too weak to show in the rounded Impact.
func (f RiskFactor) RiskPositive() bool {
	return f.positive || f.Impact > 0
}

// EvidenceTally counts factors by where their likelihood ratio came from.
type EvidenceTally struct {
	Empirical   int `json:"empirical"`
	Literature  int `json:"literature"`
	Learned     int `json:"learned"`
	Interaction int `json:"interaction"`
}

// Forecast is the 24 hour flare-risk result.
type Forecast struct {
	RiskScore         int           `json:"riskScore" validate:"gte=0,lte=100"`
	RiskLevel         risk.Level    `json:"riskLevel" validate:"oneof=low moderate high very_high"`
	Confidence        float64       `json:"confidence" validate:"gte=0,lte=1"`
	Factors           []RiskFactor  `json:"factors" validate:"max=12,dive"`
	Prediction        string        `json:"prediction" validate:"required"`
	Recommendations   []string      `json:"recommendations"`
	ProtectiveFactors []string      `json:"protectiveFactors"`
	Timeframe         string        `json:"timeframe"`
	ModelVersion      string        `json:"modelVersion"`
	NeedsMoreData     bool          `json:"needsMoreData"`
	Evidence          EvidenceTally `json:"evidence"`
	GeneratedAt       time.Time     `json:"generatedAt"`
}
