package forecast

import "time"

// Output metadata
const (
	// ModelVersion identifies the scoring model in every forecast
	ModelVersion = "bayes-ewma-v2"

	// Timeframe is the horizon every forecast covers
	Timeframe = "next 24 hours"

	// MaxFactors caps the factor list returned to clients
	MaxFactors = 12
)

// Data sufficiency
const (
	// MinEntries is the entry count below which the pipeline is bypassed
	MinEntries = 5

	// NeutralScore is returned while there is not enough data
	NeutralScore = 50

	// NeutralConfidence is the confidence of the neutral forecast
	NeutralConfidence = 0.1

	// ReadyFamilyTarget is the number of ready signals treated as full coverage
	ReadyFamilyTarget = 6

	// RichEntryCount is the entry count treated as a full history
	RichEntryCount = 60

	// LiveReadingMaxAge bounds how old a logged reading may be to stand in
	// for a missing live one
	LiveReadingMaxAge = 24 * time.Hour
)

// Evidence weighting
const (
	// ImpactScale converts log effective likelihood ratios into impact points
	ImpactScale = 25.0

	// LiteratureConfidence is the confidence attached to default ratios
	LiteratureConfidence = 0.45

	// EmpiricalBaseConfidence and EmpiricalMaxConfidence bound the
	// confidence of ratios computed from the user's own history
	EmpiricalBaseConfidence = 0.5
	EmpiricalMaxConfidence  = 0.9

	// EmpiricalInstancesForMax instances add up to +0.4 on top of the base
	EmpiricalInstancesForMax = 40.0

	// ConditionSigma is the deviation, in baseline standard deviations,
	// at which a historical reading counts as exhibiting the condition
	ConditionSigma = 1.0

	// DeviationLookahead is the window in which a flare must follow a
	// deviating reading to count as a hit
	DeviationLookahead = 36 * time.Hour
)

// Trends
const (
	// TrendWindow is how far back trend points are taken from
	TrendWindow = 7 * 24 * time.Hour

	// TrendLR is the default ratio for a deteriorating trend
	TrendLR = 1.3

	// TrendBaseConfidence plus TrendFitConfidence*R² gives trend confidence
	TrendBaseConfidence = 0.4
	TrendFitConfidence  = 0.4
)

// Protective evidence
const (
	// ProtectiveSigma is how far in the favourable direction a reading must
	// sit before it counts as protective
	ProtectiveSigma = 1.0

	// ProtectiveLR dampens risk for favourable physiological readings
	ProtectiveLR = 0.85

	// AdherenceLR dampens risk when every tracked medication is on schedule
	AdherenceLR = 0.9

	// ProtectiveConfidence is used for all protective evidence
	ProtectiveConfidence = 0.5
)

// Activity boom-bust
const (
	// BoomBustMinDelay and BoomBustMaxDelay bound the crash window after a boom
	BoomBustMinDelay = 12 * time.Hour
	BoomBustMaxDelay = 72 * time.Hour
)

// Menstrual cycle
const (
	// CycleEarlyPhaseEnd is the last day of the menstrual phase
	CycleEarlyPhaseEnd = 3

	// CycleLatePhaseStart is the first premenstrual day
	CycleLatePhaseStart = 25

	// CycleDayTolerance widens the historical match around today's cycle day
	CycleDayTolerance = 2

	// CycleDefaultLR applies on perimenstrual days without enough history
	CycleDefaultLR = 1.4

	// CycleMinEmpiricalLR is the smallest empirical ratio worth reporting
	CycleMinEmpiricalLR = 1.2
)

// Temporal patterns
const (
	// WeekdayMinFlareDays is the flare-day count a weekday needs
	WeekdayMinFlareDays = 3

	// WeekdayMinLR is the smallest weekday ratio worth reporting
	WeekdayMinLR = 1.3

	// WeekdayMaxConfidence caps weekday confidence
	WeekdayMaxConfidence = 0.8

	// TimeOfDayMinFlares and TimeOfDayShare gate the time-of-day pattern
	TimeOfDayMinFlares = 5
	TimeOfDayShare     = 0.6

	// TimeOfDayLR and TimeOfDayConfidence weight the time-of-day pattern
	TimeOfDayLR         = 1.1
	TimeOfDayConfidence = 0.4

	// BurdenTrendDays is the number of daily flare-burden points fitted
	BurdenTrendDays = 7

	// BurdenSlopeThreshold is the daily burden increase that counts as rising
	BurdenSlopeThreshold = 0.15

	// BurdenTrendLR is the ratio for a rising flare burden
	BurdenTrendLR = 1.5

	// AccelerationRatio and AccelerationMinFlares gate the weekly-rate check
	AccelerationRatio     = 1.5
	AccelerationMinFlares = 2

	// AccelerationMaxLR caps the weekly-rate ratio used as evidence
	AccelerationMaxLR = 3.0

	// AccelerationConfidence weights the weekly-rate evidence
	AccelerationConfidence = 0.6

	// AccelerationBaseline is the comparison period before the last week
	AccelerationBaseline = 21 * 24 * time.Hour
)

// Delayed triggers
const (
	// TriggerRecency is how recently a trigger must be logged to be active
	TriggerRecency = 48 * time.Hour

	// TriggerLookahead is the window a flare must follow a trigger within
	TriggerLookahead = 48 * time.Hour

	// TriggerMinLR is the smallest ratio worth reporting
	TriggerMinLR = 1.2

	// KnownTriggerConfidenceBonus applies when the user already lists the trigger
	KnownTriggerConfidenceBonus = 0.1

	// MaxTriggerFactors caps delayed-trigger factors
	MaxTriggerFactors = 3
)

// Medication adherence
const (
	// MinDosesForSchedule is the dose count needed to infer a schedule
	MinDosesForSchedule = 3

	// MinDoseInterval ignores duplicate logging of the same dose
	MinDoseInterval = 4 * time.Hour

	// GapFactor is the multiple of the usual interval that counts as a gap
	GapFactor = 1.5

	// GapLookahead is the window after a gap opens in which a flare counts
	GapLookahead = 36 * time.Hour

	// GapDefaultLR applies without enough historical gaps
	GapDefaultLR = 1.5

	// MaxGapFactors caps medication-gap factors
	MaxGapFactors = 2
)

// Learned correlations
const (
	// CorrelationMinConfidence and CorrelationMinOccurrences gate records
	CorrelationMinConfidence  = 0.5
	CorrelationMinOccurrences = 3

	// CorrelationOccurrenceCap is the occurrence count that earns full weight
	CorrelationOccurrenceCap = 10

	// CorrelationLRSpan is the ratio added at full confidence and occurrences
	CorrelationLRSpan = 2.0

	// MaxCorrelationFactors caps learned-correlation factors
	MaxCorrelationFactors = 5
)

// Interactions
const (
	// SleepStressLR compounds poor sleep with physiological stress
	SleepStressLR = 1.4

	// WeatherPhysiologicalLR compounds weather with any physiological stressor
	WeatherPhysiologicalLR = 1.25

	// MedicationGapStressorLR compounds a missed dose with any other stressor
	MedicationGapStressorLR = 1.3

	// AllostaticLR applies when AllostaticMinCategories or more stressors are active
	AllostaticLR            = 1.5
	AllostaticMinCategories = 3

	// InteractionConfidence weights every interaction update
	InteractionConfidence = 0.7
)
