package forecast

import (
	"math"
	"time"

	"github.com/flarecast/flarecast-backend/internal/domain/journal"
	"github.com/flarecast/flarecast-backend/internal/domain/risk"
)

// Sleep family
var sleepRule = deviationRule{
	signal:     journal.SignalSleepHours,
	alpha:      0.15,
	direction:  adverseLow,
	zThreshold: 1.0,
	family:     risk.FamilySleep,
	category:   CategorySleep,
	tag:        "poor_sleep",
	label:      "Sleep deficit",
	noun:       "Sleep",
	unit:       "h",
	maxDelay:   DeviationLookahead,
	protective: "Restorative sleep",
	trend:      &trendRule{slope: -0.25, label: "Declining sleep trend", tag: "sleep_decline"},
}

// Autonomic family
var hrvRule = deviationRule{
	signal:     journal.SignalHRV,
	alpha:      0.12,
	direction:  adverseLow,
	zThreshold: 1.0,
	family:     risk.FamilyHRV,
	category:   CategoryStress,
	tag:        "low_hrv",
	label:      "Low heart rate variability",
	noun:       "HRV",
	unit:       "ms",
	maxDelay:   DeviationLookahead,
	protective: "Strong heart rate variability",
	trend:      &trendRule{slope: -2, label: "Falling HRV trend", tag: "hrv_decline"},
}

// RestingHRDelta is the rise over baseline that fires regardless of spread.
const RestingHRDelta = 5.0

var restingHRRule = deviationRule{
	signal:     journal.SignalRestingHR,
	alpha:      0.10,
	direction:  adverseHigh,
	zThreshold: 1.5,
	absolute: func(cur float64, b *risk.Baseline) bool {
		return cur-b.Mean() >= RestingHRDelta
	},
	family:   risk.FamilyHRV,
	category: CategoryStress,
	tag:      "elevated_rhr",
	label:    "Elevated resting heart rate",
	noun:     "Resting heart rate",
	unit:     "bpm",
	maxDelay: DeviationLookahead,
	trend:    &trendRule{slope: 1, label: "Rising resting heart rate", tag: "rhr_rise"},
}

// Activity family
var activityRule = deviationRule{
	signal:     journal.SignalSteps,
	alpha:      0.12,
	direction:  adverseHigh,
	zThreshold: 1.5,
	family:     risk.FamilyActivity,
	category:   CategoryActivity,
	tag:        "high_activity",
	label:      "Boom-bust activity",
	noun:       "Peak recent steps",
	unit:       "steps",
	minDelay:   BoomBustMinDelay,
	maxDelay:   BoomBustMaxDelay,
	current:    recentPeakSteps,
}

// recentPeakSteps is the highest step count from today or the last two
// days, since a boom can surface as a crash up to three days later. The
// whole peak window is kept out of the baseline.
func recentPeakSteps(in *inputs, r *deviationRule) (float64, time.Time, bool) {
	peak, found := r.signal.From(in.request.WearableData)
	cutoff := in.now.Add(-(BoomBustMaxDelay - LiveReadingMaxAge))
	for i := len(in.entries) - 1; i >= 0; i-- {
		e := in.entries[i]
		if e.Timestamp.Before(cutoff) {
			break
		}
		if e.Timestamp.After(in.now) {
			continue
		}
		if v, ok := e.Value(r.signal); ok && (!found || v > peak) {
			peak, found = v, true
		}
	}
	return peak, cutoff, found
}

// Environmental thresholds
const (
	PressureDropHPa       = -4.0
	AQIUnhealthySensitive = 100.0
	HumidityHigh          = 80.0
	TemperatureSwingC     = 8.0
	PollenHigh            = 9.0
)

var environmentRules = []*deviationRule{
	{
		signal:     journal.SignalPressure,
		env:        true,
		alpha:      0.12,
		direction:  adverseLow,
		zThreshold: 1.5,
		absolute: func(cur float64, b *risk.Baseline) bool {
			return cur-b.Mean() < PressureDropHPa
		},
		family:   risk.FamilyPressure,
		category: CategoryWeather,
		tag:      "pressure_drop",
		label:    "Barometric pressure drop",
		noun:     "Pressure",
		unit:     "hPa",
		maxDelay: DeviationLookahead,
	},
	{
		signal:     journal.SignalAQI,
		env:        true,
		alpha:      0.12,
		direction:  adverseHigh,
		zThreshold: 1.5,
		absolute: func(cur float64, _ *risk.Baseline) bool {
			return cur > AQIUnhealthySensitive
		},
		family:   risk.FamilyAQI,
		category: CategoryWeather,
		tag:      "poor_air_quality",
		label:    "Poor air quality",
		noun:     "AQI",
		maxDelay: DeviationLookahead,
	},
	{
		signal:     journal.SignalHumidity,
		env:        true,
		alpha:      0.12,
		direction:  adverseHigh,
		zThreshold: 1.5,
		absolute: func(cur float64, _ *risk.Baseline) bool {
			return cur >= HumidityHigh
		},
		family:   risk.FamilyHumidity,
		category: CategoryWeather,
		tag:      "high_humidity",
		label:    "High humidity",
		noun:     "Humidity",
		unit:     "%",
		maxDelay: DeviationLookahead,
	},
	{
		signal:     journal.SignalTemperature,
		env:        true,
		alpha:      0.12,
		direction:  adverseEither,
		zThreshold: 2.0,
		absolute: func(cur float64, b *risk.Baseline) bool {
			return math.Abs(cur-b.Mean()) >= TemperatureSwingC
		},
		family:   risk.FamilyTemperature,
		category: CategoryWeather,
		tag:      "temperature_swing",
		label:    "Temperature swing",
		noun:     "Temperature",
		unit:     "°C",
		maxDelay: DeviationLookahead,
	},
	{
		signal:     journal.SignalPollen,
		env:        true,
		alpha:      0.12,
		direction:  adverseHigh,
		zThreshold: 1.5,
		absolute: func(cur float64, _ *risk.Baseline) bool {
			return cur >= PollenHigh
		},
		family:   risk.FamilyAQI,
		category: CategoryWeather,
		tag:      "high_pollen",
		label:    "High pollen",
		noun:     "Pollen index",
		maxDelay: DeviationLookahead,
	},
}

// Physiological extras
const SpO2Low = 94.0

var physiologicalRules = []*deviationRule{
	{
		signal:     journal.SignalSpO2,
		alpha:      0.12,
		direction:  adverseLow,
		zThreshold: 1.5,
		absolute: func(cur float64, _ *risk.Baseline) bool {
			return cur < SpO2Low
		},
		family:   risk.FamilyHRV,
		category: CategoryStress,
		tag:      "low_spo2",
		label:    "Low blood oxygen",
		noun:     "SpO2",
		unit:     "%",
		maxDelay: DeviationLookahead,
	},
	{
		signal:     journal.SignalBreathingRate,
		alpha:      0.12,
		direction:  adverseHigh,
		zThreshold: 1.5,
		family:     risk.FamilyHRV,
		category:   CategoryStress,
		tag:        "elevated_breathing_rate",
		label:      "Elevated breathing rate",
		noun:       "Breathing rate",
		unit:       "br/min",
		maxDelay:   DeviationLookahead,
	},
	{
		signal:     journal.SignalSkinTemp,
		alpha:      0.12,
		direction:  adverseHigh,
		zThreshold: 1.5,
		family:     risk.FamilyTemperature,
		category:   CategoryStress,
		tag:        "raised_skin_temperature",
		label:      "Raised skin temperature",
		noun:       "Skin temperature",
		unit:       "°C",
		maxDelay:   DeviationLookahead,
	},
}
