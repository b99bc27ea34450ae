package journal

// Signal describes how to read one measurement out of a Readings bag.
// Values outside [Min, Max] are treated as sensor noise and ignored.
type Signal struct {
	Name  string
	Paths []string
	Min   float64
	Max   float64
}

// From extracts the signal from a bag.
func (s Signal) From(r Readings) (float64, bool) {
	v, ok := r.Lookup(s.Paths...)
	if !ok || v < s.Min || v > s.Max {
		return 0, false
	}
	return v, true
}

// Physiological signals.
var (
	SignalSleepHours = Signal{
		Name:  "sleep_hours",
		Paths: []string{"sleep_hours", "sleepHours", "sleep.hours", "sleep.duration_hours", "sleep.total_hours", "sleep"},
		Min:   0,
		Max:   24,
	}
	SignalHRV = Signal{
		Name:  "hrv",
		Paths: []string{"hrv", "hrv_ms", "heart_rate_variability", "heartRateVariability", "hrv.rmssd", "hrv.value"},
		Min:   1,
		Max:   300,
	}
	SignalRestingHR = Signal{
		Name:  "resting_heart_rate",
		Paths: []string{"resting_heart_rate", "restingHeartRate", "resting_hr", "rhr", "heart_rate.resting", "heartRate.resting"},
		Min:   25,
		Max:   200,
	}
	SignalSteps = Signal{
		Name:  "steps",
		Paths: []string{"steps", "step_count", "stepCount", "activity.steps"},
		Min:   0,
		Max:   150000,
	}
	SignalSpO2 = Signal{
		Name:  "spo2",
		Paths: []string{"spo2", "SpO2", "oxygen_saturation", "blood_oxygen", "spo2.avg"},
		Min:   50,
		Max:   100,
	}
	SignalBreathingRate = Signal{
		Name:  "breathing_rate",
		Paths: []string{"breathing_rate", "respiratory_rate", "respiratoryRate", "breathing.rate"},
		Min:   4,
		Max:   60,
	}
	SignalSkinTemp = Signal{
		Name:  "skin_temperature",
		Paths: []string{"skin_temp", "skin_temperature", "skinTemperature", "skin_temp_deviation"},
		Min:   -10,
		Max:   45,
	}
)

// Environmental signals.
var (
	SignalPressure = Signal{
		Name:  "pressure",
		Paths: []string{"pressure", "barometric_pressure", "pressure_hpa", "weather.pressure"},
		Min:   870,
		Max:   1085,
	}
	SignalAQI = Signal{
		Name:  "aqi",
		Paths: []string{"aqi", "air_quality_index", "air_quality.aqi", "airQuality.aqi"},
		Min:   0,
		Max:   999,
	}
	SignalHumidity = Signal{
		Name:  "humidity",
		Paths: []string{"humidity", "relative_humidity", "weather.humidity"},
		Min:   0,
		Max:   100,
	}
	SignalTemperature = Signal{
		Name:  "temperature",
		Paths: []string{"temperature", "temp", "temperature_c", "weather.temperature"},
		Min:   -60,
		Max:   60,
	}
	// SignalPollen is an index on the 0..12 scale. Raw grain counts are a
	// different unit and are not read.
	SignalPollen = Signal{
		Name:  "pollen",
		Paths: []string{"pollen", "pollen_index", "pollen.index"},
		Min:   0,
		Max:   12,
	}
	SignalCycleDay = Signal{
		Name:  "cycle_day",
		Paths: []string{"menstrual_day", "menstrualDay", "cycle_day", "cycle.day"},
		Min:   1,
		Max:   60,
	}
)
