package risk

import "strings"

// Family groups signals that share a condition sensitivity multiplier.
type Family string

const (
	FamilySleep       Family = "sleep"
	FamilyHRV         Family = "hrv"
	FamilyPressure    Family = "pressure"
	FamilyHumidity    Family = "humidity"
	FamilyAQI         Family = "aqi"
	FamilyActivity    Family = "activity"
	FamilyTemperature Family = "temperature"
	FamilyCycle       Family = "cycle"
	FamilyMedication  Family = "medication"
)

// Families lists every family in a stable order.
var Families = []Family{
	FamilySleep, FamilyHRV, FamilyPressure, FamilyHumidity, FamilyAQI,
	FamilyActivity, FamilyTemperature, FamilyCycle, FamilyMedication,
}

// Condition is a supported diagnosis.
type Condition string

const (
	ConditionMigraine            Condition = "migraine"
	ConditionFibromyalgia        Condition = "fibromyalgia"
	ConditionRheumatoidArthritis Condition = "rheumatoid_arthritis"
	ConditionLupus               Condition = "lupus"
	ConditionIBD                 Condition = "ibd"
	ConditionIBS                 Condition = "ibs"
	ConditionEndometriosis       Condition = "endometriosis"
	ConditionMECFS               Condition = "me_cfs"
	ConditionAsthma              Condition = "asthma"
	ConditionEDS                 Condition = "eds"
	ConditionPOTS                Condition = "pots"
	ConditionPsoriaticArthritis  Condition = "psoriatic_arthritis"
	ConditionMultipleSclerosis   Condition = "multiple_sclerosis"
	ConditionUnknown             Condition = "unknown"
)

var conditionAliases = map[Condition][]string{
	ConditionMigraine:            {"migraine", "migraines", "chronic migraine"},
	ConditionFibromyalgia:        {"fibromyalgia", "fibro"},
	ConditionRheumatoidArthritis: {"rheumatoid arthritis", "ra"},
	ConditionLupus:               {"lupus", "sle", "systemic lupus erythematosus"},
	ConditionIBD:                 {"ibd", "crohn's disease", "crohns", "crohn's", "ulcerative colitis"},
	ConditionIBS:                 {"ibs", "irritable bowel syndrome"},
	ConditionEndometriosis:       {"endometriosis"},
	ConditionMECFS:               {"me/cfs", "me cfs", "chronic fatigue syndrome", "cfs"},
	ConditionAsthma:              {"asthma"},
	ConditionEDS:                 {"eds", "ehlers-danlos syndrome", "ehlers danlos"},
	ConditionPOTS:                {"pots", "postural orthostatic tachycardia syndrome"},
	ConditionPsoriaticArthritis:  {"psoriatic arthritis", "psa"},
	ConditionMultipleSclerosis:   {"multiple sclerosis", "ms"},
}

var conditionLookup = func() map[string]Condition {
	m := make(map[string]Condition)
	for c, aliases := range conditionAliases {
		for _, a := range aliases {
			m[a] = c
		}
	}
	return m
}()

// ParseCondition maps free-text diagnoses to the closed set. Anything not
// recognised is ConditionUnknown.
func ParseCondition(s string) Condition {
	key := strings.ToLower(strings.Join(strings.Fields(strings.ReplaceAll(s, "_", " ")), " "))
	if c, ok := conditionLookup[key]; ok {
		return c
	}
	return ConditionUnknown
}

// Weights maps a family to its sensitivity multiplier.
type Weights map[Family]float64

// Of returns the multiplier for f, 1.0 when absent.
func (w Weights) Of(f Family) float64 {
	if m, ok := w[f]; ok {
		return m
	}
	return 1.0
}

func neutralWeights() Weights {
	w := make(Weights, len(Families))
	for _, f := range Families {
		w[f] = 1.0
	}
	return w
}

// conditionWeights lists only non-neutral multipliers; missing families are 1.0.
var conditionWeights = map[Condition]Weights{
	ConditionMigraine: {
		FamilySleep: 1.4, FamilyPressure: 1.8, FamilyHumidity: 1.2, FamilyTemperature: 1.3,
		FamilyCycle: 1.5, FamilyMedication: 1.3, FamilyAQI: 1.1,
	},
	ConditionFibromyalgia: {
		FamilySleep: 1.6, FamilyHRV: 1.3, FamilyPressure: 1.4, FamilyTemperature: 1.4,
		FamilyActivity: 1.5, FamilyHumidity: 1.2,
	},
	ConditionRheumatoidArthritis: {
		FamilyPressure: 1.5, FamilyHumidity: 1.5, FamilyTemperature: 1.3,
		FamilyMedication: 1.6, FamilySleep: 1.2,
	},
	ConditionLupus: {
		FamilySleep: 1.3, FamilyTemperature: 1.2, FamilyMedication: 1.6, FamilyActivity: 1.2,
	},
	ConditionIBD: {
		FamilySleep: 1.3, FamilyHRV: 1.3, FamilyMedication: 1.6,
	},
	ConditionIBS: {
		FamilySleep: 1.3, FamilyHRV: 1.4, FamilyCycle: 1.3,
	},
	ConditionEndometriosis: {
		FamilyCycle: 2.0, FamilySleep: 1.2, FamilyActivity: 1.1,
	},
	ConditionMECFS: {
		FamilyActivity: 2.0, FamilySleep: 1.5, FamilyHRV: 1.5, FamilyTemperature: 1.2,
	},
	ConditionAsthma: {
		FamilyAQI: 2.0, FamilyHumidity: 1.4, FamilyTemperature: 1.4, FamilyMedication: 1.5,
	},
	ConditionEDS: {
		FamilyPressure: 1.4, FamilyActivity: 1.4, FamilyHumidity: 1.2,
	},
	ConditionPOTS: {
		FamilyHRV: 1.6, FamilyTemperature: 1.6, FamilyActivity: 1.4, FamilySleep: 1.3, FamilyCycle: 1.3,
	},
	ConditionPsoriaticArthritis: {
		FamilyPressure: 1.4, FamilyHumidity: 1.3, FamilyMedication: 1.5, FamilySleep: 1.2,
	},
	ConditionMultipleSclerosis: {
		FamilyTemperature: 1.8, FamilySleep: 1.3, FamilyActivity: 1.3,
	},
}

// WeightsFor returns the effective multipliers for a set of diagnoses:
// per family, the maximum across all conditions. Unknown conditions
// contribute neutral weights.
func WeightsFor(conditions []Condition) Weights {
	out := neutralWeights()
	for _, c := range conditions {
		table, ok := conditionWeights[c]
		if !ok {
			continue
		}
		for _, f := range Families {
			if m := table.Of(f); m > out[f] {
				out[f] = m
			}
		}
	}
	return out
}

// WeightsForNames parses and combines free-text condition names.
func WeightsForNames(names []string) Weights {
	conditions := make([]Condition, 0, len(names))
	for _, n := range names {
		conditions = append(conditions, ParseCondition(n))
	}
	return WeightsFor(conditions)
}

// Amplify scales the excess of lr over 1 by multiplier. Protective
// evidence (lr <= 1) is left as is.
func Amplify(lr, multiplier float64) float64 {
	if lr <= 1 || multiplier <= 0 {
		return lr
	}
	return 1 + (lr-1)*multiplier
}
