package forecast

import (
	"fmt"
	"math"
	"strings"

	"github.com/flarecast/flarecast-backend/internal/domain/risk"
)

// stressorCategories take part in interaction detection.
var stressorCategories = []Category{
	CategorySleep, CategoryStress, CategoryWeather, CategoryActivity, CategoryMedication,
}

type interaction struct {
	description string
	lr          float64
}

// detectInteractions lists the compounding effects present in active.
func detectInteractions(active map[Category]bool) []interaction {
	var n int
	for _, c := range stressorCategories {
		if active[c] {
			n++
		}
	}
	physiological := active[CategorySleep] || active[CategoryStress] || active[CategoryActivity]

	var out []interaction
	if active[CategorySleep] && active[CategoryStress] {
		out = append(out, interaction{"poor sleep combined with physiological stress", SleepStressLR})
	}
	if active[CategoryWeather] && physiological {
		out = append(out, interaction{"weather change on top of a physiological stressor", WeatherPhysiologicalLR})
	}
	if active[CategoryMedication] && n > 1 {
		out = append(out, interaction{"missed medication alongside other stressors", MedicationGapStressorLR})
	}
	if n >= AllostaticMinCategories {
		out = append(out, interaction{fmt.Sprintf("%d stressor types active at once", n), AllostaticLR})
	}
	return out
}

func evalInteractions(_ *inputs, st *accumulatorState) {
	fired := detectInteractions(st.activeCategories())
	if len(fired) == 0 {
		return
	}

	combined, impact := 1.0, 0.0
	descriptions := make([]string, len(fired))
	for i, it := range fired {
		st.acc.Update(it.lr, InteractionConfidence)
		combined *= it.lr
		impact += ImpactScale * math.Log(risk.EffectiveLR(it.lr, InteractionConfidence))
		descriptions[i] = it.description
	}

	st.record(RiskFactor{
		Label:      "Compounding stressors",
		Confidence: InteractionConfidence,
		Evidence:   "Stressors amplify each other: " + strings.Join(descriptions, "; ") + ".",
		Category:   CategoryInteraction,
		Source:     risk.SourceInteraction,
		signal:     "interaction",
	}, combined, impact)
}
