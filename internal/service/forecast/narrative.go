package forecast

import (
	"fmt"
	"strings"

	"github.com/flarecast/flarecast-backend/internal/domain/risk"
)

var levelPhrases = map[risk.Level]string{
	risk.LevelLow:      "Low",
	risk.LevelModerate: "Moderate",
	risk.LevelHigh:     "High",
	risk.LevelVeryHigh: "Very high",
}

var categoryPhrases = map[Category]string{
	CategorySleep:       "your sleep",
	CategoryStress:      "signs of physiological stress",
	CategoryWeather:     "weather conditions",
	CategoryActivity:    "recent activity",
	CategoryCycle:       "your cycle phase",
	CategoryPattern:     "your recent flare pattern",
	CategoryTrigger:     "a recent trigger",
	CategoryMedication:  "a missed medication",
	CategoryLearned:     "patterns learned from your history",
	CategoryInteraction: "several stressors combining",
}

var categoryAdvice = map[Category]string{
	CategorySleep:      "Protect tonight's sleep: keep a consistent bedtime and wind down early.",
	CategoryStress:     "Your body is showing strain, so plan recovery time and keep exertion light.",
	CategoryWeather:    "Weather shifts affect you; favour indoor, low-effort plans and keep relief medication handy.",
	CategoryActivity:   "A recent activity spike often precedes a crash for you; pace yourself today.",
	CategoryCycle:      "You're in a cycle phase linked to your flares; keep comfort measures within reach.",
	CategoryPattern:    "Flares have been building lately; consider lightening your commitments.",
	CategoryTrigger:    "You logged a trigger that has preceded flares before; avoid further exposure today.",
	CategoryMedication: "A regular medication looks overdue; take it as prescribed or check with your care team.",
	CategoryLearned:    "A pattern from your history is active; look back at what helped last time.",
}

// MaxRecommendations caps category-specific advice.
const MaxRecommendations = 4

// dominantCategories returns up to n distinct categories of risk-positive
// factors in rank order, skipping the synthetic interaction factor.
func dominantCategories(factors []RiskFactor, n int) []Category {
	seen := make(map[Category]bool)
	var out []Category
	for _, f := range factors {
		if len(out) == n {
			break
		}
		if !f.RiskPositive() || f.Category == CategoryInteraction || seen[f.Category] {
			continue
		}
		seen[f.Category] = true
		out = append(out, f.Category)
	}
	return out
}

func prediction(score int, level risk.Level, factors []RiskFactor) string {
	head := fmt.Sprintf("%s flare risk over the %s (%d%%).", levelPhrases[level], Timeframe, score)

	drivers := dominantCategories(factors, 2)
	if len(drivers) == 0 {
		return head + " No strong warning signs in your recent data."
	}
	phrases := make([]string, len(drivers))
	for i, c := range drivers {
		phrases[i] = categoryPhrases[c]
	}
	s := head + " Mostly driven by " + strings.Join(phrases, " and ") + "."
	for _, f := range factors {
		if f.Category == CategoryInteraction {
			s += " Several stressors are stacking up, which raises risk further."
			break
		}
	}
	return s
}

func recommendations(level risk.Level, factors []RiskFactor) []string {
	out := make([]string, 0, MaxRecommendations+1)
	for _, c := range dominantCategories(factors, MaxRecommendations) {
		if advice, ok := categoryAdvice[c]; ok {
			out = append(out, advice)
		}
	}

	switch level {
	case risk.LevelVeryHigh, risk.LevelHigh:
		out = append(out, "Keep your flare plan ready and clear space in your schedule to rest.")
	case risk.LevelLow:
		if len(out) == 0 {
			out = append(out, "Keep up your current routine and keep logging to sharpen your forecast.")
		}
	default:
		if len(out) == 0 {
			out = append(out, "Check in with how you feel this afternoon and log any new symptoms.")
		}
	}
	return out
}
