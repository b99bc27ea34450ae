package risk

// Level is the coarse risk bucket shown to users.
type Level string

const (
	LevelLow      Level = "low"
	LevelModerate Level = "moderate"
	LevelHigh     Level = "high"
	LevelVeryHigh Level = "very_high"
)

// Score breakpoints.
const (
	VeryHighThreshold = 75
	HighThreshold     = 55
	ModerateThreshold = 35
)

// LevelForScore buckets a 0..100 score.
func LevelForScore(score int) Level {
	switch {
	case score >= VeryHighThreshold:
		return LevelVeryHigh
	case score >= HighThreshold:
		return LevelHigh
	case score >= ModerateThreshold:
		return LevelModerate
	default:
		return LevelLow
	}
}
