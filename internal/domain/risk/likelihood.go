package risk

import "math"

const (
	// MaxLikelihoodRatio caps any single piece of evidence.
	MaxLikelihoodRatio = 20.0

	// MinFalsePositiveRate floors the LR denominator.
	MinFalsePositiveRate = 0.01

	// MinEmpiricalInstances is how many qualifying historical instances
	// are needed before a user's own history is trusted over defaults.
	MinEmpiricalInstances = 3
)

// EvidenceSource records where a likelihood ratio came from.
type EvidenceSource string

const (
	SourceEmpirical   EvidenceSource = "empirical"
	SourceLiterature  EvidenceSource = "literature"
	SourceLearned     EvidenceSource = "learned"
	SourceInteraction EvidenceSource = "interaction"
)

// History counts how a binary condition lined up with flares in the past.
type History struct {
	WithSignal       int // entries exhibiting the condition
	Total            int // all entries considered
	FlaresWithSignal int // condition entries followed by a flare
	TotalFlares      int
}

// ComputeLR returns sensitivity / false positive rate for h, bounded to
// [0, MaxLikelihoodRatio]. Without any flares there is no evidence and
// the neutral ratio 1 is returned.
func ComputeLR(h History) float64 {
	if h.TotalFlares <= 0 {
		return 1
	}

	hits := math.Max(0, float64(h.FlaresWithSignal))
	sensitivity := hits / float64(h.TotalFlares)

	falsePositives := math.Max(0, float64(h.WithSignal-h.FlaresWithSignal))
	negatives := float64(h.Total - h.TotalFlares)
	fpr := 0.0
	if negatives > 0 {
		fpr = falsePositives / negatives
	}
	fpr = math.Max(fpr, MinFalsePositiveRate)

	lr := sensitivity / fpr
	if math.IsNaN(lr) || lr < 0 {
		return 0
	}
	return math.Min(lr, MaxLikelihoodRatio)
}

// DefaultLR is the literature-informed fallback, tiered by deviation size.
func DefaultLR(z float64) float64 {
	switch az := math.Abs(z); {
	case az >= 3:
		return 2.5
	case az >= 2:
		return 1.8
	case az >= 1.5:
		return 1.5
	default:
		return 1.3
	}
}

// Evidence is a likelihood ratio tagged with its provenance.
type Evidence struct {
	LR        float64
	Source    EvidenceSource
	Instances int
	Hits      int
}

// Empirical reports whether the ratio came from the user's own history.
func (e Evidence) Empirical() bool {
	return e.Source == SourceEmpirical
}

// EstimateLR uses the user's history when it has enough instances and
// otherwise falls back to fallback.
func EstimateLR(h History, fallback float64) Evidence {
	if h.WithSignal >= MinEmpiricalInstances && h.TotalFlares > 0 {
		return Evidence{
			LR:        ComputeLR(h),
			Source:    SourceEmpirical,
			Instances: h.WithSignal,
			Hits:      h.FlaresWithSignal,
		}
	}
	return Evidence{
		LR:        fallback,
		Source:    SourceLiterature,
		Instances: h.WithSignal,
		Hits:      h.FlaresWithSignal,
	}
}
