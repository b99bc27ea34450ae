package forecast

import (
	"fmt"
	"math"
	"time"

	"github.com/flarecast/flarecast-backend/internal/domain/journal"
	"github.com/flarecast/flarecast-backend/internal/domain/risk"
)

type direction int

const (
	adverseLow direction = iota
	adverseHigh
	adverseEither
)

// adverse turns a z-score into "standard deviations in the bad direction".
func (d direction) adverse(z float64) float64 {
	switch d {
	case adverseLow:
		return -z
	case adverseHigh:
		return z
	default:
		return math.Abs(z)
	}
}

// deviationRule configures a signal scored against the user's own EWMA baseline.
type deviationRule struct {
	signal     journal.Signal
	env        bool
	alpha      float64
	direction  direction
	zThreshold float64
	absolute   func(cur float64, b *risk.Baseline) bool
	family     risk.Family
	category   Category
	tag        string
	label      string
	noun       string
	unit       string
	minDelay   time.Duration
	maxDelay   time.Duration
	protective string
	trend      *trendRule
	current    func(in *inputs, r *deviationRule) (float64, time.Time, bool)
}

// trendRule fires on a sustained adverse slope. slope is signed: negative
// thresholds flag falling values.
type trendRule struct {
	slope float64
	label string
	tag   string
}

// exhibits reports whether a historical reading counts as showing the condition.
func (r *deviationRule) exhibits(v float64, b *risk.Baseline) bool {
	z := (v - b.Mean()) / b.StdDev()
	if r.direction.adverse(z) > ConditionSigma {
		return true
	}
	return r.absolute != nil && r.absolute(v, b)
}

// currentValue resolves today's reading and the time from which history
// must be excluded from the baseline; zero keeps all of it.
func (r *deviationRule) currentValue(in *inputs) (float64, time.Time, bool) {
	if r.current != nil {
		return r.current(in, r)
	}
	return in.current(r.signal, in.liveFor(r.env))
}

func evalDeviation(in *inputs, st *accumulatorState, r *deviationRule) {
	pts := in.series(r.signal)
	cur, cutoff, ok := r.currentValue(in)

	history := pts
	if ok && !cutoff.IsZero() {
		history = before(pts, cutoff)
	}
	values := make([]float64, len(history))
	for i, p := range history {
		values[i] = p.Value
	}
	b := risk.BuildBaseline(r.alpha, values)
	if !b.Ready() {
		return
	}
	st.markReady(r.signal.Name)

	if ok {
		z, _ := b.ZScore(cur)
		adverse := r.direction.adverse(z)
		fires := adverse > r.zThreshold || (r.absolute != nil && r.absolute(cur, b))

		switch {
		case fires:
			hist := in.history(func(e journal.LogEntry) bool {
				v, ok := e.Value(r.signal)
				return ok && r.exhibits(v, b)
			}, r.minDelay, r.maxDelay)
			ev := risk.EstimateLR(hist, risk.DefaultLR(z))
			m := in.weights.Of(r.family)
			st.emit(RiskFactor{
				Label:      r.label,
				Confidence: evidenceConfidence(ev),
				Evidence:   describeDeviation(r, cur, b, z, ev, m),
				Category:   r.category,
				Source:     ev.Source,
				signal:     r.tag,
			}, risk.Amplify(ev.LR, m))
		case r.protective != "" && adverse < -ProtectiveSigma:
			st.emitProtective(RiskFactor{
				Label:      r.protective,
				Confidence: ProtectiveConfidence,
				Evidence: fmt.Sprintf("%s %s is better than your usual %s",
					r.noun, formatValue(cur, r.unit), formatValue(b.Mean(), r.unit)),
				Category: r.category,
				Source:   risk.SourceLiterature,
			}, ProtectiveLR)
		}
	}

	if r.trend != nil {
		evalTrend(in, st, r, pts)
	}
}

func evalTrend(in *inputs, st *accumulatorState, r *deviationRule, pts []risk.Point) {
	tr := risk.FitTrend(in.since(pts, TrendWindow))
	if !tr.Deteriorating(r.trend.slope) {
		return
	}
	verb := "risen"
	if r.trend.slope < 0 {
		verb = "fallen"
	}
	m := in.weights.Of(r.family)
	st.emit(RiskFactor{
		Label:      r.trend.label,
		Confidence: TrendBaseConfidence + TrendFitConfidence*tr.RSquared,
		Evidence: fmt.Sprintf("%s has %s by %s per day over the last %d readings (fit R² %.2f)",
			r.noun, verb, formatValue(math.Abs(tr.Slope), r.unit), tr.Points, tr.RSquared),
		Category: r.category,
		Source:   risk.SourceLiterature,
		signal:   r.trend.tag,
	}, risk.Amplify(TrendLR, m))
}

// evidenceConfidence grows with the number of personal instances.
func evidenceConfidence(ev risk.Evidence) float64 {
	if !ev.Empirical() {
		return LiteratureConfidence
	}
	return math.Min(EmpiricalMaxConfidence,
		EmpiricalBaseConfidence+float64(ev.Instances)/EmpiricalInstancesForMax)
}

func describeDeviation(r *deviationRule, cur float64, b *risk.Baseline, z float64, ev risk.Evidence, m float64) string {
	s := fmt.Sprintf("%s %s vs your usual %s (%+.1f SD).",
		r.noun, formatValue(cur, r.unit), formatValue(b.Mean(), r.unit), z)
	s += " " + provenance(ev, r.maxDelay)
	if m > 1 {
		s += fmt.Sprintf(" Weighted ×%.1f for your conditions.", m)
	}
	return s
}

// provenance states whether a ratio came from the user's history or a default.
func provenance(ev risk.Evidence, window time.Duration) string {
	if ev.Empirical() {
		return fmt.Sprintf("Your history: %d of %d similar readings were followed by a flare within %s.",
			ev.Hits, ev.Instances, humanDuration(window))
	}
	return "Not enough personal history yet, so a typical population estimate is used."
}

func formatValue(v float64, unit string) string {
	switch unit {
	case "h":
		return fmt.Sprintf("%.1f h", v)
	case "%":
		return fmt.Sprintf("%.0f%%", v)
	case "°C":
		return fmt.Sprintf("%.1f°C", v)
	case "":
		return fmt.Sprintf("%.0f", v)
	default:
		return fmt.Sprintf("%.0f %s", v, unit)
	}
}

func humanDuration(d time.Duration) string {
	hours := int(d.Hours())
	switch {
	case hours < 1:
		return "under an hour"
	case hours == 1:
		return "1 hour"
	}
	if hours >= 48 && hours%24 == 0 {
		return fmt.Sprintf("%d days", hours/24)
	}
	return fmt.Sprintf("%d hours", hours)
}
