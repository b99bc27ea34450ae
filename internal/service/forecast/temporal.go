package forecast

import (
	"fmt"
	"math"
	"time"

	"github.com/flarecast/flarecast-backend/internal/domain/risk"
)

// CalendarReadyDays is the number of observed days that makes the flare
// calendar usable for confidence purposes.
const CalendarReadyDays = 14

func evalTemporal(in *inputs, st *accumulatorState) {
	evalWeekday(in, st)
	evalTimeOfDay(in, st)
	evalFlareTrajectory(in, st)
}

type calendarDay struct {
	weekday time.Weekday
	flare   bool
}

// calendar folds entries into local days, excluding today.
func (in *inputs) calendar() map[string]calendarDay {
	today := in.now.In(in.loc).Format(time.DateOnly)
	days := make(map[string]calendarDay)
	for _, e := range in.entries {
		local := e.Timestamp.In(in.loc)
		key := local.Format(time.DateOnly)
		if key >= today {
			continue
		}
		d := days[key]
		d.weekday = local.Weekday()
		d.flare = d.flare || e.IsFlare()
		days[key] = d
	}
	return days
}

func evalWeekday(in *inputs, st *accumulatorState) {
	days := in.calendar()
	if len(days) >= CalendarReadyDays {
		st.markReady("flare_calendar")
	}

	today := in.now.In(in.loc).Weekday()
	h := risk.History{Total: len(days)}
	for _, d := range days {
		if d.flare {
			h.TotalFlares++
		}
		if d.weekday != today {
			continue
		}
		h.WithSignal++
		if d.flare {
			h.FlaresWithSignal++
		}
	}
	if h.FlaresWithSignal < WeekdayMinFlareDays {
		return
	}

	ev := risk.EstimateLR(h, 1)
	if !ev.Empirical() || ev.LR < WeekdayMinLR {
		return
	}
	st.emit(RiskFactor{
		Label:      "Day-of-week pattern",
		Confidence: math.Min(WeekdayMaxConfidence, evidenceConfidence(ev)),
		Evidence: fmt.Sprintf("Flares started on %d of your last %d %ss, more often than on other days.",
			h.FlaresWithSignal, h.WithSignal, today),
		Category: CategoryPattern,
		Source:   risk.SourceEmpirical,
		signal:   "weekday_pattern",
	}, ev.LR)
}

var dayParts = [4]string{"night", "morning", "afternoon", "evening"}

func dayPart(t time.Time) int {
	return t.Hour() / 6
}

func evalTimeOfDay(in *inputs, st *accumulatorState) {
	if in.totalFlares() < TimeOfDayMinFlares {
		return
	}

	var counts [4]int
	for _, ft := range in.flareTimes {
		counts[dayPart(ft.In(in.loc))]++
	}
	best := 0
	for i := range counts {
		if counts[i] > counts[best] {
			best = i
		}
	}
	share := float64(counts[best]) / float64(in.totalFlares())
	if share < TimeOfDayShare {
		return
	}

	cur := dayPart(in.now.In(in.loc))
	if best != cur && best != (cur+1)%len(dayParts) {
		return
	}
	st.emit(RiskFactor{
		Label:      "Time-of-day pattern",
		Confidence: TimeOfDayConfidence,
		Evidence: fmt.Sprintf("%d of %d flares began in the %s, which is coming up.",
			counts[best], in.totalFlares(), dayParts[best]),
		Category: CategoryPattern,
		Source:   risk.SourceEmpirical,
		signal:   "time_of_day_pattern",
	}, TimeOfDayLR)
}

// evalFlareTrajectory looks for a week-long rise in flare burden, falling
// back to a week-over-baseline rate comparison.
func evalFlareTrajectory(in *inputs, st *accumulatorState) {
	local := in.now.In(in.loc)
	midnight := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, in.loc)

	burden := make([]risk.Point, BurdenTrendDays)
	start := midnight.AddDate(0, 0, -(BurdenTrendDays - 1))
	for i := range burden {
		burden[i] = risk.Point{At: start.AddDate(0, 0, i)}
	}
	for _, e := range in.entries {
		if !e.IsFlare() || e.Timestamp.Before(start) || e.Timestamp.After(in.now) {
			continue
		}
		idx := int(e.Timestamp.Sub(start).Hours() / 24)
		if idx >= 0 && idx < len(burden) {
			burden[idx].Value += e.SeverityWeight()
		}
	}

	if tr := risk.FitTrend(burden); tr.Deteriorating(BurdenSlopeThreshold) {
		st.emit(RiskFactor{
			Label:      "Rising flare burden",
			Confidence: TrendBaseConfidence + TrendFitConfidence*tr.RSquared,
			Evidence: fmt.Sprintf("Daily flare burden has climbed by %.1f per day over the last week (fit R² %.2f).",
				tr.Slope, tr.RSquared),
			Category: CategoryPattern,
			Source:   risk.SourceLiterature,
			signal:   "rising_flares",
		}, BurdenTrendLR)
		return
	}

	if len(in.entries) == 0 || in.entries[0].Timestamp.After(in.now.Add(-TrendWindow-AccelerationBaseline)) {
		return
	}
	weekStart := in.now.Add(-TrendWindow)
	baseStart := weekStart.Add(-AccelerationBaseline)
	var thisWeek, before int
	for _, ft := range in.flareTimes {
		switch {
		case ft.After(in.now):
		case ft.After(weekStart):
			thisWeek++
		case ft.After(baseStart):
			before++
		}
	}
	if thisWeek < AccelerationMinFlares {
		return
	}
	weekly := float64(before) / (AccelerationBaseline.Hours() / TrendWindow.Hours())
	ratio := AccelerationMaxLR
	if weekly > 0 {
		ratio = math.Min(AccelerationMaxLR, float64(thisWeek)/weekly)
	}
	if ratio < AccelerationRatio {
		return
	}
	st.emit(RiskFactor{
		Label:      "Flares becoming more frequent",
		Confidence: AccelerationConfidence,
		Evidence: fmt.Sprintf("%d flares in the past 7 days vs about %.1f per week over the 3 weeks before.",
			thisWeek, weekly),
		Category: CategoryPattern,
		Source:   risk.SourceEmpirical,
		signal:   "rising_flares",
	}, ratio)
}
