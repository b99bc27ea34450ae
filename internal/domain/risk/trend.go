package risk

import (
	"sort"
	"time"
)

// MinTrendPoints is the smallest window a trend can be fitted on.
const MinTrendPoints = 3

// Point is one timestamped observation.
type Point struct {
	At    time.Time
	Value float64
}

// Trend is an ordinary least squares fit over days since the first point.
type Trend struct {
	Slope     float64 // units per day
	Intercept float64
	RSquared  float64
	Points    int
}

// FitTrend fits a line through points. It returns nil when there are fewer
// than MinTrendPoints or all points share a timestamp.
func FitTrend(points []Point) *Trend {
	if len(points) < MinTrendPoints {
		return nil
	}

	sorted := make([]Point, len(points))
	copy(sorted, points)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].At.Before(sorted[j].At) })

	origin := sorted[0].At
	n := float64(len(sorted))
	var sumX, sumY, sumXY, sumX2 float64
	xs := make([]float64, len(sorted))
	for i, p := range sorted {
		x := p.At.Sub(origin).Hours() / 24
		xs[i] = x
		sumX += x
		sumY += p.Value
		sumXY += x * p.Value
		sumX2 += x * x
	}

	denom := n*sumX2 - sumX*sumX
	if denom == 0 {
		return nil
	}
	slope := (n*sumXY - sumX*sumY) / denom
	intercept := (sumY - slope*sumX) / n

	meanY := sumY / n
	var ssTot, ssRes float64
	for i, p := range sorted {
		pred := intercept + slope*xs[i]
		ssRes += (p.Value - pred) * (p.Value - pred)
		ssTot += (p.Value - meanY) * (p.Value - meanY)
	}

	r2 := 0.0
	if ssTot > 0 {
		r2 = 1 - ssRes/ssTot
		if r2 < 0 {
			r2 = 0
		}
	}

	return &Trend{
		Slope:     slope,
		Intercept: intercept,
		RSquared:  r2,
		Points:    len(sorted),
	}
}

// MinTrendRSquared is the goodness of fit a trend needs before it is trusted.
const MinTrendRSquared = 0.3

// Deteriorating reports whether the fit moves in the adverse direction by
// more than threshold per day with acceptable fit. A negative threshold
// means falling values are adverse.
func (t *Trend) Deteriorating(threshold float64) bool {
	if t == nil || t.RSquared <= MinTrendRSquared {
		return false
	}
	if threshold < 0 {
		return t.Slope < threshold
	}
	return t.Slope > threshold
}
