package scoring

import (
	"github.com/mwiater/dbcompare/internal/metrics"
)

// CategoryScores holds one backend's normalized scores, each in [0,100].
type CategoryScores map[Category]float64

// rawValue extracts the raw metric a category scores on.
func rawValue(m metrics.DerivedMetrics, c Category) float64 {
	switch c {
	case Throughput:
		return m.RequestsPerSec
	case Latency:
		return m.AvgLatencyMs
	case Reliability:
		return m.FailureRate
	case Consistency:
		return m.CoefficientOfVariation
	case Scalability:
		return m.ScalabilityRatio
	}
	return 0
}

// Normalize maps every backend's raw metrics onto the relative 0-100
// scale, direction-aware. With max == min in a category, every backend
// scores 100: ties sit at the top of the scale, never at the bottom.
func Normalize(set []metrics.DerivedMetrics) map[string]CategoryScores {
	out := make(map[string]CategoryScores, len(set))
	if len(set) == 0 {
		return out
	}
	for _, m := range set {
		out[m.Backend] = make(CategoryScores, len(Categories()))
	}

	for _, c := range Categories() {
		lo, hi := rawValue(set[0], c), rawValue(set[0], c)
		for _, m := range set[1:] {
			v := rawValue(m, c)
			if v < lo {
				lo = v
			}
			if v > hi {
				hi = v
			}
		}

		for _, m := range set {
			score := 100.0
			if hi > lo {
				v := rawValue(m, c)
				if c.HigherIsBetter() {
					score = 100 * (v - lo) / (hi - lo)
				} else {
					score = 100 * (hi - v) / (hi - lo)
				}
			}
			out[m.Backend][c] = score
		}
	}
	return out
}

// Overall combines one backend's category scores under the given weights.
// With weights summing to 1.0 the result is a convex combination, bounded
// by the smallest and largest category score.
func Overall(scores CategoryScores, w Weights) float64 {
	total := 0.0
	for _, c := range Categories() {
		total += scores[c] * w[c]
	}
	return total
}
