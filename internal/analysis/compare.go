// Package analysis ranks scored backends and derives the headline
// findings of a comparison run. Everything it produces is plain data;
// rendering lives entirely downstream.
package analysis

import (
	"fmt"
	"sort"
	"time"

	"github.com/mwiater/dbcompare/internal/metrics"
	"github.com/mwiater/dbcompare/internal/scoring"
)

// InsufficientBackendsError reports a comparison attempted with fewer than
// two backends. Relative scoring is undefined for a single backend, so the
// run fails instead of returning a meaningless perfect score.
type InsufficientBackendsError struct {
	Found int
}

func (e *InsufficientBackendsError) Error() string {
	return fmt.Sprintf("comparison needs at least two backends, found %d", e.Found)
}

// RankedBackend is one entry of the final ranking.
type RankedBackend struct {
	Backend        string                 `json:"backend"`
	OverallScore   float64                `json:"overall_score"`
	CategoryScores scoring.CategoryScores `json:"category_scores"`
	Metrics        metrics.DerivedMetrics `json:"metrics"`
}

// Findings carries the headline conclusions of a comparison.
type Findings struct {
	ScoreWinner       string `json:"score_winner"`
	ScalabilityLeader string `json:"scalability_leader"`
	ThroughputLeader  string `json:"throughput_leader"`
	LatencyLeader     string `json:"latency_leader"`
	EfficiencyLeader  string `json:"efficiency_leader"`
	MostTotalRequests string `json:"most_total_requests"`

	// Divergence is set when the weighted-score winner is not the
	// backend that sustained the most of its target load. DivergenceNote
	// spells the mismatch out so reporting can surface it.
	Divergence     bool   `json:"divergence"`
	DivergenceNote string `json:"divergence_note,omitempty"`

	// PerformanceGapPct is the percentage lead of the top overall score
	// over the runner-up's.
	PerformanceGapPct float64 `json:"performance_gap_pct"`

	Recommendations []string `json:"recommendations"`
}

// ComparisonResult is the final aggregate handed to the report boundary.
// It is built once and read-only afterwards.
type ComparisonResult struct {
	Ranked      []RankedBackend    `json:"ranked"`
	Findings    Findings           `json:"findings"`
	Weights     map[string]float64 `json:"weights"`
	GeneratedAt time.Time          `json:"generated_at"`
}

// Compare validates the weights, scores the backends against each other
// and assembles the ranked result. Weight validation happens before any
// scoring work; fewer than two backends is a hard error.
func Compare(set []metrics.DerivedMetrics, w scoring.Weights) (*ComparisonResult, error) {
	if err := w.Validate(); err != nil {
		return nil, err
	}
	if len(set) < 2 {
		return nil, &InsufficientBackendsError{Found: len(set)}
	}

	normalized := scoring.Normalize(set)

	ranked := make([]RankedBackend, 0, len(set))
	for _, m := range set {
		scores := normalized[m.Backend]
		ranked = append(ranked, RankedBackend{
			Backend:        m.Backend,
			OverallScore:   scoring.Overall(scores, w),
			CategoryScores: scores,
			Metrics:        m,
		})
	}

	// Overall score first, then scalability ratio, then name, so equal
	// inputs always rank identically.
	sort.Slice(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.OverallScore != b.OverallScore {
			return a.OverallScore > b.OverallScore
		}
		if a.Metrics.ScalabilityRatio != b.Metrics.ScalabilityRatio {
			return a.Metrics.ScalabilityRatio > b.Metrics.ScalabilityRatio
		}
		return a.Backend < b.Backend
	})

	weights := make(map[string]float64, len(w))
	for _, c := range scoring.Categories() {
		weights[c.String()] = w[c]
	}

	return &ComparisonResult{
		Ranked:      ranked,
		Findings:    deriveFindings(ranked),
		Weights:     weights,
		GeneratedAt: time.Now().UTC(),
	}, nil
}

func deriveFindings(ranked []RankedBackend) Findings {
	winner := ranked[0]
	f := Findings{
		ScoreWinner:       winner.Backend,
		ScalabilityLeader: leader(ranked, func(m metrics.DerivedMetrics) float64 { return m.ScalabilityRatio }),
		ThroughputLeader:  leader(ranked, func(m metrics.DerivedMetrics) float64 { return m.RequestsPerSec }),
		LatencyLeader:     leader(ranked, func(m metrics.DerivedMetrics) float64 { return -m.AvgLatencyMs }),
		EfficiencyLeader:  leader(ranked, func(m metrics.DerivedMetrics) float64 { return m.ThroughputPerUser }),
		MostTotalRequests: leader(ranked, func(m metrics.DerivedMetrics) float64 { return float64(m.TotalRequests) }),
	}

	if second := ranked[1]; second.OverallScore > 0 {
		f.PerformanceGapPct = (winner.OverallScore - second.OverallScore) / second.OverallScore * 100
	}

	if f.ScalabilityLeader != winner.Backend {
		lead := byName(ranked, f.ScalabilityLeader)
		f.Divergence = true
		f.DivergenceNote = fmt.Sprintf(
			"%s wins the weighted score (%.1f/100) but sustained only %.1f%% of its target users; %s sustained %.1f%%",
			winner.Backend, winner.OverallScore,
			winner.Metrics.ScalabilityRatio*100,
			lead.Backend, lead.Metrics.ScalabilityRatio*100,
		)
		f.Recommendations = []string{
			fmt.Sprintf("For high-scale production consider %s: it sustained %.1f%% of target users vs %.1f%% for %s.",
				lead.Backend, lead.Metrics.ScalabilityRatio*100, winner.Metrics.ScalabilityRatio*100, winner.Backend),
			fmt.Sprintf("For latency-sensitive workloads under moderate load consider %s (%.2fms average response).",
				winner.Backend, winner.Metrics.AvgLatencyMs),
			fmt.Sprintf("Investigate why %s stopped scaling at %d users; connection pool or configuration tuning may help.",
				winner.Backend, winner.Metrics.AchievedUsers),
		}
	} else {
		f.Recommendations = []string{
			fmt.Sprintf("%s leads both the weighted score and scalability for this workload.", winner.Backend),
			"Test with higher user loads to find the scaling limit before production sizing.",
		}
	}
	return f
}

// leader picks the backend maximizing the key, breaking ties by ranking
// order (which is itself deterministic).
func leader(ranked []RankedBackend, key func(metrics.DerivedMetrics) float64) string {
	best := ranked[0]
	for _, r := range ranked[1:] {
		if key(r.Metrics) > key(best.Metrics) {
			best = r
		}
	}
	return best.Backend
}

func byName(ranked []RankedBackend, name string) RankedBackend {
	for _, r := range ranked {
		if r.Backend == name {
			return r
		}
	}
	return ranked[0]
}
