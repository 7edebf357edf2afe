// Package metrics turns a backend's raw result rows into the canonical
// derived metric set used for scoring.
package metrics

import (
	"time"

	"github.com/montanaflynn/stats"

	"github.com/mwiater/dbcompare/internal/results"
)

// DerivedMetrics is the canonical per-backend metric set. Every field is a
// pure function of the parsed rows and the run configuration; nothing is
// mutated after Derive returns.
type DerivedMetrics struct {
	Backend string `json:"backend"`

	TotalRequests  int64   `json:"total_requests"`
	TotalFailures  int64   `json:"total_failures"`
	RequestsPerSec float64 `json:"requests_per_sec"`

	// FailureRate is a fraction in [0,1], not a percentage.
	FailureRate float64 `json:"failure_rate"`

	AvgLatencyMs    float64 `json:"avg_latency_ms"`
	MedianLatencyMs float64 `json:"median_latency_ms"`
	MinLatencyMs    float64 `json:"min_latency_ms"`
	MaxLatencyMs    float64 `json:"max_latency_ms"`
	P90LatencyMs    float64 `json:"p90_latency_ms"`
	P95LatencyMs    float64 `json:"p95_latency_ms"`
	P99LatencyMs    float64 `json:"p99_latency_ms"`

	ThroughputStdDev       float64 `json:"throughput_stddev"`
	CoefficientOfVariation float64 `json:"coefficient_of_variation"`
	LatencyStdDev          float64 `json:"latency_stddev"`

	AchievedUsers    int     `json:"achieved_users"`
	TargetUsers      int     `json:"target_users"`
	ScalabilityRatio float64 `json:"scalability_ratio"`

	// ThroughputPerUser is requests per second per achieved user, an
	// efficiency measure independent of absolute load.
	ThroughputPerUser float64 `json:"throughput_per_user"`

	FailureDetailRows   int `json:"failure_detail_rows"`
	ExceptionDetailRows int `json:"exception_detail_rows"`
}

// Derive computes the metric set for one backend. targetUsers overrides
// the {users} token from the file naming when non-zero. A backend whose
// run recorded zero requests derives an all-zero metric set so it still
// participates in ranking instead of failing the comparison.
func Derive(set *results.BackendResultSet, targetUsers int) DerivedMetrics {
	if targetUsers <= 0 {
		targetUsers = set.TargetUsers
	}
	m := DerivedMetrics{
		Backend:             set.Backend,
		TargetUsers:         targetUsers,
		FailureDetailRows:   len(set.Failures),
		ExceptionDetailRows: len(set.Exceptions),
	}

	agg, hasAgg := set.AggregatedRow()
	if hasAgg {
		m.TotalRequests = agg.RequestCount
		m.TotalFailures = agg.FailureCount
	} else {
		for _, row := range set.Stats {
			m.TotalRequests += row.RequestCount
			m.TotalFailures += row.FailureCount
		}
	}

	if m.TotalRequests == 0 {
		return DerivedMetrics{
			Backend:             m.Backend,
			TargetUsers:         m.TargetUsers,
			FailureDetailRows:   m.FailureDetailRows,
			ExceptionDetailRows: m.ExceptionDetailRows,
		}
	}

	m.FailureRate = float64(m.TotalFailures) / float64(max(m.TotalRequests, 1))
	m.RequestsPerSec = deriveRPS(set, agg, hasAgg, m.TotalRequests)
	deriveLatency(&m, set, agg, hasAgg)
	deriveConsistency(&m, set.History)
	deriveScalability(&m, set.History)

	return m
}

// deriveRPS prefers total requests over the configured run duration. When
// the duration token is unusable it falls back to the aggregated row's
// reported rate, then to the mean of the non-zero history samples.
func deriveRPS(set *results.BackendResultSet, agg results.StatRow, hasAgg bool, total int64) float64 {
	if d, err := time.ParseDuration(set.Duration); err == nil && d > 0 {
		return float64(total) / d.Seconds()
	}
	if hasAgg && agg.RequestsPerSec > 0 {
		return agg.RequestsPerSec
	}
	samples := nonZeroRPS(set.History)
	if len(samples) == 0 {
		return 0
	}
	mean, _ := stats.Mean(samples)
	return mean
}

// deriveLatency takes the aggregated row's latency columns verbatim when
// present, otherwise computes request-count-weighted averages across the
// per-operation rows (min and max are taken across rows directly).
func deriveLatency(m *DerivedMetrics, set *results.BackendResultSet, agg results.StatRow, hasAgg bool) {
	if hasAgg {
		m.AvgLatencyMs = agg.AverageResponseTime
		m.MedianLatencyMs = agg.MedianResponseTime
		m.MinLatencyMs = agg.MinResponseTime
		m.MaxLatencyMs = agg.MaxResponseTime
		m.P90LatencyMs = agg.P90
		m.P95LatencyMs = agg.P95
		m.P99LatencyMs = agg.P99
		return
	}

	var weight float64
	first := true
	for _, row := range set.Stats {
		w := float64(row.RequestCount)
		if w <= 0 {
			continue
		}
		weight += w
		m.AvgLatencyMs += row.AverageResponseTime * w
		m.MedianLatencyMs += row.MedianResponseTime * w
		m.P90LatencyMs += row.P90 * w
		m.P95LatencyMs += row.P95 * w
		m.P99LatencyMs += row.P99 * w
		if first || row.MinResponseTime < m.MinLatencyMs {
			m.MinLatencyMs = row.MinResponseTime
		}
		if row.MaxResponseTime > m.MaxLatencyMs {
			m.MaxLatencyMs = row.MaxResponseTime
		}
		first = false
	}
	if weight > 0 {
		m.AvgLatencyMs /= weight
		m.MedianLatencyMs /= weight
		m.P90LatencyMs /= weight
		m.P95LatencyMs /= weight
		m.P99LatencyMs /= weight
	}
}

// deriveConsistency computes throughput variability over the non-zero RPS
// history samples: population standard deviation, plus the coefficient of
// variation (0 when the mean is 0, never a division by zero).
func deriveConsistency(m *DerivedMetrics, history []results.HistoryPoint) {
	samples := nonZeroRPS(history)
	if len(samples) == 0 {
		return
	}
	m.ThroughputStdDev, _ = stats.StandardDeviationPopulation(samples)
	mean, _ := stats.Mean(samples)
	if mean > 0 {
		m.CoefficientOfVariation = m.ThroughputStdDev / mean
	}

	var latencies []float64
	for _, p := range history {
		if p.RequestsPerSec > 0 {
			latencies = append(latencies, p.TotalAvgResponseMs)
		}
	}
	if len(latencies) > 0 {
		m.LatencyStdDev, _ = stats.StandardDeviationPopulation(latencies)
	}
}

// deriveScalability treats the maximum observed concurrent-user sample in
// the history as the achieved peak, and caps the ratio at 1.0 so overshoot
// is not rewarded.
func deriveScalability(m *DerivedMetrics, history []results.HistoryPoint) {
	for _, p := range history {
		if p.UserCount > m.AchievedUsers {
			m.AchievedUsers = p.UserCount
		}
	}
	if m.TargetUsers > 0 {
		m.ScalabilityRatio = float64(m.AchievedUsers) / float64(m.TargetUsers)
		if m.ScalabilityRatio > 1.0 {
			m.ScalabilityRatio = 1.0
		}
	}
	if m.AchievedUsers > 0 {
		m.ThroughputPerUser = m.RequestsPerSec / float64(m.AchievedUsers)
	}
}

func nonZeroRPS(history []results.HistoryPoint) []float64 {
	var samples []float64
	for _, p := range history {
		if p.RequestsPerSec > 0 {
			samples = append(samples, p.RequestsPerSec)
		}
	}
	return samples
}
