// Package results discovers and parses Locust-style load-test result files.
//
// Each benchmark run drops up to four CSV files per backend into a results
// directory, named {backend}_{users}_{duration}_{kind}.csv with kind one of
// stats, failures, exceptions or stats_history. Only the stats file is
// mandatory; a backend with no failures legitimately has no failures file.
package results

import "fmt"

// StatRow is one aggregate line of a stats file, keyed by operation name.
// The "Aggregated" row summarizes all operations combined.
type StatRow struct {
	Name                string  `json:"name"`
	RequestCount        int64   `json:"request_count"`
	FailureCount        int64   `json:"failure_count"`
	MedianResponseTime  float64 `json:"median_response_time_ms"`
	AverageResponseTime float64 `json:"average_response_time_ms"`
	MinResponseTime     float64 `json:"min_response_time_ms"`
	MaxResponseTime     float64 `json:"max_response_time_ms"`
	P50                 float64 `json:"p50_ms"`
	P90                 float64 `json:"p90_ms"`
	P95                 float64 `json:"p95_ms"`
	P99                 float64 `json:"p99_ms"`
	RequestsPerSec      float64 `json:"requests_per_sec"`
	FailuresPerSec      float64 `json:"failures_per_sec"`
}

// HistoryPoint is one time-stamped sample from a stats_history file.
type HistoryPoint struct {
	Timestamp          int64   `json:"timestamp"`
	UserCount          int     `json:"user_count"`
	RequestsPerSec     float64 `json:"requests_per_sec"`
	TotalAvgResponseMs float64 `json:"total_avg_response_ms"`
}

// BackendResultSet owns everything parsed for one backend's run. It is
// built once by Load and never mutated afterwards.
type BackendResultSet struct {
	Backend string `json:"backend"`

	// TargetUsers and Duration come from the {users} and {duration}
	// tokens of the file naming convention.
	TargetUsers int    `json:"target_users"`
	Duration    string `json:"duration"`

	Stats      []StatRow      `json:"stats"`
	History    []HistoryPoint `json:"history"`
	Failures   [][]string     `json:"failures,omitempty"`
	Exceptions [][]string     `json:"exceptions,omitempty"`
}

// AggregatedRow returns the "Aggregated" summary row if the stats file
// carried one. When several are present the last one wins, matching the
// order Locust writes them in.
func (s *BackendResultSet) AggregatedRow() (StatRow, bool) {
	var agg StatRow
	found := false
	for _, row := range s.Stats {
		if row.Name == "Aggregated" {
			agg = row
			found = true
		}
	}
	return agg, found
}

// NoResultsError reports a results directory in which no backend has a
// stats file.
type NoResultsError struct {
	Dir string
}

func (e *NoResultsError) Error() string {
	return fmt.Sprintf("no load-test stats files found in %q", e.Dir)
}

// MalformedResultError reports a required result file that cannot be used:
// required columns are missing, or every data row failed to parse.
type MalformedResultError struct {
	File   string
	Reason string
}

func (e *MalformedResultError) Error() string {
	return fmt.Sprintf("malformed result file %q: %s", e.File, e.Reason)
}
