package results

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/rs/zerolog/log"
)

// Column names as Locust writes them. Extra columns are ignored; the
// hard minimum for a stats file is the two count columns plus at least
// one entry of latencyColumns.
const (
	colName       = "Name"
	colRequests   = "Request Count"
	colFailures   = "Failure Count"
	colMedian     = "Median Response Time"
	colAverage    = "Average Response Time"
	colMin        = "Min Response Time"
	colMax        = "Max Response Time"
	colP50        = "50%"
	colP90        = "90%"
	colP95        = "95%"
	colP99        = "99%"
	colRPS        = "Requests/s"
	colFPS        = "Failures/s"
	colTimestamp  = "Timestamp"
	colUserCount  = "User Count"
	colTotalAvgRT = "Total Average Response Time"
)

// latencyColumns is the set of which at least one must be present for a
// stats file to be usable.
var latencyColumns = []string{colAverage, colMedian, colP50, colP90, colP95, colP99}

// Parse reads the files of one discovered backend into a BackendResultSet.
// Missing optional files yield empty slices. A stats file that lacks the
// required columns, or whose every row is unparsable, produces a
// *MalformedResultError.
func Parse(fs FileSet) (*BackendResultSet, error) {
	set := &BackendResultSet{
		Backend:     fs.Backend,
		TargetUsers: fs.TargetUsers,
		Duration:    fs.Duration,
	}

	stats, err := parseStats(fs.StatsPath)
	if err != nil {
		return nil, err
	}
	set.Stats = stats

	if fs.HistoryPath != "" {
		set.History, err = parseHistory(fs.HistoryPath)
		if err != nil {
			return nil, err
		}
	}
	if fs.FailuresPath != "" {
		set.Failures, err = parseDetail(fs.FailuresPath)
		if err != nil {
			return nil, err
		}
	}
	if fs.ExceptionsPath != "" {
		set.Exceptions, err = parseDetail(fs.ExceptionsPath)
		if err != nil {
			return nil, err
		}
	}
	return set, nil
}

// columnIndex maps header names to field positions for one file.
type columnIndex map[string]int

func (c columnIndex) has(name string) bool {
	_, ok := c[name]
	return ok
}

// str returns the named cell, or "" when the column is absent or the row
// is too short.
func (c columnIndex) str(record []string, name string) string {
	i, ok := c[name]
	if !ok || i >= len(record) {
		return ""
	}
	return record[i]
}

// float parses the named cell. Absent columns read as 0 without error;
// present but unparsable cells return the error so the row can be dropped.
func (c columnIndex) float(record []string, name string) (float64, error) {
	s := c.str(record, name)
	if s == "" || s == "N/A" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("column %q: %w", name, err)
	}
	return v, nil
}

func readCSV(path string) (columnIndex, [][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, nil, &MalformedResultError{File: path, Reason: err.Error()}
	}
	if len(records) == 0 {
		// No header at all. Stats parsing treats this as malformed; the
		// optional files treat it as an empty set.
		return nil, nil, nil
	}

	cols := columnIndex{}
	for i, name := range records[0] {
		cols[name] = i
	}
	return cols, records[1:], nil
}

func parseStats(path string) ([]StatRow, error) {
	cols, records, err := readCSV(path)
	if err != nil {
		return nil, err
	}
	if cols == nil {
		return nil, &MalformedResultError{File: path, Reason: "empty file"}
	}

	for _, required := range []string{colRequests, colFailures} {
		if !cols.has(required) {
			return nil, &MalformedResultError{File: path, Reason: fmt.Sprintf("missing required column %q", required)}
		}
	}
	hasLatency := false
	for _, name := range latencyColumns {
		if cols.has(name) {
			hasLatency = true
			break
		}
	}
	if !hasLatency {
		return nil, &MalformedResultError{File: path, Reason: "no latency column present"}
	}

	var rows []StatRow
	for i, record := range records {
		row, err := parseStatRow(cols, record)
		if err != nil {
			log.Warn().Str("file", path).Int("line", i+2).Err(err).Msg("dropping unparsable stats row")
			continue
		}
		rows = append(rows, row)
	}
	if len(rows) == 0 {
		return nil, &MalformedResultError{File: path, Reason: "every data row failed to parse"}
	}
	return rows, nil
}

func parseStatRow(cols columnIndex, record []string) (StatRow, error) {
	row := StatRow{Name: cols.str(record, colName)}

	fields := []struct {
		col string
		dst *float64
	}{
		{colMedian, &row.MedianResponseTime},
		{colAverage, &row.AverageResponseTime},
		{colMin, &row.MinResponseTime},
		{colMax, &row.MaxResponseTime},
		{colP50, &row.P50},
		{colP90, &row.P90},
		{colP95, &row.P95},
		{colP99, &row.P99},
		{colRPS, &row.RequestsPerSec},
		{colFPS, &row.FailuresPerSec},
	}

	requests, err := cols.float(record, colRequests)
	if err != nil {
		return StatRow{}, err
	}
	failures, err := cols.float(record, colFailures)
	if err != nil {
		return StatRow{}, err
	}
	row.RequestCount = int64(requests)
	row.FailureCount = int64(failures)
	if row.RequestCount < 0 || row.FailureCount < 0 || row.FailureCount > row.RequestCount {
		return StatRow{}, fmt.Errorf("inconsistent counts: %d requests, %d failures", row.RequestCount, row.FailureCount)
	}

	for _, f := range fields {
		v, err := cols.float(record, f.col)
		if err != nil {
			return StatRow{}, err
		}
		*f.dst = v
	}
	return row, nil
}

// parseHistory is tolerant beyond what parseStats allows: the history file
// is optional, so a file without the expected columns degrades to an empty
// sequence with a warning instead of failing the run.
func parseHistory(path string) ([]HistoryPoint, error) {
	cols, records, err := readCSV(path)
	if err != nil {
		return nil, err
	}
	if !cols.has(colTimestamp) || !cols.has(colUserCount) || !cols.has(colRPS) {
		log.Warn().Str("file", path).Msg("history file lacks timestamp/user count/rps columns, ignoring")
		return nil, nil
	}

	var points []HistoryPoint
	for i, record := range records {
		p, err := parseHistoryPoint(cols, record)
		if err != nil {
			log.Warn().Str("file", path).Int("line", i+2).Err(err).Msg("dropping unparsable history row")
			continue
		}
		points = append(points, p)
	}
	return points, nil
}

func parseHistoryPoint(cols columnIndex, record []string) (HistoryPoint, error) {
	ts, err := strconv.ParseInt(cols.str(record, colTimestamp), 10, 64)
	if err != nil {
		return HistoryPoint{}, fmt.Errorf("column %q: %w", colTimestamp, err)
	}
	users, err := cols.float(record, colUserCount)
	if err != nil {
		return HistoryPoint{}, err
	}
	rps, err := cols.float(record, colRPS)
	if err != nil {
		return HistoryPoint{}, err
	}
	avgRT, err := cols.float(record, colTotalAvgRT)
	if err != nil {
		return HistoryPoint{}, err
	}
	return HistoryPoint{
		Timestamp:          ts,
		UserCount:          int(users),
		RequestsPerSec:     rps,
		TotalAvgResponseMs: avgRT,
	}, nil
}

// parseDetail reads a free-form failures or exceptions file. Only the row
// count matters to scoring; the rows ride along for downstream reporting.
func parseDetail(path string) ([][]string, error) {
	_, records, err := readCSV(path)
	if err != nil {
		return nil, err
	}
	return records, nil
}
