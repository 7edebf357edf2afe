package results

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// fullStats mirrors the header Locust writes, including columns the
// parser does not care about.
const fullStats = `"Type","Name","Request Count","Failure Count","Median Response Time","Average Response Time","Min Response Time","Max Response Time","Average Content Size","Requests/s","Failures/s","50%","66%","75%","80%","90%","95%","98%","99%","99.9%","99.99%","100%"
"GET","read",800,5,11,12.5,2,140,512,40.0,0.25,11,13,15,16,20,25,30,40,90,120,140
"PUT","write",200,5,20,22.0,4,210,256,10.0,0.25,20,24,27,29,35,45,55,70,150,200,210
"","Aggregated",1000,10,13,14.4,2,210,460,50.0,0.5,13,16,18,20,23,29,36,46,120,200,210
`

const historyCSV = `"Timestamp","User Count","Type","Name","Requests/s","Failures/s","Total Request Count","Total Failure Count","Total Average Response Time"
1700000000,100,"","Aggregated",45.0,0.1,900,9,14.0
1700000005,200,"","Aggregated",52.0,0.2,1160,10,15.2
1700000010,150,"","Aggregated",0.0,0.0,1160,10,0.0
`

func statsFileSet(t *testing.T, statsContent string) FileSet {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "db_100_1m_stats.csv")
	require.NoError(t, os.WriteFile(path, []byte(statsContent), 0o644))
	return FileSet{Backend: "db", TargetUsers: 100, Duration: "1m", StatsPath: path}
}

func TestParseFullStatsFile(t *testing.T) {
	set, err := Parse(statsFileSet(t, fullStats))
	require.NoError(t, err)
	require.Len(t, set.Stats, 3)

	agg, ok := set.AggregatedRow()
	require.True(t, ok)
	require.Equal(t, int64(1000), agg.RequestCount)
	require.Equal(t, int64(10), agg.FailureCount)
	require.Equal(t, 14.4, agg.AverageResponseTime)
	require.Equal(t, 13.0, agg.MedianResponseTime)
	require.Equal(t, 23.0, agg.P90)
	require.Equal(t, 29.0, agg.P95)
	require.Equal(t, 46.0, agg.P99)
	require.Equal(t, 50.0, agg.RequestsPerSec)
	require.Equal(t, 2.0, agg.MinResponseTime)
	require.Equal(t, 210.0, agg.MaxResponseTime)
}

func TestParseMissingRequiredColumn(t *testing.T) {
	content := `"Name","Failure Count","Average Response Time"
"read",0,12.5
`
	_, err := Parse(statsFileSet(t, content))
	var mre *MalformedResultError
	require.ErrorAs(t, err, &mre)
	require.Contains(t, mre.Reason, "Request Count")
}

func TestParseNoLatencyColumn(t *testing.T) {
	content := `"Name","Request Count","Failure Count","Requests/s"
"read",100,0,50.0
`
	_, err := Parse(statsFileSet(t, content))
	var mre *MalformedResultError
	require.ErrorAs(t, err, &mre)
	require.Contains(t, mre.Reason, "latency")
}

func TestParseDropsUnparsableRowsButKeepsFile(t *testing.T) {
	content := `"Name","Request Count","Failure Count","Average Response Time"
"read",oops,0,12.5
"write",200,5,22.0
`
	set, err := Parse(statsFileSet(t, content))
	require.NoError(t, err)
	require.Len(t, set.Stats, 1)
	require.Equal(t, "write", set.Stats[0].Name)
}

func TestParseDropsRowWithMoreFailuresThanRequests(t *testing.T) {
	content := `"Name","Request Count","Failure Count","Average Response Time"
"read",10,20,12.5
"write",200,5,22.0
`
	set, err := Parse(statsFileSet(t, content))
	require.NoError(t, err)
	require.Len(t, set.Stats, 1)
	require.Equal(t, "write", set.Stats[0].Name)
}

func TestParseAllRowsUnparsable(t *testing.T) {
	content := `"Name","Request Count","Failure Count","Average Response Time"
"read",oops,0,12.5
"write",nope,5,22.0
`
	_, err := Parse(statsFileSet(t, content))
	var mre *MalformedResultError
	require.ErrorAs(t, err, &mre)
	require.Contains(t, mre.Reason, "every data row")
}

func TestParseEmptyStatsFile(t *testing.T) {
	_, err := Parse(statsFileSet(t, ""))
	var mre *MalformedResultError
	require.ErrorAs(t, err, &mre)
}

func TestParseHistoryAndDetailFiles(t *testing.T) {
	dir := t.TempDir()
	stats := filepath.Join(dir, "db_100_1m_stats.csv")
	history := filepath.Join(dir, "db_100_1m_stats_history.csv")
	failures := filepath.Join(dir, "db_100_1m_failures.csv")
	require.NoError(t, os.WriteFile(stats, []byte(fullStats), 0o644))
	require.NoError(t, os.WriteFile(history, []byte(historyCSV), 0o644))
	require.NoError(t, os.WriteFile(failures, []byte("\"Method\",\"Name\",\"Error\",\"Occurrences\"\n\"GET\",\"read\",\"timeout\",5\n"), 0o644))

	set, err := Parse(FileSet{
		Backend: "db", TargetUsers: 100, Duration: "1m",
		StatsPath: stats, HistoryPath: history, FailuresPath: failures,
	})
	require.NoError(t, err)

	require.Len(t, set.History, 3)
	require.Equal(t, int64(1700000000), set.History[0].Timestamp)
	require.Equal(t, 100, set.History[0].UserCount)
	require.Equal(t, 45.0, set.History[0].RequestsPerSec)
	require.Equal(t, 14.0, set.History[0].TotalAvgResponseMs)

	require.Len(t, set.Failures, 1)
	require.Empty(t, set.Exceptions)
}

func TestParseHistoryWithoutExpectedColumnsIsTolerated(t *testing.T) {
	dir := t.TempDir()
	stats := filepath.Join(dir, "db_100_1m_stats.csv")
	history := filepath.Join(dir, "db_100_1m_stats_history.csv")
	require.NoError(t, os.WriteFile(stats, []byte(fullStats), 0o644))
	require.NoError(t, os.WriteFile(history, []byte("\"Something\",\"Else\"\n1,2\n"), 0o644))

	set, err := Parse(FileSet{Backend: "db", StatsPath: stats, HistoryPath: history})
	require.NoError(t, err)
	require.Empty(t, set.History)
}

func TestAggregatedRowAbsent(t *testing.T) {
	content := `"Name","Request Count","Failure Count","Average Response Time"
"read",100,0,12.5
`
	set, err := Parse(statsFileSet(t, content))
	require.NoError(t, err)

	_, ok := set.AggregatedRow()
	require.False(t, ok)
}
