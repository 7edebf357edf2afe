package results

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

const minimalStats = `"Type","Name","Request Count","Failure Count","Average Response Time","Requests/s"
"GET","read",100,0,12.5,50.0
`

func TestDiscoverFindsBackendsWithStatsFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "postgres_1000_1m_stats.csv", minimalStats)
	writeFile(t, dir, "postgres_1000_1m_failures.csv", "header\n")
	writeFile(t, dir, "postgres_1000_1m_stats_history.csv", "header\n")
	writeFile(t, dir, "scylla_1000_1m_stats.csv", minimalStats)
	writeFile(t, dir, "notes.txt", "not a result file")

	sets, err := Discover(dir)
	require.NoError(t, err)
	require.Len(t, sets, 2)

	require.Equal(t, "postgres", sets[0].Backend)
	require.Equal(t, 1000, sets[0].TargetUsers)
	require.Equal(t, "1m", sets[0].Duration)
	require.NotEmpty(t, sets[0].StatsPath)
	require.NotEmpty(t, sets[0].FailuresPath)
	require.NotEmpty(t, sets[0].HistoryPath)
	require.Empty(t, sets[0].ExceptionsPath)

	require.Equal(t, "scylla", sets[1].Backend)
	require.Empty(t, sets[1].FailuresPath)
}

func TestDiscoverBackendNameMayContainUnderscores(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "postgres_unique_session_500_30s_stats.csv", minimalStats)

	sets, err := Discover(dir)
	require.NoError(t, err)
	require.Len(t, sets, 1)
	require.Equal(t, "postgres_unique_session", sets[0].Backend)
	require.Equal(t, 500, sets[0].TargetUsers)
	require.Equal(t, "30s", sets[0].Duration)
}

func TestDiscoverIgnoresBackendsWithoutStats(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "postgres_1000_1m_failures.csv", "header\n")

	_, err := Discover(dir)
	var nre *NoResultsError
	require.ErrorAs(t, err, &nre)
	require.Equal(t, dir, nre.Dir)
}

func TestDiscoverEmptyDirectory(t *testing.T) {
	dir := t.TempDir()

	_, err := Discover(dir)
	var nre *NoResultsError
	require.ErrorAs(t, err, &nre)
}

func TestDiscoverSkipsMisnamedFiles(t *testing.T) {
	dir := t.TempDir()
	// Too few tokens, non-numeric users token.
	writeFile(t, dir, "orphan_stats.csv", minimalStats)
	writeFile(t, dir, "db_abc_1m_stats.csv", minimalStats)

	_, err := Discover(dir)
	require.True(t, errors.As(err, new(*NoResultsError)))
}

func TestLoadParsesEveryDiscoveredBackend(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "postgres_1000_1m_stats.csv", minimalStats)
	writeFile(t, dir, "scylla_1000_1m_stats.csv", minimalStats)

	sets, err := Load(dir)
	require.NoError(t, err)
	require.Len(t, sets, 2)
	require.Equal(t, "postgres", sets[0].Backend)
	require.Len(t, sets[0].Stats, 1)
	require.Equal(t, int64(100), sets[0].Stats[0].RequestCount)
}
