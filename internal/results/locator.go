package results

import (
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

const (
	kindStats      = "stats"
	kindFailures   = "failures"
	kindExceptions = "exceptions"
	kindHistory    = "stats_history"
)

// FileSet holds the file paths for one discovered backend. Optional paths
// are empty when the corresponding file does not exist.
type FileSet struct {
	Backend     string
	TargetUsers int
	Duration    string

	StatsPath      string
	FailuresPath   string
	ExceptionsPath string
	HistoryPath    string
}

// Discover scans dir for files following the
// {backend}_{users}_{duration}_{kind}.csv convention and returns one
// FileSet per backend that has a stats file, sorted by backend name.
// It returns a *NoResultsError when no backend qualifies.
func Discover(dir string) ([]FileSet, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	sets := map[string]*FileSet{}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		base, kind, ok := splitKind(entry.Name())
		if !ok {
			continue
		}
		backend, users, duration, ok := splitBase(base)
		if !ok {
			continue
		}

		fs, exists := sets[backend]
		if !exists {
			fs = &FileSet{Backend: backend, TargetUsers: users, Duration: duration}
			sets[backend] = fs
		}
		path := filepath.Join(dir, entry.Name())
		switch kind {
		case kindStats:
			fs.StatsPath = path
		case kindFailures:
			fs.FailuresPath = path
		case kindExceptions:
			fs.ExceptionsPath = path
		case kindHistory:
			fs.HistoryPath = path
		}
	}

	var out []FileSet
	for _, fs := range sets {
		if fs.StatsPath == "" {
			// Stray failures/exceptions/history files without a stats
			// file do not make a backend.
			continue
		}
		out = append(out, *fs)
	}
	if len(out) == 0 {
		return nil, &NoResultsError{Dir: dir}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Backend < out[j].Backend })
	return out, nil
}

// splitKind strips the ".csv" extension and the trailing kind token.
// stats_history must be checked before stats since it shares the suffix.
func splitKind(name string) (base, kind string, ok bool) {
	stem, found := strings.CutSuffix(name, ".csv")
	if !found {
		return "", "", false
	}
	for _, k := range []string{kindHistory, kindExceptions, kindFailures, kindStats} {
		if b, found := strings.CutSuffix(stem, "_"+k); found {
			return b, k, true
		}
	}
	return "", "", false
}

// splitBase breaks "{backend}_{users}_{duration}" apart. Backend names may
// themselves contain underscores, so the users and duration tokens are
// taken from the end.
func splitBase(base string) (backend string, users int, duration string, ok bool) {
	tokens := strings.Split(base, "_")
	if len(tokens) < 3 {
		return "", 0, "", false
	}
	duration = tokens[len(tokens)-1]
	users, err := strconv.Atoi(tokens[len(tokens)-2])
	if err != nil {
		return "", 0, "", false
	}
	backend = strings.Join(tokens[:len(tokens)-2], "_")
	return backend, users, duration, true
}

// Load discovers every backend in dir and parses its result files.
func Load(dir string) ([]*BackendResultSet, error) {
	fileSets, err := Discover(dir)
	if err != nil {
		return nil, err
	}

	sets := make([]*BackendResultSet, 0, len(fileSets))
	for _, fs := range fileSets {
		set, err := Parse(fs)
		if err != nil {
			return nil, err
		}
		sets = append(sets, set)
	}
	return sets, nil
}
