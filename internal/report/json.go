package report

import (
	"encoding/json"
	"os"

	"github.com/mwiater/dbcompare/internal/analysis"
)

// WriteJSON persists the full comparison result, including per-backend
// derived metrics, as indented JSON for downstream renderers.
func WriteJSON(path string, result *analysis.ComparisonResult) error {
	b, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}
