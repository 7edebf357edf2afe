// cmd/dbcompare/compare.go
package dbcompare

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/k0kubun/pp"
	"github.com/muesli/termenv"
	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mwiater/dbcompare/internal/analysis"
	"github.com/mwiater/dbcompare/internal/metrics"
	"github.com/mwiater/dbcompare/internal/report"
	"github.com/mwiater/dbcompare/internal/results"
	"github.com/mwiater/dbcompare/internal/scoring"
)

// compareCmd analyzes one closed results directory and prints the ranked
// comparison. The core never runs with partial input: any discovery,
// parsing, weighting or ranking error aborts before a report is emitted.
var compareCmd = &cobra.Command{
	Use:   "compare <results-dir>",
	Short: "Rank the backends found in a results directory",
	Long: `The 'compare' command discovers every backend with a stats file in the
given directory, derives its performance metrics, scores the backends
against each other and prints the ranked comparison.`,
	Args: cobra.ExactArgs(1),
}

func init() {
	compareCmd.RunE = func(cmd *cobra.Command, args []string) error {
		return runCompare(args[0])
	}
	compareCmd.Flags().String("weights", "",`custom category weights as JSON, e.g. '{"throughput":0.5,"latency":0.2,"reliability":0.2,"consistency":0.05,"scalability":0.05}'`)
	compareCmd.Flags().Int("target-users", 0, "configured target user count (overrides the {users} token of the file names)")
	compareCmd.Flags().String("json", "", "also write the full comparison result to this JSON file")
	compareCmd.Flags().Bool("no-color", false, "disable styled terminal output")
	compareCmd.Flags().Bool("debug", false, "dump derived metrics before scoring")

	viper.BindPFlag("weights_json", compareCmd.Flags().Lookup("weights"))
	viper.BindPFlag("target_users", compareCmd.Flags().Lookup("target-users"))
	viper.BindPFlag("debug", compareCmd.Flags().Lookup("debug"))

	rootCmd.AddCommand(compareCmd)
}

func runCompare(dir string) error {
	zlog.Logger = zlog.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	if noColor, _ := compareCmd.Flags().GetBool("no-color"); noColor {
		lipgloss.SetColorProfile(termenv.Ascii)
	}

	// An optional dbcompare.yaml may carry weights and target_users;
	// flags bound above take precedence.
	viper.SetConfigName("dbcompare")
	viper.AddConfigPath(".")
	viper.AddConfigPath(dir)
	if err := viper.ReadInConfig(); err == nil {
		zlog.Debug().Str("file", viper.ConfigFileUsed()).Msg("loaded configuration")
	}

	weights, err := resolveWeights()
	if err != nil {
		return err
	}

	sets, err := results.Load(dir)
	if err != nil {
		return err
	}

	targetUsers := viper.GetInt("target_users")
	derived := make([]metrics.DerivedMetrics, 0, len(sets))
	for _, set := range sets {
		derived = append(derived, metrics.Derive(set, targetUsers))
	}

	if viper.GetBool("debug") {
		pp.Println(derived)
	}

	result, err := analysis.Compare(derived, weights)
	if err != nil {
		return err
	}

	fmt.Print(report.Render(result))

	if path, _ := compareCmd.Flags().GetString("json"); path != "" {
		if err := report.WriteJSON(path, result); err != nil {
			return err
		}
		fmt.Printf("comparison written to %s\n", path)
	}
	return nil
}

// resolveWeights picks the weight vector: the --weights JSON flag wins,
// then a weights map from the config file, then the defaults. Custom
// vectors replace the defaults wholesale and must validate completely.
func resolveWeights() (scoring.Weights, error) {
	if raw := viper.GetString("weights_json"); raw != "" {
		external := map[string]float64{}
		if err := json.Unmarshal([]byte(raw), &external); err != nil {
			return nil, &scoring.InvalidWeightsError{Reason: fmt.Sprintf("bad JSON: %v", err)}
		}
		return scoring.WeightsFromKeys(external)
	}

	if viper.IsSet("weights") {
		external := map[string]float64{}
		if err := viper.UnmarshalKey("weights", &external); err != nil {
			return nil, &scoring.InvalidWeightsError{Reason: err.Error()}
		}
		return scoring.WeightsFromKeys(external)
	}

	return scoring.DefaultWeights(), nil
}
