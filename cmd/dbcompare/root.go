// cmd/dbcompare/root.go
package dbcompare

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// rootCmd is the base Cobra command for the dbcompare application.
// All subcommands are attached to this root to form the complete CLI.
var rootCmd = &cobra.Command{
	Use:   "dbcompare",
	Short: "Compare database load-test results",
	Long:  `dbcompare turns the CSV output of independent database load tests into a single ranked, weighted comparison.`,

	// Execute prints the returned error itself.
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root Cobra command and all registered subcommands.
// It prints any returned error and exits the process with a non-zero
// status code on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
