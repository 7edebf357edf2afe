package dbcompare

import (
	"testing"

	"github.com/spf13/cobra"
)

func TestRoot_SubcommandsPresent(t *testing.T) {
	have := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		have[c.Name()] = true
	}
	if !have["compare"] {
		t.Fatalf("missing subcommand compare, have: %v", have)
	}
}

func TestCommands_HaveDescriptions(t *testing.T) {
	var check func(*cobra.Command)
	check = func(cmd *cobra.Command) {
		if cmd.Short == "" {
			t.Fatalf("command %s missing Short", cmd.Name())
		}
		for _, sc := range cmd.Commands() {
			check(sc)
		}
	}
	check(rootCmd)
}

func TestCompare_FlagsRegistered(t *testing.T) {
	for _, name := range []string{"weights", "target-users", "json", "no-color", "debug"} {
		if compareCmd.Flags().Lookup(name) == nil {
			t.Fatalf("compare missing flag %s", name)
		}
	}
}

func TestCompare_RequiresDirectoryArgument(t *testing.T) {
	if err := compareCmd.Args(compareCmd, []string{}); err == nil {
		t.Fatalf("expected error for missing results directory")
	}
	if err := compareCmd.Args(compareCmd, []string{"results"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
