package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/edgewire-io/adinconf/pkg/util"
	"github.com/edgewire-io/adinconf/pkg/version"
)

var (
	verboseFlag bool
	logJSONFlag bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "adinconf",
		Short: "Datasheet conformance harness for ADIN2111-class switches",
		Long: `Adinconf validates a dual-port autonomously-switching Ethernet device
against its datasheet: timing characteristics within tolerance, and
MAC-learning switch semantics across the two ports.

Plans are YAML files holding the timing table and the scenario list.

  adinconf list --plan plans/adin2111.yaml     # show plan contents
  adinconf run --plan plans/adin2111.yaml \
      --bench bench.yaml                       # full suite against a bench
  adinconf run --simulate                      # full suite, simulated DUT
  adinconf timing --simulate                   # timing table only
  adinconf switching --simulate                # scenarios only`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		CompletionOptions: cobra.CompletionOptions{HiddenDefaultCmd: true},
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verboseFlag {
				_ = util.SetLogLevel("debug")
			}
			if logJSONFlag {
				util.SetJSONFormat()
			}
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().BoolVar(&logJSONFlag, "log-json", false, "Emit logs as JSON")

	rootCmd.AddCommand(
		newRunCmd(),
		newTimingCmd(),
		newSwitchingCmd(),
		newListCmd(),
		newHistoryCmd(),
		newSettingsCmd(),
		&cobra.Command{
			Use:   "version",
			Short: "Print version information",
			Run: func(cmd *cobra.Command, args []string) {
				if version.Version == "dev" {
					fmt.Println("adinconf dev build (use 'make build' for version info)")
				} else {
					fmt.Printf("adinconf %s (%s)\n", version.Version, version.GitCommit)
				}
			},
		},
	)

	if err := rootCmd.Execute(); err != nil {
		if errors.Is(err, errNonCompliant) {
			// The console summary already showed the verdict.
			os.Exit(1)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
}
