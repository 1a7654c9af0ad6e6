package main

import (
	"github.com/spf13/cobra"

	"github.com/edgewire-io/adinconf/pkg/harness"
)

func newTimingCmd() *cobra.Command {
	var flags runFlags

	cmd := &cobra.Command{
		Use:   "timing",
		Short: "Run only the timing characteristic checks",
		RunE: func(cmd *cobra.Command, args []string) error {
			return flags.execute(harness.Options{TimingOnly: true, Parallel: flags.parallel})
		},
	}

	addRunFlags(cmd, &flags)
	return cmd
}
