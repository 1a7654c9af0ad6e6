package main

import (
	"github.com/spf13/cobra"

	"github.com/edgewire-io/adinconf/pkg/harness"
)

func newRunCmd() *cobra.Command {
	var flags runFlags

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the full conformance suite",
		RunE: func(cmd *cobra.Command, args []string) error {
			return flags.execute(harness.Options{Parallel: flags.parallel})
		},
	}

	addRunFlags(cmd, &flags)
	return cmd
}
