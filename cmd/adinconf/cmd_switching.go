package main

import (
	"github.com/spf13/cobra"

	"github.com/edgewire-io/adinconf/pkg/harness"
)

func newSwitchingCmd() *cobra.Command {
	var flags runFlags

	cmd := &cobra.Command{
		Use:   "switching",
		Short: "Run only the switching semantics scenarios",
		RunE: func(cmd *cobra.Command, args []string) error {
			return flags.execute(harness.Options{SwitchingOnly: true})
		},
	}

	addRunFlags(cmd, &flags)
	return cmd
}
