package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/edgewire-io/adinconf/pkg/cli"
	"github.com/edgewire-io/adinconf/pkg/plan"
)

func newListCmd() *cobra.Command {
	var planPath string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Show the characteristics and scenarios a plan defines",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := plan.Load(planPath)
			if err != nil {
				return err
			}

			fmt.Printf("%s\n", cli.Bold(p.Suite))
			if p.Description != "" {
				fmt.Printf("%s\n", p.Description)
			}
			fmt.Println()

			if len(p.Characteristics) > 0 {
				fmt.Printf("Timing characteristics (%d):\n", len(p.Characteristics))
				t := cli.NewTable("NAME", "UNIT", "BAND", "SAMPLES", "CONSISTENCY")
				for i := range p.Characteristics {
					c := &p.Characteristics[i]
					spec, err := c.Spec()
					if err != nil {
						return err
					}
					lower, upper := spec.Bounds()
					consistency := "-"
					if c.Consistency {
						consistency = "yes"
					}
					t.Row(c.Name, spec.Unit.Suffix(),
						fmt.Sprintf("%g-%g", lower, upper),
						fmt.Sprintf("%d", c.SampleCount()), consistency)
				}
				t.Flush()
				fmt.Println()
			}

			if len(p.Scenarios) > 0 {
				fmt.Printf("Switching scenarios (%d):\n", len(p.Scenarios))
				t := cli.NewTable("NAME", "INGRESS", "EGRESS", "EXPECT", "AFTER")
				for i := range p.Scenarios {
					s := &p.Scenarios[i]
					expect := "absent"
					if s.Expect {
						expect = "observed"
					}
					after := "-"
					if len(s.After) > 0 {
						after = strings.Join(s.After, ",")
					}
					t.Row(s.Name, s.Ingress, s.Egress, expect, after)
				}
				t.Flush()
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&planPath, "plan", defaultPlanPath, "plan YAML file")
	return cmd
}
