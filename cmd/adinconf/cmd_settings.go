package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/edgewire-io/adinconf/pkg/cli"
	"github.com/edgewire-io/adinconf/pkg/settings"
)

func newSettingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Manage persistent settings",
		Long: `Manage persistent settings stored in ~/.adinconf/settings.json.

Settings provide defaults for run flags:
  - default_plan:  Used when --plan is not specified
  - default_bench: Used when --bench is not specified
  - redis_addr:    Used when --redis is not specified

Examples:
  adinconf settings show
  adinconf settings set plan plans/adin2111.yaml
  adinconf settings set bench lab/bench.yaml
  adinconf settings clear`,
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Show current settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := settings.Load()
			if err != nil {
				return fmt.Errorf("loading settings: %w", err)
			}

			fmt.Printf("Settings file: %s\n\n", settings.DefaultSettingsPath())

			t := cli.NewTable("SETTING", "VALUE")
			printSetting := func(name, value string) {
				if value == "" {
					value = "(not set)"
				}
				t.Row(name, value)
			}
			printSetting("default_plan", s.DefaultPlan)
			printSetting("default_bench", s.DefaultBench)
			printSetting("redis_addr", s.RedisAddr)
			t.Flush()
			return nil
		},
	}

	set := &cobra.Command{
		Use:   "set <setting> <value>",
		Short: "Set a setting value",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := settings.Load()
			if err != nil {
				s = &settings.Settings{}
			}

			switch args[0] {
			case "plan", "default_plan":
				s.DefaultPlan = args[1]
				fmt.Printf("Default plan set to: %s\n", args[1])
			case "bench", "default_bench":
				s.DefaultBench = args[1]
				fmt.Printf("Default bench set to: %s\n", args[1])
			case "redis", "redis_addr":
				s.RedisAddr = args[1]
				fmt.Printf("Redis address set to: %s\n", args[1])
			default:
				return fmt.Errorf("unknown setting: %s (valid: plan, bench, redis)", args[0])
			}

			if err := s.Save(); err != nil {
				return fmt.Errorf("saving settings: %w", err)
			}
			return nil
		},
	}

	clear := &cobra.Command{
		Use:   "clear",
		Short: "Reset all settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			s := &settings.Settings{}
			if err := s.Save(); err != nil {
				return fmt.Errorf("saving settings: %w", err)
			}
			fmt.Println("Settings cleared")
			return nil
		},
	}

	cmd.AddCommand(show, set, clear)
	return cmd
}
