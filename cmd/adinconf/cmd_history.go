package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/edgewire-io/adinconf/pkg/cli"
	"github.com/edgewire-io/adinconf/pkg/sink"
)

func newHistoryCmd() *cobra.Command {
	var redisAddr string
	var suite string

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show reports a Redis store holds for a suite",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			store := sink.NewRedisStore(redisAddr)
			defer store.Close()
			if err := store.Connect(ctx); err != nil {
				return fmt.Errorf("connecting to redis %s: %w", redisAddr, err)
			}

			keys, err := store.History(ctx, suite)
			if err != nil {
				return err
			}
			if len(keys) == 0 {
				fmt.Printf("No stored reports for suite %q\n", suite)
				return nil
			}

			t := cli.NewTable("RUN", "CHECKS", "PASSED", "FAILED", "VERDICT")
			for _, key := range keys {
				report, err := store.Fetch(ctx, key)
				if err != nil {
					return err
				}
				if report == nil {
					continue
				}
				verdict := cli.Green("COMPLIANT")
				if !report.Compliant {
					verdict = cli.Red("NON-COMPLIANT")
				}
				t.Row(key,
					fmt.Sprintf("%d", report.TotalTests),
					fmt.Sprintf("%d", report.Passed),
					fmt.Sprintf("%d", report.Failed),
					verdict)
			}
			t.Flush()
			return nil
		},
	}

	cmd.Flags().StringVar(&redisAddr, "redis", "localhost:6379", "Redis address")
	cmd.Flags().StringVar(&suite, "suite", "ADIN2111 Conformance", "suite name")
	return cmd
}
