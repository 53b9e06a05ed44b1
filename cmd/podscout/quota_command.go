package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newQuotaCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "quota",
		Short: "Show today's search quota usage",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tracker, err := ctx.newTracker()
			if err != nil {
				return err
			}
			state := tracker.Snapshot()
			remaining := tracker.Remaining()

			if jsonOutput {
				return writeJSON(cmd, map[string]any{
					"day":       state.Day,
					"used":      state.Count,
					"budget":    tracker.Budget(),
					"remaining": remaining,
				})
			}

			rows := [][]string{
				{"Day", state.Day},
				{"Used", strconv.Itoa(state.Count)},
				{"Budget", strconv.Itoa(tracker.Budget())},
				{"Remaining", strconv.Itoa(remaining)},
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"FIELD", "VALUE"},
				rows,
				[]columnAlignment{alignLeft, alignRight},
			))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit JSON instead of a table")
	cmd.AddCommand(newQuotaResetCommand(ctx))
	return cmd
}

func newQuotaResetCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Zero today's search quota counter",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			release, err := ctx.acquireStateLock()
			if err != nil {
				return err
			}
			defer release()

			tracker, err := ctx.newTracker()
			if err != nil {
				return err
			}
			tracker.Reset()
			fmt.Fprintf(cmd.OutOrStdout(), "Quota counter reset; %d search calls available today\n", tracker.Remaining())
			return nil
		},
	}
}
