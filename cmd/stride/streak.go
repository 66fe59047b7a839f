package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var streakStrict bool

var streakCmd = &cobra.Command{
	Use:   "streak <step-id>",
	Short: "Show a step's streak numbers",
	Long: `Show a step's current streak, longest streak, total check-ins, and
consistency since the step was created.

In the default friendly mode a check-in yesterday keeps the streak
alive. Pass --strict (or set streak_mode: strict in the config) to
require a check-in today.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		step, err := store.GetStep(ctx, args[0])
		if err != nil {
			fail(err)
		}

		snapshot := mgr.Snapshot
		if streakStrict {
			snapshot = mgr.StrictSnapshot
		}
		snap, err := snapshot(ctx, step.ID)
		if err != nil {
			fail(err)
		}

		fmt.Printf("%s %s\n", cyan(step.ID), bold(step.Title))
		printSnapshot(snap)
	},
}

func init() {
	rootCmd.AddCommand(streakCmd)
	streakCmd.Flags().BoolVar(&streakStrict, "strict", false, "Require a check-in today for a nonzero current streak")
}
