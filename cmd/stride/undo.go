package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var undoDate string

var undoCmd = &cobra.Command{
	Use:   "undo <step-id>",
	Short: "Remove a check-in",
	Long: `Remove a step's check-in for today (or --date). Undoing a day that
was never checked in is a no-op.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		day, err := parseDateFlag(undoDate)
		if err != nil {
			fail(fmt.Errorf("invalid --date: %w", err))
		}

		snap, changed, err := mgr.UndoCheckIn(cmd.Context(), args[0], day)
		if err != nil {
			fail(err)
		}

		if changed {
			fmt.Printf("%s Check-in removed\n", green("✓"))
		} else {
			fmt.Printf("%s No check-in recorded for that day\n", yellow("•"))
		}
		printSnapshot(snap)
	},
}

func init() {
	rootCmd.AddCommand(undoCmd)
	undoCmd.Flags().StringVar(&undoDate, "date", "", "Date to undo (YYYY-MM-DD, default today)")
}
