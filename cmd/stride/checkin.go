package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	checkinDate string
	checkinNote string
)

var checkinCmd = &cobra.Command{
	Use:   "checkin <step-id>",
	Short: "Record today's check-in for a step",
	Long: `Record a check-in for a step. One check-in per step per day; checking
in twice on the same day is a no-op, and the first note wins.

Use --date to backfill a missed day.

Examples:
  stride checkin s-3
  stride checkin s-3 --note "30 min, felt good"
  stride checkin s-3 --date 2026-08-27`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		day, err := parseDateFlag(checkinDate)
		if err != nil {
			fail(fmt.Errorf("invalid --date: %w", err))
		}

		snap, changed, err := mgr.CheckIn(cmd.Context(), args[0], day, checkinNote)
		if err != nil {
			fail(err)
		}

		if changed {
			fmt.Printf("%s Checked in\n", green("✓"))
		} else {
			fmt.Printf("%s Already checked in for that day\n", yellow("•"))
		}
		printSnapshot(snap)

		if quote := mgr.Quote(cmd.Context()); quote != "" {
			fmt.Printf("\n  %s\n", gray(quote))
		}
	},
}

func init() {
	rootCmd.AddCommand(checkinCmd)
	checkinCmd.Flags().StringVar(&checkinDate, "date", "", "Check-in date (YYYY-MM-DD, default today)")
	checkinCmd.Flags().StringVar(&checkinNote, "note", "", "Short note attached to the check-in")
}
