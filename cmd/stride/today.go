package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/goalstride/stride/internal/planner"
)

var todayDays int

var todayCmd = &cobra.Command{
	Use:   "today [goal-id]",
	Short: "Show the upcoming schedule",
	Long: `Show which open steps are due over the next days, starting today.
With a goal ID, only that goal's steps are shown; otherwise every goal
contributes.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		goalIDs := args
		if len(goalIDs) == 0 {
			goals, err := store.ListGoals(ctx)
			if err != nil {
				fail(err)
			}
			for _, g := range goals {
				goalIDs = append(goalIDs, g.ID)
			}
		}
		if len(goalIDs) == 0 {
			fmt.Println("No goals yet. Create one with 'stride goal new'.")
			return
		}

		// Merge per-goal schedules day by day before printing so that
		// days stay in order regardless of how many goals contribute.
		merged := make([]planner.ScheduleDay, 0, todayDays)
		for _, goalID := range goalIDs {
			schedule, err := mgr.UpcomingSchedule(ctx, goalID, todayDays)
			if err != nil {
				fail(err)
			}
			if len(merged) == 0 {
				merged = schedule
				continue
			}
			for i := range schedule {
				merged[i].Steps = append(merged[i].Steps, schedule[i].Steps...)
			}
		}

		any := false
		for i, day := range merged {
			if len(day.Steps) == 0 {
				continue
			}
			any = true
			label := day.Day.String()
			if i == 0 {
				label += " (today)"
			}
			fmt.Printf("\n%s\n", bold(label))
			for _, s := range day.Steps {
				printStep(s)
			}
		}
		if !any {
			fmt.Printf("Nothing due in the next %d days.\n", todayDays)
		} else {
			fmt.Println()
		}
	},
}

func init() {
	rootCmd.AddCommand(todayCmd)
	todayCmd.Flags().IntVar(&todayDays, "days", 14, "How many days ahead to show")
}
