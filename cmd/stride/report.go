package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/goalstride/stride/internal/clock"
	"github.com/goalstride/stride/internal/report"
	"github.com/goalstride/stride/internal/types"
)

var reportOut string

var reportCmd = &cobra.Command{
	Use:   "report <goal-id>",
	Short: "Write a Markdown progress report",
	Long: `Render a goal's plan, streaks, and weekly summary as Markdown. By
default the report goes to stdout; use --out to write a file.

Examples:
  stride report g-1
  stride report g-1 --out progress.md`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		goal, err := store.GetGoal(ctx, args[0])
		if err != nil {
			fail(err)
		}
		steps, err := store.ListSteps(ctx, goal.ID)
		if err != nil {
			fail(err)
		}

		snapshots := make(map[string]types.StreakSnapshot, len(steps))
		for _, s := range steps {
			snap, err := mgr.Snapshot(ctx, s.ID)
			if err != nil {
				fail(err)
			}
			snapshots[s.ID] = snap
		}

		insight, err := mgr.WeeklyInsight(ctx, goal.ID)
		if err != nil {
			fail(err)
		}

		out := report.Render(report.Data{
			Goal:        goal,
			Steps:       steps,
			Snapshots:   snapshots,
			Insight:     insight,
			GeneratedOn: clock.SystemClock{}.Today(),
		})

		if reportOut == "" {
			fmt.Print(out)
			return
		}
		if err := os.WriteFile(reportOut, []byte(out), 0o644); err != nil {
			fail(fmt.Errorf("writing %s: %w", reportOut, err))
		}
		fmt.Printf("%s Wrote %s\n", green("✓"), cyan(reportOut))
	},
}

func init() {
	rootCmd.AddCommand(reportCmd)
	reportCmd.Flags().StringVar(&reportOut, "out", "", "Write the report to this file instead of stdout")
}
