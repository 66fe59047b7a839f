package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/goalstride/stride/internal/types"
)

var (
	stepAddDetail   string
	stepAddMetric   string
	stepAddDuration int
	stepAddWhy      string
	stepAddDue      string

	stepEditTitle    string
	stepEditDetail   string
	stepEditMetric   string
	stepEditDue      string
	stepEditClearDue bool
)

var stepCmd = &cobra.Command{
	Use:   "step",
	Short: "Add, edit, complete, and delete steps",
}

var stepAddCmd = &cobra.Command{
	Use:   "add <goal-id> <title>",
	Short: "Add a step to a goal",
	Args:  cobra.MinimumNArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		due, err := parseDateFlag(stepAddDue)
		if err != nil {
			fail(fmt.Errorf("invalid --due: %w", err))
		}

		fields := types.StepFields{
			Title:   strings.Join(args[1:], " "),
			Detail:  stepAddDetail,
			Metric:  stepAddMetric,
			Why:     stepAddWhy,
			DueDate: due,
		}
		if stepAddDuration > 0 {
			fields.DurationMinutes = &stepAddDuration
		}

		step, err := store.AddStep(cmd.Context(), args[0], fields)
		if err != nil {
			fail(err)
		}
		fmt.Printf("%s Added step %s\n", green("✓"), cyan(step.ID))
	},
}

var stepEditCmd = &cobra.Command{
	Use:   "edit <step-id>",
	Short: "Edit a step's fields",
	Long: `Edit a step. Only the flags you pass are changed; everything else
is left alone. --clear-due removes an existing due date.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		upd := types.StepUpdate{ClearDueDate: stepEditClearDue}
		if cmd.Flags().Changed("title") {
			upd.Title = &stepEditTitle
		}
		if cmd.Flags().Changed("detail") {
			upd.Detail = &stepEditDetail
		}
		if cmd.Flags().Changed("metric") {
			upd.Metric = &stepEditMetric
		}
		if cmd.Flags().Changed("due") {
			due, err := parseDateFlag(stepEditDue)
			if err != nil {
				fail(fmt.Errorf("invalid --due: %w", err))
			}
			upd.DueDate = due
		}

		if upd.Empty() {
			fail(fmt.Errorf("nothing to change; pass at least one flag"))
		}

		step, err := store.UpdateStep(cmd.Context(), args[0], upd)
		if err != nil {
			fail(err)
		}
		fmt.Printf("%s Updated %s\n", green("✓"), cyan(step.ID))
		printStepDetail(step)
	},
}

var stepDoneCmd = &cobra.Command{
	Use:   "done <step-id>",
	Short: "Mark a step as done",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		done := true
		step, err := store.UpdateStep(cmd.Context(), args[0], types.StepUpdate{Done: &done})
		if err != nil {
			fail(err)
		}
		fmt.Printf("%s Done: %s\n", green("✓"), step.Title)
	},
}

var stepDeleteCmd = &cobra.Command{
	Use:   "delete <step-id>",
	Short: "Delete a step and its check-ins",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := store.DeleteStep(cmd.Context(), args[0]); err != nil {
			fail(err)
		}
		fmt.Printf("%s Deleted %s\n", green("✓"), args[0])
	},
}

func init() {
	rootCmd.AddCommand(stepCmd)
	stepCmd.AddCommand(stepAddCmd, stepEditCmd, stepDoneCmd, stepDeleteCmd)

	stepAddCmd.Flags().StringVar(&stepAddDetail, "detail", "", "How to do the step")
	stepAddCmd.Flags().StringVar(&stepAddMetric, "metric", "", "How success is measured")
	stepAddCmd.Flags().IntVar(&stepAddDuration, "duration", 0, "Estimated minutes")
	stepAddCmd.Flags().StringVar(&stepAddWhy, "why", "", "Why this step matters")
	stepAddCmd.Flags().StringVar(&stepAddDue, "due", "", "Due date (YYYY-MM-DD)")

	stepEditCmd.Flags().StringVar(&stepEditTitle, "title", "", "New title")
	stepEditCmd.Flags().StringVar(&stepEditDetail, "detail", "", "New detail")
	stepEditCmd.Flags().StringVar(&stepEditMetric, "metric", "", "New metric")
	stepEditCmd.Flags().StringVar(&stepEditDue, "due", "", "New due date (YYYY-MM-DD)")
	stepEditCmd.Flags().BoolVar(&stepEditClearDue, "clear-due", false, "Remove the due date")
}
