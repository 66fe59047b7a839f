package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/goalstride/stride/internal/types"
)

var (
	goalNewAI     bool
	goalNewTarget string
)

var goalCmd = &cobra.Command{
	Use:   "goal",
	Short: "Create, list, inspect, and delete goals",
}

var goalNewCmd = &cobra.Command{
	Use:   "new <title>",
	Short: "Create a goal, optionally with an AI-generated plan",
	Long: `Create a goal. With --ai, the title is sent to the model and the
returned plan is persisted as the goal's steps. Without --ai, the goal
starts empty and steps are added with 'stride step add'.

Examples:
  stride goal new "Run a half marathon" --ai --target 2026-12-01
  stride goal new "Read more books"`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		title := strings.Join(args, " ")
		target, err := parseDateFlag(goalNewTarget)
		if err != nil {
			fail(fmt.Errorf("invalid --target: %w", err))
		}

		ctx := cmd.Context()
		if !goalNewAI {
			goal, err := mgr.CreateGoal(ctx, title, target)
			if err != nil {
				fail(err)
			}
			fmt.Printf("%s Created goal %s\n", green("✓"), cyan(goal.ID))
			fmt.Printf("  %s\n", gray("stride step add "+goal.ID+" \"First step\""))
			return
		}

		fmt.Printf("%s Generating plan...\n", gray("→"))
		goal, steps, err := mgr.CreateGoalWithAI(ctx, title, target)
		if err != nil {
			if errors.Is(err, types.ErrExternalService) {
				fail(fmt.Errorf("%w\nNothing was saved. Retry, or create the goal without --ai", err))
			}
			fail(err)
		}

		fmt.Printf("\n%s Created goal %s with %d steps\n\n", green("✓"), cyan(goal.ID), len(steps))
		for _, s := range steps {
			printStep(s)
		}
		fmt.Println()
	},
}

var goalListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all goals, newest first",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		goals, err := store.ListGoals(cmd.Context())
		if err != nil {
			fail(err)
		}
		if len(goals) == 0 {
			fmt.Println("No goals yet. Create one with 'stride goal new'.")
			return
		}
		for _, g := range goals {
			printGoal(g)
		}
	},
}

var goalShowCmd = &cobra.Command{
	Use:   "show <goal-id>",
	Short: "Show a goal with its full plan",
	Args:  cobra.ExactArgs(1),
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

		printGoal(goal)
		fmt.Println()
		if len(steps) == 0 {
			fmt.Println("  No steps yet.")
			return
		}
		for _, s := range steps {
			printStepDetail(s)
		}
	},
}

var goalDeleteCmd = &cobra.Command{
	Use:   "delete <goal-id>",
	Short: "Delete a goal, its steps, and their check-ins",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := store.DeleteGoal(cmd.Context(), args[0]); err != nil {
			fail(err)
		}
		fmt.Printf("%s Deleted %s\n", green("✓"), args[0])
	},
}

var goalRegenCmd = &cobra.Command{
	Use:   "regen <goal-id>",
	Short: "Regenerate a goal's plan with AI",
	Long: `Replace a goal's steps with a freshly generated plan. Steps whose
titles match the new plan keep their due dates, done flags, and order.
Check-ins on replaced steps are removed with them.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("%s Regenerating plan...\n", gray("→"))
		steps, err := mgr.RegeneratePlan(cmd.Context(), args[0])
		if err != nil {
			fail(err)
		}
		fmt.Printf("\n%s New plan (%d steps)\n\n", green("✓"), len(steps))
		for _, s := range steps {
			printStep(s)
		}
		fmt.Println()
	},
}

func init() {
	rootCmd.AddCommand(goalCmd)
	goalCmd.AddCommand(goalNewCmd, goalListCmd, goalShowCmd, goalDeleteCmd, goalRegenCmd)

	goalNewCmd.Flags().BoolVar(&goalNewAI, "ai", false, "Generate the step plan with AI")
	goalNewCmd.Flags().StringVar(&goalNewTarget, "target", "", "Target date (YYYY-MM-DD)")
}
