package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var insightCmd = &cobra.Command{
	Use:   "insight <goal-id>",
	Short: "Summarize the last week of progress",
	Long: `Ask the model for a short summary of the goal's last seven days of
check-ins, with one concrete suggestion. If the model is unavailable
the command prints a placeholder instead of failing.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		text, err := mgr.WeeklyInsight(cmd.Context(), args[0])
		if err != nil {
			fail(err)
		}
		fmt.Println(text)

		if quote := mgr.Quote(cmd.Context()); quote != "" {
			fmt.Printf("\n%s\n", gray(quote))
		}
	},
}

func init() {
	rootCmd.AddCommand(insightCmd)
}
