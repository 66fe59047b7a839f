package main

import (
	"fmt"

	"github.com/fatih/color"

	"github.com/goalstride/stride/internal/clock"
	"github.com/goalstride/stride/internal/types"
)

var (
	green  = color.New(color.FgGreen).SprintFunc()
	cyan   = color.New(color.FgCyan).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	gray   = color.New(color.FgHiBlack).SprintFunc()
	bold   = color.New(color.Bold).SprintFunc()
)

// parseDateFlag parses an optional --date style flag. Empty means nil.
func parseDateFlag(value string) (*clock.Date, error) {
	if value == "" {
		return nil, nil
	}
	d, err := clock.ParseDate(value)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func printGoal(g *types.Goal) {
	fmt.Printf("%s  %s", cyan(g.ID), bold(g.Title))
	if g.TargetDate != nil {
		fmt.Printf("  %s", gray(fmt.Sprintf("(target %s)", g.TargetDate)))
	}
	fmt.Println()
}

func printStep(s *types.Step) {
	box := gray("[ ]")
	if s.Done {
		box = green("[x]")
	}
	fmt.Printf("  %s %s  %s", box, cyan(s.ID), s.Title)
	if s.DueDate != nil {
		fmt.Printf("  %s", gray(fmt.Sprintf("due %s", s.DueDate)))
	}
	fmt.Println()
}

func printStepDetail(s *types.Step) {
	printStep(s)
	if s.Detail != "" {
		fmt.Printf("        How: %s\n", s.Detail)
	}
	if s.Metric != "" {
		fmt.Printf("        Metric: %s\n", s.Metric)
	}
	if s.DurationMinutes != nil {
		fmt.Printf("        Duration: %d min\n", *s.DurationMinutes)
	}
	if s.Why != "" {
		fmt.Printf("        Why: %s\n", gray(s.Why))
	}
}

func printSnapshot(snap types.StreakSnapshot) {
	fmt.Printf("  Current streak: %s day(s)\n", bold(fmt.Sprintf("%d", snap.Current)))
	fmt.Printf("  Longest streak: %d day(s)\n", snap.Longest)
	fmt.Printf("  Total check-ins: %d\n", snap.Total)
	fmt.Printf("  Consistency: %.0f%%\n", snap.CompletionRatio*100)
	if snap.LastCheckIn != nil {
		fmt.Printf("  Last check-in: %s\n", snap.LastCheckIn)
	}
}
