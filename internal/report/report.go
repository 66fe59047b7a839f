// Package report renders a goal's progress as Markdown. The output is
// plain text so it can be piped to a file, a pager, or a converter.
package report

import (
	"fmt"
	"strings"

	"github.com/goalstride/stride/internal/clock"
	"github.com/goalstride/stride/internal/types"
)

// Data is everything a report needs, gathered by the caller. Snapshots
// is keyed by step ID; steps without an entry render without streak
// numbers.
type Data struct {
	Goal        *types.Goal
	Steps       []*types.Step
	Snapshots   map[string]types.StreakSnapshot
	Insight     string
	GeneratedOn clock.Date
}

// Render produces the Markdown report.
func Render(d Data) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Progress Report: %s\n\n", d.Goal.Title)
	fmt.Fprintf(&b, "Generated %s", d.GeneratedOn)
	if d.Goal.TargetDate != nil {
		fmt.Fprintf(&b, " (target %s)", d.Goal.TargetDate)
	}
	b.WriteString("\n\n")

	writeOverview(&b, d)
	writePlan(&b, d)
	writeInsight(&b, d.Insight)

	return b.String()
}

func writeOverview(b *strings.Builder, d Data) {
	done := 0
	for _, s := range d.Steps {
		if s.Done {
			done++
		}
	}

	b.WriteString("## Overview\n\n")
	fmt.Fprintf(b, "- Steps completed: %d of %d\n", done, len(d.Steps))
	if best, ok := bestStreak(d); ok {
		fmt.Fprintf(b, "- Best current streak: %d day(s)\n", best)
	}
	fmt.Fprintf(b, "- Total check-ins: %d\n", totalCheckIns(d))
	b.WriteString("\n")
}

func writePlan(b *strings.Builder, d Data) {
	b.WriteString("## Plan\n\n")
	if len(d.Steps) == 0 {
		b.WriteString("No steps yet.\n\n")
		return
	}

	for _, s := range d.Steps {
		box := " "
		if s.Done {
			box = "x"
		}
		fmt.Fprintf(b, "- [%s] %s\n", box, s.Title)
		if s.Detail != "" {
			fmt.Fprintf(b, "  - How: %s\n", s.Detail)
		}
		if s.Metric != "" {
			fmt.Fprintf(b, "  - Metric: %s\n", s.Metric)
		}
		if s.DurationMinutes != nil {
			fmt.Fprintf(b, "  - Duration: %d min\n", *s.DurationMinutes)
		}
		if s.Why != "" {
			fmt.Fprintf(b, "  - Why: %s\n", s.Why)
		}
		if s.DueDate != nil {
			fmt.Fprintf(b, "  - Due: %s\n", s.DueDate)
		}
		if snap, ok := d.Snapshots[s.ID]; ok && snap.Total > 0 {
			fmt.Fprintf(b, "  - Streak: %d current, %d longest, %d check-in(s)\n",
				snap.Current, snap.Longest, snap.Total)
		}
	}
	b.WriteString("\n")
}

func writeInsight(b *strings.Builder, insight string) {
	b.WriteString("## Weekly Summary\n\n")
	if insight == "" {
		insight = "No summary yet."
	}
	b.WriteString(insight)
	b.WriteString("\n")
}

func bestStreak(d Data) (int, bool) {
	best, found := 0, false
	for _, snap := range d.Snapshots {
		found = true
		if snap.Current > best {
			best = snap.Current
		}
	}
	return best, found
}

func totalCheckIns(d Data) int {
	total := 0
	for _, snap := range d.Snapshots {
		total += snap.Total
	}
	return total
}
