// Package streak derives consistency metrics from a step's check-in
// history. The engine is pure: "today" always arrives as an argument,
// never from the system clock, so every computation is reproducible.
package streak

import (
	"sort"

	"github.com/goalstride/stride/internal/clock"
	"github.com/goalstride/stride/internal/types"
)

// Options tunes a streak computation.
type Options struct {
	// Strict requires a check-in today for a nonzero current streak.
	// The default ("friendly") policy keeps yesterday's streak alive
	// until a full calendar day passes with no check-in.
	Strict bool

	// Since is the start of the completion-ratio window, normally the
	// step's creation date. Zero disables the ratio.
	Since clock.Date
}

// Compute builds a snapshot from the given check-in dates. The input
// need not be sorted; duplicates are tolerated even though the store
// guarantees uniqueness.
func Compute(days []clock.Date, today clock.Date, opts Options) types.StreakSnapshot {
	days = dedupeSorted(days)

	snap := types.StreakSnapshot{
		Total:   len(days),
		Longest: longestRun(days),
	}
	if len(days) == 0 {
		snap.CompletionRatio = ratio(0, opts.Since, today)
		return snap
	}

	last := days[len(days)-1]
	snap.LastCheckIn = &last
	snap.Current = currentRun(days, today, opts.Strict)
	snap.CompletionRatio = ratio(len(days), opts.Since, today)
	return snap
}

// dedupeSorted returns the dates sorted ascending with duplicates removed.
func dedupeSorted(days []clock.Date) []clock.Date {
	if len(days) == 0 {
		return nil
	}
	sorted := make([]clock.Date, len(days))
	copy(sorted, days)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Before(sorted[j]) })

	out := sorted[:1]
	for _, d := range sorted[1:] {
		if d != out[len(out)-1] {
			out = append(out, d)
		}
	}
	return out
}

// longestRun scans for the longest consecutive-date run.
func longestRun(days []clock.Date) int {
	longest, run := 0, 0
	for i, d := range days {
		if i > 0 && clock.IsConsecutive(days[i-1], d) {
			run++
		} else {
			run = 1
		}
		if run > longest {
			longest = run
		}
	}
	return longest
}

// currentRun walks backward from the anchor date counting consecutive
// days. The anchor is today when today is checked in. In friendly mode
// yesterday also anchors: the streak has not yet been broken merely
// because today's check-in hasn't happened. Anything older means the
// streak is broken and the run is zero.
func currentRun(days []clock.Date, today clock.Date, strict bool) int {
	last := days[len(days)-1]

	switch clock.DaysBetween(last, today) {
	case 0:
		// Checked in today: streak counts through today.
	case 1:
		// Last check-in was yesterday: alive in friendly mode only.
		if strict {
			return 0
		}
	default:
		return 0
	}

	run := 1
	for i := len(days) - 2; i >= 0; i-- {
		if !clock.IsConsecutive(days[i], days[i+1]) {
			break
		}
		run++
	}
	return run
}

// ratio computes distinct check-ins over elapsed days since the window
// start, inclusive of today, capped at 1.0.
func ratio(count int, since, today clock.Date) float64 {
	if since.IsZero() || since.After(today) {
		return 0
	}
	elapsed := clock.DaysBetween(since, today) + 1
	r := float64(count) / float64(elapsed)
	if r > 1 {
		return 1
	}
	return r
}
