package types

import (
	"strings"
	"time"

	"github.com/goalstride/stride/internal/clock"
)

// MaxTitleLen bounds goal and step titles at the schema level and in
// Validate, so oversized input fails before it reaches the database.
const MaxTitleLen = 500

// Goal is a user's top-level objective, decomposed into steps. Goals are
// created once and mutated only through their step membership; a goal
// exclusively owns its steps, so deleting it cascades.
type Goal struct {
	ID         string      `json:"id"`
	Title      string      `json:"title"`
	TargetDate *clock.Date `json:"target_date,omitempty"`
	CreatedAt  time.Time   `json:"created_at"`
}

// Validate checks the goal's field values.
func (g *Goal) Validate() error {
	title := strings.TrimSpace(g.Title)
	if title == "" {
		return Validationf("goal title is required")
	}
	if len(title) > MaxTitleLen {
		return Validationf("goal title must be %d characters or less (got %d)", MaxTitleLen, len(title))
	}
	return nil
}

// Step is one actionable unit within a goal. One-off steps use the Done
// flag; recurring steps accumulate a check-in history instead.
type Step struct {
	ID              string      `json:"id"`
	GoalID          string      `json:"goal_id"`
	OrderIndex      int         `json:"order_index"`
	Title           string      `json:"title"`
	Detail          string      `json:"detail,omitempty"`
	Metric          string      `json:"metric,omitempty"`
	DurationMinutes *int        `json:"duration_minutes,omitempty"`
	Why             string      `json:"why,omitempty"`
	DueDate         *clock.Date `json:"due_date,omitempty"`
	Done            bool        `json:"done"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
}

// Validate checks the step's field values.
func (s *Step) Validate() error {
	title := strings.TrimSpace(s.Title)
	if title == "" {
		return Validationf("step title is required")
	}
	if len(title) > MaxTitleLen {
		return Validationf("step title must be %d characters or less (got %d)", MaxTitleLen, len(title))
	}
	if s.DurationMinutes != nil && *s.DurationMinutes < 0 {
		return Validationf("duration_minutes cannot be negative")
	}
	if s.OrderIndex < 0 {
		return Validationf("order_index cannot be negative")
	}
	return nil
}

// StepFields carries the writable fields for creating a step.
type StepFields struct {
	OrderIndex      int
	Title           string
	Detail          string
	Metric          string
	DurationMinutes *int
	Why             string
	DueDate         *clock.Date
	Done            bool
}

// StepUpdate is a partial update: only non-nil fields are applied.
// ClearDueDate removes an existing due date, which a nil pointer alone
// cannot express.
type StepUpdate struct {
	OrderIndex      *int
	Title           *string
	Detail          *string
	Metric          *string
	DurationMinutes *int
	Why             *string
	DueDate         *clock.Date
	ClearDueDate    bool
	Done            *bool
}

// Empty reports whether the update carries no changes.
func (u StepUpdate) Empty() bool {
	return u.OrderIndex == nil && u.Title == nil && u.Detail == nil &&
		u.Metric == nil && u.DurationMinutes == nil && u.Why == nil &&
		u.DueDate == nil && !u.ClearDueDate && u.Done == nil
}

// CheckIn records that a step's activity happened on a calendar date.
// A step's history holds at most one check-in per date.
type CheckIn struct {
	ID        string     `json:"id"`
	StepID    string     `json:"step_id"`
	Day       clock.Date `json:"day"`
	Note      string     `json:"note,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// StepProposal is one AI-proposed plan record after shape validation.
// The generator's raw output is loosely typed; anything that fails to
// conform is dropped before it gets near the store.
type StepProposal struct {
	Title           string `json:"title"`
	Detail          string `json:"detail"`
	Metric          string `json:"metric"`
	DurationMinutes *int   `json:"duration_min,omitempty"`
	Why             string `json:"why"`
	DueOffsetDays   *int   `json:"due_offset_days,omitempty"`
}

// Normalize trims whitespace in the proposal's text fields.
func (p *StepProposal) Normalize() {
	p.Title = strings.TrimSpace(p.Title)
	p.Detail = strings.TrimSpace(p.Detail)
	p.Metric = strings.TrimSpace(p.Metric)
	p.Why = strings.TrimSpace(p.Why)
}

// StreakSnapshot is derived from a step's check-in history on every
// read. It is never persisted, so it can never go stale against the
// underlying history.
type StreakSnapshot struct {
	Current         int         `json:"current"`
	Longest         int         `json:"longest"`
	Total           int         `json:"total"`
	CompletionRatio float64     `json:"completion_ratio"`
	LastCheckIn     *clock.Date `json:"last_checkin,omitempty"`
}
