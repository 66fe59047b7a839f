// Package planner orchestrates goal creation, step editing, and
// check-ins. It validates AI-proposed plans before anything is
// persisted and computes streak snapshots for callers. A generator
// failure can never corrupt persisted state: AI output is filtered
// record by record, and all writes go through the store's transactions.
package planner

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/goalstride/stride/internal/ai"
	"github.com/goalstride/stride/internal/clock"
	"github.com/goalstride/stride/internal/storage"
	"github.com/goalstride/stride/internal/streak"
	"github.com/goalstride/stride/internal/types"
)

// FallbackInsight is shown when the summarizer is unavailable. The
// read path degrades instead of failing.
const FallbackInsight = "insights unavailable"

// insightWindowDays is the check-in window sent to the summarizer.
const insightWindowDays = 7

// Generator is the AI collaborator contract. Implemented by ai.Planner;
// tests substitute a stub.
type Generator interface {
	GeneratePlan(ctx context.Context, title string, target *clock.Date) ([]types.StepProposal, error)
	WeeklySummary(ctx context.Context, goalTitle string, steps []*types.Step, checkins map[string][]*types.CheckIn) (string, error)
	MotivationalQuote(ctx context.Context) (string, error)
}

// Compile-time check that the real AI client satisfies the contract.
var _ Generator = (*ai.Planner)(nil)

// Config tunes plan normalization and streak reporting.
type Config struct {
	// MaxSteps caps how many AI-proposed steps are kept per plan.
	MaxSteps int
	// PlanningHorizonDays spreads default due dates across this many
	// days when the AI omits offsets and the goal has no target date.
	PlanningHorizonDays int
	// Strict streak mode requires a check-in today for a nonzero
	// current streak; the default friendly mode lets yesterday anchor.
	Strict bool
	// AITimeout bounds each generator call.
	AITimeout time.Duration
}

// DefaultConfig returns the planner defaults.
func DefaultConfig() Config {
	return Config{
		MaxSteps:            8,
		PlanningHorizonDays: 14,
		AITimeout:           2 * time.Minute,
	}
}

// Manager is the write/read surface over the store and the streak
// engine. Dependencies are explicit; there are no package singletons.
type Manager struct {
	store storage.Storage
	gen   Generator
	clk   clock.Clock
	cfg   Config
}

// New creates a manager. gen may be nil, in which case AI-backed
// operations return types.ErrExternalService.
func New(store storage.Storage, gen Generator, clk clock.Clock, cfg Config) *Manager {
	if cfg.MaxSteps <= 0 {
		cfg.MaxSteps = DefaultConfig().MaxSteps
	}
	if cfg.PlanningHorizonDays <= 0 {
		cfg.PlanningHorizonDays = DefaultConfig().PlanningHorizonDays
	}
	if cfg.AITimeout <= 0 {
		cfg.AITimeout = DefaultConfig().AITimeout
	}
	return &Manager{store: store, gen: gen, clk: clk, cfg: cfg}
}

// CreateGoal creates a goal with no steps.
func (m *Manager) CreateGoal(ctx context.Context, title string, target *clock.Date) (*types.Goal, error) {
	return m.store.CreateGoal(ctx, title, target)
}

// CreateGoalWithAI generates a plan for the title, validates and
// normalizes the proposals, and persists goal plus steps atomically.
// If the generator fails, or every proposal is unusable, nothing is
// persisted and the error propagates: initial plan generation is a
// critical path.
func (m *Manager) CreateGoalWithAI(ctx context.Context, title string, target *clock.Date) (*types.Goal, []*types.Step, error) {
	fields, err := m.generateStepFields(ctx, title, target)
	if err != nil {
		return nil, nil, err
	}
	return m.store.CreateGoalWithSteps(ctx, title, target, fields)
}

// RegeneratePlan replaces a goal's steps with a fresh AI plan,
// preserving user-set due dates, done flags, and ordering for steps
// whose titles match the new plan (best effort, case-insensitive).
func (m *Manager) RegeneratePlan(ctx context.Context, goalID string) ([]*types.Step, error) {
	goal, err := m.store.GetGoal(ctx, goalID)
	if err != nil {
		return nil, err
	}
	existing, err := m.store.ListSteps(ctx, goalID)
	if err != nil {
		return nil, err
	}

	fields, err := m.generateStepFields(ctx, goal.Title, goal.TargetDate)
	if err != nil {
		return nil, err
	}

	byTitle := make(map[string]*types.Step, len(existing))
	for _, s := range existing {
		byTitle[foldTitle(s.Title)] = s
	}
	for i := range fields {
		if keep, ok := byTitle[foldTitle(fields[i].Title)]; ok {
			fields[i].DueDate = keep.DueDate
			fields[i].Done = keep.Done
			fields[i].OrderIndex = keep.OrderIndex
		}
	}

	return m.store.AddSteps(ctx, goalID, fields, true)
}

// generateStepFields runs the generator and turns its proposals into
// validated step fields. Malformed proposals are dropped individually;
// zero usable proposals is an external-service failure.
func (m *Manager) generateStepFields(ctx context.Context, title string, target *clock.Date) ([]types.StepFields, error) {
	if m.gen == nil {
		return nil, fmt.Errorf("plan generation: %w: no generator configured", types.ErrExternalService)
	}

	genCtx, cancel := context.WithTimeout(ctx, m.cfg.AITimeout)
	defer cancel()

	proposals, err := m.gen.GeneratePlan(genCtx, title, target)
	if err != nil {
		return nil, err
	}

	fields := m.normalizeProposals(proposals, target)
	if len(fields) == 0 {
		return nil, fmt.Errorf("plan generation: %w: no usable steps in response", types.ErrExternalService)
	}
	return fields, nil
}

// normalizeProposals trims, filters, caps, and assigns due dates.
// Records without a title are dropped rather than aborting the plan.
func (m *Manager) normalizeProposals(proposals []types.StepProposal, target *clock.Date) []types.StepFields {
	today := m.clk.Today()

	kept := make([]types.StepProposal, 0, len(proposals))
	for _, p := range proposals {
		p.Normalize()
		if p.Title == "" || len(p.Title) > types.MaxTitleLen {
			continue
		}
		if p.DurationMinutes != nil && *p.DurationMinutes < 0 {
			p.DurationMinutes = nil
		}
		kept = append(kept, p)
		if len(kept) == m.cfg.MaxSteps {
			break
		}
	}

	horizon := m.cfg.PlanningHorizonDays
	if target != nil {
		if d := clock.DaysBetween(today, *target); d > 0 {
			horizon = d
		}
	}

	fields := make([]types.StepFields, 0, len(kept))
	for i, p := range kept {
		due := m.dueDateFor(p, i, len(kept), today, horizon, target)
		fields = append(fields, types.StepFields{
			OrderIndex:      i + 1,
			Title:           p.Title,
			Detail:          p.Detail,
			Metric:          p.Metric,
			DurationMinutes: p.DurationMinutes,
			Why:             p.Why,
			DueDate:         due,
		})
	}
	return fields
}

// dueDateFor honors the AI's due_offset_days when present, otherwise
// spaces steps evenly across the planning horizon. Dates never land
// past the goal's target date.
func (m *Manager) dueDateFor(p types.StepProposal, idx, total int, today clock.Date, horizon int, target *clock.Date) *clock.Date {
	var offset int
	if p.DueOffsetDays != nil && *p.DueOffsetDays >= 0 {
		offset = *p.DueOffsetDays
	} else {
		// Even spacing: step i of n lands at ceil((i+1) * horizon / n).
		offset = ((idx + 1) * horizon) / total
		if offset < 1 {
			offset = 1
		}
	}

	due := today.AddDays(offset)
	if target != nil && due.After(*target) {
		due = *target
	}
	return &due
}

func foldTitle(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// CheckIn records a check-in for a step and returns the updated streak
// snapshot. A nil day defaults to today. The bool result reports
// whether anything changed: checking in an already-checked-in date is
// success-no-change, not an error.
func (m *Manager) CheckIn(ctx context.Context, stepID string, day *clock.Date, note string) (types.StreakSnapshot, bool, error) {
	d := m.clk.Today()
	if day != nil {
		d = *day
	}
	changed, err := m.store.RecordCheckIn(ctx, stepID, d, note)
	if err != nil {
		return types.StreakSnapshot{}, false, err
	}
	snap, err := m.Snapshot(ctx, stepID)
	return snap, changed, err
}

// UndoCheckIn removes a check-in and returns the updated snapshot.
// Undoing a date that was never checked in is a no-op.
func (m *Manager) UndoCheckIn(ctx context.Context, stepID string, day *clock.Date) (types.StreakSnapshot, bool, error) {
	d := m.clk.Today()
	if day != nil {
		d = *day
	}
	changed, err := m.store.RemoveCheckIn(ctx, stepID, d)
	if err != nil {
		return types.StreakSnapshot{}, false, err
	}
	snap, err := m.Snapshot(ctx, stepID)
	return snap, changed, err
}

// Snapshot recomputes a step's streak metrics from its full check-in
// history using the configured streak mode. Nothing is cached: the
// snapshot always agrees with the underlying history.
func (m *Manager) Snapshot(ctx context.Context, stepID string) (types.StreakSnapshot, error) {
	return m.snapshot(ctx, stepID, m.cfg.Strict)
}

// StrictSnapshot recomputes the snapshot requiring a check-in today for
// a nonzero current streak, regardless of the configured mode.
func (m *Manager) StrictSnapshot(ctx context.Context, stepID string) (types.StreakSnapshot, error) {
	return m.snapshot(ctx, stepID, true)
}

func (m *Manager) snapshot(ctx context.Context, stepID string, strict bool) (types.StreakSnapshot, error) {
	step, err := m.store.GetStep(ctx, stepID)
	if err != nil {
		return types.StreakSnapshot{}, err
	}
	checkins, err := m.store.GetCheckIns(ctx, stepID)
	if err != nil {
		return types.StreakSnapshot{}, err
	}

	days := make([]clock.Date, 0, len(checkins))
	for _, ci := range checkins {
		days = append(days, ci.Day)
	}

	return streak.Compute(days, m.clk.Today(), streak.Options{
		Strict: strict,
		Since:  clock.DateOf(step.CreatedAt),
	}), nil
}

// WeeklyInsight summarizes the goal's last seven days of activity via
// the AI summarizer. Summarizer failures degrade to FallbackInsight
// with a nil error; storage failures propagate.
func (m *Manager) WeeklyInsight(ctx context.Context, goalID string) (string, error) {
	goal, err := m.store.GetGoal(ctx, goalID)
	if err != nil {
		return "", err
	}
	steps, err := m.store.ListSteps(ctx, goalID)
	if err != nil {
		return "", err
	}

	today := m.clk.Today()
	windowStart := today.AddDays(-(insightWindowDays - 1))

	checkins := make(map[string][]*types.CheckIn, len(steps))
	for _, s := range steps {
		history, err := m.store.GetCheckIns(ctx, s.ID)
		if err != nil {
			return "", err
		}
		for _, ci := range history {
			if ci.Day.Before(windowStart) || ci.Day.After(today) {
				continue
			}
			checkins[s.ID] = append(checkins[s.ID], ci)
		}
	}

	if m.gen == nil {
		return FallbackInsight, nil
	}

	genCtx, cancel := context.WithTimeout(ctx, m.cfg.AITimeout)
	defer cancel()

	text, err := m.gen.WeeklySummary(genCtx, goal.Title, steps, checkins)
	if err != nil {
		if errors.Is(err, types.ErrExternalService) || errors.Is(err, context.DeadlineExceeded) {
			return FallbackInsight, nil
		}
		return "", err
	}
	return text, nil
}

// Quote returns a short motivational line, or "" when the generator is
// unavailable. Never an error: this is decoration, not data.
func (m *Manager) Quote(ctx context.Context) string {
	if m.gen == nil {
		return ""
	}
	genCtx, cancel := context.WithTimeout(ctx, m.cfg.AITimeout)
	defer cancel()

	quote, err := m.gen.MotivationalQuote(genCtx)
	if err != nil {
		return ""
	}
	return quote
}

// ScheduleDay is one day of the upcoming schedule with its due,
// not-yet-done steps.
type ScheduleDay struct {
	Day   clock.Date
	Steps []*types.Step
}

// UpcomingSchedule returns the next n days and the open steps due on
// each, starting today.
func (m *Manager) UpcomingSchedule(ctx context.Context, goalID string, n int) ([]ScheduleDay, error) {
	steps, err := m.store.ListSteps(ctx, goalID)
	if err != nil {
		return nil, err
	}

	byDay := make(map[clock.Date][]*types.Step)
	for _, s := range steps {
		if s.Done || s.DueDate == nil {
			continue
		}
		byDay[*s.DueDate] = append(byDay[*s.DueDate], s)
	}

	schedule := make([]ScheduleDay, 0, n)
	for _, day := range clock.UpcomingDays(m.clk, n) {
		schedule = append(schedule, ScheduleDay{Day: day, Steps: byDay[day]})
	}
	return schedule, nil
}
