package planner

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goalstride/stride/internal/clock"
	"github.com/goalstride/stride/internal/storage/sqlite"
	"github.com/goalstride/stride/internal/types"
)

var today = clock.NewDate(2025, time.June, 7)

// stubGenerator scripts the AI collaborator for tests.
type stubGenerator struct {
	proposals  []types.StepProposal
	planErr    error
	summary    string
	summaryErr error
	quote      string
	quoteErr   error

	planCalls int
}

func (s *stubGenerator) GeneratePlan(ctx context.Context, title string, target *clock.Date) ([]types.StepProposal, error) {
	s.planCalls++
	return s.proposals, s.planErr
}

func (s *stubGenerator) WeeklySummary(ctx context.Context, goalTitle string, steps []*types.Step, checkins map[string][]*types.CheckIn) (string, error) {
	return s.summary, s.summaryErr
}

func (s *stubGenerator) MotivationalQuote(ctx context.Context) (string, error) {
	return s.quote, s.quoteErr
}

func newTestManager(t *testing.T, gen Generator) *Manager {
	t.Helper()
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return New(store, gen, clock.Fixed{Date: today}, DefaultConfig())
}

func intPtr(n int) *int { return &n }

func proposal(title string) types.StepProposal {
	return types.StepProposal{Title: title, Detail: "how", Metric: "done", Why: "because"}
}

func TestCreateGoalWithAIDropsInvalidProposals(t *testing.T) {
	gen := &stubGenerator{proposals: []types.StepProposal{
		proposal("Draft outline"),
		{Title: "   "}, // missing title: dropped, not fatal
		proposal("Collect references"),
		proposal("Write introduction"),
	}}
	m := newTestManager(t, gen)
	ctx := context.Background()

	goal, steps, err := m.CreateGoalWithAI(ctx, "Write a research paper", nil)
	require.NoError(t, err)
	require.Len(t, steps, 3, "one invalid record plus three valid records persists exactly 3 steps")
	assert.Equal(t, "Draft outline", steps[0].Title)
	assert.Equal(t, "Collect references", steps[1].Title)
	assert.Equal(t, "Write introduction", steps[2].Title)
	assert.NotEmpty(t, goal.ID)
}

func TestCreateGoalWithAICapsStepCount(t *testing.T) {
	var proposals []types.StepProposal
	for i := 0; i < 20; i++ {
		proposals = append(proposals, proposal(fmt.Sprintf("Step %d", i)))
	}
	m := newTestManager(t, &stubGenerator{proposals: proposals})

	_, steps, err := m.CreateGoalWithAI(context.Background(), "Overplanned goal", nil)
	require.NoError(t, err)
	assert.Len(t, steps, DefaultConfig().MaxSteps)
}

func TestCreateGoalWithAIGeneratorFailure(t *testing.T) {
	gen := &stubGenerator{planErr: fmt.Errorf("plan generation: %w: boom", types.ErrExternalService)}
	m := newTestManager(t, gen)
	ctx := context.Background()

	_, _, err := m.CreateGoalWithAI(ctx, "Doomed goal", nil)
	require.ErrorIs(t, err, types.ErrExternalService)

	// Critical-path failure must leave no goal behind.
	goals, err := m.store.ListGoals(ctx)
	require.NoError(t, err)
	assert.Empty(t, goals)
}

func TestCreateGoalWithAIAllProposalsInvalid(t *testing.T) {
	gen := &stubGenerator{proposals: []types.StepProposal{{Title: ""}, {Title: "  "}}}
	m := newTestManager(t, gen)

	_, _, err := m.CreateGoalWithAI(context.Background(), "Empty plan", nil)
	assert.ErrorIs(t, err, types.ErrExternalService)
}

func TestCreateGoalWithAINoGenerator(t *testing.T) {
	m := newTestManager(t, nil)
	_, _, err := m.CreateGoalWithAI(context.Background(), "No AI", nil)
	assert.ErrorIs(t, err, types.ErrExternalService)
}

func TestDueDatesHonorAIOffsets(t *testing.T) {
	p := proposal("Run 5km")
	p.DueOffsetDays = intPtr(3)
	m := newTestManager(t, &stubGenerator{proposals: []types.StepProposal{p}})

	_, steps, err := m.CreateGoalWithAI(context.Background(), "Get fit", nil)
	require.NoError(t, err)
	require.NotNil(t, steps[0].DueDate)
	assert.Equal(t, today.AddDays(3), *steps[0].DueDate)
}

func TestDueDatesSpreadAcrossHorizon(t *testing.T) {
	gen := &stubGenerator{proposals: []types.StepProposal{
		proposal("a"), proposal("b"), proposal("c"), proposal("d"),
	}}
	m := newTestManager(t, gen)

	_, steps, err := m.CreateGoalWithAI(context.Background(), "Spread me", nil)
	require.NoError(t, err)
	require.Len(t, steps, 4)

	// 14-day default horizon over 4 steps: days 3, 7, 10, 14.
	var prev clock.Date
	for i, s := range steps {
		require.NotNil(t, s.DueDate)
		assert.True(t, s.DueDate.After(today), "due dates are in the future")
		if i > 0 {
			assert.True(t, s.DueDate.After(prev) || *s.DueDate == prev, "due dates never regress")
		}
		prev = *s.DueDate
	}
	assert.Equal(t, today.AddDays(14), *steps[3].DueDate, "last step lands at the horizon")
}

func TestDueDatesClampedToTarget(t *testing.T) {
	target := today.AddDays(5)
	p := proposal("Late step")
	p.DueOffsetDays = intPtr(30)
	m := newTestManager(t, &stubGenerator{proposals: []types.StepProposal{p}})

	_, steps, err := m.CreateGoalWithAI(context.Background(), "Deadline goal", &target)
	require.NoError(t, err)
	require.NotNil(t, steps[0].DueDate)
	assert.Equal(t, target, *steps[0].DueDate)
}

func TestCheckInReturnsSnapshot(t *testing.T) {
	m := newTestManager(t, nil)
	ctx := context.Background()

	goal, err := m.CreateGoal(ctx, "Gym routine", nil)
	require.NoError(t, err)
	step, err := m.store.AddStep(ctx, goal.ID, types.StepFields{Title: "Lift"})
	require.NoError(t, err)

	// Build a two-day run ending today.
	yesterday := today.AddDays(-1)
	_, _, err = m.CheckIn(ctx, step.ID, &yesterday, "")
	require.NoError(t, err)

	snap, changed, err := m.CheckIn(ctx, step.ID, nil, "felt strong")
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, 2, snap.Current)
	assert.Equal(t, 2, snap.Longest)
	assert.Equal(t, 2, snap.Total)

	// Second check-in today: no change, same snapshot.
	snap, changed, err = m.CheckIn(ctx, step.ID, nil, "")
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, 2, snap.Total)
}

func TestUndoCheckIn(t *testing.T) {
	m := newTestManager(t, nil)
	ctx := context.Background()

	goal, err := m.CreateGoal(ctx, "g", nil)
	require.NoError(t, err)
	step, err := m.store.AddStep(ctx, goal.ID, types.StepFields{Title: "t"})
	require.NoError(t, err)

	_, _, err = m.CheckIn(ctx, step.ID, nil, "")
	require.NoError(t, err)

	snap, changed, err := m.UndoCheckIn(ctx, step.ID, nil)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Zero(t, snap.Total)

	// Undoing again is a no-op, not an error.
	_, changed, err = m.UndoCheckIn(ctx, step.ID, nil)
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestStrictSnapshotRequiresToday(t *testing.T) {
	m := newTestManager(t, nil)
	ctx := context.Background()

	goal, err := m.CreateGoal(ctx, "g", nil)
	require.NoError(t, err)
	step, err := m.store.AddStep(ctx, goal.ID, types.StepFields{Title: "t"})
	require.NoError(t, err)

	yesterday := today.AddDays(-1)
	_, _, err = m.CheckIn(ctx, step.ID, &yesterday, "")
	require.NoError(t, err)

	friendly, err := m.Snapshot(ctx, step.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, friendly.Current, "yesterday keeps the streak alive in friendly mode")

	strict, err := m.StrictSnapshot(ctx, step.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, strict.Current, "strict mode requires a check-in today")
	assert.Equal(t, 1, strict.Longest)
}

func TestSnapshotUnknownStep(t *testing.T) {
	m := newTestManager(t, nil)
	_, err := m.Snapshot(context.Background(), "s-404")
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestSnapshotCompletionRatioUsesCreation(t *testing.T) {
	m := newTestManager(t, nil)
	ctx := context.Background()

	goal, err := m.CreateGoal(ctx, "g", nil)
	require.NoError(t, err)
	step, err := m.store.AddStep(ctx, goal.ID, types.StepFields{Title: "t"})
	require.NoError(t, err)

	// Step created "today" (real wall clock normalizes to the fixture's
	// ratio window of one day once checked in today).
	_, _, err = m.CheckIn(ctx, step.ID, nil, "")
	require.NoError(t, err)

	snap, err := m.Snapshot(ctx, step.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, snap.Total)
	assert.GreaterOrEqual(t, snap.CompletionRatio, 0.0)
	assert.LessOrEqual(t, snap.CompletionRatio, 1.0)
}

func TestWeeklyInsightDegradesToFallback(t *testing.T) {
	gen := &stubGenerator{summaryErr: fmt.Errorf("weekly summary: %w: timeout", types.ErrExternalService)}
	m := newTestManager(t, gen)
	ctx := context.Background()

	goal, err := m.CreateGoal(ctx, "g", nil)
	require.NoError(t, err)

	text, err := m.WeeklyInsight(ctx, goal.ID)
	require.NoError(t, err, "summarizer failure must not fail the read path")
	assert.Equal(t, FallbackInsight, text)
}

func TestWeeklyInsightReturnsSummary(t *testing.T) {
	gen := &stubGenerator{summary: "Good week. Keep the daily slots."}
	m := newTestManager(t, gen)
	ctx := context.Background()

	goal, err := m.CreateGoal(ctx, "g", nil)
	require.NoError(t, err)
	step, err := m.store.AddStep(ctx, goal.ID, types.StepFields{Title: "t"})
	require.NoError(t, err)
	_, _, err = m.CheckIn(ctx, step.ID, nil, "")
	require.NoError(t, err)

	text, err := m.WeeklyInsight(ctx, goal.ID)
	require.NoError(t, err)
	assert.Equal(t, "Good week. Keep the daily slots.", text)
}

func TestWeeklyInsightUnknownGoal(t *testing.T) {
	m := newTestManager(t, &stubGenerator{})
	_, err := m.WeeklyInsight(context.Background(), "g-404")
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestQuoteDegradesToEmpty(t *testing.T) {
	m := newTestManager(t, &stubGenerator{quoteErr: errors.New("boom")})
	assert.Empty(t, m.Quote(context.Background()))

	m = newTestManager(t, &stubGenerator{quote: "Keep going."})
	assert.Equal(t, "Keep going.", m.Quote(context.Background()))
}

func TestRegeneratePlanPreservesUserState(t *testing.T) {
	gen := &stubGenerator{proposals: []types.StepProposal{
		proposal("Design home page"),
		proposal("Write about page"),
	}}
	m := newTestManager(t, gen)
	ctx := context.Background()

	goal, _, err := m.CreateGoalWithAI(ctx, "Launch site", nil)
	require.NoError(t, err)

	steps, err := m.store.ListSteps(ctx, goal.ID)
	require.NoError(t, err)

	// User marks the first step done and moves its due date.
	due := today.AddDays(2)
	done := true
	_, err = m.store.UpdateStep(ctx, steps[0].ID, types.StepUpdate{Done: &done, DueDate: &due})
	require.NoError(t, err)

	// Regenerated plan keeps one matching title (case-insensitive) and
	// introduces a new step.
	gen.proposals = []types.StepProposal{
		proposal("design HOME page"),
		proposal("Set up analytics"),
	}

	regenerated, err := m.RegeneratePlan(ctx, goal.ID)
	require.NoError(t, err)
	require.Len(t, regenerated, 2)

	listed, err := m.store.ListSteps(ctx, goal.ID)
	require.NoError(t, err)

	var matched *types.Step
	for _, s := range listed {
		if foldTitle(s.Title) == "design home page" {
			matched = s
		}
	}
	require.NotNil(t, matched)
	assert.True(t, matched.Done, "done flag survives regeneration")
	require.NotNil(t, matched.DueDate)
	assert.Equal(t, due, *matched.DueDate, "user-set due date survives regeneration")
}

func TestUpcomingSchedule(t *testing.T) {
	m := newTestManager(t, nil)
	ctx := context.Background()

	goal, err := m.CreateGoal(ctx, "g", nil)
	require.NoError(t, err)

	tomorrow := today.AddDays(1)
	_, err = m.store.AddStep(ctx, goal.ID, types.StepFields{Title: "due tomorrow", DueDate: &tomorrow})
	require.NoError(t, err)
	_, err = m.store.AddStep(ctx, goal.ID, types.StepFields{Title: "done already", DueDate: &tomorrow, Done: true})
	require.NoError(t, err)
	_, err = m.store.AddStep(ctx, goal.ID, types.StepFields{Title: "undated"})
	require.NoError(t, err)

	schedule, err := m.UpcomingSchedule(ctx, goal.ID, 3)
	require.NoError(t, err)
	require.Len(t, schedule, 3)

	assert.Equal(t, today, schedule[0].Day)
	assert.Empty(t, schedule[0].Steps)
	require.Len(t, schedule[1].Steps, 1, "done and undated steps are excluded")
	assert.Equal(t, "due tomorrow", schedule[1].Steps[0].Title)
}
