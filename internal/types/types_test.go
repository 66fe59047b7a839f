package types

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/goalstride/stride/internal/clock"
)

func TestGoalValidate(t *testing.T) {
	tests := []struct {
		name    string
		goal    Goal
		wantErr bool
	}{
		{"valid", Goal{Title: "Run a marathon"}, false},
		{"empty title", Goal{Title: ""}, true},
		{"whitespace title", Goal{Title: "   \t"}, true},
		{"title too long", Goal{Title: strings.Repeat("x", MaxTitleLen+1)}, true},
		{"title at limit", Goal{Title: strings.Repeat("x", MaxTitleLen)}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.goal.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrValidation)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestStepValidate(t *testing.T) {
	neg := -5
	tests := []struct {
		name    string
		step    Step
		wantErr bool
	}{
		{"valid", Step{Title: "Run 5km"}, false},
		{"empty title", Step{Title: " "}, true},
		{"negative duration", Step{Title: "Run", DurationMinutes: &neg}, true},
		{"negative order", Step{Title: "Run", OrderIndex: -1}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.step.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrValidation)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestStepUpdateEmpty(t *testing.T) {
	assert.True(t, StepUpdate{}.Empty())

	title := "new"
	assert.False(t, StepUpdate{Title: &title}.Empty())
	assert.False(t, StepUpdate{ClearDueDate: true}.Empty())

	d := clock.NewDate(2025, 6, 1)
	assert.False(t, StepUpdate{DueDate: &d}.Empty())
}

func TestStepProposalNormalize(t *testing.T) {
	p := StepProposal{Title: "  Draft outline \n", Detail: " how ", Metric: " 5 sections ", Why: " clarity "}
	p.Normalize()
	assert.Equal(t, "Draft outline", p.Title)
	assert.Equal(t, "how", p.Detail)
	assert.Equal(t, "5 sections", p.Metric)
	assert.Equal(t, "clarity", p.Why)
}

func TestErrorWrappers(t *testing.T) {
	err := Validationf("title %q is bad", "x")
	assert.ErrorIs(t, err, ErrValidation)
	assert.Contains(t, err.Error(), `title "x" is bad`)

	err = NotFoundf("goal %s", "g-9")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.False(t, errors.Is(err, ErrValidation))
}
