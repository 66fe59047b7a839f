package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/goalstride/stride/internal/types"
)

const summaryPrompt = `You analyze progress toward a personal goal. Write a motivational, specific weekly summary that highlights:
- What went well (tied to steps and their metrics)
- Risks / blockers
- 3 specific focus items for next week

Goal: %s

Steps (JSON): %s

Check-ins this week (JSON): %s`

const quotePrompt = `Return a very short, non-cheesy motivational line under 12 words. One line only, no quotes around it.`

// summaryStep is the compact step context sent to the summarizer.
type summaryStep struct {
	Title   string `json:"title"`
	Metric  string `json:"metric,omitempty"`
	Done    bool   `json:"done"`
	DueDate string `json:"due_date,omitempty"`
}

// summaryCheckIn pairs a step with one checked-in day.
type summaryCheckIn struct {
	Step string `json:"step"`
	Day  string `json:"day"`
	Note string `json:"note,omitempty"`
}

// WeeklySummary asks the model for a free-text recap of a goal's week.
// There is no structural contract on the reply beyond "non-empty".
func (p *Planner) WeeklySummary(ctx context.Context, goalTitle string, steps []*types.Step, checkins map[string][]*types.CheckIn) (string, error) {
	stepCtx := make([]summaryStep, 0, len(steps))
	var checkCtx []summaryCheckIn
	for _, s := range steps {
		entry := summaryStep{Title: s.Title, Metric: s.Metric, Done: s.Done}
		if s.DueDate != nil {
			entry.DueDate = s.DueDate.String()
		}
		stepCtx = append(stepCtx, entry)

		for _, ci := range checkins[s.ID] {
			checkCtx = append(checkCtx, summaryCheckIn{Step: s.Title, Day: ci.Day.String(), Note: ci.Note})
		}
	}

	stepsJSON, _ := json.Marshal(stepCtx)
	checksJSON, _ := json.Marshal(checkCtx)

	prompt := fmt.Sprintf(summaryPrompt, goalTitle, stepsJSON, checksJSON)
	text, err := p.callText(ctx, "weekly summary", prompt, 1024)
	if err != nil {
		return "", err
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("weekly summary: %w: empty response", types.ErrExternalService)
	}
	return text, nil
}

// MotivationalQuote returns a short one-liner for display alongside
// progress output.
func (p *Planner) MotivationalQuote(ctx context.Context) (string, error) {
	text, err := p.callText(ctx, "quote", quotePrompt, 64)
	if err != nil {
		return "", err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("quote: %w: empty response", types.ErrExternalService)
	}
	return text, nil
}
