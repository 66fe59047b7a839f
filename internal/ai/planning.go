package ai

import (
	"context"
	"fmt"
	"time"

	"github.com/goalstride/stride/internal/clock"
	"github.com/goalstride/stride/internal/types"
)

const planPrompt = `You are an expert goal planner. Produce a concise, practical plan of 6-8 SMALL, ACTIONABLE steps for the goal below. Do NOT use labels like "Milestone 1" or generic headings. Each step MUST be atomic and start with a verb.

Goal: %s
Target date (optional): %s

Constraints:
- Steps must be concrete, small, and completable within 20-90 minutes.
- Prefer daily or near-daily cadence.
- If a target date is provided, spread steps logically before it.
- Keep language general enough for any domain, but precise.

Return ONLY a raw JSON array (no markdown fences, no extra text) of objects with fields:
  "title" (string), "detail" (string, how to do it), "metric" (string, measurable),
  "duration_min" (int), "why" (string, motivation), "due_offset_days" (int, optional).`

// GeneratePlan asks the model for an ordered list of step proposals for
// a goal. Proposals come back exactly as the model shaped them, minus
// whitespace; dropping records without titles and capping the count is
// the plan manager's job.
func (p *Planner) GeneratePlan(ctx context.Context, title string, target *clock.Date) ([]types.StepProposal, error) {
	// Overall bound covering all retries, not just one attempt.
	ctx, cancel := context.WithTimeout(ctx, 3*time.Minute)
	defer cancel()

	targetText := "none"
	if target != nil {
		targetText = target.String()
	}
	prompt := fmt.Sprintf(planPrompt, title, targetText)

	// One retry with a clarified prompt when the response isn't valid JSON.
	const maxJSONRetries = 1
	var lastParseError string

	for jsonRetry := 0; jsonRetry <= maxJSONRetries; jsonRetry++ {
		currentPrompt := prompt
		if jsonRetry > 0 {
			currentPrompt = fmt.Sprintf(`%s

IMPORTANT - Previous Response Had JSON Parse Error:
Your previous response failed to parse with error: %s

Please ensure your response is ONLY a raw JSON array (no markdown fences, no extra text).`,
				prompt, lastParseError)
		}

		responseText, err := p.callText(ctx, "plan generation", currentPrompt, 4096)
		if err != nil {
			return nil, err
		}

		result := Parse[[]types.StepProposal](responseText, "plan response")
		if result.Success {
			for i := range result.Data {
				result.Data[i].Normalize()
			}
			return result.Data, nil
		}
		lastParseError = result.Error
	}

	return nil, fmt.Errorf("plan generation: %w: failed to parse response after %d attempts: %s",
		types.ErrExternalService, maxJSONRetries+1, lastParseError)
}
