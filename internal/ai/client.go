// Package ai wraps the Anthropic API behind plan-generation and
// progress-summary calls. Output from the model is treated as untrusted
// input: responses go through a resilient JSON parser and shape
// validation before anything downstream sees them.
package ai

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"

	"github.com/goalstride/stride/internal/types"
)

const (
	// ModelDefault is the model used for planning and summaries.
	ModelDefault = "claude-sonnet-4-5-20250929"

	// modelEnvVar overrides the model without touching config.
	modelEnvVar = "STRIDE_MODEL"
)

// Planner makes plan-generation and summarization calls against the
// Anthropic API with retry, rate limiting, and circuit breaking.
type Planner struct {
	client         *anthropic.Client
	model          string
	retry          RetryConfig
	circuitBreaker *CircuitBreaker
	concurrencySem *semaphore.Weighted
	rateLimiter    *rate.Limiter
}

// Config holds planner configuration.
type Config struct {
	APIKey string      // Anthropic API key (if empty, reads from ANTHROPIC_API_KEY env var)
	Model  string      // Model to use (default: ModelDefault, STRIDE_MODEL env override)
	Retry  RetryConfig // Retry configuration (uses defaults if not specified)
}

// New creates a new AI planner.
func New(cfg Config) (*Planner, error) {
	apiKey := cfg.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("ANTHROPIC_API_KEY")
		if apiKey == "" {
			return nil, fmt.Errorf("ANTHROPIC_API_KEY not set")
		}
	}

	// Env override wins over config so a model can be swapped per run.
	model := os.Getenv(modelEnvVar)
	if model == "" {
		model = cfg.Model
	}
	if model == "" {
		model = ModelDefault
	}

	retry := cfg.Retry
	if retry.MaxRetries == 0 {
		retry = DefaultRetryConfig()
	}

	client := anthropic.NewClient(option.WithAPIKey(apiKey))

	var circuitBreaker *CircuitBreaker
	if retry.CircuitBreakerEnabled {
		circuitBreaker = NewCircuitBreaker(retry.FailureThreshold, retry.SuccessThreshold, retry.OpenTimeout)
	}

	var concurrencySem *semaphore.Weighted
	if retry.MaxConcurrentCalls > 0 {
		concurrencySem = semaphore.NewWeighted(int64(retry.MaxConcurrentCalls))
	}

	var rateLimiter *rate.Limiter
	if retry.RequestsPerSecond > 0 {
		rateLimiter = rate.NewLimiter(rate.Limit(retry.RequestsPerSecond), 1)
	}

	return &Planner{
		client:         &client,
		model:          model,
		retry:          retry,
		circuitBreaker: circuitBreaker,
		concurrencySem: concurrencySem,
		rateLimiter:    rateLimiter,
	}, nil
}

// callText makes a single-prompt API call and returns the response text.
func (p *Planner) callText(ctx context.Context, operation, prompt string, maxTokens int) (string, error) {
	startTime := time.Now()

	var response *anthropic.Message
	err := p.retryWithBackoff(ctx, operation, func(attemptCtx context.Context) error {
		resp, apiErr := p.client.Messages.New(attemptCtx, anthropic.MessageNewParams{
			Model:     anthropic.Model(p.model),
			MaxTokens: int64(maxTokens),
			Messages: []anthropic.MessageParam{
				anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
			},
		})
		if apiErr != nil {
			return apiErr
		}
		response = resp
		return nil
	})
	if err != nil {
		// Callers distinguish external-service failures from their own.
		return "", fmt.Errorf("%s: %w: %w", operation, types.ErrExternalService, err)
	}

	var responseText string
	for _, block := range response.Content {
		if block.Type == "text" {
			responseText += block.Text
		}
	}

	fmt.Printf("AI %s call: input=%d tokens, output=%d tokens, duration=%v\n",
		operation, response.Usage.InputTokens, response.Usage.OutputTokens, time.Since(startTime))

	return responseText, nil
}
