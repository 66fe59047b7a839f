package ai

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCircuitBreakerOpensAfterThreshold(t *testing.T) {
	cb := NewCircuitBreaker(3, 2, 100*time.Millisecond)
	assert.Equal(t, CircuitClosed, cb.State())

	for i := 0; i < 3; i++ {
		require.NoError(t, cb.Allow())
		cb.RecordFailure()
	}
	assert.Equal(t, CircuitOpen, cb.State())
	assert.ErrorIs(t, cb.Allow(), ErrCircuitOpen)
}

func TestCircuitBreakerRecovery(t *testing.T) {
	cb := NewCircuitBreaker(1, 2, 10*time.Millisecond)
	cb.RecordFailure()
	assert.Equal(t, CircuitOpen, cb.State())

	// After the open timeout, a probe is allowed (half-open).
	time.Sleep(20 * time.Millisecond)
	require.NoError(t, cb.Allow())
	assert.Equal(t, CircuitHalfOpen, cb.State())

	// Two successes close the circuit.
	cb.RecordSuccess()
	cb.RecordSuccess()
	assert.Equal(t, CircuitClosed, cb.State())
}

func TestCircuitBreakerHalfOpenFailureReopens(t *testing.T) {
	cb := NewCircuitBreaker(1, 2, 10*time.Millisecond)
	cb.RecordFailure()
	time.Sleep(20 * time.Millisecond)
	require.NoError(t, cb.Allow())

	cb.RecordFailure()
	assert.Equal(t, CircuitOpen, cb.State())
}

func TestCircuitSuccessResetsFailureCount(t *testing.T) {
	cb := NewCircuitBreaker(2, 1, time.Minute)
	cb.RecordFailure()
	cb.RecordSuccess()
	cb.RecordFailure()
	assert.Equal(t, CircuitClosed, cb.State(), "non-consecutive failures must not open the circuit")
}

func TestIsRetriableError(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		retriable bool
	}{
		{"nil", nil, false},
		{"deadline", context.DeadlineExceeded, true},
		{"rate limit text", errors.New("rate limit exceeded"), true},
		{"http 429", errors.New("unexpected status 429"), true},
		{"http 500", errors.New("500 internal server error"), true},
		{"service unavailable", errors.New("503 Service Unavailable"), true},
		{"connection refused", errors.New("dial tcp: connection refused"), true},
		{"timeout", errors.New("request timeout"), true},
		{"auth failure", errors.New("401 unauthorized"), false},
		{"bad request", errors.New("400 invalid request body"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.retriable, isRetriableError(tt.err))
		})
	}
}

// retryWithBackoff is exercised through a Planner with no client usage:
// the injected fn never touches the API.
func testPlanner(retry RetryConfig) *Planner {
	p := &Planner{retry: retry}
	if retry.CircuitBreakerEnabled {
		p.circuitBreaker = NewCircuitBreaker(retry.FailureThreshold, retry.SuccessThreshold, retry.OpenTimeout)
	}
	return p
}

func TestRetryWithBackoffSucceedsAfterTransientFailures(t *testing.T) {
	p := testPlanner(RetryConfig{
		MaxRetries:        3,
		InitialBackoff:    time.Millisecond,
		MaxBackoff:        5 * time.Millisecond,
		BackoffMultiplier: 2.0,
		Timeout:           time.Second,
	})

	calls := 0
	err := p.retryWithBackoff(context.Background(), "test", func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("503 service unavailable")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestRetryWithBackoffStopsOnNonRetriable(t *testing.T) {
	p := testPlanner(RetryConfig{
		MaxRetries:        3,
		InitialBackoff:    time.Millisecond,
		MaxBackoff:        5 * time.Millisecond,
		BackoffMultiplier: 2.0,
		Timeout:           time.Second,
	})

	calls := 0
	err := p.retryWithBackoff(context.Background(), "test", func(ctx context.Context) error {
		calls++
		return errors.New("401 unauthorized")
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls, "non-retriable errors must not be retried")
}

func TestRetryWithBackoffExhaustsRetries(t *testing.T) {
	p := testPlanner(RetryConfig{
		MaxRetries:        2,
		InitialBackoff:    time.Millisecond,
		MaxBackoff:        2 * time.Millisecond,
		BackoffMultiplier: 2.0,
		Timeout:           time.Second,
	})

	calls := 0
	sentinel := errors.New("connection reset")
	err := p.retryWithBackoff(context.Background(), "test", func(ctx context.Context) error {
		calls++
		return fmt.Errorf("attempt %d: %w", calls, sentinel)
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, sentinel)
	assert.Equal(t, 3, calls)
}

func TestRetryWithBackoffRespectsOpenCircuit(t *testing.T) {
	p := testPlanner(RetryConfig{
		MaxRetries:            1,
		InitialBackoff:        time.Millisecond,
		MaxBackoff:            time.Millisecond,
		BackoffMultiplier:     1.0,
		Timeout:               time.Second,
		CircuitBreakerEnabled: true,
		FailureThreshold:      1,
		SuccessThreshold:      1,
		OpenTimeout:           time.Minute,
	})
	p.circuitBreaker.RecordFailure()

	calls := 0
	err := p.retryWithBackoff(context.Background(), "test", func(ctx context.Context) error {
		calls++
		return nil
	})
	require.ErrorIs(t, err, ErrCircuitOpen)
	assert.Zero(t, calls, "open circuit must fail fast")
}

func TestDefaultRetryConfig(t *testing.T) {
	cfg := DefaultRetryConfig()
	assert.Equal(t, 3, cfg.MaxRetries)
	assert.True(t, cfg.CircuitBreakerEnabled)
	assert.Positive(t, cfg.RequestsPerSecond)
}
