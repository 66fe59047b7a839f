// Package storage defines the persistence contract for goals, steps,
// and check-ins, and constructs the SQLite backend that implements it.
package storage

import (
	"context"

	"github.com/goalstride/stride/internal/clock"
	"github.com/goalstride/stride/internal/storage/sqlite"
	"github.com/goalstride/stride/internal/types"
)

// Storage is the durable store for goals, steps, and check-ins. All
// writes are atomic per call: a failed multi-row write leaves nothing
// behind. Reads return fresh copies, never internal handles.
//
// Policy: deletes of unknown IDs are no-ops; reads and updates of
// unknown IDs return types.ErrNotFound.
type Storage interface {
	// Goals
	CreateGoal(ctx context.Context, title string, target *clock.Date) (*types.Goal, error)
	// CreateGoalWithSteps persists a goal and its steps in one
	// transaction. If any step fails, no goal remains.
	CreateGoalWithSteps(ctx context.Context, title string, target *clock.Date, steps []types.StepFields) (*types.Goal, []*types.Step, error)
	GetGoal(ctx context.Context, id string) (*types.Goal, error)
	ListGoals(ctx context.Context) ([]*types.Goal, error)
	DeleteGoal(ctx context.Context, id string) error

	// Steps
	AddStep(ctx context.Context, goalID string, fields types.StepFields) (*types.Step, error)
	// AddSteps inserts a batch atomically; with replace set, the goal's
	// existing steps (and their check-ins) are swapped out in the same
	// transaction.
	AddSteps(ctx context.Context, goalID string, fields []types.StepFields, replace bool) ([]*types.Step, error)
	GetStep(ctx context.Context, id string) (*types.Step, error)
	ListSteps(ctx context.Context, goalID string) ([]*types.Step, error)
	UpdateStep(ctx context.Context, id string, upd types.StepUpdate) (*types.Step, error)
	DeleteStep(ctx context.Context, id string) error

	// Check-ins. The bool result distinguishes success-with-change from
	// success-no-change: recording an already-checked-in day and removing
	// a never-checked-in day are both no-ops, not errors.
	RecordCheckIn(ctx context.Context, stepID string, day clock.Date, note string) (bool, error)
	RemoveCheckIn(ctx context.Context, stepID string, day clock.Date) (bool, error)
	GetCheckIns(ctx context.Context, stepID string) ([]*types.CheckIn, error)

	// Config
	GetConfig(ctx context.Context, key string) (string, error)
	SetConfig(ctx context.Context, key, value string) error

	// Lifecycle
	Close() error
}

// Config holds database configuration.
type Config struct {
	// Path is the SQLite database file path.
	// Special value ":memory:" creates an in-memory database (useful for tests).
	Path string
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Path: ".stride/stride.db",
	}
}

// NewStorage creates a new SQLite storage backend.
func NewStorage(ctx context.Context, cfg *Config) (Storage, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if cfg.Path == "" {
		cfg.Path = DefaultConfig().Path
	}
	return sqlite.New(cfg.Path)
}
