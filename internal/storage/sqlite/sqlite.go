// Package sqlite implements the storage contract on an embedded SQLite
// database. It uses the pure-Go ncruces driver, so no cgo is required.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/goalstride/stride/internal/clock"
	"github.com/goalstride/stride/internal/types"
)

// ID prefixes for store-assigned identifiers ("g-1", "s-12").
const (
	goalPrefix = "g"
	stepPrefix = "s"
)

// Store implements the storage interface using SQLite.
type Store struct {
	db *sql.DB
}

// New creates a new SQLite storage backend at the given path. The
// special path ":memory:" opens an in-memory database for tests.
func New(path string) (*Store, error) {
	dsn := "file:"
	if path == ":memory:" {
		dsn += ":memory:?"
	} else {
		// Ensure directory exists
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create directory: %w", err)
			}
		}
		dsn += path + "?_pragma=journal_mode(WAL)&"
	}
	// busy_timeout keeps accidental concurrent writers queued instead of
	// failing; foreign_keys enforces the goal→step→checkin cascade.
	dsn += "_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)&_timefmt=sqlite"

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if path == ":memory:" {
		// Each pooled connection would otherwise get its own empty database.
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// execer covers *sql.Conn, *sql.Tx, and *sql.DB for shared helpers.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// nextID atomically increments the counter for a prefix and returns the
// formatted ID. Must run inside a write transaction so concurrent
// writers cannot observe the same counter value.
func nextID(ctx context.Context, q execer, prefix string) (string, error) {
	var n int
	err := q.QueryRowContext(ctx, `
		INSERT INTO id_counters (prefix, last_id) VALUES (?, 1)
		ON CONFLICT(prefix) DO UPDATE SET last_id = last_id + 1
		RETURNING last_id
	`, prefix).Scan(&n)
	if err != nil {
		return "", fmt.Errorf("failed to generate next ID for prefix %s: %w", prefix, err)
	}
	return fmt.Sprintf("%s-%d", prefix, n), nil
}

// immediateTx acquires a dedicated connection and starts an IMMEDIATE
// transaction. SQLite's default DEFERRED mode would take the write lock
// lazily; IMMEDIATE takes it up front, which serializes ID generation
// and multi-row writes across accidental concurrent callers.
//
// database/sql's BeginTx cannot express transaction modes, so we run
// raw BEGIN/COMMIT/ROLLBACK on a pinned connection.
func (s *Store) immediateTx(ctx context.Context, fn func(conn *sql.Conn) error) error {
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("failed to acquire connection: %w", err)
	}
	defer conn.Close()

	if _, err := conn.ExecContext(ctx, "BEGIN IMMEDIATE"); err != nil {
		return fmt.Errorf("failed to begin immediate transaction: %w", err)
	}

	committed := false
	defer func() {
		if !committed {
			// Use context.Background() so rollback happens even if ctx is canceled.
			_, _ = conn.ExecContext(context.Background(), "ROLLBACK")
		}
	}()

	if err := fn(conn); err != nil {
		return err
	}

	if _, err := conn.ExecContext(ctx, "COMMIT"); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	committed = true
	return nil
}

// dateArg converts an optional date to its nullable TEXT representation.
func dateArg(d *clock.Date) interface{} {
	if d == nil {
		return nil
	}
	return d.String()
}

// scanDate converts a nullable TEXT column back to an optional date.
func scanDate(s sql.NullString) (*clock.Date, error) {
	if !s.Valid || s.String == "" {
		return nil, nil
	}
	d, err := clock.ParseDate(s.String)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// CreateGoal creates a goal with no steps.
func (s *Store) CreateGoal(ctx context.Context, title string, target *clock.Date) (*types.Goal, error) {
	goal, _, err := s.CreateGoalWithSteps(ctx, title, target, nil)
	return goal, err
}

// CreateGoalWithSteps persists a goal and its steps in one transaction.
// If any insert fails the transaction rolls back, so no orphan goal is
// ever observable.
func (s *Store) CreateGoalWithSteps(ctx context.Context, title string, target *clock.Date, fields []types.StepFields) (*types.Goal, []*types.Step, error) {
	goal := &types.Goal{
		Title:      strings.TrimSpace(title),
		TargetDate: target,
		CreatedAt:  time.Now().UTC(),
	}
	if err := goal.Validate(); err != nil {
		return nil, nil, err
	}

	var steps []*types.Step
	err := s.immediateTx(ctx, func(conn *sql.Conn) error {
		id, err := nextID(ctx, conn, goalPrefix)
		if err != nil {
			return err
		}
		goal.ID = id

		_, err = conn.ExecContext(ctx, `
			INSERT INTO goals (id, title, target_date, created_at)
			VALUES (?, ?, ?, ?)
		`, goal.ID, goal.Title, dateArg(goal.TargetDate), goal.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to insert goal: %w", err)
		}

		steps, err = insertSteps(ctx, conn, goal.ID, fields)
		if err != nil {
			return fmt.Errorf("%w: %v", types.ErrPartialFailure, err)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return goal, steps, nil
}

// insertSteps validates and inserts a batch of steps for a goal.
// Runs inside the caller's transaction.
func insertSteps(ctx context.Context, conn *sql.Conn, goalID string, fields []types.StepFields) ([]*types.Step, error) {
	steps := make([]*types.Step, 0, len(fields))
	now := time.Now().UTC()
	for _, f := range fields {
		step := &types.Step{
			GoalID:          goalID,
			OrderIndex:      f.OrderIndex,
			Title:           strings.TrimSpace(f.Title),
			Detail:          strings.TrimSpace(f.Detail),
			Metric:          strings.TrimSpace(f.Metric),
			DurationMinutes: f.DurationMinutes,
			Why:             strings.TrimSpace(f.Why),
			DueDate:         f.DueDate,
			Done:            f.Done,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		if err := step.Validate(); err != nil {
			return nil, err
		}

		id, err := nextID(ctx, conn, stepPrefix)
		if err != nil {
			return nil, err
		}
		step.ID = id

		_, err = conn.ExecContext(ctx, `
			INSERT INTO steps (
				id, goal_id, order_index, title, detail, metric,
				duration_minutes, why, due_date, done, created_at, updated_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`,
			step.ID, step.GoalID, step.OrderIndex, step.Title, step.Detail,
			step.Metric, step.DurationMinutes, step.Why, dateArg(step.DueDate),
			step.Done, step.CreatedAt, step.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to insert step: %w", err)
		}
		steps = append(steps, step)
	}
	return steps, nil
}

// GetGoal retrieves a goal by ID.
func (s *Store) GetGoal(ctx context.Context, id string) (*types.Goal, error) {
	var goal types.Goal
	var target sql.NullString

	err := s.db.QueryRowContext(ctx, `
		SELECT id, title, target_date, created_at
		FROM goals WHERE id = ?
	`, id).Scan(&goal.ID, &goal.Title, &target, &goal.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, types.NotFoundf("goal %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get goal: %w", err)
	}

	if goal.TargetDate, err = scanDate(target); err != nil {
		return nil, fmt.Errorf("failed to parse target date: %w", err)
	}
	return &goal, nil
}

// ListGoals returns all goals, newest first.
func (s *Store) ListGoals(ctx context.Context) ([]*types.Goal, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, target_date, created_at
		FROM goals
		ORDER BY created_at DESC, id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list goals: %w", err)
	}
	defer rows.Close()

	var goals []*types.Goal
	for rows.Next() {
		var goal types.Goal
		var target sql.NullString
		if err := rows.Scan(&goal.ID, &goal.Title, &target, &goal.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan goal: %w", err)
		}
		if goal.TargetDate, err = scanDate(target); err != nil {
			return nil, fmt.Errorf("failed to parse target date: %w", err)
		}
		goals = append(goals, &goal)
	}
	return goals, rows.Err()
}

// DeleteGoal removes a goal, its steps, and their check-in histories in
// one transaction. Deleting an unknown ID is a no-op.
func (s *Store) DeleteGoal(ctx context.Context, id string) error {
	return s.immediateTx(ctx, func(conn *sql.Conn) error {
		// Foreign keys handle steps and check-ins via ON DELETE CASCADE.
		if _, err := conn.ExecContext(ctx, `DELETE FROM goals WHERE id = ?`, id); err != nil {
			return fmt.Errorf("failed to delete goal: %w", err)
		}
		return nil
	})
}

// AddStep adds a single step to a goal.
func (s *Store) AddStep(ctx context.Context, goalID string, fields types.StepFields) (*types.Step, error) {
	steps, err := s.AddSteps(ctx, goalID, []types.StepFields{fields}, false)
	if err != nil {
		return nil, err
	}
	return steps[0], nil
}

// AddSteps inserts a batch of steps atomically. With replace set, the
// goal's existing steps (and, via cascade, their check-ins) are removed
// in the same transaction before the new batch is inserted.
func (s *Store) AddSteps(ctx context.Context, goalID string, fields []types.StepFields, replace bool) ([]*types.Step, error) {
	var steps []*types.Step
	err := s.immediateTx(ctx, func(conn *sql.Conn) error {
		var exists bool
		err := conn.QueryRowContext(ctx,
			`SELECT EXISTS(SELECT 1 FROM goals WHERE id = ?)`, goalID).Scan(&exists)
		if err != nil {
			return fmt.Errorf("failed to check goal: %w", err)
		}
		if !exists {
			return types.NotFoundf("goal %s", goalID)
		}

		if replace {
			if _, err := conn.ExecContext(ctx, `DELETE FROM steps WHERE goal_id = ?`, goalID); err != nil {
				return fmt.Errorf("failed to replace steps: %w", err)
			}
		}

		steps, err = insertSteps(ctx, conn, goalID, fields)
		return err
	})
	if err != nil {
		return nil, err
	}
	return steps, nil
}

const stepColumns = `id, goal_id, order_index, title, detail, metric,
       duration_minutes, why, due_date, done, created_at, updated_at`

// scanStep reads one step row from either *sql.Row or *sql.Rows.
func scanStep(scan func(dest ...interface{}) error) (*types.Step, error) {
	var step types.Step
	var duration sql.NullInt64
	var due sql.NullString

	err := scan(
		&step.ID, &step.GoalID, &step.OrderIndex, &step.Title, &step.Detail,
		&step.Metric, &duration, &step.Why, &due, &step.Done,
		&step.CreatedAt, &step.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if duration.Valid {
		mins := int(duration.Int64)
		step.DurationMinutes = &mins
	}
	if step.DueDate, err = scanDate(due); err != nil {
		return nil, fmt.Errorf("failed to parse due date: %w", err)
	}
	return &step, nil
}

// GetStep retrieves a step by ID.
func (s *Store) GetStep(ctx context.Context, id string) (*types.Step, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+stepColumns+` FROM steps WHERE id = ?`, id)
	step, err := scanStep(row.Scan)
	if err == sql.ErrNoRows {
		return nil, types.NotFoundf("step %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get step: %w", err)
	}
	return step, nil
}

// ListSteps returns a goal's steps ordered by order_index, then due
// date with undated steps last.
func (s *Store) ListSteps(ctx context.Context, goalID string) ([]*types.Step, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+stepColumns+`
		FROM steps
		WHERE goal_id = ?
		ORDER BY order_index, COALESCE(due_date, '9999-12-31'), id
	`, goalID)
	if err != nil {
		return nil, fmt.Errorf("failed to list steps: %w", err)
	}
	defer rows.Close()

	var steps []*types.Step
	for rows.Next() {
		step, err := scanStep(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan step: %w", err)
		}
		steps = append(steps, step)
	}
	return steps, rows.Err()
}

// UpdateStep merges only the provided fields into an existing step.
func (s *Store) UpdateStep(ctx context.Context, id string, upd types.StepUpdate) (*types.Step, error) {
	if upd.Empty() {
		return s.GetStep(ctx, id)
	}

	setClauses := []string{"updated_at = ?"}
	args := []interface{}{time.Now().UTC()}

	if upd.OrderIndex != nil {
		if *upd.OrderIndex < 0 {
			return nil, types.Validationf("order_index cannot be negative")
		}
		setClauses = append(setClauses, "order_index = ?")
		args = append(args, *upd.OrderIndex)
	}
	if upd.Title != nil {
		title := strings.TrimSpace(*upd.Title)
		if title == "" {
			return nil, types.Validationf("step title is required")
		}
		if len(title) > types.MaxTitleLen {
			return nil, types.Validationf("step title must be %d characters or less (got %d)", types.MaxTitleLen, len(title))
		}
		setClauses = append(setClauses, "title = ?")
		args = append(args, title)
	}
	if upd.Detail != nil {
		setClauses = append(setClauses, "detail = ?")
		args = append(args, strings.TrimSpace(*upd.Detail))
	}
	if upd.Metric != nil {
		setClauses = append(setClauses, "metric = ?")
		args = append(args, strings.TrimSpace(*upd.Metric))
	}
	if upd.DurationMinutes != nil {
		if *upd.DurationMinutes < 0 {
			return nil, types.Validationf("duration_minutes cannot be negative")
		}
		setClauses = append(setClauses, "duration_minutes = ?")
		args = append(args, *upd.DurationMinutes)
	}
	if upd.Why != nil {
		setClauses = append(setClauses, "why = ?")
		args = append(args, strings.TrimSpace(*upd.Why))
	}
	if upd.DueDate != nil {
		setClauses = append(setClauses, "due_date = ?")
		args = append(args, upd.DueDate.String())
	} else if upd.ClearDueDate {
		setClauses = append(setClauses, "due_date = NULL")
	}
	if upd.Done != nil {
		setClauses = append(setClauses, "done = ?")
		args = append(args, *upd.Done)
	}
	args = append(args, id)

	query := fmt.Sprintf("UPDATE steps SET %s WHERE id = ?", strings.Join(setClauses, ", "))
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to update step: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return nil, types.NotFoundf("step %s", id)
	}

	return s.GetStep(ctx, id)
}

// DeleteStep removes a step and its check-ins. Unknown IDs are no-ops.
func (s *Store) DeleteStep(ctx context.Context, id string) error {
	return s.immediateTx(ctx, func(conn *sql.Conn) error {
		if _, err := conn.ExecContext(ctx, `DELETE FROM steps WHERE id = ?`, id); err != nil {
			return fmt.Errorf("failed to delete step: %w", err)
		}
		return nil
	})
}

// RecordCheckIn marks a step's activity for a calendar date. Returns
// false with no error when the date is already checked in.
func (s *Store) RecordCheckIn(ctx context.Context, stepID string, day clock.Date, note string) (bool, error) {
	changed := false
	err := s.immediateTx(ctx, func(conn *sql.Conn) error {
		var exists bool
		err := conn.QueryRowContext(ctx,
			`SELECT EXISTS(SELECT 1 FROM steps WHERE id = ?)`, stepID).Scan(&exists)
		if err != nil {
			return fmt.Errorf("failed to check step: %w", err)
		}
		if !exists {
			return types.NotFoundf("step %s", stepID)
		}

		res, err := conn.ExecContext(ctx, `
			INSERT INTO checkins (id, step_id, day, note, created_at)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT(step_id, day) DO NOTHING
		`, uuid.NewString(), stepID, day.String(), strings.TrimSpace(note), time.Now().UTC())
		if err != nil {
			return fmt.Errorf("failed to record check-in: %w", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to check insert result: %w", err)
		}
		changed = affected > 0
		return nil
	})
	return changed, err
}

// RemoveCheckIn undoes a check-in for a date. Returns false with no
// error when that date was never checked in.
func (s *Store) RemoveCheckIn(ctx context.Context, stepID string, day clock.Date) (bool, error) {
	changed := false
	err := s.immediateTx(ctx, func(conn *sql.Conn) error {
		var exists bool
		err := conn.QueryRowContext(ctx,
			`SELECT EXISTS(SELECT 1 FROM steps WHERE id = ?)`, stepID).Scan(&exists)
		if err != nil {
			return fmt.Errorf("failed to check step: %w", err)
		}
		if !exists {
			return types.NotFoundf("step %s", stepID)
		}

		res, err := conn.ExecContext(ctx,
			`DELETE FROM checkins WHERE step_id = ? AND day = ?`, stepID, day.String())
		if err != nil {
			return fmt.Errorf("failed to remove check-in: %w", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to check delete result: %w", err)
		}
		changed = affected > 0
		return nil
	})
	return changed, err
}

// GetCheckIns returns a step's check-ins ordered by day ascending.
func (s *Store) GetCheckIns(ctx context.Context, stepID string) ([]*types.CheckIn, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM steps WHERE id = ?)`, stepID).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("failed to check step: %w", err)
	}
	if !exists {
		return nil, types.NotFoundf("step %s", stepID)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, step_id, day, note, created_at
		FROM checkins
		WHERE step_id = ?
		ORDER BY day ASC
	`, stepID)
	if err != nil {
		return nil, fmt.Errorf("failed to get check-ins: %w", err)
	}
	defer rows.Close()

	var checkins []*types.CheckIn
	for rows.Next() {
		var ci types.CheckIn
		var day string
		if err := rows.Scan(&ci.ID, &ci.StepID, &day, &ci.Note, &ci.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan check-in: %w", err)
		}
		if ci.Day, err = clock.ParseDate(day); err != nil {
			return nil, fmt.Errorf("failed to parse check-in day: %w", err)
		}
		checkins = append(checkins, &ci)
	}
	return checkins, rows.Err()
}

// GetConfig gets a configuration value from the config table.
func (s *Store) GetConfig(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM config WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return value, err
}

// SetConfig sets a configuration value in the config table.
func (s *Store) SetConfig(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO config (key, value) VALUES (?, ?)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value
	`, key, value)
	return err
}
