package sqlite

const schema = `
-- Goals table
CREATE TABLE IF NOT EXISTS goals (
    id TEXT PRIMARY KEY,
    title TEXT NOT NULL CHECK(length(title) <= 500),
    target_date TEXT,
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_goals_created_at ON goals(created_at);

-- Steps table
CREATE TABLE IF NOT EXISTS steps (
    id TEXT PRIMARY KEY,
    goal_id TEXT NOT NULL,
    order_index INTEGER NOT NULL DEFAULT 0 CHECK(order_index >= 0),
    title TEXT NOT NULL CHECK(length(title) <= 500),
    detail TEXT NOT NULL DEFAULT '',
    metric TEXT NOT NULL DEFAULT '',
    duration_minutes INTEGER,
    why TEXT NOT NULL DEFAULT '',
    due_date TEXT,
    done INTEGER NOT NULL DEFAULT 0,
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    FOREIGN KEY (goal_id) REFERENCES goals(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_steps_goal ON steps(goal_id);
CREATE INDEX IF NOT EXISTS idx_steps_due_date ON steps(due_date);

-- Check-ins table. The UNIQUE constraint is the write-time guarantee
-- that a step has at most one check-in per calendar date.
CREATE TABLE IF NOT EXISTS checkins (
    id TEXT PRIMARY KEY,
    step_id TEXT NOT NULL,
    day TEXT NOT NULL,
    note TEXT NOT NULL DEFAULT '',
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    UNIQUE(step_id, day),
    FOREIGN KEY (step_id) REFERENCES steps(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_checkins_step ON checkins(step_id);

-- Atomic ID counters, one row per entity prefix ("g", "s")
CREATE TABLE IF NOT EXISTS id_counters (
    prefix TEXT PRIMARY KEY,
    last_id INTEGER NOT NULL DEFAULT 0
);

-- Config key/value storage
CREATE TABLE IF NOT EXISTS config (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL
);
`
