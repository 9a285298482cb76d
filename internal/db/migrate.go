package db

import (
	"database/sql"
	"fmt"
	"strings"
)

// Migrate applies the journal schema. Every statement is idempotent so it
// runs on each open.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			// ALTER TABLE ADD COLUMN has no IF NOT EXISTS form.
			if strings.Contains(err.Error(), "duplicate column name") {
				continue
			}
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS migration_runs (
		id          TEXT PRIMARY KEY,
		session_id  TEXT NOT NULL,
		sprint_id   TEXT NOT NULL,
		project_id  TEXT NOT NULL,
		action      TEXT NOT NULL CHECK(action IN ('cancel','delete')),
		operator_id TEXT NOT NULL,
		state       TEXT NOT NULL
		            CHECK(state IN ('succeeded','partially_failed','failed')),
		error       TEXT NOT NULL DEFAULT '',
		started_at  TEXT NOT NULL,
		finished_at TEXT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS migration_steps (
		run_id           TEXT NOT NULL REFERENCES migration_runs(id) ON DELETE CASCADE,
		seq              INTEGER NOT NULL,
		kind             TEXT NOT NULL
		                 CHECK(kind IN ('backlog','sprint','keep','transition')),
		target_sprint_id TEXT NOT NULL DEFAULT '',
		task_ids         TEXT NOT NULL DEFAULT '[]',
		status           TEXT NOT NULL CHECK(status IN ('ok','failed','skipped')),
		error            TEXT NOT NULL DEFAULT '',
		PRIMARY KEY (run_id, seq)
	)`,

	`CREATE INDEX IF NOT EXISTS idx_runs_sprint ON migration_runs(sprint_id)`,
	`CREATE INDEX IF NOT EXISTS idx_runs_started ON migration_runs(started_at)`,

	`ALTER TABLE migration_runs ADD COLUMN notified INTEGER NOT NULL DEFAULT 0`,
}
