package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/alexanderramin/taskflow/internal/db"
	"github.com/alexanderramin/taskflow/internal/domain"
)

// SQLiteRunRepo implements RunRepo using a SQLite database.
type SQLiteRunRepo struct {
	db db.DBTX
}

// NewSQLiteRunRepo creates a new SQLiteRunRepo.
func NewSQLiteRunRepo(conn db.DBTX) *SQLiteRunRepo {
	return &SQLiteRunRepo{db: conn}
}

const runColumns = `id, session_id, sprint_id, project_id, action, operator_id, state, error,
	notified, started_at, finished_at`

func (r *SQLiteRunRepo) Create(ctx context.Context, run *domain.MigrationRun) error {
	query := `INSERT INTO migration_runs (` + runColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		run.ID,
		run.SessionID,
		run.SprintID,
		run.ProjectID,
		run.Action,
		run.OperatorID,
		run.State,
		run.Error,
		run.Notified,
		formatTime(run.StartedAt),
		formatTime(run.FinishedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting migration run: %w", err)
	}

	for i := range run.Steps {
		step := &run.Steps[i]
		step.Seq = i + 1
		ids, err := encodeIDs(step.TaskIDs)
		if err != nil {
			return err
		}
		_, err = r.db.ExecContext(ctx, `INSERT INTO migration_steps
			(run_id, seq, kind, target_sprint_id, task_ids, status, error)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			run.ID, step.Seq, step.Kind, step.TargetSprintID, ids, step.Status, step.Error,
		)
		if err != nil {
			return fmt.Errorf("inserting migration step %d: %w", step.Seq, err)
		}
	}
	return nil
}

func (r *SQLiteRunRepo) GetByID(ctx context.Context, id string) (*domain.MigrationRun, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM migration_runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("migration run %s: %w", id, domain.ErrNotFound)
		}
		return nil, err
	}
	if err := r.loadSteps(ctx, run); err != nil {
		return nil, err
	}
	return run, nil
}

func (r *SQLiteRunRepo) ListRecent(ctx context.Context, limit int) ([]*domain.MigrationRun, error) {
	if limit <= 0 {
		limit = 20
	}
	return r.list(ctx, `SELECT `+runColumns+` FROM migration_runs
		ORDER BY started_at DESC, id LIMIT ?`, limit)
}

func (r *SQLiteRunRepo) ListBySprint(ctx context.Context, sprintID string) ([]*domain.MigrationRun, error) {
	return r.list(ctx, `SELECT `+runColumns+` FROM migration_runs
		WHERE sprint_id = ? ORDER BY started_at DESC, id`, sprintID)
}

func (r *SQLiteRunRepo) SetNotified(ctx context.Context, id string, count int) error {
	res, err := r.db.ExecContext(ctx, `UPDATE migration_runs SET notified = ? WHERE id = ?`, count, id)
	if err != nil {
		return fmt.Errorf("updating migration run: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating migration run: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("migration run %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// list reads every run before loading steps so only one result set is open
// at a time.
func (r *SQLiteRunRepo) list(ctx context.Context, query string, args ...any) ([]*domain.MigrationRun, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing migration runs: %w", err)
	}

	var runs []*domain.MigrationRun
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("listing migration runs: %w", err)
	}
	rows.Close()

	for _, run := range runs {
		if err := r.loadSteps(ctx, run); err != nil {
			return nil, err
		}
	}
	return runs, nil
}

func (r *SQLiteRunRepo) loadSteps(ctx context.Context, run *domain.MigrationRun) error {
	rows, err := r.db.QueryContext(ctx, `SELECT seq, kind, target_sprint_id, task_ids, status, error
		FROM migration_steps WHERE run_id = ? ORDER BY seq`, run.ID)
	if err != nil {
		return fmt.Errorf("listing migration steps: %w", err)
	}
	defer rows.Close()

	run.Steps = nil
	for rows.Next() {
		var step domain.MigrationStep
		var ids string
		if err := rows.Scan(&step.Seq, &step.Kind, &step.TargetSprintID, &ids, &step.Status, &step.Error); err != nil {
			return fmt.Errorf("scanning migration step: %w", err)
		}
		if step.TaskIDs, err = decodeIDs(ids); err != nil {
			return err
		}
		run.Steps = append(run.Steps, step)
	}
	return rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (*domain.MigrationRun, error) {
	var run domain.MigrationRun
	var startedAt, finishedAt string

	err := s.Scan(
		&run.ID, &run.SessionID, &run.SprintID, &run.ProjectID,
		&run.Action, &run.OperatorID, &run.State, &run.Error,
		&run.Notified, &startedAt, &finishedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning migration run: %w", err)
	}

	if run.StartedAt, err = parseTime(startedAt, "started_at"); err != nil {
		return nil, err
	}
	if run.FinishedAt, err = parseTime(finishedAt, "finished_at"); err != nil {
		return nil, err
	}
	return &run, nil
}
