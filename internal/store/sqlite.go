// Package store persists a manifest of pipeline stage runs so operators can
// see what was produced when, and by which invocation.
package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"
)

// Status is the lifecycle state of a stage run.
type Status string

const (
	StatusRunning  Status = "running"
	StatusComplete Status = "complete"
	StatusFailed   Status = "failed"
)

// StageRun is one recorded execution of a pipeline stage.
type StageRun struct {
	ID         string
	Stage      string
	Status     Status
	Detail     string
	StartedAt  time.Time
	FinishedAt *time.Time
}

// Store is the SQLite-backed run manifest.
type Store struct {
	db *sql.DB
}

// Open opens the manifest database at the given path and configures WAL
// mode.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, eris.Wrap(err, "store: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "store: exec %s", pragma)
		}
	}
	return &Store{db: db}, nil
}

const migration = `
CREATE TABLE IF NOT EXISTS stage_runs (
	id          TEXT PRIMARY KEY,
	stage       TEXT NOT NULL,
	status      TEXT NOT NULL DEFAULT 'running',
	detail      TEXT,
	started_at  DATETIME NOT NULL DEFAULT (datetime('now')),
	finished_at DATETIME
);

CREATE INDEX IF NOT EXISTS idx_stage_runs_stage ON stage_runs(stage);
CREATE INDEX IF NOT EXISTS idx_stage_runs_status ON stage_runs(status);
`

func (s *Store) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, migration)
	return eris.Wrap(err, "store: migrate")
}

func (s *Store) Close() error {
	return s.db.Close()
}

// StartStage records the beginning of a stage execution.
func (s *Store) StartStage(ctx context.Context, stage string) (*StageRun, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO stage_runs (id, stage, status, started_at) VALUES (?, ?, ?, ?)`,
		id, stage, string(StatusRunning), now,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "store: insert run for stage %s", stage)
	}

	return &StageRun{ID: id, Stage: stage, Status: StatusRunning, StartedAt: now}, nil
}

// FinishStage marks a run complete with an optional human-readable summary.
func (s *Store) FinishStage(ctx context.Context, runID, detail string) error {
	return s.closeStage(ctx, runID, StatusComplete, detail)
}

// FailStage marks a run failed, recording the error text.
func (s *Store) FailStage(ctx context.Context, runID, detail string) error {
	return s.closeStage(ctx, runID, StatusFailed, detail)
}

func (s *Store) closeStage(ctx context.Context, runID string, status Status, detail string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE stage_runs SET status = ?, detail = ?, finished_at = ? WHERE id = ?`,
		string(status), detail, time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "store: close run %s", runID)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "store: rows affected")
	}
	if n == 0 {
		return eris.Errorf("store: run not found: %s", runID)
	}
	return nil
}

// ListRuns returns the most recent stage runs, newest first. A non-empty
// stage filters to that stage only.
func (s *Store) ListRuns(ctx context.Context, stage string, limit int) ([]StageRun, error) {
	query := `SELECT id, stage, status, detail, started_at, finished_at FROM stage_runs WHERE 1=1`
	var args []any

	if stage != "" {
		query += ` AND stage = ?`
		args = append(args, stage)
	}
	if limit <= 0 {
		limit = 50
	}
	query += ` ORDER BY started_at DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "store: list runs")
	}
	defer rows.Close()

	var runs []StageRun
	for rows.Next() {
		var r StageRun
		var detail sql.NullString
		var finished sql.NullTime
		if err := rows.Scan(&r.ID, &r.Stage, &r.Status, &detail, &r.StartedAt, &finished); err != nil {
			return nil, eris.Wrap(err, "store: scan run")
		}
		r.Detail = detail.String
		if finished.Valid {
			t := finished.Time
			r.FinishedAt = &t
		}
		runs = append(runs, r)
	}
	return runs, eris.Wrap(rows.Err(), "store: list runs iterate")
}
