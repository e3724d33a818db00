package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Run statuses.
const (
	StatusCompleted = "completed"
	StatusSkipped   = "skipped"
	StatusFailed    = "failed"
)

// Run sources.
const (
	SourceHook   = "hook"
	SourceManual = "manual"
)

// Run is one worker run, recorded after the run finishes.
type Run struct {
	ID            int64
	SessionID     string
	Project       string
	Source        string
	Status        string
	Reason        string
	IdeasFound    int
	IdeasPromoted int
	SkillsCreated int
	SkillsMerged  int
	Failures      int
	StartedAt     time.Time
	FinishedAt    time.Time
}

// RecordRun inserts a run row, retrying on transient contention from a
// concurrent worker. The inserted id is written back to r.
func RecordRun(ctx context.Context, db *sql.DB, r *Run) error {
	if r.Source == "" {
		r.Source = SourceHook
	}
	return RetryWithBackoff(func() error {
		res, err := db.ExecContext(ctx, `
			INSERT INTO runs (
				session_id, project, source, status, reason,
				ideas_found, ideas_promoted, skills_created, skills_merged, failures,
				started_at, finished_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			r.SessionID, r.Project, r.Source, r.Status, r.Reason,
			r.IdeasFound, r.IdeasPromoted, r.SkillsCreated, r.SkillsMerged, r.Failures,
			r.StartedAt.UTC(), r.FinishedAt.UTC(),
		)
		if err != nil {
			return fmt.Errorf("insert run: %w", err)
		}
		r.ID, _ = res.LastInsertId()
		return nil
	})
}

// ListRuns returns the most recent runs, newest first. A non-empty
// project filters to that project; limit <= 0 defaults to 20.
func ListRuns(ctx context.Context, db *sql.DB, project string, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `
		SELECT id, session_id, project, source, status, reason,
			ideas_found, ideas_promoted, skills_created, skills_merged, failures,
			started_at, finished_at
		FROM runs`
	args := []any{}
	if project != "" {
		query += ` WHERE project = ?`
		args = append(args, project)
	}
	query += ` ORDER BY started_at DESC, id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var runs []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(
			&r.ID, &r.SessionID, &r.Project, &r.Source, &r.Status, &r.Reason,
			&r.IdeasFound, &r.IdeasPromoted, &r.SkillsCreated, &r.SkillsMerged, &r.Failures,
			&r.StartedAt, &r.FinishedAt,
		); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}
