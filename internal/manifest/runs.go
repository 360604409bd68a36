package manifest

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// BeginRun inserts a running run and returns it.
func (s *Store) BeginRun(ctx context.Context, medium, dest string) (*Run, error) {
	run := &Run{
		ID:        uuid.NewString(),
		Medium:    medium,
		Dest:      dest,
		Status:    RunRunning,
		StartedAt: time.Now().UTC(),
	}
	if _, err := s.exec(ctx,
		`INSERT INTO runs (id, medium, dest, status, started_at) VALUES (?, ?, ?, ?, ?)`,
		run.ID, run.Medium, run.Dest, run.Status, formatTime(run.StartedAt),
	); err != nil {
		return nil, fmt.Errorf("insert run: %w", err)
	}
	return run, nil
}

// FinishRun sets the final status and refreshes the counters from the
// recorded artifacts.
func (s *Store) FinishRun(ctx context.Context, id string, status RunStatus, runErr error) error {
	var errMsg string
	if runErr != nil {
		errMsg = runErr.Error()
	}
	res, err := s.exec(ctx, `UPDATE runs SET
		status = ?,
		finished_at = ?,
		error_message = ?,
		files = (SELECT COUNT(1) FROM artifacts WHERE run_id = runs.id AND status = ?),
		duplicates = (SELECT COUNT(1) FROM artifacts WHERE run_id = runs.id AND status = ?),
		failures = (SELECT COUNT(1) FROM artifacts WHERE run_id = runs.id AND status = ?)
		WHERE id = ?`,
		status, formatTime(time.Now()), nullableString(errMsg),
		ArtifactGenerated, ArtifactDuplicate, ArtifactFailed, id,
	)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	return nil
}

// GetRun returns the run whose ID equals or starts with idOrPrefix.
func (s *Store) GetRun(ctx context.Context, idOrPrefix string) (*Run, error) {
	idOrPrefix = strings.TrimSpace(idOrPrefix)
	if idOrPrefix == "" {
		return nil, ErrRunNotFound
	}
	run, err := scanRun(s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, idOrPrefix))
	if err == nil {
		return run, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get run: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+runColumns+` FROM runs WHERE substr(id, 1, ?) = ? LIMIT 2`, len(idOrPrefix), idOrPrefix)
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	defer rows.Close()
	var matches []*Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		matches = append(matches, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, idOrPrefix)
	case 1:
		return matches[0], nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrAmbiguousRun, idOrPrefix)
	}
}

// ListRuns returns the most recent runs first. limit <= 0 returns all runs.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]*Run, error) {
	query := `SELECT ` + runColumns + ` FROM runs ORDER BY started_at DESC, id`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// ResetStaleRuns marks runs still flagged as running as failed. It is called
// after acquiring the destination lock, so any such run belonged to a
// process that exited without finishing.
func (s *Store) ResetStaleRuns(ctx context.Context, dest string) (int64, error) {
	res, err := s.exec(ctx,
		`UPDATE runs SET status = ?, finished_at = ?, error_message = ? WHERE status = ? AND dest = ?`,
		RunFailed, formatTime(time.Now()), "interrupted", RunRunning, dest,
	)
	if err != nil {
		return 0, fmt.Errorf("reset stale runs: %w", err)
	}
	return res.RowsAffected()
}
