package manifest

import (
	"context"
	"fmt"
	"time"
)

// RecordArtifact stores a corpus file outcome. Recording the same path for a
// run again replaces the earlier row.
func (s *Store) RecordArtifact(ctx context.Context, a Artifact) error {
	if a.RunID == "" || a.Path == "" {
		return fmt.Errorf("record artifact: run id and path are required")
	}
	if a.Status == "" {
		a.Status = ArtifactGenerated
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now()
	}
	_, err := s.exec(ctx, `INSERT INTO artifacts
		(run_id, recipe, template, label, command, path, sha256, size, status, duplicate_of, error_message, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(run_id, path) DO UPDATE SET
			recipe = excluded.recipe,
			template = excluded.template,
			label = excluded.label,
			command = excluded.command,
			sha256 = excluded.sha256,
			size = excluded.size,
			status = excluded.status,
			duplicate_of = excluded.duplicate_of,
			error_message = excluded.error_message`,
		a.RunID, a.Recipe, a.Template, a.Label, a.Command, a.Path,
		nullableString(a.SHA256), a.Size, a.Status, nullableString(a.DuplicateOf),
		nullableString(a.Error), formatTime(a.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("record artifact: %w", err)
	}
	return nil
}

// MarkDuplicate flags path as a removed duplicate of kept. It returns false
// when no artifact with that path was recorded for the run.
func (s *Store) MarkDuplicate(ctx context.Context, runID, path, kept, sha256 string) (bool, error) {
	res, err := s.exec(ctx,
		`UPDATE artifacts SET status = ?, duplicate_of = ?, sha256 = ? WHERE run_id = ? AND path = ?`,
		ArtifactDuplicate, kept, nullableString(sha256), runID, path,
	)
	if err != nil {
		return false, fmt.Errorf("mark duplicate: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Artifacts returns the artifacts of a run in the order they were recorded.
func (s *Store) Artifacts(ctx context.Context, runID string) ([]*Artifact, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+artifactColumns+` FROM artifacts WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("list artifacts: %w", err)
	}
	defer rows.Close()

	var out []*Artifact
	for rows.Next() {
		a, err := scanArtifact(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
