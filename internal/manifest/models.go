package manifest

import (
	"database/sql"
	"errors"
	"time"
)

// ErrRunNotFound is returned when no run matches an ID or prefix.
var ErrRunNotFound = errors.New("run not found")

// ErrAmbiguousRun is returned when an ID prefix matches more than one run.
var ErrAmbiguousRun = errors.New("run id prefix is ambiguous")

// RunStatus is the lifecycle state of a run.
type RunStatus string

const (
	RunRunning   RunStatus = "running"
	RunCompleted RunStatus = "completed"
	RunFailed    RunStatus = "failed"
	RunCanceled  RunStatus = "canceled"
)

// ArtifactStatus is the state of one corpus file.
type ArtifactStatus string

const (
	ArtifactGenerated ArtifactStatus = "generated"
	ArtifactFailed    ArtifactStatus = "failed"
	ArtifactDuplicate ArtifactStatus = "duplicate"
)

// Run is one invocation of the replicator.
type Run struct {
	ID         string
	Medium     string
	Dest       string
	Status     RunStatus
	StartedAt  time.Time
	FinishedAt time.Time
	Files      int
	Duplicates int
	Failures   int
	Error      string
}

// Elapsed returns the run duration, measured to now while running.
func (r Run) Elapsed() time.Duration {
	if r.FinishedAt.IsZero() {
		return time.Since(r.StartedAt)
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// Artifact is a corpus file produced (or attempted) during a run.
type Artifact struct {
	ID          int64
	RunID       string
	Recipe      string
	Template    string
	Label       string
	Command     string
	Path        string
	SHA256      string
	Size        int64
	Status      ArtifactStatus
	DuplicateOf string
	Error       string
	CreatedAt   time.Time
}

const runColumns = "id, medium, dest, status, started_at, finished_at, files, duplicates, failures, error_message"

const artifactColumns = "id, run_id, recipe, template, label, command, path, sha256, size, status, duplicate_of, error_message, created_at"

type scanner interface{ Scan(dest ...any) error }

func scanRun(row scanner) (*Run, error) {
	var (
		run        Run
		status     string
		startedRaw string
		finished   sql.NullString
		errMsg     sql.NullString
	)
	if err := row.Scan(&run.ID, &run.Medium, &run.Dest, &status, &startedRaw, &finished,
		&run.Files, &run.Duplicates, &run.Failures, &errMsg); err != nil {
		return nil, err
	}
	run.Status = RunStatus(status)
	run.Error = errMsg.String
	if t, err := parseTimeString(startedRaw); err == nil {
		run.StartedAt = t
	}
	if finished.Valid {
		if t, err := parseTimeString(finished.String); err == nil {
			run.FinishedAt = t
		}
	}
	return &run, nil
}

func scanArtifact(row scanner) (*Artifact, error) {
	var (
		a          Artifact
		status     string
		sum        sql.NullString
		dupOf      sql.NullString
		errMsg     sql.NullString
		createdRaw string
	)
	if err := row.Scan(&a.ID, &a.RunID, &a.Recipe, &a.Template, &a.Label, &a.Command, &a.Path,
		&sum, &a.Size, &status, &dupOf, &errMsg, &createdRaw); err != nil {
		return nil, err
	}
	a.Status = ArtifactStatus(status)
	a.SHA256 = sum.String
	a.DuplicateOf = dupOf.String
	a.Error = errMsg.String
	if t, err := parseTimeString(createdRaw); err == nil {
		a.CreatedAt = t
	}
	return &a, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

// timeLayout is fixed width so timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty time")
	}
	return time.Parse(time.RFC3339Nano, value)
}
