package replicator

import (
	"context"
	"fmt"
	"log/slog"

	"replicator/internal/dedupe"
	"replicator/internal/fileutil"
	"replicator/internal/generator"
	"replicator/internal/logging"
	"replicator/internal/manifest"
)

// recorder writes run progress to the manifest. A nil store turns every
// method into a no-op; manifest write failures are logged, not returned,
// once the run has begun.
type recorder struct {
	store  *manifest.Store
	logger *slog.Logger
	run    *manifest.Run
}

func newRecorder(store *manifest.Store, logger *slog.Logger) *recorder {
	return &recorder{store: store, logger: logger}
}

func (r *recorder) begin(ctx context.Context, medium, dest string) error {
	if r.store == nil {
		return nil
	}
	if n, err := r.store.ResetStaleRuns(ctx, dest); err != nil {
		r.warn("stale run reset failed", err)
	} else if n > 0 {
		r.logger.Info("marked interrupted runs as failed", logging.Int64("runs", n))
	}
	run, err := r.store.BeginRun(ctx, medium, dest)
	if err != nil {
		return fmt.Errorf("record run: %w", err)
	}
	r.run = run
	return nil
}

func (r *recorder) runID() string {
	if r.run == nil {
		return ""
	}
	return r.run.ID
}

func (r *recorder) result(ctx context.Context, recipeName string, res generator.Result) {
	if r.run == nil {
		return
	}
	artifact := manifest.Artifact{
		RunID:    r.run.ID,
		Recipe:   recipeName,
		Template: res.Job.Template.Name,
		Label:    res.Job.Invocation.Label(),
		Command:  res.Job.Command.String(),
		Path:     res.Job.Output,
		Status:   manifest.ArtifactGenerated,
	}
	if res.Err != nil {
		artifact.Status = manifest.ArtifactFailed
		artifact.Error = res.Err.Error()
	} else if sum, size, err := fileutil.HashFile(res.Job.Output); err == nil {
		artifact.SHA256 = sum
		artifact.Size = size
	} else {
		r.warn("output hash failed", err)
	}
	if err := r.store.RecordArtifact(context.WithoutCancel(ctx), artifact); err != nil {
		r.warn("artifact record failed", err)
	}
}

func (r *recorder) duplicate(ctx context.Context, removal dedupe.Removal) {
	if r.run == nil {
		return
	}
	if _, err := r.store.MarkDuplicate(ctx, r.run.ID, removal.Path, removal.Kept, removal.SHA256); err != nil {
		r.warn("duplicate record failed", err)
	}
}

func (r *recorder) finish(ctx context.Context, status manifest.RunStatus, runErr error) {
	if r.run == nil {
		return
	}
	if err := r.store.FinishRun(ctx, r.run.ID, status, runErr); err != nil {
		r.warn("run record failed", err)
	}
}

func (r *recorder) warn(msg string, err error) {
	logging.WarnWithContext(r.logger, msg, "manifest_write_failed",
		logging.Error(err),
		logging.String(logging.FieldImpact, "the run manifest is incomplete"),
		logging.String(logging.FieldErrorHint, "check the state directory is writable"),
	)
}
