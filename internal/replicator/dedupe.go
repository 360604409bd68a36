package replicator

import (
	"context"
	"log/slog"
	"path/filepath"

	"replicator/internal/dedupe"
	"replicator/internal/logging"
)

// removeDuplicates deletes identical files from the destination. Only
// removals of files in produced reduce the run's file count; the
// destination may hold files from earlier runs.
func (r *Replicator) removeDuplicates(ctx context.Context, logger *slog.Logger, rec *recorder, summary *Summary, produced map[string]struct{}) error {
	removals, err := dedupe.RemoveDuplicates(ctx, r.dest)
	for _, removal := range removals {
		if _, ok := produced[removal.Path]; ok {
			summary.Files--
		}
		rec.duplicate(ctx, removal)
		logger.Debug("removed duplicate",
			logging.String("path", filepath.Base(removal.Path)),
			logging.String("kept", filepath.Base(removal.Kept)),
		)
	}
	summary.Duplicates = len(removals)
	if err != nil {
		return err
	}
	if len(removals) > 0 {
		logger.Info("removed duplicate files",
			logging.Int("duplicates", len(removals)),
			logging.Int("remaining", summary.Files),
			logging.String(logging.FieldEventType, "dedupe_complete"),
		)
	}
	return nil
}
