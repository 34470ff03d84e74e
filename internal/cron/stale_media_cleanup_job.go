package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/coverline/coverline-backend/pkg/db/models"
	"github.com/coverline/coverline-backend/pkg/logger"
)

const staleMediaRetentionDays = 7

// StaleMediaCleanupJobParams configure the cleanup job.
type StaleMediaCleanupJobParams struct {
	Logger        *logger.Logger
	Repo          staleMediaRepo
	Objects       objectRemover
	Bucket        string
	RetentionDays int
}

type staleMediaRepo interface {
	ListPendingBefore(ctx context.Context, cutoff time.Time) ([]models.Media, error)
	HardDelete(ctx context.Context, id uuid.UUID) error
}

type objectRemover interface {
	DeleteObject(ctx context.Context, bucket, object string) error
}

// NewStaleMediaCleanupJob removes pending uploads that were presigned but
// never confirmed. The bucket object is removed best effort; a row whose
// object delete fails is kept for the next cycle.
func NewStaleMediaCleanupJob(params StaleMediaCleanupJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Repo == nil {
		return nil, fmt.Errorf("media repository required")
	}
	if params.Bucket == "" {
		return nil, fmt.Errorf("bucket required")
	}
	retention := params.RetentionDays
	if retention <= 0 {
		retention = staleMediaRetentionDays
	}
	return &staleMediaCleanupJob{
		logg:          params.Logger,
		repo:          params.Repo,
		objects:       params.Objects,
		bucket:        params.Bucket,
		retentionDays: retention,
		now:           time.Now,
	}, nil
}

type staleMediaCleanupJob struct {
	logg          *logger.Logger
	repo          staleMediaRepo
	objects       objectRemover
	bucket        string
	retentionDays int
	now           func() time.Time
}

func (j *staleMediaCleanupJob) Name() string { return "stale-media-cleanup" }

func (j *staleMediaCleanupJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC().Add(-time.Duration(j.retentionDays) * 24 * time.Hour)

	rows, err := j.repo.ListPendingBefore(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("query stale media: %w", err)
	}

	var deleted, skipped int
	for i := range rows {
		if j.objects != nil {
			if err := j.objects.DeleteObject(ctx, j.bucket, rows[i].GCSKey); err != nil {
				skipped++
				j.logg.Warn(j.logg.WithFields(ctx, map[string]any{
					"media_id": rows[i].ID,
					"error":    err.Error(),
				}), "stale media object delete failed")
				continue
			}
		}
		if err := j.repo.HardDelete(ctx, rows[i].ID); err != nil {
			return fmt.Errorf("delete media row: %w", err)
		}
		deleted++
	}

	logCtx := j.logg.WithFields(ctx, map[string]any{
		"cutoff":         cutoff,
		"retention_days": j.retentionDays,
		"candidates":     len(rows),
		"deleted":        deleted,
		"skipped":        skipped,
	})
	j.logg.Info(logCtx, "stale media cleanup complete")
	return nil
}
