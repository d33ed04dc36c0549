package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/b4platform/b4-backend/pkg/db/models"
	"github.com/b4platform/b4-backend/pkg/logger"
)

const pendingDocumentRetentionDays = 7

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type PendingDocumentCleanupJobParams struct {
	Logger        *logger.Logger
	DB            txRunner
	Repository    pendingDocumentCleanupRepo
	Storage       documentObjectDeleter
	RetentionDays int
}

type pendingDocumentCleanupRepo interface {
	ListPendingBefore(ctx context.Context, cutoff time.Time) ([]models.Document, error)
	DeleteWithTx(tx *gorm.DB, id uuid.UUID) error
}

type documentObjectDeleter interface {
	DeleteObject(ctx context.Context, bucket, object string) error
}

func NewPendingDocumentCleanupJob(params PendingDocumentCleanupJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.DB == nil {
		return nil, fmt.Errorf("db runner required")
	}
	if params.Repository == nil {
		return nil, fmt.Errorf("documents repository required")
	}
	if params.Storage == nil {
		return nil, fmt.Errorf("storage client required")
	}
	retention := params.RetentionDays
	if retention <= 0 {
		retention = pendingDocumentRetentionDays
	}
	return &pendingDocumentCleanupJob{
		logg:          params.Logger,
		db:            params.DB,
		repo:          params.Repository,
		storage:       params.Storage,
		retentionDays: retention,
		now:           time.Now,
	}, nil
}

type pendingDocumentCleanupJob struct {
	logg          *logger.Logger
	db            txRunner
	repo          pendingDocumentCleanupRepo
	storage       documentObjectDeleter
	retentionDays int
	now           func() time.Time
}

func (j *pendingDocumentCleanupJob) Name() string { return "pending-document-cleanup" }

// Run reaps document rows that were presigned but never confirmed. The
// object is removed first in case the client uploaded without confirming;
// DeleteObject treats a missing object as success.
func (j *pendingDocumentCleanupJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC().Add(-time.Duration(j.retentionDays) * 24 * time.Hour)
	var (
		candidates int
		deleted    int64
	)
	err := j.db.WithTx(ctx, func(tx *gorm.DB) error {
		rows, err := j.repo.ListPendingBefore(ctx, cutoff)
		if err != nil {
			return fmt.Errorf("query pending documents: %w", err)
		}
		candidates = len(rows)
		for _, doc := range rows {
			if err := j.storage.DeleteObject(ctx, doc.Bucket, doc.ObjectKey); err != nil {
				return fmt.Errorf("delete document object: %w", err)
			}
			if err := j.repo.DeleteWithTx(tx, doc.ID); err != nil {
				return fmt.Errorf("delete document row: %w", err)
			}
			deleted++
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("pending document cleanup: %w", err)
	}

	logCtx := j.logg.WithFields(ctx, map[string]any{
		"cutoff":         cutoff,
		"retention_days": j.retentionDays,
		"candidates":     candidates,
		"rows_deleted":   deleted,
	})
	j.logg.Info(logCtx, "pending document cleanup complete")
	return nil
}
