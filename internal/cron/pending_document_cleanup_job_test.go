package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/b4platform/b4-backend/pkg/db/models"
	"github.com/b4platform/b4-backend/pkg/logger"
)

func TestPendingDocumentCleanupDeletesStaleRows(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 2, 3, 12, 0, 0, 0, time.UTC)
	rows := []models.Document{
		{ID: uuid.New(), Bucket: "journey-documents", ObjectKey: "journeys/a/1/deck.pdf"},
		{ID: uuid.New(), Bucket: "journey-documents", ObjectKey: "journeys/b/2/notes.pdf"},
	}
	repo := &fakePendingDocumentRepo{rows: rows}
	storage := &fakeObjectDeleter{}
	job := newPendingDocumentCleanupJob(t, repo, storage)
	job.now = func() time.Time { return now }

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	expectedCutoff := now.UTC().Add(-pendingDocumentRetentionDays * 24 * time.Hour)
	if !repo.lastCutoff.Equal(expectedCutoff) {
		t.Fatalf("expected cutoff %s got %s", expectedCutoff, repo.lastCutoff)
	}
	if len(repo.deletedIDs) != len(rows) {
		t.Fatalf("expected %d rows deleted, got %d", len(rows), len(repo.deletedIDs))
	}
	if len(storage.deleted) != len(rows) {
		t.Fatalf("expected %d objects deleted, got %d", len(rows), len(storage.deleted))
	}
}

func TestPendingDocumentCleanupPropagatesErrors(t *testing.T) {
	t.Parallel()

	repo := &fakePendingDocumentRepo{listErr: errors.New("list failure")}
	job := newPendingDocumentCleanupJob(t, repo, &fakeObjectDeleter{})

	if err := job.Run(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}

func TestPendingDocumentCleanupStopsOnStorageError(t *testing.T) {
	t.Parallel()

	repo := &fakePendingDocumentRepo{rows: []models.Document{{ID: uuid.New()}}}
	storage := &fakeObjectDeleter{err: errors.New("storage down")}
	job := newPendingDocumentCleanupJob(t, repo, storage)

	if err := job.Run(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	if len(repo.deletedIDs) != 0 {
		t.Fatal("row must not be deleted when the object removal failed")
	}
}

func newPendingDocumentCleanupJob(t *testing.T, repo *fakePendingDocumentRepo, storage *fakeObjectDeleter) *pendingDocumentCleanupJob {
	t.Helper()
	jobIface, err := NewPendingDocumentCleanupJob(PendingDocumentCleanupJobParams{
		Logger:     logger.New(logger.Options{ServiceName: "test"}),
		DB:         cronFakeTxRunner{},
		Repository: repo,
		Storage:    storage,
	})
	if err != nil {
		t.Fatalf("NewPendingDocumentCleanupJob: %v", err)
	}
	job, ok := jobIface.(*pendingDocumentCleanupJob)
	if !ok {
		t.Fatalf("expected pendingDocumentCleanupJob, got %T", jobIface)
	}
	return job
}

type fakePendingDocumentRepo struct {
	rows       []models.Document
	listErr    error
	lastCutoff time.Time
	deletedIDs []uuid.UUID
}

func (f *fakePendingDocumentRepo) ListPendingBefore(_ context.Context, cutoff time.Time) ([]models.Document, error) {
	f.lastCutoff = cutoff
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.rows, nil
}

func (f *fakePendingDocumentRepo) DeleteWithTx(_ *gorm.DB, id uuid.UUID) error {
	f.deletedIDs = append(f.deletedIDs, id)
	return nil
}

type fakeObjectDeleter struct {
	deleted []string
	err     error
}

func (f *fakeObjectDeleter) DeleteObject(_ context.Context, _, object string) error {
	if f.err != nil {
		return f.err
	}
	f.deleted = append(f.deleted, object)
	return nil
}

type cronFakeTxRunner struct{}

func (cronFakeTxRunner) WithTx(_ context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}
