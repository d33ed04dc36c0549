package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/b4platform/b4-backend/pkg/db/models"
	"github.com/b4platform/b4-backend/pkg/enums"
	"github.com/b4platform/b4-backend/pkg/logger"
)

func setupOutboxTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.Exec(`CREATE TABLE IF NOT EXISTS outbox_events (
  id TEXT PRIMARY KEY,
  event_type TEXT NOT NULL,
  aggregate_type TEXT NOT NULL,
  aggregate_id TEXT NOT NULL,
  payload TEXT NOT NULL,
  created_at DATETIME,
  published_at DATETIME,
  attempt_count INTEGER NOT NULL DEFAULT 0,
  last_error TEXT
);`).Error)
	return db
}

func insertOutboxRow(t *testing.T, db *gorm.DB, createdAt time.Time, attempts int) models.OutboxEvent {
	t.Helper()
	row := models.OutboxEvent{
		ID:            uuid.New(),
		EventType:     enums.EventJourneySubmitted,
		AggregateType: enums.AggregateJourney,
		AggregateID:   uuid.New(),
		Payload:       json.RawMessage(`{"version":1}`),
		CreatedAt:     createdAt,
		AttemptCount:  attempts,
	}
	require.NoError(t, db.Create(&row).Error)
	return row
}

func TestFetchUnpublishedForPublishSkipsExhaustedRows(t *testing.T) {
	db := setupOutboxTestDB(t)
	repo := NewRepository(db)
	now := time.Now()

	fresh := insertOutboxRow(t, db, now.Add(-2*time.Minute), 0)
	insertOutboxRow(t, db, now.Add(-3*time.Minute), 5)
	published := insertOutboxRow(t, db, now.Add(-time.Minute), 0)
	require.NoError(t, repo.MarkPublishedTx(db, published.ID))

	rows, err := repo.FetchUnpublishedForPublish(db, 10, 5)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, fresh.ID, rows[0].ID)
}

func TestFetchUnpublishedForPublishOrdersOldestFirst(t *testing.T) {
	db := setupOutboxTestDB(t)
	repo := NewRepository(db)
	now := time.Now()

	second := insertOutboxRow(t, db, now.Add(-time.Minute), 0)
	first := insertOutboxRow(t, db, now.Add(-time.Hour), 0)

	rows, err := repo.FetchUnpublishedForPublish(db, 1, 5)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, first.ID, rows[0].ID)
	assert.NotEqual(t, second.ID, rows[0].ID)
}

func TestMarkFailedTxIncrementsAttempts(t *testing.T) {
	db := setupOutboxTestDB(t)
	repo := NewRepository(db)
	row := insertOutboxRow(t, db, time.Now(), 1)

	require.NoError(t, repo.MarkFailedTx(db, row.ID, errors.New("transient")))

	var got models.OutboxEvent
	require.NoError(t, db.First(&got, "id = ?", row.ID).Error)
	assert.Equal(t, 2, got.AttemptCount)
	require.NotNil(t, got.LastError)
	assert.Equal(t, "transient", *got.LastError)
	assert.Nil(t, got.PublishedAt)
}

func TestMarkTerminalTxPinsAttemptCeiling(t *testing.T) {
	db := setupOutboxTestDB(t)
	repo := NewRepository(db)
	row := insertOutboxRow(t, db, time.Now(), 1)

	require.NoError(t, repo.MarkTerminalTx(db, row.ID, errors.New("bad payload"), 5))

	var got models.OutboxEvent
	require.NoError(t, db.First(&got, "id = ?", row.ID).Error)
	assert.Equal(t, 5, got.AttemptCount)

	rows, err := repo.FetchUnpublishedForPublish(db, 10, 5)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestRepositoryRequiresTransaction(t *testing.T) {
	repo := NewRepository(nil)

	_, err := repo.FetchUnpublishedForPublish(nil, 10, 5)
	assert.Error(t, err)
	assert.Error(t, repo.MarkPublishedTx(nil, uuid.New()))
	assert.Error(t, repo.MarkFailedTx(nil, uuid.New(), errors.New("x")))
	assert.Error(t, repo.MarkTerminalTx(nil, uuid.New(), errors.New("x"), 5))
	_, err = repo.DeletePublishedBefore(context.Background(), nil, time.Now(), 5)
	assert.Error(t, err)
}

func TestServiceEmitWrapsPayloadInEnvelope(t *testing.T) {
	db := setupOutboxTestDB(t)
	logg := logger.New(logger.Options{ServiceName: "outbox-test", Output: io.Discard})
	svc := NewService(NewRepository(db), logg)

	aggregateID := uuid.New()
	err := svc.Emit(context.Background(), db, DomainEvent{
		EventType:     enums.EventIdeaSubmitted,
		AggregateType: enums.AggregateIdea,
		AggregateID:   aggregateID,
		Data:          map[string]string{"title": "solar kiosks"},
		Version:       1,
	})
	require.NoError(t, err)

	var got models.OutboxEvent
	require.NoError(t, db.First(&got, "aggregate_id = ?", aggregateID).Error)
	assert.Equal(t, enums.EventIdeaSubmitted, got.EventType)

	var envelope PayloadEnvelope
	require.NoError(t, json.Unmarshal(got.Payload, &envelope))
	assert.Equal(t, 1, envelope.Version)
	assert.NotEmpty(t, envelope.EventID)

	var data map[string]string
	require.NoError(t, json.Unmarshal(envelope.Data, &data))
	assert.Equal(t, "solar kiosks", data["title"])
}

func TestServiceEmitRequiresTransaction(t *testing.T) {
	svc := NewService(NewRepository(nil), nil)
	err := svc.Emit(context.Background(), nil, DomainEvent{})
	assert.Error(t, err)
}
