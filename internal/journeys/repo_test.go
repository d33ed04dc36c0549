package journeys

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/b4platform/b4-backend/pkg/db/models"
	"github.com/b4platform/b4-backend/pkg/enums"
)

func setupJourneysTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	statements := []string{
		`CREATE TABLE IF NOT EXISTS learning_journeys (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  journey_type TEXT NOT NULL,
  current_phase INTEGER NOT NULL DEFAULT 0,
  status TEXT NOT NULL DEFAULT 'not_started',
  admin_notes TEXT,
  started_at DATETIME,
  submitted_at DATETIME,
  decided_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME,
  UNIQUE (user_id, journey_type)
);`,
		`CREATE TABLE IF NOT EXISTS journey_phase_responses (
  id TEXT PRIMARY KEY,
  journey_id TEXT NOT NULL,
  phase_number INTEGER NOT NULL,
  responses TEXT,
  completed_tasks TEXT,
  document_ids TEXT NOT NULL DEFAULT '{}',
  is_completed INTEGER NOT NULL DEFAULT 0,
  completed_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME,
  UNIQUE (journey_id, phase_number)
);`,
	}
	for _, stmt := range statements {
		require.NoError(t, db.Exec(stmt).Error)
	}
	return db
}

func seedJourney(t *testing.T, db *gorm.DB, userID uuid.UUID, journeyType enums.JourneyType) *models.LearningJourney {
	t.Helper()
	started := time.Now().UTC()
	journey := &models.LearningJourney{
		ID:           uuid.New(),
		UserID:       userID,
		JourneyType:  journeyType,
		CurrentPhase: 1,
		Status:       enums.LearningJourneyStatusInProgress,
		StartedAt:    &started,
	}
	require.NoError(t, db.Create(journey).Error)
	return journey
}

func TestRepositoryUniqueJourneyPerUserAndType(t *testing.T) {
	db := setupJourneysTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	userID := uuid.New()

	seedJourney(t, db, userID, enums.JourneyTypeSkillPTC)

	err := repo.Create(ctx, &models.LearningJourney{
		ID:          uuid.New(),
		UserID:      userID,
		JourneyType: enums.JourneyTypeSkillPTC,
		Status:      enums.LearningJourneyStatusInProgress,
	})
	require.Error(t, err)

	// A different type for the same user is fine.
	require.NoError(t, repo.Create(ctx, &models.LearningJourney{
		ID:          uuid.New(),
		UserID:      userID,
		JourneyType: enums.JourneyTypeIdeaPTC,
		Status:      enums.LearningJourneyStatusInProgress,
	}))

	journeys, err := repo.ListByUser(ctx, userID)
	require.NoError(t, err)
	assert.Len(t, journeys, 2)
}

func TestRepositorySavePhaseUpserts(t *testing.T) {
	db := setupJourneysTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	journey := seedJourney(t, db, uuid.New(), enums.JourneyTypeSkillPTC)

	first := &models.JourneyPhaseResponse{
		ID:          uuid.New(),
		JourneyID:   journey.ID,
		PhaseNumber: 1,
		Responses:   map[string]string{"promise_statement": "draft"},
	}
	require.NoError(t, repo.SavePhase(ctx, first))

	second := &models.JourneyPhaseResponse{
		ID:          uuid.New(),
		JourneyID:   journey.ID,
		PhaseNumber: 1,
		Responses:   map[string]string{"promise_statement": "final"},
	}
	require.NoError(t, repo.SavePhase(ctx, second))

	var count int64
	require.NoError(t, db.Model(&models.JourneyPhaseResponse{}).
		Where("journey_id = ?", journey.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count)

	found, err := repo.FindPhase(ctx, journey.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, first.ID, found.ID)
	assert.Equal(t, "final", found.Responses["promise_statement"])
}

func TestRepositoryCountCompletedPhases(t *testing.T) {
	db := setupJourneysTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	journey := seedJourney(t, db, uuid.New(), enums.JourneyTypeScalingPath)

	now := time.Now().UTC()
	for n := 1; n <= 3; n++ {
		row := &models.JourneyPhaseResponse{
			ID:          uuid.New(),
			JourneyID:   journey.ID,
			PhaseNumber: n,
		}
		if n < 3 {
			row.IsCompleted = true
			row.CompletedAt = &now
		}
		require.NoError(t, repo.SavePhase(ctx, row))
	}

	completed, err := repo.CountCompletedPhases(ctx, journey.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, completed)
}

func TestRepositoryListByStatus(t *testing.T) {
	db := setupJourneysTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	pending := seedJourney(t, db, uuid.New(), enums.JourneyTypeSkillPTC)
	now := time.Now().UTC()
	require.NoError(t, repo.Update(ctx, pending.ID, map[string]any{
		"status":       enums.LearningJourneyStatusPendingApproval,
		"submitted_at": now,
	}))
	seedJourney(t, db, uuid.New(), enums.JourneyTypeIdeaPTC)

	rows, err := repo.ListByStatus(ctx, enums.LearningJourneyStatusPendingApproval)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, pending.ID, rows[0].ID)
}
