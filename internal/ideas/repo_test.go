package ideas

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

func setupIdeasTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	statements := []string{
		`CREATE TABLE IF NOT EXISTS startup_ideas (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  title TEXT NOT NULL,
  pitch TEXT NOT NULL,
  box TEXT,
  review_status TEXT NOT NULL DEFAULT 'pending',
  status TEXT NOT NULL DEFAULT 'active',
  current_episode TEXT NOT NULL DEFAULT 'development',
  roles_needed TEXT,
  equity_percentage NUMERIC NOT NULL DEFAULT 0,
  admin_notes TEXT,
  completed_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS startup_applications (
  id TEXT PRIMARY KEY,
  idea_id TEXT NOT NULL,
  applicant_id TEXT NOT NULL,
  role TEXT,
  cover_message TEXT NOT NULL DEFAULT '',
  status TEXT NOT NULL DEFAULT 'pending',
  decided_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME,
  UNIQUE (idea_id, applicant_id)
);`,
		`CREATE TABLE IF NOT EXISTS idea_journey_progress (
  id TEXT PRIMARY KEY,
  startup_id TEXT NOT NULL,
  episode TEXT NOT NULL,
  phase_number INTEGER NOT NULL,
  responses TEXT,
  is_completed INTEGER NOT NULL DEFAULT 0,
  completed_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME,
  UNIQUE (startup_id, episode, phase_number)
);`,
	}
	for _, stmt := range statements {
		require.NoError(t, db.Exec(stmt).Error)
	}
	return db
}

func seedIdea(t *testing.T, db *gorm.DB, mutate func(idea *models.StartupIdea)) *models.StartupIdea {
	t.Helper()
	idea := &models.StartupIdea{
		ID:             uuid.New(),
		UserID:         uuid.New(),
		Title:          "Repair cafe network",
		Pitch:          "Neighbourhood repair events with shared tooling.",
		ReviewStatus:   enums.ReviewStatusApproved,
		Status:         enums.IdeaStatusActive,
		CurrentEpisode: enums.EpisodeDevelopment,
	}
	if mutate != nil {
		mutate(idea)
	}
	require.NoError(t, db.Create(idea).Error)
	return idea
}

func TestRepositoryBrowseFiltersUnlistedIdeas(t *testing.T) {
	db := setupIdeasTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	listed := seedIdea(t, db, nil)
	seedIdea(t, db, func(idea *models.StartupIdea) {
		idea.ReviewStatus = enums.ReviewStatusPending
	})
	seedIdea(t, db, func(idea *models.StartupIdea) {
		idea.Status = enums.IdeaStatusArchived
	})
	paused := seedIdea(t, db, func(idea *models.StartupIdea) {
		idea.Status = enums.IdeaStatusPaused
	})

	rows, cursor, err := repo.ListBrowse(ctx, browseParams{Limit: 10})
	require.NoError(t, err)
	assert.Nil(t, cursor)
	require.Len(t, rows, 2)

	ids := []uuid.UUID{rows[0].ID, rows[1].ID}
	assert.Contains(t, ids, listed.ID)
	assert.Contains(t, ids, paused.ID)
}

func TestRepositoryBrowsePaginates(t *testing.T) {
	db := setupIdeasTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	base := time.Now().UTC().Add(-time.Hour)
	for n := 0; n < 5; n++ {
		created := base.Add(time.Duration(n) * time.Minute)
		seedIdea(t, db, func(idea *models.StartupIdea) {
			idea.CreatedAt = created
		})
	}

	first, cursor, err := repo.ListBrowse(ctx, browseParams{Limit: 3})
	require.NoError(t, err)
	require.Len(t, first, 3)
	require.NotNil(t, cursor)

	second, next, err := repo.ListBrowse(ctx, browseParams{Limit: 3, Cursor: cursor})
	require.NoError(t, err)
	assert.Len(t, second, 2)
	assert.Nil(t, next)

	// Newest first, no overlap across pages.
	seen := map[uuid.UUID]bool{}
	for _, row := range append(first, second...) {
		require.False(t, seen[row.ID])
		seen[row.ID] = true
	}
}

func TestRepositoryUniqueApplicationPerApplicant(t *testing.T) {
	db := setupIdeasTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	idea := seedIdea(t, db, nil)
	applicant := uuid.New()

	require.NoError(t, repo.CreateApplication(ctx, &models.StartupApplication{
		ID:           uuid.New(),
		IdeaID:       idea.ID,
		ApplicantID:  applicant,
		CoverMessage: "first attempt",
		Status:       enums.ApplicationStatusPending,
	}))

	err := repo.CreateApplication(ctx, &models.StartupApplication{
		ID:           uuid.New(),
		IdeaID:       idea.ID,
		ApplicantID:  applicant,
		CoverMessage: "second attempt",
		Status:       enums.ApplicationStatusPending,
	})
	require.Error(t, err)

	// The same applicant may still apply to a different idea.
	other := seedIdea(t, db, nil)
	require.NoError(t, repo.CreateApplication(ctx, &models.StartupApplication{
		ID:           uuid.New(),
		IdeaID:       other.ID,
		ApplicantID:  applicant,
		CoverMessage: "different idea",
		Status:       enums.ApplicationStatusPending,
	}))
}

func TestRepositorySaveProgressUpserts(t *testing.T) {
	db := setupIdeasTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	idea := seedIdea(t, db, nil)

	first := &models.IdeaJourneyProgress{
		ID:          uuid.New(),
		StartupID:   idea.ID,
		Episode:     enums.EpisodeDevelopment,
		PhaseNumber: 1,
		Responses:   map[string]string{"idea_statement": "draft"},
	}
	require.NoError(t, repo.SaveProgress(ctx, first))

	second := &models.IdeaJourneyProgress{
		ID:          uuid.New(),
		StartupID:   idea.ID,
		Episode:     enums.EpisodeDevelopment,
		PhaseNumber: 1,
		Responses:   map[string]string{"idea_statement": "final"},
	}
	require.NoError(t, repo.SaveProgress(ctx, second))

	var count int64
	require.NoError(t, db.Model(&models.IdeaJourneyProgress{}).
		Where("startup_id = ?", idea.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count)

	found, err := repo.FindProgress(ctx, idea.ID, enums.EpisodeDevelopment, 1)
	require.NoError(t, err)
	assert.Equal(t, first.ID, found.ID)
	assert.Equal(t, "final", found.Responses["idea_statement"])

	// The same phase number in another episode is a separate row.
	require.NoError(t, repo.SaveProgress(ctx, &models.IdeaJourneyProgress{
		ID:          uuid.New(),
		StartupID:   idea.ID,
		Episode:     enums.EpisodeValidation,
		PhaseNumber: 1,
		Responses:   map[string]string{"hypothesis": "people will pay"},
	}))
	rows, err := repo.ListProgress(ctx, idea.ID, enums.EpisodeDevelopment)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestRepositoryCountCompletedProgress(t *testing.T) {
	db := setupIdeasTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	idea := seedIdea(t, db, nil)

	now := time.Now().UTC()
	for n := 1; n <= 3; n++ {
		row := &models.IdeaJourneyProgress{
			ID:          uuid.New(),
			StartupID:   idea.ID,
			Episode:     enums.EpisodeDevelopment,
			PhaseNumber: n,
		}
		if n < 3 {
			row.IsCompleted = true
			row.CompletedAt = &now
		}
		require.NoError(t, repo.SaveProgress(ctx, row))
	}

	completed, err := repo.CountCompletedProgress(ctx, idea.ID, enums.EpisodeDevelopment)
	require.NoError(t, err)
	assert.EqualValues(t, 2, completed)
}
