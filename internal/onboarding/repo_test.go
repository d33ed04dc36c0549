package onboarding

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/b4platform/b4-backend/pkg/db/models"
	"github.com/b4platform/b4-backend/pkg/enums"
)

func setupOnboardingTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	statements := []string{
		`CREATE TABLE IF NOT EXISTS onboarding_states (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL UNIQUE,
  primary_role TEXT,
  current_step INTEGER NOT NULL DEFAULT 1,
  onboarding_completed INTEGER NOT NULL DEFAULT 0,
  journey_status TEXT NOT NULL DEFAULT 'in_progress',
  user_status TEXT,
  boost_type TEXT,
  scale_type TEXT,
  submitted_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS natural_roles (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL UNIQUE,
  description TEXT NOT NULL DEFAULT '',
  promise_check INTEGER NOT NULL DEFAULT 0,
  promise_detail TEXT,
  promise_needs_help INTEGER NOT NULL DEFAULT 0,
  practice_check INTEGER NOT NULL DEFAULT 0,
  practice_detail TEXT,
  practice_needs_help INTEGER NOT NULL DEFAULT 0,
  training_check INTEGER NOT NULL DEFAULT 0,
  training_detail TEXT,
  training_needs_help INTEGER NOT NULL DEFAULT 0,
  consulting_check INTEGER NOT NULL DEFAULT 0,
  consulting_detail TEXT,
  consulting_needs_help INTEGER NOT NULL DEFAULT 0,
  is_ready INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS entrepreneurial_onboardings (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL UNIQUE,
  has_project INTEGER NOT NULL DEFAULT 0,
  project_description TEXT,
  project_count INTEGER NOT NULL DEFAULT 0,
  project_needs_help INTEGER NOT NULL DEFAULT 0,
  has_product INTEGER NOT NULL DEFAULT 0,
  product_description TEXT,
  product_count INTEGER NOT NULL DEFAULT 0,
  product_needs_help INTEGER NOT NULL DEFAULT 0,
  has_team INTEGER NOT NULL DEFAULT 0,
  team_description TEXT,
  team_count INTEGER NOT NULL DEFAULT 0,
  team_needs_help INTEGER NOT NULL DEFAULT 0,
  has_business INTEGER NOT NULL DEFAULT 0,
  business_description TEXT,
  business_count INTEGER NOT NULL DEFAULT 0,
  business_needs_help INTEGER NOT NULL DEFAULT 0,
  has_board INTEGER NOT NULL DEFAULT 0,
  board_description TEXT,
  board_count INTEGER NOT NULL DEFAULT 0,
  board_needs_help INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`,
	}
	for _, stmt := range statements {
		require.NoError(t, db.Exec(stmt).Error)
	}
	return db
}

func TestRepositoryStateLifecycle(t *testing.T) {
	db := setupOnboardingTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	userID := uuid.New()

	_, err := repo.FindState(ctx, userID)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)

	state := &models.OnboardingState{
		ID:            uuid.New(),
		UserID:        userID,
		CurrentStep:   1,
		JourneyStatus: enums.JourneyStatusInProgress,
	}
	require.NoError(t, repo.CreateState(ctx, state))

	found, err := repo.FindState(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 1, found.CurrentStep)
	assert.Nil(t, found.PrimaryRole)

	require.NoError(t, repo.UpdateState(ctx, userID, map[string]any{
		"primary_role": enums.PrimaryRoleEntrepreneur,
		"current_step": 3,
	}))

	role, err := repo.PrimaryRoleFor(ctx, userID)
	require.NoError(t, err)
	require.NotNil(t, role)
	assert.Equal(t, enums.PrimaryRoleEntrepreneur, *role)

	found, err = repo.FindState(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 3, found.CurrentStep)
}

func TestRepositoryPrimaryRoleForMissingUser(t *testing.T) {
	db := setupOnboardingTestDB(t)
	repo := NewRepository(db)

	_, err := repo.PrimaryRoleFor(context.Background(), uuid.New())
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRepositorySaveNaturalRoleUpserts(t *testing.T) {
	db := setupOnboardingTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	userID := uuid.New()

	detail := "weekly coaching sessions"
	first := &models.NaturalRole{
		ID:            uuid.New(),
		UserID:        userID,
		Description:   "I help teams ship",
		PromiseCheck:  true,
		PromiseDetail: &detail,
	}
	require.NoError(t, repo.SaveNaturalRole(ctx, first))

	second := &models.NaturalRole{
		ID:            uuid.New(), // ignored; the existing row wins
		UserID:        userID,
		Description:   "I help teams ship faster",
		PromiseCheck:  true,
		PracticeCheck: true,
	}
	require.NoError(t, repo.SaveNaturalRole(ctx, second))

	var count int64
	require.NoError(t, db.Model(&models.NaturalRole{}).Where("user_id = ?", userID).Count(&count).Error)
	assert.EqualValues(t, 1, count)

	found, err := repo.FindNaturalRole(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, found.ID)
	assert.Equal(t, "I help teams ship faster", found.Description)
	assert.True(t, found.PracticeCheck)
	assert.Nil(t, found.PromiseDetail)
}

func TestRepositorySaveEntrepreneurialUpserts(t *testing.T) {
	db := setupOnboardingTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	userID := uuid.New()

	require.NoError(t, repo.SaveEntrepreneurial(ctx, &models.EntrepreneurialOnboarding{
		ID:           uuid.New(),
		UserID:       userID,
		HasProject:   true,
		ProjectCount: 1,
	}))
	require.NoError(t, repo.SaveEntrepreneurial(ctx, &models.EntrepreneurialOnboarding{
		ID:           uuid.New(),
		UserID:       userID,
		HasProject:   true,
		ProjectCount: 4,
		HasBoard:     true,
	}))

	var count int64
	require.NoError(t, db.Model(&models.EntrepreneurialOnboarding{}).Where("user_id = ?", userID).Count(&count).Error)
	assert.EqualValues(t, 1, count)

	found, err := repo.FindEntrepreneurial(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 4, found.ProjectCount)
	assert.True(t, found.HasBoard)
}
