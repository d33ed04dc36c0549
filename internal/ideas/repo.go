package ideas

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/b4platform/b4-backend/pkg/db/models"
	"github.com/b4platform/b4-backend/pkg/enums"
	"github.com/b4platform/b4-backend/pkg/pagination"
)

// Repository exposes persistence for ideas, applications and episode progress.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	Create(ctx context.Context, idea *models.StartupIdea) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.StartupIdea, error)
	ListByOwner(ctx context.Context, userID uuid.UUID) ([]models.StartupIdea, error)
	ListBrowse(ctx context.Context, params browseParams) ([]models.StartupIdea, *pagination.Cursor, error)
	ListByReviewStatus(ctx context.Context, status enums.ReviewStatus) ([]models.StartupIdea, error)
	Update(ctx context.Context, id uuid.UUID, fields map[string]any) error

	CreateApplication(ctx context.Context, application *models.StartupApplication) error
	FindApplication(ctx context.Context, id uuid.UUID) (*models.StartupApplication, error)
	ListApplicationsForIdea(ctx context.Context, ideaID uuid.UUID) ([]models.StartupApplication, error)
	ListApplicationsByApplicant(ctx context.Context, applicantID uuid.UUID) ([]models.StartupApplication, error)
	UpdateApplication(ctx context.Context, id uuid.UUID, fields map[string]any) error

	FindProgress(ctx context.Context, startupID uuid.UUID, episode enums.Episode, phaseNumber int) (*models.IdeaJourneyProgress, error)
	ListProgress(ctx context.Context, startupID uuid.UUID, episode enums.Episode) ([]models.IdeaJourneyProgress, error)
	SaveProgress(ctx context.Context, progress *models.IdeaJourneyProgress) error
	CountCompletedProgress(ctx context.Context, startupID uuid.UUID, episode enums.Episode) (int64, error)
}

type browseParams struct {
	Limit  int
	Cursor *pagination.Cursor
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns an ideas repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) Create(ctx context.Context, idea *models.StartupIdea) error {
	return r.db.WithContext(ctx).Create(idea).Error
}

func (r *repositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*models.StartupIdea, error) {
	var idea models.StartupIdea
	if err := r.db.WithContext(ctx).First(&idea, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &idea, nil
}

func (r *repositoryImpl) ListByOwner(ctx context.Context, userID uuid.UUID) ([]models.StartupIdea, error) {
	var ideas []models.StartupIdea
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&ideas).Error
	return ideas, err
}

// ListBrowse returns the co-builder facing feed: approved ideas still open to
// the marketplace, newest first, cursor paginated.
func (r *repositoryImpl) ListBrowse(ctx context.Context, params browseParams) ([]models.StartupIdea, *pagination.Cursor, error) {
	limit := pagination.LimitWithBuffer(params.Limit)
	normalized := pagination.NormalizeLimit(params.Limit)
	query := r.db.WithContext(ctx).
		Model(&models.StartupIdea{}).
		Where("review_status = ?", enums.ReviewStatusApproved).
		Where("status IN ?", []enums.IdeaStatus{enums.IdeaStatusActive, enums.IdeaStatusPaused})
	if params.Cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", params.Cursor.CreatedAt, params.Cursor.ID)
	}

	var ideas []models.StartupIdea
	if err := query.Order("created_at DESC, id DESC").Limit(limit).Find(&ideas).Error; err != nil {
		return nil, nil, err
	}

	if len(ideas) > normalized {
		next := ideas[normalized]
		ideas = ideas[:normalized]
		return ideas, &pagination.Cursor{CreatedAt: next.CreatedAt, ID: next.ID}, nil
	}
	return ideas, nil, nil
}

func (r *repositoryImpl) ListByReviewStatus(ctx context.Context, status enums.ReviewStatus) ([]models.StartupIdea, error) {
	var ideas []models.StartupIdea
	err := r.db.WithContext(ctx).
		Where("review_status = ?", status).
		Order("created_at ASC").
		Find(&ideas).Error
	return ideas, err
}

func (r *repositoryImpl) Update(ctx context.Context, id uuid.UUID, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&models.StartupIdea{}).
		Where("id = ?", id).
		Updates(fields).Error
}

func (r *repositoryImpl) CreateApplication(ctx context.Context, application *models.StartupApplication) error {
	return r.db.WithContext(ctx).Create(application).Error
}

func (r *repositoryImpl) FindApplication(ctx context.Context, id uuid.UUID) (*models.StartupApplication, error) {
	var application models.StartupApplication
	if err := r.db.WithContext(ctx).First(&application, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &application, nil
}

func (r *repositoryImpl) ListApplicationsForIdea(ctx context.Context, ideaID uuid.UUID) ([]models.StartupApplication, error) {
	var applications []models.StartupApplication
	err := r.db.WithContext(ctx).
		Where("idea_id = ?", ideaID).
		Order("created_at ASC").
		Find(&applications).Error
	return applications, err
}

func (r *repositoryImpl) ListApplicationsByApplicant(ctx context.Context, applicantID uuid.UUID) ([]models.StartupApplication, error) {
	var applications []models.StartupApplication
	err := r.db.WithContext(ctx).
		Where("applicant_id = ?", applicantID).
		Order("created_at DESC").
		Find(&applications).Error
	return applications, err
}

func (r *repositoryImpl) UpdateApplication(ctx context.Context, id uuid.UUID, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&models.StartupApplication{}).
		Where("id = ?", id).
		Updates(fields).Error
}

func (r *repositoryImpl) FindProgress(ctx context.Context, startupID uuid.UUID, episode enums.Episode, phaseNumber int) (*models.IdeaJourneyProgress, error) {
	var progress models.IdeaJourneyProgress
	err := r.db.WithContext(ctx).
		First(&progress, "startup_id = ? AND episode = ? AND phase_number = ?", startupID, episode, phaseNumber).Error
	if err != nil {
		return nil, err
	}
	return &progress, nil
}

func (r *repositoryImpl) ListProgress(ctx context.Context, startupID uuid.UUID, episode enums.Episode) ([]models.IdeaJourneyProgress, error) {
	var rows []models.IdeaJourneyProgress
	err := r.db.WithContext(ctx).
		Where("startup_id = ? AND episode = ?", startupID, episode).
		Order("phase_number ASC").
		Find(&rows).Error
	return rows, err
}

// SaveProgress inserts or updates the single row per (startup, episode,
// phase). Client auto-save hits this repeatedly; last write wins.
func (r *repositoryImpl) SaveProgress(ctx context.Context, progress *models.IdeaJourneyProgress) error {
	existing, err := r.FindProgress(ctx, progress.StartupID, progress.Episode, progress.PhaseNumber)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return r.db.WithContext(ctx).Create(progress).Error
		}
		return err
	}
	progress.ID = existing.ID
	progress.CreatedAt = existing.CreatedAt
	return r.db.WithContext(ctx).Save(progress).Error
}

func (r *repositoryImpl) CountCompletedProgress(ctx context.Context, startupID uuid.UUID, episode enums.Episode) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.IdeaJourneyProgress{}).
		Where("startup_id = ? AND episode = ? AND is_completed = ?", startupID, episode, true).
		Count(&count).Error
	return count, err
}
