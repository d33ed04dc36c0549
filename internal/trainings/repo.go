package trainings

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/b4platform/b4-backend/pkg/db/models"
	"github.com/b4platform/b4-backend/pkg/enums"
)

// Repository exposes persistence for training opportunities.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, training *models.TrainingOpportunity) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.TrainingOpportunity, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.TrainingOpportunity, error)
	ListByReviewStatus(ctx context.Context, status enums.TrainingReviewStatus) ([]models.TrainingOpportunity, error)
	Update(ctx context.Context, id uuid.UUID, fields map[string]any) error
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a trainings repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) Create(ctx context.Context, training *models.TrainingOpportunity) error {
	return r.db.WithContext(ctx).Create(training).Error
}

func (r *repositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*models.TrainingOpportunity, error) {
	var training models.TrainingOpportunity
	if err := r.db.WithContext(ctx).First(&training, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &training, nil
}

func (r *repositoryImpl) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.TrainingOpportunity, error) {
	var trainings []models.TrainingOpportunity
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&trainings).Error
	return trainings, err
}

func (r *repositoryImpl) ListByReviewStatus(ctx context.Context, status enums.TrainingReviewStatus) ([]models.TrainingOpportunity, error) {
	var trainings []models.TrainingOpportunity
	err := r.db.WithContext(ctx).
		Where("review_status = ?", status).
		Order("created_at ASC").
		Find(&trainings).Error
	return trainings, err
}

func (r *repositoryImpl) Update(ctx context.Context, id uuid.UUID, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&models.TrainingOpportunity{}).
		Where("id = ?", id).
		Updates(fields).Error
}
