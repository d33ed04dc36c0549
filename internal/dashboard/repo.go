package dashboard

import (
	"context"

	"gorm.io/gorm"

	"github.com/b4platform/b4-backend/pkg/db/models"
	"github.com/b4platform/b4-backend/pkg/enums"
)

// Repository exposes the count and list queries the admin dashboard folds
// into percentages. Reads only.
type Repository interface {
	CountUsers(ctx context.Context) (int64, error)
	CountOnboardingByStatus(ctx context.Context, statuses []enums.JourneyStatus) (int64, error)
	CountTrainings(ctx context.Context) (int64, error)
	CountTrainingsByStatus(ctx context.Context, status enums.TrainingReviewStatus) (int64, error)
	CountApplications(ctx context.Context) (int64, error)
	CountApplicationsByStatus(ctx context.Context, status enums.ApplicationStatus) (int64, error)
	ListJourneys(ctx context.Context) ([]models.LearningJourney, error)
	ListPhaseResponses(ctx context.Context) ([]models.JourneyPhaseResponse, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a dashboard repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) CountUsers(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("is_deleted = ?", false).
		Count(&count).Error
	return count, err
}

func (r *repositoryImpl) CountOnboardingByStatus(ctx context.Context, statuses []enums.JourneyStatus) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.OnboardingState{}).
		Where("journey_status IN ?", statuses).
		Count(&count).Error
	return count, err
}

func (r *repositoryImpl) CountTrainings(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.TrainingOpportunity{}).
		Count(&count).Error
	return count, err
}

func (r *repositoryImpl) CountTrainingsByStatus(ctx context.Context, status enums.TrainingReviewStatus) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.TrainingOpportunity{}).
		Where("review_status = ?", status).
		Count(&count).Error
	return count, err
}

func (r *repositoryImpl) CountApplications(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.StartupApplication{}).
		Count(&count).Error
	return count, err
}

func (r *repositoryImpl) CountApplicationsByStatus(ctx context.Context, status enums.ApplicationStatus) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.StartupApplication{}).
		Where("status = ?", status).
		Count(&count).Error
	return count, err
}

func (r *repositoryImpl) ListJourneys(ctx context.Context) ([]models.LearningJourney, error) {
	var journeys []models.LearningJourney
	err := r.db.WithContext(ctx).Find(&journeys).Error
	return journeys, err
}

func (r *repositoryImpl) ListPhaseResponses(ctx context.Context) ([]models.JourneyPhaseResponse, error) {
	var responses []models.JourneyPhaseResponse
	err := r.db.WithContext(ctx).Find(&responses).Error
	return responses, err
}
