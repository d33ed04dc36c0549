package resume

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/b4platform/b4-backend/pkg/db/models"
)

// Record is the flat snapshot a PDF is rendered from. Optional sections are
// nil or empty and simply do not render.
type Record struct {
	User            models.User
	Onboarding      *models.OnboardingState
	NaturalRole     *models.NaturalRole
	Entrepreneurial *models.EntrepreneurialOnboarding
	Certifications  []models.UserCertification
	Ideas           []models.StartupIdea
}

// Repository assembles the export record.
type Repository interface {
	LoadRecord(ctx context.Context, userID uuid.UUID) (*Record, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a resume repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) LoadRecord(ctx context.Context, userID uuid.UUID) (*Record, error) {
	record := &Record{}

	if err := r.db.WithContext(ctx).First(&record.User, "id = ?", userID).Error; err != nil {
		return nil, err
	}

	var onboarding models.OnboardingState
	switch err := r.db.WithContext(ctx).First(&onboarding, "user_id = ?", userID).Error; {
	case err == nil:
		record.Onboarding = &onboarding
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, err
	}

	var naturalRole models.NaturalRole
	switch err := r.db.WithContext(ctx).First(&naturalRole, "user_id = ?", userID).Error; {
	case err == nil:
		record.NaturalRole = &naturalRole
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, err
	}

	var entrepreneurial models.EntrepreneurialOnboarding
	switch err := r.db.WithContext(ctx).First(&entrepreneurial, "user_id = ?", userID).Error; {
	case err == nil:
		record.Entrepreneurial = &entrepreneurial
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, err
	}

	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("granted_at ASC").
		Find(&record.Certifications).Error; err != nil {
		return nil, err
	}

	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&record.Ideas).Error; err != nil {
		return nil, err
	}

	return record, nil
}
