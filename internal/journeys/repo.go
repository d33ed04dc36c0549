package journeys

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/b4platform/b4-backend/pkg/db/models"
	"github.com/b4platform/b4-backend/pkg/enums"
)

// Repository exposes persistence for learning journeys and their phase rows.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, journey *models.LearningJourney) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.LearningJourney, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.LearningJourney, error)
	ListByStatus(ctx context.Context, status enums.LearningJourneyStatus) ([]models.LearningJourney, error)
	Update(ctx context.Context, id uuid.UUID, fields map[string]any) error
	FindPhase(ctx context.Context, journeyID uuid.UUID, phaseNumber int) (*models.JourneyPhaseResponse, error)
	ListPhases(ctx context.Context, journeyID uuid.UUID) ([]models.JourneyPhaseResponse, error)
	SavePhase(ctx context.Context, phase *models.JourneyPhaseResponse) error
	CountCompletedPhases(ctx context.Context, journeyID uuid.UUID) (int64, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a journeys repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) Create(ctx context.Context, journey *models.LearningJourney) error {
	return r.db.WithContext(ctx).Create(journey).Error
}

func (r *repositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*models.LearningJourney, error) {
	var journey models.LearningJourney
	if err := r.db.WithContext(ctx).First(&journey, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &journey, nil
}

func (r *repositoryImpl) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.LearningJourney, error) {
	var journeys []models.LearningJourney
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&journeys).Error
	return journeys, err
}

func (r *repositoryImpl) ListByStatus(ctx context.Context, status enums.LearningJourneyStatus) ([]models.LearningJourney, error) {
	var journeys []models.LearningJourney
	err := r.db.WithContext(ctx).
		Where("status = ?", status).
		Order("submitted_at ASC, created_at ASC").
		Find(&journeys).Error
	return journeys, err
}

func (r *repositoryImpl) Update(ctx context.Context, id uuid.UUID, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&models.LearningJourney{}).
		Where("id = ?", id).
		Updates(fields).Error
}

func (r *repositoryImpl) FindPhase(ctx context.Context, journeyID uuid.UUID, phaseNumber int) (*models.JourneyPhaseResponse, error) {
	var phase models.JourneyPhaseResponse
	err := r.db.WithContext(ctx).
		First(&phase, "journey_id = ? AND phase_number = ?", journeyID, phaseNumber).Error
	if err != nil {
		return nil, err
	}
	return &phase, nil
}

func (r *repositoryImpl) ListPhases(ctx context.Context, journeyID uuid.UUID) ([]models.JourneyPhaseResponse, error) {
	var phases []models.JourneyPhaseResponse
	err := r.db.WithContext(ctx).
		Where("journey_id = ?", journeyID).
		Order("phase_number ASC").
		Find(&phases).Error
	return phases, err
}

// SavePhase inserts or updates the single row per (journey, phase_number).
// Auto-save hits this repeatedly; last write wins.
func (r *repositoryImpl) SavePhase(ctx context.Context, phase *models.JourneyPhaseResponse) error {
	existing, err := r.FindPhase(ctx, phase.JourneyID, phase.PhaseNumber)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return r.db.WithContext(ctx).Create(phase).Error
		}
		return err
	}
	phase.ID = existing.ID
	phase.CreatedAt = existing.CreatedAt
	return r.db.WithContext(ctx).Save(phase).Error
}

func (r *repositoryImpl) CountCompletedPhases(ctx context.Context, journeyID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.JourneyPhaseResponse{}).
		Where("journey_id = ? AND is_completed = ?", journeyID, true).
		Count(&count).Error
	return count, err
}
