package reviews

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/b4platform/b4-backend/pkg/db/models"
	"github.com/b4platform/b4-backend/pkg/enums"
)

// Repository spans the tables the admin review queue mutates. Keeping the
// cross-table writes behind one repository lets a decision run in a single
// transaction.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	PendingOnboarding(ctx context.Context) ([]models.OnboardingState, error)
	PendingJourneys(ctx context.Context) ([]models.LearningJourney, error)
	PendingIdeas(ctx context.Context) ([]models.StartupIdea, error)
	PendingTrainings(ctx context.Context) ([]models.TrainingOpportunity, error)

	FindOnboardingState(ctx context.Context, userID uuid.UUID) (*models.OnboardingState, error)
	UpdateOnboardingState(ctx context.Context, userID uuid.UUID, fields map[string]any) error
	FindJourney(ctx context.Context, id uuid.UUID) (*models.LearningJourney, error)
	UpdateJourney(ctx context.Context, id uuid.UUID, fields map[string]any) error
	FindIdea(ctx context.Context, id uuid.UUID) (*models.StartupIdea, error)
	UpdateIdea(ctx context.Context, id uuid.UUID, fields map[string]any) error
	FindTraining(ctx context.Context, id uuid.UUID) (*models.TrainingOpportunity, error)
	UpdateTraining(ctx context.Context, id uuid.UUID, fields map[string]any) error

	UpsertCertification(ctx context.Context, certification *models.UserCertification) error
	GrantRole(ctx context.Context, grant *models.UserRole) error
	CreateUserNotification(ctx context.Context, notification *models.UserNotification) error
	MarkAdminNotificationRead(ctx context.Context, notificationID uuid.UUID, now time.Time) error
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a reviews repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) PendingOnboarding(ctx context.Context) ([]models.OnboardingState, error) {
	var rows []models.OnboardingState
	err := r.db.WithContext(ctx).
		Where("journey_status = ?", enums.JourneyStatusPendingApproval).
		Order("submitted_at ASC").
		Find(&rows).Error
	return rows, err
}

func (r *repositoryImpl) PendingJourneys(ctx context.Context) ([]models.LearningJourney, error) {
	var rows []models.LearningJourney
	err := r.db.WithContext(ctx).
		Where("status = ?", enums.LearningJourneyStatusPendingApproval).
		Order("submitted_at ASC").
		Find(&rows).Error
	return rows, err
}

func (r *repositoryImpl) PendingIdeas(ctx context.Context) ([]models.StartupIdea, error) {
	var rows []models.StartupIdea
	err := r.db.WithContext(ctx).
		Where("review_status IN ?", []enums.ReviewStatus{enums.ReviewStatusPending, enums.ReviewStatusUnderReview}).
		Order("created_at ASC").
		Find(&rows).Error
	return rows, err
}

func (r *repositoryImpl) PendingTrainings(ctx context.Context) ([]models.TrainingOpportunity, error) {
	var rows []models.TrainingOpportunity
	err := r.db.WithContext(ctx).
		Where("review_status = ?", enums.TrainingReviewStatusPending).
		Order("created_at ASC").
		Find(&rows).Error
	return rows, err
}

func (r *repositoryImpl) FindOnboardingState(ctx context.Context, userID uuid.UUID) (*models.OnboardingState, error) {
	var state models.OnboardingState
	if err := r.db.WithContext(ctx).First(&state, "user_id = ?", userID).Error; err != nil {
		return nil, err
	}
	return &state, nil
}

func (r *repositoryImpl) UpdateOnboardingState(ctx context.Context, userID uuid.UUID, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&models.OnboardingState{}).
		Where("user_id = ?", userID).
		Updates(fields).Error
}

func (r *repositoryImpl) FindJourney(ctx context.Context, id uuid.UUID) (*models.LearningJourney, error) {
	var journey models.LearningJourney
	if err := r.db.WithContext(ctx).First(&journey, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &journey, nil
}

func (r *repositoryImpl) UpdateJourney(ctx context.Context, id uuid.UUID, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&models.LearningJourney{}).
		Where("id = ?", id).
		Updates(fields).Error
}

func (r *repositoryImpl) FindIdea(ctx context.Context, id uuid.UUID) (*models.StartupIdea, error) {
	var idea models.StartupIdea
	if err := r.db.WithContext(ctx).First(&idea, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &idea, nil
}

func (r *repositoryImpl) UpdateIdea(ctx context.Context, id uuid.UUID, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&models.StartupIdea{}).
		Where("id = ?", id).
		Updates(fields).Error
}

func (r *repositoryImpl) FindTraining(ctx context.Context, id uuid.UUID) (*models.TrainingOpportunity, error) {
	var training models.TrainingOpportunity
	if err := r.db.WithContext(ctx).First(&training, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &training, nil
}

func (r *repositoryImpl) UpdateTraining(ctx context.Context, id uuid.UUID, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&models.TrainingOpportunity{}).
		Where("id = ?", id).
		Updates(fields).Error
}

// UpsertCertification keeps one row per (user, certification_type). Approving
// a resubmitted journey refreshes the existing credential.
func (r *repositoryImpl) UpsertCertification(ctx context.Context, certification *models.UserCertification) error {
	var existing models.UserCertification
	err := r.db.WithContext(ctx).
		First(&existing, "user_id = ? AND certification_type = ?", certification.UserID, certification.CertificationType).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return r.db.WithContext(ctx).Create(certification).Error
		}
		return err
	}
	certification.ID = existing.ID
	certification.CreatedAt = existing.CreatedAt
	certification.GrantedAt = existing.GrantedAt
	return r.db.WithContext(ctx).Save(certification).Error
}

func (r *repositoryImpl) GrantRole(ctx context.Context, grant *models.UserRole) error {
	return r.db.WithContext(ctx).Create(grant).Error
}

func (r *repositoryImpl) CreateUserNotification(ctx context.Context, notification *models.UserNotification) error {
	return r.db.WithContext(ctx).Create(notification).Error
}

// MarkAdminNotificationRead is a no-op when the notification is unknown or
// already read; deciding from a stale queue item must not fail the decision.
func (r *repositoryImpl) MarkAdminNotificationRead(ctx context.Context, notificationID uuid.UUID, now time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.AdminNotification{}).
		Where("id = ? AND read_at IS NULL", notificationID).
		UpdateColumn("read_at", now).Error
}
