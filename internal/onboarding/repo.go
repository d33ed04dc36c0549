package onboarding

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/b4platform/b4-backend/pkg/db/models"
	"github.com/b4platform/b4-backend/pkg/enums"
)

// Repository exposes persistence for the onboarding wizard tables.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindState(ctx context.Context, userID uuid.UUID) (*models.OnboardingState, error)
	CreateState(ctx context.Context, state *models.OnboardingState) error
	UpdateState(ctx context.Context, userID uuid.UUID, fields map[string]any) error
	PrimaryRoleFor(ctx context.Context, userID uuid.UUID) (*enums.PrimaryRole, error)
	FindNaturalRole(ctx context.Context, userID uuid.UUID) (*models.NaturalRole, error)
	SaveNaturalRole(ctx context.Context, role *models.NaturalRole) error
	FindEntrepreneurial(ctx context.Context, userID uuid.UUID) (*models.EntrepreneurialOnboarding, error)
	SaveEntrepreneurial(ctx context.Context, record *models.EntrepreneurialOnboarding) error
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository constructs an onboarding repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) FindState(ctx context.Context, userID uuid.UUID) (*models.OnboardingState, error) {
	var state models.OnboardingState
	if err := r.db.WithContext(ctx).First(&state, "user_id = ?", userID).Error; err != nil {
		return nil, err
	}
	return &state, nil
}

func (r *repositoryImpl) CreateState(ctx context.Context, state *models.OnboardingState) error {
	return r.db.WithContext(ctx).Create(state).Error
}

func (r *repositoryImpl) UpdateState(ctx context.Context, userID uuid.UUID, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&models.OnboardingState{}).
		Where("user_id = ?", userID).
		Updates(fields).Error
}

// PrimaryRoleFor returns the chosen path for token claims. Users who never
// opened the wizard have no row and surface gorm.ErrRecordNotFound.
func (r *repositoryImpl) PrimaryRoleFor(ctx context.Context, userID uuid.UUID) (*enums.PrimaryRole, error) {
	var state models.OnboardingState
	if err := r.db.WithContext(ctx).
		Select("primary_role").
		First(&state, "user_id = ?", userID).Error; err != nil {
		return nil, err
	}
	return state.PrimaryRole, nil
}

func (r *repositoryImpl) FindNaturalRole(ctx context.Context, userID uuid.UUID) (*models.NaturalRole, error) {
	var role models.NaturalRole
	if err := r.db.WithContext(ctx).First(&role, "user_id = ?", userID).Error; err != nil {
		return nil, err
	}
	return &role, nil
}

// SaveNaturalRole inserts or updates the single natural role row per user.
func (r *repositoryImpl) SaveNaturalRole(ctx context.Context, role *models.NaturalRole) error {
	existing, err := r.FindNaturalRole(ctx, role.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return r.db.WithContext(ctx).Create(role).Error
		}
		return err
	}
	role.ID = existing.ID
	role.CreatedAt = existing.CreatedAt
	return r.db.WithContext(ctx).Save(role).Error
}

func (r *repositoryImpl) FindEntrepreneurial(ctx context.Context, userID uuid.UUID) (*models.EntrepreneurialOnboarding, error) {
	var record models.EntrepreneurialOnboarding
	if err := r.db.WithContext(ctx).First(&record, "user_id = ?", userID).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

// SaveEntrepreneurial inserts or updates the single entrepreneur row per user.
func (r *repositoryImpl) SaveEntrepreneurial(ctx context.Context, record *models.EntrepreneurialOnboarding) error {
	existing, err := r.FindEntrepreneurial(ctx, record.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return r.db.WithContext(ctx).Create(record).Error
		}
		return err
	}
	record.ID = existing.ID
	record.CreatedAt = existing.CreatedAt
	return r.db.WithContext(ctx).Save(record).Error
}
