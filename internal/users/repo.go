package users

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/b4platform/b4-backend/pkg/db/models"
	"github.com/b4platform/b4-backend/pkg/enums"
)

// Repository exposes user-related persistence operations.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, dto CreateUserDTO) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, fields map[string]any) error
	UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
	SoftDelete(ctx context.Context, id uuid.UUID, at time.Time) error
	HardDelete(ctx context.Context, id uuid.UUID) error
	PurgeUserData(ctx context.Context, userID uuid.UUID) error
	GrantRole(ctx context.Context, grant *models.UserRole) error
	RolesFor(ctx context.Context, userID uuid.UUID) ([]models.UserRole, error)
	HasAnyRole(ctx context.Context, userID uuid.UUID, roles []enums.PlatformRole) (bool, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository constructs a users repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

// Create inserts a new user and returns the persisted model.
func (r *repositoryImpl) Create(ctx context.Context, dto CreateUserDTO) (*models.User, error) {
	user := dto.ToModel()
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// FindByEmail retrieves the non-deleted user matching the provided email.
func (r *repositoryImpl) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).
		Where("email = ? AND is_deleted = FALSE", email).
		First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByID loads a user by their UUID.
func (r *repositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateProfile applies the provided column map to the user row.
func (r *repositoryImpl) UpdateProfile(ctx context.Context, id uuid.UUID, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		Updates(fields).Error
}

// UpdateLastLogin refreshes the user's last_login_at timestamp.
func (r *repositoryImpl) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		UpdateColumn("last_login_at", at).Error
}

// SoftDelete deactivates the account and stamps deleted_at. Rows remain for audit.
func (r *repositoryImpl) SoftDelete(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ? AND is_deleted = FALSE", id).
		Updates(map[string]any{
			"is_active":  false,
			"is_deleted": true,
			"deleted_at": at,
		}).Error
}

// HardDelete removes the user row. Dependent rows are removed by the service cascade.
func (r *repositoryImpl) HardDelete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.User{}, "id = ?", id).Error
}

// PurgeUserData removes every user-scoped row. Child tables go first so the
// deletes stay FK-safe; the caller runs this inside a transaction.
func (r *repositoryImpl) PurgeUserData(ctx context.Context, userID uuid.UUID) error {
	db := r.db.WithContext(ctx)

	journeyIDs := db.Model(&models.LearningJourney{}).Select("id").Where("user_id = ?", userID)
	if err := db.Where("journey_id IN (?)", journeyIDs).Delete(&models.JourneyPhaseResponse{}).Error; err != nil {
		return err
	}

	ideaIDs := db.Model(&models.StartupIdea{}).Select("id").Where("user_id = ?", userID)
	if err := db.Where("startup_id IN (?)", ideaIDs).Delete(&models.IdeaJourneyProgress{}).Error; err != nil {
		return err
	}
	if err := db.Where("idea_id IN (?) OR applicant_id = ?", ideaIDs, userID).Delete(&models.StartupApplication{}).Error; err != nil {
		return err
	}

	userScoped := []any{
		&models.LearningJourney{},
		&models.StartupIdea{},
		&models.OnboardingState{},
		&models.NaturalRole{},
		&models.EntrepreneurialOnboarding{},
		&models.UserCertification{},
		&models.TrainingOpportunity{},
		&models.Document{},
		&models.UserNotification{},
		&models.UserRole{},
	}
	for _, model := range userScoped {
		if err := db.Where("user_id = ?", userID).Delete(model).Error; err != nil {
			return err
		}
	}

	return db.Where("subject_user_id = ?", userID).Delete(&models.AdminNotification{}).Error
}

// GrantRole inserts a role grant row.
func (r *repositoryImpl) GrantRole(ctx context.Context, grant *models.UserRole) error {
	return r.db.WithContext(ctx).Create(grant).Error
}

// RolesFor returns every role granted to the user.
func (r *repositoryImpl) RolesFor(ctx context.Context, userID uuid.UUID) ([]models.UserRole, error) {
	var roles []models.UserRole
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&roles).Error; err != nil {
		return nil, err
	}
	return roles, nil
}

// HasAnyRole reports whether the user holds at least one of the given roles.
func (r *repositoryImpl) HasAnyRole(ctx context.Context, userID uuid.UUID, roles []enums.PlatformRole) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.UserRole{}).
		Where("user_id = ? AND role IN ?", userID, roles).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
