package documents

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/b4platform/b4-backend/pkg/db/models"
	"github.com/b4platform/b4-backend/pkg/enums"
)

// Repository persists document metadata for objects in the journey bucket.
type Repository interface {
	Create(ctx context.Context, doc *models.Document) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Document, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Document, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status enums.DocumentStatus) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListPendingBefore(ctx context.Context, cutoff time.Time) ([]models.Document, error)
	DeleteWithTx(tx *gorm.DB, id uuid.UUID) error
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a document repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) Create(ctx context.Context, doc *models.Document) error {
	return r.db.WithContext(ctx).Create(doc).Error
}

func (r *repositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*models.Document, error) {
	var doc models.Document
	if err := r.db.WithContext(ctx).First(&doc, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &doc, nil
}

func (r *repositoryImpl) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Document, error) {
	var docs []models.Document
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND status <> ?", userID, enums.DocumentStatusDeleted).
		Order("created_at DESC").
		Find(&docs).Error
	return docs, err
}

func (r *repositoryImpl) UpdateStatus(ctx context.Context, id uuid.UUID, status enums.DocumentStatus) error {
	return r.db.WithContext(ctx).
		Model(&models.Document{}).
		Where("id = ?", id).
		Update("status", status).Error
}

func (r *repositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Document{}, "id = ?", id).Error
}

// ListPendingBefore returns rows whose upload was presigned but never
// confirmed. The cleanup cron reaps these.
func (r *repositoryImpl) ListPendingBefore(ctx context.Context, cutoff time.Time) ([]models.Document, error) {
	var docs []models.Document
	err := r.db.WithContext(ctx).
		Where("status = ? AND created_at < ?", enums.DocumentStatusPending, cutoff).
		Find(&docs).Error
	return docs, err
}

func (r *repositoryImpl) DeleteWithTx(tx *gorm.DB, id uuid.UUID) error {
	return tx.Delete(&models.Document{}, "id = ?", id).Error
}
