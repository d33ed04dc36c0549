package documents

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/b4platform/b4-backend/pkg/db/models"
	"github.com/b4platform/b4-backend/pkg/enums"
	pkgerrors "github.com/b4platform/b4-backend/pkg/errors"
	"github.com/b4platform/b4-backend/pkg/logger"
)

const maxUploadBytes = 20 * 1024 * 1024

// Journey uploads are evidence and worksheets, not media assets. PDFs,
// office documents and images cover what the wizard screens accept.
var allowedMimeTypes = []string{
	"application/pdf",
	"application/msword",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	"text/plain",
	"image/png",
	"image/jpeg",
	"image/webp",
}

type gcsClient interface {
	SignedURL(bucket, object, contentType string, expires time.Duration) (string, error)
	SignedReadURL(bucket, object string, expires time.Duration) (string, error)
	DeleteObject(ctx context.Context, bucket, object string) error
}

// PresignRequest models the payload required to request an upload URL.
type PresignRequest struct {
	FileName  string `json:"file_name" validate:"required,max=255"`
	MimeType  string `json:"mime_type" validate:"required"`
	SizeBytes int64  `json:"size_bytes" validate:"required"`
}

// PresignDTO is returned to the client after the metadata row is created.
type PresignDTO struct {
	DocumentID   uuid.UUID `json:"document_id"`
	ObjectKey    string    `json:"object_key"`
	SignedPutURL string    `json:"signed_put_url"`
	ContentType  string    `json:"content_type"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// ReadURLDTO carries a short-lived download URL.
type ReadURLDTO struct {
	DocumentID uuid.UUID `json:"document_id"`
	FileName   string    `json:"file_name"`
	SignedURL  string    `json:"signed_url"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// DocumentDTO is the list/detail projection.
type DocumentDTO struct {
	ID        uuid.UUID            `json:"id"`
	FileName  string               `json:"file_name"`
	MimeType  string               `json:"mime_type"`
	SizeBytes int64                `json:"size_bytes"`
	Status    enums.DocumentStatus `json:"status"`
	CreatedAt time.Time            `json:"created_at"`
}

// Service exposes journey document presign and lifecycle semantics.
type Service interface {
	PresignUpload(ctx context.Context, userID uuid.UUID, input PresignRequest) (*PresignDTO, error)
	ConfirmUpload(ctx context.Context, userID, documentID uuid.UUID) (*DocumentDTO, error)
	ReadURL(ctx context.Context, userID, documentID uuid.UUID) (*ReadURLDTO, error)
	ListMine(ctx context.Context, userID uuid.UUID) ([]DocumentDTO, error)
	Delete(ctx context.Context, userID, documentID uuid.UUID) error
}

type service struct {
	repo    Repository
	gcs     gcsClient
	bucket  string
	putTTL  time.Duration
	readTTL time.Duration
	logg    *logger.Logger
}

// NewService constructs a document service backed by the repository and GCS signer.
func NewService(repo Repository, gcs gcsClient, bucket string, putTTL, readTTL time.Duration, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "document repository required")
	}
	if gcs == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "gcs client required")
	}
	if bucket == "" {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "gcs bucket required")
	}
	if putTTL <= 0 || readTTL <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "signed url ttls must be positive")
	}
	if logg == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "logger required")
	}
	return &service{repo: repo, gcs: gcs, bucket: bucket, putTTL: putTTL, readTTL: readTTL, logg: logg}, nil
}

func (s *service) PresignUpload(ctx context.Context, userID uuid.UUID, input PresignRequest) (*PresignDTO, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user identity missing")
	}

	fileName := strings.TrimSpace(input.FileName)
	if fileName == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "file_name is required")
	}
	if input.SizeBytes <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "size_bytes must be positive")
	}
	if input.SizeBytes > maxUploadBytes {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("size_bytes must be at most %d bytes", maxUploadBytes))
	}
	mimeType := strings.TrimSpace(input.MimeType)
	if !isAllowedMime(mimeType) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "mime_type not allowed for journey documents")
	}

	documentID := uuid.New()
	objectKey := buildObjectKey(userID, documentID, fileName)

	doc := &models.Document{
		ID:        documentID,
		UserID:    userID,
		Bucket:    s.bucket,
		ObjectKey: objectKey,
		FileName:  fileName,
		MimeType:  mimeType,
		SizeBytes: input.SizeBytes,
		Status:    enums.DocumentStatusPending,
	}
	if err := s.repo.Create(ctx, doc); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist document row")
	}

	expiresAt := time.Now().Add(s.putTTL)
	signedURL, err := s.gcs.SignedURL(s.bucket, objectKey, mimeType, s.putTTL)
	if err != nil {
		// The row is useless without a URL the client can PUT to.
		if delErr := s.repo.Delete(ctx, documentID); delErr != nil {
			ctx = s.logg.WithField(ctx, "document_id", documentID.String())
			s.logg.Error(ctx, "rolling back document row after presign failure", delErr)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sign upload url")
	}

	return &PresignDTO{
		DocumentID:   documentID,
		ObjectKey:    objectKey,
		SignedPutURL: signedURL,
		ContentType:  mimeType,
		ExpiresAt:    expiresAt,
	}, nil
}

func (s *service) ConfirmUpload(ctx context.Context, userID, documentID uuid.UUID) (*DocumentDTO, error) {
	doc, err := s.ownedDocument(ctx, userID, documentID)
	if err != nil {
		return nil, err
	}
	if doc.Status == enums.DocumentStatusDeleted {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "document was deleted")
	}
	if doc.Status != enums.DocumentStatusUploaded {
		if err := s.repo.UpdateStatus(ctx, doc.ID, enums.DocumentStatusUploaded); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "confirm document upload")
		}
		doc.Status = enums.DocumentStatusUploaded
	}
	dto := toDocumentDTO(*doc)
	return &dto, nil
}

func (s *service) ReadURL(ctx context.Context, userID, documentID uuid.UUID) (*ReadURLDTO, error) {
	doc, err := s.ownedDocument(ctx, userID, documentID)
	if err != nil {
		return nil, err
	}
	if doc.Status == enums.DocumentStatusDeleted {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "document not found")
	}

	expiresAt := time.Now().Add(s.readTTL)
	signedURL, err := s.gcs.SignedReadURL(doc.Bucket, doc.ObjectKey, s.readTTL)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sign read url")
	}
	return &ReadURLDTO{
		DocumentID: doc.ID,
		FileName:   doc.FileName,
		SignedURL:  signedURL,
		ExpiresAt:  expiresAt,
	}, nil
}

func (s *service) ListMine(ctx context.Context, userID uuid.UUID) ([]DocumentDTO, error) {
	docs, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list documents")
	}
	out := make([]DocumentDTO, 0, len(docs))
	for _, doc := range docs {
		out = append(out, toDocumentDTO(doc))
	}
	return out, nil
}

func (s *service) Delete(ctx context.Context, userID, documentID uuid.UUID) error {
	doc, err := s.ownedDocument(ctx, userID, documentID)
	if err != nil {
		return err
	}
	if doc.Status == enums.DocumentStatusDeleted {
		return nil
	}

	if err := s.gcs.DeleteObject(ctx, doc.Bucket, doc.ObjectKey); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete document object")
	}
	if err := s.repo.UpdateStatus(ctx, doc.ID, enums.DocumentStatusDeleted); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark document deleted")
	}
	return nil
}

// ownedDocument loads a document and hides other users' documents behind
// NotFound rather than Forbidden.
func (s *service) ownedDocument(ctx context.Context, userID, documentID uuid.UUID) (*models.Document, error) {
	doc, err := s.repo.FindByID(ctx, documentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "document not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load document")
	}
	if doc.UserID != userID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "document not found")
	}
	return doc, nil
}

func toDocumentDTO(doc models.Document) DocumentDTO {
	return DocumentDTO{
		ID:        doc.ID,
		FileName:  doc.FileName,
		MimeType:  doc.MimeType,
		SizeBytes: doc.SizeBytes,
		Status:    doc.Status,
		CreatedAt: doc.CreatedAt,
	}
}

func isAllowedMime(mimeType string) bool {
	for _, candidate := range allowedMimeTypes {
		if strings.EqualFold(candidate, mimeType) {
			return true
		}
	}
	return false
}

func buildObjectKey(userID, documentID uuid.UUID, fileName string) string {
	cleanName := sanitizeFileName(fileName)
	if cleanName == "" {
		cleanName = documentID.String()
	}
	return fmt.Sprintf("journeys/%s/%s/%s", userID, documentID, cleanName)
}

func sanitizeFileName(name string) string {
	clean := path.Base(strings.TrimSpace(name))
	var b strings.Builder
	b.Grow(len(clean))
	for _, r := range clean {
		switch {
		case r == '/' || r == '\\' || unicode.IsControl(r):
			continue
		case unicode.IsSpace(r):
			b.WriteRune('-')
		default:
			b.WriteRune(r)
		}
	}
	return strings.Trim(b.String(), "-_.")
}
