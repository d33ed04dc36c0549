package notifications

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/b4platform/b4-backend/pkg/db/models"
	"github.com/b4platform/b4-backend/pkg/enums"
	pkgerrors "github.com/b4platform/b4-backend/pkg/errors"
	"github.com/b4platform/b4-backend/pkg/pagination"
)

// Service defines notification list/read operations for users and admins.
type Service interface {
	List(ctx context.Context, params ListParams) (*ListResult, error)
	MarkRead(ctx context.Context, userID, notificationID uuid.UUID) error
	MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error)
	AdminList(ctx context.Context, params AdminListParams) (*ListResult, error)
	AdminMarkRead(ctx context.Context, notificationID uuid.UUID) error
	AdminMarkAllRead(ctx context.Context) (int64, error)
}

type service struct {
	repo Repository
}

// ListParams configures pagination for a user's notifications.
type ListParams struct {
	UserID     uuid.UUID
	Limit      int
	Cursor     string
	UnreadOnly bool
}

// AdminListParams configures pagination for the admin queue.
type AdminListParams struct {
	Limit      int
	Cursor     string
	UnreadOnly bool
}

// NotificationDTO is the transport shape with the payload decoded per type.
type NotificationDTO struct {
	ID            uuid.UUID              `json:"id"`
	SubjectUserID *uuid.UUID             `json:"subject_user_id,omitempty"`
	Type          enums.NotificationType `json:"type"`
	Title         string                 `json:"title"`
	Message       string                 `json:"message"`
	Payload       any                    `json:"payload,omitempty"`
	ReadAt        *time.Time             `json:"read_at,omitempty"`
	CreatedAt     time.Time              `json:"created_at"`
}

// ListResult wraps returned notifications and the cursor for the next page.
type ListResult struct {
	Items  []NotificationDTO `json:"items"`
	Cursor string            `json:"cursor"`
}

// NewService wires notifications dependencies.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "notifications repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) List(ctx context.Context, params ListParams) (*ListResult, error) {
	if params.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}

	query := listParams{
		UserID:     params.UserID,
		Limit:      params.Limit,
		UnreadOnly: params.UnreadOnly,
	}
	if params.Cursor != "" {
		cursor, err := pagination.ParseCursor(params.Cursor)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		query.Cursor = cursor
	}

	rows, next, err := s.repo.ListUser(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list notifications")
	}

	items := make([]NotificationDTO, 0, len(rows))
	for _, row := range rows {
		items = append(items, userNotificationDTO(row))
	}

	return &ListResult{Items: items, Cursor: encodeCursor(next)}, nil
}

func (s *service) MarkRead(ctx context.Context, userID, notificationID uuid.UUID) error {
	if userID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	if notificationID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "notification id required")
	}

	result, err := s.repo.MarkUserRead(ctx, userID, notificationID, time.Now().UTC())
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark notification read")
	}
	if !result.Found {
		return pkgerrors.New(pkgerrors.CodeNotFound, "notification not found")
	}
	return nil
}

func (s *service) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	if userID == uuid.Nil {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}

	count, err := s.repo.MarkAllUserRead(ctx, userID, time.Now().UTC())
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark notifications read")
	}
	return count, nil
}

func (s *service) AdminList(ctx context.Context, params AdminListParams) (*ListResult, error) {
	query := listParams{
		Limit:      params.Limit,
		UnreadOnly: params.UnreadOnly,
	}
	if params.Cursor != "" {
		cursor, err := pagination.ParseCursor(params.Cursor)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		query.Cursor = cursor
	}

	rows, next, err := s.repo.ListAdmin(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list admin notifications")
	}

	items := make([]NotificationDTO, 0, len(rows))
	for _, row := range rows {
		items = append(items, adminNotificationDTO(row))
	}

	return &ListResult{Items: items, Cursor: encodeCursor(next)}, nil
}

func (s *service) AdminMarkRead(ctx context.Context, notificationID uuid.UUID) error {
	if notificationID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "notification id required")
	}

	result, err := s.repo.MarkAdminRead(ctx, notificationID, time.Now().UTC())
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark admin notification read")
	}
	if !result.Found {
		return pkgerrors.New(pkgerrors.CodeNotFound, "notification not found")
	}
	return nil
}

func (s *service) AdminMarkAllRead(ctx context.Context) (int64, error) {
	count, err := s.repo.MarkAllAdminRead(ctx, time.Now().UTC())
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark admin notifications read")
	}
	return count, nil
}

func userNotificationDTO(row models.UserNotification) NotificationDTO {
	return NotificationDTO{
		ID:        row.ID,
		Type:      row.Type,
		Title:     row.Title,
		Message:   row.Message,
		Payload:   DecodePayload(row.Type, row.Payload),
		ReadAt:    row.ReadAt,
		CreatedAt: row.CreatedAt,
	}
}

func adminNotificationDTO(row models.AdminNotification) NotificationDTO {
	subject := row.SubjectUserID
	return NotificationDTO{
		ID:            row.ID,
		SubjectUserID: &subject,
		Type:          row.Type,
		Title:         row.Title,
		Message:       row.Message,
		Payload:       DecodePayload(row.Type, row.Payload),
		ReadAt:        row.ReadAt,
		CreatedAt:     row.CreatedAt,
	}
}

func encodeCursor(next *pagination.Cursor) string {
	if next == nil {
		return ""
	}
	return pagination.EncodeCursor(*next)
}
