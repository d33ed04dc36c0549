package trainings

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/b4platform/b4-backend/pkg/db/models"
	"github.com/b4platform/b4-backend/pkg/enums"
	pkgerrors "github.com/b4platform/b4-backend/pkg/errors"
	"github.com/b4platform/b4-backend/pkg/logger"
	"github.com/b4platform/b4-backend/pkg/outbox"
	"github.com/b4platform/b4-backend/pkg/outbox/payloads"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// SubmitTrainingRequest posts a training opportunity for admin review.
type SubmitTrainingRequest struct {
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description" validate:"omitempty,max=10000"`
	Link        string `json:"link" validate:"omitempty,url,max=500"`
}

// TrainingDTO is the transport shape of a training opportunity.
type TrainingDTO struct {
	ID           uuid.UUID                  `json:"id"`
	UserID       uuid.UUID                  `json:"user_id"`
	Title        string                     `json:"title"`
	Description  string                     `json:"description"`
	Link         *string                    `json:"link,omitempty"`
	ReviewStatus enums.TrainingReviewStatus `json:"review_status"`
	AdminNotes   *string                    `json:"admin_notes,omitempty"`
	DecidedAt    *time.Time                 `json:"decided_at,omitempty"`
	CreatedAt    time.Time                  `json:"created_at"`
}

// Service covers the member side of training opportunities. The admin
// decision lives in the reviews service.
type Service interface {
	Submit(ctx context.Context, userID uuid.UUID, input SubmitTrainingRequest) (*TrainingDTO, error)
	ListMine(ctx context.Context, userID uuid.UUID) ([]TrainingDTO, error)
	ListApproved(ctx context.Context) ([]TrainingDTO, error)
}

type service struct {
	repo   Repository
	tx     txRunner
	outbox outboxPublisher
	logg   *logger.Logger
}

// NewService wires the trainings service.
func NewService(repo Repository, tx txRunner, publisher outboxPublisher, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "trainings repository required")
	}
	if tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "tx runner required")
	}
	if publisher == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "outbox publisher required")
	}
	if logg == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "logger required")
	}
	return &service{repo: repo, tx: tx, outbox: publisher, logg: logg}, nil
}

func (s *service) Submit(ctx context.Context, userID uuid.UUID, input SubmitTrainingRequest) (*TrainingDTO, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "title required")
	}

	training := &models.TrainingOpportunity{
		UserID:       userID,
		Title:        title,
		Description:  strings.TrimSpace(input.Description),
		ReviewStatus: enums.TrainingReviewStatusPending,
	}
	if link := strings.TrimSpace(input.Link); link != "" {
		training.Link = &link
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.Create(ctx, training); err != nil {
			return err
		}
		// The admin queue notification fans out from this event.
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventTrainingSubmitted,
			AggregateType: enums.AggregateTraining,
			AggregateID:   training.ID,
			Actor:         &outbox.ActorRef{UserID: userID, Role: string(enums.PlatformRoleUser)},
			Data: payloads.TrainingSubmittedEvent{
				TrainingID: training.ID,
				AuthorID:   userID,
				Title:      title,
			},
			Version: 1,
		})
	})
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "submit training")
	}

	dto := trainingDTO(training)
	return &dto, nil
}

func (s *service) ListMine(ctx context.Context, userID uuid.UUID) ([]TrainingDTO, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	trainings, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list trainings")
	}
	return trainingDTOs(trainings), nil
}

// ListApproved is the public catalogue: only admin-approved opportunities.
func (s *service) ListApproved(ctx context.Context) ([]TrainingDTO, error) {
	trainings, err := s.repo.ListByReviewStatus(ctx, enums.TrainingReviewStatusApproved)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list trainings")
	}
	return trainingDTOs(trainings), nil
}

func trainingDTO(training *models.TrainingOpportunity) TrainingDTO {
	return TrainingDTO{
		ID:           training.ID,
		UserID:       training.UserID,
		Title:        training.Title,
		Description:  training.Description,
		Link:         training.Link,
		ReviewStatus: training.ReviewStatus,
		AdminNotes:   training.AdminNotes,
		DecidedAt:    training.DecidedAt,
		CreatedAt:    training.CreatedAt,
	}
}

func trainingDTOs(trainings []models.TrainingOpportunity) []TrainingDTO {
	dtos := make([]TrainingDTO, 0, len(trainings))
	for i := range trainings {
		dtos = append(dtos, trainingDTO(&trainings[i]))
	}
	return dtos
}
