package journeys

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	dbpkg "github.com/b4platform/b4-backend/pkg/db"
	"github.com/b4platform/b4-backend/pkg/db/models"
	dbtypes "github.com/b4platform/b4-backend/pkg/db/types"
	"github.com/b4platform/b4-backend/pkg/enums"
	pkgerrors "github.com/b4platform/b4-backend/pkg/errors"
	"github.com/b4platform/b4-backend/pkg/flows"
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

// Service drives learning journey progression for the journey owner. Admin
// decisions live in the reviews service.
type Service interface {
	Create(ctx context.Context, userID uuid.UUID, journeyType enums.JourneyType) (*JourneyDTO, error)
	List(ctx context.Context, userID uuid.UUID) ([]JourneyDTO, error)
	Get(ctx context.Context, userID, journeyID uuid.UUID) (*JourneyDetailDTO, error)
	SavePhase(ctx context.Context, userID, journeyID uuid.UUID, phaseNumber int, input SavePhaseRequest) (*JourneyDetailDTO, error)
	CompletePhase(ctx context.Context, userID, journeyID uuid.UUID, phaseNumber int) (*JourneyDetailDTO, error)
	Submit(ctx context.Context, userID, journeyID uuid.UUID) (*JourneyDTO, error)
}

type service struct {
	repo   Repository
	tx     txRunner
	outbox outboxPublisher
	logg   *logger.Logger
}

// NewService wires the journeys service dependencies.
func NewService(repo Repository, tx txRunner, publisher outboxPublisher, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "journeys repository required")
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

func (s *service) Create(ctx context.Context, userID uuid.UUID, journeyType enums.JourneyType) (*JourneyDTO, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	if !journeyType.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid journey type %q", journeyType))
	}

	now := time.Now().UTC()
	journey := &models.LearningJourney{
		UserID:       userID,
		JourneyType:  journeyType,
		CurrentPhase: 1,
		Status:       enums.LearningJourneyStatusInProgress,
		StartedAt:    &now,
	}
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.Create(ctx, journey); err != nil {
			if dbpkg.IsUniqueViolation(err, "idx_learning_journeys_user_type") {
				return pkgerrors.New(pkgerrors.CodeConflict,
					fmt.Sprintf("a %s journey already exists", journeyType))
			}
			return err
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventJourneyStarted,
			AggregateType: enums.AggregateJourney,
			AggregateID:   journey.ID,
			Actor:         &outbox.ActorRef{UserID: userID, Role: string(enums.PlatformRoleUser)},
			Data: payloads.JourneyStartedEvent{
				JourneyID:   journey.ID,
				UserID:      userID,
				JourneyType: journeyType,
			},
			Version: 1,
		})
	})
	if err != nil {
		return nil, s.journeyError(err, "create journey")
	}

	dto := journeyDTO(journey)
	return &dto, nil
}

func (s *service) List(ctx context.Context, userID uuid.UUID) ([]JourneyDTO, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}

	journeys, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list journeys")
	}

	dtos := make([]JourneyDTO, 0, len(journeys))
	for i := range journeys {
		dtos = append(dtos, journeyDTO(&journeys[i]))
	}
	return dtos, nil
}

func (s *service) Get(ctx context.Context, userID, journeyID uuid.UUID) (*JourneyDetailDTO, error) {
	journey, err := s.ownedJourney(ctx, s.repo, userID, journeyID)
	if err != nil {
		return nil, err
	}
	return s.detail(ctx, s.repo, journey)
}

func (s *service) SavePhase(ctx context.Context, userID, journeyID uuid.UUID, phaseNumber int, input SavePhaseRequest) (*JourneyDetailDTO, error) {
	var journey *models.LearningJourney
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		loaded, err := s.ownedJourney(ctx, repo, userID, journeyID)
		if err != nil {
			return err
		}
		if err := s.editable(loaded); err != nil {
			return err
		}
		definition, err := s.unlockedPhase(ctx, repo, loaded, phaseNumber)
		if err != nil {
			return err
		}

		row, err := s.loadOrNewPhase(ctx, repo, journeyID, phaseNumber)
		if err != nil {
			return err
		}
		row.Responses = trimmedResponses(input.Responses)
		row.CompletedTasks = input.CompletedTasks
		row.DocumentIDs = dbtypes.UUIDArray(input.DocumentIDs)
		if err := repo.SavePhase(ctx, row); err != nil {
			return err
		}

		// Editing after a rejection reopens the journey.
		if loaded.Status == enums.LearningJourneyStatusRejected {
			if err := repo.Update(ctx, loaded.ID, map[string]any{
				"status": enums.LearningJourneyStatusInProgress,
			}); err != nil {
				return err
			}
			loaded.Status = enums.LearningJourneyStatusInProgress
		}

		journey = loaded
		return s.emitPhaseSaved(ctx, tx, loaded, definition.Number, row.IsCompleted)
	})
	if err != nil {
		return nil, s.journeyError(err, "save phase")
	}
	return s.detail(ctx, s.repo, journey)
}

func (s *service) CompletePhase(ctx context.Context, userID, journeyID uuid.UUID, phaseNumber int) (*JourneyDetailDTO, error) {
	now := time.Now().UTC()
	var journey *models.LearningJourney
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		loaded, err := s.ownedJourney(ctx, repo, userID, journeyID)
		if err != nil {
			return err
		}
		if err := s.editable(loaded); err != nil {
			return err
		}
		definition, err := s.unlockedPhase(ctx, repo, loaded, phaseNumber)
		if err != nil {
			return err
		}

		row, err := repo.FindPhase(ctx, journeyID, phaseNumber)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeValidation, "save answers before completing the phase")
			}
			return err
		}
		if missing := flows.MissingAnswers(definition, row.Responses); len(missing) > 0 {
			return pkgerrors.New(pkgerrors.CodeValidation,
				fmt.Sprintf("required answers missing: %s", strings.Join(missing, ", ")))
		}

		row.IsCompleted = true
		row.CompletedAt = &now
		if err := repo.SavePhase(ctx, row); err != nil {
			return err
		}

		if next := phaseNumber + 1; next > loaded.CurrentPhase && next <= flows.JourneyPhaseCount(loaded.JourneyType) {
			if err := repo.Update(ctx, loaded.ID, map[string]any{"current_phase": next}); err != nil {
				return err
			}
			loaded.CurrentPhase = next
		}

		journey = loaded
		return s.emitPhaseSaved(ctx, tx, loaded, phaseNumber, true)
	})
	if err != nil {
		return nil, s.journeyError(err, "complete phase")
	}
	return s.detail(ctx, s.repo, journey)
}

func (s *service) Submit(ctx context.Context, userID, journeyID uuid.UUID) (*JourneyDTO, error) {
	now := time.Now().UTC()
	var journey *models.LearningJourney
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		loaded, err := s.ownedJourney(ctx, repo, userID, journeyID)
		if err != nil {
			return err
		}
		if err := s.editable(loaded); err != nil {
			return err
		}

		completed, err := repo.CountCompletedPhases(ctx, journeyID)
		if err != nil {
			return err
		}
		if total := flows.JourneyPhaseCount(loaded.JourneyType); completed < int64(total) {
			return pkgerrors.New(pkgerrors.CodeStateConflict,
				fmt.Sprintf("complete all %d phases before submitting", total))
		}

		if err := repo.Update(ctx, loaded.ID, map[string]any{
			"status":       enums.LearningJourneyStatusPendingApproval,
			"submitted_at": now,
		}); err != nil {
			return err
		}
		loaded.Status = enums.LearningJourneyStatusPendingApproval
		loaded.SubmittedAt = &now

		journey = loaded
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventJourneySubmitted,
			AggregateType: enums.AggregateJourney,
			AggregateID:   loaded.ID,
			Actor:         &outbox.ActorRef{UserID: userID, Role: string(enums.PlatformRoleUser)},
			Data: payloads.JourneySubmittedEvent{
				JourneyID:   loaded.ID,
				UserID:      userID,
				JourneyType: loaded.JourneyType,
				SubmittedAt: now,
			},
			Version: 1,
		})
	})
	if err != nil {
		return nil, s.journeyError(err, "submit journey")
	}

	dto := journeyDTO(journey)
	return &dto, nil
}

// ownedJourney loads a journey and hides other users' journeys as not found.
func (s *service) ownedJourney(ctx context.Context, repo Repository, userID, journeyID uuid.UUID) (*models.LearningJourney, error) {
	if userID == uuid.Nil || journeyID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id and journey id required")
	}
	journey, err := repo.FindByID(ctx, journeyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "journey not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load journey")
	}
	if journey.UserID != userID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "journey not found")
	}
	return journey, nil
}

func (s *service) editable(journey *models.LearningJourney) error {
	switch journey.Status {
	case enums.LearningJourneyStatusPendingApproval:
		return pkgerrors.New(pkgerrors.CodeStateConflict, "journey is awaiting review")
	case enums.LearningJourneyStatusApproved:
		return pkgerrors.New(pkgerrors.CodeStateConflict, "journey is already approved")
	}
	return nil
}

// unlockedPhase validates the phase number against the definitions and the
// linear unlock chain: phase N requires phase N-1 completed.
func (s *service) unlockedPhase(ctx context.Context, repo Repository, journey *models.LearningJourney, phaseNumber int) (flows.Phase, error) {
	definition, ok := flows.JourneyPhase(journey.JourneyType, phaseNumber)
	if !ok {
		return flows.Phase{}, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("journey %s has no phase %d", journey.JourneyType, phaseNumber))
	}
	if phaseNumber == 1 {
		return definition, nil
	}

	previous, err := repo.FindPhase(ctx, journey.ID, phaseNumber-1)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return flows.Phase{}, pkgerrors.New(pkgerrors.CodeStateConflict,
				fmt.Sprintf("phase %d is locked until phase %d is completed", phaseNumber, phaseNumber-1))
		}
		return flows.Phase{}, err
	}
	if !previous.IsCompleted {
		return flows.Phase{}, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("phase %d is locked until phase %d is completed", phaseNumber, phaseNumber-1))
	}
	return definition, nil
}

func (s *service) loadOrNewPhase(ctx context.Context, repo Repository, journeyID uuid.UUID, phaseNumber int) (*models.JourneyPhaseResponse, error) {
	row, err := repo.FindPhase(ctx, journeyID, phaseNumber)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &models.JourneyPhaseResponse{JourneyID: journeyID, PhaseNumber: phaseNumber}, nil
		}
		return nil, err
	}
	return row, nil
}

func (s *service) emitPhaseSaved(ctx context.Context, tx *gorm.DB, journey *models.LearningJourney, phaseNumber int, completed bool) error {
	return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
		EventType:     enums.EventJourneyPhaseSaved,
		AggregateType: enums.AggregateJourney,
		AggregateID:   journey.ID,
		Actor:         &outbox.ActorRef{UserID: journey.UserID, Role: string(enums.PlatformRoleUser)},
		Data: payloads.JourneyPhaseSavedEvent{
			JourneyID:   journey.ID,
			UserID:      journey.UserID,
			JourneyType: journey.JourneyType,
			PhaseNumber: phaseNumber,
			IsCompleted: completed,
		},
		Version: 1,
	})
}

func (s *service) detail(ctx context.Context, repo Repository, journey *models.LearningJourney) (*JourneyDetailDTO, error) {
	saved, err := repo.ListPhases(ctx, journey.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load phases")
	}
	return &JourneyDetailDTO{
		JourneyDTO: journeyDTO(journey),
		Phases:     phaseLadder(journey.JourneyType, saved),
	}, nil
}

func (s *service) journeyError(err error, action string) error {
	if typed := pkgerrors.As(err); typed != nil {
		return err
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, action)
}

func trimmedResponses(responses map[string]string) map[string]string {
	trimmed := make(map[string]string, len(responses))
	for key, value := range responses {
		trimmed[key] = strings.TrimSpace(value)
	}
	return trimmed
}
