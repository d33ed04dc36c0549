package onboarding

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/b4platform/b4-backend/internal/notifications"
	dbpkg "github.com/b4platform/b4-backend/pkg/db"
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

type adminNotifier interface {
	CreateAdmin(ctx context.Context, notification *models.AdminNotification) error
}

// notifierFactory binds an admin notification writer to the wizard's
// transaction so a needs-help row commits with the step that raised it.
type notifierFactory func(tx *gorm.DB) adminNotifier

// Service drives the onboarding wizard state machine.
type Service interface {
	Get(ctx context.Context, userID uuid.UUID) (*WizardDTO, error)
	ChoosePath(ctx context.Context, userID uuid.UUID, role enums.PrimaryRole) (*WizardDTO, error)
	SaveStep(ctx context.Context, userID uuid.UUID, step int, input SaveStepRequest) (*WizardDTO, error)
	Submit(ctx context.Context, userID uuid.UUID) (*WizardDTO, error)
}

type service struct {
	repo     Repository
	tx       txRunner
	outbox   outboxPublisher
	notifier notifierFactory
	logg     *logger.Logger
}

// NewService wires the onboarding service. A nil notifier falls back to the
// notifications repository bound to the step transaction.
func NewService(
	repo Repository,
	tx txRunner,
	publisher outboxPublisher,
	notifier notifierFactory,
	logg *logger.Logger,
) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "onboarding repository required")
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
	if notifier == nil {
		notifier = func(tx *gorm.DB) adminNotifier {
			return notifications.NewRepository(tx)
		}
	}
	return &service{
		repo:     repo,
		tx:       tx,
		outbox:   publisher,
		notifier: notifier,
		logg:     logg,
	}, nil
}

func (s *service) Get(ctx context.Context, userID uuid.UUID) (*WizardDTO, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}

	state, err := s.loadOrCreateState(ctx, s.repo, userID)
	if err != nil {
		return nil, err
	}
	return s.assemble(ctx, state)
}

func (s *service) ChoosePath(ctx context.Context, userID uuid.UUID, role enums.PrimaryRole) (*WizardDTO, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	if !role.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid primary role %q", role))
	}

	var state *models.OnboardingState
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		loaded, err := s.loadOrCreateState(ctx, repo, userID)
		if err != nil {
			return err
		}

		fields := map[string]any{"primary_role": role}
		loaded.PrimaryRole = &role
		// Path selection is step one; picking a path unlocks step two.
		if loaded.CurrentStep < 2 {
			fields["current_step"] = 2
			loaded.CurrentStep = 2
		}
		if err := repo.UpdateState(ctx, userID, fields); err != nil {
			return err
		}
		state = loaded
		return nil
	})
	if err != nil {
		return nil, s.wizardError(err, "choose path")
	}
	return s.assemble(ctx, state)
}

func (s *service) SaveStep(ctx context.Context, userID uuid.UUID, step int, input SaveStepRequest) (*WizardDTO, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	if step < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "step must be positive")
	}
	if input.Check != nil && !input.Check.Answer.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid answer %q", input.Check.Answer))
	}

	var state *models.OnboardingState
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		loaded, err := s.loadOrCreateState(ctx, repo, userID)
		if err != nil {
			return err
		}
		// current_step only advances. Resubmitting an earlier step means the
		// client navigated Back and tried to write; Back reads never mutate.
		if step < loaded.CurrentStep {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "step already completed")
		}

		if input.Description != nil {
			if err := s.applyDescription(ctx, repo, userID, *input.Description); err != nil {
				return err
			}
		}
		if input.Check != nil {
			if err := s.applyCheck(ctx, tx, repo, userID, *input.Check); err != nil {
				return err
			}
		}
		if input.Entrepreneurial != nil {
			if err := s.applyCategory(ctx, tx, repo, userID, *input.Entrepreneurial); err != nil {
				return err
			}
		}

		if next := step + 1; next > loaded.CurrentStep {
			if err := repo.UpdateState(ctx, userID, map[string]any{"current_step": next}); err != nil {
				return err
			}
			loaded.CurrentStep = next
		}
		state = loaded
		return nil
	})
	if err != nil {
		return nil, s.wizardError(err, "save onboarding step")
	}
	return s.assemble(ctx, state)
}

func (s *service) Submit(ctx context.Context, userID uuid.UUID) (*WizardDTO, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}

	now := time.Now().UTC()
	var state *models.OnboardingState
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		loaded, err := repo.FindState(ctx, userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeStateConflict, "onboarding not started")
			}
			return err
		}
		if loaded.PrimaryRole == nil {
			return pkgerrors.New(pkgerrors.CodeValidation, "choose a path before submitting")
		}
		switch loaded.JourneyStatus {
		case enums.JourneyStatusPendingApproval:
			return pkgerrors.New(pkgerrors.CodeStateConflict, "onboarding already submitted")
		case enums.JourneyStatusApproved, enums.JourneyStatusEntrepreneurApproved:
			return pkgerrors.New(pkgerrors.CodeStateConflict, "onboarding already approved")
		}

		fields := map[string]any{
			"journey_status":       enums.JourneyStatusPendingApproval,
			"onboarding_completed": true,
			"submitted_at":         now,
		}
		if err := repo.UpdateState(ctx, userID, fields); err != nil {
			return err
		}
		loaded.JourneyStatus = enums.JourneyStatusPendingApproval
		loaded.OnboardingCompleted = true
		loaded.SubmittedAt = &now

		// Admin and user notification rows fan out from this event.
		if err := s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOnboardingSubmitted,
			AggregateType: enums.AggregateOnboarding,
			AggregateID:   userID,
			Actor:         &outbox.ActorRef{UserID: userID, Role: string(enums.PlatformRoleUser)},
			Data: payloads.OnboardingSubmittedEvent{
				UserID:      userID,
				PrimaryRole: *loaded.PrimaryRole,
				SubmittedAt: now,
			},
			Version: 1,
		}); err != nil {
			return err
		}
		state = loaded
		return nil
	})
	if err != nil {
		return nil, s.wizardError(err, "submit onboarding")
	}

	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"user_id":      userID,
		"primary_role": state.PrimaryRole,
	}), "onboarding submitted for review")
	return s.assemble(ctx, state)
}

func (s *service) applyDescription(ctx context.Context, repo Repository, userID uuid.UUID, description string) error {
	role, err := s.loadOrNewNaturalRole(ctx, repo, userID)
	if err != nil {
		return err
	}
	role.Description = strings.TrimSpace(description)
	role.IsReady = role.AllChecksTrue()
	return repo.SaveNaturalRole(ctx, role)
}

func (s *service) applyCheck(ctx context.Context, tx *gorm.DB, repo Repository, userID uuid.UUID, input CheckInput) error {
	role, err := s.loadOrNewNaturalRole(ctx, repo, userID)
	if err != nil {
		return err
	}

	checked := input.Answer == enums.CheckAnswerYes
	needsHelp := input.Answer == enums.CheckAnswerNeedsHelp
	var detail *string
	if trimmed := strings.TrimSpace(input.Detail); trimmed != "" {
		detail = &trimmed
	}

	switch input.Area {
	case AreaPromise:
		role.PromiseCheck = checked
		role.PromiseDetail = detail
		role.PromiseNeedsHelp = needsHelp
	case AreaPractice:
		role.PracticeCheck = checked
		role.PracticeDetail = detail
		role.PracticeNeedsHelp = needsHelp
	case AreaTraining:
		role.TrainingCheck = checked
		role.TrainingDetail = detail
		role.TrainingNeedsHelp = needsHelp
	case AreaConsulting:
		role.ConsultingCheck = checked
		role.ConsultingDetail = detail
		role.ConsultingNeedsHelp = needsHelp
	default:
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown check area %q", input.Area))
	}

	role.IsReady = role.AllChecksTrue()
	if err := repo.SaveNaturalRole(ctx, role); err != nil {
		return err
	}

	if needsHelp {
		return s.raiseNeedsHelp(ctx, tx, userID, input.Area, input.Detail)
	}
	return nil
}

func (s *service) applyCategory(ctx context.Context, tx *gorm.DB, repo Repository, userID uuid.UUID, input CategoryInput) error {
	record, err := s.loadOrNewEntrepreneurial(ctx, repo, userID)
	if err != nil {
		return err
	}

	var description *string
	if trimmed := strings.TrimSpace(input.Description); trimmed != "" {
		description = &trimmed
	}

	switch input.Category {
	case CategoryProject:
		record.HasProject = input.Has
		record.ProjectDescription = description
		record.ProjectCount = input.Count
		record.ProjectNeedsHelp = input.NeedsHelp
	case CategoryProduct:
		record.HasProduct = input.Has
		record.ProductDescription = description
		record.ProductCount = input.Count
		record.ProductNeedsHelp = input.NeedsHelp
	case CategoryTeam:
		record.HasTeam = input.Has
		record.TeamDescription = description
		record.TeamCount = input.Count
		record.TeamNeedsHelp = input.NeedsHelp
	case CategoryBusiness:
		record.HasBusiness = input.Has
		record.BusinessDescription = description
		record.BusinessCount = input.Count
		record.BusinessNeedsHelp = input.NeedsHelp
	case CategoryBoard:
		record.HasBoard = input.Has
		record.BoardDescription = description
		record.BoardCount = input.Count
		record.BoardNeedsHelp = input.NeedsHelp
	default:
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown category %q", input.Category))
	}

	if err := repo.SaveEntrepreneurial(ctx, record); err != nil {
		return err
	}

	if input.NeedsHelp {
		return s.raiseNeedsHelp(ctx, tx, userID, input.Category, input.Description)
	}
	return nil
}

// raiseNeedsHelp writes the admin queue entry inside the step transaction so
// the flag and the notification commit together. The step still advances.
func (s *service) raiseNeedsHelp(ctx context.Context, tx *gorm.DB, userID uuid.UUID, area, detail string) error {
	row := &models.AdminNotification{
		SubjectUserID: userID,
		Type:          enums.NotificationTypeNeedsHelp,
		Title:         "Member asked for help",
		Message:       fmt.Sprintf("A member flagged the %s area of onboarding and asked for help.", area),
		Payload: notifications.MarshalPayload(notifications.NeedsHelpPayload{
			Area:   area,
			Detail: strings.TrimSpace(detail),
		}),
	}
	return s.notifier(tx).CreateAdmin(ctx, row)
}

func (s *service) loadOrCreateState(ctx context.Context, repo Repository, userID uuid.UUID) (*models.OnboardingState, error) {
	state, err := repo.FindState(ctx, userID)
	if err == nil {
		return state, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load onboarding state")
	}

	fresh := &models.OnboardingState{
		UserID:        userID,
		CurrentStep:   1,
		JourneyStatus: enums.JourneyStatusInProgress,
	}
	if err := repo.CreateState(ctx, fresh); err != nil {
		// Two first visits can race; the loser reads the winner's row.
		if dbpkg.IsUniqueViolation(err, "idx_onboarding_states_user_id") {
			state, findErr := repo.FindState(ctx, userID)
			if findErr != nil {
				return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, findErr, "load onboarding state")
			}
			return state, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create onboarding state")
	}
	return fresh, nil
}

func (s *service) loadOrNewNaturalRole(ctx context.Context, repo Repository, userID uuid.UUID) (*models.NaturalRole, error) {
	role, err := repo.FindNaturalRole(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &models.NaturalRole{UserID: userID}, nil
		}
		return nil, err
	}
	return role, nil
}

func (s *service) loadOrNewEntrepreneurial(ctx context.Context, repo Repository, userID uuid.UUID) (*models.EntrepreneurialOnboarding, error) {
	record, err := repo.FindEntrepreneurial(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &models.EntrepreneurialOnboarding{UserID: userID}, nil
		}
		return nil, err
	}
	return record, nil
}

func (s *service) assemble(ctx context.Context, state *models.OnboardingState) (*WizardDTO, error) {
	dto := &WizardDTO{State: stateDTO(state)}

	role, err := s.repo.FindNaturalRole(ctx, state.UserID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load natural role")
	}
	dto.NaturalRole = naturalRoleDTO(role)

	record, err := s.repo.FindEntrepreneurial(ctx, state.UserID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load entrepreneurial onboarding")
	}
	dto.Entrepreneurial = entrepreneurialDTO(record)

	return dto, nil
}

func (s *service) wizardError(err error, action string) error {
	if typed := pkgerrors.As(err); typed != nil {
		return err
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, action)
}
