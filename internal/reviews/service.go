package reviews

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

// Service is the admin review surface: the pending queues plus the four
// decision flows. Every decision writes its status change, the member's
// notification and the outbox event in one transaction.
type Service interface {
	PendingQueue(ctx context.Context) (*PendingQueueDTO, error)
	DecideOnboarding(ctx context.Context, adminID, userID uuid.UUID, input DecideOnboardingRequest) (*OnboardingReviewDTO, error)
	DecideJourney(ctx context.Context, adminID, journeyID uuid.UUID, input DecideJourneyRequest) (*JourneyReviewDTO, error)
	DecideIdea(ctx context.Context, adminID, ideaID uuid.UUID, input DecideIdeaRequest) (*IdeaReviewDTO, error)
	DecideTraining(ctx context.Context, adminID, trainingID uuid.UUID, input DecideTrainingRequest) (*TrainingReviewDTO, error)
}

type service struct {
	repo   Repository
	tx     txRunner
	outbox outboxPublisher
	logg   *logger.Logger
}

// NewService wires the reviews service.
func NewService(repo Repository, tx txRunner, publisher outboxPublisher, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "reviews repository required")
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

func (s *service) PendingQueue(ctx context.Context) (*PendingQueueDTO, error) {
	queue := &PendingQueueDTO{
		Onboarding: []OnboardingReviewDTO{},
		Journeys:   []JourneyReviewDTO{},
		Ideas:      []IdeaReviewDTO{},
		Trainings:  []TrainingReviewDTO{},
	}

	states, err := s.repo.PendingOnboarding(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load onboarding queue")
	}
	for i := range states {
		queue.Onboarding = append(queue.Onboarding, onboardingReviewDTO(&states[i]))
	}

	journeys, err := s.repo.PendingJourneys(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load journey queue")
	}
	for i := range journeys {
		queue.Journeys = append(queue.Journeys, journeyReviewDTO(&journeys[i]))
	}

	ideas, err := s.repo.PendingIdeas(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load idea queue")
	}
	for i := range ideas {
		queue.Ideas = append(queue.Ideas, ideaReviewDTO(&ideas[i]))
	}

	trainings, err := s.repo.PendingTrainings(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load training queue")
	}
	for i := range trainings {
		queue.Trainings = append(queue.Trainings, trainingReviewDTO(&trainings[i]))
	}

	return queue, nil
}

// DecideOnboarding settles a submitted onboarding. Approval grants the
// platform role matching the chosen path; a duplicate grant is a no-op.
func (s *service) DecideOnboarding(ctx context.Context, adminID, userID uuid.UUID, input DecideOnboardingRequest) (*OnboardingReviewDTO, error) {
	if adminID == uuid.Nil || userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "admin id and user id required")
	}
	notes := strings.TrimSpace(input.Notes)
	now := time.Now().UTC()

	var state *models.OnboardingState
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		loaded, err := repo.FindOnboardingState(ctx, userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "onboarding not found")
			}
			return err
		}
		if loaded.JourneyStatus != enums.JourneyStatusPendingApproval {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "onboarding is not awaiting review")
		}
		if loaded.PrimaryRole == nil {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "onboarding has no chosen path")
		}

		status := enums.JourneyStatusRejected
		if input.Approve {
			status = enums.JourneyStatusApproved
			if *loaded.PrimaryRole == enums.PrimaryRoleEntrepreneur {
				status = enums.JourneyStatusEntrepreneurApproved
			}
		}
		if err := repo.UpdateOnboardingState(ctx, userID, map[string]any{"journey_status": status}); err != nil {
			return err
		}
		loaded.JourneyStatus = status

		if input.Approve {
			if err := s.grantPathRole(ctx, repo, adminID, userID, *loaded.PrimaryRole); err != nil {
				return err
			}
		}

		verdict := "approved"
		if !input.Approve {
			verdict = "rejected"
		}
		if err := repo.CreateUserNotification(ctx, &models.UserNotification{
			UserID:  userID,
			Type:    enums.NotificationTypeOnboardingDecision,
			Title:   fmt.Sprintf("Onboarding %s", verdict),
			Message: fmt.Sprintf("An admin %s your onboarding submission.", verdict),
			Payload: notifications.MarshalPayload(notifications.OnboardingDecisionPayload{
				Status: status,
				Notes:  notes,
			}),
		}); err != nil {
			return err
		}

		if input.NotificationID != nil {
			if err := repo.MarkAdminNotificationRead(ctx, *input.NotificationID, now); err != nil {
				return err
			}
		}

		state = loaded
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOnboardingDecided,
			AggregateType: enums.AggregateOnboarding,
			AggregateID:   loaded.ID,
			Actor:         &outbox.ActorRef{UserID: adminID, Role: string(enums.PlatformRoleAdmin)},
			Data: payloads.OnboardingDecidedEvent{
				UserID:      userID,
				PrimaryRole: *loaded.PrimaryRole,
				Status:      status,
				ReviewedBy:  adminID,
				Notes:       notes,
			},
			Version: 1,
		})
	})
	if err != nil {
		return nil, s.reviewError(err, "decide onboarding")
	}

	dto := onboardingReviewDTO(state)
	return &dto, nil
}

// DecideJourney settles a submitted learning journey. Approval grants the
// certification mapped to the journey type and mutates the member's
// onboarding status in the same transaction. Rejections require notes.
func (s *service) DecideJourney(ctx context.Context, adminID, journeyID uuid.UUID, input DecideJourneyRequest) (*JourneyReviewDTO, error) {
	if adminID == uuid.Nil || journeyID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "admin id and journey id required")
	}
	notes := strings.TrimSpace(input.Notes)
	if !input.Approve && notes == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "rejection notes required")
	}
	now := time.Now().UTC()

	var journey *models.LearningJourney
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		loaded, err := repo.FindJourney(ctx, journeyID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "journey not found")
			}
			return err
		}
		if loaded.Status != enums.LearningJourneyStatusPendingApproval {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "journey is not awaiting review")
		}

		status := enums.LearningJourneyStatusRejected
		if input.Approve {
			status = enums.LearningJourneyStatusApproved
		}
		fields := map[string]any{
			"status":     status,
			"decided_at": now,
		}
		if notes != "" {
			fields["admin_notes"] = notes
		}
		if err := repo.UpdateJourney(ctx, journeyID, fields); err != nil {
			return err
		}
		loaded.Status = status
		loaded.DecidedAt = &now
		if notes != "" {
			loaded.AdminNotes = &notes
		}

		if input.Approve {
			if err := s.awardJourney(ctx, tx, repo, adminID, loaded); err != nil {
				return err
			}
		}

		verdict := "approved"
		if !input.Approve {
			verdict = "rejected"
		}
		if err := repo.CreateUserNotification(ctx, &models.UserNotification{
			UserID:  loaded.UserID,
			Type:    enums.NotificationTypeJourneyDecision,
			Title:   fmt.Sprintf("Journey %s", verdict),
			Message: fmt.Sprintf("An admin %s your %s journey.", verdict, loaded.JourneyType),
			Payload: notifications.MarshalPayload(notifications.JourneyDecisionPayload{
				JourneyID:   loaded.ID,
				JourneyType: loaded.JourneyType,
				Status:      status,
				Notes:       notes,
			}),
		}); err != nil {
			return err
		}

		journey = loaded
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventJourneyDecided,
			AggregateType: enums.AggregateJourney,
			AggregateID:   loaded.ID,
			Actor:         &outbox.ActorRef{UserID: adminID, Role: string(enums.PlatformRoleAdmin)},
			Data: payloads.JourneyDecidedEvent{
				JourneyID:   loaded.ID,
				UserID:      loaded.UserID,
				JourneyType: loaded.JourneyType,
				Status:      status,
				ReviewedBy:  adminID,
				Notes:       notes,
			},
			Version: 1,
		})
	})
	if err != nil {
		return nil, s.reviewError(err, "decide journey")
	}

	dto := journeyReviewDTO(journey)
	return &dto, nil
}

// DecideIdea moves an idea to approved, rejected or under_review and notifies
// the initiator.
func (s *service) DecideIdea(ctx context.Context, adminID, ideaID uuid.UUID, input DecideIdeaRequest) (*IdeaReviewDTO, error) {
	if adminID == uuid.Nil || ideaID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "admin id and idea id required")
	}
	decision, err := enums.ParseReviewStatus(input.Decision)
	if err != nil || decision == enums.ReviewStatusPending {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "decision must be approved, rejected or under_review")
	}
	notes := strings.TrimSpace(input.Notes)

	var idea *models.StartupIdea
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		loaded, err := repo.FindIdea(ctx, ideaID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "idea not found")
			}
			return err
		}
		if loaded.ReviewStatus != enums.ReviewStatusPending && loaded.ReviewStatus != enums.ReviewStatusUnderReview {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "idea already decided")
		}

		fields := map[string]any{"review_status": decision}
		if notes != "" {
			fields["admin_notes"] = notes
		}
		if err := repo.UpdateIdea(ctx, ideaID, fields); err != nil {
			return err
		}
		loaded.ReviewStatus = decision
		if notes != "" {
			loaded.AdminNotes = &notes
		}

		if err := repo.CreateUserNotification(ctx, &models.UserNotification{
			UserID:  loaded.UserID,
			Type:    enums.NotificationTypeIdeaDecision,
			Title:   fmt.Sprintf("Idea %s", decision),
			Message: fmt.Sprintf("An admin moved %q to %s.", loaded.Title, decision),
			Payload: notifications.MarshalPayload(notifications.IdeaDecisionPayload{
				IdeaID: loaded.ID,
				Status: decision,
				Notes:  notes,
			}),
		}); err != nil {
			return err
		}

		idea = loaded
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventIdeaDecided,
			AggregateType: enums.AggregateIdea,
			AggregateID:   loaded.ID,
			Actor:         &outbox.ActorRef{UserID: adminID, Role: string(enums.PlatformRoleAdmin)},
			Data: payloads.IdeaDecidedEvent{
				IdeaID:      loaded.ID,
				InitiatorID: loaded.UserID,
				Status:      decision,
				ReviewedBy:  adminID,
				Notes:       notes,
			},
			Version: 1,
		})
	})
	if err != nil {
		return nil, s.reviewError(err, "decide idea")
	}

	dto := ideaReviewDTO(idea)
	return &dto, nil
}

// DecideTraining approves or declines a training opportunity.
func (s *service) DecideTraining(ctx context.Context, adminID, trainingID uuid.UUID, input DecideTrainingRequest) (*TrainingReviewDTO, error) {
	if adminID == uuid.Nil || trainingID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "admin id and training id required")
	}
	notes := strings.TrimSpace(input.Notes)
	now := time.Now().UTC()

	var training *models.TrainingOpportunity
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		loaded, err := repo.FindTraining(ctx, trainingID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "training not found")
			}
			return err
		}
		if loaded.ReviewStatus != enums.TrainingReviewStatusPending {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "training already decided")
		}

		status := enums.TrainingReviewStatusDeclined
		if input.Approve {
			status = enums.TrainingReviewStatusApproved
		}
		fields := map[string]any{
			"review_status": status,
			"decided_at":    now,
		}
		if notes != "" {
			fields["admin_notes"] = notes
		}
		if err := repo.UpdateTraining(ctx, trainingID, fields); err != nil {
			return err
		}
		loaded.ReviewStatus = status
		loaded.DecidedAt = &now
		if notes != "" {
			loaded.AdminNotes = &notes
		}

		verdict := "approved"
		if !input.Approve {
			verdict = "declined"
		}
		if err := repo.CreateUserNotification(ctx, &models.UserNotification{
			UserID:  loaded.UserID,
			Type:    enums.NotificationTypeTrainingDecision,
			Title:   fmt.Sprintf("Training %s", verdict),
			Message: fmt.Sprintf("An admin %s %q.", verdict, loaded.Title),
			Payload: notifications.MarshalPayload(notifications.TrainingDecisionPayload{
				TrainingID: loaded.ID,
				Status:     status,
				Notes:      notes,
			}),
		}); err != nil {
			return err
		}

		training = loaded
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventTrainingDecided,
			AggregateType: enums.AggregateTraining,
			AggregateID:   loaded.ID,
			Actor:         &outbox.ActorRef{UserID: adminID, Role: string(enums.PlatformRoleAdmin)},
			Data: payloads.TrainingDecidedEvent{
				TrainingID: loaded.ID,
				AuthorID:   loaded.UserID,
				Status:     status,
				ReviewedBy: adminID,
			},
			Version: 1,
		})
	})
	if err != nil {
		return nil, s.reviewError(err, "decide training")
	}

	dto := trainingReviewDTO(training)
	return &dto, nil
}

// awardJourney grants the mapped certification, applies the onboarding status
// mutation and notifies the member about the new credential.
func (s *service) awardJourney(ctx context.Context, tx *gorm.DB, repo Repository, adminID uuid.UUID, journey *models.LearningJourney) error {
	award, ok := journeyAwards[journey.JourneyType]
	if !ok {
		return pkgerrors.New(pkgerrors.CodeInternal, fmt.Sprintf("no award mapping for journey type %s", journey.JourneyType))
	}

	journeyID := journey.ID
	if err := repo.UpsertCertification(ctx, &models.UserCertification{
		UserID:            journey.UserID,
		CertificationType: award.CertificationType,
		DisplayLabel:      award.DisplayLabel,
		JourneyID:         &journeyID,
		Verified:          true,
		GrantedBy:         &adminID,
	}); err != nil {
		return err
	}

	fields := map[string]any{"user_status": award.UserStatus}
	if award.BoostType != nil {
		fields["boost_type"] = *award.BoostType
	}
	if award.ScaleType != nil {
		fields["scale_type"] = *award.ScaleType
	}
	if err := repo.UpdateOnboardingState(ctx, journey.UserID, fields); err != nil {
		return err
	}

	if err := repo.CreateUserNotification(ctx, &models.UserNotification{
		UserID:  journey.UserID,
		Type:    enums.NotificationTypeCertificationGranted,
		Title:   "Certification granted",
		Message: fmt.Sprintf("You earned the %s credential.", award.DisplayLabel),
		Payload: notifications.MarshalPayload(notifications.CertificationGrantedPayload{
			CertificationType: award.CertificationType,
			DisplayLabel:      award.DisplayLabel,
		}),
	}); err != nil {
		return err
	}

	return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
		EventType:     enums.EventCertificationGranted,
		AggregateType: enums.AggregateUser,
		AggregateID:   journey.UserID,
		Actor:         &outbox.ActorRef{UserID: adminID, Role: string(enums.PlatformRoleAdmin)},
		Data: payloads.CertificationGrantedEvent{
			UserID:            journey.UserID,
			CertificationType: award.CertificationType,
			DisplayLabel:      award.DisplayLabel,
			GrantedBy:         adminID,
		},
		Version: 1,
	})
}

func (s *service) grantPathRole(ctx context.Context, repo Repository, adminID, userID uuid.UUID, primaryRole enums.PrimaryRole) error {
	role := enums.PlatformRoleCoBuilder
	if primaryRole == enums.PrimaryRoleEntrepreneur {
		role = enums.PlatformRoleEntrepreneur
	}
	err := repo.GrantRole(ctx, &models.UserRole{
		UserID:    userID,
		Role:      role,
		GrantedBy: &adminID,
	})
	if err != nil && dbpkg.IsUniqueViolation(err, "idx_user_roles_user_role") {
		// Re-approving grants nothing new.
		return nil
	}
	return err
}

func (s *service) reviewError(err error, action string) error {
	if typed := pkgerrors.As(err); typed != nil {
		return err
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, action)
}
