package ideas

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/b4platform/b4-backend/internal/notifications"
	dbpkg "github.com/b4platform/b4-backend/pkg/db"
	"github.com/b4platform/b4-backend/pkg/db/models"
	"github.com/b4platform/b4-backend/pkg/enums"
	pkgerrors "github.com/b4platform/b4-backend/pkg/errors"
	"github.com/b4platform/b4-backend/pkg/logger"
	"github.com/b4platform/b4-backend/pkg/outbox"
	"github.com/b4platform/b4-backend/pkg/outbox/payloads"
	"github.com/b4platform/b4-backend/pkg/pagination"
	"github.com/b4platform/b4-backend/pkg/visibility"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type userNotifier interface {
	CreateUser(ctx context.Context, notification *models.UserNotification) error
}

type notifierFactory func(tx *gorm.DB) userNotifier

// Service covers the initiator and co-builder sides of startup ideas:
// CRUD, the browse feed, applications, and episode progression. Admin review
// decisions live in the reviews service.
type Service interface {
	Create(ctx context.Context, userID uuid.UUID, input CreateIdeaRequest) (*IdeaDTO, error)
	ListMine(ctx context.Context, userID uuid.UUID) ([]IdeaDTO, error)
	Browse(ctx context.Context, params BrowseParams) (*BrowseResult, error)
	Get(ctx context.Context, viewerID, ideaID uuid.UUID) (*IdeaDTO, error)
	Update(ctx context.Context, userID, ideaID uuid.UUID, input UpdateIdeaRequest) (*IdeaDTO, error)
	Archive(ctx context.Context, userID, ideaID uuid.UUID) error

	Apply(ctx context.Context, applicantID, ideaID uuid.UUID, input ApplyRequest) (*ApplicationDTO, error)
	ListApplications(ctx context.Context, ownerID, ideaID uuid.UUID) ([]ApplicationDTO, error)
	MyApplications(ctx context.Context, applicantID uuid.UUID) ([]ApplicationDTO, error)
	DecideApplication(ctx context.Context, ownerID, applicationID uuid.UUID, accept bool) (*ApplicationDTO, error)

	Episode(ctx context.Context, viewerID, ideaID uuid.UUID, episode enums.Episode) (*EpisodeDTO, error)
	SaveEpisodePhase(ctx context.Context, ownerID, ideaID uuid.UUID, episode enums.Episode, phaseNumber int, input SaveProgressRequest) (*EpisodeDTO, error)
	CompleteEpisodePhase(ctx context.Context, ownerID, ideaID uuid.UUID, episode enums.Episode, phaseNumber int) (*EpisodeDTO, error)
}

type service struct {
	repo     Repository
	tx       txRunner
	outbox   outboxPublisher
	notifier notifierFactory
	logg     *logger.Logger
}

// NewService wires the ideas service. A nil notifier falls back to the
// notifications repository bound to the deciding transaction.
func NewService(
	repo Repository,
	tx txRunner,
	publisher outboxPublisher,
	notifier notifierFactory,
	logg *logger.Logger,
) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "ideas repository required")
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
		notifier = func(tx *gorm.DB) userNotifier {
			return notifications.NewRepository(tx)
		}
	}
	return &service{repo: repo, tx: tx, outbox: publisher, notifier: notifier, logg: logg}, nil
}

func (s *service) Create(ctx context.Context, userID uuid.UUID, input CreateIdeaRequest) (*IdeaDTO, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	title := strings.TrimSpace(input.Title)
	pitch := strings.TrimSpace(input.Pitch)
	if title == "" || pitch == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "title and pitch are required")
	}
	equity, err := parseEquity(input.EquityPercentage)
	if err != nil {
		return nil, err
	}

	idea := &models.StartupIdea{
		UserID:           userID,
		Title:            title,
		Pitch:            pitch,
		ReviewStatus:     enums.ReviewStatusPending,
		Status:           enums.IdeaStatusActive,
		CurrentEpisode:   enums.EpisodeDevelopment,
		RolesNeeded:      input.RolesNeeded,
		EquityPercentage: equity,
	}
	if trimmed := strings.TrimSpace(input.Box); trimmed != "" {
		idea.Box = &trimmed
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.Create(ctx, idea); err != nil {
			return err
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventIdeaSubmitted,
			AggregateType: enums.AggregateIdea,
			AggregateID:   idea.ID,
			Actor:         &outbox.ActorRef{UserID: userID, Role: string(enums.PlatformRoleEntrepreneur)},
			Data: payloads.IdeaSubmittedEvent{
				IdeaID:      idea.ID,
				InitiatorID: userID,
				Title:       title,
			},
			Version: 1,
		})
	})
	if err != nil {
		return nil, s.ideaError(err, "create idea")
	}

	dto := ideaDTO(idea)
	return &dto, nil
}

func (s *service) ListMine(ctx context.Context, userID uuid.UUID) ([]IdeaDTO, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	ideas, err := s.repo.ListByOwner(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list ideas")
	}
	dtos := make([]IdeaDTO, 0, len(ideas))
	for i := range ideas {
		dtos = append(dtos, ideaDTO(&ideas[i]))
	}
	return dtos, nil
}

func (s *service) Browse(ctx context.Context, params BrowseParams) (*BrowseResult, error) {
	query := browseParams{Limit: params.Limit}
	if params.Cursor != "" {
		cursor, err := pagination.ParseCursor(params.Cursor)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		query.Cursor = cursor
	}

	ideas, next, err := s.repo.ListBrowse(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "browse ideas")
	}

	items := make([]IdeaDTO, 0, len(ideas))
	for i := range ideas {
		items = append(items, ideaDTO(&ideas[i]))
	}
	result := &BrowseResult{Items: items}
	if next != nil {
		result.Cursor = pagination.EncodeCursor(*next)
	}
	return result, nil
}

func (s *service) Get(ctx context.Context, viewerID, ideaID uuid.UUID) (*IdeaDTO, error) {
	idea, err := s.visibleIdea(ctx, s.repo, viewerID, ideaID)
	if err != nil {
		return nil, err
	}
	dto := ideaDTO(idea)
	return &dto, nil
}

func (s *service) Update(ctx context.Context, userID, ideaID uuid.UUID, input UpdateIdeaRequest) (*IdeaDTO, error) {
	idea, err := s.ownedIdea(ctx, s.repo, userID, ideaID)
	if err != nil {
		return nil, err
	}

	fields := map[string]any{}
	contentChanged := false
	if input.Title != nil {
		trimmed := strings.TrimSpace(*input.Title)
		if trimmed == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "title cannot be empty")
		}
		fields["title"] = trimmed
		contentChanged = true
	}
	if input.Pitch != nil {
		trimmed := strings.TrimSpace(*input.Pitch)
		if trimmed == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "pitch cannot be empty")
		}
		fields["pitch"] = trimmed
		contentChanged = true
	}
	if input.Box != nil {
		if trimmed := strings.TrimSpace(*input.Box); trimmed != "" {
			fields["box"] = trimmed
		} else {
			fields["box"] = nil
		}
		contentChanged = true
	}
	if input.RolesNeeded != nil {
		// Map updates bypass the gorm serializer; marshal for the jsonb column.
		raw, err := json.Marshal(*input.RolesNeeded)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid roles list")
		}
		fields["roles_needed"] = raw
		contentChanged = true
	}
	if input.EquityPercentage != nil {
		equity, err := parseEquity(*input.EquityPercentage)
		if err != nil {
			return nil, err
		}
		fields["equity_percentage"] = equity
		contentChanged = true
	}
	if input.Status != nil {
		status, err := enums.ParseIdeaStatus(*input.Status)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status")
		}
		fields["status"] = status
	}

	// Substantive edits send the idea back through review.
	if contentChanged && idea.ReviewStatus != enums.ReviewStatusPending {
		fields["review_status"] = enums.ReviewStatusPending
	}

	if len(fields) > 0 {
		if err := s.repo.Update(ctx, idea.ID, fields); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update idea")
		}
	}

	updated, err := s.repo.FindByID(ctx, idea.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load idea")
	}
	dto := ideaDTO(updated)
	return &dto, nil
}

// Archive retires an idea from the marketplace; rows stay for history.
func (s *service) Archive(ctx context.Context, userID, ideaID uuid.UUID) error {
	idea, err := s.ownedIdea(ctx, s.repo, userID, ideaID)
	if err != nil {
		return err
	}
	if idea.Status == enums.IdeaStatusArchived {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "idea already archived")
	}
	if err := s.repo.Update(ctx, idea.ID, map[string]any{"status": enums.IdeaStatusArchived}); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "archive idea")
	}
	return nil
}

func (s *service) Apply(ctx context.Context, applicantID, ideaID uuid.UUID, input ApplyRequest) (*ApplicationDTO, error) {
	if applicantID == uuid.Nil || ideaID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "applicant id and idea id required")
	}
	message := strings.TrimSpace(input.CoverMessage)
	if message == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cover message required")
	}

	idea, err := s.loadIdea(ctx, s.repo, ideaID)
	if err != nil {
		return nil, err
	}
	if idea.UserID == applicantID {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "initiators cannot apply to their own idea")
	}
	if err := visibility.CanApply(idea); err != nil {
		return nil, err
	}

	application := &models.StartupApplication{
		IdeaID:       ideaID,
		ApplicantID:  applicantID,
		CoverMessage: message,
		Status:       enums.ApplicationStatusPending,
	}
	if trimmed := strings.TrimSpace(input.Role); trimmed != "" {
		application.Role = &trimmed
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.CreateApplication(ctx, application); err != nil {
			if dbpkg.IsUniqueViolation(err, "idx_applications_idea_applicant") {
				return pkgerrors.New(pkgerrors.CodeConflict, "you already applied to this idea")
			}
			return err
		}
		// The initiator's notification fans out from this event.
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventApplicationSubmitted,
			AggregateType: enums.AggregateApplication,
			AggregateID:   application.ID,
			Actor:         &outbox.ActorRef{UserID: applicantID, Role: string(enums.PlatformRoleCoBuilder)},
			Data: payloads.ApplicationSubmittedEvent{
				ApplicationID: application.ID,
				IdeaID:        ideaID,
				ApplicantID:   applicantID,
				InitiatorID:   idea.UserID,
			},
			Version: 1,
		})
	})
	if err != nil {
		return nil, s.ideaError(err, "apply to idea")
	}

	dto := applicationDTO(application)
	return &dto, nil
}

func (s *service) ListApplications(ctx context.Context, ownerID, ideaID uuid.UUID) ([]ApplicationDTO, error) {
	if _, err := s.ownedIdea(ctx, s.repo, ownerID, ideaID); err != nil {
		return nil, err
	}
	applications, err := s.repo.ListApplicationsForIdea(ctx, ideaID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list applications")
	}
	dtos := make([]ApplicationDTO, 0, len(applications))
	for i := range applications {
		dtos = append(dtos, applicationDTO(&applications[i]))
	}
	return dtos, nil
}

func (s *service) MyApplications(ctx context.Context, applicantID uuid.UUID) ([]ApplicationDTO, error) {
	if applicantID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "applicant id required")
	}
	applications, err := s.repo.ListApplicationsByApplicant(ctx, applicantID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list applications")
	}
	dtos := make([]ApplicationDTO, 0, len(applications))
	for i := range applications {
		dtos = append(dtos, applicationDTO(&applications[i]))
	}
	return dtos, nil
}

// DecideApplication records the initiator's accept/reject. The applicant's
// notification is written in the same transaction as the status change.
func (s *service) DecideApplication(ctx context.Context, ownerID, applicationID uuid.UUID, accept bool) (*ApplicationDTO, error) {
	if ownerID == uuid.Nil || applicationID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "owner id and application id required")
	}

	now := time.Now().UTC()
	status := enums.ApplicationStatusRejected
	if accept {
		status = enums.ApplicationStatusAccepted
	}

	var application *models.StartupApplication
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		loaded, err := repo.FindApplication(ctx, applicationID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "application not found")
			}
			return err
		}

		idea, err := repo.FindByID(ctx, loaded.IdeaID)
		if err != nil {
			return err
		}
		if idea.UserID != ownerID {
			return pkgerrors.New(pkgerrors.CodeNotFound, "application not found")
		}
		if loaded.Status != enums.ApplicationStatusPending {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "application already decided")
		}

		if err := repo.UpdateApplication(ctx, loaded.ID, map[string]any{
			"status":     status,
			"decided_at": now,
		}); err != nil {
			return err
		}
		loaded.Status = status
		loaded.DecidedAt = &now

		verdict := "accepted"
		if !accept {
			verdict = "rejected"
		}
		if err := s.notifier(tx).CreateUser(ctx, &models.UserNotification{
			UserID:  loaded.ApplicantID,
			Type:    enums.NotificationTypeApplicationDecision,
			Title:   fmt.Sprintf("Application %s", verdict),
			Message: fmt.Sprintf("The initiator %s your application to %q.", verdict, idea.Title),
			Payload: notifications.MarshalPayload(notifications.ApplicationDecisionPayload{
				ApplicationID: loaded.ID,
				IdeaID:        idea.ID,
				Status:        status,
			}),
		}); err != nil {
			return err
		}

		application = loaded
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventApplicationDecided,
			AggregateType: enums.AggregateApplication,
			AggregateID:   loaded.ID,
			Actor:         &outbox.ActorRef{UserID: ownerID, Role: string(enums.PlatformRoleEntrepreneur)},
			Data: payloads.ApplicationDecidedEvent{
				ApplicationID: loaded.ID,
				IdeaID:        idea.ID,
				ApplicantID:   loaded.ApplicantID,
				Status:        status,
			},
			Version: 1,
		})
	})
	if err != nil {
		return nil, s.ideaError(err, "decide application")
	}

	dto := applicationDTO(application)
	return &dto, nil
}

func (s *service) loadIdea(ctx context.Context, repo Repository, ideaID uuid.UUID) (*models.StartupIdea, error) {
	idea, err := repo.FindByID(ctx, ideaID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "idea not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load idea")
	}
	return idea, nil
}

// ownedIdea loads an idea and hides other users' ideas as not found.
func (s *service) ownedIdea(ctx context.Context, repo Repository, userID, ideaID uuid.UUID) (*models.StartupIdea, error) {
	if userID == uuid.Nil || ideaID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id and idea id required")
	}
	idea, err := s.loadIdea(ctx, repo, ideaID)
	if err != nil {
		return nil, err
	}
	if idea.UserID != userID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "idea not found")
	}
	return idea, nil
}

// visibleIdea applies the shared visibility rules: owners always see their
// own ideas, everyone else only approved ones still on the market.
func (s *service) visibleIdea(ctx context.Context, repo Repository, viewerID, ideaID uuid.UUID) (*models.StartupIdea, error) {
	idea, err := s.loadIdea(ctx, repo, ideaID)
	if err != nil {
		return nil, err
	}
	if err := visibility.EnsureIdeaVisible(visibility.IdeaVisibilityInput{
		Idea:        idea,
		ViewerID:    viewerID.String(),
		InitiatorID: idea.UserID.String(),
	}); err != nil {
		return nil, err
	}
	return idea, nil
}

func (s *service) ideaError(err error, action string) error {
	if typed := pkgerrors.As(err); typed != nil {
		return err
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, action)
}

func parseEquity(raw string) (decimal.Decimal, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return decimal.Zero, nil
	}
	equity, err := decimal.NewFromString(trimmed)
	if err != nil {
		return decimal.Zero, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid equity percentage")
	}
	if equity.IsNegative() || equity.GreaterThan(decimal.NewFromInt(100)) {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "equity percentage must be between 0 and 100")
	}
	return equity, nil
}
