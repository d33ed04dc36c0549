package ideas

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/b4platform/b4-backend/pkg/db/models"
	"github.com/b4platform/b4-backend/pkg/enums"
	pkgerrors "github.com/b4platform/b4-backend/pkg/errors"
	"github.com/b4platform/b4-backend/pkg/logger"
	"github.com/b4platform/b4-backend/pkg/outbox"
	"github.com/b4platform/b4-backend/pkg/pagination"
)

type progressKey struct {
	episode enums.Episode
	phase   int
}

type fakeRepository struct {
	ideas        map[uuid.UUID]*models.StartupIdea
	applications map[uuid.UUID]*models.StartupApplication
	progress     map[progressKey]*models.IdeaJourneyProgress
	createAppErr error
}

func newFakeRepository(ideas ...*models.StartupIdea) *fakeRepository {
	repo := &fakeRepository{
		ideas:        map[uuid.UUID]*models.StartupIdea{},
		applications: map[uuid.UUID]*models.StartupApplication{},
		progress:     map[progressKey]*models.IdeaJourneyProgress{},
	}
	for _, idea := range ideas {
		repo.ideas[idea.ID] = idea
	}
	return repo
}

func (f *fakeRepository) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakeRepository) Create(ctx context.Context, idea *models.StartupIdea) error {
	idea.ID = uuid.New()
	idea.CreatedAt = time.Now().UTC()
	f.ideas[idea.ID] = idea
	return nil
}

func (f *fakeRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.StartupIdea, error) {
	idea, ok := f.ideas[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *idea
	return &copied, nil
}

func (f *fakeRepository) ListByOwner(ctx context.Context, userID uuid.UUID) ([]models.StartupIdea, error) {
	var rows []models.StartupIdea
	for _, idea := range f.ideas {
		if idea.UserID == userID {
			rows = append(rows, *idea)
		}
	}
	return rows, nil
}

func (f *fakeRepository) ListBrowse(ctx context.Context, params browseParams) ([]models.StartupIdea, *pagination.Cursor, error) {
	var rows []models.StartupIdea
	for _, idea := range f.ideas {
		if idea.ReviewStatus != enums.ReviewStatusApproved {
			continue
		}
		if idea.Status != enums.IdeaStatusActive && idea.Status != enums.IdeaStatusPaused {
			continue
		}
		rows = append(rows, *idea)
	}
	return rows, nil, nil
}

func (f *fakeRepository) ListByReviewStatus(ctx context.Context, status enums.ReviewStatus) ([]models.StartupIdea, error) {
	var rows []models.StartupIdea
	for _, idea := range f.ideas {
		if idea.ReviewStatus == status {
			rows = append(rows, *idea)
		}
	}
	return rows, nil
}

func (f *fakeRepository) Update(ctx context.Context, id uuid.UUID, fields map[string]any) error {
	idea, ok := f.ideas[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if title, ok := fields["title"].(string); ok {
		idea.Title = title
	}
	if pitch, ok := fields["pitch"].(string); ok {
		idea.Pitch = pitch
	}
	if status, ok := fields["status"].(enums.IdeaStatus); ok {
		idea.Status = status
	}
	if review, ok := fields["review_status"].(enums.ReviewStatus); ok {
		idea.ReviewStatus = review
	}
	if episode, ok := fields["current_episode"].(enums.Episode); ok {
		idea.CurrentEpisode = episode
	}
	if completed, ok := fields["completed_at"].(time.Time); ok {
		idea.CompletedAt = &completed
	}
	return nil
}

func (f *fakeRepository) CreateApplication(ctx context.Context, application *models.StartupApplication) error {
	if f.createAppErr != nil {
		return f.createAppErr
	}
	application.ID = uuid.New()
	application.CreatedAt = time.Now().UTC()
	f.applications[application.ID] = application
	return nil
}

func (f *fakeRepository) FindApplication(ctx context.Context, id uuid.UUID) (*models.StartupApplication, error) {
	application, ok := f.applications[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *application
	return &copied, nil
}

func (f *fakeRepository) ListApplicationsForIdea(ctx context.Context, ideaID uuid.UUID) ([]models.StartupApplication, error) {
	var rows []models.StartupApplication
	for _, application := range f.applications {
		if application.IdeaID == ideaID {
			rows = append(rows, *application)
		}
	}
	return rows, nil
}

func (f *fakeRepository) ListApplicationsByApplicant(ctx context.Context, applicantID uuid.UUID) ([]models.StartupApplication, error) {
	var rows []models.StartupApplication
	for _, application := range f.applications {
		if application.ApplicantID == applicantID {
			rows = append(rows, *application)
		}
	}
	return rows, nil
}

func (f *fakeRepository) UpdateApplication(ctx context.Context, id uuid.UUID, fields map[string]any) error {
	application, ok := f.applications[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if status, ok := fields["status"].(enums.ApplicationStatus); ok {
		application.Status = status
	}
	if decided, ok := fields["decided_at"].(time.Time); ok {
		application.DecidedAt = &decided
	}
	return nil
}

func (f *fakeRepository) FindProgress(ctx context.Context, startupID uuid.UUID, episode enums.Episode, phaseNumber int) (*models.IdeaJourneyProgress, error) {
	row, ok := f.progress[progressKey{episode: episode, phase: phaseNumber}]
	if !ok || row.StartupID != startupID {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *row
	return &copied, nil
}

func (f *fakeRepository) ListProgress(ctx context.Context, startupID uuid.UUID, episode enums.Episode) ([]models.IdeaJourneyProgress, error) {
	var rows []models.IdeaJourneyProgress
	for key, row := range f.progress {
		if key.episode == episode && row.StartupID == startupID {
			rows = append(rows, *row)
		}
	}
	return rows, nil
}

func (f *fakeRepository) SaveProgress(ctx context.Context, progress *models.IdeaJourneyProgress) error {
	f.progress[progressKey{episode: progress.Episode, phase: progress.PhaseNumber}] = progress
	return nil
}

func (f *fakeRepository) CountCompletedProgress(ctx context.Context, startupID uuid.UUID, episode enums.Episode) (int64, error) {
	var count int64
	for key, row := range f.progress {
		if key.episode == episode && row.StartupID == startupID && row.IsCompleted {
			count++
		}
	}
	return count, nil
}

type fakeTxRunner struct{}

func (f *fakeTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(&gorm.DB{})
}

type fakeOutbox struct {
	events []outbox.DomainEvent
}

func (f *fakeOutbox) Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error {
	f.events = append(f.events, event)
	return nil
}

type fakeNotifier struct {
	notifications []*models.UserNotification
}

func (f *fakeNotifier) CreateUser(ctx context.Context, notification *models.UserNotification) error {
	f.notifications = append(f.notifications, notification)
	return nil
}

type duplicateKeyError struct{ constraint string }

func (e duplicateKeyError) Error() string {
	return "duplicate key value violates unique constraint \"" + e.constraint + "\""
}

func newIdeasService(t *testing.T, repo Repository, publisher *fakeOutbox, notifier *fakeNotifier) Service {
	t.Helper()
	var factory notifierFactory
	if notifier != nil {
		factory = func(tx *gorm.DB) userNotifier { return notifier }
	}
	svc, err := NewService(repo, &fakeTxRunner{}, publisher, factory, logger.New(logger.Options{ServiceName: "test"}))
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func approvedIdea(ownerID uuid.UUID) *models.StartupIdea {
	return &models.StartupIdea{
		ID:             uuid.New(),
		UserID:         ownerID,
		Title:          "Solar kits for allotments",
		Pitch:          "Plug-and-play solar for garden plots.",
		ReviewStatus:   enums.ReviewStatusApproved,
		Status:         enums.IdeaStatusActive,
		CurrentEpisode: enums.EpisodeDevelopment,
		CreatedAt:      time.Now().UTC(),
	}
}

func TestCreateIdeaStartsPendingReview(t *testing.T) {
	repo := newFakeRepository()
	publisher := &fakeOutbox{}
	svc := newIdeasService(t, repo, publisher, nil)

	dto, err := svc.Create(context.Background(), uuid.New(), CreateIdeaRequest{
		Title:            "  Solar kits for allotments  ",
		Pitch:            "Plug-and-play solar for garden plots.",
		EquityPercentage: "12.5",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if dto.ReviewStatus != enums.ReviewStatusPending {
		t.Fatalf("new ideas must await review, got %s", dto.ReviewStatus)
	}
	if dto.Status != enums.IdeaStatusActive || dto.CurrentEpisode != enums.EpisodeDevelopment {
		t.Fatalf("unexpected idea %+v", dto)
	}
	if dto.Title != "Solar kits for allotments" {
		t.Fatalf("title must be trimmed, got %q", dto.Title)
	}
	if dto.EquityPercentage.String() != "12.5" {
		t.Fatalf("unexpected equity %s", dto.EquityPercentage)
	}
	if len(publisher.events) != 1 || publisher.events[0].EventType != enums.EventIdeaSubmitted {
		t.Fatalf("expected idea_submitted event, got %+v", publisher.events)
	}
}

func TestCreateIdeaRejectsEquityOverHundred(t *testing.T) {
	svc := newIdeasService(t, newFakeRepository(), &fakeOutbox{}, nil)

	_, err := svc.Create(context.Background(), uuid.New(), CreateIdeaRequest{
		Title:            "Too generous",
		Pitch:            "All of it.",
		EquityPercentage: "150",
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected VALIDATION, got %v", err)
	}
}

func TestGetHidesUnreviewedIdeaFromOthers(t *testing.T) {
	owner := uuid.New()
	idea := approvedIdea(owner)
	idea.ReviewStatus = enums.ReviewStatusPending
	repo := newFakeRepository(idea)
	svc := newIdeasService(t, repo, &fakeOutbox{}, nil)

	_, err := svc.Get(context.Background(), uuid.New(), idea.ID)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected NOT_FOUND for pending idea, got %v", err)
	}

	// Owners always see their own idea regardless of review status.
	dto, err := svc.Get(context.Background(), owner, idea.ID)
	if err != nil {
		t.Fatalf("Get as owner: %v", err)
	}
	if dto.ID != idea.ID {
		t.Fatalf("unexpected idea %+v", dto)
	}
}

func TestUpdateContentResetsReviewStatus(t *testing.T) {
	owner := uuid.New()
	idea := approvedIdea(owner)
	repo := newFakeRepository(idea)
	svc := newIdeasService(t, repo, &fakeOutbox{}, nil)

	pitch := "A sharper pitch."
	dto, err := svc.Update(context.Background(), owner, idea.ID, UpdateIdeaRequest{Pitch: &pitch})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if dto.ReviewStatus != enums.ReviewStatusPending {
		t.Fatalf("content edits must reopen review, got %s", dto.ReviewStatus)
	}

	// A pure status flip keeps the approval.
	paused := "paused"
	dto, err = svc.Update(context.Background(), owner, idea.ID, UpdateIdeaRequest{Status: &paused})
	if err != nil {
		t.Fatalf("Update status: %v", err)
	}
	if dto.Status != enums.IdeaStatusPaused || dto.ReviewStatus != enums.ReviewStatusPending {
		t.Fatalf("unexpected idea %+v", dto)
	}
}

func TestArchiveTwiceConflicts(t *testing.T) {
	owner := uuid.New()
	idea := approvedIdea(owner)
	repo := newFakeRepository(idea)
	svc := newIdeasService(t, repo, &fakeOutbox{}, nil)

	if err := svc.Archive(context.Background(), owner, idea.ID); err != nil {
		t.Fatalf("Archive: %v", err)
	}
	err := svc.Archive(context.Background(), owner, idea.ID)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected STATE_CONFLICT, got %v", err)
	}
}

func TestApplyToOwnIdeaConflicts(t *testing.T) {
	owner := uuid.New()
	idea := approvedIdea(owner)
	svc := newIdeasService(t, newFakeRepository(idea), &fakeOutbox{}, nil)

	_, err := svc.Apply(context.Background(), owner, idea.ID, ApplyRequest{CoverMessage: "me again"})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected CONFLICT, got %v", err)
	}
}

func TestApplyRequiresActiveIdea(t *testing.T) {
	idea := approvedIdea(uuid.New())
	idea.Status = enums.IdeaStatusPaused
	svc := newIdeasService(t, newFakeRepository(idea), &fakeOutbox{}, nil)

	_, err := svc.Apply(context.Background(), uuid.New(), idea.ID, ApplyRequest{CoverMessage: "keen to help"})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected CONFLICT for paused idea, got %v", err)
	}
}

func TestApplyDuplicateConflicts(t *testing.T) {
	idea := approvedIdea(uuid.New())
	repo := newFakeRepository(idea)
	repo.createAppErr = duplicateKeyError{constraint: "idx_applications_idea_applicant"}
	svc := newIdeasService(t, repo, &fakeOutbox{}, nil)

	_, err := svc.Apply(context.Background(), uuid.New(), idea.ID, ApplyRequest{CoverMessage: "keen to help"})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected CONFLICT for duplicate application, got %v", err)
	}
}

func TestApplyEmitsSubmittedEvent(t *testing.T) {
	idea := approvedIdea(uuid.New())
	repo := newFakeRepository(idea)
	publisher := &fakeOutbox{}
	svc := newIdeasService(t, repo, publisher, nil)
	applicant := uuid.New()

	dto, err := svc.Apply(context.Background(), applicant, idea.ID, ApplyRequest{
		Role:         "CTO",
		CoverMessage: "I shipped this stack twice.",
	})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if dto.Status != enums.ApplicationStatusPending || dto.ApplicantID != applicant {
		t.Fatalf("unexpected application %+v", dto)
	}
	if len(publisher.events) != 1 || publisher.events[0].EventType != enums.EventApplicationSubmitted {
		t.Fatalf("expected application_submitted event, got %+v", publisher.events)
	}
}

func TestDecideApplicationNotifiesApplicant(t *testing.T) {
	owner := uuid.New()
	idea := approvedIdea(owner)
	repo := newFakeRepository(idea)
	applicant := uuid.New()
	application := &models.StartupApplication{
		ID:           uuid.New(),
		IdeaID:       idea.ID,
		ApplicantID:  applicant,
		CoverMessage: "keen to help",
		Status:       enums.ApplicationStatusPending,
	}
	repo.applications[application.ID] = application

	publisher := &fakeOutbox{}
	notifier := &fakeNotifier{}
	svc := newIdeasService(t, repo, publisher, notifier)

	dto, err := svc.DecideApplication(context.Background(), owner, application.ID, true)
	if err != nil {
		t.Fatalf("DecideApplication: %v", err)
	}
	if dto.Status != enums.ApplicationStatusAccepted || dto.DecidedAt == nil {
		t.Fatalf("unexpected application %+v", dto)
	}
	if len(notifier.notifications) != 1 {
		t.Fatalf("expected one applicant notification, got %d", len(notifier.notifications))
	}
	note := notifier.notifications[0]
	if note.UserID != applicant || note.Type != enums.NotificationTypeApplicationDecision {
		t.Fatalf("unexpected notification %+v", note)
	}
	if len(publisher.events) != 1 || publisher.events[0].EventType != enums.EventApplicationDecided {
		t.Fatalf("expected application_decided event, got %+v", publisher.events)
	}

	_, err = svc.DecideApplication(context.Background(), owner, application.ID, false)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("re-deciding must conflict, got %v", err)
	}
}

func TestDecideApplicationHiddenFromNonOwner(t *testing.T) {
	idea := approvedIdea(uuid.New())
	repo := newFakeRepository(idea)
	application := &models.StartupApplication{
		ID:           uuid.New(),
		IdeaID:       idea.ID,
		ApplicantID:  uuid.New(),
		CoverMessage: "keen to help",
		Status:       enums.ApplicationStatusPending,
	}
	repo.applications[application.ID] = application
	svc := newIdeasService(t, repo, &fakeOutbox{}, &fakeNotifier{})

	_, err := svc.DecideApplication(context.Background(), uuid.New(), application.ID, true)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
}

func TestSaveEpisodePhaseRequiresCurrentEpisode(t *testing.T) {
	owner := uuid.New()
	idea := approvedIdea(owner)
	svc := newIdeasService(t, newFakeRepository(idea), &fakeOutbox{}, nil)

	_, err := svc.SaveEpisodePhase(context.Background(), owner, idea.ID, enums.EpisodeValidation, 1, SaveProgressRequest{
		Responses: map[string]string{"hypothesis": "people will pay"},
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected STATE_CONFLICT for future episode, got %v", err)
	}
}

func TestSaveEpisodePhaseLockedUntilPrevious(t *testing.T) {
	owner := uuid.New()
	idea := approvedIdea(owner)
	svc := newIdeasService(t, newFakeRepository(idea), &fakeOutbox{}, nil)

	_, err := svc.SaveEpisodePhase(context.Background(), owner, idea.ID, enums.EpisodeDevelopment, 2, SaveProgressRequest{
		Responses: map[string]string{"customer_profile": "allotment owners"},
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected STATE_CONFLICT for locked phase, got %v", err)
	}
}

func TestSaveEpisodePhaseUpsertsLastWriteWins(t *testing.T) {
	owner := uuid.New()
	idea := approvedIdea(owner)
	repo := newFakeRepository(idea)
	svc := newIdeasService(t, repo, &fakeOutbox{}, nil)

	_, err := svc.SaveEpisodePhase(context.Background(), owner, idea.ID, enums.EpisodeDevelopment, 1, SaveProgressRequest{
		Responses: map[string]string{"idea_statement": "first draft"},
	})
	if err != nil {
		t.Fatalf("SaveEpisodePhase: %v", err)
	}
	detail, err := svc.SaveEpisodePhase(context.Background(), owner, idea.ID, enums.EpisodeDevelopment, 1, SaveProgressRequest{
		Responses: map[string]string{"idea_statement": "  final draft  "},
	})
	if err != nil {
		t.Fatalf("SaveEpisodePhase again: %v", err)
	}

	if len(repo.progress) != 1 {
		t.Fatalf("auto-save must upsert a single row, got %d", len(repo.progress))
	}
	if got := detail.Phases[0].Responses["idea_statement"]; got != "final draft" {
		t.Fatalf("expected trimmed last write, got %q", got)
	}
}

func TestCompleteEpisodePhaseRequiresAnswers(t *testing.T) {
	owner := uuid.New()
	idea := approvedIdea(owner)
	svc := newIdeasService(t, newFakeRepository(idea), &fakeOutbox{}, nil)

	_, err := svc.CompleteEpisodePhase(context.Background(), owner, idea.ID, enums.EpisodeDevelopment, 1)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected VALIDATION without saved answers, got %v", err)
	}

	_, err = svc.SaveEpisodePhase(context.Background(), owner, idea.ID, enums.EpisodeDevelopment, 1, SaveProgressRequest{
		Responses: map[string]string{"inspiration": "a neighbour's plot"},
	})
	if err != nil {
		t.Fatalf("SaveEpisodePhase: %v", err)
	}
	_, err = svc.CompleteEpisodePhase(context.Background(), owner, idea.ID, enums.EpisodeDevelopment, 1)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected VALIDATION for missing required answer, got %v", err)
	}
}

func seedCompletedPhases(repo *fakeRepository, ideaID uuid.UUID, episode enums.Episode, through int) {
	now := time.Now().UTC()
	for n := 1; n <= through; n++ {
		repo.progress[progressKey{episode: episode, phase: n}] = &models.IdeaJourneyProgress{
			ID:          uuid.New(),
			StartupID:   ideaID,
			Episode:     episode,
			PhaseNumber: n,
			Responses:   map[string]string{"seeded": "yes"},
			IsCompleted: true,
			CompletedAt: &now,
		}
	}
}

func TestCompleteFinalPhaseAdvancesEpisode(t *testing.T) {
	owner := uuid.New()
	idea := approvedIdea(owner)
	repo := newFakeRepository(idea)
	publisher := &fakeOutbox{}
	svc := newIdeasService(t, repo, publisher, nil)

	seedCompletedPhases(repo, idea.ID, enums.EpisodeDevelopment, 3)
	_, err := svc.SaveEpisodePhase(context.Background(), owner, idea.ID, enums.EpisodeDevelopment, 4, SaveProgressRequest{
		Responses: map[string]string{
			"build_plan":     "prototype kit",
			"required_roles": "hardware engineer",
		},
	})
	if err != nil {
		t.Fatalf("SaveEpisodePhase: %v", err)
	}

	detail, err := svc.CompleteEpisodePhase(context.Background(), owner, idea.ID, enums.EpisodeDevelopment, 4)
	if err != nil {
		t.Fatalf("CompleteEpisodePhase: %v", err)
	}
	if detail.CurrentEpisode != enums.EpisodeValidation {
		t.Fatalf("expected advance to validation, got %s", detail.CurrentEpisode)
	}
	if detail.Terminal {
		t.Fatal("idea must not be terminal after development")
	}

	last := publisher.events[len(publisher.events)-1]
	if last.EventType != enums.EventEpisodeAdvanced {
		t.Fatalf("expected episode_advanced event, got %s", last.EventType)
	}
}

func TestCompleteFinalGrowthPhaseEndsJourney(t *testing.T) {
	owner := uuid.New()
	idea := approvedIdea(owner)
	idea.CurrentEpisode = enums.EpisodeGrowth
	repo := newFakeRepository(idea)
	publisher := &fakeOutbox{}
	svc := newIdeasService(t, repo, publisher, nil)

	seedCompletedPhases(repo, idea.ID, enums.EpisodeGrowth, 3)
	_, err := svc.SaveEpisodePhase(context.Background(), owner, idea.ID, enums.EpisodeGrowth, 4, SaveProgressRequest{
		Responses: map[string]string{
			"retrospective": "would start sales sooner",
			"next_steps":    "hire the first co-builder",
		},
	})
	if err != nil {
		t.Fatalf("SaveEpisodePhase: %v", err)
	}

	detail, err := svc.CompleteEpisodePhase(context.Background(), owner, idea.ID, enums.EpisodeGrowth, 4)
	if err != nil {
		t.Fatalf("CompleteEpisodePhase: %v", err)
	}
	if !detail.Terminal {
		t.Fatal("completing the final growth phase must end the journey")
	}
	for _, event := range publisher.events {
		if event.EventType == enums.EventEpisodeAdvanced {
			t.Fatal("growth is terminal, no episode_advanced event expected")
		}
	}

	updated, err := repo.FindByID(context.Background(), idea.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if updated.Status != enums.IdeaStatusCompleted || updated.CompletedAt == nil {
		t.Fatalf("unexpected idea %+v", updated)
	}

	_, err = svc.SaveEpisodePhase(context.Background(), owner, idea.ID, enums.EpisodeGrowth, 1, SaveProgressRequest{
		Responses: map[string]string{"sales_summary": "late edit"},
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("completed ideas must refuse edits, got %v", err)
	}
}
