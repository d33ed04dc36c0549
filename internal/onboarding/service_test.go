package onboarding

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/b4platform/b4-backend/internal/notifications"
	"github.com/b4platform/b4-backend/pkg/db/models"
	"github.com/b4platform/b4-backend/pkg/enums"
	pkgerrors "github.com/b4platform/b4-backend/pkg/errors"
	"github.com/b4platform/b4-backend/pkg/logger"
	"github.com/b4platform/b4-backend/pkg/outbox"
)

type fakeRepository struct {
	state         *models.OnboardingState
	naturalRole   *models.NaturalRole
	ent           *models.EntrepreneurialOnboarding
	stateCreated  bool
	updatedFields []map[string]any
}

func (f *fakeRepository) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakeRepository) FindState(ctx context.Context, userID uuid.UUID) (*models.OnboardingState, error) {
	if f.state == nil || f.state.UserID != userID {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *f.state
	return &copied, nil
}

func (f *fakeRepository) CreateState(ctx context.Context, state *models.OnboardingState) error {
	f.state = state
	f.stateCreated = true
	return nil
}

func (f *fakeRepository) UpdateState(ctx context.Context, userID uuid.UUID, fields map[string]any) error {
	f.updatedFields = append(f.updatedFields, fields)
	if f.state == nil {
		return gorm.ErrRecordNotFound
	}
	if step, ok := fields["current_step"].(int); ok {
		f.state.CurrentStep = step
	}
	if role, ok := fields["primary_role"].(enums.PrimaryRole); ok {
		f.state.PrimaryRole = &role
	}
	if status, ok := fields["journey_status"].(enums.JourneyStatus); ok {
		f.state.JourneyStatus = status
	}
	return nil
}

func (f *fakeRepository) PrimaryRoleFor(ctx context.Context, userID uuid.UUID) (*enums.PrimaryRole, error) {
	if f.state == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return f.state.PrimaryRole, nil
}

func (f *fakeRepository) FindNaturalRole(ctx context.Context, userID uuid.UUID) (*models.NaturalRole, error) {
	if f.naturalRole == nil {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *f.naturalRole
	return &copied, nil
}

func (f *fakeRepository) SaveNaturalRole(ctx context.Context, role *models.NaturalRole) error {
	f.naturalRole = role
	return nil
}

func (f *fakeRepository) FindEntrepreneurial(ctx context.Context, userID uuid.UUID) (*models.EntrepreneurialOnboarding, error) {
	if f.ent == nil {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *f.ent
	return &copied, nil
}

func (f *fakeRepository) SaveEntrepreneurial(ctx context.Context, record *models.EntrepreneurialOnboarding) error {
	f.ent = record
	return nil
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
	adminRows []*models.AdminNotification
}

func (f *fakeNotifier) CreateAdmin(ctx context.Context, notification *models.AdminNotification) error {
	f.adminRows = append(f.adminRows, notification)
	return nil
}

type wizardFixture struct {
	repo     *fakeRepository
	outbox   *fakeOutbox
	notifier *fakeNotifier
	svc      Service
}

func newWizardFixture(t *testing.T, repo *fakeRepository) *wizardFixture {
	t.Helper()
	fx := &wizardFixture{
		repo:     repo,
		outbox:   &fakeOutbox{},
		notifier: &fakeNotifier{},
	}
	svc, err := NewService(
		repo,
		&fakeTxRunner{},
		fx.outbox,
		func(tx *gorm.DB) adminNotifier { return fx.notifier },
		logger.New(logger.Options{ServiceName: "test"}),
	)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	fx.svc = svc
	return fx
}

func TestGetLazilyCreatesState(t *testing.T) {
	userID := uuid.New()
	fx := newWizardFixture(t, &fakeRepository{})

	dto, err := fx.svc.Get(context.Background(), userID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !fx.repo.stateCreated {
		t.Fatal("expected state row to be created on first visit")
	}
	if dto.State.CurrentStep != 1 {
		t.Fatalf("expected step 1, got %d", dto.State.CurrentStep)
	}
	if dto.State.JourneyStatus != enums.JourneyStatusInProgress {
		t.Fatalf("expected in_progress, got %s", dto.State.JourneyStatus)
	}
	if dto.NaturalRole != nil || dto.Entrepreneurial != nil {
		t.Fatal("no assessments should exist yet")
	}
}

func TestChoosePathUnlocksStepTwo(t *testing.T) {
	userID := uuid.New()
	fx := newWizardFixture(t, &fakeRepository{})

	dto, err := fx.svc.ChoosePath(context.Background(), userID, enums.PrimaryRoleCoBuilder)
	if err != nil {
		t.Fatalf("ChoosePath: %v", err)
	}
	if dto.State.PrimaryRole == nil || *dto.State.PrimaryRole != enums.PrimaryRoleCoBuilder {
		t.Fatalf("expected cobuilder path, got %v", dto.State.PrimaryRole)
	}
	if dto.State.CurrentStep != 2 {
		t.Fatalf("expected step 2 after path selection, got %d", dto.State.CurrentStep)
	}
}

func TestChoosePathRejectsUnknownRole(t *testing.T) {
	fx := newWizardFixture(t, &fakeRepository{})

	_, err := fx.svc.ChoosePath(context.Background(), uuid.New(), enums.PrimaryRole("investor"))
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected VALIDATION, got %v", err)
	}
}

func TestSaveStepRejectsEarlierStep(t *testing.T) {
	userID := uuid.New()
	repo := &fakeRepository{state: &models.OnboardingState{
		UserID:        userID,
		CurrentStep:   5,
		JourneyStatus: enums.JourneyStatusInProgress,
	}}
	fx := newWizardFixture(t, repo)

	yes := "still relevant"
	_, err := fx.svc.SaveStep(context.Background(), userID, 3, SaveStepRequest{Description: &yes})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected STATE_CONFLICT, got %v", err)
	}
	if repo.naturalRole != nil {
		t.Fatal("rejected step must not write the assessment")
	}
	if len(repo.updatedFields) != 0 {
		t.Fatalf("rejected step must not mutate state, got %v", repo.updatedFields)
	}
}

func TestSaveStepNeedsHelpNotifiesAndStillAdvances(t *testing.T) {
	userID := uuid.New()
	repo := &fakeRepository{state: &models.OnboardingState{
		UserID:        userID,
		CurrentStep:   3,
		JourneyStatus: enums.JourneyStatusInProgress,
	}}
	fx := newWizardFixture(t, repo)

	dto, err := fx.svc.SaveStep(context.Background(), userID, 3, SaveStepRequest{
		Check: &CheckInput{
			Area:   AreaPromise,
			Answer: enums.CheckAnswerNeedsHelp,
			Detail: "not sure what my promise is",
		},
	})
	if err != nil {
		t.Fatalf("SaveStep: %v", err)
	}

	if len(fx.notifier.adminRows) != 1 {
		t.Fatalf("expected 1 admin notification, got %d", len(fx.notifier.adminRows))
	}
	row := fx.notifier.adminRows[0]
	if row.Type != enums.NotificationTypeNeedsHelp || row.SubjectUserID != userID {
		t.Fatalf("unexpected notification %+v", row)
	}
	var payload notifications.NeedsHelpPayload
	if err := json.Unmarshal(row.Payload, &payload); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if payload.Area != AreaPromise {
		t.Fatalf("expected promise area, got %q", payload.Area)
	}

	if dto.State.CurrentStep != 4 {
		t.Fatalf("needs_help must still advance, got step %d", dto.State.CurrentStep)
	}
	if repo.naturalRole == nil || !repo.naturalRole.PromiseNeedsHelp || repo.naturalRole.PromiseCheck {
		t.Fatalf("unexpected natural role %+v", repo.naturalRole)
	}
	if repo.naturalRole.IsReady {
		t.Fatal("is_ready must be false with a failed check")
	}
}

func TestSaveStepDerivesReadyFromAllChecks(t *testing.T) {
	userID := uuid.New()
	repo := &fakeRepository{
		state: &models.OnboardingState{
			UserID:        userID,
			CurrentStep:   6,
			JourneyStatus: enums.JourneyStatusInProgress,
		},
		naturalRole: &models.NaturalRole{
			UserID:        userID,
			PromiseCheck:  true,
			PracticeCheck: true,
			TrainingCheck: true,
		},
	}
	fx := newWizardFixture(t, repo)

	_, err := fx.svc.SaveStep(context.Background(), userID, 6, SaveStepRequest{
		Check: &CheckInput{Area: AreaConsulting, Answer: enums.CheckAnswerYes},
	})
	if err != nil {
		t.Fatalf("SaveStep: %v", err)
	}
	if !repo.naturalRole.IsReady {
		t.Fatal("all four checks true must derive is_ready")
	}
	if len(fx.notifier.adminRows) != 0 {
		t.Fatal("yes answer must not notify admins")
	}
}

func TestSaveStepEntrepreneurCategory(t *testing.T) {
	userID := uuid.New()
	repo := &fakeRepository{state: &models.OnboardingState{
		UserID:        userID,
		CurrentStep:   2,
		JourneyStatus: enums.JourneyStatusInProgress,
	}}
	fx := newWizardFixture(t, repo)

	_, err := fx.svc.SaveStep(context.Background(), userID, 2, SaveStepRequest{
		Entrepreneurial: &CategoryInput{
			Category:    CategoryProduct,
			Has:         true,
			Description: "shipped two SaaS products",
			Count:       2,
		},
	})
	if err != nil {
		t.Fatalf("SaveStep: %v", err)
	}
	if repo.ent == nil || !repo.ent.HasProduct || repo.ent.ProductCount != 2 {
		t.Fatalf("unexpected entrepreneurial record %+v", repo.ent)
	}
	if repo.ent.ProductDescription == nil || *repo.ent.ProductDescription != "shipped two SaaS products" {
		t.Fatalf("description not persisted: %+v", repo.ent)
	}
}

func TestSubmitRequiresPath(t *testing.T) {
	userID := uuid.New()
	repo := &fakeRepository{state: &models.OnboardingState{
		UserID:        userID,
		CurrentStep:   9,
		JourneyStatus: enums.JourneyStatusInProgress,
	}}
	fx := newWizardFixture(t, repo)

	_, err := fx.svc.Submit(context.Background(), userID)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected VALIDATION, got %v", err)
	}
	if len(fx.outbox.events) != 0 {
		t.Fatal("failed submit must not emit")
	}
}

func TestSubmitMovesToPendingAndEmits(t *testing.T) {
	userID := uuid.New()
	role := enums.PrimaryRoleCoBuilder
	repo := &fakeRepository{state: &models.OnboardingState{
		UserID:        userID,
		PrimaryRole:   &role,
		CurrentStep:   9,
		JourneyStatus: enums.JourneyStatusInProgress,
	}}
	fx := newWizardFixture(t, repo)

	dto, err := fx.svc.Submit(context.Background(), userID)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if dto.State.JourneyStatus != enums.JourneyStatusPendingApproval {
		t.Fatalf("expected pending_approval, got %s", dto.State.JourneyStatus)
	}
	if !dto.State.OnboardingCompleted || dto.State.SubmittedAt == nil {
		t.Fatalf("expected completed submission, got %+v", dto.State)
	}
	if len(fx.outbox.events) != 1 {
		t.Fatalf("expected 1 outbox event, got %d", len(fx.outbox.events))
	}
	event := fx.outbox.events[0]
	if event.EventType != enums.EventOnboardingSubmitted || event.AggregateID != userID {
		t.Fatalf("unexpected event %+v", event)
	}
}

func TestSubmitTwiceConflicts(t *testing.T) {
	userID := uuid.New()
	role := enums.PrimaryRoleEntrepreneur
	repo := &fakeRepository{state: &models.OnboardingState{
		UserID:        userID,
		PrimaryRole:   &role,
		CurrentStep:   9,
		JourneyStatus: enums.JourneyStatusPendingApproval,
	}}
	fx := newWizardFixture(t, repo)

	_, err := fx.svc.Submit(context.Background(), userID)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected STATE_CONFLICT, got %v", err)
	}
}
