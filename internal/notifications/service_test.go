package notifications

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/b4platform/b4-backend/pkg/db/models"
	"github.com/b4platform/b4-backend/pkg/enums"
	pkgerrors "github.com/b4platform/b4-backend/pkg/errors"
	"github.com/b4platform/b4-backend/pkg/outbox"
	paginationpkg "github.com/b4platform/b4-backend/pkg/pagination"
)

type fakeRepository struct {
	listUserFn  func(ctx context.Context, params listParams) ([]models.UserNotification, *paginationpkg.Cursor, error)
	listAdminFn func(ctx context.Context, params listParams) ([]models.AdminNotification, *paginationpkg.Cursor, error)
	markUserFn  func(ctx context.Context, userID, notificationID uuid.UUID, now time.Time) (markResult, error)

	createdUser  []*models.UserNotification
	createdAdmin []*models.AdminNotification
}

func (f *fakeRepository) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakeRepository) CreateUser(ctx context.Context, n *models.UserNotification) error {
	f.createdUser = append(f.createdUser, n)
	return nil
}

func (f *fakeRepository) CreateAdmin(ctx context.Context, n *models.AdminNotification) error {
	f.createdAdmin = append(f.createdAdmin, n)
	return nil
}

func (f *fakeRepository) ListUser(ctx context.Context, params listParams) ([]models.UserNotification, *paginationpkg.Cursor, error) {
	if f.listUserFn != nil {
		return f.listUserFn(ctx, params)
	}
	return nil, nil, nil
}

func (f *fakeRepository) ListAdmin(ctx context.Context, params listParams) ([]models.AdminNotification, *paginationpkg.Cursor, error) {
	if f.listAdminFn != nil {
		return f.listAdminFn(ctx, params)
	}
	return nil, nil, nil
}

func (f *fakeRepository) MarkUserRead(ctx context.Context, userID, notificationID uuid.UUID, now time.Time) (markResult, error) {
	if f.markUserFn != nil {
		return f.markUserFn(ctx, userID, notificationID, now)
	}
	return markResult{}, nil
}

func (f *fakeRepository) MarkAllUserRead(ctx context.Context, userID uuid.UUID, now time.Time) (int64, error) {
	return 0, nil
}

func (f *fakeRepository) MarkAdminRead(ctx context.Context, notificationID uuid.UUID, now time.Time) (markResult, error) {
	return markResult{Found: true, Updated: true}, nil
}

func (f *fakeRepository) MarkAllAdminRead(ctx context.Context, now time.Time) (int64, error) {
	return 0, nil
}

func (f *fakeRepository) DeleteReadBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	return 0, nil
}

func newServiceWithRepo(t *testing.T, repo Repository) Service {
	t.Helper()
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func TestListDecodesTypedPayload(t *testing.T) {
	userID := uuid.New()
	journeyID := uuid.New()
	raw, _ := json.Marshal(JourneyDecisionPayload{
		JourneyID:   journeyID,
		JourneyType: enums.JourneyTypeSkillPTC,
		Status:      enums.LearningJourneyStatusApproved,
	})

	repo := &fakeRepository{
		listUserFn: func(ctx context.Context, params listParams) ([]models.UserNotification, *paginationpkg.Cursor, error) {
			return []models.UserNotification{{
				ID:      uuid.New(),
				UserID:  userID,
				Type:    enums.NotificationTypeJourneyDecision,
				Title:   "Journey approved",
				Message: "Your journey was approved.",
				Payload: raw,
			}}, nil, nil
		},
	}
	svc := newServiceWithRepo(t, repo)

	result, err := svc.List(context.Background(), ListParams{UserID: userID, Limit: 10})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(result.Items) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(result.Items))
	}

	payload, ok := result.Items[0].Payload.(*JourneyDecisionPayload)
	if !ok {
		t.Fatalf("expected decoded JourneyDecisionPayload, got %T", result.Items[0].Payload)
	}
	if payload.JourneyID != journeyID || payload.Status != enums.LearningJourneyStatusApproved {
		t.Fatalf("payload mismatch: %+v", payload)
	}
}

func TestListSurvivesMalformedPayload(t *testing.T) {
	userID := uuid.New()
	repo := &fakeRepository{
		listUserFn: func(ctx context.Context, params listParams) ([]models.UserNotification, *paginationpkg.Cursor, error) {
			return []models.UserNotification{{
				ID:      uuid.New(),
				UserID:  userID,
				Type:    enums.NotificationTypeJourneyDecision,
				Title:   "Broken",
				Message: "Payload will not parse.",
				Payload: json.RawMessage(`{"journey_id": 42`),
			}}, nil, nil
		},
	}
	svc := newServiceWithRepo(t, repo)

	result, err := svc.List(context.Background(), ListParams{UserID: userID})
	if err != nil {
		t.Fatalf("malformed payload must not fail the request: %v", err)
	}
	if result.Items[0].Payload != nil {
		t.Fatalf("expected nil payload on parse failure, got %v", result.Items[0].Payload)
	}
}

func TestListReturnsCursorForNextPage(t *testing.T) {
	userID := uuid.New()
	next := paginationpkg.Cursor{CreatedAt: time.Now(), ID: uuid.New()}
	repo := &fakeRepository{
		listUserFn: func(ctx context.Context, params listParams) ([]models.UserNotification, *paginationpkg.Cursor, error) {
			return []models.UserNotification{{ID: uuid.New(), UserID: userID}}, &next, nil
		},
	}
	svc := newServiceWithRepo(t, repo)

	result, err := svc.List(context.Background(), ListParams{UserID: userID, Limit: 1})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if result.Cursor == "" {
		t.Fatal("expected cursor for next page")
	}
	decoded, err := paginationpkg.ParseCursor(result.Cursor)
	if err != nil {
		t.Fatalf("parse cursor: %v", err)
	}
	if decoded.ID != next.ID {
		t.Fatalf("cursor id mismatch: %s != %s", decoded.ID, next.ID)
	}
}

func TestMarkReadNotFound(t *testing.T) {
	repo := &fakeRepository{
		markUserFn: func(ctx context.Context, userID, notificationID uuid.UUID, now time.Time) (markResult, error) {
			return markResult{Found: false}, nil
		},
	}
	svc := newServiceWithRepo(t, repo)

	err := svc.MarkRead(context.Background(), uuid.New(), uuid.New())
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
}

func TestAdminListExposesSubjectUser(t *testing.T) {
	subject := uuid.New()
	repo := &fakeRepository{
		listAdminFn: func(ctx context.Context, params listParams) ([]models.AdminNotification, *paginationpkg.Cursor, error) {
			return []models.AdminNotification{{
				ID:            uuid.New(),
				SubjectUserID: subject,
				Type:          enums.NotificationTypeOnboardingSubmitted,
				Title:         "Onboarding submitted",
			}}, nil, nil
		},
	}
	svc := newServiceWithRepo(t, repo)

	result, err := svc.AdminList(context.Background(), AdminListParams{Limit: 10})
	if err != nil {
		t.Fatalf("AdminList: %v", err)
	}
	if len(result.Items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(result.Items))
	}
	if result.Items[0].SubjectUserID == nil || *result.Items[0].SubjectUserID != subject {
		t.Fatalf("expected subject user id, got %v", result.Items[0].SubjectUserID)
	}
}

func TestConsumerFanOut(t *testing.T) {
	repo := &fakeRepository{}
	consumer := &Consumer{repo: repo, decoders: newSubmissionDecoders()}

	onboarding, _ := json.Marshal(payloadsOnboarding(uuid.New()))
	if err := consumer.handle(context.Background(), enums.EventOnboardingSubmitted, envelopeFor(onboarding)); err != nil {
		t.Fatalf("handle onboarding: %v", err)
	}
	if len(repo.createdAdmin) != 1 || len(repo.createdUser) != 1 {
		t.Fatalf("expected admin + user rows, got admin=%d user=%d", len(repo.createdAdmin), len(repo.createdUser))
	}
	if repo.createdAdmin[0].Type != enums.NotificationTypeOnboardingSubmitted {
		t.Fatalf("unexpected admin type %s", repo.createdAdmin[0].Type)
	}

	application, _ := json.Marshal(map[string]any{
		"application_id": uuid.New(),
		"idea_id":        uuid.New(),
		"applicant_id":   uuid.New(),
		"initiator_id":   uuid.New(),
	})
	if err := consumer.handle(context.Background(), enums.EventApplicationSubmitted, envelopeFor(application)); err != nil {
		t.Fatalf("handle application: %v", err)
	}
	if len(repo.createdUser) != 2 {
		t.Fatalf("expected initiator notification, got %d user rows", len(repo.createdUser))
	}
	if repo.createdUser[1].Type != enums.NotificationTypeApplicationReceived {
		t.Fatalf("unexpected type %s", repo.createdUser[1].Type)
	}
}

func TestConsumerHandleRejectsMalformedPayload(t *testing.T) {
	repo := &fakeRepository{}
	consumer := &Consumer{repo: repo, decoders: newSubmissionDecoders()}

	err := consumer.handle(context.Background(), enums.EventOnboardingSubmitted, envelopeFor([]byte(`{"user_id":42}`)))
	if err == nil {
		t.Fatalf("expected decode error for malformed payload")
	}
	if len(repo.createdAdmin) != 0 || len(repo.createdUser) != 0 {
		t.Fatalf("no rows should be written on decode failure")
	}
}

func envelopeFor(data []byte) outbox.PayloadEnvelope {
	return outbox.PayloadEnvelope{
		Version:    1,
		EventID:    uuid.NewString(),
		OccurredAt: time.Now().UTC(),
		Data:       data,
	}
}

func payloadsOnboarding(userID uuid.UUID) map[string]any {
	return map[string]any{
		"user_id":      userID,
		"primary_role": enums.PrimaryRoleCoBuilder,
		"submitted_at": time.Now().UTC(),
	}
}
