package router

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/b4platform/b4-backend/internal/analytics/types"
	"github.com/b4platform/b4-backend/pkg/enums"
	"github.com/b4platform/b4-backend/pkg/logger"
	"github.com/b4platform/b4-backend/pkg/outbox"
	outboxpayloads "github.com/b4platform/b4-backend/pkg/outbox/payloads"
)

type fakeWriter struct {
	rows []types.ActivityEventRow
	err  error
}

func (f *fakeWriter) InsertActivity(_ context.Context, row types.ActivityEventRow) error {
	if f.err != nil {
		return f.err
	}
	f.rows = append(f.rows, row)
	return nil
}

func newTestRouter(t *testing.T, writer Writer) *Router {
	t.Helper()
	r, err := NewRouter(writer, logger.New(logger.Options{ServiceName: "test"}))
	if err != nil {
		t.Fatalf("NewRouter: %v", err)
	}
	return r
}

func journeyDecidedEnvelope(t *testing.T) types.Envelope {
	t.Helper()
	userID := uuid.New()
	adminID := uuid.New()
	payload, err := json.Marshal(outboxpayloads.JourneyDecidedEvent{
		JourneyID:   uuid.New(),
		UserID:      userID,
		JourneyType: enums.JourneyTypeSkillPTC,
		Status:      enums.LearningJourneyStatusApproved,
		ReviewedBy:  adminID,
	})
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	return types.Envelope{
		EventID:       uuid.NewString(),
		EventType:     enums.EventJourneyDecided,
		AggregateType: enums.AggregateJourney,
		AggregateID:   uuid.NewString(),
		Actor:         &outbox.ActorRef{UserID: adminID, Role: string(enums.PlatformRoleAdmin)},
		OccurredAt:    time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
		Payload:       payload,
	}
}

func TestRouterWritesActivityRow(t *testing.T) {
	writer := &fakeWriter{}
	r := newTestRouter(t, writer)
	envelope := journeyDecidedEnvelope(t)

	if err := r.Handle(context.Background(), envelope); err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if len(writer.rows) != 1 {
		t.Fatalf("expected one row, got %d", len(writer.rows))
	}

	row := writer.rows[0]
	if row.EventType != string(enums.EventJourneyDecided) {
		t.Fatalf("event type = %s", row.EventType)
	}
	if row.ActorUserID == nil || *row.ActorUserID != envelope.Actor.UserID.String() {
		t.Fatalf("actor user id = %v", row.ActorUserID)
	}
	if row.ActorRole == nil || *row.ActorRole != string(enums.PlatformRoleAdmin) {
		t.Fatalf("actor role = %v", row.ActorRole)
	}
	if row.SubjectUserID == nil {
		t.Fatal("expected a subject user id")
	}
	if !row.Payload.Valid {
		t.Fatal("expected the payload to ride along")
	}
}

func TestRouterRejectsUnknownEventType(t *testing.T) {
	r := newTestRouter(t, &fakeWriter{})
	envelope := journeyDecidedEnvelope(t)
	envelope.EventType = enums.OutboxEventType("profile_viewed")

	err := r.Handle(context.Background(), envelope)
	if !errors.Is(err, ErrUnsupportedEventType) {
		t.Fatalf("expected ErrUnsupportedEventType, got %v", err)
	}
}

func TestRouterRejectsMalformedPayload(t *testing.T) {
	r := newTestRouter(t, &fakeWriter{})
	envelope := journeyDecidedEnvelope(t)
	envelope.Payload = json.RawMessage(`{"journey_id": 12}`)

	if err := r.Handle(context.Background(), envelope); err == nil {
		t.Fatal("expected decode error")
	}

	envelope.Payload = nil
	if err := r.Handle(context.Background(), envelope); err == nil {
		t.Fatal("expected empty payload error")
	}
}

func TestRouterPropagatesWriterErrors(t *testing.T) {
	writer := &fakeWriter{err: errors.New("insert failed")}
	r := newTestRouter(t, writer)

	if err := r.Handle(context.Background(), journeyDecidedEnvelope(t)); err == nil {
		t.Fatal("expected writer error")
	}
}
