package notifications

import (
	"context"
	"encoding/json"
	"fmt"

	pubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"

	"github.com/b4platform/b4-backend/pkg/db/models"
	"github.com/b4platform/b4-backend/pkg/enums"
	"github.com/b4platform/b4-backend/pkg/logger"
	"github.com/b4platform/b4-backend/pkg/outbox"
	"github.com/b4platform/b4-backend/pkg/outbox/idempotency"
	"github.com/b4platform/b4-backend/pkg/outbox/payloads"
	"github.com/b4platform/b4-backend/pkg/outbox/registry"
)

const submissionNotificationConsumer = "submission-notifications"

type consumerRepository interface {
	CreateUser(ctx context.Context, notification *models.UserNotification) error
	CreateAdmin(ctx context.Context, notification *models.AdminNotification) error
}

// Consumer watches platform events and turns submissions into notification
// rows: an admin queue entry plus, where the submitter expects an
// acknowledgement, a user notification. Decision notifications are written
// inside the deciding transaction, not here.
type Consumer struct {
	repo         consumerRepository
	subscription *pubsub.Subscriber
	idempotency  *idempotency.Manager
	decoders     *registry.DecoderRegistry
	logg         *logger.Logger
}

// NewConsumer builds a submission notification consumer.
func NewConsumer(repo consumerRepository, subscription *pubsub.Subscriber, manager *idempotency.Manager, logg *logger.Logger) (*Consumer, error) {
	if repo == nil {
		return nil, fmt.Errorf("notifications repository required")
	}
	if subscription == nil {
		return nil, fmt.Errorf("platform subscription required")
	}
	if manager == nil {
		return nil, fmt.Errorf("idempotency manager required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Consumer{
		repo:         repo,
		subscription: subscription,
		idempotency:  manager,
		decoders:     newSubmissionDecoders(),
		logg:         logg,
	}, nil
}

func newSubmissionDecoders() *registry.DecoderRegistry {
	reg := registry.NewDecoderRegistry()
	reg.Register(enums.EventOnboardingSubmitted, 1, func(data json.RawMessage) (interface{}, error) {
		var payload payloads.OnboardingSubmittedEvent
		if err := json.Unmarshal(data, &payload); err != nil {
			return nil, err
		}
		return payload, nil
	})
	reg.Register(enums.EventJourneySubmitted, 1, func(data json.RawMessage) (interface{}, error) {
		var payload payloads.JourneySubmittedEvent
		if err := json.Unmarshal(data, &payload); err != nil {
			return nil, err
		}
		return payload, nil
	})
	reg.Register(enums.EventIdeaSubmitted, 1, func(data json.RawMessage) (interface{}, error) {
		var payload payloads.IdeaSubmittedEvent
		if err := json.Unmarshal(data, &payload); err != nil {
			return nil, err
		}
		return payload, nil
	})
	reg.Register(enums.EventTrainingSubmitted, 1, func(data json.RawMessage) (interface{}, error) {
		var payload payloads.TrainingSubmittedEvent
		if err := json.Unmarshal(data, &payload); err != nil {
			return nil, err
		}
		return payload, nil
	})
	reg.Register(enums.EventApplicationSubmitted, 1, func(data json.RawMessage) (interface{}, error) {
		var payload payloads.ApplicationSubmittedEvent
		if err := json.Unmarshal(data, &payload); err != nil {
			return nil, err
		}
		return payload, nil
	})
	return reg
}

// Run starts the consumer loop until the context is canceled.
func (c *Consumer) Run(ctx context.Context) error {
	return c.subscription.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		result := c.process(ctx, msg)
		if result.nack {
			msg.Nack()
			return
		}
		msg.Ack()
	})
}

type processResult struct {
	ack  bool
	nack bool
}

var handledEvents = map[string]struct{}{
	string(enums.EventOnboardingSubmitted):  {},
	string(enums.EventJourneySubmitted):     {},
	string(enums.EventIdeaSubmitted):        {},
	string(enums.EventTrainingSubmitted):    {},
	string(enums.EventApplicationSubmitted): {},
}

func (c *Consumer) process(ctx context.Context, msg *pubsub.Message) processResult {
	eventType := msg.Attributes["event_type"]
	logCtx := c.logg.WithFields(ctx, map[string]any{
		"message_id": msg.ID,
		"event_type": eventType,
	})

	if _, ok := handledEvents[eventType]; !ok {
		return processResult{ack: true}
	}

	var envelope outbox.PayloadEnvelope
	if err := json.Unmarshal(msg.Data, &envelope); err != nil {
		c.logg.Error(logCtx, "failed to decode envelope", err)
		return processResult{ack: true}
	}

	eventID, err := uuid.Parse(envelope.EventID)
	if err != nil {
		c.logg.Error(logCtx, "invalid event id", err)
		return processResult{ack: true}
	}

	already, err := c.idempotency.CheckAndMarkProcessed(ctx, submissionNotificationConsumer, eventID)
	if err != nil {
		c.logg.Error(logCtx, "idempotency check failed", err)
		return processResult{nack: true}
	}
	if already {
		c.logg.Info(logCtx, "event already processed")
		return processResult{ack: true}
	}

	if err := c.handle(ctx, enums.OutboxEventType(eventType), envelope); err != nil {
		c.logg.Error(logCtx, "notification handling failed", err)
		_ = c.idempotency.Delete(ctx, submissionNotificationConsumer, eventID)
		return processResult{nack: true}
	}

	return processResult{ack: true}
}

func (c *Consumer) handle(ctx context.Context, eventType enums.OutboxEventType, envelope outbox.PayloadEnvelope) error {
	version := envelope.Version
	if version == 0 {
		version = 1
	}
	decoded, err := c.decoders.Decode(eventType, version, envelope.Data)
	if err != nil {
		return err
	}
	switch payload := decoded.(type) {
	case payloads.OnboardingSubmittedEvent:
		return c.onOnboardingSubmitted(ctx, payload)
	case payloads.JourneySubmittedEvent:
		return c.onJourneySubmitted(ctx, payload)
	case payloads.IdeaSubmittedEvent:
		return c.onIdeaSubmitted(ctx, payload)
	case payloads.TrainingSubmittedEvent:
		return c.onTrainingSubmitted(ctx, payload)
	case payloads.ApplicationSubmittedEvent:
		return c.onApplicationSubmitted(ctx, payload)
	default:
		return nil
	}
}

func (c *Consumer) onOnboardingSubmitted(ctx context.Context, payload payloads.OnboardingSubmittedEvent) error {
	if payload.UserID == uuid.Nil {
		return fmt.Errorf("user id missing")
	}

	adminRow := &models.AdminNotification{
		SubjectUserID: payload.UserID,
		Type:          enums.NotificationTypeOnboardingSubmitted,
		Title:         "Onboarding submitted for review",
		Message:       fmt.Sprintf("A %s finished the onboarding wizard and awaits approval.", payload.PrimaryRole),
		Payload: MarshalPayload(OnboardingSubmittedPayload{
			UserID:      payload.UserID,
			PrimaryRole: payload.PrimaryRole,
		}),
	}
	if err := c.repo.CreateAdmin(ctx, adminRow); err != nil {
		return err
	}

	userRow := &models.UserNotification{
		UserID:  payload.UserID,
		Type:    enums.NotificationTypeOnboardingSubmitted,
		Title:   "Submission received",
		Message: "Your onboarding is with our review team. We will let you know once it is decided.",
	}
	return c.repo.CreateUser(ctx, userRow)
}

func (c *Consumer) onJourneySubmitted(ctx context.Context, payload payloads.JourneySubmittedEvent) error {
	if payload.UserID == uuid.Nil {
		return fmt.Errorf("user id missing")
	}
	row := &models.AdminNotification{
		SubjectUserID: payload.UserID,
		Type:          enums.NotificationTypeJourneySubmitted,
		Title:         "Learning journey submitted",
		Message:       fmt.Sprintf("A %s journey is ready for review.", payload.JourneyType),
		Payload: MarshalPayload(JourneySubmittedPayload{
			JourneyID:   payload.JourneyID,
			JourneyType: payload.JourneyType,
		}),
	}
	return c.repo.CreateAdmin(ctx, row)
}

func (c *Consumer) onIdeaSubmitted(ctx context.Context, payload payloads.IdeaSubmittedEvent) error {
	if payload.InitiatorID == uuid.Nil {
		return fmt.Errorf("initiator id missing")
	}
	row := &models.AdminNotification{
		SubjectUserID: payload.InitiatorID,
		Type:          enums.NotificationTypeIdeaSubmitted,
		Title:         "Startup idea submitted",
		Message:       fmt.Sprintf("%q awaits review.", payload.Title),
		Payload: MarshalPayload(IdeaSubmittedPayload{
			IdeaID: payload.IdeaID,
			Title:  payload.Title,
		}),
	}
	return c.repo.CreateAdmin(ctx, row)
}

func (c *Consumer) onTrainingSubmitted(ctx context.Context, payload payloads.TrainingSubmittedEvent) error {
	if payload.AuthorID == uuid.Nil {
		return fmt.Errorf("author id missing")
	}
	row := &models.AdminNotification{
		SubjectUserID: payload.AuthorID,
		Type:          enums.NotificationTypeTrainingSubmitted,
		Title:         "Training opportunity submitted",
		Message:       fmt.Sprintf("%q awaits review.", payload.Title),
		Payload: MarshalPayload(TrainingSubmittedPayload{
			TrainingID: payload.TrainingID,
			Title:      payload.Title,
		}),
	}
	return c.repo.CreateAdmin(ctx, row)
}

func (c *Consumer) onApplicationSubmitted(ctx context.Context, payload payloads.ApplicationSubmittedEvent) error {
	if payload.InitiatorID == uuid.Nil {
		return fmt.Errorf("initiator id missing")
	}
	row := &models.UserNotification{
		UserID:  payload.InitiatorID,
		Type:    enums.NotificationTypeApplicationReceived,
		Title:   "New co-builder application",
		Message: "A co-builder applied to join your startup idea.",
		Payload: MarshalPayload(ApplicationReceivedPayload{
			ApplicationID: payload.ApplicationID,
			IdeaID:        payload.IdeaID,
			ApplicantID:   payload.ApplicantID,
		}),
	}
	return c.repo.CreateUser(ctx, row)
}
