package registry

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/b4platform/b4-backend/pkg/config"
	"github.com/b4platform/b4-backend/pkg/db/models"
	"github.com/b4platform/b4-backend/pkg/enums"
	"github.com/b4platform/b4-backend/pkg/outbox"
	"github.com/b4platform/b4-backend/pkg/outbox/payloads"
	"github.com/google/uuid"
)

// EventDescriptor links an event type to its aggregate/topic/payload schema.
type EventDescriptor struct {
	EventType      enums.OutboxEventType
	AggregateType  enums.OutboxAggregateType
	Topic          string
	PayloadFactory func() interface{}
}

// ResolvedEvent is the result of decoding an outbox row.
type ResolvedEvent struct {
	Descriptor EventDescriptor
	Envelope   outbox.PayloadEnvelope
	Payload    interface{}
}

// EventRegistry maps each supported event type to its descriptor.
type EventRegistry struct {
	entries map[enums.OutboxEventType]EventDescriptor
}

// NonRetryableError signals the dispatcher should stop retrying a row.
type NonRetryableError struct {
	Err error
}

// Error implements error.
func (e NonRetryableError) Error() string {
	if e.Err == nil {
		return "non-retryable error"
	}
	return e.Err.Error()
}

// Unwrap exposes the wrapped error.
func (e NonRetryableError) Unwrap() error {
	return e.Err
}

// NewEventRegistry builds the registry with the configured topic names.
func NewEventRegistry(cfg config.PubSubConfig) (*EventRegistry, error) {
	if cfg.PlatformTopic == "" {
		return nil, fmt.Errorf("platform topic is required")
	}

	reg := &EventRegistry{entries: make(map[enums.OutboxEventType]EventDescriptor)}
	topic := cfg.PlatformTopic

	for _, desc := range []EventDescriptor{
		{
			EventType:      enums.EventOnboardingSubmitted,
			AggregateType:  enums.AggregateOnboarding,
			Topic:          topic,
			PayloadFactory: func() interface{} { return &payloads.OnboardingSubmittedEvent{} },
		},
		{
			EventType:      enums.EventOnboardingDecided,
			AggregateType:  enums.AggregateOnboarding,
			Topic:          topic,
			PayloadFactory: func() interface{} { return &payloads.OnboardingDecidedEvent{} },
		},
		{
			EventType:      enums.EventJourneyStarted,
			AggregateType:  enums.AggregateJourney,
			Topic:          topic,
			PayloadFactory: func() interface{} { return &payloads.JourneyStartedEvent{} },
		},
		{
			EventType:      enums.EventJourneyPhaseSaved,
			AggregateType:  enums.AggregateJourney,
			Topic:          topic,
			PayloadFactory: func() interface{} { return &payloads.JourneyPhaseSavedEvent{} },
		},
		{
			EventType:      enums.EventJourneySubmitted,
			AggregateType:  enums.AggregateJourney,
			Topic:          topic,
			PayloadFactory: func() interface{} { return &payloads.JourneySubmittedEvent{} },
		},
		{
			EventType:      enums.EventJourneyDecided,
			AggregateType:  enums.AggregateJourney,
			Topic:          topic,
			PayloadFactory: func() interface{} { return &payloads.JourneyDecidedEvent{} },
		},
		{
			EventType:      enums.EventCertificationGranted,
			AggregateType:  enums.AggregateUser,
			Topic:          topic,
			PayloadFactory: func() interface{} { return &payloads.CertificationGrantedEvent{} },
		},
		{
			EventType:      enums.EventIdeaSubmitted,
			AggregateType:  enums.AggregateIdea,
			Topic:          topic,
			PayloadFactory: func() interface{} { return &payloads.IdeaSubmittedEvent{} },
		},
		{
			EventType:      enums.EventIdeaDecided,
			AggregateType:  enums.AggregateIdea,
			Topic:          topic,
			PayloadFactory: func() interface{} { return &payloads.IdeaDecidedEvent{} },
		},
		{
			EventType:      enums.EventEpisodeAdvanced,
			AggregateType:  enums.AggregateIdea,
			Topic:          topic,
			PayloadFactory: func() interface{} { return &payloads.EpisodeAdvancedEvent{} },
		},
		{
			EventType:      enums.EventApplicationSubmitted,
			AggregateType:  enums.AggregateApplication,
			Topic:          topic,
			PayloadFactory: func() interface{} { return &payloads.ApplicationSubmittedEvent{} },
		},
		{
			EventType:      enums.EventApplicationDecided,
			AggregateType:  enums.AggregateApplication,
			Topic:          topic,
			PayloadFactory: func() interface{} { return &payloads.ApplicationDecidedEvent{} },
		},
		{
			EventType:      enums.EventTrainingSubmitted,
			AggregateType:  enums.AggregateTraining,
			Topic:          topic,
			PayloadFactory: func() interface{} { return &payloads.TrainingSubmittedEvent{} },
		},
		{
			EventType:      enums.EventTrainingDecided,
			AggregateType:  enums.AggregateTraining,
			Topic:          topic,
			PayloadFactory: func() interface{} { return &payloads.TrainingDecidedEvent{} },
		},
		{
			EventType:      enums.EventAccountDeleted,
			AggregateType:  enums.AggregateUser,
			Topic:          topic,
			PayloadFactory: func() interface{} { return &payloads.AccountDeletedEvent{} },
		},
	} {
		reg.register(desc)
	}

	return reg, nil
}

func (r *EventRegistry) register(desc EventDescriptor) {
	if desc.PayloadFactory == nil {
		return
	}
	r.entries[desc.EventType] = desc
}

// Resolve validates the row and decodes its typed payload.
func (r *EventRegistry) Resolve(event models.OutboxEvent) (*ResolvedEvent, error) {
	desc, ok := r.entries[event.EventType]
	if !ok {
		return nil, NewNonRetryableError(fmt.Errorf("unsupported event type %s", event.EventType))
	}
	if desc.AggregateType != event.AggregateType {
		return nil, NewNonRetryableError(fmt.Errorf("aggregate mismatch: expected %s got %s", desc.AggregateType, event.AggregateType))
	}
	if event.AggregateID == uuid.Nil {
		return nil, NewNonRetryableError(fmt.Errorf("missing aggregate_id"))
	}

	var envelope outbox.PayloadEnvelope
	if err := json.Unmarshal(event.Payload, &envelope); err != nil {
		return nil, NewNonRetryableError(fmt.Errorf("decode envelope: %w", err))
	}

	trimmed := bytes.TrimSpace(envelope.Data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, NewNonRetryableError(fmt.Errorf("payload missing for %s", event.EventType))
	}

	payload := desc.PayloadFactory()
	if payload == nil {
		return nil, NewNonRetryableError(fmt.Errorf("payload factory not configured for %s", event.EventType))
	}
	if err := json.Unmarshal(envelope.Data, payload); err != nil {
		return nil, NewNonRetryableError(fmt.Errorf("decode %s payload: %w", event.EventType, err))
	}

	return &ResolvedEvent{
		Descriptor: desc,
		Envelope:   envelope,
		Payload:    payload,
	}, nil
}

// NewNonRetryableError wraps an error to signal no retries.
func NewNonRetryableError(err error) NonRetryableError {
	return NonRetryableError{Err: err}
}
