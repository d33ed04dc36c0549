package router

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	cbigquery "cloud.google.com/go/bigquery"

	"github.com/b4platform/b4-backend/internal/analytics/types"
	"github.com/b4platform/b4-backend/pkg/enums"
	"github.com/b4platform/b4-backend/pkg/logger"
	outboxpayloads "github.com/b4platform/b4-backend/pkg/outbox/payloads"
)

var ErrUnsupportedEventType = errors.New("unsupported analytics event type")

// Writer delivers BigQuery rows produced by the activity handler.
type Writer interface {
	InsertActivity(ctx context.Context, row types.ActivityEventRow) error
}

type eventEntry struct {
	// factory returns the canonical payload struct; decoding into it guards
	// against malformed payloads before anything reaches BigQuery.
	factory    func() any
	subjectKey string
}

// Router validates platform envelopes against their canonical payload shape
// and writes one activity row per event.
type Router struct {
	entries map[enums.OutboxEventType]eventEntry
	writer  Writer
	logg    *logger.Logger
}

// NewRouter wires the full platform event catalog.
func NewRouter(writer Writer, logg *logger.Logger) (*Router, error) {
	if writer == nil {
		return nil, errors.New("writer is required")
	}
	if logg == nil {
		return nil, errors.New("logger is required")
	}

	entries := map[enums.OutboxEventType]eventEntry{
		enums.EventOnboardingSubmitted: {
			factory:    func() any { return &outboxpayloads.OnboardingSubmittedEvent{} },
			subjectKey: "user_id",
		},
		enums.EventOnboardingDecided: {
			factory:    func() any { return &outboxpayloads.OnboardingDecidedEvent{} },
			subjectKey: "user_id",
		},
		enums.EventJourneyStarted: {
			factory:    func() any { return &outboxpayloads.JourneyStartedEvent{} },
			subjectKey: "user_id",
		},
		enums.EventJourneyPhaseSaved: {
			factory:    func() any { return &outboxpayloads.JourneyPhaseSavedEvent{} },
			subjectKey: "user_id",
		},
		enums.EventJourneySubmitted: {
			factory:    func() any { return &outboxpayloads.JourneySubmittedEvent{} },
			subjectKey: "user_id",
		},
		enums.EventJourneyDecided: {
			factory:    func() any { return &outboxpayloads.JourneyDecidedEvent{} },
			subjectKey: "user_id",
		},
		enums.EventCertificationGranted: {
			factory:    func() any { return &outboxpayloads.CertificationGrantedEvent{} },
			subjectKey: "user_id",
		},
		enums.EventIdeaSubmitted: {
			factory:    func() any { return &outboxpayloads.IdeaSubmittedEvent{} },
			subjectKey: "initiator_id",
		},
		enums.EventIdeaDecided: {
			factory:    func() any { return &outboxpayloads.IdeaDecidedEvent{} },
			subjectKey: "initiator_id",
		},
		enums.EventEpisodeAdvanced: {
			factory:    func() any { return &outboxpayloads.EpisodeAdvancedEvent{} },
			subjectKey: "initiator_id",
		},
		enums.EventApplicationSubmitted: {
			factory:    func() any { return &outboxpayloads.ApplicationSubmittedEvent{} },
			subjectKey: "applicant_id",
		},
		enums.EventApplicationDecided: {
			factory:    func() any { return &outboxpayloads.ApplicationDecidedEvent{} },
			subjectKey: "applicant_id",
		},
		enums.EventTrainingSubmitted: {
			factory:    func() any { return &outboxpayloads.TrainingSubmittedEvent{} },
			subjectKey: "author_id",
		},
		enums.EventTrainingDecided: {
			factory:    func() any { return &outboxpayloads.TrainingDecidedEvent{} },
			subjectKey: "author_id",
		},
		enums.EventAccountDeleted: {
			factory:    func() any { return &outboxpayloads.AccountDeletedEvent{} },
			subjectKey: "user_id",
		},
	}

	return &Router{entries: entries, writer: writer, logg: logg}, nil
}

// Handle validates the envelope payload and writes the activity row.
func (r *Router) Handle(ctx context.Context, envelope types.Envelope) error {
	entry, ok := r.entries[envelope.EventType]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnsupportedEventType, envelope.EventType)
	}
	if len(envelope.Payload) == 0 {
		return fmt.Errorf("empty payload for %s", envelope.EventType)
	}
	if err := json.Unmarshal(envelope.Payload, entry.factory()); err != nil {
		return fmt.Errorf("decode %s payload: %w", envelope.EventType, err)
	}

	row, err := buildActivityRow(envelope, entry.subjectKey)
	if err != nil {
		return err
	}
	return r.writer.InsertActivity(ctx, *row)
}

func buildActivityRow(envelope types.Envelope, subjectKey string) (*types.ActivityEventRow, error) {
	payload, err := envelope.PayloadMap()
	if err != nil {
		return nil, fmt.Errorf("decode %s payload map: %w", envelope.EventType, err)
	}

	row := &types.ActivityEventRow{
		EventID:       envelope.EventID,
		EventType:     string(envelope.EventType),
		AggregateType: string(envelope.AggregateType),
		AggregateID:   envelope.AggregateID,
		SubjectUserID: stringValue(payload, subjectKey),
		OccurredAt:    envelope.OccurredAt,
		Payload: cbigquery.NullJSON{
			Valid:   true,
			JSONVal: string(envelope.Payload),
		},
	}
	if actor := envelope.Actor; actor != nil {
		id := actor.UserID.String()
		row.ActorUserID = &id
		if role := strings.TrimSpace(actor.Role); role != "" {
			row.ActorRole = &role
		}
	}
	return row, nil
}

func stringValue(payload map[string]any, key string) *string {
	if raw, ok := payload[key]; ok {
		if str, ok := raw.(string); ok {
			trimmed := strings.TrimSpace(str)
			if trimmed != "" {
				return &trimmed
			}
		}
	}
	return nil
}
