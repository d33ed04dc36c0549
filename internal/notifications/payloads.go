package notifications

import (
	"encoding/json"

	"github.com/google/uuid"

	"github.com/b4platform/b4-backend/pkg/enums"
)

// Notification payloads are typed per notification_type. Decoding is
// fail-soft: a payload that does not parse yields nil, never an error, so a
// bad row can never break a list request.

type OnboardingSubmittedPayload struct {
	UserID      uuid.UUID         `json:"user_id"`
	PrimaryRole enums.PrimaryRole `json:"primary_role"`
}

type OnboardingDecisionPayload struct {
	Status enums.JourneyStatus `json:"status"`
	Notes  string              `json:"notes,omitempty"`
}

type NeedsHelpPayload struct {
	Area   string `json:"area"`
	Detail string `json:"detail,omitempty"`
}

type JourneySubmittedPayload struct {
	JourneyID   uuid.UUID         `json:"journey_id"`
	JourneyType enums.JourneyType `json:"journey_type"`
}

type JourneyDecisionPayload struct {
	JourneyID   uuid.UUID                   `json:"journey_id"`
	JourneyType enums.JourneyType           `json:"journey_type"`
	Status      enums.LearningJourneyStatus `json:"status"`
	Notes       string                      `json:"notes,omitempty"`
}

type CertificationGrantedPayload struct {
	CertificationType enums.CertificationType `json:"certification_type"`
	DisplayLabel      string                  `json:"display_label"`
}

type IdeaSubmittedPayload struct {
	IdeaID uuid.UUID `json:"idea_id"`
	Title  string    `json:"title"`
}

type IdeaDecisionPayload struct {
	IdeaID uuid.UUID          `json:"idea_id"`
	Status enums.ReviewStatus `json:"status"`
	Notes  string             `json:"notes,omitempty"`
}

type ApplicationReceivedPayload struct {
	ApplicationID uuid.UUID `json:"application_id"`
	IdeaID        uuid.UUID `json:"idea_id"`
	ApplicantID   uuid.UUID `json:"applicant_id"`
}

type ApplicationDecisionPayload struct {
	ApplicationID uuid.UUID               `json:"application_id"`
	IdeaID        uuid.UUID               `json:"idea_id"`
	Status        enums.ApplicationStatus `json:"status"`
}

type RoleRequestPayload struct {
	Role enums.PlatformRole `json:"role"`
}

type TrainingSubmittedPayload struct {
	TrainingID uuid.UUID `json:"training_id"`
	Title      string    `json:"title"`
}

type TrainingDecisionPayload struct {
	TrainingID uuid.UUID                  `json:"training_id"`
	Status     enums.TrainingReviewStatus `json:"status"`
	Notes      string                     `json:"notes,omitempty"`
}

// DecodePayload parses raw into the payload struct registered for the type.
// Unknown types and parse failures both return nil.
func DecodePayload(notificationType enums.NotificationType, raw json.RawMessage) any {
	if len(raw) == 0 {
		return nil
	}

	decode := func(target any) any {
		if err := json.Unmarshal(raw, target); err != nil {
			return nil
		}
		return target
	}

	switch notificationType {
	case enums.NotificationTypeOnboardingSubmitted:
		return decode(&OnboardingSubmittedPayload{})
	case enums.NotificationTypeOnboardingDecision:
		return decode(&OnboardingDecisionPayload{})
	case enums.NotificationTypeNeedsHelp:
		return decode(&NeedsHelpPayload{})
	case enums.NotificationTypeJourneySubmitted:
		return decode(&JourneySubmittedPayload{})
	case enums.NotificationTypeJourneyDecision:
		return decode(&JourneyDecisionPayload{})
	case enums.NotificationTypeCertificationGranted:
		return decode(&CertificationGrantedPayload{})
	case enums.NotificationTypeIdeaSubmitted:
		return decode(&IdeaSubmittedPayload{})
	case enums.NotificationTypeIdeaDecision:
		return decode(&IdeaDecisionPayload{})
	case enums.NotificationTypeApplicationReceived:
		return decode(&ApplicationReceivedPayload{})
	case enums.NotificationTypeApplicationDecision:
		return decode(&ApplicationDecisionPayload{})
	case enums.NotificationTypeRoleRequest:
		return decode(&RoleRequestPayload{})
	case enums.NotificationTypeTrainingSubmitted:
		return decode(&TrainingSubmittedPayload{})
	case enums.NotificationTypeTrainingDecision:
		return decode(&TrainingDecisionPayload{})
	default:
		return nil
	}
}

// MarshalPayload renders a typed payload for storage. A nil payload stays nil.
func MarshalPayload(payload any) json.RawMessage {
	if payload == nil {
		return nil
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil
	}
	return raw
}
