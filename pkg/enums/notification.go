package enums

import "fmt"

// NotificationType maps to the notification_type enum shared by user and
// admin notifications. The type selects the payload shape carried alongside
// the free-text message.
type NotificationType string

const (
	NotificationTypeOnboardingSubmitted  NotificationType = "onboarding_submitted"
	NotificationTypeOnboardingDecision   NotificationType = "onboarding_decision"
	NotificationTypeNeedsHelp            NotificationType = "needs_help"
	NotificationTypeJourneySubmitted     NotificationType = "journey_submitted"
	NotificationTypeJourneyDecision      NotificationType = "journey_decision"
	NotificationTypeCertificationGranted NotificationType = "certification_granted"
	NotificationTypeIdeaSubmitted        NotificationType = "idea_submitted"
	NotificationTypeIdeaDecision         NotificationType = "idea_decision"
	NotificationTypeApplicationReceived  NotificationType = "application_received"
	NotificationTypeApplicationDecision  NotificationType = "application_decision"
	NotificationTypeRoleRequest          NotificationType = "role_request"
	NotificationTypeTrainingSubmitted    NotificationType = "training_submitted"
	NotificationTypeTrainingDecision     NotificationType = "training_decision"
)

var validNotificationTypes = []NotificationType{
	NotificationTypeOnboardingSubmitted,
	NotificationTypeOnboardingDecision,
	NotificationTypeNeedsHelp,
	NotificationTypeJourneySubmitted,
	NotificationTypeJourneyDecision,
	NotificationTypeCertificationGranted,
	NotificationTypeIdeaSubmitted,
	NotificationTypeIdeaDecision,
	NotificationTypeApplicationReceived,
	NotificationTypeApplicationDecision,
	NotificationTypeRoleRequest,
	NotificationTypeTrainingSubmitted,
	NotificationTypeTrainingDecision,
}

// IsValid checks whether the given type matches the canonical enum.
func (n NotificationType) IsValid() bool {
	for _, candidate := range validNotificationTypes {
		if candidate == n {
			return true
		}
	}
	return false
}

// ParseNotificationType converts raw strings into NotificationType.
func ParseNotificationType(value string) (NotificationType, error) {
	for _, candidate := range validNotificationTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid notification type %q", value)
}
