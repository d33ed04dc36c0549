package resume

import "github.com/b4platform/b4-backend/pkg/enums"

// Stored enum values are wire identifiers; the PDF shows display strings.
var primaryRoleLabels = map[enums.PrimaryRole]string{
	enums.PrimaryRoleEntrepreneur: "Initiator",
	enums.PrimaryRoleCoBuilder:    "Co-Builder",
}

var userStatusLabels = map[enums.UserStatus]string{
	enums.UserStatusBoosted: "Boosted",
	enums.UserStatusScaled:  "Scaled",
}

var boostTypeLabels = map[enums.BoostType]string{
	enums.BoostTypeCoBuilder: "Boosted Co-Builder",
	enums.BoostTypeInitiator: "Boosted Initiator",
}

var scaleTypeLabels = map[enums.ScaleType]string{
	enums.ScaleTypePersonalPromise: "Personal Promise",
}

var ideaStatusLabels = map[enums.IdeaStatus]string{
	enums.IdeaStatusActive:    "Active",
	enums.IdeaStatusPaused:    "Paused",
	enums.IdeaStatusCompleted: "Completed",
	enums.IdeaStatusArchived:  "Archived",
}

var episodeLabels = map[enums.Episode]string{
	enums.EpisodeDevelopment: "Development",
	enums.EpisodeValidation:  "Validation",
	enums.EpisodeGrowth:      "Growth",
}

// label falls back to the stored value so an unmapped enum still renders.
func label[K comparable](lookup map[K]string, key K, fallback string) string {
	if value, ok := lookup[key]; ok {
		return value
	}
	return fallback
}
