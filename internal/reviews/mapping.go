package reviews

import "github.com/b4platform/b4-backend/pkg/enums"

// journeyAward maps an approved journey type to the credential it grants and
// the onboarding status mutation that travels with it. scaling_path marks the
// user scaled without touching boost_type.
type journeyAward struct {
	CertificationType enums.CertificationType
	DisplayLabel      string
	UserStatus        enums.UserStatus
	BoostType         *enums.BoostType
	ScaleType         *enums.ScaleType
}

var journeyAwards = map[enums.JourneyType]journeyAward{
	enums.JourneyTypeSkillPTC: {
		CertificationType: enums.CertificationTypeCoBuilderB4,
		DisplayLabel:      "Vaccinated Co Builder",
		UserStatus:        enums.UserStatusBoosted,
		BoostType:         boostTypePtr(enums.BoostTypeCoBuilder),
	},
	enums.JourneyTypeIdeaPTC: {
		CertificationType: enums.CertificationTypeInitiatorB4,
		DisplayLabel:      "Vaccinated Initiator",
		UserStatus:        enums.UserStatusBoosted,
		BoostType:         boostTypePtr(enums.BoostTypeInitiator),
	},
	enums.JourneyTypeScalingPath: {
		CertificationType: enums.CertificationTypeConsultantB4,
		DisplayLabel:      "Certified Consultant",
		UserStatus:        enums.UserStatusScaled,
		ScaleType:         scaleTypePtr(enums.ScaleTypePersonalPromise),
	},
}

func boostTypePtr(b enums.BoostType) *enums.BoostType { return &b }

func scaleTypePtr(s enums.ScaleType) *enums.ScaleType { return &s }
