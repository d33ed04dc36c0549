package enums

import "fmt"

// CertificationType maps to the certification_type enum on user_certifications.
type CertificationType string

const (
	CertificationTypeCoBuilderB4  CertificationType = "cobuilder_b4"
	CertificationTypeInitiatorB4  CertificationType = "initiator_b4"
	CertificationTypeConsultantB4 CertificationType = "consultant_b4"
)

var validCertificationTypes = []CertificationType{
	CertificationTypeCoBuilderB4,
	CertificationTypeInitiatorB4,
	CertificationTypeConsultantB4,
}

// String implements fmt.Stringer.
func (c CertificationType) String() string {
	return string(c)
}

// IsValid reports whether the value matches the canonical enum.
func (c CertificationType) IsValid() bool {
	for _, candidate := range validCertificationTypes {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseCertificationType converts raw input into CertificationType.
func ParseCertificationType(value string) (CertificationType, error) {
	for _, candidate := range validCertificationTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid certification type %q", value)
}
