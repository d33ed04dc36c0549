package enums

import "fmt"

// DocumentStatus maps to the document_status enum on documents.
type DocumentStatus string

const (
	DocumentStatusPending  DocumentStatus = "pending"
	DocumentStatusUploaded DocumentStatus = "uploaded"
	DocumentStatusDeleted  DocumentStatus = "deleted"
)

var validDocumentStatuses = []DocumentStatus{
	DocumentStatusPending,
	DocumentStatusUploaded,
	DocumentStatusDeleted,
}

// String implements fmt.Stringer.
func (d DocumentStatus) String() string {
	return string(d)
}

// IsValid reports whether the value matches the canonical document_status enum.
func (d DocumentStatus) IsValid() bool {
	for _, candidate := range validDocumentStatuses {
		if candidate == d {
			return true
		}
	}
	return false
}

// ParseDocumentStatus converts raw input into DocumentStatus.
func ParseDocumentStatus(value string) (DocumentStatus, error) {
	for _, candidate := range validDocumentStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid document status %q", value)
}
