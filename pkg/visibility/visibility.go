package visibility

import (
	"github.com/b4platform/b4-backend/pkg/db/models"
	"github.com/b4platform/b4-backend/pkg/enums"
	pkgerrors "github.com/b4platform/b4-backend/pkg/errors"
)

// IdeaVisibilityInput drives the shared visibility checks for co-builder-facing queries.
type IdeaVisibilityInput struct {
	Idea        *models.StartupIdea
	ViewerID    string
	InitiatorID string
}

// EnsureIdeaVisible enforces canonical rules so unapproved ideas never leak through
// browse or application queries. Owners always see their own ideas.
func EnsureIdeaVisible(input IdeaVisibilityInput) error {
	if input.Idea == nil {
		return pkgerrors.New(pkgerrors.CodeNotFound, "idea not found")
	}
	if input.ViewerID != "" && input.ViewerID == input.InitiatorID {
		return nil
	}
	if input.Idea.ReviewStatus != enums.ReviewStatusApproved {
		return pkgerrors.New(pkgerrors.CodeNotFound, "idea not found")
	}
	switch input.Idea.Status {
	case enums.IdeaStatusActive, enums.IdeaStatusPaused:
		return nil
	default:
		return pkgerrors.New(pkgerrors.CodeNotFound, "idea no longer available")
	}
}

// CanApply reports whether the idea accepts new applications.
func CanApply(idea *models.StartupIdea) error {
	if err := EnsureIdeaVisible(IdeaVisibilityInput{Idea: idea}); err != nil {
		return err
	}
	if idea.Status != enums.IdeaStatusActive {
		return pkgerrors.New(pkgerrors.CodeConflict, "idea is not accepting applications")
	}
	return nil
}
