package visibility

import (
	"testing"

	"github.com/google/uuid"

	"github.com/b4platform/b4-backend/pkg/db/models"
	"github.com/b4platform/b4-backend/pkg/enums"
	pkgerrors "github.com/b4platform/b4-backend/pkg/errors"
)

func approvedIdea() *models.StartupIdea {
	return &models.StartupIdea{
		ID:           uuid.New(),
		ReviewStatus: enums.ReviewStatusApproved,
		Status:       enums.IdeaStatusActive,
	}
}

func TestEnsureIdeaVisibleApproved(t *testing.T) {
	if err := EnsureIdeaVisible(IdeaVisibilityInput{Idea: approvedIdea()}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestEnsureIdeaVisibleNilIdea(t *testing.T) {
	err := EnsureIdeaVisible(IdeaVisibilityInput{})
	if err == nil {
		t.Fatal("expected error")
	}
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestEnsureIdeaVisiblePendingHiddenFromOthers(t *testing.T) {
	idea := approvedIdea()
	idea.ReviewStatus = enums.ReviewStatusPending

	err := EnsureIdeaVisible(IdeaVisibilityInput{Idea: idea, ViewerID: "viewer", InitiatorID: "owner"})
	if err == nil {
		t.Fatal("expected pending idea to be hidden")
	}
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestEnsureIdeaVisibleOwnerSeesPending(t *testing.T) {
	idea := approvedIdea()
	idea.ReviewStatus = enums.ReviewStatusPending

	if err := EnsureIdeaVisible(IdeaVisibilityInput{Idea: idea, ViewerID: "owner", InitiatorID: "owner"}); err != nil {
		t.Fatalf("owner should see own pending idea: %v", err)
	}
}

func TestEnsureIdeaVisibleArchivedHidden(t *testing.T) {
	idea := approvedIdea()
	idea.Status = enums.IdeaStatusArchived

	if err := EnsureIdeaVisible(IdeaVisibilityInput{Idea: idea}); err == nil {
		t.Fatal("expected archived idea to be hidden")
	}
}

func TestCanApplyPausedIdea(t *testing.T) {
	idea := approvedIdea()
	idea.Status = enums.IdeaStatusPaused

	err := CanApply(idea)
	if err == nil {
		t.Fatal("expected paused idea to reject applications")
	}
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestCanApplyActiveIdea(t *testing.T) {
	if err := CanApply(approvedIdea()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
