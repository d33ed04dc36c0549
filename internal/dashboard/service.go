package dashboard

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/b4platform/b4-backend/pkg/enums"
	pkgerrors "github.com/b4platform/b4-backend/pkg/errors"
	"github.com/b4platform/b4-backend/pkg/flows"
	"github.com/b4platform/b4-backend/pkg/logger"
)

// UserStats counts platform members by onboarding outcome.
type UserStats struct {
	Total    int64 `json:"total"`
	Approved int64 `json:"approved"`
	Pending  int64 `json:"pending"`
}

// ReviewStats counts training opportunities and their approval rate.
type ReviewStats struct {
	Total        int64 `json:"total"`
	Approved     int64 `json:"approved"`
	Pending      int64 `json:"pending"`
	ApprovalRate int   `json:"approval_rate"`
}

// ApplicationStats counts startup applications and their acceptance rate.
type ApplicationStats struct {
	Total          int64 `json:"total"`
	Accepted       int64 `json:"accepted"`
	Pending        int64 `json:"pending"`
	AcceptanceRate int   `json:"acceptance_rate"`
}

// JourneyStats classifies learning journeys by how many of their required
// answers are filled in.
type JourneyStats struct {
	Total          int64 `json:"total"`
	Completed      int64 `json:"completed"`
	InProgress     int64 `json:"in_progress"`
	CompletionRate int   `json:"completion_rate"`
}

// StatsDTO is the admin dashboard payload.
type StatsDTO struct {
	Users        UserStats        `json:"users"`
	Trainings    ReviewStats      `json:"trainings"`
	Applications ApplicationStats `json:"applications"`
	Journeys     JourneyStats     `json:"journeys"`
}

// Service aggregates the admin dashboard counts.
type Service interface {
	Stats(ctx context.Context) (*StatsDTO, error)
}

type service struct {
	repo Repository
	logg *logger.Logger
}

// NewService wires the dashboard service.
func NewService(repo Repository, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "dashboard repository required")
	}
	if logg == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "logger required")
	}
	return &service{repo: repo, logg: logg}, nil
}

func (s *service) Stats(ctx context.Context) (*StatsDTO, error) {
	stats := &StatsDTO{}

	var err error
	if stats.Users.Total, err = s.repo.CountUsers(ctx); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count users")
	}
	approvedStatuses := []enums.JourneyStatus{
		enums.JourneyStatusApproved,
		enums.JourneyStatusEntrepreneurApproved,
	}
	if stats.Users.Approved, err = s.repo.CountOnboardingByStatus(ctx, approvedStatuses); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count approved users")
	}
	pendingStatuses := []enums.JourneyStatus{enums.JourneyStatusPendingApproval}
	if stats.Users.Pending, err = s.repo.CountOnboardingByStatus(ctx, pendingStatuses); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count pending users")
	}

	if stats.Trainings.Total, err = s.repo.CountTrainings(ctx); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count trainings")
	}
	if stats.Trainings.Approved, err = s.repo.CountTrainingsByStatus(ctx, enums.TrainingReviewStatusApproved); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count approved trainings")
	}
	if stats.Trainings.Pending, err = s.repo.CountTrainingsByStatus(ctx, enums.TrainingReviewStatusPending); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count pending trainings")
	}
	stats.Trainings.ApprovalRate = Rate(stats.Trainings.Approved, stats.Trainings.Total)

	if stats.Applications.Total, err = s.repo.CountApplications(ctx); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count applications")
	}
	if stats.Applications.Accepted, err = s.repo.CountApplicationsByStatus(ctx, enums.ApplicationStatusAccepted); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count accepted applications")
	}
	if stats.Applications.Pending, err = s.repo.CountApplicationsByStatus(ctx, enums.ApplicationStatusPending); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count pending applications")
	}
	stats.Applications.AcceptanceRate = Rate(stats.Applications.Accepted, stats.Applications.Total)

	if stats.Journeys, err = s.journeyStats(ctx); err != nil {
		return nil, err
	}

	return stats, nil
}

// journeyStats classifies each journey by its required answers. Every journey
// type defines exactly seven required tasks; a journey with all seven
// answered counts as completed, one to six as in progress, none as neither.
func (s *service) journeyStats(ctx context.Context) (JourneyStats, error) {
	journeys, err := s.repo.ListJourneys(ctx)
	if err != nil {
		return JourneyStats{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list journeys")
	}
	responses, err := s.repo.ListPhaseResponses(ctx)
	if err != nil {
		return JourneyStats{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list phase responses")
	}

	answers := map[uuid.UUID]map[string]string{}
	for _, response := range responses {
		merged, ok := answers[response.JourneyID]
		if !ok {
			merged = map[string]string{}
			answers[response.JourneyID] = merged
		}
		for key, value := range response.Responses {
			merged[key] = value
		}
	}

	stats := JourneyStats{Total: int64(len(journeys))}
	for _, journey := range journeys {
		answered, required := requiredAnswered(journey.JourneyType, answers[journey.ID])
		switch {
		case required > 0 && answered == required:
			stats.Completed++
		case answered > 0:
			stats.InProgress++
		}
	}
	stats.CompletionRate = Rate(stats.Completed, stats.Total)
	return stats, nil
}

func requiredAnswered(journeyType enums.JourneyType, merged map[string]string) (answered, required int) {
	for _, phase := range flows.JourneyPhases(journeyType) {
		for _, task := range phase.Tasks {
			if !task.Required {
				continue
			}
			required++
			if strings.TrimSpace(merged[task.ID]) != "" {
				answered++
			}
		}
	}
	return answered, required
}

// Rate is round-half-up(part/total*100), with 0 when the denominator is 0.
func Rate(part, total int64) int {
	if total == 0 {
		return 0
	}
	return int((part*200 + total) / (2 * total))
}
