package ideas

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/b4platform/b4-backend/pkg/db/models"
	"github.com/b4platform/b4-backend/pkg/enums"
	pkgerrors "github.com/b4platform/b4-backend/pkg/errors"
	"github.com/b4platform/b4-backend/pkg/flows"
	"github.com/b4platform/b4-backend/pkg/outbox"
	"github.com/b4platform/b4-backend/pkg/outbox/payloads"
)

// Episode returns one episode's phase ladder. Past episodes stay readable;
// writes are limited to the current one.
func (s *service) Episode(ctx context.Context, viewerID, ideaID uuid.UUID, episode enums.Episode) (*EpisodeDTO, error) {
	if !episode.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid episode %q", episode))
	}
	idea, err := s.visibleIdea(ctx, s.repo, viewerID, ideaID)
	if err != nil {
		return nil, err
	}
	return s.episodeDetail(ctx, s.repo, idea, episode)
}

func (s *service) SaveEpisodePhase(ctx context.Context, ownerID, ideaID uuid.UUID, episode enums.Episode, phaseNumber int, input SaveProgressRequest) (*EpisodeDTO, error) {
	var idea *models.StartupIdea
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		loaded, definition, err := s.writableEpisodePhase(ctx, repo, ownerID, ideaID, episode, phaseNumber)
		if err != nil {
			return err
		}

		row, err := s.loadOrNewProgress(ctx, repo, ideaID, episode, definition.Number)
		if err != nil {
			return err
		}
		row.Responses = trimmedProgressResponses(input.Responses)
		if err := repo.SaveProgress(ctx, row); err != nil {
			return err
		}

		idea = loaded
		return nil
	})
	if err != nil {
		return nil, s.ideaError(err, "save episode phase")
	}
	return s.episodeDetail(ctx, s.repo, idea, episode)
}

// CompleteEpisodePhase marks a phase done. Completing the final phase of an
// episode advances the idea's current_episode; completing the final growth
// phase ends the idea journey.
func (s *service) CompleteEpisodePhase(ctx context.Context, ownerID, ideaID uuid.UUID, episode enums.Episode, phaseNumber int) (*EpisodeDTO, error) {
	now := time.Now().UTC()
	var idea *models.StartupIdea
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		loaded, definition, err := s.writableEpisodePhase(ctx, repo, ownerID, ideaID, episode, phaseNumber)
		if err != nil {
			return err
		}

		row, err := repo.FindProgress(ctx, ideaID, episode, phaseNumber)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeValidation, "save answers before completing the phase")
			}
			return err
		}
		if missing := flows.MissingAnswers(definition, row.Responses); len(missing) > 0 {
			return pkgerrors.New(pkgerrors.CodeValidation,
				fmt.Sprintf("required answers missing: %s", strings.Join(missing, ", ")))
		}

		row.IsCompleted = true
		row.CompletedAt = &now
		if err := repo.SaveProgress(ctx, row); err != nil {
			return err
		}

		if phaseNumber == flows.EpisodePhaseCount(episode) {
			if err := s.advanceEpisode(ctx, tx, repo, loaded, now); err != nil {
				return err
			}
		}
		idea = loaded
		return nil
	})
	if err != nil {
		return nil, s.ideaError(err, "complete episode phase")
	}
	return s.episodeDetail(ctx, s.repo, idea, episode)
}

func (s *service) advanceEpisode(ctx context.Context, tx *gorm.DB, repo Repository, idea *models.StartupIdea, now time.Time) error {
	from := idea.CurrentEpisode
	next, ok := from.Next()
	if !ok {
		// Final growth phase: the idea journey is done.
		if err := repo.Update(ctx, idea.ID, map[string]any{
			"status":       enums.IdeaStatusCompleted,
			"completed_at": now,
		}); err != nil {
			return err
		}
		idea.Status = enums.IdeaStatusCompleted
		idea.CompletedAt = &now
		return nil
	}

	if err := repo.Update(ctx, idea.ID, map[string]any{"current_episode": next}); err != nil {
		return err
	}
	idea.CurrentEpisode = next

	return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
		EventType:     enums.EventEpisodeAdvanced,
		AggregateType: enums.AggregateIdea,
		AggregateID:   idea.ID,
		Actor:         &outbox.ActorRef{UserID: idea.UserID, Role: string(enums.PlatformRoleEntrepreneur)},
		Data: payloads.EpisodeAdvancedEvent{
			IdeaID:      idea.ID,
			InitiatorID: idea.UserID,
			FromEpisode: from,
			ToEpisode:   next,
		},
		Version: 1,
	})
}

// writableEpisodePhase runs every write-side guard: ownership, idea still in
// flight, episode is the current one, phase exists and is unlocked.
func (s *service) writableEpisodePhase(ctx context.Context, repo Repository, ownerID, ideaID uuid.UUID, episode enums.Episode, phaseNumber int) (*models.StartupIdea, flows.Phase, error) {
	if !episode.IsValid() {
		return nil, flows.Phase{}, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid episode %q", episode))
	}
	idea, err := s.ownedIdea(ctx, repo, ownerID, ideaID)
	if err != nil {
		return nil, flows.Phase{}, err
	}
	switch idea.Status {
	case enums.IdeaStatusCompleted:
		return nil, flows.Phase{}, pkgerrors.New(pkgerrors.CodeStateConflict, "idea journey already completed")
	case enums.IdeaStatusArchived:
		return nil, flows.Phase{}, pkgerrors.New(pkgerrors.CodeStateConflict, "idea is archived")
	}
	if episode != idea.CurrentEpisode {
		return nil, flows.Phase{}, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("the idea is in the %s episode", idea.CurrentEpisode))
	}

	definition, ok := flows.EpisodePhase(episode, phaseNumber)
	if !ok {
		return nil, flows.Phase{}, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("episode %s has no phase %d", episode, phaseNumber))
	}
	if phaseNumber > 1 {
		previous, err := repo.FindProgress(ctx, ideaID, episode, phaseNumber-1)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, flows.Phase{}, lockedPhaseError(phaseNumber)
			}
			return nil, flows.Phase{}, err
		}
		if !previous.IsCompleted {
			return nil, flows.Phase{}, lockedPhaseError(phaseNumber)
		}
	}
	return idea, definition, nil
}

func lockedPhaseError(phaseNumber int) error {
	return pkgerrors.New(pkgerrors.CodeStateConflict,
		fmt.Sprintf("phase %d is locked until phase %d is completed", phaseNumber, phaseNumber-1))
}

func (s *service) loadOrNewProgress(ctx context.Context, repo Repository, ideaID uuid.UUID, episode enums.Episode, phaseNumber int) (*models.IdeaJourneyProgress, error) {
	row, err := repo.FindProgress(ctx, ideaID, episode, phaseNumber)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &models.IdeaJourneyProgress{
				StartupID:   ideaID,
				Episode:     episode,
				PhaseNumber: phaseNumber,
			}, nil
		}
		return nil, err
	}
	return row, nil
}

func (s *service) episodeDetail(ctx context.Context, repo Repository, idea *models.StartupIdea, episode enums.Episode) (*EpisodeDTO, error) {
	saved, err := repo.ListProgress(ctx, idea.ID, episode)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load episode progress")
	}
	return &EpisodeDTO{
		IdeaID:         idea.ID,
		Episode:        episode,
		CurrentEpisode: idea.CurrentEpisode,
		Terminal:       idea.Status == enums.IdeaStatusCompleted,
		Phases:         episodeLadder(episode, saved),
	}, nil
}

func trimmedProgressResponses(responses map[string]string) map[string]string {
	trimmed := make(map[string]string, len(responses))
	for key, value := range responses {
		trimmed[key] = strings.TrimSpace(value)
	}
	return trimmed
}
