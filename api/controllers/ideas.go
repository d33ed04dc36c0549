package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/b4platform/b4-backend/api/responses"
	"github.com/b4platform/b4-backend/api/validators"
	"github.com/b4platform/b4-backend/internal/ideas"
	"github.com/b4platform/b4-backend/pkg/enums"
	pkgerrors "github.com/b4platform/b4-backend/pkg/errors"
	"github.com/b4platform/b4-backend/pkg/logger"
)

type applicationDecisionRequest struct {
	Accept bool `json:"accept"`
}

func ideaScope(r *http.Request) (uuid.UUID, uuid.UUID, error) {
	userID, err := callerID(r)
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	ideaID, err := pathUUID(r, "ideaId")
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	return userID, ideaID, nil
}

func pathEpisode(r *http.Request) (enums.Episode, error) {
	episode, err := enums.ParseEpisode(chi.URLParam(r, "episode"))
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid episode")
	}
	return episode, nil
}

// CreateIdea registers a startup idea for admin review.
func CreateIdea(svc ideas.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "ideas service unavailable"))
			return
		}

		userID, err := callerID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body ideas.CreateIdeaRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		idea, err := svc.Create(r.Context(), userID, body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, idea)
	}
}

// ListMyIdeas returns the caller's own ideas regardless of review state.
func ListMyIdeas(svc ideas.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "ideas service unavailable"))
			return
		}

		userID, err := callerID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.ListMine(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"ideas": list})
	}
}

// BrowseIdeas serves the co-builder feed of approved, active ideas.
func BrowseIdeas(svc ideas.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "ideas service unavailable"))
			return
		}

		if _, err := callerID(r); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		q, err := parseListQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Browse(r.Context(), ideas.BrowseParams{Limit: q.limit, Cursor: q.cursor})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// GetIdea returns one idea, hiding unapproved ideas from non-owners.
func GetIdea(svc ideas.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "ideas service unavailable"))
			return
		}

		viewerID, ideaID, err := ideaScope(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		idea, err := svc.Get(r.Context(), viewerID, ideaID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, idea)
	}
}

// UpdateIdea edits an idea owned by the caller.
func UpdateIdea(svc ideas.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "ideas service unavailable"))
			return
		}

		userID, ideaID, err := ideaScope(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body ideas.UpdateIdeaRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		idea, err := svc.Update(r.Context(), userID, ideaID, body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, idea)
	}
}

// ArchiveIdea takes an idea out of the co-builder feed.
func ArchiveIdea(svc ideas.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "ideas service unavailable"))
			return
		}

		userID, ideaID, err := ideaScope(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Archive(r.Context(), userID, ideaID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]bool{"archived": true})
	}
}

// ApplyToIdea files a co-builder application with a cover message.
func ApplyToIdea(svc ideas.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "ideas service unavailable"))
			return
		}

		applicantID, ideaID, err := ideaScope(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body ideas.ApplyRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		application, err := svc.Apply(r.Context(), applicantID, ideaID, body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, application)
	}
}

// ListIdeaApplications shows an idea's applications to its owner.
func ListIdeaApplications(svc ideas.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "ideas service unavailable"))
			return
		}

		ownerID, ideaID, err := ideaScope(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.ListApplications(r.Context(), ownerID, ideaID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"applications": list})
	}
}

// ListMyApplications returns the applications the caller has filed.
func ListMyApplications(svc ideas.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "ideas service unavailable"))
			return
		}

		applicantID, err := callerID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.MyApplications(r.Context(), applicantID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"applications": list})
	}
}

// DecideIdeaApplication lets the idea owner accept or reject an applicant.
func DecideIdeaApplication(svc ideas.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "ideas service unavailable"))
			return
		}

		ownerID, err := callerID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		applicationID, err := pathUUID(r, "applicationId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body applicationDecisionRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		application, err := svc.DecideApplication(r.Context(), ownerID, applicationID, body.Accept)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, application)
	}
}

// GetIdeaEpisode returns the phase progress for one episode.
func GetIdeaEpisode(svc ideas.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "ideas service unavailable"))
			return
		}

		viewerID, ideaID, err := ideaScope(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		episode, err := pathEpisode(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dto, err := svc.Episode(r.Context(), viewerID, ideaID, episode)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

// SaveIdeaEpisodePhase upserts episode phase answers (auto-save, last write wins).
func SaveIdeaEpisodePhase(svc ideas.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "ideas service unavailable"))
			return
		}

		ownerID, ideaID, err := ideaScope(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		episode, err := pathEpisode(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		phase, err := pathPhaseNumber(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body ideas.SaveProgressRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dto, err := svc.SaveEpisodePhase(r.Context(), ownerID, ideaID, episode, phase, body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

// CompleteIdeaEpisodePhase finishes a phase; the final phase advances the episode.
func CompleteIdeaEpisodePhase(svc ideas.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "ideas service unavailable"))
			return
		}

		ownerID, ideaID, err := ideaScope(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		episode, err := pathEpisode(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		phase, err := pathPhaseNumber(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dto, err := svc.CompleteEpisodePhase(r.Context(), ownerID, ideaID, episode, phase)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}
