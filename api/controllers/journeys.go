package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/b4platform/b4-backend/api/responses"
	"github.com/b4platform/b4-backend/api/validators"
	"github.com/b4platform/b4-backend/internal/journeys"
	"github.com/b4platform/b4-backend/pkg/enums"
	pkgerrors "github.com/b4platform/b4-backend/pkg/errors"
	"github.com/b4platform/b4-backend/pkg/logger"
)

type createJourneyRequest struct {
	JourneyType string `json:"journey_type" validate:"required"`
}

func pathPhaseNumber(r *http.Request) (int, error) {
	raw := strings.TrimSpace(chi.URLParam(r, "phase"))
	number, err := strconv.Atoi(raw)
	if err != nil || number <= 0 {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "phase must be a positive integer")
	}
	return number, nil
}

// CreateJourney starts a learning journey of the requested type.
func CreateJourney(svc journeys.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "journeys service unavailable"))
			return
		}

		userID, err := callerID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body createJourneyRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		journeyType, err := enums.ParseJourneyType(body.JourneyType)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid journey_type"))
			return
		}

		journey, err := svc.Create(r.Context(), userID, journeyType)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, journey)
	}
}

// ListJourneys returns the caller's journeys.
func ListJourneys(svc journeys.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "journeys service unavailable"))
			return
		}

		userID, err := callerID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.List(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"journeys": list})
	}
}

// GetJourney returns one journey with its phase responses.
func GetJourney(svc journeys.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "journeys service unavailable"))
			return
		}

		userID, journeyID, err := journeyScope(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		journey, err := svc.Get(r.Context(), userID, journeyID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, journey)
	}
}

// SaveJourneyPhase upserts the answers for one phase (client auto-save).
func SaveJourneyPhase(svc journeys.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "journeys service unavailable"))
			return
		}

		userID, journeyID, err := journeyScope(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		phase, err := pathPhaseNumber(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body journeys.SavePhaseRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		journey, err := svc.SavePhase(r.Context(), userID, journeyID, phase, body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, journey)
	}
}

// CompleteJourneyPhase marks a phase done once all required answers are in.
func CompleteJourneyPhase(svc journeys.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "journeys service unavailable"))
			return
		}

		userID, journeyID, err := journeyScope(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		phase, err := pathPhaseNumber(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		journey, err := svc.CompletePhase(r.Context(), userID, journeyID, phase)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, journey)
	}
}

// SubmitJourney sends a completed journey to admin review.
func SubmitJourney(svc journeys.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "journeys service unavailable"))
			return
		}

		userID, journeyID, err := journeyScope(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		journey, err := svc.Submit(r.Context(), userID, journeyID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, journey)
	}
}

func journeyScope(r *http.Request) (uuid.UUID, uuid.UUID, error) {
	userID, err := callerID(r)
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	journeyID, err := pathUUID(r, "journeyId")
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	return userID, journeyID, nil
}
