package controllers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/b4platform/b4-backend/api/responses"
	"github.com/b4platform/b4-backend/api/validators"
	"github.com/b4platform/b4-backend/internal/resume"
	"github.com/b4platform/b4-backend/internal/users"
	pkgerrors "github.com/b4platform/b4-backend/pkg/errors"
	"github.com/b4platform/b4-backend/pkg/logger"
)

type updateProfileRequest struct {
	FirstName   *string `json:"first_name" validate:"omitempty,max=100"`
	LastName    *string `json:"last_name" validate:"omitempty,max=100"`
	Phone       *string `json:"phone" validate:"omitempty,max=30"`
	Bio         *string `json:"bio" validate:"omitempty,max=5000"`
	Location    *string `json:"location" validate:"omitempty,max=200"`
	LinkedinURL *string `json:"linkedin_url" validate:"omitempty,url,max=500"`
}

// GetProfile returns the caller's profile.
func GetProfile(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "users service unavailable"))
			return
		}

		userID, err := callerID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		profile, err := svc.Profile(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, profile)
	}
}

// UpdateProfile applies a partial update to the caller's profile.
func UpdateProfile(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "users service unavailable"))
			return
		}

		userID, err := callerID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body updateProfileRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		profile, err := svc.UpdateProfile(r.Context(), userID, users.UpdateProfileDTO{
			FirstName:   body.FirstName,
			LastName:    body.LastName,
			Phone:       body.Phone,
			Bio:         body.Bio,
			Location:    body.Location,
			LinkedinURL: body.LinkedinURL,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, profile)
	}
}

// ExportResume streams the caller's profile resume as a PDF download.
func ExportResume(svc resume.Service, logg *logger.Logger) http.HandlerFunc {
	return exportPDF(logg, "resume", func(r *http.Request, svc resume.Service) (*resume.ExportDTO, error) {
		userID, err := callerID(r)
		if err != nil {
			return nil, err
		}
		return svc.Resume(r.Context(), userID)
	}, svc)
}

// ExportTrackRecord streams the caller's entrepreneurial track record as a PDF.
func ExportTrackRecord(svc resume.Service, logg *logger.Logger) http.HandlerFunc {
	return exportPDF(logg, "track record", func(r *http.Request, svc resume.Service) (*resume.ExportDTO, error) {
		userID, err := callerID(r)
		if err != nil {
			return nil, err
		}
		return svc.TrackRecord(r.Context(), userID)
	}, svc)
}

func exportPDF(logg *logger.Logger, kind string, produce func(*http.Request, resume.Service) (*resume.ExportDTO, error), svc resume.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, kind+" export unavailable"))
			return
		}

		export, err := produce(r, svc)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		w.Header().Set("Content-Type", export.ContentType)
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.FileName))
		w.Header().Set("Content-Length", strconv.Itoa(len(export.Content)))
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write(export.Content); err != nil && logg != nil {
			logg.Warn(r.Context(), "write pdf response interrupted")
		}
	}
}
