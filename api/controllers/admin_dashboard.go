package controllers

import (
	"net/http"

	"github.com/b4platform/b4-backend/api/responses"
	"github.com/b4platform/b4-backend/internal/dashboard"
	pkgerrors "github.com/b4platform/b4-backend/pkg/errors"
	"github.com/b4platform/b4-backend/pkg/logger"
)

// AdminDashboard returns the platform-wide counters and rates.
func AdminDashboard(svc dashboard.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "dashboard service unavailable"))
			return
		}

		stats, err := svc.Stats(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, stats)
	}
}
