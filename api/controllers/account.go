package controllers

import (
	"net/http"

	"github.com/b4platform/b4-backend/api/middleware"
	"github.com/b4platform/b4-backend/api/responses"
	"github.com/b4platform/b4-backend/api/validators"
	"github.com/b4platform/b4-backend/internal/users"
	pkgerrors "github.com/b4platform/b4-backend/pkg/errors"
	"github.com/b4platform/b4-backend/pkg/logger"
)

type deleteAccountRequest struct {
	DeleteType string `json:"deleteType" validate:"required,oneof=soft hard"`
}

// DeleteAccount removes the caller's account. Soft deletion tombstones the
// user row; hard deletion cascades across the user-scoped tables. Either way
// the caller's session is revoked afterwards.
func DeleteAccount(svc users.Service, logg *logger.Logger) http.HandlerFunc {
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

		var body deleteAccountRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		err = svc.DeleteAccount(r.Context(), users.DeleteAccountParams{
			UserID:   userID,
			AccessID: middleware.SessionIDFromContext(r.Context()),
			Hard:     body.DeleteType == "hard",
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted", "delete_type": body.DeleteType})
	}
}
