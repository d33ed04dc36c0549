package middleware

import (
	"context"
	"net/http"

	"github.com/b4platform/b4-backend/api/responses"
	"github.com/b4platform/b4-backend/pkg/enums"
	pkgerrors "github.com/b4platform/b4-backend/pkg/errors"
	"github.com/b4platform/b4-backend/pkg/logger"
	"github.com/google/uuid"
)

type RoleChecker interface {
	UserHasRole(ctx context.Context, userID uuid.UUID, roles ...enums.PlatformRole) (bool, error)
}

// RequirePlatformRoles checks granted platform roles in the database before executing the handler.
// The JWT role claim covers the common path; this guards grants that change mid-session.
func RequirePlatformRoles(checker RoleChecker, logg *logger.Logger, allowed ...enums.PlatformRole) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			if checker == nil {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "role checker unavailable"))
				return
			}
			if len(allowed) == 0 {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "allowed roles missing"))
				return
			}

			userID := UserIDFromContext(ctx)
			if userID == "" {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing"))
				return
			}

			uid, err := uuid.Parse(userID)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid user id"))
				return
			}

			ok, err := checker.UserHasRole(ctx, uid, allowed...)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check platform role"))
				return
			}
			if !ok {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "insufficient role"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
