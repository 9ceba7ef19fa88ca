package middleware

import (
	"net/http"

	"github.com/hirelane/talentsync-backend/api/responses"
	"github.com/hirelane/talentsync-backend/pkg/enums"
	pkgerrors "github.com/hirelane/talentsync-backend/pkg/errors"
	"github.com/hirelane/talentsync-backend/pkg/logger"
)

// RequireRole rejects requests whose resolved access context does not carry
// any of the allowed roles. Platform admins always pass.
func RequireRole(logg *logger.Logger, allowed ...enums.PlatformRole) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			accessCtx := AccessFromContext(r.Context())
			if accessCtx == nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "access context missing"))
				return
			}
			if accessCtx.IsPlatformAdmin {
				next.ServeHTTP(w, r)
				return
			}
			for _, role := range allowed {
				if accessCtx.HasRole(role) {
					next.ServeHTTP(w, r)
					return
				}
			}
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "role required"))
		})
	}
}
