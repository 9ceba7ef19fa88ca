package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/hirelane/talentsync-backend/api/responses"
	"github.com/hirelane/talentsync-backend/internal/access"
	pkgAuth "github.com/hirelane/talentsync-backend/pkg/auth"
	"github.com/hirelane/talentsync-backend/pkg/config"
	pkgerrors "github.com/hirelane/talentsync-backend/pkg/errors"
	"github.com/hirelane/talentsync-backend/pkg/logger"
)

// AccessResolver maps a verified external identity onto the caller's
// request-scoped access context.
type AccessResolver interface {
	Resolve(ctx context.Context, externalIdentityID string) (*access.Context, error)
}

// Auth validates a bearer token, resolves the caller's access context and
// seeds the request context with it. The context is computed fresh on every
// request so revoked memberships take effect immediately.
func Auth(cfg config.JWTConfig, resolver AccessResolver, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := strings.TrimSpace(r.Header.Get("Authorization"))
			if raw == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			token := raw
			if strings.HasPrefix(strings.ToLower(token), "bearer ") {
				token = strings.TrimSpace(token[7:])
			}
			if token == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			claims, err := pkgAuth.ParseAccessToken(cfg, token)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token"))
				return
			}

			if resolver == nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "access resolver unavailable"))
				return
			}

			accessCtx, err := resolver.Resolve(r.Context(), claims.ExternalIdentityID)
			if err != nil {
				if resolved := pkgerrors.As(err); resolved != nil {
					switch resolved.Code() {
					case pkgerrors.CodeNotFound, pkgerrors.CodeValidation:
						responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "identity not recognized"))
						return
					case pkgerrors.CodeForbidden:
						responses.WriteError(r.Context(), logg, w, resolved)
						return
					}
				}
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve access context"))
				return
			}

			ctx := WithAccess(r.Context(), accessCtx)
			ctx = context.WithValue(ctx, ctxUserID, accessCtx.IdentityUserID.String())
			ctx = context.WithValue(ctx, ctxRole, string(claims.Role))

			if logg != nil {
				ctx = logg.WithFields(ctx, map[string]any{
					"user_id":    accessCtx.IdentityUserID.String(),
					"actor_role": string(claims.Role),
				})
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
