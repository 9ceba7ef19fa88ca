package controllers

import (
	"net/http"

	"github.com/hirelane/talentsync-backend/api/responses"
	"github.com/hirelane/talentsync-backend/api/validators"
	"github.com/hirelane/talentsync-backend/internal/auth"
	"github.com/hirelane/talentsync-backend/pkg/logger"
)

// AuthLogin exchanges email/password credentials for an access token.
func AuthLogin(svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var req auth.LoginRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		resp, err := svc.Login(ctx, req)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, resp)
	}
}
