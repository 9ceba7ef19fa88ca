package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/hirelane/talentsync-backend/api/responses"
	"github.com/hirelane/talentsync-backend/pkg/config"
	"github.com/hirelane/talentsync-backend/pkg/db"
	pkgerrors "github.com/hirelane/talentsync-backend/pkg/errors"
	"github.com/hirelane/talentsync-backend/pkg/logger"
)

const readinessTimeout = 2 * time.Second

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-TalentSync-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

type pinger interface {
	Ping(context.Context) error
}

// HealthReady reports readiness. The database is authoritative: when it is
// unreachable the endpoint returns 503. Redis and the event broker are
// best-effort, a failure there degrades the status but keeps serving.
func HealthReady(cfg *config.Config, logg *logger.Logger, dbP db.Pinger, redisP, brokerP pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		defer cancel()

		w.Header().Set("X-TalentSync-Env", cfg.App.Env)

		if dbP == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "database handle missing"))
			return
		}
		if err := dbP.Ping(ctx); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "database unreachable"))
			return
		}

		status := "ready"
		checks := map[string]string{"database": "ok"}

		if redisP != nil {
			if err := redisP.Ping(ctx); err != nil {
				checks["redis"] = "unreachable"
				status = "degraded"
				if logg != nil {
					logg.Warn(logg.WithField(r.Context(), "dependency", "redis"), "readiness dependency unreachable")
				}
			} else {
				checks["redis"] = "ok"
			}
		}
		if brokerP != nil {
			if err := brokerP.Ping(ctx); err != nil {
				checks["broker"] = "unreachable"
				status = "degraded"
				if logg != nil {
					logg.Warn(logg.WithField(r.Context(), "dependency", "broker"), "readiness dependency unreachable")
				}
			} else {
				checks["broker"] = "ok"
			}
		}

		responses.WriteSuccess(w, map[string]any{"status": status, "checks": checks})
	}
}
