package routes

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hirelane/talentsync-backend/api/controllers"
	"github.com/hirelane/talentsync-backend/api/middleware"
	"github.com/hirelane/talentsync-backend/internal/applications"
	"github.com/hirelane/talentsync-backend/internal/auth"
	"github.com/hirelane/talentsync-backend/internal/candidates"
	"github.com/hirelane/talentsync-backend/internal/sourcing"
	"github.com/hirelane/talentsync-backend/pkg/config"
	"github.com/hirelane/talentsync-backend/pkg/db"
	"github.com/hirelane/talentsync-backend/pkg/enums"
	"github.com/hirelane/talentsync-backend/pkg/logger"
	"github.com/hirelane/talentsync-backend/pkg/redis"
)

type pinger interface {
	Ping(context.Context) error
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	brokerP pinger,
	accessResolver middleware.AccessResolver,
	authService auth.Service,
	sourcingService *sourcing.Service,
	candidatesRepo *candidates.Repository,
	applicationsRepo *applications.Repository,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisClient, brokerP))
	})

	r.Route("/api/public", func(r chi.Router) {
		r.Get("/ping", controllers.PublicPing())
	})

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, redisClient, logg)).Post("/login", controllers.AuthLogin(authService, logg))
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, accessResolver, logg))
		r.Use(middleware.Idempotency(redisClient, logg))

		r.Get("/v1/ping", controllers.PrivatePing())

		r.Route("/v1/candidates", func(r chi.Router) {
			r.Get("/", controllers.CandidateList(candidatesRepo, logg))
			r.Get("/{candidateId}", controllers.CandidateDetail(candidatesRepo, logg))
			r.Get("/{candidateId}/assignment", controllers.CandidateAssignment(sourcingService, candidatesRepo, logg))
		})

		r.Route("/v1/applications", func(r chi.Router) {
			r.Get("/", controllers.ApplicationList(applicationsRepo, logg))
		})

		r.Route("/v1/assignments", func(r chi.Router) {
			r.Get("/", controllers.AssignmentList(sourcingService, logg))
			r.With(middleware.RequireRole(logg, enums.RoleRecruiter)).Post("/", controllers.AssignmentClaim(sourcingService, logg))
			r.Patch("/{assignmentId}", controllers.AssignmentUpdate(sourcingService, logg))
			r.With(middleware.RequireRole(logg, enums.RolePlatformAdmin)).Delete("/{assignmentId}", controllers.AssignmentRelease(sourcingService, logg))
		})
	})

	return r
}
