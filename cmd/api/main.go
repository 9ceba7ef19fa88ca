package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/hirelane/talentsync-backend/api/routes"
	"github.com/hirelane/talentsync-backend/internal/access"
	"github.com/hirelane/talentsync-backend/internal/applications"
	"github.com/hirelane/talentsync-backend/internal/auth"
	"github.com/hirelane/talentsync-backend/internal/candidates"
	"github.com/hirelane/talentsync-backend/internal/sourcing"
	"github.com/hirelane/talentsync-backend/internal/users"
	"github.com/hirelane/talentsync-backend/pkg/config"
	"github.com/hirelane/talentsync-backend/pkg/db"
	"github.com/hirelane/talentsync-backend/pkg/logger"
	"github.com/hirelane/talentsync-backend/pkg/migrate"
	"github.com/hirelane/talentsync-backend/pkg/outbox"
	"github.com/hirelane/talentsync-backend/pkg/pubsub"
	"github.com/hirelane/talentsync-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	cfg.Service.Kind = "api"

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	pubsubClient, err := pubsub.NewClient(context.Background(), cfg.GCP, cfg.PubSub, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap pubsub", err)
		os.Exit(1)
	}
	defer func() {
		if err := pubsubClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing pubsub client", err)
		}
	}()

	accessResolver, err := access.NewService(access.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create access resolver", err)
		os.Exit(1)
	}

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:  users.NewRepository(dbClient.DB()),
		JWTConfig: cfg.JWT,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	outboxService := outbox.NewService(outbox.NewRepository(dbClient.DB()), logg)
	candidatesRepo := candidates.NewRepository(dbClient.DB())
	applicationsRepo := applications.NewRepository(dbClient.DB())

	sourcingService, err := sourcing.NewService(sourcing.ServiceParams{
		Repo:       sourcing.NewRepository(dbClient.DB()),
		Candidates: candidatesRepo,
		DB:         dbClient,
		Emitter:    outboxService,
		Config:     cfg.Sourcing,
		Logger:     logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create sourcing service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	id := os.Getenv("DYNO")
	if id == "" {
		id = "local"
	}
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": id,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			redisClient,
			pubsubClient,
			accessResolver,
			authService,
			sourcingService,
			candidatesRepo,
			applicationsRepo,
		),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
