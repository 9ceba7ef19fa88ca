package main

import (
	"context"
	"errors"
	"os"
	"os/signal"

	"github.com/joho/godotenv"

	"github.com/hirelane/talentsync-backend/internal/applications"
	"github.com/hirelane/talentsync-backend/internal/candidates"
	domainconsumer "github.com/hirelane/talentsync-backend/internal/consumers/domain"
	"github.com/hirelane/talentsync-backend/internal/sourcing"
	"github.com/hirelane/talentsync-backend/internal/users"
	"github.com/hirelane/talentsync-backend/pkg/config"
	"github.com/hirelane/talentsync-backend/pkg/db"
	"github.com/hirelane/talentsync-backend/pkg/logger"
	"github.com/hirelane/talentsync-backend/pkg/migrate"
	"github.com/hirelane/talentsync-backend/pkg/outbox"
	"github.com/hirelane/talentsync-backend/pkg/outbox/idempotency"
	"github.com/hirelane/talentsync-backend/pkg/pubsub"
	"github.com/hirelane/talentsync-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "domain-consumer"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	cfg.Service.Kind = "domain-consumer"

	logg = logger.New(logger.Options{
		ServiceName: "domain-consumer",
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

	idempotencyManager, err := idempotency.NewManager(redisClient, cfg.Eventing.IdempotencyTTL)
	if err != nil {
		logg.Error(context.Background(), "failed to create idempotency manager", err)
		os.Exit(1)
	}

	outboxService := outbox.NewService(outbox.NewRepository(dbClient.DB()), logg)
	candidatesRepo := candidates.NewRepository(dbClient.DB())

	applicationsService, err := applications.NewService(applications.ServiceParams{
		Repo:    applications.NewRepository(dbClient.DB()),
		DB:      dbClient,
		Emitter: outboxService,
		Logger:  logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create applications service", err)
		os.Exit(1)
	}

	candidatesService, err := candidates.NewService(candidates.ServiceParams{
		Repo:    candidatesRepo,
		Users:   users.NewRepository(dbClient.DB()),
		DB:      dbClient,
		Emitter: outboxService,
		Logger:  logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create candidates service", err)
		os.Exit(1)
	}

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

	consumer, err := domainconsumer.NewConsumer(domainconsumer.ConsumerParams{
		Subscription: pubsubClient.DomainSubscription(),
		Idempotency:  idempotencyManager,
		Applications: applicationsService,
		Candidates:   candidatesService,
		Sourcing:     sourcingService,
		Logger:       logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create domain consumer", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logg.Info(logg.WithField(ctx, "env", cfg.App.Env), "starting domain consumer")

	if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "domain consumer stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "domain consumer stopped")
}
