package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v3"
	"github.com/rs/zerolog/log"

	"github.com/skipvault/skipvault-go/internal/client"
	"github.com/skipvault/skipvault-go/internal/config"
	"github.com/skipvault/skipvault-go/internal/db"
	"github.com/skipvault/skipvault-go/internal/handler"
	"github.com/skipvault/skipvault-go/internal/middleware"
	"github.com/skipvault/skipvault-go/internal/repository"
	"github.com/skipvault/skipvault-go/internal/router"
	"github.com/skipvault/skipvault-go/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	middleware.InitLogger(cfg.LogLevel, "skipvault")
	log.Logger = middleware.Logger

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := db.Migrate(cfg.DatabaseURL); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate database")
	}

	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()

	handler.InitMetrics(pool)

	cache := service.NewCacheService(cfg.RedisURL)
	defer cache.Close()

	// Repositories
	segmentRepo := repository.NewSegmentRepo(pool)
	voteRepo := repository.NewVoteRepo(pool)
	userRepo := repository.NewUserRepo(pool, cfg.WarningExpiry)
	lockRepo := repository.NewLockRepo(pool)

	// External collaborators
	metadata := client.NewMetadataClient(cfg.MetadataURL, cfg.ExternalTimeout)
	classifier := client.NewClassifierClient(cfg.ClassifierURL, cfg.ExternalTimeout)
	dispatcher := service.NewDispatcher(cfg.WebhookURL, cfg.ExternalTimeout)
	go dispatcher.Start(ctx)

	// Services
	trustSvc := service.NewTrustService(segmentRepo)
	validateSvc := service.NewValidateService(cfg, segmentRepo, userRepo, lockRepo)
	automodSvc := service.NewAutoModService(cfg, classifier, handler.NewEventMetricsSink(dispatcher))
	submitSvc := service.NewSubmitService(cfg, segmentRepo, userRepo, validateSvc, automodSvc, trustSvc, metadata, dispatcher)
	consensusSvc := service.NewConsensusService()
	voteSvc := service.NewVoteService(cfg, voteRepo, segmentRepo, userRepo, lockRepo, trustSvc, consensusSvc, cache, dispatcher)
	segmentSvc := service.NewSegmentService(segmentRepo, lockRepo, cache)

	app := fiber.New(fiber.Config{
		AppName:      "SkipVault API",
		ServerHeader: "SkipVault",
	})

	router.Setup(app, &router.Handlers{
		Segment: handler.NewSegmentHandler(cfg, submitSvc, segmentSvc),
		Vote:    handler.NewVoteHandler(cfg, voteSvc),
		Health:  handler.NewHealthHandler(pool, cache),
	}, cfg.CORSOrigins)

	go func() {
		<-ctx.Done()
		log.Info().Msg("shutting down")
		if err := app.Shutdown(); err != nil {
			log.Error().Err(err).Msg("shutdown error")
		}
	}()

	log.Info().Str("port", cfg.Port).Str("env", cfg.Environment).Msg("skipvault backend starting")
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}
