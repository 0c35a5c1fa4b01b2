package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"buzztub/internal/cache"
	"buzztub/internal/config"
	"buzztub/internal/database"
	"buzztub/internal/handlers"
	"buzztub/internal/log"
	"buzztub/internal/metrics"
	"buzztub/internal/middleware"
	"buzztub/internal/notice"
	"buzztub/internal/repository"
	"buzztub/internal/server"
	"buzztub/internal/service"
	"buzztub/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := log.New(cfg.Environment, cfg.Logging.Level)

	ctx := context.Background()

	dbPool, err := database.NewPostgresPool(ctx, cfg.Postgres)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect postgres")
	}

	redisClient, err := cache.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect redis")
	}

	objectStore, err := storage.NewObjectStore(cfg.Storage)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to init object store")
	}
	if err := objectStore.EnsureBucket(ctx); err != nil {
		logger.Warn().Err(err).Msg("ensure bucket failed")
	}
	uploads := storage.NewUploads(objectStore, cfg.Storage.MaxUploadBytes)

	users := repository.NewUserRepository(dbPool)
	sessions := repository.NewSessionRepository(redisClient)
	videos := repository.NewVideoRepository(dbPool)
	comments := repository.NewCommentRepository(dbPool)
	follows := repository.NewFollowRepository(dbPool)
	messages := repository.NewChatRepository(dbPool)
	reports := repository.NewReportRepository(dbPool)
	requests := repository.NewPremiumRequestRepository(dbPool)
	audit := repository.NewAuditRepository(redisClient)

	authService := service.NewAuthService(users, sessions, cfg, logger)
	if err := authService.EnsureAdmin(ctx, cfg.Bootstrap.AdminUsername, cfg.Bootstrap.AdminPassword); err != nil {
		logger.Error().Err(err).Msg("seed admin account failed")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry)

	notices := notice.New(cfg.Security.NoticeSecret, cfg.Security.CookieSecure)
	guard := middleware.NewGuard(authService, notices, m, logger, cfg.Security.TrialWindow, cfg.Security.CookieSecure)

	moderation := service.NewModerationService(service.ModerationDeps{
		Users:    users,
		Sessions: sessions,
		Videos:   videos,
		Comments: comments,
		Messages: messages,
		Reports:  reports,
		Requests: requests,
		Files:    uploads,
		Audit:    audit,
	}, logger)

	handlerSet := handlers.NewHandlerSet(handlers.Deps{
		Log:        logger,
		Config:     cfg,
		Auth:       authService,
		Content:    service.NewContentService(users, videos, comments, follows, uploads, cfg.Storage.VideoExtensions, logger),
		Chat:       service.NewChatService(messages, uploads, cfg.Storage.AttachmentExtensions, logger),
		Community:  service.NewCommunityService(users, reports, requests),
		Moderation: moderation,
		Notices:    notices,
		Guard:      guard,
		Metrics:    m,
		DB:         dbPool,
		Cache:      redisClient,
		Store:      objectStore,
	})
	httpServer := server.NewHTTPServer(cfg, logger, m, handlerSet)

	go func() {
		if err := httpServer.Start(); err != nil {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	waitForShutdown(logger, httpServer, dbPool, redisClient)
}

func waitForShutdown(logger zerolog.Logger, srv *server.HTTPServer, db *pgxpool.Pool, redisClient *redis.Client) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()
	logger.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
		if err := srv.Shutdown(context.Background()); err != nil {
			logger.Error().Err(err).Msg("forced shutdown failed")
		}
	}

	db.Close()
	if err := redisClient.Close(); err != nil {
		logger.Error().Err(err).Msg("redis close error")
	}

	logger.Info().Msg("server exited cleanly")
}
