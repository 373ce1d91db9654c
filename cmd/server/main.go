package main

import (
	"context"
	"errors"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/aliskhannn/quizroom/internal/config"
	httpapi "github.com/aliskhannn/quizroom/internal/delivery/http"
	httpH "github.com/aliskhannn/quizroom/internal/delivery/http/handlers"
	httpMW "github.com/aliskhannn/quizroom/internal/delivery/http/middleware"
	"github.com/aliskhannn/quizroom/internal/delivery/telegram"
	"github.com/aliskhannn/quizroom/internal/infra/gemini"
	"github.com/aliskhannn/quizroom/internal/infra/google"
	"github.com/aliskhannn/quizroom/internal/infra/postgres"
	"github.com/aliskhannn/quizroom/internal/infra/postgres/repository"
	"github.com/aliskhannn/quizroom/internal/infra/redis"
	"github.com/aliskhannn/quizroom/internal/logger"
	"github.com/aliskhannn/quizroom/internal/service"
	"github.com/aliskhannn/quizroom/internal/storage"
)

const shutdownTimeout = 15 * time.Second

func main() {
	// A missing .env file is fine, the environment may already be set.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	lg, err := logger.New(cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = lg.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Directory store.
	dsn, err := cfg.DB.DSN()
	if err != nil {
		lg.Fatal("database is not configured", zap.Error(err))
	}
	pool, err := postgres.NewPool(ctx, dsn, postgres.PoolConfig{
		MaxConns:        int32(cfg.DB.MaxConnections),
		MaxConnLifetime: cfg.DB.MaxConnLifetime,
	})
	if err != nil {
		lg.Fatal("failed to connect to database", zap.Error(err))
	}
	defer pool.Close()

	if err := postgres.Migrate(ctx, pool); err != nil {
		lg.Fatal("failed to apply schema", zap.Error(err))
	}

	transactor := postgres.NewTransactor(pool)
	userRepo := repository.NewUserRepository(pool, transactor)
	testRepo := repository.NewTestRepository(pool)
	resultRepo := repository.NewResultRepository(pool)

	// Session revocations are shared through redis when it is configured.
	var revocations service.RevocationStore
	if cfg.Redis.URL != "" {
		rdb, err := redis.NewClient(ctx, cfg.Redis.URL)
		if err != nil {
			lg.Fatal("failed to connect to redis", zap.Error(err))
		}
		defer func() { _ = rdb.Close() }()
		revocations = redis.NewRevocations(rdb, cfg.Redis.KeyPrefix)
	} else {
		revocations = service.NewMemoryRevocations()
	}

	var verifier service.FederatedVerifier
	if cfg.Session.GoogleClientID != "" {
		verifier = google.NewVerifier(cfg.Session.GoogleClientID)
	}

	var notifier service.ResultNotifier
	if cfg.Telegram.Enabled() {
		bot, err := telegram.NewBot(cfg.Telegram.APIToken, cfg.Telegram.Debug)
		if err != nil {
			lg.Error("telegram notifications disabled", zap.Error(err))
		} else {
			lg.Info("authorized on telegram", zap.String("account", bot.Self.UserName))
			notifier = telegram.NewNotifier(bot, cfg.Telegram.AdminChatID, lg)
		}
	}

	clock := service.SystemClock()

	sessions := service.NewSessionService(userRepo, verifier, revocations, service.SessionConfig{
		Secret: []byte(cfg.Session.Secret),
		TTL:    cfg.Session.TTL,
		Issuer: cfg.Session.Issuer,
	}, clock, lg)
	sessions.Subscribe(func(ev service.IdentityEvent) {
		lg.Debug("identity changed",
			zap.String("kind", string(ev.Kind)),
			zap.String("user_id", ev.Identity.UserID),
		)
	})

	roles := service.NewRoleResolver(userRepo)
	catalog := service.NewCatalogService(testRepo)
	authoring := service.NewAuthoringService(storage.NewDraftStorage(), testRepo, clock, lg)
	assistant := service.NewAssistantService(gemini.NewClient(gemini.Config{
		BaseURL:         cfg.Assistant.BaseURL,
		Model:           cfg.Assistant.Model,
		Temperature:     cfg.Assistant.Temperature,
		MaxOutputTokens: cfg.Assistant.MaxOutputTokens,
		Timeout:         cfg.Assistant.Timeout,
	}, nil), authoring, cfg.Assistant.APIKey, lg)
	taking := service.NewTakingService(testRepo, resultRepo, notifier, clock, service.TakingConfig{
		TickInterval: cfg.Attempt.TickInterval,
		WriteTimeout: cfg.Attempt.WriteTimeout,
	}, lg)
	defer taking.Shutdown()
	results := service.NewResultsService(resultRepo, userRepo, roles, lg)
	sweeper := service.NewSweeper(taking, sessions, clock, cfg.Sweeper.Schedule, cfg.Sweeper.Retention, lg)

	server := httpapi.NewServer(cfg.HTTP.Address, httpapi.RouterConfig{
		Logger:         lg,
		AllowedOrigins: cfg.HTTP.AllowedOrigins,
		AuthMiddleware: httpMW.NewAuthMiddleware(sessions, roles, lg),
		AuthHandler:    httpH.NewAuthHandler(sessions, roles),
		PageHandler:    httpH.NewPageHandler(verifier != nil),
		TestHandler:    httpH.NewTestHandler(catalog),
		AttemptHandler: httpH.NewAttemptHandler(taking),
		ResultHandler:  httpH.NewResultHandler(results),
		DraftHandler:   httpH.NewDraftHandler(authoring, assistant),
		HealthHandler:  httpH.NewHealthHandler(pool),
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return sweeper.Start(gctx)
	})
	g.Go(server.Run)
	g.Go(func() error {
		<-gctx.Done()
		lg.Info("shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		lg.Error("server stopped with error", zap.Error(err))
	}
}
