package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/pequemaths/pequemaths-api/internal/api/http"
	"github.com/pequemaths/pequemaths-api/internal/api/http/handlers"
	"github.com/pequemaths/pequemaths-api/internal/auth"
	"github.com/pequemaths/pequemaths-api/internal/config"
	"github.com/pequemaths/pequemaths-api/internal/events"
	"github.com/pequemaths/pequemaths-api/internal/observability"
	"github.com/pequemaths/pequemaths-api/internal/persistence"
	"github.com/pequemaths/pequemaths-api/internal/repository"
	"github.com/pequemaths/pequemaths-api/internal/service"
	"github.com/pequemaths/pequemaths-api/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger, cfg.App)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), persistence.DefaultMigrationsDir, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(ctx, cfg.Redis, logger)
	defer redis.Close()

	verifier, err := auth.NewIDTokenVerifier(ctx, auth.VerifierConfig{
		Issuer:   cfg.Auth.Issuer,
		Audience: cfg.Auth.Audience,
	})
	if err != nil {
		logger.Fatal("failed to init id token verifier", zap.Error(err))
	}

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()
	worker.StartAuditWorker(service.NewAuditService(dispatcher, logger))

	profileRepo := repository.NewProfileRepository(redis.Client)
	identity := service.NewIdentityProvider(service.IdentityDependencies{
		Verifier:    verifier,
		Tokens:      auth.NewSessionTokenManager(cfg.Auth.SessionSecret),
		Accounts:    repository.NewAccountRepository(pg.PoolHandle()),
		Revocations: repository.NewRevocationRepository(redis.Client),
	})

	roles := service.NewRoleStore(profileRepo, dispatcher, logger)
	resolver := service.NewSessionResolver(identity, logger, metrics)
	sessionService := service.NewSessionService(cfg.Session, service.SessionDependencies{
		Identity:   identity,
		Roles:      roles,
		Dispatcher: dispatcher,
		Logger:     logger,
		Metrics:    metrics,
	})
	profileService := service.NewProfileService(service.ProfileDependencies{
		Identity:   identity,
		Roles:      roles,
		Gate:       service.NewAuthorizationGate(roles),
		Dispatcher: dispatcher,
		Logger:     logger,
	})

	loginLimiter := httptransport.NewLoginRateLimiter(cfg.RateLimit, logger)
	defer loginLimiter.Stop()

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ErrorHandler: httptransport.ErrorHandler(logger),
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health: handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, map[string]handlers.Pinger{
			"postgres": pg,
			"redis":    redis,
		}),
		Sessions: handlers.NewSessionHandler(sessionService, handlers.CookieSettings{
			Name:   cfg.Session.CookieName,
			Secure: cfg.App.IsProduction(),
		}, logger),
		Profiles:          handlers.NewProfileHandler(profileService),
		Admin:             handlers.NewAdminHandler(roles),
		SessionMiddleware: auth.NewSessionMiddleware(resolver, cfg.Session.CookieName),
		Admins:            roles,
		LoginLimiter:      loginLimiter,
		Metrics:           metrics,
		CookieName:        cfg.Session.CookieName,
		LoginPath:         cfg.App.LoginPath,
		ProtectedPrefixes: cfg.App.ProtectedPrefixes,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
