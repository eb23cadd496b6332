package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/restaurant-portal/internal/api/http"
	"github.com/spec-kit/restaurant-portal/internal/api/http/handlers"
	"github.com/spec-kit/restaurant-portal/internal/auth"
	"github.com/spec-kit/restaurant-portal/internal/config"
	"github.com/spec-kit/restaurant-portal/internal/events"
	"github.com/spec-kit/restaurant-portal/internal/observability"
	"github.com/spec-kit/restaurant-portal/internal/persistence"
	"github.com/spec-kit/restaurant-portal/internal/repository"
	"github.com/spec-kit/restaurant-portal/internal/service"
	"github.com/spec-kit/restaurant-portal/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
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

	if cfg.Postgres.RunMigrations && pg.PoolHandle() != nil {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	pool := pg.PoolHandle()
	userRepo := repository.NewUserRepository(pool)
	restaurantRepo := repository.NewCachedRestaurantRepository(
		repository.NewRestaurantRepository(pool), redis.Handle(), cfg.Cache.StatusTTL(), logger)
	revocations := repository.NewRevocationStore(redis.Handle())

	bus := events.NewInMemoryDispatcher()
	notifications := worker.StartNotificationWorker(bus, service.NewNotificationService(bus, logger, cfg.Notification), logger)
	dispatcher := events.Dispatcher(notifications)

	authService := service.NewAuthService(*cfg, service.AuthDependencies{
		UserRepo:       userRepo,
		RestaurantRepo: restaurantRepo,
		Revocations:    revocations,
		Dispatcher:     dispatcher,
		Logger:         logger,
	})
	adminService := service.NewAdminService(service.AdminDependencies{
		RestaurantRepo: restaurantRepo,
		UserRepo:       userRepo,
		Sessions:       authService,
		Dispatcher:     dispatcher,
		Logger:         logger,
	})
	staffService := service.NewStaffService(*cfg, service.StaffDependencies{
		UserRepo:   userRepo,
		Dispatcher: dispatcher,
		Logger:     logger,
	})

	if pool != nil {
		created, err := authService.EnsureSuperadmin(ctx, cfg.Auth.SuperadminEmail, cfg.Auth.SuperadminPassword)
		if err != nil {
			logger.Fatal("failed to provision superadmin", zap.Error(err))
		}
		if created {
			logger.Info("superadmin provisioned", zap.String("email", cfg.Auth.SuperadminEmail))
		}
	}

	cookieKey := cfg.Cookie.EncryptionKey
	if cookieKey == "" {
		cookieKey = auth.GenerateCookieKey()
		logger.Warn("COOKIE_ENCRYPTION_KEY not set; using a per-process key, sessions end on restart")
	}

	tokens := authService.TokenManager()
	cookies := auth.NewCookieTransport(cfg.App.IsProduction(), cfg.Cookie.DevDomain, tokens.AccessTTL(), tokens.RefreshTTL())
	metrics := observability.NewMetrics()
	guard := auth.NewGuard(tokens, restaurantRepo, logger)
	authMiddleware := auth.NewAuthMiddleware(guard, cookies, metrics, httptransport.PagePrefix)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	})
	httptransport.RegisterMiddlewares(app, httptransport.MiddlewareConfig{
		Logger:         logger,
		Metrics:        metrics,
		Timeout:        cfg.App.RequestTimeout(),
		FrontendOrigin: cfg.App.FrontendOrigin,
		CookieKey:      cookieKey,
	})

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis, metrics),
		Auth:           handlers.NewAuthHandler(authService, cookies),
		Pages:          handlers.NewPagesHandler(),
		Superadmin:     handlers.NewSuperadminHandler(adminService),
		Staff:          handlers.NewStaffHandler(staffService),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Error("shutdown", zap.Error(err))
	}
	drainCtx, drainCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer drainCancel()
	if err := notifications.Stop(drainCtx); err != nil {
		logger.Warn("notification queue not drained", zap.Error(err))
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
