package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"

	"github.com/nikgithub05/travel-buddy/internal/config"
	"github.com/nikgithub05/travel-buddy/internal/connectivity"
	"github.com/nikgithub05/travel-buddy/internal/database"
	"github.com/nikgithub05/travel-buddy/internal/handlers"
	"github.com/nikgithub05/travel-buddy/internal/logging"
	"github.com/nikgithub05/travel-buddy/internal/middleware"
	"github.com/nikgithub05/travel-buddy/internal/repositories"
	"github.com/nikgithub05/travel-buddy/internal/services"
	"github.com/nikgithub05/travel-buddy/pkg/rabbitmq"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "travel-buddy: %v\n", err)
		os.Exit(1)
	}
}

// appDeps is everything the HTTP layer needs.
type appDeps struct {
	auth      *services.AuthService
	prefs     *services.PreferenceService
	scheduler *services.SyncScheduler
	logger    logging.Logger
	events    string    // "connected" or "disabled"
	accessLog io.Writer // request lines; nil disables
}

func run() error {
	// --- Configuration ---
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	log := logging.New(os.Stdout, cfg.LogLevel)
	ctx := context.Background()

	// --- Local store ---
	db, err := database.Open(cfg.LocalDBDriver, cfg.LocalDBDSN)
	if err != nil {
		return err
	}
	local := repositories.NewGORMLocalStore(db)
	if err := local.Migrate(ctx); err != nil {
		return err
	}

	// --- Remote store ---
	remote, closeRemote, err := openRemote(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeRemote(context.Background())

	// --- Services ---
	phones, err := services.NewPhoneDigester(cfg.PhoneHashKey)
	if err != nil {
		return err
	}
	hasher := services.NewBcryptHasher(0)
	coord := services.NewDualWriteCoordinator(local, remote, hasher, phones, log)
	engine := services.NewReconciliationEngine(local, remote, log)
	probe := connectivity.NewHTTPProbe(cfg.ProbeURL, cfg.ProbeTimeout)
	scheduler := services.NewSyncScheduler(engine, probe, cfg.SyncInterval, log)

	// --- Optional RabbitMQ event fan-out ---
	events := "disabled"
	if cfg.RabbitMQURL != "" {
		mqClient, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL}, log)
		if err != nil {
			return fmt.Errorf("failed to initialize RabbitMQ client: %w", err)
		}
		defer mqClient.Close()

		coord.WithPublisher(mqClient)
		scheduler.WithPublisher(mqClient)
		if err := mqClient.ConsumeEvents(rabbitmq.LogEvent(log.With("component", "events"))); err != nil {
			log.Warn(ctx, "failed to start RabbitMQ consumer", "error", err)
		}
		events = "connected"
	}

	authService := services.NewAuthService(local, coord, hasher, cfg.JWTSecret)
	prefService := services.NewPreferenceService(local, remote, coord, services.DayPlanGenerator{}, log)

	app := newApp(appDeps{
		auth:      authService,
		prefs:     prefService,
		scheduler: scheduler,
		logger:    log,
		events:    events,
		accessLog: os.Stdout,
	})

	// --- Background reconciliation ---
	if err := scheduler.Start(ctx); err != nil {
		return err
	}

	// --- Start HTTP Server ---
	serverErr := make(chan error, 1)
	go func() {
		log.Info(ctx, "starting server", "port", cfg.AppPort)
		serverErr <- app.Listen(cfg.AppPort)
	}()

	// Graceful shutdown handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		log.Info(ctx, "shutting down", "signal", sig.String())
	case err := <-serverErr:
		scheduler.Stop()
		return fmt.Errorf("server failed: %w", err)
	}

	if err := app.Shutdown(); err != nil {
		log.Error(ctx, "error during fiber shutdown", "error", err)
	}
	// lets an in-flight reconciliation cycle finish
	scheduler.Stop()

	log.Info(ctx, "server gracefully stopped")
	return nil
}

// openRemote connects to SurrealDB, or falls back to the in-memory store
// when no URL is configured.
func openRemote(ctx context.Context, cfg *config.Config, log logging.Logger) (repositories.RemoteStore, func(context.Context) error, error) {
	if cfg.SurrealURL == "" {
		log.Warn(ctx, "SURREALDB_URL not set, using in-memory remote store")
		return repositories.NewMockRemoteStore(), func(context.Context) error { return nil }, nil
	}

	store, err := repositories.NewSurrealRemoteStore(ctx, repositories.SurrealConfig{
		URL:       cfg.SurrealURL,
		Namespace: cfg.SurrealNamespace,
		Database:  cfg.SurrealDatabase,
		Username:  cfg.SurrealUser,
		Password:  cfg.SurrealPass,
	})
	if err != nil {
		return nil, nil, err
	}
	log.Info(ctx, "connected to SurrealDB", "namespace", cfg.SurrealNamespace, "database", cfg.SurrealDatabase)
	return store, store.Close, nil
}

// newApp builds the Fiber app with every route registered.
func newApp(d appDeps) *fiber.App {
	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	if d.accessLog != nil {
		app.Use(fiberlogger.New(fiberlogger.Config{Output: d.accessLog}))
	}

	api := app.Group("/api")
	handlers.NewAuthHandler(d.auth, d.logger).RegisterRoutes(api)

	protected := api.Group("", middleware.AuthRequired(d.auth, d.logger))
	handlers.NewPreferenceHandler(d.prefs, d.logger).RegisterRoutes(protected)
	handlers.NewSyncHandler(d.scheduler).RegisterRoutes(protected)

	// --- Health Check Endpoint ---
	app.Get("/health", func(c *fiber.Ctx) error {
		body := fiber.Map{
			"status":   "healthy",
			"time":     time.Now().Format(time.RFC3339),
			"rabbitmq": d.events,
		}
		if report, ok := d.scheduler.LastReport(); ok {
			body["last_sync"] = report
		}
		return c.Status(fiber.StatusOK).JSON(body)
	})

	return app
}
