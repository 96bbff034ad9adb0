package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/arturoeanton/foxops-dashboard/internal/adapter/foxops"
	"github.com/arturoeanton/foxops-dashboard/internal/adapter/store"
	"github.com/arturoeanton/foxops-dashboard/internal/handler"
	"github.com/arturoeanton/foxops-dashboard/internal/mcp"
	"github.com/arturoeanton/foxops-dashboard/internal/middleware"
	"github.com/arturoeanton/foxops-dashboard/internal/service"
	"github.com/arturoeanton/foxops-dashboard/pkg/config"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/joho/godotenv"

	_ "github.com/lib/pq"
)

const version = "1.0.0"

func main() {
	// ── Load .env file ───────────────────────────────────────────────────
	_ = godotenv.Load() // silently ignore if .env doesn't exist

	// ── Configuration ────────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()})))

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("Starting foxops dashboard",
		"port", cfg.Port,
		"foxops_url", cfg.FoxopsURL,
		"mcp_enabled", cfg.MCPEnabled,
	)

	// ── Database ─────────────────────────────────────────────────────────
	pgStore, err := store.NewPostgresStore(cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pgStore.Close()

	migrateCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	err = pgStore.Migrate(migrateCtx)
	cancel()
	if err != nil {
		slog.Error("failed to migrate database", "error", err)
		os.Exit(1)
	}

	// ── Adapters ─────────────────────────────────────────────────────────
	httpClient := &http.Client{Timeout: cfg.FoxopsTimeout() + 5*time.Second}
	factory := foxops.NewFactory(cfg.FoxopsURL, cfg.FoxopsTimeout(), cfg.IncarnationCacheTTL(), httpClient)

	// ── Services ─────────────────────────────────────────────────────────
	jwtCfg := middleware.JWTConfig{
		Secret:    cfg.JWTSecret,
		Issuer:    cfg.JWTIssuer,
		ExpiresIn: cfg.JWTExpiresIn(),
	}

	events := service.NewEventBus()
	jobTracker := service.NewJobTracker(cfg.JobRetention())
	sessions := service.NewSessionRegistry(pgStore, factory)
	authService := service.NewAuthService(factory, pgStore, sessions, jwtCfg)
	incarnationService := service.NewIncarnationService(events, cfg.EnrichConcurrency)
	settingsService := service.NewSettingsService(pgStore)

	sweepCtx, stopSweeper := context.WithCancel(context.Background())
	defer stopSweeper()
	go jobTracker.RunSweeper(sweepCtx, time.Minute)
	bulkService := service.NewBulkUpdateService(jobTracker, events, cfg.BulkConcurrency)

	// ── Fiber App ────────────────────────────────────────────────────────
	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 0, // SSE streams stay open
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(fiberlogger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: []string{cfg.FrontendURL},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
	}))

	// Audit middleware (logs all requests)
	app.Use(middleware.AuditMiddleware(pgStore))

	// ── Public Routes ────────────────────────────────────────────────────
	handler.NewHealthHandler(cfg.AppName, version).Register(app)

	authHandler := handler.NewAuthHandler(authService, pgStore, pgStore)
	authHandler.Register(app)

	// ── Protected Routes ─────────────────────────────────────────────────
	api := app.Group("/api/v1", middleware.JWTMiddleware(jwtCfg))

	authHandler.RegisterProtected(api)

	handler.NewIncarnationHandler(incarnationService, settingsService, sessions, events, pgStore).Register(api)
	handler.NewBulkHandler(bulkService, sessions, pgStore).Register(api)
	handler.NewJobsHandler(jobTracker).Register(api)
	handler.NewSettingsHandler(settingsService).Register(api)
	handler.NewAuditHandler(pgStore).Register(api)

	// ── MCP Server (separate port) ───────────────────────────────────────
	if cfg.MCPEnabled {
		if cfg.MCPReady() {
			mcpServer := mcp.NewServer(factory.ClientFor(cfg.FoxopsToken), incarnationService, pgStore, cfg.MCPPort, version)
			go func() {
				if err := mcpServer.Start(); err != nil {
					slog.Error("MCP server failed", "error", err)
				}
			}()
		} else {
			slog.Warn("MCP_ENABLED is set but FOXOPS_TOKEN is empty, MCP server not started")
		}
	}

	// ── Start ────────────────────────────────────────────────────────────
	slog.Info("Fiber listening", "port", cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
