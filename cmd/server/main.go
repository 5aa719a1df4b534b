package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	"github.com/Ghada-Shaban/LinkUp/internal/config"
	"github.com/Ghada-Shaban/LinkUp/internal/database"
	"github.com/Ghada-Shaban/LinkUp/internal/notify"
	"github.com/Ghada-Shaban/LinkUp/internal/payment"
	"github.com/Ghada-Shaban/LinkUp/internal/routes"
	pushws "github.com/Ghada-Shaban/LinkUp/internal/websocket"
	"github.com/Ghada-Shaban/LinkUp/pkg/utils/logging"
)

func main() {
	// 1. Load Config
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	zl, err := logging.New(cfg.AppEnv)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	catalog, err := config.LoadCatalog(cfg.CatalogPath)
	if err != nil {
		zl.Fatal("failed to load catalog", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 2. Connect to Database
	if cfg.DBUrl == "" {
		zl.Fatal("DB_URL is required")
	}
	db, err := database.Connect(ctx, cfg.DBUrl, zl)
	if err != nil {
		zl.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	// 3. Notifications
	hub := pushws.NewHub(zl.Named("push"))
	go hub.Run(ctx)

	var mailCredentials string
	if cfg.MailEnabled() {
		mailCredentials = cfg.GmailCredentialsFile
	}
	sender, err := notify.NewSender(ctx, zl.Named("mail"), mailCredentials, cfg.GmailSender, hub)
	if err != nil {
		zl.Fatal("failed to configure mail sender", zap.Error(err))
	}

	// 4. Setup Fiber
	app := fiber.New()

	app.Use(cors.New())
	app.Use(logger.New())
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		if err := db.Ping(c.Context()); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "degraded"})
		}
		return c.JSON(fiber.Map{
			"status": "ok",
		})
	})
	if err := routes.RegisterRoutes(app, routes.Dependencies{
		Config:  cfg,
		Catalog: catalog,
		DB:      db,
		Hub:     hub,
		Sender:  sender,
		Gateway: payment.NewPlaceholderGateway(),
		Logger:  zl,
	}); err != nil {
		zl.Fatal("failed to register routes", zap.Error(err))
	}

	go func() {
		<-ctx.Done()
		if err := app.Shutdown(); err != nil {
			zl.Warn("server shutdown", zap.Error(err))
		}
	}()

	// 5. Start Server
	zl.Info("server starting", zap.String("port", cfg.Port))
	if err := app.Listen(":" + cfg.Port); err != nil {
		zl.Fatal("server failed to start", zap.Error(err))
	}
}
