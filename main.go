package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"habit-battle-system/config"
	"habit-battle-system/handlers"
	"habit-battle-system/logger"
	"habit-battle-system/middleware"
	"habit-battle-system/repository"
	"habit-battle-system/services"
	"habit-battle-system/utils"
	"habit-battle-system/workers"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("invalid configuration", "err", err)
	}
	if err := logger.Init(cfg.Log); err != nil {
		logger.Fatal("failed to initialize logger", "err", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repo, err := repository.OpenPostgres(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("database unavailable", "err", err)
	}
	defer repo.Close()

	if err := repo.AutoMigrate(); err != nil {
		logger.Fatal("failed to migrate database", "err", err)
	}

	clock := services.RealClock{}
	userService := services.NewUserService(repo, services.NewBcryptHasher(0), clock)
	hellWeekService := services.NewHellWeekService(userService, clock)
	battleService := services.NewBattleService(repo, clock)
	habitService := services.NewHabitService(repo, battleService, clock)
	friendService := services.NewFriendService(repo, clock)

	app := fiber.New(fiber.Config{
		AppName:      "habit-battle-system",
		ErrorHandler: handlers.ErrorHandler,
	})

	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Join(cfg.AllowedOrigins, ","),
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS,PATCH,HEAD",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With, X-Request-ID, X-User-ID",
		ExposeHeaders:    "Content-Length, Content-Type, X-Request-ID",
		AllowCredentials: true,
		MaxAge:           86400, // 24 hours
	}))

	// 🔐❗ GLOBAL: Only Gateway requests allowed, except /auth and /healthz
	app.Use(middleware.GatewayAuthMiddleware(cfg.ServiceToken))

	handlers.SetupAuthRoutes(app, userService)

	secured := app.Group("/", middleware.UserContextMiddleware())
	handlers.SetupUserRoutes(secured, userService, hellWeekService)
	handlers.SetupHabitRoutes(secured, habitService)
	handlers.SetupBattleRoutes(secured, battleService)
	handlers.SetupFriendRoutes(secured, friendService)

	if cfg.R2.Enabled() {
		uploader, err := utils.NewR2Uploader(ctx, cfg.R2)
		if err != nil {
			logger.Fatal("failed to initialize R2 client", "err", err)
		}
		handlers.SetupExportRoutes(secured, services.NewExportService(repo, uploader, clock))
		logger.Info("✅ progress export enabled", "bucket", cfg.R2.Bucket)
	}

	sched, err := battleService.StartBattleExpiryScheduler(ctx, cfg.BattleSweepInterval)
	if err != nil {
		logger.Fatal("failed to start battle expiry scheduler", "err", err)
	}

	workers.NewUserRepairWorker(userService, cfg.RepairInterval).Start(ctx)

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			logger.Error("server error", "err", err)
			stop()
		}
	}()

	logger.Info("✅ Server running", "port", cfg.Port)
	logger.Info("✅ Battle expiry sweep running", "interval", cfg.BattleSweepInterval)
	logger.Info("✅ CORS configured", "origins", cfg.AllowedOrigins)

	<-ctx.Done()
	logger.Info("Shutting down server...")

	if err := sched.Shutdown(); err != nil {
		logger.Warn("scheduler shutdown failed", "err", err)
	}
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Warn("server shutdown failed", "err", err)
	}
}
