package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"dinner-planner/internal/app"
	"dinner-planner/internal/catalog"
	"dinner-planner/internal/clipper"
	"dinner-planner/internal/config"
	"dinner-planner/internal/database"
	"dinner-planner/internal/ghost"
	"dinner-planner/internal/llm"
	"dinner-planner/internal/logger"
	"dinner-planner/internal/metrics"
	"dinner-planner/internal/telegram"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()

	// 1. Load Configuration
	cfg, err := config.NewFromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if err := logger.Init(cfg.LogLevel); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := cfg.RequireTelegram(); err != nil {
		logger.L().Fatal("invalid telegram configuration", zap.Error(err))
	}
	planConfig, err := config.LoadPlanConfig(cfg.PlanConfigPath)
	if err != nil {
		logger.L().Fatal("failed to load plan config", zap.Error(err))
	}

	ctx := context.Background()

	// 2. Initialize Infrastructure
	db, err := database.NewDB(cfg.DBPath)
	if err != nil {
		logger.L().Fatal("failed to initialize database", zap.Error(err))
	}
	defer db.Close()

	textGen, err := llm.NewTextGenerator(ctx, cfg)
	if err != nil {
		logger.L().Fatal("failed to create text generator", zap.Error(err))
	}
	if c, ok := textGen.(llm.Closer); ok {
		defer c.Close()
	}

	var publisher ghost.Publisher
	if cfg.RequireGhost() == nil {
		publisher = ghost.NewClient(cfg)
	}

	// 3. Initialize Services
	metricsStore := metrics.NewStore(db.SQL)
	application := app.NewApp(
		catalog.NewRepository(db.SQL),
		clipper.NewClipper(textGen, metricsStore),
		publisher,
	)

	bot, err := telegram.NewBot(cfg, application, metricsStore, planConfig)
	if err != nil {
		logger.L().Fatal("failed to initialize telegram bot", zap.Error(err))
	}

	// 4. Start Server with Graceful Shutdown
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           bot.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("telegram bot server listening", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.L().Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctxShutdown); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
	}
	// Handlers run past the webhook response; let them finish before the DB closes.
	if err := bot.Wait(ctxShutdown); err != nil {
		logger.Warn("messages still in flight at shutdown", zap.Error(err))
	}
	logger.Info("server exiting")
}
