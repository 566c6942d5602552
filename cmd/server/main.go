package main

import (
	"context"
	"math"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Amityar01/chaolab-ircn-sub000/internal/api"
	"github.com/Amityar01/chaolab-ircn-sub000/internal/config"
	"github.com/Amityar01/chaolab-ircn-sub000/internal/scene"
	"github.com/Amityar01/chaolab-ircn-sub000/internal/service"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	if err := config.Load(); err != nil {
		logger, _ := zap.NewProduction()
		logger.Fatal("failed to load config", zap.Error(err))
	}

	logger := newLogger(config.LogLevel())
	defer func() { _ = logger.Sync() }()

	scenePath := config.ScenePath()
	doc, err := scene.Load(scenePath)
	if err != nil {
		logger.Fatal("failed to load scene", zap.String("path", scenePath), zap.Error(err))
	}

	provider := scene.NewProvider()
	if err := provider.SetDocument(doc); err != nil {
		logger.Fatal("failed to publish scene", zap.Error(err))
	}
	logger.Info("scene loaded",
		zap.String("path", scenePath),
		zap.Int("obstacles", len(doc.ObstacleSpecs)))

	watcher, err := scene.NewWatcher(scenePath, provider, logger)
	if err != nil {
		logger.Fatal("failed to create scene watcher", zap.Error(err))
	}

	engineCfg := service.DefaultEngineConfig()
	engineCfg.AgentCount = config.AgentCount()
	engineCfg.FrameInterval = config.FrameInterval()
	engineCfg.PerceptInterval = config.PerceptInterval()
	engineCfg.Seed = config.Seed()
	engineCfg.Perception.SensorRadius = config.SensorRadius()
	engineCfg.Perception.FOVHalfAngle = config.FOVHalfAngleDeg() * math.Pi / 180
	engineCfg.Perception.CellSize = config.CellSize()
	engineCfg.Segmentation.CellSize = config.CellSize()

	bus := service.NewEventBus(0, logger)
	engine := service.NewEngine(engineCfg, provider, bus, logger)

	app := api.NewApp(engine, provider, bus, logger)

	// Start background services
	bus.Start()
	watcher.Start()
	engine.Start()

	addr := config.ServerAddr()
	srv := &http.Server{
		Addr:    addr,
		Handler: app.Router,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logger.Info("server starting", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("shutting down server")

	// Stop background services
	engine.Stop()
	watcher.Stop()
	bus.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("server forced to shutdown", zap.Error(err))
	}

	logger.Info("server stopped")
}

func newLogger(level string) *zap.Logger {
	cfg := zap.NewProductionConfig()
	if lvl, err := zapcore.ParseLevel(level); err == nil {
		cfg.Level = zap.NewAtomicLevelAt(lvl)
	}
	logger, err := cfg.Build()
	if err != nil {
		logger, _ = zap.NewProduction()
	}
	return logger
}
