package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/storycrafter/storycrafter-agent/internal/api"
	"github.com/storycrafter/storycrafter-agent/internal/config"
	"github.com/storycrafter/storycrafter-agent/internal/db"
	"github.com/storycrafter/storycrafter-agent/internal/gemini"
	"github.com/storycrafter/storycrafter-agent/internal/logging"
	"github.com/storycrafter/storycrafter-agent/internal/storage"
	"github.com/storycrafter/storycrafter-agent/internal/story"
	"github.com/storycrafter/storycrafter-agent/internal/ui"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("fatal error: %v", err)
	}
}

func run() error {
	startTime := time.Now()

	cfg, err := config.New()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := os.MkdirAll(cfg.DataDir(), 0755); err != nil {
		return fmt.Errorf("failed to create data dir: %w", err)
	}

	logger := logging.NewLogger(cfg.LogLevel())
	logger.Info("starting storycrafter agent",
		"version", config.Version,
		"data_dir", cfg.DataDir(),
		"model", cfg.GeminiModel(),
	)

	if cfg.GeminiAPIKey() == "" {
		return fmt.Errorf("%s is required", config.EnvGeminiAPIKey)
	}
	logger.Info("model credentials loaded", "api_key", logging.SanitizeKey(cfg.GeminiAPIKey()))

	database, err := db.New(cfg.DBPath(), logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer database.Close()

	persist := storage.NewSQLiteStore(database.Conn(), logger)
	store := story.NewStore(persist, logger)
	store.Load(context.Background())

	gateway := gemini.NewClient(gemini.Options{
		BaseURL: cfg.GeminiBaseURL(),
		APIKey:  cfg.GeminiAPIKey(),
		Model:   cfg.GeminiModel(),
		Timeout: cfg.GeminiTimeout(),
		Logger:  logging.WithComponent(logger, "gemini"),
	})

	pipeline := story.NewPipeline(gateway, store, logging.WithComponent(logger, "pipeline"))
	session := story.NewSession(pipeline, store, logging.WithComponent(logger, "session"))

	apiServer := api.NewServer(api.ServerConfig{
		Port:      cfg.Port(),
		Session:   session,
		Store:     store,
		Logger:    logger,
		StartTime: startTime,
	})

	go func() {
		if err := apiServer.Start(); err != nil {
			logger.Error("HTTP server error", "error", err)
		}
	}()

	fmt.Printf("StoryCrafter Agent v%s listening on http://%s\n", config.Version, apiServer.Addr())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	quitCh := make(chan struct{})

	go func() {
		select {
		case sig := <-sigCh:
			logger.Info("received shutdown signal", "signal", sig)
			close(quitCh)
		case <-quitCh:
		}
	}()

	if cfg.Headless() {
		logger.Info("running in headless mode (no system tray)")
	} else {
		tray := ui.NewTray(ui.TrayConfig{
			Session: session,
			Store:   store,
			Logger:  logger,
			OnQuit: func() {
				close(quitCh)
			},
		})
		go tray.Run()
	}

	<-quitCh

	logger.Info("initiating graceful shutdown")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("failed to shutdown HTTP server", "error", err)
	}

	logger.Info("shutdown complete")
	return nil
}
