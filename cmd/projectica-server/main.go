// Package main provides the HTTP server for Projectica.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/projectica-ai/projectica/internal/assistant"
	"github.com/projectica-ai/projectica/internal/auth"
	"github.com/projectica-ai/projectica/internal/config"
	"github.com/projectica-ai/projectica/internal/db"
	"github.com/projectica-ai/projectica/internal/llm"
	"github.com/projectica-ai/projectica/internal/metrics"
	"github.com/projectica-ai/projectica/internal/search"
	"github.com/projectica-ai/projectica/internal/server"
	"github.com/projectica-ai/projectica/internal/service"
	"github.com/projectica-ai/projectica/internal/tools"
	"github.com/projectica-ai/projectica/internal/trends"
)

func main() {
	wipeDB := flag.Bool("wipe", false, "wipe all data from database on startup (testing only)")
	flag.Parse()

	cfg := config.Load()

	logger, cleanup := config.SetupLogger(cfg.LogFile, cfg.LogLevel)
	defer cleanup()
	slog.SetDefault(logger)

	logger.Info("starting projectica-server", "port", cfg.Port)

	if cfg.SessionSecret == "" {
		logger.Error("PROJECTICA_SESSION_SECRET is required")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	dbClient, err := db.NewClient(ctx, db.Config{
		URL:       cfg.SurrealDBURL,
		Namespace: cfg.SurrealDBNamespace,
		Database:  cfg.SurrealDBDatabase,
		Username:  cfg.SurrealDBUser,
		Password:  cfg.SurrealDBPass,
		AuthLevel: cfg.SurrealDBAuthLevel,
	}, logger)
	if err != nil {
		cancel()
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	if err := dbClient.InitSchema(ctx); err != nil {
		cancel()
		logger.Error("failed to initialize schema", "error", err)
		os.Exit(1)
	}
	if *wipeDB || os.Getenv("PROJECTICA_WIPE_DB") == "true" {
		if err := dbClient.WipeData(ctx); err != nil {
			cancel()
			logger.Error("failed to wipe database", "error", err)
			os.Exit(1)
		}
	}
	cancel()
	defer func() {
		if err := dbClient.Close(context.Background()); err != nil {
			logger.Error("failed to close database", "error", err)
		}
	}()

	runService := assistant.NewOpenAIRunService(assistant.OpenAIConfig{
		APIKey:  cfg.OpenAIAPIKey,
		BaseURL: cfg.OpenAIBaseURL,
	})
	registry := tools.NewRegistry(logger)
	collector := metrics.NewCollector()
	orchestrator := assistant.New(runService, dbClient, registry, logger, assistant.Options{
		InitialDelay: cfg.PollInitialDelay,
		MaxAttempts:  cfg.PollMaxAttempts,
		Metrics:      collector,
	})

	model, err := llm.NewModel(cfg)
	if err != nil {
		logger.Error("failed to create LLM model", "error", err)
		os.Exit(1)
	}
	logger.Info("llm model ready", "provider", cfg.LLMProvider, "model", model.Model())

	searcher := search.NewClient(search.Config{
		APIKey:  cfg.SearchAPIKey,
		BaseURL: cfg.SearchBaseURL,
		Model:   cfg.SearchModel,
	}, logger)
	trendsClient := trends.NewClient(cfg.TrendsBaseURL, logger)

	automator := service.NewAutomator(orchestrator, dbClient, cfg.DefaultModel, logger)
	sharer := service.NewSharer(dbClient, logger)
	verifier := auth.NewVerifier(cfg.SessionSecret, 24*time.Hour)

	srv := server.New(server.Config{
		Port:         cfg.Port,
		DefaultModel: cfg.DefaultModel,
	}, orchestrator, dbClient, searcher, trendsClient, model, automator, sharer, verifier, collector, logger)

	go func() {
		if err := srv.Start(); err != nil {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}
