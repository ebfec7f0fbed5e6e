package main

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"research-portal/internal/artifacts"
	"research-portal/internal/common"
	"research-portal/internal/export"
	"research-portal/internal/llm/anthropic"
	"research-portal/internal/pipeline"
	"research-portal/internal/server"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil {
		logger.Debug("no .env file loaded", "error", err)
	}

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	store, err := artifacts.Open(cfg.Artifacts.IndexPath, cfg.Artifacts.OutputDir, logger)
	if err != nil {
		logger.Error("open artifact store", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Warn("close artifact store", "error", err)
		}
	}()

	submitter := anthropic.NewClient(anthropic.Config{
		APIKey:    cfg.LLM.APIKey,
		BaseURL:   cfg.LLM.BaseURL,
		Model:     cfg.LLM.Model,
		MaxTokens: cfg.LLM.MaxTokens,
		Timeout:   cfg.LLM.Timeout,
	}, logger)

	runner := pipeline.NewRunner(submitter, cfg.LLM.MaxAttempts, logger)
	exporter := export.NewService(store, logger)
	handler := server.NewHandler(runner, exporter, store, cfg.Server.RequestTimeout, logger)

	api := server.NewWebAPI(server.Config{
		Addr:            cfg.Server.Addr,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
		Handler:         handler,
		Logger:          logger,
	})

	if err := api.Start(); err != nil {
		logger.Error("server exited", "error", err)
		os.Exit(1)
	}
	logger.Info("stopped")
}
