package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"research-portal/constants"
	"research-portal/internal/artifacts"
	"research-portal/internal/common"
	"research-portal/internal/export"
	"research-portal/internal/ingest"
	"research-portal/internal/llm/anthropic"
	"research-portal/internal/pipeline"
)

// One-shot runner: push a local PDF through the same pipeline the server
// uses, without standing up HTTP. Financial extractions land as a workbook
// in the output directory; earnings summaries print to stdout.
func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	if len(os.Args) < 3 {
		logger.Error("usage: extract <financial|earnings-call> <file.pdf>")
		os.Exit(2)
	}
	task := constants.TaskType(os.Args[1])
	if task != constants.TaskFinancial && task != constants.TaskEarningsCall {
		logger.Error("unknown task", "task", os.Args[1])
		os.Exit(2)
	}
	path := os.Args[2]

	if err := godotenv.Load(); err != nil {
		logger.Debug("no .env file loaded", "error", err)
	}
	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	document, err := os.ReadFile(path)
	if err != nil {
		logger.Error("read document", "path", path, "error", err)
		os.Exit(1)
	}
	pages, err := ingest.PreflightPDF(document)
	if err != nil {
		logger.Error("document failed preflight", "path", path, "error", err)
		os.Exit(1)
	}
	logger.Info("document ok", "path", path, "pages", pages)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.RequestTimeout)
	defer cancel()

	submitter := anthropic.NewClient(anthropic.Config{
		APIKey:    cfg.LLM.APIKey,
		BaseURL:   cfg.LLM.BaseURL,
		Model:     cfg.LLM.Model,
		MaxTokens: cfg.LLM.MaxTokens,
		Timeout:   cfg.LLM.Timeout,
	}, logger)
	runner := pipeline.NewRunner(submitter, cfg.LLM.MaxAttempts, logger)

	outcome, err := runner.Run(ctx, pipeline.Request{
		Task:     task,
		Document: document,
		Filename: filepath.Base(path),
	})
	if err != nil {
		logger.Error("extraction failed", "error", err)
		os.Exit(1)
	}

	switch task {
	case constants.TaskFinancial:
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

		fin := outcome.Result.Financial
		meta := fin.Metadata()
		if outcome.Variant == constants.VariantFallback {
			meta.Method = "ocr_fallback"
		}
		exporter := export.NewService(store, logger)
		filename, err := exporter.RenderFinancialXLSX(ctx, fin, filepath.Base(path), meta)
		if err != nil {
			logger.Error("render workbook", "error", err)
			os.Exit(1)
		}
		logger.Info("workbook written",
			"filename", filename,
			"dir", cfg.Artifacts.OutputDir,
			"line_items", meta.LineItemsCount,
			"periods", len(meta.Periods),
		)
	case constants.TaskEarningsCall:
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(outcome.Result.Earnings); err != nil {
			logger.Error("encode summary", "error", err)
			os.Exit(1)
		}
	}
}
