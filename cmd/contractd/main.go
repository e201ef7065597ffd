package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joseph-ayodele/contracts-ocr/internal/common"
	"github.com/joseph-ayodele/contracts-ocr/internal/ocr/engine"
	"github.com/joseph-ayodele/contracts-ocr/internal/pipeline"
	"github.com/joseph-ayodele/contracts-ocr/internal/server"
)

func main() {
	cfg := common.LoadConfig()
	logger := common.NewLogger(os.Stdout, cfg.Log)
	slog.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	stack, err := pipeline.Build(cfg, logger)
	if err != nil {
		logger.Error("failed to initialize pipeline", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := stack.Close(); err != nil {
			logger.Warn("close recognizer", "error", err)
		}
	}()
	logger.Info("recognizer ready", "engine", engine.Name, "lang", cfg.OCR.TesseractLang)

	api := server.NewBatchServer(stack.Batch, int64(cfg.Server.MaxUploadMB)<<20, cfg.Batch.MaxDocuments, logger)
	srv := server.NewHTTPServer(cfg.Server.HTTPAddr, api.Routes(), logger)

	if err := server.Serve(ctx, srv, cfg.Server.ShutdownTimeout, logger); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
	logger.Info("server stopped")
}
