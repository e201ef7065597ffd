package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/joseph-ayodele/contracts-ocr/internal/common"
	"github.com/joseph-ayodele/contracts-ocr/internal/ingest"
	"github.com/joseph-ayodele/contracts-ocr/internal/pipeline"
)

func main() {
	cfg := common.LoadConfig()
	logger := common.NewLogger(os.Stderr, cfg.Log)
	slog.SetDefault(logger)

	if len(os.Args) != 2 {
		logger.Error("usage", "cmd", "runocr <file.pdf>")
		os.Exit(2)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	r, err := ingest.NewFSIngestor(int64(cfg.Server.MaxUploadMB)<<20, logger).LoadPath(ctx, os.Args[1])
	if err != nil {
		logger.Error("load pdf", "path", os.Args[1], "error", err)
		os.Exit(1)
	}

	stack, err := pipeline.Build(cfg, logger)
	if err != nil {
		logger.Error("failed to initialize pipeline", "error", err)
		os.Exit(1)
	}
	defer func() { _ = stack.Close() }()

	start := time.Now()
	res, err := stack.OCR.Extract(ctx, r.Document)
	dur := time.Since(start)
	if err != nil {
		logger.Error("text extraction failed", "error", err, "duration_ms", dur.Milliseconds())
		os.Exit(1)
	}

	logger.Info("text extraction OK",
		"method", res.Method,
		"pages", res.Pages,
		"bytes", len(res.Text),
		"duration_ms", dur.Milliseconds(),
	)
	fmt.Println(res.Text)
}
