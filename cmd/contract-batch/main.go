package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joseph-ayodele/contracts-ocr/internal/async"
	"github.com/joseph-ayodele/contracts-ocr/internal/common"
	"github.com/joseph-ayodele/contracts-ocr/internal/entity"
	"github.com/joseph-ayodele/contracts-ocr/internal/ingest"
	"github.com/joseph-ayodele/contracts-ocr/internal/pipeline"
)

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	cfg := common.LoadConfig()

	var (
		dir        = flag.String("dir", "", "directory to load contract PDFs from")
		out        = flag.String("out", cfg.Export.Dir, "directory the XLSX is written to")
		watch      = flag.String("watch", "", "watch a directory and run a batch as PDFs arrive")
		skipHidden = flag.Bool("skip-hidden", true, "skip hidden files and directories")
		dedup      = flag.Bool("dedup", false, "skip files whose bytes match an earlier file")
	)
	flag.Usage = func() {
		printError("usage: contract-batch [-out DIR] FILE.pdf...\n       contract-batch [-out DIR] -dir DIR\n       contract-batch [-out DIR] -watch DIR\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if *dir == "" && *watch == "" && flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	logger := common.NewLogger(os.Stdout, cfg.Log)
	slog.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	if err := os.MkdirAll(*out, 0o755); err != nil {
		logger.Error("create output directory", "dir", *out, "error", err)
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

	ingestor := ingest.NewFSIngestor(int64(cfg.Server.MaxUploadMB)<<20, logger)
	ingestor.Dedup = *dedup
	stack.Batch.Reporter = pipeline.Reporters{stack.Batch.Reporter, consoleReporter{w: os.Stdout}}

	if *watch != "" {
		if err := runWatch(ctx, *watch, *out, *skipHidden, ingestor, stack.Batch, stack.Batch.Limit(), logger); err != nil {
			logger.Error("watch failed", "error", err)
			os.Exit(1)
		}
		return
	}

	docs, err := loadDocuments(ctx, ingestor, stack.Batch, *dir, flag.Args(), *skipHidden, logger)
	if err != nil {
		if errors.Is(err, common.ErrBatchSizeExceeded) {
			printError("Error: %v\n", err)
		} else {
			logger.Error("failed to load documents", "error", err)
		}
		os.Exit(1)
	}
	if err := runBatch(ctx, stack.Batch, docs, *out, logger); err != nil {
		os.Exit(1)
	}
}

// loadDocuments reads the directory, or else the listed paths, and checks the
// cap against every PDF submitted, so unreadable files and skipped duplicates
// still count toward it.
func loadDocuments(ctx context.Context, ingestor *ingest.FSIngestor, batch *pipeline.Batch, dir string, paths []string, skipHidden bool, logger *slog.Logger) ([]entity.Document, error) {
	var results []ingest.LoadResult
	var stats ingest.DirStats
	if dir != "" {
		var err error
		results, stats, err = ingestor.LoadDirectory(ctx, dir, skipHidden)
		if err != nil {
			return nil, err
		}
	} else {
		if err := batch.CheckSize(len(paths)); err != nil {
			return nil, err
		}
		results, stats = ingestor.LoadPaths(ctx, paths)
	}
	logger.Info("ingestion complete",
		"scanned", stats.Scanned,
		"matched", stats.Matched,
		"succeeded", stats.Succeeded,
		"failed", stats.Failed,
		"deduplicated", stats.Deduplicated)
	if err := batch.CheckSize(int(stats.Matched)); err != nil {
		return nil, err
	}
	for _, r := range results {
		switch {
		case r.Err != "":
			printError("SKIP %s: %s\n", r.SourcePath, r.Err)
		case r.Deduplicated:
			printError("SKIP %s: duplicate of an earlier file\n", r.SourcePath)
		}
	}
	return ingest.Documents(results), nil
}

// consoleReporter prints one status line per document.
type consoleReporter struct {
	w io.Writer
}

func (consoleReporter) DocumentStarted(int, string) {}

func (r consoleReporter) DocumentSucceeded(_ int, rec entity.FieldRecord) {
	_, _ = fmt.Fprintf(r.w, "OK   %s\n", rec.FileName)
}

func (r consoleReporter) DocumentFailed(_ int, name string, err error) {
	_, _ = fmt.Fprintf(r.w, "FAIL %s: %v\n", name, err)
}

// runBatch processes docs and writes the workbook.
func runBatch(ctx context.Context, batch *pipeline.Batch, docs []entity.Document, outDir string, logger *slog.Logger) error {
	start := time.Now()
	res, err := batch.Run(ctx, docs)
	switch {
	case errors.Is(err, common.ErrBatchSizeExceeded):
		printError("Error: %v\n", err)
		return err
	case errors.Is(err, common.ErrEmptyResultSet):
		printError("Warning: %v; no workbook written\n", err)
		return err
	case err != nil:
		logger.Error("batch failed", "error", err)
		return err
	}

	path := filepath.Join(outDir, res.Export.FileName)
	if err := os.WriteFile(path, res.Export.Data, 0o644); err != nil {
		logger.Error("failed to write output file", "path", path, "error", err)
		return err
	}
	logger.Info("batch processing complete",
		"batch_id", res.ID.String(),
		"documents", len(docs),
		"rows", len(res.Table),
		"failures", len(res.Failed()),
		"output", path,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	fmt.Println(path)
	return nil
}

// runWatch runs a batch for every group of PDFs that lands under root until ctx is done.
func runWatch(ctx context.Context, root, outDir string, skipHidden bool, ingestor *ingest.FSIngestor, batch *pipeline.Batch, size int, logger *slog.Logger) error {
	events, errs, err := ingest.StartWatcher(ctx, ingest.WatchConfig{
		Roots:      []string{root},
		Debounce:   2 * time.Second,
		SkipHidden: skipHidden,
		Logger:     logger,
	})
	if err != nil {
		return err
	}
	go func() {
		for err := range errs {
			logger.Warn("watcher error", "error", err)
		}
	}()

	queue := async.NewProcessorQueue(func(ctx context.Context, job async.Job) error {
		docs, err := loadDocuments(ctx, ingestor, batch, "", job.Paths, skipHidden, logger)
		if err != nil || len(docs) == 0 {
			return err
		}
		return runBatch(ctx, batch, docs, outDir, logger)
	}, logger, async.WithWorkers(1), async.WithQueueSize(4))

	logger.Info("watching for contracts", "dir", root, "out", outDir)
	for group := range ingest.Group(ctx, events, size, 5*time.Second) {
		if err := queue.Enqueue(ctx, async.NewJob(group)); err != nil {
			logger.Warn("dropped group", "documents", len(group), "error", err)
		}
	}

	// Let queued batches finish after the signal.
	drainCtx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()
	queue.Shutdown(drainCtx)
	return nil
}
