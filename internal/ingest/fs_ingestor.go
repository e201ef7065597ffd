package ingest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/joseph-ayodele/contracts-ocr/internal/common"
	"github.com/joseph-ayodele/contracts-ocr/internal/entity"
)

// DefaultMaxBytes bounds a single PDF read from disk.
const DefaultMaxBytes = 50 << 20

// FSIngestor reads PDFs from the local filesystem. Byte-identical files are
// all loaded unless Dedup is set.
type FSIngestor struct {
	MaxBytes int64
	Dedup    bool
	logger   *slog.Logger
}

func NewFSIngestor(maxBytes int64, logger *slog.Logger) *FSIngestor {
	if logger == nil {
		logger = slog.Default()
	}
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	return &FSIngestor{MaxBytes: maxBytes, logger: logger}
}

func (i *FSIngestor) LoadPath(ctx context.Context, path string) (LoadResult, error) {
	out := LoadResult{SourcePath: path}
	if err := ctx.Err(); err != nil {
		return out, err
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		i.logger.Error("abs path error", "path", path, "error", err)
		return out, err
	}
	out.SourcePath = abs

	if !AllowedExt(filepath.Ext(abs)) {
		return out, common.NewAppError(common.CodeInvalidInput,
			fmt.Sprintf("not a pdf: %s", filepath.Base(abs)), common.ErrInvalidInput)
	}

	f, err := os.Open(abs)
	if err != nil {
		i.logger.Error("open error", "path", abs, "error", err)
		return out, err
	}
	defer func(f *os.File) {
		if err := f.Close(); err != nil {
			i.logger.Warn("close file error", "path", abs, "error", err)
		}
	}(f)

	h := sha256.New()
	data, err := io.ReadAll(io.TeeReader(io.LimitReader(f, i.MaxBytes+1), h))
	if err != nil {
		i.logger.Error("read error", "path", abs, "error", err)
		return out, err
	}
	if int64(len(data)) > i.MaxBytes {
		return out, common.NewAppError(common.CodeInvalidInput,
			fmt.Sprintf("%s exceeds %d bytes", filepath.Base(abs), i.MaxBytes), common.ErrInvalidInput)
	}
	if !LooksLikePDF(data) {
		return out, common.NewAppError(common.CodeInvalidInput,
			fmt.Sprintf("%s has no pdf header", filepath.Base(abs)), common.ErrInvalidInput)
	}

	out.Document = entity.Document{Name: filepath.Base(abs), Data: data}
	out.HashHex = hex.EncodeToString(h.Sum(nil))
	return out, nil
}

// LoadPaths loads each path in order. With Dedup, identical content loaded
// twice is marked Deduplicated on the later entry.
func (i *FSIngestor) LoadPaths(ctx context.Context, paths []string) ([]LoadResult, DirStats) {
	var results []LoadResult
	var stats DirStats
	seen := map[string]bool{}
	for _, p := range paths {
		stats.Scanned++
		stats.Matched++
		results = append(results, i.loadOne(ctx, p, seen, &stats))
	}
	return results, stats
}

// LoadDirectory walks root, skips hidden if requested,
// and calls LoadPath for each PDF. Returns per-file results + aggregate stats.
func (i *FSIngestor) LoadDirectory(ctx context.Context, root string, skipHidden bool) ([]LoadResult, DirStats, error) {
	if strings.TrimSpace(root) == "" {
		return nil, DirStats{}, errors.New("root_path is required")
	}

	var results []LoadResult
	var stats DirStats
	seen := map[string]bool{}

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		stats.Scanned++
		if walkErr != nil {
			results = append(results, LoadResult{SourcePath: path, Err: walkErr.Error()})
			stats.Failed++
			return nil
		}
		if skipHidden && path != root && IsHidden(path) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || !AllowedExt(filepath.Ext(path)) {
			return nil
		}
		stats.Matched++
		results = append(results, i.loadOne(ctx, path, seen, &stats))
		return nil
	})

	if err != nil {
		return results, stats, fmt.Errorf("walk: %w", err)
	}
	i.logger.Info("ingest.directory.ok",
		"root", root,
		"matched", stats.Matched,
		"succeeded", stats.Succeeded,
		"failed", stats.Failed,
		"deduplicated", stats.Deduplicated,
	)
	return results, stats, nil
}

func (i *FSIngestor) loadOne(ctx context.Context, path string, seen map[string]bool, stats *DirStats) LoadResult {
	r, err := i.LoadPath(ctx, path)
	if err != nil {
		r.Err = err.Error()
		stats.Failed++
		return r
	}
	if i.Dedup && seen[r.HashHex] {
		r.Deduplicated = true
		stats.Deduplicated++
		i.logger.Info("ingest.duplicate.skipped", "path", r.SourcePath, "sha256", r.HashHex)
		return r
	}
	seen[r.HashHex] = true
	stats.Succeeded++
	return r
}
