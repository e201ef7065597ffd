package ocr

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/disintegration/imaging"
)

// DefaultLanguages is traditional Chinese plus Latin script.
const DefaultLanguages = "chi_tra+eng"

// Recognizer turns one page image into text. Implementations are created once,
// shared across a batch, and closed when the host shuts down.
type Recognizer interface {
	Recognize(ctx context.Context, img image.Image) (string, error)
	Close() error
}

// TesseractCLI runs the tesseract binary once per page.
type TesseractCLI struct {
	Bin         string
	Lang        string
	TessdataDir string
	PSM         int // e.g., 6 is good for uniform block of text
	OEM         int // 1 = LSTM; leave 0 to use default

	runner Runner
	logger *slog.Logger
}

func NewTesseractCLI(bin, lang string, logger *slog.Logger) *TesseractCLI {
	if logger == nil {
		logger = slog.Default()
	}
	if bin == "" {
		bin = "tesseract"
	}
	if lang == "" {
		lang = DefaultLanguages
	}
	return &TesseractCLI{Bin: bin, Lang: lang, runner: execRunner{}, logger: logger}
}

// WithRunner swaps the command runner; used by tests.
func (t *TesseractCLI) WithRunner(r Runner) *TesseractCLI {
	t.runner = r
	return t
}

func (t *TesseractCLI) Recognize(ctx context.Context, img image.Image) (string, error) {
	tmpDir, err := os.MkdirTemp("", "co-tess-*")
	if err != nil {
		return "", err
	}
	defer func(path string) {
		if err := os.RemoveAll(path); err != nil {
			t.logger.Warn("failed to remove temp dir", "dir", path, "error", err)
		}
	}(tmpDir)

	path := filepath.Join(tmpDir, "page.png")
	if err := imaging.Save(img, path); err != nil {
		return "", fmt.Errorf("encode page: %w", err)
	}

	// tesseract <file> stdout -l <lang>
	args := []string{path, "stdout", "-l", t.Lang}
	if t.PSM > 0 {
		args = append(args, "--psm", strconv.Itoa(t.PSM))
	}
	if t.OEM > 0 {
		args = append(args, "--oem", strconv.Itoa(t.OEM))
	}
	if t.TessdataDir != "" {
		args = append(args, "--tessdata-dir", t.TessdataDir)
	}
	out, errb, err := t.runner.Run(ctx, t.Bin, t.logger, args...)
	if err != nil {
		return "", fmt.Errorf("tesseract: %w: %s", err, truncate(strings.TrimSpace(string(errb)), 512))
	}
	return string(out), nil
}

func (t *TesseractCLI) Close() error { return nil }
