//go:build !gosseract

package engine

import (
	"log/slog"

	"github.com/joseph-ayodele/contracts-ocr/internal/ocr"
)

// Name identifies the compiled-in recognizer in logs.
const Name = "tesseract-cli"

func newRecognizer(cfg ocr.Config, logger *slog.Logger) (ocr.Recognizer, error) {
	return ocr.NewTesseractFromConfig(cfg, logger), nil
}
