// Package engine picks the recognizer compiled into the binary.
package engine

import (
	"log/slog"

	"github.com/joseph-ayodele/contracts-ocr/internal/ocr"
)

// New returns the recognizer for cfg. Build with -tags gosseract to use the
// in-process libtesseract client instead of the tesseract binary.
func New(cfg ocr.Config, logger *slog.Logger) (ocr.Recognizer, error) {
	return newRecognizer(cfg, logger)
}
