//go:build gosseract

package engine

import (
	"log/slog"

	"github.com/joseph-ayodele/contracts-ocr/internal/ocr"
	"github.com/joseph-ayodele/contracts-ocr/internal/ocr/gosseract"
)

// Name identifies the compiled-in recognizer in logs.
const Name = "gosseract"

func newRecognizer(cfg ocr.Config, _ *slog.Logger) (ocr.Recognizer, error) {
	lang := cfg.TesseractLang
	if lang == "" {
		lang = ocr.DefaultLanguages
	}
	return gosseract.New(lang, cfg.TessdataDir, cfg.PSM)
}
