package extract

import (
	"context"
	"log/slog"

	"github.com/joseph-ayodele/contracts-ocr/internal/entity"
	"github.com/joseph-ayodele/contracts-ocr/internal/ocr"
)

type OCRAdapter struct {
	extractor *ocr.Extractor
	logger    *slog.Logger
}

func NewOCRAdapter(e *ocr.Extractor, l *slog.Logger) *OCRAdapter {
	if l == nil {
		l = slog.Default()
	}
	return &OCRAdapter{
		extractor: e,
		logger:    l,
	}
}

func (a *OCRAdapter) Extract(ctx context.Context, doc entity.Document) (TextExtractionResult, error) {
	r, err := a.extractor.Extract(ctx, doc)
	if err != nil {
		return TextExtractionResult{}, err
	}
	for _, w := range r.Warnings {
		a.logger.Warn("ocr warning", "document", doc.Name, "warning", w)
	}
	return TextExtractionResult{
		Text:     r.Text,
		Pages:    r.Pages,
		Method:   r.Method,
		Language: r.Language,
		Duration: r.Duration,
		Warnings: r.Warnings,
	}, nil
}
