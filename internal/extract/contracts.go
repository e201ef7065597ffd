package extract

import (
	"context"
	"time"

	"github.com/joseph-ayodele/contracts-ocr/internal/entity"
)

// TextExtractor is Stage 1: document -> text.
type TextExtractor interface {
	Extract(ctx context.Context, doc entity.Document) (TextExtractionResult, error)
}

type TextExtractionResult struct {
	Text     string
	Pages    int
	Method   string // "pdf-ocr"
	Language string
	Duration time.Duration
	Warnings []string
}

// FieldExtractor is Stage 2: text -> record.
type FieldExtractor interface {
	ExtractFields(ctx context.Context, filename, text string) (entity.FieldRecord, error)
}
