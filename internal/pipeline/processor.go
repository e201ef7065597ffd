package pipeline

import (
	"context"
	"log/slog"

	"github.com/joseph-ayodele/contracts-ocr/constants"
	"github.com/joseph-ayodele/contracts-ocr/internal/common"
	"github.com/joseph-ayodele/contracts-ocr/internal/entity"
	"github.com/joseph-ayodele/contracts-ocr/internal/extract"
	"github.com/joseph-ayodele/contracts-ocr/internal/ocr"
)

// Processor coordinates OCR (text extract) then rule matching (fields) for one document.
type Processor struct {
	Logger *slog.Logger
	Text   extract.TextExtractor
	Fields extract.FieldExtractor
}

func NewProcessor(logger *slog.Logger, text extract.TextExtractor, fields extract.FieldExtractor) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{Logger: logger, Text: text, Fields: fields}
}

// ProcessDocument returns the document's record. Any failure is a
// *common.DocumentError naming the stage it happened in.
func (p *Processor) ProcessDocument(ctx context.Context, doc entity.Document) (entity.FieldRecord, error) {
	logger := common.LoggerFrom(ctx, p.Logger)

	// 1) OCR stage → rasterize, preprocess, recognize every page
	res, err := p.Text.Extract(ctx, doc)
	if err != nil {
		stage := ocr.StageOf(err, constants.StageRecognize)
		logger.Error("processor.ocr.failed", "stage", stage, "err", err)
		return entity.FieldRecord{}, common.NewDocumentError(doc.Name, stage, err)
	}
	logger.Info("processor.ocr.ok",
		"method", res.Method,
		"pages", res.Pages,
		"chars", len([]rune(res.Text)),
		"duration_ms", res.Duration.Milliseconds(),
	)

	// 2) Field stage → pattern table over the joined text
	rec, err := p.Fields.ExtractFields(ctx, doc.Name, res.Text)
	if err != nil {
		logger.Error("processor.extract.failed", "err", err)
		return entity.FieldRecord{}, common.NewDocumentError(doc.Name, constants.StageExtract, err)
	}
	logger.Info("processor.extract.ok")
	return rec, nil
}
