package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/contracts-ocr/constants"
	"github.com/joseph-ayodele/contracts-ocr/internal/common"
	"github.com/joseph-ayodele/contracts-ocr/internal/entity"
	"github.com/joseph-ayodele/contracts-ocr/internal/export"
)

// DocumentProcessor turns one document into a record.
type DocumentProcessor interface {
	ProcessDocument(ctx context.Context, doc entity.Document) (entity.FieldRecord, error)
}

// Exporter writes a result table to an artifact.
type Exporter interface {
	Export(ctx context.Context, rows []entity.FieldRecord, at time.Time) (export.Artifact, error)
}

// BatchResult is everything one batch produced.
type BatchResult struct {
	ID       uuid.UUID
	Outcomes []entity.Outcome
	// Table holds the records of successful documents in upload order.
	Table  []entity.FieldRecord
	Export *export.Artifact
}

// Failed returns the outcomes that carry an error.
func (r *BatchResult) Failed() []entity.Outcome {
	var out []entity.Outcome
	for _, o := range r.Outcomes {
		if !o.OK() {
			out = append(out, o)
		}
	}
	return out
}

// Batch processes up to MaxDocuments documents sequentially and exports the
// successes. A failing document never aborts the rest.
type Batch struct {
	Processor    DocumentProcessor
	Exporter     Exporter
	Reporter     Reporter
	MaxDocuments int
	Now          func() time.Time
	Logger       *slog.Logger
}

func NewBatch(p DocumentProcessor, e Exporter, logger *slog.Logger) *Batch {
	if logger == nil {
		logger = slog.Default()
	}
	return &Batch{
		Processor:    p,
		Exporter:     e,
		Reporter:     LogReporter{Logger: logger},
		MaxDocuments: constants.MaxBatchDocuments,
		Now:          time.Now,
		Logger:       logger,
	}
}

// Limit is the effective cap: MaxDocuments, never above the hard cap.
func (b *Batch) Limit() int {
	if b.MaxDocuments <= 0 || b.MaxDocuments > constants.MaxBatchDocuments {
		return constants.MaxBatchDocuments
	}
	return b.MaxDocuments
}

// CheckSize rejects n submitted documents when n exceeds the cap. Callers that
// filter their input should check the submitted count, not the filtered one.
func (b *Batch) CheckSize(n int) error {
	if limit := b.Limit(); n > limit {
		b.Logger.Warn("batch.rejected", "documents", n, "limit", limit)
		return common.BatchSizeError(n, limit)
	}
	return nil
}

// Run processes docs in order. It fails with a BATCH_SIZE_EXCEEDED AppError
// before reading any document when len(docs) exceeds the cap, and with an
// EMPTY_RESULT_SET AppError (alongside the populated result) when no document
// produced a record.
func (b *Batch) Run(ctx context.Context, docs []entity.Document) (*BatchResult, error) {
	if err := b.CheckSize(len(docs)); err != nil {
		return nil, err
	}

	res := &BatchResult{ID: uuid.New(), Outcomes: make([]entity.Outcome, 0, len(docs))}
	ctx = common.WithBatchID(ctx, res.ID.String())
	logger := common.LoggerFrom(ctx, b.Logger)
	reporter := b.Reporter
	if reporter == nil {
		reporter = LogReporter{Logger: logger}
	}

	start := time.Now()
	logger.Info("batch.started", "documents", len(docs))

	for i, doc := range docs {
		if err := ctx.Err(); err != nil {
			logger.Warn("batch.cancelled", "processed", i, "err", err)
			return res, err
		}
		reporter.DocumentStarted(i, doc.Name)
		out := entity.Outcome{Index: i, Name: doc.Name, Status: constants.DocumentStatusPending}

		rec, err := b.Processor.ProcessDocument(common.WithDocument(ctx, doc.Name), doc)
		if err != nil {
			out.Status = constants.DocumentStatusFailed
			out.Err = err
			reporter.DocumentFailed(i, doc.Name, err)
		} else {
			out.Status = constants.DocumentStatusOK
			out.Record = &rec
			res.Table = append(res.Table, rec)
			reporter.DocumentSucceeded(i, rec)
		}
		res.Outcomes = append(res.Outcomes, out)
	}

	if len(res.Table) == 0 {
		logger.Warn("batch.empty", "documents", len(docs))
		return res, common.EmptyResultError(len(docs))
	}

	now := time.Now
	if b.Now != nil {
		now = b.Now
	}
	art, err := b.Exporter.Export(ctx, res.Table, now())
	if err != nil {
		logger.Error("batch.export.failed", "err", err)
		return res, err
	}
	res.Export = &art

	logger.Info("batch.done",
		"documents", len(docs),
		"ok", len(res.Table),
		"failed", len(docs)-len(res.Table),
		"export", art.FileName,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return res, nil
}
