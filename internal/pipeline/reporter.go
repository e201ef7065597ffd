package pipeline

import (
	"log/slog"

	"github.com/joseph-ayodele/contracts-ocr/internal/entity"
)

// Reporter observes per-document progress of a batch.
type Reporter interface {
	DocumentStarted(index int, name string)
	DocumentSucceeded(index int, rec entity.FieldRecord)
	DocumentFailed(index int, name string, err error)
}

// LogReporter reports through a structured logger.
type LogReporter struct {
	Logger *slog.Logger
}

func (r LogReporter) logger() *slog.Logger {
	if r.Logger == nil {
		return slog.Default()
	}
	return r.Logger
}

func (r LogReporter) DocumentStarted(index int, name string) {
	r.logger().Info("batch.document.started", "index", index, "document", name)
}

func (r LogReporter) DocumentSucceeded(index int, rec entity.FieldRecord) {
	r.logger().Info("batch.document.ok",
		"index", index,
		"document", rec.FileName,
		"start_period", rec.StartPeriod,
		"unit_count", rec.UnitCount.String(),
		"total", rec.Total.String(),
	)
}

func (r LogReporter) DocumentFailed(index int, name string, err error) {
	r.logger().Warn("batch.document.failed", "index", index, "document", name, "err", err)
}

// Reporters fans out to several reporters in order.
type Reporters []Reporter

func (rs Reporters) DocumentStarted(index int, name string) {
	for _, r := range rs {
		r.DocumentStarted(index, name)
	}
}

func (rs Reporters) DocumentSucceeded(index int, rec entity.FieldRecord) {
	for _, r := range rs {
		r.DocumentSucceeded(index, rec)
	}
}

func (rs Reporters) DocumentFailed(index int, name string, err error) {
	for _, r := range rs {
		r.DocumentFailed(index, name, err)
	}
}
