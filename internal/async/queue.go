package async

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrQueueClosed is returned by Enqueue once Shutdown has begun.
var ErrQueueClosed = errors.New("queue is shutting down")

// Job is one group of contract PDFs to run as a batch.
type Job struct {
	ID          uuid.UUID
	Paths       []string
	SubmittedAt time.Time
}

func NewJob(paths []string) Job {
	return Job{ID: uuid.New(), Paths: paths, SubmittedAt: time.Now()}
}

// Handler processes one job.
type Handler func(ctx context.Context, job Job) error

type Queue interface {
	Enqueue(ctx context.Context, job Job) error
	Shutdown(ctx context.Context)
}
