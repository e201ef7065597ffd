package async

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestProcessorQueue_RunsInOrderOnOneWorker(t *testing.T) {
	var mu sync.Mutex
	var got []string
	var active, maxActive int
	q := NewProcessorQueue(func(_ context.Context, job Job) error {
		mu.Lock()
		active++
		if active > maxActive {
			maxActive = active
		}
		got = append(got, job.Paths[0])
		mu.Unlock()
		time.Sleep(time.Millisecond)
		mu.Lock()
		active--
		mu.Unlock()
		return nil
	}, quietLogger())

	for _, p := range []string{"a", "b", "c"} {
		if err := q.Enqueue(context.Background(), NewJob([]string{p})); err != nil {
			t.Fatalf("Enqueue: %v", err)
		}
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	q.Shutdown(ctx)

	if len(got) != 3 || got[0] != "a" || got[1] != "b" || got[2] != "c" {
		t.Errorf("order = %v", got)
	}
	if maxActive != 1 {
		t.Errorf("max concurrent jobs = %d, want 1", maxActive)
	}
}

func TestProcessorQueue_EnqueueAfterShutdown(t *testing.T) {
	q := NewProcessorQueue(func(context.Context, Job) error { return nil }, quietLogger())
	q.Shutdown(context.Background())
	q.Shutdown(context.Background())
	if err := q.Enqueue(context.Background(), NewJob(nil)); !errors.Is(err, ErrQueueClosed) {
		t.Fatalf("err = %v, want ErrQueueClosed", err)
	}
}

func TestProcessorQueue_HandlerErrorKeepsWorking(t *testing.T) {
	done := make(chan string, 2)
	q := NewProcessorQueue(func(_ context.Context, job Job) error {
		done <- job.Paths[0]
		if job.Paths[0] == "bad" {
			return errors.New("boom")
		}
		return nil
	}, quietLogger(), WithQueueSize(1), WithProcessTimeout(time.Second))

	_ = q.Enqueue(context.Background(), NewJob([]string{"bad"}))
	_ = q.Enqueue(context.Background(), NewJob([]string{"good"}))
	q.Shutdown(context.Background())

	if a, b := <-done, <-done; a != "bad" || b != "good" {
		t.Errorf("jobs = %s, %s", a, b)
	}
}

func TestProcessorQueue_WithWorkersRunsConcurrently(t *testing.T) {
	started := make(chan struct{}, 2)
	release := make(chan struct{})
	q := NewProcessorQueue(func(context.Context, Job) error {
		started <- struct{}{}
		<-release
		return nil
	}, quietLogger(), WithWorkers(2))

	_ = q.Enqueue(context.Background(), NewJob([]string{"a"}))
	_ = q.Enqueue(context.Background(), NewJob([]string{"b"}))
	for i := 0; i < 2; i++ {
		select {
		case <-started:
		case <-time.After(5 * time.Second):
			close(release)
			t.Fatalf("only %d of 2 jobs started", i)
		}
	}
	close(release)
	q.Shutdown(context.Background())
}
