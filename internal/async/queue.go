package async

import (
	"context"
	"time"
)

// Job is one document waiting to be processed.
type Job struct {
	Path        string
	SubmittedAt time.Time
	RunID       string
}

// Handler processes one job. It runs on a worker goroutine under the
// queue's per-job timeout.
type Handler func(ctx context.Context, job Job) error

type Queue interface {
	Enqueue(ctx context.Context, job Job) error
	Shutdown(ctx context.Context) error
}
