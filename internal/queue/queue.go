package queue

import (
	"context"
	"time"

	"github.com/google/uuid"

	"studykit/internal/retry"
)

// TaskType enumerates supported task categories.
type TaskType string

// TaskTypeProcess is a pipeline run handed from the gateway to a worker.
const TaskTypeProcess TaskType = "process"

// Task represents a unit of work shared across services.
type Task struct {
	ID          uuid.UUID
	Type        TaskType
	Payload     []byte
	Attempts    int
	MaxAttempts int
	NotBefore   time.Time
}

type Handler func(context.Context, Task) error

// Queue exposes a minimal contract to enqueue and consume tasks.
type Queue interface {
	Enqueue(ctx context.Context, task Task) error
	Worker(ctx context.Context, taskType TaskType, handler Handler) error
}

// EnqueueWithRetry attempts to enqueue with retries and exponential backoff.
func EnqueueWithRetry(ctx context.Context, q Queue, task Task, attempts int, base time.Duration) error {
	if attempts <= 0 {
		attempts = 1
	}
	for attempt := 0; attempt < attempts; attempt++ {
		err := q.Enqueue(ctx, task)
		if err == nil {
			return nil
		}
		if attempt == attempts-1 {
			return err
		}
		if serr := retry.Sleep(ctx, retry.ExponentialBackoff(attempt, base)); serr != nil {
			return serr
		}
	}
	return nil
}
