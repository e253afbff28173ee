package tasks

import (
	"context"

	"studykit/internal/llm"
)

// Dispatcher issues one rate-gated, retried completion call. It is the
// seam between orchestrators and the network layer; tests substitute a
// mock to run without the remote service.
type Dispatcher interface {
	Dispatch(ctx context.Context, task llm.Task, prompt string) (string, error)
}
