package llm

import "context"

// Task selects the per-task model and sampling parameters.
type Task string

const (
	TaskSummarize  Task = "summarize"
	TaskAdapt      Task = "adapt"
	TaskFlashcards Task = "flashcards"
)

// Client is a minimal completion interface to allow pluggable providers.
// Implementations return raw completion text; callers own extraction.
type Client interface {
	Complete(ctx context.Context, task Task, prompt string) (string, error)
}
