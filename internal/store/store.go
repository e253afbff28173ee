package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

type RunStatus string

const (
	StatusProcessing RunStatus = "processing"
	StatusReady      RunStatus = "ready"
	StatusFailed     RunStatus = "failed"
)

var ErrRunNotFound = errors.New("run not found")

// Run is one pipeline invocation: a task over one input text.
type Run struct {
	ID         uuid.UUID
	Task       string
	Level      string
	NumCards   int
	InputChars int
	Status     RunStatus
	Error      string

	// Results, populated per task once the run is ready.
	Summary    string
	Highlights []string
	Adapted    string
	Complexity float64

	CreatedAt time.Time
}

// Card is one generated flashcard, ordered within its run.
type Card struct {
	RunID    uuid.UUID
	Ord      int
	Question string
	Answer   string
}

// Store defines persistence contract; an external DB implementation can replace this.
type Store interface {
	CreateRun(ctx context.Context, run Run) (Run, error)
	GetRun(ctx context.Context, id uuid.UUID) (Run, error)
	UpdateRunStatus(ctx context.Context, id uuid.UUID, status RunStatus, errMsg string) error
	SaveSummary(ctx context.Context, id uuid.UUID, summary string, highlights []string) error
	SaveAdaptation(ctx context.Context, id uuid.UUID, adapted string, complexity float64) error
	SaveCards(ctx context.Context, id uuid.UUID, cards []Card) error
	ListCards(ctx context.Context, id uuid.UUID) ([]Card, error)
}
