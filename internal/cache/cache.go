package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"studykit/internal/extract"
)

// Cache stores completed pipeline results so identical requests skip the
// completion API entirely.
type Cache interface {
	// GetResult retrieves a cached result by key. Returns nil if not found.
	GetResult(ctx context.Context, key string) (*Result, error)

	// SetResult stores a result with TTL.
	SetResult(ctx context.Context, key string, result *Result, ttl time.Duration) error

	// Close closes the cache connection.
	Close() error
}

// Result is one completed run, in the shape the gateway serves.
type Result struct {
	Task       string         `json:"task"`
	Summary    string         `json:"summary,omitempty"`
	Highlights []string       `json:"highlights,omitempty"`
	Adapted    string         `json:"adapted,omitempty"`
	Complexity float64        `json:"complexity,omitempty"`
	Cards      []extract.Card `json:"cards,omitempty"`
}

// Key derives a stable cache key from everything that affects the output.
func Key(task, level string, numCards int, text string) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s|%s|%d|", task, level, numCards)
	h.Write([]byte(text))
	return hex.EncodeToString(h.Sum(nil))
}
