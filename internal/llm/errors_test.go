package llm

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestRateLimitErrorUnwrapsToSentinel(t *testing.T) {
	err := &RateLimitError{RetryAfter: 30 * time.Second}
	if !errors.Is(err, ErrRateLimited) {
		t.Error("RateLimitError should match ErrRateLimited")
	}

	var rle *RateLimitError
	wrapped := fmt.Errorf("dispatch failed: %w", err)
	if !errors.As(wrapped, &rle) {
		t.Fatal("expected errors.As to recover RateLimitError")
	}
	if rle.RetryAfter != 30*time.Second {
		t.Errorf("RetryAfter: got %v, want 30s", rle.RetryAfter)
	}
}

func TestBadRequestErrorUnwrapsToSentinel(t *testing.T) {
	err := &BadRequestError{Body: `{"error":"prompt too long"}`}
	if !errors.Is(err, ErrBadRequest) {
		t.Error("BadRequestError should match ErrBadRequest")
	}
}

func TestNewTogetherClientRequiresKey(t *testing.T) {
	_, err := NewTogetherClient("", "https://api.together.xyz/v1", map[Task]Params{
		TaskSummarize: {Model: "m"},
	})
	if !errors.Is(err, ErrAuth) {
		t.Errorf("expected ErrAuth for missing key, got %v", err)
	}
}
