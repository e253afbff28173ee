package llm

import (
	"errors"
	"fmt"
	"time"
)

// Failure taxonomy for completion calls. The dispatcher decides retry
// behavior from these; orchestrators only treat ErrAuth as fatal.
var (
	// ErrAuth means the API credential is invalid or missing. No retry.
	ErrAuth = errors.New("invalid api credential")

	// ErrBadRequest means the prompt or request parameters were rejected.
	// Retrying the same request cannot help.
	ErrBadRequest = errors.New("bad completion request")

	// ErrRateLimited means the server refused the request with 429. The
	// dispatcher waits out the cooldown before surfacing this.
	ErrRateLimited = errors.New("rate limit exceeded")

	// ErrTransient covers network failures and unexpected statuses that
	// may resolve on retry.
	ErrTransient = errors.New("transient completion failure")
)

// RateLimitError carries the server-specified cooldown from a 429 response.
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limit exceeded, retry after %s", e.RetryAfter)
}

func (e *RateLimitError) Unwrap() error { return ErrRateLimited }

// BadRequestError carries the response body of a 400 for diagnostics.
type BadRequestError struct {
	Body string
}

func (e *BadRequestError) Error() string {
	return fmt.Sprintf("bad completion request: %s", e.Body)
}

func (e *BadRequestError) Unwrap() error { return ErrBadRequest }
