package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"studykit/internal/llm"
	"studykit/internal/progress"
	"studykit/internal/ratelimit"
	"studykit/internal/retry"
)

// Dispatcher serializes completion calls through a shared rate gate and
// applies the retry policy per failure class:
//
//   - 429: wait out the server cooldown, reset the window, surface the error
//     (the caller decides whether to re-invoke)
//   - 401/400: fatal, surfaced immediately
//   - anything else: retried with exponential backoff up to maxAttempts
type Dispatcher struct {
	client llm.Client
	gate   *ratelimit.Gate
	log    *slog.Logger
	obs    progress.Observer

	maxAttempts int
	sleep       func(context.Context, time.Duration) error
}

const (
	defaultMaxAttempts = 3
	backoffBase        = time.Second
)

// New builds a dispatcher. All tasks sharing a provider quota must share one
// gate instance. obs may be nil.
func New(client llm.Client, gate *ratelimit.Gate, log *slog.Logger, obs progress.Observer) *Dispatcher {
	if obs == nil {
		obs = progress.NoOp{}
	}
	throttled := progress.NewThrottled(obs, 0)
	gate.SetNotify(func(msg string) { throttled.Update(msg, progress.NoFraction) })
	return &Dispatcher{
		client:      client,
		gate:        gate,
		log:         log,
		obs:         throttled,
		maxAttempts: defaultMaxAttempts,
		sleep:       retry.Sleep,
	}
}

// Dispatch issues one rate-gated completion call for the prompt. On success
// it returns the raw completion text. The call blocks through rate waits,
// retries, and the 429 cooldown; it is not cancelable mid-request beyond
// what ctx provides to the underlying transport.
func (d *Dispatcher) Dispatch(ctx context.Context, task llm.Task, prompt string) (string, error) {
	var lastErr error

	for attempt := 0; attempt < d.maxAttempts; attempt++ {
		if err := d.gate.Wait(ctx); err != nil {
			return "", err
		}
		d.obs.Update("Making API request...", progress.NoFraction)

		text, err := d.client.Complete(ctx, task, prompt)
		if err == nil {
			return text, nil
		}

		var rle *llm.RateLimitError
		switch {
		case errors.As(err, &rle):
			// The server reset our quota epoch; mirror that locally, wait
			// out the cooldown, then hand the decision back to the caller.
			d.obs.Update(fmt.Sprintf("Rate limit exceeded. Waiting %.0f seconds...", rle.RetryAfter.Seconds()), progress.NoFraction)
			d.gate.Reset()
			if serr := d.sleep(ctx, rle.RetryAfter); serr != nil {
				return "", serr
			}
			return "", err
		case errors.Is(err, llm.ErrAuth), errors.Is(err, llm.ErrBadRequest):
			return "", err
		}

		lastErr = err
		if attempt == d.maxAttempts-1 {
			break
		}
		wait := retry.ExponentialBackoff(attempt+1, backoffBase)
		d.obs.Update(fmt.Sprintf("Request failed, retrying in %d seconds...", int(wait.Seconds())), progress.NoFraction)
		d.log.Warn("completion request failed, retrying",
			"task", task,
			"attempt", attempt+1,
			"wait", wait,
			"err", err,
		)
		if serr := d.sleep(ctx, wait); serr != nil {
			return "", serr
		}
	}

	d.log.Error("completion request failed after retries", "task", task, "attempts", d.maxAttempts, "err", lastErr)
	return "", fmt.Errorf("after %d attempts: %w", d.maxAttempts, lastErr)
}
