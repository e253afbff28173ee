package llm

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// Params are the per-task model and sampling settings.
type Params struct {
	Model             string
	Temperature       float64
	TopP              float64
	RepetitionPenalty float64
	MaxTokens         int
}

// TogetherClient calls a Together-compatible completions endpoint through
// the OpenAI client with an overridden base URL.
type TogetherClient struct {
	client *openai.Client
	params map[Task]Params
}

const (
	defaultCompletionTimeout = 120 * time.Second
	defaultRetryAfter        = 60 * time.Second
)

var stopSequences = []string{"</s>", "Human:", "Assistant:"}

// NewTogetherClient builds a client for the given base URL. The credential
// must be present; its absence is a configuration error, not a runtime one.
func NewTogetherClient(apiKey, baseURL string, params map[Task]Params) (*TogetherClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: api key required", ErrAuth)
	}
	if len(params) == 0 {
		return nil, fmt.Errorf("at least one task configuration required")
	}
	cli := openai.NewClient(
		option.WithAPIKey(apiKey),
		option.WithBaseURL(baseURL),
		// The dispatcher owns retry policy; the transport must not add its own.
		option.WithMaxRetries(0),
	)
	return &TogetherClient{
		client: &cli,
		params: params,
	}, nil
}

func (c *TogetherClient) Complete(ctx context.Context, task Task, prompt string) (string, error) {
	if c == nil || c.client == nil {
		return "", fmt.Errorf("nil together client")
	}
	p, ok := c.params[task]
	if !ok {
		return "", fmt.Errorf("unknown task type: %s", task)
	}
	reqCtx, cancel := context.WithTimeout(ctx, defaultCompletionTimeout)
	defer cancel()

	resp, err := c.client.Completions.New(reqCtx, openai.CompletionNewParams{
		Model:       openai.CompletionNewParamsModel(p.Model),
		Prompt:      openai.CompletionNewParamsPromptUnion{OfString: openai.String(prompt)},
		MaxTokens:   openai.Int(int64(p.MaxTokens)),
		Temperature: openai.Float(p.Temperature),
		TopP:        openai.Float(p.TopP),
		Stop:        openai.CompletionNewParamsStopUnion{OfStringArray: stopSequences},
	}, option.WithJSONSet("repetition_penalty", p.RepetitionPenalty))
	if err != nil {
		return "", classify(err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices returned", ErrTransient)
	}
	return strings.TrimSpace(resp.Choices[0].Text), nil
}

// classify maps transport and HTTP failures onto the package taxonomy.
func classify(err error) error {
	var apierr *openai.Error
	if !errors.As(err, &apierr) {
		// Network-level failure with no HTTP response.
		return fmt.Errorf("%w: %v", ErrTransient, err)
	}
	switch apierr.StatusCode {
	case 429:
		return &RateLimitError{RetryAfter: retryAfter(apierr)}
	case 401:
		return fmt.Errorf("%w: check TOGETHER_API_KEY", ErrAuth)
	case 400:
		return &BadRequestError{Body: apierr.RawJSON()}
	default:
		return fmt.Errorf("%w: status %d: %v", ErrTransient, apierr.StatusCode, err)
	}
}

func retryAfter(apierr *openai.Error) time.Duration {
	if apierr.Response != nil {
		if v := apierr.Response.Header.Get("Retry-After"); v != "" {
			if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
				return time.Duration(secs) * time.Second
			}
		}
	}
	return defaultRetryAfter
}
