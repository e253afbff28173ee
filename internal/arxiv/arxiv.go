// Package arxiv marks the paper-retrieval integration point. Fetching and
// parsing papers is out of scope; only the boundary exists so the gateway
// can answer honestly.
package arxiv

import (
	"context"
	"errors"
)

// ErrNotSupported is returned by the stub fetcher for every request.
var ErrNotSupported = errors.New("arxiv retrieval is not supported")

// Fetcher resolves an arXiv identifier to full paper text.
type Fetcher interface {
	Fetch(ctx context.Context, arxivID string) (string, error)
}

// Unsupported is the only current implementation.
type Unsupported struct{}

func (Unsupported) Fetch(context.Context, string) (string, error) {
	return "", ErrNotSupported
}
