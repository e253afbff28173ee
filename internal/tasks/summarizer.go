package tasks

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"studykit/internal/chunker"
	"studykit/internal/extract"
	"studykit/internal/llm"
)

// Summarizer produces a structured summary (paragraph plus key highlights)
// for arbitrary-length input. Long inputs are summarized per chunk and the
// partial summaries combined in one final pass.
type Summarizer struct {
	d         Dispatcher
	log       *slog.Logger
	chunkSize int
	filter    *extract.LineFilter
}

func NewSummarizer(d Dispatcher, log *slog.Logger, chunkSize int) *Summarizer {
	return &Summarizer{
		d:         d,
		log:       log,
		chunkSize: chunkSize,
		filter:    extract.NewLineFilter(),
	}
}

// Summarize runs the full pipeline for one input. A failed chunk degrades
// the result rather than aborting, except for credential errors which stop
// the run immediately. Empty input yields an empty summary and no calls.
func (s *Summarizer) Summarize(ctx context.Context, text string) (extract.Summary, error) {
	chunks := chunker.Split(text, s.chunkSize)
	if len(chunks) == 0 {
		return extract.Summary{}, nil
	}

	if len(chunks) == 1 {
		raw, err := s.d.Dispatch(ctx, llm.TaskSummarize, summaryPrompt(chunks[0].Text))
		if err != nil {
			return extract.Summary{}, err
		}
		return extract.ParseSummary(raw, s.filter), nil
	}

	partials := make([]string, 0, len(chunks))
	for _, c := range chunks {
		raw, err := s.d.Dispatch(ctx, llm.TaskSummarize, chunkSummaryPrompt(c.Text, c.Index, len(chunks)))
		if err != nil {
			if errors.Is(err, llm.ErrAuth) {
				return extract.Summary{}, err
			}
			s.log.Warn("chunk summary failed, skipping", "chunk", c.Index, "err", err)
			continue
		}
		partials = append(partials, raw)
	}
	if len(partials) == 0 {
		return extract.Summary{}, fmt.Errorf("all %d chunk summaries failed", len(chunks))
	}

	raw, err := s.d.Dispatch(ctx, llm.TaskSummarize, combinePrompt(strings.Join(partials, "\n")))
	if err != nil {
		return extract.Summary{}, err
	}
	return extract.ParseSummary(raw, s.filter), nil
}
