package tasks

import (
	"context"
	"errors"
	"log/slog"

	"studykit/internal/chunker"
	"studykit/internal/extract"
	"studykit/internal/llm"
)

// FlashcardSet is the result of one generation run. When no chunk produced
// a parseable card, Cards is empty and Raw carries the raw completions so
// callers can tell "nothing parsed" from "nothing requested".
type FlashcardSet struct {
	Cards []extract.Card
	Raw   []string
}

// FlashcardOptions bounds one generation run.
type FlashcardOptions struct {
	DefaultNumCards    int
	MaxCardsPerRequest int
	Limits             extract.CardLimits
}

// DefaultFlashcardOptions matches the front-end display constraints.
var DefaultFlashcardOptions = FlashcardOptions{
	DefaultNumCards:    5,
	MaxCardsPerRequest: 3,
	Limits:             extract.DefaultCardLimits,
}

// FlashcardGenerator produces question/answer cards from input text under
// a remaining-card budget, requesting at most MaxCardsPerRequest per call.
type FlashcardGenerator struct {
	d         Dispatcher
	log       *slog.Logger
	chunkSize int
	opts      FlashcardOptions
}

func NewFlashcardGenerator(d Dispatcher, log *slog.Logger, chunkSize int, opts FlashcardOptions) *FlashcardGenerator {
	if opts.DefaultNumCards <= 0 {
		opts.DefaultNumCards = DefaultFlashcardOptions.DefaultNumCards
	}
	if opts.MaxCardsPerRequest <= 0 {
		opts.MaxCardsPerRequest = DefaultFlashcardOptions.MaxCardsPerRequest
	}
	return &FlashcardGenerator{
		d:         d,
		log:       log,
		chunkSize: chunkSize,
		opts:      opts,
	}
}

func (g *FlashcardGenerator) Generate(ctx context.Context, text string, numCards int) (FlashcardSet, error) {
	if numCards <= 0 {
		numCards = g.opts.DefaultNumCards
	}

	parser := extract.NewCardParser(g.opts.Limits)
	chunks := chunker.Split(text, g.chunkSize)
	var set FlashcardSet
	remaining := numCards

	for _, c := range chunks {
		if remaining <= 0 {
			break
		}
		want := remaining
		if want > g.opts.MaxCardsPerRequest {
			want = g.opts.MaxCardsPerRequest
		}
		g.log.Info("requesting flashcards", "chunk", c.Index+1, "of", len(chunks), "cards", want)

		raw, err := g.d.Dispatch(ctx, llm.TaskFlashcards, flashcardPrompt(c.Text, want))
		if err != nil {
			if errors.Is(err, llm.ErrAuth) {
				return FlashcardSet{}, err
			}
			g.log.Warn("chunk flashcard generation failed, skipping", "chunk", c.Index, "err", err)
			continue
		}
		set.Raw = append(set.Raw, raw)
		if raw == "" {
			continue
		}
		for _, card := range parser.Parse(raw) {
			if remaining <= 0 {
				break
			}
			set.Cards = append(set.Cards, card)
			remaining--
		}
	}

	// Nothing parseable from any chunk: one retry against the whole input.
	if len(set.Cards) == 0 && text != "" {
		g.log.Warn("no flashcards generated from chunks, retrying with whole text")
		raw, err := g.d.Dispatch(ctx, llm.TaskFlashcards, flashcardPrompt(text, numCards))
		if err != nil {
			if errors.Is(err, llm.ErrAuth) {
				return FlashcardSet{}, err
			}
			g.log.Error("fallback flashcard generation failed", "err", err)
			return set, nil
		}
		set.Raw = append(set.Raw, raw)
		set.Cards = append(set.Cards, parser.Parse(raw)...)
	}

	return set, nil
}
