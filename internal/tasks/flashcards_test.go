package tasks

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/mock"

	"studykit/internal/llm"
)

func newGenerator(d Dispatcher, chunkSize int) *FlashcardGenerator {
	return NewFlashcardGenerator(d, discardLogger(), chunkSize, DefaultFlashcardOptions)
}

func cardsResponse(n, offset int) string {
	var b strings.Builder
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, "Question: What is concept %d?\nAnswer: Concept %d is a thing.\n", offset+i, offset+i)
	}
	return b.String()
}

func TestGenerateStopsOnceBudgetExhausted(t *testing.T) {
	text, chunkSize := threeParagraphs()

	// Each of the 3 chunks yields 2 unique cards; a budget of 4 must stop
	// after the second chunk even though one remains.
	d := &MockDispatcher{}
	for i := 0; i < 3; i++ {
		d.On("Dispatch", mock.Anything, llm.TaskFlashcards, mock.Anything).
			Return(cardsResponse(2, i*10), nil).Once()
	}

	g := newGenerator(d, chunkSize)
	set, err := g.Generate(context.Background(), text, 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(set.Cards) != 4 {
		t.Errorf("expected 4 cards, got %d", len(set.Cards))
	}
	d.AssertNumberOfCalls(t, "Dispatch", 2)
}

func TestGenerateRequestsAtMostThreePerCall(t *testing.T) {
	d := &MockDispatcher{}
	d.On("Dispatch", mock.Anything, llm.TaskFlashcards, mock.MatchedBy(func(p string) bool {
		return strings.HasPrefix(p, "Create 3 flashcards")
	})).Return(cardsResponse(3, 0), nil).Once()

	g := newGenerator(d, 2000)
	set, err := g.Generate(context.Background(), "short text", 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(set.Cards) != 3 {
		t.Errorf("expected 3 cards from the single chunk, got %d", len(set.Cards))
	}
	d.AssertExpectations(t)
}

func TestGenerateDefaultBudget(t *testing.T) {
	d := &MockDispatcher{}
	d.On("Dispatch", mock.Anything, llm.TaskFlashcards, mock.MatchedBy(func(p string) bool {
		return strings.HasPrefix(p, "Create 3 flashcards")
	})).Return(cardsResponse(3, 0), nil).Once()

	g := newGenerator(d, 2000)
	set, err := g.Generate(context.Background(), "short text", 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(set.Cards) != 3 {
		t.Errorf("got %d cards", len(set.Cards))
	}
}

func TestGenerateFallbackOnUnparseableChunks(t *testing.T) {
	d := &MockDispatcher{}
	// Chunk pass yields nothing parseable.
	d.On("Dispatch", mock.Anything, llm.TaskFlashcards, mock.MatchedBy(func(p string) bool {
		return strings.HasPrefix(p, "Create 3 flashcards")
	})).Return("no markers at all", nil).Once()
	// Whole-text fallback asks for the full budget.
	d.On("Dispatch", mock.Anything, llm.TaskFlashcards, mock.MatchedBy(func(p string) bool {
		return strings.HasPrefix(p, "Create 5 flashcards")
	})).Return(cardsResponse(2, 0), nil).Once()

	g := newGenerator(d, 2000)
	set, err := g.Generate(context.Background(), "short text", 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(set.Cards) != 2 {
		t.Errorf("expected 2 fallback cards, got %d", len(set.Cards))
	}
	d.AssertExpectations(t)
}

func TestGenerateNothingParseableReturnsRawDebug(t *testing.T) {
	d := &MockDispatcher{}
	d.On("Dispatch", mock.Anything, llm.TaskFlashcards, mock.Anything).
		Return("still no markers", nil).Times(2)

	g := newGenerator(d, 2000)
	set, err := g.Generate(context.Background(), "short text", 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(set.Cards) != 0 {
		t.Errorf("expected no cards, got %d", len(set.Cards))
	}
	if len(set.Raw) != 2 {
		t.Errorf("expected 2 raw records (chunk + fallback), got %d", len(set.Raw))
	}
}

func TestGenerateDeduplicatesAcrossChunks(t *testing.T) {
	text, chunkSize := threeParagraphs()

	d := &MockDispatcher{}
	// Every chunk returns the same card.
	d.On("Dispatch", mock.Anything, llm.TaskFlashcards, mock.Anything).
		Return("Question: A?\nAnswer: B.", nil).Times(3)

	g := newGenerator(d, chunkSize)
	set, err := g.Generate(context.Background(), text, 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(set.Cards) != 1 {
		t.Errorf("expected 1 deduplicated card, got %d", len(set.Cards))
	}
}

func TestGenerateAuthErrorPropagates(t *testing.T) {
	d := &MockDispatcher{}
	d.On("Dispatch", mock.Anything, llm.TaskFlashcards, mock.Anything).
		Return("", llm.ErrAuth).Once()

	g := newGenerator(d, 2000)
	_, err := g.Generate(context.Background(), "text", 5)
	if !errors.Is(err, llm.ErrAuth) {
		t.Errorf("expected ErrAuth, got %v", err)
	}
	d.AssertNumberOfCalls(t, "Dispatch", 1)
}
