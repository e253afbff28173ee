package tasks

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/mock"

	"studykit/internal/llm"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// threeParagraphs returns input that splits into exactly 3 chunks at the
// given chunk size.
func threeParagraphs() (string, int) {
	p := strings.Repeat("alpha beta gamma delta. ", 4)
	return p + "\n\n" + p + "\n\n" + p, 100
}

func TestSummarizeSingleChunkOneDispatch(t *testing.T) {
	d := &MockDispatcher{}
	d.On("Dispatch", mock.Anything, llm.TaskSummarize, mock.Anything).
		Return("Summary:\nA short result.", nil).Once()

	s := NewSummarizer(d, discardLogger(), 2000)
	got, err := s.Summarize(context.Background(), "a short input text")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Text != "A short result." {
		t.Errorf("got %q", got.Text)
	}
	d.AssertNumberOfCalls(t, "Dispatch", 1)
}

func TestSummarizeMultiChunkCombines(t *testing.T) {
	text, chunkSize := threeParagraphs()

	d := &MockDispatcher{}
	d.On("Dispatch", mock.Anything, llm.TaskSummarize, mock.MatchedBy(func(p string) bool {
		return strings.HasPrefix(p, "Summarize the following part")
	})).Return("partial summary", nil).Times(3)
	d.On("Dispatch", mock.Anything, llm.TaskSummarize, mock.MatchedBy(func(p string) bool {
		return strings.Contains(p, "a set of summaries")
	})).Return("Summary:\nCombined result.\n\nKey Highlights:\n* **Findings:** something", nil).Once()

	s := NewSummarizer(d, discardLogger(), chunkSize)
	got, err := s.Summarize(context.Background(), text)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Text != "Combined result." {
		t.Errorf("got %q", got.Text)
	}
	if len(got.Highlights) != 1 {
		t.Errorf("expected 1 highlight, got %v", got.Highlights)
	}
	// 3 chunk summaries + 1 combining call.
	d.AssertNumberOfCalls(t, "Dispatch", 4)
}

func TestSummarizeSkipsFailedChunks(t *testing.T) {
	text, chunkSize := threeParagraphs()

	d := &MockDispatcher{}
	d.On("Dispatch", mock.Anything, llm.TaskSummarize, mock.MatchedBy(func(p string) bool {
		return strings.Contains(p, "part 2 of 3")
	})).Return("", llm.ErrTransient).Once()
	d.On("Dispatch", mock.Anything, llm.TaskSummarize, mock.MatchedBy(func(p string) bool {
		return strings.HasPrefix(p, "Summarize the following part") && !strings.Contains(p, "part 2 of 3")
	})).Return("partial", nil).Times(2)
	d.On("Dispatch", mock.Anything, llm.TaskSummarize, mock.MatchedBy(func(p string) bool {
		return strings.Contains(p, "a set of summaries")
	})).Return("Summary:\nDegraded but present.", nil).Once()

	s := NewSummarizer(d, discardLogger(), chunkSize)
	got, err := s.Summarize(context.Background(), text)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Text != "Degraded but present." {
		t.Errorf("got %q", got.Text)
	}
}

func TestSummarizeAuthErrorPropagates(t *testing.T) {
	text, chunkSize := threeParagraphs()

	d := &MockDispatcher{}
	d.On("Dispatch", mock.Anything, llm.TaskSummarize, mock.Anything).
		Return("", llm.ErrAuth).Once()

	s := NewSummarizer(d, discardLogger(), chunkSize)
	_, err := s.Summarize(context.Background(), text)
	if !errors.Is(err, llm.ErrAuth) {
		t.Errorf("expected ErrAuth, got %v", err)
	}
	// No further chunk calls once the credential is known bad.
	d.AssertNumberOfCalls(t, "Dispatch", 1)
}

func TestSummarizeEmptyInputNoDispatch(t *testing.T) {
	d := &MockDispatcher{}
	s := NewSummarizer(d, discardLogger(), 2000)

	got, err := s.Summarize(context.Background(), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Text != "" || len(got.Highlights) != 0 {
		t.Errorf("expected empty summary, got %+v", got)
	}
	d.AssertNumberOfCalls(t, "Dispatch", 0)
}
