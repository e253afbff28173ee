package main

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"studykit/internal/app"
	"studykit/internal/cache"
	"studykit/internal/config"
	"studykit/internal/extract"
	"studykit/internal/llm"
	"studykit/internal/queue"
	"studykit/internal/store"
	"studykit/internal/tasks"
)

func newTestWorker(st store.Store, c cache.Cache, d tasks.Dispatcher) *worker {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := config.Config{MaxChunkSize: 2000, CacheTTL: time.Hour}
	return &worker{deps: app.Deps{
		Config:     cfg,
		Log:        log,
		Store:      st,
		Cache:      c,
		Summarizer: tasks.NewSummarizer(d, log, cfg.MaxChunkSize),
		Adapter:    tasks.NewLevelAdapter(d, log, cfg.MaxChunkSize),
		Flashcards: tasks.NewFlashcardGenerator(d, log, cfg.MaxChunkSize, tasks.DefaultFlashcardOptions),
	}}
}

func processTask(t *testing.T, p processTaskPayload, attempts, maxAttempts int) queue.Task {
	t.Helper()
	payload, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("Failed to marshal payload: %v", err)
	}
	return queue.Task{
		Type:        queue.TaskTypeProcess,
		Payload:     payload,
		Attempts:    attempts,
		MaxAttempts: maxAttempts,
	}
}

func TestHandleSummarizeRun(t *testing.T) {
	runID := uuid.New()
	text := "Quantum entanglement links the states of two particles."

	st := &store.MockStore{}
	c := &cache.MockCache{}
	d := &tasks.MockDispatcher{}

	key := cache.Key("summarize", "", 0, text)
	c.On("GetResult", mock.Anything, key).Return(nil, nil).Once()
	d.On("Dispatch", mock.Anything, llm.TaskSummarize, mock.Anything).
		Return("Summary:\nParticles share state.\n\nKey Highlights:\n* states are linked", nil).Once()
	st.On("SaveSummary", mock.Anything, runID, "Particles share state.", []string{"* states are linked"}).
		Return(nil).Once()
	st.On("UpdateRunStatus", mock.Anything, runID, store.StatusReady, "").Return(nil).Once()
	c.On("SetResult", mock.Anything, key, mock.MatchedBy(func(r *cache.Result) bool {
		return r.Task == "summarize" && r.Summary == "Particles share state."
	}), time.Hour).Return(nil).Once()

	w := newTestWorker(st, c, d)
	err := w.handle(context.Background(), processTask(t, processTaskPayload{
		RunID: runID, Task: "summarize", Text: text,
	}, 0, 5))
	if err != nil {
		t.Fatalf("handle returned error: %v", err)
	}
	st.AssertExpectations(t)
	c.AssertExpectations(t)
	d.AssertExpectations(t)
}

func TestHandleServesCachedResult(t *testing.T) {
	runID := uuid.New()
	text := "Some text."

	st := &store.MockStore{}
	c := &cache.MockCache{}
	d := &tasks.MockDispatcher{}

	key := cache.Key("flashcards", "", 3, text)
	c.On("GetResult", mock.Anything, key).Return(&cache.Result{
		Task:  "flashcards",
		Cards: []extract.Card{{Question: "What is it?", Answer: "A thing."}},
	}, nil).Once()
	st.On("SaveCards", mock.Anything, runID, []store.Card{
		{RunID: runID, Ord: 0, Question: "What is it?", Answer: "A thing."},
	}).Return(nil).Once()
	st.On("UpdateRunStatus", mock.Anything, runID, store.StatusReady, "").Return(nil).Once()

	w := newTestWorker(st, c, d)
	err := w.handle(context.Background(), processTask(t, processTaskPayload{
		RunID: runID, Task: "flashcards", Text: text, NumCards: 3,
	}, 0, 5))
	if err != nil {
		t.Fatalf("handle returned error: %v", err)
	}
	st.AssertExpectations(t)
	c.AssertExpectations(t)
	d.AssertNotCalled(t, "Dispatch", mock.Anything, mock.Anything, mock.Anything)
}

func TestHandleAuthFailureMarksRunFailed(t *testing.T) {
	runID := uuid.New()

	st := &store.MockStore{}
	c := &cache.MockCache{}
	d := &tasks.MockDispatcher{}

	c.On("GetResult", mock.Anything, mock.Anything).Return(nil, nil).Once()
	d.On("Dispatch", mock.Anything, llm.TaskSummarize, mock.Anything).
		Return("", llm.ErrAuth).Once()
	st.On("UpdateRunStatus", mock.Anything, runID, store.StatusFailed, mock.Anything).
		Return(nil).Once()

	w := newTestWorker(st, c, d)
	err := w.handle(context.Background(), processTask(t, processTaskPayload{
		RunID: runID, Task: "summarize", Text: "Some text.",
	}, 0, 5))
	if err != nil {
		t.Fatalf("Fatal errors must not be re-enqueued, got: %v", err)
	}
	st.AssertExpectations(t)
}

func TestHandleTransientFailureIsRequeued(t *testing.T) {
	runID := uuid.New()

	st := &store.MockStore{}
	c := &cache.MockCache{}
	d := &tasks.MockDispatcher{}

	c.On("GetResult", mock.Anything, mock.Anything).Return(nil, nil).Once()
	d.On("Dispatch", mock.Anything, llm.TaskSummarize, mock.Anything).
		Return("", llm.ErrTransient).Once()

	w := newTestWorker(st, c, d)
	err := w.handle(context.Background(), processTask(t, processTaskPayload{
		RunID: runID, Task: "summarize", Text: "Some text.",
	}, 0, 5))
	if err == nil {
		t.Fatal("Expected an error so the task is re-enqueued")
	}
	st.AssertNotCalled(t, "UpdateRunStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestHandleLastAttemptMarksRunFailed(t *testing.T) {
	runID := uuid.New()

	st := &store.MockStore{}
	c := &cache.MockCache{}
	d := &tasks.MockDispatcher{}

	c.On("GetResult", mock.Anything, mock.Anything).Return(nil, nil).Once()
	d.On("Dispatch", mock.Anything, llm.TaskSummarize, mock.Anything).
		Return("", llm.ErrTransient).Once()
	st.On("UpdateRunStatus", mock.Anything, runID, store.StatusFailed, mock.Anything).
		Return(nil).Once()

	w := newTestWorker(st, c, d)
	err := w.handle(context.Background(), processTask(t, processTaskPayload{
		RunID: runID, Task: "summarize", Text: "Some text.",
	}, 4, 5))
	if err != nil {
		t.Fatalf("Exhausted tasks must not be re-enqueued, got: %v", err)
	}
	st.AssertExpectations(t)
}

func TestHandleMalformedPayloadIsDropped(t *testing.T) {
	w := newTestWorker(&store.MockStore{}, &cache.MockCache{}, &tasks.MockDispatcher{})
	err := w.handle(context.Background(), queue.Task{
		Type:    queue.TaskTypeProcess,
		Payload: []byte("{not json"),
	})
	if err != nil {
		t.Fatalf("Malformed payloads must be dropped, got: %v", err)
	}
}

func TestHandleCacheFailureFallsThrough(t *testing.T) {
	runID := uuid.New()
	text := "Some text."

	st := &store.MockStore{}
	c := &cache.MockCache{}
	d := &tasks.MockDispatcher{}

	c.On("GetResult", mock.Anything, mock.Anything).Return(nil, context.DeadlineExceeded).Once()
	d.On("Dispatch", mock.Anything, llm.TaskAdapt, mock.Anything).
		Return("The adapted text.", nil).Once()
	st.On("SaveAdaptation", mock.Anything, runID, "The adapted text.", mock.Anything).
		Return(nil).Once()
	st.On("UpdateRunStatus", mock.Anything, runID, store.StatusReady, "").Return(nil).Once()
	c.On("SetResult", mock.Anything, mock.Anything, mock.Anything, time.Hour).Return(nil).Once()

	w := newTestWorker(st, c, d)
	err := w.handle(context.Background(), processTask(t, processTaskPayload{
		RunID: runID, Task: "adapt", Text: text, Level: "Intermediate",
	}, 0, 5))
	if err != nil {
		t.Fatalf("handle returned error: %v", err)
	}
	st.AssertExpectations(t)
	d.AssertExpectations(t)
}
