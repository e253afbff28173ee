package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"studykit/internal/app"
	"studykit/internal/arxiv"
	"studykit/internal/httputil"
	"studykit/internal/queue"
	"studykit/internal/store"
	"studykit/internal/tasks"
)

// processTaskPayload travels from the gateway to a worker over the queue.
// The input text rides in the payload; only metadata is persisted.
type processTaskPayload struct {
	RunID    uuid.UUID `json:"run_id"`
	Task     string    `json:"task"`
	Text     string    `json:"text"`
	Level    string    `json:"level,omitempty"`
	NumCards int       `json:"num_cards,omitempty"`
}

type createRunRequest struct {
	Task     string `json:"task" validate:"required,oneof=summarize adapt flashcards"`
	Text     string `json:"text" validate:"required,min=1"`
	Level    string `json:"level" validate:"omitempty,oneof=Beginner Intermediate Expert beginner intermediate expert advanced"`
	NumCards int    `json:"num_cards" validate:"omitempty,min=1,max=20"`
}

func main() {
	deps, err := app.BuildGateway()
	if err != nil {
		slog.Default().Error("failed to build dependencies", "err", err)
		os.Exit(1)
	}
	r := httputil.NewRouter(deps.Log)

	r.Post("/api/runs", createRunHandler(deps))
	r.Get("/api/runs/{id}", getRunHandler(deps))
	r.Get("/api/arxiv/{id}", arxivHandler(deps))
	r.Get("/healthz", httputil.HealthHandler(deps.Log))

	addr := fmt.Sprintf(":%d", deps.Config.Port)
	deps.Log.Info("gateway listening", "addr", addr)
	if err := http.ListenAndServe(addr, r); err != nil {
		deps.Log.Error("server failed", "err", err)
	}
}

func createRunHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createRunRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httputil.Fail(deps.Log, w, "invalid payload", err, http.StatusBadRequest)
			return
		}
		if err := httputil.Validator.Struct(&req); err != nil {
			httputil.ValidationError(deps.Log, w, err)
			return
		}

		ctx := r.Context()
		level := ""
		if req.Task == "adapt" {
			level = string(tasks.NormalizeLevel(req.Level))
		}
		numCards := 0
		if req.Task == "flashcards" {
			numCards = req.NumCards
			if numCards == 0 {
				numCards = deps.Config.DefaultNumCards
			}
		}

		run, err := deps.Store.CreateRun(ctx, store.Run{
			Task:       req.Task,
			Level:      level,
			NumCards:   numCards,
			InputChars: len(req.Text),
		})
		if err != nil {
			httputil.Fail(deps.Log, w, "failed to persist run", err, http.StatusInternalServerError)
			return
		}

		payload, err := json.Marshal(processTaskPayload{
			RunID:    run.ID,
			Task:     req.Task,
			Text:     req.Text,
			Level:    level,
			NumCards: numCards,
		})
		if err != nil {
			httputil.Fail(deps.Log, w, "failed to encode task", err, http.StatusInternalServerError)
			return
		}
		task := queue.Task{Type: queue.TaskTypeProcess, Payload: payload, MaxAttempts: 5}
		if err := queue.EnqueueWithRetry(ctx, deps.Queue, task, 3, 0); err != nil {
			_ = deps.Store.UpdateRunStatus(ctx, run.ID, store.StatusFailed, "enqueue failed")
			httputil.Fail(deps.Log, w, "failed to enqueue run", err, http.StatusInternalServerError)
			return
		}

		httputil.WriteJSON(w, http.StatusAccepted, map[string]any{
			"run_id": run.ID,
			"status": run.Status,
		})
	}
}

func getRunHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			httputil.Fail(deps.Log, w, "invalid run id", err, http.StatusBadRequest)
			return
		}

		run, err := deps.Store.GetRun(ctx, id)
		if errors.Is(err, store.ErrRunNotFound) {
			httputil.Fail(deps.Log, w, "run not found", err, http.StatusNotFound)
			return
		}
		if err != nil {
			httputil.Fail(deps.Log, w, "failed to load run", err, http.StatusInternalServerError)
			return
		}

		body := map[string]any{
			"run_id":     run.ID,
			"task":       run.Task,
			"status":     run.Status,
			"created_at": run.CreatedAt,
		}
		if run.Error != "" {
			body["error"] = run.Error
		}
		switch run.Task {
		case "summarize":
			body["summary"] = run.Summary
			body["highlights"] = run.Highlights
		case "adapt":
			body["level"] = run.Level
			body["adapted"] = run.Adapted
			body["complexity"] = run.Complexity
		case "flashcards":
			cards, err := deps.Store.ListCards(ctx, run.ID)
			if err != nil {
				httputil.Fail(deps.Log, w, "failed to load flashcards", err, http.StatusInternalServerError)
				return
			}
			body["cards"] = cards
		}
		httputil.WriteJSON(w, http.StatusOK, body)
	}
}

func arxivHandler(deps app.Deps) http.HandlerFunc {
	fetcher := arxiv.Unsupported{}
	return func(w http.ResponseWriter, r *http.Request) {
		_, err := fetcher.Fetch(r.Context(), chi.URLParam(r, "id"))
		if errors.Is(err, arxiv.ErrNotSupported) {
			httputil.Fail(deps.Log, w, "arxiv retrieval is not implemented", err, http.StatusNotImplemented)
			return
		}
		// Unreachable until a real fetcher exists.
		httputil.WriteJSON(w, http.StatusOK, map[string]any{"text": ""})
	}
}
