package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"studykit/internal/app"
	"studykit/internal/cache"
	"studykit/internal/extract"
	"studykit/internal/httputil"
	"studykit/internal/llm"
	"studykit/internal/progress"
	"studykit/internal/queue"
	"studykit/internal/store"
	"studykit/internal/tasks"
)

type processTaskPayload struct {
	RunID    uuid.UUID `json:"run_id"`
	Task     string    `json:"task"`
	Text     string    `json:"text"`
	Level    string    `json:"level,omitempty"`
	NumCards int       `json:"num_cards,omitempty"`
}

func main() {
	var deps app.Deps
	obs := progress.Func(func(message string, fraction float64) {
		if deps.Log == nil {
			return
		}
		if fraction == progress.NoFraction {
			deps.Log.Info(message)
			return
		}
		deps.Log.Info(message, "fraction", fmt.Sprintf("%.2f", fraction))
	})

	deps, err := app.BuildWorker(obs)
	if err != nil {
		slog.Default().Error("failed to build dependencies", "err", err)
		os.Exit(1)
	}
	defer deps.Cache.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	w := &worker{deps: deps}
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		deps.Log.Info("worker consuming tasks")
		return deps.Queue.Worker(ctx, queue.TaskTypeProcess, w.handle)
	})
	g.Go(func() error {
		r := httputil.NewRouter(deps.Log)
		r.Get("/healthz", httputil.HealthHandler(deps.Log))
		srv := &http.Server{Addr: fmt.Sprintf(":%d", deps.Config.Port), Handler: r}
		go func() {
			<-ctx.Done()
			_ = srv.Shutdown(context.Background())
		}()
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		deps.Log.Error("worker stopped", "err", err)
		os.Exit(1)
	}
	deps.Log.Info("worker shut down")
}

type worker struct {
	deps app.Deps
}

// handle processes one run end to end. A non-nil return re-enqueues the
// task; fatal completion errors mark the run failed and return nil instead.
func (w *worker) handle(ctx context.Context, task queue.Task) error {
	var p processTaskPayload
	if err := json.Unmarshal(task.Payload, &p); err != nil {
		w.deps.Log.Error("failed to decode run payload", "err", err)
		return nil
	}
	log := w.deps.Log.With("run_id", p.RunID, "task", p.Task)

	key := cache.Key(p.Task, p.Level, p.NumCards, p.Text)
	if cached, err := w.deps.Cache.GetResult(ctx, key); err != nil {
		log.Warn("cache lookup failed", "err", err)
	} else if cached != nil {
		log.Info("serving run from cache")
		if err := w.persist(ctx, p.RunID, cached); err != nil {
			return err
		}
		return w.deps.Store.UpdateRunStatus(ctx, p.RunID, store.StatusReady, "")
	}

	result, err := w.process(ctx, p)
	if err != nil {
		if fatal(err) || lastAttempt(task) {
			log.Error("run failed", "err", err)
			if uerr := w.deps.Store.UpdateRunStatus(ctx, p.RunID, store.StatusFailed, err.Error()); uerr != nil {
				log.Error("failed to mark run failed", "err", uerr)
			}
			return nil
		}
		return err
	}

	if err := w.persist(ctx, p.RunID, result); err != nil {
		return err
	}
	if err := w.deps.Store.UpdateRunStatus(ctx, p.RunID, store.StatusReady, ""); err != nil {
		return err
	}
	if err := w.deps.Cache.SetResult(ctx, key, result, w.deps.Config.CacheTTL); err != nil {
		log.Warn("failed to cache result", "err", err)
	}
	log.Info("run ready")
	return nil
}

func (w *worker) process(ctx context.Context, p processTaskPayload) (*cache.Result, error) {
	switch p.Task {
	case "summarize":
		summary, err := w.deps.Summarizer.Summarize(ctx, p.Text)
		if err != nil {
			return nil, err
		}
		return &cache.Result{Task: p.Task, Summary: summary.Text, Highlights: summary.Highlights}, nil
	case "adapt":
		adaptation, err := w.deps.Adapter.Adapt(ctx, p.Text, tasks.NormalizeLevel(p.Level))
		if err != nil {
			return nil, err
		}
		return &cache.Result{Task: p.Task, Adapted: adaptation.Text, Complexity: adaptation.Complexity}, nil
	case "flashcards":
		set, err := w.deps.Flashcards.Generate(ctx, p.Text, p.NumCards)
		if err != nil {
			return nil, err
		}
		return &cache.Result{Task: p.Task, Cards: set.Cards}, nil
	default:
		return nil, fmt.Errorf("unknown task %q", p.Task)
	}
}

func (w *worker) persist(ctx context.Context, id uuid.UUID, result *cache.Result) error {
	switch result.Task {
	case "summarize":
		return w.deps.Store.SaveSummary(ctx, id, result.Summary, result.Highlights)
	case "adapt":
		return w.deps.Store.SaveAdaptation(ctx, id, result.Adapted, result.Complexity)
	case "flashcards":
		return w.deps.Store.SaveCards(ctx, id, storeCards(id, result.Cards))
	default:
		return fmt.Errorf("unknown task %q", result.Task)
	}
}

func storeCards(id uuid.UUID, cards []extract.Card) []store.Card {
	out := make([]store.Card, len(cards))
	for i, c := range cards {
		out[i] = store.Card{RunID: id, Ord: i, Question: c.Question, Answer: c.Answer}
	}
	return out
}

// lastAttempt reports whether a failure now would exhaust the task's
// redelivery budget, so the run must not be left in processing.
func lastAttempt(task queue.Task) bool {
	return task.MaxAttempts > 0 && task.Attempts+1 >= task.MaxAttempts
}

// fatal reports errors that another attempt cannot fix. Dispatch already
// retried transient failures, so rate limits and auth problems land here.
func fatal(err error) bool {
	return errors.Is(err, llm.ErrAuth) ||
		errors.Is(err, llm.ErrBadRequest) ||
		errors.Is(err, llm.ErrRateLimited)
}
