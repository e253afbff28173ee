package app

import (
	"fmt"
	"log/slog"

	"github.com/joho/godotenv"
	"github.com/nats-io/nats.go"

	"studykit/internal/cache"
	"studykit/internal/config"
	"studykit/internal/dispatch"
	"studykit/internal/extract"
	"studykit/internal/llm"
	"studykit/internal/logger"
	"studykit/internal/progress"
	"studykit/internal/queue"
	"studykit/internal/ratelimit"
	"studykit/internal/store"
	"studykit/internal/tasks"
)

// Deps bundles common runtime dependencies for services.
type Deps struct {
	Config config.Config
	Log    *slog.Logger
	Store  store.Store
	Queue  queue.Queue
	Cache  cache.Cache
	LLM    llm.Client

	Summarizer *tasks.Summarizer
	Adapter    *tasks.LevelAdapter
	Flashcards *tasks.FlashcardGenerator
}

// BuildGateway loads env, config, and the components the gateway needs.
// The gateway never dispatches completions itself.
func BuildGateway() (Deps, error) {
	cfg, log := loadBase("gateway")

	st, err := buildStore(cfg, log)
	if err != nil {
		return Deps{}, fmt.Errorf("failed to initialize store: %w", err)
	}
	q, err := buildQueue(cfg, log)
	if err != nil {
		return Deps{}, fmt.Errorf("failed to initialize queue: %w", err)
	}
	return Deps{Config: cfg, Log: log, Store: st, Queue: q}, nil
}

// BuildWorker wires the full pipeline: store, queue, cache, the completion
// client behind one shared rate gate, and the task orchestrators.
func BuildWorker(obs progress.Observer) (Deps, error) {
	cfg, log := loadBase("worker")

	st, err := buildStore(cfg, log)
	if err != nil {
		return Deps{}, fmt.Errorf("failed to initialize store: %w", err)
	}
	q, err := buildQueue(cfg, log)
	if err != nil {
		return Deps{}, fmt.Errorf("failed to initialize queue: %w", err)
	}
	c, err := buildCache(cfg, log)
	if err != nil {
		return Deps{}, fmt.Errorf("failed to initialize cache: %w", err)
	}

	deps := Deps{Config: cfg, Log: log, Store: st, Queue: q, Cache: c}
	if err := attachPipeline(&deps, obs); err != nil {
		return Deps{}, err
	}
	return deps, nil
}

// BuildLocal wires only the pipeline, for one-shot CLI runs with no
// store, queue, or cache.
func BuildLocal(obs progress.Observer) (Deps, error) {
	cfg, log := loadBase("studyctl")

	deps := Deps{Config: cfg, Log: log}
	if err := attachPipeline(&deps, obs); err != nil {
		return Deps{}, err
	}
	return deps, nil
}

func loadBase(service string) (config.Config, *slog.Logger) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file loaded", "err", err)
	}
	cfg := config.Load()
	return cfg, logger.New(cfg.LogLevel, service)
}

func attachPipeline(deps *Deps, obs progress.Observer) error {
	cfg := deps.Config
	client, err := buildLLM(cfg, deps.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize completion client: %w", err)
	}
	deps.LLM = client

	gate := ratelimit.New(cfg.RequestsPerMinute, cfg.MinRequestGap)
	d := dispatch.New(client, gate, deps.Log, obs)

	deps.Summarizer = tasks.NewSummarizer(d, deps.Log, cfg.MaxChunkSize)
	deps.Adapter = tasks.NewLevelAdapter(d, deps.Log, cfg.MaxChunkSize)
	deps.Flashcards = tasks.NewFlashcardGenerator(d, deps.Log, cfg.MaxChunkSize, tasks.FlashcardOptions{
		DefaultNumCards:    cfg.DefaultNumCards,
		MaxCardsPerRequest: cfg.MaxCardsPerRequest,
		Limits: extract.CardLimits{
			MaxQuestionLen: cfg.MaxQuestionLength,
			MaxAnswerLen:   cfg.MaxAnswerLength,
		},
	})
	return nil
}

func buildStore(cfg config.Config, log *slog.Logger) (store.Store, error) {
	switch cfg.StoreProvider {
	case "postgres":
		if cfg.DBURL == "" {
			return nil, fmt.Errorf("DB_URL is required when STORE_PROVIDER=postgres")
		}
		db, err := store.NewPostgres(cfg.DBURL)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Postgres: %w", err)
		}
		log.Info("using Postgres store")
		return db, nil
	default:
		return nil, fmt.Errorf("invalid STORE_PROVIDER: %s (valid option: postgres)", cfg.StoreProvider)
	}
}

func buildQueue(cfg config.Config, log *slog.Logger) (queue.Queue, error) {
	switch cfg.QueueProvider {
	case "nats":
		if cfg.QueueURL == "" {
			return nil, fmt.Errorf("QUEUE_URL is required when QUEUE_PROVIDER=nats")
		}
		nc, err := nats.Connect(cfg.QueueURL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to NATS: %w", err)
		}
		log.Info("using NATS queue")
		return queue.NewNATS(log, nc), nil
	default:
		return nil, fmt.Errorf("invalid QUEUE_PROVIDER: %s (valid option: nats)", cfg.QueueProvider)
	}
}

func buildCache(cfg config.Config, log *slog.Logger) (cache.Cache, error) {
	switch cfg.CacheProvider {
	case "redis":
		c, err := cache.NewRedisCache(cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to Redis: %w", err)
		}
		log.Info("using Redis result cache", "ttl", cfg.CacheTTL)
		return c, nil
	case "none", "":
		return cache.NewNoOpCache(), nil
	default:
		return nil, fmt.Errorf("invalid CACHE_PROVIDER: %s (valid options: redis, none)", cfg.CacheProvider)
	}
}

func buildLLM(cfg config.Config, log *slog.Logger) (llm.Client, error) {
	if cfg.TogetherKey == "" {
		return nil, fmt.Errorf("TOGETHER_API_KEY environment variable is not set")
	}
	params := map[llm.Task]llm.Params{
		llm.TaskSummarize:  taskParams(cfg, cfg.SummarizerModel),
		llm.TaskAdapt:      taskParams(cfg, cfg.AdapterModel),
		llm.TaskFlashcards: taskParams(cfg, cfg.FlashcardModel),
	}
	client, err := llm.NewTogetherClient(cfg.TogetherKey, cfg.TogetherBaseURL, params)
	if err != nil {
		return nil, err
	}
	log.Info("using Together completion client", "base_url", cfg.TogetherBaseURL)
	return client, nil
}

func taskParams(cfg config.Config, model string) llm.Params {
	return llm.Params{
		Model:             model,
		Temperature:       cfg.Temperature,
		TopP:              cfg.TopP,
		RepetitionPenalty: cfg.RepetitionPenalty,
		MaxTokens:         cfg.MaxTokens,
	}
}
