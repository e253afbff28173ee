package config

import (
	"log/slog"
	"time"

	"github.com/caarlos0/env/v10"
)

// Config holds runtime configuration for all services. The core pipeline
// treats it as read-only after Load.
type Config struct {
	// Server
	Port     int    `env:"PORT" envDefault:"8080"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// Store
	StoreProvider string `env:"STORE_PROVIDER" envDefault:"postgres"` // "postgres" (production database)
	DBURL         string `env:"DB_URL"`

	// Queue
	QueueProvider string `env:"QUEUE_PROVIDER" envDefault:"nats"` // "nats" (required for gateway->worker handoff)
	QueueURL      string `env:"QUEUE_URL"`

	// Cache
	CacheProvider string        `env:"CACHE_PROVIDER" envDefault:"none"` // "redis" or "none"
	RedisAddr     string        `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string        `env:"REDIS_PASSWORD"`
	CacheTTL      time.Duration `env:"CACHE_TTL" envDefault:"1h"`

	// Completion API (Together-compatible)
	TogetherKey     string `env:"TOGETHER_API_KEY"`
	TogetherBaseURL string `env:"TOGETHER_BASE_URL" envDefault:"https://api.together.xyz/v1"`

	SummarizerModel string `env:"SUMMARIZER_MODEL" envDefault:"meta-llama/Llama-3.3-70B-Instruct-Turbo"`
	AdapterModel    string `env:"ADAPTER_MODEL" envDefault:"meta-llama/Llama-3.3-70B-Instruct-Turbo"`
	FlashcardModel  string `env:"FLASHCARD_MODEL" envDefault:"meta-llama/Llama-3.3-70B-Instruct-Turbo"`

	MaxTokens         int     `env:"MAX_TOKENS" envDefault:"2048"`
	Temperature       float64 `env:"TEMPERATURE" envDefault:"0.7"`
	TopP              float64 `env:"TOP_P" envDefault:"0.9"`
	RepetitionPenalty float64 `env:"REPETITION_PENALTY" envDefault:"1.1"`

	// Rate limiting. Together allows 60 requests per minute; the gap bounds
	// burst rate independently of the per-minute window.
	RequestsPerMinute int           `env:"REQUESTS_PER_MINUTE" envDefault:"60"`
	MinRequestGap     time.Duration `env:"MIN_REQUEST_GAP" envDefault:"1s"`

	// Text processing
	MaxChunkSize int `env:"MAX_CHUNK_SIZE" envDefault:"2000"`

	// Flashcards
	DefaultNumCards    int `env:"DEFAULT_NUM_CARDS" envDefault:"5"`
	MaxCardsPerRequest int `env:"MAX_CARDS_PER_REQUEST" envDefault:"3"`
	MaxQuestionLength  int `env:"MAX_QUESTION_LENGTH" envDefault:"150"`
	MaxAnswerLength    int `env:"MAX_ANSWER_LENGTH" envDefault:"300"`
}

// Load reads configuration from environment variables with defaults.
func Load() Config {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		slog.Warn("failed to parse env; using defaults where set", "err", err)
	}
	return cfg
}
