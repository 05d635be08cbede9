package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config contains all runtime settings for the booking assistant service.
type Config struct {
	BindAddr         string
	ShutdownTimeout  time.Duration
	MetricsNamespace string
	AllowedOrigins   []string
	LogLevel         string
	LogFormat        string

	ConversationTTL time.Duration

	LLMProvider          string
	OpenAIAPIKey         string
	OpenAIBaseURL        string
	OpenAIModel          string
	OpenAIEmbeddingModel string
	PromptsPath          string

	EmbeddingDim        int
	EmbeddingRatePerSec float64

	DatabaseURL string
	RedisURL    string

	BackendMode string
	BackendURL  string

	MemoryContextLimit   int
	MemoryWriteQueueSize int
	MemoryWriteRetries   int

	USDToINRRate float64
}

// Load reads environment variables (after an optional .env file) and applies safe defaults.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		BindAddr:             envOrDefault("APP_BIND_ADDR", ":8080"),
		MetricsNamespace:     envOrDefault("APP_METRICS_NAMESPACE", "flightdesk"),
		AllowedOrigins:       listFromEnv("APP_ALLOWED_ORIGINS"),
		LogLevel:             strings.ToLower(envOrDefault("APP_LOG_LEVEL", "info")),
		LogFormat:            strings.ToLower(envOrDefault("APP_LOG_FORMAT", "json")),
		LLMProvider:          strings.ToLower(envOrDefault("LLM_PROVIDER", "auto")),
		OpenAIAPIKey:         stringsTrimSpace("OPENAI_API_KEY"),
		OpenAIBaseURL:        stringsTrimSpace("OPENAI_BASE_URL"),
		OpenAIModel:          envOrDefault("OPENAI_MODEL", "gpt-4o-mini"),
		OpenAIEmbeddingModel: envOrDefault("OPENAI_EMBEDDING_MODEL", "text-embedding-3-small"),
		PromptsPath:          stringsTrimSpace("LLM_PROMPTS_PATH"),
		DatabaseURL:          stringsTrimSpace("DATABASE_URL"),
		RedisURL:             stringsTrimSpace("REDIS_URL"),
		BackendMode:          strings.ToLower(envOrDefault("BACKEND_MODE", "local")),
		BackendURL:           stringsTrimSpace("BACKEND_URL"),
		ShutdownTimeout:      15 * time.Second,
		ConversationTTL:      30 * time.Minute,
		EmbeddingDim:         768,
		EmbeddingRatePerSec:  5,
		MemoryContextLimit:   10,
		MemoryWriteQueueSize: 256,
		MemoryWriteRetries:   3,
		USDToINRRate:         83,
	}
	if len(cfg.AllowedOrigins) == 0 {
		cfg.AllowedOrigins = []string{"*"}
	}

	var err error
	cfg.ShutdownTimeout, err = durationFromEnv("APP_SHUTDOWN_TIMEOUT", cfg.ShutdownTimeout)
	if err != nil {
		return Config{}, err
	}
	cfg.ConversationTTL, err = durationFromEnv("APP_CONVERSATION_TTL", cfg.ConversationTTL)
	if err != nil {
		return Config{}, err
	}
	cfg.EmbeddingDim, err = intFromEnv("EMBEDDING_DIM", cfg.EmbeddingDim)
	if err != nil {
		return Config{}, err
	}
	cfg.EmbeddingRatePerSec, err = floatFromEnv("EMBEDDING_RATE_PER_SEC", cfg.EmbeddingRatePerSec)
	if err != nil {
		return Config{}, err
	}
	cfg.MemoryContextLimit, err = intFromEnv("MEMORY_CONTEXT_LIMIT", cfg.MemoryContextLimit)
	if err != nil {
		return Config{}, err
	}
	cfg.MemoryWriteQueueSize, err = intFromEnv("MEMORY_WRITE_QUEUE_SIZE", cfg.MemoryWriteQueueSize)
	if err != nil {
		return Config{}, err
	}
	cfg.MemoryWriteRetries, err = intFromEnv("MEMORY_WRITE_RETRIES", cfg.MemoryWriteRetries)
	if err != nil {
		return Config{}, err
	}
	cfg.USDToINRRate, err = floatFromEnv("USD_TO_INR_RATE", cfg.USDToINRRate)
	if err != nil {
		return Config{}, err
	}

	if cfg.ConversationTTL < time.Minute {
		return Config{}, fmt.Errorf("APP_CONVERSATION_TTL must be at least 1m")
	}
	if cfg.EmbeddingDim <= 0 {
		return Config{}, fmt.Errorf("EMBEDDING_DIM must be positive")
	}
	if cfg.EmbeddingRatePerSec <= 0 {
		return Config{}, fmt.Errorf("EMBEDDING_RATE_PER_SEC must be positive")
	}
	if cfg.MemoryContextLimit <= 0 {
		return Config{}, fmt.Errorf("MEMORY_CONTEXT_LIMIT must be positive")
	}
	if cfg.MemoryWriteQueueSize <= 0 {
		return Config{}, fmt.Errorf("MEMORY_WRITE_QUEUE_SIZE must be positive")
	}
	if cfg.MemoryWriteRetries < 0 {
		return Config{}, fmt.Errorf("MEMORY_WRITE_RETRIES must be >= 0")
	}
	if cfg.USDToINRRate <= 0 {
		return Config{}, fmt.Errorf("USD_TO_INR_RATE must be positive")
	}
	switch cfg.LLMProvider {
	case "auto", "openai", "mock":
	default:
		return Config{}, fmt.Errorf("invalid LLM_PROVIDER %q (expected auto|openai|mock)", cfg.LLMProvider)
	}
	switch cfg.BackendMode {
	case "local":
	case "http":
		if cfg.BackendURL == "" {
			return Config{}, fmt.Errorf("BACKEND_URL is required when BACKEND_MODE=http")
		}
	default:
		return Config{}, fmt.Errorf("invalid BACKEND_MODE %q (expected local|http)", cfg.BackendMode)
	}
	switch cfg.LogFormat {
	case "json", "text":
	default:
		return Config{}, fmt.Errorf("invalid APP_LOG_FORMAT %q (expected json|text)", cfg.LogFormat)
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	return v
}

func stringsTrimSpace(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func listFromEnv(key string) []string {
	raw := stringsTrimSpace(key)
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func durationFromEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := stringsTrimSpace(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s parse error: %w", key, err)
	}
	return d, nil
}

func intFromEnv(key string, fallback int) (int, error) {
	v := stringsTrimSpace(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s parse error: %w", key, err)
	}
	return n, nil
}

func floatFromEnv(key string, fallback float64) (float64, error) {
	v := stringsTrimSpace(key)
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%s parse error: %w", key, err)
	}
	return f, nil
}
