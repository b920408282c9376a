package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/PabloGalante/lifeline/internal/domain"
)

type Provider string

const (
	ProviderGemini Provider = "gemini"
	ProviderOpenAI Provider = "openai"
	ProviderMock   Provider = "mock"
)

type GeminiBackend string

const (
	GeminiBackendAPI    GeminiBackend = "gemini_api"
	GeminiBackendVertex GeminiBackend = "vertex"
)

const (
	StorageNone      = "none"
	StorageMemory    = "memory"
	StorageFirestore = "firestore"
	StorageRedis     = "redis"
)

type Config struct {
	Port  string
	Debug bool

	Provider      Provider
	ModelName     string
	GeminiAPIKey  string
	GeminiBackend GeminiBackend
	GeminiBaseURL string
	OpenAIAPIKey  string
	OpenAIBaseURL string

	GCPProjectID string
	GCPLocation  string

	TokenizerPath string
	ModelPath     string
	ScorerAddr    string // remote gRPC scorer, overrides ModelPath

	GenerateTimeout          time.Duration
	MaxConcurrentGenerations int64

	StorageBackend string // "none", "memory", "firestore" or "redis"
	RedisURL       string
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getBoolEnv(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	if v == "1" || strings.EqualFold(v, "true") {
		return true
	}
	return false
}

func getDurationEnv(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("%w: %s must be a positive duration, got %q", domain.ErrConfiguration, key, v)
	}
	return d, nil
}

func getIntEnv(key string, def int64) (int64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%w: %s must be a positive integer, got %q", domain.ErrConfiguration, key, v)
	}
	return n, nil
}

// Load reads an optional .env file and the environment, and builds the config.
// Variables already set in the environment win over the .env file.
func Load() (*Config, error) {
	envFile := getEnv("LIFELINE_ENV_FILE", ".env")
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: reading %s: %v", domain.ErrConfiguration, envFile, err)
	}

	provider := Provider(strings.ToLower(getEnv("LIFELINE_LLM_PROVIDER", string(ProviderGemini))))

	cfg := &Config{
		Port:  getEnv("LIFELINE_PORT", getEnv("PORT", "8080")),
		Debug: getBoolEnv("LIFELINE_DEBUG", false),

		Provider:      provider,
		ModelName:     getEnv("LIFELINE_MODEL_NAME", defaultModelName(provider)),
		GeminiAPIKey:  os.Getenv("GEMINI_API_KEY"),
		GeminiBackend: GeminiBackend(strings.ToLower(getEnv("LIFELINE_GEMINI_BACKEND", string(GeminiBackendAPI)))),
		GeminiBaseURL: os.Getenv("LIFELINE_GEMINI_BASE_URL"),
		OpenAIAPIKey:  os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL: os.Getenv("OPENAI_BASE_URL"),

		GCPProjectID: getEnv("LIFELINE_GCP_PROJECT", ""),
		GCPLocation:  getEnv("LIFELINE_GCP_LOCATION", "us-central1"),

		TokenizerPath: getEnv("LIFELINE_TOKENIZER_PATH", "tokenizer.json"),
		ModelPath:     getEnv("LIFELINE_MODEL_PATH", "model.json"),
		ScorerAddr:    getEnv("LIFELINE_SCORER_ADDR", ""),

		StorageBackend: strings.ToLower(getEnv("LIFELINE_STORAGE_BACKEND", StorageNone)),
		RedisURL:       os.Getenv("LIFELINE_REDIS_URL"),
	}

	var err error
	if cfg.GenerateTimeout, err = getDurationEnv("LIFELINE_GENERATE_TIMEOUT", 30*time.Second); err != nil {
		return nil, err
	}
	if cfg.MaxConcurrentGenerations, err = getIntEnv("LIFELINE_MAX_CONCURRENT_GENERATIONS", 8); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that every credential the selected backends need is present.
func (c *Config) Validate() error {
	switch c.Provider {
	case ProviderGemini:
		switch c.GeminiBackend {
		case GeminiBackendAPI:
			if c.GeminiAPIKey == "" {
				return fmt.Errorf("%w: GEMINI_API_KEY not found in environment", domain.ErrConfiguration)
			}
		case GeminiBackendVertex:
			if c.GCPProjectID == "" || c.GCPLocation == "" {
				return fmt.Errorf("%w: LIFELINE_GCP_PROJECT and LIFELINE_GCP_LOCATION must be set for the vertex backend", domain.ErrConfiguration)
			}
		default:
			return fmt.Errorf("%w: unknown gemini backend %q", domain.ErrConfiguration, c.GeminiBackend)
		}
	case ProviderOpenAI:
		if c.OpenAIAPIKey == "" {
			return fmt.Errorf("%w: OPENAI_API_KEY not found in environment", domain.ErrConfiguration)
		}
	case ProviderMock:
	default:
		return fmt.Errorf("%w: unknown LLM provider %q", domain.ErrConfiguration, c.Provider)
	}

	switch c.StorageBackend {
	case StorageNone, StorageMemory:
	case StorageFirestore:
		if c.GCPProjectID == "" {
			return fmt.Errorf("%w: LIFELINE_GCP_PROJECT is required for the firestore storage backend", domain.ErrConfiguration)
		}
	case StorageRedis:
		if c.RedisURL == "" {
			return fmt.Errorf("%w: LIFELINE_REDIS_URL is required for the redis storage backend", domain.ErrConfiguration)
		}
	default:
		return fmt.Errorf("%w: unknown storage backend %q", domain.ErrConfiguration, c.StorageBackend)
	}

	if c.ScorerAddr == "" && c.ModelPath == "" {
		return fmt.Errorf("%w: either LIFELINE_MODEL_PATH or LIFELINE_SCORER_ADDR is required", domain.ErrConfiguration)
	}
	if c.TokenizerPath == "" {
		return fmt.Errorf("%w: LIFELINE_TOKENIZER_PATH is required", domain.ErrConfiguration)
	}

	return nil
}

func defaultModelName(p Provider) string {
	switch p {
	case ProviderOpenAI:
		return "gpt-4o-mini"
	case ProviderMock:
		return "mock"
	default:
		return "gemini-2.0-flash"
	}
}
