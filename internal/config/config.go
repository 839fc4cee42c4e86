package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
)

// Supported LLM providers.
const (
	ProviderOpenAI     = "openai"
	ProviderOpenRouter = "openrouter"
	ProviderLlama      = "llama"
)

// Default models per provider.
const (
	DefaultOpenAIModel     = "gpt-4o-mini"
	DefaultOpenRouterModel = "gryphe/mythomax-l2-13b:free"
	DefaultLlamaModel      = "cloud-sambanova-llama-3-405b-instruct"

	DefaultMaxHistory = 10
)

// Config holds all environment-driven settings. It is immutable
// for the lifetime of a game session.
type Config struct {
	Port        string
	Environment string
	LogLevel    slog.Level

	LLMProvider string
	ModelName   string

	OpenAIAPIKey     string
	OpenRouterAPIKey string
	LlamaAPIKey      string
	LlamaBaseURL     string

	MaxHistory         int
	SystemPromptPath   string
	CharacterSetupPath string

	RedisURL string
}

// Load reads configuration from the environment. Credentials for
// the selected provider are validated eagerly; a missing key or
// base URL is fatal to session start.
func Load() (*Config, error) {
	maxHistory, err := getEnvInt("MAX_HISTORY", DefaultMaxHistory)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "development"),
		LogLevel:    parseLogLevel(getEnv("LOG_LEVEL", "info")),

		LLMProvider: strings.ToLower(getEnv("LLM_PROVIDER", ProviderOpenRouter)),
		ModelName:   os.Getenv("MODEL_NAME"),

		OpenAIAPIKey:     os.Getenv("OPENAI_API_KEY"),
		OpenRouterAPIKey: os.Getenv("OPENROUTER_API_KEY"),
		LlamaAPIKey:      os.Getenv("PARASAIL_API_KEY"),
		LlamaBaseURL:     os.Getenv("PARASAIL_BASE_URL"),

		MaxHistory:         maxHistory,
		SystemPromptPath:   getEnv("SYSTEM_PROMPT_PATH", "templates/system_prompt.md"),
		CharacterSetupPath: getEnv("CHARACTER_SETUP_PATH", "templates/character_setting_setup.md"),

		RedisURL: getEnv("REDIS_URL", "redis://localhost:6379"),
	}

	if cfg.ModelName == "" {
		cfg.ModelName = defaultModel(cfg.LLMProvider)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.LLMProvider {
	case ProviderOpenAI:
		if c.OpenAIAPIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY is required when using openai provider")
		}
	case ProviderOpenRouter:
		if c.OpenRouterAPIKey == "" {
			return fmt.Errorf("OPENROUTER_API_KEY is required when using openrouter provider")
		}
	case ProviderLlama:
		if c.LlamaAPIKey == "" {
			return fmt.Errorf("PARASAIL_API_KEY is required when using llama provider")
		}
		if c.LlamaBaseURL == "" {
			return fmt.Errorf("PARASAIL_BASE_URL is required when using llama provider")
		}
	default:
		return fmt.Errorf("invalid LLM provider %q: supported providers are openai, openrouter, llama", c.LLMProvider)
	}
	if c.MaxHistory < 1 {
		return fmt.Errorf("MAX_HISTORY must be at least 1, got %d", c.MaxHistory)
	}
	return nil
}

func defaultModel(provider string) string {
	switch provider {
	case ProviderOpenAI:
		return DefaultOpenAIModel
	case ProviderLlama:
		return DefaultLlamaModel
	default:
		return DefaultOpenRouterModel
	}
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return parsed, nil
}
