package services

import (
	"fmt"
	"log/slog"

	"github.com/jwebster45206/adventure-engine/internal/config"
)

// NewLLMService maps the configured provider to a concrete
// LLMService. The llama provider reuses the OpenAI service against
// a compatible endpoint with a custom base URL.
func NewLLMService(cfg *config.Config, logger *slog.Logger) (LLMService, error) {
	switch cfg.LLMProvider {
	case config.ProviderOpenAI:
		if cfg.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("OpenAI API key is required when using openai provider")
		}
		return NewOpenAIService(cfg.OpenAIAPIKey, cfg.ModelName, "", logger), nil
	case config.ProviderOpenRouter:
		if cfg.OpenRouterAPIKey == "" {
			return nil, fmt.Errorf("OpenRouter API key is required when using openrouter provider")
		}
		return NewOpenRouterService(cfg.OpenRouterAPIKey, cfg.ModelName), nil
	case config.ProviderLlama:
		if cfg.LlamaAPIKey == "" {
			return nil, fmt.Errorf("Llama API key is required when using llama provider")
		}
		if cfg.LlamaBaseURL == "" {
			return nil, fmt.Errorf("Llama base URL is required when using llama provider")
		}
		return NewOpenAIService(cfg.LlamaAPIKey, cfg.ModelName, cfg.LlamaBaseURL, logger), nil
	default:
		return nil, fmt.Errorf("invalid LLM provider %q: supported providers are openai, openrouter, llama", cfg.LLMProvider)
	}
}
