package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("LLM_PROVIDER", "openrouter")
	t.Setenv("OPENROUTER_API_KEY", "test-key")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, ProviderOpenRouter, cfg.LLMProvider)
	assert.Equal(t, DefaultOpenRouterModel, cfg.ModelName)
	assert.Equal(t, DefaultMaxHistory, cfg.MaxHistory)
	assert.Equal(t, "templates/system_prompt.md", cfg.SystemPromptPath)
}

func TestLoadMissingCredentials(t *testing.T) {
	tests := []struct {
		name     string
		provider string
		env      map[string]string
		wantErr  string
	}{
		{
			name:     "openai without key",
			provider: "openai",
			wantErr:  "OPENAI_API_KEY",
		},
		{
			name:     "openrouter without key",
			provider: "openrouter",
			wantErr:  "OPENROUTER_API_KEY",
		},
		{
			name:     "llama without base url",
			provider: "llama",
			env:      map[string]string{"PARASAIL_API_KEY": "test-key"},
			wantErr:  "PARASAIL_BASE_URL",
		},
		{
			name:     "unknown provider",
			provider: "claude9000",
			wantErr:  "invalid LLM provider",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("LLM_PROVIDER", tt.provider)
			for _, key := range []string{"OPENAI_API_KEY", "OPENROUTER_API_KEY", "PARASAIL_API_KEY", "PARASAIL_BASE_URL"} {
				t.Setenv(key, "")
			}
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadInvalidMaxHistory(t *testing.T) {
	t.Setenv("LLM_PROVIDER", "openai")
	t.Setenv("OPENAI_API_KEY", "test-key")
	t.Setenv("MAX_HISTORY", "not-a-number")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MAX_HISTORY")
}

func TestLoadProviderDefaults(t *testing.T) {
	t.Setenv("LLM_PROVIDER", "llama")
	t.Setenv("PARASAIL_API_KEY", "test-key")
	t.Setenv("PARASAIL_BASE_URL", "https://api.example.com/v1")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, DefaultLlamaModel, cfg.ModelName)
}
