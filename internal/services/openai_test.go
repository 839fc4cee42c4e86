package services

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/adventure-engine/pkg/chat"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelError, // Reduce noise in tests
	}))
}

func TestNewOpenAIService(t *testing.T) {
	service := NewOpenAIService("test-api-key", "test-model", "", testLogger())

	assert.Equal(t, "test-api-key", service.apiKey)
	assert.Equal(t, "test-model", service.modelName)
	assert.Equal(t, openAIBaseURL, service.baseURL)
	assert.NotNil(t, service.httpClient)

	// Custom base URL selects a compatible endpoint (llama provider).
	compat := NewOpenAIService("test-api-key", "test-model", "https://llama.example.com/v1", testLogger())
	assert.Equal(t, "https://llama.example.com/v1", compat.baseURL)
}

func TestOpenAIService_Chat(t *testing.T) {
	var gotAuth string
	var gotReq OpenAIChatRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/chat/completions", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))

		resp := OpenAIChatResponse{
			ID:    "chatcmpl-test",
			Model: "test-model",
		}
		resp.Choices = []OpenAIChatChoice{{Index: 0}}
		resp.Choices[0].Message.Role = chat.ChatRoleAssistant
		resp.Choices[0].Message.Content = "The cave mouth yawns before you."
		resp.Usage.PromptTokens = 42
		resp.Usage.CompletionTokens = 12
		resp.Usage.TotalTokens = 54
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	service := NewOpenAIService("test-api-key", "test-model", server.URL, testLogger())

	resp, err := service.Chat(context.Background(), []chat.ChatMessage{
		{Role: chat.ChatRoleSystem, Content: "You are the narrator."},
		{Role: chat.ChatRoleUser, Content: "I enter the cave."},
	})
	require.NoError(t, err)

	assert.Equal(t, "Bearer test-api-key", gotAuth)
	assert.Equal(t, "test-model", gotReq.Model)
	assert.Len(t, gotReq.Messages, 2)
	assert.Equal(t, "The cave mouth yawns before you.", resp.Message)
	require.NotNil(t, resp.Usage)
	assert.Equal(t, 42, resp.Usage.PromptTokens)
	assert.Equal(t, 54, resp.Usage.TotalTokens)
}

func TestOpenAIService_ChatAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"rate limited","type":"rate_limit_error"}}`))
	}))
	defer server.Close()

	service := NewOpenAIService("test-api-key", "test-model", server.URL, testLogger())

	_, err := service.Chat(context.Background(), []chat.ChatMessage{
		{Role: chat.ChatRoleUser, Content: "hello"},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestOpenAIService_ChatNoChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":"chatcmpl-test","choices":[]}`))
	}))
	defer server.Close()

	service := NewOpenAIService("test-api-key", "test-model", server.URL, testLogger())

	_, err := service.Chat(context.Background(), []chat.ChatMessage{
		{Role: chat.ChatRoleUser, Content: "hello"},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no choices")
}

func TestOpenAIService_InitModel(t *testing.T) {
	service := NewOpenAIService("test-api-key", "test-model", "", testLogger())
	assert.NoError(t, service.InitModel(context.Background(), "test-model"))
}
