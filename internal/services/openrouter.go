package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/jwebster45206/adventure-engine/pkg/chat"
	"github.com/jwebster45206/adventure-engine/pkg/tokens"
)

const (
	openRouterBaseURL = "https://openrouter.ai/api/v1"

	// Optional attribution headers shown on openrouter.ai rankings.
	openRouterReferer = "https://github.com/jwebster45206/adventure-engine"
	openRouterTitle   = "Adventure Engine"

	DefaultOpenRouterTemperature = 0.7
	DefaultOpenRouterMaxTokens   = 1024
)

// OpenRouterService implements LLMService for OpenRouter.
type OpenRouterService struct {
	apiKey     string
	modelName  string
	baseURL    string
	httpClient *http.Client
}

// OpenRouterChatRequest represents the request structure for
// OpenRouter chat completions.
type OpenRouterChatRequest struct {
	Model       string             `json:"model"`
	Messages    []chat.ChatMessage `json:"messages"`
	Temperature float64            `json:"temperature,omitempty"`
	MaxTokens   int                `json:"max_tokens,omitempty"`
	Stream      bool               `json:"stream"`
}

// OpenRouterChatChoice represents a single choice in the response.
type OpenRouterChatChoice struct {
	Index   int `json:"index"`
	Message struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"message"`
	FinishReason string `json:"finish_reason"`
}

// OpenRouterChatResponse represents the response structure for
// OpenRouter chat completions.
type OpenRouterChatResponse struct {
	ID      string                 `json:"id"`
	Model   string                 `json:"model"`
	Choices []OpenRouterChatChoice `json:"choices"`
	Usage   struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage,omitempty"`
	Error *struct {
		Message string `json:"message"`
		Code    int    `json:"code"`
	} `json:"error,omitempty"`
}

// NewOpenRouterService creates a new OpenRouter service.
func NewOpenRouterService(apiKey string, modelName string) *OpenRouterService {
	return &OpenRouterService{
		apiKey:    apiKey,
		modelName: modelName,
		baseURL:   openRouterBaseURL,
		httpClient: &http.Client{
			Timeout: 90 * time.Second,
		},
	}
}

// InitModel initializes the model (OpenRouter doesn't require
// explicit model initialization)
func (s *OpenRouterService) InitModel(ctx context.Context, modelName string) error {
	return nil
}

// Chat generates a chat response using the OpenRouter API.
func (s *OpenRouterService) Chat(ctx context.Context, messages []chat.ChatMessage) (*chat.ChatResponse, error) {
	routerReq := OpenRouterChatRequest{
		Model:       s.modelName,
		Messages:    messages,
		Temperature: DefaultOpenRouterTemperature,
		MaxTokens:   DefaultOpenRouterMaxTokens,
		Stream:      false,
	}

	reqBody, err := json.Marshal(routerReq)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", s.baseURL+"/chat/completions", bytes.NewBuffer(reqBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("HTTP-Referer", openRouterReferer)
	req.Header.Set("X-Title", openRouterTitle)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, string(body))
	}

	var routerResp OpenRouterChatResponse
	if err := json.Unmarshal(body, &routerResp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if routerResp.Error != nil {
		return nil, fmt.Errorf("API error: %s", routerResp.Error.Message)
	}

	if len(routerResp.Choices) == 0 {
		return nil, fmt.Errorf("no choices returned from API")
	}

	response := &chat.ChatResponse{
		Message: routerResp.Choices[0].Message.Content,
	}
	if routerResp.Usage.TotalTokens > 0 {
		response.Usage = &tokens.Usage{
			PromptTokens:     routerResp.Usage.PromptTokens,
			CompletionTokens: routerResp.Usage.CompletionTokens,
			TotalTokens:      routerResp.Usage.TotalTokens,
		}
	}
	return response, nil
}
