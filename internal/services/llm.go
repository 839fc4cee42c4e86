package services

import (
	"context"

	"github.com/jwebster45206/adventure-engine/pkg/chat"
)

// LLMService defines the interface for interacting with a chat
// completion backend. One implementation exists per provider.
type LLMService interface {
	// InitModel initializes the LLM model on startup
	InitModel(ctx context.Context, modelName string) error

	// Chat generates a completion for the given messages. The
	// response includes token usage when the backend reports it.
	Chat(ctx context.Context, messages []chat.ChatMessage) (*chat.ChatResponse, error)
}
