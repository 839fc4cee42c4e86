package chat

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/jwebster45206/adventure-engine/pkg/tokens"
)

const (
	ChatRoleSystem    = "system"    // Narrator instructions
	ChatRoleUser      = "user"      // Player
	ChatRoleAssistant = "assistant" // Storyteller
)

// ChatMessage is a single role-tagged message in the transcript.
// The structure matches the message objects accepted by
// OpenAI-compatible chat completion APIs.
type ChatMessage struct {
	Role    string `json:"role"` // "system", "user", "assistant"
	Content string `json:"content"`
}

// ChatRequest is a turn request made by the player against
// the adventure-engine api.
type ChatRequest struct {
	SessionID uuid.UUID `json:"session_id"`
	Message   string    `json:"message"`
}

func (cr *ChatRequest) Validate() error {
	if cr.Message == "" {
		return fmt.Errorf("message cannot be empty")
	}
	return nil
}

// ChatResponse is the narrated continuation returned for one turn.
// Usage is populated when the backend reports token counts.
type ChatResponse struct {
	SessionID uuid.UUID     `json:"session_id,omitempty"`
	Message   string        `json:"message,omitempty"`
	Usage     *tokens.Usage `json:"usage,omitempty"`
	Error     string        `json:"error,omitempty"`
}

// SessionRequest starts or advances session initialization.
// CharacterSelection is empty on the first call; the api responds
// with the character options and expects a second call carrying
// the player's selection.
type SessionRequest struct {
	CharacterSelection string `json:"character_selection,omitempty"`
}

// SessionResponse is returned from session initialization calls.
// InitialStory is empty until a character selection has been made.
type SessionResponse struct {
	SessionID    uuid.UUID `json:"session_id,omitempty"`
	Options      string    `json:"options,omitempty"`
	InitialStory string    `json:"initial_story,omitempty"`
	Error        string    `json:"error,omitempty"`
}
