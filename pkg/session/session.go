package session

import (
	"time"

	"github.com/google/uuid"

	"github.com/jwebster45206/adventure-engine/pkg/chat"
	"github.com/jwebster45206/adventure-engine/pkg/tokens"
)

// MinRetainedMessages is the floor on how many trailing messages
// truncation keeps: character setup, selection, and the opening
// story must survive even with a very small history limit.
const MinRetainedMessages = 4

// Session is the complete state of one adventure: the rolling
// transcript, the latest state summary, and token accounting.
// A session is owned by a single caller; there is no concurrency
// within a session.
type Session struct {
	ID           uuid.UUID          `json:"id"`
	Model        string             `json:"model"`
	Transcript   []chat.ChatMessage `json:"transcript"`
	StateSummary string             `json:"state_summary,omitempty"`
	Usage        tokens.Usage       `json:"token_usage"`
	TurnCount    int                `json:"turn_count"`
	CreatedAt    time.Time          `json:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at"`
}

// New creates an empty session. The transcript is seeded during
// initialization, not here.
func New(model string) *Session {
	now := time.Now().UTC()
	return &Session{
		ID:        uuid.New(),
		Model:     model,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Seed resets the transcript to the initial triple: the pinned
// system prompt, the character setup prompt, and the generated
// character options.
func (s *Session) Seed(systemPrompt, setupPrompt, options string) {
	s.Transcript = []chat.ChatMessage{
		{Role: chat.ChatRoleSystem, Content: systemPrompt},
		{Role: chat.ChatRoleUser, Content: setupPrompt},
		{Role: chat.ChatRoleAssistant, Content: options},
	}
	s.UpdatedAt = time.Now().UTC()
}

// AppendUser appends a player message to the transcript.
func (s *Session) AppendUser(content string) {
	s.Transcript = append(s.Transcript, chat.ChatMessage{
		Role:    chat.ChatRoleUser,
		Content: content,
	})
	s.UpdatedAt = time.Now().UTC()
}

// AppendAssistant appends a narration message to the transcript.
func (s *Session) AppendAssistant(content string) {
	s.Transcript = append(s.Transcript, chat.ChatMessage{
		Role:    chat.ChatRoleAssistant,
		Content: content,
	})
	s.UpdatedAt = time.Now().UTC()
}

// History renders the transcript for prompt context, excluding
// the pinned system message.
func (s *Session) History() string {
	if len(s.Transcript) == 0 {
		return ""
	}
	return chat.FormatHistory(s.Transcript[1:])
}

// Truncate enforces the transcript length invariant. When the
// transcript exceeds maxHistory, the pinned system message is kept
// along with the last max(MinRetainedMessages, maxHistory) entries.
func (s *Session) Truncate(maxHistory int) {
	if len(s.Transcript) <= maxHistory {
		return
	}
	keep := maxHistory
	if keep < MinRetainedMessages {
		keep = MinRetainedMessages
	}
	if keep >= len(s.Transcript)-1 {
		return
	}
	truncated := make([]chat.ChatMessage, 0, keep+1)
	truncated = append(truncated, s.Transcript[0])
	truncated = append(truncated, s.Transcript[len(s.Transcript)-keep:]...)
	s.Transcript = truncated
}
