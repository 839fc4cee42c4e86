package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jwebster45206/adventure-engine/internal/services"
	"github.com/jwebster45206/adventure-engine/pkg/chat"
	"github.com/jwebster45206/adventure-engine/pkg/prompts"
	"github.com/jwebster45206/adventure-engine/pkg/session"
	"github.com/jwebster45206/adventure-engine/pkg/tokens"
)

// Engine turns player input into narration. It is stateless across
// calls; all mutable state lives in the Session passed in.
type Engine struct {
	llm        services.LLMService
	templates  *prompts.Templates
	maxHistory int
	logger     *slog.Logger
}

// InitResult is returned from session initialization. InitialStory
// is empty until a real character selection has been made.
type InitResult struct {
	Options      string
	InitialStory string
}

// New creates an engine bound to an LLM backend and loaded prompt
// templates.
func New(llm services.LLMService, templates *prompts.Templates, maxHistory int, logger *slog.Logger) *Engine {
	return &Engine{
		llm:        llm,
		templates:  templates,
		maxHistory: maxHistory,
		logger:     logger,
	}
}

// invoke calls the backend and accumulates token usage on the
// session. When the backend reports no usage, prompt tokens are
// estimated locally.
func (e *Engine) invoke(ctx context.Context, s *session.Session, messages []chat.ChatMessage) (string, error) {
	resp, err := e.llm.Chat(ctx, messages)
	if err != nil {
		return "", &BackendError{Err: err}
	}

	if resp.Usage != nil {
		s.Usage.Add(*resp.Usage)
	} else {
		contents := make([]string, 0, len(messages)+1)
		for _, msg := range messages {
			contents = append(contents, msg.Content)
		}
		promptTokens := tokens.Estimate(s.Model, contents...)
		completionTokens := tokens.Estimate(s.Model, resp.Message)
		s.Usage.Add(tokens.Usage{
			PromptTokens:     promptTokens,
			CompletionTokens: completionTokens,
			TotalTokens:      promptTokens + completionTokens,
		})
	}

	return resp.Message, nil
}

// InitializeSession generates the character options and seeds the
// transcript. With no selection, the caller shows the options and
// calls again. The sentinel selection records the choice but
// suppresses story generation.
func (e *Engine) InitializeSession(ctx context.Context, s *session.Session, characterSelection string) (*InitResult, error) {
	options, err := e.invoke(ctx, s, e.templates.CharacterOptions())
	if err != nil {
		return nil, fmt.Errorf("character options: %w", err)
	}

	s.Seed(e.templates.System, e.templates.CharacterSetup, options)

	if characterSelection == "" {
		return &InitResult{Options: options}, nil
	}

	s.AppendUser(characterSelection)

	if characterSelection == prompts.StartAdventureSentinel {
		return &InitResult{Options: options}, nil
	}

	s.AppendUser(prompts.StartDirective)

	story, err := e.invoke(ctx, s, e.templates.StoryContinuation(s.History(), s.StateSummary, prompts.StartDirective))
	if err != nil {
		return nil, fmt.Errorf("initial story: %w", err)
	}
	s.AppendAssistant(story)

	e.logger.Debug("Session initialized",
		"session_id", s.ID,
		"transcript_len", len(s.Transcript))

	return &InitResult{Options: options, InitialStory: story}, nil
}

// ProcessTurn runs one game turn: append the player's input,
// generate the narrated continuation, refresh the state summary,
// and enforce the transcript length invariant.
//
// Transcript mutations applied before a failing backend call are
// kept; there is no rollback.
func (e *Engine) ProcessTurn(ctx context.Context, s *session.Session, userInput string) (string, error) {
	s.AppendUser(userInput)
	history := s.History()

	storyText, err := e.invoke(ctx, s, e.templates.StoryContinuation(history, s.StateSummary, userInput))
	if err != nil {
		return "", fmt.Errorf("story continuation: %w", err)
	}

	// Summarize before truncation, so later turns recover context
	// the truncated history would lose.
	newState, err := e.invoke(ctx, s, e.templates.StateExtraction(history+"\n\n"+storyText))
	if err != nil {
		return "", fmt.Errorf("state extraction: %w", err)
	}
	s.StateSummary = newState

	s.AppendAssistant(storyText)
	s.TurnCount++
	s.Truncate(e.maxHistory)

	e.logger.Debug("Turn processed",
		"session_id", s.ID,
		"turn", s.TurnCount,
		"transcript_len", len(s.Transcript),
		"total_tokens", s.Usage.TotalTokens)

	return storyText, nil
}
