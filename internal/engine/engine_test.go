package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/adventure-engine/internal/services"
	"github.com/jwebster45206/adventure-engine/pkg/chat"
	"github.com/jwebster45206/adventure-engine/pkg/prompts"
	"github.com/jwebster45206/adventure-engine/pkg/session"
	"github.com/jwebster45206/adventure-engine/pkg/tokens"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelError, // Reduce noise in tests
	}))
}

func testTemplates() *prompts.Templates {
	return &prompts.Templates{
		System:         "You are the narrator.",
		CharacterSetup: "Offer three characters.",
	}
}

// scriptedLLM answers character-option, story and state requests
// with recognizable canned text.
func scriptedLLM() *services.MockLLMService {
	mock := services.NewMockLLMService()
	mock.ChatFunc = func(ctx context.Context, messages []chat.ChatMessage) (*chat.ChatResponse, error) {
		last := messages[len(messages)-1]
		switch {
		case strings.Contains(last.Content, "Extract the current state"):
			return &chat.ChatResponse{
				Message: "state summary",
				Usage:   &tokens.Usage{PromptTokens: 20, CompletionTokens: 5, TotalTokens: 25},
			}, nil
		case last.Content == "Offer three characters.":
			return &chat.ChatResponse{
				Message: "1. Rogue 2. Knight 3. Scholar",
				Usage:   &tokens.Usage{PromptTokens: 10, CompletionTokens: 10, TotalTokens: 20},
			}, nil
		default:
			return &chat.ChatResponse{
				Message: "story text",
				Usage:   &tokens.Usage{PromptTokens: 30, CompletionTokens: 15, TotalTokens: 45},
			}, nil
		}
	}
	return mock
}

func TestInitializeSession_NoSelection(t *testing.T) {
	mock := scriptedLLM()
	e := New(mock, testTemplates(), 10, testLogger())
	s := session.New("test-model")

	result, err := e.InitializeSession(context.Background(), s, "")
	require.NoError(t, err)

	assert.Equal(t, "1. Rogue 2. Knight 3. Scholar", result.Options)
	assert.Empty(t, result.InitialStory)
	require.Len(t, s.Transcript, 3)
	assert.Equal(t, chat.ChatRoleSystem, s.Transcript[0].Role)
	assert.Len(t, mock.ChatCalls, 1)
}

func TestInitializeSession_WithSelection(t *testing.T) {
	mock := scriptedLLM()
	e := New(mock, testTemplates(), 10, testLogger())
	s := session.New("test-model")

	result, err := e.InitializeSession(context.Background(), s, "2. Knight")
	require.NoError(t, err)

	assert.Equal(t, "story text", result.InitialStory)
	// [system, setup, options, selection, directive, story]
	require.Len(t, s.Transcript, 6)
	assert.Equal(t, "2. Knight", s.Transcript[3].Content)
	assert.Equal(t, prompts.StartDirective, s.Transcript[4].Content)
	assert.Equal(t, "story text", s.Transcript[5].Content)
	assert.Len(t, mock.ChatCalls, 2)

	// The continuation prompt carried the transcript history but
	// not the system message inside it.
	storyCall := mock.ChatCalls[1]
	userMsg := storyCall.Messages[len(storyCall.Messages)-1]
	assert.Contains(t, userMsg.Content, "User: 2. Knight")
	assert.NotContains(t, userMsg.Content, "You are the narrator.")
}

func TestInitializeSession_SentinelSuppressesStory(t *testing.T) {
	mock := scriptedLLM()
	e := New(mock, testTemplates(), 10, testLogger())
	s := session.New("test-model")

	result, err := e.InitializeSession(context.Background(), s, prompts.StartAdventureSentinel)
	require.NoError(t, err)

	assert.Empty(t, result.InitialStory)
	// The selection is recorded but no continuation call is made.
	require.Len(t, s.Transcript, 4)
	assert.Len(t, mock.ChatCalls, 1)
}

func TestProcessTurn(t *testing.T) {
	mock := scriptedLLM()
	e := New(mock, testTemplates(), 10, testLogger())
	s := session.New("test-model")

	_, err := e.InitializeSession(context.Background(), s, "2. Knight")
	require.NoError(t, err)
	lenBefore := len(s.Transcript)

	story, err := e.ProcessTurn(context.Background(), s, "I draw my sword.")
	require.NoError(t, err)

	assert.Equal(t, "story text", story)
	// Exactly one user and one assistant message appended.
	require.Len(t, s.Transcript, lenBefore+2)
	assert.Equal(t, "I draw my sword.", s.Transcript[lenBefore].Content)
	assert.Equal(t, chat.ChatRoleAssistant, s.Transcript[lenBefore+1].Role)
	assert.Equal(t, 1, s.TurnCount)
}

func TestProcessTurn_StateSummaryReplaced(t *testing.T) {
	callCount := 0
	mock := services.NewMockLLMService()
	mock.ChatFunc = func(ctx context.Context, messages []chat.ChatMessage) (*chat.ChatResponse, error) {
		last := messages[len(messages)-1]
		if strings.Contains(last.Content, "Extract the current state") {
			callCount++
			return &chat.ChatResponse{Message: fmt.Sprintf("state %d", callCount)}, nil
		}
		return &chat.ChatResponse{Message: "story text"}, nil
	}
	e := New(mock, testTemplates(), 10, testLogger())
	s := session.New("test-model")
	s.Seed("You are the narrator.", "Offer three characters.", "options")

	_, err := e.ProcessTurn(context.Background(), s, "first action")
	require.NoError(t, err)
	assert.Equal(t, "state 1", s.StateSummary)

	_, err = e.ProcessTurn(context.Background(), s, "second action")
	require.NoError(t, err)
	// Replaced, not accumulated.
	assert.Equal(t, "state 2", s.StateSummary)
}

func TestProcessTurn_StateThreadedIntoNextPrompt(t *testing.T) {
	mock := scriptedLLM()
	e := New(mock, testTemplates(), 10, testLogger())
	s := session.New("test-model")
	s.Seed("You are the narrator.", "Offer three characters.", "options")

	_, err := e.ProcessTurn(context.Background(), s, "first action")
	require.NoError(t, err)
	_, err = e.ProcessTurn(context.Background(), s, "second action")
	require.NoError(t, err)

	// Calls: story, state, story, state. The second story call
	// carries the summary produced by the first turn.
	require.Len(t, mock.ChatCalls, 4)
	secondStory := mock.ChatCalls[2].Messages
	assert.Contains(t, secondStory[len(secondStory)-1].Content, "Current story state:\nstate summary")
}

func TestProcessTurn_Truncation(t *testing.T) {
	// max_history=4 with a transcript of 5 grows to 7 during the
	// turn, then truncation keeps [system] + last 4 = length 5.
	mock := scriptedLLM()
	e := New(mock, testTemplates(), 4, testLogger())
	s := session.New("test-model")
	s.Seed("You are the narrator.", "Offer three characters.", "options")
	s.AppendUser("selection")
	s.AppendAssistant("opening")
	require.Len(t, s.Transcript, 5)

	_, err := e.ProcessTurn(context.Background(), s, "next action")
	require.NoError(t, err)

	require.Len(t, s.Transcript, 5)
	assert.Equal(t, chat.ChatRoleSystem, s.Transcript[0].Role)
	assert.Equal(t, "You are the narrator.", s.Transcript[0].Content)
}

func TestProcessTurn_StoryFailure(t *testing.T) {
	mock := services.NewMockLLMService()
	mock.ChatFunc = func(ctx context.Context, messages []chat.ChatMessage) (*chat.ChatResponse, error) {
		return nil, errors.New("backend down")
	}
	e := New(mock, testTemplates(), 10, testLogger())
	s := session.New("test-model")
	s.Seed("You are the narrator.", "Offer three characters.", "options")

	_, err := e.ProcessTurn(context.Background(), s, "doomed action")
	require.Error(t, err)

	var backendErr *BackendError
	assert.ErrorAs(t, err, &backendErr)
	// The user message stays appended; no rollback.
	require.Len(t, s.Transcript, 4)
	assert.Equal(t, "doomed action", s.Transcript[3].Content)
	assert.Empty(t, s.StateSummary)
}

func TestProcessTurn_StateExtractionFailure(t *testing.T) {
	mock := services.NewMockLLMService()
	mock.ChatFunc = func(ctx context.Context, messages []chat.ChatMessage) (*chat.ChatResponse, error) {
		last := messages[len(messages)-1]
		if strings.Contains(last.Content, "Extract the current state") {
			return nil, errors.New("backend down")
		}
		return &chat.ChatResponse{Message: "story text"}, nil
	}
	e := New(mock, testTemplates(), 10, testLogger())
	s := session.New("test-model")
	s.Seed("You are the narrator.", "Offer three characters.", "options")
	s.StateSummary = "previous state"

	_, err := e.ProcessTurn(context.Background(), s, "doomed action")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "state extraction")

	// User message appended, assistant message not, summary intact.
	require.Len(t, s.Transcript, 4)
	assert.Equal(t, chat.ChatRoleUser, s.Transcript[3].Role)
	assert.Equal(t, "previous state", s.StateSummary)
}

func TestTokenUsageAggregation(t *testing.T) {
	mock := scriptedLLM()
	e := New(mock, testTemplates(), 10, testLogger())
	s := session.New("test-model")
	s.Seed("You are the narrator.", "Offer three characters.", "options")

	_, err := e.ProcessTurn(context.Background(), s, "action")
	require.NoError(t, err)

	// Story (45) + state extraction (25).
	assert.Equal(t, 70, s.Usage.TotalTokens)
	assert.Equal(t, 50, s.Usage.PromptTokens)
	assert.Equal(t, 20, s.Usage.CompletionTokens)
}
