package prompts

import (
	"github.com/jwebster45206/adventure-engine/pkg/chat"
)

// CharacterOptions builds the messages for the character-options
// call: the system prompt plus the fixed setup prompt.
func (t *Templates) CharacterOptions() []chat.ChatMessage {
	return []chat.ChatMessage{
		{Role: chat.ChatRoleSystem, Content: t.System},
		{Role: chat.ChatRoleUser, Content: t.CharacterSetup},
	}
}

// StoryContinuation builds the messages for one narration call.
// The state summary is omitted from the prompt when empty, which
// is the case for the opening narration.
func (t *Templates) StoryContinuation(history, stateSummary, userInput string) []chat.ChatMessage {
	template := storyTemplate
	vars := map[string]string{
		"history":    history,
		"user_input": userInput,
	}
	if stateSummary != "" {
		template = storyWithStateTemplate
		vars["state"] = stateSummary
	}
	return []chat.ChatMessage{
		{Role: chat.ChatRoleSystem, Content: t.System},
		{Role: chat.ChatRoleUser, Content: Render(template, vars)},
	}
}

// StateExtraction builds the messages for the state-extraction
// side call made after each narration.
func (t *Templates) StateExtraction(storyText string) []chat.ChatMessage {
	return []chat.ChatMessage{
		{Role: chat.ChatRoleSystem, Content: t.System},
		{Role: chat.ChatRoleUser, Content: Render(stateTemplate, map[string]string{
			"story_text": storyText,
		})},
	}
}
