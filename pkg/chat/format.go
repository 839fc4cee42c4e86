package chat

import "strings"

// FormatHistory renders messages into the flat "Role: content"
// form used as prompt context for story continuation. System
// messages are skipped; the system prompt travels separately.
func FormatHistory(messages []ChatMessage) string {
	lines := make([]string, 0, len(messages))
	for _, msg := range messages {
		if msg.Role == ChatRoleSystem {
			continue
		}
		lines = append(lines, roleLabel(msg.Role)+": "+msg.Content)
	}
	return strings.Join(lines, "\n")
}

func roleLabel(role string) string {
	if role == ChatRoleUser {
		return "User"
	}
	return "Assistant"
}
