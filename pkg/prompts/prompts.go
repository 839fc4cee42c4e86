package prompts

import (
	"fmt"
	"os"
	"strings"
)

// StartAdventureSentinel suppresses story generation during
// initialization. The selection is recorded in the transcript but
// no continuation call is made. Callers use it as a probe while
// the player is still choosing a character.
const StartAdventureSentinel = "Start the adventure!"

// StartDirective is appended after a real character selection to
// kick off the opening narration.
const StartDirective = "Start the adventure with the selected character and setting!"

// storyTemplate builds the user message for story continuation.
const storyTemplate = `Previous conversation:
{history}

Current input:
{user_input}`

// storyWithStateTemplate threads the latest state summary into the
// continuation prompt, recovering context lost to truncation.
const storyWithStateTemplate = `Current story state:
{state}

Previous conversation:
{history}

Current input:
{user_input}`

// stateTemplate builds the user message for state extraction.
const stateTemplate = `{story_text}

Extract the current state of the story.`

// Templates holds the static prompt text loaded at session start.
type Templates struct {
	System         string
	CharacterSetup string
}

// Load reads the system and character-setup prompts from files.
// A missing file is a fatal configuration error.
func Load(systemPath, setupPath string) (*Templates, error) {
	system, err := loadPrompt(systemPath)
	if err != nil {
		return nil, err
	}
	setup, err := loadPrompt(setupPath)
	if err != nil {
		return nil, err
	}
	return &Templates{
		System:         system,
		CharacterSetup: setup,
	}, nil
}

func loadPrompt(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to load prompt template %q: %w", path, err)
	}
	return strings.TrimSpace(string(data)), nil
}

// Render substitutes {placeholder} markers in a template. Unknown
// placeholders are left untouched.
func Render(template string, vars map[string]string) string {
	pairs := make([]string, 0, len(vars)*2)
	for key, value := range vars {
		pairs = append(pairs, "{"+key+"}", value)
	}
	return strings.NewReplacer(pairs...).Replace(template)
}
