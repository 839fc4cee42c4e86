package runner

import (
	"time"

	"github.com/google/uuid"
)

// TestSuite is a JSON-defined session playthrough. The suite selects a
// character, then submits each step's prompt as a turn and checks the
// narration against the step's expectations.
type TestSuite struct {
	Name               string     `json:"name"`
	Description        string     `json:"description,omitempty"`
	CharacterSelection string     `json:"character_selection"`
	Steps              []TestStep `json:"steps"`
}

// TestStep is a single player turn and its expectations.
type TestStep struct {
	Name         string       `json:"name"`
	UserPrompt   string       `json:"user_prompt"`
	Expectations Expectations `json:"expectations,omitempty"`
}

// Expectations are checks against the narrated response. LLM output is
// non-deterministic, so checks are loose: substrings, a regex, and
// length bounds.
type Expectations struct {
	ResponseContains    []string `json:"response_contains,omitempty"`
	ResponseNotContains []string `json:"response_not_contains,omitempty"`
	ResponseRegex       string   `json:"response_regex,omitempty"`
	ResponseMinLength   *int     `json:"response_min_length,omitempty"`
	ResponseMaxLength   *int     `json:"response_max_length,omitempty"`
}

// TestJob pairs a loaded suite with the file it came from.
type TestJob struct {
	Name     string
	Suite    TestSuite
	CaseFile string
}

// TestResult is the outcome of a single step.
type TestResult struct {
	StepName     string
	Success      bool
	ResponseText string
	Error        error
	Duration     time.Duration
}

// TestRunResult is the outcome of a full suite run.
type TestRunResult struct {
	Job       TestJob
	SessionID uuid.UUID
	Results   []TestResult
	Error     error
	Duration  time.Duration
}
