package runner

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jwebster45206/adventure-engine/pkg/chat"
)

type ErrorHandlingMode string

const ErrorHandlingExit ErrorHandlingMode = "exit"
const ErrorHandlingContinue ErrorHandlingMode = "continue"

// Runner executes integration test suites against a running
// adventure-engine API.
type Runner struct {
	BaseURL           string
	Client            *http.Client
	Timeout           time.Duration
	Logger            func(format string, args ...interface{})
	ErrorHandlingMode ErrorHandlingMode
}

// NewRunner creates a new test runner
func NewRunner(baseURL string) *Runner {
	return &Runner{
		BaseURL:           strings.TrimSuffix(baseURL, "/"),
		Client:            &http.Client{Timeout: 5 * time.Minute},
		Timeout:           30 * time.Second,
		Logger:            func(format string, args ...interface{}) {},
		ErrorHandlingMode: ErrorHandlingContinue,
	}
}

// LoadTestSuite loads a test suite from a JSON file
func LoadTestSuite(filename string) (TestSuite, error) {
	content, err := os.ReadFile(filename)
	if err != nil {
		return TestSuite{}, fmt.Errorf("failed to read test file %s: %w", filename, err)
	}

	var suite TestSuite
	if err := json.Unmarshal(content, &suite); err != nil {
		return TestSuite{}, fmt.Errorf("failed to parse JSON in %s: %w", filename, err)
	}

	return suite, nil
}

// RunSuite executes a complete test suite: create a session, apply the
// character selection, then play each step as a turn. The session is
// deleted afterward regardless of outcome.
func (r *Runner) RunSuite(ctx context.Context, suite TestSuite) (TestRunResult, error) {
	start := time.Now()
	result := TestRunResult{
		Job: TestJob{
			Name:  suite.Name,
			Suite: suite,
		},
		Results: make([]TestResult, 0, len(suite.Steps)),
	}

	sessionID, err := r.createSession(ctx)
	if err != nil {
		result.Error = fmt.Errorf("failed to create session: %w", err)
		result.Duration = time.Since(start)
		return result, result.Error
	}
	result.SessionID = sessionID
	defer r.deleteSession(context.WithoutCancel(ctx), sessionID)

	if err := r.selectCharacter(ctx, sessionID, suite.CharacterSelection); err != nil {
		result.Error = fmt.Errorf("failed to select character: %w", err)
		result.Duration = time.Since(start)
		return result, result.Error
	}

	for i, step := range suite.Steps {
		r.Logger("    [%d/%d] Running step: %s", i+1, len(suite.Steps), step.Name)
		stepResult := r.runStep(ctx, sessionID, step)
		result.Results = append(result.Results, stepResult)

		if stepResult.Error != nil {
			r.Logger("    [%d/%d] ✗ %s: %v", i+1, len(suite.Steps), step.Name, stepResult.Error)
			if result.Error == nil {
				result.Error = fmt.Errorf("step %d (%s) failed: %w", i, step.Name, stepResult.Error)
			}
			if r.ErrorHandlingMode == ErrorHandlingExit {
				break
			}
			continue
		}

		r.Logger("    [%d/%d] ✓ %s (%v)", i+1, len(suite.Steps), step.Name, stepResult.Duration)
	}

	result.Duration = time.Since(start)
	return result, result.Error
}

// runStep submits one turn and checks the narrated response.
func (r *Runner) runStep(ctx context.Context, sessionID uuid.UUID, step TestStep) TestResult {
	start := time.Now()
	result := TestResult{
		StepName: step.Name,
	}

	stepCtx, cancel := context.WithTimeout(ctx, r.Timeout)
	defer cancel()

	resp, err := r.processTurn(stepCtx, sessionID, step.UserPrompt)
	if err != nil {
		result.Error = fmt.Errorf("turn failed: %w", err)
		result.Duration = time.Since(start)
		return result
	}
	result.ResponseText = resp.Message

	if err := checkExpectations(step.Expectations, resp.Message); err != nil {
		result.Error = fmt.Errorf("expectation failed: %w", err)
		result.Duration = time.Since(start)
		return result
	}

	result.Success = true
	result.Duration = time.Since(start)
	return result
}

func (r *Runner) createSession(ctx context.Context) (uuid.UUID, error) {
	body, status, err := r.postJSON(ctx, r.BaseURL+"/v1/sessions", nil)
	if err != nil {
		return uuid.UUID{}, err
	}
	if status != http.StatusCreated {
		return uuid.UUID{}, fmt.Errorf("create session returned %d: %s", status, string(body))
	}

	var resp chat.SessionResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return uuid.UUID{}, fmt.Errorf("failed to decode session response: %w", err)
	}
	return resp.SessionID, nil
}

func (r *Runner) selectCharacter(ctx context.Context, sessionID uuid.UUID, selection string) error {
	body, status, err := r.postJSON(ctx,
		fmt.Sprintf("%s/v1/sessions/%s", r.BaseURL, sessionID),
		chat.SessionRequest{CharacterSelection: selection})
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return fmt.Errorf("select character returned %d: %s", status, string(body))
	}
	return nil
}

func (r *Runner) processTurn(ctx context.Context, sessionID uuid.UUID, message string) (*chat.ChatResponse, error) {
	body, status, err := r.postJSON(ctx,
		fmt.Sprintf("%s/v1/sessions/%s/turn", r.BaseURL, sessionID),
		chat.ChatRequest{SessionID: sessionID, Message: message})
	if err != nil {
		return nil, err
	}

	var resp chat.ChatResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("turn returned %d: %s", status, string(body))
	}
	if status != http.StatusOK {
		if resp.Error != "" {
			return nil, fmt.Errorf("turn returned %d: %s", status, resp.Error)
		}
		return nil, fmt.Errorf("turn returned %d: %s", status, string(body))
	}
	return &resp, nil
}

func (r *Runner) deleteSession(ctx context.Context, sessionID uuid.UUID) {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete,
		fmt.Sprintf("%s/v1/sessions/%s", r.BaseURL, sessionID), nil)
	if err != nil {
		return
	}
	resp, err := r.Client.Do(req)
	if err != nil {
		r.Logger("    failed to delete session %s: %v", sessionID, err)
		return
	}
	_ = resp.Body.Close()
}

func (r *Runner) postJSON(ctx context.Context, url string, payload interface{}) ([]byte, int, error) {
	var buf bytes.Buffer
	if payload != nil {
		if err := json.NewEncoder(&buf).Encode(payload); err != nil {
			return nil, 0, fmt.Errorf("failed to encode request: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &buf)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.Client.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read response: %w", err)
	}
	return body, resp.StatusCode, nil
}

// checkExpectations validates the narrated response against the step's
// expectations.
func checkExpectations(exp Expectations, responseText string) error {
	if len(exp.ResponseContains) > 0 {
		lowerResponse := strings.ToLower(responseText)
		for _, expectedText := range exp.ResponseContains {
			if !strings.Contains(lowerResponse, strings.ToLower(expectedText)) {
				return fmt.Errorf("expected response to contain '%s', but it didn't", expectedText)
			}
		}
	}

	if len(exp.ResponseNotContains) > 0 {
		lowerResponse := strings.ToLower(responseText)
		for _, unexpectedText := range exp.ResponseNotContains {
			if strings.Contains(lowerResponse, strings.ToLower(unexpectedText)) {
				return fmt.Errorf("expected response to NOT contain '%s', but it did", unexpectedText)
			}
		}
	}

	if exp.ResponseRegex != "" {
		matched, err := regexp.MatchString(exp.ResponseRegex, responseText)
		if err != nil {
			return fmt.Errorf("invalid regex pattern: %w", err)
		}
		if !matched {
			return fmt.Errorf("response didn't match regex pattern: %s", exp.ResponseRegex)
		}
	}

	if exp.ResponseMinLength != nil {
		if len(responseText) < *exp.ResponseMinLength {
			return fmt.Errorf("expected response length >= %d, got %d", *exp.ResponseMinLength, len(responseText))
		}
	}
	if exp.ResponseMaxLength != nil {
		if len(responseText) > *exp.ResponseMaxLength {
			return fmt.Errorf("expected response length <= %d, got %d", *exp.ResponseMaxLength, len(responseText))
		}
	}

	return nil
}
