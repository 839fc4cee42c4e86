package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"

	"github.com/jwebster45206/adventure-engine/pkg/chat"
	"github.com/jwebster45206/adventure-engine/pkg/session"
)

func testConnection(client *http.Client, baseURL string) bool {
	resp, err := client.Get(baseURL + "/health")
	if err != nil {
		return false
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()
	return resp.StatusCode == http.StatusOK
}

func postJSON(client *http.Client, url string, payload interface{}) ([]byte, int, error) {
	var buf bytes.Buffer
	if payload != nil {
		if err := json.NewEncoder(&buf).Encode(payload); err != nil {
			return nil, 0, fmt.Errorf("failed to encode request: %w", err)
		}
	}

	resp, err := client.Post(url, "application/json", &buf)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read response: %w", err)
	}
	return body, resp.StatusCode, nil
}

func apiError(body []byte, status int) error {
	var errResp chat.ChatResponse
	if err := json.Unmarshal(body, &errResp); err != nil || errResp.Error == "" {
		return fmt.Errorf("API returned status %d: %s", status, string(body))
	}
	return fmt.Errorf("%s", errResp.Error)
}

// createSession starts a new session and returns the character
// options.
func createSession(client *http.Client, baseURL string) (*chat.SessionResponse, error) {
	body, status, err := postJSON(client, baseURL+"/v1/sessions", nil)
	if err != nil {
		return nil, err
	}
	if status != http.StatusCreated {
		return nil, apiError(body, status)
	}

	var resp chat.SessionResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse session response: %w", err)
	}
	return &resp, nil
}

// selectCharacter applies the player's character selection and
// returns the opening narration.
func selectCharacter(client *http.Client, baseURL string, sessionID uuid.UUID, selection string) (*chat.SessionResponse, error) {
	body, status, err := postJSON(client,
		fmt.Sprintf("%s/v1/sessions/%s", baseURL, sessionID),
		chat.SessionRequest{CharacterSelection: selection})
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, apiError(body, status)
	}

	var resp chat.SessionResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse session response: %w", err)
	}
	return &resp, nil
}

// processTurn submits one player action and returns the narrated
// continuation.
func processTurn(client *http.Client, baseURL string, sessionID uuid.UUID, message string) (*chat.ChatResponse, error) {
	body, status, err := postJSON(client,
		fmt.Sprintf("%s/v1/sessions/%s/turn", baseURL, sessionID),
		chat.ChatRequest{SessionID: sessionID, Message: message})
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, apiError(body, status)
	}

	var resp chat.ChatResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse turn response: %w", err)
	}
	return &resp, nil
}

// getSession fetches the full stored session, transcript included.
func getSession(client *http.Client, baseURL string, sessionID uuid.UUID) (*session.Session, error) {
	resp, err := client.Get(fmt.Sprintf("%s/v1/sessions/%s", baseURL, sessionID))
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, apiError(body, resp.StatusCode)
	}

	var s session.Session
	if err := json.Unmarshal(body, &s); err != nil {
		return nil, fmt.Errorf("failed to parse session: %w", err)
	}
	return &s, nil
}
