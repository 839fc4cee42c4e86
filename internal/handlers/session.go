package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/jwebster45206/adventure-engine/internal/engine"
	"github.com/jwebster45206/adventure-engine/internal/storage"
	"github.com/jwebster45206/adventure-engine/pkg/chat"
	"github.com/jwebster45206/adventure-engine/pkg/session"
)

// SessionHandler handles session lifecycle and game turns:
//
//	POST   /v1/sessions             create a session, return options
//	POST   /v1/sessions/{id}        apply a character selection
//	POST   /v1/sessions/{id}/turn   process one game turn
//	GET    /v1/sessions/{id}        fetch the full session
//	DELETE /v1/sessions/{id}        delete the session
type SessionHandler struct {
	engine    *engine.Engine
	storage   storage.Storage
	modelName string
	logger    *slog.Logger
}

func NewSessionHandler(e *engine.Engine, s storage.Storage, modelName string, logger *slog.Logger) *SessionHandler {
	return &SessionHandler{
		engine:    e,
		storage:   s,
		modelName: modelName,
		logger:    logger,
	}
}

func (h *SessionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	rest := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/sessions"), "/")
	parts := strings.Split(rest, "/")

	switch {
	case rest == "" && r.Method == http.MethodPost:
		h.createSession(w, r)
	case rest == "":
		h.writeError(w, http.StatusMethodNotAllowed, "Method not allowed. Only POST is supported.")
	case len(parts) == 1 && r.Method == http.MethodPost:
		h.selectCharacter(w, r, parts[0])
	case len(parts) == 1 && r.Method == http.MethodGet:
		h.getSession(w, r, parts[0])
	case len(parts) == 1 && r.Method == http.MethodDelete:
		h.deleteSession(w, r, parts[0])
	case len(parts) == 2 && parts[1] == "turn" && r.Method == http.MethodPost:
		h.processTurn(w, r, parts[0])
	default:
		h.writeError(w, http.StatusNotFound, "Not found.")
	}
}

// createSession starts a new session and generates character options.
func (h *SessionHandler) createSession(w http.ResponseWriter, r *http.Request) {
	var request chat.SessionRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
			h.logger.Warn("Invalid session request body", "error", err)
			h.writeError(w, http.StatusBadRequest, "Invalid request body.")
			return
		}
	}

	s := session.New(h.modelName)
	result, err := h.engine.InitializeSession(r.Context(), s, request.CharacterSelection)
	if err != nil {
		h.writeEngineError(w, err, "Error initializing session", s.ID)
		return
	}

	if err := h.storage.SaveSession(r.Context(), s); err != nil {
		h.logger.Error("Error saving session", "error", err, "session_id", s.ID)
		h.writeError(w, http.StatusInternalServerError, "Failed to save session.")
		return
	}

	w.WriteHeader(http.StatusCreated)
	h.writeJSON(w, chat.SessionResponse{
		SessionID:    s.ID,
		Options:      result.Options,
		InitialStory: result.InitialStory,
	})
}

// selectCharacter re-initializes an existing session with the
// player's character selection.
func (h *SessionHandler) selectCharacter(w http.ResponseWriter, r *http.Request, rawID string) {
	id, ok := h.parseID(w, rawID)
	if !ok {
		return
	}

	var request chat.SessionRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		h.logger.Warn("Invalid session request body", "error", err)
		h.writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}
	if request.CharacterSelection == "" {
		h.writeError(w, http.StatusBadRequest, "character_selection cannot be empty.")
		return
	}

	s, ok := h.loadSession(w, r, id)
	if !ok {
		return
	}

	result, err := h.engine.InitializeSession(r.Context(), s, request.CharacterSelection)
	if err != nil {
		h.writeEngineError(w, err, "Error initializing session", id)
		return
	}

	if err := h.storage.SaveSession(r.Context(), s); err != nil {
		h.logger.Error("Error saving session", "error", err, "session_id", id)
		h.writeError(w, http.StatusInternalServerError, "Failed to save session.")
		return
	}

	h.writeJSON(w, chat.SessionResponse{
		SessionID:    s.ID,
		Options:      result.Options,
		InitialStory: result.InitialStory,
	})
}

// processTurn runs one game turn against a stored session.
func (h *SessionHandler) processTurn(w http.ResponseWriter, r *http.Request, rawID string) {
	id, ok := h.parseID(w, rawID)
	if !ok {
		return
	}

	var request chat.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		h.logger.Warn("Invalid turn request body", "error", err)
		h.writeError(w, http.StatusBadRequest, "Invalid request body. Expected JSON with 'message' field.")
		return
	}
	if err := request.Validate(); err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	s, ok := h.loadSession(w, r, id)
	if !ok {
		return
	}

	storyText, err := h.engine.ProcessTurn(r.Context(), s, request.Message)

	// Transcript mutations made before a failure are kept, so the
	// session is saved even when the turn fails.
	if saveErr := h.storage.SaveSession(r.Context(), s); saveErr != nil {
		h.logger.Error("Error saving session", "error", saveErr, "session_id", id)
	}

	if err != nil {
		h.writeEngineError(w, err, "Error processing turn", id)
		return
	}

	h.writeJSON(w, chat.ChatResponse{
		SessionID: s.ID,
		Message:   storyText,
		Usage:     &s.Usage,
	})
}

// getSession returns the full stored session, including the
// transcript. The console uses this for its exit dump.
func (h *SessionHandler) getSession(w http.ResponseWriter, r *http.Request, rawID string) {
	id, ok := h.parseID(w, rawID)
	if !ok {
		return
	}

	s, ok := h.loadSession(w, r, id)
	if !ok {
		return
	}

	h.writeJSON(w, s)
}

func (h *SessionHandler) deleteSession(w http.ResponseWriter, r *http.Request, rawID string) {
	id, ok := h.parseID(w, rawID)
	if !ok {
		return
	}

	if err := h.storage.DeleteSession(r.Context(), id); err != nil {
		if errors.Is(err, storage.ErrSessionNotFound) {
			h.writeError(w, http.StatusNotFound, "Session not found.")
			return
		}
		h.logger.Error("Error deleting session", "error", err, "session_id", id)
		h.writeError(w, http.StatusInternalServerError, "Failed to delete session.")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *SessionHandler) parseID(w http.ResponseWriter, rawID string) (uuid.UUID, bool) {
	id, err := uuid.Parse(rawID)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid session ID.")
		return uuid.Nil, false
	}
	return id, true
}

func (h *SessionHandler) loadSession(w http.ResponseWriter, r *http.Request, id uuid.UUID) (*session.Session, bool) {
	s, err := h.storage.LoadSession(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrSessionNotFound) {
			h.writeError(w, http.StatusNotFound, "Session not found.")
			return nil, false
		}
		h.logger.Error("Error loading session", "error", err, "session_id", id)
		h.writeError(w, http.StatusInternalServerError, "Failed to load session.")
		return nil, false
	}
	return s, true
}

// writeEngineError maps engine failures to status codes: backend
// invocation failures are 502, anything else is 500.
func (h *SessionHandler) writeEngineError(w http.ResponseWriter, err error, msg string, sessionID uuid.UUID) {
	h.logger.Error(msg, "error", err, "session_id", sessionID)

	var backendErr *engine.BackendError
	if errors.As(err, &backendErr) {
		h.writeError(w, http.StatusBadGateway, "The storyteller is unavailable. Please try again.")
		return
	}
	h.writeError(w, http.StatusInternalServerError, "Failed to generate response. Please try again.")
}

func (h *SessionHandler) writeError(w http.ResponseWriter, status int, message string) {
	w.WriteHeader(status)
	h.writeJSON(w, chat.ChatResponse{Error: message})
}

func (h *SessionHandler) writeJSON(w http.ResponseWriter, v interface{}) {
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("Error encoding response", "error", err)
	}
}
