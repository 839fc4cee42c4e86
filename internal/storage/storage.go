package storage

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/jwebster45206/adventure-engine/pkg/session"
)

// ErrSessionNotFound is returned when a session ID has no stored
// state (never created, expired, or deleted).
var ErrSessionNotFound = errors.New("session not found")

// Storage defines the interface for session persistence. The api
// server is stateless between requests; each session lives here
// under its UUID.
type Storage interface {
	// Health and lifecycle
	Ping(ctx context.Context) error
	Close() error

	// Session operations
	SaveSession(ctx context.Context, s *session.Session) error
	LoadSession(ctx context.Context, id uuid.UUID) (*session.Session, error)
	DeleteSession(ctx context.Context, id uuid.UUID) error
}
