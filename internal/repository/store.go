// Package repository provides durable keyed storage for sessions, their
// secret codes, and personality assignment counters.
package repository

import (
	"context"

	"github.com/overclocked/breakai/internal/domain"
)

// Store is the persistence contract consumed by the session engine.
// Save semantics are last-write-wins; a Get or List issued after a Save
// from the same process observes the saved state.
type Store interface {
	// SaveSession inserts or overwrites a session record.
	SaveSession(ctx context.Context, session *domain.Session) error

	// GetSession returns the session or domain.ErrSessionNotFound.
	GetSession(ctx context.Context, id string) (*domain.Session, error)

	// ListSessions returns all sessions.
	ListSessions(ctx context.Context) ([]*domain.Session, error)

	// ClearAll removes every session and its secrets (administrative bulk clear).
	ClearAll(ctx context.Context) error

	// PutSecrets stores the per-personality codes for a session if none
	// exist yet. Calling it again for the same session is a no-op.
	PutSecrets(ctx context.Context, sessionID string, codes map[domain.Personality]string) error

	// GetSecrets returns the codes for a session, or
	// domain.ErrSecretsNotInitialized if PutSecrets was never called.
	GetSecrets(ctx context.Context, sessionID string) (map[domain.Personality]string, error)

	// RecordAssignment increments the assignment counter for a personality.
	RecordAssignment(ctx context.Context, p domain.Personality) error

	// Distribution returns assignment counts for all personalities.
	Distribution(ctx context.Context) (map[domain.Personality]int64, error)
}
