// Package secret owns the per-session code material the personalities guard.
package secret

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/overclocked/breakai/internal/config"
	"github.com/overclocked/breakai/internal/domain"
)

// Store is the slice of persistence the registry needs.
type Store interface {
	PutSecrets(ctx context.Context, sessionID string, codes map[domain.Personality]string) error
	GetSecrets(ctx context.Context, sessionID string) (map[domain.Personality]string, error)
}

// Registry generates and serves the fixed 6-digit codes, one per
// (session, personality) pair. Codes never change after creation.
type Registry struct {
	store Store
}

func NewRegistry(store Store) *Registry {
	return &Registry{store: store}
}

// Ensure generates one code per personality for the session if none exist
// yet. Idempotent: a second call for the same session is a no-op, and the
// store's insert-if-absent semantics keep concurrent calls from replacing
// an existing set.
func (r *Registry) Ensure(ctx context.Context, sessionID string) error {
	_, err := r.store.GetSecrets(ctx, sessionID)
	if err == nil {
		return nil
	}
	if !errors.Is(err, domain.ErrSecretsNotInitialized) {
		return fmt.Errorf("check secrets: %w", err)
	}

	codes := make(map[domain.Personality]string, len(domain.AllPersonalities))
	for _, p := range domain.AllPersonalities {
		code, err := generateCode()
		if err != nil {
			return fmt.Errorf("generate code: %w", err)
		}
		codes[p] = code
	}

	if err := r.store.PutSecrets(ctx, sessionID, codes); err != nil {
		return fmt.Errorf("store secrets: %w", err)
	}
	return nil
}

// Reveal returns the fixed code for a session and personality. Callers
// must have called Ensure first; domain.ErrSecretsNotInitialized signals
// a broken call ordering, not a recoverable condition.
func (r *Registry) Reveal(ctx context.Context, sessionID string, personality domain.Personality) (string, error) {
	codes, err := r.store.GetSecrets(ctx, sessionID)
	if err != nil {
		return "", err
	}
	code, ok := codes[personality]
	if !ok {
		return "", domain.ErrSecretsNotInitialized
	}
	return code, nil
}

// generateCode draws each digit independently so leading zeros are as
// likely as any other digit.
func generateCode() (string, error) {
	var b strings.Builder
	for i := 0; i < config.CodeLength; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", err
		}
		b.WriteByte(byte('0' + n.Int64()))
	}
	return b.String(), nil
}
