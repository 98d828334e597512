package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/overclocked/breakai/internal/domain"
)

// Memory is an in-process Store used in tests and single-node dev runs.
// Sessions are deep-copied on the way in and out so callers never share
// slices with the stored record.
type Memory struct {
	mu          sync.RWMutex
	sessions    map[string]*domain.Session
	secrets     map[string]map[domain.Personality]string
	assignments map[domain.Personality]int64
}

func NewMemory() *Memory {
	return &Memory{
		sessions:    make(map[string]*domain.Session),
		secrets:     make(map[string]map[domain.Personality]string),
		assignments: make(map[domain.Personality]int64),
	}
}

func (m *Memory) SaveSession(_ context.Context, session *domain.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[session.ID] = session.Clone()
	return nil
}

func (m *Memory) GetSession(_ context.Context, id string) (*domain.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	session, ok := m.sessions[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return session.Clone(), nil
}

func (m *Memory) ListSessions(_ context.Context) ([]*domain.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	sessions := make([]*domain.Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		sessions = append(sessions, s.Clone())
	}
	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].StartTime.Before(sessions[j].StartTime)
	})
	return sessions, nil
}

func (m *Memory) ClearAll(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions = make(map[string]*domain.Session)
	m.secrets = make(map[string]map[domain.Personality]string)
	return nil
}

func (m *Memory) PutSecrets(_ context.Context, sessionID string, codes map[domain.Personality]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.secrets[sessionID]; ok {
		return nil
	}
	copied := make(map[domain.Personality]string, len(codes))
	for p, code := range codes {
		copied[p] = code
	}
	m.secrets[sessionID] = copied
	return nil
}

func (m *Memory) GetSecrets(_ context.Context, sessionID string) (map[domain.Personality]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	codes, ok := m.secrets[sessionID]
	if !ok {
		return nil, domain.ErrSecretsNotInitialized
	}
	copied := make(map[domain.Personality]string, len(codes))
	for p, code := range codes {
		copied[p] = code
	}
	return copied, nil
}

func (m *Memory) RecordAssignment(_ context.Context, personality domain.Personality) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.assignments[personality]++
	return nil
}

func (m *Memory) Distribution(_ context.Context) (map[domain.Personality]int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	dist := make(map[domain.Personality]int64, len(domain.AllPersonalities))
	for _, p := range domain.AllPersonalities {
		dist[p] = m.assignments[p]
	}
	return dist, nil
}
