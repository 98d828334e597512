package repository

import (
	"context"
	"testing"
	"time"

	"github.com/overclocked/breakai/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSession(id string, start time.Time) *domain.Session {
	return &domain.Session{
		ID:                id,
		TeamName:          "team " + id,
		Personality:       domain.PersonalityArrogant,
		StartTime:         start,
		Messages:          []domain.Message{},
		AttemptsRemaining: 3,
		CodeAttempts:      []string{},
		Difficulty:        4,
	}
}

func TestMemorySaveIsLastWriteWins(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	s := newSession("a", time.Now())
	require.NoError(t, m.SaveSession(ctx, s))

	s.AttemptsRemaining = 1
	s.CodeAttempts = append(s.CodeAttempts, "111111")
	require.NoError(t, m.SaveSession(ctx, s))

	got, err := m.GetSession(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, 1, got.AttemptsRemaining)
	assert.Equal(t, []string{"111111"}, got.CodeAttempts)
}

func TestMemoryGetReturnsCopy(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	require.NoError(t, m.SaveSession(ctx, newSession("a", time.Now())))

	first, err := m.GetSession(ctx, "a")
	require.NoError(t, err)
	first.CodeAttempts = append(first.CodeAttempts, "123456")

	second, err := m.GetSession(ctx, "a")
	require.NoError(t, err)
	assert.Empty(t, second.CodeAttempts, "mutating a returned session must not touch the stored record")
}

func TestMemoryGetMissing(t *testing.T) {
	m := NewMemory()
	_, err := m.GetSession(context.Background(), "nope")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestMemoryListOrdersByStart(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	base := time.Now()
	require.NoError(t, m.SaveSession(ctx, newSession("later", base.Add(time.Hour))))
	require.NoError(t, m.SaveSession(ctx, newSession("earlier", base)))

	sessions, err := m.ListSessions(ctx)
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, "earlier", sessions[0].ID)
	assert.Equal(t, "later", sessions[1].ID)
}

func TestMemoryClearAll(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	require.NoError(t, m.SaveSession(ctx, newSession("a", time.Now())))
	require.NoError(t, m.PutSecrets(ctx, "a", map[domain.Personality]string{domain.PersonalityArrogant: "123456"}))

	require.NoError(t, m.ClearAll(ctx))

	sessions, err := m.ListSessions(ctx)
	require.NoError(t, err)
	assert.Empty(t, sessions)

	_, err = m.GetSecrets(ctx, "a")
	assert.ErrorIs(t, err, domain.ErrSecretsNotInitialized)
}

func TestMemoryPutSecretsInsertsOnce(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	require.NoError(t, m.PutSecrets(ctx, "a", map[domain.Personality]string{domain.PersonalityBroken: "111111"}))
	require.NoError(t, m.PutSecrets(ctx, "a", map[domain.Personality]string{domain.PersonalityBroken: "222222"}))

	codes, err := m.GetSecrets(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "111111", codes[domain.PersonalityBroken])
}

func TestMemoryDistribution(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	dist, err := m.Distribution(ctx)
	require.NoError(t, err)
	for _, p := range domain.AllPersonalities {
		assert.Equal(t, int64(0), dist[p])
	}

	require.NoError(t, m.RecordAssignment(ctx, domain.PersonalityParanoid))
	require.NoError(t, m.RecordAssignment(ctx, domain.PersonalityParanoid))

	dist, err = m.Distribution(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), dist[domain.PersonalityParanoid])
	assert.Equal(t, int64(0), dist[domain.PersonalityBroken])
}
