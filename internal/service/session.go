package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/overclocked/breakai/internal/config"
	"github.com/overclocked/breakai/internal/domain"
	"github.com/overclocked/breakai/internal/repository"
	"github.com/overclocked/breakai/internal/secret"
)

// Completer is the outbound model dependency of the session engine.
type Completer interface {
	Complete(ctx context.Context, systemPrompt string, history []ChatMessage) (string, error)
}

// SessionService owns the per-team session lifecycle: conversation turns,
// code submissions, difficulty relaxation. Mutating operations on the same
// session id are serialized; different sessions proceed independently.
type SessionService struct {
	store   repository.Store
	secrets *secret.Registry
	gateway Completer
	locks   *sessionLocks
}

func NewSessionService(store repository.Store, secrets *secret.Registry, gateway Completer) *SessionService {
	return &SessionService{
		store:   store,
		secrets: secrets,
		gateway: gateway,
		locks:   newSessionLocks(),
	}
}

// SubmitResult is the outcome of one code submission.
type SubmitResult struct {
	Session *domain.Session `json:"session"`
	Correct bool            `json:"correct"`
	// RevealedCode carries the true code once all attempts are spent.
	RevealedCode string `json:"revealed_code,omitempty"`
}

// Create allocates a new session for a team: fresh attempt budget, the
// personality's base difficulty, secrets generated, and the personality's
// canned greeting as the opening assistant turn. The greeting never goes
// through the gateway, so a session always opens even when the backend is
// down.
func (s *SessionService) Create(ctx context.Context, teamName string, personality domain.Personality) (*domain.Session, error) {
	teamName = strings.TrimSpace(teamName)
	if teamName == "" {
		return nil, domain.ErrEmptyTeamName
	}
	cfg, ok := domain.ConfigFor(personality)
	if !ok {
		return nil, domain.ErrUnknownPersonality
	}

	session := &domain.Session{
		ID:                uuid.NewString(),
		TeamName:          teamName,
		Personality:       personality,
		StartTime:         time.Now().UTC(),
		Messages:          []domain.Message{},
		AttemptsRemaining: config.MaxCodeAttempts,
		CodeAttempts:      []string{},
		Difficulty:        cfg.Difficulty,
	}

	if err := s.secrets.Ensure(ctx, session.ID); err != nil {
		return nil, fmt.Errorf("ensure secrets: %w", err)
	}

	appendMessage(session, domain.RoleAssistant, cfg.Greeting)

	if err := s.store.SaveSession(ctx, session); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}

	if err := s.store.RecordAssignment(ctx, personality); err != nil {
		slog.Error("record assignment", "error", err, "personality", personality)
	}

	return session, nil
}

// SendMessage appends the team's turn, forwards the rendered conversation
// to the model backend, and appends the assistant's reply. A gateway
// failure still produces an assistant turn (a fixed error notice) so the
// session degrades instead of dying; the team simply resends.
func (s *SessionService) SendMessage(ctx context.Context, id, text string) (*domain.Session, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, domain.ErrEmptyMessage
	}

	lock := s.locks.get(id)
	lock.Lock()
	defer lock.Unlock()

	session, err := s.store.GetSession(ctx, id)
	if err != nil {
		return nil, err
	}
	if session.Completed {
		return nil, domain.ErrSessionCompleted
	}

	appendMessage(session, domain.RoleUser, text)

	code, err := s.secrets.Reveal(ctx, session.ID, session.Personality)
	if err != nil {
		return nil, fmt.Errorf("reveal secret: %w", err)
	}
	systemPrompt := domain.SystemPrompt(session.Personality, session.Difficulty, code)

	history := make([]ChatMessage, 0, len(session.Messages))
	for _, m := range session.Messages {
		history = append(history, ChatMessage{Role: m.Role, Content: m.Content})
	}

	reqCtx, cancel := context.WithTimeout(ctx, config.RequestTimeout)
	defer cancel()

	reply, err := s.gateway.Complete(reqCtx, systemPrompt, history)
	if err != nil {
		slog.Error("model gateway", "error", err, "session_id", session.ID)
		appendMessage(session, domain.RoleAssistant, config.GatewayErrorNotice)
	} else {
		appendMessage(session, domain.RoleAssistant, reply)
	}

	if err := s.store.SaveSession(ctx, session); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	return session, nil
}

// SubmitCode checks a 6-digit guess against the session's secret. A match
// completes the session successfully without touching the attempt budget.
// A miss burns an attempt; burning the last one completes the session as
// exhausted and reveals the true code for the team's debrief.
func (s *SessionService) SubmitCode(ctx context.Context, id, code string) (*SubmitResult, error) {
	if !validCode(code) {
		return nil, domain.ErrInvalidCode
	}

	lock := s.locks.get(id)
	lock.Lock()
	defer lock.Unlock()

	session, err := s.store.GetSession(ctx, id)
	if err != nil {
		return nil, err
	}
	if session.Completed {
		return nil, domain.ErrSessionCompleted
	}

	secretCode, err := s.secrets.Reveal(ctx, session.ID, session.Personality)
	if err != nil {
		return nil, fmt.Errorf("reveal secret: %w", err)
	}

	session.CodeAttempts = append(session.CodeAttempts, code)

	result := &SubmitResult{Correct: code == secretCode}
	if result.Correct {
		session.Completed = true
		session.Success = true
	} else {
		session.AttemptsRemaining--
		if session.AttemptsRemaining <= 0 {
			session.AttemptsRemaining = 0
			session.Completed = true
			session.Success = false
			result.RevealedCode = secretCode
		}
	}

	if err := s.store.SaveSession(ctx, session); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	result.Session = session
	return result, nil
}

// MaybeRelaxDifficulty lowers difficulty by one, once, after the team has
// both spent enough wall-clock time and exchanged enough messages. The
// personality's base is the high-water mark: difficulty below base means
// the rule already fired.
func (s *SessionService) MaybeRelaxDifficulty(ctx context.Context, id string, now time.Time) error {
	lock := s.locks.get(id)
	lock.Lock()
	defer lock.Unlock()

	session, err := s.store.GetSession(ctx, id)
	if err != nil {
		return err
	}
	if session.Completed || session.Difficulty <= config.MinDifficulty {
		return nil
	}
	cfg, _ := domain.ConfigFor(session.Personality)
	if session.Difficulty < cfg.Difficulty {
		return nil
	}

	if now.Sub(session.StartTime) <= config.RelaxElapsed || len(session.Messages) <= config.RelaxMinMessages {
		return nil
	}

	session.Difficulty--
	slog.Info("difficulty relaxed", "session_id", session.ID, "difficulty", session.Difficulty)
	if err := s.store.SaveSession(ctx, session); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// Get returns the current session projection.
func (s *SessionService) Get(ctx context.Context, id string) (*domain.Session, error) {
	return s.store.GetSession(ctx, id)
}

// List returns all sessions, for the admin viewer.
func (s *SessionService) List(ctx context.Context) ([]*domain.Session, error) {
	return s.store.ListSessions(ctx)
}

// ClearAll wipes every session and its secrets.
func (s *SessionService) ClearAll(ctx context.Context) error {
	return s.store.ClearAll(ctx)
}

// Distribution returns how many sessions each personality has been assigned.
func (s *SessionService) Distribution(ctx context.Context) (map[domain.Personality]int64, error) {
	return s.store.Distribution(ctx)
}

// SuggestPersonality returns the least-assigned personality, ties broken
// by catalog order, so clients can keep assignments balanced.
func (s *SessionService) SuggestPersonality(ctx context.Context) (domain.Personality, error) {
	dist, err := s.store.Distribution(ctx)
	if err != nil {
		return "", err
	}
	best := domain.AllPersonalities[0]
	for _, p := range domain.AllPersonalities[1:] {
		if dist[p] < dist[best] {
			best = p
		}
	}
	return best, nil
}

func appendMessage(session *domain.Session, role, content string) {
	session.Messages = append(session.Messages, domain.Message{
		ID:        uuid.NewString(),
		Role:      role,
		Content:   content,
		Timestamp: time.Now().UTC(),
	})
}

func validCode(code string) bool {
	if len(code) != config.CodeLength {
		return false
	}
	for i := 0; i < len(code); i++ {
		if code[i] < '0' || code[i] > '9' {
			return false
		}
	}
	return true
}

// sessionLocks hands out one mutex per session id. Entries live for the
// process lifetime; growth is bounded by session count.
type sessionLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newSessionLocks() *sessionLocks {
	return &sessionLocks{locks: make(map[string]*sync.Mutex)}
}

func (l *sessionLocks) get(id string) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	m, ok := l.locks[id]
	if !ok {
		m = &sync.Mutex{}
		l.locks[id] = m
	}
	return m
}
