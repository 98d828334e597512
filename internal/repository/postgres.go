package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/overclocked/breakai/internal/domain"
)

// Postgres persists sessions in a sessions table with the message history
// as jsonb, secrets in a companion table keyed by (session, personality),
// and assignment counters in a third.
type Postgres struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

func (p *Postgres) SaveSession(ctx context.Context, session *domain.Session) error {
	messages, err := json.Marshal(session.Messages)
	if err != nil {
		return fmt.Errorf("marshal messages: %w", err)
	}

	_, err = p.pool.Exec(ctx, `
		INSERT INTO sessions (
			id, team_name, personality, start_time, messages,
			attempts_remaining, code_attempts, difficulty, completed, success, hints_given, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW())
		ON CONFLICT (id) DO UPDATE SET
			messages = EXCLUDED.messages,
			attempts_remaining = EXCLUDED.attempts_remaining,
			code_attempts = EXCLUDED.code_attempts,
			difficulty = EXCLUDED.difficulty,
			completed = EXCLUDED.completed,
			success = EXCLUDED.success,
			hints_given = EXCLUDED.hints_given,
			updated_at = NOW()`,
		session.ID, session.TeamName, string(session.Personality), session.StartTime, messages,
		session.AttemptsRemaining, session.CodeAttempts, session.Difficulty,
		session.Completed, session.Success, session.HintsGiven,
	)
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (p *Postgres) GetSession(ctx context.Context, id string) (*domain.Session, error) {
	row := p.pool.QueryRow(ctx, `
		SELECT id, team_name, personality, start_time, messages,
		       attempts_remaining, code_attempts, difficulty, completed, success, hints_given
		FROM sessions WHERE id = $1`, id)

	session, err := scanSession(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrSessionNotFound
		}
		return nil, fmt.Errorf("get session: %w", err)
	}
	return session, nil
}

func (p *Postgres) ListSessions(ctx context.Context) ([]*domain.Session, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT id, team_name, personality, start_time, messages,
		       attempts_remaining, code_attempts, difficulty, completed, success, hints_given
		FROM sessions ORDER BY start_time`)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*domain.Session
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sessions = append(sessions, session)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return sessions, nil
}

func (p *Postgres) ClearAll(ctx context.Context) error {
	if _, err := p.pool.Exec(ctx, `TRUNCATE sessions, session_secrets`); err != nil {
		return fmt.Errorf("clear sessions: %w", err)
	}
	return nil
}

func (p *Postgres) PutSecrets(ctx context.Context, sessionID string, codes map[domain.Personality]string) error {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	for personality, code := range codes {
		_, err := tx.Exec(ctx, `
			INSERT INTO session_secrets (session_id, personality, code)
			VALUES ($1, $2, $3)
			ON CONFLICT (session_id, personality) DO NOTHING`,
			sessionID, string(personality), code)
		if err != nil {
			return fmt.Errorf("put secret: %w", err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit secrets: %w", err)
	}
	return nil
}

func (p *Postgres) GetSecrets(ctx context.Context, sessionID string) (map[domain.Personality]string, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT personality, code FROM session_secrets WHERE session_id = $1`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("get secrets: %w", err)
	}
	defer rows.Close()

	codes := make(map[domain.Personality]string)
	for rows.Next() {
		var personality, code string
		if err := rows.Scan(&personality, &code); err != nil {
			return nil, fmt.Errorf("scan secret: %w", err)
		}
		codes[domain.Personality(personality)] = code
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get secrets: %w", err)
	}
	if len(codes) == 0 {
		return nil, domain.ErrSecretsNotInitialized
	}
	return codes, nil
}

func (p *Postgres) RecordAssignment(ctx context.Context, personality domain.Personality) error {
	_, err := p.pool.Exec(ctx, `
		INSERT INTO personality_assignments (personality, count) VALUES ($1, 1)
		ON CONFLICT (personality) DO UPDATE SET count = personality_assignments.count + 1`,
		string(personality))
	if err != nil {
		return fmt.Errorf("record assignment: %w", err)
	}
	return nil
}

func (p *Postgres) Distribution(ctx context.Context) (map[domain.Personality]int64, error) {
	rows, err := p.pool.Query(ctx, `SELECT personality, count FROM personality_assignments`)
	if err != nil {
		return nil, fmt.Errorf("get distribution: %w", err)
	}
	defer rows.Close()

	dist := make(map[domain.Personality]int64, len(domain.AllPersonalities))
	for _, p := range domain.AllPersonalities {
		dist[p] = 0
	}
	for rows.Next() {
		var personality string
		var count int64
		if err := rows.Scan(&personality, &count); err != nil {
			return nil, fmt.Errorf("scan distribution: %w", err)
		}
		dist[domain.Personality(personality)] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get distribution: %w", err)
	}
	return dist, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (*domain.Session, error) {
	var (
		session     domain.Session
		personality string
		messages    []byte
	)
	err := row.Scan(
		&session.ID, &session.TeamName, &personality, &session.StartTime, &messages,
		&session.AttemptsRemaining, &session.CodeAttempts, &session.Difficulty,
		&session.Completed, &session.Success, &session.HintsGiven,
	)
	if err != nil {
		return nil, err
	}
	session.Personality = domain.Personality(personality)
	if err := json.Unmarshal(messages, &session.Messages); err != nil {
		return nil, fmt.Errorf("unmarshal messages: %w", err)
	}
	if session.CodeAttempts == nil {
		session.CodeAttempts = []string{}
	}
	return &session, nil
}
