package domain

import (
	"time"
)

// Session is one team's attempt at breaking a personality's code.
type Session struct {
	ID                string      `json:"id"`
	TeamName          string      `json:"team_name"`
	Personality       Personality `json:"personality"`
	StartTime         time.Time   `json:"start_time"`
	Messages          []Message   `json:"messages"`
	AttemptsRemaining int         `json:"attempts_remaining"`
	CodeAttempts      []string    `json:"code_attempts"`
	Difficulty        int         `json:"difficulty"`
	Completed         bool        `json:"completed"`
	Success           bool        `json:"success"`
	HintsGiven        int         `json:"hints_given"`
}

// Message is a single conversational turn. Immutable once appended.
type Message struct {
	ID        string    `json:"id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// Clone returns a deep copy so callers can't alias shared slices.
func (s *Session) Clone() *Session {
	c := *s
	c.Messages = append([]Message{}, s.Messages...)
	c.CodeAttempts = append([]string{}, s.CodeAttempts...)
	return &c
}
