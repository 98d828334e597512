package domain

import "errors"

var (
	ErrEmptyTeamName         = errors.New("team name is empty")
	ErrUnknownPersonality    = errors.New("unknown personality")
	ErrEmptyMessage          = errors.New("message is empty")
	ErrInvalidCode           = errors.New("code must be exactly 6 digits")
	ErrSessionNotFound       = errors.New("session not found")
	ErrSessionCompleted      = errors.New("session already completed")
	ErrSecretsNotInitialized = errors.New("session secrets not initialized")
	ErrNoCredentials         = errors.New("no API keys configured")
	ErrCredentialsExhausted  = errors.New("all API keys rate limited")
)

// IsInvalidInput reports whether err is a caller-correctable validation
// failure that must never mutate state.
func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrEmptyTeamName) ||
		errors.Is(err, ErrUnknownPersonality) ||
		errors.Is(err, ErrEmptyMessage) ||
		errors.Is(err, ErrInvalidCode)
}
