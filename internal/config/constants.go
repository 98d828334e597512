package config

import "time"

const (
	// Code submissions
	MaxCodeAttempts = 3
	CodeLength      = 6

	// Difficulty bounds
	MinDifficulty = 1
	MaxDifficulty = 5

	// Difficulty relaxes once, after both thresholds are crossed.
	RelaxElapsed       = 15 * time.Minute
	RelaxMinMessages   = 20
	RelaxCheckInterval = 1 * time.Second

	// AI request timeout
	RequestTimeout = 90 * time.Second

	// Assistant turn appended when the model backend fails.
	GatewayErrorNotice = "ERROR: Unable to process your message. Please try again."
)
