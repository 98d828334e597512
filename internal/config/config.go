package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	// Core
	DatabaseURL string `env:"DATABASE_URL,required"`

	// Model backend
	APIBase     string  `env:"OPENAI_API_BASE" envDefault:"https://api.groq.com/openai/v1"`
	Model       string  `env:"AI_MODEL" envDefault:"llama-3.3-70b-versatile"`
	Temperature float64 `env:"AI_TEMPERATURE" envDefault:"0.8"`
	MaxTokens   int     `env:"AI_MAX_TOKENS" envDefault:"500"`

	// Credential pool: up to 10 primary keys plus one legacy backup key.
	APIKey       string `env:"OPENAI_API_KEY"`
	APIKey2      string `env:"OPENAI_API_KEY_2"`
	APIKey3      string `env:"OPENAI_API_KEY_3"`
	APIKey4      string `env:"OPENAI_API_KEY_4"`
	APIKey5      string `env:"OPENAI_API_KEY_5"`
	APIKey6      string `env:"OPENAI_API_KEY_6"`
	APIKey7      string `env:"OPENAI_API_KEY_7"`
	APIKey8      string `env:"OPENAI_API_KEY_8"`
	APIKey9      string `env:"OPENAI_API_KEY_9"`
	APIKey10     string `env:"OPENAI_API_KEY_10"`
	APIKeyBackup string `env:"OPENAI_API_KEY_BACKUP"`

	// Pricing per 1M tokens (USD), used for gateway spend estimates.
	PromptPrice     float64 `env:"AI_PROMPT_PRICE" envDefault:"0.59"`
	CompletionPrice float64 `env:"AI_COMPLETION_PRICE" envDefault:"0.79"`

	// Server
	Port int `env:"PORT" envDefault:"8080"`

	// CORS
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// Credentials returns the configured API keys in rotation order: primary
// keys 1..10 first, then the legacy backup key. Empty slots are skipped.
func (c *Config) Credentials() []string {
	candidates := []string{
		c.APIKey, c.APIKey2, c.APIKey3, c.APIKey4, c.APIKey5,
		c.APIKey6, c.APIKey7, c.APIKey8, c.APIKey9, c.APIKey10,
	}
	keys := make([]string, 0, len(candidates)+1)
	for _, k := range candidates {
		if k != "" {
			keys = append(keys, k)
		}
	}
	if c.APIKeyBackup != "" {
		keys = append(keys, c.APIKeyBackup)
	}
	return keys
}
