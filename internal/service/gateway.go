package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"

	"github.com/overclocked/breakai/internal/config"
	"github.com/overclocked/breakai/internal/domain"
	"github.com/shopspring/decimal"
)

const megaToken = 1_000_000

type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []ChatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int64 `json:"prompt_tokens"`
		CompletionTokens int64 `json:"completion_tokens"`
	} `json:"usage"`
}

// CredentialStats is a snapshot of one credential's lifetime usage.
type CredentialStats struct {
	Requests         int64           `json:"requests"`
	PromptTokens     int64           `json:"prompt_tokens"`
	CompletionTokens int64           `json:"completion_tokens"`
	Cost             decimal.Decimal `json:"cost"`
}

// Gateway forwards conversations to an OpenAI-compatible chat-completions
// backend through a pool of credentials. Calls rotate round-robin across
// the pool: the shared cursor marks where the next call starts, and only
// advances when a call succeeds. A 429 moves on to the next credential; any
// other backend error is surfaced immediately.
type Gateway struct {
	baseURL         string
	model           string
	temperature     float64
	maxTokens       int
	httpClient      *http.Client
	promptPrice     decimal.Decimal
	completionPrice decimal.Decimal

	mu     sync.Mutex
	creds  []string
	cursor int
	stats  []CredentialStats
}

func NewGateway(cfg *config.Config) *Gateway {
	creds := cfg.Credentials()
	return &Gateway{
		baseURL:         cfg.APIBase,
		model:           cfg.Model,
		temperature:     cfg.Temperature,
		maxTokens:       cfg.MaxTokens,
		httpClient:      &http.Client{Timeout: config.RequestTimeout},
		promptPrice:     decimal.NewFromFloat(cfg.PromptPrice),
		completionPrice: decimal.NewFromFloat(cfg.CompletionPrice),
		creds:           creds,
		stats:           make([]CredentialStats, len(creds)),
	}
}

// Complete sends the system prompt and conversation history to the backend
// and returns the assistant text. Each credential is tried at most once per
// call; timeouts and transport failures count as rate-limit-class for
// rotation purposes.
func (g *Gateway) Complete(ctx context.Context, systemPrompt string, history []ChatMessage) (string, error) {
	n := len(g.creds)
	if n == 0 {
		return "", domain.ErrNoCredentials
	}

	messages := make([]ChatMessage, 0, len(history)+1)
	messages = append(messages, ChatMessage{Role: domain.RoleSystem, Content: systemPrompt})
	messages = append(messages, history...)

	payload, err := json.Marshal(chatRequest{
		Model:       g.model,
		Messages:    messages,
		Temperature: g.temperature,
		MaxTokens:   g.maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	g.mu.Lock()
	start := g.cursor
	g.mu.Unlock()

	var lastErr error
	for attempt := 0; attempt < n; attempt++ {
		idx := (start + attempt) % n

		resp, retryable, err := g.try(ctx, g.creds[idx], payload)
		if err == nil {
			g.mu.Lock()
			g.stats[idx].Requests++
			g.stats[idx].PromptTokens += resp.Usage.PromptTokens
			g.stats[idx].CompletionTokens += resp.Usage.CompletionTokens
			g.stats[idx].Cost = g.stats[idx].Cost.Add(g.cost(resp.Usage.PromptTokens, resp.Usage.CompletionTokens))
			g.cursor = (idx + 1) % n
			g.mu.Unlock()
			return resp.Choices[0].Message.Content, nil
		}
		if !retryable {
			return "", err
		}

		slog.Warn("credential rate limited, trying next", "credential", idx+1, "error", err)
		lastErr = err
	}

	return "", fmt.Errorf("%w (last error: %v)", domain.ErrCredentialsExhausted, lastErr)
}

// try issues one backend request with one credential. The second return
// value reports whether the failure is rate-limit-class, i.e. worth
// trying the next credential.
func (g *Gateway) try(ctx context.Context, apiKey string, payload []byte) (*chatResponse, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return nil, false, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+apiKey)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		// Timeouts and transport failures rotate like a 429.
		return nil, true, fmt.Errorf("chat request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		io.Copy(io.Discard, resp.Body)
		return nil, true, fmt.Errorf("rate limited (429)")
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, true, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, false, fmt.Errorf("backend error: status %d: %s", resp.StatusCode, truncate(body, 512))
	}

	var chatResp chatResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return nil, false, fmt.Errorf("parse response: %w", err)
	}
	if len(chatResp.Choices) == 0 {
		return nil, false, fmt.Errorf("backend returned no choices")
	}

	return &chatResp, false, nil
}

func (g *Gateway) cost(promptTokens, completionTokens int64) decimal.Decimal {
	prompt := g.promptPrice.Mul(decimal.NewFromInt(promptTokens))
	completion := g.completionPrice.Mul(decimal.NewFromInt(completionTokens))
	return prompt.Add(completion).Div(decimal.NewFromInt(megaToken))
}

// Stats returns a snapshot of per-credential usage in pool order.
func (g *Gateway) Stats() []CredentialStats {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]CredentialStats, len(g.stats))
	copy(out, g.stats)
	return out
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
