package ai

import (
	"context"
	"time"
)

// Provider is a text-completion backend for the portfolio assistant.
type Provider interface {
	// Complete answers a single-turn prompt.
	Complete(ctx context.Context, req *CompletionRequest) (*CompletionResponse, error)

	// Name returns the provider name (e.g. "gemini")
	Name() string
}

// CompletionRequest is a single-turn completion request.
type CompletionRequest struct {
	SystemPrompt string  `json:"system_prompt,omitempty"`
	Prompt       string  `json:"prompt"`
	MaxTokens    int     `json:"max_tokens,omitempty"`
	Temperature  float64 `json:"temperature,omitempty"`
	UserID       string  `json:"user_id,omitempty"` // For tracking and rate limiting
}

// CompletionResponse is the provider's answer.
type CompletionResponse struct {
	Content      string        `json:"content"`
	TokensUsed   int           `json:"tokens_used"`
	Provider     string        `json:"provider"`
	FinishReason string        `json:"finish_reason"`
	Model        string        `json:"model"`
	Duration     time.Duration `json:"duration"`
}

// ProviderConfig holds configuration for completion providers
type ProviderConfig struct {
	APIKey       string
	Model        string
	MaxTokens    int
	Temperature  float64
	Timeout      time.Duration
	RateLimitRPM int // Requests per minute
}

// ProviderError represents an error from a completion provider
type ProviderError struct {
	Provider  string
	Code      string
	Message   string
	Retryable bool
}

func (e *ProviderError) Error() string {
	return e.Provider + ": " + e.Message
}

// Common error codes
const (
	ErrorCodeRateLimit      = "rate_limit"
	ErrorCodeInvalidRequest = "invalid_request"
	ErrorCodeAuthentication = "authentication"
	ErrorCodeServerError    = "server_error"
	ErrorCodeTimeout        = "timeout"
	ErrorCodeUnavailable    = "unavailable"
)
