// Package llm talks to hosted language models and turns their replies into JSON.
package llm

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// Role represents the role of a message sender.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message represents a chat message.
type Message struct {
	Role    Role
	Content string
}

// Request represents a completion request to the LLM.
type Request struct {
	Messages    []Message
	MaxTokens   int
	Temperature float64
}

// Usage tracks token consumption.
type Usage struct {
	InputTokens  int
	OutputTokens int
}

// Response represents the result of an LLM execution.
type Response struct {
	Content      string
	FinishReason string
	Usage        Usage
	Model        string
	Duration     time.Duration
}

// Provider is the interface every LLM backend implements.
type Provider interface {
	// Execute sends a completion request and returns the response.
	Execute(ctx context.Context, req Request) (*Response, error)

	// Name returns the provider identifier (e.g., "gemini", "anthropic").
	Name() string

	// Model returns the configured model name.
	Model() string
}

// ProviderConfig holds common configuration for providers.
type ProviderConfig struct {
	Name    string
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// APIError is a non-2xx answer from a provider API.
type APIError struct {
	Provider   string
	StatusCode int
	Err        error
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s API returned status %d: %v", e.Provider, e.StatusCode, e.Err)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// Temporary reports whether the request may succeed if repeated.
func (e *APIError) Temporary() bool {
	return e.StatusCode == http.StatusTooManyRequests ||
		e.StatusCode == http.StatusRequestTimeout ||
		e.StatusCode >= 500
}
