package providers

import (
	"context"
)

// Provider defines the interface for streaming LLM providers
type Provider interface {
	// Name returns the provider name
	Name() string

	// StreamComplete performs a streaming completion. The returned channel is
	// closed once the provider is done; the last chunk carries either a
	// FinishReason or an Error.
	StreamComplete(ctx context.Context, req CompletionRequest) (<-chan StreamChunk, error)
}

// Roles understood by the providers
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// CompletionRequest represents a chat completion request
type CompletionRequest struct {
	Messages    []Message `json:"messages"`
	Model       string    `json:"model"`
	Temperature *float32  `json:"temperature,omitempty"`
	MaxTokens   *int      `json:"max_tokens,omitempty"`
}

// Message represents a chat message
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// StreamChunk represents a chunk in a streaming response
type StreamChunk struct {
	ID           string `json:"id,omitempty"`
	Model        string `json:"model,omitempty"`
	Delta        string `json:"delta,omitempty"`
	FinishReason string `json:"finish_reason,omitempty"`
	Error        string `json:"error,omitempty"`
}
