package services

import (
	"context"
	"time"

	"github.com/adsero/adsero-assistant/internal/providers"
)

// ChatStreamer defines the contract the HTTP handlers depend on
type ChatStreamer interface {
	// Validate checks a request without contacting the provider
	Validate(req ChatRequest) error

	// StreamChat starts a provider stream for the conversation
	StreamChat(ctx context.Context, req ChatRequest) (<-chan providers.StreamChunk, error)

	// MaxDuration bounds a single streamed turn
	MaxDuration() time.Duration
}

// Compile-time check that implementations satisfy the interface
var _ ChatStreamer = (*ChatService)(nil)
