package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/adsero/adsero-assistant/internal/config"
	"github.com/adsero/adsero-assistant/internal/providers"
)

// ErrInvalidRequest is wrapped by every validation failure
var ErrInvalidRequest = errors.New("invalid chat request")

// ChatMessage is one entry of the history posted by a client
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is the body of POST /api/chat
type ChatRequest struct {
	Messages []ChatMessage `json:"messages"`
}

// ChatService turns a client conversation into a provider stream
type ChatService struct {
	provider providers.Provider
	grounder *Grounder
	health   *HealthMonitor
	cfg      config.ChatConfig
	log      *logrus.Entry
}

// ChatOption configures a ChatService
type ChatOption func(*ChatService)

// WithHealthMonitor records the outcome of every stream in h
func WithHealthMonitor(h *HealthMonitor) ChatOption {
	return func(s *ChatService) {
		s.health = h
	}
}

// NewChatService creates a new chat service. grounder may be nil.
func NewChatService(provider providers.Provider, grounder *Grounder, cfg config.ChatConfig, log *logrus.Entry, opts ...ChatOption) *ChatService {
	s := &ChatService{
		provider: provider,
		grounder: grounder,
		cfg:      cfg,
		log:      log,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// MaxDuration returns the hard deadline of one streamed turn
func (s *ChatService) MaxDuration() time.Duration {
	return s.cfg.MaxDuration
}

// Validate checks roles and ordering of the conversation
func (s *ChatService) Validate(req ChatRequest) error {
	if len(req.Messages) == 0 {
		return fmt.Errorf("%w: messages are required", ErrInvalidRequest)
	}

	for i, msg := range req.Messages {
		if msg.Role != providers.RoleUser && msg.Role != providers.RoleAssistant {
			return fmt.Errorf("%w: message %d has unsupported role %q", ErrInvalidRequest, i, msg.Role)
		}
	}

	last := req.Messages[len(req.Messages)-1]
	if last.Role != providers.RoleUser {
		return fmt.Errorf("%w: last message must be from the user", ErrInvalidRequest)
	}
	if strings.TrimSpace(last.Content) == "" {
		return fmt.Errorf("%w: last message is empty", ErrInvalidRequest)
	}

	return nil
}

// StreamChat validates the request, prepends the system prompt and any
// catalog context, and starts the provider stream
func (s *ChatService) StreamChat(ctx context.Context, req ChatRequest) (<-chan providers.StreamChunk, error) {
	if err := s.Validate(req); err != nil {
		return nil, err
	}

	messages := s.buildMessages(ctx, req.Messages)

	s.log.WithFields(logrus.Fields{
		"provider": s.provider.Name(),
		"model":    s.cfg.Model,
		"messages": len(messages),
	}).Debug("Starting chat stream")

	start := time.Now()
	stream, err := s.provider.StreamComplete(ctx, providers.CompletionRequest{
		Messages: messages,
		Model:    s.cfg.Model,
	})
	if err != nil {
		if s.health != nil {
			s.health.RecordError(s.provider.Name(), err)
		}
		return nil, fmt.Errorf("start %s stream: %w", s.provider.Name(), err)
	}

	if s.health == nil {
		return stream, nil
	}
	return s.observe(ctx, stream, start), nil
}

// observe forwards stream and records its outcome. A stream abandoned by its
// consumer or cut by ctx is not counted against the provider.
func (s *ChatService) observe(ctx context.Context, stream <-chan providers.StreamChunk, start time.Time) <-chan providers.StreamChunk {
	out := make(chan providers.StreamChunk)
	name := s.provider.Name()

	go func() {
		defer close(out)
		for chunk := range stream {
			switch {
			case ctx.Err() != nil:
			case chunk.Error != "":
				s.health.RecordError(name, errors.New(chunk.Error))
			case chunk.FinishReason != "":
				s.health.RecordSuccess(name, time.Since(start))
			}

			select {
			case out <- chunk:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

func (s *ChatService) buildMessages(ctx context.Context, history []ChatMessage) []providers.Message {
	messages := make([]providers.Message, 0, len(history)+2)
	if s.cfg.SystemPrompt != "" {
		messages = append(messages, providers.Message{Role: providers.RoleSystem, Content: s.cfg.SystemPrompt})
	}

	if s.cfg.Grounding && s.grounder != nil {
		last := history[len(history)-1].Content
		if note := s.grounder.Context(ctx, last); note != "" {
			messages = append(messages, providers.Message{Role: providers.RoleSystem, Content: note})
		}
	}

	for _, msg := range history {
		messages = append(messages, providers.Message{Role: msg.Role, Content: msg.Content})
	}
	return messages
}
