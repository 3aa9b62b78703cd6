package stub

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/adsero/adsero-assistant/internal/providers"
)

// Name is the registry ID of this provider
const Name = "stub"

// Provider streams canned responses without calling a model. It is used for
// local development and tests.
type Provider struct {
	chunks []string
	delay  time.Duration
	err    error
	failAt int
}

// Option configures the stub
type Option func(*Provider)

// WithChunks sets the streamed chunks
func WithChunks(chunks ...string) Option {
	return func(p *Provider) { p.chunks = chunks }
}

// WithDelay sleeps between chunks
func WithDelay(d time.Duration) Option {
	return func(p *Provider) { p.delay = d }
}

// WithStartError makes StreamComplete fail before streaming
func WithStartError(err error) Option {
	return func(p *Provider) { p.err = err }
}

// WithFailureAfter emits an error chunk after n content chunks
func WithFailureAfter(n int) Option {
	return func(p *Provider) { p.failAt = n }
}

// New creates a stub provider. Without WithChunks it echoes the last user message.
func New(opts ...Option) *Provider {
	p := &Provider{failAt: -1}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Name returns the provider name
func (p *Provider) Name() string {
	return "Stub"
}

// StreamComplete performs a streaming completion
func (p *Provider) StreamComplete(ctx context.Context, req providers.CompletionRequest) (<-chan providers.StreamChunk, error) {
	if p.err != nil {
		return nil, p.err
	}

	chunks := p.chunks
	if chunks == nil {
		chunks = echo(req.Messages)
	}

	out := make(chan providers.StreamChunk)
	id := fmt.Sprintf("stub-%d", time.Now().UnixNano())

	go func() {
		defer close(out)

		send := func(chunk providers.StreamChunk) bool {
			select {
			case out <- chunk:
				return true
			case <-ctx.Done():
				return false
			}
		}

		for i, chunk := range chunks {
			if i == p.failAt {
				send(providers.StreamChunk{ID: id, Error: "stub provider failure"})
				return
			}
			if !send(providers.StreamChunk{ID: id, Model: req.Model, Delta: chunk}) {
				return
			}
			if p.delay > 0 {
				select {
				case <-time.After(p.delay):
				case <-ctx.Done():
					send(providers.StreamChunk{ID: id, Error: ctx.Err().Error()})
					return
				}
			}
		}

		if p.failAt >= len(chunks) {
			send(providers.StreamChunk{ID: id, Error: "stub provider failure"})
			return
		}

		// Send final chunk with finish reason
		send(providers.StreamChunk{ID: id, Model: req.Model, FinishReason: "stop"})
	}()

	return out, nil
}

func echo(messages []providers.Message) []string {
	var last string
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == providers.RoleUser {
			last = messages[i].Content
			break
		}
	}

	words := strings.Fields("This is a stub response to: " + last)
	chunks := make([]string, len(words))
	for i, w := range words {
		if i < len(words)-1 {
			w += " "
		}
		chunks[i] = w
	}
	return chunks
}
