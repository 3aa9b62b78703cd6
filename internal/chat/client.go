package chat

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

var (
	// ErrEmptyMessage rejects blank user input before anything is sent
	ErrEmptyMessage = errors.New("message is empty")

	// ErrBusy is returned while a turn is still streaming
	ErrBusy = errors.New("a response is already streaming")

	// ErrSessionChanged ends a turn whose session is no longer loaded
	ErrSessionChanged = errors.New("active session changed")
)

// Streamer sends a conversation to the streaming text service
type Streamer interface {
	Stream(ctx context.Context, history []Message) (TokenStream, error)
}

// TokenStream yields assistant tokens in arrival order. Recv returns io.EOF
// once the service signals completion.
type TokenStream interface {
	Recv() (string, error)
	Close() error
}

// ChangeFunc receives a snapshot of the buffer after every mutation
type ChangeFunc func(sessionID string, messages []Message)

// Client owns the live message buffer of one session and streams assistant
// turns into it. At most one turn is in flight at a time.
type Client struct {
	streamer Streamer
	log      *logrus.Entry

	mu        sync.Mutex
	sessionID string
	messages  []Message
	current   *Turn
	onChange  ChangeFunc
}

// ClientOption configures a Client
type ClientOption func(*Client)

// WithClientLogger sets the client logger
func WithClientLogger(log *logrus.Entry) ClientOption {
	return func(c *Client) { c.log = log }
}

// NewClient creates a client over streamer
func NewClient(streamer Streamer, opts ...ClientOption) *Client {
	c := &Client{
		streamer: streamer,
		log:      discardLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// OnChange registers the buffer listener. It is called with the client lock
// held, so it must not call back into the Client.
func (c *Client) OnChange(fn ChangeFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onChange = fn
}

// Messages returns a copy of the buffer
func (c *Client) Messages() []Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return cloneMessages(c.messages)
}

// SessionID returns the session the buffer belongs to
func (c *Client) SessionID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sessionID
}

// Busy reports whether a turn is in flight
func (c *Client) Busy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current != nil
}

// Load replaces the buffer with a session's history. An in-flight turn is
// cancelled and any token it still produces is dropped.
func (c *Client) Load(sessionID string, messages []Message) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.abandonLocked()
	c.sessionID = sessionID
	c.messages = cloneMessages(messages)
	c.emitLocked()
}

// abandon cancels the in-flight turn and detaches it from the buffer. The
// turn ends with ErrSessionChanged and emits nothing further.
func (c *Client) abandon() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.abandonLocked()
}

func (c *Client) abandonLocked() {
	if c.current == nil {
		return
	}
	c.log.WithField("session_id", c.current.SessionID).Debug("Abandoning in-flight turn")
	c.current.cancel()
	c.current = nil
}

// Send appends a user message and starts streaming the assistant reply. The
// user message is published before the request is dispatched.
func (c *Client) Send(ctx context.Context, content string) (*Turn, error) {
	return c.send(ctx, "", content)
}

// send dispatches a turn; a non-empty session pins the turn to that session
func (c *Client) send(ctx context.Context, session, content string) (*Turn, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyMessage
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if session != "" && c.sessionID != session {
		return nil, ErrSessionChanged
	}
	if c.current != nil {
		return nil, ErrBusy
	}

	c.messages = append(c.messages, Message{Role: RoleUser, Content: content, Status: StatusComplete})
	history := historyOf(c.messages)

	turnCtx, cancel := context.WithCancel(ctx)
	turn := &Turn{
		SessionID: c.sessionID,
		cancel:    cancel,
		done:      make(chan struct{}),
	}
	c.current = turn
	c.emitLocked()

	go c.run(turnCtx, turn, history)

	return turn, nil
}

func (c *Client) run(ctx context.Context, turn *Turn, history []Message) {
	defer turn.cancel()

	stream, err := c.streamer.Stream(ctx, history)
	if err != nil {
		c.finish(turn, err)
		return
	}
	defer stream.Close()

	for {
		token, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			c.finish(turn, nil)
			return
		}
		if err != nil {
			c.finish(turn, err)
			return
		}
		if !c.appendToken(turn, token) {
			c.finish(turn, ErrSessionChanged)
			return
		}
	}
}

// appendToken extends the in-progress assistant message. It returns false
// once the turn no longer owns the buffer.
func (c *Client) appendToken(turn *Turn, token string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current != turn {
		return false
	}
	if token == "" {
		return true
	}

	if !turn.started {
		c.messages = append(c.messages, Message{Role: RoleAssistant, Status: StatusStreaming})
		turn.started = true
	}
	c.messages[len(c.messages)-1].Content += token
	c.emitLocked()
	return true
}

func (c *Client) finish(turn *Turn, err error) {
	c.mu.Lock()
	if c.current != turn {
		c.mu.Unlock()
		turn.complete(ErrSessionChanged)
		return
	}

	c.current = nil
	switch {
	case turn.started && err != nil:
		c.messages[len(c.messages)-1].Status = StatusFailed
	case turn.started:
		c.messages[len(c.messages)-1].Status = StatusComplete
	case err == nil:
		c.messages = append(c.messages, Message{Role: RoleAssistant, Status: StatusComplete})
	}
	c.emitLocked()
	c.mu.Unlock()

	if err != nil {
		c.log.WithError(err).WithField("session_id", turn.SessionID).Warn("Assistant turn failed")
	}
	turn.complete(err)
}

func (c *Client) emitLocked() {
	if c.onChange != nil {
		c.onChange(c.sessionID, cloneMessages(c.messages))
	}
}

// historyOf returns the messages that are sent to the service. Failed or
// unfinished assistant output is left out.
func historyOf(messages []Message) []Message {
	history := make([]Message, 0, len(messages))
	for _, m := range messages {
		if m.Status == StatusFailed || m.Status == StatusStreaming {
			continue
		}
		history = append(history, Message{Role: m.Role, Content: m.Content})
	}
	return history
}

// Turn is the handle of one in-flight assistant response
type Turn struct {
	SessionID string

	cancel  context.CancelFunc
	done    chan struct{}
	err     error
	started bool
}

// Done is closed when the turn ends
func (t *Turn) Done() <-chan struct{} {
	return t.done
}

// Err returns the turn outcome once Done is closed
func (t *Turn) Err() error {
	select {
	case <-t.done:
		return t.err
	default:
		return nil
	}
}

// Wait blocks until the turn ends or ctx is done
func (t *Turn) Wait(ctx context.Context) error {
	select {
	case <-t.done:
		return t.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close cancels the subscription. The partial reply is kept and marked failed.
func (t *Turn) Close() {
	t.cancel()
}

func (t *Turn) complete(err error) {
	t.err = err
	close(t.done)
}

func discardLogger() *logrus.Entry {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logrus.NewEntry(logger)
}
