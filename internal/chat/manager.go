package chat

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// ErrSessionNotFound is returned for ids that are not in the collection
var ErrSessionNotFound = errors.New("session not found")

// Listener is notified after a buffer change has been stored
type Listener func(sessionID string, messages []Message)

// Manager owns the session collection and the active-session pointer. Sessions
// are kept most recent first.
type Manager struct {
	client *Client

	// ops serializes mutations so the active pointer and the client
	// buffer always move together. Never taken from a client callback.
	ops sync.Mutex

	mu       sync.Mutex
	sessions []*Session
	activeID string

	listener Listener
	newID    func() string
	now      func() time.Time
	log      *logrus.Entry
}

// ManagerOption configures a Manager
type ManagerOption func(*Manager)

// WithListener registers a listener for stored buffer changes. It runs while
// the client lock is held and must not call into the Client.
func WithListener(fn Listener) ManagerOption {
	return func(m *Manager) { m.listener = fn }
}

// WithIDGenerator overrides uuid session ids
func WithIDGenerator(fn func() string) ManagerOption {
	return func(m *Manager) { m.newID = fn }
}

// WithClock overrides time.Now
func WithClock(fn func() time.Time) ManagerOption {
	return func(m *Manager) { m.now = fn }
}

// WithLogger sets the manager logger
func WithLogger(log *logrus.Entry) ManagerOption {
	return func(m *Manager) { m.log = log }
}

// NewManager creates a manager and subscribes it to client buffer changes
func NewManager(client *Client, opts ...ManagerOption) *Manager {
	m := &Manager{
		client: client,
		newID:  uuid.NewString,
		now:    time.Now,
		log:    discardLogger(),
	}
	for _, opt := range opts {
		opt(m)
	}

	client.OnChange(m.OnBufferChanged)
	return m
}

// CreateSession adds an empty session at the front and makes it active
func (m *Manager) CreateSession() string {
	m.ops.Lock()
	defer m.ops.Unlock()

	m.client.abandon()

	m.mu.Lock()
	id := m.createLocked()
	m.mu.Unlock()

	m.client.Load(id, nil)
	m.log.WithField("session_id", id).Debug("Created session")
	return id
}

func (m *Manager) createLocked() string {
	s := &Session{
		ID:        m.newID(),
		Title:     DefaultTitle,
		Summary:   DefaultSummary,
		CreatedAt: m.now(),
	}
	m.sessions = append([]*Session{s}, m.sessions...)
	m.activateLocked(s.ID)
	return s.ID
}

// activateLocked moves the active pointer. A reply still streaming into the
// previous session is frozen as failed. The client turn must already be
// abandoned so that the stored reply and the turn error agree.
func (m *Manager) activateLocked(id string) {
	if prev := m.findLocked(m.activeID); prev != nil {
		prev.interrupt()
	}
	m.activeID = id
}

// SelectSession makes id active and loads its history into the client
func (m *Manager) SelectSession(id string) error {
	m.ops.Lock()
	defer m.ops.Unlock()

	m.mu.Lock()
	s := m.findLocked(id)
	if s == nil {
		m.mu.Unlock()
		return fmt.Errorf("select %q: %w", id, ErrSessionNotFound)
	}
	if m.activeID == id {
		// Already loaded; reloading would abort its own stream
		m.mu.Unlock()
		return nil
	}
	m.mu.Unlock()

	m.client.abandon()

	m.mu.Lock()
	m.activateLocked(id)
	messages := cloneMessages(s.Messages)
	m.mu.Unlock()

	m.client.Load(id, messages)
	return nil
}

// DeleteSession removes id. When it was active, the first remaining session
// takes over, or a fresh one is created if none remain.
func (m *Manager) DeleteSession(id string) error {
	m.ops.Lock()
	defer m.ops.Unlock()

	m.mu.Lock()
	idx := m.indexLocked(id)
	if idx < 0 {
		m.mu.Unlock()
		return fmt.Errorf("delete %q: %w", id, ErrSessionNotFound)
	}
	if id != m.activeID {
		m.sessions = slices.Delete(m.sessions, idx, idx+1)
		m.mu.Unlock()
		return nil
	}
	m.mu.Unlock()

	m.client.abandon()

	// ops is held, so idx still addresses id
	m.mu.Lock()
	m.sessions = slices.Delete(m.sessions, idx, idx+1)
	m.activeID = ""
	var messages []Message
	if len(m.sessions) > 0 {
		m.activeID = m.sessions[0].ID
		messages = cloneMessages(m.sessions[0].Messages)
	} else {
		m.createLocked()
	}
	next := m.activeID
	m.mu.Unlock()

	m.client.Load(next, messages)
	m.log.WithFields(logrus.Fields{"deleted": id, "active": next}).Debug("Deleted active session")
	return nil
}

// OnBufferChanged stores a snapshot of the client buffer in the addressed
// session. Updates for a session that is no longer active are dropped. The
// first user message of an empty session sets its title.
func (m *Manager) OnBufferChanged(sessionID string, messages []Message) {
	m.mu.Lock()
	if sessionID == "" || sessionID != m.activeID {
		m.mu.Unlock()
		return
	}
	s := m.findLocked(sessionID)
	if s == nil {
		m.mu.Unlock()
		return
	}

	if !s.titled && len(s.Messages) == 0 && len(messages) > 0 && messages[0].Role == RoleUser {
		s.Title = DeriveTitle(messages[0].Content)
		s.titled = true
	}
	s.Messages = cloneMessages(messages)
	listener := m.listener
	m.mu.Unlock()

	if listener != nil {
		listener(sessionID, messages)
	}
}

// Send submits input on the active session, creating one if the collection
// is empty. Blank input is rejected before anything changes.
func (m *Manager) Send(ctx context.Context, input string) (*Turn, error) {
	if strings.TrimSpace(input) == "" {
		return nil, ErrEmptyMessage
	}

	m.ops.Lock()
	defer m.ops.Unlock()

	id := m.ensureActiveLocked()
	return m.client.send(ctx, id, input)
}

// EnsureActive returns the active session id, creating a session if needed
func (m *Manager) EnsureActive() string {
	m.ops.Lock()
	defer m.ops.Unlock()
	return m.ensureActiveLocked()
}

// ensureActiveLocked requires ops to be held
func (m *Manager) ensureActiveLocked() string {
	m.mu.Lock()
	if m.activeID != "" {
		id := m.activeID
		m.mu.Unlock()
		return id
	}
	id := m.createLocked()
	m.mu.Unlock()

	m.client.Load(id, nil)
	return id
}

// Busy reports whether the active session has a turn in flight
func (m *Manager) Busy() bool {
	return m.client.Busy()
}

// Sessions returns copies of all sessions, most recent first
func (m *Manager) Sessions() []Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		out = append(out, s.clone())
	}
	return out
}

// Session returns a copy of one session
func (m *Manager) Session(id string) (Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := m.findLocked(id)
	if s == nil {
		return Session{}, fmt.Errorf("session %q: %w", id, ErrSessionNotFound)
	}
	return s.clone(), nil
}

// Active returns the active session, if any
func (m *Manager) Active() (Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := m.findLocked(m.activeID)
	if s == nil {
		return Session{}, false
	}
	return s.clone(), true
}

// ActiveID returns the active session id, empty when there are no sessions
func (m *Manager) ActiveID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.activeID
}

// Search filters sessions by title or summary
func (m *Manager) Search(query string) []Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []Session
	for _, s := range m.sessions {
		if s.Matches(query) {
			out = append(out, s.clone())
		}
	}
	return out
}

func (m *Manager) findLocked(id string) *Session {
	if idx := m.indexLocked(id); idx >= 0 {
		return m.sessions[idx]
	}
	return nil
}

func (m *Manager) indexLocked(id string) int {
	if id == "" {
		return -1
	}
	return slices.IndexFunc(m.sessions, func(s *Session) bool { return s.ID == id })
}
