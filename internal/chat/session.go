// Package chat holds the client-side conversation state: a Manager that owns
// the session collection and the active-session pointer, and a Client that
// streams assistant turns into a live message buffer.
package chat

import (
	"strings"
	"time"
	"unicode/utf8"
)

// Role is the author of a message
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// MessageStatus tracks whether a message is final
type MessageStatus string

const (
	StatusComplete  MessageStatus = "complete"
	StatusStreaming MessageStatus = "streaming"
	StatusFailed    MessageStatus = "failed"
)

// Message is one entry of a conversation
type Message struct {
	Role    Role          `json:"role" yaml:"role"`
	Content string        `json:"content" yaml:"content"`
	Status  MessageStatus `json:"status,omitempty" yaml:"status,omitempty"`
}

// Defaults for a freshly created session
const (
	DefaultTitle   = "New Chat"
	DefaultSummary = "New conversation"
)

const (
	titleLength = 30
	ellipsis    = "…"
)

// Session is one conversation thread
type Session struct {
	ID        string    `json:"id" yaml:"id"`
	Title     string    `json:"title" yaml:"title"`
	Summary   string    `json:"summary" yaml:"summary"`
	Messages  []Message `json:"messages" yaml:"messages"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`

	titled bool
}

// Matches reports whether query occurs in the title or summary, ignoring case
func (s Session) Matches(query string) bool {
	q := strings.ToLower(query)
	return strings.Contains(strings.ToLower(s.Title), q) ||
		strings.Contains(strings.ToLower(s.Summary), q)
}

func (s *Session) clone() Session {
	c := *s
	c.Messages = cloneMessages(s.Messages)
	return c
}

// interrupt marks a trailing in-progress reply as failed
func (s *Session) interrupt() {
	if n := len(s.Messages); n > 0 && s.Messages[n-1].Status == StatusStreaming {
		s.Messages[n-1].Status = StatusFailed
	}
}

// DeriveTitle builds a session title from the first user message
func DeriveTitle(firstMessage string) string {
	if utf8.RuneCountInString(firstMessage) <= titleLength {
		return firstMessage
	}
	runes := []rune(firstMessage)
	return string(runes[:titleLength]) + ellipsis
}

func cloneMessages(messages []Message) []Message {
	if messages == nil {
		return nil
	}
	out := make([]Message, len(messages))
	copy(out, messages)
	return out
}

// StarterPrompts are offered on an empty conversation
var StarterPrompts = []string{
	"Show me the latest legal documents",
	"Generate a summary report of my recent activities",
	"What legal resources do you recommend for contract review?",
	"Help me understand the legal implications of this contract",
}

// QuickReplies are offered after an assistant turn
var QuickReplies = []string{
	"Can you help me find a specific document?",
	"Generate a summary report",
	"What recommendations do you have?",
	"Tell me more about legal resources",
}
