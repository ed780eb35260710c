package chat

import (
	"context"
	"errors"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"
)

var (
	ErrEmptyMessage = errors.New("message is empty")
	ErrBusy         = errors.New("a reply is already pending")
)

// Entry is a message of the session transcript.
type Entry struct {
	ID string `json:"id"`
	Message
}

// Session is one conversation. At most one Send is in flight; the
// transcript is the running history sent with every request.
type Session struct {
	client  *Client
	context string

	inflight sync.Mutex
	mu       sync.RWMutex
	history  []Entry
}

// NewSession starts an empty conversation. A non-empty noteContext is sent
// as a system message ahead of the history.
func (c *Client) NewSession(noteContext string) *Session {
	return &Session{client: c, context: noteContext}
}

// SetContext replaces the context sent with the next requests.
func (s *Session) SetContext(noteContext string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.context = noteContext
}

// History returns a copy of the transcript.
func (s *Session) History() []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.history)
}

// Send appends text as a user message, asks for a reply and appends it.
// A remote failure is not returned: the fallback reply is appended instead.
func (s *Session) Send(ctx context.Context, text string) (Entry, error) {
	if strings.TrimSpace(text) == "" {
		return Entry{}, ErrEmptyMessage
	}
	if !s.inflight.TryLock() {
		return Entry{}, ErrBusy
	}
	defer s.inflight.Unlock()

	s.mu.Lock()
	s.history = append(s.history, Entry{ID: uuid.NewString(), Message: Message{Role: RoleUser, Content: text}})
	msgs := make([]Message, len(s.history))
	for i, e := range s.history {
		msgs[i] = e.Message
	}
	msgs = WithContext(s.context, msgs)
	s.mu.Unlock()

	reply := Entry{
		ID:      uuid.NewString(),
		Message: Message{Role: RoleAssistant, Content: s.client.Reply(ctx, msgs)},
	}

	s.mu.Lock()
	s.history = append(s.history, reply)
	s.mu.Unlock()
	return reply, nil
}
