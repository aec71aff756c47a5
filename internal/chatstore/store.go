// Package chatstore owns the chat collection and message history for a
// session. All mutation goes through the store; callers get snapshot copies,
// never live slices. State lives in memory for the process lifetime only.
package chatstore

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrUnknownChat is returned for operations against a chat ID that is not in
// the collection.
var ErrUnknownChat = errors.New("chatstore: unknown chat")

// Message is a single turn in a chat. Messages are immutable once created;
// IDs are assigned monotonically per store.
type Message struct {
	ID        int64
	Text      string // raw payload; may itself be JSON-encoded structure
	IsUser    bool
	Timestamp time.Time
}

// Chat is a named, ordered conversation thread.
type Chat struct {
	ID          string
	Title       string
	Messages    []Message
	LastUpdated time.Time
}

// Store holds the chat collection and the active-chat pointer.
type Store struct {
	mu       sync.Mutex
	order    []string
	chats    map[string]*Chat
	activeID string
	nextID   int64
	now      func() time.Time
}

// New creates an empty store.
func New() *Store {
	return NewWithClock(time.Now)
}

// NewWithClock creates a store with an injected clock. Tests use this to pin
// timestamps.
func NewWithClock(now func() time.Time) *Store {
	return &Store{
		chats: make(map[string]*Chat),
		now:   now,
	}
}

// CreateChat appends a new chat with an empty message list and returns its ID.
func (s *Store) CreateChat(title string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := uuid.NewString()
	s.chats[id] = &Chat{
		ID:          id,
		Title:       title,
		LastUpdated: s.now(),
	}
	s.order = append(s.order, id)
	return id
}

// SelectChat sets the active chat.
func (s *Store) SelectChat(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.chats[id]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownChat, id)
	}
	s.activeID = id
	return nil
}

// ActiveID returns the active chat ID, or "" if no chat is active.
func (s *Store) ActiveID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeID
}

// Active returns a snapshot of the active chat, if one is selected.
func (s *Store) Active() (Chat, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.chats[s.activeID]
	if !ok {
		return Chat{}, false
	}
	return snapshot(c), true
}

// Get returns a snapshot of the chat with the given ID.
func (s *Store) Get(id string) (Chat, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.chats[id]
	if !ok {
		return Chat{}, false
	}
	return snapshot(c), true
}

// AppendMessage appends a message to a chat and bumps LastUpdated. Within a
// chat, timestamps never regress: an append observed with an earlier clock
// reading is clamped to the previous message's timestamp.
func (s *Store) AppendMessage(chatID, text string, isUser bool) (Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.chats[chatID]
	if !ok {
		return Message{}, fmt.Errorf("%w: %s", ErrUnknownChat, chatID)
	}

	ts := s.now()
	if n := len(c.Messages); n > 0 && ts.Before(c.Messages[n-1].Timestamp) {
		ts = c.Messages[n-1].Timestamp
	}

	s.nextID++
	msg := Message{
		ID:        s.nextID,
		Text:      text,
		IsUser:    isUser,
		Timestamp: ts,
	}
	c.Messages = append(c.Messages, msg)
	c.LastUpdated = ts
	return msg, nil
}

// DeleteChat removes a chat from the collection. Deleting the active chat
// leaves no chat active; there is no auto-selection. Deleting an unknown ID
// is a no-op.
func (s *Store) DeleteChat(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.chats[id]; !ok {
		return
	}
	delete(s.chats, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	if s.activeID == id {
		s.activeID = ""
	}
}

// Chats returns snapshots of all chats in creation order.
func (s *Store) Chats() []Chat {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Chat, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, snapshot(s.chats[id]))
	}
	return out
}

// Len returns the number of chats.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.chats)
}

// TimeAgo buckets elapsed time since t for display, using the store's clock.
func (s *Store) TimeAgo(t time.Time) string {
	return TimeAgoAt(s.now(), t)
}

// TimeAgoAt buckets the elapsed time between now and t: under a minute is
// "Just now", then whole minutes, hours and days (floored, not rounded).
func TimeAgoAt(now, t time.Time) string {
	d := now.Sub(t)
	if d < 0 {
		d = 0
	}
	switch {
	case d < time.Minute:
		return "Just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours())/24)
	}
}

func snapshot(c *Chat) Chat {
	out := *c
	out.Messages = make([]Message, len(c.Messages))
	copy(out.Messages, c.Messages)
	return out
}
