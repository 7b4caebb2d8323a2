package chat

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/zhouzirui/z-tavern/webchat/internal/model/chat"
)

var (
	ErrValidation    = errors.New("invalid message")
	ErrUnknownSender = errors.New("sender is not a session participant")
	ErrEmptyText     = errors.New("message text is empty")
)

// Store is the append-only transcript of one conversation.
type Store struct {
	user  chat.Participant
	agent chat.Participant

	mu       sync.RWMutex
	messages []chat.Message
}

// NewStore creates an empty transcript between user and agent.
func NewStore(user, agent chat.Participant) *Store {
	return &Store{
		user:     user,
		agent:    agent,
		messages: make([]chat.Message, 0, 16),
	}
}

// Participants returns the user and the agent.
func (s *Store) Participants() (user, agent chat.Participant) {
	return s.user, s.agent
}

// Append adds msg to the end of the transcript.
func (s *Store) Append(msg chat.Message) error {
	if msg.SenderID != s.user.ID && msg.SenderID != s.agent.ID {
		return fmt.Errorf("%w: %w %q", ErrValidation, ErrUnknownSender, msg.SenderID)
	}
	if strings.TrimSpace(msg.Text) == "" {
		return fmt.Errorf("%w: %w", ErrValidation, ErrEmptyText)
	}

	s.mu.Lock()
	s.messages = append(s.messages, msg)
	s.mu.Unlock()
	return nil
}

// List returns the transcript in insertion order.
func (s *Store) List() []chat.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()

	copied := make([]chat.Message, len(s.messages))
	copy(copied, s.messages)
	return copied
}

// Len returns the number of stored messages.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.messages)
}
