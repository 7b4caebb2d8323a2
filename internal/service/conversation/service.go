package conversation

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/zhouzirui/z-tavern/webchat/internal/model/chat"
	"github.com/zhouzirui/z-tavern/webchat/internal/model/persona"
	chatservice "github.com/zhouzirui/z-tavern/webchat/internal/service/chat"
	"github.com/zhouzirui/z-tavern/webchat/internal/service/composer"
	"github.com/zhouzirui/z-tavern/webchat/internal/service/gateway"
)

var ErrSessionNotFound = errors.New("session not found")

// Options is the per-process conversation policy, fixed at startup.
type Options struct {
	AgentType           string
	Ruleset             string
	UserName            string
	QueryEnabled        bool
	ClearQueryAfterSend bool
}

// Service keeps one Controller per browser session.
type Service struct {
	opts     Options
	resolver *persona.Resolver
	gw       Gateway
	hub      *chatservice.Hub

	mu       sync.RWMutex
	sessions map[string]*Controller
}

// NewService bootstraps the in-memory session registry.
func NewService(opts Options, resolver *persona.Resolver, gw Gateway, hub *chatservice.Hub) *Service {
	return &Service{
		opts:     opts,
		resolver: resolver,
		gw:       gw,
		hub:      hub,
		sessions: make(map[string]*Controller),
	}
}

// Hub returns the event hub shared by all sessions.
func (s *Service) Hub() *chatservice.Hub { return s.hub }

// CreateSession starts a conversation with freshly resolved participants and
// checks the backend once. A failed check still returns the session, marked
// unavailable.
func (s *Service) CreateSession(ctx context.Context) *Controller {
	session := chat.Session{
		ID:        uuid.NewString(),
		User:      s.resolver.User(s.opts.UserName),
		Agent:     s.resolver.Agent(s.opts.AgentType),
		CreatedAt: time.Now().UTC(),
	}

	settings := Settings{
		AgentType:    s.opts.AgentType,
		Mode:         gateway.ModeFor(s.opts.AgentType),
		Ruleset:      s.opts.Ruleset,
		QueryEnabled: s.opts.QueryEnabled && gateway.ModeFor(s.opts.AgentType) == gateway.ModeDataAnalysis,
	}
	settings.ClearQueryAfterSend = settings.QueryEnabled && s.opts.ClearQueryAfterSend
	comp := composer.New(composer.Options{
		QueryEnabled:        settings.QueryEnabled,
		ClearQueryAfterSend: settings.ClearQueryAfterSend,
	})
	store := chatservice.NewStore(session.User, session.Agent)

	var events Publisher
	if s.hub != nil {
		events = s.hub
	}
	ctrl := NewController(session, settings, s.gw, store, comp, events)
	_ = ctrl.Connect(ctx)

	s.mu.Lock()
	s.sessions[session.ID] = ctrl
	s.mu.Unlock()

	log.Printf("[conversation] created session=%s agent=%q mode=%s", session.ID, session.Agent.DisplayName, settings.Mode)
	return ctrl
}

// GetSession retrieves a conversation by identifier.
func (s *Service) GetSession(_ context.Context, sessionID string) (*Controller, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ctrl, ok := s.sessions[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return ctrl, nil
}

// CloseSession forgets a conversation.
func (s *Service) CloseSession(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[sessionID]; !ok {
		return ErrSessionNotFound
	}
	delete(s.sessions, sessionID)
	return nil
}
