package conversation

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/zhouzirui/z-tavern/webchat/internal/model/chat"
	chatservice "github.com/zhouzirui/z-tavern/webchat/internal/service/chat"
	"github.com/zhouzirui/z-tavern/webchat/internal/service/composer"
	"github.com/zhouzirui/z-tavern/webchat/internal/service/gateway"
)

// State is the submission state of a conversation.
type State string

const (
	StateIdle       State = "idle"
	StateSubmitting State = "submitting"
)

// Gateway is the backend contract the controller drives.
type Gateway interface {
	Ping(ctx context.Context) error
	UploadFile(ctx context.Context, upload chat.Upload) (string, error)
	SubmitPrompt(ctx context.Context, p gateway.Prompt) (gateway.Reply, error)
}

// Publisher receives session events.
type Publisher interface {
	Publish(ev chatservice.Event)
}

// Settings fixes the conversation mode and persona for a session.
type Settings struct {
	AgentType    string
	Mode         gateway.Mode
	Ruleset      string
	QueryEnabled bool

	// ClearQueryAfterSend mirrors the composer policy so the page can reset its query input.
	ClearQueryAfterSend bool
}

// Outcome is what a successful or partially successful submit produced.
// Query is the draft query left after the submit and Focus asks the page to
// return input focus to the composer.
type Outcome struct {
	UserMessage chat.Message  `json:"userMessage"`
	Reply       *chat.Message `json:"reply,omitempty"`
	Query       string        `json:"query"`
	Focus       bool          `json:"focus"`
}

// Snapshot is a read-only view of a conversation for rendering.
type Snapshot struct {
	SessionID    string           `json:"sessionId"`
	User         chat.Participant `json:"user"`
	Agent        chat.Participant `json:"agent"`
	Mode         string           `json:"mode"`
	State        State            `json:"state"`
	Available    bool             `json:"available"`
	QueryEnabled bool             `json:"queryEnabled"`
	ClearQuery   bool             `json:"clearQueryAfterSend"`
	Query        string           `json:"query"`
	Pending      *chat.Upload     `json:"pending,omitempty"`
	LastError    string           `json:"lastError,omitempty"`
	CreatedAt    time.Time        `json:"createdAt"`
}

// Controller runs the submit pipeline of one conversation: composer, then
// gateway, then store. At most one submission is in flight.
type Controller struct {
	session  chat.Session
	settings Settings
	gw       Gateway
	store    *chatservice.Store
	composer *composer.Composer
	events   Publisher
	now      func() time.Time

	mu        sync.Mutex
	state     State
	available bool
	history   gateway.Context
	lastErr   error
}

// NewController wires a conversation. events may be nil.
func NewController(session chat.Session, settings Settings, gw Gateway, store *chatservice.Store, comp *composer.Composer, events Publisher) *Controller {
	return &Controller{
		session:   session,
		settings:  settings,
		gw:        gw,
		store:     store,
		composer:  comp,
		events:    events,
		now:       func() time.Time { return time.Now().UTC() },
		state:     StateIdle,
		available: true,
	}
}

// ID returns the session identifier.
func (c *Controller) ID() string { return c.session.ID }

// Store returns the transcript.
func (c *Controller) Store() *chatservice.Store { return c.store }

// Composer returns the draft holder.
func (c *Controller) Composer() *composer.Composer { return c.composer }

// Connect checks the backend. On failure the conversation stays unavailable
// for its whole lifetime.
func (c *Controller) Connect(ctx context.Context) error {
	err := c.gw.Ping(ctx)

	c.mu.Lock()
	c.available = err == nil
	if err != nil {
		c.lastErr = err
	}
	c.mu.Unlock()

	if err != nil {
		log.Printf("[conversation] backend unavailable for session=%s: %v", c.session.ID, err)
		c.publishError(err)
		return err
	}
	return nil
}

// Attach validates and stores the pending upload.
func (c *Controller) Attach(upload chat.Upload) error {
	if err := c.composer.Attach(upload); err != nil {
		log.Printf("[conversation] rejected attachment %q (%s) session=%s", upload.Filename, upload.MimeType, c.session.ID)
		return err
	}
	return nil
}

// RemoveAttachment clears the pending upload.
func (c *Controller) RemoveAttachment() {
	c.composer.RemoveAttachment()
}

// Submit sends text (and query, when enabled) with any pending upload.
// While another submission is in flight the call is ignored with
// composer.ErrBusy. The user's message is appended before any network call;
// on upload or request failure the returned Outcome still carries it.
func (c *Controller) Submit(ctx context.Context, text, query string) (Outcome, error) {
	out, err := c.submit(ctx, text, query)
	if out.UserMessage.ID != "" {
		out.Query = c.composer.Query()
		out.Focus = c.composer.TakeFocus()
	}
	return out, err
}

func (c *Controller) submit(ctx context.Context, text, query string) (Outcome, error) {
	c.mu.Lock()
	if !c.available {
		c.mu.Unlock()
		return Outcome{}, gateway.ErrServiceUnavailable
	}
	if c.state == StateSubmitting {
		c.mu.Unlock()
		log.Printf("[conversation] ignoring submit while in flight, session=%s", c.session.ID)
		return Outcome{}, composer.ErrBusy
	}

	c.composer.SetText(text)
	c.composer.SetQuery(query)
	req, err := c.composer.Submit(false)
	if err != nil {
		c.mu.Unlock()
		return Outcome{}, fmt.Errorf("%w: %w", chatservice.ErrValidation, err)
	}

	c.state = StateSubmitting
	c.lastErr = nil
	history := c.history.Clone()
	c.mu.Unlock()

	c.publishState(StateSubmitting)
	defer c.finish()

	userMsg := c.newMessage(chat.UserID, req.Prompt)
	if err := c.append(userMsg); err != nil {
		return Outcome{}, c.fail(err)
	}
	out := Outcome{UserMessage: userMsg}

	fileID, err := c.upload(ctx, req)
	if err != nil {
		return out, c.fail(err)
	}

	reply, err := c.gw.SubmitPrompt(ctx, c.buildPrompt(req, fileID, history))
	if err != nil {
		return out, c.fail(err)
	}
	if strings.TrimSpace(reply.Text) == "" {
		return out, c.fail(fmt.Errorf("%w: empty response", gateway.ErrRequest))
	}

	c.mu.Lock()
	c.history = reply.Context.Clone()
	c.mu.Unlock()

	agentMsg := c.newMessage(chat.AgentID, reply.Text)
	if err := c.append(agentMsg); err != nil {
		return out, c.fail(err)
	}
	out.Reply = &agentMsg

	log.Printf("[conversation] completed turn for session=%s, mode=%s, context=%d", c.session.ID, c.settings.Mode, len(reply.Context))
	return out, nil
}

// upload sends the pending file when the mode consumes one.
func (c *Controller) upload(ctx context.Context, req composer.Request) (string, error) {
	if req.Upload == nil {
		return "", nil
	}
	if c.settings.Mode != gateway.ModeDataAnalysis {
		log.Printf("[conversation] %s mode ignores attachment %q, session=%s", c.settings.Mode, req.Upload.Filename, c.session.ID)
		return "", nil
	}
	return c.gw.UploadFile(ctx, *req.Upload)
}

func (c *Controller) buildPrompt(req composer.Request, fileID string, history gateway.Context) gateway.Prompt {
	switch c.settings.Mode {
	case gateway.ModeDataAnalysis:
		return gateway.AnalysisPrompt{
			Text:    req.Prompt,
			FileID:  fileID,
			IsCSV:   req.Upload != nil && req.Upload.IsCSV(),
			Context: history,
			Query:   req.Query,
		}
	default:
		return gateway.ChatPrompt{
			Text:        req.Prompt,
			CharacterID: c.settings.AgentType,
			Ruleset:     c.settings.Ruleset,
			Context:     history,
		}
	}
}

// History returns a copy of the dialogue context last returned by the backend.
func (c *Controller) History() gateway.Context {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.history.Clone()
}

// State returns the current submission state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Snapshot describes the conversation for rendering.
func (c *Controller) Snapshot() Snapshot {
	user, agent := c.store.Participants()

	c.mu.Lock()
	snap := Snapshot{
		SessionID:    c.session.ID,
		User:         user,
		Agent:        agent,
		Mode:         c.settings.Mode.String(),
		State:        c.state,
		Available:    c.available,
		QueryEnabled: c.settings.QueryEnabled,
		ClearQuery:   c.settings.ClearQueryAfterSend,
		Query:        c.composer.Query(),
		CreatedAt:    c.session.CreatedAt,
	}
	if c.lastErr != nil {
		snap.LastError = c.lastErr.Error()
	}
	c.mu.Unlock()

	if pending, ok := c.composer.Pending(); ok {
		snap.Pending = &pending
	}
	return snap
}

func (c *Controller) finish() {
	c.mu.Lock()
	c.state = StateIdle
	c.mu.Unlock()

	c.composer.RequestFocus()
	c.publishState(StateIdle)
}

func (c *Controller) fail(err error) error {
	c.mu.Lock()
	c.lastErr = err
	c.mu.Unlock()

	log.Printf("[conversation] submit failed for session=%s: %v", c.session.ID, err)
	c.publishError(err)
	return err
}

func (c *Controller) newMessage(senderID, text string) chat.Message {
	return chat.Message{
		ID:        newMessageID(),
		SenderID:  senderID,
		Text:      text,
		Timestamp: c.now(),
	}
}

func (c *Controller) append(msg chat.Message) error {
	if err := c.store.Append(msg); err != nil {
		return err
	}
	if c.events != nil {
		c.events.Publish(chatservice.Event{Type: chatservice.EventMessage, SessionID: c.session.ID, Message: &msg})
	}
	return nil
}

func (c *Controller) publishState(state State) {
	if c.events == nil {
		return
	}
	c.events.Publish(chatservice.Event{Type: chatservice.EventState, SessionID: c.session.ID, State: string(state)})
}

func (c *Controller) publishError(err error) {
	if c.events == nil {
		return
	}
	c.events.Publish(chatservice.Event{Type: chatservice.EventError, SessionID: c.session.ID, Error: err.Error()})
}

// newMessageID returns a time-ordered identifier.
func newMessageID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
