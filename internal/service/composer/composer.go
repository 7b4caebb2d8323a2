package composer

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/zhouzirui/z-tavern/webchat/internal/model/chat"
)

var (
	ErrEmptyMessage = errors.New("message text is empty")
	ErrBusy         = errors.New("a submission is already in flight")
	ErrFileType     = errors.New("only .txt, .csv, or .json files are allowed")
)

// Options controls which draft fields exist and how they reset.
type Options struct {
	// QueryEnabled exposes the data-analysis query field.
	QueryEnabled bool
	// ClearQueryAfterSend resets the query once a message is sent.
	ClearQueryAfterSend bool
}

// Request is the normalized result of a submit.
type Request struct {
	Prompt string
	Query  string
	Upload *chat.Upload
}

// Composer holds the draft for the next outgoing message.
type Composer struct {
	opts Options

	mu      sync.Mutex
	text    string
	query   string
	pending *chat.Upload
	focus   bool
}

// New creates an empty composer.
func New(opts Options) *Composer {
	return &Composer{opts: opts}
}

// SetText replaces the draft message text.
func (c *Composer) SetText(text string) {
	c.mu.Lock()
	c.text = text
	c.mu.Unlock()
}

// SetQuery replaces the draft query. Ignored when the query field is disabled.
func (c *Composer) SetQuery(query string) {
	if !c.opts.QueryEnabled {
		return
	}
	c.mu.Lock()
	c.query = query
	c.mu.Unlock()
}

// Text returns the current draft text.
func (c *Composer) Text() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.text
}

// Query returns the current draft query.
func (c *Composer) Query() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.query
}

// Attach sets the pending upload. Unsupported types leave no pending upload.
func (c *Composer) Attach(upload chat.Upload) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !upload.Accepted() {
		c.pending = nil
		return fmt.Errorf("%w: %s (%s)", ErrFileType, upload.Filename, upload.MimeType)
	}
	c.pending = &upload
	return nil
}

// RemoveAttachment drops the pending upload.
func (c *Composer) RemoveAttachment() {
	c.mu.Lock()
	c.pending = nil
	c.mu.Unlock()
}

// Pending returns the pending upload, if any.
func (c *Composer) Pending() (chat.Upload, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pending == nil {
		return chat.Upload{}, false
	}
	return *c.pending, true
}

// Submit turns the draft into a Request and resets it. The draft is left
// untouched when the text is blank or inFlight is set.
func (c *Composer) Submit(inFlight bool) (Request, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if inFlight {
		return Request{}, ErrBusy
	}
	if strings.TrimSpace(c.text) == "" {
		return Request{}, ErrEmptyMessage
	}

	req := Request{Prompt: c.text, Upload: c.pending}
	if c.opts.QueryEnabled {
		req.Query = c.query
	}

	c.text = ""
	c.pending = nil
	if c.opts.ClearQueryAfterSend {
		c.query = ""
	}
	c.focus = true
	return req, nil
}

// TakeFocus reports whether input focus should return to the composer and
// clears the flag.
func (c *Composer) TakeFocus() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	focus := c.focus
	c.focus = false
	return focus
}

// RequestFocus raises the focus flag.
func (c *Composer) RequestFocus() {
	c.mu.Lock()
	c.focus = true
	c.mu.Unlock()
}
