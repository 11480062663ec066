// Package chat is the chat panel controller: it echoes the visitor's
// message, waits a moment, then appends a canned reply.
package chat

import (
	"errors"
	"strings"
	"sync"
	"time"
)

const (
	// HistoryLimit caps the in-memory conversation; older entries drop off.
	HistoryLimit = 50
	// DefaultDelay is the simulated "thinking" time before a reply.
	DefaultDelay = time.Second
)

var (
	ErrEmptyMessage = errors.New("chat: empty message")
	ErrBusy         = errors.New("chat: still waiting for a reply")
	ErrClosed       = errors.New("chat: closed")
)

type Sender string

const (
	User Sender = "user"
	Bot  Sender = "bot"
)

type Entry struct {
	Message   string
	Sender    Sender
	Timestamp time.Time
}

type State int

const (
	Idle State = iota
	AwaitingResponse
)

func (s State) String() string {
	if s == AwaitingResponse {
		return "awaiting-response"
	}
	return "idle"
}

// Responder produces the bot reply for a user message.
type Responder interface {
	Generate(text string) string
}

// ResponderFunc adapts a function to Responder.
type ResponderFunc func(text string) string

func (f ResponderFunc) Generate(text string) string { return f(text) }

type Option func(*Controller)

// WithDelay overrides DefaultDelay.
func WithDelay(d time.Duration) Option {
	return func(c *Controller) { c.delay = d }
}

// WithDisplay registers a callback invoked for every appended entry, in
// order, outside the controller lock.
func WithDisplay(fn func(Entry)) Option {
	return func(c *Controller) { c.display = fn }
}

// Controller owns one chat panel's state.
type Controller struct {
	responder Responder
	delay     time.Duration
	display   func(Entry)
	now       func() time.Time

	mu      sync.Mutex
	state   State
	history []Entry
	pending *time.Timer
	closed  bool
}

func New(r Responder, opts ...Option) *Controller {
	c := &Controller{
		responder: r,
		delay:     DefaultDelay,
		display:   func(Entry) {},
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Submit sends text. Blank input is rejected, and so is a second message
// while the previous reply is still pending.
func (c *Controller) Submit(text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return ErrEmptyMessage
	}

	c.mu.Lock()
	switch {
	case c.closed:
		c.mu.Unlock()
		return ErrClosed
	case c.state != Idle:
		c.mu.Unlock()
		return ErrBusy
	}
	c.state = AwaitingResponse
	e := c.appendLocked(text, User)
	c.mu.Unlock()

	// the reply timer is armed only after the user entry is shown
	c.display(e)

	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.pending = time.AfterFunc(c.delay, func() { c.reply(text) })
	}
	return nil
}

// QuickQuestion submits one of the canned prompt buttons.
func (c *Controller) QuickQuestion(q string) error {
	return c.Submit(q)
}

func (c *Controller) reply(text string) {
	answer := c.responder.Generate(text)

	c.mu.Lock()
	if c.closed || c.state != AwaitingResponse {
		c.mu.Unlock()
		return
	}
	e := c.appendLocked(answer, Bot)
	c.state = Idle
	c.pending = nil
	c.mu.Unlock()

	c.display(e)
}

func (c *Controller) appendLocked(msg string, from Sender) Entry {
	e := Entry{Message: msg, Sender: from, Timestamp: c.now()}
	c.history = append(c.history, e)
	if over := len(c.history) - HistoryLimit; over > 0 {
		c.history = append(c.history[:0], c.history[over:]...)
	}
	return e
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// History returns a copy of the conversation, oldest first.
func (c *Controller) History() []Entry {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Entry(nil), c.history...)
}

// Clear empties the history. A pending reply still arrives.
func (c *Controller) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.history = nil
}

// Close cancels any pending reply and rejects further input.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pending != nil {
		c.pending.Stop()
		c.pending = nil
	}
	c.closed = true
	c.state = Idle
}
