// Package notify delivers transient user-facing messages.
//
// A Center keeps at most one active notification. Posting a new one replaces
// the previous notification and cancels its dismissal timer.
package notify

import (
	"sync"
	"time"
)

// Kind is the visual category of a notification.
type Kind string

const (
	Success Kind = "success"
	Error   Kind = "error"
	Info    Kind = "info"
)

// DefaultTTL is how long a notification stays visible.
const DefaultTTL = 3 * time.Second

// Messages shared by the interaction surfaces.
const (
	MsgExpenseAdded    = "Expense added successfully!"
	MsgExpenseDeleted  = "Expense deleted successfully!"
	MsgSaveFailed      = "Error saving data. Please try again."
	MsgNothingToExport = "No expenses to export"
	MsgExported        = "Expenses exported successfully!"
	MsgNoBreakdown     = "No expenses to show breakdown"
	MsgNoMatches       = "No expenses found for the selected filters."
)

// Notification is a single message shown to the user.
type Notification struct {
	Kind    Kind
	Message string
	Posted  time.Time
}

// Notifier accepts notifications.
type Notifier interface {
	Notify(kind Kind, message string)
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(kind Kind, message string)

func (f NotifierFunc) Notify(kind Kind, message string) { f(kind, message) }

// Discard drops every notification.
var Discard Notifier = NotifierFunc(func(Kind, string) {})

// Center holds the latest notification until it is dismissed or superseded.
type Center struct {
	mu      sync.Mutex
	ttl     time.Duration
	current *Notification
	timer   *time.Timer
	onPost  func(Notification)
}

// NewCenter creates a Center. A non-positive ttl falls back to DefaultTTL.
// onPost, when set, is called synchronously for every posted notification.
func NewCenter(ttl time.Duration, onPost func(Notification)) *Center {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Center{ttl: ttl, onPost: onPost}
}

// Notify implements Notifier.
func (c *Center) Notify(kind Kind, message string) {
	n := Notification{Kind: kind, Message: message, Posted: time.Now()}

	c.mu.Lock()
	if c.timer != nil {
		c.timer.Stop()
	}
	c.current = &n
	posted := c.current
	c.timer = time.AfterFunc(c.ttl, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		// A newer notification may have replaced this one already.
		if c.current == posted {
			c.current = nil
		}
	})
	c.mu.Unlock()

	if c.onPost != nil {
		c.onPost(n)
	}
}

// Current returns the active notification, if any.
func (c *Center) Current() (Notification, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil {
		return Notification{}, false
	}
	return *c.current, true
}

// TTL returns the dismissal delay.
func (c *Center) TTL() time.Duration {
	return c.ttl
}

// Dismiss clears the active notification immediately.
func (c *Center) Dismiss() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.current = nil
}
