package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"spendlog/internal/core"
)

// EventType identifies what happened to an expense.
type EventType string

const (
	EventExpenseAdded   EventType = "expense.added"
	EventExpenseDeleted EventType = "expense.deleted"
)

// ExpenseEvent is published after every successful mutation of the list.
// Added events carry the full expense; deleted events only the ID.
type ExpenseEvent struct {
	Type      EventType     `json:"type"`
	ID        string        `json:"id"`
	Expense   *core.Expense `json:"expense,omitempty"`
	Timestamp time.Time     `json:"timestamp"`
}

// NewExpenseAddedEvent creates an added event for e.
func NewExpenseAddedEvent(e core.Expense) *ExpenseEvent {
	return &ExpenseEvent{
		Type:      EventExpenseAdded,
		ID:        e.ID,
		Expense:   &e,
		Timestamp: time.Now(),
	}
}

// NewExpenseDeletedEvent creates a deleted event for id.
func NewExpenseDeletedEvent(id string) *ExpenseEvent {
	return &ExpenseEvent{
		Type:      EventExpenseDeleted,
		ID:        id,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the event to JSON bytes
func (m *ExpenseEvent) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ExpenseEventFromJSON decodes and sanity-checks an event.
func ExpenseEventFromJSON(data []byte) (*ExpenseEvent, error) {
	var msg ExpenseEvent
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	switch msg.Type {
	case EventExpenseAdded:
		if msg.Expense == nil {
			return nil, fmt.Errorf("%s event without expense", msg.Type)
		}
	case EventExpenseDeleted:
	default:
		return nil, fmt.Errorf("unknown event type %q", msg.Type)
	}
	if msg.ID == "" {
		return nil, fmt.Errorf("%s event without id", msg.Type)
	}
	return &msg, nil
}
