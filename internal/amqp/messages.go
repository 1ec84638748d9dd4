package amqp

import (
	"encoding/json"
	"time"

	"expenseapi/internal/core"
)

// ExpenseEventMessage is the wire form of a core.ExpenseEvent.
// Expense is omitted for deletions.
type ExpenseEventMessage struct {
	Type      core.EventType `json:"type"`
	ID        int64          `json:"id"`
	Expense   *core.Expense  `json:"expense,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// NewExpenseEventMessage converts a domain event for publishing.
func NewExpenseEventMessage(ev core.ExpenseEvent) *ExpenseEventMessage {
	return &ExpenseEventMessage{
		Type:      ev.Type,
		ID:        ev.ExpenseID,
		Expense:   ev.Expense,
		Timestamp: ev.OccurredAt,
	}
}

// RoutingKey is the topic key consumers bind to, e.g. "expense.created".
func (m *ExpenseEventMessage) RoutingKey() string {
	return string(m.Type)
}

// ToJSON converts the message to JSON bytes
func (m *ExpenseEventMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}
