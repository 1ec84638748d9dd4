package core

import "time"

// EventType names an expense lifecycle change.
type EventType string

const (
	EventCreated EventType = "expense.created"
	EventUpdated EventType = "expense.updated"
	EventDeleted EventType = "expense.deleted"
)

// ExpenseEvent describes a committed change. Expense is nil for deletions.
type ExpenseEvent struct {
	Type       EventType
	ExpenseID  int64
	Expense    *Expense
	OccurredAt time.Time
}

// NewExpenseEvent stamps an event with the current UTC time.
func NewExpenseEvent(typ EventType, id int64, e *Expense) ExpenseEvent {
	return ExpenseEvent{
		Type:       typ,
		ExpenseID:  id,
		Expense:    e,
		OccurredAt: time.Now().UTC(),
	}
}
