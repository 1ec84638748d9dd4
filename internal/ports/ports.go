package ports

import (
	"context"

	"expenseapi/internal/core"
)

// Ports for outbound adapters.
type (
	// ExpenseSession is a storage session bound to one connection. Callers
	// must Close it on every path; closing returns the connection to the pool.
	ExpenseSession interface {
		CreateExpense(ctx context.Context, in core.ExpenseInput) (core.Expense, error)
		GetExpense(ctx context.Context, id int64) (core.Expense, error)
		ListExpenses(ctx context.Context, f core.ListFilter) ([]core.Expense, error)
		ExpenseStats(ctx context.Context, f core.StatsFilter) (core.Stats, error)
		// UpdateExpense replaces every mutable field and refreshes updated_at.
		UpdateExpense(ctx context.Context, id int64, in core.ExpenseInput) (core.Expense, error)
		DeleteExpense(ctx context.Context, id int64) error
		Close() error
	}

	// ExpenseStore hands out sessions and probes the database.
	ExpenseStore interface {
		Acquire(ctx context.Context) (ExpenseSession, error)
		Ping(ctx context.Context) (bool, error)
	}

	// EventPublisher announces committed expense changes.
	EventPublisher interface {
		PublishExpenseEvent(ctx context.Context, ev core.ExpenseEvent) error
	}
)
