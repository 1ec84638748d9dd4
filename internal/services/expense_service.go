package services

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"expenseapi/internal/core"
	applog "expenseapi/internal/log"
	"expenseapi/internal/ports"
)

// ExpenseService orchestrates expense operations across storage and AMQP.
// Every call runs on its own storage session which is released before
// returning, whatever the outcome.
type ExpenseService struct {
	store     ports.ExpenseStore
	publisher ports.EventPublisher
}

// NewExpenseService wires the store and an optional publisher. A nil
// publisher disables change events.
func NewExpenseService(store ports.ExpenseStore, publisher ports.EventPublisher) *ExpenseService {
	return &ExpenseService{
		store:     store,
		publisher: publisher,
	}
}

var tracer = otel.Tracer("expenseapi/services")

// withSession runs fn inside a span on a freshly acquired session.
func (s *ExpenseService) withSession(ctx context.Context, op string, fn func(context.Context, ports.ExpenseSession) error) error {
	ctx, span := tracer.Start(ctx, "expense."+op, trace.WithAttributes(attribute.String("operation", op)))
	defer span.End()

	sess, err := s.store.Acquire(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "acquire session")
		return err
	}
	defer func() {
		if cerr := sess.Close(); cerr != nil {
			applog.FromContext(ctx).WarnContext(ctx, "Failed to release storage session", applog.FieldError, cerr)
		}
	}()

	if err := fn(ctx, sess); err != nil {
		span.RecordError(err)
		if !errors.Is(err, core.ErrNotFound) {
			span.SetStatus(codes.Error, op)
		}
		return err
	}
	return nil
}

// CreateExpense validates and stores a new expense, then announces it.
func (s *ExpenseService) CreateExpense(ctx context.Context, in core.ExpenseInput) (core.Expense, error) {
	if err := in.Validate(); err != nil {
		return core.Expense{}, err
	}

	var created core.Expense
	err := s.withSession(ctx, "create", func(ctx context.Context, sess ports.ExpenseSession) error {
		var err error
		created, err = sess.CreateExpense(ctx, in)
		return err
	})
	if err != nil {
		return core.Expense{}, fmt.Errorf("save expense: %w", err)
	}

	s.publish(ctx, core.NewExpenseEvent(core.EventCreated, created.ID, &created))
	return created, nil
}

// GetExpense returns one expense or core.ErrNotFound.
func (s *ExpenseService) GetExpense(ctx context.Context, id int64) (core.Expense, error) {
	var e core.Expense
	err := s.withSession(ctx, "get", func(ctx context.Context, sess ports.ExpenseSession) error {
		var err error
		e, err = sess.GetExpense(ctx, id)
		return err
	})
	return e, err
}

// ListExpenses returns a filtered, sorted page. The result is never nil.
func (s *ExpenseService) ListExpenses(ctx context.Context, f core.ListFilter) ([]core.Expense, error) {
	var items []core.Expense
	err := s.withSession(ctx, "list", func(ctx context.Context, sess ports.ExpenseSession) error {
		var err error
		items, err = sess.ListExpenses(ctx, f.Normalized())
		return err
	})
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []core.Expense{}
	}
	return items, nil
}

// ExpenseStats aggregates expenses inside the optional range.
func (s *ExpenseService) ExpenseStats(ctx context.Context, f core.StatsFilter) (core.Stats, error) {
	var stats core.Stats
	err := s.withSession(ctx, "stats", func(ctx context.Context, sess ports.ExpenseSession) error {
		var err error
		stats, err = sess.ExpenseStats(ctx, f.Normalized())
		return err
	})
	if err != nil {
		return core.Stats{}, err
	}
	if stats.ByCategory == nil {
		stats.ByCategory = []core.CategoryTotal{}
	}
	if stats.ByDay == nil {
		stats.ByDay = []core.DayTotal{}
	}
	return stats, nil
}

// UpdateExpense fully replaces an expense's mutable fields.
func (s *ExpenseService) UpdateExpense(ctx context.Context, id int64, in core.ExpenseInput) (core.Expense, error) {
	if err := in.Validate(); err != nil {
		return core.Expense{}, err
	}

	var updated core.Expense
	err := s.withSession(ctx, "update", func(ctx context.Context, sess ports.ExpenseSession) error {
		var err error
		updated, err = sess.UpdateExpense(ctx, id, in)
		return err
	})
	if err != nil {
		return core.Expense{}, err
	}

	s.publish(ctx, core.NewExpenseEvent(core.EventUpdated, updated.ID, &updated))
	return updated, nil
}

// DeleteExpense removes an expense permanently.
func (s *ExpenseService) DeleteExpense(ctx context.Context, id int64) error {
	err := s.withSession(ctx, "delete", func(ctx context.Context, sess ports.ExpenseSession) error {
		return sess.DeleteExpense(ctx, id)
	})
	if err != nil {
		return err
	}

	s.publish(ctx, core.NewExpenseEvent(core.EventDeleted, id, nil))
	return nil
}

// Ping reports whether the database answers a trivial query.
func (s *ExpenseService) Ping(ctx context.Context) bool {
	ok, err := s.store.Ping(ctx)
	if err != nil {
		applog.FromContext(ctx).WarnContext(ctx, "Database ping failed", applog.FieldError, err)
		return false
	}
	return ok
}

// publish never fails the request: the change is already committed.
func (s *ExpenseService) publish(ctx context.Context, ev core.ExpenseEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishExpenseEvent(ctx, ev); err != nil {
		applog.FromContext(ctx).ErrorContext(ctx, "Failed to publish expense event",
			applog.FieldExpenseID, ev.ExpenseID,
			"type", ev.Type,
			applog.FieldError, err)
	}
}

// Close closes both storage and AMQP connections when they support it.
func (s *ExpenseService) Close() error {
	var errs []error

	if c, ok := s.store.(io.Closer); ok && c != nil {
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}

	if c, ok := s.publisher.(io.Closer); ok && c != nil {
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close expense service: %w", errors.Join(errs...))
	}

	return nil
}
