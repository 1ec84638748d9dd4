package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"expenseapi/internal/core"
	applog "expenseapi/internal/log"
	"expenseapi/internal/ports"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Repository owns the connection pool for the expenses table.
type Repository struct {
	db      *sql.DB
	dialect Dialect
}

// Open connects to DATABASE_URL and ensures the schema exists.
func Open(ctx context.Context, databaseURL string) (*Repository, error) {
	src, err := ParseDatabaseURL(databaseURL)
	if err != nil {
		return nil, err
	}
	if err := src.ensureDir(); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open(src.Driver, src.DSN)
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", src.Dialect, err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(src); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	applog.FromContext(ctx).InfoContext(ctx, "Database ready", "dialect", src.Dialect)

	return &Repository{db: db, dialect: src.Dialect}, nil
}

func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping runs a trivial round-trip query.
func (r *Repository) Ping(ctx context.Context) (bool, error) {
	var one int
	if err := r.db.QueryRowContext(ctx, "SELECT 1").Scan(&one); err != nil {
		return false, fmt.Errorf("ping database: %w", err)
	}
	return one == 1, nil
}

// Acquire implements ports.ExpenseStore. The session pins one pooled
// connection until Close.
func (r *Repository) Acquire(ctx context.Context) (ports.ExpenseSession, error) {
	conn, err := r.db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	return &Session{conn: conn, dialect: r.dialect}, nil
}

// Session runs expense statements on a single connection.
type Session struct {
	conn    *sql.Conn
	dialect Dialect
}

// Close releases the connection back to the pool. Safe to call twice.
func (s *Session) Close() error {
	if s.conn == nil {
		return nil
	}
	err := s.conn.Close()
	s.conn = nil
	return err
}

func (s *Session) queryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return s.conn.QueryRowContext(ctx, s.dialect.Rebind(query), args...)
}

// CreateExpense implements ports.ExpenseSession.
func (s *Session) CreateExpense(ctx context.Context, in core.ExpenseInput) (core.Expense, error) {
	in = in.Normalized()
	row := s.queryRow(ctx,
		`INSERT INTO expenses (spent_at, category, detail, amount, payment_method)
		VALUES (?, ?, ?, ?, ?)
		RETURNING `+expenseColumns,
		in.SpentAt, in.Category, nullArg(in.Detail), in.Amount, nullArg(in.PaymentMethod),
	)
	e, err := scanExpense(row)
	if err != nil {
		return core.Expense{}, fmt.Errorf("create expense: %w", err)
	}

	applog.FromContext(ctx).InfoContext(ctx, "Expense saved",
		applog.FieldExpenseID, e.ID,
		"category", e.Category,
		"amount", e.Amount,
		"spent_at", e.SpentAt)

	return e, nil
}

// GetExpense implements ports.ExpenseSession.
func (s *Session) GetExpense(ctx context.Context, id int64) (core.Expense, error) {
	row := s.queryRow(ctx, `SELECT `+expenseColumns+` FROM expenses WHERE id = ?`, id)
	e, err := scanExpense(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Expense{}, fmt.Errorf("get expense %d: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return core.Expense{}, fmt.Errorf("get expense %d: %w", id, err)
	}
	return e, nil
}

// ListExpenses implements ports.ExpenseSession.
func (s *Session) ListExpenses(ctx context.Context, f core.ListFilter) ([]core.Expense, error) {
	f = f.Normalized()

	where, args := rangeWhere(f.StatsFilter)
	if f.Category != "" {
		where = append(where, "category = ?")
		args = append(args, f.Category)
	}
	if f.Query != "" {
		// Wildcards in the search text are passed through on purpose.
		where = append(where, "detail LIKE ?")
		args = append(args, "%"+f.Query+"%")
	}

	column := "spent_at"
	if f.Sort == core.SortAmount {
		column = "amount"
	}
	direction := "ASC"
	if f.Order == core.OrderDesc {
		direction = "DESC"
	}

	query := `SELECT ` + expenseColumns + ` FROM expenses` + whereClause(where) +
		` ORDER BY ` + column + ` ` + direction + ` LIMIT ? OFFSET ?`
	args = append(args, f.Limit, f.Offset)

	rows, err := s.conn.QueryContext(ctx, s.dialect.Rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()

	expenses := make([]core.Expense, 0, f.Limit)
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		expenses = append(expenses, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate expenses: %w", err)
	}

	return expenses, nil
}

// ExpenseStats implements ports.ExpenseSession.
func (s *Session) ExpenseStats(ctx context.Context, f core.StatsFilter) (core.Stats, error) {
	f = f.Normalized()
	where, args := rangeWhere(f)
	cond := whereClause(where)
	stats := core.EmptyStats()

	err := s.queryRow(ctx,
		`SELECT COALESCE(SUM(amount), 0.0), COALESCE(AVG(amount), 0.0), COUNT(id) FROM expenses`+cond,
		args...,
	).Scan(&stats.Total, &stats.Avg, &stats.Count)
	if err != nil {
		return core.Stats{}, fmt.Errorf("stats totals: %w", err)
	}

	rows, err := s.conn.QueryContext(ctx, s.dialect.Rebind(
		`SELECT category, COALESCE(SUM(amount), 0.0) FROM expenses`+cond+
			` GROUP BY category ORDER BY SUM(amount) DESC`), args...)
	if err != nil {
		return core.Stats{}, fmt.Errorf("stats by category: %w", err)
	}
	for rows.Next() {
		var ct core.CategoryTotal
		if err := rows.Scan(&ct.Category, &ct.Total); err != nil {
			rows.Close()
			return core.Stats{}, fmt.Errorf("scan category total: %w", err)
		}
		stats.ByCategory = append(stats.ByCategory, ct)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return core.Stats{}, fmt.Errorf("iterate category totals: %w", err)
	}

	day := s.dialect.DayExpr()
	rows, err = s.conn.QueryContext(ctx, s.dialect.Rebind(
		`SELECT `+day+`, COALESCE(SUM(amount), 0.0) FROM expenses`+cond+
			` GROUP BY `+day+` ORDER BY `+day), args...)
	if err != nil {
		return core.Stats{}, fmt.Errorf("stats by day: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var dt core.DayTotal
		if err := rows.Scan(&dt.Date, &dt.Total); err != nil {
			return core.Stats{}, fmt.Errorf("scan day total: %w", err)
		}
		stats.ByDay = append(stats.ByDay, dt)
	}
	if err := rows.Err(); err != nil {
		return core.Stats{}, fmt.Errorf("iterate day totals: %w", err)
	}

	return stats, nil
}

// UpdateExpense implements ports.ExpenseSession.
func (s *Session) UpdateExpense(ctx context.Context, id int64, in core.ExpenseInput) (core.Expense, error) {
	in = in.Normalized()
	row := s.queryRow(ctx,
		`UPDATE expenses
		SET spent_at = ?, category = ?, detail = ?, amount = ?, payment_method = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
		RETURNING `+expenseColumns,
		in.SpentAt, in.Category, nullArg(in.Detail), in.Amount, nullArg(in.PaymentMethod), id,
	)
	e, err := scanExpense(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Expense{}, fmt.Errorf("update expense %d: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return core.Expense{}, fmt.Errorf("update expense %d: %w", id, err)
	}

	applog.FromContext(ctx).InfoContext(ctx, "Expense updated", applog.FieldExpenseID, e.ID, "updated_at", e.UpdatedAt)
	return e, nil
}

// DeleteExpense implements ports.ExpenseSession.
func (s *Session) DeleteExpense(ctx context.Context, id int64) error {
	res, err := s.conn.ExecContext(ctx, s.dialect.Rebind(`DELETE FROM expenses WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("delete expense %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete expense %d: rows affected: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("delete expense %d: %w", id, core.ErrNotFound)
	}

	applog.FromContext(ctx).InfoContext(ctx, "Expense deleted", applog.FieldExpenseID, id)
	return nil
}

func rangeWhere(f core.StatsFilter) ([]string, []any) {
	var (
		where []string
		args  []any
	)
	if f.Start != nil {
		where = append(where, "spent_at >= ?")
		args = append(args, *f.Start)
	}
	if f.End != nil {
		where = append(where, "spent_at <= ?")
		args = append(args, *f.End)
	}
	return where, args
}

func whereClause(conds []string) string {
	if len(conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(conds, " AND ")
}
