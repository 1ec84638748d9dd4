package storage

import (
	"database/sql"
	"fmt"
	"time"

	"expenseapi/internal/core"
)

const expenseColumns = "id, spent_at, category, detail, amount, payment_method, created_at, updated_at"

// Layouts sqlite may hand back for DATETIME text: the driver's sqlite
// format, CURRENT_TIMESTAMP and ISO-8601.
var storedTimeLayouts = []string{
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999 -0700 MST",
}

// utcTime scans DATETIME/TIMESTAMPTZ columns from either driver into UTC.
type utcTime struct {
	t *time.Time
}

func (u utcTime) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*u.t = time.Time{}
		return nil
	case time.Time:
		*u.t = v.UTC()
		return nil
	case string:
		return u.parse(v)
	case []byte:
		return u.parse(string(v))
	default:
		return fmt.Errorf("unsupported timestamp type %T", src)
	}
}

func (u utcTime) parse(s string) error {
	for _, layout := range storedTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			*u.t = t.UTC()
			return nil
		}
	}
	return fmt.Errorf("unrecognized timestamp %q", s)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanExpense(row rowScanner) (core.Expense, error) {
	var (
		e       core.Expense
		detail  sql.NullString
		payment sql.NullString
	)
	err := row.Scan(
		&e.ID,
		utcTime{&e.SpentAt},
		&e.Category,
		&detail,
		&e.Amount,
		&payment,
		utcTime{&e.CreatedAt},
		utcTime{&e.UpdatedAt},
	)
	if err != nil {
		return core.Expense{}, err
	}
	e.Detail = nullableString(detail)
	e.PaymentMethod = nullableString(payment)
	return e, nil
}

func nullableString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	return &ns.String
}

func nullArg(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}
