package core

import (
	"errors"
	"math"
	"strings"
	"time"
	"unicode/utf8"
)

// Column limits of the expenses table.
const (
	MaxCategoryLen      = 50
	MaxDetailLen        = 255
	MaxPaymentMethodLen = 30
)

type (
	// Expense is a persisted expense row.
	Expense struct {
		ID            int64     `json:"id"`
		SpentAt       time.Time `json:"spent_at"`
		Category      string    `json:"category"`
		Detail        *string   `json:"detail"`
		Amount        float64   `json:"amount"`
		PaymentMethod *string   `json:"payment_method"`
		CreatedAt     time.Time `json:"created_at"`
		UpdatedAt     time.Time `json:"updated_at"`
	}

	// ExpenseInput carries the user-supplied fields of a create or full update.
	ExpenseInput struct {
		SpentAt       time.Time
		Category      string
		Detail        *string
		Amount        float64
		PaymentMethod *string
	}
)

var (
	// ErrNotFound is returned when an expense id does not exist.
	ErrNotFound = errors.New("expense not found")

	ErrMissingSpentAt  = errors.New("spent_at is required")
	ErrEmptyCategory   = errors.New("category is required")
	ErrInvalidAmount   = errors.New("amount must be greater than 0")
	ErrNonFiniteAmount = errors.New("amount must be a finite number")
	ErrCategoryTooLong = errors.New("category too long (max 50 characters)")
	ErrDetailTooLong   = errors.New("detail too long (max 255 characters)")
	ErrPaymentTooLong  = errors.New("payment_method too long (max 30 characters)")
)

// Validate checks the payload and reports every failing field at once.
func (in ExpenseInput) Validate() error {
	var v ValidationError

	if in.SpentAt.IsZero() {
		v.Add(ErrMissingSpentAt.Error(), "missing", "body", "spent_at")
	}
	if strings.TrimSpace(in.Category) == "" {
		v.Add(ErrEmptyCategory.Error(), "missing", "body", "category")
	} else if utf8.RuneCountInString(in.Category) > MaxCategoryLen {
		v.Add(ErrCategoryTooLong.Error(), "string_too_long", "body", "category")
	}
	if in.Detail != nil && utf8.RuneCountInString(*in.Detail) > MaxDetailLen {
		v.Add(ErrDetailTooLong.Error(), "string_too_long", "body", "detail")
	}
	// NaN compares false against everything, so test for the positive case.
	if !(in.Amount > 0) {
		v.Add(ErrInvalidAmount.Error(), "greater_than", "body", "amount")
	} else if math.IsInf(in.Amount, 1) {
		v.Add(ErrNonFiniteAmount.Error(), "finite_number", "body", "amount")
	}
	if in.PaymentMethod != nil && utf8.RuneCountInString(*in.PaymentMethod) > MaxPaymentMethodLen {
		v.Add(ErrPaymentTooLong.Error(), "string_too_long", "body", "payment_method")
	}

	return v.OrNil()
}

// Normalized returns a copy with spent_at in UTC.
func (in ExpenseInput) Normalized() ExpenseInput {
	in.SpentAt = in.SpentAt.UTC()
	return in
}

// StringPtr returns a pointer to s.
func StringPtr(s string) *string {
	return &s
}
