package core

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validInput() ExpenseInput {
	return ExpenseInput{
		SpentAt:  time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
		Category: "food",
		Amount:   10,
	}
}

func TestExpenseInputValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*ExpenseInput)
		wantLoc string
	}{
		{name: "valid", mutate: func(*ExpenseInput) {}},
		{name: "optional fields set", mutate: func(in *ExpenseInput) {
			in.Detail = StringPtr("lunch")
			in.PaymentMethod = StringPtr("cash")
		}},
		{name: "zero amount", mutate: func(in *ExpenseInput) { in.Amount = 0 }, wantLoc: "amount"},
		{name: "negative amount", mutate: func(in *ExpenseInput) { in.Amount = -3.5 }, wantLoc: "amount"},
		{name: "NaN amount", mutate: func(in *ExpenseInput) { in.Amount = math.NaN() }, wantLoc: "amount"},
		{name: "infinite amount", mutate: func(in *ExpenseInput) { in.Amount = math.Inf(1) }, wantLoc: "amount"},
		{name: "negative infinite amount", mutate: func(in *ExpenseInput) { in.Amount = math.Inf(-1) }, wantLoc: "amount"},
		{name: "missing spent_at", mutate: func(in *ExpenseInput) { in.SpentAt = time.Time{} }, wantLoc: "spent_at"},
		{name: "blank category", mutate: func(in *ExpenseInput) { in.Category = "  " }, wantLoc: "category"},
		{name: "long category", mutate: func(in *ExpenseInput) { in.Category = strings.Repeat("c", 51) }, wantLoc: "category"},
		{name: "long detail", mutate: func(in *ExpenseInput) { in.Detail = StringPtr(strings.Repeat("d", 256)) }, wantLoc: "detail"},
		{name: "long payment method", mutate: func(in *ExpenseInput) { in.PaymentMethod = StringPtr(strings.Repeat("p", 31)) }, wantLoc: "payment_method"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput()
			tt.mutate(&in)
			err := in.Validate()
			if tt.wantLoc == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			var v *ValidationError
			require.ErrorAs(t, err, &v)
			require.Len(t, v.Issues, 1)
			assert.Equal(t, []string{"body", tt.wantLoc}, v.Issues[0].Loc)
		})
	}
}

func TestExpenseInputValidateReportsAllIssues(t *testing.T) {
	err := ExpenseInput{}.Validate()
	require.Error(t, err)
	assert.True(t, IsValidation(err))

	var v *ValidationError
	require.ErrorAs(t, err, &v)
	assert.Len(t, v.Issues, 3)
	assert.Contains(t, err.Error(), "body.amount")
}

func TestExpenseInputNormalized(t *testing.T) {
	loc := time.FixedZone("ICT", 7*3600)
	in := validInput()
	in.SpentAt = time.Date(2024, 1, 1, 3, 0, 0, 0, loc)

	got := in.Normalized()
	assert.Equal(t, time.UTC, got.SpentAt.Location())
	assert.True(t, got.SpentAt.Equal(in.SpentAt))
	assert.Equal(t, 31, got.SpentAt.Day())
}
