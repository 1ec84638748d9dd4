package amqp

import (
	"encoding/json"
	"testing"
	"time"

	"expenseapi/internal/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpenseEventMessage(t *testing.T) {
	e := &core.Expense{
		ID:       7,
		SpentAt:  time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Category: "food",
		Amount:   10,
	}
	msg := NewExpenseEventMessage(core.NewExpenseEvent(core.EventCreated, 7, e))

	assert.Equal(t, "expense.created", msg.RoutingKey())
	assert.Equal(t, int64(7), msg.ID)

	body, err := msg.ToJSON()
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(body, &raw))
	assert.Equal(t, "expense.created", raw["type"])
	assert.Contains(t, raw, "expense")

	expense, ok := raw["expense"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "food", expense["category"])
}

func TestDeleteEventOmitsExpense(t *testing.T) {
	msg := NewExpenseEventMessage(core.NewExpenseEvent(core.EventDeleted, 3, nil))
	assert.Equal(t, "expense.deleted", msg.RoutingKey())

	body, err := msg.ToJSON()
	require.NoError(t, err)
	assert.NotContains(t, string(body), `"expense"`)
}
