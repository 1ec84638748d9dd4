package http

import (
	"net/http"

	"expenseapi/internal/core"
	applog "expenseapi/internal/log"
)

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	in, err := decodeExpenseInput(w, r)
	if err != nil {
		writeServiceError(w, r, applog.OpParse, err)
		return
	}

	e, err := s.expenses.CreateExpense(r.Context(), in)
	if err != nil {
		writeServiceError(w, r, applog.OpCreate, err)
		return
	}

	applog.FromContext(r.Context()).InfoContext(r.Context(), "Expense created",
		applog.NewFields().
			WithExpense(e.ID, e.Category, e.Amount).
			WithOperation(applog.OpCreate).
			ToSlice()...)

	writeJSON(w, r, http.StatusCreated, e)
}

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	f, err := parseListFilter(r.URL.Query())
	if err != nil {
		writeServiceError(w, r, applog.OpParse, err)
		return
	}

	items, err := s.expenses.ListExpenses(r.Context(), f)
	if err != nil {
		writeServiceError(w, r, applog.OpList, err)
		return
	}
	if items == nil {
		items = []core.Expense{}
	}
	writeJSON(w, r, http.StatusOK, items)
}

func (s *Server) handleExpenseStats(w http.ResponseWriter, r *http.Request) {
	f, err := parseStatsFilter(r.URL.Query())
	if err != nil {
		writeServiceError(w, r, applog.OpParse, err)
		return
	}

	stats, err := s.expenses.ExpenseStats(r.Context(), f)
	if err != nil {
		writeServiceError(w, r, applog.OpStats, err)
		return
	}
	writeJSON(w, r, http.StatusOK, stats)
}

func (s *Server) handleGetExpense(w http.ResponseWriter, r *http.Request) {
	id, err := parseExpenseID(r)
	if err != nil {
		writeServiceError(w, r, applog.OpParse, err)
		return
	}

	e, err := s.expenses.GetExpense(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, applog.OpRead, err)
		return
	}
	writeJSON(w, r, http.StatusOK, e)
}

// handleUpdateExpense is a full replace: omitted optional fields become null.
func (s *Server) handleUpdateExpense(w http.ResponseWriter, r *http.Request) {
	id, err := parseExpenseID(r)
	if err != nil {
		writeServiceError(w, r, applog.OpParse, err)
		return
	}
	in, err := decodeExpenseInput(w, r)
	if err != nil {
		writeServiceError(w, r, applog.OpParse, err)
		return
	}

	e, err := s.expenses.UpdateExpense(r.Context(), id, in)
	if err != nil {
		writeServiceError(w, r, applog.OpUpdate, err)
		return
	}
	writeJSON(w, r, http.StatusOK, e)
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	id, err := parseExpenseID(r)
	if err != nil {
		writeServiceError(w, r, applog.OpParse, err)
		return
	}

	if err := s.expenses.DeleteExpense(r.Context(), id); err != nil {
		writeServiceError(w, r, applog.OpDelete, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
