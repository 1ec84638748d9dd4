package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"

	"expenseapi/internal/core"
	applog "expenseapi/internal/log"
)

// errorResponse is the body of every non-2xx answer. Detail is either a
// message or a list of core.Issue.
type errorResponse struct {
	Detail any `json:"detail"`
}

const (
	msgNotFound      = "Expense not found"
	msgInternalError = "Internal server error"
	msgRateLimited   = "Rate limit exceeded. Please try again later."
)

// writeJSON encodes v before sending the status, so an unencodable value
// turns into a logged 500 instead of a truncated body.
func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	if v == nil {
		w.WriteHeader(status)
		return
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		applog.LogError(r.Context(), "Failed to encode response", err, "encode_response", applog.ErrorTypeInternal,
			applog.NewFields().WithComponent(applog.ComponentHTTP))
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"detail":"` + msgInternalError + `"}` + "\n"))
		return
	}

	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

func writeDetail(w http.ResponseWriter, r *http.Request, status int, detail string) {
	writeJSON(w, r, status, errorResponse{Detail: detail})
}

// writeServiceError maps domain errors to status codes. Anything
// unrecognized is logged and hidden behind a 500.
func writeServiceError(w http.ResponseWriter, r *http.Request, op string, err error) {
	var verr *core.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, r, http.StatusUnprocessableEntity, errorResponse{Detail: verr.Issues})
	case errors.Is(err, core.ErrNotFound):
		writeDetail(w, r, http.StatusNotFound, msgNotFound)
	default:
		applog.LogError(r.Context(), "Expense request failed", err, op, applog.ErrorTypeDatabase,
			applog.NewFields().WithComponent(applog.ComponentHTTP))
		writeDetail(w, r, http.StatusInternalServerError, msgInternalError)
	}
}

func writeRateLimited(w http.ResponseWriter, r *http.Request) {
	applog.FromContext(r.Context()).WarnContext(r.Context(), "Rate limit exceeded",
		applog.FieldClientIP, extractClientIP(r),
		applog.FieldMethod, r.Method,
		applog.FieldPath, r.URL.Path,
		applog.FieldErrorType, applog.ErrorTypeRateLimit)
	writeDetail(w, r, http.StatusTooManyRequests, msgRateLimited)
}
