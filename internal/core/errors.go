package core

import (
	"errors"
	"strings"
)

// Issue describes one rejected input field.
type Issue struct {
	Loc  []string `json:"loc"`
	Msg  string   `json:"msg"`
	Type string   `json:"type"`
}

// ValidationError collects input problems so a client sees all of them in one response.
type ValidationError struct {
	Issues []Issue
}

// Add appends an issue located at loc (e.g. "body", "amount").
func (v *ValidationError) Add(msg, typ string, loc ...string) {
	v.Issues = append(v.Issues, Issue{Loc: loc, Msg: msg, Type: typ})
}

// OrNil returns v as an error when it holds issues.
func (v *ValidationError) OrNil() error {
	if len(v.Issues) == 0 {
		return nil
	}
	return v
}

func (v *ValidationError) Error() string {
	parts := make([]string, 0, len(v.Issues))
	for _, is := range v.Issues {
		parts = append(parts, strings.Join(is.Loc, ".")+": "+is.Msg)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// NewValidationError builds a single-issue validation error.
func NewValidationError(msg, typ string, loc ...string) error {
	v := &ValidationError{}
	v.Add(msg, typ, loc...)
	return v
}

// IsValidation reports whether err carries a *ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}
