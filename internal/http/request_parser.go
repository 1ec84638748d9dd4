package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"expenseapi/internal/core"
)

// maxBodyBytes caps create and update payloads.
const maxBodyBytes = 64 << 10

// expensePayload mirrors the JSON body of create and update requests.
// Pointers tell a missing field apart from a zero value.
type expensePayload struct {
	SpentAt       *string         `json:"spent_at"`
	Category      *string         `json:"category"`
	Detail        *string         `json:"detail"`
	Amount        json.RawMessage `json:"amount"`
	PaymentMethod *string         `json:"payment_method"`
}

// decodeExpenseInput reads the request body into an ExpenseInput. Shape
// problems come back as a *core.ValidationError; field rules are checked
// later by ExpenseInput.Validate.
func decodeExpenseInput(w http.ResponseWriter, r *http.Request) (core.ExpenseInput, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return core.ExpenseInput{}, core.NewValidationError("request body too large or unreadable", "value_error", "body")
	}

	var p expensePayload
	dec := json.NewDecoder(bytes.NewReader(body))
	if err := dec.Decode(&p); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			return core.ExpenseInput{}, core.NewValidationError(
				"invalid type, expected "+typeErr.Type.String(), "type_error", "body", typeErr.Field)
		}
		return core.ExpenseInput{}, core.NewValidationError("JSON decode error", "json_invalid", "body")
	}

	var v core.ValidationError
	var in core.ExpenseInput

	switch {
	case p.SpentAt == nil:
		v.Add("Field required", "missing", "body", "spent_at")
	default:
		t, err := core.ParseTimestamp(*p.SpentAt)
		if err != nil {
			v.Add("Input should be a valid datetime", "datetime_parsing", "body", "spent_at")
		}
		in.SpentAt = t
	}

	if p.Category == nil {
		v.Add("Field required", "missing", "body", "category")
	} else {
		in.Category = *p.Category
	}

	amount, present, err := parseAmount(p.Amount)
	switch {
	case !present:
		v.Add("Field required", "missing", "body", "amount")
	case err != nil:
		v.Add("Input should be a valid number", "float_parsing", "body", "amount")
	default:
		in.Amount = amount
	}

	in.Detail = p.Detail
	in.PaymentMethod = p.PaymentMethod

	if len(v.Issues) == 0 {
		return in, nil
	}

	// Report rule violations of the well-formed fields in the same response.
	var rules *core.ValidationError
	if errors.As(in.Validate(), &rules) {
		for _, is := range rules.Issues {
			if !hasIssueAt(v.Issues, is.Loc) {
				v.Issues = append(v.Issues, is)
			}
		}
	}
	return core.ExpenseInput{}, &v
}

func hasIssueAt(issues []core.Issue, loc []string) bool {
	for _, is := range issues {
		if strings.Join(is.Loc, ".") == strings.Join(loc, ".") {
			return true
		}
	}
	return false
}

var errNonFiniteAmount = errors.New("amount is not a finite number")

// parseAmount accepts a JSON number or a numeric string. ParseFloat also
// reads "inf" and "NaN", which are rejected.
func parseAmount(raw json.RawMessage) (float64, bool, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return 0, false, nil
	}

	var n float64
	if err := json.Unmarshal(trimmed, &n); err == nil {
		return n, true, nil
	}

	var s string
	if err := json.Unmarshal(trimmed, &s); err != nil {
		return 0, true, err
	}
	n, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, true, err
	}
	if math.IsInf(n, 0) || math.IsNaN(n) {
		return 0, true, errNonFiniteAmount
	}
	return n, true, nil
}

// parseExpenseID reads the {id} path segment.
func parseExpenseID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		return 0, core.NewValidationError("Input should be a valid integer", "int_parsing", "path", "expense_id")
	}
	return id, nil
}

// queryParam returns a trimmed query value; empty counts as absent.
func queryParam(q url.Values, name string) (string, bool) {
	v := strings.TrimSpace(q.Get(name))
	return v, v != ""
}

func parseRange(q url.Values, v *core.ValidationError) core.StatsFilter {
	var f core.StatsFilter
	if s, ok := queryParam(q, "start"); ok {
		if t, err := core.ParseTimestamp(s); err != nil {
			v.Add("Input should be a valid datetime", "datetime_parsing", "query", "start")
		} else {
			f.Start = &t
		}
	}
	if s, ok := queryParam(q, "end"); ok {
		if t, err := core.ParseTimestamp(s); err != nil {
			v.Add("Input should be a valid datetime", "datetime_parsing", "query", "end")
		} else {
			f.End = &t
		}
	}
	return f
}

// parseListFilter builds a ListFilter from the query string. Out of range
// limit and offset values are clamped later, only unparsable ones fail.
func parseListFilter(q url.Values) (core.ListFilter, error) {
	var v core.ValidationError
	f := core.DefaultListFilter()
	f.StatsFilter = parseRange(q, &v)

	f.Category, _ = queryParam(q, "category")
	f.Query, _ = queryParam(q, "q")
	if s, ok := queryParam(q, "sort"); ok {
		f.Sort = core.ParseSortField(s)
	}
	if s, ok := queryParam(q, "order"); ok {
		f.Order = core.ParseSortOrder(s)
	}

	if s, ok := queryParam(q, "limit"); ok {
		f.Limit = parseIntParam(s, "limit", &v)
	}
	if s, ok := queryParam(q, "offset"); ok {
		f.Offset = parseIntParam(s, "offset", &v)
	}

	if err := v.OrNil(); err != nil {
		return core.ListFilter{}, err
	}
	return f.Normalized(), nil
}

// parseIntParam saturates oversized values instead of rejecting them.
func parseIntParam(s, name string, v *core.ValidationError) int {
	n, err := strconv.Atoi(s)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		v.Add("Input should be a valid integer", "int_parsing", "query", name)
	}
	return n
}

func parseStatsFilter(q url.Values) (core.StatsFilter, error) {
	var v core.ValidationError
	f := parseRange(q, &v)
	if err := v.OrNil(); err != nil {
		return core.StatsFilter{}, err
	}
	return f.Normalized(), nil
}
