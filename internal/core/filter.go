package core

import (
	"errors"
	"strings"
	"time"
)

// List pagination bounds.
const (
	DefaultLimit = 50
	MinLimit     = 1
	MaxLimit     = 200
)

type (
	// SortField is the column a list is ordered by.
	SortField string

	// SortOrder is the direction of a list ordering.
	SortOrder string
)

const (
	SortSpentAt SortField = "spent_at"
	SortAmount  SortField = "amount"

	OrderAsc  SortOrder = "asc"
	OrderDesc SortOrder = "desc"
)

// ParseSortField maps "amount" to SortAmount; anything else sorts by spent_at.
func ParseSortField(s string) SortField {
	if s == string(SortAmount) {
		return SortAmount
	}
	return SortSpentAt
}

// ParseSortOrder maps "desc" to OrderDesc; anything else sorts ascending.
func ParseSortOrder(s string) SortOrder {
	if s == string(OrderDesc) {
		return OrderDesc
	}
	return OrderAsc
}

type (
	// StatsFilter bounds an aggregation by spent_at, both ends inclusive.
	StatsFilter struct {
		Start *time.Time
		End   *time.Time
	}

	// ListFilter selects, orders and pages expenses.
	//
	// Query is matched as LIKE '%Query%' against detail without escaping,
	// so '%' and '_' in it act as wildcards.
	ListFilter struct {
		StatsFilter
		Category string
		Query    string
		Sort     SortField
		Order    SortOrder
		Limit    int
		Offset   int
	}
)

// DefaultListFilter returns the filter used when no parameters are given.
func DefaultListFilter() ListFilter {
	return ListFilter{
		Sort:  SortSpentAt,
		Order: OrderDesc,
		Limit: DefaultLimit,
	}
}

// Normalized clamps Limit into [MinLimit, MaxLimit], Offset to >= 0, fills
// empty sort settings and converts the bounds to UTC.
func (f ListFilter) Normalized() ListFilter {
	f.Limit = ClampLimit(f.Limit)
	if f.Offset < 0 {
		f.Offset = 0
	}
	if f.Sort == "" {
		f.Sort = SortSpentAt
	}
	if f.Order == "" {
		f.Order = OrderDesc
	}
	f.StatsFilter = f.StatsFilter.Normalized()
	return f
}

// ClampLimit coerces n into [MinLimit, MaxLimit].
func ClampLimit(n int) int {
	return min(max(n, MinLimit), MaxLimit)
}

// Normalized converts the bounds to UTC.
func (f StatsFilter) Normalized() StatsFilter {
	if f.Start != nil {
		t := f.Start.UTC()
		f.Start = &t
	}
	if f.End != nil {
		t := f.End.UTC()
		f.End = &t
	}
	return f
}

// ErrInvalidTimestamp is returned by ParseTimestamp for unrecognized input.
var ErrInvalidTimestamp = errors.New("invalid datetime format")

// Layouts without a zone offset are interpreted as UTC.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParseTimestamp accepts ISO-8601 datetimes (with or without offset) and
// plain dates, returning the instant in UTC.
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, ErrInvalidTimestamp
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, ErrInvalidTimestamp
}
