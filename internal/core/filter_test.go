package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClampLimit(t *testing.T) {
	cases := map[int]int{
		500: 200,
		201: 200,
		200: 200,
		50:  50,
		1:   1,
		0:   1,
		-7:  1,
	}
	for in, want := range cases {
		assert.Equal(t, want, ClampLimit(in), "limit %d", in)
	}
}

func TestListFilterNormalized(t *testing.T) {
	f := ListFilter{Limit: 500, Offset: -3}.Normalized()
	assert.Equal(t, MaxLimit, f.Limit)
	assert.Equal(t, 0, f.Offset)
	assert.Equal(t, SortSpentAt, f.Sort)
	assert.Equal(t, OrderDesc, f.Order)

	f = ListFilter{Limit: 0, Offset: 10, Sort: SortAmount, Order: OrderAsc}.Normalized()
	assert.Equal(t, MinLimit, f.Limit)
	assert.Equal(t, 10, f.Offset)
	assert.Equal(t, SortAmount, f.Sort)
	assert.Equal(t, OrderAsc, f.Order)
}

func TestDefaultListFilter(t *testing.T) {
	f := DefaultListFilter()
	assert.Equal(t, DefaultLimit, f.Limit)
	assert.Equal(t, SortSpentAt, f.Sort)
	assert.Equal(t, OrderDesc, f.Order)
}

func TestParseSort(t *testing.T) {
	assert.Equal(t, SortAmount, ParseSortField("amount"))
	assert.Equal(t, SortSpentAt, ParseSortField("spent_at"))
	assert.Equal(t, SortSpentAt, ParseSortField("category"))

	assert.Equal(t, OrderDesc, ParseSortOrder("desc"))
	assert.Equal(t, OrderAsc, ParseSortOrder("asc"))
	assert.Equal(t, OrderAsc, ParseSortOrder("DESC"))
}

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
	}{
		{"2024-01-01T00:00:00", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
		{"2024-01-31T17:00:00.000Z", time.Date(2024, 1, 31, 17, 0, 0, 0, time.UTC)},
		{"2024-02-01T07:00:00+07:00", time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)},
		{"2024-03-05T10:30", time.Date(2024, 3, 5, 10, 30, 0, 0, time.UTC)},
		{"2024-03-05 10:30:15", time.Date(2024, 3, 5, 10, 30, 15, 0, time.UTC)},
		{"2024-03-05", time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseTimestamp(tt.in)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %s", got)
			assert.Equal(t, time.UTC, got.Location())
		})
	}

	for _, bad := range []string{"", "yesterday", "2024-13-01", "01/02/2024"} {
		_, err := ParseTimestamp(bad)
		assert.ErrorIs(t, err, ErrInvalidTimestamp, "input %q", bad)
	}
}

func TestStatsFilterNormalized(t *testing.T) {
	start := time.Date(2024, 1, 1, 7, 0, 0, 0, time.FixedZone("ICT", 7*3600))
	f := StatsFilter{Start: &start}.Normalized()
	require.NotNil(t, f.Start)
	assert.Nil(t, f.End)
	assert.Equal(t, time.UTC, f.Start.Location())
	assert.Equal(t, 0, f.Start.Hour())
}
