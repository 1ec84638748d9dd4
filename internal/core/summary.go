package core

// CategoryTotal is the summed amount of one category.
type CategoryTotal struct {
	Category string  `json:"category"`
	Total    float64 `json:"total"`
}

// DayTotal is the summed amount of one UTC calendar day (YYYY-MM-DD).
type DayTotal struct {
	Date  string  `json:"date"`
	Total float64 `json:"total"`
}

// Stats summarizes the expenses matched by a StatsFilter.
// ByCategory is ordered by total descending, ByDay by date ascending.
type Stats struct {
	Total      float64         `json:"total"`
	Avg        float64         `json:"avg"`
	Count      int64           `json:"count"`
	ByCategory []CategoryTotal `json:"by_category"`
	ByDay      []DayTotal      `json:"by_day"`
}

// EmptyStats returns zeroed stats with non-nil breakdowns.
func EmptyStats() Stats {
	return Stats{
		ByCategory: []CategoryTotal{},
		ByDay:      []DayTotal{},
	}
}
