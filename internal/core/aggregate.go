package core

import "sort"

// Summary is the single-pass aggregate over a set of movements.
type Summary struct {
	Total      Money
	Count      int
	Average    float64
	ByCategory map[string]Money
}

// DayGroup buckets movements sharing a calendar day.
type DayGroup struct {
	Date  string // DayLayout key
	Items []Movement
	Total Money
}

// CategoryGroup buckets movements sharing a category, with the bucket's
// share of the overall total.
type CategoryGroup struct {
	Category   string
	Items      []Movement
	Total      Money
	Percentage float64
}

// SortMovementsByDateDesc orders movements newest first. The sort is stable
// so ties keep the arrival order of the underlying fetch.
func SortMovementsByDateDesc(movements []Movement) {
	sort.SliceStable(movements, func(i, j int) bool {
		return movements[i].Date.After(movements[j].Date)
	})
}

// SortMovementsByCreatedAtDesc orders movements by recording time, newest
// first. Used for "recent" views, which follow createdAt rather than the
// user-chosen date.
func SortMovementsByCreatedAtDesc(movements []Movement) {
	sort.SliceStable(movements, func(i, j int) bool {
		return movements[i].CreatedAt.After(movements[j].CreatedAt)
	})
}

// TotalMovements sums the values of a movement set.
func TotalMovements(movements []Movement) Money {
	var total Money
	for _, m := range movements {
		total = total.Add(m.Value)
	}
	return total
}

// SummarizeMovements computes total, count, average and the per-category
// breakdown in a single pass.
func SummarizeMovements(movements []Movement) Summary {
	s := Summary{ByCategory: make(map[string]Money)}
	for _, m := range movements {
		s.Total = s.Total.Add(m.Value)
		s.Count++
		s.ByCategory[m.Category] = s.ByCategory[m.Category].Add(m.Value)
	}
	if s.Count > 0 {
		s.Average = s.Total.Float() / float64(s.Count)
	}
	return s
}

// GroupMovementsByDay buckets movements by calendar day, newest day first.
func GroupMovementsByDay(movements []Movement) []DayGroup {
	buckets := make(map[string]*DayGroup)
	for _, m := range movements {
		key := DayKey(m.Date)
		g, ok := buckets[key]
		if !ok {
			g = &DayGroup{Date: key}
			buckets[key] = g
		}
		g.Items = append(g.Items, m)
		g.Total = g.Total.Add(m.Value)
	}
	groups := make([]DayGroup, 0, len(buckets))
	for _, g := range buckets {
		groups = append(groups, *g)
	}
	sort.Slice(groups, func(i, j int) bool {
		return groups[i].Date > groups[j].Date
	})
	return groups
}

// GroupMovementsByCategory buckets movements by category, largest total
// first. Percentages are shares of the overall total, zero when it is zero.
func GroupMovementsByCategory(movements []Movement) []CategoryGroup {
	buckets := make(map[string]*CategoryGroup)
	order := []string{}
	for _, m := range movements {
		g, ok := buckets[m.Category]
		if !ok {
			g = &CategoryGroup{Category: m.Category}
			buckets[m.Category] = g
			order = append(order, m.Category)
		}
		g.Items = append(g.Items, m)
		g.Total = g.Total.Add(m.Value)
	}

	overall := TotalMovements(movements)
	groups := make([]CategoryGroup, 0, len(buckets))
	for _, cat := range order {
		g := buckets[cat]
		if overall.IsPositive() {
			g.Percentage = g.Total.Float() / overall.Float() * 100
		}
		groups = append(groups, *g)
	}
	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].Total.Cents > groups[j].Total.Cents
	})
	return groups
}
