package ledger

import (
	"strings"
	"time"

	"finledger/internal/core"
)

// Filters is a conjunction of optional criteria applied in memory against
// the full per-user set. Date bounds are inclusive of the whole calendar day
// at each end.
type Filters struct {
	StartDate  *time.Time
	EndDate    *time.Time
	Category   string
	Categories []string
	MinValue   *core.Money
	MaxValue   *core.Money
	SearchTerm string
}

// Window builds a Filters covering [start, end]; nil bounds are open.
func Window(start, end *time.Time) *Filters {
	return &Filters{StartDate: start, EndDate: end}
}

func (f *Filters) matches(m core.Movement) bool {
	if f == nil {
		return true
	}
	if f.StartDate != nil && m.Date.Before(core.StartOfDay(*f.StartDate)) {
		return false
	}
	if f.EndDate != nil && m.Date.After(core.EndOfDay(*f.EndDate)) {
		return false
	}
	if f.Category != "" && m.Category != f.Category {
		return false
	}
	if len(f.Categories) > 0 {
		found := false
		for _, c := range f.Categories {
			if m.Category == c {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if f.MinValue != nil && m.Value.Cents < f.MinValue.Cents {
		return false
	}
	if f.MaxValue != nil && m.Value.Cents > f.MaxValue.Cents {
		return false
	}
	if f.SearchTerm != "" {
		term := strings.ToLower(strings.TrimSpace(f.SearchTerm))
		if !strings.Contains(strings.ToLower(m.Description), term) &&
			!strings.Contains(strings.ToLower(m.Category), term) {
			return false
		}
	}
	return true
}

// Apply filters movements into a fresh slice, preserving their order.
func (f *Filters) Apply(movements []core.Movement) []core.Movement {
	out := make([]core.Movement, 0, len(movements))
	for _, m := range movements {
		if f.matches(m) {
			out = append(out, m)
		}
	}
	return out
}
