package core

import (
	"math"
	"testing"
	"time"
)

func day(d int) time.Time {
	return time.Date(2024, 6, d, 0, 0, 0, 0, time.UTC)
}

func sampleMovements() []Movement {
	return []Movement{
		{ID: "a", Value: Money{Cents: 1000}, Category: "Food", Date: day(1)},
		{ID: "b", Value: Money{Cents: 3000}, Category: "Rent", Date: day(2)},
		{ID: "c", Value: Money{Cents: 2000}, Category: "Food", Date: day(2)},
		{ID: "d", Value: Money{Cents: 500}, Category: "Fun", Date: day(3)},
	}
}

func TestSummarizeMovements(t *testing.T) {
	s := SummarizeMovements(sampleMovements())
	if s.Total.Cents != 6500 {
		t.Errorf("Total = %d, want 6500", s.Total.Cents)
	}
	if s.Count != 4 {
		t.Errorf("Count = %d, want 4", s.Count)
	}
	if math.Abs(s.Average-16.25) > 1e-9 {
		t.Errorf("Average = %v, want 16.25", s.Average)
	}
	if s.ByCategory["Food"].Cents != 3000 {
		t.Errorf("ByCategory[Food] = %d, want 3000", s.ByCategory["Food"].Cents)
	}
	if got := s.Total; got != TotalMovements(sampleMovements()) {
		t.Errorf("summary total %v differs from TotalMovements %v", got, TotalMovements(sampleMovements()))
	}
}

func TestSummarizeMovementsEmpty(t *testing.T) {
	s := SummarizeMovements(nil)
	if s.Total.Cents != 0 || s.Count != 0 || s.Average != 0 {
		t.Errorf("empty summary = %+v, want zeros", s)
	}
}

func TestGroupMovementsByDay(t *testing.T) {
	groups := GroupMovementsByDay(sampleMovements())
	if len(groups) != 3 {
		t.Fatalf("got %d groups, want 3", len(groups))
	}
	// Newest day first.
	if groups[0].Date != "2024-06-03" || groups[2].Date != "2024-06-01" {
		t.Errorf("group order = %s..%s, want 2024-06-03..2024-06-01", groups[0].Date, groups[2].Date)
	}
	if groups[1].Total.Cents != 5000 {
		t.Errorf("2024-06-02 total = %d, want 5000", groups[1].Total.Cents)
	}
	if len(groups[1].Items) != 2 {
		t.Errorf("2024-06-02 items = %d, want 2", len(groups[1].Items))
	}
}

func TestGroupMovementsByCategory(t *testing.T) {
	groups := GroupMovementsByCategory(sampleMovements())
	if len(groups) != 3 {
		t.Fatalf("got %d groups, want 3", len(groups))
	}
	// Largest total first.
	if groups[0].Category != "Rent" && groups[0].Category != "Food" {
		t.Errorf("first group = %s, want Rent or Food", groups[0].Category)
	}
	if groups[0].Total.Cents != 3000 {
		t.Errorf("first group total = %d, want 3000", groups[0].Total.Cents)
	}

	sum := 0.0
	for _, g := range groups {
		sum += g.Percentage
	}
	if math.Abs(sum-100) > 1e-6 {
		t.Errorf("percentages sum to %v, want 100", sum)
	}
}

func TestGroupMovementsByCategoryZeroTotal(t *testing.T) {
	groups := GroupMovementsByCategory(nil)
	if len(groups) != 0 {
		t.Errorf("got %d groups for empty input, want 0", len(groups))
	}
}

func TestSortMovementsByDateDescStable(t *testing.T) {
	ms := []Movement{
		{ID: "first", Date: day(2)},
		{ID: "second", Date: day(2)},
		{ID: "newest", Date: day(5)},
	}
	SortMovementsByDateDesc(ms)
	if ms[0].ID != "newest" {
		t.Errorf("ms[0] = %s, want newest", ms[0].ID)
	}
	// Equal dates keep fetch order.
	if ms[1].ID != "first" || ms[2].ID != "second" {
		t.Errorf("tie order = %s,%s, want first,second", ms[1].ID, ms[2].ID)
	}
}

func TestSortMovementsByCreatedAtDesc(t *testing.T) {
	ms := []Movement{
		{ID: "old", Date: day(5), CreatedAt: day(1)},
		{ID: "new", Date: day(1), CreatedAt: day(9)},
	}
	SortMovementsByCreatedAtDesc(ms)
	if ms[0].ID != "new" {
		t.Errorf("recent order follows createdAt, got %s first", ms[0].ID)
	}
}
