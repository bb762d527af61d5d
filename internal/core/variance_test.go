package core

import (
	"math"
	"testing"
)

func TestBudgetVariance(t *testing.T) {
	budget := Budget{
		MonthYear:     "2024-06", // 30 days
		MonthlyBudget: Money{Cents: 30000},
		DailyExpenses: []DailyExpense{
			{Day: 2, Amount: Money{Cents: 5000}},
			{Day: 5, Amount: Money{Cents: 10000}},
		},
	}

	report, err := BudgetVariance(budget, 10)
	if err != nil {
		t.Fatalf("BudgetVariance: %v", err)
	}

	if report.DaysInMonth != 30 {
		t.Errorf("DaysInMonth = %d, want 30", report.DaysInMonth)
	}
	if report.TotalSpent.Cents != 15000 {
		t.Errorf("TotalSpent = %d, want 15000", report.TotalSpent.Cents)
	}
	if report.IdealDailyAverage != 10 {
		t.Errorf("IdealDailyAverage = %v, want 10", report.IdealDailyAverage)
	}
	if report.ActualDailyAverage != 15 {
		t.Errorf("ActualDailyAverage = %v, want 15", report.ActualDailyAverage)
	}
	if !report.IsOverBudget {
		t.Error("IsOverBudget = false, want true")
	}
	if report.RemainingBudget.Cents != 15000 {
		t.Errorf("RemainingBudget = %d, want 15000", report.RemainingBudget.Cents)
	}
	if report.PercentageUsed != 50 {
		t.Errorf("PercentageUsed = %v, want 50", report.PercentageUsed)
	}
}

func TestBudgetVarianceEdgeCases(t *testing.T) {
	t.Run("day zero avoids division", func(t *testing.T) {
		b := Budget{MonthYear: "2024-06", MonthlyBudget: Money{Cents: 30000}}
		report, err := BudgetVariance(b, 0)
		if err != nil {
			t.Fatal(err)
		}
		if report.ActualDailyAverage != 0 {
			t.Errorf("ActualDailyAverage = %v, want 0", report.ActualDailyAverage)
		}
		if report.IsOverBudget {
			t.Error("IsOverBudget = true with no spend")
		}
	})

	t.Run("zero budget never over", func(t *testing.T) {
		b := Budget{
			MonthYear:     "2024-06",
			DailyExpenses: []DailyExpense{{Day: 1, Amount: Money{Cents: 100}}},
		}
		report, err := BudgetVariance(b, 1)
		if err != nil {
			t.Fatal(err)
		}
		if report.IsOverBudget {
			t.Error("IsOverBudget = true with zero ceiling")
		}
		if report.PercentageUsed != 0 {
			t.Errorf("PercentageUsed = %v, want 0", report.PercentageUsed)
		}
		if report.RemainingBudget.Cents != -100 {
			t.Errorf("RemainingBudget = %d, want -100", report.RemainingBudget.Cents)
		}
	})

	t.Run("february leap year", func(t *testing.T) {
		b := Budget{MonthYear: "2024-02", MonthlyBudget: Money{Cents: 2900}}
		report, err := BudgetVariance(b, 1)
		if err != nil {
			t.Fatal(err)
		}
		if report.DaysInMonth != 29 {
			t.Errorf("DaysInMonth = %d, want 29", report.DaysInMonth)
		}
		if math.Abs(report.IdealDailyAverage-1.0) > 1e-9 {
			t.Errorf("IdealDailyAverage = %v, want 1", report.IdealDailyAverage)
		}
	})

	t.Run("invalid month key", func(t *testing.T) {
		if _, err := BudgetVariance(Budget{MonthYear: "nope"}, 1); err == nil {
			t.Error("want error for invalid month key")
		}
	})
}
