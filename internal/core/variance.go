package core

// VarianceReport compares realized spend against the monthly ceiling.
type VarianceReport struct {
	TotalSpent         Money
	DaysInMonth        int
	IdealDailyAverage  float64
	ActualDailyAverage float64
	IsOverBudget       bool
	RemainingBudget    Money
	PercentageUsed     float64
}

// BudgetVariance computes the over/under-budget signal for a budget as of
// currentDay (the day of month reached so far). Pure: no I/O, independently
// testable from the persistence-backed save/load pair.
func BudgetVariance(b Budget, currentDay int) (VarianceReport, error) {
	days, err := DaysInMonth(b.MonthYear)
	if err != nil {
		return VarianceReport{}, err
	}

	spent := b.TotalSpent()
	report := VarianceReport{
		TotalSpent:      spent,
		DaysInMonth:     days,
		RemainingBudget: b.MonthlyBudget.Sub(spent),
	}

	report.IdealDailyAverage = b.MonthlyBudget.Float() / float64(days)
	if currentDay > 0 {
		report.ActualDailyAverage = spent.Float() / float64(currentDay)
	}
	report.IsOverBudget = report.ActualDailyAverage > report.IdealDailyAverage &&
		b.MonthlyBudget.IsPositive()
	if b.MonthlyBudget.IsPositive() {
		report.PercentageUsed = spent.Float() / b.MonthlyBudget.Float() * 100
	}
	return report, nil
}
