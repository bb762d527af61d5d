package budget

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finledger/internal/core"
	"finledger/internal/log"
	"finledger/internal/store"
	"finledger/internal/store/memory"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	svc := NewService(memory.New(), log.New(log.DefaultConfig()))
	svc.now = func() time.Time { return time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC) }
	return svc
}

func money(cents int64) *core.Money {
	return &core.Money{Cents: cents}
}

func TestSaveCreatesLazily(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Load(ctx, "u1", "2024-06")
	assert.ErrorIs(t, err, store.ErrNotFound)

	b, err := svc.Save(ctx, "u1", "2024-06", SaveInput{MonthlyBudget: money(30000)})
	require.NoError(t, err)
	assert.NotEmpty(t, b.ID)
	assert.Equal(t, int64(30000), b.MonthlyBudget.Cents)
	assert.Empty(t, b.DailyExpenses)

	loaded, err := svc.Load(ctx, "u1", "2024-06")
	require.NoError(t, err)
	assert.Equal(t, "2024-06", loaded.MonthYear)
	assert.Equal(t, int64(30000), loaded.MonthlyBudget.Cents)
}

func TestSaveDefaults(t *testing.T) {
	svc := newTestService(t)

	b, err := svc.Save(context.Background(), "u1", "2024-06", SaveInput{})
	require.NoError(t, err)
	assert.Zero(t, b.MonthlyBudget.Cents)
	assert.Empty(t, b.DailyExpenses)
}

func TestSaveMergesNotReplaces(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Save(ctx, "u1", "2024-06", SaveInput{
		MonthlyBudget: money(30000),
		DailyExpenses: []core.DailyExpense{
			{Day: 5, Amount: core.Money{Cents: 1000}},
			{Day: 2, Amount: core.Money{Cents: 500}},
		},
	})
	require.NoError(t, err)

	// A later save without a ceiling keeps the existing one and upserts days.
	b, err := svc.Save(ctx, "u1", "2024-06", SaveInput{
		DailyExpenses: []core.DailyExpense{
			{Day: 5, Amount: core.Money{Cents: 2000}}, // overwrite
			{Day: 9, Amount: core.Money{Cents: 300}},  // new
		},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(30000), b.MonthlyBudget.Cents, "omitted field untouched")

	require.Len(t, b.DailyExpenses, 3)
	assert.Equal(t, []core.DailyExpense{
		{Day: 2, Amount: core.Money{Cents: 500}},
		{Day: 5, Amount: core.Money{Cents: 2000}},
		{Day: 9, Amount: core.Money{Cents: 300}},
	}, b.DailyExpenses, "sorted by day, one entry per day")

	loaded, err := svc.Load(ctx, "u1", "2024-06")
	require.NoError(t, err)
	assert.Equal(t, b.DailyExpenses, loaded.DailyExpenses)
}

func TestSetDailyExpense(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	b, err := svc.SetDailyExpense(ctx, "u1", "2024-06", 10, core.Money{Cents: 1500})
	require.NoError(t, err)
	require.Len(t, b.DailyExpenses, 1)

	b, err = svc.SetDailyExpense(ctx, "u1", "2024-06", 10, core.Money{Cents: 1800})
	require.NoError(t, err)
	require.Len(t, b.DailyExpenses, 1, "upsert by day, no duplicates")
	assert.Equal(t, int64(1800), b.DailyExpenses[0].Amount.Cents)
}

func TestSaveValidation(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Save(ctx, "u1", "junk", SaveInput{})
	assert.True(t, core.IsValidation(err))

	_, err = svc.Save(ctx, "u1", "2024-06", SaveInput{
		DailyExpenses: []core.DailyExpense{{Day: 31, Amount: core.Money{Cents: 1}}},
	})
	assert.True(t, core.IsValidation(err), "June has 30 days")

	_, err = svc.Save(ctx, "u1", "2024-06", SaveInput{
		DailyExpenses: []core.DailyExpense{{Day: 3, Amount: core.Money{Cents: -1}}},
	})
	assert.True(t, core.IsValidation(err))

	negative := core.Money{Cents: -100}
	_, err = svc.Save(ctx, "u1", "2024-06", SaveInput{MonthlyBudget: &negative})
	assert.True(t, core.IsValidation(err))
}

func TestBudgetsAreScopedPerUserAndMonth(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Save(ctx, "u1", "2024-06", SaveInput{MonthlyBudget: money(100)})
	require.NoError(t, err)
	_, err = svc.Save(ctx, "u1", "2024-07", SaveInput{MonthlyBudget: money(200)})
	require.NoError(t, err)
	_, err = svc.Save(ctx, "u2", "2024-06", SaveInput{MonthlyBudget: money(300)})
	require.NoError(t, err)

	june, err := svc.Load(ctx, "u1", "2024-06")
	require.NoError(t, err)
	assert.Equal(t, int64(100), june.MonthlyBudget.Cents)

	july, err := svc.Load(ctx, "u1", "2024-07")
	require.NoError(t, err)
	assert.Equal(t, int64(200), july.MonthlyBudget.Cents)
}

func TestVariance(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Save(ctx, "u1", "2024-06", SaveInput{
		MonthlyBudget: money(30000),
		DailyExpenses: []core.DailyExpense{
			{Day: 1, Amount: core.Money{Cents: 15000}},
		},
	})
	require.NoError(t, err)

	report, err := svc.Variance(ctx, "u1", "2024-06", 10)
	require.NoError(t, err)
	assert.Equal(t, float64(10), report.IdealDailyAverage)
	assert.Equal(t, float64(15), report.ActualDailyAverage)
	assert.True(t, report.IsOverBudget)

	// Missing budget behaves like an empty one.
	report, err = svc.Variance(ctx, "nobody", "2024-06", 10)
	require.NoError(t, err)
	assert.Zero(t, report.TotalSpent.Cents)
	assert.False(t, report.IsOverBudget)
}
