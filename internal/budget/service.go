// Package budget persists per-month spending ceilings and their sparse
// daily spend maps. The variance computation itself is pure and lives in
// core; this service handles the lazy-create/merge persistence around it.
package budget

import (
	"context"
	"fmt"
	"sort"
	"time"

	"finledger/internal/core"
	"finledger/internal/log"
	"finledger/internal/store"
)

type Service struct {
	store  store.Store
	logger *log.Logger
	now    func() time.Time
}

func NewService(st store.Store, logger *log.Logger) *Service {
	return &Service{
		store:  st,
		logger: logger.WithComponent(log.ComponentBudget),
		now:    time.Now,
	}
}

// SaveInput carries the fields of a save call. Nil/empty fields leave the
// stored record untouched.
type SaveInput struct {
	MonthlyBudget *core.Money
	DailyExpenses []core.DailyExpense
}

// Save lazily creates the month's budget on first call and merges supplied
// fields over the existing record afterwards. Supplied daily expenses are
// upserted by day number into the existing map, never replacing it
// wholesale. MonthYear is fixed at creation.
func (s *Service) Save(ctx context.Context, userID, monthYear string, in SaveInput) (core.Budget, error) {
	if err := core.ValidateMonthYear(monthYear); err != nil {
		return core.Budget{}, err
	}
	if in.MonthlyBudget != nil && in.MonthlyBudget.Cents < 0 {
		return core.Budget{}, &core.ValidationError{
			Violations: []string{"monthly budget cannot be negative"},
		}
	}
	if err := validateDailyExpenses(monthYear, in.DailyExpenses); err != nil {
		return core.Budget{}, err
	}

	existing, found, err := s.find(ctx, userID, monthYear)
	if err != nil {
		return core.Budget{}, err
	}

	now := s.now()
	if !found {
		b := core.Budget{
			UserID:        userID,
			MonthYear:     monthYear,
			DailyExpenses: mergeDailyExpenses(nil, in.DailyExpenses),
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if in.MonthlyBudget != nil {
			b.MonthlyBudget = *in.MonthlyBudget
		}
		doc, err := store.Encode(b)
		if err != nil {
			return core.Budget{}, err
		}
		id, err := s.store.Insert(ctx, store.Budgets, doc)
		if err != nil {
			return core.Budget{}, fmt.Errorf("insert budget: %w", err)
		}
		b.ID = id

		s.logger.InfoContext(ctx, "budget created",
			log.FieldUserID, userID,
			log.FieldMonthYear, monthYear)
		return b, nil
	}

	fields := store.Document{}
	if in.MonthlyBudget != nil {
		existing.MonthlyBudget = *in.MonthlyBudget
		fields["monthlyBudget"] = in.MonthlyBudget.Cents
	}
	if len(in.DailyExpenses) > 0 {
		existing.DailyExpenses = mergeDailyExpenses(existing.DailyExpenses, in.DailyExpenses)
		encoded, err := store.Encode(core.Budget{DailyExpenses: existing.DailyExpenses})
		if err != nil {
			return core.Budget{}, err
		}
		fields["dailyExpenses"] = encoded["dailyExpenses"]
	}
	if len(fields) == 0 {
		return existing, nil
	}
	existing.UpdatedAt = now
	fields["updatedAt"] = now.Format(time.RFC3339Nano)

	if err := s.store.UpdateByID(ctx, store.Budgets, existing.ID, fields); err != nil {
		return core.Budget{}, fmt.Errorf("update budget: %w", err)
	}

	s.logger.InfoContext(ctx, "budget saved",
		log.FieldOperation, log.OpSave,
		log.FieldUserID, userID,
		log.FieldMonthYear, monthYear)
	return existing, nil
}

// SetDailyExpense upserts a single (day, amount) pair.
func (s *Service) SetDailyExpense(ctx context.Context, userID, monthYear string, day int, amount core.Money) (core.Budget, error) {
	return s.Save(ctx, userID, monthYear, SaveInput{
		DailyExpenses: []core.DailyExpense{{Day: day, Amount: amount}},
	})
}

// Load returns the month's budget, or store.ErrNotFound when none was ever
// saved.
func (s *Service) Load(ctx context.Context, userID, monthYear string) (core.Budget, error) {
	b, found, err := s.find(ctx, userID, monthYear)
	if err != nil {
		return core.Budget{}, err
	}
	if !found {
		return core.Budget{}, store.ErrNotFound
	}
	return b, nil
}

// Variance loads the month's budget (an empty one when none exists) and
// computes the over/under signal as of currentDay.
func (s *Service) Variance(ctx context.Context, userID, monthYear string, currentDay int) (core.VarianceReport, error) {
	b, found, err := s.find(ctx, userID, monthYear)
	if err != nil {
		return core.VarianceReport{}, err
	}
	if !found {
		b = core.Budget{UserID: userID, MonthYear: monthYear}
	}
	return core.BudgetVariance(b, currentDay)
}

// find fetches the user's budgets and selects the month client-side, the
// same fetch-then-filter shape the ledger uses.
func (s *Service) find(ctx context.Context, userID, monthYear string) (core.Budget, bool, error) {
	docs, err := s.store.QueryByEquality(ctx, store.Budgets, "userId", userID)
	if err != nil {
		return core.Budget{}, false, fmt.Errorf("fetch budgets: %w", err)
	}
	budgets, err := store.DecodeAll[core.Budget](docs)
	if err != nil {
		return core.Budget{}, false, err
	}
	for _, b := range budgets {
		if b.MonthYear == monthYear {
			sortDailyExpenses(b.DailyExpenses)
			return b, true, nil
		}
	}
	return core.Budget{}, false, nil
}

// mergeDailyExpenses upserts updates into existing by day number and
// returns the map sorted by day.
func mergeDailyExpenses(existing, updates []core.DailyExpense) []core.DailyExpense {
	byDay := make(map[int]core.DailyExpense, len(existing)+len(updates))
	for _, de := range existing {
		byDay[de.Day] = de
	}
	for _, de := range updates {
		byDay[de.Day] = de
	}
	out := make([]core.DailyExpense, 0, len(byDay))
	for _, de := range byDay {
		out = append(out, de)
	}
	sortDailyExpenses(out)
	return out
}

func sortDailyExpenses(des []core.DailyExpense) {
	sort.Slice(des, func(i, j int) bool { return des[i].Day < des[j].Day })
}

func validateDailyExpenses(monthYear string, des []core.DailyExpense) error {
	days, err := core.DaysInMonth(monthYear)
	if err != nil {
		return err
	}
	ve := &core.ValidationError{}
	for _, de := range des {
		if de.Day < 1 || de.Day > days {
			ve.Violations = append(ve.Violations,
				fmt.Sprintf("day %d is outside the month", de.Day))
		}
		if de.Amount.Cents < 0 {
			ve.Violations = append(ve.Violations,
				fmt.Sprintf("spent amount for day %d cannot be negative", de.Day))
		}
	}
	if len(ve.Violations) > 0 {
		return ve
	}
	return nil
}
