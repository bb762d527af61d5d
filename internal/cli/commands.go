package cli

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"finledger/internal/bill"
	"finledger/internal/budget"
	"finledger/internal/core"
	"finledger/internal/goal"
	"finledger/internal/ledger"
)

const usage = `usage: finledger <command> [arguments]

commands:
  expense add    -amount <n> -desc <text> -category <name> [-date YYYY-MM-DD]
  expense list   [-month YYYY-MM] [-category <name>]
  income add     -amount <n> -desc <text> [-category <name>] [-date YYYY-MM-DD]
  income list    [-month YYYY-MM]
  budget set     -month YYYY-MM -amount <n>
  budget spend   -month YYYY-MM -day <d> -amount <n>
  report         -month YYYY-MM
  goal add       -title <text> -target <n> -category <name> [-deadline YYYY-MM-DD]
  goal contribute -id <goalId> -amount <n> [-note <text>]
  goal list
  bill add       -title <text> -amount <n> -due YYYY-MM-DD
  bill pay       -id <billId>
  bill scan
  bill list
`

// Run dispatches one CLI invocation. args excludes the program name.
func (a *App) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("missing command")
	}

	switch args[0] {
	case "expense":
		return a.runMovement(ctx, a.Expenses, args[1:])
	case "income":
		return a.runMovement(ctx, a.Incomes, args[1:])
	case "budget":
		return a.runBudget(ctx, args[1:])
	case "report":
		return a.runReport(ctx, args[1:])
	case "goal":
		return a.runGoal(ctx, args[1:])
	case "bill":
		return a.runBill(ctx, args[1:])
	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func (a *App) runMovement(ctx context.Context, svc *ledger.Service, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("expected add or list")
	}
	userID, err := a.userID(ctx)
	if err != nil {
		return err
	}

	switch args[0] {
	case "add":
		fs := flag.NewFlagSet("add", flag.ContinueOnError)
		amount := fs.String("amount", "", "amount, e.g. 12.50")
		desc := fs.String("desc", "", "description")
		category := fs.String("category", "", "category")
		date := fs.String("date", "", "date (YYYY-MM-DD), defaults to today")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		cents, err := core.ParseDecimalToCents(*amount)
		if err != nil {
			return fmt.Errorf("parse amount %q: %w", *amount, err)
		}
		when := time.Now()
		if *date != "" {
			when, err = time.Parse(core.DayLayout, *date)
			if err != nil {
				return fmt.Errorf("parse date %q: %w", *date, err)
			}
		}
		m, err := svc.Create(ctx, userID, ledger.CreateInput{
			Value:       core.Money{Cents: cents},
			Description: *desc,
			Date:        when,
			Category:    *category,
		})
		if err != nil {
			return err
		}
		fmt.Printf("recorded %s  %s  %s  %s\n",
			m.Date.Format(core.DayLayout), m.Value, m.Category, m.Description)
		return nil

	case "list":
		fs := flag.NewFlagSet("list", flag.ContinueOnError)
		month := fs.String("month", "", "month (YYYY-MM)")
		category := fs.String("category", "", "category filter")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		filters := &ledger.Filters{Category: *category}
		if *month != "" {
			start, end, err := monthWindow(*month)
			if err != nil {
				return err
			}
			filters.StartDate = &start
			filters.EndDate = &end
		}
		movements, err := svc.List(ctx, userID, filters)
		if err != nil {
			return err
		}
		for _, m := range movements {
			fmt.Printf("%s  %10s  %-16s  %s  (%s)\n",
				m.Date.Format(core.DayLayout), m.Value, m.Category, m.Description, m.ID)
		}
		fmt.Printf("%d records, total %s\n", len(movements), core.TotalMovements(movements))
		return nil

	default:
		return fmt.Errorf("unknown subcommand %q", args[0])
	}
}

func (a *App) runBudget(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("expected set or spend")
	}
	userID, err := a.userID(ctx)
	if err != nil {
		return err
	}

	switch args[0] {
	case "set":
		fs := flag.NewFlagSet("set", flag.ContinueOnError)
		month := fs.String("month", "", "month (YYYY-MM)")
		amount := fs.String("amount", "", "monthly ceiling")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		cents, err := core.ParseDecimalToCents(*amount)
		if err != nil {
			return fmt.Errorf("parse amount %q: %w", *amount, err)
		}
		ceiling := core.Money{Cents: cents}
		b, err := a.Budgets.Save(ctx, userID, *month, budget.SaveInput{MonthlyBudget: &ceiling})
		if err != nil {
			return err
		}
		fmt.Printf("budget %s set to %s\n", b.MonthYear, b.MonthlyBudget)
		return nil

	case "spend":
		fs := flag.NewFlagSet("spend", flag.ContinueOnError)
		month := fs.String("month", "", "month (YYYY-MM)")
		day := fs.Int("day", 0, "day of month")
		amount := fs.String("amount", "", "spent that day")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		cents, err := core.ParseDecimalToCents(*amount)
		if err != nil {
			return fmt.Errorf("parse amount %q: %w", *amount, err)
		}
		b, err := a.Budgets.SetDailyExpense(ctx, userID, *month, *day, core.Money{Cents: cents})
		if err != nil {
			return err
		}
		fmt.Printf("budget %s: day %d recorded, total spent %s\n", b.MonthYear, *day, b.TotalSpent())
		return nil

	default:
		return fmt.Errorf("unknown subcommand %q", args[0])
	}
}

func (a *App) runReport(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("report", flag.ContinueOnError)
	month := fs.String("month", "", "month (YYYY-MM)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *month == "" {
		*month = time.Now().Format(core.MonthYearLayout)
	}
	userID, err := a.userID(ctx)
	if err != nil {
		return err
	}

	start, end, err := monthWindow(*month)
	if err != nil {
		return err
	}

	expenses, err := a.Expenses.Summary(ctx, userID, &start, &end)
	if err != nil {
		return err
	}
	incomes, err := a.Incomes.Summary(ctx, userID, &start, &end)
	if err != nil {
		return err
	}
	fmt.Printf("report %s\n", *month)
	fmt.Printf("  income   %10s  (%d records)\n", incomes.Total, incomes.Count)
	fmt.Printf("  expenses %10s  (%d records)\n", expenses.Total, expenses.Count)
	fmt.Printf("  net      %10s\n", incomes.Total.Sub(expenses.Total))

	groups, err := a.Expenses.GroupByCategory(ctx, userID, &start, &end)
	if err != nil {
		return err
	}
	for _, g := range groups {
		fmt.Printf("    %-16s %10s  %5.1f%%\n", g.Category, g.Total, g.Percentage)
	}

	currentDay := 0
	now := time.Now()
	if now.Format(core.MonthYearLayout) == *month {
		currentDay = now.Day()
	} else if now.After(end) {
		currentDay = end.Day()
	}
	report, err := a.Budgets.Variance(ctx, userID, *month, currentDay)
	if err != nil {
		return err
	}
	if report.DaysInMonth > 0 && currentDay > 0 {
		status := "on track"
		if report.IsOverBudget {
			status = "over budget"
		}
		fmt.Printf("  budget: spent %s, remaining %s, %.1f%% used (%s)\n",
			report.TotalSpent, report.RemainingBudget, report.PercentageUsed, status)
	}
	return nil
}

func (a *App) runGoal(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("expected add, contribute or list")
	}
	userID, err := a.userID(ctx)
	if err != nil {
		return err
	}

	switch args[0] {
	case "add":
		fs := flag.NewFlagSet("add", flag.ContinueOnError)
		title := fs.String("title", "", "goal title")
		target := fs.String("target", "", "target amount")
		category := fs.String("category", string(core.GoalSavings), "goal category")
		deadline := fs.String("deadline", "", "deadline (YYYY-MM-DD)")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		cents, err := core.ParseDecimalToCents(*target)
		if err != nil {
			return fmt.Errorf("parse target %q: %w", *target, err)
		}
		in := goal.CreateInput{
			Title:        *title,
			TargetAmount: core.Money{Cents: cents},
			Category:     core.GoalCategory(*category),
		}
		if *deadline != "" {
			d, err := time.Parse(core.DayLayout, *deadline)
			if err != nil {
				return fmt.Errorf("parse deadline %q: %w", *deadline, err)
			}
			in.Deadline = &d
		}
		g, err := a.Goals.Create(ctx, userID, in)
		if err != nil {
			return err
		}
		fmt.Printf("goal %q created (%s), target %s\n", g.Title, g.ID, g.TargetAmount)
		return nil

	case "contribute":
		fs := flag.NewFlagSet("contribute", flag.ContinueOnError)
		id := fs.String("id", "", "goal id")
		amount := fs.String("amount", "", "contribution amount")
		note := fs.String("note", "", "note")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		cents, err := core.ParseDecimalToCents(*amount)
		if err != nil {
			return fmt.Errorf("parse amount %q: %w", *amount, err)
		}
		g, err := a.Goals.AddContribution(ctx, userID, *id, core.Money{Cents: cents}, *note)
		if err != nil {
			return err
		}
		fmt.Printf("goal %q: %s of %s (%s)\n", g.Title, g.CurrentAmount, g.TargetAmount, g.Status)
		return nil

	case "list":
		goals, err := a.Goals.List(ctx, userID)
		if err != nil {
			return err
		}
		for _, g := range goals {
			fmt.Printf("%s  %-24s %10s / %-10s %-9s (%s)\n",
				g.ID, g.Title, g.CurrentAmount, g.TargetAmount, g.Status, g.Category)
		}
		stats, err := a.Goals.Stats(ctx, userID)
		if err != nil {
			return err
		}
		fmt.Printf("%d goals, %d active, %d completed, %.1f%% overall progress\n",
			stats.TotalGoals, stats.ActiveGoals, stats.CompletedGoals, stats.TotalProgress)
		return nil

	default:
		return fmt.Errorf("unknown subcommand %q", args[0])
	}
}

func (a *App) runBill(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("expected add, pay, scan or list")
	}
	userID, err := a.userID(ctx)
	if err != nil {
		return err
	}

	switch args[0] {
	case "add":
		fs := flag.NewFlagSet("add", flag.ContinueOnError)
		title := fs.String("title", "", "bill title")
		amount := fs.String("amount", "", "bill amount")
		due := fs.String("due", "", "due date (YYYY-MM-DD)")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		cents, err := core.ParseDecimalToCents(*amount)
		if err != nil {
			return fmt.Errorf("parse amount %q: %w", *amount, err)
		}
		dueDate, err := time.Parse(core.DayLayout, *due)
		if err != nil {
			return fmt.Errorf("parse due date %q: %w", *due, err)
		}
		b, err := a.Bills.Create(ctx, userID, bill.CreateInput{
			Title:   *title,
			Amount:  core.Money{Cents: cents},
			DueDate: dueDate,
		})
		if err != nil {
			return err
		}
		fmt.Printf("bill %q created (%s), due %s\n", b.Title, b.ID, b.DueDate.Format(core.DayLayout))
		return nil

	case "pay":
		fs := flag.NewFlagSet("pay", flag.ContinueOnError)
		id := fs.String("id", "", "bill id")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		b, err := a.Bills.MarkPaid(ctx, userID, *id)
		if err != nil {
			return err
		}
		fmt.Printf("bill %q paid on %s\n", b.Title, b.PaidDate.Format(core.DayLayout))
		return nil

	case "scan":
		flipped, err := a.Bills.ScanOverdue(ctx, userID)
		if err != nil {
			return err
		}
		for _, b := range flipped {
			fmt.Printf("overdue: %s  %s  due %s\n", b.Title, b.Amount, b.DueDate.Format(core.DayLayout))
		}
		fmt.Printf("%d bills marked overdue\n", len(flipped))
		return nil

	case "list":
		bills, err := a.Bills.List(ctx, userID)
		if err != nil {
			return err
		}
		for _, b := range bills {
			line := fmt.Sprintf("%s  %-24s %10s  due %s  %s",
				b.ID, b.Title, b.Amount, b.DueDate.Format(core.DayLayout), b.Status)
			if b.PaidDate != nil {
				line += " on " + b.PaidDate.Format(core.DayLayout)
			}
			fmt.Println(line)
		}
		return nil

	default:
		return fmt.Errorf("unknown subcommand %q", args[0])
	}
}

// monthWindow expands "YYYY-MM" into the first and last day of that month.
func monthWindow(monthYear string) (time.Time, time.Time, error) {
	year, month, err := core.ParseMonthYear(monthYear)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("parse month %q: %w", monthYear, err)
	}
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, -1)
	return start, end, nil
}
