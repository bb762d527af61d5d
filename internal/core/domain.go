package core

import "time"

// Kind distinguishes the two movement record types. Incomes and expenses
// share the same shape and aggregation algorithms; the kind decides the
// collection, the category rules and the date window on creation.
type Kind string

const (
	KindIncome  Kind = "income"
	KindExpense Kind = "expense"
)

// Collection returns the document-store collection for this movement kind.
func (k Kind) Collection() string {
	if k == KindIncome {
		return "incomes"
	}
	return "expenses"
}

// DefaultIncomeCategory is applied when an income is recorded without one.
const DefaultIncomeCategory = "Other"

// Movement is a dated, valued record of money in or out.
//
// Date is the user-chosen calendar date of the movement; CreatedAt and
// UpdatedAt are assigned by the engine at write time and are distinct from it.
type Movement struct {
	ID          string    `json:"id,omitempty"`
	UserID      string    `json:"userId"`
	Value       Money     `json:"value"`
	Description string    `json:"description"`
	Date        time.Time `json:"date"`
	Category    string    `json:"category"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// DailyExpense is one entry of a budget's sparse per-day spend map.
type DailyExpense struct {
	Day    int   `json:"day"`
	Amount Money `json:"amount"`
}

// Budget is the per-user, per-month spending ceiling plus the sparse
// day -> spent mapping. At most one entry per day; the slice is kept
// sorted by day on every read and merge.
type Budget struct {
	ID            string         `json:"id,omitempty"`
	UserID        string         `json:"userId"`
	MonthYear     string         `json:"monthYear"` // "YYYY-MM", immutable
	MonthlyBudget Money          `json:"monthlyBudget"`
	DailyExpenses []DailyExpense `json:"dailyExpenses"`
	CreatedAt     time.Time      `json:"createdAt"`
	UpdatedAt     time.Time      `json:"updatedAt"`
}

// TotalSpent sums the daily spend map.
func (b Budget) TotalSpent() Money {
	var total Money
	for _, de := range b.DailyExpenses {
		total = total.Add(de.Amount)
	}
	return total
}

type GoalStatus string

const (
	GoalActive    GoalStatus = "active"
	GoalCompleted GoalStatus = "completed"
	GoalCancelled GoalStatus = "cancelled"
)

type GoalCategory string

const (
	GoalSavings    GoalCategory = "savings"
	GoalTravel     GoalCategory = "travel"
	GoalEmergency  GoalCategory = "emergency"
	GoalEducation  GoalCategory = "education"
	GoalRetirement GoalCategory = "retirement"
	GoalOther      GoalCategory = "other"
)

// GoalCategories lists the valid goal categories.
var GoalCategories = []GoalCategory{
	GoalSavings, GoalTravel, GoalEmergency, GoalEducation, GoalRetirement, GoalOther,
}

// Contribution is a single discrete payment toward a goal.
type Contribution struct {
	Amount Money     `json:"amount"`
	Date   time.Time `json:"date"`
	Note   string    `json:"note,omitempty"`
}

// Goal is a savings target accumulating contributions over time.
// CurrentAmount is derived: it equals the sum of Contributions at all times.
type Goal struct {
	ID            string         `json:"id,omitempty"`
	UserID        string         `json:"userId"`
	Title         string         `json:"title"`
	Description   string         `json:"description,omitempty"`
	TargetAmount  Money          `json:"targetAmount"`
	CurrentAmount Money          `json:"currentAmount"`
	Category      GoalCategory   `json:"category"`
	Deadline      *time.Time     `json:"deadline,omitempty"`
	Status        GoalStatus     `json:"status"`
	Contributions []Contribution `json:"contributions"`
	CompletedAt   *time.Time     `json:"completedAt,omitempty"`
	CreatedAt     time.Time      `json:"createdAt"`
	UpdatedAt     time.Time      `json:"updatedAt"`
}

type BillStatus string

const (
	BillPending BillStatus = "pending"
	BillPaid    BillStatus = "paid"
	BillOverdue BillStatus = "overdue"
)

// Bill is a payable obligation with a due date.
// PaidDate is set exactly when Status is BillPaid.
type Bill struct {
	ID             string     `json:"id,omitempty"`
	UserID         string     `json:"userId"`
	Title          string     `json:"title"`
	Description    string     `json:"description,omitempty"`
	Amount         Money      `json:"amount"`
	DueDate        time.Time  `json:"dueDate"`
	Status         BillStatus `json:"status"`
	PaidDate       *time.Time `json:"paidDate,omitempty"`
	NotificationID string     `json:"notificationId,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

// ActivityType enumerates the domain events recorded on the timeline.
type ActivityType string

const (
	ActivityIncomeCreated    ActivityType = "income_created"
	ActivityIncomeDeleted    ActivityType = "income_deleted"
	ActivityExpenseCreated   ActivityType = "expense_created"
	ActivityExpenseDeleted   ActivityType = "expense_deleted"
	ActivityGoalCreated      ActivityType = "goal_created"
	ActivityGoalContribution ActivityType = "goal_contribution"
	ActivityGoalCompleted    ActivityType = "goal_completed"
	ActivityGoalDeleted      ActivityType = "goal_deleted"
	ActivityBillCreated      ActivityType = "bill_created"
	ActivityBillPaid         ActivityType = "bill_paid"
	ActivityBillOverdue      ActivityType = "bill_overdue"
)

// Activity is an append-only, human-readable timeline entry. The engine only
// writes these; it never reads them back.
type Activity struct {
	ID          string            `json:"id,omitempty"`
	UserID      string            `json:"userId"`
	Type        ActivityType      `json:"type"`
	Title       string            `json:"title"`
	Description string            `json:"description,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
	CreatedAt   time.Time         `json:"createdAt"`
}
