package core

import (
	"errors"
	"strings"
	"time"
)

const (
	// Description length bounds for movements, after trimming.
	MinDescriptionLen = 3
	MaxDescriptionLen = 100

	// MinTitleLen applies to goal and bill titles.
	MinTitleLen = 3

	// ExpenseMaxAge is how far back an expense date may lie.
	ExpenseMaxAge = 365 * 24 * time.Hour
)

var ErrInvalidAmount = errors.New("amount must be greater than zero")

// ValidationError carries every violation found in one pass. Nothing is
// written to the store when one of these is returned.
type ValidationError struct {
	Violations []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Violations, "; ")
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func (e *ValidationError) add(msg string) {
	e.Violations = append(e.Violations, msg)
}

func (e *ValidationError) orNil() error {
	if len(e.Violations) == 0 {
		return nil
	}
	return e
}

// ValidateMovement checks a movement against the creation rules for its kind.
// All violations are collected before returning.
func ValidateMovement(m Movement, kind Kind, now time.Time) error {
	ve := &ValidationError{}
	if !m.Value.IsPositive() {
		ve.add("value must be greater than zero")
	}
	desc := strings.TrimSpace(m.Description)
	if len(desc) < MinDescriptionLen || len(desc) > MaxDescriptionLen {
		ve.add("description must be between 3 and 100 characters")
	}
	if m.Date.IsZero() {
		ve.add("date is required")
	} else {
		if m.Date.After(now) {
			ve.add("date cannot be in the future")
		}
		if kind == KindExpense && m.Date.Before(now.Add(-ExpenseMaxAge)) {
			ve.add("expense date cannot be older than one year")
		}
	}
	if kind == KindExpense && strings.TrimSpace(m.Category) == "" {
		ve.add("category is required for expenses")
	}
	return ve.orNil()
}

// ValidateGoalInput checks the creation parameters of a goal.
func ValidateGoalInput(title string, target Money, category GoalCategory, deadline *time.Time, now time.Time) error {
	ve := &ValidationError{}
	if len(strings.TrimSpace(title)) < MinTitleLen {
		ve.add("title must be at least 3 characters")
	}
	if !target.IsPositive() {
		ve.add("target amount must be greater than zero")
	}
	valid := false
	for _, c := range GoalCategories {
		if category == c {
			valid = true
			break
		}
	}
	if !valid {
		ve.add("unknown goal category")
	}
	if deadline != nil && !deadline.After(now) {
		ve.add("deadline must be in the future")
	}
	return ve.orNil()
}

// ValidateBillInput checks the creation parameters of a bill.
func ValidateBillInput(title string, amount Money, dueDate time.Time) error {
	ve := &ValidationError{}
	if len(strings.TrimSpace(title)) < MinTitleLen {
		ve.add("title must be at least 3 characters")
	}
	if !amount.IsPositive() {
		ve.add("amount must be greater than zero")
	}
	if dueDate.IsZero() {
		ve.add("due date is required")
	}
	return ve.orNil()
}

// ValidateMonthYear checks a "YYYY-MM" budget key.
func ValidateMonthYear(monthYear string) error {
	if _, _, err := ParseMonthYear(monthYear); err != nil {
		return &ValidationError{Violations: []string{"month must be in YYYY-MM format"}}
	}
	return nil
}
