// Package goal models savings goals as a small state machine. Permitted
// transitions: active→completed (target reached), active→cancelled,
// completed→active (contribution retracted), cancelled→active (explicit
// reactivation). Completion is evaluated at contribution time only and is
// never re-validated when the target is edited afterwards.
package goal

import (
	"context"
	"errors"
	"fmt"
	"time"

	"finledger/internal/activity"
	"finledger/internal/core"
	"finledger/internal/log"
	"finledger/internal/store"
)

// ErrInvalidTransition is returned for a state change the machine does not
// permit, such as cancelling a completed goal.
var ErrInvalidTransition = errors.New("invalid goal state transition")

type Service struct {
	store    store.Store
	recorder activity.Recorder
	logger   *log.Logger
	now      func() time.Time
}

func NewService(st store.Store, recorder activity.Recorder, logger *log.Logger) *Service {
	return &Service{
		store:    st,
		recorder: recorder,
		logger:   logger.WithComponent(log.ComponentGoal),
		now:      time.Now,
	}
}

// CreateInput carries the user-supplied fields of a new goal.
type CreateInput struct {
	Title        string
	Description  string
	TargetAmount core.Money
	Category     core.GoalCategory
	Deadline     *time.Time
}

// UpdateInput is a partial update: nil fields are left unchanged.
type UpdateInput struct {
	Title        *string
	Description  *string
	TargetAmount *core.Money
	Category     *core.GoalCategory
	Deadline     *time.Time
}

// Stats aggregates a user's goals.
type Stats struct {
	TotalGoals         int
	ActiveGoals        int
	CompletedGoals     int
	TotalTargetAmount  core.Money
	TotalCurrentAmount core.Money
	TotalProgress      float64
}

// Create validates and persists a new active goal.
func (s *Service) Create(ctx context.Context, userID string, in CreateInput) (core.Goal, error) {
	if err := core.ValidateGoalInput(in.Title, in.TargetAmount, in.Category, in.Deadline, s.now()); err != nil {
		return core.Goal{}, err
	}

	now := s.now()
	g := core.Goal{
		UserID:        userID,
		Title:         in.Title,
		Description:   in.Description,
		TargetAmount:  in.TargetAmount,
		Category:      in.Category,
		Deadline:      in.Deadline,
		Status:        core.GoalActive,
		Contributions: []core.Contribution{},
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	doc, err := store.Encode(g)
	if err != nil {
		return core.Goal{}, err
	}
	id, err := s.store.Insert(ctx, store.Goals, doc)
	if err != nil {
		return core.Goal{}, fmt.Errorf("insert goal: %w", err)
	}
	g.ID = id

	s.logger.InfoContext(ctx, "goal created",
		log.FieldUserID, userID,
		log.FieldGoalID, id,
		log.FieldAmountCents, g.TargetAmount.Cents)

	s.recorder.Record(ctx, core.Activity{
		UserID: userID,
		Type:   core.ActivityGoalCreated,
		Title:  "Goal created",
		Metadata: map[string]string{
			"goal":   g.Title,
			"target": g.TargetAmount.String(),
		},
	})
	return g, nil
}

// Get loads one goal owned by userID.
func (s *Service) Get(ctx context.Context, userID, goalID string) (core.Goal, error) {
	return s.get(ctx, userID, goalID)
}

// List returns all of the user's goals.
func (s *Service) List(ctx context.Context, userID string) ([]core.Goal, error) {
	docs, err := s.store.QueryByEquality(ctx, store.Goals, "userId", userID)
	if err != nil {
		return nil, fmt.Errorf("fetch goals: %w", err)
	}
	return store.DecodeAll[core.Goal](docs)
}

// Update applies a partial update to the goal's descriptive fields. Status
// is never re-evaluated here: lowering the target under the current amount
// does not complete the goal, and raising it does not revert a completed one.
func (s *Service) Update(ctx context.Context, userID, goalID string, in UpdateInput) (core.Goal, error) {
	g, err := s.get(ctx, userID, goalID)
	if err != nil {
		return core.Goal{}, err
	}

	merged := g
	fields := store.Document{}
	if in.Title != nil {
		merged.Title = *in.Title
		fields["title"] = merged.Title
	}
	if in.Description != nil {
		merged.Description = *in.Description
		fields["description"] = merged.Description
	}
	if in.TargetAmount != nil {
		merged.TargetAmount = *in.TargetAmount
		fields["targetAmount"] = merged.TargetAmount.Cents
	}
	if in.Category != nil {
		merged.Category = *in.Category
		fields["category"] = string(merged.Category)
	}
	if in.Deadline != nil {
		merged.Deadline = in.Deadline
		fields["deadline"] = in.Deadline.Format(time.RFC3339Nano)
	}
	if len(fields) == 0 {
		return g, nil
	}
	if err := core.ValidateGoalInput(merged.Title, merged.TargetAmount, merged.Category, in.Deadline, s.now()); err != nil {
		return core.Goal{}, err
	}

	merged.UpdatedAt = s.now()
	fields["updatedAt"] = merged.UpdatedAt.Format(time.RFC3339Nano)
	if err := s.store.UpdateByID(ctx, store.Goals, goalID, fields); err != nil {
		return core.Goal{}, fmt.Errorf("update goal: %w", err)
	}

	s.logger.InfoContext(ctx, "goal updated",
		log.FieldOperation, log.OpUpdate,
		log.FieldUserID, userID,
		log.FieldGoalID, goalID)
	return merged, nil
}

// AddContribution appends a contribution and re-evaluates completion.
// Crossing the target flips the goal to completed and records a completion
// activity exactly once per transition.
func (s *Service) AddContribution(ctx context.Context, userID, goalID string, amount core.Money, note string) (core.Goal, error) {
	if !amount.IsPositive() {
		return core.Goal{}, &core.ValidationError{
			Violations: []string{"contribution amount must be greater than zero"},
		}
	}

	g, err := s.get(ctx, userID, goalID)
	if err != nil {
		return core.Goal{}, err
	}

	now := s.now()
	g.Contributions = append(g.Contributions, core.Contribution{
		Amount: amount,
		Date:   now,
		Note:   note,
	})
	g.CurrentAmount = g.CurrentAmount.Add(amount)
	g.UpdatedAt = now

	completedNow := false
	if g.CurrentAmount.Cents >= g.TargetAmount.Cents && g.Status != core.GoalCompleted {
		g.Status = core.GoalCompleted
		g.CompletedAt = &now
		completedNow = true
	}

	if err := s.writeProgress(ctx, g); err != nil {
		return core.Goal{}, err
	}

	s.logger.InfoContext(ctx, "contribution added",
		log.FieldOperation, log.OpContribute,
		log.FieldUserID, userID,
		log.FieldGoalID, goalID,
		log.FieldAmountCents, amount.Cents,
		"completed", completedNow)

	s.recorder.Record(ctx, core.Activity{
		UserID: userID,
		Type:   core.ActivityGoalContribution,
		Title:  "Contribution added",
		Metadata: map[string]string{
			"goal":   g.Title,
			"amount": amount.String(),
		},
	})
	if completedNow {
		s.recorder.Record(ctx, core.Activity{
			UserID: userID,
			Type:   core.ActivityGoalCompleted,
			Title:  "Goal completed",
			Metadata: map[string]string{
				"goal":   g.Title,
				"target": g.TargetAmount.String(),
			},
		})
	}
	return g, nil
}

// RemoveContribution retracts the contribution at index and recomputes the
// goal's amount and status. The recomputation only knows completed and
// active, so a cancelled goal comes back active here.
func (s *Service) RemoveContribution(ctx context.Context, userID, goalID string, index int) (core.Goal, error) {
	g, err := s.get(ctx, userID, goalID)
	if err != nil {
		return core.Goal{}, err
	}
	if index < 0 || index >= len(g.Contributions) {
		return core.Goal{}, &core.ValidationError{
			Violations: []string{fmt.Sprintf("contribution index %d is out of bounds", index)},
		}
	}

	removed := g.Contributions[index]
	g.Contributions = append(g.Contributions[:index:index], g.Contributions[index+1:]...)
	g.CurrentAmount = g.CurrentAmount.Sub(removed.Amount)
	if g.CurrentAmount.Cents < 0 {
		g.CurrentAmount = core.Money{}
	}
	if g.CurrentAmount.Cents >= g.TargetAmount.Cents {
		g.Status = core.GoalCompleted
	} else {
		g.Status = core.GoalActive
		g.CompletedAt = nil
	}
	g.UpdatedAt = s.now()

	if err := s.writeProgress(ctx, g); err != nil {
		return core.Goal{}, err
	}

	s.logger.InfoContext(ctx, "contribution removed",
		log.FieldUserID, userID,
		log.FieldGoalID, goalID,
		log.FieldAmountCents, removed.Amount.Cents)
	return g, nil
}

// Cancel moves an active goal to cancelled.
func (s *Service) Cancel(ctx context.Context, userID, goalID string) (core.Goal, error) {
	return s.transition(ctx, userID, goalID, core.GoalActive, core.GoalCancelled)
}

// Reactivate moves a cancelled goal back to active.
func (s *Service) Reactivate(ctx context.Context, userID, goalID string) (core.Goal, error) {
	return s.transition(ctx, userID, goalID, core.GoalCancelled, core.GoalActive)
}

func (s *Service) transition(ctx context.Context, userID, goalID string, from, to core.GoalStatus) (core.Goal, error) {
	g, err := s.get(ctx, userID, goalID)
	if err != nil {
		return core.Goal{}, err
	}
	if g.Status != from {
		return core.Goal{}, fmt.Errorf("%w: %s goal cannot become %s", ErrInvalidTransition, g.Status, to)
	}
	g.Status = to
	g.UpdatedAt = s.now()

	fields := store.Document{
		"status":    string(g.Status),
		"updatedAt": g.UpdatedAt.Format(time.RFC3339Nano),
	}
	if err := s.store.UpdateByID(ctx, store.Goals, goalID, fields); err != nil {
		return core.Goal{}, fmt.Errorf("update goal: %w", err)
	}

	s.logger.InfoContext(ctx, "goal transitioned",
		log.FieldUserID, userID,
		log.FieldGoalID, goalID,
		"from", string(from),
		"to", string(to))
	return g, nil
}

// Delete removes the goal and records its final amounts. Terminal.
func (s *Service) Delete(ctx context.Context, userID, goalID string) error {
	g, err := s.get(ctx, userID, goalID)
	if err != nil {
		return err
	}
	if err := s.store.DeleteByID(ctx, store.Goals, goalID); err != nil {
		return fmt.Errorf("delete goal: %w", err)
	}

	s.logger.InfoContext(ctx, "goal deleted",
		log.FieldUserID, userID,
		log.FieldGoalID, goalID)

	s.recorder.Record(ctx, core.Activity{
		UserID: userID,
		Type:   core.ActivityGoalDeleted,
		Title:  "Goal removed",
		Metadata: map[string]string{
			"goal":   g.Title,
			"saved":  g.CurrentAmount.String(),
			"target": g.TargetAmount.String(),
			"status": string(g.Status),
		},
	})
	return nil
}

// Stats aggregates counts and progress across the user's goals.
func (s *Service) Stats(ctx context.Context, userID string) (Stats, error) {
	goals, err := s.List(ctx, userID)
	if err != nil {
		return Stats{}, err
	}

	var st Stats
	for _, g := range goals {
		st.TotalGoals++
		switch g.Status {
		case core.GoalActive:
			st.ActiveGoals++
		case core.GoalCompleted:
			st.CompletedGoals++
		}
		st.TotalTargetAmount = st.TotalTargetAmount.Add(g.TargetAmount)
		st.TotalCurrentAmount = st.TotalCurrentAmount.Add(g.CurrentAmount)
	}
	if st.TotalTargetAmount.IsPositive() {
		st.TotalProgress = st.TotalCurrentAmount.Float() / st.TotalTargetAmount.Float() * 100
	}
	return st, nil
}

func (s *Service) get(ctx context.Context, userID, goalID string) (core.Goal, error) {
	doc, err := s.store.GetByID(ctx, store.Goals, goalID)
	if err != nil {
		return core.Goal{}, err
	}
	var g core.Goal
	if err := store.Decode(doc, &g); err != nil {
		return core.Goal{}, err
	}
	if g.UserID != userID {
		return core.Goal{}, store.ErrNotFound
	}
	return g, nil
}

// writeProgress persists the contribution-derived fields in one merge.
// The load-compute-write cycle has no compare-and-swap; two concurrent
// contributions race last-writer-wins.
func (s *Service) writeProgress(ctx context.Context, g core.Goal) error {
	encoded, err := store.Encode(g)
	if err != nil {
		return err
	}
	fields := store.Document{
		"contributions": encoded["contributions"],
		"currentAmount": g.CurrentAmount.Cents,
		"status":        string(g.Status),
		"updatedAt":     g.UpdatedAt.Format(time.RFC3339Nano),
		"completedAt":   encoded["completedAt"],
	}
	if err := s.store.UpdateByID(ctx, store.Goals, g.ID, fields); err != nil {
		return fmt.Errorf("update goal: %w", err)
	}
	return nil
}
