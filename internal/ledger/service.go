// Package ledger turns recorded movements into filtered lists, totals and
// groupings. One Service instance handles one movement kind; incomes and
// expenses share the whole algorithm surface.
//
// Every read re-fetches the user's full set through a single field-equality
// query and filters in memory, so no backend needs compound indexes. A short
// TTL cache in front of the fetch keeps repeated reads cheap; every mutation
// invalidates the user's entry.
package ledger

import (
	"context"
	"fmt"
	"strings"
	"time"

	"finledger/internal/activity"
	"finledger/internal/cache"
	"finledger/internal/core"
	"finledger/internal/log"
	"finledger/internal/store"
)

const (
	cacheSize = 256
	cacheTTL  = 30 * time.Second
)

type Service struct {
	kind     core.Kind
	store    store.Store
	recorder activity.Recorder
	logger   *log.Logger
	cache    *cache.Cache[[]core.Movement]
	now      func() time.Time
}

func NewService(kind core.Kind, st store.Store, recorder activity.Recorder, logger *log.Logger) *Service {
	return &Service{
		kind:     kind,
		store:    st,
		recorder: recorder,
		logger:   logger.WithComponent(log.ComponentLedger).With("kind", string(kind)),
		cache:    cache.New[[]core.Movement](cacheSize, cacheTTL),
		now:      time.Now,
	}
}

// CreateInput carries the user-supplied fields of a new movement.
type CreateInput struct {
	Value       core.Money
	Description string
	Date        time.Time
	Category    string
}

// UpdateInput is a partial update: nil fields are left unchanged.
type UpdateInput struct {
	Value       *core.Money
	Description *string
	Date        *time.Time
	Category    *string
}

// List returns the user's movements matching filters, newest date first.
// Ties keep the arrival order of the underlying fetch.
func (s *Service) List(ctx context.Context, userID string, filters *Filters) ([]core.Movement, error) {
	all, err := s.fetchAll(ctx, userID)
	if err != nil {
		return nil, err
	}
	matched := filters.Apply(all)
	core.SortMovementsByDateDesc(matched)
	return matched, nil
}

// Total sums values over the (optionally date-bounded) set.
func (s *Service) Total(ctx context.Context, userID string, start, end *time.Time) (core.Money, error) {
	movements, err := s.List(ctx, userID, Window(start, end))
	if err != nil {
		return core.Money{}, err
	}
	return core.TotalMovements(movements), nil
}

// Summary aggregates total, count, average and per-category amounts.
func (s *Service) Summary(ctx context.Context, userID string, start, end *time.Time) (core.Summary, error) {
	movements, err := s.List(ctx, userID, Window(start, end))
	if err != nil {
		return core.Summary{}, err
	}
	return core.SummarizeMovements(movements), nil
}

// GroupByDate buckets movements per calendar day, newest day first.
func (s *Service) GroupByDate(ctx context.Context, userID string, start, end *time.Time) ([]core.DayGroup, error) {
	movements, err := s.List(ctx, userID, Window(start, end))
	if err != nil {
		return nil, err
	}
	return core.GroupMovementsByDay(movements), nil
}

// GroupByCategory buckets movements per category, largest total first.
func (s *Service) GroupByCategory(ctx context.Context, userID string, start, end *time.Time) ([]core.CategoryGroup, error) {
	movements, err := s.List(ctx, userID, Window(start, end))
	if err != nil {
		return nil, err
	}
	return core.GroupMovementsByCategory(movements), nil
}

// Recent returns the latest movements by recording time, not by the
// user-chosen date.
func (s *Service) Recent(ctx context.Context, userID string, limit int) ([]core.Movement, error) {
	all, err := s.fetchAll(ctx, userID)
	if err != nil {
		return nil, err
	}
	recent := make([]core.Movement, len(all))
	copy(recent, all)
	core.SortMovementsByCreatedAtDesc(recent)
	if limit >= 0 && limit < len(recent) {
		recent = recent[:limit]
	}
	return recent, nil
}

// Create validates and persists a new movement, then records an activity
// entry best-effort.
func (s *Service) Create(ctx context.Context, userID string, in CreateInput) (core.Movement, error) {
	m := core.Movement{
		UserID:      userID,
		Value:       in.Value,
		Description: strings.TrimSpace(in.Description),
		Date:        in.Date,
		Category:    strings.TrimSpace(in.Category),
	}
	if s.kind == core.KindIncome && m.Category == "" {
		m.Category = core.DefaultIncomeCategory
	}
	if err := core.ValidateMovement(m, s.kind, s.now()); err != nil {
		return core.Movement{}, err
	}

	now := s.now()
	m.CreatedAt = now
	m.UpdatedAt = now

	doc, err := store.Encode(m)
	if err != nil {
		return core.Movement{}, err
	}
	id, err := s.store.Insert(ctx, s.kind.Collection(), doc)
	if err != nil {
		return core.Movement{}, fmt.Errorf("insert %s: %w", s.kind, err)
	}
	m.ID = id
	s.cache.Invalidate(userID)

	s.logger.InfoContext(ctx, "movement recorded",
		log.FieldOperation, log.OpCreate,
		log.FieldUserID, userID,
		log.FieldDocumentID, id,
		log.FieldAmountCents, m.Value.Cents,
		log.FieldCategory, m.Category)

	s.recorder.Record(ctx, core.Activity{
		UserID:      userID,
		Type:        s.activityType(log.OpCreate),
		Title:       s.activityTitle(log.OpCreate),
		Description: m.Description,
		Metadata: map[string]string{
			"amount":   m.Value.String(),
			"category": m.Category,
		},
	})
	return m, nil
}

// Update applies a partial update. The merged record is validated before
// anything is written; only the supplied fields change in the store.
func (s *Service) Update(ctx context.Context, userID, id string, in UpdateInput) (core.Movement, error) {
	existing, err := s.get(ctx, userID, id)
	if err != nil {
		return core.Movement{}, err
	}

	merged := existing
	fields := store.Document{}
	if in.Value != nil {
		merged.Value = *in.Value
		fields["value"] = in.Value.Cents
	}
	if in.Description != nil {
		merged.Description = strings.TrimSpace(*in.Description)
		fields["description"] = merged.Description
	}
	if in.Date != nil {
		merged.Date = *in.Date
		fields["date"] = in.Date.Format(time.RFC3339Nano)
	}
	if in.Category != nil {
		merged.Category = strings.TrimSpace(*in.Category)
		fields["category"] = merged.Category
	}
	if len(fields) == 0 {
		return existing, nil
	}
	if err := core.ValidateMovement(merged, s.kind, s.now()); err != nil {
		return core.Movement{}, err
	}

	merged.UpdatedAt = s.now()
	fields["updatedAt"] = merged.UpdatedAt.Format(time.RFC3339Nano)

	if err := s.store.UpdateByID(ctx, s.kind.Collection(), id, fields); err != nil {
		return core.Movement{}, fmt.Errorf("update %s: %w", s.kind, err)
	}
	s.cache.Invalidate(userID)

	s.logger.InfoContext(ctx, "movement updated",
		log.FieldOperation, log.OpUpdate,
		log.FieldUserID, userID,
		log.FieldDocumentID, id)
	return merged, nil
}

// Delete removes a movement and records the deletion best-effort.
func (s *Service) Delete(ctx context.Context, userID, id string) error {
	existing, err := s.get(ctx, userID, id)
	if err != nil {
		return err
	}
	if err := s.store.DeleteByID(ctx, s.kind.Collection(), id); err != nil {
		return fmt.Errorf("delete %s: %w", s.kind, err)
	}
	s.cache.Invalidate(userID)

	s.logger.InfoContext(ctx, "movement deleted",
		log.FieldOperation, log.OpDelete,
		log.FieldUserID, userID,
		log.FieldDocumentID, id)

	s.recorder.Record(ctx, core.Activity{
		UserID:      userID,
		Type:        s.activityType(log.OpDelete),
		Title:       s.activityTitle(log.OpDelete),
		Description: existing.Description,
		Metadata: map[string]string{
			"amount":   existing.Value.String(),
			"category": existing.Category,
		},
	})
	return nil
}

// get loads one movement and checks it belongs to userID. Records owned by
// someone else surface as not found.
func (s *Service) get(ctx context.Context, userID, id string) (core.Movement, error) {
	doc, err := s.store.GetByID(ctx, s.kind.Collection(), id)
	if err != nil {
		return core.Movement{}, err
	}
	var m core.Movement
	if err := store.Decode(doc, &m); err != nil {
		return core.Movement{}, err
	}
	if m.UserID != userID {
		return core.Movement{}, store.ErrNotFound
	}
	return m, nil
}

func (s *Service) fetchAll(ctx context.Context, userID string) ([]core.Movement, error) {
	if cached, ok := s.cache.Get(userID); ok {
		return cached, nil
	}
	docs, err := s.store.QueryByEquality(ctx, s.kind.Collection(), "userId", userID)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", s.kind.Collection(), err)
	}
	movements, err := store.DecodeAll[core.Movement](docs)
	if err != nil {
		return nil, err
	}
	s.cache.Set(userID, movements)
	return movements, nil
}

func (s *Service) activityType(op string) core.ActivityType {
	switch {
	case s.kind == core.KindIncome && op == log.OpCreate:
		return core.ActivityIncomeCreated
	case s.kind == core.KindIncome && op == log.OpDelete:
		return core.ActivityIncomeDeleted
	case op == log.OpCreate:
		return core.ActivityExpenseCreated
	default:
		return core.ActivityExpenseDeleted
	}
}

func (s *Service) activityTitle(op string) string {
	noun := "Expense"
	if s.kind == core.KindIncome {
		noun = "Income"
	}
	if op == log.OpCreate {
		return noun + " recorded"
	}
	return noun + " deleted"
}
