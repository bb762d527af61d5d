// Package bill tracks payable obligations. A bill starts pending, turns
// overdue once its due date has passed (driven by ScanOverdue, not by reads),
// and ends paid. Paid is terminal.
package bill

import (
	"context"
	"errors"
	"fmt"
	"time"

	"finledger/internal/activity"
	"finledger/internal/core"
	"finledger/internal/log"
	"finledger/internal/notify"
	"finledger/internal/store"
)

// ErrAlreadyPaid is returned when marking a paid bill paid again.
var ErrAlreadyPaid = errors.New("bill is already paid")

type Service struct {
	store     store.Store
	recorder  activity.Recorder
	scheduler notify.Scheduler
	logger    *log.Logger
	now       func() time.Time
}

// NewService builds a bill service. scheduler may be nil, in which case no
// reminders are scheduled or cancelled.
func NewService(st store.Store, recorder activity.Recorder, scheduler notify.Scheduler, logger *log.Logger) *Service {
	return &Service{
		store:     st,
		recorder:  recorder,
		scheduler: scheduler,
		logger:    logger.WithComponent(log.ComponentBill),
		now:       time.Now,
	}
}

// CreateInput carries the user-supplied fields of a new bill. NotifyAt, when
// set, schedules a reminder through the external scheduler.
type CreateInput struct {
	Title       string
	Description string
	Amount      core.Money
	DueDate     time.Time
	NotifyAt    *time.Time
}

// Create persists a new pending bill and schedules its reminder.
func (s *Service) Create(ctx context.Context, userID string, in CreateInput) (core.Bill, error) {
	if err := core.ValidateBillInput(in.Title, in.Amount, in.DueDate); err != nil {
		return core.Bill{}, err
	}

	now := s.now()
	b := core.Bill{
		UserID:      userID,
		Title:       in.Title,
		Description: in.Description,
		Amount:      in.Amount,
		DueDate:     in.DueDate,
		Status:      core.BillPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if in.NotifyAt != nil && s.scheduler != nil {
		handle, err := s.scheduler.Schedule(ctx, *in.NotifyAt, b.Title)
		if err != nil {
			return core.Bill{}, fmt.Errorf("schedule reminder: %w", err)
		}
		b.NotificationID = handle
	}

	doc, err := store.Encode(b)
	if err != nil {
		return core.Bill{}, err
	}
	id, err := s.store.Insert(ctx, store.Bills, doc)
	if err != nil {
		return core.Bill{}, fmt.Errorf("insert bill: %w", err)
	}
	b.ID = id

	s.logger.InfoContext(ctx, "bill created",
		log.FieldUserID, userID,
		log.FieldBillID, id,
		log.FieldAmountCents, b.Amount.Cents)

	s.recorder.Record(ctx, core.Activity{
		UserID: userID,
		Type:   core.ActivityBillCreated,
		Title:  "Bill created",
		Metadata: map[string]string{
			"bill":   b.Title,
			"amount": b.Amount.String(),
			"due":    b.DueDate.Format(core.DayLayout),
		},
	})
	return b, nil
}

// Get loads one bill owned by userID.
func (s *Service) Get(ctx context.Context, userID, billID string) (core.Bill, error) {
	return s.get(ctx, userID, billID)
}

// List returns all of the user's bills.
func (s *Service) List(ctx context.Context, userID string) ([]core.Bill, error) {
	docs, err := s.store.QueryByEquality(ctx, store.Bills, "userId", userID)
	if err != nil {
		return nil, fmt.Errorf("fetch bills: %w", err)
	}
	return store.DecodeAll[core.Bill](docs)
}

// MarkPaid cancels the bill's reminder and stamps it paid. The cancel runs
// first so a failure there leaves the bill pending rather than paid with a
// live reminder. Works from both pending and overdue.
func (s *Service) MarkPaid(ctx context.Context, userID, billID string) (core.Bill, error) {
	b, err := s.get(ctx, userID, billID)
	if err != nil {
		return core.Bill{}, err
	}
	if b.Status == core.BillPaid {
		return core.Bill{}, ErrAlreadyPaid
	}

	if err := s.cancelReminder(ctx, &b); err != nil {
		return core.Bill{}, err
	}

	now := s.now()
	b.Status = core.BillPaid
	b.PaidDate = &now
	b.UpdatedAt = now

	fields := store.Document{
		"status":         string(core.BillPaid),
		"paidDate":       now.Format(time.RFC3339Nano),
		"notificationId": b.NotificationID,
		"updatedAt":      now.Format(time.RFC3339Nano),
	}
	if err := s.store.UpdateByID(ctx, store.Bills, billID, fields); err != nil {
		return core.Bill{}, fmt.Errorf("update bill: %w", err)
	}

	s.logger.InfoContext(ctx, "bill paid",
		log.FieldOperation, log.OpMarkPaid,
		log.FieldUserID, userID,
		log.FieldBillID, billID)

	s.recorder.Record(ctx, core.Activity{
		UserID: userID,
		Type:   core.ActivityBillPaid,
		Title:  "Bill paid",
		Metadata: map[string]string{
			"bill":   b.Title,
			"amount": b.Amount.String(),
		},
	})
	return b, nil
}

// ScanOverdue flips every pending bill whose due date lies before the start
// of today to overdue. The scan walks the user's full bill set, so bills that
// were already overdue or paid pass through untouched and a repeated scan is
// a no-op. Returns the bills transitioned by this call.
func (s *Service) ScanOverdue(ctx context.Context, userID string) ([]core.Bill, error) {
	bills, err := s.List(ctx, userID)
	if err != nil {
		return nil, err
	}

	today := core.StartOfDay(s.now())
	var flipped []core.Bill
	for _, b := range bills {
		if b.Status != core.BillPending || !b.DueDate.Before(today) {
			continue
		}
		b.Status = core.BillOverdue
		b.UpdatedAt = s.now()
		fields := store.Document{
			"status":    string(core.BillOverdue),
			"updatedAt": b.UpdatedAt.Format(time.RFC3339Nano),
		}
		if err := s.store.UpdateByID(ctx, store.Bills, b.ID, fields); err != nil {
			return flipped, fmt.Errorf("update bill %s: %w", b.ID, err)
		}
		flipped = append(flipped, b)

		s.recorder.Record(ctx, core.Activity{
			UserID: userID,
			Type:   core.ActivityBillOverdue,
			Title:  "Bill overdue",
			Metadata: map[string]string{
				"bill":   b.Title,
				"amount": b.Amount.String(),
				"due":    b.DueDate.Format(core.DayLayout),
			},
		})
	}

	s.logger.InfoContext(ctx, "overdue scan finished",
		log.FieldOperation, log.OpScan,
		log.FieldUserID, userID,
		log.FieldCount, len(flipped))
	return flipped, nil
}

// Delete cancels the bill's reminder and removes the record.
func (s *Service) Delete(ctx context.Context, userID, billID string) error {
	b, err := s.get(ctx, userID, billID)
	if err != nil {
		return err
	}
	if err := s.cancelReminder(ctx, &b); err != nil {
		return err
	}
	if err := s.store.DeleteByID(ctx, store.Bills, billID); err != nil {
		return fmt.Errorf("delete bill: %w", err)
	}

	s.logger.InfoContext(ctx, "bill deleted",
		log.FieldUserID, userID,
		log.FieldBillID, billID)
	return nil
}

func (s *Service) cancelReminder(ctx context.Context, b *core.Bill) error {
	if b.NotificationID == "" || s.scheduler == nil {
		return nil
	}
	if err := s.scheduler.Cancel(ctx, b.NotificationID); err != nil {
		return fmt.Errorf("cancel reminder: %w", err)
	}
	b.NotificationID = ""
	return nil
}

func (s *Service) get(ctx context.Context, userID, billID string) (core.Bill, error) {
	doc, err := s.store.GetByID(ctx, store.Bills, billID)
	if err != nil {
		return core.Bill{}, err
	}
	var b core.Bill
	if err := store.Decode(doc, &b); err != nil {
		return core.Bill{}, err
	}
	if b.UserID != userID {
		return core.Bill{}, store.ErrNotFound
	}
	return b, nil
}
