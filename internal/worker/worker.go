// Package worker runs the background side of the engine: draining queued
// activity messages into the document store and periodically flipping past-due
// bills to overdue.
package worker

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"finledger/internal/amqp"
	"finledger/internal/bill"
	"finledger/internal/log"
	"finledger/internal/store"
)

type Worker struct {
	client       *amqp.Client
	store        store.Store
	bills        *bill.Service
	userID       string
	scanInterval time.Duration
	logger       *log.Logger
}

func New(client *amqp.Client, st store.Store, bills *bill.Service, userID string, scanInterval time.Duration, logger *log.Logger) *Worker {
	return &Worker{
		client:       client,
		store:        st,
		bills:        bills,
		userID:       userID,
		scanInterval: scanInterval,
		logger:       logger.WithComponent(log.ComponentWorker),
	}
}

// Run blocks until ctx is cancelled or either loop fails.
func (w *Worker) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return w.consumeActivities(ctx) })
	g.Go(func() error { return w.scanOverdueLoop(ctx) })
	return g.Wait()
}

// consumeActivities persists queued activity messages. A persist failure
// returns an error so the delivery is requeued.
func (w *Worker) consumeActivities(ctx context.Context) error {
	return w.client.ConsumeActivities(ctx, func(msg *amqp.ActivityMessage) error {
		a := msg.Activity
		if a.CreatedAt.IsZero() {
			a.CreatedAt = msg.Timestamp
		}
		doc, err := store.Encode(a)
		if err != nil {
			return fmt.Errorf("encode activity: %w", err)
		}
		if _, err := w.store.Insert(ctx, store.Activities, doc); err != nil {
			return fmt.Errorf("insert activity: %w", err)
		}
		w.logger.DebugContext(ctx, "activity persisted",
			log.FieldActivityType, string(a.Type),
			log.FieldUserID, a.UserID)
		return nil
	})
}

// scanOverdueLoop runs one scan immediately, then one per interval. Scan
// failures are logged and retried on the next tick.
func (w *Worker) scanOverdueLoop(ctx context.Context) error {
	if w.bills == nil || w.userID == "" {
		w.logger.InfoContext(ctx, "overdue scan disabled")
		<-ctx.Done()
		return ctx.Err()
	}

	w.scanOnce(ctx)

	ticker := time.NewTicker(w.scanInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			w.scanOnce(ctx)
		}
	}
}

func (w *Worker) scanOnce(ctx context.Context) {
	flipped, err := w.bills.ScanOverdue(ctx, w.userID)
	if err != nil {
		w.logger.ErrorContext(ctx, "overdue scan failed",
			log.FieldUserID, w.userID,
			log.FieldError, err)
		return
	}
	if len(flipped) > 0 {
		w.logger.InfoContext(ctx, "bills marked overdue",
			log.FieldUserID, w.userID,
			log.FieldCount, len(flipped))
	}
}
