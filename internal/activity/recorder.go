// Package activity records the append-only timeline of domain events.
//
// Recording is fire-and-forget: a recorder never returns an error and a
// failed write never changes the outcome of the mutation that triggered it.
package activity

import (
	"context"
	"time"

	"finledger/internal/amqp"
	"finledger/internal/core"
	"finledger/internal/log"
	"finledger/internal/store"
)

// Recorder accepts timeline entries. Implementations swallow their own
// failures; callers fire and forget.
type Recorder interface {
	Record(ctx context.Context, a core.Activity)
}

// StoreRecorder writes activities straight into the document store.
type StoreRecorder struct {
	store  store.Store
	logger *log.Logger
}

func NewStoreRecorder(st store.Store, logger *log.Logger) *StoreRecorder {
	return &StoreRecorder{store: st, logger: logger.WithComponent(log.ComponentActivity)}
}

func (r *StoreRecorder) Record(ctx context.Context, a core.Activity) {
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now()
	}
	doc, err := store.Encode(a)
	if err != nil {
		r.logger.ErrorContext(ctx, "failed to encode activity",
			log.FieldActivityType, string(a.Type),
			log.FieldError, err)
		return
	}
	if _, err := r.store.Insert(ctx, store.Activities, doc); err != nil {
		r.logger.ErrorContext(ctx, "failed to record activity",
			log.FieldActivityType, string(a.Type),
			log.FieldUserID, a.UserID,
			log.FieldError, err)
	}
}

// QueueRecorder hands activities to the AMQP exchange; the worker persists
// them later. Publish failures are logged and dropped.
type QueueRecorder struct {
	client *amqp.Client
	logger *log.Logger
}

func NewQueueRecorder(client *amqp.Client, logger *log.Logger) *QueueRecorder {
	return &QueueRecorder{client: client, logger: logger.WithComponent(log.ComponentActivity)}
}

func (r *QueueRecorder) Record(ctx context.Context, a core.Activity) {
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now()
	}
	if err := r.client.PublishActivity(ctx, amqp.NewActivityMessage(a)); err != nil {
		r.logger.ErrorContext(ctx, "failed to queue activity",
			log.FieldActivityType, string(a.Type),
			log.FieldUserID, a.UserID,
			log.FieldError, err)
	}
}

// Nop discards every activity. Used where no timeline is wanted.
type Nop struct{}

func (Nop) Record(context.Context, core.Activity) {}
