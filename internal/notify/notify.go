// Package notify abstracts the local notification scheduler driven by the
// bill tracker.
package notify

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Scheduler schedules and cancels wall-clock reminders. Handles are opaque;
// the engine only stores and returns them.
type Scheduler interface {
	Schedule(ctx context.Context, at time.Time, payload string) (handle string, err error)
	Cancel(ctx context.Context, handle string) error
}

// Memory is an in-process scheduler used by tests and local runs. It only
// tracks what is scheduled; nothing fires.
type Memory struct {
	mu      sync.Mutex
	pending map[string]Reminder
}

type Reminder struct {
	At      time.Time
	Payload string
}

func NewMemory() *Memory {
	return &Memory{pending: make(map[string]Reminder)}
}

var _ Scheduler = (*Memory)(nil)

func (m *Memory) Schedule(_ context.Context, at time.Time, payload string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	handle := uuid.NewString()
	m.pending[handle] = Reminder{At: at, Payload: payload}
	return handle, nil
}

// Cancel removes a reminder. Cancelling an unknown handle is a no-op, so
// callers can cancel unconditionally before deletes.
func (m *Memory) Cancel(_ context.Context, handle string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.pending, handle)
	return nil
}

// Pending returns the reminder for handle, if still scheduled.
func (m *Memory) Pending(handle string) (Reminder, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.pending[handle]
	return r, ok
}

// PendingCount reports how many reminders are scheduled.
func (m *Memory) PendingCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.pending)
}
