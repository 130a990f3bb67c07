package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/hibiken/asynq"
)

const TypeLedgerReconcile = "ledger:reconcile"

// ReconcilePayload names the committed booking whose payment entry is missing.
type ReconcilePayload struct {
	BookingID string `json:"bookingId"`
}

// reconcileDelay gives a transient ledger outage time to clear before the first attempt.
const reconcileDelay = 30 * time.Second

func NewReconcileTask(payload ReconcilePayload) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeLedgerReconcile, b)
	opts := []asynq.Option{
		asynq.TaskID("reconcile:" + payload.BookingID),
		asynq.ProcessIn(reconcileDelay),
		asynq.MaxRetry(10),
		asynq.Retention(24 * time.Hour),
	}
	return task, opts, nil
}

// Enqueuer schedules reconciliation tasks.
type Enqueuer struct {
	client *asynq.Client
}

func NewEnqueuer(client *asynq.Client) *Enqueuer {
	return &Enqueuer{client: client}
}

// EnqueueReconcile schedules one reconciliation per booking; a task already
// queued for the booking counts as success.
func (e *Enqueuer) EnqueueReconcile(ctx context.Context, bookingID string) error {
	task, opts, err := NewReconcileTask(ReconcilePayload{BookingID: bookingID})
	if err != nil {
		return err
	}
	if _, err := e.client.EnqueueContext(ctx, task, opts...); err != nil && !errors.Is(err, asynq.ErrTaskIDConflict) {
		return err
	}
	return nil
}

func (e *Enqueuer) Close() error {
	return e.client.Close()
}
