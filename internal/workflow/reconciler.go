package workflow

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/iliyamo/event-registration/internal/model"
)

// Reconcile recomputes the event's approved count from the registration
// rows, persists it onto the event record, and resynchronizes the ledger's
// counter to it. The registration rows are the authority of record; the
// ledger is only an admission-control cache that may transiently disagree
// after a crash between a ledger update and a record commit. Reconcile is
// idempotent and safe to run concurrently with itself: the computation is
// deterministic from the record store, so concurrent runs write the same
// value.
func (e *Engine) Reconcile(ctx context.Context, eventID uint64) (int, error) {
	count, err := e.recountApproved(ctx, eventID)
	if err != nil {
		return 0, err
	}
	if err := e.ledger.Sync(ctx, eventID, count); err != nil {
		return 0, err
	}
	return count, nil
}

// recountApproved recomputes the approved count from the rows and persists
// it onto the event record. It deliberately does not touch the ledger: a
// sync here would race with in-flight reservations and could erase a slot
// another approval just took. Only Reconcile resyncs the ledger.
func (e *Engine) recountApproved(ctx context.Context, eventID uint64) (int, error) {
	count, err := e.records.CountByStatus(ctx, eventID, model.StatusApproved)
	if err != nil {
		return 0, err
	}
	if err := e.events.SetApprovedCount(ctx, eventID, count); err != nil {
		return 0, err
	}
	return count, nil
}

// ReconcileAll sweeps every event, repairing any drift. Per-event failures
// are collected rather than aborting the sweep so one broken row cannot
// block repair of the rest.
func (e *Engine) ReconcileAll(ctx context.Context) error {
	ids, err := e.events.ListIDs(ctx)
	if err != nil {
		return err
	}
	var errs []error
	for _, id := range ids {
		if _, err := e.Reconcile(ctx, id); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// RunReconcileLoop runs ReconcileAll on the given interval until the
// context is cancelled. Intended to be launched as a goroutine from main.
func (e *Engine) RunReconcileLoop(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := e.ReconcileAll(ctx); err != nil {
				log.Printf("workflow: reconcile sweep: %v", err)
			}
		}
	}
}
