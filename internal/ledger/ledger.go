// Package ledger maintains the per-event approved-slot counters used for
// admission control. The counter is a fast-path cache: the authoritative
// count is always recomputable from the registration rows, and the
// reconciler resynchronizes the ledger to it via Sync. What the ledger
// guarantees is that the capacity check and the increment happen as one
// atomic step per event, so two approvals racing for the last slot
// serialize here and exactly one wins.
package ledger

import (
	"context"
	"errors"
)

// ErrCapacityExceeded is returned by TryReserveSlot when the event already
// holds capacity approved slots. The loser of a last-slot race receives it
// deterministically.
var ErrCapacityExceeded = errors.New("event capacity exceeded")

// Ledger is the admission-control counter contract. Implementations must
// make TryReserveSlot's check-then-increment indivisible with respect to
// concurrent callers on the same event; all other methods may be plain
// reads/writes.
type Ledger interface {
	// TryReserveSlot atomically increments the event's counter if it is
	// below capacity, returning the new count. It returns
	// ErrCapacityExceeded without modifying the counter when the event is
	// full.
	TryReserveSlot(ctx context.Context, eventID uint64, capacity int) (int, error)

	// ReleaseSlot decrements the event's counter, flooring at zero, and
	// returns the new count.
	ReleaseSlot(ctx context.Context, eventID uint64) (int, error)

	// CurrentCount returns the counter's present value. A missing counter
	// reads as zero.
	CurrentCount(ctx context.Context, eventID uint64) (int, error)

	// Sync overwrites the counter with the authoritative count recomputed
	// from the record store. The reconciler calls this after every
	// committed transition and during drift repair.
	Sync(ctx context.Context, eventID uint64, count int) error
}
