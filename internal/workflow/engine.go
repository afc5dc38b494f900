package workflow

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/iliyamo/event-registration/internal/ledger"
	"github.com/iliyamo/event-registration/internal/model"
	"github.com/iliyamo/event-registration/internal/notify"
	"github.com/iliyamo/event-registration/internal/repository"
)

// RecordStore is the registration persistence contract the engine depends
// on. CompareAndSetStatus is the only way a status ever changes.
type RecordStore interface {
	CreatePending(ctx context.Context, eventID, participantID uint64, note string) (*model.Registration, error)
	Get(ctx context.Context, id uint64) (*model.Registration, error)
	CompareAndSetStatus(ctx context.Context, id uint64, expected, next model.RegistrationStatus, change repository.StatusChange) (*model.Registration, error)
	CountByStatus(ctx context.Context, eventID uint64, status model.RegistrationStatus) (int, error)
	DeleteIfPending(ctx context.Context, id uint64) (bool, error)
}

// EventStore is the slice of event persistence the engine needs: metadata
// reads for precondition checks and the approved-count write owned by the
// reconciler.
type EventStore interface {
	GetByID(ctx context.Context, id uint64) (*model.Event, error)
	ListIDs(ctx context.Context) ([]uint64, error)
	SetApprovedCount(ctx context.Context, eventID uint64, count int) error
}

// Authorizer answers whether an actor may decide (approve/reject/cancel/
// purge) registrations for an event.
type Authorizer interface {
	CanDecide(ctx context.Context, actorID, eventID uint64) (bool, error)
}

// Notifier receives the fact of each committed transition. Delivery is
// fire-and-forget from the engine's perspective.
type Notifier interface {
	Publish(change notify.Change)
}

// Engine enforces the registration state machine. All capacity decisions
// serialize on the ledger's per-event counter; all status mutations go
// through the record store's conditional write. The engine itself holds no
// locks and is safe for concurrent use.
type Engine struct {
	records  RecordStore
	events   EventStore
	ledger   ledger.Ledger
	auth     Authorizer
	notifier Notifier
	now      func() time.Time
}

// NewEngine wires the engine's collaborators. notifier may be nil when no
// one observes changes (e.g. in batch repair tools).
func NewEngine(records RecordStore, events EventStore, led ledger.Ledger, auth Authorizer, notifier Notifier) *Engine {
	return &Engine{
		records:  records,
		events:   events,
		ledger:   led,
		auth:     auth,
		notifier: notifier,
		now:      time.Now,
	}
}

// Register creates a PENDING registration for the participant. The event
// must exist, be active, be before its deadline, and not already hold an
// active registration for this participant. The full check here is
// optimistic only: a pending row does not consume a slot, so admission is
// finally decided at approval time. That two-phase semantic is deliberate —
// organizers resolve any overflow of pending requests by rejecting the
// surplus.
func (e *Engine) Register(ctx context.Context, eventID, participantID uint64, note string) (*model.Registration, error) {
	event, err := e.events.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if !event.IsActive {
		return nil, ErrEventInactive
	}
	if !event.IsRegistrationOpen(e.now()) {
		return nil, ErrRegistrationClosed
	}
	if event.IsFull() {
		return nil, ErrEventFull
	}
	reg, err := e.records.CreatePending(ctx, eventID, participantID, note)
	if err != nil {
		return nil, err
	}
	e.publish(reg, event.ApprovedCount)
	return reg, nil
}

// Approve moves a PENDING registration to APPROVED, consuming one capacity
// slot. The ledger's atomic reserve is the single serialization point: when
// two approvals race for the last slot, whichever reserve the ledger orders
// first wins and the loser gets ErrEventFull with its registration left
// PENDING. If the conditional status write then loses to a concurrent
// decision, the just-reserved slot is released and ErrConflictStale is
// surfaced for the caller to re-read and re-decide.
func (e *Engine) Approve(ctx context.Context, registrationID, approverID uint64) (*model.Registration, error) {
	reg, err := e.records.Get(ctx, registrationID)
	if err != nil {
		return nil, err
	}
	if err := e.requireDecider(ctx, approverID, reg.EventID); err != nil {
		return nil, err
	}
	if !model.CanTransition(reg.Status, model.StatusApproved) {
		return nil, ErrInvalidTransition
	}
	event, err := e.events.GetByID(ctx, reg.EventID)
	if err != nil {
		return nil, err
	}
	if _, err := e.ledger.TryReserveSlot(ctx, reg.EventID, event.Capacity); err != nil {
		if errors.Is(err, ledger.ErrCapacityExceeded) {
			return nil, ErrEventFull
		}
		return nil, err
	}
	updated, err := e.records.CompareAndSetStatus(ctx, registrationID,
		model.StatusPending, model.StatusApproved,
		repository.StatusChange{DecidedBy: approverID, DecidedAt: e.now()},
	)
	if err != nil {
		// The reservation was taken but the transition did not commit:
		// hand the slot back before reporting the conflict.
		if _, releaseErr := e.ledger.ReleaseSlot(ctx, reg.EventID); releaseErr != nil {
			log.Printf("workflow: release slot after failed approve of %d: %v", registrationID, releaseErr)
		}
		return nil, err
	}
	count := e.reconcileAfterTransition(ctx, reg.EventID)
	e.publish(updated, count)
	return updated, nil
}

// Reject moves a PENDING registration to REJECTED with an optional reason.
// Rejection never touches capacity.
func (e *Engine) Reject(ctx context.Context, registrationID, rejecterID uint64, reason string) (*model.Registration, error) {
	reg, err := e.records.Get(ctx, registrationID)
	if err != nil {
		return nil, err
	}
	if err := e.requireDecider(ctx, rejecterID, reg.EventID); err != nil {
		return nil, err
	}
	if !model.CanTransition(reg.Status, model.StatusRejected) {
		return nil, ErrInvalidTransition
	}
	change := repository.StatusChange{DecidedBy: rejecterID, DecidedAt: e.now()}
	if reason != "" {
		change.RejectionReason = &reason
	}
	updated, err := e.records.CompareAndSetStatus(ctx, registrationID,
		model.StatusPending, model.StatusRejected, change)
	if err != nil {
		return nil, err
	}
	count := e.reconcileAfterTransition(ctx, reg.EventID)
	e.publish(updated, count)
	return updated, nil
}

// Cancel moves a PENDING or APPROVED registration to CANCELLED. The actor
// must be the participant themselves or an authorized decider. When an
// APPROVED registration is cancelled its slot is released only after the
// status commit — a crash in between leaves the ledger counting one slot
// too many, which the reconciler repairs, rather than one too few, which
// would overbook.
func (e *Engine) Cancel(ctx context.Context, registrationID, actorID uint64) (*model.Registration, error) {
	reg, err := e.records.Get(ctx, registrationID)
	if err != nil {
		return nil, err
	}
	if reg.ParticipantID != actorID {
		if err := e.requireDecider(ctx, actorID, reg.EventID); err != nil {
			return nil, err
		}
	}
	if !model.CanTransition(reg.Status, model.StatusCancelled) {
		return nil, ErrInvalidTransition
	}
	wasApproved := reg.Status == model.StatusApproved
	updated, err := e.records.CompareAndSetStatus(ctx, registrationID,
		reg.Status, model.StatusCancelled,
		repository.StatusChange{DecidedBy: actorID, DecidedAt: e.now()},
	)
	if err != nil {
		return nil, err
	}
	if wasApproved {
		if _, err := e.ledger.ReleaseSlot(ctx, reg.EventID); err != nil {
			log.Printf("workflow: release slot after cancel of %d: %v", registrationID, err)
		}
	}
	count := e.reconcileAfterTransition(ctx, reg.EventID)
	e.publish(updated, count)
	return updated, nil
}

// PurgePending hard-deletes a registration that is still PENDING. Resolved
// registrations carry audit fields and can only be cancelled. Purging has
// no capacity side effects because pending rows never consume a slot.
func (e *Engine) PurgePending(ctx context.Context, registrationID, actorID uint64) error {
	reg, err := e.records.Get(ctx, registrationID)
	if err != nil {
		return err
	}
	if err := e.requireDecider(ctx, actorID, reg.EventID); err != nil {
		return err
	}
	deleted, err := e.records.DeleteIfPending(ctx, registrationID)
	if err != nil {
		return err
	}
	if !deleted {
		// Someone resolved it between the read and the delete.
		return ErrInvalidTransition
	}
	return nil
}

// ApprovedCount returns the event's persisted approved count for display.
func (e *Engine) ApprovedCount(ctx context.Context, eventID uint64) (int, error) {
	event, err := e.events.GetByID(ctx, eventID)
	if err != nil {
		return 0, err
	}
	return event.ApprovedCount, nil
}

func (e *Engine) requireDecider(ctx context.Context, actorID, eventID uint64) error {
	ok, err := e.auth.CanDecide(ctx, actorID, eventID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotAuthorized
	}
	return nil
}

// reconcileAfterTransition refreshes the persisted count after a committed
// transition. The ledger is left alone — the reserve/release calls on the
// transition paths already keep it current, and a full sync here would race
// with concurrent reservations. Failures never fail the user-facing
// operation; the periodic sweep repairs any drift.
func (e *Engine) reconcileAfterTransition(ctx context.Context, eventID uint64) int {
	count, err := e.recountApproved(ctx, eventID)
	if err != nil {
		log.Printf("workflow: reconcile event %d: %v", eventID, err)
		if n, lerr := e.ledger.CurrentCount(ctx, eventID); lerr == nil {
			return n
		}
		return 0
	}
	return count
}

func (e *Engine) publish(reg *model.Registration, approvedCount int) {
	if e.notifier == nil {
		return
	}
	e.notifier.Publish(notify.Change{
		EventID:        reg.EventID,
		RegistrationID: reg.ID,
		ParticipantID:  reg.ParticipantID,
		Status:         reg.Status,
		ApprovedCount:  approvedCount,
		OccurredAt:     e.now().UTC(),
	})
}
