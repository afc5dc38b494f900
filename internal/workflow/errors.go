// Package workflow implements the registration lifecycle engine: the state
// machine that validates and commits status transitions, the capacity
// admission check against the ledger, and the reconciler that keeps the
// event's approved count equal to the approved registration rows.
package workflow

import "errors"

// ErrEventInactive is returned when the event does not accept any
// interaction.
var ErrEventInactive = errors.New("event is not active")

// ErrRegistrationClosed is returned when the registration deadline has
// passed.
var ErrRegistrationClosed = errors.New("registration deadline has passed")

// ErrEventFull is returned when an approval loses the race for the last
// slot, or a registration is submitted against an event that is already
// full. The registration itself stays PENDING and may be re-decided by the
// organizer once capacity frees up.
var ErrEventFull = errors.New("event is full")

// ErrInvalidTransition is returned when the requested transition is not
// legal from the registration's current status. It is never silently
// coerced into a no-op.
var ErrInvalidTransition = errors.New("invalid status transition")

// ErrNotAuthorized is returned when the actor may not decide registrations
// for the event, or may not cancel someone else's registration.
var ErrNotAuthorized = errors.New("not authorized for this operation")
