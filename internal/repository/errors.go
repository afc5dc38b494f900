// Package repository implements MySQL persistence for events, registrations
// and users. This file defines the sentinel errors shared across the
// repositories so that higher layers can distinguish failure scenarios with
// errors.Is instead of string matching.
package repository

import "errors"

// ErrEventNotFound is returned when the requested event does not exist.
var ErrEventNotFound = errors.New("event not found")

// ErrRegistrationNotFound is returned when the requested registration does
// not exist.
var ErrRegistrationNotFound = errors.New("registration not found")

// ErrUserNotFound is returned when the requested user does not exist.
var ErrUserNotFound = errors.New("user not found")

// ErrEmailTaken is returned when creating a user with an email that is
// already registered.
var ErrEmailTaken = errors.New("email already registered")

// ErrDuplicateRegistration is returned when a participant already has an
// active (pending or approved) registration for the event. Historical
// rejected/cancelled rows do not trigger it.
var ErrDuplicateRegistration = errors.New("active registration already exists")

// ErrConflictStale is returned by conditional status writes when another
// writer already transitioned the row. The caller should re-read the current
// state and decide whether its transition still applies.
var ErrConflictStale = errors.New("registration status changed concurrently")

// ErrForbidden is returned when the caller attempts an operation on a
// resource they are not allowed to act on. Handlers should translate this
// into an HTTP 403 response.
var ErrForbidden = errors.New("forbidden")
