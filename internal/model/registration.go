package model

import "time"

// RegistrationStatus is the lifecycle state of a registration. The legal
// transitions are PENDING→APPROVED, PENDING→REJECTED, PENDING→CANCELLED and
// APPROVED→CANCELLED; everything else is rejected by the workflow engine.
type RegistrationStatus string

const (
	StatusPending   RegistrationStatus = "PENDING"
	StatusApproved  RegistrationStatus = "APPROVED"
	StatusRejected  RegistrationStatus = "REJECTED"
	StatusCancelled RegistrationStatus = "CANCELLED"
)

// ValidStatus reports whether s is one of the four registration states.
func ValidStatus(s RegistrationStatus) bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected, StatusCancelled:
		return true
	}
	return false
}

// CanTransition reports whether moving a registration from one status to
// another is legal. PENDING is the only initial state; REJECTED and CANCELLED
// are terminal; APPROVED may still be cancelled.
func CanTransition(from, to RegistrationStatus) bool {
	switch from {
	case StatusPending:
		return to == StatusApproved || to == StatusRejected || to == StatusCancelled
	case StatusApproved:
		return to == StatusCancelled
	}
	return false
}

// Active reports whether the status counts toward the one-active-registration
// per (event, participant) rule. Rejected and cancelled rows are kept for
// audit but do not block a fresh registration.
func (s RegistrationStatus) Active() bool {
	return s == StatusPending || s == StatusApproved
}

// Registration records a participant's request to attend an event, as stored
// in the `registrations` table. DecidedBy/DecidedAt are set when an organizer
// resolves the request; RejectionReason is only meaningful on REJECTED rows.
//
// Fields:
//  ID              – primary key identifier.
//  EventID         – event being registered for.
//  ParticipantID   – user requesting attendance.
//  Status          – current lifecycle state.
//  Note            – free-form text supplied by the participant.
//  DecidedBy       – user who approved/rejected/cancelled (nullable).
//  DecidedAt       – when the decision was made (nullable).
//  RejectionReason – organizer-supplied reason (nullable).
//  CreatedAt       – creation timestamp.
//  UpdatedAt       – last update timestamp.
type Registration struct {
	ID              uint64             `json:"id"`
	EventID         uint64             `json:"event_id"`
	ParticipantID   uint64             `json:"participant_id"`
	Status          RegistrationStatus `json:"status"`
	Note            string             `json:"note,omitempty"`
	DecidedBy       *uint64            `json:"decided_by,omitempty"`
	DecidedAt       *time.Time         `json:"decided_at,omitempty"`
	RejectionReason *string            `json:"rejection_reason,omitempty"`
	CreatedAt       time.Time          `json:"created_at"`
	UpdatedAt       time.Time          `json:"updated_at"`
}
