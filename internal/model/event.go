package model

import "time"

// Event represents a registrable event as stored in the `events` table.
// Capacity is fixed once the event is created; ApprovedCount is a derived
// column owned exclusively by the registration workflow — nothing else may
// write it.
//
// Fields:
//  ID                   – primary key identifier.
//  OrganizerID          – user who created the event.
//  Title                – event title.
//  Description          – free-form description.
//  Location             – where the event takes place.
//  Category             – one of the category enum values below.
//  StartsAt             – when the event begins.
//  Capacity             – maximum number of approved attendees (>= 1).
//  ApprovedCount        – number of currently approved registrations.
//  RegistrationDeadline – registrations are rejected after this instant.
//  IsActive             – whether the event accepts any interaction.
//  CreatedAt            – creation timestamp.
//  UpdatedAt            – last update timestamp.
type Event struct {
	ID                   uint64    `json:"id"`
	OrganizerID          uint64    `json:"organizer_id"`
	Title                string    `json:"title"`
	Description          string    `json:"description"`
	Location             string    `json:"location"`
	Category             string    `json:"category"`
	StartsAt             time.Time `json:"starts_at"`
	Capacity             int       `json:"capacity"`
	ApprovedCount        int       `json:"approved_count"`
	RegistrationDeadline time.Time `json:"registration_deadline"`
	IsActive             bool      `json:"is_active"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

// Event categories accepted by the API.
const (
	CategoryAcademic  = "ACADEMIC"
	CategorySports    = "SPORTS"
	CategoryCultural  = "CULTURAL"
	CategoryTechnical = "TECHNICAL"
	CategorySocial    = "SOCIAL"
	CategoryOther     = "OTHER"
)

// ValidCategory reports whether c is one of the accepted categories.
func ValidCategory(c string) bool {
	switch c {
	case CategoryAcademic, CategorySports, CategoryCultural,
		CategoryTechnical, CategorySocial, CategoryOther:
		return true
	}
	return false
}

// IsFull reports whether the event has no remaining capacity.
func (e *Event) IsFull() bool {
	return e.ApprovedCount >= e.Capacity
}

// IsRegistrationOpen reports whether new registrations are accepted at the
// given instant. The event must be active and the deadline not yet passed.
func (e *Event) IsRegistrationOpen(now time.Time) bool {
	return e.IsActive && now.Before(e.RegistrationDeadline)
}
