package model

import "time"

// Roles recognised by the API. Participants register for events, organizers
// create events and decide registrations for their own events, admins may
// decide anywhere and purge pending rows.
const (
	RoleParticipant = "PARTICIPANT"
	RoleOrganizer   = "ORGANIZER"
	RoleAdmin       = "ADMIN"
)

// ValidRole reports whether r is one of the recognised roles.
func ValidRole(r string) bool {
	return r == RoleParticipant || r == RoleOrganizer || r == RoleAdmin
}

// User represents an application user record as stored in the `users` table.
// Only the password hash is persisted, never the plain password.
//
// Fields:
//  ID           – primary key identifier.
//  Email        – unique email address.
//  PasswordHash – bcrypt hashed password.
//  Name         – display name.
//  Role         – one of the role constants above.
//  IsActive     – whether the account is active.
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type User struct {
	ID           uint64    // users.id
	Email        string    // users.email
	PasswordHash string    // users.password_hash
	Name         string    // users.name
	Role         string    // users.role
	IsActive     bool      // users.is_active
	CreatedAt    time.Time // users.created_at
	UpdatedAt    time.Time // users.updated_at
}
