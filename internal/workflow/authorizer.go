package workflow

import (
	"context"
	"errors"

	"github.com/iliyamo/event-registration/internal/model"
	"github.com/iliyamo/event-registration/internal/repository"
)

// UserStore is the slice of user persistence the authorizer needs.
type UserStore interface {
	GetByID(ctx context.Context, id uint64) (*model.User, error)
}

// StoreAuthorizer implements Authorizer over the event and user stores: an
// actor may decide registrations for an event when they are its organizer
// or an active admin.
type StoreAuthorizer struct {
	events EventStore
	users  UserStore
}

// NewStoreAuthorizer builds the default authorizer.
func NewStoreAuthorizer(events EventStore, users UserStore) *StoreAuthorizer {
	return &StoreAuthorizer{events: events, users: users}
}

// CanDecide implements Authorizer.
func (a *StoreAuthorizer) CanDecide(ctx context.Context, actorID, eventID uint64) (bool, error) {
	event, err := a.events.GetByID(ctx, eventID)
	if err != nil {
		return false, err
	}
	if event.OrganizerID == actorID {
		return true, nil
	}
	user, err := a.users.GetByID(ctx, actorID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return false, nil
		}
		return false, err
	}
	return user.IsActive && user.Role == model.RoleAdmin, nil
}
