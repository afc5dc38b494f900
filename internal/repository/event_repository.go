package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/event-registration/internal/model"
)

// EventRepo provides persistence for events. Everything except
// approved_count belongs to the metadata CRUD surface; approved_count is
// written only by the reconciler via SetApprovedCount.
type EventRepo struct {
	db *sql.DB
}

// NewEventRepo returns an EventRepo bound to the given database.
func NewEventRepo(db *sql.DB) *EventRepo { return &EventRepo{db: db} }

const eventColumns = `id, organizer_id, title, description, location, category,
       starts_at, capacity, approved_count, registration_deadline, is_active,
       created_at, updated_at`

func scanEvent(s interface {
	Scan(dest ...interface{}) error
}) (*model.Event, error) {
	var e model.Event
	err := s.Scan(
		&e.ID, &e.OrganizerID, &e.Title, &e.Description, &e.Location, &e.Category,
		&e.StartsAt, &e.Capacity, &e.ApprovedCount, &e.RegistrationDeadline,
		&e.IsActive, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// Create inserts a new event and returns it with generated fields populated.
func (r *EventRepo) Create(ctx context.Context, e *model.Event) (*model.Event, error) {
	const q = `INSERT INTO events
	           (organizer_id, title, description, location, category, starts_at,
	            capacity, approved_count, registration_deadline, is_active)
	           VALUES (?, ?, ?, ?, ?, ?, ?, 0, ?, ?)`
	result, err := r.db.ExecContext(ctx, q,
		e.OrganizerID, e.Title, e.Description, e.Location, e.Category,
		e.StartsAt.UTC().Format("2006-01-02 15:04:05"),
		e.Capacity,
		e.RegistrationDeadline.UTC().Format("2006-01-02 15:04:05"),
		e.IsActive,
	)
	if err != nil {
		return nil, err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, uint64(id))
}

// GetByID returns a single event or ErrEventNotFound.
func (r *EventRepo) GetByID(ctx context.Context, id uint64) (*model.Event, error) {
	const q = `SELECT ` + eventColumns + ` FROM events WHERE id = ?`
	e, err := scanEvent(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}
	return e, nil
}

// List returns events ordered by start time ascending with limit/offset
// pagination. A limit of 0 means no limit.
func (r *EventRepo) List(ctx context.Context, limit, offset int) ([]model.Event, error) {
	q := `SELECT ` + eventColumns + ` FROM events ORDER BY starts_at ASC, id ASC`
	args := []interface{}{}
	if limit > 0 {
		q += ` LIMIT ? OFFSET ?`
		args = append(args, limit, offset)
	}
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	events := make([]model.Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, *e)
	}
	return events, rows.Err()
}

// ListIDs returns the IDs of all events, used by the full reconciliation
// sweep.
func (r *EventRepo) ListIDs(ctx context.Context) ([]uint64, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id FROM events ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []uint64
	for rows.Next() {
		var id uint64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// SetApprovedCount writes the authoritative approved count onto the event
// row. Only the reconciler calls this; the write is a plain overwrite
// because the value is recomputed deterministically from the registration
// rows (last write wins on the same value).
func (r *EventRepo) SetApprovedCount(ctx context.Context, eventID uint64, count int) error {
	const q = `UPDATE events SET approved_count = ? WHERE id = ?`
	// MySQL reports 0 affected rows both for a missing event and for an
	// unchanged value; the reconciler treats both as success.
	_, err := r.db.ExecContext(ctx, q, count, eventID)
	return err
}
