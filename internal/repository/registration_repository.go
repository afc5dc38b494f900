package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/iliyamo/event-registration/internal/model"
)

// RegistrationRepo is the registration record store. A row's status is only
// ever changed through CompareAndSetStatus; there is no unconditional status
// update, so concurrent decisions surface as ErrConflictStale rather than
// silently clobbering each other.
type RegistrationRepo struct {
	db *sql.DB
}

// NewRegistrationRepo returns a RegistrationRepo bound to the given database.
func NewRegistrationRepo(db *sql.DB) *RegistrationRepo { return &RegistrationRepo{db: db} }

// DB exposes the underlying handle so callers can open transactions that
// span multiple repositories.
func (r *RegistrationRepo) DB() *sql.DB { return r.db }

// registrationColumns is the canonical column list used by every SELECT so
// scanRegistration stays in sync with the queries.
const registrationColumns = `id, event_id, participant_id, status, note,
       decided_by, decided_at, rejection_reason, created_at, updated_at`

// scanRegistration reads one registration row from a *sql.Row or *sql.Rows.
func scanRegistration(s interface {
	Scan(dest ...interface{}) error
}) (*model.Registration, error) {
	var (
		reg       model.Registration
		decidedBy sql.NullInt64
		decidedAt sql.NullTime
		reason    sql.NullString
	)
	err := s.Scan(
		&reg.ID, &reg.EventID, &reg.ParticipantID, &reg.Status, &reg.Note,
		&decidedBy, &decidedAt, &reason, &reg.CreatedAt, &reg.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if decidedBy.Valid {
		id := uint64(decidedBy.Int64)
		reg.DecidedBy = &id
	}
	if decidedAt.Valid {
		t := decidedAt.Time.UTC()
		reg.DecidedAt = &t
	}
	if reason.Valid {
		rr := reason.String
		reg.RejectionReason = &rr
	}
	return &reg, nil
}

// CreatePending inserts a new PENDING registration unless the participant
// already has an active one for the event. The uniqueness rule covers only
// PENDING and APPROVED rows — a participant whose earlier registration was
// rejected or cancelled may register again. The existence check and the
// insert run as a single statement so two concurrent registrations for the
// same pair cannot both slip through.
func (r *RegistrationRepo) CreatePending(ctx context.Context, eventID, participantID uint64, note string) (*model.Registration, error) {
	const q = `INSERT INTO registrations (event_id, participant_id, status, note)
	           SELECT ?, ?, ?, ?
	           FROM DUAL
	           WHERE NOT EXISTS (
	               SELECT 1 FROM registrations
	               WHERE event_id = ? AND participant_id = ? AND status IN (?, ?)
	           )`
	result, err := r.db.ExecContext(ctx, q,
		eventID, participantID, model.StatusPending, note,
		eventID, participantID, model.StatusPending, model.StatusApproved,
	)
	if err != nil {
		return nil, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, ErrDuplicateRegistration
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}
	return r.Get(ctx, uint64(id))
}

// Get returns a single registration or ErrRegistrationNotFound.
func (r *RegistrationRepo) Get(ctx context.Context, id uint64) (*model.Registration, error) {
	const q = `SELECT ` + registrationColumns + ` FROM registrations WHERE id = ?`
	reg, err := scanRegistration(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRegistrationNotFound
		}
		return nil, err
	}
	return reg, nil
}

// StatusChange carries the audit fields written alongside a conditional
// status update. RejectionReason is only persisted for rejections.
type StatusChange struct {
	DecidedBy       uint64
	DecidedAt       time.Time
	RejectionReason *string
}

// CompareAndSetStatus transitions a registration from expected to next in a
// single conditional UPDATE. When the row no longer carries the expected
// status it returns ErrConflictStale (or ErrRegistrationNotFound if the row
// is gone), never overwriting a concurrent decision. On success the updated
// row is returned.
func (r *RegistrationRepo) CompareAndSetStatus(ctx context.Context, id uint64, expected, next model.RegistrationStatus, change StatusChange) (*model.Registration, error) {
	const q = `UPDATE registrations
	           SET status = ?, decided_by = ?, decided_at = ?, rejection_reason = ?
	           WHERE id = ? AND status = ?`
	result, err := r.db.ExecContext(ctx, q,
		next, change.DecidedBy, change.DecidedAt.UTC().Format("2006-01-02 15:04:05"),
		change.RejectionReason, id, expected,
	)
	if err != nil {
		return nil, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		// Distinguish a missing row from a concurrent transition.
		if _, getErr := r.Get(ctx, id); getErr != nil {
			return nil, getErr
		}
		return nil, ErrConflictStale
	}
	return r.Get(ctx, id)
}

// CountByStatus returns how many registrations for the event carry the given
// status. This is the source-of-truth count the reconciler recomputes from.
func (r *RegistrationRepo) CountByStatus(ctx context.Context, eventID uint64, status model.RegistrationStatus) (int, error) {
	const q = `SELECT COUNT(*) FROM registrations WHERE event_id = ? AND status = ?`
	var n int
	if err := r.db.QueryRowContext(ctx, q, eventID, status).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// DeleteIfPending hard-deletes a registration only while it is still
// PENDING. Resolved rows are kept for audit (decided_by, rejection_reason)
// and must be cancelled instead. It reports whether a row was removed.
func (r *RegistrationRepo) DeleteIfPending(ctx context.Context, id uint64) (bool, error) {
	const q = `DELETE FROM registrations WHERE id = ? AND status = ?`
	result, err := r.db.ExecContext(ctx, q, id, model.StatusPending)
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// ListByEvent returns registrations for an event ordered newest first, with
// an optional status filter and limit/offset pagination. A limit of 0 means
// no limit.
func (r *RegistrationRepo) ListByEvent(ctx context.Context, eventID uint64, status model.RegistrationStatus, limit, offset int) ([]model.Registration, error) {
	q := `SELECT ` + registrationColumns + ` FROM registrations WHERE event_id = ?`
	args := []interface{}{eventID}
	if status != "" {
		q += ` AND status = ?`
		args = append(args, status)
	}
	q += ` ORDER BY created_at DESC, id DESC`
	if limit > 0 {
		q += ` LIMIT ? OFFSET ?`
		args = append(args, limit, offset)
	}
	return r.list(ctx, q, args...)
}

// ListByParticipant returns a participant's registrations ordered newest
// first, with an optional status filter and limit/offset pagination.
func (r *RegistrationRepo) ListByParticipant(ctx context.Context, participantID uint64, status model.RegistrationStatus, limit, offset int) ([]model.Registration, error) {
	q := `SELECT ` + registrationColumns + ` FROM registrations WHERE participant_id = ?`
	args := []interface{}{participantID}
	if status != "" {
		q += ` AND status = ?`
		args = append(args, status)
	}
	q += ` ORDER BY created_at DESC, id DESC`
	if limit > 0 {
		q += ` LIMIT ? OFFSET ?`
		args = append(args, limit, offset)
	}
	return r.list(ctx, q, args...)
}

func (r *RegistrationRepo) list(ctx context.Context, q string, args ...interface{}) ([]model.Registration, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	regs := make([]model.Registration, 0)
	for rows.Next() {
		reg, err := scanRegistration(rows)
		if err != nil {
			return nil, err
		}
		regs = append(regs, *reg)
	}
	return regs, rows.Err()
}

// StatusCounts aggregates an event's registrations by status for the stats
// endpoint.
type StatusCounts struct {
	Pending   int `json:"pending"`
	Approved  int `json:"approved"`
	Rejected  int `json:"rejected"`
	Cancelled int `json:"cancelled"`
	Total     int `json:"total"`
}

// CountsByEvent returns the per-status registration counts for one event.
func (r *RegistrationRepo) CountsByEvent(ctx context.Context, eventID uint64) (StatusCounts, error) {
	const q = `SELECT status, COUNT(*) FROM registrations WHERE event_id = ? GROUP BY status`
	rows, err := r.db.QueryContext(ctx, q, eventID)
	if err != nil {
		return StatusCounts{}, err
	}
	defer rows.Close()
	var counts StatusCounts
	for rows.Next() {
		var status model.RegistrationStatus
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return StatusCounts{}, err
		}
		switch status {
		case model.StatusPending:
			counts.Pending = n
		case model.StatusApproved:
			counts.Approved = n
		case model.StatusRejected:
			counts.Rejected = n
		case model.StatusCancelled:
			counts.Cancelled = n
		}
		counts.Total += n
	}
	return counts, rows.Err()
}

// OrganizerStats summarises registration activity across all events created
// by one organizer.
type OrganizerStats struct {
	TotalEvents        int `json:"total_events"`
	TotalRegistrations int `json:"total_registrations"`
	Pending            int `json:"pending_registrations"`
	Approved           int `json:"approved_registrations"`
	Rejected           int `json:"rejected_registrations"`
}

// StatsByOrganizer aggregates registrations over the organizer's events.
func (r *RegistrationRepo) StatsByOrganizer(ctx context.Context, organizerID uint64) (OrganizerStats, error) {
	var stats OrganizerStats
	const eventsQ = `SELECT COUNT(*) FROM events WHERE organizer_id = ?`
	if err := r.db.QueryRowContext(ctx, eventsQ, organizerID).Scan(&stats.TotalEvents); err != nil {
		return OrganizerStats{}, err
	}
	if stats.TotalEvents == 0 {
		return stats, nil
	}
	const q = `SELECT r.status, COUNT(*)
	           FROM registrations r
	           JOIN events e ON e.id = r.event_id
	           WHERE e.organizer_id = ?
	           GROUP BY r.status`
	rows, err := r.db.QueryContext(ctx, q, organizerID)
	if err != nil {
		return OrganizerStats{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var status model.RegistrationStatus
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return OrganizerStats{}, err
		}
		switch status {
		case model.StatusPending:
			stats.Pending = n
		case model.StatusApproved:
			stats.Approved = n
		case model.StatusRejected:
			stats.Rejected = n
		}
		stats.TotalRegistrations += n
	}
	return stats, rows.Err()
}
