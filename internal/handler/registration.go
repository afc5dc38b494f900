package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/event-registration/internal/model"
	"github.com/iliyamo/event-registration/internal/repository"
	"github.com/iliyamo/event-registration/internal/workflow"
)

// RegistrationHandler exposes the registration lifecycle operations. All
// mutations delegate to the workflow engine; the handler's job is request
// decoding, listing, and mapping the engine's error taxonomy onto distinct
// HTTP statuses so clients can render "event is full" and "already
// registered" differently.
type RegistrationHandler struct {
	Engine *workflow.Engine
	Regs   *repository.RegistrationRepo
	Auth   workflow.Authorizer
}

// NewRegistrationHandler constructs a RegistrationHandler. All dependencies
// must be non-nil.
func NewRegistrationHandler(engine *workflow.Engine, regs *repository.RegistrationRepo, auth workflow.Authorizer) *RegistrationHandler {
	if engine == nil || regs == nil || auth == nil {
		panic("nil dependency passed to NewRegistrationHandler")
	}
	return &RegistrationHandler{Engine: engine, Regs: regs, Auth: auth}
}

type createRegistrationReq struct {
	EventID uint64 `json:"event_id"`
	Note    string `json:"note"`
}

type rejectReq struct {
	Reason string `json:"rejection_reason"`
}

// registrationError maps the engine's and repositories' sentinel errors to
// HTTP responses. Every named failure gets its own status and message;
// anything unrecognised is a 500.
func registrationError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, repository.ErrEventNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
	case errors.Is(err, repository.ErrRegistrationNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "registration not found"})
	case errors.Is(err, repository.ErrDuplicateRegistration):
		return c.JSON(http.StatusConflict, echo.Map{"error": "already registered for this event"})
	case errors.Is(err, repository.ErrConflictStale):
		return c.JSON(http.StatusConflict, echo.Map{"error": "registration was decided concurrently, refresh and retry"})
	case errors.Is(err, workflow.ErrEventFull):
		return c.JSON(http.StatusConflict, echo.Map{"error": "event is full"})
	case errors.Is(err, workflow.ErrEventInactive):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "event is not active"})
	case errors.Is(err, workflow.ErrRegistrationClosed):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "registration deadline has passed"})
	case errors.Is(err, workflow.ErrInvalidTransition):
		return c.JSON(http.StatusConflict, echo.Map{"error": "transition not allowed from current status"})
	case errors.Is(err, workflow.ErrNotAuthorized):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
}

// Create handles POST /v1/registrations: a participant requests to attend
// an event. The new registration starts PENDING and does not consume a
// capacity slot.
func (h *RegistrationHandler) Create(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req createRegistrationReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if req.EventID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "event_id is required"})
	}
	reg, err := h.Engine.Register(c.Request().Context(), req.EventID, userID, strings.TrimSpace(req.Note))
	if err != nil {
		return registrationError(c, err)
	}
	return c.JSON(http.StatusCreated, reg)
}

// Approve handles PUT /v1/registrations/:id/approve.
func (h *RegistrationHandler) Approve(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	regID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid registration id"})
	}
	reg, err := h.Engine.Approve(c.Request().Context(), regID, userID)
	if err != nil {
		return registrationError(c, err)
	}
	return c.JSON(http.StatusOK, reg)
}

// Reject handles PUT /v1/registrations/:id/reject.
func (h *RegistrationHandler) Reject(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	regID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid registration id"})
	}
	var req rejectReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	reg, err := h.Engine.Reject(c.Request().Context(), regID, userID, strings.TrimSpace(req.Reason))
	if err != nil {
		return registrationError(c, err)
	}
	return c.JSON(http.StatusOK, reg)
}

// Cancel handles DELETE /v1/registrations/:id. Participants cancel their
// own registrations; organizers and admins may cancel any registration on
// their events. Cancelling an approved registration frees its slot.
func (h *RegistrationHandler) Cancel(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	regID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid registration id"})
	}
	reg, err := h.Engine.Cancel(c.Request().Context(), regID, userID)
	if err != nil {
		return registrationError(c, err)
	}
	return c.JSON(http.StatusOK, reg)
}

// Purge handles DELETE /v1/registrations/:id/purge: a hard delete of a
// still-pending row, admin only (enforced by route middleware plus the
// engine's decider check).
func (h *RegistrationHandler) Purge(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	regID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid registration id"})
	}
	if err := h.Engine.PurgePending(c.Request().Context(), regID, userID); err != nil {
		return registrationError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ListMine handles GET /v1/registrations/mine with optional ?status= filter
// and limit/offset pagination.
func (h *RegistrationHandler) ListMine(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	status, ok := statusFilter(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown status filter"})
	}
	limit, offset := pagination(c)
	regs, err := h.Regs.ListByParticipant(c.Request().Context(), userID, status, limit, offset)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"registrations": regs})
}

// ListByEvent handles GET /v1/events/:id/registrations for the event's
// organizer or an admin.
func (h *RegistrationHandler) ListByEvent(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	eventID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}
	if err := h.requireDecider(c.Request().Context(), userID, eventID); err != nil {
		return registrationError(c, err)
	}
	status, ok := statusFilter(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown status filter"})
	}
	limit, offset := pagination(c)
	regs, err := h.Regs.ListByEvent(c.Request().Context(), eventID, status, limit, offset)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"registrations": regs})
}

// Stats handles GET /v1/events/:id/registrations/stats for the event's
// organizer or an admin.
func (h *RegistrationHandler) Stats(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	eventID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}
	if err := h.requireDecider(c.Request().Context(), userID, eventID); err != nil {
		return registrationError(c, err)
	}
	counts, err := h.Regs.CountsByEvent(c.Request().Context(), eventID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, counts)
}

// OrganizerStats handles GET /v1/organizer/stats, summarising registration
// activity across the caller's events.
func (h *RegistrationHandler) OrganizerStats(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	stats, err := h.Regs.StatsByOrganizer(c.Request().Context(), userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, stats)
}

// requireDecider verifies the actor may view organizer-scoped data for the
// event. Failures come back as the sentinel errors registrationError maps,
// so callers return exactly one response body.
func (h *RegistrationHandler) requireDecider(ctx context.Context, actorID, eventID uint64) error {
	ok, err := h.Auth.CanDecide(ctx, actorID, eventID)
	if err != nil {
		return err
	}
	if !ok {
		return workflow.ErrNotAuthorized
	}
	return nil
}

// statusFilter reads the optional ?status= query parameter. The second
// return value is false when the value is present but not a known status.
func statusFilter(c echo.Context) (model.RegistrationStatus, bool) {
	raw := strings.ToUpper(strings.TrimSpace(c.QueryParam("status")))
	if raw == "" {
		return "", true
	}
	status := model.RegistrationStatus(raw)
	if !model.ValidStatus(status) {
		return "", false
	}
	return status, true
}
