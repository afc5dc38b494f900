package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/event-registration/internal/model"
	"github.com/iliyamo/event-registration/internal/notify"
	"github.com/iliyamo/event-registration/internal/repository"
	"github.com/iliyamo/event-registration/internal/workflow"
)

// EventHandler exposes the event metadata surface plus the live-count
// endpoints backed by the workflow engine and the notifier hub.
type EventHandler struct {
	Events *repository.EventRepo
	Engine *workflow.Engine
	Hub    *notify.Hub
}

// NewEventHandler constructs an EventHandler. All dependencies must be
// non-nil.
func NewEventHandler(events *repository.EventRepo, engine *workflow.Engine, hub *notify.Hub) *EventHandler {
	if events == nil || engine == nil || hub == nil {
		panic("nil dependency passed to NewEventHandler")
	}
	return &EventHandler{Events: events, Engine: engine, Hub: hub}
}

type createEventReq struct {
	Title                string    `json:"title"`
	Description          string    `json:"description"`
	Location             string    `json:"location"`
	Category             string    `json:"category"`
	StartsAt             time.Time `json:"starts_at"`
	Capacity             int       `json:"capacity"`
	RegistrationDeadline time.Time `json:"registration_deadline"`
}

// Create handles POST /v1/events. Only organizers and admins reach this
// handler; the creator becomes the event's organizer.
func (h *EventHandler) Create(c echo.Context) error {
	organizerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req createEventReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "title is required"})
	}
	if req.Capacity < 1 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "capacity must be a positive integer"})
	}
	if req.Capacity > 100_000 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "capacity cannot exceed 100000"})
	}
	if req.StartsAt.IsZero() || req.RegistrationDeadline.IsZero() {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "starts_at and registration_deadline are required"})
	}
	if !req.RegistrationDeadline.Before(req.StartsAt) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "registration_deadline must precede starts_at"})
	}
	if req.Category == "" {
		req.Category = model.CategoryOther
	}
	req.Category = strings.ToUpper(req.Category)
	if !model.ValidCategory(req.Category) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown category"})
	}
	event, err := h.Events.Create(c.Request().Context(), &model.Event{
		OrganizerID:          organizerID,
		Title:                req.Title,
		Description:          req.Description,
		Location:             req.Location,
		Category:             req.Category,
		StartsAt:             req.StartsAt,
		Capacity:             req.Capacity,
		RegistrationDeadline: req.RegistrationDeadline,
		IsActive:             true,
	})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusCreated, event)
}

// List handles GET /v1/events with limit/offset pagination.
func (h *EventHandler) List(c echo.Context) error {
	limit, offset := pagination(c)
	events, err := h.Events.List(c.Request().Context(), limit, offset)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"events": events})
}

// Get handles GET /v1/events/:id. The returned event carries the live
// approved_count maintained by the reconciler.
func (h *EventHandler) Get(c echo.Context) error {
	eventID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}
	event, err := h.Events.GetByID(c.Request().Context(), eventID)
	if err != nil {
		if errors.Is(err, repository.ErrEventNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, event)
}

// Reconcile handles POST /v1/events/:id/reconcile, the on-demand repair
// hook for one event.
func (h *EventHandler) Reconcile(c echo.Context) error {
	eventID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}
	count, err := h.Engine.Reconcile(c.Request().Context(), eventID)
	if err != nil {
		if errors.Is(err, repository.ErrEventNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "reconcile failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"event_id": eventID, "approved_count": count})
}

// ReconcileAll handles POST /v1/reconcile, sweeping every event.
func (h *EventHandler) ReconcileAll(c echo.Context) error {
	if err := h.Engine.ReconcileAll(c.Request().Context()); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "reconcile failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "reconciled"})
}

// Stream handles GET /v1/events/:id/stream. It subscribes the client to the
// event's change topic and relays each committed transition as a
// server-sent event until the client disconnects. Delivery is best-effort:
// a client that cannot keep up misses changes rather than stalling the
// engine.
func (h *EventHandler) Stream(c echo.Context) error {
	eventID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}
	if _, err := h.Events.GetByID(c.Request().Context(), eventID); err != nil {
		if errors.Is(err, repository.ErrEventNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	sub := h.Hub.Subscribe(eventID, 16)
	defer sub.Close()

	resp := c.Response()
	resp.Header().Set(echo.HeaderContentType, "text/event-stream")
	resp.Header().Set("Cache-Control", "no-cache")
	resp.Header().Set("Connection", "keep-alive")
	resp.WriteHeader(http.StatusOK)
	resp.Flush()

	ctx := c.Request().Context()
	keepalive := time.NewTicker(30 * time.Second)
	defer keepalive.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case change, ok := <-sub.C:
			if !ok {
				return nil
			}
			data, err := json.Marshal(change)
			if err != nil {
				continue
			}
			if _, err := fmt.Fprintf(resp, "data: %s\n\n", data); err != nil {
				return nil
			}
			resp.Flush()
		case <-keepalive.C:
			if _, err := fmt.Fprint(resp, ": keepalive\n\n"); err != nil {
				return nil
			}
			resp.Flush()
		}
	}
}
