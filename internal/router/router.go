// Package router defines how HTTP routes are registered for the API.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/event-registration/internal/handler"
	"github.com/iliyamo/event-registration/internal/middleware"
	"github.com/iliyamo/event-registration/internal/model"
)

// RegisterRoutes registers routes that do not require authentication:
// the health check and the public event browse/stream surface.
func RegisterRoutes(e *echo.Echo, ev *handler.EventHandler) {
	e.GET("/healthz", handler.Health)
	e.GET("/v1/events", ev.List)
	e.GET("/v1/events/:id", ev.Get)
	// Live change feed; guests may watch an event fill up.
	e.GET("/v1/events/:id/stream", ev.Stream)
}

// RegisterAPI registers the authenticated surface. Groups share the /v1
// prefix but differ in role requirements: participants submit and manage
// their own registrations, organizers (and admins) decide them, and admins
// additionally get the purge and full-reconcile hooks.
func RegisterAPI(e *echo.Echo, jwtSecret string, a *handler.AuthHandler, ev *handler.EventHandler, reg *handler.RegistrationHandler) {
	// Unauthenticated identity endpoints.
	authGroup := e.Group("/v1/auth")
	authGroup.POST("/register", a.Register)
	authGroup.POST("/login", a.Login)

	// Any authenticated role.
	authed := e.Group("/v1")
	authed.Use(middleware.JWTAuth(jwtSecret))
	authed.Use(middleware.RequireRole(model.RoleParticipant, model.RoleOrganizer, model.RoleAdmin))
	authed.GET("/me", a.Me)
	authed.GET("/registrations/mine", reg.ListMine)
	// Cancellation is open to every role: the engine verifies the actor is
	// the participant or an authorized decider.
	authed.DELETE("/registrations/:id", reg.Cancel)

	// Participants request attendance.
	participant := e.Group("/v1")
	participant.Use(middleware.JWTAuth(jwtSecret))
	participant.Use(middleware.RequireRole(model.RoleParticipant))
	participant.POST("/registrations", reg.Create)

	// Organizers and admins create events and decide registrations.
	organizer := e.Group("/v1")
	organizer.Use(middleware.JWTAuth(jwtSecret))
	organizer.Use(middleware.RequireRole(model.RoleOrganizer, model.RoleAdmin))
	organizer.POST("/events", ev.Create)
	organizer.PUT("/registrations/:id/approve", reg.Approve)
	organizer.PUT("/registrations/:id/reject", reg.Reject)
	organizer.GET("/events/:id/registrations", reg.ListByEvent)
	organizer.GET("/events/:id/registrations/stats", reg.Stats)
	organizer.GET("/organizer/stats", reg.OrganizerStats)
	organizer.POST("/events/:id/reconcile", ev.Reconcile)

	// Admin-only repair hooks.
	admin := e.Group("/v1")
	admin.Use(middleware.JWTAuth(jwtSecret))
	admin.Use(middleware.RequireRole(model.RoleAdmin))
	admin.DELETE("/registrations/:id/purge", reg.Purge)
	admin.POST("/reconcile", ev.ReconcileAll)
}
