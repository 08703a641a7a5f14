// Package router wires the HTTP routes to their handlers and the
// middleware each group needs.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/jrosariodev/cultural-center-api/internal/handler"
	"github.com/jrosariodev/cultural-center-api/internal/middleware"
	"github.com/jrosariodev/cultural-center-api/internal/model"
)

// Handlers carries every handler the server mounts.
type Handlers struct {
	Health       *handler.Health
	Auth         *handler.AuthHandler
	Events       *handler.EventHandler
	AdminEvents  *handler.AdminEventHandler
	Reservations *handler.ReservationHandler
	Checkin      *handler.CheckinHandler
	Dashboard    *handler.DashboardHandler
	AdminUsers   *handler.AdminUserHandler
}

// Register mounts all routes. rateLimit wraps the auth and booking
// endpoints; pass a pass-through middleware to disable limiting.
func Register(e *echo.Echo, h Handlers, jwtSecret string, rateLimit echo.MiddlewareFunc) {
	e.GET("/healthz", h.Health.Check)

	// Unauthenticated session endpoints.
	auth := e.Group("/v1/auth", rateLimit)
	auth.POST("/register", h.Auth.Register)
	auth.POST("/login", h.Auth.Login)
	auth.POST("/refresh", h.Auth.Refresh)
	auth.POST("/logout", h.Auth.Logout)

	// Public event catalog, no token needed.
	e.GET("/v1/events", h.Events.List)
	e.GET("/v1/events/categories", h.Events.Categories)
	e.GET("/v1/events/:id", h.Events.Get)

	// Everything below requires a valid access token.
	v1 := e.Group("/v1")
	v1.Use(middleware.JWTAuth(jwtSecret))
	v1.Use(middleware.RequireRole(model.RoleAdmin, model.RoleMember))

	v1.GET("/me", h.Auth.Me)
	v1.PUT("/me", h.Auth.UpdateMe)

	v1.POST("/reservations", h.Reservations.Create, rateLimit)
	v1.GET("/my-reservations", h.Reservations.ListMine)
	v1.DELETE("/reservations/:id", h.Reservations.Cancel)

	// Staff and admin surface.
	admin := v1.Group("/admin")
	admin.Use(middleware.RequireRole(model.RoleAdmin))

	admin.POST("/checkin", h.Checkin.Redeem)

	admin.GET("/events", h.AdminEvents.List)
	admin.POST("/events", h.AdminEvents.Create)
	admin.GET("/events/stats", h.AdminEvents.Overview)
	admin.GET("/events/:id", h.AdminEvents.Get)
	admin.PUT("/events/:id", h.AdminEvents.Update)
	admin.POST("/events/:id/publish", h.AdminEvents.TogglePublish)
	admin.DELETE("/events/:id", h.AdminEvents.Delete)
	admin.GET("/events/:id/stats", h.AdminEvents.Stats)
	admin.GET("/events/:id/reservations", h.AdminEvents.ListReservations)

	admin.GET("/users", h.AdminUsers.List)
	admin.GET("/users/:id", h.AdminUsers.Get)
	admin.PUT("/users/:id", h.AdminUsers.Update)
	admin.PATCH("/users/:id/role", h.AdminUsers.SetRole)
	admin.DELETE("/users/:id", h.AdminUsers.Delete)
	admin.POST("/users/bulk", h.AdminUsers.Bulk)

	admin.GET("/dashboard/stats", h.Dashboard.Stats)
	admin.GET("/dashboard/quick-stats", h.Dashboard.Quick)
	admin.GET("/dashboard/activity", h.Dashboard.Activity)
}
