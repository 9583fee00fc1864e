package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/abiolaogu/voxguard-console/internal/handlers"
	"github.com/abiolaogu/voxguard-console/internal/middleware"
	"github.com/abiolaogu/voxguard-console/internal/models"
	"github.com/abiolaogu/voxguard-console/internal/session"
)

// Handlers bundles the console's HTTP handlers for registration.
type Handlers struct {
	Auth   *handlers.AuthHandler
	Prefs  *handlers.PrefsHandler
	Alerts *handlers.AlertsHandler
	Cases  *handlers.CasesHandler
	Stats  *handlers.StatsHandler
	Tools  *handlers.ToolsHandler
	Feed   *handlers.FeedHandler
	Health *handlers.HealthHandler
}

// RegisterRoutes registers all console routes
func RegisterRoutes(router chi.Router, h Handlers, sessions *session.Store) {
	rateLimitConfig := middleware.DefaultLoginRateLimit()

	// Public routes - no authentication required
	router.Get("/health", h.Health.Health)
	router.With(middleware.RateLimitByIP(rateLimitConfig)).Post("/auth/login", h.Auth.Login)

	// Protected routes - authentication required
	router.Group(func(r chi.Router) {
		r.Use(middleware.Authenticate(sessions))

		r.Post("/auth/logout", h.Auth.Logout)
		r.Get("/auth/me", h.Auth.Me)

		r.Get("/preferences", h.Prefs.Get)
		r.Put("/preferences", h.Prefs.Update)
		r.Get("/preferences/format", h.Prefs.Format)
		r.Get("/preferences/theme", h.Prefs.GetTheme)
		r.Put("/preferences/theme", h.Prefs.SetTheme)

		r.Get("/alerts", h.Alerts.List)
		r.Get("/alerts/{id}", h.Alerts.Get)

		r.Get("/cases", h.Cases.List)
		r.Get("/cases/{id}", h.Cases.Get)

		r.Get("/stats", h.Stats.Stats)
		r.Get("/stats/counts", h.Stats.StatusCounts)
		r.Get("/threats", h.Stats.Threats)
		r.Get("/analytics/{kind}", h.Stats.Analytics)

		r.Get("/tools", h.Tools.List)

		r.Get("/feed", h.Feed.State)
		r.Get("/feed/counts", h.Feed.Counts)
		r.Get("/feed/ws", h.Feed.Stream)
		r.Get("/notifications", h.Feed.Notifications)
		r.Delete("/notifications/{id}", h.Feed.DismissNotification)
		r.Put("/notifications/sound", h.Feed.SetSound)

		// Analyst actions - viewers are read-only
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(models.RoleAnalyst))

			r.Patch("/alerts/{id}/status", h.Alerts.UpdateStatus)
			r.Patch("/alerts/{id}/assign", h.Alerts.Assign)
			r.Patch("/alerts/{id}/notes", h.Alerts.SetNotes)

			r.Post("/cases", h.Cases.Create)
			r.Post("/cases/{id}/notes", h.Cases.AppendNote)
			r.Patch("/cases/{id}/status", h.Cases.UpdateStatus)
		})
	})
}
