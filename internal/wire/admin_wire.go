package wire

import (
	"carwash-web/internal/adaptor"
	"carwash-web/internal/data/entity"
	"carwash-web/internal/session"
	"carwash-web/pkg/middleware"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireAdmin(
	r chi.Router,
	adminHandler *adaptor.AdminHandler,
	catalogHandler *adaptor.CatalogHandler,
	sessions *session.Manager,
	log *zap.Logger,
) {
	// ==================== ADMIN ROUTES ====================
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireRole(sessions, entity.RoleAdmin, log))

		// GET /admin?section=waiting|active|completed|services&dateFrom&dateTo&edit=<id>
		r.Get("/admin", adminHandler.Dashboard)

		// Booking mutations, each answered with a redirect back to the section
		r.Post("/admin/bookings/{id}/status", adminHandler.ChangeStatus)
		r.Post("/admin/bookings/{id}/reschedule", adminHandler.Reschedule)

		// Service catalog (multipart, image optional)
		r.Post("/admin/services", catalogHandler.Create)
		r.Post("/admin/services/{id}", catalogHandler.Update)
		r.Post("/admin/services/{id}/activate", catalogHandler.Activate)
		r.Post("/admin/services/{id}/deactivate", catalogHandler.Deactivate)
	})
}
