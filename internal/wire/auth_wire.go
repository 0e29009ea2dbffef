package wire

import (
	"net/http"

	"carwash-web/internal/adaptor"
	"carwash-web/internal/data/entity"
	"carwash-web/internal/session"
	"carwash-web/pkg/middleware"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireAuth(
	r chi.Router,
	customerHandler *adaptor.CustomerHandler,
	adminHandler *adaptor.AdminHandler,
	sessions *session.Manager,
	loginLimit func(http.Handler) http.Handler,
	log *zap.Logger,
) {
	// ==================== CUSTOMER LOGIN ====================
	// GET /customer/auth?mode=login|register
	r.With(middleware.RedirectAuthenticated(sessions, entity.RoleCustomer)).Get("/customer/auth", customerHandler.AuthPage)

	r.Group(func(r chi.Router) {
		r.Use(loginLimit)

		r.Post("/customer/auth/login", customerHandler.Login)
		r.Post("/customer/auth/register", customerHandler.Register)
		r.Post("/admin/login", adminHandler.Login)
	})

	// ==================== ADMIN LOGIN ====================
	r.With(middleware.RedirectAuthenticated(sessions, entity.RoleAdmin)).Get("/admin/login", adminHandler.LoginPage)
}
