package wire

import (
	"carwash-web/internal/adaptor"
	"carwash-web/internal/data/entity"
	"carwash-web/internal/session"
	"carwash-web/pkg/middleware"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireCustomer(
	r chi.Router,
	customerHandler *adaptor.CustomerHandler,
	sessions *session.Manager,
	log *zap.Logger,
) {
	// ==================== PROTECTED ROUTES (customer) ====================
	r.With(middleware.RequireRole(sessions, entity.RoleCustomer, log)).Get("/customer/dashboard", customerHandler.Dashboard)
}
