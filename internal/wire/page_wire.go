package wire

import (
	"carwash-web/internal/adaptor"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wirePage(
	r chi.Router,
	pageHandler *adaptor.PageHandler,
	sessionHandler *adaptor.SessionHandler,
	log *zap.Logger,
) {
	// ==================== PUBLIC ROUTES ====================
	r.Get("/", pageHandler.Home)
	r.Get("/health", pageHandler.Health)

	// POST /logout - drop whatever session the visitor holds
	r.Post("/logout", sessionHandler.Logout)

	// POST /theme - flip the light/dark cookie and go back
	r.Post("/theme", sessionHandler.ToggleTheme)
}
