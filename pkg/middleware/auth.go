package middleware

import (
	"net/http"

	"carwash-web/internal/data/entity"
	"carwash-web/internal/session"
	"carwash-web/pkg/utils"

	"go.uber.org/zap"
)

// LoginPath is where a visitor without the role is sent.
func LoginPath(role entity.UserRole) string {
	if role == entity.RoleAdmin {
		return "/admin/login"
	}
	return "/customer/auth"
}

// DashboardPath is the landing page after login for the role.
func DashboardPath(role entity.UserRole) string {
	if role == entity.RoleAdmin {
		return "/admin"
	}
	return "/customer/dashboard"
}

// RequireRole lets the request through only when the session holds role.
// The check runs on every request.
func RequireRole(sessions *session.Manager, role entity.UserRole, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !sessions.HasRole(r.Context(), role) {
				logger.Debug("Protected page without role",
					zap.String("path", r.URL.Path),
					zap.String("role", string(role)),
				)
				utils.Redirect(w, r, LoginPath(role))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RedirectAuthenticated sends a user who already holds role from its login
// page to its dashboard.
func RedirectAuthenticated(sessions *session.Manager, role entity.UserRole) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if sessions.HasRole(r.Context(), role) {
				utils.Redirect(w, r, DashboardPath(role))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
