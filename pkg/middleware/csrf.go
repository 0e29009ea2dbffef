package middleware

import (
	"net/http"

	"github.com/gorilla/csrf"
	"go.uber.org/zap"
)

const csrfCookieName = "carwash_csrf"

// CSRF guards every state-changing form post. secure=false marks requests as
// plain HTTP so local development passes the referer checks.
func CSRF(authKey []byte, secure bool, logger *zap.Logger) func(http.Handler) http.Handler {
	protect := csrf.Protect(authKey,
		csrf.Secure(secure),
		csrf.Path("/"),
		csrf.CookieName(csrfCookieName),
		csrf.SameSite(csrf.SameSiteLaxMode),
		csrf.ErrorHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger.Warn("CSRF check failed",
				zap.String("path", r.URL.Path),
				zap.Error(csrf.FailureReason(r)),
			)
			http.Error(w, "Your form expired. Go back, reload the page and try again.", http.StatusForbidden)
		})),
	)

	return func(next http.Handler) http.Handler {
		protected := protect(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !secure {
				r = csrf.PlaintextHTTPRequest(r)
			}
			protected.ServeHTTP(w, r)
		})
	}
}
