package adaptor

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"carwash-web/internal/session"
	"carwash-web/internal/view"
	"carwash-web/pkg/utils"

	"go.uber.org/zap"
)

const themeCookie = "carwash_theme"

func themeFrom(r *http.Request) string {
	c, err := r.Cookie(themeCookie)
	if err == nil && c.Value == view.ThemeDark {
		return view.ThemeDark
	}
	return view.ThemeLight
}

type SessionHandler struct {
	base
}

func NewSessionHandler(sessions *session.Manager, views *view.Renderer, log *zap.Logger) *SessionHandler {
	return &SessionHandler{base: newBase(sessions, views, log, "session")}
}

// Logout handles POST /logout
func (h *SessionHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if s := h.sessions.GetSession(r.Context()); s != nil {
		h.log.Info("Signed out", zap.String("role", string(s.Role)))
	}
	h.sessions.ClearSession(w, r)
	utils.Redirect(w, r, "/")
}

// ToggleTheme handles POST /theme and returns to the page it came from.
func (h *SessionHandler) ToggleTheme(w http.ResponseWriter, r *http.Request) {
	next := view.ThemeDark
	if themeFrom(r) == view.ThemeDark {
		next = view.ThemeLight
	}

	http.SetCookie(w, &http.Cookie{
		Name:     themeCookie,
		Value:    next,
		Path:     "/",
		MaxAge:   int((365 * 24 * time.Hour).Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	utils.Redirect(w, r, backPath(r))
}

// backPath is the local path of the referring page, or "/".
func backPath(r *http.Request) string {
	ref, err := url.Parse(r.Referer())
	if err != nil || (ref.Host != "" && ref.Host != r.Host) {
		return "/"
	}
	if !strings.HasPrefix(ref.Path, "/") || strings.HasPrefix(ref.Path, "//") {
		return "/"
	}
	if ref.RawQuery != "" {
		return ref.Path + "?" + ref.RawQuery
	}
	return ref.Path
}
