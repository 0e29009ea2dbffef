// Package session holds the per-request view of the browser's session record.
// The record is loaded once by Middleware and updated only through SetSession
// and ClearSession.
package session

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"carwash-web/internal/data/entity"
	"carwash-web/internal/data/repository"

	"go.uber.org/zap"
)

type holderKey struct{}

type holder struct {
	mu      sync.RWMutex
	session *entity.Session
}

func (h *holder) get() *entity.Session {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.session == nil {
		return nil
	}
	s := *h.session
	return &s
}

func (h *holder) set(s *entity.Session) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.session = s
}

type Manager struct {
	store repository.SessionRepository
	log   *zap.Logger
}

func NewManager(store repository.SessionRepository, log *zap.Logger) *Manager {
	return &Manager{
		store: store,
		log:   log.With(zap.String("component", "session")),
	}
}

// Middleware loads the session record into the request context. A record that
// cannot be read is purged and the request continues anonymous.
func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := &holder{}

		s, err := m.store.Load(r)
		switch {
		case errors.Is(err, repository.ErrCorruptSession):
			m.log.Warn("Discarding unreadable session", zap.Error(err))
			if err := m.store.Delete(w, r); err != nil {
				m.log.Error("Failed to purge session", zap.Error(err))
			}
		case err != nil:
			m.log.Error("Failed to load session", zap.Error(err))
		default:
			h.session = s
		}

		ctx := context.WithValue(r.Context(), holderKey{}, h)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func holderFrom(ctx context.Context) *holder {
	h, _ := ctx.Value(holderKey{}).(*holder)
	return h
}

// GetSession returns a copy of the current session, or nil.
func (m *Manager) GetSession(ctx context.Context) *entity.Session {
	h := holderFrom(ctx)
	if h == nil {
		return nil
	}
	return h.get()
}

// SetSession replaces the session. A storage failure is logged; the new
// session still applies to the rest of this request.
func (m *Manager) SetSession(w http.ResponseWriter, r *http.Request, s *entity.Session) {
	stored := *s
	if h := holderFrom(r.Context()); h != nil {
		h.set(&stored)
	}

	if err := m.store.Save(w, r, &stored); err != nil {
		m.log.Error("Failed to persist session",
			zap.String("role", string(s.Role)),
			zap.Error(err),
		)
	}
}

func (m *Manager) ClearSession(w http.ResponseWriter, r *http.Request) {
	if h := holderFrom(r.Context()); h != nil {
		h.set(nil)
	}

	if err := m.store.Delete(w, r); err != nil {
		m.log.Error("Failed to delete session", zap.Error(err))
	}
}

// GetToken returns the bearer token of the current session, or "".
func (m *Manager) GetToken(ctx context.Context) string {
	if s := m.GetSession(ctx); s != nil {
		return s.Token
	}
	return ""
}

func (m *Manager) HasRole(ctx context.Context, role entity.UserRole) bool {
	s := m.GetSession(ctx)
	return s != nil && s.Role == role
}

func (m *Manager) IsAdmin(ctx context.Context) bool {
	return m.HasRole(ctx, entity.RoleAdmin)
}

func (m *Manager) IsCustomer(ctx context.Context) bool {
	return m.HasRole(ctx, entity.RoleCustomer)
}
