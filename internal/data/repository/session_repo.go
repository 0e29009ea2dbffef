package repository

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"carwash-web/internal/data/entity"

	"github.com/gorilla/securecookie"
	"go.uber.org/zap"
)

// SessionKey is the well-known name of the session record.
const SessionKey = "carwash_session"

// ErrCorruptSession marks a stored record that cannot be read back.
var ErrCorruptSession = errors.New("corrupt session record")

// SessionRepository persists the browser's single session record.
// Load returns (nil, nil) when no record exists.
type SessionRepository interface {
	Load(r *http.Request) (*entity.Session, error)
	Save(w http.ResponseWriter, r *http.Request, session *entity.Session) error
	Delete(w http.ResponseWriter, r *http.Request) error
}

// CookieOptions are shared by every backend; server-side backends keep only
// the record id in the cookie.
type CookieOptions struct {
	TTL    time.Duration
	Secure bool
}

func (o CookieOptions) write(w http.ResponseWriter, value string) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionKey,
		Value:    value,
		Path:     "/",
		MaxAge:   int(o.TTL.Seconds()),
		HttpOnly: true,
		Secure:   o.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (o CookieOptions) expire(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionKey,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   o.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func sessionCookie(r *http.Request) (string, bool) {
	c, err := r.Cookie(SessionKey)
	if err != nil || c.Value == "" {
		return "", false
	}
	return c.Value, true
}

// decodeSession reads a serialized record. A record without role or token is
// as unusable as one that fails to parse.
func decodeSession(payload []byte) (*entity.Session, error) {
	var session entity.Session
	if err := json.Unmarshal(payload, &session); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptSession, err)
	}
	if err := checkSession(&session); err != nil {
		return nil, err
	}
	return &session, nil
}

func checkSession(session *entity.Session) error {
	if session.Token == "" {
		return fmt.Errorf("%w: missing token", ErrCorruptSession)
	}
	switch session.Role {
	case entity.RoleAdmin, entity.RoleCustomer:
		return nil
	default:
		return fmt.Errorf("%w: unknown role %q", ErrCorruptSession, session.Role)
	}
}

type cookieSessionRepository struct {
	codec  *securecookie.SecureCookie
	cookie CookieOptions
	log    *zap.Logger
}

// NewCookieSessionRepository keeps the whole record in the browser, signed
// with hashKey and encrypted with blockKey.
func NewCookieSessionRepository(hashKey, blockKey []byte, cookie CookieOptions, log *zap.Logger) SessionRepository {
	codec := securecookie.New(hashKey, blockKey)
	codec.SetSerializer(securecookie.JSONEncoder{})
	codec.MaxAge(int(cookie.TTL.Seconds()))

	return &cookieSessionRepository{
		codec:  codec,
		cookie: cookie,
		log:    log.With(zap.String("repository", "session_cookie")),
	}
}

func (s *cookieSessionRepository) Load(r *http.Request) (*entity.Session, error) {
	value, ok := sessionCookie(r)
	if !ok {
		return nil, nil
	}

	var session entity.Session
	if err := s.codec.Decode(SessionKey, value, &session); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptSession, err)
	}
	if err := checkSession(&session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (s *cookieSessionRepository) Save(w http.ResponseWriter, r *http.Request, session *entity.Session) error {
	encoded, err := s.codec.Encode(SessionKey, session)
	if err != nil {
		return fmt.Errorf("encode session cookie: %w", err)
	}
	s.cookie.write(w, encoded)
	return nil
}

func (s *cookieSessionRepository) Delete(w http.ResponseWriter, r *http.Request) error {
	s.cookie.expire(w)
	return nil
}
