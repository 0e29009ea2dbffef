package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"carwash-web/internal/data/entity"
	"carwash-web/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// PostgresSessionRepository adds schema management to the session store.
type PostgresSessionRepository interface {
	SessionRepository
	EnsureSchema(ctx context.Context) error
	CleanExpiredSessions(ctx context.Context) error
}

type pgSessionRepository struct {
	db     database.PgxIface
	cookie CookieOptions
	log    *zap.Logger
}

func NewPostgresSessionRepository(db database.PgxIface, cookie CookieOptions, log *zap.Logger) PostgresSessionRepository {
	return &pgSessionRepository{
		db:     db,
		cookie: cookie,
		log:    log.With(zap.String("repository", "session_postgres")),
	}
}

func (r *pgSessionRepository) EnsureSchema(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS web_sessions (
			id         UUID PRIMARY KEY,
			payload    TEXT NOT NULL,
			expires_at TIMESTAMPTZ NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`
	if _, err := r.db.Exec(ctx, query); err != nil {
		return fmt.Errorf("create web_sessions: %w", err)
	}
	return nil
}

func (r *pgSessionRepository) Load(req *http.Request) (*entity.Session, error) {
	id, ok := sessionCookie(req)
	if !ok {
		return nil, nil
	}
	sessionID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("%w: bad session id", ErrCorruptSession)
	}

	query := `
		SELECT payload
		FROM web_sessions
		WHERE id = $1
		  AND expires_at > NOW()
	`

	var payload string
	err = r.db.QueryRow(req.Context(), query, sessionID).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to load session", zap.Error(err))
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	return decodeSession([]byte(payload))
}

func (r *pgSessionRepository) Save(w http.ResponseWriter, req *http.Request, session *entity.Session) error {
	payload, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}

	query := `
		INSERT INTO web_sessions (id, payload, expires_at)
		VALUES ($1, $2, $3)
	`

	id := uuid.New()
	if _, err := r.db.Exec(req.Context(), query, id, string(payload), time.Now().Add(r.cookie.TTL)); err != nil {
		r.log.Error("Failed to save session", zap.Error(err))
		return fmt.Errorf("failed to save session: %w", err)
	}

	if previous, ok := sessionCookie(req); ok {
		if previousID, err := uuid.Parse(previous); err == nil {
			if err := r.deleteRow(req.Context(), previousID); err != nil {
				r.log.Warn("Failed to drop previous session", zap.Error(err))
			}
		}
	}

	r.cookie.write(w, id.String())
	return nil
}

func (r *pgSessionRepository) Delete(w http.ResponseWriter, req *http.Request) error {
	r.cookie.expire(w)

	id, ok := sessionCookie(req)
	if !ok {
		return nil
	}
	sessionID, err := uuid.Parse(id)
	if err != nil {
		return nil
	}
	return r.deleteRow(req.Context(), sessionID)
}

func (r *pgSessionRepository) deleteRow(ctx context.Context, id uuid.UUID) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM web_sessions WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

func (r *pgSessionRepository) CleanExpiredSessions(ctx context.Context) error {
	query := `
		DELETE FROM web_sessions
		WHERE expires_at < NOW()
	`

	tag, err := r.db.Exec(ctx, query)
	if err != nil {
		r.log.Error("Failed to clean expired sessions", zap.Error(err))
		return fmt.Errorf("failed to clean sessions: %w", err)
	}

	r.log.Debug("Expired sessions removed", zap.Int64("rows", tag.RowsAffected()))
	return nil
}
