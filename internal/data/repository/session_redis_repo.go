package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"carwash-web/internal/data/entity"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisClient is the part of *redis.Client the session store uses.
type RedisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

type redisSessionRepository struct {
	client RedisClient
	cookie CookieOptions
	log    *zap.Logger
}

// NewRedisSessionRepository stores the record under carwash_session:<id> and
// keeps only the id in the cookie.
func NewRedisSessionRepository(client RedisClient, cookie CookieOptions, log *zap.Logger) SessionRepository {
	return &redisSessionRepository{
		client: client,
		cookie: cookie,
		log:    log.With(zap.String("repository", "session_redis")),
	}
}

func redisSessionKey(id string) string {
	return SessionKey + ":" + id
}

func (s *redisSessionRepository) Load(r *http.Request) (*entity.Session, error) {
	id, ok := sessionCookie(r)
	if !ok {
		return nil, nil
	}
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("%w: bad session id", ErrCorruptSession)
	}

	data, err := s.client.Get(r.Context(), redisSessionKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}

	return decodeSession(data)
}

func (s *redisSessionRepository) Save(w http.ResponseWriter, r *http.Request, session *entity.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}

	// a fresh id on every login
	id := uuid.NewString()
	if err := s.client.Set(r.Context(), redisSessionKey(id), data, s.cookie.TTL).Err(); err != nil {
		return fmt.Errorf("set session: %w", err)
	}

	if previous, ok := sessionCookie(r); ok {
		if err := s.client.Del(r.Context(), redisSessionKey(previous)).Err(); err != nil {
			s.log.Warn("Failed to drop previous session", zap.Error(err))
		}
	}

	s.cookie.write(w, id)
	return nil
}

func (s *redisSessionRepository) Delete(w http.ResponseWriter, r *http.Request) error {
	s.cookie.expire(w)

	id, ok := sessionCookie(r)
	if !ok {
		return nil
	}
	if err := s.client.Del(r.Context(), redisSessionKey(id)).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
