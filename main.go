// main.go
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"carwash-web/cmd"
	"carwash-web/internal/data/repository"
	"carwash-web/internal/wire"
	"carwash-web/pkg/database"
	"carwash-web/pkg/utils"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const sessionCleanupInterval = 30 * time.Minute

func main() {
	// Load config
	config, err := utils.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logger, err := utils.InitLogger(config.App)
	if err != nil {
		log.Printf("Failed to init logger: %v. Using standard log.", err)
		logger, _ = zap.NewProduction()
	}
	defer logger.Sync()

	logger.Info("Starting application",
		zap.String("app", config.App.Name),
		zap.String("port", config.App.Port),
		zap.String("api", config.API.BaseURL),
		zap.String("session_driver", config.Session.Driver),
		zap.Bool("debug", config.App.Debug),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Session store
	store, closeStore, err := openSessionStore(ctx, config, logger)
	if err != nil {
		logger.Fatal("Failed to open session store", zap.Error(err))
	}
	defer closeStore()

	// Wire all dependencies
	app, err := wire.Wiring(store, config, logger)
	if err != nil {
		logger.Fatal("Failed to wire application", zap.Error(err))
	}

	if err := cmd.APIServer(ctx, app.Handler(), config.App.Port, logger); err != nil {
		logger.Error("Server exited", zap.Error(err))
	}
}

// openSessionStore builds the backend named by SESSION_DRIVER. The returned
// func releases its connections.
func openSessionStore(ctx context.Context, config *utils.Config, logger *zap.Logger) (repository.SessionRepository, func(), error) {
	cookie := repository.CookieOptions{
		TTL:    config.Session.TTL,
		Secure: config.Session.SecureCookie,
	}

	switch config.Session.Driver {
	case utils.SessionDriverRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     config.Redis.Addr,
			Password: config.Redis.Password,
			DB:       config.Redis.DB,
		})
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		defer cancel()
		if err := client.Ping(pingCtx).Err(); err != nil {
			client.Close()
			return nil, nil, fmt.Errorf("redis ping: %w", err)
		}
		logger.Info("Redis connected successfully", zap.String("addr", config.Redis.Addr))
		return repository.NewRedisSessionRepository(client, cookie, logger), func() { client.Close() }, nil

	case utils.SessionDriverPostgres:
		db, err := database.InitDB(ctx, config.Database)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("Database connected successfully")

		store := repository.NewPostgresSessionRepository(db, cookie, logger)
		if err := store.EnsureSchema(ctx); err != nil {
			db.Close()
			return nil, nil, err
		}
		go cleanExpiredSessions(ctx, store, logger)
		return store, db.Close, nil

	default:
		hashKey, err := utils.DeriveKey(config.Session.Secret, utils.KeyPurposeSessionHash, 64)
		if err != nil {
			return nil, nil, err
		}
		blockKey, err := utils.DeriveKey(config.Session.Secret, utils.KeyPurposeSessionBlock, 32)
		if err != nil {
			return nil, nil, err
		}
		return repository.NewCookieSessionRepository(hashKey, blockKey, cookie, logger), func() {}, nil
	}
}

func cleanExpiredSessions(ctx context.Context, store repository.PostgresSessionRepository, logger *zap.Logger) {
	ticker := time.NewTicker(sessionCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := store.CleanExpiredSessions(ctx); err != nil {
				logger.Warn("Failed to clean expired sessions", zap.Error(err))
			}
		}
	}
}
