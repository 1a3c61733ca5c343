package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"khosta-backend-go/internal/config"
	"khosta-backend-go/internal/db"
	"khosta-backend-go/internal/migrations"
	"khosta-backend-go/internal/store"
	"khosta-backend-go/internal/store/kv"
	"khosta-backend-go/internal/store/postgres"
)

// openStore connects the configured backend. The postgres schema is
// brought up to date before the store is returned.
func openStore(ctx context.Context, cfg config.Config, logger *zap.Logger) (store.Store, error) {
	switch cfg.StorageBackend {
	case config.BackendLocal:
		if err := os.MkdirAll(filepath.Dir(cfg.LocalStorePath), 0o755); err != nil {
			return nil, fmt.Errorf("create store dir: %w", err)
		}
		backend, err := kv.OpenSQLite(cfg.LocalStorePath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite store: %w", err)
		}
		logger.Info("using local store", zap.String("path", cfg.LocalStorePath))
		return kv.New(backend), nil
	case config.BackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		backend := kv.NewRedisBackend(client, config.NewCircuitBreaker("redis-store", logger))
		if err := backend.Ping(ctx); err != nil {
			logger.Warn("redis not reachable yet", zap.String("addr", cfg.RedisAddr), zap.Error(err))
		}
		logger.Info("using redis store", zap.String("addr", cfg.RedisAddr))
		return kv.New(backend), nil
	case config.BackendPostgres:
		database, err := db.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		applied, err := migrations.Apply(database, migrations.Files())
		if err != nil {
			_ = database.Close()
			return nil, fmt.Errorf("migrations: %w", err)
		}
		for _, name := range applied {
			logger.Info("migration applied", zap.String("migration", name))
		}
		return postgres.New(database), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}
