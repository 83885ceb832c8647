package infrastructure

import (
	"context"
	"fmt"

	"user-fixture-service/internal/config"
	redisclient "user-fixture-service/pkg/redis"

	"go.uber.org/zap"
)

// NewRedisClient connects to Redis when REDIS_ENABLED is set. It returns a
// nil client otherwise.
func NewRedisClient(ctx context.Context, cfg *config.Config, l *zap.Logger) (*redisclient.Client, error) {
	if !cfg.Redis.Enabled {
		l.Info("Redis disabled; caching off, rate limits kept in process")
		return nil, nil
	}

	rdb, err := redisclient.NewClient(ctx, redisclient.Config{
		Addr:        cfg.Redis.RedisAddr(),
		Password:    cfg.Redis.Password,
		DB:          cfg.Redis.DB,
		MaxRetries:  cfg.Redis.MaxRetries,
		PoolSize:    cfg.Redis.PoolSize,
		MinIdleConn: cfg.Redis.MinIdleConn,
	}, l)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return rdb, nil
}
