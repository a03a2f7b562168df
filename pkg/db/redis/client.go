package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"notesflow/pkg/logger"
)

const (
	logConnecting = "connecting to Redis"
	logConnected  = "successfully connected to Redis"

	errConnect = "failed to connect to Redis"
)

// NewClient создает клиент Redis и проверяет соединение.
func NewClient(ctx context.Context, cfg *Config) (*redis.Client, error) {
	log := logger.Log(ctx)
	log.Info(ctx, logConnecting, zap.String("address", cfg.Address()), zap.Int("db", cfg.DB))

	rdb := redis.NewClient(&redis.Options{
		Addr:            cfg.Address(),
		Password:        cfg.Password,
		DB:              cfg.DB,
		PoolSize:        cfg.PoolSize,
		MinIdleConns:    cfg.MinIdle,
		DialTimeout:     cfg.ConnectTimeout,
		ReadTimeout:     cfg.Timeout,
		WriteTimeout:    cfg.Timeout,
		ConnMaxIdleTime: cfg.IdleTimeout,
		ConnMaxLifetime: cfg.MaxConnLifetime,
	})

	pingCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout+cfg.Timeout)
	defer cancel()

	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("%s: %w", errConnect, err)
	}

	log.Info(ctx, logConnected)
	return rdb, nil
}
