// Package config содержит конфигурацию дашборда заметок.
package config

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	pkgconfig "notesflow/pkg/config"
	"notesflow/pkg/logger"
)

const serviceName = "dashboard"

// Константы сообщений.
const (
	LogConfigSummary    = "dashboard configuration"
	ErrFailedLoadConfig = "failed to load dashboard configuration"
)

// Config представляет полную конфигурацию дашборда.
type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	WS       WSConfig       `yaml:"ws"`
	Backend  BackendConfig  `yaml:"backend"`
	Breaker  BreakerConfig  `yaml:"breaker"`
	Redis    RedisConfig    `yaml:"redis"`
	Session  SessionConfig  `yaml:"session"`
	JWT      JWTConfig      `yaml:"jwt"`
	Logging  LoggingConfig  `yaml:"logging"`
	Shutdown ShutdownConfig `yaml:"shutdown"`
}

// Load загружает конфигурацию из .env файла (если есть) и переменных окружения.
func Load(ctx context.Context, envFile string) (*Config, error) {
	cfg, err := pkgconfig.Load[Config](ctx, serviceName, envFile)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrFailedLoadConfig, err)
	}

	logger.Log(ctx).Info(ctx, LogConfigSummary,
		zap.String("http_address", cfg.HTTP.GetAddress()),
		zap.String("ws_address", cfg.WS.GetAddress()),
		zap.String("backend_url", cfg.Backend.BaseURL),
		zap.Duration("backend_request_timeout", cfg.Backend.RequestTimeout),
		zap.Bool("redis_enabled", cfg.Redis.Enabled),
		zap.String("redis_address", cfg.Redis.ToClientConfig().Address()),
		zap.Duration("redis_default_ttl", cfg.Redis.DefaultTTL),
		zap.Duration("session_idle_ttl", cfg.Session.IdleTTL),
		zap.Int("rate_limit", cfg.HTTP.RateLimit),
		zap.String("log_level", cfg.Logging.Level),
		zap.String("log_mode", cfg.Logging.Mode),
		zap.Int("shutdown_timeout_seconds", cfg.Shutdown.Timeout))

	return cfg, nil
}
