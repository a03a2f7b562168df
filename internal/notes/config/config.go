// Package config содержит конфигурацию сервиса заметок.
package config

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	pkgconfig "notesflow/pkg/config"
	"notesflow/pkg/logger"
)

const serviceName = "notes"

// Константы сообщений.
const (
	LogConfigSummary    = "notes service configuration"
	ErrFailedLoadConfig = "failed to load notes configuration"
)

// Config представляет полную конфигурацию сервиса заметок.
type Config struct {
	HTTP          HTTPConfig     `yaml:"http"`
	Postgres      PostgresConfig `yaml:"postgres"`
	JWT           JWTConfig      `yaml:"jwt"`
	Logging       LoggingConfig  `yaml:"logging"`
	Shutdown      ShutdownConfig `yaml:"shutdown"`
	MigrationsDir string         `yaml:"migrations_dir" env:"NOTES_MIGRATIONS_DIR" env-default:"./migrations/notes"`
}

// Load загружает конфигурацию из .env файла (если есть) и переменных окружения.
func Load(ctx context.Context, envFile string) (*Config, error) {
	cfg, err := pkgconfig.Load[Config](ctx, serviceName, envFile)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrFailedLoadConfig, err)
	}

	logger.Log(ctx).Info(ctx, LogConfigSummary,
		zap.String("http_address", cfg.HTTP.GetAddress()),
		zap.String("postgres_host", cfg.Postgres.Host),
		zap.Int("postgres_port", cfg.Postgres.Port),
		zap.String("postgres_db", cfg.Postgres.Database),
		zap.String("log_level", cfg.Logging.Level),
		zap.String("log_mode", cfg.Logging.Mode),
		zap.Int("shutdown_timeout_seconds", cfg.Shutdown.Timeout))

	return cfg, nil
}
