package config

import (
	"time"

	"notesflow/pkg/logger"
)

// LoggingConfig содержит настройки логирования.
type LoggingConfig struct {
	Level string `yaml:"level" env:"DASHBOARD_LOGGER_LEVEL" env-default:"info"`
	Mode  string `yaml:"mode" env:"DASHBOARD_LOGGER_MODE" env-default:"production"`
}

// GetEnvironment возвращает режим работы логгера.
func (c *LoggingConfig) GetEnvironment() logger.Environment {
	if c.Mode == "development" {
		return logger.Development
	}
	return logger.Production
}

// ShutdownConfig представляет конфигурацию для корректного завершения работы.
type ShutdownConfig struct {
	Timeout int `yaml:"timeout" env:"DASHBOARD_GRACEFUL_SHUTDOWN_TIMEOUT" env-default:"5"`
}

// GetTimeout возвращает таймаут для корректного завершения работы в виде Duration.
func (c *ShutdownConfig) GetTimeout() time.Duration {
	return time.Duration(c.Timeout) * time.Second
}

// JWTConfig содержит секрет для проверки токенов вызывающих пользователей.
type JWTConfig struct {
	SecretKey string `yaml:"secret_key" env:"JWT_SECRET_KEY" env-required:"true"`
}
