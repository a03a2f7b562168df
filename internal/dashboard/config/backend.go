package config

import (
	"time"

	"notesflow/internal/dashboard/resilience"
)

// BackendConfig описывает подключение к REST API сервиса заметок.
type BackendConfig struct {
	BaseURL        string        `yaml:"base_url" env:"DASHBOARD_BACKEND_URL" env-default:"http://localhost:8081"`
	RequestTimeout time.Duration `yaml:"request_timeout" env:"DASHBOARD_BACKEND_REQUEST_TIMEOUT" env-default:"5s"`
}

// BreakerConfig содержит настройки circuit breaker для вызовов backend.
type BreakerConfig struct {
	ErrorThreshold   int           `yaml:"error_threshold" env:"DASHBOARD_BREAKER_ERROR_THRESHOLD" env-default:"5"`
	Timeout          time.Duration `yaml:"timeout" env:"DASHBOARD_BREAKER_TIMEOUT" env-default:"10s"`
	SuccessThreshold int           `yaml:"success_threshold" env:"DASHBOARD_BREAKER_SUCCESS_THRESHOLD" env-default:"2"`
}

// ToCircuitBreakerConfig переводит настройки в конфигурацию resilience.
func (c *BreakerConfig) ToCircuitBreakerConfig() resilience.CircuitBreakerConfig {
	cfg := resilience.DefaultCircuitBreakerConfig()
	cfg.ErrorThreshold = c.ErrorThreshold
	cfg.Timeout = c.Timeout
	cfg.SuccessThreshold = c.SuccessThreshold
	return cfg
}
