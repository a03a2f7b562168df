package config

import (
	"fmt"
	"time"
)

// HTTPConfig представляет конфигурацию HTTP сервера дашборда.
type HTTPConfig struct {
	Host          string        `yaml:"host" env:"DASHBOARD_HTTP_HOST" env-default:"0.0.0.0"`
	Port          int           `yaml:"port" env:"DASHBOARD_HTTP_PORT" env-default:"8080"`
	ReadTimeout   time.Duration `yaml:"read_timeout" env:"DASHBOARD_HTTP_READ_TIMEOUT" env-default:"5s"`
	WriteTimeout  time.Duration `yaml:"write_timeout" env:"DASHBOARD_HTTP_WRITE_TIMEOUT" env-default:"10s"`
	AllowOrigins  []string      `yaml:"allow_origins" env:"DASHBOARD_CORS_ALLOW_ORIGINS" env-separator:"," env-default:"http://localhost:5173"`
	RateLimit     int           `yaml:"rate_limit" env:"DASHBOARD_RATE_LIMIT" env-default:"0"` // 0 отключает ограничение
	RateLimitSpan time.Duration `yaml:"rate_limit_span" env:"DASHBOARD_RATE_LIMIT_SPAN" env-default:"1m"`
}

// GetAddress возвращает адрес HTTP сервера.
func (c *HTTPConfig) GetAddress() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// WSConfig представляет конфигурацию websocket слушателя.
type WSConfig struct {
	Host         string        `yaml:"host" env:"DASHBOARD_WS_HOST" env-default:"0.0.0.0"`
	Port         int           `yaml:"port" env:"DASHBOARD_WS_PORT" env-default:"8082"`
	PingInterval time.Duration `yaml:"ping_interval" env:"DASHBOARD_WS_PING_INTERVAL" env-default:"30s"`
}

// GetAddress возвращает адрес websocket слушателя.
func (c *WSConfig) GetAddress() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
