// Package redis предоставляет общую реализацию клиента Redis.
package redis

import (
	"net"
	"strconv"
	"time"
)

// Значения по умолчанию; должны совпадать с тегами env-default в RedisConfig дашборда.
const (
	DefaultHost     = "localhost"
	DefaultPort     = 6379
	DefaultPoolSize = 10
	DefaultTimeout  = 3 * time.Second
)

// Config содержит настройки подключения к Redis.
type Config struct {
	Host            string
	Port            int
	Password        string
	DB              int
	PoolSize        int
	MinIdle         int
	ConnectTimeout  time.Duration
	Timeout         time.Duration
	IdleTimeout     time.Duration
	MaxConnLifetime time.Duration
}

// DefaultConfig возвращает конфигурацию Redis по умолчанию.
func DefaultConfig() *Config {
	return &Config{
		Host:           DefaultHost,
		Port:           DefaultPort,
		PoolSize:       DefaultPoolSize,
		ConnectTimeout: DefaultTimeout,
		Timeout:        DefaultTimeout,
	}
}

// Address возвращает адрес в формате host:port.
func (c *Config) Address() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}
