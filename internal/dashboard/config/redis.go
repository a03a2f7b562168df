package config

import (
	"time"

	"notesflow/pkg/db/redis"
)

// RedisConfig представляет конфигурацию кэша списков заметок.
type RedisConfig struct {
	Enabled         bool          `yaml:"enabled" env:"DASHBOARD_REDIS_ENABLED" env-default:"true"`
	Host            string        `yaml:"host" env:"DASHBOARD_REDIS_HOST" env-default:"localhost"`
	Port            int           `yaml:"port" env:"DASHBOARD_REDIS_PORT" env-default:"6379"`
	Password        string        `yaml:"password" env:"DASHBOARD_REDIS_PASSWORD" env-default:""`
	DB              int           `yaml:"db" env:"DASHBOARD_REDIS_DB" env-default:"0"`
	ConnectTimeout  time.Duration `yaml:"connect_timeout" env:"DASHBOARD_REDIS_CONNECT_TIMEOUT" env-default:"3s"`
	Timeout         time.Duration `yaml:"timeout" env:"DASHBOARD_REDIS_TIMEOUT" env-default:"3s"`
	PoolSize        int           `yaml:"pool_size" env:"DASHBOARD_REDIS_POOL_SIZE" env-default:"10"`
	MinIdle         int           `yaml:"min_idle" env:"DASHBOARD_REDIS_MIN_IDLE" env-default:"2"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" env:"DASHBOARD_REDIS_IDLE_TIMEOUT" env-default:"5m"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime" env:"DASHBOARD_REDIS_MAX_CONN_LIFETIME" env-default:"1h"`
	DefaultTTL      time.Duration `yaml:"default_ttl" env:"DASHBOARD_REDIS_DEFAULT_TTL" env-default:"15m"`
}

// ToClientConfig переводит настройки в конфигурацию общего клиента Redis.
func (c *RedisConfig) ToClientConfig() *redis.Config {
	return &redis.Config{
		Host:            c.Host,
		Port:            c.Port,
		Password:        c.Password,
		DB:              c.DB,
		PoolSize:        c.PoolSize,
		MinIdle:         c.MinIdle,
		ConnectTimeout:  c.ConnectTimeout,
		Timeout:         c.Timeout,
		IdleTimeout:     c.IdleTimeout,
		MaxConnLifetime: c.MaxConnLifetime,
	}
}
