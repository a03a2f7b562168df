package config

import "time"

// SessionConfig задает время жизни списков заметок в памяти дашборда.
type SessionConfig struct {
	IdleTTL       time.Duration `yaml:"idle_ttl" env:"DASHBOARD_SESSION_IDLE_TTL" env-default:"30m"`
	SweepInterval time.Duration `yaml:"sweep_interval" env:"DASHBOARD_SESSION_SWEEP_INTERVAL" env-default:"1m"`
}
