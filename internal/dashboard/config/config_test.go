package config_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"notesflow/internal/dashboard/config"
	"notesflow/pkg/logger"
)

const (
	DashboardHTTPPort     = "DASHBOARD_HTTP_PORT"
	DashboardCORSOrigins  = "DASHBOARD_CORS_ALLOW_ORIGINS"
	DashboardRateLimit    = "DASHBOARD_RATE_LIMIT"
	DashboardWSPort       = "DASHBOARD_WS_PORT"
	DashboardBackendURL   = "DASHBOARD_BACKEND_URL"
	DashboardBackendTTL   = "DASHBOARD_BACKEND_REQUEST_TIMEOUT"
	DashboardBreakerLimit = "DASHBOARD_BREAKER_ERROR_THRESHOLD"
	DashboardRedisEnabled = "DASHBOARD_REDIS_ENABLED"
	DashboardRedisHost    = "DASHBOARD_REDIS_HOST"
	DashboardRedisPort    = "DASHBOARD_REDIS_PORT"
	DashboardLoggerMode   = "DASHBOARD_LOGGER_MODE"
	DashboardShutdown     = "DASHBOARD_GRACEFUL_SHUTDOWN_TIMEOUT"
	DashboardSessionTTL   = "DASHBOARD_SESSION_IDLE_TTL"

	//nolint:gosec
	JWTSecretKey = "JWT_SECRET_KEY"
)

// unsetEnv удаляет переменную на время теста и восстанавливает ее после.
func unsetEnv(t *testing.T, key string) {
	t.Helper()
	t.Setenv(key, "")
	require.NoError(t, os.Unsetenv(key))
}

func TestLoad(t *testing.T) {
	require.NoError(t, logger.InitGlobalLoggerWithLevel(logger.Development, "info"))
	ctx := context.Background()

	t.Run("successfully loads config from environment", func(t *testing.T) {
		envVars := map[string]string{
			DashboardHTTPPort:     "9000",
			DashboardCORSOrigins:  "http://a.local,http://b.local",
			DashboardRateLimit:    "100",
			DashboardWSPort:       "9001",
			DashboardBackendURL:   "http://notes:8081",
			DashboardBackendTTL:   "2s",
			DashboardBreakerLimit: "3",
			DashboardRedisEnabled: "false",
			DashboardRedisHost:    "cache",
			DashboardRedisPort:    "6380",
			DashboardLoggerMode:   "development",
			DashboardShutdown:     "12",
			DashboardSessionTTL:   "45m",
			JWTSecretKey:          "secret",
		}
		for k, v := range envVars {
			t.Setenv(k, v)
		}

		cfg, err := config.Load(ctx, "")
		require.NoError(t, err)
		require.NotNil(t, cfg)

		assert.Equal(t, "0.0.0.0:9000", cfg.HTTP.GetAddress())
		assert.Equal(t, []string{"http://a.local", "http://b.local"}, cfg.HTTP.AllowOrigins)
		assert.Equal(t, 100, cfg.HTTP.RateLimit)
		assert.Equal(t, "0.0.0.0:9001", cfg.WS.GetAddress())
		assert.Equal(t, "http://notes:8081", cfg.Backend.BaseURL)
		assert.Equal(t, 2*time.Second, cfg.Backend.RequestTimeout)
		assert.False(t, cfg.Redis.Enabled)
		assert.Equal(t, "cache:6380", cfg.Redis.ToClientConfig().Address())
		assert.Equal(t, logger.Development, cfg.Logging.GetEnvironment())
		assert.Equal(t, 12*time.Second, cfg.Shutdown.GetTimeout())
		assert.Equal(t, "secret", cfg.JWT.SecretKey)
		assert.Equal(t, 45*time.Minute, cfg.Session.IdleTTL)

		breaker := cfg.Breaker.ToCircuitBreakerConfig()
		assert.Equal(t, 3, breaker.ErrorThreshold)
		assert.Equal(t, 10*time.Second, breaker.Timeout)
		assert.Equal(t, 2, breaker.SuccessThreshold)
	})

	t.Run("applies defaults", func(t *testing.T) {
		for _, key := range []string{
			DashboardHTTPPort, DashboardCORSOrigins, DashboardRateLimit, DashboardWSPort,
			DashboardBackendURL, DashboardBackendTTL, DashboardBreakerLimit,
			DashboardRedisEnabled, DashboardRedisHost, DashboardRedisPort,
			DashboardLoggerMode, DashboardShutdown, DashboardSessionTTL,
		} {
			unsetEnv(t, key)
		}
		t.Setenv(JWTSecretKey, "secret")

		cfg, err := config.Load(ctx, "")
		require.NoError(t, err)

		assert.Equal(t, "0.0.0.0:8080", cfg.HTTP.GetAddress())
		assert.Equal(t, []string{"http://localhost:5173"}, cfg.HTTP.AllowOrigins)
		assert.Zero(t, cfg.HTTP.RateLimit)
		assert.Equal(t, time.Minute, cfg.HTTP.RateLimitSpan)
		assert.Equal(t, "0.0.0.0:8082", cfg.WS.GetAddress())
		assert.Equal(t, 30*time.Second, cfg.WS.PingInterval)
		assert.Equal(t, "http://localhost:8081", cfg.Backend.BaseURL)
		assert.Equal(t, 5*time.Second, cfg.Backend.RequestTimeout)
		assert.True(t, cfg.Redis.Enabled)
		assert.Equal(t, 15*time.Minute, cfg.Redis.DefaultTTL)
		assert.Equal(t, logger.Production, cfg.Logging.GetEnvironment())
		assert.Equal(t, 5*time.Second, cfg.Shutdown.GetTimeout())
		assert.Equal(t, 30*time.Minute, cfg.Session.IdleTTL)
		assert.Equal(t, time.Minute, cfg.Session.SweepInterval)
	})

	t.Run("fails without jwt secret", func(t *testing.T) {
		unsetEnv(t, JWTSecretKey)

		cfg, err := config.Load(ctx, "")
		require.Error(t, err)
		assert.Nil(t, cfg)
		assert.Contains(t, err.Error(), config.ErrFailedLoadConfig)
	})

	t.Run("reads env file", func(t *testing.T) {
		unsetEnv(t, JWTSecretKey)
		unsetEnv(t, DashboardBackendURL)

		envFile := filepath.Join(t.TempDir(), ".env")
		content := JWTSecretKey + "=from-file\n" + DashboardBackendURL + "=http://file:1234\n"
		require.NoError(t, os.WriteFile(envFile, []byte(content), 0o600))

		cfg, err := config.Load(ctx, envFile)
		require.NoError(t, err)

		assert.Equal(t, "from-file", cfg.JWT.SecretKey)
		assert.Equal(t, "http://file:1234", cfg.Backend.BaseURL)
	})

	t.Run("missing env file is not an error", func(t *testing.T) {
		t.Setenv(JWTSecretKey, "secret")

		cfg, err := config.Load(ctx, filepath.Join(t.TempDir(), "absent.env"))
		require.NoError(t, err)
		assert.Equal(t, "secret", cfg.JWT.SecretKey)
	})
}
