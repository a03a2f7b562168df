// Package main реализует точку входа дашборда заметок.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"notesflow/internal/dashboard/adapters/cache"
	dashboardHTTP "notesflow/internal/dashboard/adapters/http"
	"notesflow/internal/dashboard/adapters/rest"
	"notesflow/internal/dashboard/adapters/ws"
	"notesflow/internal/dashboard/app"
	"notesflow/internal/dashboard/config"
	"notesflow/internal/dashboard/resilience"
	"notesflow/pkg/jwtauth"
	"notesflow/pkg/logger"
	"notesflow/pkg/shutdown"
)

// Константы для переменных окружения.
const (
	EnvLoggerMode  = "DASHBOARD_LOGGER_MODE"
	EnvLoggerLevel = "DASHBOARD_LOGGER_LEVEL"
	EnvFile        = "DASHBOARD_ENV_FILE"
	defaultEnvFile = ".env"
)

// Константы для сообщений об ошибках.
const (
	ErrInitLogger           = "failed to initialize logger"
	ErrSyncLogger           = "failed to sync logger"
	ErrLoadConfig           = "failed to load configuration"
	ErrInitLoggerWithConfig = "failed to initialize logger with configuration settings"
	ErrInitCache            = "failed to initialize redis cache, continuing without cache"
	ErrStartHTTPServer      = "failed to start HTTP server"
	ErrStartWSServer        = "failed to start websocket server"
)

// Константы для игнорируемых ошибок.
const (
	ErrSyncStderr = "sync /dev/stderr: invalid argument"
	ErrSyncStdout = "sync /dev/stdout: invalid argument"
)

// Константы для сообщений сервиса.
const (
	LogServiceStarted      = "dashboard started"
	LogServiceShutdownDone = "dashboard shutdown complete"
	LogInitCache           = "initializing redis cache"
	LogCacheDisabled       = "redis cache disabled"
	LogInitBackend         = "initializing notes backend client"
	LogInitController      = "initializing notes controller"
	LogInitHTTPServer      = "initializing HTTP server"
	LogStartingHTTP        = "starting HTTP server"
	LogStartingWS          = "starting websocket server"
	LogStoppingHTTP        = "stopping HTTP server"
	LogStoppingWS          = "stopping websocket server"
	LogClosingCache        = "closing redis cache"
	LogStoppingJanitor     = "stopping session janitor"
)

func main() {
	env := logger.Development
	if strings.ToLower(os.Getenv(EnvLoggerMode)) == "production" {
		env = logger.Production
	}

	log, err := logger.NewLogger(env, os.Getenv(EnvLoggerLevel))
	if err != nil {
		panic(ErrInitLogger + ": " + err.Error())
	}

	logger.SetGlobalLogger(log)

	ctx := logger.NewRequestIDContext(context.Background(), "")

	var exitCode int

	func() {
		defer func() {
			if err := log.Sync(); err != nil {
				errMsg := err.Error()
				if strings.Contains(errMsg, ErrSyncStderr) || strings.Contains(errMsg, ErrSyncStdout) {
					return
				}
				if _, writeErr := fmt.Fprintf(os.Stderr, "%s: %v\n", ErrSyncLogger, err); writeErr != nil {
					panic(writeErr)
				}
			}
		}()

		envFile := os.Getenv(EnvFile)
		if envFile == "" {
			envFile = defaultEnvFile
		}

		cfg, err := config.Load(ctx, envFile)
		if err != nil {
			log.Error(ctx, ErrLoadConfig, zap.Error(err))
			exitCode = 1
			return
		}

		finalLogger, err := logger.NewLogger(cfg.Logging.GetEnvironment(), cfg.Logging.Level)
		if err != nil {
			log.Error(ctx, ErrInitLoggerWithConfig, zap.Error(err))
			exitCode = 1
			return
		}
		logger.SetGlobalLogger(finalLogger)
		log = finalLogger

		log.Info(ctx, LogServiceStarted,
			zap.String("environment", string(cfg.Logging.GetEnvironment())),
			zap.String("log_level", cfg.Logging.Level),
			zap.String("startup_time", time.Now().Format(time.RFC3339)))

		tokenService := jwtauth.New(cfg.JWT.SecretKey)
		hub := ws.NewHub(log, tokenService, cfg.WS.PingInterval, cfg.HTTP.AllowOrigins)

		breakerCfg := cfg.Breaker.ToCircuitBreakerConfig()
		breakerCfg.IsFailure = app.IsBackendFailure

		opts := []app.Option{
			app.WithPublisher(hub),
			app.WithBreaker(resilience.NewCircuitBreaker("notes-backend", breakerCfg)),
			app.WithRequestTimeout(cfg.Backend.RequestTimeout),
		}

		var redisCache *cache.RedisCache
		if cfg.Redis.Enabled {
			log.Info(ctx, LogInitCache)
			redisCache, err = cache.NewRedisCache(ctx, &cfg.Redis)
			if err != nil {
				log.Warn(ctx, ErrInitCache, zap.Error(err))
			} else {
				opts = append(opts, app.WithCache(cache.NewNoteListCache(redisCache)))
			}
		} else {
			log.Info(ctx, LogCacheDisabled)
		}

		log.Info(ctx, LogInitBackend, zap.String("base_url", cfg.Backend.BaseURL))
		backend := rest.NewClient(cfg.Backend.BaseURL, cfg.Backend.RequestTimeout)

		log.Info(ctx, LogInitController)
		controller := app.NewController(backend, opts...)
		hub.OnDisconnect(func(ctx context.Context, userID string) {
			if hub.Clients(userID) == 0 {
				controller.DropSession(ctx, userID)
			}
		})

		janitorCtx, stopJanitor := context.WithCancel(ctx)
		go controller.RunSessionJanitor(janitorCtx, cfg.Session.SweepInterval, cfg.Session.IdleTTL)

		log.Info(ctx, LogInitHTTPServer)
		server := fiber.New(fiber.Config{
			AppName:      "dashboard",
			ReadTimeout:  cfg.HTTP.ReadTimeout,
			WriteTimeout: cfg.HTTP.WriteTimeout,
		})
		dashboardHTTP.SetupRouter(server, log, dashboardHTTP.RouterConfig{
			AllowOrigins:  cfg.HTTP.AllowOrigins,
			RateLimit:     cfg.HTTP.RateLimit,
			RateLimitSpan: cfg.HTTP.RateLimitSpan,
		}, controller, tokenService)

		wsServer := ws.NewServer(cfg.WS.GetAddress(), hub)

		log.Info(ctx, LogStartingHTTP, zap.String("address", cfg.HTTP.GetAddress()))
		go func() {
			if err := server.Listen(cfg.HTTP.GetAddress(), fiber.ListenConfig{DisableStartupMessage: true}); err != nil {
				log.Error(ctx, ErrStartHTTPServer, zap.Error(err))
			}
		}()

		log.Info(ctx, LogStartingWS, zap.String("address", cfg.WS.GetAddress()))
		go func() {
			if err := wsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error(ctx, ErrStartWSServer, zap.Error(err))
			}
		}()

		shutdown.Wait(ctx, cfg.Shutdown.GetTimeout(),
			func(ctx context.Context) error {
				log.Info(ctx, LogStoppingJanitor)
				stopJanitor()
				return nil
			},
			func(ctx context.Context) error {
				log.Info(ctx, LogStoppingHTTP)
				if err := server.ShutdownWithContext(ctx); err != nil {
					return fmt.Errorf("%s: %w", LogStoppingHTTP, err)
				}
				return nil
			},
			func(ctx context.Context) error {
				log.Info(ctx, LogStoppingWS)
				hub.Close()
				if err := wsServer.Shutdown(ctx); err != nil {
					return fmt.Errorf("%s: %w", LogStoppingWS, err)
				}
				return nil
			},
			func(ctx context.Context) error {
				if redisCache == nil {
					return nil
				}
				log.Info(ctx, LogClosingCache)
				return redisCache.Close()
			},
		)

		log.Info(ctx, LogServiceShutdownDone)
	}()

	if exitCode != 0 {
		os.Exit(exitCode)
	}
}
