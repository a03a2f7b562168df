// Package middleware содержит общее промежуточное ПО fiber для HTTP серверов сервисов.
package middleware

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/requestid"
	"go.uber.org/zap"

	"notesflow/pkg/logger"
)

// Константы для логирования.
const (
	LogRequestStarted   = "request started"
	LogRequestCompleted = "request completed"
	LogRequestFailed    = "request failed"
)

// NewLoggerMiddleware кладет в контекст запроса логгер и request id и логирует запрос.
// Должно стоять после requestid.New().
func NewLoggerMiddleware(base *logger.Logger) fiber.Handler {
	return func(ctx fiber.Ctx) error {
		requestCtx := ctx.Context()

		requestID := requestid.FromContext(ctx)
		if requestID == "" {
			requestID = logger.GenerateRequestID()
		}
		requestCtx = logger.NewRequestIDContext(requestCtx, requestID)
		if base != nil {
			requestCtx = logger.NewContext(requestCtx, base)
		}
		ctx.SetContext(requestCtx)

		start := time.Now()
		log := logger.Log(requestCtx).With(
			zap.String("path", ctx.Path()),
			zap.String("method", ctx.Method()),
			zap.String("ip", ctx.IP()),
		)

		log.Debug(requestCtx, LogRequestStarted)

		err := ctx.Next()

		logFields := []zap.Field{
			zap.Int("status", ctx.Response().StatusCode()),
			zap.Duration("latency", time.Since(start)),
		}

		if err != nil {
			log.Error(requestCtx, LogRequestFailed, append(logFields, zap.Error(err))...)
			return fmt.Errorf("request processing error: %w", err)
		}

		log.Info(requestCtx, LogRequestCompleted, logFields...)
		return nil
	}
}
