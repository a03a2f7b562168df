package middleware

import (
	"fmt"
	"runtime/debug"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"notesflow/pkg/logger"
)

// Константы сообщений восстановления.
const (
	LogServerPanic       = "server panic"
	LogPanicResponseFail = "failed to send error response after panic"
)

// NewRecoveryMiddleware создает промежуточное ПО для восстановления после паники.
// body строит тело ответа 500 в формате конкретного API.
func NewRecoveryMiddleware(body func() any) fiber.Handler {
	return func(ctx fiber.Ctx) error {
		defer func() {
			if r := recover(); r != nil {
				requestCtx := ctx.Context()
				log := logger.Log(requestCtx)

				log.Error(requestCtx, LogServerPanic,
					zap.String("error", fmt.Sprintf("%v", r)),
					zap.String("stack", string(debug.Stack())),
				)

				if err := ctx.Status(fiber.StatusInternalServerError).JSON(body()); err != nil {
					log.Error(requestCtx, LogPanicResponseFail, zap.Error(err))
				}
			}
		}()

		return ctx.Next()
	}
}
