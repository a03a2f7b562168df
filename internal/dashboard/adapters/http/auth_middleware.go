package http

import (
	"context"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"notesflow/internal/dashboard/app"
	"notesflow/pkg/logger"
	"notesflow/pkg/middleware"
	"notesflow/pkg/workflow"
)

// Константы для логирования.
const (
	LogAuthMiddleware = "auth middleware"

	ErrorNoAuthHeader = "missing or malformed bearer token"
	ErrorInvalidToken = "invalid or expired token"
)

const callerKey = "caller"

// TokenValidator проверяет bearer токены вызывающих.
type TokenValidator interface {
	ValidateAccessToken(ctx context.Context, token string) (workflow.Principal, error)
}

// NewAuthMiddleware проверяет bearer токен и кладет вызывающего в Locals.
// Токен сохраняется, чтобы передавать его в сервис заметок.
func NewAuthMiddleware(tokens TokenValidator) fiber.Handler {
	return func(ctx fiber.Ctx) error {
		requestCtx := ctx.Context()
		log := logger.Log(requestCtx).With(zap.String("middleware", "auth"))
		log.Debug(requestCtx, LogAuthMiddleware)

		token := middleware.BearerToken(ctx)
		if token == "" {
			return writeFailure(ctx, fiber.StatusUnauthorized, app.KindPermissionDenied, ErrorNoAuthHeader)
		}

		principal, err := tokens.ValidateAccessToken(requestCtx, token)
		if err != nil {
			log.Debug(requestCtx, ErrorInvalidToken, zap.Error(err))
			return writeFailure(ctx, fiber.StatusUnauthorized, app.KindPermissionDenied, ErrorInvalidToken)
		}

		ctx.Locals(callerKey, app.Caller{Principal: principal, Token: token})
		return ctx.Next()
	}
}

func callerFrom(ctx fiber.Ctx) (app.Caller, bool) {
	c, ok := ctx.Locals(callerKey).(app.Caller)
	return c, ok
}
