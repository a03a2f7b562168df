package http

import (
	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"notesflow/internal/notes/ports/api"
	notesv1 "notesflow/pkg/api/notes/v1"
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

const principalKey = "principal"

// NewAuthMiddleware проверяет bearer токен и кладет идентичность вызывающего в Locals.
func NewAuthMiddleware(service api.NoteService) fiber.Handler {
	return func(ctx fiber.Ctx) error {
		requestCtx := ctx.Context()
		log := logger.Log(requestCtx).With(zap.String("middleware", "auth"))
		log.Debug(requestCtx, LogAuthMiddleware)

		token := middleware.BearerToken(ctx)
		if token == "" {
			log.Debug(requestCtx, ErrorNoAuthHeader)
			return writeError(ctx, fiber.StatusUnauthorized, notesv1.CodeUnauthorized, ErrorNoAuthHeader)
		}

		principal, err := service.Authenticate(requestCtx, token)
		if err != nil {
			status, _ := statusFor(err)
			if status == fiber.StatusUnauthorized {
				log.Debug(requestCtx, ErrorInvalidToken, zap.Error(err))
				return writeError(ctx, fiber.StatusUnauthorized, notesv1.CodeUnauthorized, ErrorInvalidToken)
			}
			return handleError(ctx, err)
		}

		ctx.Locals(principalKey, principal)
		return ctx.Next()
	}
}

func principalFrom(ctx fiber.Ctx) (workflow.Principal, bool) {
	p, ok := ctx.Locals(principalKey).(workflow.Principal)
	return p, ok
}
