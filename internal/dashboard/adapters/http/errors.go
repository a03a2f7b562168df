package http

import (
	"fmt"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"notesflow/internal/dashboard/app"
	"notesflow/pkg/logger"
)

const (
	msgInternalError = "internal server error"
	msgActionFailed  = "dashboard action failed"
)

// statusForKind переводит категорию ошибки в HTTP статус.
func statusForKind(kind app.Kind) int {
	switch kind {
	case app.KindPermissionDenied:
		return fiber.StatusForbidden
	case app.KindInvalidState, app.KindBusy:
		return fiber.StatusConflict
	case app.KindNotFound:
		return fiber.StatusNotFound
	case app.KindValidation:
		return fiber.StatusBadRequest
	case app.KindNetworkError, app.KindServerError:
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}

// handleError пишет {ok:false, error:{kind, message}} с подходящим статусом.
func handleError(ctx fiber.Ctx, err error) error {
	requestCtx := ctx.Context()
	appErr := app.AsError(err)

	logger.Log(requestCtx).Debug(requestCtx, msgActionFailed,
		zap.String("kind", string(appErr.Kind)),
		zap.Error(err))

	return writeFailure(ctx, statusForKind(appErr.Kind), appErr.Kind, appErr.Message)
}

func writeFailure(ctx fiber.Ctx, status int, kind app.Kind, message string) error {
	body := MutationResponse{OK: false, Error: &ErrorBody{Kind: kind, Message: message}}
	return sendJSON(ctx, status, body)
}

func sendJSON(ctx fiber.Ctx, status int, body any) error {
	if err := ctx.Status(status).JSON(body); err != nil {
		return fmt.Errorf("error sending response: %w", err)
	}
	return nil
}
