package http

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"notesflow/internal/notes/app"
	notesv1 "notesflow/pkg/api/notes/v1"
	"notesflow/pkg/logger"
	"notesflow/pkg/workflow"
)

const (
	msgInternalError = "internal server error"
	msgErrorMapped   = "request rejected"
	msgUnexpected    = "unexpected error"
)

// statusFor переводит доменную ошибку в HTTP статус и код ответа.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, app.ErrUnauthorized):
		return fiber.StatusUnauthorized, notesv1.CodeUnauthorized
	case errors.Is(err, workflow.ErrPermissionDenied):
		return fiber.StatusForbidden, notesv1.CodePermissionDenied
	case errors.Is(err, workflow.ErrNotFound):
		return fiber.StatusNotFound, notesv1.CodeNotFound
	case errors.Is(err, workflow.ErrInvalidState):
		return fiber.StatusConflict, notesv1.CodeInvalidState
	case errors.Is(err, workflow.ErrInvalidInput):
		return fiber.StatusBadRequest, notesv1.CodeValidation
	default:
		return fiber.StatusInternalServerError, notesv1.CodeInternal
	}
}

// handleError пишет ответ с ошибкой. Внутренние ошибки не раскрываются клиенту.
func handleError(ctx fiber.Ctx, err error) error {
	requestCtx := ctx.Context()
	status, code := statusFor(err)

	message := err.Error()
	if status == fiber.StatusInternalServerError {
		logger.Log(requestCtx).Error(requestCtx, msgUnexpected, zap.Error(err))
		message = msgInternalError
	} else {
		logger.Log(requestCtx).Debug(requestCtx, msgErrorMapped, zap.String("code", code), zap.Error(err))
	}

	return writeError(ctx, status, code, message)
}

func writeError(ctx fiber.Ctx, status int, code, message string) error {
	if err := ctx.Status(status).JSON(notesv1.ErrorResponse{Error: message, Code: code}); err != nil {
		return fmt.Errorf("failed to send error response: %w", err)
	}
	return nil
}

// validationMessage собирает читаемое сообщение из ошибок validator.
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err.Error()
	}
	fe := verrs[0]
	if fe.Param() != "" {
		return fmt.Sprintf("%s: failed %s=%s", fe.Field(), fe.Tag(), fe.Param())
	}
	return fmt.Sprintf("%s: failed %s", fe.Field(), fe.Tag())
}
