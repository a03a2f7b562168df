// Package http содержит REST API сервиса заметок.
package http

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"notesflow/internal/notes/ports/api"
	notesv1 "notesflow/pkg/api/notes/v1"
	"notesflow/pkg/logger"
	"notesflow/pkg/workflow"
)

// Константы ошибок и сообщений для логирования.
const (
	LogHandlerListNotes    = "handling list notes request"
	LogHandlerCreateNote   = "handling create note request"
	LogHandlerCompleteNote = "handling complete note request"
	LogHandlerReviewNote   = "handling review note request"
	LogHandlerDeleteNote   = "handling delete note request"
	LogHealthCheckFailed   = "health check failed"

	ErrMsgInvalidRequestBody = "invalid request body"
	ErrMsgNoPrincipal        = "caller identity missing"
	ErrMsgUnavailable        = "service unavailable"

	paramNoteID = "note_id"
)

// Handler обработчик HTTP-запросов для работы с заметками.
type Handler struct {
	service  api.NoteService
	health   api.HealthChecker
	validate *validator.Validate
}

// NewHandler создает новый экземпляр обработчика заметок.
func NewHandler(service api.NoteService, health api.HealthChecker) *Handler {
	return &Handler{
		service:  service,
		health:   health,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// ListNotes возвращает заметки в области видимости вызывающего.
func (h *Handler) ListNotes(ctx fiber.Ctx) error {
	requestCtx := ctx.Context()
	logger.Log(requestCtx).Debug(requestCtx, LogHandlerListNotes)

	principal, ok := principalFrom(ctx)
	if !ok {
		return writeError(ctx, fiber.StatusUnauthorized, notesv1.CodeUnauthorized, ErrMsgNoPrincipal)
	}

	notes, err := h.service.ListNotes(requestCtx, principal)
	if err != nil {
		return handleError(ctx, err)
	}

	return sendJSON(ctx, fiber.StatusOK, notesv1.ListNotesResponse{Notes: notesv1.FromEntities(notes)})
}

// CreateNote создает заметку.
func (h *Handler) CreateNote(ctx fiber.Ctx) error {
	requestCtx := ctx.Context()
	log := logger.Log(requestCtx).With(zap.String("handler", "Handler.CreateNote"))
	log.Debug(requestCtx, LogHandlerCreateNote)

	principal, ok := principalFrom(ctx)
	if !ok {
		return writeError(ctx, fiber.StatusUnauthorized, notesv1.CodeUnauthorized, ErrMsgNoPrincipal)
	}

	var req notesv1.CreateNoteRequest
	if err := ctx.Bind().Body(&req); err != nil {
		log.Debug(requestCtx, ErrMsgInvalidRequestBody, zap.Error(err))
		return writeError(ctx, fiber.StatusBadRequest, notesv1.CodeValidation, ErrMsgInvalidRequestBody)
	}
	if err := h.validate.Struct(req); err != nil {
		return writeError(ctx, fiber.StatusBadRequest, notesv1.CodeValidation, validationMessage(err))
	}

	draft, err := req.Draft()
	if err != nil {
		return handleError(ctx, err)
	}

	note, err := h.service.CreateNote(requestCtx, principal, draft)
	if err != nil {
		return handleError(ctx, err)
	}

	return sendJSON(ctx, fiber.StatusCreated, notesv1.FromEntity(note))
}

// CompleteNote отмечает заметку выполненной.
func (h *Handler) CompleteNote(ctx fiber.Ctx) error {
	requestCtx := ctx.Context()
	noteID := ctx.Params(paramNoteID)
	logger.Log(requestCtx).Debug(requestCtx, LogHandlerCompleteNote, zap.String("noteID", noteID))

	principal, ok := principalFrom(ctx)
	if !ok {
		return writeError(ctx, fiber.StatusUnauthorized, notesv1.CodeUnauthorized, ErrMsgNoPrincipal)
	}

	note, err := h.service.CompleteNote(requestCtx, principal, noteID)
	if err != nil {
		return handleError(ctx, err)
	}

	return sendJSON(ctx, fiber.StatusOK, notesv1.FromEntity(note))
}

// ReviewNote фиксирует решение проверяющего.
func (h *Handler) ReviewNote(ctx fiber.Ctx) error {
	requestCtx := ctx.Context()
	noteID := ctx.Params(paramNoteID)
	log := logger.Log(requestCtx).With(zap.String("handler", "Handler.ReviewNote"))
	log.Debug(requestCtx, LogHandlerReviewNote, zap.String("noteID", noteID))

	principal, ok := principalFrom(ctx)
	if !ok {
		return writeError(ctx, fiber.StatusUnauthorized, notesv1.CodeUnauthorized, ErrMsgNoPrincipal)
	}

	var req notesv1.ReviewNoteRequest
	if err := ctx.Bind().Body(&req); err != nil {
		log.Debug(requestCtx, ErrMsgInvalidRequestBody, zap.Error(err))
		return writeError(ctx, fiber.StatusBadRequest, notesv1.CodeValidation, ErrMsgInvalidRequestBody)
	}
	if err := h.validate.Struct(req); err != nil {
		return writeError(ctx, fiber.StatusBadRequest, notesv1.CodeValidation, validationMessage(err))
	}

	decision, err := workflow.ParseDecision(req.Status)
	if err != nil {
		return handleError(ctx, err)
	}

	note, err := h.service.ReviewNote(requestCtx, principal, noteID, decision)
	if err != nil {
		return handleError(ctx, err)
	}

	return sendJSON(ctx, fiber.StatusOK, notesv1.FromEntity(note))
}

// DeleteNote удаляет заметку.
func (h *Handler) DeleteNote(ctx fiber.Ctx) error {
	requestCtx := ctx.Context()
	noteID := ctx.Params(paramNoteID)
	logger.Log(requestCtx).Debug(requestCtx, LogHandlerDeleteNote, zap.String("noteID", noteID))

	principal, ok := principalFrom(ctx)
	if !ok {
		return writeError(ctx, fiber.StatusUnauthorized, notesv1.CodeUnauthorized, ErrMsgNoPrincipal)
	}

	if err := h.service.DeleteNote(requestCtx, principal, noteID); err != nil {
		return handleError(ctx, err)
	}

	if err := ctx.SendStatus(fiber.StatusNoContent); err != nil {
		return fmt.Errorf("error sending response: %w", err)
	}
	return nil
}

// Health проверяет доступность базы данных.
func (h *Handler) Health(ctx fiber.Ctx) error {
	requestCtx := ctx.Context()

	if err := h.health.Ping(requestCtx); err != nil {
		logger.Log(requestCtx).Warn(requestCtx, LogHealthCheckFailed, zap.Error(err))
		return writeError(ctx, fiber.StatusServiceUnavailable, notesv1.CodeInternal, ErrMsgUnavailable)
	}

	return sendJSON(ctx, fiber.StatusOK, notesv1.HealthResponse{Status: "ok"})
}

func sendJSON(ctx fiber.Ctx, status int, body any) error {
	if err := ctx.Status(status).JSON(body); err != nil {
		return fmt.Errorf("error sending response: %w", err)
	}
	return nil
}
