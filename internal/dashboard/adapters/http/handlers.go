// Package http содержит HTTP API дашборда заметок.
package http

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"notesflow/internal/dashboard/app"
	"notesflow/internal/dashboard/store"
	notesv1 "notesflow/pkg/api/notes/v1"
	"notesflow/pkg/logger"
	"notesflow/pkg/workflow"
)

// Константы ошибок и сообщений для логирования.
const (
	LogHandlerView     = "handling dashboard view request"
	LogHandlerRefresh  = "handling dashboard refresh request"
	LogHandlerCreate   = "handling create note request"
	LogHandlerComplete = "handling complete note request"
	LogHandlerReview   = "handling review note request"
	LogHandlerDelete   = "handling delete note request"

	ErrMsgInvalidRequestBody = "invalid request body"
	ErrMsgNoCaller           = "caller identity missing"

	paramNoteID = "note_id"
)

// Workflow - сценарии дашборда, которые вызывают обработчики.
type Workflow interface {
	Store(ctx context.Context, caller app.Caller) (*store.Store, error)
	Refresh(ctx context.Context, caller app.Caller, force bool) (*store.Store, error)
	Create(ctx context.Context, caller app.Caller, draft workflow.Draft) (*workflow.Note, error)
	Complete(ctx context.Context, caller app.Caller, noteID string) (*workflow.Note, error)
	Review(ctx context.Context, caller app.Caller, noteID string, decision workflow.Decision) (*workflow.Note, error)
	Delete(ctx context.Context, caller app.Caller, noteID string) error
}

// Handler обработчик HTTP-запросов дашборда.
type Handler struct {
	workflow Workflow
	validate *validator.Validate
}

// NewHandler создает новый экземпляр обработчика.
func NewHandler(w Workflow) *Handler {
	return &Handler{
		workflow: w,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// View возвращает модель экрана, загружая список при первом обращении.
func (h *Handler) View(ctx fiber.Ctx) error {
	requestCtx := ctx.Context()
	logger.Log(requestCtx).Debug(requestCtx, LogHandlerView)

	caller, ok := callerFrom(ctx)
	if !ok {
		return writeFailure(ctx, fiber.StatusUnauthorized, app.KindPermissionDenied, ErrMsgNoCaller)
	}

	st, err := h.workflow.Store(requestCtx, caller)
	if err != nil {
		return handleError(ctx, err)
	}

	return sendJSON(ctx, fiber.StatusOK, newViewResponse(caller.Principal, st))
}

// Refresh принудительно перезагружает список из сервиса заметок.
func (h *Handler) Refresh(ctx fiber.Ctx) error {
	requestCtx := ctx.Context()
	logger.Log(requestCtx).Debug(requestCtx, LogHandlerRefresh)

	caller, ok := callerFrom(ctx)
	if !ok {
		return writeFailure(ctx, fiber.StatusUnauthorized, app.KindPermissionDenied, ErrMsgNoCaller)
	}

	st, err := h.workflow.Refresh(requestCtx, caller, true)
	if err != nil {
		return handleError(ctx, err)
	}

	return sendJSON(ctx, fiber.StatusOK, newViewResponse(caller.Principal, st))
}

// CreateNote принимает отправку формы создания заметки.
func (h *Handler) CreateNote(ctx fiber.Ctx) error {
	requestCtx := ctx.Context()
	log := logger.Log(requestCtx).With(zap.String("handler", "Handler.CreateNote"))
	log.Debug(requestCtx, LogHandlerCreate)

	caller, ok := callerFrom(ctx)
	if !ok {
		return writeFailure(ctx, fiber.StatusUnauthorized, app.KindPermissionDenied, ErrMsgNoCaller)
	}

	var req notesv1.CreateNoteRequest
	if err := ctx.Bind().Body(&req); err != nil {
		log.Debug(requestCtx, ErrMsgInvalidRequestBody, zap.Error(err))
		return writeFailure(ctx, fiber.StatusBadRequest, app.KindValidation, ErrMsgInvalidRequestBody)
	}
	if err := h.validate.Struct(req); err != nil {
		return writeFailure(ctx, fiber.StatusBadRequest, app.KindValidation, validationMessage(err))
	}

	draft, err := req.Draft()
	if err != nil {
		return handleError(ctx, err)
	}

	note, err := h.workflow.Create(requestCtx, caller, draft)
	if err != nil {
		return handleError(ctx, err)
	}

	return sendNote(ctx, fiber.StatusCreated, caller.Principal, note)
}

// CompleteNote отмечает заметку выполненной.
func (h *Handler) CompleteNote(ctx fiber.Ctx) error {
	requestCtx := ctx.Context()
	noteID := ctx.Params(paramNoteID)
	logger.Log(requestCtx).Debug(requestCtx, LogHandlerComplete, zap.String("noteID", noteID))

	caller, ok := callerFrom(ctx)
	if !ok {
		return writeFailure(ctx, fiber.StatusUnauthorized, app.KindPermissionDenied, ErrMsgNoCaller)
	}

	note, err := h.workflow.Complete(requestCtx, caller, noteID)
	if err != nil {
		return handleError(ctx, err)
	}

	return sendNote(ctx, fiber.StatusOK, caller.Principal, note)
}

// ReviewNote одобряет или отклоняет заметку.
func (h *Handler) ReviewNote(ctx fiber.Ctx) error {
	requestCtx := ctx.Context()
	noteID := ctx.Params(paramNoteID)
	log := logger.Log(requestCtx).With(zap.String("handler", "Handler.ReviewNote"))
	log.Debug(requestCtx, LogHandlerReview, zap.String("noteID", noteID))

	caller, ok := callerFrom(ctx)
	if !ok {
		return writeFailure(ctx, fiber.StatusUnauthorized, app.KindPermissionDenied, ErrMsgNoCaller)
	}

	var req ReviewRequest
	if err := ctx.Bind().Body(&req); err != nil {
		log.Debug(requestCtx, ErrMsgInvalidRequestBody, zap.Error(err))
		return writeFailure(ctx, fiber.StatusBadRequest, app.KindValidation, ErrMsgInvalidRequestBody)
	}
	if err := h.validate.Struct(req); err != nil {
		return writeFailure(ctx, fiber.StatusBadRequest, app.KindValidation, validationMessage(err))
	}

	decision, err := workflow.ParseDecision(req.Decision)
	if err != nil {
		return handleError(ctx, err)
	}

	note, err := h.workflow.Review(requestCtx, caller, noteID, decision)
	if err != nil {
		return handleError(ctx, err)
	}

	return sendNote(ctx, fiber.StatusOK, caller.Principal, note)
}

// DeleteNote удаляет заметку.
func (h *Handler) DeleteNote(ctx fiber.Ctx) error {
	requestCtx := ctx.Context()
	noteID := ctx.Params(paramNoteID)
	logger.Log(requestCtx).Debug(requestCtx, LogHandlerDelete, zap.String("noteID", noteID))

	caller, ok := callerFrom(ctx)
	if !ok {
		return writeFailure(ctx, fiber.StatusUnauthorized, app.KindPermissionDenied, ErrMsgNoCaller)
	}

	if err := h.workflow.Delete(requestCtx, caller, noteID); err != nil {
		return handleError(ctx, err)
	}

	return sendJSON(ctx, fiber.StatusOK, MutationResponse{OK: true})
}

// Health сообщает, что процесс дашборда жив.
func (h *Handler) Health(ctx fiber.Ctx) error {
	return sendJSON(ctx, fiber.StatusOK, HealthResponse{Status: "ok"})
}

func sendNote(ctx fiber.Ctx, status int, p workflow.Principal, n *workflow.Note) error {
	view := newNoteView(p, n)
	return sendJSON(ctx, status, MutationResponse{OK: true, Note: &view})
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
