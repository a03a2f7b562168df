// Package rest содержит клиент REST API сервиса заметок.
package rest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/client"
	"go.uber.org/zap"

	"notesflow/internal/dashboard/app"
	"notesflow/internal/dashboard/ports/backend"
	notesv1 "notesflow/pkg/api/notes/v1"
	"notesflow/pkg/logger"
	"notesflow/pkg/workflow"
)

const bearerPrefix = "Bearer "

// Константы сообщений.
const (
	logCallingBackend = "calling notes backend"
	logBackendReplied = "notes backend replied"

	errRequestFailed  = "notes service is unreachable"
	errDecodeResponse = "notes service returned a malformed response"
	errInvalidNote    = "notes service returned an inconsistent note"
)

// Client - реализация backend.NotesBackend поверх fiber client.
type Client struct {
	http *client.Client
}

var _ backend.NotesBackend = (*Client)(nil)

// NewClient создает клиент для сервиса заметок по базовому URL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	c := client.New().SetBaseURL(baseURL)
	if timeout > 0 {
		c.SetTimeout(timeout)
	}
	return &Client{http: c}
}

// ListNotes загружает заметки, видимые владельцу токена.
func (c *Client) ListNotes(ctx context.Context, token string) ([]*workflow.Note, error) {
	var body notesv1.ListNotesResponse
	if err := c.do(ctx, http.MethodGet, notesv1.BasePath, token, nil, &body); err != nil {
		return nil, err
	}

	notes, err := notesv1.ToEntities(body.Notes)
	if err != nil {
		return nil, app.NewError(app.KindServerError, errInvalidNote, err)
	}
	return notes, nil
}

// CreateNote создает заметку.
func (c *Client) CreateNote(ctx context.Context, token string, draft workflow.Draft) (*workflow.Note, error) {
	var body notesv1.Note
	req := notesv1.CreateRequestFromDraft(draft)
	if err := c.do(ctx, http.MethodPost, notesv1.BasePath, token, req, &body); err != nil {
		return nil, err
	}
	return toEntity(body)
}

// CompleteNote отмечает заметку выполненной.
func (c *Client) CompleteNote(ctx context.Context, token, noteID string) (*workflow.Note, error) {
	var body notesv1.Note
	path := notesv1.NotePath(url.PathEscape(noteID)) + notesv1.CompletePath
	if err := c.do(ctx, http.MethodPatch, path, token, nil, &body); err != nil {
		return nil, err
	}
	return toEntity(body)
}

// ReviewNote выносит решение по заметке.
func (c *Client) ReviewNote(ctx context.Context, token, noteID string, status workflow.Status) (*workflow.Note, error) {
	var body notesv1.Note
	path := notesv1.NotePath(url.PathEscape(noteID)) + notesv1.ReviewPath
	req := notesv1.ReviewNoteRequest{Status: string(status)}
	if err := c.do(ctx, http.MethodPatch, path, token, req, &body); err != nil {
		return nil, err
	}
	return toEntity(body)
}

// DeleteNote удаляет заметку.
func (c *Client) DeleteNote(ctx context.Context, token, noteID string) error {
	return c.do(ctx, http.MethodDelete, notesv1.NotePath(url.PathEscape(noteID)), token, nil, nil)
}

func (c *Client) do(ctx context.Context, method, path, token string, in, out any) error {
	log := logger.Log(ctx).With(zap.String("method", method), zap.String("path", path))

	headers := map[string]string{
		fiber.HeaderAccept: fiber.MIMEApplicationJSON,
	}
	if token != "" {
		headers[fiber.HeaderAuthorization] = bearerPrefix + token
	}
	if requestID, ok := logger.GetRequestID(ctx); ok {
		headers[fiber.HeaderXRequestID] = requestID
	}

	cfg := client.Config{Ctx: ctx, Header: headers}
	if in != nil {
		cfg.Body = in
	}

	log.Debug(ctx, logCallingBackend)
	start := time.Now()

	var (
		resp *client.Response
		err  error
	)
	switch method {
	case http.MethodGet:
		resp, err = c.http.Get(path, cfg)
	case http.MethodPost:
		resp, err = c.http.Post(path, cfg)
	case http.MethodPatch:
		resp, err = c.http.Patch(path, cfg)
	case http.MethodDelete:
		resp, err = c.http.Delete(path, cfg)
	default:
		return app.NewError(app.KindServerError, fmt.Sprintf("unsupported method %s", method), nil)
	}
	if err != nil {
		return transportError(ctx, err)
	}
	defer resp.Close()

	status := resp.StatusCode()
	log.Debug(ctx, logBackendReplied, zap.Int("status", status), zap.Duration("latency", time.Since(start)))

	if status < http.StatusOK || status >= http.StatusMultipleChoices {
		return statusError(status, resp.Body())
	}
	if out == nil || status == http.StatusNoContent {
		return nil
	}
	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return app.NewError(app.KindServerError, errDecodeResponse, err)
	}
	return nil
}

func toEntity(n notesv1.Note) (*workflow.Note, error) {
	note, err := n.ToEntity()
	if err != nil {
		return nil, app.NewError(app.KindServerError, errInvalidNote, err)
	}
	return note, nil
}

func transportError(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		err = fmt.Errorf("%w: %w", ctxErr, err)
	}
	return app.NewError(app.KindNetworkError, errRequestFailed, err)
}

// statusError переводит HTTP статус ответа backend в категорию ошибки дашборда.
func statusError(status int, body []byte) error {
	message := http.StatusText(status)
	var payload notesv1.ErrorResponse
	if err := json.Unmarshal(body, &payload); err == nil && payload.Error != "" {
		message = payload.Error
	}

	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return app.NewError(app.KindPermissionDenied, message, workflow.ErrPermissionDenied)
	case status == http.StatusNotFound:
		return app.NewError(app.KindNotFound, message, workflow.ErrNotFound)
	case status == http.StatusConflict:
		return app.NewError(app.KindInvalidState, message, workflow.ErrInvalidState)
	case status == http.StatusBadRequest || status == http.StatusUnprocessableEntity:
		return app.NewError(app.KindValidation, message, workflow.ErrInvalidInput)
	default:
		return app.NewError(app.KindServerError, message, nil)
	}
}
