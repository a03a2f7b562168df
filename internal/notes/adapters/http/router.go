package http

import (
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/requestid"

	"notesflow/internal/notes/ports/api"
	notesv1 "notesflow/pkg/api/notes/v1"
	"notesflow/pkg/logger"
	"notesflow/pkg/middleware"
)

const errRouteNotFound = "route not found"

// SetupRouter настраивает маршрутизацию REST API сервиса заметок.
func SetupRouter(app *fiber.App, log *logger.Logger, service api.NoteService, health api.HealthChecker) {
	handler := NewHandler(service, health)

	// Middleware для всех запросов.
	app.Use(requestid.New())
	app.Use(middleware.NewLoggerMiddleware(log))
	app.Use(middleware.NewRecoveryMiddleware(func() any {
		return notesv1.ErrorResponse{Error: msgInternalError, Code: notesv1.CodeInternal}
	}))

	app.Get(notesv1.HealthPath, handler.Health)

	notes := app.Group(notesv1.BasePath, NewAuthMiddleware(service))
	notes.Get("/", handler.ListNotes)
	notes.Post("/", handler.CreateNote)
	notes.Patch("/:"+paramNoteID+notesv1.CompletePath, handler.CompleteNote)
	notes.Patch("/:"+paramNoteID+notesv1.ReviewPath, handler.ReviewNote)
	notes.Delete("/:"+paramNoteID, handler.DeleteNote)

	// Обработчик для несуществующих маршрутов.
	app.Use(func(c fiber.Ctx) error {
		return writeError(c, fiber.StatusNotFound, notesv1.CodeNotFound, errRouteNotFound)
	})
}
