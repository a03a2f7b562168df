package http

import (
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/limiter"
	"github.com/gofiber/fiber/v3/middleware/requestid"

	"notesflow/internal/dashboard/app"
	"notesflow/pkg/logger"
	"notesflow/pkg/middleware"
)

// Пути HTTP API дашборда.
const (
	BasePath    = "/api/v1/dashboard"
	HealthPath  = "/health"
	RefreshPath = "/refresh"
	NotesPath   = "/notes"
)

const (
	errRouteNotFound  = "route not found"
	errTooManyRequest = "too many requests, try again later"
)

// RouterConfig - настройки middleware браузерного API.
type RouterConfig struct {
	AllowOrigins  []string
	RateLimit     int
	RateLimitSpan time.Duration
}

// SetupRouter настраивает маршрутизацию HTTP API дашборда.
func SetupRouter(fiberApp *fiber.App, log *logger.Logger, cfg RouterConfig, w Workflow, tokens TokenValidator) {
	handler := NewHandler(w)

	// Middleware для всех запросов.
	fiberApp.Use(requestid.New())
	fiberApp.Use(cors.New(cors.Config{
		AllowOrigins:  cfg.AllowOrigins,
		AllowMethods:  []string{fiber.MethodGet, fiber.MethodPost, fiber.MethodDelete, fiber.MethodOptions},
		AllowHeaders:  []string{fiber.HeaderOrigin, fiber.HeaderContentType, fiber.HeaderAccept, fiber.HeaderAuthorization, fiber.HeaderXRequestID},
		ExposeHeaders: []string{fiber.HeaderXRequestID},
	}))
	fiberApp.Use(middleware.NewLoggerMiddleware(log))
	fiberApp.Use(middleware.NewRecoveryMiddleware(func() any {
		return MutationResponse{OK: false, Error: &ErrorBody{Kind: app.KindServerError, Message: msgInternalError}}
	}))
	if cfg.RateLimit > 0 {
		fiberApp.Use(limiter.New(limiter.Config{
			Max:        cfg.RateLimit,
			Expiration: cfg.RateLimitSpan,
			KeyGenerator: func(c fiber.Ctx) string {
				return c.IP()
			},
			LimitReached: func(c fiber.Ctx) error {
				return writeFailure(c, fiber.StatusTooManyRequests, app.KindBusy, errTooManyRequest)
			},
			Next: func(c fiber.Ctx) bool {
				return c.Path() == HealthPath || c.Method() == fiber.MethodOptions
			},
		}))
	}

	fiberApp.Get(HealthPath, handler.Health)

	dashboard := fiberApp.Group(BasePath, NewAuthMiddleware(tokens))
	dashboard.Get("/", handler.View)
	dashboard.Post(RefreshPath, handler.Refresh)
	dashboard.Post(NotesPath, handler.CreateNote)
	dashboard.Post(NotesPath+"/:"+paramNoteID+"/complete", handler.CompleteNote)
	dashboard.Post(NotesPath+"/:"+paramNoteID+"/review", handler.ReviewNote)
	dashboard.Delete(NotesPath+"/:"+paramNoteID, handler.DeleteNote)

	// Обработчик для несуществующих маршрутов.
	fiberApp.Use(func(c fiber.Ctx) error {
		return writeFailure(c, fiber.StatusNotFound, app.KindNotFound, errRouteNotFound)
	})
}
