package middleware_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/requestid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"notesflow/pkg/logger"
	"notesflow/pkg/middleware"
)

func newApp(t *testing.T) *fiber.App {
	t.Helper()
	base, err := logger.NewLogger(logger.Development, "debug")
	require.NoError(t, err)

	app := fiber.New()
	app.Use(requestid.New())
	app.Use(middleware.NewLoggerMiddleware(base))
	app.Use(middleware.NewRecoveryMiddleware(func() any { return fiber.Map{"error": "internal"} }))
	return app
}

func TestLoggerMiddleware_PropagatesRequestID(t *testing.T) {
	app := newApp(t)
	app.Get("/", func(c fiber.Ctx) error {
		id, ok := logger.GetRequestID(c.Context())
		if !ok {
			return c.SendStatus(fiber.StatusInternalServerError)
		}
		return c.SendString(id)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(fiber.HeaderXRequestID, "req-123")

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "req-123", string(body))
	assert.Equal(t, "req-123", resp.Header.Get(fiber.HeaderXRequestID))
}

func TestRecoveryMiddleware(t *testing.T) {
	app := newApp(t)
	app.Get("/panic", func(_ fiber.Ctx) error {
		panic("boom")
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/panic", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}

func TestBearerToken(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c fiber.Ctx) error {
		return c.SendString(middleware.BearerToken(c))
	})

	tests := []struct {
		name     string
		header   string
		expected string
	}{
		{"bearer", "Bearer abc.def", "abc.def"},
		{"missing", "", ""},
		{"basic", "Basic xyz", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set(fiber.HeaderAuthorization, tt.header)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			defer resp.Body.Close()

			body, err := io.ReadAll(resp.Body)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, string(body))
		})
	}
}
