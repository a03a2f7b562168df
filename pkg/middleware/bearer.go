package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v3"
)

const bearerPrefix = "Bearer "

// BearerToken извлекает токен из заголовка Authorization. Пустая строка, если заголовка нет
// или он не в формате Bearer.
func BearerToken(ctx fiber.Ctx) string {
	header := ctx.Get(fiber.HeaderAuthorization)
	if !strings.HasPrefix(header, bearerPrefix) {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, bearerPrefix))
}
