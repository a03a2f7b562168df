// Package services defines service interfaces for the notes service.
package services

import (
	"context"

	"notesflow/pkg/workflow"
)

// TokenService определяет интерфейс для проверки bearer токенов.
type TokenService interface {
	ValidateAccessToken(ctx context.Context, token string) (workflow.Principal, error)
}
