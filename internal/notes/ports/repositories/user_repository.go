package repositories

import (
	"context"
	"errors"

	"notesflow/internal/notes/domain/entities"
)

// ErrUserNotFound возвращается, если пользователя нет в справочнике.
var ErrUserNotFound = errors.New("user not found")

// UserRepository определяет интерфейс справочника пользователей.
type UserRepository interface {
	Upsert(ctx context.Context, user *entities.User) error
	GetByID(ctx context.Context, userID string) (*entities.User, error)
}
