// Package cache содержит интерфейсы кэша дашборда.
package cache

import (
	"context"
	"time"

	"notesflow/pkg/workflow"
)

// Cache определяет интерфейс строкового кэша.
type Cache interface {
	// Get возвращает значение по ключу; пустая строка без ошибки означает промах.
	Get(ctx context.Context, key string) (string, error)
	// Set сохраняет значение; ttl == 0 означает время жизни по умолчанию.
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// NoteListCache хранит последний известный список заметок пользователя.
type NoteListCache interface {
	// GetNotes возвращает список и признак попадания.
	GetNotes(ctx context.Context, userID string) ([]*workflow.Note, bool, error)
	SetNotes(ctx context.Context, userID string, notes []*workflow.Note) error
	DeleteNotes(ctx context.Context, userID string) error
}
