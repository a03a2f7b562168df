// Package repositories defines repository interfaces for the notes service.
package repositories

import (
	"context"
	"errors"
	"time"

	"notesflow/pkg/workflow"
)

// Ошибки хранилища.
var (
	// ErrNoteNotFound возвращается, если заметки нет.
	ErrNoteNotFound = errors.New("note not found")
	// ErrStaleTransition возвращается, если условное обновление не затронуло ни одной строки.
	ErrStaleTransition = errors.New("note changed concurrently")
)

// NoteFilter ограничивает выборку списка заметок.
type NoteFilter struct {
	Scope workflow.Scope
	// UserID - вызывающий; для ScopeOwnAndChildren также админ, чьи дети попадают в выборку.
	UserID string
}

// NoteRepository определяет интерфейс для работы с репозиторием заметок.
type NoteRepository interface {
	Create(ctx context.Context, note *workflow.Note) (*workflow.Note, error)
	GetByID(ctx context.Context, noteID string) (*workflow.Note, error)
	List(ctx context.Context, filter NoteFilter) ([]*workflow.Note, error)
	MarkCompleted(ctx context.Context, noteID, ownerID string) (*workflow.Note, error)
	Review(ctx context.Context, noteID string, status workflow.Status, reviewerID string, at time.Time) (*workflow.Note, error)
	Delete(ctx context.Context, noteID string) error
}
