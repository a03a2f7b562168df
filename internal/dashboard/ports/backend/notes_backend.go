// Package backend описывает REST API сервиса заметок, которым пользуется дашборд.
package backend

import (
	"context"

	"notesflow/pkg/workflow"
)

// NotesBackend - авторитетный сервис заметок. Каждый вызов выполняется от имени
// владельца bearer токена и является ровно одним сетевым запросом.
type NotesBackend interface {
	ListNotes(ctx context.Context, token string) ([]*workflow.Note, error)
	CreateNote(ctx context.Context, token string, draft workflow.Draft) (*workflow.Note, error)
	CompleteNote(ctx context.Context, token, noteID string) (*workflow.Note, error)
	ReviewNote(ctx context.Context, token, noteID string, status workflow.Status) (*workflow.Note, error)
	DeleteNote(ctx context.Context, token, noteID string) error
}
