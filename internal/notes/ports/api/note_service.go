// Package api определяет входные порты сервиса заметок.
package api

import (
	"context"

	"notesflow/pkg/workflow"
)

// NoteService определяет сценарии, доступные транспортному слою.
type NoteService interface {
	Authenticate(ctx context.Context, token string) (workflow.Principal, error)
	ListNotes(ctx context.Context, p workflow.Principal) ([]*workflow.Note, error)
	CreateNote(ctx context.Context, p workflow.Principal, draft workflow.Draft) (*workflow.Note, error)
	CompleteNote(ctx context.Context, p workflow.Principal, noteID string) (*workflow.Note, error)
	ReviewNote(ctx context.Context, p workflow.Principal, noteID string, decision workflow.Decision) (*workflow.Note, error)
	DeleteNote(ctx context.Context, p workflow.Principal, noteID string) error
}

// HealthChecker проверяет доступность зависимостей.
type HealthChecker interface {
	Ping(ctx context.Context) error
}
