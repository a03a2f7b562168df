// Package events описывает уведомления об изменениях списка заметок.
package events

import (
	"context"

	"notesflow/internal/dashboard/store"
)

// TypeNotesChanged - тип события об изменении списка.
const TypeNotesChanged = "notes_changed"

// Действия, о которых сообщают события.
const (
	ActionCreated   = "created"
	ActionCompleted = "completed"
	ActionApproved  = "approved"
	ActionRejected  = "rejected"
	ActionDeleted   = "deleted"
)

// ChangeEvent - сообщение, отправляемое подписчикам пользователя.
type ChangeEvent struct {
	Type   string       `json:"type"`
	Action string       `json:"action"`
	NoteID string       `json:"noteId,omitempty"`
	Counts store.Counts `json:"counts"`
}

// Publisher доставляет события подключенным клиентам пользователя.
// Доставка best effort: медленные клиенты могут пропустить событие.
type Publisher interface {
	Publish(ctx context.Context, userID string, event ChangeEvent)
}
