package cache

import (
	"context"
	"encoding/json"
	"fmt"

	"notesflow/internal/dashboard/ports/cache"
	notesv1 "notesflow/pkg/api/notes/v1"
	"notesflow/pkg/workflow"
)

const notesKeyPrefix = "notesflow:dashboard:notes:"

const (
	errEncodeNotes = "failed to encode notes list"
	errDecodeNotes = "failed to decode cached notes list"
)

// NoteListCache хранит список заметок пользователя в строковом кэше в формате REST API.
type NoteListCache struct {
	cache cache.Cache
}

var _ cache.NoteListCache = (*NoteListCache)(nil)

// NewNoteListCache создает кэш списков поверх строкового кэша.
func NewNoteListCache(c cache.Cache) *NoteListCache {
	return &NoteListCache{cache: c}
}

// NotesKey возвращает ключ списка пользователя.
func NotesKey(userID string) string {
	return notesKeyPrefix + userID
}

// GetNotes возвращает сохраненный список и признак попадания.
func (c *NoteListCache) GetNotes(ctx context.Context, userID string) ([]*workflow.Note, bool, error) {
	raw, err := c.cache.Get(ctx, NotesKey(userID))
	if err != nil {
		return nil, false, err
	}
	if raw == "" {
		return nil, false, nil
	}

	var body notesv1.ListNotesResponse
	if err := json.Unmarshal([]byte(raw), &body); err != nil {
		return nil, false, fmt.Errorf("%s: %w", errDecodeNotes, err)
	}
	notes, err := notesv1.ToEntities(body.Notes)
	if err != nil {
		return nil, false, fmt.Errorf("%s: %w", errDecodeNotes, err)
	}
	return notes, true, nil
}

// SetNotes сохраняет список со временем жизни по умолчанию.
func (c *NoteListCache) SetNotes(ctx context.Context, userID string, notes []*workflow.Note) error {
	raw, err := json.Marshal(notesv1.ListNotesResponse{Notes: notesv1.FromEntities(notes)})
	if err != nil {
		return fmt.Errorf("%s: %w", errEncodeNotes, err)
	}
	return c.cache.Set(ctx, NotesKey(userID), string(raw), 0)
}

// DeleteNotes удаляет список пользователя.
func (c *NoteListCache) DeleteNotes(ctx context.Context, userID string) error {
	return c.cache.Delete(ctx, NotesKey(userID))
}
