// Package postgres provides PostgreSQL implementations of repositories.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"notesflow/internal/notes/ports/repositories"
	"notesflow/pkg/logger"
	"notesflow/pkg/workflow"
)

// Колонки заметки вместе с отображаемыми сведениями о владельце и создателе.
const (
	noteColumns = `n.id::text, n.title, n.content, n.user_id, n.created_by, n.fechadenota, ` +
		`n.is_completed, n.completion_status, n.admin_reviewed_at, n.reviewed_by, n.created_at, ` +
		`u.name, u.role, c.name, c.role`
	noteJoins = ` LEFT JOIN users u ON u.id = n.user_id LEFT JOIN users c ON c.id = n.created_by`
)

const (
	queryInsertNote = `WITH n AS (INSERT INTO notes (title, content, user_id, created_by, fechadenota) ` +
		`VALUES ($1, $2, $3, $4, $5) RETURNING *) SELECT ` + noteColumns + ` FROM n` + noteJoins

	queryGetNote = `SELECT ` + noteColumns + ` FROM notes n` + noteJoins + ` WHERE n.id = $1`

	queryListAll = `SELECT ` + noteColumns + ` FROM notes n` + noteJoins +
		` ORDER BY n.created_at DESC`
	queryListOwn = `SELECT ` + noteColumns + ` FROM notes n` + noteJoins +
		` WHERE n.user_id = $1 ORDER BY n.created_at DESC`
	queryListOwnAndChildren = `SELECT ` + noteColumns + ` FROM notes n` + noteJoins +
		` WHERE n.user_id = $1 OR n.user_id IN (SELECT id FROM users WHERE parent_id = $1) ORDER BY n.created_at DESC`

	queryCompleteNote = `WITH n AS (UPDATE notes SET is_completed = TRUE, completion_status = 'pending' ` +
		`WHERE id = $1 AND user_id = $2 AND is_completed = FALSE AND completion_status = 'none' RETURNING *) ` +
		`SELECT ` + noteColumns + ` FROM n` + noteJoins

	queryReviewNote = `WITH n AS (UPDATE notes SET completion_status = $2, admin_reviewed_at = $3, reviewed_by = $4 ` +
		`WHERE id = $1 AND completion_status = 'pending' RETURNING *) ` +
		`SELECT ` + noteColumns + ` FROM n` + noteJoins

	queryDeleteNote = `DELETE FROM notes WHERE id = $1`
)

// Константы сообщений.
const (
	msgCreatingNote  = "creating note"
	msgNoteCreated   = "note created"
	msgGettingNote   = "getting note"
	msgNoteNotFound  = "note not found"
	msgListingNotes  = "listing notes"
	msgCompleting    = "marking note completed"
	msgReviewing     = "reviewing note"
	msgDeletingNote  = "deleting note"
	msgStaleUpdate   = "conditional update matched no rows"
	errCreateNote    = "failed to create note"
	errGetNote       = "failed to get note"
	errListNotes     = "failed to list notes"
	errScanNote      = "failed to scan note"
	errIterateRows   = "error iterating rows"
	errCompleteNote  = "failed to complete note"
	errReviewNote    = "failed to review note"
	errDeleteNote    = "failed to delete note"
	errDecodeNoteRow = "failed to decode note row"
)

// NoteRepository реализует интерфейс repositories.NoteRepository.
type NoteRepository struct {
	pool DBTX
}

// NewNoteRepository создает новый репозиторий заметок.
func NewNoteRepository(pool DBTX) repositories.NoteRepository {
	return &NoteRepository{pool: pool}
}

// Create сохраняет новую заметку в БД и возвращает ее в сохраненном виде.
func (r *NoteRepository) Create(ctx context.Context, note *workflow.Note) (*workflow.Note, error) {
	log := logger.Log(ctx).With(zap.String("method", "NoteRepository.Create"))
	log.Debug(ctx, msgCreatingNote, zap.String("userID", note.UserID), zap.String("createdBy", note.CreatedBy))

	created, err := scanNote(r.pool.QueryRow(ctx, queryInsertNote,
		note.Title, note.Content, note.UserID, note.CreatedBy, note.Fechadenota))
	if err != nil {
		log.Error(ctx, errCreateNote, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", errCreateNote, err)
	}

	log.Debug(ctx, msgNoteCreated, zap.String("noteID", created.ID))
	return created, nil
}

// GetByID получает заметку по ID.
func (r *NoteRepository) GetByID(ctx context.Context, noteID string) (*workflow.Note, error) {
	log := logger.Log(ctx).With(zap.String("method", "NoteRepository.GetByID"))
	log.Debug(ctx, msgGettingNote, zap.String("noteID", noteID))

	note, err := scanNote(r.pool.QueryRow(ctx, queryGetNote, noteID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			log.Debug(ctx, msgNoteNotFound, zap.String("noteID", noteID))
			return nil, repositories.ErrNoteNotFound
		}
		log.Error(ctx, errGetNote, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", errGetNote, err)
	}

	return note, nil
}

// List получает заметки в пределах области видимости, новые первыми.
func (r *NoteRepository) List(ctx context.Context, filter repositories.NoteFilter) ([]*workflow.Note, error) {
	log := logger.Log(ctx).With(zap.String("method", "NoteRepository.List"))
	log.Debug(ctx, msgListingNotes, zap.String("userID", filter.UserID), zap.Stringer("scope", filter.Scope))

	var (
		rows pgx.Rows
		err  error
	)
	switch filter.Scope {
	case workflow.ScopeAll:
		rows, err = r.pool.Query(ctx, queryListAll)
	case workflow.ScopeOwnAndChildren:
		rows, err = r.pool.Query(ctx, queryListOwnAndChildren, filter.UserID)
	case workflow.ScopeOwn:
		rows, err = r.pool.Query(ctx, queryListOwn, filter.UserID)
	default:
		return []*workflow.Note{}, nil
	}
	if err != nil {
		log.Error(ctx, errListNotes, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", errListNotes, err)
	}
	defer rows.Close()

	notes := make([]*workflow.Note, 0)
	for rows.Next() {
		note, err := scanNote(rows)
		if err != nil {
			log.Error(ctx, errScanNote, zap.Error(err))
			return nil, fmt.Errorf("%s: %w", errScanNote, err)
		}
		notes = append(notes, note)
	}

	if err := rows.Err(); err != nil {
		log.Error(ctx, errIterateRows, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", errIterateRows, err)
	}

	return notes, nil
}

// MarkCompleted переводит заметку владельца из Draft в PendingReview.
// Возвращает ErrStaleTransition, если заметка уже не в Draft или принадлежит другому.
func (r *NoteRepository) MarkCompleted(ctx context.Context, noteID, ownerID string) (*workflow.Note, error) {
	log := logger.Log(ctx).With(zap.String("method", "NoteRepository.MarkCompleted"))
	log.Debug(ctx, msgCompleting, zap.String("noteID", noteID))

	note, err := scanNote(r.pool.QueryRow(ctx, queryCompleteNote, noteID, ownerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			log.Debug(ctx, msgStaleUpdate, zap.String("noteID", noteID))
			return nil, repositories.ErrStaleTransition
		}
		log.Error(ctx, errCompleteNote, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", errCompleteNote, err)
	}

	return note, nil
}

// Review фиксирует решение по заметке в PendingReview.
func (r *NoteRepository) Review(ctx context.Context, noteID string, status workflow.Status, reviewerID string, at time.Time) (*workflow.Note, error) {
	log := logger.Log(ctx).With(zap.String("method", "NoteRepository.Review"))
	log.Debug(ctx, msgReviewing, zap.String("noteID", noteID), zap.String("status", string(status)))

	note, err := scanNote(r.pool.QueryRow(ctx, queryReviewNote, noteID, string(status), at, reviewerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			log.Debug(ctx, msgStaleUpdate, zap.String("noteID", noteID))
			return nil, repositories.ErrStaleTransition
		}
		log.Error(ctx, errReviewNote, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", errReviewNote, err)
	}

	return note, nil
}

// Delete удаляет заметку.
func (r *NoteRepository) Delete(ctx context.Context, noteID string) error {
	log := logger.Log(ctx).With(zap.String("method", "NoteRepository.Delete"))
	log.Debug(ctx, msgDeletingNote, zap.String("noteID", noteID))

	result, err := r.pool.Exec(ctx, queryDeleteNote, noteID)
	if err != nil {
		log.Error(ctx, errDeleteNote, zap.Error(err))
		return fmt.Errorf("%s: %w", errDeleteNote, err)
	}

	if result.RowsAffected() == 0 {
		log.Debug(ctx, msgNoteNotFound, zap.String("noteID", noteID))
		return repositories.ErrNoteNotFound
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanNote(row rowScanner) (*workflow.Note, error) {
	var (
		note                     workflow.Note
		status                   string
		userName, userRole       *string
		creatorName, creatorRole *string
	)

	err := row.Scan(
		&note.ID, &note.Title, &note.Content, &note.UserID, &note.CreatedBy, &note.Fechadenota,
		&note.IsCompleted, &status, &note.AdminReviewedAt, &note.ReviewedBy, &note.CreatedAt,
		&userName, &userRole, &creatorName, &creatorRole,
	)
	if err != nil {
		return nil, err
	}

	note.CompletionStatus, err = workflow.ParseStatus(status)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", errDecodeNoteRow, err)
	}
	note.UserInfo = userInfo(note.UserID, userName, userRole)
	note.CreatorInfo = userInfo(note.CreatedBy, creatorName, creatorRole)

	return &note, nil
}

func userInfo(id string, name, role *string) *workflow.UserInfo {
	if name == nil || role == nil {
		return nil
	}
	return &workflow.UserInfo{ID: id, Name: *name, Role: workflow.Role(*role)}
}
