package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"notesflow/internal/notes/ports/repositories"
)

// DBTX - подмножество pgxpool.Pool, которое используют репозитории.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// RepositoryFactory создает репозитории для работы с базой данных.
type RepositoryFactory struct {
	pool DBTX
}

// NewRepositoryFactory создает новую фабрику репозиториев.
func NewRepositoryFactory(pool DBTX) *RepositoryFactory {
	return &RepositoryFactory{pool: pool}
}

// NoteRepository возвращает репозиторий для работы с заметками.
func (f *RepositoryFactory) NoteRepository() repositories.NoteRepository {
	return NewNoteRepository(f.pool)
}

// UserRepository возвращает справочник пользователей.
func (f *RepositoryFactory) UserRepository() repositories.UserRepository {
	return NewUserRepository(f.pool)
}
