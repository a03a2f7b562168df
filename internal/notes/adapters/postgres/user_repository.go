package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"notesflow/internal/notes/domain/entities"
	"notesflow/internal/notes/ports/repositories"
	"notesflow/pkg/logger"
	"notesflow/pkg/workflow"
)

const (
	queryUpsertUser = `INSERT INTO users (id, name, role, parent_id, updated_at) VALUES ($1, $2, $3, $4, NOW()) ` +
		`ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, role = EXCLUDED.role, ` +
		`parent_id = EXCLUDED.parent_id, updated_at = NOW()`
	queryGetUser = `SELECT id, name, role, parent_id FROM users WHERE id = $1`
)

const (
	msgUpsertingUser = "upserting user"
	msgUserNotFound  = "user not found"
	errUpsertUser    = "failed to upsert user"
	errGetUser       = "failed to get user"
)

// UserRepository реализует интерфейс repositories.UserRepository.
type UserRepository struct {
	pool DBTX
}

// NewUserRepository создает новый справочник пользователей.
func NewUserRepository(pool DBTX) repositories.UserRepository {
	return &UserRepository{pool: pool}
}

// Upsert добавляет пользователя или обновляет его имя, роль и админа.
func (r *UserRepository) Upsert(ctx context.Context, user *entities.User) error {
	log := logger.Log(ctx).With(zap.String("method", "UserRepository.Upsert"))
	log.Debug(ctx, msgUpsertingUser, zap.String("userID", user.ID), zap.String("role", string(user.Role)))

	if _, err := r.pool.Exec(ctx, queryUpsertUser, user.ID, user.Name, string(user.Role), user.ParentID); err != nil {
		log.Error(ctx, errUpsertUser, zap.Error(err))
		return fmt.Errorf("%s: %w", errUpsertUser, err)
	}
	return nil
}

// GetByID получает пользователя по ID.
func (r *UserRepository) GetByID(ctx context.Context, userID string) (*entities.User, error) {
	log := logger.Log(ctx).With(zap.String("method", "UserRepository.GetByID"))

	var (
		user entities.User
		role string
	)
	err := r.pool.QueryRow(ctx, queryGetUser, userID).Scan(&user.ID, &user.Name, &role, &user.ParentID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			log.Debug(ctx, msgUserNotFound, zap.String("userID", userID))
			return nil, repositories.ErrUserNotFound
		}
		log.Error(ctx, errGetUser, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", errGetUser, err)
	}
	user.Role = workflow.Role(role)

	return &user, nil
}
