// Package app implements application business logic for the notes service.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"notesflow/internal/notes/domain/entities"
	"notesflow/internal/notes/ports/repositories"
	"notesflow/internal/notes/ports/services"
	"notesflow/pkg/logger"
	"notesflow/pkg/workflow"
)

// ErrUnauthorized возвращается при отсутствующем или недействительном токене.
var ErrUnauthorized = errors.New("unauthorized access")

// Константы сообщений.
const (
	msgAuthenticated    = "caller authenticated"
	msgSyncUserFailed   = "failed to sync user directory"
	msgNoteCreated      = "note created"
	msgNoteCompleted    = "note completed"
	msgNoteReviewed     = "note reviewed"
	msgNoteDeleted      = "note deleted"
	msgNoteOutsideScope = "note outside caller scope"

	errSyncUser      = "failed to sync user"
	errListNotes     = "failed to list notes"
	errCreateNote    = "failed to create note"
	errLoadNote      = "failed to load note"
	errLoadTarget    = "failed to load target user"
	errLoadOwner     = "failed to load note owner"
	errCompleteNote  = "failed to complete note"
	errReviewNote    = "failed to review note"
	errDeleteNote    = "failed to delete note"
	errTargetUnknown = "target user is unknown"
	errTargetForeign = "admins may create notes only for their own users"
)

// NoteUseCase представляет собой бизнес-логику работы с заметками.
// Все переходы проверяются здесь независимо от проверок клиента.
type NoteUseCase struct {
	noteRepo     repositories.NoteRepository
	userRepo     repositories.UserRepository
	tokenService services.TokenService
	now          func() time.Time
}

// NewNoteUseCase создает новый экземпляр NoteUseCase.
func NewNoteUseCase(
	noteRepo repositories.NoteRepository,
	userRepo repositories.UserRepository,
	tokenService services.TokenService,
) *NoteUseCase {
	return &NoteUseCase{
		noteRepo:     noteRepo,
		userRepo:     userRepo,
		tokenService: tokenService,
		now:          time.Now,
	}
}

// WithClock подменяет источник времени проверки.
func (uc *NoteUseCase) WithClock(now func() time.Time) *NoteUseCase {
	uc.now = now
	return uc
}

// Authenticate проверяет токен и синхронизирует справочник пользователей с его утверждениями.
func (uc *NoteUseCase) Authenticate(ctx context.Context, token string) (workflow.Principal, error) {
	principal, err := uc.tokenService.ValidateAccessToken(ctx, token)
	if err != nil {
		return workflow.Principal{}, fmt.Errorf("%w: %w", ErrUnauthorized, err)
	}

	if err := uc.userRepo.Upsert(ctx, entities.NewUserFromPrincipal(principal)); err != nil {
		logger.Log(ctx).Error(ctx, msgSyncUserFailed, zap.String("userID", principal.UserID), zap.Error(err))
		return workflow.Principal{}, fmt.Errorf("%s: %w", errSyncUser, err)
	}

	logger.Log(ctx).Debug(ctx, msgAuthenticated,
		zap.String("userID", principal.UserID),
		zap.String("role", string(principal.Role)))
	return principal, nil
}

// ListNotes возвращает заметки в области видимости вызывающего, новые первыми.
func (uc *NoteUseCase) ListNotes(ctx context.Context, p workflow.Principal) ([]*workflow.Note, error) {
	notes, err := uc.noteRepo.List(ctx, repositories.NoteFilter{
		Scope:  workflow.ListScope(p.Role),
		UserID: p.UserID,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", errListNotes, err)
	}
	return notes, nil
}

// CreateNote создает заметку в состоянии Draft для вызывающего или за другого пользователя.
func (uc *NoteUseCase) CreateNote(ctx context.Context, p workflow.Principal, draft workflow.Draft) (*workflow.Note, error) {
	draft, err := draft.Normalize()
	if err != nil {
		return nil, err
	}
	if err := workflow.CheckCreate(p, draft); err != nil {
		return nil, err
	}

	owner := draft.Owner(p)
	if draft.OnBehalf(p) {
		if err := uc.checkTarget(ctx, p, owner); err != nil {
			return nil, err
		}
	}

	note, err := uc.noteRepo.Create(ctx, &workflow.Note{
		Title:            draft.Title,
		Content:          draft.Content,
		UserID:           owner,
		CreatedBy:        p.UserID,
		Fechadenota:      draft.Fechadenota,
		CompletionStatus: workflow.StatusNone,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", errCreateNote, err)
	}

	logger.Log(ctx).Info(ctx, msgNoteCreated,
		zap.String("noteID", note.ID),
		zap.String("userID", owner),
		zap.String("createdBy", p.UserID))
	return note, nil
}

// CompleteNote переводит заметку владельца из Draft в PendingReview.
func (uc *NoteUseCase) CompleteNote(ctx context.Context, p workflow.Principal, noteID string) (*workflow.Note, error) {
	note, err := uc.loadVisible(ctx, p, noteID)
	if err != nil {
		return nil, err
	}
	if _, err := workflow.Complete(p, note); err != nil {
		return nil, err
	}

	updated, err := uc.noteRepo.MarkCompleted(ctx, note.ID, p.UserID)
	if err != nil {
		return nil, mapTransitionError(errCompleteNote, err)
	}

	logger.Log(ctx).Info(ctx, msgNoteCompleted, zap.String("noteID", note.ID))
	return updated, nil
}

// ReviewNote выносит решение по заметке в PendingReview.
func (uc *NoteUseCase) ReviewNote(ctx context.Context, p workflow.Principal, noteID string, decision workflow.Decision) (*workflow.Note, error) {
	note, err := uc.loadVisible(ctx, p, noteID)
	if err != nil {
		return nil, err
	}

	reviewed, err := workflow.Review(p, note, decision, uc.now())
	if err != nil {
		return nil, err
	}

	updated, err := uc.noteRepo.Review(ctx, note.ID, reviewed.CompletionStatus, p.UserID, *reviewed.AdminReviewedAt)
	if err != nil {
		return nil, mapTransitionError(errReviewNote, err)
	}

	logger.Log(ctx).Info(ctx, msgNoteReviewed,
		zap.String("noteID", note.ID),
		zap.String("status", string(updated.CompletionStatus)),
		zap.String("reviewedBy", p.UserID))
	return updated, nil
}

// DeleteNote удаляет заметку в любом состоянии.
func (uc *NoteUseCase) DeleteNote(ctx context.Context, p workflow.Principal, noteID string) error {
	if err := workflow.CheckDelete(p, nil); err != nil {
		return err
	}

	note, err := uc.loadVisible(ctx, p, noteID)
	if err != nil {
		return err
	}

	if err := uc.noteRepo.Delete(ctx, note.ID); err != nil {
		return mapTransitionError(errDeleteNote, err)
	}

	logger.Log(ctx).Info(ctx, msgNoteDeleted, zap.String("noteID", note.ID), zap.String("deletedBy", p.UserID))
	return nil
}

// loadVisible загружает заметку; заметки вне области видимости неотличимы от отсутствующих.
func (uc *NoteUseCase) loadVisible(ctx context.Context, p workflow.Principal, noteID string) (*workflow.Note, error) {
	if _, err := uuid.Parse(noteID); err != nil {
		return nil, fmt.Errorf("%w: %s", workflow.ErrNotFound, noteID)
	}

	note, err := uc.noteRepo.GetByID(ctx, noteID)
	if err != nil {
		if errors.Is(err, repositories.ErrNoteNotFound) {
			return nil, fmt.Errorf("%w: %s", workflow.ErrNotFound, noteID)
		}
		return nil, fmt.Errorf("%s: %w", errLoadNote, err)
	}

	visible, err := uc.visible(ctx, p, note)
	if err != nil {
		return nil, err
	}
	if !visible {
		logger.Log(ctx).Debug(ctx, msgNoteOutsideScope, zap.String("noteID", noteID), zap.String("userID", p.UserID))
		return nil, fmt.Errorf("%w: %s", workflow.ErrNotFound, noteID)
	}
	return note, nil
}

func (uc *NoteUseCase) visible(ctx context.Context, p workflow.Principal, note *workflow.Note) (bool, error) {
	switch workflow.ListScope(p.Role) {
	case workflow.ScopeAll:
		return true, nil
	case workflow.ScopeOwnAndChildren:
		if note.UserID == p.UserID {
			return true, nil
		}
		owner, err := uc.userRepo.GetByID(ctx, note.UserID)
		if err != nil {
			if errors.Is(err, repositories.ErrUserNotFound) {
				return false, nil
			}
			return false, fmt.Errorf("%s: %w", errLoadOwner, err)
		}
		return owner.IsChildOf(p.UserID), nil
	case workflow.ScopeOwn:
		return note.UserID == p.UserID, nil
	default:
		return false, nil
	}
}

func (uc *NoteUseCase) checkTarget(ctx context.Context, p workflow.Principal, targetID string) error {
	target, err := uc.userRepo.GetByID(ctx, targetID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return fmt.Errorf("%w: %s %s", workflow.ErrNotFound, errTargetUnknown, targetID)
		}
		return fmt.Errorf("%s: %w", errLoadTarget, err)
	}
	if p.Role == workflow.RoleAdmin && !target.IsChildOf(p.UserID) {
		return fmt.Errorf("%w: %s", workflow.ErrPermissionDenied, errTargetForeign)
	}
	return nil
}

func mapTransitionError(op string, err error) error {
	switch {
	case errors.Is(err, repositories.ErrStaleTransition):
		return fmt.Errorf("%w: %s", workflow.ErrInvalidState, err.Error())
	case errors.Is(err, repositories.ErrNoteNotFound):
		return fmt.Errorf("%w: %s", workflow.ErrNotFound, err.Error())
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}
