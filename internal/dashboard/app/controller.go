// Package app реализует сценарии дашборда: загрузку списка и переходы заметок.
package app

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"notesflow/internal/dashboard/ports/backend"
	"notesflow/internal/dashboard/ports/cache"
	"notesflow/internal/dashboard/ports/events"
	"notesflow/internal/dashboard/resilience"
	"notesflow/internal/dashboard/store"
	"notesflow/pkg/logger"
	"notesflow/pkg/workflow"
)

const (
	breakerName           = "notes-backend"
	defaultRequestTimeout = 5 * time.Second
	createGuardPrefix     = "create:"
)

// Константы сообщений.
const (
	msgListLoaded       = "notes list loaded"
	msgListFromCache    = "notes list restored from cache"
	msgCacheReadFailed  = "failed to read notes cache"
	msgCacheWriteFailed = "failed to write notes cache"
	msgRejectedLocally  = "action rejected before calling backend"
	msgBackendFailed    = "notes backend call failed"
	msgActionDone       = "note action completed"
	msgPropagated       = "note change applied to another session"
	msgInvalidated      = "notes list of affected user invalidated"
	msgCacheDropFailed  = "failed to drop notes cache"
	msgReloadingCached  = "cached list rejected the action, reloading from backend"
	msgSessionsExpired  = "idle sessions expired"
	msgSessionDropped   = "session dropped"

	errNoteNotLoaded = "note is not in the current list"
)

// Caller - вызывающий пользователь и его токен для backend.
type Caller struct {
	Principal workflow.Principal
	Token     string
}

// Controller управляет переходами заметок. Сначала выполняются локальные
// проверки роли и состояния, затем ровно один вызов backend через circuit breaker.
// Ответ сервера заменяет локальную запись; при ошибке список не меняется.
// Успешный ответ также применяется к другим загруженным сессиям, где заметка уже есть.
type Controller struct {
	backend  backend.NotesBackend
	cache    cache.NoteListCache
	events   events.Publisher
	breaker  *resilience.CircuitBreaker
	sessions *Sessions
	timeout  time.Duration

	mu       sync.Mutex
	inflight map[string]struct{}
}

// Option настраивает Controller.
type Option func(*Controller)

// WithCache подключает кэш списков.
func WithCache(c cache.NoteListCache) Option {
	return func(ctl *Controller) { ctl.cache = c }
}

// WithPublisher подключает доставку событий.
func WithPublisher(p events.Publisher) Option {
	return func(ctl *Controller) { ctl.events = p }
}

// WithBreaker заменяет circuit breaker.
func WithBreaker(cb *resilience.CircuitBreaker) Option {
	return func(ctl *Controller) { ctl.breaker = cb }
}

// WithRequestTimeout задает таймаут одного вызова backend.
func WithRequestTimeout(d time.Duration) Option {
	return func(ctl *Controller) {
		if d > 0 {
			ctl.timeout = d
		}
	}
}

// NewController создает контроллер поверх клиента backend.
func NewController(b backend.NotesBackend, opts ...Option) *Controller {
	ctl := &Controller{
		backend:  b,
		sessions: NewSessions(),
		timeout:  defaultRequestTimeout,
		inflight: make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(ctl)
	}
	if ctl.breaker == nil {
		cfg := resilience.DefaultCircuitBreakerConfig()
		cfg.IsFailure = IsBackendFailure
		ctl.breaker = resilience.NewCircuitBreaker(breakerName, cfg)
	}
	return ctl
}

// DropSession забывает список пользователя. Следующее обращение загрузит его заново.
func (c *Controller) DropSession(ctx context.Context, userID string) {
	c.sessions.Drop(userID)
	logger.Log(ctx).Debug(ctx, msgSessionDropped, zap.String("user_id", userID))
}

// ExpireIdleSessions удаляет сессии без обращений дольше maxIdle и возвращает их число.
func (c *Controller) ExpireIdleSessions(ctx context.Context, maxIdle time.Duration) int {
	expired := c.sessions.Expire(time.Now(), maxIdle)
	if len(expired) > 0 {
		logger.Log(ctx).Info(ctx, msgSessionsExpired,
			zap.Int("expired", len(expired)),
			zap.Int("remaining", c.sessions.Len()))
	}
	return len(expired)
}

// RunSessionJanitor раз в interval удаляет простаивающие сессии, пока ctx не отменен.
func (c *Controller) RunSessionJanitor(ctx context.Context, interval, maxIdle time.Duration) {
	if interval <= 0 || maxIdle <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.ExpireIdleSessions(ctx, maxIdle)
		}
	}
}

// Store возвращает список вызывающего, загружая его при первом обращении.
func (c *Controller) Store(ctx context.Context, caller Caller) (*store.Store, error) {
	st := c.sessions.Get(caller.Principal.UserID)
	if st.Loaded() {
		return st, nil
	}
	return c.Refresh(ctx, caller, false)
}

// Refresh загружает список вызывающего. Без force сначала используется кэш,
// с force backend вызывается всегда.
func (c *Controller) Refresh(ctx context.Context, caller Caller, force bool) (*store.Store, error) {
	log := logger.Log(ctx).With(zap.String("user_id", caller.Principal.UserID), zap.Bool("force", force))
	st := c.sessions.Get(caller.Principal.UserID)

	if !force && c.cache != nil {
		notes, ok, err := c.cache.GetNotes(ctx, caller.Principal.UserID)
		switch {
		case err != nil:
			log.Warn(ctx, msgCacheReadFailed, zap.Error(err))
		case ok:
			st.Reset(notes)
			c.sessions.markSource(caller.Principal.UserID, true)
			log.Debug(ctx, msgListFromCache, zap.Int("count", st.Len()))
			return st, nil
		}
	}

	var notes []*workflow.Note
	err := c.call(ctx, func(ctx context.Context) error {
		var err error
		notes, err = c.backend.ListNotes(ctx, caller.Token)
		return err
	})
	if err != nil {
		log.Warn(ctx, msgBackendFailed, zap.String("operation", "list"), zap.Error(err))
		return nil, err
	}

	st.Reset(notes)
	c.sessions.markSource(caller.Principal.UserID, false)
	c.writeCache(ctx, caller.Principal.UserID, st)
	log.Debug(ctx, msgListLoaded, zap.Int("count", st.Len()))
	return st, nil
}

// Create создает заметку и добавляет ответ сервера в начало списка.
func (c *Controller) Create(ctx context.Context, caller Caller, draft workflow.Draft) (*workflow.Note, error) {
	st, err := c.Store(ctx, caller)
	if err != nil {
		return nil, err
	}

	draft, err = draft.Normalize()
	if err != nil {
		return nil, c.rejectLocally(ctx, "create", "", err)
	}
	if err := workflow.CheckCreate(caller.Principal, draft); err != nil {
		return nil, c.rejectLocally(ctx, "create", "", err)
	}

	release, err := c.acquire(createGuardPrefix + caller.Principal.UserID)
	if err != nil {
		return nil, err
	}
	defer release()

	var created *workflow.Note
	err = c.call(ctx, func(ctx context.Context) error {
		var err error
		created, err = c.backend.CreateNote(ctx, caller.Token, draft)
		return err
	})
	if err != nil {
		logger.Log(ctx).Warn(ctx, msgBackendFailed, zap.String("operation", "create"), zap.Error(err))
		return nil, err
	}

	st.Prepend(created)
	c.commit(ctx, caller, st, events.ActionCreated, created.ID)
	handled := c.propagate(ctx, caller, events.ActionCreated, created.ID, func(userID string, other *store.Store) bool {
		if userID != created.UserID || !other.Loaded() {
			return false
		}
		other.Prepend(created)
		return true
	})
	c.invalidate(ctx, caller, handled, created)
	return created.Clone(), nil
}

// Complete отмечает заметку выполненной. Разрешено только владельцу.
func (c *Controller) Complete(ctx context.Context, caller Caller, noteID string) (*workflow.Note, error) {
	return c.transition(ctx, caller, noteID, "complete",
		func(n *workflow.Note) error {
			_, err := workflow.Complete(caller.Principal, n)
			return err
		},
		func(ctx context.Context) (*workflow.Note, error) {
			return c.backend.CompleteNote(ctx, caller.Token, noteID)
		},
		func(*workflow.Note) string { return events.ActionCompleted },
	)
}

// Review выносит решение по заметке на проверке. Разрешено admin и super_admin.
func (c *Controller) Review(ctx context.Context, caller Caller, noteID string, decision workflow.Decision) (*workflow.Note, error) {
	return c.transition(ctx, caller, noteID, "review",
		func(n *workflow.Note) error {
			_, err := workflow.Review(caller.Principal, n, decision, time.Now())
			return err
		},
		func(ctx context.Context) (*workflow.Note, error) {
			return c.backend.ReviewNote(ctx, caller.Token, noteID, decision.Status())
		},
		func(n *workflow.Note) string {
			if n.CompletionStatus == workflow.StatusRejected {
				return events.ActionRejected
			}
			return events.ActionApproved
		},
	)
}

// Delete удаляет заметку в любом состоянии. Разрешено admin и super_admin.
func (c *Controller) Delete(ctx context.Context, caller Caller, noteID string) error {
	if err := workflow.CheckDelete(caller.Principal, nil); err != nil {
		return c.rejectLocally(ctx, "delete", noteID, err)
	}

	st, current, err := c.locate(ctx, caller, noteID, "delete", func(*workflow.Note) error { return nil })
	if err != nil {
		return err
	}

	release, err := c.acquire(noteID)
	if err != nil {
		return err
	}
	defer release()

	err = c.call(ctx, func(ctx context.Context) error {
		return c.backend.DeleteNote(ctx, caller.Token, noteID)
	})
	if err != nil {
		logger.Log(ctx).Warn(ctx, msgBackendFailed, zap.String("operation", "delete"), zap.Error(err))
		return err
	}

	st.Remove(noteID)
	c.commit(ctx, caller, st, events.ActionDeleted, noteID)
	handled := c.propagate(ctx, caller, events.ActionDeleted, noteID, func(_ string, other *store.Store) bool {
		return other.Remove(noteID)
	})
	c.invalidate(ctx, caller, handled, current)
	return nil
}

// transition выполняет общий путь complete/review: локальная проверка, защита от
// повторного нажатия, вызов backend, замена записи ответом сервера.
func (c *Controller) transition(
	ctx context.Context,
	caller Caller,
	noteID, operation string,
	check func(*workflow.Note) error,
	remote func(context.Context) (*workflow.Note, error),
	action func(*workflow.Note) string,
) (*workflow.Note, error) {
	st, _, err := c.locate(ctx, caller, noteID, operation, check)
	if err != nil {
		return nil, err
	}

	release, err := c.acquire(noteID)
	if err != nil {
		return nil, err
	}
	defer release()

	var updated *workflow.Note
	err = c.call(ctx, func(ctx context.Context) error {
		var err error
		updated, err = remote(ctx)
		return err
	})
	if err != nil {
		logger.Log(ctx).Warn(ctx, msgBackendFailed,
			zap.String("operation", operation),
			zap.String("note_id", noteID),
			zap.Error(err))
		return nil, err
	}

	if !st.Replace(updated) {
		st.Prepend(updated)
	}
	c.commit(ctx, caller, st, action(updated), noteID)
	handled := c.propagate(ctx, caller, action(updated), noteID, func(_ string, other *store.Store) bool {
		return other.Replace(updated)
	})
	c.invalidate(ctx, caller, handled, updated)
	return updated.Clone(), nil
}

// locate находит заметку в списке вызывающего и выполняет локальную проверку.
// Список, восстановленный из кэша, мог устареть: при отказе NotFound или InvalidState
// он один раз перечитывается из backend, и проверка повторяется.
func (c *Controller) locate(
	ctx context.Context,
	caller Caller,
	noteID, operation string,
	check func(*workflow.Note) error,
) (*store.Store, *workflow.Note, error) {
	st, err := c.Store(ctx, caller)
	if err != nil {
		return nil, nil, err
	}

	current, err := checkLoaded(st, noteID, check)
	if err == nil {
		return st, current, nil
	}

	kind := KindOf(err)
	if !c.sessions.fromCache(caller.Principal.UserID) || (kind != KindNotFound && kind != KindInvalidState) {
		return nil, nil, c.rejectLocally(ctx, operation, noteID, err)
	}

	logger.Log(ctx).Debug(ctx, msgReloadingCached,
		zap.String("operation", operation),
		zap.String("note_id", noteID),
		zap.String("kind", string(kind)))

	if st, err = c.Refresh(ctx, caller, true); err != nil {
		return nil, nil, err
	}
	if current, err = checkLoaded(st, noteID, check); err != nil {
		return nil, nil, c.rejectLocally(ctx, operation, noteID, err)
	}
	return st, current, nil
}

func checkLoaded(st *store.Store, noteID string, check func(*workflow.Note) error) (*workflow.Note, error) {
	current, ok := st.Get(noteID)
	if !ok {
		return nil, NewError(KindNotFound, errNoteNotLoaded, workflow.ErrNotFound)
	}
	if err := check(current); err != nil {
		return nil, err
	}
	return current, nil
}

// call выполняет один вызов backend с таймаутом и через circuit breaker.
// Повторов нет; любая ошибка приводится к *Error.
func (c *Controller) call(ctx context.Context, fn func(context.Context) error) error {
	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if err := c.breaker.Execute(callCtx, fn); err != nil {
		return AsError(err)
	}
	return nil
}

// acquire отмечает ключ как занятый. Второй вызов до release получает Busy.
func (c *Controller) acquire(key string) (func(), error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, busy := c.inflight[key]; busy {
		return nil, NewError(KindBusy, msgBusy, nil)
	}
	c.inflight[key] = struct{}{}

	return func() {
		c.mu.Lock()
		delete(c.inflight, key)
		c.mu.Unlock()
	}, nil
}

func (c *Controller) rejectLocally(ctx context.Context, operation, noteID string, err error) error {
	appErr := AsError(err)
	logger.Log(ctx).Debug(ctx, msgRejectedLocally,
		zap.String("operation", operation),
		zap.String("note_id", noteID),
		zap.String("kind", string(appErr.Kind)))
	return appErr
}

// commit сохраняет снимок списка в кэш и уведомляет подписчиков вызывающего.
func (c *Controller) commit(ctx context.Context, caller Caller, st *store.Store, action, noteID string) {
	logger.Log(ctx).Info(ctx, msgActionDone,
		zap.String("action", action),
		zap.String("note_id", noteID),
		zap.String("user_id", caller.Principal.UserID))

	c.notify(ctx, caller.Principal.UserID, st, action, noteID)
}

// propagate применяет ответ сервера к спискам других пользователей и возвращает тех,
// чьи списки обновлены на месте.
// apply должен менять только списки, где заметка уже есть, или список ее владельца.
func (c *Controller) propagate(
	ctx context.Context,
	caller Caller,
	action, noteID string,
	apply func(userID string, st *store.Store) bool,
) map[string]bool {
	handled := make(map[string]bool)

	c.sessions.Each(func(userID string, other *store.Store) {
		if userID == caller.Principal.UserID {
			return
		}
		if apply(userID, other) {
			logger.Log(ctx).Debug(ctx, msgPropagated, zap.String("user_id", userID), zap.String("note_id", noteID))
			c.notify(ctx, userID, other, action, noteID)
			handled[userID] = true
		}
	})
	return handled
}

// invalidate сбрасывает сессию и кэш владельца, автора и руководителя вызывающего,
// если их списки не были обновлены на месте.
func (c *Controller) invalidate(ctx context.Context, caller Caller, handled map[string]bool, n *workflow.Note) {
	for _, userID := range []string{n.UserID, n.CreatedBy, caller.Principal.ParentID} {
		if userID == "" || userID == caller.Principal.UserID || handled[userID] {
			continue
		}
		handled[userID] = true

		c.sessions.Drop(userID)
		if c.cache != nil {
			if err := c.cache.DeleteNotes(ctx, userID); err != nil {
				logger.Log(ctx).Warn(ctx, msgCacheDropFailed, zap.String("user_id", userID), zap.Error(err))
				continue
			}
		}
		logger.Log(ctx).Debug(ctx, msgInvalidated, zap.String("user_id", userID), zap.String("note_id", n.ID))
	}
}

func (c *Controller) notify(ctx context.Context, userID string, st *store.Store, action, noteID string) {
	c.writeCache(ctx, userID, st)

	if c.events != nil {
		c.events.Publish(ctx, userID, events.ChangeEvent{
			Type:   events.TypeNotesChanged,
			Action: action,
			NoteID: noteID,
			Counts: st.Counts(),
		})
	}
}

func (c *Controller) writeCache(ctx context.Context, userID string, st *store.Store) {
	if c.cache == nil {
		return
	}
	if err := c.cache.SetNotes(ctx, userID, st.Snapshot()); err != nil {
		logger.Log(ctx).Warn(ctx, msgCacheWriteFailed, zap.Error(err))
	}
}

// IsKind сообщает, относится ли ошибка к категории kind.
func IsKind(err error, kind Kind) bool {
	var appErr *Error
	return errors.As(err, &appErr) && appErr.Kind == kind
}
