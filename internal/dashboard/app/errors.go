package app

import (
	"context"
	"errors"

	"notesflow/internal/dashboard/resilience"
	"notesflow/pkg/workflow"
)

// Kind - категория ошибки, показываемая пользователю.
type Kind string

// Категории ошибок.
const (
	KindPermissionDenied Kind = "permission_denied"
	KindInvalidState     Kind = "invalid_state"
	KindNotFound         Kind = "not_found"
	KindNetworkError     Kind = "network_error"
	KindServerError      Kind = "server_error"
	KindValidation       Kind = "validation"
	KindBusy             Kind = "busy"
)

// Тексты по умолчанию для баннера.
const (
	msgServiceUnavailable = "notes service is temporarily unavailable"
	msgRequestTimedOut    = "notes service did not respond in time"
	msgUnexpected         = "unexpected error while talking to notes service"
	msgBusy               = "another action on this note is still in progress"
)

// Error - типизированный результат неудачного действия.
// Message предназначен для показа пользователю.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

// NewError создает ошибку заданной категории.
func NewError(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func (e *Error) Error() string {
	return string(e.Kind) + ": " + e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf возвращает категорию ошибки. Ошибки без категории считаются ServerError.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	switch {
	case errors.Is(err, workflow.ErrPermissionDenied):
		return KindPermissionDenied
	case errors.Is(err, workflow.ErrInvalidState):
		return KindInvalidState
	case errors.Is(err, workflow.ErrNotFound):
		return KindNotFound
	case errors.Is(err, workflow.ErrInvalidInput):
		return KindValidation
	case errors.Is(err, resilience.ErrCircuitOpen),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled):
		return KindNetworkError
	default:
		return KindServerError
	}
}

// AsError приводит любую ошибку к *Error.
func AsError(err error) *Error {
	if err == nil {
		return nil
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}

	kind := KindOf(err)
	message := err.Error()
	switch {
	case errors.Is(err, resilience.ErrCircuitOpen):
		message = msgServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		message = msgRequestTimedOut
	case kind == KindServerError:
		message = msgUnexpected
	}
	return NewError(kind, message, err)
}

// IsBackendFailure сообщает, говорит ли ошибка о неисправности backend.
// Отказы в доступе и ошибки состояния не размыкают circuit breaker.
func IsBackendFailure(err error) bool {
	switch KindOf(err) {
	case KindNetworkError, KindServerError:
		return true
	default:
		return false
	}
}
