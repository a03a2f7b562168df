package workflow

import "errors"

// Ошибки переходов workflow.
var (
	ErrPermissionDenied = errors.New("permission denied")
	ErrInvalidState     = errors.New("invalid state transition")
	ErrNotFound         = errors.New("note not found")
	ErrInvalidInput     = errors.New("invalid input")
)
