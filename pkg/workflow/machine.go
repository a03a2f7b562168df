package workflow

import (
	"fmt"
	"time"
)

// State - состояние заметки в автомате.
type State int

// Состояния автомата.
const (
	StateDraft State = iota
	StatePendingReview
	StateApproved
	StateRejected
)

func (s State) String() string {
	switch s {
	case StateDraft:
		return "draft"
	case StatePendingReview:
		return "pending_review"
	case StateApproved:
		return "approved"
	case StateRejected:
		return "rejected"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Terminal сообщает, что из состояния нет переходов.
func (s State) Terminal() bool {
	return s == StateApproved || s == StateRejected
}

// StateOf вычисляет состояние заметки по ее полям.
func StateOf(n *Note) (State, error) {
	if err := n.Validate(); err != nil {
		return 0, err
	}
	switch {
	case n.CompletionStatus == StatusApproved:
		return StateApproved, nil
	case n.CompletionStatus == StatusRejected:
		return StateRejected, nil
	case n.CompletionStatus == StatusPending:
		return StatePendingReview, nil
	default:
		return StateDraft, nil
	}
}

// CheckCreate проверяет право создать заметку с указанным владельцем.
func CheckCreate(p Principal, d Draft) error {
	action := ActionCreateOwn
	if d.OnBehalf(p) {
		action = ActionCreateOnBehalf
	}
	if !Allowed(p.Role, action) {
		return fmt.Errorf("%w: role %q cannot %s", ErrPermissionDenied, p.Role, action)
	}
	return nil
}

// CheckComplete проверяет, может ли p отметить заметку выполненной.
// Единственная точка входа для перехода Draft -> PendingReview.
func CheckComplete(p Principal, n *Note) error {
	if !Allowed(p.Role, ActionCompleteOwn) || n.UserID != p.UserID {
		return fmt.Errorf("%w: only the owner can complete a note", ErrPermissionDenied)
	}
	state, err := StateOf(n)
	if err != nil {
		return err
	}
	if state != StateDraft {
		return fmt.Errorf("%w: note is already completed (%s)", ErrInvalidState, state)
	}
	return nil
}

// Complete возвращает копию заметки после перехода Draft -> PendingReview.
func Complete(p Principal, n *Note) (*Note, error) {
	if err := CheckComplete(p, n); err != nil {
		return nil, err
	}
	next := n.Clone()
	next.IsCompleted = true
	next.CompletionStatus = StatusPending
	return next, nil
}

// CheckReview проверяет, может ли p вынести решение по заметке.
func CheckReview(p Principal, n *Note) error {
	if !Allowed(p.Role, ActionReview) {
		return fmt.Errorf("%w: role %q cannot review notes", ErrPermissionDenied, p.Role)
	}
	state, err := StateOf(n)
	if err != nil {
		return err
	}
	if state != StatePendingReview {
		return fmt.Errorf("%w: note is not pending review (%s)", ErrInvalidState, state)
	}
	return nil
}

// Review возвращает копию заметки после перехода PendingReview -> Approved|Rejected.
func Review(p Principal, n *Note, d Decision, at time.Time) (*Note, error) {
	if err := CheckReview(p, n); err != nil {
		return nil, err
	}
	next := n.Clone()
	next.CompletionStatus = d.Status()
	reviewedAt := at.UTC()
	reviewer := p.UserID
	next.AdminReviewedAt = &reviewedAt
	next.ReviewedBy = &reviewer
	return next, nil
}

// CheckDelete проверяет право удалить заметку в любом состоянии.
func CheckDelete(p Principal, _ *Note) error {
	if !Allowed(p.Role, ActionDelete) {
		return fmt.Errorf("%w: role %q cannot delete notes", ErrPermissionDenied, p.Role)
	}
	return nil
}

// Affordances - доступные вызывающему действия над конкретной заметкой.
type Affordances struct {
	CanComplete bool
	CanReview   bool
	CanDelete   bool
}

// AffordancesFor вычисляет доступные действия для отображения.
func AffordancesFor(p Principal, n *Note) Affordances {
	return Affordances{
		CanComplete: CanComplete(p, n),
		CanReview:   CanReview(p, n),
		CanDelete:   CanDelete(p, n),
	}
}

// CanComplete сообщает, может ли p отметить заметку выполненной.
func CanComplete(p Principal, n *Note) bool { return CheckComplete(p, n) == nil }

// CanReview сообщает, может ли p вынести решение по заметке.
func CanReview(p Principal, n *Note) bool { return CheckReview(p, n) == nil }

// CanDelete сообщает, может ли p удалить заметку.
func CanDelete(p Principal, n *Note) bool { return CheckDelete(p, n) == nil }
