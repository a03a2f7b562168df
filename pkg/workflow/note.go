package workflow

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// Status - статус проверки заметки.
type Status string

// Статусы проверки.
const (
	StatusNone     Status = "none"
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// ParseStatus разбирает статус; пустая строка означает StatusNone.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case "", StatusNone:
		return StatusNone, nil
	case StatusPending, StatusApproved, StatusRejected:
		return Status(s), nil
	default:
		return "", fmt.Errorf("%w: unknown completion status %q", ErrInvalidInput, s)
	}
}

// Decision - решение проверяющего.
type Decision string

// Решения проверки.
const (
	DecisionApprove Decision = "approve"
	DecisionReject  Decision = "reject"
)

// ParseDecision принимает как решения (approve/reject), так и целевые статусы (approved/rejected).
func ParseDecision(s string) (Decision, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case string(DecisionApprove), string(StatusApproved):
		return DecisionApprove, nil
	case string(DecisionReject), string(StatusRejected):
		return DecisionReject, nil
	default:
		return "", fmt.Errorf("%w: unknown review decision %q", ErrInvalidInput, s)
	}
}

// Status возвращает статус, в который переводит решение.
func (d Decision) Status() Status {
	if d == DecisionApprove {
		return StatusApproved
	}
	return StatusRejected
}

// UserInfo - отображаемые сведения о пользователе.
type UserInfo struct {
	ID   string
	Name string
	Role Role
}

// MaxTitleLength - максимальная длина заголовка в символах.
const MaxTitleLength = 255

// Note - заметка, проходящая через выполнение и проверку.
type Note struct {
	ID      string
	Title   string
	Content string
	// UserID - владелец; CreatedBy - создатель. Отличаются, если админ создал заметку за пользователя.
	UserID    string
	CreatedBy string
	// Fechadenota - деловая дата заметки (только дата, UTC). nil, если не задана.
	Fechadenota      *time.Time
	IsCompleted      bool
	CompletionStatus Status
	// AdminReviewedAt и ReviewedBy заполняются при проверке; nil до нее.
	AdminReviewedAt *time.Time
	ReviewedBy      *string
	CreatedAt       time.Time
	// UserInfo и CreatorInfo заполняет бэкенд из справочника пользователей; nil, если неизвестно.
	UserInfo    *UserInfo
	CreatorInfo *UserInfo
}

// Clone возвращает копию заметки, не разделяющую указатели с оригиналом.
func (n *Note) Clone() *Note {
	if n == nil {
		return nil
	}
	c := *n
	if n.Fechadenota != nil {
		t := *n.Fechadenota
		c.Fechadenota = &t
	}
	if n.AdminReviewedAt != nil {
		t := *n.AdminReviewedAt
		c.AdminReviewedAt = &t
	}
	if n.ReviewedBy != nil {
		s := *n.ReviewedBy
		c.ReviewedBy = &s
	}
	if n.UserInfo != nil {
		u := *n.UserInfo
		c.UserInfo = &u
	}
	if n.CreatorInfo != nil {
		u := *n.CreatorInfo
		c.CreatorInfo = &u
	}
	return &c
}

// IsApproved сообщает, относится ли заметка к разделу одобренных.
func (n *Note) IsApproved() bool {
	return n.CompletionStatus == StatusApproved
}

// Validate проверяет инварианты статуса.
func (n *Note) Validate() error {
	switch n.CompletionStatus {
	case StatusNone:
		if n.IsCompleted {
			return fmt.Errorf("%w: completed note must carry a review status", ErrInvalidState)
		}
		return nil
	case StatusPending, StatusApproved, StatusRejected:
		if !n.IsCompleted {
			return fmt.Errorf("%w: status %s requires completed note", ErrInvalidState, n.CompletionStatus)
		}
		return nil
	default:
		return fmt.Errorf("%w: unknown completion status %q", ErrInvalidState, n.CompletionStatus)
	}
}

// Draft - данные для создания заметки.
type Draft struct {
	Title       string
	Content     string
	Fechadenota *time.Time
	// TargetUserID - владелец будущей заметки; пусто или равно вызывающему для собственной заметки.
	TargetUserID string
}

// Owner возвращает владельца будущей заметки.
func (d Draft) Owner(p Principal) string {
	if d.TargetUserID == "" {
		return p.UserID
	}
	return d.TargetUserID
}

// OnBehalf сообщает, создается ли заметка за другого пользователя.
func (d Draft) OnBehalf(p Principal) bool {
	return d.Owner(p) != p.UserID
}

// Normalize обрезает пробелы и проверяет обязательные поля.
func (d Draft) Normalize() (Draft, error) {
	d.Title = strings.TrimSpace(d.Title)
	d.Content = strings.TrimSpace(d.Content)
	d.TargetUserID = strings.TrimSpace(d.TargetUserID)

	if d.Title == "" {
		return d, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	if utf8.RuneCountInString(d.Title) > MaxTitleLength {
		return d, fmt.Errorf("%w: title exceeds %d characters", ErrInvalidInput, MaxTitleLength)
	}
	if d.Content == "" {
		return d, fmt.Errorf("%w: content is required", ErrInvalidInput)
	}
	if d.Fechadenota != nil {
		day := DateOnly(*d.Fechadenota)
		d.Fechadenota = &day
	}
	return d, nil
}

// DateOnly обрезает время до полуночи UTC того же календарного дня.
func DateOnly(t time.Time) time.Time {
	y, m, day := t.Date()
	return time.Date(y, m, day, 0, 0, 0, 0, time.UTC)
}
