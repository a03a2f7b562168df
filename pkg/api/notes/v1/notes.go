// Package notesv1 описывает REST контракт сервиса заметок: пути, DTO и коды ошибок.
// Пакет используется и бэкендом, и клиентом дашборда.
package notesv1

import (
	"fmt"
	"time"

	"notesflow/pkg/workflow"
)

// Пути REST API.
const (
	BasePath     = "/api/v1/notes"
	HealthPath   = "/health"
	CompletePath = "/complete"
	ReviewPath   = "/review"
)

// DateLayout - формат поля fechadenota.
const DateLayout = "2006-01-02"

// Коды ошибок в теле ответа.
const (
	CodeUnauthorized     = "unauthorized"
	CodePermissionDenied = "permission_denied"
	CodeNotFound         = "not_found"
	CodeInvalidState     = "invalid_state"
	CodeValidation       = "validation"
	CodeInternal         = "internal"
)

// UserInfo - сведения о пользователе для отображения.
type UserInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Role string `json:"role"`
}

// Note - заметка в формате API.
type Note struct {
	ID               string     `json:"id"`
	Title            string     `json:"title"`
	Content          string     `json:"content"`
	UserID           string     `json:"userId"`
	CreatedBy        string     `json:"createdBy"`
	Fechadenota      *string    `json:"fechadenota"`
	IsCompleted      bool       `json:"isCompleted"`
	CompletionStatus string     `json:"completionStatus"`
	AdminReviewedAt  *time.Time `json:"adminReviewedAt"`
	ReviewedBy       *string    `json:"reviewedBy"`
	CreatedAt        time.Time  `json:"createdAt"`
	UserInfo         *UserInfo  `json:"userInfo,omitempty"`
	CreatorInfo      *UserInfo  `json:"creatorInfo,omitempty"`
}

// CreateNoteRequest - тело POST /api/v1/notes.
type CreateNoteRequest struct {
	Title        string  `json:"title" validate:"required,max=255"`
	Content      string  `json:"content" validate:"required"`
	Fechadenota  *string `json:"fechadenota,omitempty" validate:"omitempty,datetime=2006-01-02"`
	TargetUserID string  `json:"targetUserId,omitempty" validate:"omitempty,max=128"`
}

// ReviewNoteRequest - тело PATCH /api/v1/notes/{id}/review.
type ReviewNoteRequest struct {
	Status string `json:"status" validate:"required,oneof=approved rejected"`
}

// ListNotesResponse - ответ GET /api/v1/notes.
type ListNotesResponse struct {
	Notes []Note `json:"notes"`
}

// ErrorResponse - тело ответа с ошибкой.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// HealthResponse - ответ GET /health.
type HealthResponse struct {
	Status string `json:"status"`
}

// NotePath возвращает путь к заметке относительно базового URL.
func NotePath(escapedID string) string {
	return BasePath + "/" + escapedID
}

// FromEntity переводит доменную заметку в DTO.
func FromEntity(n *workflow.Note) Note {
	dto := Note{
		ID:               n.ID,
		Title:            n.Title,
		Content:          n.Content,
		UserID:           n.UserID,
		CreatedBy:        n.CreatedBy,
		IsCompleted:      n.IsCompleted,
		CompletionStatus: string(n.CompletionStatus),
		CreatedAt:        n.CreatedAt.UTC(),
		UserInfo:         userInfoFromEntity(n.UserInfo),
		CreatorInfo:      userInfoFromEntity(n.CreatorInfo),
	}
	if n.Fechadenota != nil {
		s := n.Fechadenota.Format(DateLayout)
		dto.Fechadenota = &s
	}
	if n.AdminReviewedAt != nil {
		t := n.AdminReviewedAt.UTC()
		dto.AdminReviewedAt = &t
	}
	if n.ReviewedBy != nil {
		s := *n.ReviewedBy
		dto.ReviewedBy = &s
	}
	return dto
}

// FromEntities переводит список доменных заметок в DTO.
func FromEntities(notes []*workflow.Note) []Note {
	out := make([]Note, 0, len(notes))
	for _, n := range notes {
		out = append(out, FromEntity(n))
	}
	return out
}

// ToEntity переводит DTO в доменную заметку и проверяет ее инварианты.
func (n Note) ToEntity() (*workflow.Note, error) {
	status, err := workflow.ParseStatus(n.CompletionStatus)
	if err != nil {
		return nil, err
	}

	note := &workflow.Note{
		ID:               n.ID,
		Title:            n.Title,
		Content:          n.Content,
		UserID:           n.UserID,
		CreatedBy:        n.CreatedBy,
		IsCompleted:      n.IsCompleted,
		CompletionStatus: status,
		CreatedAt:        n.CreatedAt,
		UserInfo:         userInfoToEntity(n.UserInfo),
		CreatorInfo:      userInfoToEntity(n.CreatorInfo),
	}
	if n.Fechadenota != nil && *n.Fechadenota != "" {
		day, err := ParseDate(*n.Fechadenota)
		if err != nil {
			return nil, err
		}
		note.Fechadenota = &day
	}
	if n.AdminReviewedAt != nil {
		t := *n.AdminReviewedAt
		note.AdminReviewedAt = &t
	}
	if n.ReviewedBy != nil {
		s := *n.ReviewedBy
		note.ReviewedBy = &s
	}

	if err := note.Validate(); err != nil {
		return nil, err
	}
	return note, nil
}

// ToEntities переводит список DTO; первая некорректная запись прерывает разбор.
func ToEntities(notes []Note) ([]*workflow.Note, error) {
	out := make([]*workflow.Note, 0, len(notes))
	for i := range notes {
		n, err := notes[i].ToEntity()
		if err != nil {
			return nil, fmt.Errorf("note %q: %w", notes[i].ID, err)
		}
		out = append(out, n)
	}
	return out, nil
}

// Draft переводит запрос на создание в доменный черновик.
func (r CreateNoteRequest) Draft() (workflow.Draft, error) {
	d := workflow.Draft{
		Title:        r.Title,
		Content:      r.Content,
		TargetUserID: r.TargetUserID,
	}
	if r.Fechadenota != nil && *r.Fechadenota != "" {
		day, err := ParseDate(*r.Fechadenota)
		if err != nil {
			return d, err
		}
		d.Fechadenota = &day
	}
	return d, nil
}

// CreateRequestFromDraft собирает запрос на создание из черновика.
func CreateRequestFromDraft(d workflow.Draft) CreateNoteRequest {
	r := CreateNoteRequest{
		Title:        d.Title,
		Content:      d.Content,
		TargetUserID: d.TargetUserID,
	}
	if d.Fechadenota != nil {
		s := d.Fechadenota.Format(DateLayout)
		r.Fechadenota = &s
	}
	return r
}

// ParseDate разбирает дату в формате YYYY-MM-DD.
func ParseDate(s string) (time.Time, error) {
	day, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: fechadenota must be YYYY-MM-DD", workflow.ErrInvalidInput)
	}
	return day, nil
}

func userInfoFromEntity(u *workflow.UserInfo) *UserInfo {
	if u == nil {
		return nil
	}
	return &UserInfo{ID: u.ID, Name: u.Name, Role: string(u.Role)}
}

func userInfoToEntity(u *UserInfo) *workflow.UserInfo {
	if u == nil {
		return nil
	}
	return &workflow.UserInfo{ID: u.ID, Name: u.Name, Role: workflow.Role(u.Role)}
}
