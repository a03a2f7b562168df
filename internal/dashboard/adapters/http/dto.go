package http

import (
	"notesflow/internal/dashboard/app"
	"notesflow/internal/dashboard/store"
	notesv1 "notesflow/pkg/api/notes/v1"
	"notesflow/pkg/workflow"
)

// AffordancesView - доступные вызывающему действия над заметкой.
type AffordancesView struct {
	CanComplete bool `json:"canComplete"`
	CanReview   bool `json:"canReview"`
	CanDelete   bool `json:"canDelete"`
}

// NoteView - заметка вместе с доступными действиями.
type NoteView struct {
	notesv1.Note
	Affordances AffordancesView `json:"affordances"`
}

// ViewResponse - модель экрана заметок.
type ViewResponse struct {
	Role              string       `json:"role"`
	CanCreateOnBehalf bool         `json:"canCreateOnBehalf"`
	Active            []NoteView   `json:"active"`
	Approved          []NoteView   `json:"approved"`
	Counts            store.Counts `json:"counts"`
}

// ErrorBody - текст баннера и категория ошибки.
type ErrorBody struct {
	Kind    app.Kind `json:"kind"`
	Message string   `json:"message"`
}

// MutationResponse - результат действия над заметкой.
type MutationResponse struct {
	OK    bool       `json:"ok"`
	Note  *NoteView  `json:"note,omitempty"`
	Error *ErrorBody `json:"error,omitempty"`
}

// ReviewRequest - тело запроса на проверку.
type ReviewRequest struct {
	Decision string `json:"decision" validate:"required,oneof=approve reject"`
}

// HealthResponse - ответ проверки живости.
type HealthResponse struct {
	Status string `json:"status"`
}

func newNoteView(p workflow.Principal, n *workflow.Note) NoteView {
	a := workflow.AffordancesFor(p, n)
	return NoteView{
		Note: notesv1.FromEntity(n),
		Affordances: AffordancesView{
			CanComplete: a.CanComplete,
			CanReview:   a.CanReview,
			CanDelete:   a.CanDelete,
		},
	}
}

func newNoteViews(p workflow.Principal, notes []*workflow.Note) []NoteView {
	out := make([]NoteView, 0, len(notes))
	for _, n := range notes {
		out = append(out, newNoteView(p, n))
	}
	return out
}

func newViewResponse(p workflow.Principal, st *store.Store) ViewResponse {
	partition := st.Partition()
	return ViewResponse{
		Role:              string(p.Role),
		CanCreateOnBehalf: workflow.Allowed(p.Role, workflow.ActionCreateOnBehalf),
		Active:            newNoteViews(p, partition.Active),
		Approved:          newNoteViews(p, partition.Approved),
		Counts:            partition.Counts(),
	}
}
