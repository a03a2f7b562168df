package notesv1_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	notesv1 "notesflow/pkg/api/notes/v1"
	"notesflow/pkg/workflow"
)

func TestFromEntity(t *testing.T) {
	day := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	reviewed := time.Date(2024, 5, 2, 12, 0, 0, 0, time.UTC)
	reviewer := "admin-1"

	note := &workflow.Note{
		ID:               "note-1",
		Title:            "Stock check",
		Content:          "count shelves",
		UserID:           "user-1",
		CreatedBy:        "admin-1",
		Fechadenota:      &day,
		IsCompleted:      true,
		CompletionStatus: workflow.StatusApproved,
		AdminReviewedAt:  &reviewed,
		ReviewedBy:       &reviewer,
		CreatedAt:        day,
		UserInfo:         &workflow.UserInfo{ID: "user-1", Name: "Ana", Role: workflow.RoleUser},
	}

	dto := notesv1.FromEntity(note)

	require.NotNil(t, dto.Fechadenota)
	assert.Equal(t, "2024-05-01", *dto.Fechadenota)
	assert.Equal(t, "approved", dto.CompletionStatus)
	require.NotNil(t, dto.UserInfo)
	assert.Equal(t, "user", dto.UserInfo.Role)
	assert.Nil(t, dto.CreatorInfo)

	raw, err := json.Marshal(dto)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"userId":"user-1"`)
	assert.Contains(t, string(raw), `"completionStatus":"approved"`)
	assert.Contains(t, string(raw), `"fechadenota":"2024-05-01"`)
	assert.NotContains(t, string(raw), "creatorInfo")

	back, err := dto.ToEntity()
	require.NoError(t, err)
	assert.Equal(t, note.Fechadenota.Unix(), back.Fechadenota.Unix())
	assert.Equal(t, reviewer, *back.ReviewedBy)
	assert.Equal(t, workflow.RoleUser, back.UserInfo.Role)
}

func TestToEntity(t *testing.T) {
	t.Run("nullable fields stay nil", func(t *testing.T) {
		var dto notesv1.Note
		require.NoError(t, json.Unmarshal([]byte(`{
			"id":"n1","title":"t","content":"c","userId":"u1","createdBy":"u1",
			"fechadenota":null,"isCompleted":false,"completionStatus":"none",
			"adminReviewedAt":null,"reviewedBy":null,"createdAt":"2024-05-01T10:00:00Z"}`), &dto))

		n, err := dto.ToEntity()

		require.NoError(t, err)
		assert.Nil(t, n.Fechadenota)
		assert.Nil(t, n.AdminReviewedAt)
		assert.Nil(t, n.ReviewedBy)
		assert.Nil(t, n.UserInfo)
		assert.Equal(t, workflow.StatusNone, n.CompletionStatus)
	})

	t.Run("empty status means none", func(t *testing.T) {
		n, err := notesv1.Note{ID: "n1"}.ToEntity()
		require.NoError(t, err)
		assert.Equal(t, workflow.StatusNone, n.CompletionStatus)
	})

	t.Run("pending without completion is rejected", func(t *testing.T) {
		_, err := notesv1.Note{ID: "n1", CompletionStatus: "pending"}.ToEntity()
		assert.ErrorIs(t, err, workflow.ErrInvalidState)
	})

	t.Run("bad date", func(t *testing.T) {
		bad := "01/05/2024"
		_, err := notesv1.Note{ID: "n1", Fechadenota: &bad}.ToEntity()
		assert.ErrorIs(t, err, workflow.ErrInvalidInput)
	})

	t.Run("list stops on first bad note", func(t *testing.T) {
		_, err := notesv1.ToEntities([]notesv1.Note{{ID: "ok"}, {ID: "bad", CompletionStatus: "archived"}})
		require.Error(t, err)
		assert.Contains(t, err.Error(), `"bad"`)
	})
}

func TestCreateNoteRequestDraft(t *testing.T) {
	date := "2024-05-01"
	req := notesv1.CreateNoteRequest{Title: "t", Content: "c", Fechadenota: &date, TargetUserID: "user-2"}

	d, err := req.Draft()

	require.NoError(t, err)
	require.NotNil(t, d.Fechadenota)
	assert.Equal(t, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), *d.Fechadenota)
	assert.Equal(t, "user-2", d.TargetUserID)

	assert.Equal(t, req, notesv1.CreateRequestFromDraft(d))
}

func TestNotePath(t *testing.T) {
	assert.Equal(t, "/api/v1/notes/abc", notesv1.NotePath("abc"))
}
