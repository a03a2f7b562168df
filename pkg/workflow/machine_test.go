package workflow_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"notesflow/pkg/workflow"
)

var (
	owner      = workflow.Principal{UserID: "user-1", Name: "Owner", Role: workflow.RoleUser, ParentID: "admin-1"}
	stranger   = workflow.Principal{UserID: "user-2", Name: "Stranger", Role: workflow.RoleUser}
	admin      = workflow.Principal{UserID: "admin-1", Name: "Admin", Role: workflow.RoleAdmin}
	superAdmin = workflow.Principal{UserID: "root-1", Name: "Root", Role: workflow.RoleSuperAdmin}
)

func draftNote() *workflow.Note {
	return &workflow.Note{
		ID:               "note-1",
		Title:            "Stock check",
		Content:          "count shelves",
		UserID:           owner.UserID,
		CreatedBy:        owner.UserID,
		CompletionStatus: workflow.StatusNone,
		CreatedAt:        time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
	}
}

func pendingNote() *workflow.Note {
	n := draftNote()
	n.IsCompleted = true
	n.CompletionStatus = workflow.StatusPending
	return n
}

func TestStateOf(t *testing.T) {
	tests := []struct {
		name      string
		note      func() *workflow.Note
		expected  workflow.State
		expectErr bool
	}{
		{name: "draft", note: draftNote, expected: workflow.StateDraft},
		{name: "pending", note: pendingNote, expected: workflow.StatePendingReview},
		{name: "approved", note: func() *workflow.Note {
			n := pendingNote()
			n.CompletionStatus = workflow.StatusApproved
			return n
		}, expected: workflow.StateApproved},
		{name: "rejected", note: func() *workflow.Note {
			n := pendingNote()
			n.CompletionStatus = workflow.StatusRejected
			return n
		}, expected: workflow.StateRejected},
		{name: "pending without completion violates invariant", note: func() *workflow.Note {
			n := draftNote()
			n.CompletionStatus = workflow.StatusPending
			return n
		}, expectErr: true},
		{name: "completed without status violates invariant", note: func() *workflow.Note {
			n := draftNote()
			n.IsCompleted = true
			return n
		}, expectErr: true},
		{name: "unknown status", note: func() *workflow.Note {
			n := draftNote()
			n.CompletionStatus = "archived"
			return n
		}, expectErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state, err := workflow.StateOf(tt.note())
			if tt.expectErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, workflow.ErrInvalidState)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, state)
		})
	}

	assert.True(t, workflow.StateApproved.Terminal())
	assert.True(t, workflow.StateRejected.Terminal())
	assert.False(t, workflow.StatePendingReview.Terminal())
	assert.Equal(t, "pending_review", workflow.StatePendingReview.String())
}

func TestComplete(t *testing.T) {
	t.Run("owner completes draft", func(t *testing.T) {
		n := draftNote()

		next, err := workflow.Complete(owner, n)

		require.NoError(t, err)
		assert.True(t, next.IsCompleted)
		assert.Equal(t, workflow.StatusPending, next.CompletionStatus)
		assert.False(t, n.IsCompleted, "original must not be mutated")
		assert.Equal(t, workflow.StatusNone, n.CompletionStatus)
	})

	t.Run("admin completes own note", func(t *testing.T) {
		n := draftNote()
		n.UserID = admin.UserID

		_, err := workflow.Complete(admin, n)
		require.NoError(t, err)
	})

	t.Run("non-owner is denied even when admin", func(t *testing.T) {
		for _, p := range []workflow.Principal{stranger, admin, superAdmin} {
			_, err := workflow.Complete(p, draftNote())
			assert.ErrorIs(t, err, workflow.ErrPermissionDenied, p.Role)
		}
	})

	t.Run("already completed", func(t *testing.T) {
		_, err := workflow.Complete(owner, pendingNote())
		assert.ErrorIs(t, err, workflow.ErrInvalidState)
	})

	t.Run("rejected note cannot be resubmitted", func(t *testing.T) {
		n := pendingNote()
		n.CompletionStatus = workflow.StatusRejected

		_, err := workflow.Complete(owner, n)
		assert.ErrorIs(t, err, workflow.ErrInvalidState)
	})
}

func TestReview(t *testing.T) {
	at := time.Date(2024, 5, 2, 9, 30, 0, 0, time.FixedZone("UTC+3", 3*3600))

	t.Run("admin approves pending note", func(t *testing.T) {
		next, err := workflow.Review(admin, pendingNote(), workflow.DecisionApprove, at)

		require.NoError(t, err)
		assert.Equal(t, workflow.StatusApproved, next.CompletionStatus)
		assert.True(t, next.IsApproved())
		require.NotNil(t, next.AdminReviewedAt)
		assert.Equal(t, at.UTC(), *next.AdminReviewedAt)
		require.NotNil(t, next.ReviewedBy)
		assert.Equal(t, admin.UserID, *next.ReviewedBy)
	})

	t.Run("super admin rejects pending note", func(t *testing.T) {
		next, err := workflow.Review(superAdmin, pendingNote(), workflow.DecisionReject, at)

		require.NoError(t, err)
		assert.Equal(t, workflow.StatusRejected, next.CompletionStatus)
		assert.False(t, next.IsApproved())
	})

	t.Run("user cannot review", func(t *testing.T) {
		_, err := workflow.Review(owner, pendingNote(), workflow.DecisionApprove, at)
		assert.ErrorIs(t, err, workflow.ErrPermissionDenied)
	})

	t.Run("draft is not pending", func(t *testing.T) {
		_, err := workflow.Review(admin, draftNote(), workflow.DecisionApprove, at)
		assert.ErrorIs(t, err, workflow.ErrInvalidState)
	})

	t.Run("second approval is invalid", func(t *testing.T) {
		first, err := workflow.Review(admin, pendingNote(), workflow.DecisionApprove, at)
		require.NoError(t, err)

		_, err = workflow.Review(admin, first, workflow.DecisionApprove, at)
		assert.ErrorIs(t, err, workflow.ErrInvalidState)
	})
}

func TestCheckDelete(t *testing.T) {
	assert.ErrorIs(t, workflow.CheckDelete(owner, draftNote()), workflow.ErrPermissionDenied)
	assert.NoError(t, workflow.CheckDelete(admin, pendingNote()))

	approved := pendingNote()
	approved.CompletionStatus = workflow.StatusApproved
	assert.NoError(t, workflow.CheckDelete(superAdmin, approved))
}

func TestCheckCreate(t *testing.T) {
	own := workflow.Draft{Title: "t", Content: "c"}
	onBehalf := workflow.Draft{Title: "t", Content: "c", TargetUserID: owner.UserID}

	assert.NoError(t, workflow.CheckCreate(owner, own))
	assert.NoError(t, workflow.CheckCreate(owner, workflow.Draft{Title: "t", Content: "c", TargetUserID: owner.UserID}))
	assert.ErrorIs(t, workflow.CheckCreate(stranger, onBehalf), workflow.ErrPermissionDenied)
	assert.NoError(t, workflow.CheckCreate(admin, onBehalf))
	assert.NoError(t, workflow.CheckCreate(superAdmin, onBehalf))
	assert.ErrorIs(t, workflow.CheckCreate(workflow.Principal{UserID: "x", Role: "guest"}, own), workflow.ErrPermissionDenied)
}

func TestDraftNormalize(t *testing.T) {
	day := time.Date(2024, 5, 1, 17, 45, 0, 0, time.UTC)

	t.Run("trims fields and truncates date", func(t *testing.T) {
		d, err := workflow.Draft{Title: "  Stock check ", Content: " count shelves ", Fechadenota: &day}.Normalize()

		require.NoError(t, err)
		assert.Equal(t, "Stock check", d.Title)
		assert.Equal(t, "count shelves", d.Content)
		require.NotNil(t, d.Fechadenota)
		assert.Equal(t, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), *d.Fechadenota)
	})

	tests := []struct {
		name  string
		draft workflow.Draft
	}{
		{"blank title", workflow.Draft{Title: "   ", Content: "c"}},
		{"blank content", workflow.Draft{Title: "t", Content: ""}},
		{"long title", workflow.Draft{Title: strings.Repeat("я", workflow.MaxTitleLength+1), Content: "c"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.draft.Normalize()
			assert.ErrorIs(t, err, workflow.ErrInvalidInput)
		})
	}
}

func TestAffordancesFor(t *testing.T) {
	assert.Equal(t,
		workflow.Affordances{CanComplete: true},
		workflow.AffordancesFor(owner, draftNote()))

	assert.Equal(t,
		workflow.Affordances{CanReview: true, CanDelete: true},
		workflow.AffordancesFor(admin, pendingNote()))

	assert.Equal(t,
		workflow.Affordances{},
		workflow.AffordancesFor(owner, pendingNote()))
}

func TestParseDecision(t *testing.T) {
	for _, in := range []string{"approve", "approved", " APPROVE "} {
		d, err := workflow.ParseDecision(in)
		require.NoError(t, err)
		assert.Equal(t, workflow.DecisionApprove, d)
		assert.Equal(t, workflow.StatusApproved, d.Status())
	}

	d, err := workflow.ParseDecision("rejected")
	require.NoError(t, err)
	assert.Equal(t, workflow.StatusRejected, d.Status())

	_, err = workflow.ParseDecision("maybe")
	assert.ErrorIs(t, err, workflow.ErrInvalidInput)
}

func TestParseStatus(t *testing.T) {
	s, err := workflow.ParseStatus("")
	require.NoError(t, err)
	assert.Equal(t, workflow.StatusNone, s)

	s, err = workflow.ParseStatus("pending")
	require.NoError(t, err)
	assert.Equal(t, workflow.StatusPending, s)

	_, err = workflow.ParseStatus("archived")
	assert.ErrorIs(t, err, workflow.ErrInvalidInput)
}

func TestClone(t *testing.T) {
	reviewer := "admin-1"
	at := time.Now()
	n := pendingNote()
	n.ReviewedBy = &reviewer
	n.AdminReviewedAt = &at
	n.UserInfo = &workflow.UserInfo{ID: "user-1", Name: "Owner"}

	c := n.Clone()
	*c.ReviewedBy = "someone-else"
	c.UserInfo.Name = "Changed"

	assert.Equal(t, "admin-1", *n.ReviewedBy)
	assert.Equal(t, "Owner", n.UserInfo.Name)

	var nilNote *workflow.Note
	assert.Nil(t, nilNote.Clone())
}
