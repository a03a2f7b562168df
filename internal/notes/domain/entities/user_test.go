package entities_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"notesflow/internal/notes/domain/entities"
	"notesflow/pkg/workflow"
)

func TestNewUserFromPrincipal(t *testing.T) {
	u := entities.NewUserFromPrincipal(workflow.Principal{
		UserID: "user-1", Name: "Ana", Role: workflow.RoleUser, ParentID: "admin-1",
	})

	require.NotNil(t, u.ParentID)
	assert.Equal(t, "admin-1", *u.ParentID)
	assert.True(t, u.IsChildOf("admin-1"))
	assert.False(t, u.IsChildOf("admin-2"))

	top := entities.NewUserFromPrincipal(workflow.Principal{UserID: "admin-1", Role: workflow.RoleAdmin})
	assert.Nil(t, top.ParentID)
	assert.False(t, top.IsChildOf(""))
}
