// Package entities defines the domain entities for the notes service.
package entities

import (
	"notesflow/pkg/workflow"
)

// User - запись справочника пользователей сервиса заметок.
// Справочник синхронизируется с идентичностью из проверенного токена.
type User struct {
	ID   string
	Name string
	Role workflow.Role
	// ParentID - админ, к которому относится пользователь; nil для учетных записей верхнего уровня.
	ParentID *string
}

// NewUserFromPrincipal строит запись справочника по идентичности вызывающего.
func NewUserFromPrincipal(p workflow.Principal) *User {
	u := &User{
		ID:   p.UserID,
		Name: p.Name,
		Role: p.Role,
	}
	if p.ParentID != "" {
		parent := p.ParentID
		u.ParentID = &parent
	}
	return u
}

// IsChildOf сообщает, относится ли пользователь к указанному админу.
func (u *User) IsChildOf(adminID string) bool {
	return u.ParentID != nil && *u.ParentID == adminID
}
