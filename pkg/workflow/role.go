package workflow

// Role - роль вызывающего пользователя.
type Role string

// Поддерживаемые роли.
const (
	RoleUser       Role = "user"
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "super_admin"
)

// Valid сообщает, известна ли роль.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAdmin, RoleSuperAdmin:
		return true
	default:
		return false
	}
}

// IsReviewer сообщает, может ли роль проверять и удалять заметки.
func (r Role) IsReviewer() bool {
	return r == RoleAdmin || r == RoleSuperAdmin
}

// Action - действие над заметками, проверяемое по таблице ролей.
type Action string

// Действия workflow.
const (
	ActionCreateOwn      Action = "create_own"
	ActionCreateOnBehalf Action = "create_on_behalf"
	ActionCompleteOwn    Action = "complete_own"
	ActionReview         Action = "review"
	ActionDelete         Action = "delete"
)

var permissions = map[Action]map[Role]bool{
	ActionCreateOwn:      {RoleUser: true, RoleAdmin: true, RoleSuperAdmin: true},
	ActionCreateOnBehalf: {RoleAdmin: true, RoleSuperAdmin: true},
	ActionCompleteOwn:    {RoleUser: true, RoleAdmin: true, RoleSuperAdmin: true},
	ActionReview:         {RoleAdmin: true, RoleSuperAdmin: true},
	ActionDelete:         {RoleAdmin: true, RoleSuperAdmin: true},
}

// Allowed - таблица прав: разрешено ли действие роли. Неизвестные роли и действия запрещены.
func Allowed(role Role, action Action) bool {
	return permissions[action][role]
}

// Scope - какие заметки видит роль в списке.
type Scope int

// Области видимости списка заметок.
const (
	ScopeNone Scope = iota
	ScopeOwn
	ScopeOwnAndChildren
	ScopeAll
)

func (s Scope) String() string {
	switch s {
	case ScopeOwn:
		return "own"
	case ScopeOwnAndChildren:
		return "own_and_children"
	case ScopeAll:
		return "all"
	default:
		return "none"
	}
}

// ListScope возвращает область видимости списка для роли.
func ListScope(role Role) Scope {
	switch role {
	case RoleUser:
		return ScopeOwn
	case RoleAdmin:
		return ScopeOwnAndChildren
	case RoleSuperAdmin:
		return ScopeAll
	default:
		return ScopeNone
	}
}

// Principal - идентичность вызывающего, извлеченная из bearer токена.
// Передается явно во все проверки вместо глобального состояния роли.
type Principal struct {
	UserID string
	Name   string
	Role   Role
	// ParentID - админ, к которому относится пользователь; пусто для учетных записей верхнего уровня.
	ParentID string
}
