package rbac

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Role represents a high-level permission grouping. An actor holds exactly one role.
type Role string

const (
	// RoleSuperAdmin is the elevated role.
	RoleSuperAdmin Role = "super_admin"
	// RoleUser is the standard role.
	RoleUser Role = "user"
)

// Roles lists every role known to the system.
func Roles() []Role {
	return []Role{RoleSuperAdmin, RoleUser}
}

// ParseRole resolves the stored spelling of a role.
func ParseRole(raw string) (Role, bool) {
	candidate := Role(strings.TrimSpace(strings.ToLower(raw)))
	for _, role := range Roles() {
		if role == candidate {
			return role, true
		}
	}
	return "", false
}

// Label returns a display name such as "Super Admin".
func (r Role) Label() string {
	return cases.Title(language.English).String(strings.ReplaceAll(string(r), "_", " "))
}

// Permission represents an atomic capability.
type Permission string

// News permissions.
const (
	PermNewsCreate Permission = "news.create"
	PermNewsEdit   Permission = "news.edit"
	PermNewsDelete Permission = "news.delete"
	PermNewsView   Permission = "news.view"
)

// Team member permissions. The .all/.own pairs form the two visibility tiers.
const (
	PermUsersCreate  Permission = "users.create"
	PermUsersEditAll Permission = "users.edit.all"
	PermUsersEditOwn Permission = "users.edit.own"
	PermUsersDelete  Permission = "users.delete"
	PermUsersViewAll Permission = "users.view.all"
	PermUsersViewOwn Permission = "users.view.own"
)

// Permissions lists every permission referenced by the system.
func Permissions() []Permission {
	return []Permission{
		PermNewsCreate,
		PermNewsEdit,
		PermNewsDelete,
		PermNewsView,
		PermUsersCreate,
		PermUsersEditAll,
		PermUsersEditOwn,
		PermUsersDelete,
		PermUsersViewAll,
		PermUsersViewOwn,
	}
}

// Entity is any resource that can be compared with an actor for ownership.
type Entity interface {
	GetID() string
}

// Actor describes the authenticated identity performing an action.
// A nil *Actor means nobody is signed in.
type Actor struct {
	ID   string
	Role Role
	Name string
}

// GetID implements Entity so an actor can be the target of its own checks.
func (a *Actor) GetID() string {
	if a == nil {
		return ""
	}
	return a.ID
}
