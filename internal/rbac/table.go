package rbac

import (
	"fmt"
	"slices"
)

// PermissionSet is an unordered collection of permissions without duplicates.
type PermissionSet map[Permission]struct{}

// NewPermissionSet builds a set from the given permissions, collapsing duplicates.
func NewPermissionSet(perms ...Permission) PermissionSet {
	set := make(PermissionSet, len(perms))
	for _, p := range perms {
		set[p] = struct{}{}
	}
	return set
}

// Has reports membership.
func (s PermissionSet) Has(p Permission) bool {
	_, ok := s[p]
	return ok
}

// Sorted returns the members in lexical order.
func (s PermissionSet) Sorted() []Permission {
	out := make([]Permission, 0, len(s))
	for p := range s {
		out = append(out, p)
	}
	slices.Sort(out)
	return out
}

// Table maps every role to the permissions it grants. It is immutable after construction
// and safe for concurrent use.
type Table struct {
	grants map[Role]PermissionSet
}

// DefaultGrants returns the role assignments used by the dashboard.
func DefaultGrants() map[Role][]Permission {
	return map[Role][]Permission{
		RoleSuperAdmin: {
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
		},
		RoleUser: {
			PermNewsView,
			PermUsersEditOwn,
			PermUsersViewOwn,
		},
	}
}

// NewTable validates grants and builds a Table. Every role from Roles must have an entry
// (possibly empty), only known roles and permissions may appear, and every permission from
// Permissions must be granted to at least one role.
func NewTable(grants map[Role][]Permission) (*Table, error) {
	known := NewPermissionSet(Permissions()...)
	reachable := make(PermissionSet, len(known))
	table := &Table{grants: make(map[Role]PermissionSet, len(grants))}

	for role, perms := range grants {
		if !slices.Contains(Roles(), role) {
			return nil, fmt.Errorf("rbac: unknown role %q in grants", role)
		}
		set := make(PermissionSet, len(perms))
		for _, p := range perms {
			if !known.Has(p) {
				return nil, fmt.Errorf("rbac: role %q grants unknown permission %q", role, p)
			}
			set[p] = struct{}{}
			reachable[p] = struct{}{}
		}
		table.grants[role] = set
	}
	for _, role := range Roles() {
		if _, ok := table.grants[role]; !ok {
			return nil, fmt.Errorf("rbac: role %q has no grant entry", role)
		}
	}
	for _, p := range Permissions() {
		if !reachable.Has(p) {
			return nil, fmt.Errorf("rbac: permission %q is not granted to any role", p)
		}
	}
	return table, nil
}

// MustNewTable is NewTable that panics on an inconsistent configuration.
func MustNewTable(grants map[Role][]Permission) *Table {
	table, err := NewTable(grants)
	if err != nil {
		panic(err)
	}
	return table
}

var defaultTable = MustNewTable(DefaultGrants())

// Default returns the process-wide table.
func Default() *Table {
	return defaultTable
}

// PermissionsFor returns a copy of the permissions granted to role. An unknown role yields
// an empty set.
func (t *Table) PermissionsFor(role Role) PermissionSet {
	out := make(PermissionSet)
	if t == nil {
		return out
	}
	for p := range t.grants[role] {
		out[p] = struct{}{}
	}
	return out
}
