package roles

import "github.com/odyssey-erp/odyssey-admin/internal/rbac"

// Summary describes one role and what it grants.
type Summary struct {
	Role        rbac.Role         `json:"role"`
	Label       string            `json:"label"`
	Permissions []rbac.Permission `json:"permissions"`
}

// MatrixRow is one permission across every role, in Matrix.Roles order.
type MatrixRow struct {
	Permission rbac.Permission
	Granted    []bool
}

// Matrix is the role by permission grid shown on the permissions page.
type Matrix struct {
	Roles []rbac.Role
	Rows  []MatrixRow
}
