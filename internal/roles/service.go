package roles

import "github.com/odyssey-erp/odyssey-admin/internal/rbac"

// Service reads the role catalogue from a permission table.
type Service struct {
	table *rbac.Table
}

// NewService constructs a Service. A nil table selects rbac.Default.
func NewService(table *rbac.Table) *Service {
	if table == nil {
		table = rbac.Default()
	}
	return &Service{table: table}
}

// Summaries lists every role with its sorted permissions.
func (s *Service) Summaries() []Summary {
	out := make([]Summary, 0, len(rbac.Roles()))
	for _, role := range rbac.Roles() {
		out = append(out, Summary{
			Role:        role,
			Label:       role.Label(),
			Permissions: s.table.PermissionsFor(role).Sorted(),
		})
	}
	return out
}

// Matrix builds the permission grid.
func (s *Service) Matrix() Matrix {
	roles := rbac.Roles()
	sets := make([]rbac.PermissionSet, len(roles))
	for i, role := range roles {
		sets[i] = s.table.PermissionsFor(role)
	}
	m := Matrix{Roles: roles}
	for _, p := range rbac.Permissions() {
		row := MatrixRow{Permission: p, Granted: make([]bool, len(roles))}
		for i, set := range sets {
			row.Granted[i] = set.Has(p)
		}
		m.Rows = append(m.Rows, row)
	}
	return m
}
