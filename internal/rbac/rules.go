package rbac

// tier pairs the "any record" permission with its "own record only" counterpart.
type tier struct {
	all Permission
	own Permission
}

var (
	editTier = tier{all: PermUsersEditAll, own: PermUsersEditOwn}
	viewTier = tier{all: PermUsersViewAll, own: PermUsersViewOwn}
)

func (t *Table) allows(actor *Actor, target Entity, tr tier) bool {
	if actor == nil {
		return false
	}
	if t.HasPermission(actor, tr.all) {
		return true
	}
	return t.HasPermission(actor, tr.own) && target != nil && actor.ID == target.GetID()
}

// CanEdit reports whether actor may modify target.
func (t *Table) CanEdit(actor *Actor, target Entity) bool {
	return t.allows(actor, target, editTier)
}

// CanView reports whether actor may see target.
func (t *Table) CanView(actor *Actor, target Entity) bool {
	return t.allows(actor, target, viewTier)
}

// CanDelete reports whether actor may remove target. Deleting oneself is never allowed,
// whatever the role grants.
func (t *Table) CanDelete(actor *Actor, target Entity) bool {
	if actor == nil || target == nil {
		return false
	}
	if actor.ID == target.GetID() {
		return false
	}
	return t.HasPermission(actor, PermUsersDelete)
}

// CanAssignRole reports whether actor may choose the role of target. A nil target stands
// for a record that does not exist yet. Nobody changes their own role.
func (t *Table) CanAssignRole(actor *Actor, target Entity) bool {
	if !t.HasPermission(actor, PermUsersEditAll) {
		return false
	}
	return target == nil || actor.ID != target.GetID()
}

// CanEdit checks against the default table.
func CanEdit(actor *Actor, target Entity) bool {
	return defaultTable.CanEdit(actor, target)
}

// CanView checks against the default table.
func CanView(actor *Actor, target Entity) bool {
	return defaultTable.CanView(actor, target)
}

// CanDelete checks against the default table.
func CanDelete(actor *Actor, target Entity) bool {
	return defaultTable.CanDelete(actor, target)
}
