package rbac

// HasPermission reports whether actor's role grants p. An absent actor holds nothing.
func (t *Table) HasPermission(actor *Actor, p Permission) bool {
	if actor == nil || t == nil {
		return false
	}
	return t.grants[actor.Role].Has(p)
}

// HasPermission checks p against the default table.
func HasPermission(actor *Actor, p Permission) bool {
	return defaultTable.HasPermission(actor, p)
}

// HasAny reports whether actor holds at least one of perms.
func (t *Table) HasAny(actor *Actor, perms ...Permission) bool {
	for _, p := range perms {
		if t.HasPermission(actor, p) {
			return true
		}
	}
	return false
}

// HasAll reports whether actor holds every one of perms.
func (t *Table) HasAll(actor *Actor, perms ...Permission) bool {
	if actor == nil {
		return false
	}
	for _, p := range perms {
		if !t.HasPermission(actor, p) {
			return false
		}
	}
	return true
}
