package rbac

import "slices"

// FilterAccessible narrows all to the entities actor may view. Holders of the view-all
// permission get a copy of all in its original order; everyone else gets at most their own
// record.
func FilterAccessible[T Entity](t *Table, actor *Actor, all []T) []T {
	if actor == nil {
		return []T{}
	}
	if t.HasPermission(actor, PermUsersViewAll) {
		return slices.Clone(all)
	}
	out := make([]T, 0, 1)
	if !t.HasPermission(actor, PermUsersViewOwn) {
		return out
	}
	for _, entity := range all {
		if entity.GetID() == actor.ID {
			out = append(out, entity)
		}
	}
	return out
}

// AccessibleSubset filters all using the default table.
func AccessibleSubset[T Entity](actor *Actor, all []T) []T {
	return FilterAccessible(defaultTable, actor, all)
}
