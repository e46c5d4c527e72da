package domain

// Access policy: pure functions computing permitted actions from the
// actor's role and the concern's ownership/assignment. No side effects;
// callers translate a false result into an authorization error.

// CanAccess reports whether the actor may read a concern and its chat.
// Students see only their own concerns; mentors see concerns assigned to
// them; admins and superadmins see everything.
func CanAccess(actor Actor, concern *Concern) bool {
	switch actor.Role {
	case RoleStudent:
		return concern.IsOwnedBy(actor.ID)
	case RoleMentor:
		return concern.IsAssignedTo(actor.ID)
	case RoleAdmin, RoleSuperAdmin:
		return true
	}
	return false
}

// CanTransition reports whether the actor may change a concern's status.
// Only staff roles may; the lifecycle itself does not restrict which
// status values they pick.
func CanTransition(actor Actor, concern *Concern) bool {
	switch actor.Role {
	case RoleMentor:
		return concern.IsAssignedTo(actor.ID)
	case RoleAdmin, RoleSuperAdmin:
		return true
	}
	return false
}

// CanAssign reports whether the actor may assign a concern to a mentor.
func CanAssign(actor Actor) bool {
	return actor.Role.IsAdmin()
}

// CanDelete reports whether the actor may delete a concern.
func CanDelete(actor Actor) bool {
	return actor.Role.IsAdmin()
}

// CanRate reports whether the actor may rate a concern. Only the owning
// student may; the status precondition is validated separately so it
// surfaces as a validation error rather than an authorization one.
func CanRate(actor Actor, concern *Concern) bool {
	return actor.Role == RoleStudent && concern.IsOwnedBy(actor.ID)
}
