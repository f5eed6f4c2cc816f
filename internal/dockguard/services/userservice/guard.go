package userservice

import (
	"github.com/dockguard/dockguard/internal/dockguard/domain/models"
)

// The guard enforces the one hard invariant of this subsystem: the
// count of admin users must never drop below one. Callers must hold
// adminMu so the count read and the mutation it gates are serialized
// against concurrent admin-affecting operations.

// CanChangeRole reports whether target may be moved to newRole given
// the current admin count. The returned error names the violated rule.
func CanChangeRole(target models.User, newRole models.Role, currentAdminCount int) (bool, error) {
	if target.Role == models.RoleAdmin && newRole != models.RoleAdmin && currentAdminCount <= 1 {
		return false, ErrLastAdminProtected
	}

	return true, nil
}

// CanDelete reports whether target may be deleted by the acting user.
// Self-deletion is forbidden unconditionally, independent of admin count.
func CanDelete(target models.User, actingUserID, currentAdminCount int) (bool, error) {
	if target.ID == actingUserID {
		return false, ErrSelfDeleteForbidden
	}

	if target.Role == models.RoleAdmin && currentAdminCount <= 1 {
		return false, ErrLastAdminProtected
	}

	return true, nil
}
