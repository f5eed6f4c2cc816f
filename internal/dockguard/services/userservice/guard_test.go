package userservice_test

import (
	"testing"

	"github.com/dockguard/dockguard/internal/dockguard/domain/models"
	"github.com/dockguard/dockguard/internal/dockguard/services/userservice"
	"github.com/stretchr/testify/require"
)

func TestCanChangeRole(t *testing.T) {
	admin := models.User{ID: 1, Username: "root", Role: models.RoleAdmin}    //nolint:exhaustruct
	regular := models.User{ID: 2, Username: "bob", Role: models.RoleUser}    //nolint:exhaustruct

	tests := []struct {
		name       string
		target     models.User
		newRole    models.Role
		adminCount int
		allowed    bool
	}{
		{"demote last admin", admin, models.RoleUser, 1, false},
		{"demote last admin to readonly", admin, models.RoleReadonly, 1, false},
		{"demote one of two admins", admin, models.RoleUser, 2, true},
		{"admin keeps admin role", admin, models.RoleAdmin, 1, true},
		{"promote regular user", regular, models.RoleAdmin, 1, true},
		{"regular role change ignores count", regular, models.RoleReadonly, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			allowed, reason := userservice.CanChangeRole(tt.target, tt.newRole, tt.adminCount)
			require.Equal(t, tt.allowed, allowed)

			if !tt.allowed {
				require.ErrorIs(t, reason, userservice.ErrLastAdminProtected)
			} else {
				require.NoError(t, reason)
			}
		})
	}
}

func TestCanDelete(t *testing.T) {
	admin := models.User{ID: 1, Username: "root", Role: models.RoleAdmin} //nolint:exhaustruct
	regular := models.User{ID: 2, Username: "bob", Role: models.RoleUser} //nolint:exhaustruct

	allowed, reason := userservice.CanDelete(regular, regular.ID, 2)
	require.False(t, allowed)
	require.ErrorIs(t, reason, userservice.ErrSelfDeleteForbidden)

	// Self-deletion is forbidden even for admins with plenty of peers.
	allowed, reason = userservice.CanDelete(admin, admin.ID, 5)
	require.False(t, allowed)
	require.ErrorIs(t, reason, userservice.ErrSelfDeleteForbidden)

	allowed, reason = userservice.CanDelete(admin, 99, 1)
	require.False(t, allowed)
	require.ErrorIs(t, reason, userservice.ErrLastAdminProtected)

	allowed, reason = userservice.CanDelete(admin, 99, 2)
	require.True(t, allowed)
	require.NoError(t, reason)

	allowed, reason = userservice.CanDelete(regular, 99, 1)
	require.True(t, allowed)
	require.NoError(t, reason)
}
