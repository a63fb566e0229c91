package auth_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/jrsteele09/gym-dashboard/auth"
	"github.com/jrsteele09/gym-dashboard/users"
	"github.com/stretchr/testify/require"
)

var allPermissions = []string{
	auth.PermViewMembers,
	auth.PermEditMembers,
	auth.PermManagePayments,
	auth.PermManageAttendance,
	auth.PermManagePlans,
	auth.PermManageBatches,
	auth.PermViewReports,
	auth.PermManageExpenses,
	auth.PermManageEnquiries,
}

func staff(perms ...string) *users.User {
	u := &users.User{ID: "s-1", Name: "Sam", Role: users.RoleStaff}
	if perms != nil {
		u.Staff = &users.StaffProfile{Permissions: perms}
	}
	return u
}

func TestHasPermission_AdminHoldsEverything(t *testing.T) {
	admin := &users.User{ID: "a-1", Role: users.RoleAdmin}

	for _, perm := range allPermissions {
		require.True(t, auth.HasPermission(admin, perm), perm)
	}
	for i := 0; i < 20; i++ {
		require.True(t, auth.HasPermission(admin, uuid.NewString()))
	}
	require.True(t, auth.HasPermission(admin, ""))
}

func TestHasPermission_StaffHoldsListedOnly(t *testing.T) {
	granted := []string{auth.PermViewMembers, auth.PermManagePayments}
	user := staff(granted...)

	for _, perm := range allPermissions {
		require.Equal(t, perm == auth.PermViewMembers || perm == auth.PermManagePayments, auth.HasPermission(user, perm), perm)
	}
	require.False(t, auth.HasPermission(user, "VIEW_MEMBERS"), "match is literal")
}

func TestHasPermission_StaffWithoutList(t *testing.T) {
	for _, user := range []*users.User{staff(), staff([]string{}...), {Role: users.RoleStaff, Staff: &users.StaffProfile{}}} {
		for _, perm := range allPermissions {
			require.False(t, auth.HasPermission(user, perm))
		}
	}
}

func TestHasPermission_OtherRoles(t *testing.T) {
	member := &users.User{ID: "m-1", Role: users.RoleMember, Staff: &users.StaffProfile{Permissions: allPermissions}}
	unknown := &users.User{ID: "x-1", Role: "owner"}

	for _, perm := range allPermissions {
		require.False(t, auth.HasPermission(member, perm))
		require.False(t, auth.HasPermission(unknown, perm))
		require.False(t, auth.HasPermission(nil, perm))
	}
}

type fakeUserSource struct {
	user *users.User
}

func (f *fakeUserSource) User() *users.User { return f.user }

func TestEvaluator_UsesLiveSession(t *testing.T) {
	source := &fakeUserSource{}
	evaluator := auth.NewEvaluator(source)
	require.False(t, evaluator.HasPermission(auth.PermViewReports))

	source.user = staff(auth.PermViewReports)
	require.True(t, evaluator.HasPermission(auth.PermViewReports))

	source.user = nil
	require.False(t, evaluator.HasPermission(auth.PermViewReports))
}
