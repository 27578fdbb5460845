package users_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/spotdesk/spotdesk-go/users"
)

func TestDashboardRoute(t *testing.T) {
	cases := []struct {
		role users.RoleType
		want string
	}{
		{users.RoleConsumer, users.RouteConsumerDashboard},
		{users.RoleBrandOwner, users.RouteBrandDashboard},
		{users.RoleStaff, users.RouteStaffDashboard},
		{users.RoleType("superuser"), users.RouteHome},
		{users.RoleType(""), users.RouteHome},
	}

	for _, tc := range cases {
		require.Equal(t, tc.want, users.DashboardRoute(tc.role), "role %q", tc.role)
	}
}

func TestKnown(t *testing.T) {
	require.True(t, users.RoleConsumer.Known())
	require.True(t, users.RoleBrandOwner.Known())
	require.True(t, users.RoleStaff.Known())
	require.False(t, users.RoleType("superuser").Known())
	require.False(t, users.RoleType("").Known())
}

func TestHasRole(t *testing.T) {
	require.True(t, users.HasRole(users.RoleConsumer, nil), "empty set means unrestricted")
	require.True(t, users.HasRole(users.RoleStaff, []users.RoleType{users.RoleConsumer, users.RoleStaff}))
	require.False(t, users.HasRole(users.RoleConsumer, []users.RoleType{users.RoleStaff}))
	require.False(t, users.HasRole(users.RoleType("superuser"), []users.RoleType{users.RoleStaff}))
}
