package domain

import "testing"

func TestUser_IsProtectedAndPrimaryRole(t *testing.T) {
	cases := []struct {
		name      string
		user      User
		protected bool
		role      string
	}{
		{"admin flag", User{IsAdmin: true, Roles: []string{RoleAdmin}}, true, RoleAdmin},
		{"admin role tag only", User{Roles: []string{RoleUser, RoleAdmin}}, true, RoleAdmin},
		{"regular user", User{Roles: []string{RoleUser}}, false, RoleUser},
		{"no roles", User{}, false, RoleUser},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.user.IsProtected(); got != tc.protected {
				t.Errorf("IsProtected() = %v, want %v", got, tc.protected)
			}
			if got := tc.user.PrimaryRole(); got != tc.role {
				t.Errorf("PrimaryRole() = %q, want %q", got, tc.role)
			}
		})
	}
}
