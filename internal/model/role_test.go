package model

import "testing"

func TestRoleRankOrdering(t *testing.T) {
	if !(RoleRank(RoleSuperAdmin) > RoleRank(RoleAdmin) &&
		RoleRank(RoleAdmin) > RoleRank(RoleManager) &&
		RoleRank(RoleManager) > RoleRank(RoleUser) &&
		RoleRank(RoleUser) > RoleRank(Role("editor"))) {
		t.Fatal("role ranks are not strictly ordered")
	}
}

func TestCanAccessStudio(t *testing.T) {
	tests := []struct {
		role Role
		want bool
	}{
		{RoleSuperAdmin, true},
		{RoleAdmin, true},
		{RoleManager, true},
		{RoleUser, false},
		{Role(""), false},
		{Role("editor"), false},
	}
	for _, tt := range tests {
		if got := CanAccessStudio(tt.role); got != tt.want {
			t.Errorf("CanAccessStudio(%q) = %v, want %v", tt.role, got, tt.want)
		}
	}
}

func TestRoleAtLeast(t *testing.T) {
	if !RoleAtLeast(RoleAdmin, RoleManager) {
		t.Error("admin should satisfy manager minimum")
	}
	if RoleAtLeast(RoleUser, RoleManager) {
		t.Error("user should not satisfy manager minimum")
	}
	if RoleAtLeast(Role("unknown"), RoleUser) {
		t.Error("unknown role should rank below user")
	}
}
