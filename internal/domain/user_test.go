package domain

import "testing"

func TestRoleValid(t *testing.T) {
	for _, role := range []Role{RoleClient, RoleAgent, RoleAdmin, RoleSuperAdmin} {
		if !role.Valid() {
			t.Fatalf("%s reported invalid", role)
		}
	}
	for _, role := range []Role{"", "client", "MANAGER"} {
		if Role(role).Valid() {
			t.Fatalf("%q reported valid", role)
		}
	}
}

func TestRoleCapabilities(t *testing.T) {
	if !RoleClient.CanFileTickets() || RoleAgent.CanFileTickets() {
		t.Fatal("only clients file tickets")
	}
	if !RoleAgent.CanBeAssigned() || RoleAdmin.CanBeAssigned() {
		t.Fatal("only agents receive assignments")
	}
	if !RoleAdmin.CanViewGlobalStats() || !RoleSuperAdmin.CanViewGlobalStats() || RoleAgent.CanViewGlobalStats() {
		t.Fatal("global stats are admin and superadmin only")
	}
}

func TestCanManageRole(t *testing.T) {
	cases := []struct {
		actor, target Role
		want          bool
	}{
		{RoleSuperAdmin, RoleAdmin, true},
		{RoleSuperAdmin, RoleSuperAdmin, true},
		{RoleAdmin, RoleAgent, true},
		{RoleAdmin, RoleClient, true},
		{RoleAdmin, RoleAdmin, false},
		{RoleAdmin, RoleSuperAdmin, false},
		{RoleAgent, RoleClient, false},
		{RoleClient, RoleClient, false},
	}
	for _, tc := range cases {
		if got := tc.actor.CanManageRole(tc.target); got != tc.want {
			t.Fatalf("%s managing %s = %v, want %v", tc.actor, tc.target, got, tc.want)
		}
	}
}
