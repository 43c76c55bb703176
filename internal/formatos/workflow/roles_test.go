package workflow

import "testing"

func TestMapRole(t *testing.T) {
	cases := []struct {
		raw  string
		want Role
	}{
		{"superadmin", RoleProductionManager},
		{"admin", RoleProductionManager},
		{"gerente_produccion", RoleProductionManager},
		{"produccion", RoleOperator},
		{"calidad", RoleQualityManager},
		{"gerente_calidad", RoleQualityManager},
		// case-insensitive
		{"SUPERADMIN", RoleProductionManager},
		{"Gerente_Calidad", RoleQualityManager},
		{"  produccion  ", RoleOperator},
		// unknown and legacy roles fall back to operator, never fail
		{"", RoleOperator},
		{"almacenista", RoleOperator},
		{"role-from-2019", RoleOperator},
	}
	for _, c := range cases {
		if got := MapRole(c.raw); got != c.want {
			t.Errorf("MapRole(%q) = %s, want %s", c.raw, got, c.want)
		}
	}
}

func TestIsSuperadmin(t *testing.T) {
	if !IsSuperadmin("superadmin") || !IsSuperadmin("SuperAdmin") {
		t.Error("superadmin should be detected case-insensitively")
	}
	if IsSuperadmin("admin") {
		t.Error("admin is not superadmin")
	}
}

func TestActorRole(t *testing.T) {
	a := &Actor{ID: "u1", RawRole: "superadmin"}
	if a.Role() != RoleProductionManager {
		t.Errorf("superadmin maps to production_manager, got %s", a.Role())
	}
	if !a.Superadmin() {
		t.Error("superadmin actor should bypass")
	}
	var nilActor *Actor
	if nilActor.Role() != RoleOperator {
		t.Error("nil actor defaults to operator")
	}
}
