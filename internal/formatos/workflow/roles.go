package workflow

import "strings"

// Role is the normalized workflow role. Raw role strings from users are
// mapped here exactly once; nothing downstream compares raw strings.
type Role string

const (
	RoleProductionManager Role = "production_manager"
	RoleOperator          Role = "operator"
	RoleQualityManager    Role = "quality_manager"
)

// MapRole normalizes a raw role string to a workflow role. Total over all
// strings: unknown and legacy roles fall back to operator so the UI never
// hard-fails on an unrecognized role.
func MapRole(raw string) Role {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "superadmin", "admin", "gerente_produccion":
		return RoleProductionManager
	case "produccion":
		return RoleOperator
	case "calidad", "gerente_calidad":
		return RoleQualityManager
	default:
		return RoleOperator
	}
}

// IsSuperadmin reports whether the raw role is the superadmin bypass role.
func IsSuperadmin(raw string) bool {
	return strings.EqualFold(strings.TrimSpace(raw), "superadmin")
}

// Actor is the acting user as seen by the workflow: identity plus the raw
// role string it was authenticated with.
type Actor struct {
	ID      string
	Name    string
	RawRole string
}

// Role returns the actor's normalized workflow role.
func (a *Actor) Role() Role {
	if a == nil {
		return RoleOperator
	}
	return MapRole(a.RawRole)
}

// Superadmin reports whether the actor bypasses section permissions.
func (a *Actor) Superadmin() bool {
	return a != nil && IsSuperadmin(a.RawRole)
}
