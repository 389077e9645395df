package auth

import (
	"github.com/spec-kit/intranet-portal/internal/domain"
)

// Capability names a UI affordance gated by role.
type Capability string

const (
	CapabilityManageUsers Capability = "manage_users"
)

// Capabilities is the set of affordances a role may see. The zero value is
// the empty set.
type Capabilities struct {
	ManageUsers bool `json:"canManageUsers"`
}

// Allows reports whether the set contains capability.
func (c Capabilities) Allows(capability Capability) bool {
	switch capability {
	case CapabilityManageUsers:
		return c.ManageUsers
	default:
		return false
	}
}

// CapabilitiesFor maps a role claim to its capabilities. The claim must match
// a declared role exactly; any other spelling, including a different case,
// gets the empty set. This is advisory UI gating; the API enforces
// permissions on its own.
func CapabilitiesFor(role domain.Role) Capabilities {
	switch role {
	case domain.RoleAdmin, domain.RoleSuporte:
		return Capabilities{ManageUsers: true}
	default:
		return Capabilities{}
	}
}

// CanManageUsers is true for Admin and Suporte only.
func CanManageUsers(role domain.Role) bool {
	return CapabilitiesFor(role).ManageUsers
}

// MenuItem is one entry of the portal navigation.
type MenuItem struct {
	Label string `json:"label"`
	Path  string `json:"path"`
}

// MenuFor lists the navigation entries visible to role.
func MenuFor(role domain.Role) []MenuItem {
	items := []MenuItem{{Label: "Dashboard", Path: "/dashboard"}}
	if CanManageUsers(role) {
		items = append(items, MenuItem{Label: "Usuários", Path: "/users"})
	}
	items = append(items,
		MenuItem{Label: "Meu Perfil", Path: "/profile"},
		MenuItem{Label: "Sair", Path: "/logout"},
	)
	return items
}
