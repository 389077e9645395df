package domain

import "strings"

// Role is the role claim carried on a user record.
type Role string

const (
	RoleAdmin        Role = "Admin"
	RoleSuporte      Role = "Suporte"
	RoleUsuarioComum Role = "UsuarioComum"
)

// ParseRole normalizes role spellings typed into user forms (for example
// "Usuario Comum"). Unrecognized values are returned as-is with ok=false.
// Capability checks never go through ParseRole; they compare the claim
// exactly.
func ParseRole(raw string) (Role, bool) {
	switch strings.ToLower(strings.Join(strings.Fields(raw), "")) {
	case "admin":
		return RoleAdmin, true
	case "suporte":
		return RoleSuporte, true
	case "usuariocomum", "usuáriocomum":
		return RoleUsuarioComum, true
	}
	return Role(raw), false
}

// Known reports whether r is one of the declared roles.
func (r Role) Known() bool {
	_, ok := ParseRole(string(r))
	return ok
}

// UserRecord is the server-issued user snapshot kept in the session.
type UserRecord struct {
	ID           int64  `json:"id"`
	Nome         string `json:"nome"`
	Email        string `json:"email"`
	Role         Role   `json:"role"`
	Departamento string `json:"departamento"`
	Ativo        bool   `json:"ativo"`
}

// WithNome returns a copy of u with only the display name replaced.
func (u UserRecord) WithNome(nome string) UserRecord {
	u.Nome = nome
	return u
}
