package auth

import "strings"

type Role string

const (
	RoleAnonymous Role = "anonymous"
	RoleUser      Role = "user"
	RoleAdmin     Role = "admin"
)

// ParseRole normaliza el rol que viene del token/header. Cualquier valor
// desconocido se trata como "user": nunca escala privilegios.
func ParseRole(s string) Role {
	if strings.EqualFold(strings.TrimSpace(s), string(RoleAdmin)) {
		return RoleAdmin
	}
	return RoleUser
}

// Identity es quién hace el request. Se pasa explícita a cada servicio;
// ningún servicio lee el contexto HTTP por su cuenta.
type Identity struct {
	UserID        string
	Role          Role
	Authenticated bool
}

func Anonymous() Identity {
	return Identity{Role: RoleAnonymous}
}

func (i Identity) IsAdmin() bool {
	return i.Authenticated && i.Role == RoleAdmin
}

// Valid indica que hay usuario autenticado con id.
func (i Identity) Valid() bool {
	return i.Authenticated && strings.TrimSpace(i.UserID) != ""
}
