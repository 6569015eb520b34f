package users

import (
	"time"

	"cat-care/internal/ports/auth"
)

type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	Role         auth.Role // user | admin
	IsBlocked    bool
	AvatarKey    string // clave en el blob store; vacío = sin avatar
	AvatarPath   string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	LastLoginAt  *time.Time
}

// AccountChange: los campos nil no se tocan. Nombre y apellido van juntos.
type AccountChange struct {
	FirstName    *string
	LastName     *string
	PasswordHash *string
	AvatarKey    *string
	AvatarPath   *string
}

type Stats struct {
	TotalUsers   int
	AdminUsers   int
	BlockedUsers int
}
