package auth

import "context"

// AuthVerifier verifica un token y devuelve la identidad o error.
type AuthVerifier interface {
	Verify(ctx context.Context, token string) (Identity, error)
}

// PasswordHasher es el hash one-way de contraseñas (bcrypt en prod).
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) bool
}
