package jwtverifier

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"cat-care/internal/ports/auth"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrTokenEmpty    = errors.New("token is empty")
	ErrNotConfigured = errors.New("jwt verifier not configured")
	ErrMissingSub    = errors.New("token claims missing sub")
)

// Verifier implementa auth.AuthVerifier con tokens HS256 emitidos por el
// servicio de login. Claims usados: sub (user id), role (user|admin), iss.
type Verifier struct {
	secret []byte
	issuer string
}

func New(secret, issuer string) *Verifier {
	return &Verifier{secret: []byte(secret), issuer: strings.TrimSpace(issuer)}
}

func (v *Verifier) Verify(_ context.Context, token string) (auth.Identity, error) {
	if v == nil || len(v.secret) == 0 {
		return auth.Identity{}, ErrNotConfigured
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return auth.Identity{}, ErrTokenEmpty
	}

	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return v.secret, nil
	}, opts...)
	if err != nil {
		return auth.Identity{}, fmt.Errorf("jwt verify failed: %w", err)
	}

	sub, _ := claims.GetSubject()
	sub = strings.TrimSpace(sub)
	if sub == "" {
		return auth.Identity{}, ErrMissingSub
	}
	role, _ := claims["role"].(string)

	return auth.Identity{UserID: sub, Role: auth.ParseRole(role), Authenticated: true}, nil
}
