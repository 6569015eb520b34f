package middleware

import (
	"context"
	"net/http"
	"strings"

	"cat-care/internal/platform/apperr"
	"cat-care/internal/platform/httpjson"
	"cat-care/internal/ports/auth"
)

type ctxKey string

const identityKey ctxKey = "identity"

const (
	HeaderDebugUserID = "X-Debug-User-ID"
	HeaderDebugRole   = "X-Debug-Role"
)

// Identify:
// - Si verifier != nil y viene Bearer token => Verify() y setea la identidad.
// - Si verifier == nil => modo dev: X-Debug-User-ID (+ X-Debug-Role opcional).
// - Token inválido o ausente => anónimo. Los handlers deciden el 401.
func Identify(verifier auth.AuthVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := auth.Anonymous()

			if verifier == nil {
				if uid := strings.TrimSpace(r.Header.Get(HeaderDebugUserID)); uid != "" {
					id = auth.Identity{
						UserID:        uid,
						Role:          auth.ParseRole(r.Header.Get(HeaderDebugRole)),
						Authenticated: true,
					}
				}
			} else if token := bearerToken(r.Header.Get("Authorization")); token != "" {
				if verified, err := verifier.Verify(r.Context(), token); err == nil {
					id = verified
				}
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}

func WithIdentity(ctx context.Context, id auth.Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// GetIdentity nunca falla: sin identidad en el contexto devuelve anónimo.
func GetIdentity(ctx context.Context) auth.Identity {
	if id, ok := ctx.Value(identityKey).(auth.Identity); ok {
		return id
	}
	return auth.Anonymous()
}

func bearerToken(authHeader string) string {
	if strings.TrimSpace(authHeader) == "" {
		return ""
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 {
		return ""
	}
	if !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// RequireIdentity corta con 401 los requests anónimos.
func RequireIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !GetIdentity(r.Context()).Valid() {
			httpjson.Error(w, r, nil, apperr.ErrUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}
