package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"cat-care/internal/ports/auth"
)

type stubVerifier struct {
	id  auth.Identity
	err error
}

func (s stubVerifier) Verify(_ context.Context, _ string) (auth.Identity, error) {
	return s.id, s.err
}

func identityFor(t *testing.T, v auth.AuthVerifier, headers map[string]string) auth.Identity {
	t.Helper()

	var got auth.Identity
	h := Identify(v)(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		got = GetIdentity(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for k, val := range headers {
		req.Header.Set(k, val)
	}
	h.ServeHTTP(httptest.NewRecorder(), req)
	return got
}

func TestIdentify_DevHeaders(t *testing.T) {
	id := identityFor(t, nil, map[string]string{HeaderDebugUserID: "u-1", HeaderDebugRole: "ADMIN"})
	if !id.Valid() || !id.IsAdmin() || id.UserID != "u-1" {
		t.Fatalf("unexpected identity %+v", id)
	}

	id = identityFor(t, nil, map[string]string{HeaderDebugUserID: "u-2", HeaderDebugRole: "root"})
	if id.Role != auth.RoleUser {
		t.Fatalf("unknown role must degrade to user, got %q", id.Role)
	}

	id = identityFor(t, nil, nil)
	if id.Authenticated || id.Role != auth.RoleAnonymous {
		t.Fatalf("expected anonymous, got %+v", id)
	}
}

func TestIdentify_VerifierIgnoresDebugHeaders(t *testing.T) {
	v := stubVerifier{id: auth.Identity{UserID: "jwt-user", Role: auth.RoleUser, Authenticated: true}}

	id := identityFor(t, v, map[string]string{HeaderDebugUserID: "intruder"})
	if id.Authenticated {
		t.Fatalf("debug headers must be ignored when a verifier is configured")
	}

	id = identityFor(t, v, map[string]string{"Authorization": "Bearer abc"})
	if id.UserID != "jwt-user" {
		t.Fatalf("expected verified identity, got %+v", id)
	}

	bad := stubVerifier{err: errors.New("expired")}
	id = identityFor(t, bad, map[string]string{"Authorization": "Bearer abc"})
	if id.Authenticated {
		t.Fatalf("invalid token must yield anonymous")
	}
}

func TestBearerToken(t *testing.T) {
	cases := map[string]string{
		"":             "",
		"Bearer":       "",
		"Basic xyz":    "",
		"bearer  tok ": "tok",
	}
	for in, want := range cases {
		if got := bearerToken(in); got != want {
			t.Fatalf("bearerToken(%q) = %q, want %q", in, got, want)
		}
	}
}
