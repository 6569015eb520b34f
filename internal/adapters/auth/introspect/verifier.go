package introspect

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"cat-care/internal/platform/httpclient"
	"cat-care/internal/ports/auth"
)

var (
	ErrNotConfigured = errors.New("introspect verifier not configured")
	ErrTokenEmpty    = errors.New("token is empty")
	ErrUnauthorized  = errors.New("token rejected")
	ErrUpstream      = errors.New("introspect upstream error")
)

const verifyPath = "/v1/tokens/verify"

// Config del verificador remoto. Se usa cuando los tokens los emite un
// servicio de identidad externo en vez de JWT_SECRET.
type Config struct {
	BaseURL string
	APIKey  string

	// APIKeyHeader por defecto es "X-Api-Key".
	APIKeyHeader string
	Timeout      time.Duration
}

// Verifier implementa auth.AuthVerifier preguntándole al servicio de
// identidad por cada token.
type Verifier struct {
	client       *httpclient.Client
	apiKey       string
	apiKeyHeader string
}

func New(cfg Config) (*Verifier, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, ErrNotConfigured
	}
	c, err := httpclient.New(cfg.BaseURL, cfg.Timeout)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotConfigured, err)
	}
	h := strings.TrimSpace(cfg.APIKeyHeader)
	if h == "" {
		h = "X-Api-Key"
	}
	return &Verifier{client: c, apiKey: strings.TrimSpace(cfg.APIKey), apiKeyHeader: h}, nil
}

type verifyResponse struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
}

func (v *Verifier) Verify(ctx context.Context, token string) (auth.Identity, error) {
	if v == nil || v.client == nil {
		return auth.Identity{}, ErrNotConfigured
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return auth.Identity{}, ErrTokenEmpty
	}

	var out verifyResponse
	err := v.client.DoJSON(ctx, http.MethodPost, verifyPath, map[string]string{
		v.apiKeyHeader:  v.apiKey,
		"Authorization": "Bearer " + token,
	}, map[string]string{"token": token}, &out)

	var se *httpclient.StatusError
	switch {
	case errors.As(err, &se) && (se.StatusCode == http.StatusUnauthorized || se.StatusCode == http.StatusForbidden):
		return auth.Identity{}, ErrUnauthorized
	case err != nil:
		return auth.Identity{}, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	userID := strings.TrimSpace(out.UserID)
	if userID == "" {
		return auth.Identity{}, fmt.Errorf("%w: response missing user_id", ErrUpstream)
	}
	return auth.Identity{UserID: userID, Role: auth.ParseRole(out.Role), Authenticated: true}, nil
}
