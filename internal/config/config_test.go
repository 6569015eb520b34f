package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"PORT", "DATABASE_URL", "JWT_SECRET", "DEFAULT_ADMIN_EMAIL", "TIMEZONE", "BLOB_DRIVER", "CORS_ORIGINS", "ADMIN_USERNAME", "ADMIN_PASSWORD"} {
		t.Setenv(k, "")
	}

	cfg := Load()
	if cfg.Port != "8080" || cfg.DatabaseURL != "" || cfg.JWTSecret != "" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.DefaultAdminEmail != "admin@example.com" {
		t.Fatalf("unexpected default admin email %q", cfg.DefaultAdminEmail)
	}
	if cfg.AdminUsername != "admin" || cfg.AdminPassword != "" {
		t.Fatalf("unexpected admin bootstrap defaults: %+v", cfg)
	}
	if cfg.Location != time.UTC || cfg.BlobDriver != "memory" || cfg.CorsOrigins != nil {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("DEFAULT_ADMIN_EMAIL", " Root@Example.COM ")
	t.Setenv("TIMEZONE", "Not/AZone")
	t.Setenv("BLOB_S3_PATH_STYLE", "true")
	t.Setenv("CORS_ORIGINS", "http://a.test, ,http://b.test")

	cfg := Load()
	if cfg.DefaultAdminEmail != "root@example.com" {
		t.Fatalf("expected lowercased email, got %q", cfg.DefaultAdminEmail)
	}
	if cfg.Location != time.UTC {
		t.Fatalf("unknown zone must fall back to UTC")
	}
	if !cfg.BlobS3PathStyle {
		t.Fatalf("expected path style true")
	}
	if len(cfg.CorsOrigins) != 2 || cfg.CorsOrigins[1] != "http://b.test" {
		t.Fatalf("unexpected origins %#v", cfg.CorsOrigins)
	}
}
