package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config agrupa la configuración de runtime (variables de entorno).
// DATABASE_URL vacío => store in-memory; JWT_SECRET vacío => identidad por headers de debug.
type Config struct {
	Port string

	DatabaseURL string

	JWTSecret string
	JWTIssuer string

	// Servicio de identidad externo (alternativa a JWT_SECRET).
	AuthIntrospectURL    string
	AuthIntrospectAPIKey string

	DefaultAdminEmail string
	// Si ADMIN_PASSWORD está seteado, al arrancar se crea el admin por defecto
	// cuando no existe.
	AdminUsername string
	AdminPassword string
	Location      *time.Location

	BlobDriver        string
	BlobS3Bucket      string
	BlobS3Region      string
	BlobS3Endpoint    string
	BlobS3AccessKey   string
	BlobS3SecretKey   string
	BlobS3PathStyle   bool
	BlobPublicBaseURL string

	CorsOrigins []string

	LogLevel  string
	LogFormat string
	AppName   string
}

func Load() Config {
	return Config{
		Port:                 envOr("PORT", "8080"),
		DatabaseURL:          envOr("DATABASE_URL", ""),
		JWTSecret:            envOr("JWT_SECRET", ""),
		JWTIssuer:            envOr("JWT_ISSUER", "cat-care"),
		AuthIntrospectURL:    envOr("AUTH_INTROSPECT_URL", ""),
		AuthIntrospectAPIKey: envOr("AUTH_INTROSPECT_API_KEY", ""),
		DefaultAdminEmail:    strings.ToLower(envOr("DEFAULT_ADMIN_EMAIL", "admin@example.com")),
		AdminUsername:        envOr("ADMIN_USERNAME", "admin"),
		AdminPassword:        envOr("ADMIN_PASSWORD", ""),
		Location:             loadLocation(envOr("TIMEZONE", "UTC")),
		BlobDriver:           strings.ToLower(envOr("BLOB_DRIVER", "memory")),
		BlobS3Bucket:         envOr("BLOB_S3_BUCKET", ""),
		BlobS3Region:         envOr("BLOB_S3_REGION", "us-east-1"),
		BlobS3Endpoint:       envOr("BLOB_S3_ENDPOINT", ""),
		BlobS3AccessKey:      envOr("BLOB_S3_ACCESS_KEY_ID", ""),
		BlobS3SecretKey:      envOr("BLOB_S3_SECRET_ACCESS_KEY", ""),
		BlobS3PathStyle:      envOrBool("BLOB_S3_PATH_STYLE", false),
		BlobPublicBaseURL:    envOr("BLOB_PUBLIC_BASE_URL", "/uploads"),
		CorsOrigins:          parseCSV(envOr("CORS_ORIGINS", "")),
		LogLevel:             envOr("LOG_LEVEL", "info"),
		LogFormat:            envOr("LOG_FORMAT", "text"),
		AppName:              envOr("APP_NAME", "cat-care"),
	}
}

func envOr(key, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}

func envOrBool(key string, fallback bool) bool {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

// loadLocation cae a UTC si la zona no existe (ej: imagen sin tzdata).
func loadLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}

func parseCSV(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	items := make([]string, 0, len(parts))
	for _, part := range parts {
		if value := strings.TrimSpace(part); value != "" {
			items = append(items, value)
		}
	}
	return items
}
