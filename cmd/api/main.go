package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cat-care/internal/adapters/auth/bcrypthash"
	"cat-care/internal/adapters/auth/introspect"
	"cat-care/internal/adapters/auth/jwtverifier"
	memblob "cat-care/internal/adapters/blob/memory"
	s3blob "cat-care/internal/adapters/blob/s3"
	"cat-care/internal/adapters/storage/postgres"
	"cat-care/internal/config"
	"cat-care/internal/platform/logger"
	"cat-care/internal/ports/auth"
	"cat-care/internal/ports/blob"
	"cat-care/internal/router"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
)

// @title Cat Care API
// @version 1.0
// @BasePath /
func main() {
	// .env es opcional (dev local)
	_ = godotenv.Load()

	cfg := config.Load()
	log := logger.New(logger.Options{
		Level:  logger.ParseLevel(cfg.LogLevel),
		Format: logger.ParseFormat(cfg.LogFormat),
		App:    cfg.AppName,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var db *sqlx.DB
	if cfg.DatabaseURL != "" {
		var err error
		db, err = postgres.Open(cfg.DatabaseURL)
		if err != nil {
			log.Error("db open failed", map[string]any{"err": err.Error()})
			os.Exit(1)
		}
		defer db.Close()
		if err := postgres.Migrate(ctx, db); err != nil {
			log.Error("migrations failed", map[string]any{"err": err.Error()})
			os.Exit(1)
		}
		log.Info("using postgres store", nil)
	} else {
		log.Warn("DATABASE_URL vacío, usando store in-memory", nil)
	}

	blobs, err := newBlobStore(ctx, cfg)
	if err != nil {
		log.Error("blob store init failed", map[string]any{"driver": cfg.BlobDriver, "err": err.Error()})
		os.Exit(1)
	}

	verifier, err := newVerifier(cfg)
	if err != nil {
		log.Error("auth verifier init failed", map[string]any{"err": err.Error()})
		os.Exit(1)
	}
	if verifier == nil {
		log.Warn("sin JWT_SECRET ni AUTH_INTROSPECT_URL, identidad por headers de debug", nil)
	}

	app := router.New(router.Options{
		AuthVerifier:      verifier,
		DB:                db,
		Blob:              blobs,
		Hasher:            bcrypthash.New(0),
		Logger:            log,
		Location:          cfg.Location,
		DefaultAdminEmail: cfg.DefaultAdminEmail,
		CorsOrigins:       cfg.CorsOrigins,
	})

	if err := app.EnsureDefaultAdmin(ctx, cfg.AdminUsername, cfg.AdminPassword); err != nil {
		log.Error("default admin bootstrap failed", map[string]any{"err": err.Error()})
		os.Exit(1)
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      app.Handler,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("shutdown failed", map[string]any{"err": err.Error()})
		}
	}()

	log.Info("starting server", map[string]any{"addr": srv.Addr})
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("server error", map[string]any{"err": err.Error()})
		os.Exit(1)
	}
	log.Info("server stopped", nil)
}

// newVerifier devuelve nil en modo dev.
func newVerifier(cfg config.Config) (auth.AuthVerifier, error) {
	switch {
	case cfg.JWTSecret != "":
		return jwtverifier.New(cfg.JWTSecret, cfg.JWTIssuer), nil
	case cfg.AuthIntrospectURL != "":
		return introspect.New(introspect.Config{BaseURL: cfg.AuthIntrospectURL, APIKey: cfg.AuthIntrospectAPIKey})
	default:
		return nil, nil
	}
}

func newBlobStore(ctx context.Context, cfg config.Config) (blob.Store, error) {
	switch cfg.BlobDriver {
	case "s3":
		return s3blob.New(ctx, s3blob.Config{
			Region:          cfg.BlobS3Region,
			Bucket:          cfg.BlobS3Bucket,
			Endpoint:        cfg.BlobS3Endpoint,
			AccessKeyID:     cfg.BlobS3AccessKey,
			SecretAccessKey: cfg.BlobS3SecretKey,
			PathStyle:       cfg.BlobS3PathStyle,
		})
	default:
		return memblob.New(cfg.BlobPublicBaseURL), nil
	}
}
