package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	pg "github.com/DevSsChar/SnapCast/internal/storage/postgres"
	"github.com/DevSsChar/SnapCast/internal/video/auth"
	"github.com/DevSsChar/SnapCast/internal/video/guard"
	"github.com/DevSsChar/SnapCast/internal/video/httpapi"
	"github.com/DevSsChar/SnapCast/internal/video/service"
	"github.com/DevSsChar/SnapCast/internal/video/stream"
)

func run(ctx context.Context, logger zerolog.Logger) error {
	_ = godotenv.Load()

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		return fmt.Errorf("DATABASE_URL is empty")
	}

	db, err := pg.Connect(ctx, dsn)
	if err != nil {
		return fmt.Errorf("db connect: %w", err)
	}
	defer db.Close()

	// OBJECT_STORE selects the binary store backend: a MinIO/S3 bucket with
	// presigned PUT targets, or the default stream-API client.
	var store stream.ObjectStore
	if os.Getenv("OBJECT_STORE") == "minio" {
		store, err = stream.NewMinioStore(ctx, stream.MinioConfig{
			Endpoint:   os.Getenv("MINIO_ENDPOINT"),
			AccessKey:  os.Getenv("MINIO_ACCESS_KEY"),
			SecretKey:  os.Getenv("MINIO_SECRET_KEY"),
			UseSSL:     os.Getenv("MINIO_USE_SSL") == "true",
			Bucket:     os.Getenv("MINIO_BUCKET"),
			CDNBaseURL: os.Getenv("CDN_BASE_URL"),
		})
		if err != nil {
			return fmt.Errorf("minio store: %w", err)
		}
	} else {
		store, err = stream.NewClient(stream.Config{
			StreamBaseURL:  os.Getenv("STREAM_BASE_URL"),
			LibraryID:      os.Getenv("STREAM_LIBRARY_ID"),
			StorageBaseURL: os.Getenv("STORAGE_BASE_URL"),
			CDNBaseURL:     os.Getenv("CDN_BASE_URL"),
			EmbedBaseURL:   os.Getenv("EMBED_BASE_URL"),
			StreamKey:      os.Getenv("STREAM_ACCESS_KEY"),
			StorageKey:     os.Getenv("STORAGE_ACCESS_KEY"),
		}, logger)
		if err != nil {
			return fmt.Errorf("stream client: %w", err)
		}
	}

	sessions, err := auth.NewJWTProvider([]byte(os.Getenv("SESSION_SECRET")))
	if err != nil {
		return fmt.Errorf("session provider: %w", err)
	}

	// Without a remote decision engine all counting happens in process.
	var engine guard.Engine
	if url := os.Getenv("GUARD_URL"); url != "" {
		engine, err = guard.NewHTTPEngine(url, os.Getenv("GUARD_API_KEY"), 0)
		if err != nil {
			return fmt.Errorf("guard engine: %w", err)
		}
	} else {
		engine = guard.NewMemoryEngine()
	}

	// Dependencies
	repo := pg.NewVideoRepo(db)
	events := pg.NewOutboxRepo(db)
	gate := guard.NewGateway(engine, logger)
	svc := service.New(repo, store, gate, events, logger)
	h := httpapi.New(svc, sessions, logger)
	router := httpapi.NewRouter(h)

	addr := os.Getenv("HTTP_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)

	go func() {
		logger.Info().Str("addr", addr).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil

	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen and serve: %w", err)
	}
}
