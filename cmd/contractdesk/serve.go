// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"contractdesk/internal/cache"
	"contractdesk/internal/config"
	"contractdesk/internal/database"
	"contractdesk/internal/engine"
	"contractdesk/internal/handlers"
	"contractdesk/internal/kv"
	"contractdesk/internal/middleware"
	"contractdesk/internal/render"
	"contractdesk/internal/router"
	"contractdesk/internal/storage"
	"contractdesk/internal/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending PostgreSQL migrations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		db, err := database.Connect(cfg.DSN())
		if err != nil {
			return err
		}
		defer db.Close()
		if err := database.Migrate(db); err != nil {
			return err
		}
		version, err := database.Version(db)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "schema at version %d\n", version)
		return nil
	},
}

// backendHandles keeps the connections behind the kv store so they can be
// closed on shutdown.
type backendHandles struct {
	db     *sql.DB
	valkey *redis.Client
}

func (h backendHandles) Close() {
	if h.db != nil {
		h.db.Close()
	}
	if h.valkey != nil {
		h.valkey.Close()
	}
}

// openBackend connects the kv store selected by STORE_BACKEND.
func openBackend(cfg *config.Config) (kv.Store, backendHandles, error) {
	var h backendHandles
	switch cfg.StoreBackend {
	case config.BackendValkey:
		client, err := cache.ConnectValkey(cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword)
		if err != nil {
			return nil, h, err
		}
		h.valkey = client
		return kv.NewValkey(client), h, nil

	case config.BackendPostgres:
		db, err := database.Connect(cfg.DSN())
		if err != nil {
			return nil, h, err
		}
		h.db = db
		if err := database.Migrate(db); err != nil {
			h.Close()
			return nil, h, err
		}
		return kv.NewPostgres(db), h, nil

	default:
		slog.Warn("using in-memory store, data is lost on restart")
		return kv.NewMemory(), h, nil
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	slog.Info("configuration loaded",
		"env", cfg.Env,
		"addr", cfg.Addr(),
		"backend", cfg.StoreBackend,
		"latency", cfg.StoreLatency,
	)

	backend, handles, err := openBackend(cfg)
	if err != nil {
		return err
	}
	defer handles.Close()

	// S3-compatible object storage is optional; without it template
	// binaries live only inside the store as base64.
	var objects store.ObjectStorage
	if cfg.S3Endpoint != "" && cfg.S3AccessKey != "" {
		client, err := storage.New(cfg.S3Endpoint, cfg.S3Region, cfg.S3AccessKey, cfg.S3SecretKey, cfg.S3Bucket, cfg.S3PublicURL)
		if err != nil {
			return fmt.Errorf("initialize s3 storage: %w", err)
		}
		if client != nil {
			objects = client
			slog.Info("s3 storage connected", "endpoint", cfg.S3Endpoint, "bucket", client.Bucket())
		}
	}
	if objects == nil {
		slog.Info("s3 storage not configured, template files kept inline")
	}

	renderer, err := render.New()
	if err != nil {
		return fmt.Errorf("initialize renderer: %w", err)
	}

	categories := store.NewCategoryStore(backend, cfg.StoreLatency)
	templates := store.NewTemplateStore(backend, cfg.StoreLatency, categories, objects)
	contracts := store.NewContractStore(backend, cfg.StoreLatency)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if err := categories.EnsureDefaults(ctx); err != nil {
		return fmt.Errorf("seed categories: %w", err)
	}

	eng := engine.New(templates, contracts, renderer)
	if handles.valkey != nil {
		eng.SetExportCache(cache.NewExportCache(handles.valkey, cfg.ExportCacheTTL))
	}

	limiter := middleware.NewRateLimiter(cfg.RateLimitPerMinute, time.Minute)
	defer limiter.Stop()

	api := handlers.NewAPI(categories, templates, contracts, eng, cfg.UploadMaxBytes)
	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router.New(api, limiter),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	// Graceful shutdown: wait for SIGINT or SIGTERM, then drain connections.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-quit:
		slog.Info("shutdown signal received", "signal", sig)
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	slog.Info("server stopped gracefully")
	return nil
}
