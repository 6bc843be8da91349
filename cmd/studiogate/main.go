package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/creastudio/studiogate/internal/analytics"
	"github.com/creastudio/studiogate/internal/auth"
	"github.com/creastudio/studiogate/internal/authz"
	"github.com/creastudio/studiogate/internal/config"
	"github.com/creastudio/studiogate/internal/server"
	"github.com/creastudio/studiogate/internal/storage"
	"github.com/creastudio/studiogate/internal/supabase"
	"github.com/creastudio/studiogate/internal/telemetry"
	"github.com/creastudio/studiogate/migrations"
)

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	os.Exit(run0())
}

func run0() int {
	level := slog.LevelInfo
	if os.Getenv("STUDIOGATE_LOG_LEVEL") == "debug" {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, logger); err != nil {
		slog.Error("fatal error", "error", err)
		return 1
	}
	return 0
}

func run(ctx context.Context, logger *slog.Logger) error {
	// Load .env file if present (non-fatal; production won't have one).
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	slog.Info("studiogate starting", "version", version, "port", cfg.Port)

	otelShutdown, err := telemetry.Init(ctx, cfg.OTELEndpoint, cfg.ServiceName, version, cfg.OTELInsecure)
	if err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}
	defer func() { _ = otelShutdown(context.Background()) }()

	factory := supabase.NewFactory(cfg.SupabaseURL, cfg.SupabaseAnonKey, cfg.SupabaseServiceKey)

	// Direct Postgres is optional; without it the gateway works entirely
	// through the Supabase REST API.
	var db *storage.DB
	if cfg.DatabaseURL != "" {
		db, err = storage.New(ctx, cfg.DatabaseURL, logger)
		if err != nil {
			return fmt.Errorf("storage: %w", err)
		}
		defer db.Close()

		if err := db.RunMigrations(ctx, migrations.FS); err != nil {
			slog.Warn("migrations failed", "error", err)
		}
	}

	// Session verification: local JWT checks when the secret is configured,
	// otherwise one GoTrue round trip per gated request.
	var verifier auth.Verifier
	if cfg.SupabaseJWTSecret != "" {
		verifier, err = auth.NewJWTVerifier(cfg.SupabaseJWTSecret)
		if err != nil {
			return fmt.Errorf("auth: %w", err)
		}
		logger.Info("session verification: local (JWT secret configured)")
	} else {
		verifier = auth.NewRemoteVerifier(factory)
		logger.Info("session verification: remote (GoTrue lookup per request)")
	}

	// Role lookups prefer the pool; the REST path needs the service-role
	// client, whose configuration error is fatal here because the gate
	// cannot run without a role source.
	var roleSource authz.RoleSource
	if db != nil {
		roleSource = db
	} else {
		admin, err := factory.Admin()
		if err != nil {
			return fmt.Errorf("supabase: %w", err)
		}
		roleSource = admin
	}
	roles := authz.NewResolver(roleSource, cfg.RoleCacheTTL, logger)
	defer roles.Close()
	if cfg.RoleCacheTTL > 0 {
		logger.Info("role cache enabled", "ttl", cfg.RoleCacheTTL)
	}

	// Analytics sink selection mirrors the role source; the spool catches
	// records when no primary sink exists or the primary write fails.
	var primarySink analytics.Store
	if db != nil {
		primarySink = db
	} else if admin, err := factory.Admin(); err == nil {
		primarySink = &analytics.RESTStore{Client: admin}
	} else {
		logger.Warn("analytics: no primary sink available", "error", err)
	}

	var spool *storage.Spool
	if cfg.SpoolPath != "" {
		spool, err = storage.OpenSpool(cfg.SpoolPath, logger)
		if err != nil {
			return fmt.Errorf("spool: %w", err)
		}
		defer func() { _ = spool.Close() }()
		logger.Info("analytics spool enabled", "path", cfg.SpoolPath)
	}

	var fallbackSink analytics.Store
	if spool != nil {
		fallbackSink = spool
	}
	conversations := analytics.NewLogger(primarySink, fallbackSink, logger)

	var internalKeyHash string
	if cfg.InternalAPIKey != "" {
		internalKeyHash, err = auth.HashInternalKey(cfg.InternalAPIKey)
		if err != nil {
			return fmt.Errorf("auth: %w", err)
		}
	}

	upstream, err := url.Parse(cfg.UpstreamURL)
	if err != nil {
		return fmt.Errorf("parse upstream url: %w", err)
	}

	srv := server.New(server.ServerConfig{
		Verifier:        verifier,
		Roles:           roles,
		Analytics:       conversations,
		Logger:          logger,
		DB:              db,
		Port:            cfg.Port,
		ReadTimeout:     cfg.ReadTimeout,
		WriteTimeout:    cfg.WriteTimeout,
		Version:         version,
		Upstream:        upstream,
		InternalKeyHash: internalKeyHash,
	})

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		return err
	}

	slog.Info("studiogate shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("http shutdown error", "error", err)
	}

	slog.Info("studiogate stopped")
	return nil
}
