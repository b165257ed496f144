package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"profile-frames/internal/analytics"
	"profile-frames/internal/auth"
	"profile-frames/internal/cache"
	"profile-frames/internal/config"
	"profile-frames/internal/records"
	"profile-frames/internal/signer"
	"profile-frames/internal/telemetry"
)

var version = "dev"

func main() {
	configPath := flag.String("config", os.Getenv(config.EnvPrefix+"CONFIG"), "path to YAML config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	InitLogger(cfg.Log.Level, cfg.Log.Format)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdownTelemetry, err := telemetry.Init(ctx, telemetry.Config{
		Exporter:     cfg.Telemetry.Exporter,
		OTLPEndpoint: cfg.Telemetry.Endpoint,
		OTLPInsecure: cfg.Telemetry.Insecure,
		ServiceName:  cfg.Telemetry.ServiceName,
		Version:      version,
	})
	if err != nil {
		return fmt.Errorf("init telemetry: %w", err)
	}
	defer func() {
		sctx, scancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer scancel()
		if err := shutdownTelemetry(sctx); err != nil {
			slog.Warn("telemetry shutdown failed", "error", err)
		}
	}()

	store, storeKind, err := records.Open(ctx, cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer store.Close()
	slog.Info("record store initialized", "store", storeKind)

	backend, backendKind := cache.Open(cfg.Cache.RedisURL, cfg.Cache.Prefix, cfg.Cache.MaxEntries)
	defer backend.Close()

	secret := []byte(cfg.Secret)
	if len(secret) == 0 {
		slog.Warn("no secret configured, using a random one; sessions will not survive restarts")
		if secret, err = auth.RandomSecret(); err != nil {
			return err
		}
	}

	// The profile page never signs (hasSigner is false); this identity only fills the
	// signer slot of the frame controller.
	identity, err := signer.DevImpersonation(cfg.Signer.ImpersonateFID, cfg.Signer.Scheme)
	if err != nil {
		return fmt.Errorf("create signer: %w", err)
	}

	meter, err := analytics.NewMeterLogger()
	if err != nil {
		return fmt.Errorf("create analytics meter: %w", err)
	}

	srv, err := NewServer(ServerDeps{
		Config:       cfg,
		Store:        store,
		Cache:        backend,
		CacheBackend: backendKind,
		StoreKind:    storeKind,
		Analytics:    analytics.Multi{analytics.NewSlogLogger(nil), meter},
		Signer:       identity,
		Secret:       secret,
	})
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      srv.Routes(),
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- httpServer.ListenAndServe() }()
	slog.Info("listening", "addr", cfg.HTTP.Addr, "proxy_base_url", cfg.HTTP.ProxyBaseURL)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-sigCh:
		slog.Info("shutting down", "signal", sig.String())
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
	}

	sctx, scancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer scancel()
	return httpServer.Shutdown(sctx)
}
