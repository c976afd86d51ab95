package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/marvel-explorer/internal/core"
	"github.com/JonMunkholm/marvel-explorer/internal/query"
	"github.com/JonMunkholm/marvel-explorer/internal/schema"
	"github.com/JonMunkholm/marvel-explorer/internal/web"
)

func serveCmd(envFile *string) *cobra.Command {
	var (
		host string
		port int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		Long: `Start the HTTP API server.

Relations are created if missing. When INGEST_ON_START is true an ingestion
run starts with the server; INGEST_INTERVAL repeats it while serving. Both
need snapshot settings (SNAPSHOT_DIR, or SNAPSHOT_URL / CLOUDCUBE_URL with
credentials).`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(*envFile, host, port)
		},
	}

	cmd.Flags().StringVar(&host, "host", "", "Server host to bind to (overrides SERVER_HOST)")
	cmd.Flags().IntVar(&port, "port", 0, "Server port to listen on (overrides SERVER_PORT)")

	return cmd
}

func runServe(envFile, host string, port int) error {
	cfg, err := loadConfig(envFile)
	if err != nil {
		return err
	}
	if host != "" {
		cfg.Server.Host = host
	}
	if port != 0 {
		cfg.Server.Port = port
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := openDatabase(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			slog.Warn("close database", "error", err)
		}
	}()

	if _, err := schema.EnsureTables(ctx, db); err != nil {
		return fmt.Errorf("ensure tables: %w", err)
	}
	slog.Info("tables registered", "count", core.TableCount())

	server := web.NewServer(query.New(db), db, web.Options{
		RequestTimeout: cfg.Server.RequestTimeout,
		RateLimit:      cfg.Rate,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
	})

	// Background ingestion outlives the signal context so shutdown can
	// cancel it explicitly before waiting for it.
	jobCtx, cancelJobs := context.WithCancel(context.Background())
	defer cancelJobs()

	var engine *core.Engine
	if cfg.Ingest.OnStart || cfg.Ingest.Interval > 0 {
		engine, err = newEngine(cfg, db)
		if err != nil {
			return err
		}
		go engine.StartScheduler(jobCtx, cfg.Ingest.Interval, cfg.Ingest.OnStart)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start(cfg.Server)
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("shutting down...")
	cancelJobs()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if engine != nil && engine.Limiter().ActiveCount() > 0 {
		slog.Info("waiting for ingestion to stop")
		if err := engine.Limiter().WaitForDrain(shutdownCtx); err != nil {
			slog.Warn("ingestion did not stop in time", "error", err)
		}
	}

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
		fmt.Fprintln(os.Stderr, "shutdown error:", err)
		return errSilent
	}
	slog.Info("server stopped")
	return nil
}
