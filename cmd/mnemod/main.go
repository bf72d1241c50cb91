package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"github.com/mnemo/mnemod/internal/catalog"
	"github.com/mnemo/mnemod/internal/config"
	"github.com/mnemo/mnemod/internal/jobs"
	"github.com/mnemo/mnemod/internal/store"
	"github.com/mnemo/mnemod/internal/web"
)

func main() {
	// Optional .env with the same MNEMOD_* keys as the environment.
	_ = godotenv.Load()

	flags := pflag.NewFlagSet("mnemod", pflag.ExitOnError)
	configPath := flags.String("config", "mnemod.yaml", "path to the yaml config file")
	flags.String("listen", ":8080", "HTTP listen address")
	flags.String("db_path", "mnemod.db", "path to the sqlite database file")
	flags.StringSlice("sources", nil, "card content sources: local directories or git URLs")
	flags.String("repos_dir", "repos", "checkout directory for git sources")
	flags.Duration("sync_interval", time.Hour, "background source sync cadence, 0 disables")
	_ = flags.Parse(os.Args[1:])

	cfg, err := config.Load(*configPath, flags)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	st, err := store.OpenSQLite(cfg.DBPath)
	if err != nil {
		slog.Error("failed to open database", "path", cfg.DBPath, "error", err)
		os.Exit(1)
	}
	defer st.Close()
	slog.Info("database opened", "path", cfg.DBPath)

	loader := &catalog.Loader{Sources: cfg.Sources, ReposDir: cfg.ReposDir}
	loader.Sync()
	cat, err := loader.Load()
	if err != nil {
		slog.Error("failed to load card catalog", "error", err)
		os.Exit(1)
	}

	server := web.NewServer(st, cat, loader, cfg.Scheduler, cfg.Session)

	if cfg.SyncInterval > 0 && len(cfg.Sources) > 0 {
		syncJob := jobs.NewSourceSync(cfg.SyncInterval, server.Resync)
		syncJob.Start()
		defer syncJob.Stop()
	}

	httpServer := &http.Server{
		Addr:              cfg.Listen,
		Handler:           server,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		slog.Info("listening", "addr", cfg.Listen, "cards", cat.Len())
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown failed", "error", err)
	}
}
