package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/tassioalves/controle-financeiro-semanal/internal/autoclose"
	"github.com/tassioalves/controle-financeiro-semanal/internal/config"
	"github.com/tassioalves/controle-financeiro-semanal/internal/database"
	appHttp "github.com/tassioalves/controle-financeiro-semanal/internal/http"
	weekHandler "github.com/tassioalves/controle-financeiro-semanal/internal/http/week"
	"github.com/tassioalves/controle-financeiro-semanal/internal/importer"
	"github.com/tassioalves/controle-financeiro-semanal/internal/kv"
	kvPostgres "github.com/tassioalves/controle-financeiro-semanal/internal/kv/postgres"
	"github.com/tassioalves/controle-financeiro-semanal/internal/week"
)

func main() {
	// .env is for local development only.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	store, cleanup, err := newStore(ctx, cfg)
	if err != nil {
		slog.Error("failed to initialize storage", "error", err, "backend", cfg.Storage.Backend)
		os.Exit(1)
	}
	defer cleanup()

	var (
		ledger        = week.New(store)
		importService = importer.NewService()
	)

	weekH := weekHandler.NewHandler(ledger, importService)
	router := appHttp.New(weekH)

	runner := autoclose.NewRunner(ledger, cfg.Schedule.CheckInterval)
	go runner.Run(ctx)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.Timeout)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown failed", "error", err)
		}
	}()

	slog.Info("starting server", "app", cfg.App.Name, "addr", server.Addr, "backend", cfg.Storage.Backend)

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped")
}

func newStore(ctx context.Context, cfg *config.Config) (kv.Store, func(), error) {
	if cfg.Storage.Backend == "memory" {
		return kv.NewMemory(), func() {}, nil
	}

	db, err := database.Open(ctx, cfg.ConnectionString())
	if err != nil {
		return nil, nil, fmt.Errorf("connecting to database: %w", err)
	}

	store, err := kvPostgres.New(ctx, db)
	if err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("preparing kv store: %w", err)
	}

	return store, func() { db.Close() }, nil
}
