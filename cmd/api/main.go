// Package main is the entry point for the lunar calendar API server.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/zapponejosh/lunar-api/internal/api"
	"github.com/zapponejosh/lunar-api/internal/config"
	"github.com/zapponejosh/lunar-api/internal/database"
	"github.com/zapponejosh/lunar-api/internal/logger"
	"github.com/zapponejosh/lunar-api/internal/lunar"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	log := logger.Setup(cfg)

	log.Info("starting lunar API",
		slog.String("env", cfg.Env),
		slog.Int("port", cfg.Port),
		slog.String("table_source", cfg.TableSource),
		slog.String("log_level", cfg.LogLevel),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server stopped with error", slog.Any("error", err))
		os.Exit(1)
	}

	log.Info("server stopped")
}

func run(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	var db *database.DB
	if cfg.TableSource == config.SourceDatabase {
		var err error
		db, err = database.Open(database.DefaultConfig(cfg.DatabasePath), log)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer db.Close()

		if _, err := db.Migrate(ctx); err != nil {
			return fmt.Errorf("run migrations: %w", err)
		}
	}

	loader := tableLoader(cfg, db)

	table, err := loader(ctx)
	if err != nil {
		return fmt.Errorf("load reference table: %w", err)
	}
	store := lunar.NewStore(table)

	r := table.Range()
	log.Info("reference table loaded",
		slog.String("version", table.Metadata().Version),
		slog.Int("min_year", r.MinYear),
		slog.Int("max_year", r.MaxYear),
	)

	handlers := api.NewHandlers(store, db, loader, cfg, log)
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           api.SetupRoutes(handlers, cfg, log),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	eg, egctx := errgroup.WithContext(ctx)

	if cfg.WatchTable {
		eg.Go(func() error {
			return lunar.WatchFile(egctx, cfg.TablePath, store, log)
		})
	}

	eg.Go(func() error {
		log.Info("lunar API ready", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	eg.Go(func() error {
		<-egctx.Done()
		log.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}

// tableLoader returns the reader for the configured table source. The same
// loader serves startup and the admin reload endpoint.
func tableLoader(cfg *config.Config, db *database.DB) api.TableLoader {
	switch cfg.TableSource {
	case config.SourceFile:
		return func(context.Context) (*lunar.Table, error) {
			return lunar.LoadFile(cfg.TablePath)
		}
	case config.SourceDatabase:
		return db.LoadActiveTable
	default:
		return func(context.Context) (*lunar.Table, error) {
			return lunar.Embedded()
		}
	}
}
