package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"flutter/config"
	"flutter/internal/adapter/in/rest"
	"flutter/internal/adapter/out/storage"
	memstore "flutter/internal/adapter/out/storage/inmemory"
	pgstore "flutter/internal/adapter/out/storage/postgres"
	sqlitestore "flutter/internal/adapter/out/storage/sqlite"
	"flutter/internal/service"
	"flutter/pkg/logger"

	trmpgx "github.com/avito-tech/go-transaction-manager/drivers/pgxv5/v2"
	"github.com/jackc/pgx/v5/pgxpool"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	cfg    config.Config
	srv    *http.Server
	pool   *pgxpool.Pool
	sqlite *sql.DB
}

func NewApp(ctx context.Context, cfg config.Config) (*App, error) {
	log := logger.FromContext(ctx)
	a := &App{cfg: cfg}

	postStorage, err := a.openStorage(ctx)
	if err != nil {
		a.close()
		return nil, err
	}

	postSvc := service.NewPostService(storage.NewInstrumented(postStorage))
	router := rest.NewRouter(rest.NewHandler(postSvc), rest.RouterConfig{
		Logger:             log,
		CORSAllowedOrigins: cfg.CORS.Origins,
		RateLimitEnabled:   cfg.RateLimit.Enabled,
		RateLimitRequests:  cfg.RateLimit.Requests,
		RateLimitWindow:    cfg.RateLimit.Window,
		StaticDir:          cfg.Static.Dir,
	})

	addr := ":" + cfg.HTTP.Port
	a.srv = &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
		ErrorLog:          slog.NewLogLogger(log.Handler(), slog.LevelError),
	}

	log.Info("app initialized", "addr", addr, "storage", cfg.StorageType)
	return a, nil
}

func (a *App) openStorage(ctx context.Context) (service.PostStorage, error) {
	switch a.cfg.StorageType {
	case config.StoragePostgres:
		pool, err := pgstore.NewPool(ctx, pgstore.PoolConfig{
			DSN:      a.cfg.Postgres.GetDSN(),
			MaxConns: a.cfg.Postgres.MaxConns,
		})
		if err != nil {
			return nil, err
		}
		a.pool = pool
		if err := pgstore.EnsureSchema(ctx, pool); err != nil {
			return nil, err
		}
		return pgstore.NewPostStorage(pool, trmpgx.DefaultCtxGetter), nil

	case config.StorageSQLite:
		db, err := sqlitestore.Open(a.cfg.SQLite.Path)
		if err != nil {
			return nil, err
		}
		a.sqlite = db
		if err := sqlitestore.EnsureSchema(ctx, db); err != nil {
			return nil, err
		}
		return sqlitestore.NewPostStorage(db), nil

	default:
		return memstore.NewPostStorage(), nil
	}
}

// Handler exposes the configured router.
func (a *App) Handler() http.Handler {
	return a.srv.Handler
}

func (a *App) Run(ctx context.Context) error {
	log := logger.FromContext(ctx)
	defer a.close()

	errCh := make(chan error, 1)
	go func() {
		log.Info("http server listening", "addr", a.srv.Addr)
		errCh <- a.srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown requested")
		shCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := a.srv.Shutdown(shCtx); err != nil {
			return fmt.Errorf("http shutdown: %w", err)
		}
		return nil

	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func (a *App) close() {
	if a.pool != nil {
		a.pool.Close()
	}
	if a.sqlite != nil {
		_ = a.sqlite.Close()
	}
}
