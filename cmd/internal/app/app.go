// Package app wires the Warden server runtime: config, logging, storage
// and the HTTP routes.
//
// It is intentionally small and deterministic so startup either produces
// a fully working server or a clear error.
package app

import (
	"context"
	"errors"
	"net/http"

	"warden/cmd/identity"
	usersapi "warden/cmd/internal/users/api"
	"warden/cmd/security/password"
	"warden/cmd/security/token"

	"github.com/jackc/pgx/v5/pgxpool"
)

// App is the Warden server runtime.
type App struct {
	cfg Config
	log Logger

	dbPool    *pgxpool.Pool
	dbEnabled bool

	manager *identity.Manager
	users   *usersapi.Handler
}

// New constructs a fully wired App instance from config and logger.
// All security-sensitive configuration (hash parameters, token secret)
// is validated here so a misconfigured server never starts.
func New(ctx context.Context, cfg Config, log Logger) (*App, error) {
	if log == nil {
		log = NewLogger(cfg.LogLevel, cfg.LogFormat)
	}

	hasher, err := password.FromEnv()
	if err != nil {
		return nil, err
	}

	tokenCfg, err := token.FromEnv()
	if err != nil {
		return nil, err
	}
	tokens, err := token.NewManager(tokenCfg)
	if err != nil {
		return nil, err
	}

	store, dbPool, dbEnabled, err := newStore(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	manager, err := identity.NewManager(store, hasher, tokens)
	if err != nil {
		if dbPool != nil {
			dbPool.Close()
		}
		return nil, err
	}

	apiCfg, err := usersapi.LoadConfigFromEnv()
	if err != nil {
		if dbPool != nil {
			dbPool.Close()
		}
		return nil, err
	}
	users, err := usersapi.NewHandler(log, apiCfg, manager, tokens)
	if err != nil {
		if dbPool != nil {
			dbPool.Close()
		}
		return nil, err
	}

	return &App{
		cfg:       cfg,
		log:       log,
		dbPool:    dbPool,
		dbEnabled: dbEnabled,
		manager:   manager,
		users:     users,
	}, nil
}

// newStore decides between Postgres-backed persistence and the in-memory
// dev store.
func newStore(ctx context.Context, cfg Config, log Logger) (identity.Store, *pgxpool.Pool, bool, error) {
	if cfg.DatabaseURL == "" {
		log.Info("db.disabled.inmemory_store")
		return identity.NewMemoryStore(), nil, false, nil
	}

	pool, err := NewDBPool(ctx, cfg)
	if err != nil {
		return nil, nil, false, err
	}

	store, err := identity.NewPostgresStore(pool, identity.WithSchema(cfg.DBSchema))
	if err != nil {
		pool.Close()
		return nil, nil, false, err
	}

	log.Info("db.enabled.postgres_store", "schema", cfg.DBSchema)
	return store, pool, true, nil
}

// Run seeds the bootstrap account, starts the HTTP server and blocks
// until context cancellation or a fatal server error.
func (a *App) Run(ctx context.Context) error {
	if err := Bootstrap(ctx, a.log, a.manager, a.cfg); err != nil {
		if a.dbPool != nil {
			a.dbPool.Close()
		}
		return err
	}

	mux := http.NewServeMux()
	registerHTTP(mux, a.log, a.cfg, a.dbPool, a.dbEnabled, a.users)

	srv := &http.Server{
		Addr:              a.cfg.HTTPAddr,
		Handler:           WithRequestLogging(mux, a.log),
		ReadHeaderTimeout: a.cfg.ReadHeaderTimeout,
		ReadTimeout:       a.cfg.ReadTimeout,
		WriteTimeout:      a.cfg.WriteTimeout,
		IdleTimeout:       a.cfg.IdleTimeout,
		MaxHeaderBytes:    a.cfg.MaxHeaderBytes,
	}

	a.log.Info("server.start", "addr", a.cfg.HTTPAddr, "db_enabled", a.dbEnabled)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		a.log.Info("server.stop", "reason", "context_done")
	case err := <-errCh:
		a.log.Error("server.fail", "err", err)
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.log.Error("server.shutdown.fail", "err", err)
		return err
	}

	if a.dbPool != nil {
		a.dbPool.Close()
	}

	a.log.Info("server.stopped")
	return nil
}
