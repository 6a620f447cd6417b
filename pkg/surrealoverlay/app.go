package surrealoverlay

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/surrealdb/surrealoverlay/pkg/logger"
	"github.com/surrealdb/surrealoverlay/pkg/store"
	"github.com/surrealdb/surrealoverlay/pkg/store/memory"
	"github.com/surrealdb/surrealoverlay/pkg/store/postgres"
	"github.com/surrealdb/surrealoverlay/pkg/store/surrealdb"
)

// App holds the application state.
type App struct {
	store    *store.ReadOnlyStore
	gateway  *store.Gateway
	config   *Config
	readOnly atomic.Bool // Runtime read-only state (can be toggled)
	log      zerolog.Logger
	logData  *logger.LogData
}

// New builds the logger, connects the configured backend and wraps it with
// read-only protection.
func New(ctx context.Context, config *Config) (*App, error) {
	logData, err := newLogger(config.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to set up logging: %w", err)
	}
	log := logData.Logger

	backend, err := openStore(ctx, config, log)
	if err != nil {
		_ = logData.Close()
		return nil, err
	}

	app := NewWithStore(config, backend, log)
	app.logData = logData
	return app, nil
}

// NewWithStore builds an App around an existing backend. Tests use it with
// the memory store.
func NewWithStore(config *Config, backend store.Store, log zerolog.Logger) *App {
	app := &App{
		config: config,
		log:    log,
	}
	app.readOnly.Store(config.ReadOnly)
	app.store = store.NewReadOnlyStore(backend, app.IsReadOnly)
	app.gateway = store.NewGateway(app.store, store.WithLogger(log))
	return app
}

func newLogger(cfg LogConfig) (*logger.LogData, error) {
	level, err := logger.ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	build := logger.New().WithLevel(level).WithFormat(logger.Format(cfg.Format))
	if cfg.File != "" {
		build = build.FromPath(cfg.File)
	}
	return build.Make()
}

func openStore(ctx context.Context, config *Config, log zerolog.Logger) (store.Store, error) {
	switch config.Store {
	case StoreSurrealDB:
		sdb := config.SurrealDB
		s, err := surrealdb.New(ctx, sdb.URL, sdb.Namespace, sdb.Database, sdb.Username, sdb.Password, log)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to SurrealDB: %w", err)
		}
		log.Info().Str("url", sdb.URL).Str("ns", sdb.Namespace).Str("db", sdb.Database).Msg("connected to SurrealDB")
		return s, nil
	case StorePostgres:
		s, err := postgres.Open(ctx, config.PostgresDSN, log)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
		}
		log.Info().Msg("connected to PostgreSQL")
		return s, nil
	case StoreMemory:
		log.Warn().Msg("using in-memory store, overlays are lost on exit")
		return memory.New(), nil
	}
	return nil, fmt.Errorf("unknown store: %q", config.Store)
}

// Close closes the backend and the log file.
func (a *App) Close() error {
	var errs []error
	if a.store != nil {
		errs = append(errs, a.store.Close())
	}
	if a.logData != nil {
		errs = append(errs, a.logData.Close())
	}
	return errors.Join(errs...)
}

// Gateway returns the overlay gateway the HTTP handlers use.
func (a *App) Gateway() *store.Gateway {
	return a.gateway
}

// SetReadOnly toggles maintenance mode. While it is on every write through
// the gateway fails with store.ErrReadOnly; reads keep working.
func (a *App) SetReadOnly(readOnly bool) {
	a.readOnly.Store(readOnly)
	a.log.Info().Bool("readOnly", readOnly).Msg("read-only mode changed")
}

func (a *App) IsReadOnly() bool {
	return a.readOnly.Load()
}
