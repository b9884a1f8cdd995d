// Package app initializes and holds long-lived application services, acting as a dependency injection container.
package app

import (
	"context"
	"fmt"
	"io"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/outbreakmap/covid-geo-etl/internal/config"
	"github.com/outbreakmap/covid-geo-etl/internal/id/uuid"
	"github.com/outbreakmap/covid-geo-etl/internal/logging"
	"github.com/outbreakmap/covid-geo-etl/internal/metrics"
	"github.com/outbreakmap/covid-geo-etl/internal/storage"
	localstore "github.com/outbreakmap/covid-geo-etl/internal/storage/local"
	redisstore "github.com/outbreakmap/covid-geo-etl/internal/storage/redis"
)

// App holds the shared, long-lived services for one invocation: the logger,
// typed configuration, the primary and fallback artifact stores, the clock,
// and the run identifier stamped on every log line. It is initialized once
// at startup and handed to the command that needs it.
type App struct {
	logger   *zap.Logger
	cfg      config.Config
	storage  storage.Provider
	fallback storage.Provider
	clock    clockwork.Clock
	runID    string
}

// GetLogger returns the shared zap logger, annotated with the run ID.
func (a *App) GetLogger() *zap.Logger {
	return a.logger
}

// GetConfig returns the validated application configuration.
func (a *App) GetConfig() config.Config {
	return a.cfg
}

// GetStorage exposes the primary artifact store.
func (a *App) GetStorage() storage.Provider {
	return a.storage
}

// GetFallback exposes the local fallback store used when the primary is down.
func (a *App) GetFallback() storage.Provider {
	return a.fallback
}

// GetClock returns the wall clock shared by the sources and the runner.
func (a *App) GetClock() clockwork.Clock {
	return a.clock
}

// GetRunID returns the identifier of this invocation.
func (a *App) GetRunID() string {
	return a.runID
}

// NewApp creates and initializes a new App from the validated configuration.
// It is the central point of service initialization and fails fast when a
// critical service (the Sentinel-backed store, the fallback directory)
// cannot be reached.
func NewApp(ctx context.Context, cfg config.Config) (*App, error) {
	metrics.Init()

	runID, err := uuid.NewUUIDGenerator().NewID()
	if err != nil {
		return nil, fmt.Errorf("generate run id: %w", err)
	}
	l := logging.L.With(zap.String("run_id", runID))
	l.Info("initializing application services")

	var store storage.Provider
	switch cfg.Storage.Provider {
	case "redis":
		l.Info("using redis storage provider",
			zap.Strings("sentinels", cfg.Redis.SentinelAddrs),
			zap.String("master", cfg.Redis.MasterName))
		store, err = redisstore.New(ctx, redisstore.Config{
			SentinelAddrs: cfg.Redis.SentinelAddrs,
			MasterName:    cfg.Redis.MasterName,
			Password:      cfg.Redis.Password,
			DialTimeout:   cfg.Redis.DialTimeout,
			WriteTimeout:  cfg.Redis.WriteTimeout,
		})
	case "local":
		l.Info("using local storage provider", zap.String("dir", cfg.Storage.FallbackDir))
		store, err = localstore.New(localstore.Config{BaseDir: cfg.Storage.FallbackDir})
	case "noop":
		l.Info("using no-op storage provider; artifacts will be discarded")
		store = &storage.NoOpProvider{}
	default:
		return nil, fmt.Errorf("unknown storage provider: %s", cfg.Storage.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("initialize storage: %w", err)
	}

	fallback, err := localstore.New(localstore.Config{BaseDir: cfg.Storage.FallbackDir})
	if err != nil {
		return nil, fmt.Errorf("initialize fallback storage: %w", err)
	}

	l.Info("application services initialized")

	return &App{
		logger:   l,
		cfg:      cfg,
		storage:  store,
		fallback: fallback,
		clock:    clockwork.NewRealClock(),
		runID:    runID,
	}, nil
}

// Close shuts down the services held by the container. It is called by a
// Cobra hook after the command finishes.
func (a *App) Close() {
	a.logger.Info("shutting down application services")
	if closer, ok := a.storage.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			a.logger.Warn("error closing storage client", zap.Error(err))
		}
	}
	if err := a.logger.Sync(); err != nil {
		// Best effort; stderr sync commonly fails on some platforms.
		_ = err
	}
}
