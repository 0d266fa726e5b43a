package cli

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/ritualhq/ritual/internal/aggregate"
	"github.com/ritualhq/ritual/internal/catalog"
	"github.com/ritualhq/ritual/internal/civil"
	"github.com/ritualhq/ritual/internal/config"
	"github.com/ritualhq/ritual/internal/ledger"
)

// App bundles the resources one command invocation operates on: the loaded
// config and catalog, an open ledger, and the derived-view engine over it.
type App struct {
	Config  *config.Config
	Catalog *catalog.Catalog
	Store   *ledger.Store
	Engine  *aggregate.Engine
	Clock   civil.Clock
	Logger  *slog.Logger
}

// openApp wires up an App for one command invocation. Every invocation
// gets a fresh UUIDv7 run token attached to its log fields so concurrent
// or scripted runs can be told apart in the log stream.
func openApp(opts *RootOptions) (*App, error) {
	logLevel := slog.LevelInfo
	if opts.Verbose {
		logLevel = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	})
	runToken := uuid.Must(uuid.NewV7()).String()
	logger := slog.New(handler).With("run", runToken)
	slog.SetDefault(logger)

	var cfg *config.Config
	var err error
	if opts.ConfigFile != "" {
		if _, statErr := os.Stat(opts.ConfigFile); statErr != nil {
			return nil, WrapExitError(ExitCommandError, fmt.Sprintf("config file not found: %s", opts.ConfigFile), statErr)
		}
		cfg, err = config.LoadFrom(opts.ConfigFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to load config", err)
	}

	cat := catalog.Default()
	if cfg.Paths.Catalog != "" {
		cat, err = catalog.Load(cfg.Paths.Catalog)
		if err != nil {
			return nil, WrapExitError(ExitCommandError, "failed to load catalog", err)
		}
	}

	clock := opts.Clock
	if clock == nil {
		loc, err := cfg.ResolveLocation()
		if err != nil {
			return nil, WrapExitError(ExitCommandError, "failed to resolve time zone", err)
		}
		clock = civil.NewWallClock(loc)
	}

	dbPath := cfg.Paths.Database
	if opts.Database != "" {
		dbPath = opts.Database
	}
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0700); err != nil {
			return nil, WrapExitError(ExitCommandError, "failed to create database directory", err)
		}
	}

	logger.Debug("opening ledger", "path", dbPath)
	st, err := ledger.Open(dbPath, ledger.WithClock(clock))
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}

	return &App{
		Config:  cfg,
		Catalog: cat,
		Store:   st,
		Engine:  aggregate.New(st, clock),
		Clock:   clock,
		Logger:  logger,
	}, nil
}

// Close releases the ledger handle. Close errors are logged, not returned.
func (a *App) Close() {
	if err := a.Store.Close(); err != nil {
		a.Logger.Error("error closing database", "error", err)
	}
}
