package lousa

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/aretw0/lousa/internal/config"
	"github.com/aretw0/lousa/internal/logging"
	"github.com/aretw0/lousa/internal/metrics"
	"github.com/aretw0/lousa/pkg/adapters/file"
	loamAdapter "github.com/aretw0/lousa/pkg/adapters/loam"
	redisAdapter "github.com/aretw0/lousa/pkg/adapters/redis"
	"github.com/aretw0/lousa/pkg/adapters/sqlite"
	"github.com/aretw0/lousa/pkg/board"
	"github.com/aretw0/lousa/pkg/ports"
	"github.com/aretw0/lousa/pkg/relay"
)

// App wires the board registry, the relay and the storage adapters from a Config.
type App struct {
	Config   config.Config
	Logger   *slog.Logger
	Metrics  *metrics.Metrics
	Settings ports.SettingsStore
	Audit    ports.AuditLog        // nil when AuditDB is empty
	Archive  ports.SolutionArchive // nil when ArchiveDir is empty
	Relay    *relay.Service
	Boards   *board.Manager

	settingsOverride ports.SettingsStore
	relayOpts        []relay.Option
	closers          []func() error
}

// Option defines a functional option for configuring the App.
type Option func(*App)

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(a *App) {
		a.Logger = logger
	}
}

// WithSettingsStore bypasses the configured settings backend.
func WithSettingsStore(s ports.SettingsStore) Option {
	return func(a *App) {
		a.settingsOverride = s
	}
}

// WithRelayOptions appends options to the relay service (e.g. a key lookup in tests).
func WithRelayOptions(opts ...relay.Option) Option {
	return func(a *App) {
		a.relayOpts = append(a.relayOpts, opts...)
	}
}

// New builds an App. Close releases what it opened.
func New(cfg config.Config, opts ...Option) (*App, error) {
	a := &App{
		Config:  cfg,
		Logger:  logging.New(cfg.Level()),
		Metrics: metrics.New(),
	}
	for _, opt := range opts {
		opt(a)
	}

	// 1. Settings
	switch {
	case a.settingsOverride != nil:
		a.Settings = a.settingsOverride
	case cfg.Redis.Addr != "":
		var redisOpts []redisAdapter.Option
		if cfg.Redis.Prefix != "" {
			redisOpts = append(redisOpts, redisAdapter.WithPrefix(cfg.Redis.Prefix))
		}
		store := redisAdapter.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, redisOpts...)
		a.Settings = store
		a.closers = append(a.closers, store.Close)
	default:
		a.Settings = file.New(cfg.SettingsDir)
	}

	// 2. Audit and archive
	if cfg.AuditDB != "" {
		audit, err := sqlite.Open(cfg.AuditDB)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("failed to open audit log: %w", err)
		}
		a.Audit = audit
		a.closers = append(a.closers, audit.Close)
	}
	if cfg.ArchiveDir != "" {
		archive, err := loamAdapter.Open(cfg.ArchiveDir)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("failed to open solution archive: %w", err)
		}
		a.Archive = archive
	}

	// 3. Relay
	relayOpts := []relay.Option{
		relay.WithLogger(logging.For(a.Logger, "relay")),
		relay.WithObserver(a.Metrics.ObserveRelay),
	}
	if cfg.UpstreamTimeout > 0 {
		relayOpts = append(relayOpts, relay.WithHTTPClient(&http.Client{Timeout: cfg.UpstreamTimeout}))
	}
	for _, u := range cfg.Upstreams() {
		relayOpts = append(relayOpts, relay.WithUpstream(u))
	}
	if a.Audit != nil {
		relayOpts = append(relayOpts, relay.WithAudit(a.Audit))
	}
	a.Relay = relay.NewService(append(relayOpts, a.relayOpts...)...)

	// 4. Boards
	a.Boards = board.NewManager(
		board.WithManagerLogger(logging.For(a.Logger, "board")),
		board.WithBoardOptions(a.BoardOptions()...),
	)
	return a, nil
}

// BoardOptions returns the options every board of this App is built with.
func (a *App) BoardOptions() []board.Option {
	opts := []board.Option{
		board.WithLogger(logging.For(a.Logger, "board")),
		board.WithObserver(a.Metrics.ObserveBoardOp),
	}
	if a.Config.HistoryLimit > 0 {
		opts = append(opts, board.WithHistoryLimit(a.Config.HistoryLimit))
	}
	return opts
}

// Close releases boards, databases and connections.
func (a *App) Close() error {
	if a.Boards != nil {
		a.Boards.Close()
	}
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
