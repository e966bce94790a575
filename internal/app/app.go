package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/listfeed/listfeed/internal/config"
	"github.com/listfeed/listfeed/internal/fetch"
	"github.com/listfeed/listfeed/internal/httpapi"
	"github.com/listfeed/listfeed/internal/logging"
	"github.com/listfeed/listfeed/internal/metrics"
	"github.com/listfeed/listfeed/internal/prefs"
	"github.com/listfeed/listfeed/internal/records"
	"github.com/listfeed/listfeed/internal/state"
	"github.com/listfeed/listfeed/internal/ui"
)

// Options configure the listfeed application.
type Options struct {
	ConfigPath   string
	PrefsPath    string        // empty uses ~/.config/listfeed/prefs.toml
	RefreshEvery time.Duration // overrides refresh_every when positive
	LogLevel     string        // overrides log_level when set
}

// App owns the controllers for both resources and everything they share.
type App struct {
	Config    config.Config
	Logger    *zap.Logger
	Metrics   *metrics.Fetch
	Users     *fetch.Controller[records.User]
	Musicians *fetch.Controller[records.Musician]

	metricsSrv *http.Server
}

// LoadConfig reads the config and applies command line overrides.
func LoadConfig(opts Options) (config.Config, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return config.Config{}, fmt.Errorf("load config: %w", err)
	}
	if opts.RefreshEvery > 0 {
		cfg.RefreshEvery = opts.RefreshEvery
	}
	if opts.LogLevel != "" {
		cfg.LogLevel = opts.LogLevel
	}
	return cfg, nil
}

// New builds both controllers over getter. Nothing is fetched until Load.
func New(ctx context.Context, cfg config.Config, getter httpapi.Getter, logger *zap.Logger) *App {
	if logger == nil {
		logger = zap.NewNop()
	}
	m := metrics.New()
	opts := fetch.Options{Context: ctx, Logger: logger, Metrics: m}
	return &App{
		Config:    cfg,
		Logger:    logger,
		Metrics:   m,
		Users:     fetch.New(records.UsersEndpoint(cfg.UsersURL), getter, opts),
		Musicians: fetch.New(records.MusiciansEndpoint(cfg.MusiciansURL), getter, opts),
	}
}

// NewClient builds the HTTP client described by cfg.
func NewClient(cfg config.Config) *httpapi.Client {
	return httpapi.NewClient(httpapi.Options{
		Timeout:   cfg.RequestTimeout,
		UserAgent: cfg.UserAgent,
	})
}

// ServeMetrics exposes the metrics registry on addr in the background and
// returns the bound address.
func (a *App) ServeMetrics(addr string) (net.Addr, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen metrics: %w", err)
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", a.Metrics.Handler())
	a.metricsSrv = &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	a.Logger.Info("serving metrics", zap.String("addr", ln.Addr().String()))
	go func() {
		if err := a.metricsSrv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.Logger.Error("metrics server stopped", zap.Error(err))
		}
	}()
	return ln.Addr(), nil
}

// Close tears down both controllers and the metrics server.
func (a *App) Close() error {
	var err error
	err = multierr.Append(err, a.Users.Close())
	err = multierr.Append(err, a.Musicians.Close())
	if a.metricsSrv != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		err = multierr.Append(err, a.metricsSrv.Shutdown(ctx))
	}
	return err
}

// Result is the settled outcome of one resource for one-shot fetches.
type Result struct {
	Resource  string
	Records   []records.Record
	Err       error
	RequestID string
}

// Fetch refreshes the named resources concurrently and waits for each to
// settle. The returned error combines every failure.
func (a *App) Fetch(ctx context.Context, names ...string) ([]Result, error) {
	for _, name := range names {
		if name != records.UsersResource && name != records.MusiciansResource {
			return nil, fmt.Errorf("unknown resource %q", name)
		}
	}

	results := make([]Result, len(names))
	var g errgroup.Group
	for i, name := range names {
		i := i
		if name == records.UsersResource {
			g.Go(func() error { return refreshInto(ctx, a.Users, &results[i]) })
		} else {
			g.Go(func() error { return refreshInto(ctx, a.Musicians, &results[i]) })
		}
	}
	_ = g.Wait()

	var err error
	for _, r := range results {
		if r.Err != nil {
			err = multierr.Append(err, fmt.Errorf("%s: %w", r.Resource, r.Err))
		}
	}
	return results, err
}

func refreshInto[T records.Record](ctx context.Context, c *fetch.Controller[T], out *Result) error {
	snap, err := c.Refresh(ctx)
	*out = Result{Resource: c.Name(), RequestID: snap.RequestID}
	switch {
	case err != nil:
		out.Err = err
	case snap.Phase == state.Failed:
		out.Err = snap.Err
	default:
		out.Records = records.Erase(snap.Records)
	}
	return out.Err
}

// Run boots the TUI until the user quits or ctx is cancelled.
func Run(ctx context.Context, opts Options) (err error) {
	cfg, err := LoadConfig(opts)
	if err != nil {
		return err
	}

	logger, err := logging.New(logging.Options{Level: cfg.LogLevel, Path: cfg.LogFile})
	if err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	userPrefs := prefs.Load(opts.PrefsPath)

	a := New(ctx, cfg, NewClient(cfg), logger)
	defer func() { err = multierr.Append(err, a.Close()) }()

	if cfg.MetricsAddr != "" {
		if _, err := a.ServeMetrics(cfg.MetricsAddr); err != nil {
			return err
		}
	}

	StartPoller(ctx, cfg.RefreshEvery, logger, a.Users, a.Musicians)

	logger.Info("listfeed starting",
		zap.String("users_url", cfg.UsersURL),
		zap.String("musicians_url", cfg.MusiciansURL),
		zap.Duration("refresh_every", cfg.RefreshEvery))

	return ui.Run(ui.Options{
		Context: ctx,
		Resources: []ui.Resource{
			ui.Bind[records.User]("Users", a.Users),
			ui.Bind[records.Musician]("Musicians", a.Musicians),
		},
		ThemeName: userPrefs.Theme,
		Tab:       userPrefs.Tab,
		PrefsPath: opts.PrefsPath,
		LogPath:   cfg.LogFile,
		Logger:    logger,
	})
}
