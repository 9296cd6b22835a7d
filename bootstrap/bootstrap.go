// Package bootstrap wires all dependencies and starts the application.
// Configuration comes from gridpatch.yaml (or GRIDPATCH_* environment
// variables); the document schema names the table the editor works on.
package bootstrap

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/artpar/gridpatch/adapters/clock"
	apihttp "github.com/artpar/gridpatch/adapters/http"
	"github.com/artpar/gridpatch/adapters/idgen"
	"github.com/artpar/gridpatch/adapters/memory"
	"github.com/artpar/gridpatch/adapters/metrics"
	"github.com/artpar/gridpatch/adapters/sqlite"
	"github.com/artpar/gridpatch/app"
	"github.com/artpar/gridpatch/config"
	"github.com/artpar/gridpatch/core/events"
	"github.com/artpar/gridpatch/core/schema"
	"github.com/artpar/gridpatch/domain/table"
	"github.com/artpar/gridpatch/ports"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// App represents the running application.
type App struct {
	Logger     zerolog.Logger
	Config     *config.Config
	DB         *sqlite.DB // nil with the memory driver
	Store      ports.DocumentStore
	Schema     schema.Document
	Shape      table.Shape
	Bus        *events.Bus
	Metrics    *metrics.Collector  // nil when metrics are disabled
	Gatherer   prometheus.Gatherer // serves the metrics endpoint
	Editor     *app.TableEditor
	Feed       *apihttp.Feed // nil when the feed is disabled
	HTTPServer *http.Server

	holder *config.Holder
}

// Options provides optional configuration for application initialization.
type Options struct {
	// ConfigPath is the configuration file. Defaults to gridpatch.yaml; when
	// the file does not exist GRIDPATCH_* variables are used.
	ConfigPath string

	// Version is reported by /version.
	Version string

	// Watch enables config hot reload from file changes and SIGHUP.
	Watch bool

	// LogOutput receives log lines. Defaults to stdout.
	LogOutput io.Writer

	// Registerer receives the Prometheus collectors. Defaults to the
	// global registry.
	Registerer prometheus.Registerer

	// Prompter resolves destructive requests. Without one, requests wait
	// for a confirm or cancel call.
	Prompter ports.Prompter

	// Focuser receives focus requests after rows, columns or tables are
	// created.
	Focuser ports.Focuser
}

// New loads configuration and creates the application.
func New(opts Options) (*App, error) {
	path := opts.ConfigPath
	if path == "" {
		path = config.DefaultPath
	}

	var holder *config.Holder
	var cfg *config.Config
	if _, err := os.Stat(path); err == nil && opts.Watch {
		h, err := config.NewHolder(path, zerolog.Nop())
		if err != nil {
			return nil, err
		}
		// copied so path resolution below leaves the holder's view untouched
		c := *h.Get()
		holder, cfg = h, &c
	} else {
		loaded, err := config.LoadWithFallback(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if _, err := os.Stat(path); err == nil {
		cfg.Schema.Path = ResolvePath(path, cfg.Schema.Path)
	}

	a, err := NewFromConfig(cfg, opts)
	if err != nil {
		if holder != nil {
			holder.Stop()
		}
		return nil, err
	}

	if holder != nil {
		a.watch(holder)
	}
	return a, nil
}

// NewFromConfig creates the application from an already loaded configuration.
func NewFromConfig(cfg *config.Config, opts Options) (*App, error) {
	out := opts.LogOutput
	if out == nil {
		out = os.Stdout
	}
	logger := SetupLogger(cfg.Logging, out)

	a := &App{
		Logger: logger,
		Config: cfg,
	}

	doc, shape, err := LoadSchema(cfg.Schema)
	if err != nil {
		return nil, fmt.Errorf("load schema: %w", err)
	}
	a.Schema, a.Shape = doc, shape
	logger.Info().
		Str("document", doc.Name).
		Str("field", cfg.Schema.Field).
		Str("row_type", shape.RowTypeName).
		Str("cell_type", shape.CellType.Name).
		Bool("structured", shape.CellType.Structured).
		Msg("table resolved")

	ids, err := idgen.New(cfg.IDs.Generator)
	if err != nil {
		return nil, err
	}

	if err := a.initStore(ids); err != nil {
		return nil, fmt.Errorf("init store: %w", err)
	}

	if cfg.Metrics.Enabled {
		reg := opts.Registerer
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		a.Metrics = metrics.NewWithRegistry(reg)
		a.Gatherer = prometheus.DefaultGatherer
		if g, ok := reg.(prometheus.Gatherer); ok {
			a.Gatherer = g
		}
		logger.Info().Msg("prometheus metrics enabled")
	}

	a.Bus = events.NewBus(logger)

	deps := app.EditorDeps{
		Store:    a.Store,
		Keys:     ids,
		Clock:    clock.Real{},
		Bus:      a.Bus,
		Prompter: opts.Prompter,
		Focuser:  opts.Focuser,
		Logger:   logger,
	}
	if a.Metrics != nil {
		deps.Metrics = a.Metrics
	}
	a.Editor = app.NewTableEditor(deps, app.EditorConfig{
		DocumentType: doc.Name,
		Field:        cfg.Schema.Field,
		Shape:        shape,
	})

	a.initHTTPServer(opts.Version)
	return a, nil
}

// LoadSchema parses the schema file and resolves the table field.
func LoadSchema(cfg config.SchemaConfig) (schema.Document, table.Shape, error) {
	doc, err := schema.ParseFile(cfg.Path)
	if err != nil {
		return schema.Document{}, table.Shape{}, err
	}
	if cfg.Document != "" && cfg.Document != doc.Name {
		return schema.Document{}, table.Shape{}, fmt.Errorf("schema %s defines document %q, config expects %q", cfg.Path, doc.Name, cfg.Document)
	}
	shape, err := doc.ResolveTable(cfg.Field)
	if err != nil {
		return schema.Document{}, table.Shape{}, err
	}
	return doc, shape, nil
}

// ResolvePath makes a path from a config file relative to that file.
func ResolvePath(configPath, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(filepath.Dir(configPath), path)
}

// SetupLogger builds the root logger and sets the global level.
func SetupLogger(cfg config.LoggingConfig, out io.Writer) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.Format == "console" {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}
	return zerolog.New(out).With().Timestamp().Logger()
}

func (a *App) initStore(ids ports.IDGenerator) error {
	switch a.Config.Database.Driver {
	case "memory":
		a.Store = memory.NewDocumentStore(ids, clock.Real{})
		a.Logger.Info().Msg("using in-memory document store")
		return nil

	case "sqlite":
		dsn := a.Config.Database.DSN
		db, err := sqlite.Open(dsn)
		if err != nil {
			return err
		}
		applied, err := db.Migrate()
		if err != nil {
			db.Close()
			return fmt.Errorf("migrate: %w", err)
		}
		a.DB = db
		a.Store = sqlite.NewDocumentStore(db, ids, clock.Real{})
		a.Logger.Info().Str("dsn", dsn).Strs("migrations", applied).Msg("database initialized")
		return nil

	default:
		return fmt.Errorf("unknown database driver %q", a.Config.Database.Driver)
	}
}

func (a *App) initHTTPServer(version string) {
	cfg := a.Config

	if cfg.Feed.Enabled {
		a.Feed = apihttp.NewFeed(a.Editor, a.Bus, a.Metrics, a.Logger, apihttp.FeedConfig{
			WriteTimeout: cfg.Feed.WriteTimeout,
		})
	}

	rc := apihttp.RouterConfig{
		Metrics:       a.Metrics,
		MetricsPath:   cfg.Metrics.Path,
		EnableOpenAPI: cfg.OpenAPI.Enabled,
		Feed:          a.Feed,
		Version:       version,
	}
	if a.Gatherer != nil {
		rc.MetricsHandler = promhttp.HandlerFor(a.Gatherer, promhttp.HandlerOpts{})
	}
	router := apihttp.NewRouter(apihttp.NewTableHandler(a.Editor, a.Logger), a.Logger, rc)

	a.HTTPServer = &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
}

// watch applies reloadable settings whenever the config file changes. The
// holder itself warns about fields that need a restart.
func (a *App) watch(h *config.Holder) {
	a.holder = h
	h.SetLogger(a.Logger.With().Str("component", "config").Logger())
	if a.Metrics != nil {
		h.SetObserver(a.Metrics)
	}
	h.OnChange(a.applyConfig)

	if err := h.WatchFile(); err != nil {
		a.Logger.Warn().Err(err).Msg("config file watch disabled")
	}
	h.WatchSignals()
}

func (a *App) applyConfig(cfg *config.Config) {
	if level, err := zerolog.ParseLevel(cfg.Logging.Level); err == nil {
		zerolog.SetGlobalLevel(level)
	}
	if a.Feed != nil {
		a.Feed.SetWriteTimeout(cfg.Feed.WriteTimeout)
	}
}

// Run starts the HTTP server and blocks until shutdown.
func (a *App) Run() error {
	errCh := make(chan error, 1)
	go func() {
		a.Logger.Info().
			Str("addr", a.HTTPServer.Addr).
			Msg("starting http server")
		if err := a.HTTPServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-errCh:
		a.Shutdown()
		return fmt.Errorf("server error: %w", err)
	case sig := <-quit:
		a.Logger.Info().Str("signal", sig.String()).Msg("shutting down")
	}

	return a.Shutdown()
}

// Shutdown gracefully stops the application.
func (a *App) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if a.holder != nil {
		a.holder.Stop()
	}

	if a.HTTPServer != nil {
		if err := a.HTTPServer.Shutdown(ctx); err != nil {
			a.Logger.Error().Err(err).Msg("http server shutdown error")
		}
	}

	if a.DB != nil {
		if err := a.DB.Close(); err != nil {
			a.Logger.Error().Err(err).Msg("database close error")
		}
	}

	a.Logger.Info().Msg("shutdown complete")
	return nil
}
