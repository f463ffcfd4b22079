// Package cli implements the witview command-line interface.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/witview/pkg/buildinfo"
	"github.com/matzehuels/witview/pkg/cache"
	"github.com/matzehuels/witview/pkg/config"
	"github.com/matzehuels/witview/pkg/diagram"
	"github.com/matzehuels/witview/pkg/render"
	"github.com/matzehuels/witview/pkg/store"
	"github.com/matzehuels/witview/pkg/store/mongo"
	"github.com/matzehuels/witview/pkg/transform"
	"github.com/matzehuels/witview/pkg/viewmode"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "witview"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
	// Out receives command output. Defaults to stdout.
	Out io.Writer
	// ConfigPath is the config file to load. It seeds the --config flag default.
	ConfigPath string

	verbose bool
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Out:    os.Stdout,
	}
}

// SetLogLevel updates the logger's level. A debug level pins the logger:
// config files cannot lower it afterwards.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
	c.verbose = level <= log.DebugLevel
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "witview projects WASM component diagrams into alternative views",
		Long:         `witview switches a WASM component diagram between its component, UML, WIT interface and WIT dependency views. The canonical diagram is never modified; every other view is derived from it on demand.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVarP(&c.ConfigPath, "config", "c", c.ConfigPath, "config file (default "+config.DefaultFile+" if present)")

	root.AddCommand(c.transformCommand())
	root.AddCommand(c.viewsCommand())
	root.AddCommand(c.browseCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.diagramCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Config
// =============================================================================

// loadConfig reads the config and applies its log level unless --verbose
// was given.
func (c *CLI) loadConfig() (*config.Options, error) {
	cfg, err := config.Load(c.ConfigPath)
	if err != nil {
		return nil, err
	}
	if !c.verbose {
		c.Logger.SetLevel(cfg.Level())
	}
	return cfg, nil
}

// =============================================================================
// Engine Factory
// =============================================================================

// engine is a coordinator wired to a store, a cache and a recording renderer.
type engine struct {
	store    store.Store
	cache    cache.Cache
	recorder *render.Recorder
	coord    *viewmode.Coordinator
	closers  []func(context.Context) error
}

// newEngine builds the coordinator over s and installs the store's current
// diagram. The recorder encodes with enc and writes to out.
func (c *CLI) newEngine(ctx context.Context, cfg *config.Options, s store.Store, out io.Writer, enc render.Encoder, opts ...viewmode.Option) (*engine, error) {
	ch, err := cache.Open(ctx, cfg.CacheBackend())
	if err != nil {
		c.Logger.Warn("cache unavailable, continuing without", "backend", cfg.Cache.Backend, "error", err)
		ch = cache.NewNullCache()
	}

	tr := transform.NewCached(transform.NewWasmTransformer(c.Logger), ch, cfg.Keyer(), c.Logger)
	tr.TTL = cfg.Cache.TTL

	rec := render.NewRecorder(out, enc)
	rec.Logger = c.Logger

	opts = append(append(cfg.CoordinatorOptions(), viewmode.WithLogger(c.Logger)), opts...)
	coord := viewmode.New(s, rec, opts...)
	if err := coord.RegisterTransformer(diagram.TypeWasmComponent, tr); err != nil {
		ch.Close()
		return nil, err
	}

	e := &engine{store: s, cache: ch, recorder: rec, coord: coord}
	e.closers = append(e.closers, func(context.Context) error { return ch.Close() })

	d, err := s.Current(ctx)
	if err != nil {
		e.Close(ctx)
		return nil, err
	}
	if err := coord.OnDiagramChanged(ctx, d); err != nil {
		e.Close(ctx)
		return nil, err
	}
	return e, nil
}

// Close releases the engine's cache and any store it owns.
func (e *engine) Close(ctx context.Context) {
	for i := len(e.closers) - 1; i >= 0; i-- {
		_ = e.closers[i](ctx)
	}
}

// =============================================================================
// Store Factory
// =============================================================================

// openStore opens the configured diagram store. The returned close function
// is never nil.
func (c *CLI) openStore(ctx context.Context, cfg *config.Options) (store.Store, func(context.Context) error, error) {
	noop := func(context.Context) error { return nil }
	switch cfg.Store.Backend {
	case config.StoreMemory:
		return store.NewMemory(nil), noop, nil
	case config.StoreMongo:
		c.Logger.Debug("connecting to mongo", "database", cfg.Store.MongoDatabase)
		s, err := mongo.Connect(ctx, mongo.Config{
			URI:        cfg.Store.MongoURI,
			Database:   cfg.Store.MongoDatabase,
			Collection: cfg.Store.MongoCollection,
			DiagramID:  cfg.Store.DiagramID,
		})
		if err != nil {
			return nil, noop, err
		}
		return s, s.Close, nil
	default:
		s, err := store.NewFile(cfg.Store.Path)
		if err != nil {
			return nil, noop, err
		}
		return s, noop, nil
	}
}

// sourceStore returns a memory store seeded from path, or the configured
// store when path is empty.
func (c *CLI) sourceStore(ctx context.Context, cfg *config.Options, path string) (store.Store, func(context.Context) error, error) {
	if path == "" {
		return c.openStore(ctx, cfg)
	}
	noop := func(context.Context) error { return nil }
	d, err := readDiagram(path)
	if err != nil {
		return nil, noop, err
	}
	return store.NewMemory(d), noop, nil
}

// readDiagram reads a diagram file and checks its element set.
func readDiagram(path string) (*diagram.Model, error) {
	d, err := diagram.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := diagram.Validate(d.Slice()); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return d, nil
}
