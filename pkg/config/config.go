// Package config loads witview settings.
//
// Settings come from three layers, later layers winning:
//
//  1. Built-in defaults (see the Default* constants)
//  2. A TOML file, witview.toml by default
//  3. WITVIEW_* environment variables, after a .env file in the working
//     directory has been loaded into the environment
//
// The same [Options] value configures the CLI and the HTTP server.
package config

import (
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"

	"github.com/matzehuels/witview/pkg/cache"
	"github.com/matzehuels/witview/pkg/errors"
	"github.com/matzehuels/witview/pkg/viewmode"
)

// =============================================================================
// Default Values
// =============================================================================

const (
	// DefaultFile is the config file read when no path is given.
	DefaultFile = "witview.toml"

	// DefaultLogLevel is the logger level.
	DefaultLogLevel = "info"

	// DefaultCacheTTL bounds how long a projection stays cached.
	DefaultCacheTTL = 24 * time.Hour

	// DefaultStorePath is the diagram file used by the file store.
	DefaultStorePath = "diagram.json"

	// DefaultAddr is the HTTP listen address.
	DefaultAddr = ":8080"
)

// Store backend names.
const (
	StoreMemory = "memory"
	StoreFile   = "file"
	StoreMongo  = "mongo"
)

// =============================================================================
// Options
// =============================================================================

// Options holds every setting.
type Options struct {
	LogLevel   string            `toml:"log_level"`
	Transition TransitionOptions `toml:"transition"`
	Cache      CacheOptions      `toml:"cache"`
	Store      StoreOptions      `toml:"store"`
	Server     ServerOptions     `toml:"server"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// TransitionOptions configures the fade between view modes.
type TransitionOptions struct {
	// Disabled switches views without fading.
	Disabled bool          `toml:"disabled"`
	Duration time.Duration `toml:"duration"`
	Steps    int           `toml:"steps"`
}

// CacheOptions configures projection caching.
type CacheOptions struct {
	Backend   string        `toml:"backend"` // none, memory, file or redis
	Dir       string        `toml:"dir"`
	Size      int           `toml:"size"`
	TTL       time.Duration `toml:"ttl"`
	RedisAddr string        `toml:"redis_addr"`
	RedisDB   int           `toml:"redis_db"`
	// Prefix namespaces keys so deployments can share one Redis.
	Prefix string `toml:"prefix"`
}

// StoreOptions configures where the canonical diagram lives.
type StoreOptions struct {
	Backend         string `toml:"backend"` // memory, file or mongo
	Path            string `toml:"path"`
	MongoURI        string `toml:"mongo_uri"`
	MongoDatabase   string `toml:"mongo_database"`
	MongoCollection string `toml:"mongo_collection"`
	DiagramID       string `toml:"diagram_id"`
}

// ServerOptions configures the HTTP API.
type ServerOptions struct {
	Addr string `toml:"addr"`
}

// ValidateAndSetDefaults checks values and fills in defaults. Calling it
// again is a no-op.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}

	if o.LogLevel == "" {
		o.LogLevel = DefaultLogLevel
	}
	if _, err := log.ParseLevel(o.LogLevel); err != nil {
		return errors.New(errors.ErrCodeInvalidInput, "invalid log level %q", o.LogLevel)
	}

	if o.Transition.Duration < 0 || o.Transition.Steps < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "transition duration and steps must not be negative")
	}
	if o.Transition.Duration == 0 {
		o.Transition.Duration = viewmode.DefaultFade
	}
	if o.Transition.Steps == 0 {
		o.Transition.Steps = viewmode.DefaultFadeSteps
	}

	if o.Cache.Backend == "" {
		o.Cache.Backend = cache.BackendNone
	}
	if !slices.Contains([]string{cache.BackendNone, cache.BackendMemory, cache.BackendFile, cache.BackendRedis}, o.Cache.Backend) {
		return errors.New(errors.ErrCodeInvalidInput, "unknown cache backend %q", o.Cache.Backend)
	}
	if o.Cache.Size <= 0 {
		o.Cache.Size = cache.DefaultMemorySize
	}
	if o.Cache.TTL <= 0 {
		o.Cache.TTL = DefaultCacheTTL
	}
	if o.Cache.Backend == cache.BackendRedis {
		if o.Cache.RedisAddr == "" {
			return errors.New(errors.ErrCodeInvalidInput, "redis cache needs an address")
		}
	}

	if o.Store.Backend == "" {
		o.Store.Backend = StoreFile
	}
	switch o.Store.Backend {
	case StoreMemory:
	case StoreFile:
		if o.Store.Path == "" {
			o.Store.Path = DefaultStorePath
		}
		if err := errors.ValidatePath(o.Store.Path); err != nil {
			return err
		}
	case StoreMongo:
		if err := errors.ValidateURI(o.Store.MongoURI, "mongodb", "mongodb+srv"); err != nil {
			return err
		}
	default:
		return errors.New(errors.ErrCodeInvalidInput, "unknown store backend %q", o.Store.Backend)
	}
	if o.Store.DiagramID != "" {
		if err := errors.ValidateIdentifier("diagram id", o.Store.DiagramID); err != nil {
			return err
		}
	}

	if o.Server.Addr == "" {
		o.Server.Addr = DefaultAddr
	}

	o.validated = true
	return nil
}

// Level returns the parsed log level. Call after ValidateAndSetDefaults.
func (o *Options) Level() log.Level {
	l, err := log.ParseLevel(o.LogLevel)
	if err != nil {
		return log.InfoLevel
	}
	return l
}

// CacheBackend returns the cache.Open options.
func (o *Options) CacheBackend() cache.Options {
	return cache.Options{
		Backend:   o.Cache.Backend,
		Dir:       o.Cache.Dir,
		Size:      o.Cache.Size,
		RedisAddr: o.Cache.RedisAddr,
		RedisDB:   o.Cache.RedisDB,
	}
}

// Keyer returns the projection cache keyer, scoped when a prefix is set.
func (o *Options) Keyer() cache.Keyer {
	if o.Cache.Prefix == "" {
		return cache.NewDefaultKeyer()
	}
	return cache.NewScopedKeyer(nil, o.Cache.Prefix)
}

// CoordinatorOptions returns the transition options for viewmode.New.
func (o *Options) CoordinatorOptions() []viewmode.Option {
	if o.Transition.Disabled {
		return []viewmode.Option{viewmode.WithTransition(0, 0)}
	}
	return []viewmode.Option{viewmode.WithTransition(o.Transition.Duration, o.Transition.Steps)}
}

// =============================================================================
// Loading
// =============================================================================

// Load reads the config file at path, overlays the environment and validates
// the result. An empty path reads DefaultFile if it exists.
func Load(path string) (*Options, error) {
	// .env is optional.
	_ = godotenv.Load()

	var o Options
	if path == "" {
		if _, err := os.Stat(DefaultFile); err == nil {
			path = DefaultFile
		}
	}
	if path != "" {
		if err := errors.ValidatePath(path); err != nil {
			return nil, err
		}
		if _, err := toml.DecodeFile(path, &o); err != nil {
			if os.IsNotExist(err) {
				return nil, errors.Wrap(errors.ErrCodeNotFound, err, "config file %s", path)
			}
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse config %s", path)
		}
	}

	if err := o.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := o.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	return &o, nil
}

// Decode parses TOML text into Options without touching the environment.
func Decode(data string) (*Options, error) {
	var o Options
	if _, err := toml.Decode(data, &o); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse config")
	}
	return &o, nil
}

// EnvPrefix prefixes every environment variable.
const EnvPrefix = "WITVIEW_"

// ApplyEnv overrides fields from WITVIEW_* variables found with lookup.
func (o *Options) ApplyEnv(lookup func(string) (string, bool)) error {
	get := func(name string) (string, bool) {
		v, ok := lookup(EnvPrefix + name)
		v = strings.TrimSpace(v)
		return v, ok && v != ""
	}

	strs := map[string]*string{
		"LOG_LEVEL":        &o.LogLevel,
		"CACHE_BACKEND":    &o.Cache.Backend,
		"CACHE_DIR":        &o.Cache.Dir,
		"CACHE_PREFIX":     &o.Cache.Prefix,
		"REDIS_ADDR":       &o.Cache.RedisAddr,
		"STORE_BACKEND":    &o.Store.Backend,
		"STORE_PATH":       &o.Store.Path,
		"MONGO_URI":        &o.Store.MongoURI,
		"MONGO_DATABASE":   &o.Store.MongoDatabase,
		"MONGO_COLLECTION": &o.Store.MongoCollection,
		"DIAGRAM_ID":       &o.Store.DiagramID,
		"ADDR":             &o.Server.Addr,
	}
	for name, dst := range strs {
		if v, ok := get(name); ok {
			*dst = v
		}
	}

	ints := map[string]*int{
		"TRANSITION_STEPS": &o.Transition.Steps,
		"CACHE_SIZE":       &o.Cache.Size,
		"REDIS_DB":         &o.Cache.RedisDB,
	}
	for name, dst := range ints {
		if v, ok := get(name); ok {
			n, err := strconv.Atoi(v)
			if err != nil {
				return errors.Wrap(errors.ErrCodeInvalidInput, err, "%s%s", EnvPrefix, name)
			}
			*dst = n
		}
	}

	durations := map[string]*time.Duration{
		"TRANSITION": &o.Transition.Duration,
		"CACHE_TTL":  &o.Cache.TTL,
	}
	for name, dst := range durations {
		if v, ok := get(name); ok {
			d, err := time.ParseDuration(v)
			if err != nil {
				return errors.Wrap(errors.ErrCodeInvalidInput, err, "%s%s", EnvPrefix, name)
			}
			*dst = d
		}
	}

	if v, ok := get("NO_TRANSITION"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return errors.Wrap(errors.ErrCodeInvalidInput, err, "%sNO_TRANSITION", EnvPrefix)
		}
		o.Transition.Disabled = b
	}
	return nil
}

// String renders the options as TOML.
func (o *Options) String() string {
	var sb strings.Builder
	if err := toml.NewEncoder(&sb).Encode(o); err != nil {
		return fmt.Sprintf("config: %v", err)
	}
	return sb.String()
}
