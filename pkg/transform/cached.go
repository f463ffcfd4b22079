package transform

import (
	"context"
	"encoding/json"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/witview/pkg/cache"
	"github.com/matzehuels/witview/pkg/diagram"
	"github.com/matzehuels/witview/pkg/observability"
	"github.com/matzehuels/witview/pkg/view"
)

// cacheKeyType is the key type reported to cache hooks.
const cacheKeyType = "projection"

// Cached memoizes successful results of an inner Transformer. Failed results
// are never cached. Cache errors are logged and otherwise ignored: the cache
// can only make a transform faster, never make it fail.
type Cached struct {
	Inner  Transformer
	Cache  cache.Cache
	Keyer  cache.Keyer
	TTL    time.Duration
	Logger *log.Logger
}

// NewCached wraps inner. A nil cache disables caching, a nil keyer uses the
// default keyer and a nil logger discards output.
func NewCached(inner Transformer, c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Cached {
	if c == nil {
		c = cache.NewNullCache()
	}
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Cached{Inner: inner, Cache: c, Keyer: keyer, Logger: logger}
}

// CanTransform implements Transformer.
func (c *Cached) CanTransform(from, to view.Mode, d *diagram.Model) bool {
	return c.Inner.CanTransform(from, to, d)
}

// Transform implements Transformer.
func (c *Cached) Transform(d *diagram.Model, target view.Mode) Result {
	return c.TransformContext(context.Background(), d, target)
}

// cachedResult is the stored form of a successful Result.
type cachedResult struct {
	Elements json.RawMessage `json:"elements"`
	Hints    RenderingHints  `json:"hints"`
}

// TransformContext implements ContextTransformer.
func (c *Cached) TransformContext(ctx context.Context, d *diagram.Model, target view.Mode) Result {
	if d == nil {
		return Run(ctx, c.Inner, d, target)
	}
	key, err := c.key(d, target)
	if err != nil {
		c.Logger.Warn("projection cache key", "error", err)
		return Run(ctx, c.Inner, d, target)
	}

	hooks := observability.Cache()
	if res, ok := c.lookup(ctx, key, target); ok {
		hooks.OnCacheHit(ctx, cacheKeyType)
		c.Logger.Debug("projection cache hit", "diagram", d.ID, "mode", target)
		return res
	}
	hooks.OnCacheMiss(ctx, cacheKeyType)

	res := Run(ctx, c.Inner, d, target)
	if !res.Success {
		return res
	}
	c.store(ctx, key, res)
	return res
}

func (c *Cached) key(d *diagram.Model, target view.Mode) (string, error) {
	data, err := json.Marshal(d)
	if err != nil {
		return "", err
	}
	return c.Keyer.ProjectionKey(cache.Hash(data), string(target)), nil
}

func (c *Cached) lookup(ctx context.Context, key string, target view.Mode) (Result, bool) {
	data, hit, err := c.Cache.Get(ctx, key)
	if err != nil {
		c.Logger.Warn("projection cache read", "error", err)
		return Result{}, false
	}
	if !hit {
		return Result{}, false
	}

	var entry cachedResult
	if err := json.Unmarshal(data, &entry); err != nil {
		c.Logger.Warn("projection cache entry unreadable", "error", err)
		return Result{}, false
	}
	elems, err := diagram.UnmarshalElements(entry.Elements)
	if err != nil {
		c.Logger.Warn("projection cache entry unreadable", "error", err)
		return Result{}, false
	}
	return Succeed(target, elems, entry.Hints), true
}

func (c *Cached) store(ctx context.Context, key string, res Result) {
	elems, err := diagram.MarshalElements(res.Elements)
	if err != nil {
		c.Logger.Warn("projection cache encode", "error", err)
		return
	}
	hints, _ := res.Hints()
	data, err := json.Marshal(cachedResult{Elements: elems, Hints: hints})
	if err != nil {
		c.Logger.Warn("projection cache encode", "error", err)
		return
	}
	if err := c.Cache.Set(ctx, key, data, c.TTL); err != nil {
		c.Logger.Warn("projection cache write", "error", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, cacheKeyType, len(data))
}

var _ ContextTransformer = (*Cached)(nil)
