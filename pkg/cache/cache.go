// Package cache provides byte caches for derived projections.
//
// Transforms are pure: the same canonical diagram projected into the same view
// mode always yields the same derived elements. That makes projection results
// safe to memoize under a key built from a hash of the canonical diagram JSON
// and the target mode, see [Keyer.ProjectionKey].
//
// # Backends
//
//   - [NullCache]: never stores anything (the default)
//   - [MemoryCache]: bounded in-process LRU
//   - [FileCache]: one JSON file per entry, survives restarts
//   - [RedisCache]: shared cache for several server instances
//
// [Open] builds a backend from [Options].
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"
)

// Cache is a byte store with optional per-entry expiry.
type Cache interface {
	// Get returns the cached value. A miss is (nil, false, nil); an error is
	// reserved for backend failures.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value. A ttl of zero means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Keyer builds cache keys.
type Keyer interface {
	// ProjectionKey returns the key of a derived projection of the diagram
	// whose canonical JSON hashes to diagramHash.
	ProjectionKey(diagramHash, mode string) string
}

// DefaultKeyer is the standard Keyer.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// ProjectionKey implements Keyer.
func (DefaultKeyer) ProjectionKey(diagramHash, mode string) string {
	return hashKey("projection", diagramHash, mode)
}

// =============================================================================
// Backend Selection
// =============================================================================

// Backend names accepted by Open.
const (
	BackendNone   = "none"
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendRedis  = "redis"
)

// Options selects and configures a cache backend.
type Options struct {
	Backend   string
	Dir       string // file backend
	Size      int    // memory backend entry limit
	RedisAddr string // redis backend
	RedisDB   int
}

// Open builds the backend named by opts.Backend. An empty backend is the null
// cache.
func Open(ctx context.Context, opts Options) (Cache, error) {
	switch opts.Backend {
	case "", BackendNone:
		return NewNullCache(), nil
	case BackendMemory:
		return NewMemoryCache(opts.Size)
	case BackendFile:
		return NewFileCache(opts.Dir)
	case BackendRedis:
		return NewRedisCache(ctx, opts.RedisAddr, opts.RedisDB)
	default:
		return nil, fmt.Errorf("unknown cache backend %q", opts.Backend)
	}
}

// =============================================================================
// Null Backend
// =============================================================================

// NullCache disables caching: every Get misses and writes are dropped.
type NullCache struct{}

// NewNullCache returns the disabled cache.
func NewNullCache() Cache { return &NullCache{} }

func (*NullCache) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }
func (*NullCache) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (*NullCache) Delete(context.Context, string) error { return nil }
func (*NullCache) Close() error { return nil }

// =============================================================================
// Hashing
// =============================================================================

// Hash returns the hex-encoded SHA-256 of data.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// hashKey returns "prefix:" followed by the hash of the JSON-encoded parts.
func hashKey(prefix string, parts ...any) string {
	data, _ := json.Marshal(parts)
	return prefix + ":" + Hash(data)
}
