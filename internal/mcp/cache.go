package mcp

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/maypok86/otter"
)

// ResultCache holds serialized extraction results keyed by a hash of the
// backend name and the exact file contents. Values are JSON bytes so callers
// never share a decoded metadata object.
type ResultCache struct {
	cache otter.Cache[string, []byte]
}

// NewResultCache returns a cache holding at most size results for ttl (0 keeps
// entries until evicted).
func NewResultCache(size int, ttl time.Duration) (*ResultCache, error) {
	builder := otter.MustBuilder[string, []byte](size).CollectStats()

	var (
		c   otter.Cache[string, []byte]
		err error
	)
	if ttl > 0 {
		c, err = builder.WithTTL(ttl).Build()
	} else {
		c, err = builder.Build()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to build result cache: %w", err)
	}
	return &ResultCache{cache: c}, nil
}

func (r *ResultCache) get(key string) ([]byte, bool) {
	return r.cache.Get(key)
}

func (r *ResultCache) set(key string, value []byte) {
	r.cache.Set(key, value)
}

func (r *ResultCache) hits() int64 {
	return r.cache.Stats().Hits()
}

func (r *ResultCache) close() {
	r.cache.Close()
}

// contentKey hashes the backend and each path with its content. Unreadable
// files contribute a marker so a later successful read changes the key.
func contentKey(backend string, paths []string, load func(string) ([]byte, error)) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s\x00", backend)
	for _, p := range paths {
		data, err := load(p)
		if err != nil {
			fmt.Fprintf(h, "%s\x00!\x00", p)
			continue
		}
		fmt.Fprintf(h, "%s\x00%d\x00", p, len(data))
		h.Write(data)
	}
	return hex.EncodeToString(h.Sum(nil))
}
