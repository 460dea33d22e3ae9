// Package cache provides the time-bounded response cache shared by the HTTP
// handlers, with in-process and Redis backends.
package cache

import (
	"context"
	"strings"
	"time"
)

// DefaultTTL is how long a computed response stays fresh.
const DefaultTTL = 300 * time.Second

// Store caches serialized responses by key. A value older than the store's
// TTL is never returned. Implementations are safe for concurrent use;
// concurrent Sets of one key resolve last-write-wins.
type Store interface {
	// Get returns the value stored under key, or false on a miss.
	Get(ctx context.Context, key string) ([]byte, bool)
	// Set stores value under key for the store's TTL.
	Set(ctx context.Context, key string, value []byte) error
	// Ping reports whether the backend is reachable.
	Ping(ctx context.Context) error
	// Close releases backend resources.
	Close() error
}

// keyEscaper escapes the separator inside key components so that distinct
// parameter tuples never join to the same key.
var keyEscaper = strings.NewReplacer("%", "%25", "_", "%5F")

// Key builds a cache key from an endpoint tag and its identifying
// parameters: {tag}_{primary} or {tag}_{primary}_{secondary}. Empty
// secondary parameters are omitted. "_" and "%" inside a parameter are
// percent-escaped.
func Key(tag, primary string, secondary ...string) string {
	var b strings.Builder
	b.WriteString(tag)
	b.WriteByte('_')
	b.WriteString(keyEscaper.Replace(primary))
	for _, s := range secondary {
		if s == "" {
			continue
		}
		b.WriteByte('_')
		b.WriteString(keyEscaper.Replace(s))
	}
	return b.String()
}
