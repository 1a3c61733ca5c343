// Package kv stores each collection as one JSON array under a single key,
// on an embedded SQLite file or on Redis.
package kv

import "context"

// Backend persists opaque values by key. Load returns nil, nil for a key
// that was never written.
type Backend interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, value []byte) error
	Ping(ctx context.Context) error
	Close() error
}
