// Package kv provides the persisted key-value slots postdeck stores its
// data in. A slot holds one opaque value per key; callers serialize whole
// documents into it.
package kv

import (
	"context"
	"errors"
	"fmt"
)

// ErrNotFound is returned by Get when the key has never been written.
var ErrNotFound = errors.New("kv: key not found")

// Store is a persisted key-value slot.
type Store interface {
	// Get returns the value stored under key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)
	// Set replaces the value stored under key.
	Set(ctx context.Context, key string, value []byte) error
	// Ping reports whether the backend is reachable.
	Ping(ctx context.Context) error
	// Backend returns the backend name: "file", "redis" or "memory".
	Backend() string
	// Location describes where the data lives, for diagnostics.
	Location() string
	// Close releases backend resources.
	Close() error
}

// Options selects and configures a backend for Open.
type Options struct {
	Backend string
	Dir     string
	Redis   RedisOptions
}

// Open builds the Store named by opts.Backend.
func Open(opts Options) (Store, error) {
	switch opts.Backend {
	case "", "file":
		return NewFileStore(opts.Dir)
	case "redis":
		return NewRedisStore(opts.Redis), nil
	case "memory":
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("kv: unknown backend %q (must be file, redis, or memory)", opts.Backend)
	}
}
