// Package store persists session blobs. Every backend stores opaque byte
// values under string keys; the tracker writes one JSON document per
// session.
package store

import (
	"context"
	"degreetrack/internal/config"
	"errors"
	"fmt"
)

// ErrNotFound is returned by Get for a missing key.
var ErrNotFound = errors.New("key not found")

// Store is a minimal key/value sink.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Open selects a backend from configuration. Relative paths are anchored
// at workspace.
func Open(ctx context.Context, cfg config.StoreConfig, workspace string) (Store, error) {
	switch cfg.Backend {
	case "sqlite", "":
		return NewSQLiteStore(config.ResolvePath(workspace, cfg.Path))
	case "badger":
		return NewBadgerStore(config.ResolvePath(workspace, cfg.Path))
	case "redis":
		return NewRedisStore(ctx, cfg.RedisAddr, cfg.RedisPrefix)
	case "memory":
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
}
