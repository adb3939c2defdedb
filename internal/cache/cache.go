// Package cache holds the lookup caches used when resolving recipe image paths.
package cache

import (
	"context"
	"time"
)

// PathCache maps a requested asset path to the path that should be served
// for it.
type PathCache interface {
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key, value string)
	Clear(ctx context.Context)
}

const (
	DriverMemory = "memory"
	DriverRedis  = "redis"

	DefaultMaxEntries = 4096
	DefaultTTL        = 10 * time.Minute
)
