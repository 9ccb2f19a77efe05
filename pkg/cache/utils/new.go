// Package cacheutils is the cache utility package
package cacheutils

import (
	"context"
	"fmt"

	"github.com/novelforge/continuity/pkg/cache"
	"github.com/novelforge/continuity/pkg/cache/memory"
	"github.com/novelforge/continuity/pkg/cache/redis"
)

type NewCacheOpts struct {
	ProviderType string
	RedisAddr    string
}

func NewCache(ctx context.Context, o *NewCacheOpts) (cache.Cache, error) {
	switch o.ProviderType {
	case "memory", "":
		return memory.NewCache(), nil
	case "redis":
		return redis.NewCache(ctx, o.RedisAddr)
	default:
		return nil, fmt.Errorf("unsupported cache provider: %s", o.ProviderType)
	}
}
