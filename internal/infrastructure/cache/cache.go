package cache

import (
	"context"
	"fmt"
	"io"

	"github.com/skinlens/backend/internal/domain"
)

// Store is a cache repository that owns resources
type Store interface {
	domain.CacheRepository
	io.Closer
}

// New builds the cache selected by cacheType ("memory" or "redis")
func New(ctx context.Context, cacheType, redisURL string) (Store, error) {
	switch cacheType {
	case "", "memory":
		return NewMemoryCache(0), nil
	case "redis":
		return NewRedisCache(ctx, redisURL)
	}
	return nil, fmt.Errorf("unknown cache type: %s", cacheType)
}
