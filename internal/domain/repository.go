package domain

import (
	"context"
	"io"
	"time"
)

// CacheRepository defines the interface for caching operations
type CacheRepository interface {
	Get(ctx context.Context, key string) (interface{}, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// CatalogSource opens the raw CSV of a product inventory
type CatalogSource interface {
	Open(ctx context.Context) (io.ReadCloser, error)
	Describe() string
}

// CatalogRepository holds the current catalog snapshot
type CatalogRepository interface {
	Current() (*Catalog, error)
	Reload(ctx context.Context) (*CatalogLoadReport, error)
	Replace(ctx context.Context, source string, r io.Reader) (*CatalogLoadReport, error)
}
