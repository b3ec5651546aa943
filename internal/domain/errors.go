package domain

import "errors"

var (
	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrProductNotFound is returned when a product id is not in the catalog
	ErrProductNotFound = errors.New("product not found in catalog")

	// ErrCatalogUnavailable is returned when no catalog has been loaded
	ErrCatalogUnavailable = errors.New("catalog not loaded")

	// ErrCatalogEmpty is returned when a load produced no usable products
	ErrCatalogEmpty = errors.New("catalog contains no usable products")

	// ErrMissingColumn is returned when a required catalog column is absent
	ErrMissingColumn = errors.New("catalog is missing a required column")

	// ErrNoCatalogSource is returned when reload is requested without a source
	ErrNoCatalogSource = errors.New("no catalog source configured")

	// ErrInventoryFetch is returned when a remote inventory request fails
	ErrInventoryFetch = errors.New("inventory fetch failed")

	// ErrRateLimited is returned when rate limit is exceeded
	ErrRateLimited = errors.New("rate limit exceeded")

	// ErrCacheMiss is returned when data is not found in cache
	ErrCacheMiss = errors.New("cache miss")

	// ErrCacheUnavailable is returned when cache service is unavailable
	ErrCacheUnavailable = errors.New("cache service unavailable")
)
