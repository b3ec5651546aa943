package usecase

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/skinlens/backend/internal/domain"
	"github.com/skinlens/backend/internal/metrics"
	"github.com/skinlens/backend/internal/pkg/logger"
)

// CatalogServiceConfig holds configuration for the catalog service
type CatalogServiceConfig struct {
	CacheTTL time.Duration
}

// CatalogService serves catalog browsing and catalog maintenance
type CatalogService struct {
	catalog  domain.CatalogRepository
	cache    domain.CacheRepository
	cacheTTL time.Duration
	searches singleflight.Group
	log      *logger.Logger
}

// NewCatalogService creates a new catalog service with dependencies.
// A nil cache disables search caching.
func NewCatalogService(
	catalog domain.CatalogRepository,
	cache domain.CacheRepository,
	config CatalogServiceConfig,
	log *logger.Logger,
) *CatalogService {
	cacheTTL := config.CacheTTL
	if cacheTTL == 0 {
		cacheTTL = time.Hour
	}

	return &CatalogService{
		catalog:  catalog,
		cache:    cache,
		cacheTTL: cacheTTL,
		log:      logger.OrNop(log).With("component", "catalog_service"),
	}
}

// Search returns products whose name contains the query, case-insensitively.
// Flow: snapshot catalog -> check cache -> scan names -> cache -> return
func (s *CatalogService) Search(ctx context.Context, query string) ([]domain.ProductSummary, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, domain.ErrInvalidRequest
	}

	catalog, err := s.catalog.Current()
	if err != nil {
		return nil, err
	}

	cacheKey := generateSearchCacheKey(catalog.Version, query)

	if cached, err := s.getFromCache(ctx, cacheKey); err == nil {
		metrics.SearchCacheHits.Inc()
		return cached, nil
	}
	metrics.SearchCacheMisses.Inc()

	// Concurrent misses for the same key share one scan and one cache write
	value, err, _ := s.searches.Do(cacheKey, func() (interface{}, error) {
		results := searchNames(catalog, query)
		if err := s.setInCache(ctx, cacheKey, results); err != nil {
			s.log.Warn("search cache write failed", "key", cacheKey, "error", err)
		}
		return results, nil
	})
	if err != nil {
		return nil, err
	}
	return value.([]domain.ProductSummary), nil
}

func searchNames(catalog *domain.Catalog, query string) []domain.ProductSummary {
	needle := strings.ToLower(query)
	results := make([]domain.ProductSummary, 0)
	for i := range catalog.Products {
		if strings.Contains(strings.ToLower(catalog.Products[i].Name), needle) {
			results = append(results, catalog.Products[i].Summarize())
		}
	}
	return results
}

// Get returns a product by id
func (s *CatalogService) Get(ctx context.Context, id string) (*domain.Product, error) {
	if strings.TrimSpace(id) == "" {
		return nil, domain.ErrInvalidRequest
	}
	catalog, err := s.catalog.Current()
	if err != nil {
		return nil, err
	}
	p, ok := catalog.FindByID(id)
	if !ok {
		return nil, domain.ErrProductNotFound
	}
	out := *p
	return &out, nil
}

// Info returns the current catalog snapshot metadata
func (s *CatalogService) Info(ctx context.Context) (*domain.Catalog, error) {
	return s.catalog.Current()
}

// Concerns lists the supported concern options
func (s *CatalogService) Concerns() []domain.ConcernOption {
	return append([]domain.ConcernOption(nil), domain.ConcernOptions...)
}

// Reload re-reads the catalog from its configured source
func (s *CatalogService) Reload(ctx context.Context) (*domain.CatalogLoadReport, error) {
	report, err := s.catalog.Reload(ctx)
	if err != nil {
		s.log.Error("catalog reload failed", "error", err)
		return nil, err
	}
	s.log.Info("catalog reloaded", "version", report.Version, "products", report.RowsLoaded, "skipped", report.RowsSkipped)
	return report, nil
}

// Upload replaces the catalog with an uploaded CSV
func (s *CatalogService) Upload(ctx context.Context, filename string, r io.Reader) (*domain.CatalogLoadReport, error) {
	report, err := s.catalog.Replace(ctx, "upload:"+filename, r)
	if err != nil {
		s.log.Error("catalog upload failed", "file", filename, "error", err)
		return nil, err
	}
	s.log.Info("catalog uploaded", "file", filename, "version", report.Version, "products", report.RowsLoaded)
	return report, nil
}

// generateSearchCacheKey creates a cache key scoped to a catalog version.
// Format: "catalog:{version}:search:{query}". The query part is exactly the
// lowercased needle Search scans for, so distinct searches never share a key.
func generateSearchCacheKey(version, query string) string {
	return fmt.Sprintf("catalog:%s:search:%s", version, strings.ToLower(strings.TrimSpace(query)))
}

// getFromCache retrieves search results from cache
func (s *CatalogService) getFromCache(ctx context.Context, key string) ([]domain.ProductSummary, error) {
	if s.cache == nil {
		return nil, domain.ErrCacheMiss
	}
	value, err := s.cache.Get(ctx, key)
	if err != nil {
		return nil, err
	}

	switch v := value.(type) {
	case []domain.ProductSummary:
		return v, nil
	case []interface{}:
		// JSON-backed caches hand back generic values
		out := make([]domain.ProductSummary, 0, len(v))
		for _, item := range v {
			m, ok := item.(map[string]interface{})
			if !ok {
				return nil, domain.ErrCacheMiss
			}
			out = append(out, mapToProductSummary(m))
		}
		return out, nil
	}
	return nil, domain.ErrCacheMiss
}

// setInCache stores search results in cache
func (s *CatalogService) setInCache(ctx context.Context, key string, results []domain.ProductSummary) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.Set(ctx, key, results, s.cacheTTL)
}

// mapToProductSummary converts a map (from JSON cache) to ProductSummary
func mapToProductSummary(data map[string]interface{}) domain.ProductSummary {
	str := func(k string) string {
		v, _ := data[k].(string)
		return v
	}
	return domain.ProductSummary{
		ID:              str("id"),
		Name:            str("name"),
		BestFor:         str("bestFor"),
		KeyIngredients:  str("keyIngredients"),
		RecommendedTime: str("recommendedTime"),
		MaxFrequency:    str("maxFrequency"),
		Notes:           str("notes"),
	}
}
