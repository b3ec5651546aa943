package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Recommendation Metrics
	RoutinesBuilt = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "skinlens_routines_built_total",
			Help: "Total number of routines built",
		},
		[]string{"area"},
	)

	RoutineGates = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "skinlens_routine_gates_total",
			Help: "Total number of routine requests suppressed by a safety gate",
		},
		[]string{"gate"}, // "consult_doctor", "professional_guidance"
	)

	StageFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "skinlens_stage_fallbacks_total",
			Help: "Total number of times a filtering stage fell back to a broader candidate set",
		},
		[]string{"stage"},
	)

	StepFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "skinlens_step_fallbacks_total",
			Help: "Total number of routine steps answered with fallback advice instead of a product",
		},
		[]string{"step"},
	)

	RoutineBuildDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "skinlens_routine_build_duration_seconds",
			Help:    "Duration of routine builds in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	// Catalog Metrics
	CatalogProducts = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "skinlens_catalog_products",
			Help: "Number of usable products in the current catalog",
		},
	)

	CatalogLoads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "skinlens_catalog_loads_total",
			Help: "Total number of catalog loads",
		},
		[]string{"status"}, // "success", "error"
	)

	CatalogRowsSkipped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "skinlens_catalog_rows_skipped_total",
			Help: "Total number of malformed catalog rows skipped during loads",
		},
	)

	// Search Cache Metrics
	SearchCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "skinlens_search_cache_hits_total",
			Help: "Total number of catalog search cache hits",
		},
	)

	SearchCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "skinlens_search_cache_misses_total",
			Help: "Total number of catalog search cache misses",
		},
	)

	// HTTP Metrics
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "skinlens_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRateLimited = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "skinlens_http_rate_limited_total",
			Help: "Total number of HTTP requests rejected by the per-IP rate limiter",
		},
	)
)

// RecordCatalogLoad records the outcome of a catalog load
func RecordCatalogLoad(products, skipped int, err error) {
	if err != nil {
		CatalogLoads.WithLabelValues("error").Inc()
		return
	}
	CatalogLoads.WithLabelValues("success").Inc()
	CatalogProducts.Set(float64(products))
	CatalogRowsSkipped.Add(float64(skipped))
}
