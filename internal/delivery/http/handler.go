package http

import (
	"context"
	"errors"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/skinlens/backend/internal/domain"
	"github.com/skinlens/backend/internal/pkg/logger"
	"github.com/skinlens/backend/internal/usecase"
)

// defaultMaxUploadBytes caps catalog uploads when no limit is configured
const defaultMaxUploadBytes int64 = 10 << 20

// HandlerConfig holds configuration for HTTP handlers
type HandlerConfig struct {
	MaxUploadBytes int64
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	recommendations *usecase.RecommendationService
	catalog         *usecase.CatalogService
	progress        *usecase.ProgressService
	maxUploadBytes  int64
	log             *logger.Logger
}

// NewHandler creates a new HTTP handler. Nil services answer 503.
func NewHandler(
	recommendations *usecase.RecommendationService,
	catalog *usecase.CatalogService,
	progress *usecase.ProgressService,
	config HandlerConfig,
	log *logger.Logger,
) *Handler {
	maxUpload := config.MaxUploadBytes
	if maxUpload <= 0 {
		maxUpload = defaultMaxUploadBytes
	}
	return &Handler{
		recommendations: recommendations,
		catalog:         catalog,
		progress:        progress,
		maxUploadBytes:  maxUpload,
		log:             logger.OrNop(log).With("component", "http_handler"),
	}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	response := gin.H{
		"status":  "healthy",
		"service": "skinlens-backend",
		"version": "1.0.0",
	}
	if h.catalog != nil {
		if info, err := h.catalog.Info(c.Request.Context()); err == nil {
			response["catalog"] = gin.H{
				"version":  info.Version,
				"source":   info.Source,
				"products": info.Len(),
				"loadedAt": info.LoadedAt,
			}
		}
	}
	c.JSON(http.StatusOK, response)
}

// CreateRoutine handles routine recommendation requests
func (h *Handler) CreateRoutine(c *gin.Context) {
	if h.recommendations == nil {
		h.notConfigured(c, "Routine recommendations")
		return
	}

	var req domain.RoutineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request",
			"details": err.Error(),
		})
		return
	}

	rec, err := h.recommendations.Recommend(c.Request.Context(), &req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, rec)
}

// SearchProducts handles catalog search by product name
func (h *Handler) SearchProducts(c *gin.Context) {
	if h.catalog == nil {
		h.notConfigured(c, "Catalog browsing")
		return
	}

	query := c.Query("q")
	if strings.TrimSpace(query) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Query parameter 'q' is required"})
		return
	}

	results, err := h.catalog.Search(c.Request.Context(), query)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"query":    query,
		"count":    len(results),
		"products": results,
	})
}

// GetProduct returns a single catalog product
func (h *Handler) GetProduct(c *gin.Context) {
	if h.catalog == nil {
		h.notConfigured(c, "Catalog browsing")
		return
	}

	product, err := h.catalog.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"product": product,
		"summary": product.Summarize(),
	})
}

// ListConcerns returns the concern options a client can offer
func (h *Handler) ListConcerns(c *gin.Context) {
	if h.catalog == nil {
		c.JSON(http.StatusOK, gin.H{"concerns": domain.ConcernOptions})
		return
	}
	c.JSON(http.StatusOK, gin.H{"concerns": h.catalog.Concerns()})
}

// ReloadCatalog re-reads the catalog from its configured source
func (h *Handler) ReloadCatalog(c *gin.Context) {
	if h.catalog == nil {
		h.notConfigured(c, "Catalog maintenance")
		return
	}

	report, err := h.catalog.Reload(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

// UploadCatalog replaces the catalog with a multipart CSV upload in the
// "file" field
func (h *Handler) UploadCatalog(c *gin.Context) {
	if h.catalog == nil {
		h.notConfigured(c, "Catalog maintenance")
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)

	header, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "Catalog file is too large"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "A CSV file is required in the 'file' field",
			"details": err.Error(),
		})
		return
	}

	if ext := strings.ToLower(filepath.Ext(header.Filename)); ext != ".csv" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Catalog file must be a .csv file"})
		return
	}

	file, err := header.Open()
	if err != nil {
		h.log.Error("failed to open uploaded catalog", "file", header.Filename, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read uploaded file"})
		return
	}
	defer file.Close()

	report, err := h.catalog.Upload(c.Request.Context(), filepath.Base(header.Filename), file)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

// SubmitProgress returns follow-up advice for a progress report
func (h *Handler) SubmitProgress(c *gin.Context) {
	if h.progress == nil {
		h.notConfigured(c, "Progress tracking")
		return
	}

	var report domain.ProgressReport
	if err := c.ShouldBindJSON(&report); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request",
			"details": err.Error(),
		})
		return
	}

	advice, err := h.progress.Advise(&report)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, advice)
}

func (h *Handler) notConfigured(c *gin.Context, feature string) {
	c.JSON(http.StatusServiceUnavailable, gin.H{
		"error": feature + " not configured",
	})
}

// handleError maps domain errors to HTTP responses
func (h *Handler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidRequest):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request parameters"})
	case errors.Is(err, domain.ErrProductNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
	case errors.Is(err, domain.ErrMissingColumn), errors.Is(err, domain.ErrCatalogEmpty):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":   "Catalog rejected",
			"details": err.Error(),
		})
	case errors.Is(err, domain.ErrNoCatalogSource):
		c.JSON(http.StatusConflict, gin.H{"error": "No catalog source configured"})
	case errors.Is(err, domain.ErrCatalogUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Catalog not loaded"})
	case errors.Is(err, domain.ErrRateLimited):
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "Rate limit exceeded, please try again later"})
	case errors.Is(err, domain.ErrInventoryFetch):
		c.JSON(http.StatusBadGateway, gin.H{"error": "Seller inventory temporarily unavailable"})
	case errors.Is(err, context.DeadlineExceeded):
		c.JSON(http.StatusGatewayTimeout, gin.H{"error": "Request timed out"})
	default:
		h.log.Error("request failed", "path", c.FullPath(), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
