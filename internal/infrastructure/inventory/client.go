package inventory

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/skinlens/backend/internal/domain"
	"github.com/skinlens/backend/internal/pkg/logger"
)

// maxInventoryBytes bounds the size of a downloaded inventory
const maxInventoryBytes = 32 << 20

// Config holds configuration for the inventory client
type Config struct {
	URL string
	// RequestsPerHour caps fetches against the seller's endpoint
	RequestsPerHour int
	Timeout         time.Duration
	MaxAttempts     int
	// RetryBackoff is multiplied by the attempt number between retries
	RetryBackoff time.Duration
	// BreakerFailures is the number of consecutive failed fetches that opens
	// the circuit; BreakerTimeout is how long it stays open
	BreakerFailures uint32
	BreakerTimeout  time.Duration
}

// Client fetches a seller's inventory CSV over HTTP
type Client struct {
	httpClient   *http.Client
	url          string
	rateLimiter  *rate.Limiter
	breaker      *gobreaker.CircuitBreaker[[]byte]
	maxAttempts  int
	retryBackoff time.Duration
	log          *logger.Logger
}

// NewClient creates a new inventory client
func NewClient(config Config, log *logger.Logger) *Client {
	perHour := config.RequestsPerHour
	if perHour <= 0 {
		perHour = 60
	}
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	attempts := config.MaxAttempts
	if attempts <= 0 {
		attempts = 3
	}
	backoff := config.RetryBackoff
	if backoff <= 0 {
		backoff = 500 * time.Millisecond
	}

	failures := config.BreakerFailures
	if failures == 0 {
		failures = 3
	}
	openFor := config.BreakerTimeout
	if openFor <= 0 {
		openFor = time.Minute
	}

	// rate.Limit is requests per second
	limiter := rate.NewLimiter(rate.Limit(float64(perHour)/3600.0), 5)

	c := &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		url:          config.URL,
		rateLimiter:  limiter,
		maxAttempts:  attempts,
		retryBackoff: backoff,
		log:          logger.OrNop(log).With("component", "inventory_client"),
	}

	c.breaker = gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        "inventory",
		MaxRequests: 1,
		Timeout:     openFor,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		// Only upstream failures count; cancellations and local rate limits do not
		IsSuccessful: func(err error) bool {
			return err == nil || !errors.Is(err, domain.ErrInventoryFetch)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			c.log.Warn("inventory circuit state changed", "from", from.String(), "to", to.String())
		},
	})

	return c
}

// BreakerState reports the circuit state: closed, half-open or open
func (c *Client) BreakerState() string {
	return c.breaker.State().String()
}

// Describe names the source
func (c *Client) Describe() string {
	return c.url
}

// Open downloads the inventory and returns its body
func (c *Client) Open(ctx context.Context) (io.ReadCloser, error) {
	body, err := c.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	return io.NopCloser(bytes.NewReader(body)), nil
}

// Fetch downloads the inventory, retrying transient failures. Once the
// circuit is open, fetches fail fast with ErrInventoryFetch.
func (c *Client) Fetch(ctx context.Context) ([]byte, error) {
	body, err := c.breaker.Execute(func() ([]byte, error) {
		return c.fetchWithRetry(ctx)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("%w: %v", domain.ErrInventoryFetch, err)
	}
	return body, err
}

func (c *Client) fetchWithRetry(ctx context.Context) ([]byte, error) {
	var lastErr error
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		// Wait for rate limiter
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrRateLimited, err)
		}

		resp, err := c.doRequest(ctx)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			c.log.Warn("inventory request failed", "attempt", attempt, "error", err)
			lastErr = err
			if !c.sleep(ctx, attempt) {
				return nil, ctx.Err()
			}
			continue
		}

		body, readErr := io.ReadAll(io.LimitReader(resp.Body, maxInventoryBytes))
		resp.Body.Close()

		// Retry on 5xx and 429; other errors are final
		if resp.StatusCode != http.StatusOK {
			lastErr = fmt.Errorf("%w: status %d", domain.ErrInventoryFetch, resp.StatusCode)
			c.log.Warn("inventory returned error status", "attempt", attempt, "status", resp.StatusCode)
			if resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
				return nil, lastErr
			}
			if !c.sleep(ctx, attempt) {
				return nil, ctx.Err()
			}
			continue
		}
		if readErr != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrInventoryFetch, readErr)
		}

		c.log.Info("inventory fetched", "url", c.url, "bytes", len(body))
		return body, nil
	}

	c.log.Error("all inventory fetch attempts failed", "url", c.url)
	return nil, lastErr
}

// doRequest executes an HTTP GET request with proper headers
func (c *Client) doRequest(ctx context.Context) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "SkinLens/1.0")
	req.Header.Set("Accept", "text/csv, text/plain;q=0.9, */*;q=0.5")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// A cancelled caller is not an upstream failure
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrInventoryFetch, err)
	}
	return resp, nil
}

// sleep waits before the next attempt; false means ctx ended first
func (c *Client) sleep(ctx context.Context, attempt int) bool {
	if attempt >= c.maxAttempts {
		return true
	}
	select {
	case <-ctx.Done():
		return false
	case <-time.After(time.Duration(attempt) * c.retryBackoff):
		return true
	}
}
