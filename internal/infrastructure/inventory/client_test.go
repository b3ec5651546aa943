package inventory

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skinlens/backend/internal/domain"
)

const inventoryCSV = "id,name\nA1,Cloud Cleanser\n"

func newTestClient(url string) *Client {
	return NewClient(Config{
		URL:          url,
		MaxAttempts:  3,
		RetryBackoff: time.Millisecond,
		Timeout:      2 * time.Second,
	}, nil)
}

func TestNewClient(t *testing.T) {
	client := NewClient(Config{URL: "https://seller.example.com/stock.csv"}, nil)

	assert.NotNil(t, client)
	assert.Equal(t, "https://seller.example.com/stock.csv", client.Describe())
	assert.Equal(t, 3, client.maxAttempts)
	assert.Equal(t, 500*time.Millisecond, client.retryBackoff)
	assert.Equal(t, 30*time.Second, client.httpClient.Timeout)
	assert.NotNil(t, client.rateLimiter)
	assert.Equal(t, "closed", client.BreakerState())
}

func TestFetch_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "SkinLens/1.0", r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "text/csv")
		_, _ = w.Write([]byte(inventoryCSV))
	}))
	defer server.Close()

	body, err := newTestClient(server.URL).Fetch(context.Background())

	require.NoError(t, err)
	assert.Equal(t, inventoryCSV, string(body))
}

func TestOpen_ReturnsBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(inventoryCSV))
	}))
	defer server.Close()

	rc, err := newTestClient(server.URL).Open(context.Background())
	require.NoError(t, err)
	defer rc.Close()

	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, inventoryCSV, string(data))
}

func TestFetch_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(inventoryCSV))
	}))
	defer server.Close()

	body, err := newTestClient(server.URL).Fetch(context.Background())

	require.NoError(t, err)
	assert.Equal(t, inventoryCSV, string(body))
	assert.Equal(t, int32(3), calls.Load())
}

func TestFetch_RetriesTooManyRequests(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte(inventoryCSV))
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).Fetch(context.Background())

	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
}

func TestFetch_GivesUpAfterMaxAttempts(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).Fetch(context.Background())

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInventoryFetch)
	assert.Equal(t, int32(3), calls.Load())
}

func TestFetch_ClientErrorIsFinal(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).Fetch(context.Background())

	assert.ErrorIs(t, err, domain.ErrInventoryFetch)
	assert.Equal(t, int32(1), calls.Load())
}

func TestFetch_TransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	_, err := newTestClient(url).Fetch(context.Background())

	assert.ErrorIs(t, err, domain.ErrInventoryFetch)
}

func TestFetch_ContextCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(inventoryCSV))
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestClient(server.URL).Fetch(ctx)

	assert.Error(t, err)
}

func TestFetch_CircuitOpensAfterFailures(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	client := NewClient(Config{
		URL:             server.URL,
		MaxAttempts:     1,
		BreakerFailures: 2,
		BreakerTimeout:  time.Hour,
	}, nil)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := client.Fetch(ctx)
		require.ErrorIs(t, err, domain.ErrInventoryFetch)
	}
	assert.Equal(t, "open", client.BreakerState())

	_, err := client.Fetch(ctx)
	assert.ErrorIs(t, err, domain.ErrInventoryFetch)
	assert.Equal(t, int32(2), calls.Load(), "an open circuit must not reach the server")
}

func TestFetch_CancellationDoesNotTrip(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(inventoryCSV))
	}))
	defer server.Close()

	client := NewClient(Config{URL: server.URL, BreakerFailures: 1}, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.Fetch(ctx)
	require.Error(t, err)
	assert.Equal(t, "closed", client.BreakerState())
}

func TestFetch_CancelledInFlightDoesNotTrip(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	client := NewClient(Config{URL: server.URL, BreakerFailures: 1, RetryBackoff: time.Millisecond}, nil)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := client.Fetch(ctx)

	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.NotErrorIs(t, err, domain.ErrInventoryFetch)
	assert.Equal(t, "closed", client.BreakerState())
}
