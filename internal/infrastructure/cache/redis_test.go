package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/skinlens/backend/internal/domain"
)

// unreachableClient points at a port nothing listens on
func unreachableClient() *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
}

func TestNewRedisCache_Unreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err := NewRedisCache(ctx, "redis://127.0.0.1:1/0")
	if !errors.Is(err, domain.ErrCacheUnavailable) {
		t.Errorf("NewRedisCache() error = %v, want ErrCacheUnavailable", err)
	}
}

func TestRedisCache_UnavailableErrors(t *testing.T) {
	c := NewRedisCacheFromClient(unreachableClient())
	defer c.Close()
	ctx := context.Background()

	if _, err := c.Get(ctx, "k"); !errors.Is(err, domain.ErrCacheUnavailable) {
		t.Errorf("Get() error = %v, want ErrCacheUnavailable", err)
	}
	if err := c.Set(ctx, "k", "v", time.Minute); !errors.Is(err, domain.ErrCacheUnavailable) {
		t.Errorf("Set() error = %v, want ErrCacheUnavailable", err)
	}
	if err := c.Delete(ctx, "k"); !errors.Is(err, domain.ErrCacheUnavailable) {
		t.Errorf("Delete() error = %v, want ErrCacheUnavailable", err)
	}
	if _, err := c.Exists(ctx, "k"); !errors.Is(err, domain.ErrCacheUnavailable) {
		t.Errorf("Exists() error = %v, want ErrCacheUnavailable", err)
	}
}

func TestRedisCache_SetRejectsUnencodable(t *testing.T) {
	c := NewRedisCacheFromClient(unreachableClient())
	defer c.Close()

	err := c.Set(context.Background(), "k", make(chan int), time.Minute)
	if err == nil || errors.Is(err, domain.ErrCacheUnavailable) {
		t.Errorf("Set() error = %v, want encoding error", err)
	}
}
