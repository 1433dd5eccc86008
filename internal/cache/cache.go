// Package cache holds derived, read-mostly data such as the public portfolio
// snapshot. Entries expire after a fixed age; writers invalidate explicitly.
package cache

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/jonathan/portfolio-backoffice/internal/config"
)

// Cache stores opaque values by key.
type Cache interface {
	// Get returns the value for key. A missing or expired entry reports
	// false with a nil error.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Invalidate(ctx context.Context, key string) error
}

// New builds the backend selected by cfg. The returned close function
// releases backend connections.
func New(cfg config.CacheConfig, logger *zap.Logger) (Cache, func() error, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	switch cfg.Backend {
	case "", "memory":
		return NewMemory(time.Now, cfg.MaxAge), func() error { return nil }, nil
	case "redis":
		client, err := NewRedisClient(cfg.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("Using Redis cache", zap.Duration("max_age", cfg.MaxAge))
		return NewRedis(client, DefaultRedisPrefix, cfg.MaxAge), client.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}
}
