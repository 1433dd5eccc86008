package portfolio

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/jonathan/portfolio-backoffice/internal/cache"
	"github.com/jonathan/portfolio-backoffice/internal/logging"
)

// CacheKey is the cache entry holding the encoded snapshot.
const CacheKey = "portfolio:snapshot"

// Service serves snapshots from the cache, building on a miss.
type Service struct {
	src    Source
	cache  cache.Cache
	now    func() time.Time
	logger *zap.Logger
}

// NewService creates a snapshot service.
func NewService(src Source, c cache.Cache, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{src: src, cache: c, now: time.Now, logger: logger.Named("portfolio")}
}

// WithClock replaces the clock stamped into built snapshots.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Get returns the cached snapshot, building and caching it when absent.
// Cache failures are logged and fall through to a fresh build.
func (s *Service) Get(ctx context.Context) (*Snapshot, error) {
	raw, ok, err := s.cache.Get(ctx, CacheKey)
	if err != nil {
		s.logger.Warn("Snapshot cache read failed", logging.SafeError(err))
	}
	if ok {
		var snap Snapshot
		if err := json.Unmarshal(raw, &snap); err == nil {
			return &snap, nil
		}
		s.logger.Warn("Discarding undecodable cached snapshot")
	}
	return s.build(ctx)
}

// Rebuild invalidates the cached snapshot and builds a fresh one.
func (s *Service) Rebuild(ctx context.Context) (*Snapshot, error) {
	if err := s.cache.Invalidate(ctx, CacheKey); err != nil {
		s.logger.Warn("Snapshot cache invalidation failed", logging.SafeError(err))
	}
	snap, err := s.build(ctx)
	if err != nil {
		return nil, err
	}
	s.logger.Info("Rebuilt portfolio snapshot",
		zap.Int("experiences", len(snap.Experiences)),
		zap.Int("skills", len(snap.Skills)),
		zap.Time("last_updated", snap.LastUpdated))
	return snap, nil
}

// Invalidate drops the cached snapshot so the next Get rebuilds it.
func (s *Service) Invalidate(ctx context.Context) {
	if err := s.cache.Invalidate(ctx, CacheKey); err != nil {
		s.logger.Warn("Snapshot cache invalidation failed", logging.SafeError(err))
	}
}

func (s *Service) build(ctx context.Context) (*Snapshot, error) {
	snap, err := Build(ctx, s.src, s.now())
	if err != nil {
		return nil, err
	}
	raw, err := json.Marshal(snap)
	if err != nil {
		return nil, fmt.Errorf("failed to encode snapshot: %w", err)
	}
	if err := s.cache.Set(ctx, CacheKey, raw); err != nil {
		s.logger.Warn("Snapshot cache write failed", logging.SafeError(err))
	}
	return snap, nil
}
