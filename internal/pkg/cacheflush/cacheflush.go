// Package cacheflush invalidates cached public responses after content
// mutations. Invalidation is fire-and-forget: a failed purge is logged and
// the mutation is still considered successful.
package cacheflush

import (
	"context"
	"time"

	redisc "github.com/akshayrajput12/chronical-sub004/internal/pkg/redis"
	"go.uber.org/zap"
)

const (
	// APICachePrefix keys every cached public response. The HTTP cache
	// middleware writes under it; Invalidate purges it.
	APICachePrefix = "chronical:api-cache:"

	// Channel carries invalidation notifications (collection name) for
	// page-cache subscribers such as the site frontend.
	Channel = "chronical:content:invalidate"

	purgeTimeout = 10 * time.Second
)

// Service purges the redis HTTP cache and notifies subscribers.
type Service struct {
	rc  *redisc.Client
	log *zap.Logger
}

func New(rc *redisc.Client, log *zap.Logger) *Service {
	return &Service{rc: rc, log: log}
}

// Invalidate drops all cached responses and publishes the changed collection.
// It returns immediately; the purge runs in the background.
func (s *Service) Invalidate(collection string) {
	if s == nil || s.rc == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), purgeTimeout)
		defer cancel()

		if deleted, err := s.purge(ctx); err != nil {
			s.log.Warn("cache purge failed", zap.String("collection", collection), zap.Error(err))
		} else if deleted > 0 {
			s.log.Debug("cache purged", zap.String("collection", collection), zap.Int64("keys", deleted))
		}

		if err := s.rc.Publish(ctx, Channel, collection); err != nil {
			s.log.Warn("invalidation publish failed", zap.String("collection", collection), zap.Error(err))
		}
	}()
}

func (s *Service) purge(ctx context.Context) (int64, error) {
	var (
		cursor  uint64
		deleted int64
	)
	for {
		keys, next, err := s.rc.Raw().Scan(ctx, cursor, APICachePrefix+"*", 200).Result()
		if err != nil {
			return deleted, err
		}
		if len(keys) > 0 {
			n, err := s.rc.Raw().Del(ctx, keys...).Result()
			if err != nil {
				return deleted, err
			}
			deleted += n
		}
		cursor = next
		if cursor == 0 {
			return deleted, nil
		}
	}
}
