// internal/recommend/service.go

package recommend

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/gatherlyhq/gatherly-backend/internal/events"
)

// Service wraps the engine with a Redis result cache. Recommendations
// are a best-effort personalization feature: any failure inside the
// pipeline is logged and converted into an empty list, never surfaced
// to the caller as an error.
type Service interface {
	GetRecommendations(ctx context.Context, userID int64, limit int) []*events.Event
	InvalidateUser(ctx context.Context, userID int64)
}

type service struct {
	engine   *Engine
	redis    *redis.Client
	cacheTTL time.Duration
	maxLimit int
}

func NewService(engine *Engine, redisClient *redis.Client, cacheTTL time.Duration, maxLimit int) Service {
	if maxLimit <= 0 {
		maxLimit = 20
	}
	return &service{
		engine:   engine,
		redis:    redisClient,
		cacheTTL: cacheTTL,
		maxLimit: maxLimit,
	}
}

func (s *service) GetRecommendations(ctx context.Context, userID int64, limit int) []*events.Event {
	if limit <= 0 || limit > s.maxLimit {
		limit = s.maxLimit
	}

	if cached, ok := s.fromCache(ctx, userID, limit); ok {
		cacheHits.WithLabelValues("hit").Inc()
		return cached
	}
	cacheHits.WithLabelValues("miss").Inc()

	recs, err := s.engine.Recommend(ctx, userID, limit)
	if err != nil {
		recommendationErrors.Inc()
		log.Printf("Recommendation pipeline failed for user %d: %v", userID, err)
		return []*events.Event{}
	}
	if recs == nil {
		recs = []*events.Event{}
	}

	s.toCache(ctx, userID, limit, recs)
	return recs
}

// InvalidateUser drops all cached recommendation lists for a user. It
// is called whenever the user's registration history changes.
func (s *service) InvalidateUser(ctx context.Context, userID int64) {
	if s.redis == nil {
		return
	}

	pattern := fmt.Sprintf("rec:user:%d:*", userID)
	keys, err := s.redis.Keys(ctx, pattern).Result()
	if err != nil || len(keys) == 0 {
		return
	}
	if err := s.redis.Del(ctx, keys...).Err(); err != nil {
		log.Printf("Failed to invalidate recommendation cache for user %d: %v", userID, err)
	}
}

func (s *service) fromCache(ctx context.Context, userID int64, limit int) ([]*events.Event, bool) {
	if s.redis == nil {
		return nil, false
	}

	data, err := s.redis.Get(ctx, cacheKey(userID, limit)).Bytes()
	if err != nil {
		return nil, false
	}

	var recs []*events.Event
	if err := json.Unmarshal(data, &recs); err != nil {
		return nil, false
	}
	return recs, true
}

func (s *service) toCache(ctx context.Context, userID int64, limit int, recs []*events.Event) {
	if s.redis == nil {
		return
	}

	data, err := json.Marshal(recs)
	if err != nil {
		return
	}
	if err := s.redis.Set(ctx, cacheKey(userID, limit), data, s.cacheTTL).Err(); err != nil {
		log.Printf("Failed to cache recommendations for user %d: %v", userID, err)
	}
}

func cacheKey(userID int64, limit int) string {
	return fmt.Sprintf("rec:user:%d:%d", userID, limit)
}
