package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// RateLimitStore is a fixed-window request counter backed by Redis,
// satisfying echo's middleware.RateLimiterStore. Key format:
// ratelimit:<scope>:<identifier>:<window_number>. The store fails open:
// a Redis outage must not take the API down with it.
type RateLimitStore struct {
	client *redis.Client
	scope  string
	limit  int64
	window time.Duration
	log    zerolog.Logger
}

// NewRateLimitStore creates a store allowing limit requests per identifier
// per window for the given scope (e.g. "auth", "reset").
func NewRateLimitStore(client *redis.Client, scope string, limit int, window time.Duration, log zerolog.Logger) *RateLimitStore {
	if window <= 0 {
		window = time.Minute
	}
	return &RateLimitStore{
		client: client,
		scope:  scope,
		limit:  int64(limit),
		window: window,
		log:    log,
	}
}

// Allow reports whether the identifier may make another request in the
// current window.
func (s *RateLimitStore) Allow(identifier string) (bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	key := s.key(identifier, time.Now())
	n, err := s.client.Incr(ctx, key).Result()
	if err != nil {
		s.log.Warn().Err(err).Str("scope", s.scope).Msg("rate limit check failed, allowing request")
		return true, nil
	}
	if n == 1 {
		if err := s.client.Expire(ctx, key, s.window).Err(); err != nil {
			s.log.Warn().Err(err).Str("scope", s.scope).Msg("failed to set rate limit key expiry")
		}
	}
	return n <= s.limit, nil
}

func (s *RateLimitStore) key(identifier string, now time.Time) string {
	windowNum := now.Unix() / int64(s.window.Seconds())
	return fmt.Sprintf("ratelimit:%s:%s:%d", s.scope, identifier, windowNum)
}
