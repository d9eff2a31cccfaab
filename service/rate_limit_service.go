// service/rate_limit_service.go
package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/dev-mohitbeniwal/echo-cache/cache"
	echo_errors "github.com/dev-mohitbeniwal/echo-cache/errors"
	logger "github.com/dev-mohitbeniwal/echo-cache/logging"
	"github.com/dev-mohitbeniwal/echo-cache/metrics"
)

const (
	rateAllowed  = "allowed"
	rateExceeded = "exceeded"
	rateFailOpen = "fail_open"

	rateAttempts = 3
)

var errInvalidLimit = errors.New("rate limit and window must be positive")

// RateQuota is what is left of a bucket after a call was admitted.
type RateQuota struct {
	Limit     int
	Remaining int
	ResetIn   time.Duration
}

// RateLimitService implements fixed-window buckets on the cache backend.
// A bucket is two keys sharing the window TTL: a countdown of the calls
// left and the unix second at which the window ends.
type RateLimitService struct {
	backend cache.Backend
	keys    cache.KeyBuilder
	metrics *metrics.Collector
	now     func() time.Time
}

func NewRateLimitService(backend cache.Backend, keys cache.KeyBuilder, collector *metrics.Collector) *RateLimitService {
	return &RateLimitService{
		backend: backend,
		keys:    keys,
		metrics: collector,
		now:     time.Now,
	}
}

// WithClock replaces the wall clock, for tests.
func (s *RateLimitService) WithClock(now func() time.Time) *RateLimitService {
	s.now = now
	return s
}

// Consume takes one call from bucket. Once the limit is used up it returns
// a *LimitExceededError until the window ends. If the backend cannot be
// reached the call is admitted.
func (s *RateLimitService) Consume(ctx context.Context, bucket string, limit int, window time.Duration) (RateQuota, error) {
	if limit < 1 || window < time.Second {
		return RateQuota{}, fmt.Errorf("bucket %s: %w", bucket, errInvalidLimit)
	}
	countKey := s.keys.RateCount(bucket)
	resetKey := s.keys.RateReset(bucket)

	for attempt := 0; attempt < rateAttempts; attempt++ {
		raw, found, err := s.backend.Get(ctx, resetKey)
		if err != nil {
			return s.failOpen(bucket, limit, window, err), nil
		}

		if !found {
			resetAt := windowEnd(s.now(), window)
			created, err := s.backend.AddMany(ctx, map[string][]byte{
				countKey: []byte(strconv.Itoa(limit - 1)),
				resetKey: []byte(strconv.FormatInt(resetAt, 10)),
			}, window)
			if err != nil {
				return s.failOpen(bucket, limit, window, err), nil
			}
			if created {
				s.metrics.RateLimit(rateAllowed)
				return RateQuota{Limit: limit, Remaining: limit - 1, ResetIn: window}, nil
			}
			// Another caller opened the window first.
			continue
		}

		resetAt, err := strconv.ParseInt(string(raw), 10, 64)
		if err != nil {
			return s.failOpen(bucket, limit, window, err), nil
		}

		left, found, err := s.backend.IncrExisting(ctx, countKey, -1)
		if err != nil {
			return s.failOpen(bucket, limit, window, err), nil
		}
		if !found {
			// The window expired between the two reads.
			continue
		}

		resetIn := time.Unix(resetAt, 0).Sub(s.now())
		if left < 0 || resetIn <= 0 {
			if resetIn < time.Second {
				resetIn = time.Second
			}
			s.metrics.RateLimit(rateExceeded)
			logger.Debug("Rate limit exceeded",
				zap.String("bucket", bucket),
				zap.Int("limit", limit),
				zap.Duration("resetIn", resetIn))
			return RateQuota{Limit: limit, Remaining: 0, ResetIn: resetIn},
				&echo_errors.LimitExceededError{Bucket: bucket, Limit: limit, ResetIn: resetIn}
		}

		s.metrics.RateLimit(rateAllowed)
		return RateQuota{Limit: limit, Remaining: int(left), ResetIn: resetIn}, nil
	}

	return s.failOpen(bucket, limit, window, errors.New("bucket kept expiring while being consumed")), nil
}

// windowEnd is the first whole unix second at or after now+window, so the
// recorded end never precedes the expiry of the bucket keys.
func windowEnd(now time.Time, window time.Duration) int64 {
	end := now.Add(window)
	if end.Nanosecond() > 0 {
		return end.Unix() + 1
	}
	return end.Unix()
}

func (s *RateLimitService) failOpen(bucket string, limit int, window time.Duration, err error) RateQuota {
	s.metrics.RateLimit(rateFailOpen)
	logger.Warn("Rate limiter unavailable, admitting call",
		zap.Error(err),
		zap.String("bucket", bucket))
	return RateQuota{Limit: limit, Remaining: limit - 1, ResetIn: window}
}
