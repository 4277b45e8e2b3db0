package redis

import (
	"context"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/jasim8799/api/internal/utils"
)

const (
	// RateLimitKeyPrefix is the prefix for rate limit keys
	RateLimitKeyPrefix = "ratelimit"
)

// RateLimiter is a sliding-window limiter shared by every API instance.
// Each request is one member of a sorted set scored by its arrival time.
type RateLimiter struct {
	client *Client
	logger *utils.Logger

	window time.Duration
	limit  int
	now    func() time.Time
	seq    atomic.Uint64
}

// NewRateLimiter creates a new rate limiter allowing limit requests per window.
func NewRateLimiter(client *Client, window time.Duration, limit int) *RateLimiter {
	return &RateLimiter{
		client: client,
		logger: client.Logger().Named("rate_limiter"),
		window: window,
		limit:  limit,
		now:    time.Now,
	}
}

// Check records a request for key when it fits in the window.
func (rl *RateLimiter) Check(ctx context.Context, key string) (utils.LimitResult, error) {
	rateLimitKey := FormatKey(RateLimitKeyPrefix, key)

	now := rl.now()
	windowStart := now.Add(-rl.window)

	pipe := rl.client.TxPipeline()
	pipe.ZRemRangeByScore(ctx, rateLimitKey, "-inf", "("+strconv.FormatInt(windowStart.UnixNano(), 10))
	countCmd := pipe.ZCard(ctx, rateLimitKey)
	oldestCmd := pipe.ZRangeWithScores(ctx, rateLimitKey, 0, 0)

	if _, err := pipe.Exec(ctx); err != nil && err != redis.Nil {
		rl.logger.Error("Failed to execute rate limit pipeline", err, "key", rateLimitKey)
		return utils.LimitResult{}, err
	}

	count := int(countCmd.Val())
	result := utils.LimitResult{Limit: rl.limit, ResetAfter: rl.window}

	if oldest := oldestCmd.Val(); len(oldest) > 0 {
		oldestAt := time.Unix(0, int64(oldest[0].Score))
		result.ResetAfter = oldestAt.Add(rl.window).Sub(now)
	}

	if count >= rl.limit {
		return result, nil
	}

	member := strconv.FormatInt(now.UnixNano(), 10) + "-" + strconv.FormatUint(rl.seq.Add(1), 10)

	pipe = rl.client.TxPipeline()
	pipe.ZAdd(ctx, rateLimitKey, &redis.Z{Score: float64(now.UnixNano()), Member: member})
	pipe.Expire(ctx, rateLimitKey, rl.window*2)
	if _, err := pipe.Exec(ctx); err != nil {
		// The request was within the limit; a failed write only loosens the next check.
		rl.logger.Error("Failed to record rate limit token", err, "key", rateLimitKey)
	}

	result.Allowed = true
	result.Remaining = rl.limit - count - 1
	return result, nil
}
