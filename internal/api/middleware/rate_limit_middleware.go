package middleware

import (
	"context"
	"math"
	"net/http"
	"strconv"

	"github.com/jasim8799/api/internal/utils"
)

// Limiter decides whether one more request for key is allowed.
// Both the in-memory and the Redis limiter implement it.
type Limiter interface {
	Check(ctx context.Context, key string) (utils.LimitResult, error)
}

// RateLimitMiddleware limits requests per client IP.
type RateLimitMiddleware struct {
	limiter  Limiter
	logger   *utils.Logger
	rejected func()
}

// NewRateLimitMiddleware creates a new rate limit middleware. onReject may be nil.
func NewRateLimitMiddleware(limiter Limiter, logger *utils.Logger, onReject func()) *RateLimitMiddleware {
	if onReject == nil {
		onReject = func() {}
	}
	return &RateLimitMiddleware{
		limiter:  limiter,
		logger:   logger.Named("rate_limit"),
		rejected: onReject,
	}
}

// Limit rejects requests over the limit with 429.
// Limiter failures let the request through.
func (m *RateLimitMiddleware) Limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := utils.GetRequestIP(r)

		result, err := m.limiter.Check(r.Context(), ip)
		if err != nil {
			m.logger.Error("Rate limiter unavailable", err, "ip", ip)
			next.ServeHTTP(w, r)
			return
		}

		reset := strconv.Itoa(int(math.Ceil(result.ResetAfter.Seconds())))
		w.Header().Set("RateLimit-Limit", strconv.Itoa(result.Limit))
		w.Header().Set("RateLimit-Remaining", strconv.Itoa(result.Remaining))
		w.Header().Set("RateLimit-Reset", reset)

		if !result.Allowed {
			m.rejected()
			w.Header().Set("Retry-After", reset)
			utils.RespondWithError(w, http.StatusTooManyRequests, "Too many requests, please try again later.")
			return
		}

		next.ServeHTTP(w, r)
	})
}
