package middleware

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"

	"github.com/go-redis/redis/v8"
	"github.com/signageops/signage-service/internal/ratelimit"
	"github.com/signageops/signage-service/internal/utils/response"
)

const mutationAction = "admin_mutation"

// RateLimiter guards admin mutation endpoints with a per-client-address
// token bucket. The admin API carries no authentication, so the remote
// address is the only identity available to key on.
type RateLimiter struct {
	bucket *ratelimit.TokenBucket
	limit  int64
}

func NewRateLimiter(redisClient *redis.Client, mutationsPerMinute int64) *RateLimiter {
	return &RateLimiter{
		bucket: ratelimit.NewTokenBucket(redisClient, mutationsPerMinute, mutationsPerMinute),
		limit:  mutationsPerMinute,
	}
}

// Limit wraps a mutation handler with the token bucket check.
func (rl *RateLimiter) Limit(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		subject := clientAddr(r)

		allowed, err := rl.bucket.Allow(r.Context(), subject, mutationAction)
		if err != nil {
			response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(
				fmt.Errorf("rate limit check failed: %w", err)))
			return
		}

		remaining, _ := rl.bucket.GetRemaining(r.Context(), subject, mutationAction)
		w.Header().Set("X-RateLimit-Limit", strconv.FormatInt(rl.limit, 10))
		w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))
		w.Header().Set("X-RateLimit-Reset", "60")

		if !allowed {
			response.WriteJSON(w, http.StatusTooManyRequests, response.GeneralError(
				errors.New("rate limit exceeded")))
			return
		}

		next(w, r)
	}
}

func clientAddr(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
