package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/httprate"
)

const (
	defaultRequestLimit = 100
	strictRequestLimit  = 10
	rateLimitWindow     = time.Minute
)

// RateLimiter allows 100 requests per minute per client IP.
func RateLimiter() func(http.Handler) http.Handler {
	return LimitByIP(defaultRequestLimit, rateLimitWindow)
}

// StrictRateLimiter guards credential endpoints (signup, login) with 10 requests per minute per IP.
func StrictRateLimiter() func(http.Handler) http.Handler {
	return LimitByIP(strictRequestLimit, rateLimitWindow)
}

// LimitByIP rejects requests over limit within window with a JSON 429.
func LimitByIP(limit int, window time.Duration) func(http.Handler) http.Handler {
	return httprate.Limit(limit, window,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"message":"Too many requests"}`))
		}),
	)
}
