package ratelimit

import (
	"math"
	"net/http"
	"strconv"
	"time"
)

// Rule is the limit applied to one endpoint.
type Rule struct {
	Endpoint string
	Window   time.Duration
	Max      int
}

// KeyFunc identifies the client of a request.
type KeyFunc func(r *http.Request) string

// Middleware rejects requests over rule with 429 and an empty body.
func Middleware(l *Limiter, rule Rule, clientFn KeyFunc) func(next http.Handler) http.Handler {
	retryAfter := strconv.Itoa(int(math.Ceil(rule.Window.Seconds())))

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := NewKey(rule.Endpoint, clientFn(r))
			if l.IsLimited(key, rule.Window, rule.Max) {
				w.Header().Set("Retry-After", retryAfter)
				w.WriteHeader(http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
