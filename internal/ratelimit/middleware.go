package ratelimit

import (
	"net"
	"net/http"
	"strconv"

	"github.com/ruminaider/salon-sync/internal/response"
	"go.uber.org/zap"
)

// ClientKey identifies the caller by its remote IP. Forwarding headers are
// ignored; put middleware.RealIP in front when a trusted proxy sets them.
func ClientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return "ip:" + host
}

// Middleware rejects requests with 429 once l denies them. Limiter errors
// fail open.
func Middleware(l Limiter, logger *zap.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := ClientKey(r)
			d, err := l.Allow(r.Context(), key)
			if err != nil {
				logger.Warn("rate limiter unavailable", zap.String("key", key), zap.Error(err))
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(d.Limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))
			w.Header().Set("X-RateLimit-Reset", strconv.Itoa(int(d.Reset.Seconds())))

			if !d.Allowed {
				logger.Info("rate limit exceeded", zap.String("key", key), zap.Duration("reset", d.Reset))
				w.Header().Set("Retry-After", strconv.Itoa(int(d.Reset.Seconds())))
				response.Error(w, http.StatusTooManyRequests, "Too Many Requests. Try again in "+d.Reset.String())
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
