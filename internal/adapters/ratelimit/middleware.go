package ratelimit

import (
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// KeyFunc extracts the throttling key from a request.
type KeyFunc func(r *http.Request) string

// Options configures Middleware.
type Options struct {
	Store      *Store
	KeyFn      KeyFunc
	RetryAfter time.Duration
	// OnReject writes the rejection. Defaults to a plain 429.
	OnReject func(w http.ResponseWriter, r *http.Request)
}

// ClientIP keys requests by remote host. Run chi's RealIP first when the
// service sits behind a proxy.
func ClientIP(r *http.Request) string {
	addr := strings.TrimSpace(r.RemoteAddr)
	if host, _, err := net.SplitHostPort(addr); err == nil && host != "" {
		return host
	}
	if addr != "" {
		return addr
	}
	return "unknown"
}

// Middleware rejects requests whose key has no tokens left.
func Middleware(opts Options) func(next http.Handler) http.Handler {
	if opts.KeyFn == nil {
		opts.KeyFn = ClientIP
	}
	if opts.RetryAfter <= 0 {
		opts.RetryAfter = time.Second
	}
	if opts.OnReject == nil {
		opts.OnReject = func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
		}
	}
	retryAfter := strconv.Itoa(int(opts.RetryAfter.Seconds()))

	return func(next http.Handler) http.Handler {
		if opts.Store == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !opts.Store.Allow(opts.KeyFn(r)) {
				w.Header().Set("Retry-After", retryAfter)
				opts.OnReject(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
