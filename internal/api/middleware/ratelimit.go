package middleware

import (
	"net/http"

	"golang.org/x/time/rate"

	"github.com/labelproof/labelproof/internal/api/response"
)

// LoginRateLimit returns middleware that throttles anonymous login attempts
// with a shared token bucket of perMinute requests.
func LoginRateLimit(perMinute int) func(http.Handler) http.Handler {
	lim := rate.NewLimiter(rate.Limit(float64(perMinute)/60.0), perMinute)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !lim.Allow() {
				requestID := GetRequestID(r.Context())
				response.Err(w, http.StatusTooManyRequests, "RATE_LIMITED", "Too many login attempts", requestID)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
