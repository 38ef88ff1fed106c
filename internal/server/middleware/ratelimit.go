package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/httprate"
)

// RateLimit limits each client IP to limit requests per window, using a
// sliding-window counter. Applied globally and, with a tighter budget, to
// the order-token endpoint.
func RateLimit(limit int, window time.Duration) func(http.Handler) http.Handler {
	return httprate.LimitByIP(limit, window)
}
