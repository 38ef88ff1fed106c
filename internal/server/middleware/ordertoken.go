package middleware

import (
	"log/slog"
	"net/http"

	"github.com/antojitos/comanda/internal/service"
)

// OrderKeyHeader carries the order-submission token on the public order
// endpoint.
const OrderKeyHeader = "X-Order-Key"

// CheckOrderToken gates the public order-submission endpoint with a
// short-lived order token. The gate is stateless: signature, expiry, and
// the order type claim are the whole check, and no identity is attached.
// A session token presented here fails and must never be admitted.
func CheckOrderToken(tokens *service.TokenService, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := r.Header.Get(OrderKeyHeader)
			if token == "" {
				writeGateError(w, http.StatusUnauthorized, "Missing order token")
				return
			}

			if _, err := tokens.Verify(token, service.TokenTypeOrder); err != nil {
				logger.Warn("order token rejected", "reason", err, "request_id", GetRequestID(r.Context()))
				writeGateError(w, http.StatusForbidden, "Invalid or expired token")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
