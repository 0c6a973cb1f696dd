package middleware

import (
	"net"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/wilson12358/daybook/pkg/auth"
	"github.com/wilson12358/daybook/pkg/common"
)

// Authenticate validates the bearer token and stores the owner id on the
// request context. Requests are rate limited per client IP before the token
// is even parsed.
func Authenticate(validator *auth.JWTValidator, limiter auth.RateLimiter, logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			clientIP := getClientIP(r)

			allowed, err := limiter.Allow(r.Context(), clientIP)
			if err != nil {
				logger.Warn("rate limiter failure", zap.Error(err))
			}
			if !allowed {
				common.RespondError(w, http.StatusTooManyRequests, "RATE_LIMIT", "rate limit exceeded")
				return
			}

			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				common.RespondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing authorization header")
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				common.RespondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "invalid authorization header format")
				return
			}

			claims, err := validator.Validate(parts[1])
			if err != nil {
				logger.Debug("token validation failed", zap.Error(err))
				common.RespondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "invalid token")
				return
			}

			ctx := common.WithUserID(r.Context(), claims.UserID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func getClientIP(r *http.Request) string {
	// RealIP middleware already folded X-Forwarded-For into RemoteAddr
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
