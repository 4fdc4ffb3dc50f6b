package auth

import (
	"log/slog"
	"net/http"

	"github.com/vorlage-dev/vorlage/pkg/api"
	"github.com/vorlage-dev/vorlage/pkg/observability"
)

// Middleware creates HTTP middleware from a Chain and optional RateLimiter.
// Requests matching public skip authentication entirely; everything else
// must resolve to an identity or is rejected at this boundary. The identity
// is injected into the request context for downstream handlers.
func Middleware(chain *Chain, limiter RateLimiter, public func(*http.Request) bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if public != nil && public(r) {
				next.ServeHTTP(w, r)
				return
			}

			// Run auth chain.
			result := chain.Authenticate(r.Context(), r)

			if result.Decision != Yes || result.Identity == nil {
				rejection := result.Err
				if rejection == nil {
					rejection = api.Unauthenticated(api.CodeUnauthenticated, "authentication required")
				}

				mechanism := "none"
				if m, ok := rejection.Details["mechanism"].(string); ok {
					mechanism = m
				}

				slog.Warn("authentication failed",
					"path", r.URL.Path,
					"remote_addr", r.RemoteAddr,
					"mechanism", mechanism,
					"code", rejection.Code,
				)
				observability.AuthFailuresTotal.WithLabelValues(mechanism).Inc()
				api.WriteErrors(w, rejection)
				return
			}

			slog.Debug("authentication succeeded",
				"user_id", result.Identity.UserID,
				"mechanism", result.Identity.Mechanism,
				"path", r.URL.Path,
			)

			// Rate limiting (if configured).
			if limiter != nil {
				if err := limiter.Allow(r.Context(), result.Identity); err != nil {
					slog.Warn("rate limit exceeded", "user_id", result.Identity.UserID)
					observability.RateLimitRejectedTotal.Inc()
					api.WriteErrors(w, api.TooManyRequests())
					return
				}
			}

			ctx := SetIdentity(r.Context(), result.Identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
