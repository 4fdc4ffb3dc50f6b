package transport

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/vorlage-dev/vorlage/pkg/api"
)

// Recovery returns middleware that catches panics in the handler and
// converts them to internal error responses. The server continues to
// accept new requests after a panic is recovered.
func Recovery() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					slog.Error("panic recovered",
						"panic", rec,
						"path", r.URL.Path,
						"request_id", RequestIDFromContext(r.Context()),
						"stack", string(debug.Stack()),
					)
					api.WriteErrors(w, api.Internal())
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
