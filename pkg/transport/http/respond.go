package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/vorlage-dev/vorlage/pkg/api"
	"github.com/vorlage-dev/vorlage/pkg/auth"
	"github.com/vorlage-dev/vorlage/pkg/observability"
	"github.com/vorlage-dev/vorlage/pkg/schema"
	"github.com/vorlage-dev/vorlage/pkg/storage"
	"github.com/vorlage-dev/vorlage/pkg/transport"
)

// allowAnonymous enforces the per-address budget on login and register.
// Each of those requests is a credential guess, so the limit is separate
// from and stricter than the per-user one.
func (a *Adapter) allowAnonymous(w http.ResponseWriter, r *http.Request) bool {
	if a.loginLimiter == nil {
		return true
	}
	if err := a.loginLimiter.Allow(r); err != nil {
		slog.Warn("login rate limit exceeded", "remote_addr", r.RemoteAddr)
		observability.RateLimitRejectedTotal.Inc()
		api.WriteErrors(w, api.TooManyRequests())
		return false
	}
	return true
}

// writeJSON renders a success body.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Debug("writing response body", "error", err)
	}
}

// bindBody decodes the request body and validates it against the shape.
// On failure it writes the full violation list and returns ok=false; the
// handler has nothing left to do.
func (a *Adapter) bindBody(w http.ResponseWriter, r *http.Request, shape schema.Shape) (schema.Values, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, a.cfg.MaxBodySize)

	var body map[string]json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		api.WriteErrors(w, api.ValidationFailed("body", "request body must be a JSON object"))
		return nil, false
	}

	values, violations := shape.Bind(body)
	if len(violations) > 0 {
		api.WriteErrors(w, api.FromViolations(violations)...)
		return nil, false
	}
	return values, true
}

// identity returns the authenticated identity. Protected routes sit behind
// the auth middleware, so a missing identity is a wiring bug; the request is
// still rejected rather than served.
func identity(w http.ResponseWriter, r *http.Request) (*auth.Identity, bool) {
	id := auth.IdentityFromContext(r.Context())
	if id == nil {
		slog.Error("protected route reached without identity",
			"path", r.URL.Path,
			"request_id", transport.RequestIDFromContext(r.Context()),
		)
		api.WriteErrors(w, api.Unauthenticated(api.CodeUnauthenticated, "authentication required"))
		return nil, false
	}
	return id, true
}

// writeStoreError maps storage failures that are not route-specific. The
// notFound error covers both absent rows and rows owned by someone else.
func writeStoreError(w http.ResponseWriter, r *http.Request, err error, notFound *api.Error) {
	if errors.Is(err, storage.ErrNotFound) {
		api.WriteErrors(w, notFound)
		return
	}
	writeInternal(w, r, err)
}

// writeInternal logs the cause and answers with a bare internal error; the
// detail never reaches the caller.
func writeInternal(w http.ResponseWriter, r *http.Request, err error) {
	slog.Error("request failed",
		"path", r.URL.Path,
		"request_id", transport.RequestIDFromContext(r.Context()),
		"error", err,
	)
	api.WriteErrors(w, api.Internal())
}

// writeConflict maps uniqueness sentinels onto stable conflict codes.
// Returns false when err is not a uniqueness violation.
func writeConflict(w http.ResponseWriter, err error) bool {
	switch {
	case errors.Is(err, storage.ErrEmailTaken):
		api.WriteErrors(w, api.Conflict(api.CodeEmailTaken, "email already taken"))
		return true
	case errors.Is(err, storage.ErrUsernameTaken):
		api.WriteErrors(w, api.Conflict(api.CodeUsernameTaken, "username already taken"))
		return true
	}
	return false
}
