package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/vorlage-dev/vorlage/pkg/api"
	"github.com/vorlage-dev/vorlage/pkg/storage"
)

// SessionCookie is the name of the session cookie.
const SessionCookie = "session"

// SessionAuthenticator validates interactive sessions presented as a cookie.
// The cookie value is the session's id.
type SessionAuthenticator struct {
	Store storage.CredentialStore
}

// Authenticate abstains when no session cookie is present. A present but
// malformed or revoked cookie is a hard rejection tagged session.
func (a *SessionAuthenticator) Authenticate(ctx context.Context, r *http.Request) Result {
	cookie, err := r.Cookie(SessionCookie)
	if err != nil {
		return Result{Decision: Abstain}
	}

	sessionID, err := uuid.Parse(cookie.Value)
	if err != nil {
		return reject(MechanismSession, api.CodeInvalidSession, "invalid session cookie")
	}

	userID, err := a.Store.ResolveSession(ctx, sessionID)
	if errors.Is(err, storage.ErrNotFound) {
		return reject(MechanismSession, api.CodeInvalidSession, "invalid session cookie")
	}
	if err != nil {
		slog.Error("resolving session", "error", err)
		return Result{Decision: No, Err: api.Internal()}
	}

	return Result{
		Decision: Yes,
		Identity: &Identity{UserID: userID, Mechanism: MechanismSession, CredentialID: sessionID},
	}
}
