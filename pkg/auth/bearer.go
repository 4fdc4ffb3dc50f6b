package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/vorlage-dev/vorlage/pkg/api"
	"github.com/vorlage-dev/vorlage/pkg/storage"
)

// BearerAuthenticator validates API keys presented as RFC 6750 bearer tokens.
// The token is the key's id; possession of the id is the credential.
type BearerAuthenticator struct {
	Store storage.CredentialStore
}

// Authenticate abstains when no bearer token is present. A present but
// malformed or unknown token is a hard rejection tagged api_key, never a
// fall-through to the cookie.
func (a *BearerAuthenticator) Authenticate(ctx context.Context, r *http.Request) Result {
	header := r.Header.Get("Authorization")
	if header == "" {
		return Result{Decision: Abstain}
	}

	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		// Some other authorization scheme; not ours to judge.
		return Result{Decision: Abstain}
	}

	keyID, err := uuid.Parse(strings.TrimSpace(token))
	if err != nil {
		return reject(MechanismAPIKey, api.CodeInvalidAPIKey, "invalid API key")
	}

	userID, err := a.Store.ResolveAPIKey(ctx, keyID)
	if errors.Is(err, storage.ErrNotFound) {
		return reject(MechanismAPIKey, api.CodeInvalidAPIKey, "invalid API key")
	}
	if err != nil {
		slog.Error("resolving api key", "error", err)
		return Result{Decision: No, Err: api.Internal()}
	}

	return Result{
		Decision: Yes,
		Identity: &Identity{UserID: userID, Mechanism: MechanismAPIKey, CredentialID: keyID},
	}
}

// reject builds a mechanism-tagged unauthenticated rejection.
func reject(mechanism Mechanism, code, message string) Result {
	return Result{
		Decision: No,
		Err:      api.Unauthenticated(code, message).WithDetail("mechanism", string(mechanism)),
	}
}
