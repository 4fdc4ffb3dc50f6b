// Package auth resolves bearer API keys and session cookies into an
// authenticated identity. Authenticators vote with three outcomes and are
// evaluated in a fixed order, so a presented API key always wins over a
// cookie sent on the same request.
package auth

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/vorlage-dev/vorlage/pkg/api"
	"github.com/vorlage-dev/vorlage/pkg/debug"
)

// Mechanism names the credential type that authenticated a request. It is
// attached to rejection details and lets routes distinguish an interactive
// session from a programmatic key.
type Mechanism string

const (
	MechanismAPIKey  Mechanism = "api_key"
	MechanismSession Mechanism = "session"
)

// Decision represents the three possible outcomes of authentication.
type Decision int

const (
	// Yes means credentials are valid. The chain stops and the identity is used.
	Yes Decision = iota

	// No means credentials are present but invalid. The chain stops and the
	// request is rejected.
	No

	// Abstain means this authenticator's credential type is absent.
	// The chain continues to the next authenticator.
	Abstain
)

// Result carries the outcome of an authentication attempt.
type Result struct {
	Decision Decision
	Identity *Identity  // populated only when Decision == Yes
	Err      *api.Error // populated only when Decision == No
}

// Identity represents an authenticated caller.
type Identity struct {
	// UserID is the owning user of the presented credential.
	UserID uuid.UUID

	// Mechanism is the credential type that won the chain.
	Mechanism Mechanism

	// CredentialID is the id of the session or key that authenticated the
	// request. Logout revokes exactly this credential.
	CredentialID uuid.UUID
}

// Authenticator examines request credentials and returns a three-outcome vote.
type Authenticator interface {
	Authenticate(ctx context.Context, r *http.Request) Result
}

// Chain evaluates authenticators in order. Order is the precedence rule:
// earlier authenticators win when multiple credentials are present.
type Chain struct {
	Authenticators []Authenticator
}

// Authenticate runs the chain. Stops on the first Yes or No. If every
// authenticator abstains, no credential was presented at all and the
// rejection carries no mechanism detail.
func (c *Chain) Authenticate(ctx context.Context, r *http.Request) Result {
	for _, authn := range c.Authenticators {
		result := authn.Authenticate(ctx, r)
		if result.Decision != Abstain {
			if result.Decision == Yes {
				debug.Log("auth", "credential accepted",
					"mechanism", string(result.Identity.Mechanism),
					"user_id", result.Identity.UserID.String())
			}
			return result
		}
	}

	return Result{
		Decision: No,
		Err:      api.Unauthenticated(api.CodeUnauthenticated, "authentication required"),
	}
}
