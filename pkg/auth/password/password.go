// Package password derives and verifies password hashes with Argon2id.
package password

import (
	"crypto/subtle"

	"github.com/google/uuid"
	"golang.org/x/crypto/argon2"
)

// Argon2id parameters. Changing these invalidates every stored hash, so they
// are fixed for the lifetime of a deployment.
const (
	argonTime    = 1
	argonMemory  = 64 * 1024
	argonThreads = 4
	argonKeyLen  = 32
)

// Hasher hashes and verifies user passwords. The user's own id serves as the
// salt, which makes identical passwords hash differently across users without
// storing a separate salt column.
type Hasher struct{}

// Hash derives the Argon2id hash of password salted with the user's id.
func (Hasher) Hash(password string, userID uuid.UUID) []byte {
	salt := userID[:]
	return argon2.IDKey([]byte(password), salt, argonTime, argonMemory, argonThreads, argonKeyLen)
}

// Verify reports whether password hashes to hash under the user's id. The
// comparison is constant time.
func (h Hasher) Verify(password string, userID uuid.UUID, hash []byte) bool {
	derived := h.Hash(password, userID)
	return subtle.ConstantTimeCompare(derived, hash) == 1
}

// VerifyDecoy burns exactly one hash derivation against a throwaway id, the
// same work a failed Verify costs. Login calls it when the email is unknown
// so that the response time does not reveal whether an account exists.
func (h Hasher) VerifyDecoy(password string) {
	h.Hash(password, uuid.New())
}
