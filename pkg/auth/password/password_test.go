package password

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashRoundTrip(t *testing.T) {
	var h Hasher
	userID := uuid.New()

	hash := h.Hash("correct horse battery staple", userID)
	require.Len(t, hash, argonKeyLen)

	assert.True(t, h.Verify("correct horse battery staple", userID, hash))
	assert.False(t, h.Verify("wrong password", userID, hash))
}

func TestHashIsDeterministicPerUser(t *testing.T) {
	var h Hasher
	userID := uuid.New()

	assert.Equal(t, h.Hash("pw", userID), h.Hash("pw", userID))
}

func TestSamePasswordDifferentUsers(t *testing.T) {
	var h Hasher

	a := h.Hash("shared password", uuid.New())
	b := h.Hash("shared password", uuid.New())
	assert.NotEqual(t, a, b)
}

func TestVerifyRejectsForeignUserHash(t *testing.T) {
	var h Hasher
	alice := uuid.New()
	bob := uuid.New()

	hash := h.Hash("pw", alice)
	assert.False(t, h.Verify("pw", bob, hash))
}

func TestVerifyDecoyDoesNotPanic(t *testing.T) {
	var h Hasher
	h.VerifyDecoy("anything")
}

func TestVerifyDecoyCostsOneVerification(t *testing.T) {
	var h Hasher
	userID := uuid.New()
	digest := h.Hash("the real password", userID)

	const rounds = 5

	start := time.Now()
	for i := 0; i < rounds; i++ {
		h.Verify("not the password", userID, digest)
	}
	verifyTime := time.Since(start)

	start = time.Now()
	for i := 0; i < rounds; i++ {
		h.VerifyDecoy("not the password")
	}
	decoyTime := time.Since(start)

	// Both paths derive exactly one hash, so their costs must be
	// indistinguishable; a decoy that is measurably slower (or faster) than
	// a failed verification reveals whether the account exists.
	ratio := float64(decoyTime) / float64(verifyTime)
	assert.Greater(t, ratio, 1/1.5, "decoy path measurably cheaper than a failed verification")
	assert.Less(t, ratio, 1.5, "decoy path measurably costlier than a failed verification")
}
