package api

import (
	"time"

	"github.com/google/uuid"
)

// User is an identity record. The email and password hash are never
// serialized; the id doubles as the salt input for password hashing, so it
// must be allocated before the first hash is computed.
type User struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"-"`
	Password  []byte    `json:"-"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
}

// Session is an ephemeral credential backing an interactive login. The row
// carries no expiry; lifetime policy lives with the cookie that presents it.
type Session struct {
	ID        uuid.UUID `json:"session_id"`
	UserID    uuid.UUID `json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

// APIKey is a long-lived credential for automated callers. Possession of the
// id grants full access as the owning user.
type APIKey struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Post is the template's canonical entity: owned, user-mutable content with
// server-assigned identity.
type Post struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}
