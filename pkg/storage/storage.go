package storage

import (
	"context"

	"github.com/google/uuid"

	"github.com/vorlage-dev/vorlage/pkg/api"
)

// UserUpdate describes a partial user update. Nil fields are left unchanged.
type UserUpdate struct {
	Email    *string
	Username *string
	Password []byte // nil = unchanged
}

// PostUpdate describes a partial post update. Nil fields are left unchanged.
type PostUpdate struct {
	Title   *string
	Content *string
}

// UserStore manages identity records.
type UserStore interface {
	// CreateUser inserts a user with a caller-assigned id (the id must
	// exist before the password hash can be computed). Returns
	// ErrEmailTaken or ErrUsernameTaken on uniqueness violations.
	CreateUser(ctx context.Context, user api.User) (api.User, error)

	// GetUserByID returns a user or ErrNotFound.
	GetUserByID(ctx context.Context, id uuid.UUID) (api.User, error)

	// GetUserByEmail returns a user or ErrNotFound. Used only at login.
	GetUserByEmail(ctx context.Context, email string) (api.User, error)

	// UpdateUser applies a partial update and returns the updated user.
	UpdateUser(ctx context.Context, id uuid.UUID, upd UserUpdate) (api.User, error)

	// DeleteUser removes a user. Credentials and posts cascade: an orphaned
	// credential must never authenticate.
	DeleteUser(ctx context.Context, id uuid.UUID) error
}

// CredentialStore manages the lifecycle of sessions and API keys. The opaque
// random id is the credential; resolution is a fresh lookup on every call,
// so a committed revocation is visible to all subsequent resolutions.
type CredentialStore interface {
	// CreateSession inserts a session row for the user in a single atomic
	// insert and returns it with a freshly generated id.
	CreateSession(ctx context.Context, userID uuid.UUID) (api.Session, error)

	// CreateAPIKey inserts an API key row, same contract as CreateSession.
	CreateAPIKey(ctx context.Context, userID uuid.UUID) (api.APIKey, error)

	// ResolveSession returns the owning user id, or ErrNotFound when the
	// session is absent or revoked.
	ResolveSession(ctx context.Context, id uuid.UUID) (uuid.UUID, error)

	// ResolveAPIKey returns the owning user id, or ErrNotFound when the
	// key is absent or revoked.
	ResolveAPIKey(ctx context.Context, id uuid.UUID) (uuid.UUID, error)

	// RevokeSession deletes a session. Idempotent: revoking an absent id
	// is not an error.
	RevokeSession(ctx context.Context, id uuid.UUID) error

	// RevokeAPIKey deletes an API key. Idempotent.
	RevokeAPIKey(ctx context.Context, id uuid.UUID) error
}

// KeyStore manages a user's view of their own API keys.
type KeyStore interface {
	// ListAPIKeys returns the user's keys, newest first.
	ListAPIKeys(ctx context.Context, userID uuid.UUID, limit, offset int) ([]api.APIKey, error)

	// GetAPIKey returns a key scoped to its owner, or ErrNotFound.
	GetAPIKey(ctx context.Context, id, userID uuid.UUID) (api.APIKey, error)

	// DeleteAPIKey removes a key scoped to its owner. Unlike RevokeAPIKey
	// it reports ErrNotFound for absent or foreign keys, so the route can
	// answer 404.
	DeleteAPIKey(ctx context.Context, id, userID uuid.UUID) error
}

// PostStore manages the canonical entity rows.
type PostStore interface {
	// CreatePost inserts a post and returns it with a server-assigned id.
	CreatePost(ctx context.Context, post api.Post) (api.Post, error)

	// GetPost returns a post by id or ErrNotFound.
	GetPost(ctx context.Context, id uuid.UUID) (api.Post, error)

	// ListPosts returns all posts, newest first.
	ListPosts(ctx context.Context, limit, offset int) ([]api.Post, error)

	// ListUserPosts returns one user's posts, newest first.
	ListUserPosts(ctx context.Context, userID uuid.UUID, limit, offset int) ([]api.Post, error)

	// UpdatePost applies a partial update scoped to the owner. Returns
	// ErrNotFound for absent or foreign posts.
	UpdatePost(ctx context.Context, id, userID uuid.UUID, upd PostUpdate) (api.Post, error)

	// DeletePost removes a post scoped to the owner, or ErrNotFound.
	DeletePost(ctx context.Context, id, userID uuid.UUID) error
}

// Store is the full persistence surface the server is assembled against.
type Store interface {
	UserStore
	CredentialStore
	KeyStore
	PostStore

	// HealthCheck verifies the backing store is reachable.
	HealthCheck(ctx context.Context) error

	// Close releases connections and resources.
	Close() error
}
