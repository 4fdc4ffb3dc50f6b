// Package memory provides an in-memory storage.Store for tests and
// lightweight deployments. All state is lost on restart.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vorlage-dev/vorlage/pkg/api"
	"github.com/vorlage-dev/vorlage/pkg/storage"
)

// Store is an in-memory storage.Store guarded by a single RWMutex.
type Store struct {
	mu        sync.RWMutex
	users     map[uuid.UUID]api.User
	emails    map[string]uuid.UUID
	usernames map[string]uuid.UUID
	sessions  map[uuid.UUID]api.Session
	keys      map[uuid.UUID]api.APIKey
	keyOrder  []uuid.UUID // insertion order; listings walk it backwards
	posts     map[uuid.UUID]api.Post
	postOrder []uuid.UUID
}

// Ensure Store implements storage.Store at compile time.
var _ storage.Store = (*Store)(nil)

// New creates an empty in-memory store.
func New() *Store {
	return &Store{
		users:     make(map[uuid.UUID]api.User),
		emails:    make(map[string]uuid.UUID),
		usernames: make(map[string]uuid.UUID),
		sessions:  make(map[uuid.UUID]api.Session),
		keys:      make(map[uuid.UUID]api.APIKey),
		posts:     make(map[uuid.UUID]api.Post),
	}
}

// CreateUser inserts a user with a caller-assigned id.
func (s *Store) CreateUser(_ context.Context, user api.User) (api.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.emails[user.Email]; taken {
		return api.User{}, storage.ErrEmailTaken
	}
	if _, taken := s.usernames[user.Username]; taken {
		return api.User{}, storage.ErrUsernameTaken
	}

	user.CreatedAt = time.Now().UTC()
	s.users[user.ID] = user
	s.emails[user.Email] = user.ID
	s.usernames[user.Username] = user.ID
	return user, nil
}

// GetUserByID returns a user or storage.ErrNotFound.
func (s *Store) GetUserByID(_ context.Context, id uuid.UUID) (api.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[id]
	if !ok {
		return api.User{}, storage.ErrNotFound
	}
	return user, nil
}

// GetUserByEmail returns a user or storage.ErrNotFound.
func (s *Store) GetUserByEmail(_ context.Context, email string) (api.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.emails[email]
	if !ok {
		return api.User{}, storage.ErrNotFound
	}
	return s.users[id], nil
}

// UpdateUser applies a partial update.
func (s *Store) UpdateUser(_ context.Context, id uuid.UUID, upd storage.UserUpdate) (api.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return api.User{}, storage.ErrNotFound
	}

	if upd.Email != nil && *upd.Email != user.Email {
		if _, taken := s.emails[*upd.Email]; taken {
			return api.User{}, storage.ErrEmailTaken
		}
		delete(s.emails, user.Email)
		user.Email = *upd.Email
		s.emails[user.Email] = id
	}
	if upd.Username != nil && *upd.Username != user.Username {
		if _, taken := s.usernames[*upd.Username]; taken {
			return api.User{}, storage.ErrUsernameTaken
		}
		delete(s.usernames, user.Username)
		user.Username = *upd.Username
		s.usernames[user.Username] = id
	}
	if upd.Password != nil {
		user.Password = upd.Password
	}

	s.users[id] = user
	return user, nil
}

// DeleteUser removes a user and cascades to sessions, keys, and posts.
func (s *Store) DeleteUser(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return storage.ErrNotFound
	}

	delete(s.users, id)
	delete(s.emails, user.Email)
	delete(s.usernames, user.Username)

	for sid, sess := range s.sessions {
		if sess.UserID == id {
			delete(s.sessions, sid)
		}
	}
	for kid, key := range s.keys {
		if key.UserID == id {
			delete(s.keys, kid)
		}
	}
	for pid, post := range s.posts {
		if post.UserID == id {
			delete(s.posts, pid)
		}
	}
	return nil
}

// CreateSession inserts a session with a fresh random id.
func (s *Store) CreateSession(_ context.Context, userID uuid.UUID) (api.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[userID]; !ok {
		return api.Session{}, storage.ErrNotFound
	}

	sess := api.Session{ID: uuid.New(), UserID: userID, CreatedAt: time.Now().UTC()}
	s.sessions[sess.ID] = sess
	return sess, nil
}

// CreateAPIKey inserts an API key with a fresh random id.
func (s *Store) CreateAPIKey(_ context.Context, userID uuid.UUID) (api.APIKey, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[userID]; !ok {
		return api.APIKey{}, storage.ErrNotFound
	}

	key := api.APIKey{ID: uuid.New(), UserID: userID, CreatedAt: time.Now().UTC()}
	s.keys[key.ID] = key
	s.keyOrder = append(s.keyOrder, key.ID)
	return key, nil
}

// ResolveSession returns the owning user id or storage.ErrNotFound.
func (s *Store) ResolveSession(_ context.Context, id uuid.UUID) (uuid.UUID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[id]
	if !ok {
		return uuid.Nil, storage.ErrNotFound
	}
	return sess.UserID, nil
}

// ResolveAPIKey returns the owning user id or storage.ErrNotFound.
func (s *Store) ResolveAPIKey(_ context.Context, id uuid.UUID) (uuid.UUID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	key, ok := s.keys[id]
	if !ok {
		return uuid.Nil, storage.ErrNotFound
	}
	return key.UserID, nil
}

// RevokeSession deletes a session. Idempotent.
func (s *Store) RevokeSession(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, id)
	return nil
}

// RevokeAPIKey deletes an API key. Idempotent.
func (s *Store) RevokeAPIKey(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.keys, id)
	return nil
}

// ListAPIKeys returns the user's keys, newest first.
func (s *Store) ListAPIKeys(_ context.Context, userID uuid.UUID, limit, offset int) ([]api.APIKey, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]api.APIKey, 0)
	skipped := 0
	for i := len(s.keyOrder) - 1; i >= 0 && len(keys) < limit; i-- {
		key, ok := s.keys[s.keyOrder[i]]
		if !ok || key.UserID != userID {
			continue
		}
		if skipped < offset {
			skipped++
			continue
		}
		keys = append(keys, key)
	}
	return keys, nil
}

// GetAPIKey returns a key scoped to its owner.
func (s *Store) GetAPIKey(_ context.Context, id, userID uuid.UUID) (api.APIKey, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	key, ok := s.keys[id]
	if !ok || key.UserID != userID {
		return api.APIKey{}, storage.ErrNotFound
	}
	return key, nil
}

// DeleteAPIKey removes a key scoped to its owner.
func (s *Store) DeleteAPIKey(_ context.Context, id, userID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key, ok := s.keys[id]
	if !ok || key.UserID != userID {
		return storage.ErrNotFound
	}
	delete(s.keys, id)
	return nil
}

// CreatePost inserts a post with a server-assigned id.
func (s *Store) CreatePost(_ context.Context, post api.Post) (api.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	post.ID = uuid.New()
	post.CreatedAt = time.Now().UTC()
	s.posts[post.ID] = post
	s.postOrder = append(s.postOrder, post.ID)
	return post, nil
}

// GetPost returns a post by id.
func (s *Store) GetPost(_ context.Context, id uuid.UUID) (api.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	post, ok := s.posts[id]
	if !ok {
		return api.Post{}, storage.ErrNotFound
	}
	return post, nil
}

// ListPosts returns all posts, newest first.
func (s *Store) ListPosts(_ context.Context, limit, offset int) ([]api.Post, error) {
	return s.listPosts(limit, offset, nil)
}

// ListUserPosts returns one user's posts, newest first.
func (s *Store) ListUserPosts(_ context.Context, userID uuid.UUID, limit, offset int) ([]api.Post, error) {
	return s.listPosts(limit, offset, &userID)
}

func (s *Store) listPosts(limit, offset int, userID *uuid.UUID) ([]api.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	posts := make([]api.Post, 0)
	skipped := 0
	for i := len(s.postOrder) - 1; i >= 0 && len(posts) < limit; i-- {
		post, ok := s.posts[s.postOrder[i]]
		if !ok {
			continue
		}
		if userID != nil && post.UserID != *userID {
			continue
		}
		if skipped < offset {
			skipped++
			continue
		}
		posts = append(posts, post)
	}
	return posts, nil
}

// UpdatePost applies a partial update scoped to the owner.
func (s *Store) UpdatePost(_ context.Context, id, userID uuid.UUID, upd storage.PostUpdate) (api.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	post, ok := s.posts[id]
	if !ok || post.UserID != userID {
		return api.Post{}, storage.ErrNotFound
	}

	if upd.Title != nil {
		post.Title = *upd.Title
	}
	if upd.Content != nil {
		post.Content = *upd.Content
	}

	s.posts[id] = post
	return post, nil
}

// DeletePost removes a post scoped to the owner.
func (s *Store) DeletePost(_ context.Context, id, userID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	post, ok := s.posts[id]
	if !ok || post.UserID != userID {
		return storage.ErrNotFound
	}
	delete(s.posts, id)
	return nil
}

// HealthCheck always succeeds for the in-memory store.
func (s *Store) HealthCheck(context.Context) error { return nil }

// Close is a no-op.
func (s *Store) Close() error { return nil }
