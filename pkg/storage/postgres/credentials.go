package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/vorlage-dev/vorlage/pkg/api"
	"github.com/vorlage-dev/vorlage/pkg/storage"
)

// CreateSession inserts a session row and returns it with the generated id.
func (s *Store) CreateSession(ctx context.Context, userID uuid.UUID) (api.Session, error) {
	sess := api.Session{UserID: userID}
	err := s.pool.QueryRow(ctx, `
		INSERT INTO session (user_id)
		VALUES ($1)
		RETURNING id, created_at
	`, userID).Scan(&sess.ID, &sess.CreatedAt)

	if err != nil {
		return api.Session{}, fmt.Errorf("inserting session: %w", err)
	}
	return sess, nil
}

// CreateAPIKey inserts an API key row and returns it with the generated id.
func (s *Store) CreateAPIKey(ctx context.Context, userID uuid.UUID) (api.APIKey, error) {
	key := api.APIKey{UserID: userID}
	err := s.pool.QueryRow(ctx, `
		INSERT INTO api_keys (user_id)
		VALUES ($1)
		RETURNING id, created_at
	`, userID).Scan(&key.ID, &key.CreatedAt)

	if err != nil {
		return api.APIKey{}, fmt.Errorf("inserting api key: %w", err)
	}
	return key, nil
}

// ResolveSession looks up the owning user of a session id. A revoked or
// unknown id yields storage.ErrNotFound.
func (s *Store) ResolveSession(ctx context.Context, id uuid.UUID) (uuid.UUID, error) {
	return s.resolve(ctx, `SELECT user_id FROM session WHERE id = $1`, id)
}

// ResolveAPIKey looks up the owning user of an API key id.
func (s *Store) ResolveAPIKey(ctx context.Context, id uuid.UUID) (uuid.UUID, error) {
	return s.resolve(ctx, `SELECT user_id FROM api_keys WHERE id = $1`, id)
}

func (s *Store) resolve(ctx context.Context, query string, id uuid.UUID) (uuid.UUID, error) {
	var userID uuid.UUID
	err := s.pool.QueryRow(ctx, query, id).Scan(&userID)

	if errors.Is(err, pgx.ErrNoRows) {
		return uuid.Nil, storage.ErrNotFound
	}
	if err != nil {
		return uuid.Nil, fmt.Errorf("resolving credential: %w", err)
	}
	return userID, nil
}

// RevokeSession deletes a session. Deleting an absent id is not an error.
func (s *Store) RevokeSession(ctx context.Context, id uuid.UUID) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM session WHERE id = $1`, id); err != nil {
		return fmt.Errorf("revoking session: %w", err)
	}
	return nil
}

// RevokeAPIKey deletes an API key. Deleting an absent id is not an error.
func (s *Store) RevokeAPIKey(ctx context.Context, id uuid.UUID) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM api_keys WHERE id = $1`, id); err != nil {
		return fmt.Errorf("revoking api key: %w", err)
	}
	return nil
}
