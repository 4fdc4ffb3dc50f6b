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

// ListAPIKeys returns the user's keys, newest first.
func (s *Store) ListAPIKeys(ctx context.Context, userID uuid.UUID, limit, offset int) ([]api.APIKey, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, user_id, created_at
		FROM api_keys
		WHERE user_id = $1
		ORDER BY created_at DESC, id
		LIMIT $2 OFFSET $3
	`, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("listing api keys: %w", err)
	}
	defer rows.Close()

	keys := make([]api.APIKey, 0)
	for rows.Next() {
		var key api.APIKey
		if err := rows.Scan(&key.ID, &key.UserID, &key.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning api key: %w", err)
		}
		keys = append(keys, key)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing api keys: %w", err)
	}

	return keys, nil
}

// GetAPIKey returns a key scoped to its owner.
func (s *Store) GetAPIKey(ctx context.Context, id, userID uuid.UUID) (api.APIKey, error) {
	var key api.APIKey
	err := s.pool.QueryRow(ctx, `
		SELECT id, user_id, created_at
		FROM api_keys
		WHERE id = $1 AND user_id = $2
	`, id, userID).Scan(&key.ID, &key.UserID, &key.CreatedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		return api.APIKey{}, storage.ErrNotFound
	}
	if err != nil {
		return api.APIKey{}, fmt.Errorf("querying api key: %w", err)
	}

	return key, nil
}

// DeleteAPIKey removes a key scoped to its owner. Absent or foreign keys
// yield storage.ErrNotFound so the caller can answer 404.
func (s *Store) DeleteAPIKey(ctx context.Context, id, userID uuid.UUID) error {
	result, err := s.pool.Exec(ctx, `
		DELETE FROM api_keys WHERE id = $1 AND user_id = $2
	`, id, userID)
	if err != nil {
		return fmt.Errorf("deleting api key: %w", err)
	}
	if result.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}
