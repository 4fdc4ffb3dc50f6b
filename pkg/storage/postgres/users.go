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

// CreateUser inserts a user with a caller-assigned id.
func (s *Store) CreateUser(ctx context.Context, user api.User) (api.User, error) {
	err := s.pool.QueryRow(ctx, `
		INSERT INTO "user" (id, email, username, password)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`, user.ID, user.Email, user.Username, user.Password).Scan(&user.CreatedAt)

	if err != nil {
		if sentinel := uniqueViolation(err); sentinel != nil {
			return api.User{}, sentinel
		}
		return api.User{}, fmt.Errorf("inserting user: %w", err)
	}

	return user, nil
}

// GetUserByID retrieves a user by id.
func (s *Store) GetUserByID(ctx context.Context, id uuid.UUID) (api.User, error) {
	return s.getUser(ctx, "id", id)
}

// GetUserByEmail retrieves a user by email.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (api.User, error) {
	return s.getUser(ctx, "email", email)
}

// getUser is the internal retrieval implementation. The column name comes
// from a fixed set of callers, never from user input.
func (s *Store) getUser(ctx context.Context, column string, value any) (api.User, error) {
	var user api.User
	err := s.pool.QueryRow(ctx, fmt.Sprintf(`
		SELECT id, email, username, password, created_at
		FROM "user"
		WHERE %s = $1
	`, column), value).Scan(&user.ID, &user.Email, &user.Username, &user.Password, &user.CreatedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		return api.User{}, storage.ErrNotFound
	}
	if err != nil {
		return api.User{}, fmt.Errorf("querying user: %w", err)
	}

	return user, nil
}

// UpdateUser applies a partial update; unset fields keep their current value.
func (s *Store) UpdateUser(ctx context.Context, id uuid.UUID, upd storage.UserUpdate) (api.User, error) {
	var user api.User
	err := s.pool.QueryRow(ctx, `
		UPDATE "user"
		SET email    = COALESCE($2, email),
		    username = COALESCE($3, username),
		    password = COALESCE($4, password)
		WHERE id = $1
		RETURNING id, email, username, password, created_at
	`, id, upd.Email, upd.Username, upd.Password).Scan(
		&user.ID, &user.Email, &user.Username, &user.Password, &user.CreatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return api.User{}, storage.ErrNotFound
	}
	if err != nil {
		if sentinel := uniqueViolation(err); sentinel != nil {
			return api.User{}, sentinel
		}
		return api.User{}, fmt.Errorf("updating user: %w", err)
	}

	return user, nil
}

// DeleteUser removes a user. Sessions, API keys, and posts cascade via
// foreign keys.
func (s *Store) DeleteUser(ctx context.Context, id uuid.UUID) error {
	result, err := s.pool.Exec(ctx, `DELETE FROM "user" WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting user: %w", err)
	}
	if result.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}
