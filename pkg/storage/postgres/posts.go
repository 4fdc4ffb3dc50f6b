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

// CreatePost inserts a post and returns it with the generated id.
func (s *Store) CreatePost(ctx context.Context, post api.Post) (api.Post, error) {
	err := s.pool.QueryRow(ctx, `
		INSERT INTO post (user_id, title, content)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`, post.UserID, post.Title, post.Content).Scan(&post.ID, &post.CreatedAt)

	if err != nil {
		return api.Post{}, fmt.Errorf("inserting post: %w", err)
	}
	return post, nil
}

// GetPost retrieves a post by id.
func (s *Store) GetPost(ctx context.Context, id uuid.UUID) (api.Post, error) {
	var post api.Post
	err := s.pool.QueryRow(ctx, `
		SELECT id, user_id, title, content, created_at
		FROM post
		WHERE id = $1
	`, id).Scan(&post.ID, &post.UserID, &post.Title, &post.Content, &post.CreatedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		return api.Post{}, storage.ErrNotFound
	}
	if err != nil {
		return api.Post{}, fmt.Errorf("querying post: %w", err)
	}

	return post, nil
}

// ListPosts returns all posts, newest first.
func (s *Store) ListPosts(ctx context.Context, limit, offset int) ([]api.Post, error) {
	return s.listPosts(ctx, `
		SELECT id, user_id, title, content, created_at
		FROM post
		ORDER BY created_at DESC, id
		LIMIT $1 OFFSET $2
	`, limit, offset)
}

// ListUserPosts returns one user's posts, newest first.
func (s *Store) ListUserPosts(ctx context.Context, userID uuid.UUID, limit, offset int) ([]api.Post, error) {
	return s.listPosts(ctx, `
		SELECT id, user_id, title, content, created_at
		FROM post
		WHERE user_id = $3
		ORDER BY created_at DESC, id
		LIMIT $1 OFFSET $2
	`, limit, offset, userID)
}

func (s *Store) listPosts(ctx context.Context, query string, args ...any) ([]api.Post, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing posts: %w", err)
	}
	defer rows.Close()

	posts := make([]api.Post, 0)
	for rows.Next() {
		var post api.Post
		if err := rows.Scan(&post.ID, &post.UserID, &post.Title, &post.Content, &post.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning post: %w", err)
		}
		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing posts: %w", err)
	}

	return posts, nil
}

// UpdatePost applies a partial update scoped to the owner; unset fields keep
// their current value.
func (s *Store) UpdatePost(ctx context.Context, id, userID uuid.UUID, upd storage.PostUpdate) (api.Post, error) {
	var post api.Post
	err := s.pool.QueryRow(ctx, `
		UPDATE post
		SET title   = COALESCE($3, title),
		    content = COALESCE($4, content)
		WHERE id = $1 AND user_id = $2
		RETURNING id, user_id, title, content, created_at
	`, id, userID, upd.Title, upd.Content).Scan(
		&post.ID, &post.UserID, &post.Title, &post.Content, &post.CreatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return api.Post{}, storage.ErrNotFound
	}
	if err != nil {
		return api.Post{}, fmt.Errorf("updating post: %w", err)
	}

	return post, nil
}

// DeletePost removes a post scoped to the owner.
func (s *Store) DeletePost(ctx context.Context, id, userID uuid.UUID) error {
	result, err := s.pool.Exec(ctx, `
		DELETE FROM post WHERE id = $1 AND user_id = $2
	`, id, userID)
	if err != nil {
		return fmt.Errorf("deleting post: %w", err)
	}
	if result.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}
