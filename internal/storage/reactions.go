package storage

import (
	"context"
	"fmt"

	"github.com/claude/drgym/internal/models"
	"github.com/google/uuid"
)

// AddReaction records username's reaction to a post. Reacting twice is a no-op.
func (db *DB) AddReaction(ctx context.Context, postID uuid.UUID, username string) error {
	_, err := db.Pool.Exec(ctx, `
		INSERT INTO post_reactions (post_id, username) VALUES ($1, $2)
		ON CONFLICT DO NOTHING
	`, postID, username)
	if err != nil {
		return fmt.Errorf("adding reaction: %w", mapErr(err))
	}
	return nil
}

// ListReactions returns the reactions to a post, oldest first.
func (db *DB) ListReactions(ctx context.Context, postID uuid.UUID) ([]models.Reaction, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT post_id, username, created_at FROM post_reactions
		WHERE post_id = $1
		ORDER BY created_at
	`, postID)
	if err != nil {
		return nil, fmt.Errorf("querying reactions: %w", err)
	}
	defer rows.Close()

	result := []models.Reaction{}
	for rows.Next() {
		var r models.Reaction
		if err := rows.Scan(&r.PostID, &r.Username, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning reaction: %w", err)
		}
		result = append(result, r)
	}
	return result, rows.Err()
}

// RemoveReaction deletes username's reaction to a post.
func (db *DB) RemoveReaction(ctx context.Context, postID uuid.UUID, username string) error {
	_, err := db.Pool.Exec(ctx,
		`DELETE FROM post_reactions WHERE post_id = $1 AND username = $2`, postID, username)
	if err != nil {
		return fmt.Errorf("removing reaction: %w", err)
	}
	return nil
}
