package storage

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// AddFriend records a symmetric friendship. Adding an existing friendship is a no-op.
func (db *DB) AddFriend(ctx context.Context, username, friend string) error {
	if username == friend {
		return fmt.Errorf("adding friend: cannot befriend yourself")
	}
	return db.inTx(ctx, func(tx pgx.Tx) error {
		for _, pair := range [][2]string{{username, friend}, {friend, username}} {
			_, err := tx.Exec(ctx, `
				INSERT INTO friends (username, friend) VALUES ($1, $2)
				ON CONFLICT DO NOTHING
			`, pair[0], pair[1])
			if err != nil {
				return fmt.Errorf("adding friend: %w", mapErr(err))
			}
		}
		return nil
	})
}

// RemoveFriend deletes the friendship in both directions.
func (db *DB) RemoveFriend(ctx context.Context, username, friend string) error {
	tag, err := db.Pool.Exec(ctx, `
		DELETE FROM friends
		WHERE (username = $1 AND friend = $2) OR (username = $2 AND friend = $1)
	`, username, friend)
	if err != nil {
		return fmt.Errorf("removing friend: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("removing friend: %w", ErrNotFound)
	}
	return nil
}

// AreFriends reports whether a and b are friends.
func (db *DB) AreFriends(ctx context.Context, a, b string) (bool, error) {
	var ok bool
	err := db.Pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM friends WHERE username = $1 AND friend = $2)`,
		a, b).Scan(&ok)
	if err != nil {
		return false, fmt.Errorf("checking friendship: %w", err)
	}
	return ok, nil
}

// FriendUsernames lists the friends of username in alphabetical order.
func (db *DB) FriendUsernames(ctx context.Context, username string) ([]string, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT friend FROM friends WHERE username = $1 ORDER BY friend`, username)
	if err != nil {
		return nil, fmt.Errorf("querying friends: %w", err)
	}
	names, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("scanning friends: %w", err)
	}
	return names, nil
}
