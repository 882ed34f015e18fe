package storage

import (
	"context"
	"fmt"

	"github.com/claude/drgym/internal/models"
)

const userColumns = `id, username, name, surname, email, weight, height`

// CreateUser inserts an account. passwordHash must already be a bcrypt hash.
func (db *DB) CreateUser(ctx context.Context, u models.User, passwordHash string) (models.User, error) {
	err := db.Pool.QueryRow(ctx, `
		INSERT INTO users (username, name, surname, email, password_hash, weight, height)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`, u.Username, u.Name, u.Surname, u.Email, passwordHash, u.Weight, u.Height).Scan(&u.ID)
	if err != nil {
		return models.User{}, fmt.Errorf("inserting user: %w", mapErr(err))
	}
	return u, nil
}

// GetUser returns the profile for username.
func (db *DB) GetUser(ctx context.Context, username string) (models.User, error) {
	var u models.User
	err := db.Pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE username = $1`, username,
	).Scan(&u.ID, &u.Username, &u.Name, &u.Surname, &u.Email, &u.Weight, &u.Height)
	if err != nil {
		return models.User{}, fmt.Errorf("querying user: %w", mapErr(err))
	}
	return u, nil
}

// PasswordHash returns the stored bcrypt hash for username.
func (db *DB) PasswordHash(ctx context.Context, username string) (string, error) {
	var hash string
	err := db.Pool.QueryRow(ctx,
		`SELECT password_hash FROM users WHERE username = $1`, username,
	).Scan(&hash)
	if err != nil {
		return "", fmt.Errorf("querying credentials: %w", mapErr(err))
	}
	return hash, nil
}

// SearchUsers returns usernames containing q, case-insensitively.
func (db *DB) SearchUsers(ctx context.Context, q string) ([]string, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT username FROM users
		WHERE username ILIKE '%' || $1 || '%'
		   OR name ILIKE '%' || $1 || '%'
		   OR surname ILIKE '%' || $1 || '%'
		ORDER BY username
		LIMIT 50
	`, q)
	if err != nil {
		return nil, fmt.Errorf("searching users: %w", err)
	}
	defer rows.Close()

	result := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scanning username: %w", err)
		}
		result = append(result, name)
	}
	return result, rows.Err()
}

// UpdateUser replaces the profile fields of username.
func (db *DB) UpdateUser(ctx context.Context, username string, u models.User) error {
	tag, err := db.Pool.Exec(ctx, `
		UPDATE users SET name = $2, surname = $3, email = $4, weight = $5, height = $6
		WHERE username = $1
	`, username, u.Name, u.Surname, u.Email, u.Weight, u.Height)
	if err != nil {
		return fmt.Errorf("updating user: %w", mapErr(err))
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("updating user: %w", ErrNotFound)
	}
	return nil
}

// DeleteUser removes an account together with its workouts, posts and friendships.
func (db *DB) DeleteUser(ctx context.Context, username string) error {
	tag, err := db.Pool.Exec(ctx, `DELETE FROM users WHERE username = $1`, username)
	if err != nil {
		return fmt.Errorf("deleting user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("deleting user: %w", ErrNotFound)
	}
	return nil
}
