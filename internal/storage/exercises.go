package storage

import (
	"context"
	"fmt"

	"github.com/claude/drgym/internal/models"
)

// ListExercises returns the catalog, optionally restricted to one type.
func (db *DB) ListExercises(ctx context.Context, t models.ExerciseType) ([]models.Exercise, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT id, name, type FROM exercises
		WHERE $1::text = '' OR type = $1::text
		ORDER BY type, name
	`, string(t))
	if err != nil {
		return nil, fmt.Errorf("querying exercises: %w", err)
	}
	defer rows.Close()

	result := []models.Exercise{}
	for rows.Next() {
		var e models.Exercise
		var typ string
		if err := rows.Scan(&e.ID, &e.Name, &typ); err != nil {
			return nil, fmt.Errorf("scanning exercise: %w", err)
		}
		e.Type = models.ExerciseType(typ)
		result = append(result, e)
	}
	return result, rows.Err()
}

// GetExercise returns the catalog entry with the given name and type.
func (db *DB) GetExercise(ctx context.Context, name string, t models.ExerciseType) (models.Exercise, error) {
	e := models.Exercise{Name: name, Type: t}
	err := db.Pool.QueryRow(ctx,
		`SELECT id FROM exercises WHERE name = $1 AND type = $2`, name, string(t),
	).Scan(&e.ID)
	if err != nil {
		return models.Exercise{}, fmt.Errorf("querying exercise: %w", mapErr(err))
	}
	return e, nil
}

// UpsertExercise inserts or renames a catalog entry by id.
func (db *DB) UpsertExercise(ctx context.Context, e models.Exercise) error {
	_, err := db.Pool.Exec(ctx, `
		INSERT INTO exercises (id, name, type) VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, type = EXCLUDED.type
	`, e.ID, e.Name, string(e.Type))
	if err != nil {
		return fmt.Errorf("upserting exercise: %w", mapErr(err))
	}
	return nil
}
