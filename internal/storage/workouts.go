package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/claude/drgym/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// querier is satisfied by both the pool and a transaction.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// CreateWorkout stores a workout and its activities in one transaction.
func (db *DB) CreateWorkout(ctx context.Context, username string, sub models.WorkoutSubmission) (models.Workout, error) {
	var w models.Workout
	err := db.inTx(ctx, func(tx pgx.Tx) error {
		var err error
		w, err = insertWorkout(ctx, tx, username, sub)
		return err
	})
	return w, err
}

func insertWorkout(ctx context.Context, tx pgx.Tx, username string, sub models.WorkoutSubmission) (models.Workout, error) {
	w := models.Workout{
		ID:          uuid.New(),
		Username:    username,
		Description: sub.Description,
		StartDate:   sub.StartDate,
		EndDate:     sub.EndDate,
	}
	err := tx.QueryRow(ctx, `
		INSERT INTO workouts (id, username, description, start_date, end_date)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`, w.ID, username, w.Description, w.StartDate, w.EndDate).Scan(&w.CreatedAt)
	if err != nil {
		return models.Workout{}, fmt.Errorf("inserting workout: %w", mapErr(err))
	}

	acts := make([]models.Activity, 0, len(sub.Exercises))
	for i, d := range sub.Exercises {
		d = d.Normalized()
		var exerciseID int
		err := tx.QueryRow(ctx,
			`SELECT id FROM exercises WHERE name = $1 AND type = $2`,
			d.Exercise, string(d.ExerciseType)).Scan(&exerciseID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return models.Workout{}, fmt.Errorf("%w: %s %q", ErrUnknownExercise, d.ExerciseType, d.Exercise)
			}
			return models.Workout{}, fmt.Errorf("resolving exercise: %w", err)
		}

		a := models.Activity{
			WorkoutID:    w.ID,
			ExerciseID:   exerciseID,
			ExerciseName: d.Exercise,
			ExerciseType: d.ExerciseType,
			Sets:         d.Sets,
			Weight:       d.Weight,
			Duration:     d.Duration,
		}
		err = tx.QueryRow(ctx, `
			INSERT INTO activities (workout_id, exercise_id, position, sets, weight, duration_sec)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING id
		`, w.ID, exerciseID, i, a.Sets, a.Weight, durationSeconds(a.Duration)).Scan(&a.ID)
		if err != nil {
			return models.Workout{}, fmt.Errorf("inserting activity: %w", err)
		}
		acts = append(acts, a)
	}
	w.SetActivities(acts)
	return w, nil
}

// ListWorkouts returns the workouts of username, newest first, with activities.
func (db *DB) ListWorkouts(ctx context.Context, username string) ([]models.Workout, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT id, username, description, start_date, end_date, created_at
		FROM workouts
		WHERE username = $1
		ORDER BY start_date DESC
	`, username)
	if err != nil {
		return nil, fmt.Errorf("querying workouts: %w", err)
	}
	workouts, err := scanWorkouts(rows)
	if err != nil {
		return nil, err
	}
	if err := attachActivities(ctx, db.Pool, workouts); err != nil {
		return nil, err
	}
	return workouts, nil
}

// GetWorkout returns one workout with its activities.
func (db *DB) GetWorkout(ctx context.Context, id uuid.UUID) (models.Workout, error) {
	return getWorkout(ctx, db.Pool, id)
}

func getWorkout(ctx context.Context, q querier, id uuid.UUID) (models.Workout, error) {
	var w models.Workout
	err := q.QueryRow(ctx, `
		SELECT id, username, description, start_date, end_date, created_at
		FROM workouts WHERE id = $1
	`, id).Scan(&w.ID, &w.Username, &w.Description, &w.StartDate, &w.EndDate, &w.CreatedAt)
	if err != nil {
		return models.Workout{}, fmt.Errorf("querying workout: %w", mapErr(err))
	}
	ws := []models.Workout{w}
	if err := attachActivities(ctx, q, ws); err != nil {
		return models.Workout{}, err
	}
	return ws[0], nil
}

// Activities returns the activities of one workout in entry order.
func (db *DB) Activities(ctx context.Context, workoutID uuid.UUID) ([]models.Activity, error) {
	byWorkout, err := queryActivities(ctx, db.Pool, []uuid.UUID{workoutID})
	if err != nil {
		return nil, err
	}
	return byWorkout[workoutID], nil
}

func scanWorkouts(rows pgx.Rows) ([]models.Workout, error) {
	defer rows.Close()
	result := []models.Workout{}
	for rows.Next() {
		var w models.Workout
		if err := rows.Scan(&w.ID, &w.Username, &w.Description, &w.StartDate, &w.EndDate, &w.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning workout: %w", err)
		}
		result = append(result, w)
	}
	return result, rows.Err()
}

// attachActivities loads activities for every workout in ws with one query.
func attachActivities(ctx context.Context, q querier, ws []models.Workout) error {
	if len(ws) == 0 {
		return nil
	}
	ids := make([]uuid.UUID, len(ws))
	for i, w := range ws {
		ids[i] = w.ID
	}
	byWorkout, err := queryActivities(ctx, q, ids)
	if err != nil {
		return err
	}
	for i := range ws {
		acts := byWorkout[ws[i].ID]
		if acts == nil {
			acts = []models.Activity{}
		}
		ws[i].SetActivities(acts)
	}
	return nil
}

func queryActivities(ctx context.Context, q querier, workoutIDs []uuid.UUID) (map[uuid.UUID][]models.Activity, error) {
	rows, err := q.Query(ctx, `
		SELECT a.id, a.workout_id, a.exercise_id, e.name, e.type, a.sets, a.weight, a.duration_sec
		FROM activities a
		JOIN exercises e ON e.id = a.exercise_id
		WHERE a.workout_id = ANY($1)
		ORDER BY a.workout_id, a.position
	`, workoutIDs)
	if err != nil {
		return nil, fmt.Errorf("querying activities: %w", err)
	}
	defer rows.Close()

	result := make(map[uuid.UUID][]models.Activity)
	for rows.Next() {
		var (
			a      models.Activity
			typ    string
			durSec *int64
		)
		if err := rows.Scan(&a.ID, &a.WorkoutID, &a.ExerciseID, &a.ExerciseName, &typ,
			&a.Sets, &a.Weight, &durSec); err != nil {
			return nil, fmt.Errorf("scanning activity: %w", err)
		}
		a.ExerciseType = models.ExerciseType(typ)
		a.Duration = durationFromSeconds(durSec)
		result[a.WorkoutID] = append(result[a.WorkoutID], a)
	}
	return result, rows.Err()
}

func durationSeconds(d *models.Duration) *int64 {
	if d == nil {
		return nil
	}
	s := int64(d.Std() / time.Second)
	return &s
}

func durationFromSeconds(s *int64) *models.Duration {
	if s == nil {
		return nil
	}
	d := models.Duration(time.Duration(*s) * time.Second)
	return &d
}
