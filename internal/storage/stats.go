package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/claude/drgym/internal/models"
)

const dayLayout = "2006-01-02"

// DailyExerciseCounts returns one entry per day in [start, end] with the
// number of exercises username logged that day and its calendar level.
// Days without exercises are included with a zero count.
func (db *DB) DailyExerciseCounts(ctx context.Context, username string, start, end time.Time) ([]models.DailyCount, error) {
	if err := models.CheckCalendarRange(start, end); err != nil {
		return nil, err
	}
	from, until := dayBounds(start, end)
	rows, err := db.Pool.Query(ctx, `
		SELECT to_char(w.start_date AT TIME ZONE 'UTC', 'YYYY-MM-DD') AS day, COUNT(a.id)
		FROM workouts w
		JOIN activities a ON a.workout_id = w.id
		WHERE w.username = $1 AND w.start_date >= $2 AND w.start_date < $3
		GROUP BY day
	`, username, from, until)
	if err != nil {
		return nil, fmt.Errorf("querying daily exercise counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var (
			day string
			n   int
		)
		if err := rows.Scan(&day, &n); err != nil {
			return nil, fmt.Errorf("scanning daily count: %w", err)
		}
		counts[day] = n
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return fillDays(from, until, counts), nil
}

// ExercisesInPeriod returns every exercise username performed in [start, end],
// newest workout first.
func (db *DB) ExercisesInPeriod(ctx context.Context, username string, start, end time.Time) ([]models.ExerciseLog, error) {
	if err := models.CheckCalendarRange(start, end); err != nil {
		return nil, err
	}
	from, until := dayBounds(start, end)
	rows, err := db.Pool.Query(ctx, `
		SELECT w.start_date, w.id, e.name, e.type, a.sets, a.weight, a.duration_sec
		FROM workouts w
		JOIN activities a ON a.workout_id = w.id
		JOIN exercises e ON e.id = a.exercise_id
		WHERE w.username = $1 AND w.start_date >= $2 AND w.start_date < $3
		ORDER BY w.start_date DESC, a.position
	`, username, from, until)
	if err != nil {
		return nil, fmt.Errorf("querying exercises in period: %w", err)
	}
	defer rows.Close()

	result := []models.ExerciseLog{}
	for rows.Next() {
		var (
			l      models.ExerciseLog
			typ    string
			durSec *int64
		)
		if err := rows.Scan(&l.Date, &l.WorkoutID, &l.ExerciseName, &typ, &l.Sets, &l.Weight, &durSec); err != nil {
			return nil, fmt.Errorf("scanning exercise log: %w", err)
		}
		l.ExerciseType = models.ExerciseType(typ)
		l.Duration = durationFromSeconds(durSec)
		result = append(result, l)
	}
	return result, rows.Err()
}

// dayBounds truncates start to midnight UTC and makes end inclusive of its day.
func dayBounds(start, end time.Time) (time.Time, time.Time) {
	from := start.UTC().Truncate(24 * time.Hour)
	until := end.UTC().Truncate(24 * time.Hour).Add(24 * time.Hour)
	return from, until
}

// fillDays expands sparse per-day counts into a contiguous series over [from, until).
func fillDays(from, until time.Time, counts map[string]int) []models.DailyCount {
	result := []models.DailyCount{}
	for d := from; d.Before(until); d = d.AddDate(0, 0, 1) {
		key := d.Format(dayLayout)
		n := counts[key]
		result = append(result, models.DailyCount{Date: key, Count: n, Level: models.LevelFor(n)})
	}
	return result
}
