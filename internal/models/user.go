package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// User is the public profile of an account.
type User struct {
	ID       int     `json:"-"`
	Username string  `json:"username"`
	Name     string  `json:"name"`
	Surname  string  `json:"surname"`
	Email    string  `json:"email,omitempty"`
	Weight   float64 `json:"weight"`
	Height   float64 `json:"height"`
}

// RegisterRequest is the body of an account registration.
type RegisterRequest struct {
	Username string  `json:"username"`
	Name     string  `json:"name"`
	Surname  string  `json:"surname"`
	Email    string  `json:"email"`
	Password string  `json:"password"`
	Weight   float64 `json:"weight"`
	Height   float64 `json:"height"`
}

// DailyCount is one cell of the activity calendar.
type DailyCount struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
	Level int    `json:"level"`
}

// MaxCalendarDays is the longest span, in days, a daily count query may cover.
const MaxCalendarDays = 366

// ErrRangeTooLong reports a calendar query spanning more than MaxCalendarDays.
var ErrRangeTooLong = errors.New("date range exceeds 366 days")

// CheckCalendarRange rejects spans longer than MaxCalendarDays UTC days,
// both ends inclusive.
func CheckCalendarRange(start, end time.Time) error {
	from := start.UTC().Truncate(24 * time.Hour)
	until := end.UTC().Truncate(24 * time.Hour)
	if until.Sub(from) >= MaxCalendarDays*24*time.Hour {
		return ErrRangeTooLong
	}
	return nil
}

// LevelFor maps a daily exercise count onto the calendar's 0..3 intensity scale.
func LevelFor(count int) int {
	switch {
	case count <= 0:
		return 0
	case count <= 3:
		return 1
	case count <= 7:
		return 2
	default:
		return 3
	}
}

// ExerciseLog is one exercise performed by a user, flattened with its workout date.
type ExerciseLog struct {
	Date         time.Time    `json:"date"`
	WorkoutID    uuid.UUID    `json:"workoutId"`
	ExerciseName string       `json:"exerciseName"`
	ExerciseType ExerciseType `json:"exerciseType"`
	Sets         *int         `json:"sets,omitempty"`
	Weight       *float64     `json:"weight,omitempty"`
	Duration     *Duration    `json:"duration,omitempty"`
}
