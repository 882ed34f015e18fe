package models

import (
	"time"

	"github.com/google/uuid"
)

// Activity is a persisted exercise entry belonging to a workout.
type Activity struct {
	ID           int64        `json:"activityId"`
	WorkoutID    uuid.UUID    `json:"workoutId"`
	ExerciseID   int          `json:"exerciseId"`
	ExerciseName string       `json:"exerciseName"`
	ExerciseType ExerciseType `json:"exerciseType"`
	Sets         *int         `json:"sets,omitempty"`
	Weight       *float64     `json:"weight,omitempty"`
	Duration     *Duration    `json:"duration,omitempty"`
}

// Draft converts the activity back into the form representation.
func (a Activity) Draft() ExerciseDraft {
	return ExerciseDraft{
		ExerciseType: a.ExerciseType,
		Exercise:     a.ExerciseName,
		Sets:         a.Sets,
		Weight:       a.Weight,
		Duration:     a.Duration,
	}.Normalized()
}

// Workout is a logged training session owned by a user.
type Workout struct {
	ID           uuid.UUID    `json:"id"`
	Username     string       `json:"username"`
	Description  string       `json:"description"`
	StartDate    time.Time    `json:"startDate"`
	EndDate      time.Time    `json:"endDate"`
	CreatedAt    time.Time    `json:"createdAt"`
	ExerciseType ExerciseType `json:"exerciseType,omitempty"`
	Exercise     string       `json:"exercise,omitempty"`
	Activities   []Activity   `json:"activities"`
}

// SetActivities attaches activities and derives the headline exercise
// (type and name of the first activity).
func (w *Workout) SetActivities(acts []Activity) {
	w.Activities = acts
	w.ExerciseType, w.Exercise = ExerciseUnset, ""
	if len(acts) > 0 {
		w.ExerciseType = acts[0].ExerciseType
		w.Exercise = acts[0].ExerciseName
	}
}

// WorkoutSubmission is what the workout form packages on submit.
type WorkoutSubmission struct {
	StartDate   time.Time       `json:"startDate"`
	EndDate     time.Time       `json:"endDate"`
	Description string          `json:"description"`
	Exercises   []ExerciseDraft `json:"exercises"`
}
