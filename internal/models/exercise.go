package models

import "fmt"

// ExerciseType is the variant of an exercise. Strength and cardio entries
// have disjoint sets of relevant fields.
type ExerciseType string

const (
	ExerciseUnset    ExerciseType = ""
	ExerciseStrength ExerciseType = "strength"
	ExerciseCardio   ExerciseType = "cardio"
)

// ParseExerciseType accepts "strength", "cardio" or the empty string.
func ParseExerciseType(s string) (ExerciseType, error) {
	switch t := ExerciseType(s); t {
	case ExerciseUnset, ExerciseStrength, ExerciseCardio:
		return t, nil
	}
	return ExerciseUnset, fmt.Errorf("unknown exercise type %q", s)
}

// Exercise is an entry in the exercise catalog.
type Exercise struct {
	ID   int          `json:"exerciseId"`
	Name string       `json:"exerciseName"`
	Type ExerciseType `json:"exerciseType"`
}

// DefaultCatalog is the exercise catalog shipped with the application.
var DefaultCatalog = []Exercise{
	{ID: 71, Name: "sprinting", Type: ExerciseCardio},
	{ID: 69, Name: "jogging", Type: ExerciseCardio},
	{ID: 73, Name: "cycling", Type: ExerciseCardio},
	{ID: 29, Name: "pull up", Type: ExerciseStrength},
	{ID: 57, Name: "sit ups", Type: ExerciseStrength},
	{ID: 39, Name: "barbell squat", Type: ExerciseStrength},
}

// ExerciseNames returns the names of catalog entries of type t, in catalog order.
func ExerciseNames(catalog []Exercise, t ExerciseType) []string {
	if t == ExerciseUnset {
		return nil
	}
	var names []string
	for _, e := range catalog {
		if e.Type == t {
			names = append(names, e.Name)
		}
	}
	return names
}

// FindExercise looks up a catalog entry by name and type.
func FindExercise(catalog []Exercise, name string, t ExerciseType) (Exercise, bool) {
	for _, e := range catalog {
		if e.Name == name && e.Type == t {
			return e, true
		}
	}
	return Exercise{}, false
}

// ExerciseDraft is a single exercise entry being composed in the workout form.
// Sets and Weight only matter for strength, Duration only for cardio.
type ExerciseDraft struct {
	ExerciseType ExerciseType `json:"exerciseType"`
	Exercise     string       `json:"exercise"`
	Sets         *int         `json:"sets"`
	Weight       *float64     `json:"weight"`
	Duration     *Duration    `json:"duration"`
}

// Normalized returns a copy with the fields irrelevant to the draft's type cleared.
func (d ExerciseDraft) Normalized() ExerciseDraft {
	out := ExerciseDraft{ExerciseType: d.ExerciseType, Exercise: d.Exercise}
	switch d.ExerciseType {
	case ExerciseStrength:
		if d.Sets != nil {
			v := *d.Sets
			out.Sets = &v
		}
		if d.Weight != nil {
			v := *d.Weight
			out.Weight = &v
		}
	case ExerciseCardio:
		if d.Duration != nil {
			v := *d.Duration
			out.Duration = &v
		}
	}
	return out
}

// Summary renders the one-line description shown in the exercise list.
func (d ExerciseDraft) Summary() string {
	if d.ExerciseType == ExerciseStrength {
		return fmt.Sprintf("Type: %s, Sets: %s, Weight: %skg", d.ExerciseType, fmtIntPtr(d.Sets), fmtFloatPtr(d.Weight))
	}
	dur := "-"
	if d.Duration != nil {
		dur = d.Duration.String()
	}
	return fmt.Sprintf("Type: %s, Duration: %s", d.ExerciseType, dur)
}

func fmtIntPtr(v *int) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprint(*v)
}

func fmtFloatPtr(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprint(*v)
}
