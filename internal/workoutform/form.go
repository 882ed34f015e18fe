// Package workoutform is the state behind the workout dialog: top-level
// fields, the strength/cardio field switch and the exercise draft list.
package workoutform

import (
	"errors"
	"time"

	"github.com/claude/drgym/internal/models"
	"github.com/claude/drgym/internal/schema"
)

// ErrClosed is returned when a closed form is submitted again.
var ErrClosed = errors.New("workout form is closed")

// Mode distinguishes a new workout from an edit of an existing one.
type Mode int

const (
	ModeNew Mode = iota
	ModeEdit
)

// Visibility describes which exercise inputs are currently usable.
type Visibility struct {
	ExerciseEnabled bool `json:"exerciseEnabled"`
	Sets            bool `json:"sets"`
	Weight          bool `json:"weight"`
	Duration        bool `json:"duration"`
}

// Form holds the state of an open workout form. It is owned by a single
// caller and not safe for concurrent use.
type Form struct {
	mode    Mode
	catalog []models.Exercise
	closed  bool

	startDate   time.Time
	endDate     time.Time
	description string

	exerciseType models.ExerciseType
	exercise     string
	sets         *int
	weight       *float64
	duration     *models.Duration

	drafts DraftBuilder
	errors schema.Errors
}

// Option configures a Form.
type Option func(*Form)

// WithCatalog replaces the exercise catalog used for option lists.
func WithCatalog(c []models.Exercise) Option {
	return func(f *Form) { f.catalog = c }
}

// NewForm opens an empty form for a new workout.
func NewForm(opts ...Option) *Form {
	f := &Form{mode: ModeNew, catalog: models.DefaultCatalog}
	for _, o := range opts {
		o(f)
	}
	return f
}

// EditForm opens a form pre-filled from w. The draft list starts empty.
func EditForm(w models.Workout, opts ...Option) *Form {
	f := NewForm(opts...)
	f.mode = ModeEdit
	f.startDate = w.StartDate
	f.endDate = w.EndDate
	f.description = w.Description
	f.exerciseType = w.ExerciseType
	f.exercise = w.Exercise
	return f
}

func (f *Form) Mode() Mode                        { return f.mode }
func (f *Form) Closed() bool                      { return f.closed }
func (f *Form) ExerciseType() models.ExerciseType { return f.exerciseType }
func (f *Form) Exercise() string                  { return f.exercise }
func (f *Form) Description() string               { return f.description }

func (f *Form) SetStartDate(t time.Time)    { f.startDate = t }
func (f *Form) SetEndDate(t time.Time)      { f.endDate = t }
func (f *Form) SetDescription(s string)     { f.description = s }
func (f *Form) SetExercise(name string)     { f.exercise = name }
func (f *Form) SetSets(n int)               { f.sets = &n }
func (f *Form) SetWeight(kg float64)        { f.weight = &kg }
func (f *Form) SetDuration(d time.Duration) { v := models.Duration(d); f.duration = &v }

// SetExerciseType switches the exercise variant. The exercise, sets, weight
// and duration inputs are always cleared, even when t equals the current type.
func (f *Form) SetExerciseType(t models.ExerciseType) {
	f.exerciseType = t
	f.clearExerciseInputs()
}

func (f *Form) clearExerciseInputs() {
	f.exercise = ""
	f.sets = nil
	f.weight = nil
	f.duration = nil
}

// Fields reports which inputs are shown for the current exercise type.
func (f *Form) Fields() Visibility {
	return Visibility{
		ExerciseEnabled: f.exerciseType != models.ExerciseUnset,
		Sets:            f.exerciseType == models.ExerciseStrength,
		Weight:          f.exerciseType == models.ExerciseStrength,
		Duration:        f.exerciseType == models.ExerciseCardio,
	}
}

// ExerciseOptions lists the selectable exercise names for the current type.
func (f *Form) ExerciseOptions() []string {
	return models.ExerciseNames(f.catalog, f.exerciseType)
}

// Candidate builds an exercise draft from the active inputs.
func (f *Form) Candidate() models.ExerciseDraft {
	return models.ExerciseDraft{
		ExerciseType: f.exerciseType,
		Exercise:     f.exercise,
		Sets:         f.sets,
		Weight:       f.weight,
		Duration:     f.duration,
	}
}

// AddExercise validates the active inputs and appends them to the draft
// list. On success the inputs (type included) and displayed errors are
// cleared. On failure the errors are kept for display and nothing else changes.
func (f *Form) AddExercise() schema.Errors {
	if _, errs := f.drafts.TryAdd(f.Candidate()); len(errs) > 0 {
		f.errors = errs
		return errs
	}
	f.exerciseType = models.ExerciseUnset
	f.clearExerciseInputs()
	f.errors = nil
	return nil
}

// RemoveExercise deletes the draft at index.
func (f *Form) RemoveExercise(index int) bool { return f.drafts.Remove(index) }

// Exercises returns the accumulated drafts.
func (f *Form) Exercises() []models.ExerciseDraft { return f.drafts.Entries() }

// Errors returns the errors currently displayed.
func (f *Form) Errors() schema.Errors { return f.errors }

// Submit validates the top-level fields and packages them with the draft
// list. A successful submit closes the form; what happens to the package
// (sending it, awaiting the server) is up to the caller.
func (f *Form) Submit() (models.WorkoutSubmission, schema.Errors, error) {
	if f.closed {
		return models.WorkoutSubmission{}, nil, ErrClosed
	}
	if errs := schema.ValidateWorkout(f.startDate, f.endDate, f.description); len(errs) > 0 {
		f.errors = errs
		return models.WorkoutSubmission{}, errs, nil
	}
	sub := models.WorkoutSubmission{
		StartDate:   f.startDate,
		EndDate:     f.endDate,
		Description: f.description,
		Exercises:   f.drafts.Entries(),
	}
	f.Close()
	return sub, nil, nil
}

// Close discards all state. Nothing is persisted.
func (f *Form) Close() {
	*f = Form{mode: f.mode, catalog: f.catalog, closed: true}
}
