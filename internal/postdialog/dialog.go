// Package postdialog holds the state of the "create post" dialog: the
// workout pool, the single selected workout and the post fields.
package postdialog

import (
	"context"

	"github.com/claude/drgym/internal/models"
	"github.com/claude/drgym/internal/notify"
	"github.com/claude/drgym/internal/schema"
	"github.com/google/uuid"
)

// Messages shown above the workout list.
const (
	MsgLoading   = "Loading workouts..."
	MsgNoneOwned = "You don't have any workouts. Please create one to add."
	MsgNoOthers  = "There are no other workouts available."
	MsgChange    = "Change your workout by selecting a different one from the list below."
	MsgSelect    = "Select a workout to include in your post."

	MsgFetchFailed = "Error fetching workouts"
)

// WorkoutFetcher loads the workouts a user may attach to a post.
type WorkoutFetcher interface {
	ListWorkouts(ctx context.Context, username string) ([]models.Workout, error)
}

type slotState int

const (
	available slotState = iota
	selected
)

type slot struct {
	workout models.Workout
	state   slotState
}

// Dialog is single-owner and not safe for concurrent use.
type Dialog struct {
	notifier notify.Notifier

	open    bool
	loading bool

	slots    map[uuid.UUID]*slot
	order    []uuid.UUID
	selected uuid.UUID // uuid.Nil when nothing is selected

	title       string
	description string
	errors      schema.Errors
}

// New returns a closed dialog that reports failures to n.
func New(n notify.Notifier) *Dialog {
	if n == nil {
		n = notify.Discard
	}
	return &Dialog{notifier: n}
}

// BeginLoad opens the dialog in the loading state, dropping any prior state.
func (d *Dialog) BeginLoad() {
	d.reset()
	d.open = true
	d.loading = true
}

// FinishLoad completes a load started with BeginLoad. On error the dialog is
// closed, an error notification is emitted and no workouts are kept.
func (d *Dialog) FinishLoad(workouts []models.Workout, err error) {
	if !d.open {
		return
	}
	if err != nil {
		d.Close()
		d.notifier.Notify(notify.Notification{Type: notify.Error, Text: MsgFetchFailed})
		return
	}
	d.loading = false
	for _, w := range workouts {
		if _, dup := d.slots[w.ID]; dup {
			continue
		}
		d.slots[w.ID] = &slot{workout: w, state: available}
		d.order = append(d.order, w.ID)
	}
}

// Open loads username's workouts through f and returns the fetch error, if any.
func (d *Dialog) Open(ctx context.Context, f WorkoutFetcher, username string) error {
	d.BeginLoad()
	workouts, err := f.ListWorkouts(ctx, username)
	d.FinishLoad(workouts, err)
	return err
}

// Close discards all dialog state.
func (d *Dialog) Close() {
	d.reset()
}

func (d *Dialog) reset() {
	*d = Dialog{notifier: d.notifier, slots: make(map[uuid.UUID]*slot)}
}

func (d *Dialog) IsOpen() bool  { return d.open }
func (d *Dialog) Loading() bool { return d.loading }

func (d *Dialog) SetTitle(s string)       { d.title = s }
func (d *Dialog) SetDescription(s string) { d.description = s }
func (d *Dialog) Title() string           { return d.title }
func (d *Dialog) Description() string     { return d.description }

// Errors returns the field errors from the last failed submit.
func (d *Dialog) Errors() schema.Errors { return d.errors }

// Toggle selects an available workout, returning any previous selection to
// the pool, or deselects the workout if it is already selected. Unknown ids
// are ignored and reported as false.
func (d *Dialog) Toggle(id uuid.UUID) bool {
	s, ok := d.slots[id]
	if !ok || d.loading {
		return false
	}
	if s.state == selected {
		s.state = available
		d.selected = uuid.Nil
		return true
	}
	if prev, ok := d.slots[d.selected]; ok {
		prev.state = available
	}
	s.state = selected
	d.selected = id
	return true
}

// Available returns the pool in load order, excluding the selection.
func (d *Dialog) Available() []models.Workout {
	var out []models.Workout
	for _, id := range d.order {
		if s := d.slots[id]; s.state == available {
			out = append(out, s.workout)
		}
	}
	return out
}

// Selected returns the selected workout, or nil.
func (d *Dialog) Selected() *models.Workout {
	s, ok := d.slots[d.selected]
	if !ok || s.state != selected {
		return nil
	}
	w := s.workout
	return &w
}

// Message returns the hint shown above the workout list.
func (d *Dialog) Message() string {
	if d.loading {
		return MsgLoading
	}
	hasSel := d.Selected() != nil
	poolEmpty := len(d.Available()) == 0
	switch {
	case !hasSel && poolEmpty:
		return MsgNoneOwned
	case hasSel && poolEmpty:
		return MsgNoOthers
	case hasSel:
		return MsgChange
	default:
		return MsgSelect
	}
}

// CanSubmit reports whether a workout is selected.
func (d *Dialog) CanSubmit() bool {
	return d.open && d.Selected() != nil
}

// Submit validates the post fields and packages them with the selected
// workout. Without a selection it does nothing and returns false. A
// successful submit closes the dialog.
func (d *Dialog) Submit() (models.PostSubmission, bool, schema.Errors) {
	if !d.CanSubmit() {
		return models.PostSubmission{}, false, nil
	}
	if errs := schema.ValidatePost(d.title, d.description); errs != nil {
		d.errors = errs
		return models.PostSubmission{}, false, errs
	}
	sub := models.PostSubmission{
		Title:       d.title,
		Description: d.description,
		Workout:     d.Selected(),
	}
	d.Close()
	return sub, true, nil
}
