package workoutform

import (
	"errors"
	"testing"
	"time"

	"github.com/claude/drgym/internal/models"
	"github.com/google/go-cmp/cmp"
)

// TestSetExerciseTypeResetsInputs verifies that switching the type clears
// exercise, sets, weight and duration from any prior state.
func TestSetExerciseTypeResetsInputs(t *testing.T) {
	types := []models.ExerciseType{models.ExerciseUnset, models.ExerciseStrength, models.ExerciseCardio}
	for _, from := range types {
		for _, to := range types {
			f := NewForm()
			f.SetExerciseType(from)
			f.SetExercise("pull up")
			f.SetSets(4)
			f.SetWeight(60)
			f.SetDuration(time.Hour)

			f.SetExerciseType(to)

			c := f.Candidate()
			if c.ExerciseType != to {
				t.Errorf("%q->%q: type = %q", from, to, c.ExerciseType)
			}
			if c.Exercise != "" || c.Sets != nil || c.Weight != nil || c.Duration != nil {
				t.Errorf("%q->%q: inputs not cleared: %+v", from, to, c)
			}
		}
	}
}

// TestFieldsVisibility verifies which inputs are shown per exercise type.
func TestFieldsVisibility(t *testing.T) {
	tests := []struct {
		typ  models.ExerciseType
		want Visibility
	}{
		{models.ExerciseUnset, Visibility{}},
		{models.ExerciseStrength, Visibility{ExerciseEnabled: true, Sets: true, Weight: true}},
		{models.ExerciseCardio, Visibility{ExerciseEnabled: true, Duration: true}},
	}
	for _, tc := range tests {
		f := NewForm()
		f.SetExerciseType(tc.typ)
		if got := f.Fields(); got != tc.want {
			t.Errorf("Fields(%q) = %+v, want %+v", tc.typ, got, tc.want)
		}
	}
}

// TestExerciseOptions verifies the option list follows the chosen type.
func TestExerciseOptions(t *testing.T) {
	catalog := []models.Exercise{
		{ID: 1, Name: "Running", Type: models.ExerciseCardio},
		{ID: 2, Name: "Squats", Type: models.ExerciseStrength},
	}
	f := NewForm(WithCatalog(catalog))
	if opts := f.ExerciseOptions(); len(opts) != 0 {
		t.Errorf("unset options = %v, want none", opts)
	}
	f.SetExerciseType(models.ExerciseCardio)
	if diff := cmp.Diff([]string{"Running"}, f.ExerciseOptions()); diff != "" {
		t.Errorf("cardio options (-want +got):\n%s", diff)
	}
	f.SetExerciseType(models.ExerciseStrength)
	if diff := cmp.Diff([]string{"Squats"}, f.ExerciseOptions()); diff != "" {
		t.Errorf("strength options (-want +got):\n%s", diff)
	}
}

// TestAddExerciseSuccessClearsInputs verifies a valid add appends the draft,
// clears the inputs and wipes errors from an earlier failed attempt.
func TestAddExerciseSuccessClearsInputs(t *testing.T) {
	f := NewForm()
	f.SetExerciseType(models.ExerciseStrength)
	f.SetExercise("pull up")
	if errs := f.AddExercise(); errs["sets"] == "" {
		t.Fatalf("expected sets error, got %v", errs)
	}
	if len(f.Errors()) == 0 {
		t.Fatal("failed add should keep errors for display")
	}
	if f.Exercise() != "pull up" {
		t.Error("failed add must not clear inputs")
	}

	f.SetSets(3)
	f.SetWeight(12.5)
	if errs := f.AddExercise(); errs != nil {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if f.Errors() != nil {
		t.Errorf("errors not cleared: %v", f.Errors())
	}
	if f.ExerciseType() != models.ExerciseUnset || f.Exercise() != "" {
		t.Errorf("inputs not cleared: type=%q exercise=%q", f.ExerciseType(), f.Exercise())
	}
	if got := f.Exercises(); len(got) != 1 || *got[0].Sets != 3 {
		t.Errorf("exercises = %+v", got)
	}
}

// TestSubmitPackagesAndCloses verifies submission packages top-level fields
// with the accumulated exercises and closes the form.
func TestSubmitPackagesAndCloses(t *testing.T) {
	start := time.Date(2024, 11, 1, 17, 41, 0, 0, time.UTC)
	f := NewForm()
	f.SetStartDate(start)
	f.SetEndDate(start.Add(2 * time.Hour))
	f.SetDescription("This is a workout description.")

	f.SetExerciseType(models.ExerciseCardio)
	f.SetExercise("jogging")
	f.SetDuration(time.Hour)
	if errs := f.AddExercise(); errs != nil {
		t.Fatal(errs)
	}

	sub, errs, err := f.Submit()
	if err != nil || errs != nil {
		t.Fatalf("Submit: errs=%v err=%v", errs, err)
	}
	if sub.Description != "This is a workout description." || len(sub.Exercises) != 1 {
		t.Errorf("submission = %+v", sub)
	}
	if !f.Closed() {
		t.Error("form should be closed after submit")
	}
	if len(f.Exercises()) != 0 {
		t.Error("closed form kept drafts")
	}
	if _, _, err := f.Submit(); !errors.Is(err, ErrClosed) {
		t.Errorf("second submit err = %v, want ErrClosed", err)
	}
}

// TestSubmitInvalidKeepsOpen verifies a validation failure leaves the form usable.
func TestSubmitInvalidKeepsOpen(t *testing.T) {
	f := NewForm()
	_, errs, err := f.Submit()
	if err != nil {
		t.Fatal(err)
	}
	if errs["startDate"] == "" || errs["endDate"] == "" {
		t.Errorf("errors = %v", errs)
	}
	if f.Closed() {
		t.Error("invalid submit closed the form")
	}
}

// TestEditFormPrefill verifies edit mode copies the workout's top-level fields.
func TestEditFormPrefill(t *testing.T) {
	w := models.Workout{
		Description:  "Leg day workout!",
		StartDate:    time.Date(2024, 12, 2, 20, 35, 0, 0, time.UTC),
		EndDate:      time.Date(2024, 12, 2, 20, 41, 0, 0, time.UTC),
		ExerciseType: models.ExerciseStrength,
		Exercise:     "barbell squat",
	}
	f := EditForm(w)
	if f.Mode() != ModeEdit {
		t.Error("mode should be edit")
	}
	if f.Description() != w.Description || f.Exercise() != "barbell squat" {
		t.Errorf("prefill mismatch: %q %q", f.Description(), f.Exercise())
	}
	if !f.Fields().Sets {
		t.Error("strength prefill should show sets")
	}
	if len(f.Exercises()) != 0 {
		t.Error("edit form should start with no drafts")
	}
}
