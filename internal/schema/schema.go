// Package schema holds the declarative field rules for posts, workouts and
// the two exercise variants. Rules are struct tags evaluated by
// go-playground/validator; failures come back as a field -> message map.
package schema

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/claude/drgym/internal/models"
	"github.com/go-playground/validator/v10"
)

// Errors maps a field's JSON name to a human-readable message.
// A nil or empty map means the value is valid.
type Errors map[string]string

// Error joins all messages in field order.
func (e Errors) Error() string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f+": "+e[f])
	}
	return strings.Join(parts, "; ")
}

// Err returns e as an error, or nil when there are no violations.
func (e Errors) Err() error {
	if len(e) == 0 {
		return nil
	}
	return e
}

// StrengthExercise is the ruleset for strength entries.
type StrengthExercise struct {
	Exercise string   `json:"exercise" validate:"required"`
	Sets     *int     `json:"sets" validate:"required,min=1,max=100"`
	Weight   *float64 `json:"weight" validate:"required,min=0,max=1000"`
}

// CardioExercise is the ruleset for cardio entries.
type CardioExercise struct {
	Exercise string         `json:"exercise" validate:"required"`
	Duration *time.Duration `json:"duration" validate:"required,gt=0s,lt=24h"`
}

// Post is the ruleset for the post dialog's text fields.
type Post struct {
	Title       string `json:"title" validate:"required,max=100"`
	Description string `json:"description" validate:"max=1000"`
}

// Workout is the ruleset for the workout form's top-level fields.
type Workout struct {
	StartDate   *time.Time `json:"startDate" validate:"required"`
	EndDate     *time.Time `json:"endDate" validate:"required"`
	Description string     `json:"description" validate:"max=500"`
}

// Registration is the ruleset for new accounts.
type Registration struct {
	Username string  `json:"username" validate:"required,min=3,max=32,alphanum"`
	Name     string  `json:"name" validate:"max=50"`
	Surname  string  `json:"surname" validate:"max=50"`
	Email    string  `json:"email" validate:"required,email"`
	Password string  `json:"password" validate:"required,min=8,max=72"`
	Weight   float64 `json:"weight" validate:"gte=0,lte=500"`
	Height   float64 `json:"height" validate:"gte=0,lte=300"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// messages holds per-field overrides keyed by "field.tag".
var messages = map[string]string{
	"exercise.required":     "Exercise is required",
	"sets.required":         "Sets are required",
	"sets.min":              "Sets must be at least 1",
	"sets.max":              "Sets must be at most 100",
	"weight.required":       "Weight is required",
	"weight.min":            "Weight cannot be negative",
	"weight.max":            "Weight must be at most 1000 kg",
	"duration.required":     "Duration is required",
	"duration.gt":           "Duration must be greater than zero",
	"duration.lt":           "Duration must be less than 24 hours",
	"title.required":        "Title is required",
	"title.max":             "Title must be at most 100 characters",
	"description.max":       "Description is too long",
	"startDate.required":    "Start date is required",
	"endDate.required":      "End date is required",
	"exerciseType.required": "Exercise type is required",
	"username.required":     "Username is required",
	"username.alphanum":     "Username may only contain letters and digits",
	"email.required":        "Email is required",
	"email.email":           "Email is invalid",
	"password.required":     "Password is required",
	"password.min":          "Password must be at least 8 characters",
}

// Validate checks v against its struct tags and collects every violation.
func Validate(v any) Errors {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return Errors{"": err.Error()}
	}
	out := make(Errors, len(verrs))
	for _, fe := range verrs {
		field := fe.Field()
		if _, seen := out[field]; seen {
			continue
		}
		out[field] = message(field, fe)
	}
	return out
}

func message(field string, fe validator.FieldError) string {
	if m, ok := messages[field+"."+fe.Tag()]; ok {
		return m
	}
	if fe.Param() != "" {
		return fmt.Sprintf("%s failed %s=%s", field, fe.Tag(), fe.Param())
	}
	return fmt.Sprintf("%s failed %s", field, fe.Tag())
}

// ValidateExercise picks the ruleset matching d.ExerciseType. Fields that
// belong to the other variant are never inspected.
func ValidateExercise(d models.ExerciseDraft) Errors {
	switch d.ExerciseType {
	case models.ExerciseStrength:
		return Validate(StrengthExercise{Exercise: d.Exercise, Sets: d.Sets, Weight: d.Weight})
	case models.ExerciseCardio:
		var dur *time.Duration
		if d.Duration != nil {
			v := d.Duration.Std()
			dur = &v
		}
		return Validate(CardioExercise{Exercise: d.Exercise, Duration: dur})
	case models.ExerciseUnset:
		return Errors{"exerciseType": messages["exerciseType.required"]}
	}
	return Errors{"exerciseType": fmt.Sprintf("Unknown exercise type %q", d.ExerciseType)}
}

// ValidatePost checks the post dialog's title and description.
func ValidatePost(title, description string) Errors {
	return Validate(Post{Title: title, Description: description})
}

// ValidateWorkout checks a workout's top-level fields. A zero time counts as
// missing; the end may not precede the start.
func ValidateWorkout(start, end time.Time, description string) Errors {
	w := Workout{Description: description}
	if !start.IsZero() {
		w.StartDate = &start
	}
	if !end.IsZero() {
		w.EndDate = &end
	}
	errs := Validate(w)
	if w.StartDate != nil && w.EndDate != nil && end.Before(start) {
		if errs == nil {
			errs = Errors{}
		}
		errs["endDate"] = "End date must be after start date"
	}
	return errs
}

// ValidateRegistration checks a sign-up request.
func ValidateRegistration(r models.RegisterRequest) Errors {
	return Validate(Registration{
		Username: r.Username,
		Name:     r.Name,
		Surname:  r.Surname,
		Email:    r.Email,
		Password: r.Password,
		Weight:   r.Weight,
		Height:   r.Height,
	})
}

// ValidateSubmission validates a packaged workout including every exercise.
// Exercise errors are keyed "exercises[i].field".
func ValidateSubmission(s models.WorkoutSubmission) Errors {
	errs := ValidateWorkout(s.StartDate, s.EndDate, s.Description)
	for i, ex := range s.Exercises {
		for field, msg := range ValidateExercise(ex) {
			if errs == nil {
				errs = Errors{}
			}
			errs[fmt.Sprintf("exercises[%d].%s", i, field)] = msg
		}
	}
	return errs
}
