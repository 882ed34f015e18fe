// Package seed loads a demo dataset (exercise catalog, users, friendships,
// workouts and posts) into storage. Running it twice is harmless: existing
// users and everything they own are left alone.
package seed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/claude/drgym/internal/auth"
	"github.com/claude/drgym/internal/models"
	"github.com/claude/drgym/internal/storage"
)

// Store is the subset of storage the seeder writes through.
type Store interface {
	UpsertExercise(ctx context.Context, e models.Exercise) error
	GetUser(ctx context.Context, username string) (models.User, error)
	CreateUser(ctx context.Context, u models.User, passwordHash string) (models.User, error)
	AddFriend(ctx context.Context, username, friend string) error
	CreateWorkout(ctx context.Context, username string, sub models.WorkoutSubmission) (models.Workout, error)
	CreatePost(ctx context.Context, req models.PostCreateRequest) (models.Post, error)
	CreatePostWithWorkout(ctx context.Context, req models.PostWithWorkoutRequest) (models.Post, error)
}

var _ Store = (*storage.DB)(nil)

// Dataset is everything Run writes.
type Dataset struct {
	Exercises   []models.Exercise
	Users       []User
	Friendships [][2]string
}

// User is a demo account with its content.
type User struct {
	models.User
	Password string
	Workouts []Workout
	Posts    []Post
}

// Workout is placed relative to the seeding time. A non-nil Post is created
// together with the workout.
type Workout struct {
	DaysAgo     int
	StartHour   int
	Length      time.Duration
	Description string
	Exercises   []models.ExerciseDraft
	Post        *Post
}

// Post is a demo post.
type Post struct {
	Title   string
	Content string
}

// Report counts what Run created.
type Report struct {
	Exercises    int
	UsersCreated int
	UsersSkipped int
	Friendships  int
	Workouts     int
	Posts        int
}

// Run writes ds into st. Workout dates are computed from now.
func Run(ctx context.Context, st Store, ds Dataset, now time.Time, log *slog.Logger) (Report, error) {
	var rep Report

	for _, e := range ds.Exercises {
		if err := st.UpsertExercise(ctx, e); err != nil {
			return rep, fmt.Errorf("seeding exercise %s: %w", e.Name, err)
		}
		rep.Exercises++
	}

	for _, u := range ds.Users {
		_, err := st.GetUser(ctx, u.Username)
		if err == nil {
			log.Info("user exists, skipping", "username", u.Username)
			rep.UsersSkipped++
			continue
		}
		if !errors.Is(err, storage.ErrNotFound) {
			return rep, fmt.Errorf("checking user %s: %w", u.Username, err)
		}
		if err := seedUser(ctx, st, u, now, &rep); err != nil {
			return rep, err
		}
		rep.UsersCreated++
	}

	for _, f := range ds.Friendships {
		if err := st.AddFriend(ctx, f[0], f[1]); err != nil {
			return rep, fmt.Errorf("seeding friendship %s/%s: %w", f[0], f[1], err)
		}
		rep.Friendships++
	}

	log.Info("seed complete",
		"exercises", rep.Exercises,
		"users_created", rep.UsersCreated,
		"users_skipped", rep.UsersSkipped,
		"workouts", rep.Workouts,
		"posts", rep.Posts,
	)
	return rep, nil
}

func seedUser(ctx context.Context, st Store, u User, now time.Time, rep *Report) error {
	hash, err := auth.HashPassword(u.Password)
	if err != nil {
		return fmt.Errorf("hashing password for %s: %w", u.Username, err)
	}
	if _, err := st.CreateUser(ctx, u.User, hash); err != nil {
		return fmt.Errorf("creating user %s: %w", u.Username, err)
	}

	for _, w := range u.Workouts {
		sub := w.submission(now)
		if w.Post == nil {
			if _, err := st.CreateWorkout(ctx, u.Username, sub); err != nil {
				return fmt.Errorf("creating workout for %s: %w", u.Username, err)
			}
			rep.Workouts++
			continue
		}
		_, err := st.CreatePostWithWorkout(ctx, models.PostWithWorkoutRequest{
			Username: u.Username,
			Title:    w.Post.Title,
			Content:  w.Post.Content,
			Workout:  &sub,
		})
		if err != nil {
			return fmt.Errorf("creating post with workout for %s: %w", u.Username, err)
		}
		rep.Workouts++
		rep.Posts++
	}

	for _, p := range u.Posts {
		_, err := st.CreatePost(ctx, models.PostCreateRequest{
			Username: u.Username,
			Title:    p.Title,
			Content:  p.Content,
		})
		if err != nil {
			return fmt.Errorf("creating post for %s: %w", u.Username, err)
		}
		rep.Posts++
	}
	return nil
}

func (w Workout) submission(now time.Time) models.WorkoutSubmission {
	day := now.UTC().Truncate(24*time.Hour).AddDate(0, 0, -w.DaysAgo)
	start := day.Add(time.Duration(w.StartHour) * time.Hour)
	return models.WorkoutSubmission{
		StartDate:   start,
		EndDate:     start.Add(w.Length),
		Description: w.Description,
		Exercises:   w.Exercises,
	}
}

func strength(name string, sets int, weight float64) models.ExerciseDraft {
	return models.ExerciseDraft{ExerciseType: models.ExerciseStrength, Exercise: name, Sets: &sets, Weight: &weight}
}

func cardio(name string, d time.Duration) models.ExerciseDraft {
	md := models.Duration(d)
	return models.ExerciseDraft{ExerciseType: models.ExerciseCardio, Exercise: name, Duration: &md}
}

// Default returns the demo dataset. All demo accounts share the password
// "password123".
func Default() Dataset {
	const pw = "password123"
	return Dataset{
		Exercises: models.DefaultCatalog,
		Users: []User{
			{
				User:     models.User{Username: "alice", Name: "Alice", Surname: "Nowak", Email: "alice@example.com", Weight: 62, Height: 168},
				Password: pw,
				Workouts: []Workout{
					{
						DaysAgo: 1, StartHour: 7, Length: time.Hour,
						Description: "Leg day",
						Exercises:   []models.ExerciseDraft{strength("barbell squat", 5, 60), strength("sit ups", 3, 0)},
						Post:        &Post{Title: "New squat PR", Content: "Five clean sets at 60kg."},
					},
					{
						DaysAgo: 3, StartHour: 18, Length: 45 * time.Minute,
						Description: "Evening run",
						Exercises:   []models.ExerciseDraft{cardio("jogging", 40*time.Minute)},
					},
				},
				Posts: []Post{{Title: "Rest day", Content: "Stretching and a long walk."}},
			},
			{
				User:     models.User{Username: "bob", Name: "Bob", Surname: "Kowalski", Email: "bob@example.com", Weight: 84, Height: 182},
				Password: pw,
				Workouts: []Workout{
					{
						DaysAgo: 2, StartHour: 6, Length: 90 * time.Minute,
						Description: "Bike commute and sprints",
						Exercises:   []models.ExerciseDraft{cardio("cycling", time.Hour), cardio("sprinting", 10*time.Minute)},
						Post:        &Post{Title: "Morning ride", Content: "Sixty minutes on the bike, then sprints."},
					},
					{
						DaysAgo: 5, StartHour: 17, Length: time.Hour,
						Description: "Upper body",
						Exercises:   []models.ExerciseDraft{strength("pull up", 4, 0)},
					},
				},
			},
			{
				User:     models.User{Username: "carol", Name: "Carol", Surname: "Wiśniewska", Email: "carol@example.com", Weight: 58, Height: 165},
				Password: pw,
				Workouts: []Workout{
					{
						DaysAgo: 0, StartHour: 8, Length: 30 * time.Minute,
						Description: "Quick jog",
						Exercises:   []models.ExerciseDraft{cardio("jogging", 25*time.Minute)},
						Post:        &Post{Title: "First run of the week", Content: "Slow and steady."},
					},
				},
			},
		},
		Friendships: [][2]string{{"alice", "bob"}, {"bob", "carol"}},
	}
}
