package server

import (
	"context"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/claude/drgym/internal/models"
	"github.com/claude/drgym/internal/storage"
	"github.com/google/uuid"
)

// memStore is an in-memory Store for handler tests.
type memStore struct {
	mu        sync.Mutex
	users     map[string]models.User
	hashes    map[string]string
	friends   map[string]map[string]bool
	workouts  map[uuid.UUID]models.Workout
	posts     map[uuid.UUID]models.Post
	reactions map[uuid.UUID][]models.Reaction
}

var _ Store = (*memStore)(nil)

func newMemStore() *memStore {
	return &memStore{
		users:     map[string]models.User{},
		hashes:    map[string]string{},
		friends:   map[string]map[string]bool{},
		workouts:  map[uuid.UUID]models.Workout{},
		posts:     map[uuid.UUID]models.Post{},
		reactions: map[uuid.UUID][]models.Reaction{},
	}
}

func (m *memStore) CreateUser(_ context.Context, u models.User, hash string) (models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[u.Username]; ok {
		return models.User{}, storage.ErrConflict
	}
	u.ID = len(m.users) + 1
	m.users[u.Username] = u
	m.hashes[u.Username] = hash
	return u, nil
}

func (m *memStore) GetUser(_ context.Context, username string) (models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[username]
	if !ok {
		return models.User{}, storage.ErrNotFound
	}
	return u, nil
}

func (m *memStore) PasswordHash(_ context.Context, username string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	h, ok := m.hashes[username]
	if !ok {
		return "", storage.ErrNotFound
	}
	return h, nil
}

func (m *memStore) SearchUsers(_ context.Context, q string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []string{}
	for name := range m.users {
		if strings.Contains(name, q) {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (m *memStore) UpdateUser(_ context.Context, username string, u models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[username]; !ok {
		return storage.ErrNotFound
	}
	m.users[username] = u
	return nil
}

func (m *memStore) DeleteUser(_ context.Context, username string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[username]; !ok {
		return storage.ErrNotFound
	}
	delete(m.users, username)
	return nil
}

func (m *memStore) AddFriend(_ context.Context, a, b string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range [][2]string{{a, b}, {b, a}} {
		if m.friends[p[0]] == nil {
			m.friends[p[0]] = map[string]bool{}
		}
		m.friends[p[0]][p[1]] = true
	}
	return nil
}

func (m *memStore) RemoveFriend(_ context.Context, a, b string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.friends[a][b] {
		return storage.ErrNotFound
	}
	delete(m.friends[a], b)
	delete(m.friends[b], a)
	return nil
}

func (m *memStore) AreFriends(_ context.Context, a, b string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.friends[a][b], nil
}

func (m *memStore) FriendUsernames(_ context.Context, username string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for f := range m.friends[username] {
		out = append(out, f)
	}
	sort.Strings(out)
	return out, nil
}

func (m *memStore) ListExercises(_ context.Context, t models.ExerciseType) ([]models.Exercise, error) {
	var out []models.Exercise
	for _, e := range models.DefaultCatalog {
		if t == models.ExerciseUnset || e.Type == t {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *memStore) CreateWorkout(_ context.Context, username string, sub models.WorkoutSubmission) (models.Workout, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	w := models.Workout{
		ID:          uuid.New(),
		Username:    username,
		Description: sub.Description,
		StartDate:   sub.StartDate,
		EndDate:     sub.EndDate,
		CreatedAt:   time.Now(),
	}
	var acts []models.Activity
	for i, d := range sub.Exercises {
		ex, ok := models.FindExercise(models.DefaultCatalog, d.Exercise, d.ExerciseType)
		if !ok {
			return models.Workout{}, storage.ErrUnknownExercise
		}
		d = d.Normalized()
		acts = append(acts, models.Activity{
			ID: int64(i + 1), WorkoutID: w.ID, ExerciseID: ex.ID, ExerciseName: ex.Name,
			ExerciseType: ex.Type, Sets: d.Sets, Weight: d.Weight, Duration: d.Duration,
		})
	}
	w.SetActivities(acts)
	m.workouts[w.ID] = w
	return w, nil
}

func (m *memStore) ListWorkouts(_ context.Context, username string) ([]models.Workout, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Workout{}
	for _, w := range m.workouts {
		if w.Username == username {
			out = append(out, w)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartDate.After(out[j].StartDate) })
	return out, nil
}

func (m *memStore) GetWorkout(_ context.Context, id uuid.UUID) (models.Workout, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	w, ok := m.workouts[id]
	if !ok {
		return models.Workout{}, storage.ErrNotFound
	}
	return w, nil
}

func (m *memStore) CreatePost(_ context.Context, req models.PostCreateRequest) (models.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p := models.Post{ID: uuid.New(), Username: req.Username, Title: req.Title, Content: req.Content, Date: time.Now()}
	if req.WorkoutID != nil {
		w, ok := m.workouts[*req.WorkoutID]
		if !ok || w.Username != req.Username {
			return models.Post{}, storage.ErrNotFound
		}
		p.Workout = &w
	}
	m.posts[p.ID] = p
	return p, nil
}

func (m *memStore) CreatePostWithWorkout(ctx context.Context, req models.PostWithWorkoutRequest) (models.Post, error) {
	var id *uuid.UUID
	if req.Workout != nil {
		w, err := m.CreateWorkout(ctx, req.Username, *req.Workout)
		if err != nil {
			return models.Post{}, err
		}
		id = &w.ID
	}
	return m.CreatePost(ctx, models.PostCreateRequest{Username: req.Username, Title: req.Title, Content: req.Content, WorkoutID: id})
}

func (m *memStore) GetPost(_ context.Context, id uuid.UUID) (models.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.posts[id]
	if !ok {
		return models.Post{}, storage.ErrNotFound
	}
	return p, nil
}

func (m *memStore) ListPostsByUsernames(_ context.Context, usernames []string) ([]models.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Post{}
	for _, p := range m.posts {
		if slices.Contains(usernames, p.Username) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out, nil
}

func (m *memStore) ListFeed(ctx context.Context, username string, filter models.FeedFilter) ([]models.Post, error) {
	if filter == models.FeedMine {
		return m.ListPostsByUsernames(ctx, []string{username})
	}
	friends, _ := m.FriendUsernames(ctx, username)
	return m.ListPostsByUsernames(ctx, friends)
}

func (m *memStore) UpdatePost(_ context.Context, id uuid.UUID, req models.PostUpdateRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.posts[id]
	if !ok {
		return storage.ErrNotFound
	}
	p.Title, p.Content = req.Title, req.Content
	if req.WorkoutID != nil {
		w, ok := m.workouts[*req.WorkoutID]
		if !ok {
			return storage.ErrNotFound
		}
		p.Workout = &w
	}
	m.posts[id] = p
	return nil
}

func (m *memStore) DeletePost(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.posts[id]; !ok {
		return storage.ErrNotFound
	}
	delete(m.posts, id)
	return nil
}

func (m *memStore) AddReaction(_ context.Context, postID uuid.UUID, username string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.reactions[postID] {
		if r.Username == username {
			return nil
		}
	}
	m.reactions[postID] = append(m.reactions[postID], models.Reaction{PostID: postID, Username: username, CreatedAt: time.Now()})
	return nil
}

func (m *memStore) ListReactions(_ context.Context, postID uuid.UUID) ([]models.Reaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.Reaction{}, m.reactions[postID]...), nil
}

func (m *memStore) RemoveReaction(_ context.Context, postID uuid.UUID, username string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reactions[postID] = slices.DeleteFunc(m.reactions[postID], func(r models.Reaction) bool { return r.Username == username })
	return nil
}

func (m *memStore) DailyExerciseCounts(_ context.Context, username string, start, end time.Time) ([]models.DailyCount, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	counts := map[string]int{}
	for _, w := range m.workouts {
		if w.Username == username && !w.StartDate.Before(start) && !w.StartDate.After(end.AddDate(0, 0, 1)) {
			counts[w.StartDate.Format("2006-01-02")] += len(w.Activities)
		}
	}
	out := []models.DailyCount{}
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		k := d.Format("2006-01-02")
		out = append(out, models.DailyCount{Date: k, Count: counts[k], Level: models.LevelFor(counts[k])})
	}
	return out, nil
}

func (m *memStore) ExercisesInPeriod(_ context.Context, username string, start, end time.Time) ([]models.ExerciseLog, error) {
	return []models.ExerciseLog{}, nil
}
