package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/claude/drgym/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const postColumns = `id, username, title, content, date, workout_id`

// CreatePost stores a post that optionally references an existing workout
// owned by the same user.
func (db *DB) CreatePost(ctx context.Context, req models.PostCreateRequest) (models.Post, error) {
	var p models.Post
	err := db.inTx(ctx, func(tx pgx.Tx) error {
		var w *models.Workout
		if req.WorkoutID != nil {
			got, err := getWorkout(ctx, tx, *req.WorkoutID)
			if err != nil {
				return err
			}
			if got.Username != req.Username {
				return fmt.Errorf("attaching workout: %w", ErrNotFound)
			}
			w = &got
		}
		var err error
		p, err = insertPost(ctx, tx, req.Username, req.Title, req.Content, w)
		return err
	})
	return p, err
}

// CreatePostWithWorkout stores a new workout and a post referencing it in
// one transaction. A nil workout creates a plain post.
func (db *DB) CreatePostWithWorkout(ctx context.Context, req models.PostWithWorkoutRequest) (models.Post, error) {
	var p models.Post
	err := db.inTx(ctx, func(tx pgx.Tx) error {
		var w *models.Workout
		if req.Workout != nil {
			created, err := insertWorkout(ctx, tx, req.Username, *req.Workout)
			if err != nil {
				return err
			}
			w = &created
		}
		var err error
		p, err = insertPost(ctx, tx, req.Username, req.Title, req.Content, w)
		return err
	})
	return p, err
}

func insertPost(ctx context.Context, tx pgx.Tx, username, title, content string, w *models.Workout) (models.Post, error) {
	p := models.Post{
		ID:       uuid.New(),
		Username: username,
		Title:    title,
		Content:  content,
		Date:     time.Now().UTC(),
		Workout:  w,
	}
	var workoutID *uuid.UUID
	if w != nil {
		workoutID = &w.ID
	}
	_, err := tx.Exec(ctx, `
		INSERT INTO posts (id, username, title, content, date, workout_id)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, p.ID, p.Username, p.Title, p.Content, p.Date, workoutID)
	if err != nil {
		return models.Post{}, fmt.Errorf("inserting post: %w", mapErr(err))
	}
	return p, nil
}

// GetPost returns a post with its workout and activities.
func (db *DB) GetPost(ctx context.Context, id uuid.UUID) (models.Post, error) {
	rows, err := db.Pool.Query(ctx, `SELECT `+postColumns+` FROM posts WHERE id = $1`, id)
	if err != nil {
		return models.Post{}, fmt.Errorf("querying post: %w", err)
	}
	posts, err := db.scanPosts(ctx, rows)
	if err != nil {
		return models.Post{}, err
	}
	if len(posts) == 0 {
		return models.Post{}, fmt.Errorf("querying post: %w", ErrNotFound)
	}
	return posts[0], nil
}

// ListPostsByUsernames returns the posts of all given users, newest first.
func (db *DB) ListPostsByUsernames(ctx context.Context, usernames []string) ([]models.Post, error) {
	if len(usernames) == 0 {
		return []models.Post{}, nil
	}
	rows, err := db.Pool.Query(ctx, `
		SELECT `+postColumns+` FROM posts
		WHERE username = ANY($1)
		ORDER BY date DESC
	`, usernames)
	if err != nil {
		return nil, fmt.Errorf("querying posts: %w", err)
	}
	return db.scanPosts(ctx, rows)
}

// ListFeed returns the posts a feed shows: the user's own posts for
// FeedMine, their friends' posts otherwise.
func (db *DB) ListFeed(ctx context.Context, username string, filter models.FeedFilter) ([]models.Post, error) {
	if filter == models.FeedMine {
		return db.ListPostsByUsernames(ctx, []string{username})
	}
	friends, err := db.FriendUsernames(ctx, username)
	if err != nil {
		return nil, err
	}
	return db.ListPostsByUsernames(ctx, friends)
}

// UpdatePost replaces title and content. A non-nil WorkoutID re-points the
// post at another workout of the same owner.
func (db *DB) UpdatePost(ctx context.Context, id uuid.UUID, req models.PostUpdateRequest) error {
	return db.inTx(ctx, func(tx pgx.Tx) error {
		var owner string
		err := tx.QueryRow(ctx, `SELECT username FROM posts WHERE id = $1 FOR UPDATE`, id).Scan(&owner)
		if err != nil {
			return fmt.Errorf("querying post: %w", mapErr(err))
		}
		if req.WorkoutID != nil {
			w, err := getWorkout(ctx, tx, *req.WorkoutID)
			if err != nil {
				return err
			}
			if w.Username != owner {
				return fmt.Errorf("attaching workout: %w", ErrNotFound)
			}
		}
		_, err = tx.Exec(ctx, `
			UPDATE posts SET title = $2, content = $3, workout_id = COALESCE($4, workout_id)
			WHERE id = $1
		`, id, req.Title, req.Content, req.WorkoutID)
		if err != nil {
			return fmt.Errorf("updating post: %w", err)
		}
		return nil
	})
}

// DeletePost removes a post and its reactions.
func (db *DB) DeletePost(ctx context.Context, id uuid.UUID) error {
	tag, err := db.Pool.Exec(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting post: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("deleting post: %w", ErrNotFound)
	}
	return nil
}

func (db *DB) scanPosts(ctx context.Context, rows pgx.Rows) ([]models.Post, error) {
	defer rows.Close()

	result := []models.Post{}
	var workoutIDs []uuid.UUID
	refs := make(map[int]uuid.UUID)
	for rows.Next() {
		var (
			p         models.Post
			workoutID *uuid.UUID
		)
		if err := rows.Scan(&p.ID, &p.Username, &p.Title, &p.Content, &p.Date, &workoutID); err != nil {
			return nil, fmt.Errorf("scanning post: %w", err)
		}
		if workoutID != nil {
			refs[len(result)] = *workoutID
			workoutIDs = append(workoutIDs, *workoutID)
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(workoutIDs) == 0 {
		return result, nil
	}

	workouts, err := db.workoutsByID(ctx, workoutIDs)
	if err != nil {
		return nil, err
	}
	for i, id := range refs {
		if w, ok := workouts[id]; ok {
			result[i].Workout = &w
		}
	}
	return result, nil
}

func (db *DB) workoutsByID(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Workout, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT id, username, description, start_date, end_date, created_at
		FROM workouts WHERE id = ANY($1)
	`, ids)
	if err != nil {
		return nil, fmt.Errorf("querying post workouts: %w", err)
	}
	ws, err := scanWorkouts(rows)
	if err != nil {
		return nil, err
	}
	if err := attachActivities(ctx, db.Pool, ws); err != nil {
		return nil, err
	}
	out := make(map[uuid.UUID]models.Workout, len(ws))
	for _, w := range ws {
		out[w.ID] = w
	}
	return out, nil
}
